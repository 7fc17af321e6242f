// Package profile manages the single learner record for a deployment.
package profile

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hanzi-quest/backend/internal/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Get returns the profile. Single-learner deployment: at most one row exists
// and the earliest wins if the table somehow grows.
func (s *Store) Get(ctx context.Context) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, age, avatar_id, ai_model, created_at
		 FROM user_profile ORDER BY id LIMIT 1`,
	).Scan(&profile.ID, &profile.Name, &profile.Age, &profile.AvatarID,
		&profile.AIModel, &profile.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no profile exists")
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &profile, nil
}

// Create inserts the profile. Fails if one already exists.
func (s *Store) Create(ctx context.Context, req models.CreateProfileRequest) (*models.UserProfile, error) {
	if existing, err := s.Get(ctx); err == nil {
		return nil, fmt.Errorf("profile %q already exists", existing.Name)
	}

	var profile models.UserProfile
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO user_profile (name, age, avatar_id, ai_model)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, name, age, avatar_id, ai_model, created_at`,
		req.Name, req.Age, req.AvatarID, req.AIModel,
	).Scan(&profile.ID, &profile.Name, &profile.Age, &profile.AvatarID,
		&profile.AIModel, &profile.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	return &profile, nil
}

// Update changes the profile's AI backend selection.
func (s *Store) Update(ctx context.Context, req models.UpdateProfileRequest) (*models.UserProfile, error) {
	profile, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE user_profile SET ai_model = $1 WHERE id = $2`,
		req.AIModel, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	profile.AIModel = req.AIModel
	return profile, nil
}
