package tasks

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hanzi-quest/backend/internal/models"
)

// Store is the Postgres-backed TaskStore.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const taskColumns = `id, task_date, content, task_type, strokes, repetitions, sentence,
	status, reward, completed_at, created_at`

func (s *Store) Insert(ctx context.Context, task *models.DailyTask) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO daily_tasks (id, task_date, content, task_type, strokes, repetitions, sentence, status, reward, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		task.ID, task.Date, task.Content, task.Type,
		nullInt(task.Details.Strokes), nullInt(task.Details.Repetitions), nullString(task.Details.Sentence),
		task.Status, task.Reward, task.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*models.DailyTask, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM daily_tasks WHERE id = $1`, id)
	task, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("task %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return task, nil
}

func (s *Store) UpdateStatus(ctx context.Context, id string, status models.TaskStatus, completedAt *time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE daily_tasks SET status = $1, completed_at = $2 WHERE id = $3`,
		status, completedAt, id,
	)
	if err != nil {
		return fmt.Errorf("update task status: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM daily_tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

func (s *Store) ForDate(ctx context.Context, date time.Time) ([]models.DailyTask, error) {
	return s.queryTasks(ctx,
		`SELECT `+taskColumns+` FROM daily_tasks WHERE task_date = $1 ORDER BY created_at`, date)
}

func (s *Store) Since(ctx context.Context, cutoff time.Time) ([]models.DailyTask, error) {
	return s.queryTasks(ctx,
		`SELECT `+taskColumns+` FROM daily_tasks WHERE task_date >= $1 ORDER BY created_at`, cutoff)
}

func (s *Store) All(ctx context.Context) ([]models.DailyTask, error) {
	return s.queryTasks(ctx,
		`SELECT `+taskColumns+` FROM daily_tasks ORDER BY created_at`)
}

func (s *Store) Pending(ctx context.Context) ([]models.DailyTask, error) {
	return s.queryTasks(ctx,
		`SELECT `+taskColumns+` FROM daily_tasks WHERE status = $1 ORDER BY created_at`,
		models.TaskPending)
}

func (s *Store) CompletedBetween(ctx context.Context, from, to time.Time) ([]models.DailyTask, error) {
	return s.queryTasks(ctx,
		`SELECT `+taskColumns+` FROM daily_tasks
		 WHERE status = $1 AND completed_at >= $2 AND completed_at < $3
		 ORDER BY completed_at`,
		models.TaskCompleted, from, to)
}

func (s *Store) queryTasks(ctx context.Context, query string, args ...any) ([]models.DailyTask, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.DailyTask
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.DailyTask, error) {
	var (
		task        models.DailyTask
		strokes     sql.NullInt64
		repetitions sql.NullInt64
		sentence    sql.NullString
	)
	err := row.Scan(&task.ID, &task.Date, &task.Content, &task.Type,
		&strokes, &repetitions, &sentence,
		&task.Status, &task.Reward, &task.CompletedAt, &task.CreatedAt)
	if err != nil {
		return nil, err
	}
	task.Details = models.TaskDetails{
		Strokes:     int(strokes.Int64),
		Repetitions: int(repetitions.Int64),
		Sentence:    sentence.String,
	}
	return &task, nil
}

func nullInt(v int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(v), Valid: v != 0}
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}
