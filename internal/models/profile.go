package models

import "time"

type AIModel string

const (
	AIModelGemini AIModel = "gemini"
	AIModelOpenAI AIModel = "openai"
	AIModelClaude AIModel = "claude"
)

var ValidAIModels = map[AIModel]bool{
	AIModelGemini: true,
	AIModelOpenAI: true,
	AIModelClaude: true,
}

// AdvancedGrade is the grade-6-plus tier with rare-character content.
const AdvancedGrade = 7

// UserProfile is the single learner profile for a deployment.
type UserProfile struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Age       int       `json:"age"`
	AvatarID  string    `json:"avatar_id"`
	AIModel   AIModel   `json:"ai_model"`
	CreatedAt time.Time `json:"created_at"`
}

// DisplayGrade maps age to the nominal school grade: 6 → 1, 8 → 2, ...,
// clamped to [1, 6].
func DisplayGrade(age int) int {
	grade := age - 6
	if grade < 1 {
		return 1
	}
	if grade > 6 {
		return 6
	}
	return grade
}

// LearningGrade is one grade ahead of the display grade — the system always
// teaches ahead of the learner's nominal level. Grade 7 is AdvancedGrade.
func LearningGrade(age int) int {
	grade := DisplayGrade(age) + 1
	if grade > AdvancedGrade {
		return AdvancedGrade
	}
	return grade
}

type ProfileResponse struct {
	Profile       UserProfile `json:"profile"`
	DisplayGrade  int         `json:"display_grade"`
	LearningGrade int         `json:"learning_grade"`
}

type CreateProfileRequest struct {
	Name     string  `json:"name"`
	Age      int     `json:"age"`
	AvatarID string  `json:"avatar_id"`
	AIModel  AIModel `json:"ai_model"`
}

type UpdateProfileRequest struct {
	AIModel AIModel `json:"ai_model"`
}
