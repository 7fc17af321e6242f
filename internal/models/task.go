package models

import "time"

type TaskType string

const (
	TaskTypeCharacter TaskType = "character"
	TaskTypeWord      TaskType = "word"
	TaskTypePhrase    TaskType = "phrase"
)

var ValidTaskTypes = map[TaskType]bool{
	TaskTypeCharacter: true,
	TaskTypeWord:      true,
	TaskTypePhrase:    true,
}

type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
)

// TaskDetails is type-dependent: stroke and repetition counts for character
// and word tasks, a sentence-writing prompt for phrase tasks.
type TaskDetails struct {
	Strokes     int    `json:"strokes,omitempty"`
	Repetitions int    `json:"repetitions,omitempty"`
	Sentence    string `json:"sentence,omitempty"`
}

// DailyTask is one writing/vocabulary task. Tasks are created in batches of
// exactly three per calendar day; Date carries day granularity only.
type DailyTask struct {
	ID          string      `json:"id"`
	Date        time.Time   `json:"date"`
	Content     string      `json:"content"`
	Type        TaskType    `json:"type"`
	Details     TaskDetails `json:"details"`
	Status      TaskStatus  `json:"status"`
	Reward      int         `json:"reward"`
	CompletedAt *time.Time  `json:"completed_at"`
	CreatedAt   time.Time   `json:"created_at"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
