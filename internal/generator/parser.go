package generator

import (
	"encoding/json"
	"log"
	"strings"

	"github.com/hanzi-quest/backend/internal/models"
)

// GeneratedTask is one task proposal from a provider, pre-persistence.
type GeneratedTask struct {
	Content string             `json:"content"`
	Type    models.TaskType    `json:"type"`
	Details models.TaskDetails `json:"details"`
	Reward  int                `json:"reward"`
}

// Response is the structured payload every provider must produce.
type Response struct {
	Tasks []GeneratedTask `json:"tasks"`
}

// ParseResponse extracts the first JSON object embedded in free-form model
// output and validates its shape. Providers routinely wrap the payload in
// prose or code fences, so the parser never assumes clean JSON.
func ParseResponse(text string) (*Response, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		log.Printf("[generator] no JSON object in response (%d bytes)", len(text))
		return nil, newError(ErrInvalidResponse, "no JSON object in model output", nil)
	}

	var resp Response
	if err := json.Unmarshal([]byte(text[start:end+1]), &resp); err != nil {
		log.Printf("[generator] WARN: unparseable model output: %v", err)
		return nil, newError(ErrInvalidResponse, "model output is not valid JSON", err)
	}

	if len(resp.Tasks) == 0 {
		return nil, newError(ErrInvalidResponse, "model output has no tasks array", nil)
	}

	for i, task := range resp.Tasks {
		if strings.TrimSpace(task.Content) == "" {
			return nil, newError(ErrInvalidResponse, "task has empty content", nil)
		}
		if !models.ValidTaskTypes[task.Type] {
			return nil, newError(ErrInvalidResponse,
				"task "+task.Content+" has unknown type "+string(task.Type), nil)
		}
		resp.Tasks[i].Content = strings.TrimSpace(task.Content)
	}

	return &resp, nil
}
