// Package tasks owns the daily generation pipeline and the task lifecycle.
// It blends AI-generated proposals with curated fallback content, enforces
// history-based deduplication, and credits the weekly ledger on completion.
package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/hanzi-quest/backend/internal/generator"
	"github.com/hanzi-quest/backend/internal/models"
)

const (
	dailyTaskCount        = 3
	maxGenerationAttempts = 3

	// historyPromptLimit caps the exclusion list embedded in the prompt.
	historyPromptLimit = 50

	// dedupWindowDays is how far back assigned content blocks a repeat.
	dedupWindowDays = 30

	// generationWaitTimeout bounds how long a second caller waits for an
	// in-flight generation run before giving up.
	generationWaitTimeout = 30 * time.Second
)

// TaskStore is the persistence surface the service needs.
type TaskStore interface {
	Insert(ctx context.Context, task *models.DailyTask) error
	GetByID(ctx context.Context, id string) (*models.DailyTask, error)
	UpdateStatus(ctx context.Context, id string, status models.TaskStatus, completedAt *time.Time) error
	Delete(ctx context.Context, id string) error
	ForDate(ctx context.Context, date time.Time) ([]models.DailyTask, error)
	Since(ctx context.Context, cutoff time.Time) ([]models.DailyTask, error)
	All(ctx context.Context) ([]models.DailyTask, error)
	Pending(ctx context.Context) ([]models.DailyTask, error)
	CompletedBetween(ctx context.Context, from, to time.Time) ([]models.DailyTask, error)
}

// ProfileStore supplies the single learner profile.
type ProfileStore interface {
	Get(ctx context.Context) (*models.UserProfile, error)
}

// RewardLedger receives the coin credit when a task completes.
type RewardLedger interface {
	AddReward(ctx context.Context, reward int, taskID string) error
}

// ContentGateway is the AI generation surface.
type ContentGateway interface {
	Generate(ctx context.Context, config generator.Config, req generator.Request) (*generator.Response, error)
}

// FallbackProvider supplies curated tasks when generation falls short.
type FallbackProvider interface {
	Tasks(ctx context.Context, date time.Time, grade int, used map[string]bool) []models.DailyTask
}

type Service struct {
	store    TaskStore
	profiles ProfileStore
	ledger   RewardLedger
	gateway  ContentGateway
	fallback FallbackProvider

	// genSlot serializes generation runs. A second caller blocks on the
	// slot until the in-flight run finishes, then reads the persisted set.
	genSlot chan struct{}

	now func() time.Time
}

func NewService(store TaskStore, profiles ProfileStore, ledger RewardLedger, gateway ContentGateway, fb FallbackProvider) *Service {
	return &Service{
		store:    store,
		profiles: profiles,
		ledger:   ledger,
		gateway:  gateway,
		fallback: fb,
		genSlot:  make(chan struct{}, 1),
		now:      time.Now,
	}
}

// dayOf truncates a timestamp to calendar-day granularity in UTC.
func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// CreateDailyTasks returns today's task set, generating it first if no tasks
// exist yet. Generation runs at most once per day; concurrent callers wait
// for the in-flight run and read its persisted result.
func (s *Service) CreateDailyTasks(ctx context.Context, config generator.Config) ([]models.DailyTask, error) {
	today := dayOf(s.now())

	existing, err := s.TodaysTasks(ctx)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return existing, nil
	}

	select {
	case s.genSlot <- struct{}{}:
		defer func() { <-s.genSlot }()
	case <-time.After(generationWaitTimeout):
		return nil, fmt.Errorf("timed out waiting for in-flight task generation")
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	// Another caller may have finished generating while we waited.
	existing, err = s.TodaysTasks(ctx)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return existing, nil
	}

	tasks, err := s.generate(ctx, config, today)
	if err != nil {
		return nil, err
	}

	for i := range tasks {
		if err := s.store.Insert(ctx, &tasks[i]); err != nil {
			return nil, fmt.Errorf("persist task %s: %w", tasks[i].ID, err)
		}
	}
	return tasks, nil
}

// generate runs the retry/dedup/fallback pipeline for one day.
func (s *Service) generate(ctx context.Context, config generator.Config, today time.Time) ([]models.DailyTask, error) {
	profile, err := s.profiles.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	grade := models.LearningGrade(profile.Age)

	allTasks, err := s.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load task history: %w", err)
	}

	history := make(map[string]bool, len(allTasks))
	orderedHistory := make([]string, 0, len(allTasks))
	recent := make(map[string]bool)
	recentCutoff := today.AddDate(0, 0, -dedupWindowDays)
	for _, t := range allTasks {
		if !history[t.Content] {
			orderedHistory = append(orderedHistory, t.Content)
		}
		history[t.Content] = true
		if !t.Date.Before(recentCutoff) {
			recent[t.Content] = true
		}
	}

	accepted := make([]models.DailyTask, 0, dailyTaskCount)
	acceptedContent := make(map[string]bool)

	var lastErr error
	for attempt := 1; attempt <= maxGenerationAttempts && len(accepted) < dailyTaskCount; attempt++ {
		req := generator.Request{
			UserAge:          profile.Age,
			Grade:            grade,
			PreviousContents: exclusionList(orderedHistory, acceptedContent),
		}

		resp, err := s.gateway.Generate(ctx, config, req)
		if err != nil {
			lastErr = err
			log.Printf("[tasks] generation attempt %d failed: %v", attempt, err)
			continue
		}

		for _, gen := range resp.Tasks {
			if len(accepted) >= dailyTaskCount {
				break
			}
			if recent[gen.Content] || acceptedContent[gen.Content] {
				continue
			}
			accepted = append(accepted, models.DailyTask{
				ID:        uuid.New().String(),
				Date:      today,
				Content:   gen.Content,
				Type:      gen.Type,
				Details:   gen.Details,
				Status:    models.TaskPending,
				Reward:    gen.Reward,
				CreatedAt: s.now(),
			})
			acceptedContent[gen.Content] = true
		}
	}

	if len(accepted) < dailyTaskCount {
		log.Printf("[tasks] WARN: %d/%d tasks after generation, topping up from curated content",
			len(accepted), dailyTaskCount)
		for _, fb := range s.fallback.Tasks(ctx, today, grade, history) {
			if len(accepted) >= dailyTaskCount {
				break
			}
			if acceptedContent[fb.Content] {
				continue
			}
			fb.CreatedAt = s.now()
			accepted = append(accepted, fb)
			acceptedContent[fb.Content] = true
		}
	}

	if len(accepted) == 0 {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, fmt.Errorf("no tasks could be generated")
	}
	if len(accepted) > dailyTaskCount {
		accepted = accepted[:dailyTaskCount]
	}
	return accepted, nil
}

// exclusionList caps the assignment history at its most recent entries and
// then appends the in-loop acceptances, so the prompt stays bounded without
// an acceptance ever evicting a recent history entry.
func exclusionList(orderedHistory []string, accepted map[string]bool) []string {
	if len(orderedHistory) > historyPromptLimit {
		orderedHistory = orderedHistory[len(orderedHistory)-historyPromptLimit:]
	}
	list := make([]string, 0, len(orderedHistory)+len(accepted))
	list = append(list, orderedHistory...)
	for content := range accepted {
		list = append(list, content)
	}
	return list
}

// TodaysTasks returns today's set, trimming any excess beyond the daily
// count (keeps the first three by creation order, deletes the rest).
func (s *Service) TodaysTasks(ctx context.Context) ([]models.DailyTask, error) {
	today := dayOf(s.now())
	tasks, err := s.store.ForDate(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("load today's tasks: %w", err)
	}

	if len(tasks) > dailyTaskCount {
		log.Printf("[tasks] WARN: %d tasks found for today, trimming to %d", len(tasks), dailyTaskCount)
		for _, excess := range tasks[dailyTaskCount:] {
			if err := s.store.Delete(ctx, excess.ID); err != nil {
				log.Printf("[tasks] failed to delete excess task %s: %v", excess.ID, err)
			}
		}
		tasks = tasks[:dailyTaskCount]
	}
	return tasks, nil
}

// TaskByID loads a single task.
func (s *Service) TaskByID(ctx context.Context, id string) (*models.DailyTask, error) {
	return s.store.GetByID(ctx, id)
}

// PendingTasks lists all tasks still awaiting work, any date.
func (s *Service) PendingTasks(ctx context.Context) ([]models.DailyTask, error) {
	return s.store.Pending(ctx)
}

// CompletedTasksForWeek lists tasks completed within the week starting at
// weekStart (inclusive, seven days).
func (s *Service) CompletedTasksForWeek(ctx context.Context, weekStart time.Time) ([]models.DailyTask, error) {
	start := dayOf(weekStart)
	return s.store.CompletedBetween(ctx, start, start.AddDate(0, 0, 7))
}

// StartTask moves a pending task to in_progress. Starting a task in any
// other state is a no-op returning the current record.
func (s *Service) StartTask(ctx context.Context, id string) (*models.DailyTask, error) {
	task, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.Status != models.TaskPending {
		return task, nil
	}

	if err := s.store.UpdateStatus(ctx, id, models.TaskInProgress, nil); err != nil {
		return nil, fmt.Errorf("start task %s: %w", id, err)
	}
	task.Status = models.TaskInProgress
	return task, nil
}

// CompleteTask finishes a task and credits its reward to the weekly ledger.
// Completing an already-completed task is a no-op; the ledger is credited
// exactly once per task.
func (s *Service) CompleteTask(ctx context.Context, id string) (*models.DailyTask, error) {
	task, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.Status == models.TaskCompleted {
		return task, nil
	}

	completedAt := s.now()
	if err := s.store.UpdateStatus(ctx, id, models.TaskCompleted, &completedAt); err != nil {
		return nil, fmt.Errorf("complete task %s: %w", id, err)
	}
	task.Status = models.TaskCompleted
	task.CompletedAt = &completedAt

	// The completion already happened, but a failed credit is an integrity
	// fault the caller must see: re-completion is a no-op, so a swallowed
	// error here would lose the reward for good.
	if err := s.ledger.AddReward(ctx, task.Reward, task.ID); err != nil {
		return task, fmt.Errorf("credit %d coins for task %s: %w", task.Reward, task.ID, err)
	}
	return task, nil
}
