package tasks

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"

	"github.com/gorilla/mux"
	"github.com/hanzi-quest/backend/internal/generator"
	"github.com/hanzi-quest/backend/internal/models"
)

type Handler struct {
	service  *Service
	profiles ProfileStore
}

func NewHandler(service *Service, profiles ProfileStore) *Handler {
	return &Handler{service: service, profiles: profiles}
}

// gatewayConfig assembles AI credentials for a request: the model comes from
// the stored profile, the key from the X-AI-API-Key header or AI_API_KEY env.
func (h *Handler) gatewayConfig(r *http.Request) (generator.Config, error) {
	profile, err := h.profiles.Get(r.Context())
	if err != nil {
		return generator.Config{}, err
	}

	key := strings.TrimSpace(r.Header.Get("X-AI-API-Key"))
	if key == "" {
		key = os.Getenv("AI_API_KEY")
	}
	return generator.Config{Model: profile.AIModel, APIKey: key}, nil
}

func (h *Handler) GenerateDailyTasks(w http.ResponseWriter, r *http.Request) {
	config, err := h.gatewayConfig(r)
	if err != nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Profile not found, create one first"})
		return
	}

	tasks, err := h.service.CreateDailyTasks(r.Context(), config)
	if err != nil {
		writeGenerationError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

func (h *Handler) TodaysTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.service.TodaysTasks(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load today's tasks"})
		return
	}
	if tasks == nil {
		tasks = []models.DailyTask{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

func (h *Handler) PendingTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.service.PendingTasks(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load pending tasks"})
		return
	}
	if tasks == nil {
		tasks = []models.DailyTask{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	task, err := h.service.TaskByID(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *Handler) StartTask(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	task, err := h.service.StartTask(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *Handler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	task, err := h.service.CompleteTask(r.Context(), id)
	if err != nil {
		// A non-nil task means the completion stuck but the ledger credit
		// failed, which is a server fault rather than a bad id.
		status := http.StatusNotFound
		if task != nil {
			status = http.StatusInternalServerError
		}
		writeJSON(w, status, models.ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// writeGenerationError maps classified gateway failures onto HTTP statuses.
func writeGenerationError(w http.ResponseWriter, err error) {
	resp := models.ErrorResponse{Error: err.Error()}
	status := http.StatusInternalServerError

	switch {
	case generator.IsType(err, generator.ErrAuth):
		status = http.StatusUnauthorized
		resp.Code = string(generator.ErrAuth)
	case generator.IsType(err, generator.ErrRateLimit):
		status = http.StatusTooManyRequests
		resp.Code = string(generator.ErrRateLimit)
	case generator.IsType(err, generator.ErrNetwork):
		status = http.StatusBadGateway
		resp.Code = string(generator.ErrNetwork)
	case generator.IsType(err, generator.ErrInvalidResponse):
		status = http.StatusBadGateway
		resp.Code = string(generator.ErrInvalidResponse)
	case generator.IsType(err, generator.ErrUnknown):
		resp.Code = string(generator.ErrUnknown)
	}

	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
