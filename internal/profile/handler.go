package profile

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/hanzi-quest/backend/internal/models"
)

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	profile, err := h.store.Get(r.Context())
	if err != nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, profileResponse(profile))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "name is required"})
		return
	}
	if req.Age < 3 || req.Age > 18 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "age must be between 3 and 18"})
		return
	}
	if req.AIModel == "" {
		req.AIModel = models.AIModelGemini
	}
	if !models.ValidAIModels[req.AIModel] {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "ai_model must be gemini, openai, or claude"})
		return
	}

	profile, err := h.store.Create(r.Context(), req)
	if err != nil {
		writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, profileResponse(profile))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if !models.ValidAIModels[req.AIModel] {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "ai_model must be gemini, openai, or claude"})
		return
	}

	profile, err := h.store.Update(r.Context(), req)
	if err != nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, profileResponse(profile))
}

func profileResponse(profile *models.UserProfile) models.ProfileResponse {
	return models.ProfileResponse{
		Profile:       *profile,
		DisplayGrade:  models.DisplayGrade(profile.Age),
		LearningGrade: models.LearningGrade(profile.Age),
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
