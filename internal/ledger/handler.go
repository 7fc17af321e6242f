package ledger

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/hanzi-quest/backend/internal/models"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) CurrentWeek(w http.ResponseWriter, r *http.Request) {
	ledger, err := h.service.CurrentWeekLedger(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load current week"})
		return
	}
	writeJSON(w, http.StatusOK, ledger)
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	ledgers, err := h.service.History(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load ledger history"})
		return
	}
	if ledgers == nil {
		ledgers = []models.WeeklyLedger{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ledgers": ledgers})
}

func (h *Handler) Payout(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.PerformWeeklyPayout(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Payout failed"})
		return
	}
	// Precondition failures ride back as success:false, still 200.
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) TotalSettled(w http.ResponseWriter, r *http.Request) {
	total, err := h.service.TotalSettled(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to compute settled total"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"total_settled": total})
}

func (h *Handler) AvailableCoins(w http.ResponseWriter, r *http.Request) {
	weekID := mux.Vars(r)["weekId"]
	available, err := h.service.AvailableCoins(r.Context(), weekID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"week_id": weekID, "available": available})
}

func (h *Handler) RequestExchange(w http.ResponseWriter, r *http.Request) {
	weekID := mux.Vars(r)["weekId"]

	var req models.ExchangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	result, err := h.service.RequestExchange(r.Context(), weekID, req.Coins)
	if err != nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) WeekExchanges(w http.ResponseWriter, r *http.Request) {
	weekID := mux.Vars(r)["weekId"]
	exchanges, err := h.service.ExchangesForWeek(r.Context(), weekID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load exchanges"})
		return
	}
	if exchanges == nil {
		exchanges = []models.CoinExchange{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"exchanges": exchanges})
}

func (h *Handler) UpdateExchangeStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req models.UpdateExchangeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	exchange, err := h.service.UpdateExchangeStatus(r.Context(), id, req.Status, req.Notes)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, exchange)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
