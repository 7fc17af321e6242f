package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/hanzi-quest/backend/internal/database"
	"github.com/hanzi-quest/backend/internal/fallback"
	"github.com/hanzi-quest/backend/internal/generator"
	"github.com/hanzi-quest/backend/internal/ledger"
	"github.com/hanzi-quest/backend/internal/profile"
	"github.com/hanzi-quest/backend/internal/strokes"
	"github.com/hanzi-quest/backend/internal/tasks"
	"github.com/rs/cors"
)

func main() {
	// Initialize database
	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Wire services bottom-up: strokes → fallback, generator → tasks.
	lookup := strokes.NewLookup()
	content := fallback.NewProvider(nil, lookup)
	gateway := generator.NewGateway()

	profileStore := profile.NewStore(db)
	ledgerService := ledger.NewService(ledger.NewStore(db), ledger.NewExchanges(db), ledger.SigningKey())
	taskService := tasks.NewService(tasks.NewStore(db), profileStore, ledgerService, gateway, content)

	profileHandler := profile.NewHandler(profileStore)
	taskHandler := tasks.NewHandler(taskService, profileStore)
	ledgerHandler := ledger.NewHandler(ledgerService)

	// Missed settlements forfeit the week's coins; sweep hourly.
	ledgerService.StartForfeitureSweeper(context.Background(), time.Hour)

	// Setup router
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/profile", profileHandler.Create).Methods("POST")
	api.HandleFunc("/profile", profileHandler.Get).Methods("GET")
	api.HandleFunc("/profile", profileHandler.Update).Methods("PUT")

	api.HandleFunc("/tasks/generate", taskHandler.GenerateDailyTasks).Methods("POST")
	api.HandleFunc("/tasks/today", taskHandler.TodaysTasks).Methods("GET")
	api.HandleFunc("/tasks/pending", taskHandler.PendingTasks).Methods("GET")
	api.HandleFunc("/tasks/{id}", taskHandler.GetTask).Methods("GET")
	api.HandleFunc("/tasks/{id}/start", taskHandler.StartTask).Methods("POST")
	api.HandleFunc("/tasks/{id}/complete", taskHandler.CompleteTask).Methods("POST")

	api.HandleFunc("/ledger/current", ledgerHandler.CurrentWeek).Methods("GET")
	api.HandleFunc("/ledger/history", ledgerHandler.History).Methods("GET")
	api.HandleFunc("/ledger/payout", ledgerHandler.Payout).Methods("POST")
	api.HandleFunc("/ledger/total-settled", ledgerHandler.TotalSettled).Methods("GET")
	api.HandleFunc("/ledger/{weekId}/exchange/available", ledgerHandler.AvailableCoins).Methods("GET")
	api.HandleFunc("/ledger/{weekId}/exchange", ledgerHandler.RequestExchange).Methods("POST")
	api.HandleFunc("/ledger/{weekId}/exchanges", ledgerHandler.WeekExchanges).Methods("GET")
	api.HandleFunc("/exchanges/{id}/status", ledgerHandler.UpdateExchangeStatus).Methods("PUT")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-AI-API-Key"},
		AllowCredentials: true,
	})

	handler := c.Handler(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
