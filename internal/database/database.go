package database

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq"
)

func Connect() (*sql.DB, error) {
	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "hanzi_user")
	password := getEnv("DB_PASSWORD", "hanzi_password")
	dbname := getEnv("DB_NAME", "hanzi_quest")
	sslmode := getEnv("DB_SSLMODE", "disable")

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Single-learner deployment — a small pool is plenty.
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)

	return db, nil
}

func Migrate(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS user_profile (
		id         BIGSERIAL PRIMARY KEY,
		name       VARCHAR(100) NOT NULL,
		age        INT NOT NULL CHECK (age >= 3 AND age <= 18),
		avatar_id  VARCHAR(50) NOT NULL DEFAULT '',
		ai_model   VARCHAR(20) NOT NULL DEFAULT 'gemini',
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS daily_tasks (
		id           VARCHAR(36) PRIMARY KEY,
		task_date    DATE NOT NULL,
		content      TEXT NOT NULL,
		task_type    VARCHAR(20) NOT NULL,
		strokes      INT,
		repetitions  INT,
		sentence     TEXT,
		status       VARCHAR(20) NOT NULL DEFAULT 'pending',
		reward       INT NOT NULL,
		completed_at TIMESTAMP WITH TIME ZONE,
		created_at   TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_date ON daily_tasks(task_date);
	CREATE INDEX IF NOT EXISTS idx_tasks_status ON daily_tasks(status);
	CREATE INDEX IF NOT EXISTS idx_tasks_date_created ON daily_tasks(task_date, created_at);

	CREATE TABLE IF NOT EXISTS weekly_ledgers (
		id                 VARCHAR(10) PRIMARY KEY,
		start_date         DATE NOT NULL,
		total_earned       INT NOT NULL DEFAULT 0,
		status             VARCHAR(20) NOT NULL DEFAULT 'active',
		completed_task_ids TEXT[] NOT NULL DEFAULT '{}',
		created_at         TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_ledgers_status ON weekly_ledgers(status);
	CREATE INDEX IF NOT EXISTS idx_ledgers_start ON weekly_ledgers(start_date DESC);

	CREATE TABLE IF NOT EXISTS coin_exchanges (
		id              VARCHAR(36) PRIMARY KEY,
		week_id         VARCHAR(10) NOT NULL REFERENCES weekly_ledgers(id),
		coins_exchanged INT NOT NULL CHECK (coins_exchanged >= 10),
		ntd_amount      INT NOT NULL,
		exchange_rate   INT NOT NULL DEFAULT 10,
		status          VARCHAR(20) NOT NULL DEFAULT 'pending',
		requested_at    TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		processed_at    TIMESTAMP WITH TIME ZONE,
		notes           TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_exchanges_week ON coin_exchanges(week_id, status);
	`

	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
