package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hanzi-quest/backend/internal/models"
	"github.com/lib/pq"
)

// Store is the Postgres-backed LedgerStore.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Get(ctx context.Context, weekID string) (*models.WeeklyLedger, error) {
	var ledger models.WeeklyLedger
	err := s.db.QueryRowContext(ctx,
		`SELECT id, start_date, total_earned, status, completed_task_ids, created_at
		 FROM weekly_ledgers WHERE id = $1`, weekID,
	).Scan(&ledger.ID, &ledger.StartDate, &ledger.TotalEarned, &ledger.Status,
		pq.Array(&ledger.CompletedTaskIDs), &ledger.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get ledger %s: %w", weekID, err)
	}
	return &ledger, nil
}

func (s *Store) Insert(ctx context.Context, ledger *models.WeeklyLedger) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO weekly_ledgers (id, start_date, total_earned, status, completed_task_ids, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO NOTHING`,
		ledger.ID, ledger.StartDate, ledger.TotalEarned, ledger.Status,
		pq.Array(ledger.CompletedTaskIDs), ledger.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ledger: %w", err)
	}
	return nil
}

// AddReward credits coins and appends the task id in one statement so
// concurrent completions cannot lose an update.
func (s *Store) AddReward(ctx context.Context, weekID string, reward int, taskID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE weekly_ledgers
		 SET total_earned = total_earned + $1,
		     completed_task_ids = array_append(completed_task_ids, $2)
		 WHERE id = $3`,
		reward, taskID, weekID,
	)
	if err != nil {
		return fmt.Errorf("add reward: %w", err)
	}
	return nil
}

func (s *Store) SetStatus(ctx context.Context, weekID string, status models.LedgerStatus) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE weekly_ledgers SET status = $1 WHERE id = $2`, status, weekID)
	if err != nil {
		return fmt.Errorf("set ledger status: %w", err)
	}
	return nil
}

func (s *Store) Forfeit(ctx context.Context, weekID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE weekly_ledgers SET status = $1, total_earned = 0 WHERE id = $2 AND status = $3`,
		models.LedgerPaidOut, weekID, models.LedgerActive)
	if err != nil {
		return fmt.Errorf("forfeit ledger: %w", err)
	}
	return nil
}

func (s *Store) All(ctx context.Context) ([]models.WeeklyLedger, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, start_date, total_earned, status, completed_task_ids, created_at
		 FROM weekly_ledgers ORDER BY start_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("list ledgers: %w", err)
	}
	defer rows.Close()

	var ledgers []models.WeeklyLedger
	for rows.Next() {
		var ledger models.WeeklyLedger
		if err := rows.Scan(&ledger.ID, &ledger.StartDate, &ledger.TotalEarned,
			&ledger.Status, pq.Array(&ledger.CompletedTaskIDs), &ledger.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ledger: %w", err)
		}
		ledgers = append(ledgers, ledger)
	}
	return ledgers, rows.Err()
}

// ── Exchange store ──────────────────────────────────────

// Exchanges is the Postgres-backed ExchangeStore.
type Exchanges struct {
	db *sql.DB
}

func NewExchanges(db *sql.DB) *Exchanges {
	return &Exchanges{db: db}
}

const exchangeColumns = `id, week_id, coins_exchanged, ntd_amount, exchange_rate,
	status, requested_at, processed_at, notes`

func (e *Exchanges) Insert(ctx context.Context, exchange *models.CoinExchange) error {
	_, err := e.db.ExecContext(ctx,
		`INSERT INTO coin_exchanges (id, week_id, coins_exchanged, ntd_amount, exchange_rate, status, requested_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		exchange.ID, exchange.WeekID, exchange.CoinsExchanged, exchange.NTDAmount,
		exchange.ExchangeRate, exchange.Status, exchange.RequestedAt,
	)
	if err != nil {
		return fmt.Errorf("insert exchange: %w", err)
	}
	return nil
}

func (e *Exchanges) Get(ctx context.Context, id string) (*models.CoinExchange, error) {
	var exchange models.CoinExchange
	err := e.db.QueryRowContext(ctx,
		`SELECT `+exchangeColumns+` FROM coin_exchanges WHERE id = $1`, id,
	).Scan(&exchange.ID, &exchange.WeekID, &exchange.CoinsExchanged, &exchange.NTDAmount,
		&exchange.ExchangeRate, &exchange.Status, &exchange.RequestedAt,
		&exchange.ProcessedAt, &exchange.Notes)
	if err != nil {
		return nil, fmt.Errorf("get exchange %s: %w", id, err)
	}
	return &exchange, nil
}

func (e *Exchanges) ForWeek(ctx context.Context, weekID string) ([]models.CoinExchange, error) {
	rows, err := e.db.QueryContext(ctx,
		`SELECT `+exchangeColumns+` FROM coin_exchanges WHERE week_id = $1 ORDER BY requested_at`,
		weekID)
	if err != nil {
		return nil, fmt.Errorf("list exchanges for %s: %w", weekID, err)
	}
	defer rows.Close()

	var exchanges []models.CoinExchange
	for rows.Next() {
		var exchange models.CoinExchange
		if err := rows.Scan(&exchange.ID, &exchange.WeekID, &exchange.CoinsExchanged,
			&exchange.NTDAmount, &exchange.ExchangeRate, &exchange.Status,
			&exchange.RequestedAt, &exchange.ProcessedAt, &exchange.Notes); err != nil {
			return nil, fmt.Errorf("scan exchange: %w", err)
		}
		exchanges = append(exchanges, exchange)
	}
	return exchanges, rows.Err()
}

func (e *Exchanges) UpdateStatus(ctx context.Context, id string, status models.ExchangeStatus, processedAt *time.Time, notes *string) error {
	_, err := e.db.ExecContext(ctx,
		`UPDATE coin_exchanges
		 SET status = $1, processed_at = $2, notes = COALESCE($3, notes)
		 WHERE id = $4`,
		status, processedAt, notes, id,
	)
	if err != nil {
		return fmt.Errorf("update exchange status: %w", err)
	}
	return nil
}
