// Package ledger buckets task rewards into Monday-started weeks, settles
// them through a time-gated payout, and tracks coin-to-NTD exchange requests
// against settled weeks.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/hanzi-quest/backend/internal/models"
)

const (
	// ExchangeRate is coins per NTD.
	ExchangeRate = 10

	// MinExchangeCoins is the smallest exchange request the ledger accepts.
	MinExchangeCoins = 10
)

// LedgerStore persists weekly ledgers.
type LedgerStore interface {
	Get(ctx context.Context, weekID string) (*models.WeeklyLedger, error)
	Insert(ctx context.Context, ledger *models.WeeklyLedger) error
	AddReward(ctx context.Context, weekID string, reward int, taskID string) error
	SetStatus(ctx context.Context, weekID string, status models.LedgerStatus) error
	Forfeit(ctx context.Context, weekID string) error
	All(ctx context.Context) ([]models.WeeklyLedger, error)
}

// ExchangeStore persists coin-exchange records.
type ExchangeStore interface {
	Insert(ctx context.Context, exchange *models.CoinExchange) error
	Get(ctx context.Context, id string) (*models.CoinExchange, error)
	ForWeek(ctx context.Context, weekID string) ([]models.CoinExchange, error)
	UpdateStatus(ctx context.Context, id string, status models.ExchangeStatus, processedAt *time.Time, notes *string) error
}

type Service struct {
	store     LedgerStore
	exchanges ExchangeStore

	payoutDay  time.Weekday
	payoutHour int
	signingKey []byte

	now func() time.Time
}

func NewService(store LedgerStore, exchanges ExchangeStore, signingKey []byte) *Service {
	return &Service{
		store:      store,
		exchanges:  exchanges,
		payoutDay:  time.Sunday,
		payoutHour: 20,
		signingKey: signingKey,
		now:        time.Now,
	}
}

// CurrentWeekLedger returns this week's ledger, creating it on first touch.
// Each call also opportunistically forfeits any stale active ledgers so a
// missed settlement is noticed even without the background sweeper.
func (s *Service) CurrentWeekLedger(ctx context.Context) (*models.WeeklyLedger, error) {
	if err := s.SweepMissedPayouts(ctx); err != nil {
		log.Printf("[ledger] WARN: forfeiture sweep failed: %v", err)
	}

	now := s.now()
	weekID := WeekID(now)

	ledger, err := s.store.Get(ctx, weekID)
	if err == nil {
		return ledger, nil
	}

	ledger = &models.WeeklyLedger{
		ID:               weekID,
		StartDate:        WeekStart(now),
		TotalEarned:      0,
		Status:           models.LedgerActive,
		CompletedTaskIDs: []string{},
		CreatedAt:        now,
	}
	if err := s.store.Insert(ctx, ledger); err != nil {
		return nil, fmt.Errorf("create ledger %s: %w", weekID, err)
	}
	log.Printf("[ledger] opened week %s starting %s", weekID, ledger.StartDate.Format("2006-01-02"))
	return ledger, nil
}

// AddReward credits coins for a completed task into the current week.
func (s *Service) AddReward(ctx context.Context, reward int, taskID string) error {
	ledger, err := s.CurrentWeekLedger(ctx)
	if err != nil {
		return err
	}
	if err := s.store.AddReward(ctx, ledger.ID, reward, taskID); err != nil {
		return fmt.Errorf("credit %d coins to %s: %w", reward, ledger.ID, err)
	}
	return nil
}

// CurrentWeekTotal is the running coin total for this week.
func (s *Service) CurrentWeekTotal(ctx context.Context) (int, error) {
	ledger, err := s.CurrentWeekLedger(ctx)
	if err != nil {
		return 0, err
	}
	return ledger.TotalEarned, nil
}

// inPayoutWindow reports whether the settlement gate is open.
func (s *Service) inPayoutWindow(now time.Time) bool {
	return now.Weekday() == s.payoutDay && now.Hour() >= s.payoutHour
}

// PerformWeeklyPayout settles the current week. Being outside the window or
// already settled are expected outcomes, returned as Success=false with a
// reason rather than as errors. A successful payout carries a settlement
// summary and a signed certificate token.
func (s *Service) PerformWeeklyPayout(ctx context.Context) (*models.PayoutResult, error) {
	ledger, err := s.CurrentWeekLedger(ctx)
	if err != nil {
		return nil, err
	}

	if ledger.Status != models.LedgerActive {
		return &models.PayoutResult{
			Success: false,
			Reason:  "week already settled",
		}, nil
	}

	now := s.now()
	if !s.inPayoutWindow(now) {
		return &models.PayoutResult{
			Success: false,
			Reason: fmt.Sprintf("payout opens %s %02d:00",
				s.payoutDay, s.payoutHour),
		}, nil
	}

	if err := s.store.SetStatus(ctx, ledger.ID, models.LedgerPaidOut); err != nil {
		return nil, fmt.Errorf("settle week %s: %w", ledger.ID, err)
	}

	cert := &models.PayoutCertificate{
		WeekID:         ledger.ID,
		StartDate:      ledger.StartDate,
		EndDate:        WeekEnd(ledger.StartDate),
		TotalEarned:    ledger.TotalEarned,
		CompletedTasks: len(ledger.CompletedTaskIDs),
		GeneratedAt:    now,
	}

	token, err := signCertificate(s.signingKey, cert)
	if err != nil {
		// The settlement already happened; a missing token is not worth
		// unwinding it.
		log.Printf("[ledger] WARN: could not sign certificate for %s: %v", ledger.ID, err)
	}

	log.Printf("[ledger] settled week %s: %d coins across %d tasks",
		ledger.ID, ledger.TotalEarned, len(ledger.CompletedTaskIDs))

	return &models.PayoutResult{
		Success:          true,
		TotalPaid:        ledger.TotalEarned,
		Certificate:      cert,
		CertificateToken: token,
	}, nil
}

// History returns all ledgers, newest first.
func (s *Service) History(ctx context.Context) ([]models.WeeklyLedger, error) {
	return s.store.All(ctx)
}

// TotalSettled sums coins across all paid-out weeks.
func (s *Service) TotalSettled(ctx context.Context) (int, error) {
	ledgers, err := s.store.All(ctx)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, l := range ledgers {
		if l.Status == models.LedgerPaidOut {
			total += l.TotalEarned
		}
	}
	return total, nil
}

// AvailableCoins is what a settled week still has left to exchange: its
// total minus every non-rejected exchange already recorded against it.
func (s *Service) AvailableCoins(ctx context.Context, weekID string) (int, error) {
	ledger, err := s.store.Get(ctx, weekID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("week %s not found", weekID)
		}
		return 0, fmt.Errorf("load week %s: %w", weekID, err)
	}

	exchanges, err := s.exchanges.ForWeek(ctx, weekID)
	if err != nil {
		return 0, fmt.Errorf("load exchanges for %s: %w", weekID, err)
	}

	available := ledger.TotalEarned
	for _, ex := range exchanges {
		if ex.Status != models.ExchangeRejected {
			available -= ex.CoinsExchanged
		}
	}
	return available, nil
}

// RequestExchange records a pending coin-to-NTD exchange against a settled
// week. Validation failures come back as Success=false results.
func (s *Service) RequestExchange(ctx context.Context, weekID string, coins int) (*models.ExchangeResult, error) {
	if coins < MinExchangeCoins {
		return &models.ExchangeResult{
			Success: false,
			Reason:  fmt.Sprintf("minimum exchange is %d coins", MinExchangeCoins),
		}, nil
	}

	ledger, err := s.store.Get(ctx, weekID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("week %s not found", weekID)
		}
		return nil, fmt.Errorf("load week %s: %w", weekID, err)
	}
	if ledger.Status != models.LedgerPaidOut {
		return &models.ExchangeResult{
			Success: false,
			Reason:  "week is not settled yet",
		}, nil
	}

	available, err := s.AvailableCoins(ctx, weekID)
	if err != nil {
		return nil, err
	}
	if coins > available {
		return &models.ExchangeResult{
			Success: false,
			Reason:  fmt.Sprintf("only %d coins available for exchange", available),
		}, nil
	}

	exchange := &models.CoinExchange{
		ID:             uuid.New().String(),
		WeekID:         weekID,
		CoinsExchanged: coins,
		NTDAmount:      coins / ExchangeRate,
		ExchangeRate:   ExchangeRate,
		Status:         models.ExchangePending,
		RequestedAt:    s.now(),
	}
	if err := s.exchanges.Insert(ctx, exchange); err != nil {
		return nil, fmt.Errorf("record exchange: %w", err)
	}

	log.Printf("[ledger] exchange requested: %d coins → %d NTD against %s",
		coins, exchange.NTDAmount, weekID)
	return &models.ExchangeResult{Success: true, Exchange: exchange}, nil
}

// ExchangesForWeek lists all exchange records against a week.
func (s *Service) ExchangesForWeek(ctx context.Context, weekID string) ([]models.CoinExchange, error) {
	return s.exchanges.ForWeek(ctx, weekID)
}

// UpdateExchangeStatus applies an external actor's decision to an exchange
// record. Deliberately permissive: the record must exist and the status must
// be a known value, nothing more — approval is a human action outside this
// system.
func (s *Service) UpdateExchangeStatus(ctx context.Context, id string, status models.ExchangeStatus, notes *string) (*models.CoinExchange, error) {
	if !models.ValidExchangeStatuses[status] {
		return nil, fmt.Errorf("unknown exchange status %q", status)
	}

	exchange, err := s.exchanges.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("exchange %s not found", id)
	}

	var processedAt *time.Time
	if status != models.ExchangePending {
		t := s.now()
		processedAt = &t
	}

	if err := s.exchanges.UpdateStatus(ctx, id, status, processedAt, notes); err != nil {
		return nil, fmt.Errorf("update exchange %s: %w", id, err)
	}

	exchange.Status = status
	exchange.ProcessedAt = processedAt
	if notes != nil {
		exchange.Notes = notes
	}
	return exchange, nil
}

// SweepMissedPayouts forfeits every active ledger whose week has fully
// elapsed: status flips to paid_out with the total zeroed. Best effort, safe
// to call from any read path.
func (s *Service) SweepMissedPayouts(ctx context.Context) error {
	ledgers, err := s.store.All(ctx)
	if err != nil {
		return err
	}

	now := s.now()
	for _, l := range ledgers {
		if l.Status != models.LedgerActive {
			continue
		}
		if !now.After(l.StartDate.AddDate(0, 0, 7)) {
			continue
		}
		if err := s.store.Forfeit(ctx, l.ID); err != nil {
			log.Printf("[ledger] WARN: failed to forfeit %s: %v", l.ID, err)
			continue
		}
		log.Printf("[ledger] forfeited week %s: settlement window missed, %d coins lost",
			l.ID, l.TotalEarned)
	}
	return nil
}

// StartForfeitureSweeper runs the missed-payout sweep on an interval until
// the context is cancelled.
func (s *Service) StartForfeitureSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.SweepMissedPayouts(ctx); err != nil {
					log.Printf("[ledger] WARN: scheduled sweep failed: %v", err)
				}
			}
		}
	}()
}
