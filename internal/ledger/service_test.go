package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/hanzi-quest/backend/internal/models"
)

// ── In-memory fakes ─────────────────────────────────────

type fakeLedgerStore struct {
	ledgers map[string]*models.WeeklyLedger
}

func newFakeLedgerStore() *fakeLedgerStore {
	return &fakeLedgerStore{ledgers: make(map[string]*models.WeeklyLedger)}
}

func (f *fakeLedgerStore) Get(ctx context.Context, weekID string) (*models.WeeklyLedger, error) {
	ledger, ok := f.ledgers[weekID]
	if !ok {
		return nil, fmt.Errorf("get ledger %s: %w", weekID, sql.ErrNoRows)
	}
	copied := *ledger
	return &copied, nil
}

func (f *fakeLedgerStore) Insert(ctx context.Context, ledger *models.WeeklyLedger) error {
	if _, exists := f.ledgers[ledger.ID]; exists {
		return nil
	}
	copied := *ledger
	f.ledgers[ledger.ID] = &copied
	return nil
}

func (f *fakeLedgerStore) AddReward(ctx context.Context, weekID string, reward int, taskID string) error {
	ledger, ok := f.ledgers[weekID]
	if !ok {
		return fmt.Errorf("ledger %s not found", weekID)
	}
	ledger.TotalEarned += reward
	ledger.CompletedTaskIDs = append(ledger.CompletedTaskIDs, taskID)
	return nil
}

func (f *fakeLedgerStore) SetStatus(ctx context.Context, weekID string, status models.LedgerStatus) error {
	ledger, ok := f.ledgers[weekID]
	if !ok {
		return fmt.Errorf("ledger %s not found", weekID)
	}
	ledger.Status = status
	return nil
}

func (f *fakeLedgerStore) Forfeit(ctx context.Context, weekID string) error {
	ledger, ok := f.ledgers[weekID]
	if !ok {
		return fmt.Errorf("ledger %s not found", weekID)
	}
	if ledger.Status == models.LedgerActive {
		ledger.Status = models.LedgerPaidOut
		ledger.TotalEarned = 0
	}
	return nil
}

func (f *fakeLedgerStore) All(ctx context.Context) ([]models.WeeklyLedger, error) {
	var out []models.WeeklyLedger
	for _, ledger := range f.ledgers {
		out = append(out, *ledger)
	}
	return out, nil
}

type fakeExchangeStore struct {
	exchanges map[string]*models.CoinExchange
}

func newFakeExchangeStore() *fakeExchangeStore {
	return &fakeExchangeStore{exchanges: make(map[string]*models.CoinExchange)}
}

func (f *fakeExchangeStore) Insert(ctx context.Context, exchange *models.CoinExchange) error {
	copied := *exchange
	f.exchanges[exchange.ID] = &copied
	return nil
}

func (f *fakeExchangeStore) Get(ctx context.Context, id string) (*models.CoinExchange, error) {
	exchange, ok := f.exchanges[id]
	if !ok {
		return nil, fmt.Errorf("exchange %s not found", id)
	}
	copied := *exchange
	return &copied, nil
}

func (f *fakeExchangeStore) ForWeek(ctx context.Context, weekID string) ([]models.CoinExchange, error) {
	var out []models.CoinExchange
	for _, exchange := range f.exchanges {
		if exchange.WeekID == weekID {
			out = append(out, *exchange)
		}
	}
	return out, nil
}

func (f *fakeExchangeStore) UpdateStatus(ctx context.Context, id string, status models.ExchangeStatus, processedAt *time.Time, notes *string) error {
	exchange, ok := f.exchanges[id]
	if !ok {
		return fmt.Errorf("exchange %s not found", id)
	}
	exchange.Status = status
	exchange.ProcessedAt = processedAt
	if notes != nil {
		exchange.Notes = notes
	}
	return nil
}

// ── Helpers ─────────────────────────────────────────────

var (
	// Wednesday within the test week.
	midweek = time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	// Sunday 20:30 of the same week — inside the payout window.
	payoutTime = time.Date(2026, 3, 8, 20, 30, 0, 0, time.UTC)
	// Sunday 19:59 — same day, before the gate opens.
	beforeGate = time.Date(2026, 3, 8, 19, 59, 0, 0, time.UTC)
)

func newTestService(store *fakeLedgerStore, exchanges *fakeExchangeStore, at time.Time) *Service {
	svc := NewService(store, exchanges, []byte("test-signing-key"))
	svc.now = func() time.Time { return at }
	return svc
}

func setClock(svc *Service, at time.Time) {
	svc.now = func() time.Time { return at }
}

// ── Tests ───────────────────────────────────────────────

func TestCurrentWeekLedger_LazyCreate(t *testing.T) {
	store := newFakeLedgerStore()
	svc := newTestService(store, newFakeExchangeStore(), midweek)

	ledger, err := svc.CurrentWeekLedger(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ledger.ID != "2026-W09" {
		t.Errorf("week id = %q, want 2026-W09", ledger.ID)
	}
	if !ledger.StartDate.Equal(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start date = %v, want the Monday", ledger.StartDate)
	}
	if ledger.Status != models.LedgerActive {
		t.Errorf("status = %q, want active", ledger.Status)
	}

	again, err := svc.CurrentWeekLedger(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again.ID != ledger.ID || len(store.ledgers) != 1 {
		t.Error("second call created a duplicate ledger")
	}
}

func TestAddReward_Accumulates(t *testing.T) {
	store := newFakeLedgerStore()
	svc := newTestService(store, newFakeExchangeStore(), midweek)

	for i, reward := range []int{5, 7, 3} {
		if err := svc.AddReward(context.Background(), reward, fmt.Sprintf("task-%d", i)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	total, err := svc.CurrentWeekTotal(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 15 {
		t.Errorf("total = %d, want 15", total)
	}

	ledger, _ := svc.CurrentWeekLedger(context.Background())
	if len(ledger.CompletedTaskIDs) != 3 {
		t.Errorf("completed task ids = %d, want 3", len(ledger.CompletedTaskIDs))
	}
}

func TestPerformWeeklyPayout_Gating(t *testing.T) {
	store := newFakeLedgerStore()
	svc := newTestService(store, newFakeExchangeStore(), midweek)
	svc.AddReward(context.Background(), 20, "task-1")

	// Midweek: window closed, no mutation.
	result, err := svc.PerformWeeklyPayout(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Success {
		t.Error("payout succeeded outside the window")
	}
	if ledger, _ := svc.CurrentWeekLedger(context.Background()); ledger.Status != models.LedgerActive {
		t.Error("failed payout mutated ledger status")
	}

	// Sunday before 20:00: still closed.
	setClock(svc, beforeGate)
	result, _ = svc.PerformWeeklyPayout(context.Background())
	if result.Success {
		t.Error("payout succeeded before the gate hour")
	}

	// Sunday 20:30: open.
	setClock(svc, payoutTime)
	result, err = svc.PerformWeeklyPayout(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success {
		t.Fatalf("payout failed inside the window: %s", result.Reason)
	}
	if result.TotalPaid != 20 {
		t.Errorf("total paid = %d, want 20", result.TotalPaid)
	}
	if result.Certificate == nil || result.Certificate.CompletedTasks != 1 {
		t.Error("payout missing its settlement summary")
	}
	if result.CertificateToken == "" {
		t.Error("payout missing its certificate token")
	}

	claims, err := VerifyCertificate([]byte("test-signing-key"), result.CertificateToken)
	if err != nil {
		t.Fatalf("certificate failed verification: %v", err)
	}
	if claims["week_id"] != "2026-W09" {
		t.Errorf("certificate week_id = %v, want 2026-W09", claims["week_id"])
	}

	// Second payout of the same week: already settled.
	result, _ = svc.PerformWeeklyPayout(context.Background())
	if result.Success {
		t.Error("settled week paid out twice")
	}
}

func TestRequestExchange_Validation(t *testing.T) {
	store := newFakeLedgerStore()
	exchanges := newFakeExchangeStore()
	svc := newTestService(store, exchanges, midweek)
	svc.AddReward(context.Background(), 50, "task-1")

	// Below minimum fails regardless of balance or status.
	result, err := svc.RequestExchange(context.Background(), "2026-W09", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Success {
		t.Error("exchange below minimum was accepted")
	}

	// Active (unsettled) week fails.
	result, _ = svc.RequestExchange(context.Background(), "2026-W09", 20)
	if result.Success {
		t.Error("exchange against an unsettled week was accepted")
	}

	// Settle, then exchange works.
	setClock(svc, payoutTime)
	if payout, _ := svc.PerformWeeklyPayout(context.Background()); !payout.Success {
		t.Fatal("setup payout failed")
	}

	result, err = svc.RequestExchange(context.Background(), "2026-W09", 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success {
		t.Fatalf("valid exchange rejected: %s", result.Reason)
	}
	if result.Exchange.NTDAmount != 2 {
		t.Errorf("NTD amount = %d, want 2", result.Exchange.NTDAmount)
	}
	if result.Exchange.Status != models.ExchangePending {
		t.Errorf("new exchange status = %q, want pending", result.Exchange.Status)
	}
}

func TestAvailableCoins_RejectedExchangesDoNotCount(t *testing.T) {
	store := newFakeLedgerStore()
	exchanges := newFakeExchangeStore()
	svc := newTestService(store, exchanges, midweek)
	svc.AddReward(context.Background(), 50, "task-1")
	setClock(svc, payoutTime)
	svc.PerformWeeklyPayout(context.Background())

	first, _ := svc.RequestExchange(context.Background(), "2026-W09", 30)
	if !first.Success {
		t.Fatal("setup exchange failed")
	}

	available, err := svc.AvailableCoins(context.Background(), "2026-W09")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if available != 20 {
		t.Errorf("available = %d, want 20", available)
	}

	// Over-available request fails.
	over, _ := svc.RequestExchange(context.Background(), "2026-W09", 30)
	if over.Success {
		t.Error("exchange exceeding availability was accepted")
	}

	// Rejecting the first exchange restores its coins.
	if _, err := svc.UpdateExchangeStatus(context.Background(), first.Exchange.ID, models.ExchangeRejected, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	available, _ = svc.AvailableCoins(context.Background(), "2026-W09")
	if available != 50 {
		t.Errorf("available after rejection = %d, want 50", available)
	}
}

// outageLedgerStore fails every read the way a dropped connection would.
type outageLedgerStore struct {
	*fakeLedgerStore
	err error
}

func (o *outageLedgerStore) Get(ctx context.Context, weekID string) (*models.WeeklyLedger, error) {
	return nil, o.err
}

func TestAvailableCoins_MissingWeekVersusOutage(t *testing.T) {
	svc := newTestService(newFakeLedgerStore(), newFakeExchangeStore(), midweek)

	// Absent week reads as not-found.
	_, err := svc.AvailableCoins(context.Background(), "2026-W01")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("missing week error = %v, want a not-found message", err)
	}

	// A storage failure keeps its cause instead of reading as a 404.
	cause := errors.New("connection refused")
	broken := &Service{
		store:     &outageLedgerStore{fakeLedgerStore: newFakeLedgerStore(), err: cause},
		exchanges: newFakeExchangeStore(),
		now:       func() time.Time { return midweek },
	}
	_, err = broken.AvailableCoins(context.Background(), "2026-W09")
	if !errors.Is(err, cause) {
		t.Errorf("outage error = %v, want the underlying cause preserved", err)
	}
	if strings.Contains(err.Error(), "not found") {
		t.Error("storage outage reported as not-found")
	}

	_, err = broken.RequestExchange(context.Background(), "2026-W09", 20)
	if !errors.Is(err, cause) {
		t.Errorf("exchange outage error = %v, want the underlying cause preserved", err)
	}
}

func TestUpdateExchangeStatus(t *testing.T) {
	store := newFakeLedgerStore()
	exchanges := newFakeExchangeStore()
	svc := newTestService(store, exchanges, midweek)
	svc.AddReward(context.Background(), 50, "task-1")
	setClock(svc, payoutTime)
	svc.PerformWeeklyPayout(context.Background())
	result, _ := svc.RequestExchange(context.Background(), "2026-W09", 10)

	notes := "handed over in cash"
	updated, err := svc.UpdateExchangeStatus(context.Background(), result.Exchange.ID, models.ExchangePaid, &notes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != models.ExchangePaid {
		t.Errorf("status = %q, want paid", updated.Status)
	}
	if updated.ProcessedAt == nil {
		t.Error("processed_at not set on a terminal decision")
	}
	if updated.Notes == nil || *updated.Notes != notes {
		t.Error("notes not recorded")
	}

	if _, err := svc.UpdateExchangeStatus(context.Background(), result.Exchange.ID, "shredded", nil); err == nil {
		t.Error("unknown status accepted")
	}
	if _, err := svc.UpdateExchangeStatus(context.Background(), "missing", models.ExchangePaid, nil); err == nil {
		t.Error("missing record accepted")
	}
}

func TestSweepMissedPayouts_Forfeits(t *testing.T) {
	store := newFakeLedgerStore()
	svc := newTestService(store, newFakeExchangeStore(), midweek)
	svc.AddReward(context.Background(), 40, "task-1")

	// A week later the ledger is still active: the sweep forfeits it.
	setClock(svc, midweek.AddDate(0, 0, 7))
	if err := svc.SweepMissedPayouts(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ledger, err := store.Get(context.Background(), "2026-W09")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ledger.Status != models.LedgerPaidOut {
		t.Errorf("status = %q, want paid_out after forfeiture", ledger.Status)
	}
	if ledger.TotalEarned != 0 {
		t.Errorf("total = %d, want 0 after forfeiture", ledger.TotalEarned)
	}
}

func TestSweepMissedPayouts_LeavesCurrentWeekAlone(t *testing.T) {
	store := newFakeLedgerStore()
	svc := newTestService(store, newFakeExchangeStore(), midweek)
	svc.AddReward(context.Background(), 40, "task-1")

	if err := svc.SweepMissedPayouts(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ledger, _ := store.Get(context.Background(), "2026-W09")
	if ledger.Status != models.LedgerActive || ledger.TotalEarned != 40 {
		t.Error("in-progress week was forfeited")
	}
}

func TestTotalSettled(t *testing.T) {
	store := newFakeLedgerStore()
	svc := newTestService(store, newFakeExchangeStore(), midweek)

	store.Insert(context.Background(), &models.WeeklyLedger{
		ID: "2026-W07", StartDate: time.Date(2026, 2, 16, 0, 0, 0, 0, time.UTC),
		TotalEarned: 30, Status: models.LedgerPaidOut,
	})
	store.Insert(context.Background(), &models.WeeklyLedger{
		ID: "2026-W08", StartDate: time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC),
		TotalEarned: 25, Status: models.LedgerPaidOut,
	})
	svc.AddReward(context.Background(), 99, "task-1") // current week, active

	total, err := svc.TotalSettled(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 55 {
		t.Errorf("settled total = %d, want 55 (active week excluded)", total)
	}
}
