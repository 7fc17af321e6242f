package models

import "time"

type LedgerStatus string

const (
	LedgerActive  LedgerStatus = "active"
	LedgerPaidOut LedgerStatus = "paid_out"
)

// WeeklyLedger accumulates rewards from completed tasks for one
// Monday-started week. The active → paid_out transition is irreversible.
type WeeklyLedger struct {
	ID               string       `json:"id"`
	StartDate        time.Time    `json:"start_date"`
	TotalEarned      int          `json:"total_earned"`
	Status           LedgerStatus `json:"status"`
	CompletedTaskIDs []string     `json:"completed_task_ids"`
	CreatedAt        time.Time    `json:"created_at"`
}

type ExchangeStatus string

const (
	ExchangePending  ExchangeStatus = "pending"
	ExchangeApproved ExchangeStatus = "approved"
	ExchangePaid     ExchangeStatus = "paid"
	ExchangeRejected ExchangeStatus = "rejected"
)

var ValidExchangeStatuses = map[ExchangeStatus]bool{
	ExchangePending:  true,
	ExchangeApproved: true,
	ExchangePaid:     true,
	ExchangeRejected: true,
}

// CoinExchange records a request to convert settled coins into NTD at the
// fixed rate. Records are append-only; only status/notes change afterwards,
// driven by an external guardian action.
type CoinExchange struct {
	ID             string         `json:"id"`
	WeekID         string         `json:"week_id"`
	CoinsExchanged int            `json:"coins_exchanged"`
	NTDAmount      int            `json:"ntd_amount"`
	ExchangeRate   int            `json:"exchange_rate"`
	Status         ExchangeStatus `json:"status"`
	RequestedAt    time.Time      `json:"requested_at"`
	ProcessedAt    *time.Time     `json:"processed_at,omitempty"`
	Notes          *string        `json:"notes,omitempty"`
}

// PayoutCertificate summarizes a successful weekly settlement.
type PayoutCertificate struct {
	WeekID         string    `json:"week_id"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	TotalEarned    int       `json:"total_earned"`
	CompletedTasks int       `json:"completed_tasks"`
	GeneratedAt    time.Time `json:"generated_at"`
}

// PayoutResult is the structured outcome of a settlement attempt. Failed
// preconditions (wrong window, already settled) come back as Success=false
// with a Reason rather than as an error.
type PayoutResult struct {
	Success          bool               `json:"success"`
	TotalPaid        int                `json:"total_paid"`
	Reason           string             `json:"reason,omitempty"`
	Certificate      *PayoutCertificate `json:"certificate,omitempty"`
	CertificateToken string             `json:"certificate_token,omitempty"`
}

// ExchangeResult is the structured outcome of an exchange request.
type ExchangeResult struct {
	Success  bool          `json:"success"`
	Reason   string        `json:"reason,omitempty"`
	Exchange *CoinExchange `json:"exchange,omitempty"`
}

type ExchangeRequest struct {
	Coins int `json:"coins"`
}

type UpdateExchangeStatusRequest struct {
	Status ExchangeStatus `json:"status"`
	Notes  *string        `json:"notes,omitempty"`
}
