package domain

import "time"

type TxStatus string

const (
	TxPending   TxStatus = "pending"
	TxCompleted TxStatus = "completed"
	TxFailed    TxStatus = "failed"
)

func (s TxStatus) Terminal() bool { return s == TxCompleted || s == TxFailed }

// PaymentTransaction records one external payment attempt. For mobile money it
// is keyed by the provider reference and exists before any order does; OrderID
// stays empty until the order is created.
type PaymentTransaction struct {
	Reference   string
	OrderID     string // empty until linked
	Amount      Money
	Provider    string
	Phone       string
	Status      TxStatus
	Attempt     int
	CreatedAt   time.Time
	CompletedAt *time.Time
}
