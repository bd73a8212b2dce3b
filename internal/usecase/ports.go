package usecase

import (
	"context"
	"errors"
	"time"

	domain "github.com/iamciscoo/TISCOfinal-sub002/internal/entity"
)

var ErrNotFound = errors.New("not found")

// CatalogReader fetches the live price/stock snapshot for a set of products.
// Called at validation time only; results are never cached across calls.
type CatalogReader interface {
	GetProducts(ctx context.Context, ids []string) ([]domain.ProductSnapshot, error)
}

type OrderRepo interface {
	// Create inserts the order row and then its items. If an item insert
	// fails the order row is deleted again (compensating delete) and the
	// item error is returned; callers must not retry against the half-made
	// order.
	Create(ctx context.Context, o *domain.Order) error
	// GetByID scopes the read to userID unless userID is empty (admin path).
	GetByID(ctx context.Context, id, userID string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	// UpdateStatusIf is a compare-and-set status write; note, when non-empty,
	// is appended to the order's notes. Returns false when the order is
	// missing or no longer in from.
	UpdateStatusIf(ctx context.Context, id string, from, to domain.Status, note string) (bool, error)
	// Deliver atomically asserts status==from, decrements stock for every
	// item, and sets status=delivered, all in one transaction. Returns false
	// without side effects when the CAS loses.
	Deliver(ctx context.Context, id string, from domain.Status) (bool, error)
	// PatchPending updates shipping address and/or notes while the order is
	// still pending and owned by userID.
	PatchPending(ctx context.Context, id, userID string, shippingAddress, notes *string) (bool, error)
	// MarkPaid sets payment_status=paid and status=processing iff
	// payment_status is still pending.
	MarkPaid(ctx context.Context, id string) (bool, error)
}

type PaymentTxRepo interface {
	Create(ctx context.Context, tx *domain.PaymentTransaction) error
	GetByReference(ctx context.Context, ref string) (*domain.PaymentTransaction, error)
	LinkOrder(ctx context.Context, ref, orderID string) error
	// Finalize moves a pending transaction to a terminal status. Returns
	// false when the transaction was already terminal.
	Finalize(ctx context.Context, ref string, status domain.TxStatus, completedAt time.Time) (bool, error)
}

// ProviderStatus classifies the external provider's answer for a reference.
type ProviderStatus int

const (
	ProviderPending ProviderStatus = iota
	ProviderCompleted
	ProviderFailed
)

type PaymentProvider interface {
	Initiate(ctx context.Context, ref string, amount domain.Money, provider, phone string) error
	Status(ctx context.Context, ref string) (ProviderStatus, error)
}

// CheckoutSessionStore holds the order payload captured at payment initiation,
// keyed by provider reference, and hands out the single creation lock per
// reference.
type CheckoutSessionStore interface {
	SavePayload(ctx context.Context, ref string, p *PendingOrder) error
	LoadPayload(ctx context.Context, ref string) (*PendingOrder, error)
	// TryCreateLock returns true for exactly one caller per reference.
	TryCreateLock(ctx context.Context, ref string) (bool, error)
}

// Notifier is fire-and-forget from the core's perspective: implementations
// may fail, the core only logs it.
type Notifier interface {
	OrderCreated(ctx context.Context, msg OrderCreatedMsg) error
	PaymentSucceeded(ctx context.Context, msg PaymentSucceededMsg) error
}

type CacheInvalidator interface {
	Invalidate(ctx context.Context, tags ...string) error
}
