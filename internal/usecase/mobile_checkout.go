package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	domain "github.com/iamciscoo/TISCOfinal-sub002/internal/entity"
)

// PendingOrder is the order payload captured at payment initiation and
// replayed verbatim on confirmation. It is never re-derived from the current
// cart or catalog, so a second navigation cannot leak stale data into the
// created order.
type PendingOrder struct {
	UserID          string             `json:"userId"`
	Email           string             `json:"email,omitempty"`
	Lines           []domain.OrderItem `json:"lines"`
	TotalCents      int64              `json:"totalCents"`
	Currency        string             `json:"currency"`
	PaymentMethod   string             `json:"paymentMethod"`
	ShippingAddress string             `json:"shippingAddress"`
	Notes           string             `json:"notes,omitempty"`
	Provider        string             `json:"provider"`
	Phone           string             `json:"phone"`
}

type MobileInitiateInput struct {
	UserID          string
	Email           string
	Items           []LineItemInput
	Currency        string
	Provider        string
	Phone           string
	ShippingAddress string
	Notes           string
}

type PollState string

const (
	PollPending   PollState = "pending"
	PollCompleted PollState = "completed"
	PollFailed    PollState = "failed"
	PollTimeout   PollState = "timeout"
)

type PollResult struct {
	State   PollState
	OrderID string
}

// MobileCheckout drives the pre-authorized payment flow: the order is not
// created until the provider confirms the payment. The client owns the
// polling loop; each Poll call is one provider round trip.
type MobileCheckout struct {
	pricer      *Pricer
	orders      OrderRepo
	payments    PaymentTxRepo
	sessions    CheckoutSessionStore
	provider    PaymentProvider
	notifier    Notifier
	invalidator CacheInvalidator
	pollWindow  time.Duration
	maxAttempts int // 0 = unlimited
	log         *slog.Logger
}

type MobileCheckoutDeps struct {
	Pricer      *Pricer
	Orders      OrderRepo
	Payments    PaymentTxRepo
	Sessions    CheckoutSessionStore
	Provider    PaymentProvider
	Notifier    Notifier
	Invalidator CacheInvalidator
	PollWindow  time.Duration
	MaxAttempts int
	Log         *slog.Logger
}

func NewMobileCheckout(d MobileCheckoutDeps) *MobileCheckout {
	if d.PollWindow <= 0 {
		d.PollWindow = 30 * time.Second
	}
	return &MobileCheckout{
		pricer:      d.Pricer,
		orders:      d.Orders,
		payments:    d.Payments,
		sessions:    d.Sessions,
		provider:    d.Provider,
		notifier:    d.Notifier,
		invalidator: d.Invalidator,
		pollWindow:  d.PollWindow,
		maxAttempts: d.MaxAttempts,
		log:         d.Log,
	}
}

// Initiate prices the submitted lines, captures the order payload, records a
// pending PaymentTransaction and asks the provider to prompt the payer.
// Returns the fresh transaction reference.
func (uc *MobileCheckout) Initiate(ctx context.Context, in MobileInitiateInput) (string, error) {
	if strings.TrimSpace(in.ShippingAddress) == "" {
		return "", ErrShippingAddressRequired
	}
	if strings.TrimSpace(in.Phone) == "" {
		return "", ErrPhoneRequired
	}
	quote, err := uc.pricer.Quote(ctx, in.Items)
	if err != nil {
		return "", err
	}
	payload := &PendingOrder{
		UserID:          in.UserID,
		Email:           in.Email,
		Lines:           quote.Lines,
		TotalCents:      quote.TotalCents,
		Currency:        in.Currency,
		PaymentMethod:   "mobile_money_" + in.Provider,
		ShippingAddress: in.ShippingAddress,
		Notes:           in.Notes,
		Provider:        in.Provider,
		Phone:           in.Phone,
	}
	return uc.start(ctx, payload, 1)
}

// Retry re-initiates with the payload captured at the first attempt and a
// fresh reference. The old reference is never reused.
func (uc *MobileCheckout) Retry(ctx context.Context, ref, userID string) (string, error) {
	tx, payload, err := uc.lookup(ctx, ref, userID)
	if err != nil {
		return "", err
	}
	if tx.Status == domain.TxCompleted {
		return "", ErrAlreadyPaid
	}
	if uc.maxAttempts > 0 && tx.Attempt >= uc.maxAttempts {
		return "", ErrRetryLimit
	}
	return uc.start(ctx, payload, tx.Attempt+1)
}

func (uc *MobileCheckout) start(ctx context.Context, payload *PendingOrder, attempt int) (string, error) {
	ref := uuid.NewString()
	amount := domain.Money{Cents: payload.TotalCents, Currency: payload.Currency}
	tx := &domain.PaymentTransaction{
		Reference: ref,
		Amount:    amount,
		Provider:  payload.Provider,
		Phone:     payload.Phone,
		Status:    domain.TxPending,
		Attempt:   attempt,
		CreatedAt: time.Now().UTC(),
	}
	if err := uc.payments.Create(ctx, tx); err != nil {
		return "", err
	}
	if err := uc.sessions.SavePayload(ctx, ref, payload); err != nil {
		return "", err
	}
	if err := uc.provider.Initiate(ctx, ref, amount, payload.Provider, payload.Phone); err != nil {
		if _, ferr := uc.payments.Finalize(ctx, ref, domain.TxFailed, time.Now().UTC()); ferr != nil {
			uc.log.Error("finalize after initiate failure", "reference", ref, "err", ferr)
		}
		return "", &ProviderError{Op: "initiate", Err: err}
	}
	uc.log.Info("mobile payment initiated", "reference", ref, "attempt", attempt, "provider", payload.Provider)
	return ref, nil
}

// Poll performs one provider status round trip for ref. A terminal success
// settles the payment (creating the order exactly once); a terminal failure
// is final for this attempt. With no terminal status inside the poll window
// the result is timeout, which is retryable, unlike failed.
func (uc *MobileCheckout) Poll(ctx context.Context, ref, userID string) (PollResult, error) {
	tx, payload, err := uc.lookup(ctx, ref, userID)
	if err != nil {
		return PollResult{}, err
	}
	switch tx.Status {
	case domain.TxCompleted:
		return PollResult{State: PollCompleted, OrderID: tx.OrderID}, nil
	case domain.TxFailed:
		return PollResult{State: PollFailed}, nil
	}

	status, err := uc.provider.Status(ctx, ref)
	if err != nil {
		return PollResult{}, &ProviderError{Op: "status", Err: err}
	}
	switch status {
	case ProviderCompleted:
		orderID, err := uc.settle(ctx, tx, payload, time.Now().UTC())
		if err != nil {
			return PollResult{}, err
		}
		if orderID == "" {
			// A concurrent settle holds the create lock and has not linked
			// the order yet; the next poll will see it.
			return PollResult{State: PollPending}, nil
		}
		return PollResult{State: PollCompleted, OrderID: orderID}, nil
	case ProviderFailed:
		if _, err := uc.payments.Finalize(ctx, ref, domain.TxFailed, time.Now().UTC()); err != nil {
			return PollResult{}, err
		}
		return PollResult{State: PollFailed}, nil
	}

	if time.Since(tx.CreatedAt) >= uc.pollWindow {
		return PollResult{State: PollTimeout}, nil
	}
	return PollResult{State: PollPending}, nil
}

// Confirm handles the secondary completion signal (webhook or status topic).
// It finalizes the transaction and, when the order does not exist yet,
// creates it from the captured payload; when it already exists the order is
// untouched. A reference already finalized as failed stays failed: the payer
// retries with a fresh reference, so a late contradictory success must never
// resurrect the attempt.
func (uc *MobileCheckout) Confirm(ctx context.Context, ref string, success bool, completedAt time.Time) error {
	tx, err := uc.payments.GetByReference(ctx, ref)
	if err != nil {
		return err
	}
	if tx.Status == domain.TxFailed {
		if success {
			uc.log.Warn("success signal for failed payment dropped", "reference", ref)
		}
		return nil
	}
	if !success {
		_, err := uc.payments.Finalize(ctx, ref, domain.TxFailed, completedAt)
		return err
	}
	payload, err := uc.sessions.LoadPayload(ctx, ref)
	if err != nil {
		// Payload expired: finalize the transaction only; the order, if
		// any, was already created by the poll path.
		uc.log.Warn("confirm without payload", "reference", ref, "err", err)
		_, err := uc.payments.Finalize(ctx, ref, domain.TxCompleted, completedAt)
		return err
	}
	_, err = uc.settle(ctx, tx, payload, completedAt)
	return err
}

// settle creates the order for a confirmed payment exactly once per
// reference and finalizes/links the transaction.
func (uc *MobileCheckout) settle(ctx context.Context, tx *domain.PaymentTransaction, payload *PendingOrder, completedAt time.Time) (string, error) {
	if tx.Status == domain.TxFailed {
		// Failed is terminal for the attempt; never create from it.
		return "", nil
	}
	if tx.OrderID != "" {
		// Order already created; only the transaction fields may lag.
		_, err := uc.payments.Finalize(ctx, tx.Reference, domain.TxCompleted, completedAt)
		return tx.OrderID, err
	}

	ok, err := uc.sessions.TryCreateLock(ctx, tx.Reference)
	if err != nil {
		return "", err
	}
	if !ok {
		// Another settle is in flight; report what is visible now.
		cur, err := uc.payments.GetByReference(ctx, tx.Reference)
		if err != nil {
			return "", err
		}
		return cur.OrderID, nil
	}

	now := time.Now().UTC()
	order := &domain.Order{
		ID:              uuid.NewString(),
		UserID:          payload.UserID,
		Items:           payload.Lines,
		Amount:          domain.Money{Cents: payload.TotalCents, Currency: payload.Currency},
		PaymentMethod:   payload.PaymentMethod,
		Status:          domain.StatusPending,
		PaymentStatus:   domain.PaymentPaid,
		ShippingAddress: payload.ShippingAddress,
		Notes:           payload.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.orders.Create(ctx, order); err != nil {
		return "", err
	}
	finalized, err := uc.payments.Finalize(ctx, tx.Reference, domain.TxCompleted, completedAt)
	if err != nil {
		return "", err
	}
	if err := uc.payments.LinkOrder(ctx, tx.Reference, order.ID); err != nil {
		return "", err
	}

	fireOrderSideEffects(ctx, uc.notifier, uc.invalidator, uc.log, order, payload.Email)
	if finalized {
		if err := uc.notifier.PaymentSucceeded(ctx, PaymentSucceededMsg{
			OrderID:   order.ID,
			UserID:    order.UserID,
			Email:     payload.Email,
			Reference: tx.Reference,
			Cents:     order.Amount.Cents,
			Currency:  order.Amount.Currency,
		}); err != nil {
			uc.log.Warn("payment success notification failed", "reference", tx.Reference, "err", err)
		}
	}
	return order.ID, nil
}

func (uc *MobileCheckout) lookup(ctx context.Context, ref, userID string) (*domain.PaymentTransaction, *PendingOrder, error) {
	tx, err := uc.payments.GetByReference(ctx, ref)
	if err != nil {
		return nil, nil, err
	}
	payload, err := uc.sessions.LoadPayload(ctx, ref)
	if err != nil {
		return nil, nil, err
	}
	if userID != "" && payload.UserID != userID {
		return nil, nil, ErrNotFound
	}
	return tx, payload, nil
}
