package usecase

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	domain "github.com/iamciscoo/TISCOfinal-sub002/internal/entity"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeCatalog struct {
	products map[string]domain.ProductSnapshot
	calls    [][]string
	err      error
}

func (f *fakeCatalog) GetProducts(ctx context.Context, ids []string) ([]domain.ProductSnapshot, error) {
	f.calls = append(f.calls, ids)
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.ProductSnapshot
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func intPtr(v int64) *int64 { return &v }

type fakeOrderRepo struct {
	mu        sync.Mutex
	orders    map[string]*domain.Order
	stock     map[string]*int64 // nil value = untracked
	createErr error
	creates   int
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders: map[string]*domain.Order{},
		stock:  map[string]*int64{},
	}
}

func (f *fakeOrderRepo) Create(ctx context.Context, o *domain.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.createErr != nil {
		return f.createErr
	}
	cp := *o
	cp.Items = append([]domain.OrderItem(nil), o.Items...)
	f.orders[o.ID] = &cp
	return nil
}

func (f *fakeOrderRepo) GetByID(ctx context.Context, id, userID string) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok || (userID != "" && o.UserID != userID) {
		return nil, ErrNotFound
	}
	cp := *o
	cp.Items = append([]domain.OrderItem(nil), o.Items...)
	return &cp, nil
}

func (f *fakeOrderRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) UpdateStatusIf(ctx context.Context, id string, from, to domain.Status, note string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	if note != "" {
		if o.Notes != "" {
			o.Notes += "\n"
		}
		o.Notes += note
	}
	return true, nil
}

func (f *fakeOrderRepo) Deliver(ctx context.Context, id string, from domain.Status) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok || o.Status != from {
		return false, nil
	}
	for _, it := range o.Items {
		s, tracked := f.stock[it.ProductID]
		if !tracked || s == nil {
			continue
		}
		if *s < int64(it.Quantity) {
			return false, &InsufficientStockError{ProductID: it.ProductID, Requested: it.Quantity, Available: *s}
		}
	}
	for _, it := range o.Items {
		if s := f.stock[it.ProductID]; s != nil {
			*s -= int64(it.Quantity)
		}
	}
	o.Status = domain.StatusDelivered
	return true, nil
}

func (f *fakeOrderRepo) PatchPending(ctx context.Context, id, userID string, shippingAddress, notes *string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok || o.UserID != userID || o.Status != domain.StatusPending {
		return false, nil
	}
	if shippingAddress != nil {
		o.ShippingAddress = *shippingAddress
	}
	if notes != nil {
		if o.Notes != "" {
			o.Notes += "\n"
		}
		o.Notes += *notes
	}
	return true, nil
}

func (f *fakeOrderRepo) MarkPaid(ctx context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok || o.PaymentStatus != domain.PaymentPending {
		return false, nil
	}
	o.PaymentStatus = domain.PaymentPaid
	o.Status = domain.StatusProcessing
	return true, nil
}

func (f *fakeOrderRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.orders)
}

type fakePayments struct {
	mu        sync.Mutex
	txs       map[string]*domain.PaymentTransaction
	createErr error
}

func newFakePayments() *fakePayments {
	return &fakePayments{txs: map[string]*domain.PaymentTransaction{}}
}

func (f *fakePayments) Create(ctx context.Context, tx *domain.PaymentTransaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	cp := *tx
	f.txs[tx.Reference] = &cp
	return nil
}

func (f *fakePayments) GetByReference(ctx context.Context, ref string) (*domain.PaymentTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tx, ok := f.txs[ref]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *tx
	return &cp, nil
}

func (f *fakePayments) LinkOrder(ctx context.Context, ref, orderID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	tx, ok := f.txs[ref]
	if !ok {
		return ErrNotFound
	}
	tx.OrderID = orderID
	return nil
}

func (f *fakePayments) Finalize(ctx context.Context, ref string, status domain.TxStatus, completedAt time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tx, ok := f.txs[ref]
	if !ok || tx.Status != domain.TxPending {
		return false, nil
	}
	tx.Status = status
	tx.CompletedAt = &completedAt
	return true, nil
}

// backdate shifts a transaction's creation time, to exercise the poll window.
func (f *fakePayments) backdate(ref string, d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if tx, ok := f.txs[ref]; ok {
		tx.CreatedAt = tx.CreatedAt.Add(-d)
	}
}

type fakeSessions struct {
	mu       sync.Mutex
	payloads map[string]*PendingOrder
	locks    map[string]bool
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{payloads: map[string]*PendingOrder{}, locks: map[string]bool{}}
}

func (f *fakeSessions) SavePayload(ctx context.Context, ref string, p *PendingOrder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	f.payloads[ref] = &cp
	return nil
}

func (f *fakeSessions) LoadPayload(ctx context.Context, ref string) (*PendingOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payloads[ref]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeSessions) TryCreateLock(ctx context.Context, ref string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.locks[ref] {
		return false, nil
	}
	f.locks[ref] = true
	return true, nil
}

type fakeProvider struct {
	mu          sync.Mutex
	initiateErr error
	statuses    map[string]ProviderStatus
	initiated   []string
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{statuses: map[string]ProviderStatus{}}
}

func (f *fakeProvider) Initiate(ctx context.Context, ref string, amount domain.Money, provider, phone string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.initiateErr != nil {
		return f.initiateErr
	}
	f.initiated = append(f.initiated, ref)
	return nil
}

func (f *fakeProvider) Status(ctx context.Context, ref string) (ProviderStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statuses[ref], nil
}

func (f *fakeProvider) setStatus(ref string, s ProviderStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[ref] = s
}

type fakeNotifier struct {
	mu           sync.Mutex
	orderCreated []OrderCreatedMsg
	paySucceeded []PaymentSucceededMsg
	err          error
}

func (f *fakeNotifier) OrderCreated(ctx context.Context, msg OrderCreatedMsg) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.orderCreated = append(f.orderCreated, msg)
	return nil
}

func (f *fakeNotifier) PaymentSucceeded(ctx context.Context, msg PaymentSucceededMsg) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.paySucceeded = append(f.paySucceeded, msg)
	return nil
}

type fakeInvalidator struct {
	mu   sync.Mutex
	tags [][]string
	err  error
}

func (f *fakeInvalidator) Invalidate(ctx context.Context, tags ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.tags = append(f.tags, tags)
	return nil
}
