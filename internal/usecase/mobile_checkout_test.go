package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/iamciscoo/TISCOfinal-sub002/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type checkoutFixture struct {
	uc       *MobileCheckout
	orders   *fakeOrderRepo
	payments *fakePayments
	sessions *fakeSessions
	provider *fakeProvider
	notifier *fakeNotifier
}

func newCheckoutFixture(maxAttempts int) *checkoutFixture {
	catalog := &fakeCatalog{products: map[string]domain.ProductSnapshot{
		"P1": {ID: "P1", PriceCents: 1000, Stock: intPtr(5)},
	}}
	f := &checkoutFixture{
		orders:   newFakeOrderRepo(),
		payments: newFakePayments(),
		sessions: newFakeSessions(),
		provider: newFakeProvider(),
		notifier: &fakeNotifier{},
	}
	f.uc = NewMobileCheckout(MobileCheckoutDeps{
		Pricer:      NewPricer(catalog),
		Orders:      f.orders,
		Payments:    f.payments,
		Sessions:    f.sessions,
		Provider:    f.provider,
		Notifier:    f.notifier,
		Invalidator: &fakeInvalidator{},
		PollWindow:  30 * time.Second,
		MaxAttempts: maxAttempts,
		Log:         testLogger(),
	})
	return f
}

func validMobileInput() MobileInitiateInput {
	return MobileInitiateInput{
		UserID:          "user-1",
		Email:           "u1@example.com",
		Items:           []LineItemInput{{ProductID: "P1", Quantity: 2}},
		Currency:        "TZS",
		Provider:        "mpesa",
		Phone:           "+255700000001",
		ShippingAddress: "12 Uhuru St, Dar es Salaam",
	}
}

func TestMobileCheckout_InitiateCreatesNoOrder(t *testing.T) {
	f := newCheckoutFixture(0)

	ref, err := f.uc.Initiate(context.Background(), validMobileInput())
	require.NoError(t, err)
	require.NotEmpty(t, ref)

	assert.Zero(t, f.orders.count())
	tx, err := f.payments.GetByReference(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, domain.TxPending, tx.Status)
	assert.Equal(t, 1, tx.Attempt)
	assert.Equal(t, int64(2000), tx.Amount.Cents)
	assert.Equal(t, []string{ref}, f.provider.initiated)
}

func TestMobileCheckout_InitiateValidation(t *testing.T) {
	f := newCheckoutFixture(0)

	in := validMobileInput()
	in.Phone = ""
	_, err := f.uc.Initiate(context.Background(), in)
	assert.ErrorIs(t, err, ErrPhoneRequired)

	in = validMobileInput()
	in.ShippingAddress = ""
	_, err = f.uc.Initiate(context.Background(), in)
	assert.ErrorIs(t, err, ErrShippingAddressRequired)
}

func TestMobileCheckout_InitiateProviderError(t *testing.T) {
	f := newCheckoutFixture(0)
	f.provider.initiateErr = errors.New("dial tcp: timeout")

	_, err := f.uc.Initiate(context.Background(), validMobileInput())
	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Zero(t, f.orders.count())
}

func TestMobileCheckout_PollPendingThenTimeout(t *testing.T) {
	f := newCheckoutFixture(0)
	ref, err := f.uc.Initiate(context.Background(), validMobileInput())
	require.NoError(t, err)

	res, err := f.uc.Poll(context.Background(), ref, "user-1")
	require.NoError(t, err)
	assert.Equal(t, PollPending, res.State)

	// past the poll window with no terminal status: timeout, not failure
	f.payments.backdate(ref, 31*time.Second)
	res, err = f.uc.Poll(context.Background(), ref, "user-1")
	require.NoError(t, err)
	assert.Equal(t, PollTimeout, res.State)
	assert.Zero(t, f.orders.count())

	// the transaction is still retryable
	tx, _ := f.payments.GetByReference(context.Background(), ref)
	assert.Equal(t, domain.TxPending, tx.Status)
}

func TestMobileCheckout_PollSuccessCreatesOrderOnce(t *testing.T) {
	f := newCheckoutFixture(0)
	ref, err := f.uc.Initiate(context.Background(), validMobileInput())
	require.NoError(t, err)

	f.provider.setStatus(ref, ProviderCompleted)

	res, err := f.uc.Poll(context.Background(), ref, "user-1")
	require.NoError(t, err)
	require.Equal(t, PollCompleted, res.State)
	require.NotEmpty(t, res.OrderID)
	assert.Equal(t, 1, f.orders.count())

	order, err := f.orders.GetByID(context.Background(), res.OrderID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, order.PaymentStatus)
	assert.Equal(t, domain.StatusPending, order.Status)
	assert.Equal(t, int64(2000), order.Amount.Cents)

	// second poll is a read, not a second creation
	res2, err := f.uc.Poll(context.Background(), ref, "user-1")
	require.NoError(t, err)
	assert.Equal(t, PollCompleted, res2.State)
	assert.Equal(t, res.OrderID, res2.OrderID)
	assert.Equal(t, 1, f.orders.count())

	require.Len(t, f.notifier.paySucceeded, 1)
	assert.Equal(t, ref, f.notifier.paySucceeded[0].Reference)
}

func TestMobileCheckout_PollFailureIsTerminal(t *testing.T) {
	f := newCheckoutFixture(0)
	ref, err := f.uc.Initiate(context.Background(), validMobileInput())
	require.NoError(t, err)

	f.provider.setStatus(ref, ProviderFailed)

	res, err := f.uc.Poll(context.Background(), ref, "user-1")
	require.NoError(t, err)
	assert.Equal(t, PollFailed, res.State)
	assert.Zero(t, f.orders.count())

	tx, _ := f.payments.GetByReference(context.Background(), ref)
	assert.Equal(t, domain.TxFailed, tx.Status)
}

func TestMobileCheckout_PollScopesToOwner(t *testing.T) {
	f := newCheckoutFixture(0)
	ref, err := f.uc.Initiate(context.Background(), validMobileInput())
	require.NoError(t, err)

	_, err = f.uc.Poll(context.Background(), ref, "someone-else")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMobileCheckout_RetryAfterTimeout(t *testing.T) {
	f := newCheckoutFixture(0)
	ref, err := f.uc.Initiate(context.Background(), validMobileInput())
	require.NoError(t, err)
	f.payments.backdate(ref, 31*time.Second)

	ref2, err := f.uc.Retry(context.Background(), ref, "user-1")
	require.NoError(t, err)
	require.NotEqual(t, ref, ref2)

	tx2, err := f.payments.GetByReference(context.Background(), ref2)
	require.NoError(t, err)
	assert.Equal(t, 2, tx2.Attempt)

	// the retried attempt succeeds and creates exactly one order
	f.provider.setStatus(ref2, ProviderCompleted)
	res, err := f.uc.Poll(context.Background(), ref2, "user-1")
	require.NoError(t, err)
	assert.Equal(t, PollCompleted, res.State)
	assert.Equal(t, 1, f.orders.count())
}

func TestMobileCheckout_RetryGuards(t *testing.T) {
	f := newCheckoutFixture(2)
	ref, err := f.uc.Initiate(context.Background(), validMobileInput())
	require.NoError(t, err)

	ref2, err := f.uc.Retry(context.Background(), ref, "user-1")
	require.NoError(t, err)

	// attempt cap reached
	_, err = f.uc.Retry(context.Background(), ref2, "user-1")
	assert.ErrorIs(t, err, ErrRetryLimit)

	// a completed attempt cannot be retried
	f.provider.setStatus(ref2, ProviderCompleted)
	_, err = f.uc.Poll(context.Background(), ref2, "user-1")
	require.NoError(t, err)
	_, err = f.uc.Retry(context.Background(), ref2, "user-1")
	assert.ErrorIs(t, err, ErrAlreadyPaid)
}

func TestMobileCheckout_ConfirmAfterPollIsNoOpOnOrder(t *testing.T) {
	f := newCheckoutFixture(0)
	ref, err := f.uc.Initiate(context.Background(), validMobileInput())
	require.NoError(t, err)

	f.provider.setStatus(ref, ProviderCompleted)
	res, err := f.uc.Poll(context.Background(), ref, "user-1")
	require.NoError(t, err)
	require.Equal(t, 1, f.orders.count())

	// late webhook: finalizes transaction fields only, order untouched
	err = f.uc.Confirm(context.Background(), ref, true, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 1, f.orders.count())

	tx, _ := f.payments.GetByReference(context.Background(), ref)
	assert.Equal(t, domain.TxCompleted, tx.Status)
	assert.Equal(t, res.OrderID, tx.OrderID)
	require.NotNil(t, tx.CompletedAt)

	// payment success notification fired exactly once
	assert.Len(t, f.notifier.paySucceeded, 1)
}

func TestMobileCheckout_ConfirmBeforePollCreatesOrder(t *testing.T) {
	f := newCheckoutFixture(0)
	ref, err := f.uc.Initiate(context.Background(), validMobileInput())
	require.NoError(t, err)

	err = f.uc.Confirm(context.Background(), ref, true, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 1, f.orders.count())

	tx, _ := f.payments.GetByReference(context.Background(), ref)
	assert.Equal(t, domain.TxCompleted, tx.Status)
	assert.NotEmpty(t, tx.OrderID)
}

func TestMobileCheckout_ConfirmFailure(t *testing.T) {
	f := newCheckoutFixture(0)
	ref, err := f.uc.Initiate(context.Background(), validMobileInput())
	require.NoError(t, err)

	err = f.uc.Confirm(context.Background(), ref, false, time.Now().UTC())
	require.NoError(t, err)
	assert.Zero(t, f.orders.count())

	tx, _ := f.payments.GetByReference(context.Background(), ref)
	assert.Equal(t, domain.TxFailed, tx.Status)
}

func TestMobileCheckout_LateSuccessAfterFailureIsDropped(t *testing.T) {
	f := newCheckoutFixture(0)
	ref, err := f.uc.Initiate(context.Background(), validMobileInput())
	require.NoError(t, err)

	f.provider.setStatus(ref, ProviderFailed)
	res, err := f.uc.Poll(context.Background(), ref, "user-1")
	require.NoError(t, err)
	require.Equal(t, PollFailed, res.State)

	// contradictory success lands after the attempt was finalized as failed
	err = f.uc.Confirm(context.Background(), ref, true, time.Now().UTC())
	require.NoError(t, err)

	assert.Zero(t, f.orders.count())
	tx, _ := f.payments.GetByReference(context.Background(), ref)
	assert.Equal(t, domain.TxFailed, tx.Status)
	assert.Empty(t, tx.OrderID)
	assert.Empty(t, f.notifier.paySucceeded)
}

func TestMobileCheckout_PollWhileSettleInFlight(t *testing.T) {
	f := newCheckoutFixture(0)
	ref, err := f.uc.Initiate(context.Background(), validMobileInput())
	require.NoError(t, err)

	// another settle holds the create lock and has not linked the order yet
	ok, err := f.sessions.TryCreateLock(context.Background(), ref)
	require.NoError(t, err)
	require.True(t, ok)

	f.provider.setStatus(ref, ProviderCompleted)
	res, err := f.uc.Poll(context.Background(), ref, "user-1")
	require.NoError(t, err)
	assert.Equal(t, PollPending, res.State)
	assert.Empty(t, res.OrderID)
	assert.Zero(t, f.orders.count())
}
