package usecase

import (
	"context"
	"testing"
	"time"

	domain "github.com/iamciscoo/TISCOfinal-sub002/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedOrder(orders *fakeOrderRepo, status domain.Status) *domain.Order {
	o := &domain.Order{
		ID:              "ord-1",
		UserID:          "user-1",
		Items:           []domain.OrderItem{{ProductID: "P1", Quantity: 2, UnitPriceCents: 1000}},
		Amount:          domain.Money{Cents: 2000, Currency: "TZS"},
		PaymentMethod:   "card",
		Status:          status,
		PaymentStatus:   domain.PaymentPending,
		ShippingAddress: "12 Uhuru St",
		CreatedAt:       time.Now().UTC(),
		UpdatedAt:       time.Now().UTC(),
	}
	orders.orders[o.ID] = o
	return o
}

func TestTransition_LegalStep(t *testing.T) {
	orders := newFakeOrderRepo()
	seedOrder(orders, domain.StatusPending)
	uc := NewTransitionOrder(orders, &fakeInvalidator{}, testLogger())

	out, err := uc.Execute(context.Background(), "ord-1", "user-1", domain.StatusProcessing, "")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessing, out.Status)
}

func TestTransition_IllegalStepReportsPair(t *testing.T) {
	orders := newFakeOrderRepo()
	seedOrder(orders, domain.StatusPending)
	uc := NewTransitionOrder(orders, &fakeInvalidator{}, testLogger())

	// pending must go through processing before shipped
	_, err := uc.Execute(context.Background(), "ord-1", "user-1", domain.StatusShipped, "")
	var illegal *domain.IllegalTransitionError
	require.ErrorAs(t, err, &illegal)
	assert.Equal(t, domain.StatusPending, illegal.From)
	assert.Equal(t, domain.StatusShipped, illegal.To)

	// status unchanged
	cur, _ := orders.GetByID(context.Background(), "ord-1", "user-1")
	assert.Equal(t, domain.StatusPending, cur.Status)
}

func TestTransition_UnknownStatusRejected(t *testing.T) {
	orders := newFakeOrderRepo()
	seedOrder(orders, domain.StatusPending)
	uc := NewTransitionOrder(orders, &fakeInvalidator{}, testLogger())

	_, err := uc.Execute(context.Background(), "ord-1", "user-1", domain.Status("returned"), "")
	var illegal *domain.IllegalTransitionError
	assert.ErrorAs(t, err, &illegal)
}

func TestTransition_OwnershipScoping(t *testing.T) {
	orders := newFakeOrderRepo()
	seedOrder(orders, domain.StatusPending)
	uc := NewTransitionOrder(orders, &fakeInvalidator{}, testLogger())

	_, err := uc.Execute(context.Background(), "ord-1", "someone-else", domain.StatusCancelled, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTransition_ReasonAppendsToNotes(t *testing.T) {
	orders := newFakeOrderRepo()
	o := seedOrder(orders, domain.StatusPending)
	o.Notes = "gift wrap please"
	uc := NewTransitionOrder(orders, &fakeInvalidator{}, testLogger())

	out, err := uc.Execute(context.Background(), "ord-1", "user-1", domain.StatusCancelled, "changed my mind")
	require.NoError(t, err)
	assert.Equal(t, "gift wrap please\nchanged my mind", out.Notes)
}

func TestDeliver_DecrementsStockExactlyOnce(t *testing.T) {
	orders := newFakeOrderRepo()
	seedOrder(orders, domain.StatusShipped)
	orders.stock["P1"] = intPtr(3)
	uc := NewTransitionOrder(orders, &fakeInvalidator{}, testLogger())

	out, err := uc.Execute(context.Background(), "ord-1", "user-1", domain.StatusDelivered, "")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, out.Status)
	assert.Equal(t, int64(1), *orders.stock["P1"])

	// delivered is terminal: the second call fails and stock is untouched
	_, err = uc.Execute(context.Background(), "ord-1", "user-1", domain.StatusDelivered, "")
	var illegal *domain.IllegalTransitionError
	require.ErrorAs(t, err, &illegal)
	assert.Equal(t, domain.StatusDelivered, illegal.From)
	assert.Equal(t, int64(1), *orders.stock["P1"])
}

func TestDeliver_InsufficientStockAtFulfilment(t *testing.T) {
	// overselling at placement is resolved at delivery time
	orders := newFakeOrderRepo()
	seedOrder(orders, domain.StatusShipped)
	orders.stock["P1"] = intPtr(1)
	uc := NewTransitionOrder(orders, &fakeInvalidator{}, testLogger())

	_, err := uc.Execute(context.Background(), "ord-1", "user-1", domain.StatusDelivered, "")
	var ins *InsufficientStockError
	require.ErrorAs(t, err, &ins)
	assert.Equal(t, "P1", ins.ProductID)
	assert.Equal(t, 2, ins.Requested)
	assert.Equal(t, int64(1), ins.Available)
	assert.Equal(t, int64(1), *orders.stock["P1"])

	cur, _ := orders.GetByID(context.Background(), "ord-1", "user-1")
	assert.Equal(t, domain.StatusShipped, cur.Status)
}
