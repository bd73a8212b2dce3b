package domain

import (
	"errors"
	"fmt"
	"time"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

var transitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered, StatusCancelled},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// CanTransitionTo reports whether to is reachable from s in one step.
func (s Status) CanTransitionTo(to Status) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no further status transition is permitted.
func (s Status) Terminal() bool { return len(transitions[s]) == 0 }

func ValidStatus(s Status) bool {
	_, ok := transitions[s]
	return ok
}

// IllegalTransitionError carries the attempted pair so callers can report it.
type IllegalTransitionError struct {
	From, To Status
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal status transition %s -> %s", e.From, e.To)
}

var ErrInvalidAmount = errors.New("invalid amount")

type Money struct {
	Cents    int64
	Currency string
}

func (m Money) Validate() error {
	if m.Cents <= 0 || m.Currency == "" {
		return ErrInvalidAmount
	}
	return nil
}

type OrderItem struct {
	ProductID string
	Quantity  int
	// UnitPriceCents is the catalog price at validation time. Frozen; never
	// recomputed from the live catalog.
	UnitPriceCents int64
}

type Order struct {
	ID              string
	UserID          string
	Items           []OrderItem
	Amount          Money // server-computed total, immutable after creation
	PaymentMethod   string
	Status          Status
	PaymentStatus   PaymentStatus
	ShippingAddress string
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (o *Order) Validate() error {
	if err := o.Amount.Validate(); err != nil {
		return err
	}
	if len(o.Items) == 0 {
		return errors.New("order has no items")
	}
	var sum int64
	for _, it := range o.Items {
		if it.Quantity <= 0 {
			return fmt.Errorf("item %s: quantity must be positive", it.ProductID)
		}
		sum += it.UnitPriceCents * int64(it.Quantity)
	}
	if sum != o.Amount.Cents {
		return ErrInvalidAmount
	}
	return nil
}
