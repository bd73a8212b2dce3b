package usecase

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyItems              = errors.New("order must contain at least one item")
	ErrShippingAddressRequired = errors.New("shipping address required")
	ErrPhoneRequired           = errors.New("payer phone number required")
	ErrAlreadyPaid             = errors.New("order already paid")
	ErrOrderNotEditable        = errors.New("order is no longer editable")
	ErrRetryLimit              = errors.New("payment retry limit reached")
)

type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// ProviderError marks a transport/protocol failure talking to the payment
// provider, distinct from a provider-reported payment failure.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string { return fmt.Sprintf("payment provider %s: %v", e.Op, e.Err) }
func (e *ProviderError) Unwrap() error { return e.Err }
