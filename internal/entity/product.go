package domain

// ProductSnapshot is the catalog view read at order-validation time only.
// Stock is nil when the catalog tracks no quantity for the product, which
// means "no limit", not zero.
type ProductSnapshot struct {
	ID         string
	PriceCents int64
	Stock      *int64
}
