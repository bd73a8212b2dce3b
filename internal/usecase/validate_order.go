package usecase

import (
	"context"

	domain "github.com/iamciscoo/TISCOfinal-sub002/internal/entity"
)

// LineItemInput is the normalized client-submitted line. Prices never come
// from the client; the quote reads them from the catalog snapshot.
type LineItemInput struct {
	ProductID string
	Quantity  int
}

type PriceQuote struct {
	Lines      []domain.OrderItem
	TotalCents int64
}

// Pricer re-prices submitted lines from a fresh catalog snapshot.
type Pricer struct {
	catalog CatalogReader
}

func NewPricer(catalog CatalogReader) *Pricer {
	return &Pricer{catalog: catalog}
}

// Quote validates and prices the requested lines. It fails on an unknown
// product or when a known stock quantity is below the requested amount; a nil
// stock means the catalog tracks no quantity and imposes no limit.
func (p *Pricer) Quote(ctx context.Context, items []LineItemInput) (*PriceQuote, error) {
	if len(items) == 0 {
		return nil, ErrEmptyItems
	}
	for _, it := range items {
		if it.ProductID == "" || it.Quantity <= 0 {
			return nil, ErrEmptyItems
		}
	}

	ids := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		ids = append(ids, it.ProductID)
	}

	snaps, err := p.catalog.GetProducts(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.ProductSnapshot, len(snaps))
	for _, s := range snaps {
		byID[s.ID] = s
	}

	quote := &PriceQuote{Lines: make([]domain.OrderItem, 0, len(items))}
	for _, it := range items {
		snap, ok := byID[it.ProductID]
		if !ok {
			return nil, &ProductNotFoundError{ProductID: it.ProductID}
		}
		if snap.Stock != nil && *snap.Stock < int64(it.Quantity) {
			return nil, &InsufficientStockError{
				ProductID: it.ProductID,
				Requested: it.Quantity,
				Available: *snap.Stock,
			}
		}
		quote.Lines = append(quote.Lines, domain.OrderItem{
			ProductID:      it.ProductID,
			Quantity:       it.Quantity,
			UnitPriceCents: snap.PriceCents,
		})
		quote.TotalCents += snap.PriceCents * int64(it.Quantity)
	}
	return quote, nil
}
