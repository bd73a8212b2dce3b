package repo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	domain "github.com/iamciscoo/TISCOfinal-sub002/internal/entity"
	"github.com/iamciscoo/TISCOfinal-sub002/internal/usecase"
)

// MySQLProductRepo reads the catalog snapshot used by order validation.
type MySQLProductRepo struct{ db *sql.DB }

func NewMySQLProductRepo(db *sql.DB) *MySQLProductRepo { return &MySQLProductRepo{db: db} }

func (r *MySQLProductRepo) GetProducts(ctx context.Context, ids []string) ([]domain.ProductSnapshot, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id,price_cents,stock_quantity FROM products WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var out []domain.ProductSnapshot
	for rows.Next() {
		var s domain.ProductSnapshot
		var stock sql.NullInt64
		if err := rows.Scan(&s.ID, &s.PriceCents, &stock); err != nil {
			return nil, err
		}
		if stock.Valid {
			v := stock.Int64
			s.Stock = &v
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

var _ usecase.CatalogReader = (*MySQLProductRepo)(nil)
