// Package repository adapts the Postgres store to the recommender's Catalog
// and Activity query interfaces. UUID and numeric parameters cross the wire
// as text with explicit casts; results are parsed into typed records at this
// boundary so nothing loosely typed leaks into the pipeline.
package repository

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/okazarian/product-recommendation-service/internal/domain"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const productColumns = `id::text, name, COALESCE(category, ''), price::text,
	stock_quantity, purchase_count, view_count, trending_score, is_active, created_at`

func scanProduct(row pgx.Row) (domain.Product, error) {
	var (
		p     domain.Product
		id    string
		price string
	)
	err := row.Scan(&id, &p.Name, &p.Category, &price, &p.StockQuantity,
		&p.PurchaseCount, &p.ViewCount, &p.TrendingScore, &p.IsActive, &p.CreatedAt)
	if err != nil {
		return domain.Product{}, err
	}
	if p.ID, err = uuid.Parse(id); err != nil {
		return domain.Product{}, fmt.Errorf("parse product id %q: %w", id, err)
	}
	if p.Price, err = decimal.NewFromString(price); err != nil {
		return domain.Product{}, fmt.Errorf("parse product price %q: %w", price, err)
	}
	return p, nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
