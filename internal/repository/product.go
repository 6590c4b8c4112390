package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/okazarian/product-recommendation-service/internal/domain"
	"github.com/okazarian/product-recommendation-service/internal/recommender"
)

// EligibleProducts returns active, in-stock products matching the filter.
// Retrieval order is newest-first and deterministic so ties in downstream
// ranking stay reproducible.
func (r *Repository) EligibleProducts(ctx context.Context, f recommender.ProductFilter) ([]domain.Product, error) {
	var sb strings.Builder
	sb.WriteString("SELECT " + productColumns + " FROM products WHERE is_active = TRUE AND stock_quantity > 0")
	args := []any{}

	if len(f.Categories) > 0 {
		args = append(args, f.Categories)
		fmt.Fprintf(&sb, " AND category = ANY($%d)", len(args))
	}
	if len(f.IDs) > 0 {
		args = append(args, uuidStrings(f.IDs))
		fmt.Fprintf(&sb, " AND id = ANY($%d::uuid[])", len(args))
	}
	if len(f.ExcludeIDs) > 0 {
		args = append(args, uuidStrings(f.ExcludeIDs))
		fmt.Fprintf(&sb, " AND NOT (id = ANY($%d::uuid[]))", len(args))
	}
	if f.PriceMin != nil {
		args = append(args, f.PriceMin.String())
		fmt.Fprintf(&sb, " AND price >= $%d::numeric", len(args))
	}
	if f.PriceMax != nil {
		args = append(args, f.PriceMax.String())
		fmt.Fprintf(&sb, " AND price <= $%d::numeric", len(args))
	}
	sb.WriteString(" ORDER BY created_at DESC, id")
	if f.Limit > 0 {
		args = append(args, f.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query eligible products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

// CategoriesOf returns the distinct non-empty categories of the given products.
func (r *Repository) CategoriesOf(ctx context.Context, ids []uuid.UUID) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT category FROM products
		 WHERE id = ANY($1::uuid[]) AND category IS NOT NULL AND category <> ''`,
		uuidStrings(ids),
	)
	if err != nil {
		return nil, fmt.Errorf("query product categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return categories, nil
}

// ProductByID fetches a single product regardless of eligibility.
func (r *Repository) ProductByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	row := r.pool.QueryRow(ctx,
		"SELECT "+productColumns+" FROM products WHERE id = $1::uuid",
		id.String(),
	)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("query product %s: %w", id, err)
	}
	return &p, nil
}
