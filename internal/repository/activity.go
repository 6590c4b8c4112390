package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/okazarian/product-recommendation-service/internal/domain"
	"github.com/okazarian/product-recommendation-service/internal/recommender"
)

// CompletedOrderProductIDs returns the distinct product ids from the user's
// completed orders. The lookup is deliberately two-step (orders first, then
// their items) rather than a join.
func (r *Repository) CompletedOrderProductIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id::text FROM orders WHERE user_id = $1::uuid AND payment_status = 'completed'`,
		userID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("query completed orders for user %s: %w", userID, err)
	}
	orderIDs, err := collectIDs(rows)
	if err != nil {
		return nil, fmt.Errorf("scan order ids: %w", err)
	}
	if len(orderIDs) == 0 {
		return nil, nil
	}

	rows, err = r.pool.Query(ctx,
		`SELECT DISTINCT product_id::text FROM order_items WHERE order_id = ANY($1::uuid[])`,
		uuidStrings(orderIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	productIDs, err := collectIDs(rows)
	if err != nil {
		return nil, fmt.Errorf("scan order item product ids: %w", err)
	}
	return productIDs, nil
}

// CartProducts returns the user's current cart as (id, category) pairs.
func (r *Repository) CartProducts(ctx context.Context, userID uuid.UUID) ([]domain.ProductRef, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT ci.product_id::text, COALESCE(p.category, '')
		 FROM cart_items ci
		 JOIN products p ON p.id = ci.product_id
		 WHERE ci.user_id = $1::uuid`,
		userID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("query cart for user %s: %w", userID, err)
	}
	return collectRefs(rows)
}

// RecentlyViewedProducts returns distinct (id, category) pairs the user
// viewed at or after since.
func (r *Repository) RecentlyViewedProducts(ctx context.Context, userID uuid.UUID, since time.Time) ([]domain.ProductRef, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT pv.product_id::text, COALESCE(p.category, '')
		 FROM product_views pv
		 JOIN products p ON p.id = pv.product_id
		 WHERE pv.user_id = $1::uuid AND pv.viewed_at >= $2`,
		userID.String(), since,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent views for user %s: %w", userID, err)
	}
	return collectRefs(rows)
}

// Associations returns partner products for the given ids in one
// orientation, ordered by association count descending.
func (r *Repository) Associations(ctx context.Context, productIDs []uuid.UUID, o recommender.Orientation, limit int) ([]domain.AssociatedProduct, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	matchCol, otherCol := "product_a_id", "product_b_id"
	if o == recommender.Reverse {
		matchCol, otherCol = otherCol, matchCol
	}
	query := fmt.Sprintf(
		`SELECT %s::text, association_count FROM product_associations
		 WHERE %s = ANY($1::uuid[])
		 ORDER BY association_count DESC LIMIT $2`,
		otherCol, matchCol,
	)

	rows, err := r.pool.Query(ctx, query, uuidStrings(productIDs), limit)
	if err != nil {
		return nil, fmt.Errorf("query associations: %w", err)
	}
	defer rows.Close()

	var assocs []domain.AssociatedProduct
	for rows.Next() {
		var (
			id string
			a  domain.AssociatedProduct
		)
		if err := rows.Scan(&id, &a.Count); err != nil {
			return nil, fmt.Errorf("scan association: %w", err)
		}
		if a.ProductID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse association product id %q: %w", id, err)
		}
		assocs = append(assocs, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate associations: %w", err)
	}
	return assocs, nil
}

func collectIDs(rows pgx.Rows) ([]uuid.UUID, error) {
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("parse id %q: %w", s, err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func collectRefs(rows pgx.Rows) ([]domain.ProductRef, error) {
	defer rows.Close()
	var refs []domain.ProductRef
	for rows.Next() {
		var (
			id  string
			ref domain.ProductRef
		)
		if err := rows.Scan(&id, &ref.Category); err != nil {
			return nil, fmt.Errorf("scan product ref: %w", err)
		}
		var err error
		if ref.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse product id %q: %w", id, err)
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}
