package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/okazarian/product-recommendation-service/internal/domain"
)

// InsertProductView records a single view event. A missing product fails the
// insert via the foreign key.
func (r *Repository) InsertProductView(ctx context.Context, v domain.ProductView) error {
	var userID, sessionID any
	if v.UserID != uuid.Nil {
		userID = v.UserID.String()
	}
	if v.SessionID != "" {
		sessionID = v.SessionID
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO product_views (product_id, user_id, session_id, source, viewed_at)
		 VALUES ($1::uuid, $2::uuid, $3, $4, $5)`,
		v.ProductID.String(), userID, sessionID, v.Source, v.ViewedAt,
	)
	if err != nil {
		return fmt.Errorf("insert view for product %s: %w", v.ProductID, err)
	}
	return nil
}

// IncrementViewCount bumps the product's view counter atomically.
func (r *Repository) IncrementViewCount(ctx context.Context, productID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE products SET view_count = view_count + 1 WHERE id = $1::uuid`,
		productID.String(),
	)
	if err != nil {
		return fmt.Errorf("increment view count for product %s: %w", productID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}
