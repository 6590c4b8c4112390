// Package recommender implements the candidate-generation and ranking
// pipeline. Five strategies run in fixed priority order against a shared
// exclusion set; each contributes at most the remaining quota and the chain
// short-circuits once the requested limit is filled. The trending strategy
// is the universal fallback and needs no user.
package recommender

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/okazarian/product-recommendation-service/internal/domain"
)

// ProductFilter narrows an eligible-product query. Eligibility
// (is_active and stock_quantity > 0) is implied on every query;
// zero-value fields are not applied.
type ProductFilter struct {
	Categories []string
	IDs        []uuid.UUID
	ExcludeIDs []uuid.UUID
	PriceMin   *decimal.Decimal
	PriceMax   *decimal.Decimal
	Limit      int
}

// Catalog is the product-store query interface.
type Catalog interface {
	// EligibleProducts returns active, in-stock products matching the
	// filter, in the store's natural retrieval order.
	EligibleProducts(ctx context.Context, f ProductFilter) ([]domain.Product, error)

	// CategoriesOf returns the distinct non-empty categories of the
	// given products.
	CategoriesOf(ctx context.Context, ids []uuid.UUID) ([]string, error)
}

// Orientation selects which side of a product association to match on.
type Orientation int

const (
	// Forward matches product_a_id and yields product_b_id.
	Forward Orientation = iota
	// Reverse matches product_b_id and yields product_a_id.
	Reverse
)

// Activity is the user-activity query interface.
type Activity interface {
	// CompletedOrderProductIDs returns the distinct product ids from the
	// user's completed orders.
	CompletedOrderProductIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)

	// CartProducts returns the products currently in the user's cart.
	CartProducts(ctx context.Context, userID uuid.UUID) ([]domain.ProductRef, error)

	// RecentlyViewedProducts returns products the user viewed at or after
	// the given instant.
	RecentlyViewedProducts(ctx context.Context, userID uuid.UUID, since time.Time) ([]domain.ProductRef, error)

	// Associations returns partner products for the given ids in one
	// orientation, ordered by association count descending.
	Associations(ctx context.Context, productIDs []uuid.UUID, o Orientation, limit int) ([]domain.AssociatedProduct, error)
}
