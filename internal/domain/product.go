package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Category      string          `json:"category,omitempty"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	PurchaseCount int             `json:"purchase_count"`
	ViewCount     int             `json:"view_count"`
	TrendingScore float64         `json:"trending_score"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Eligible reports whether the product may appear in any recommendation list.
func (p Product) Eligible() bool {
	return p.IsActive && p.StockQuantity > 0
}

// ProductRef is the (id, category) pair returned by activity queries.
// Category is empty when the product has none.
type ProductRef struct {
	ID       uuid.UUID
	Category string
}
