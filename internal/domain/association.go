package domain

import "github.com/google/uuid"

// Association records how often two products co-occurred in completed orders.
// The pair is unordered: a lookup for product X must check both the
// (X, *) and (*, X) orientations.
type Association struct {
	ProductAID uuid.UUID `json:"product_a_id"`
	ProductBID uuid.UUID `json:"product_b_id"`
	Count      int       `json:"association_count"`
}

// AssociatedProduct is one side of an association as seen from the other:
// the partner product id and the co-occurrence count.
type AssociatedProduct struct {
	ProductID uuid.UUID
	Count     int
}
