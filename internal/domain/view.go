package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProductView is a single view event. UserID is uuid.Nil for anonymous
// sessions; SessionID and Source are optional.
type ProductView struct {
	ProductID uuid.UUID
	UserID    uuid.UUID
	SessionID string
	Source    string
	ViewedAt  time.Time
}

// TrackResult separates the primary write (the view event) from the
// best-effort counter bump so callers can observe both outcomes.
type TrackResult struct {
	ViewRecorded     bool `json:"view_recorded"`
	CountIncremented bool `json:"count_incremented"`
}
