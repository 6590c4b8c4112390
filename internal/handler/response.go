package handler

import (
	"github.com/google/uuid"

	"github.com/okazarian/product-recommendation-service/internal/domain"
)

type RecommendationResponse struct {
	UserID          *uuid.UUID                `json:"user_id,omitempty"`
	Recommendations []domain.Product          `json:"recommendations"`
	Metadata        domain.RecommendationMeta `json:"metadata"`
}

type ProductListResponse struct {
	Products []domain.Product `json:"products"`
	Total    int              `json:"total"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
