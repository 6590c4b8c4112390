package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/okazarian/product-recommendation-service/internal/domain"
)

const defaultPersonalizedLimit = 12

// GET /products/recommendations/personalized
//
// user_id is optional: anonymous requests are served entirely from the
// trending fallback. exclude_ids is a comma-separated list of product ids.
func (h *Handler) GetPersonalizedRecommendations(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, defaultPersonalizedLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid limit parameter")
		return
	}

	userID := uuid.Nil
	if userIDStr := r.URL.Query().Get("user_id"); userIDStr != "" {
		parsed, err := uuid.Parse(userIDStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid user_id parameter")
			return
		}
		userID = parsed
	}

	excludeIDs, err := parseIDList(r.URL.Query().Get("exclude_ids"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid exclude_ids parameter")
		return
	}

	result := h.service.Personalized(r.Context(), userID, limit, excludeIDs)

	resp := RecommendationResponse{
		Recommendations: emptyIfNil(result.Products),
		Metadata: domain.RecommendationMeta{
			CacheHit:    result.CacheHit,
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
			TotalCount:  len(result.Products),
		},
	}
	if userID != uuid.Nil {
		resp.UserID = &userID
	}

	writeJSON(w, http.StatusOK, resp)
}

func emptyIfNil(products []domain.Product) []domain.Product {
	if products == nil {
		return []domain.Product{}
	}
	return products
}
