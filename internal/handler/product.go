package handler

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/okazarian/product-recommendation-service/internal/domain"
)

const (
	defaultSimilarLimit = 8
	defaultFBTLimit     = 4
)

// GET /products/{productID}/similar
func (h *Handler) GetSimilarProducts(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}
	limit, err := parseLimit(r, defaultSimilarLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid limit parameter")
		return
	}

	products, err := h.service.SimilarProducts(r.Context(), productID, limit)
	if err != nil {
		// Degrade to an empty list; an unavailable store must not fail reads.
		log.Printf("[handler] similar products for %s: %v", productID, err)
		products = nil
	}

	writeJSON(w, http.StatusOK, ProductListResponse{
		Products: emptyIfNil(products),
		Total:    len(products),
	})
}

// GET /products/{productID}/frequently-bought-together
func (h *Handler) GetFrequentlyBoughtTogether(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}
	limit, err := parseLimit(r, defaultFBTLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid limit parameter")
		return
	}

	products, err := h.service.FrequentlyBoughtTogether(r.Context(), productID, limit)
	if err != nil {
		log.Printf("[handler] frequently bought together for %s: %v", productID, err)
		products = nil
	}

	writeJSON(w, http.StatusOK, ProductListResponse{
		Products: emptyIfNil(products),
		Total:    len(products),
	})
}

// POST /products/{productID}/track-view
//
// Tracking is best-effort: the response is 200 even when the writes fail,
// with the outcome reported in the body.
func (h *Handler) TrackProductView(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	view := domain.ProductView{
		ProductID: productID,
		SessionID: r.URL.Query().Get("session_id"),
		Source:    r.URL.Query().Get("source"),
	}
	if userIDStr := r.URL.Query().Get("user_id"); userIDStr != "" {
		userID, err := uuid.Parse(userIDStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid user_id parameter")
			return
		}
		view.UserID = userID
	}

	result := h.service.TrackView(r.Context(), view)
	writeJSON(w, http.StatusOK, result)
}

func productIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	productID, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid product id")
		return uuid.Nil, false
	}
	return productID, true
}
