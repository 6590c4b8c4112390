package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/okazarian/product-recommendation-service/internal/domain"
	"github.com/okazarian/product-recommendation-service/internal/handler"
	"github.com/okazarian/product-recommendation-service/internal/recommender"
	"github.com/okazarian/product-recommendation-service/internal/router"
	"github.com/okazarian/product-recommendation-service/internal/service"
)

// stubStore is an empty store: every query succeeds with no rows, so the
// handlers exercise their empty-result paths.
type stubStore struct{}

func (stubStore) EligibleProducts(context.Context, recommender.ProductFilter) ([]domain.Product, error) {
	return nil, nil
}
func (stubStore) CategoriesOf(context.Context, []uuid.UUID) ([]string, error) { return nil, nil }
func (stubStore) CompletedOrderProductIDs(context.Context, uuid.UUID) ([]uuid.UUID, error) {
	return nil, nil
}
func (stubStore) CartProducts(context.Context, uuid.UUID) ([]domain.ProductRef, error) {
	return nil, nil
}
func (stubStore) RecentlyViewedProducts(context.Context, uuid.UUID, time.Time) ([]domain.ProductRef, error) {
	return nil, nil
}
func (stubStore) Associations(context.Context, []uuid.UUID, recommender.Orientation, int) ([]domain.AssociatedProduct, error) {
	return nil, nil
}
func (stubStore) ProductByID(context.Context, uuid.UUID) (*domain.Product, error) {
	return nil, domain.ErrProductNotFound
}
func (stubStore) InsertProductView(context.Context, domain.ProductView) error { return nil }
func (stubStore) IncrementViewCount(context.Context, uuid.UUID) error         { return nil }

type stubCache struct{}

func (stubCache) Get(context.Context, uuid.UUID, int) ([]domain.Product, bool, error) {
	return nil, false, nil
}
func (stubCache) Set(context.Context, uuid.UUID, int, []domain.Product) error { return nil }
func (stubCache) ClearUser(context.Context, uuid.UUID) error                  { return nil }

func testServer() http.Handler {
	svc := service.New(stubStore{}, stubCache{})
	return router.Setup(handler.NewHandler(svc))
}

func doRequest(t *testing.T, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	testServer().ServeHTTP(rec, req)
	return rec
}

func TestPersonalizedInvalidParams(t *testing.T) {
	cases := []string{
		"/products/recommendations/personalized?limit=0",
		"/products/recommendations/personalized?limit=51",
		"/products/recommendations/personalized?limit=abc",
		"/products/recommendations/personalized?user_id=not-a-uuid",
		"/products/recommendations/personalized?exclude_ids=not-a-uuid",
	}
	for _, target := range cases {
		if rec := doRequest(t, http.MethodGet, target); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", target, rec.Code)
		}
	}
}

func TestPersonalizedEmptyCatalog(t *testing.T) {
	rec := doRequest(t, http.MethodGet, "/products/recommendations/personalized?limit=5")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Recommendations []domain.Product          `json:"recommendations"`
		Metadata        domain.RecommendationMeta `json:"metadata"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Recommendations == nil {
		t.Error("recommendations must encode as an empty array, not null")
	}
	if resp.Metadata.TotalCount != 0 {
		t.Errorf("expected total_count 0, got %d", resp.Metadata.TotalCount)
	}
}

func TestSimilarProductsInvalidID(t *testing.T) {
	rec := doRequest(t, http.MethodGet, "/products/not-a-uuid/similar")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestSimilarProductsUnknownProduct(t *testing.T) {
	rec := doRequest(t, http.MethodGet, "/products/"+uuid.NewString()+"/similar")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with empty list, got %d", rec.Code)
	}

	var resp struct {
		Products []domain.Product `json:"products"`
		Total    int              `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Products == nil || resp.Total != 0 {
		t.Errorf("expected empty product list, got %+v", resp)
	}
}

func TestTrackViewReportsOutcome(t *testing.T) {
	target := "/products/" + uuid.NewString() + "/track-view?source=search"
	rec := doRequest(t, http.MethodPost, target)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var result domain.TrackResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !result.ViewRecorded || !result.CountIncremented {
		t.Errorf("expected both writes reported as succeeded, got %+v", result)
	}
}

func TestTrackViewInvalidUserID(t *testing.T) {
	target := "/products/" + uuid.NewString() + "/track-view?user_id=bogus"
	if rec := doRequest(t, http.MethodPost, target); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	if rec := doRequest(t, http.MethodGet, "/health"); rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}
