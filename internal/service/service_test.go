package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/okazarian/product-recommendation-service/internal/domain"
	"github.com/okazarian/product-recommendation-service/internal/recommender"
)

type fakeStore struct {
	products     []domain.Product
	associations []domain.Association

	views        []domain.ProductView
	insertErr    error
	incrementErr error
	incremented  []uuid.UUID
}

func (f *fakeStore) EligibleProducts(_ context.Context, filter recommender.ProductFilter) ([]domain.Product, error) {
	categories := map[string]struct{}{}
	for _, c := range filter.Categories {
		categories[c] = struct{}{}
	}
	want := recommender.NewExclusionSet(filter.IDs...)
	skip := recommender.NewExclusionSet(filter.ExcludeIDs...)

	var out []domain.Product
	for _, p := range f.products {
		if !p.Eligible() || skip.Contains(p.ID) {
			continue
		}
		if len(filter.Categories) > 0 {
			if _, ok := categories[p.Category]; !ok {
				continue
			}
		}
		if len(filter.IDs) > 0 && !want.Contains(p.ID) {
			continue
		}
		if filter.PriceMin != nil && p.Price.LessThan(*filter.PriceMin) {
			continue
		}
		if filter.PriceMax != nil && p.Price.GreaterThan(*filter.PriceMax) {
			continue
		}
		out = append(out, p)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (f *fakeStore) CategoriesOf(context.Context, []uuid.UUID) ([]string, error) { return nil, nil }

func (f *fakeStore) CompletedOrderProductIDs(context.Context, uuid.UUID) ([]uuid.UUID, error) {
	return nil, nil
}

func (f *fakeStore) CartProducts(context.Context, uuid.UUID) ([]domain.ProductRef, error) {
	return nil, nil
}

func (f *fakeStore) RecentlyViewedProducts(context.Context, uuid.UUID, time.Time) ([]domain.ProductRef, error) {
	return nil, nil
}

func (f *fakeStore) Associations(_ context.Context, productIDs []uuid.UUID, o recommender.Orientation, limit int) ([]domain.AssociatedProduct, error) {
	match := recommender.NewExclusionSet(productIDs...)
	var out []domain.AssociatedProduct
	for _, a := range f.associations {
		if o == recommender.Forward && match.Contains(a.ProductAID) {
			out = append(out, domain.AssociatedProduct{ProductID: a.ProductBID, Count: a.Count})
		}
		if o == recommender.Reverse && match.Contains(a.ProductBID) {
			out = append(out, domain.AssociatedProduct{ProductID: a.ProductAID, Count: a.Count})
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) ProductByID(_ context.Context, id uuid.UUID) (*domain.Product, error) {
	for _, p := range f.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, domain.ErrProductNotFound
}

func (f *fakeStore) InsertProductView(_ context.Context, v domain.ProductView) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.views = append(f.views, v)
	return nil
}

func (f *fakeStore) IncrementViewCount(_ context.Context, id uuid.UUID) error {
	if f.incrementErr != nil {
		return f.incrementErr
	}
	f.incremented = append(f.incremented, id)
	return nil
}

type fakeCache struct {
	entries map[string][]domain.Product
	sets    int
	cleared []uuid.UUID
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]domain.Product{}}
}

func cacheKey(userID uuid.UUID, limit int) string {
	return fmt.Sprintf("%s:%d", userID, limit)
}

func (c *fakeCache) Get(_ context.Context, userID uuid.UUID, limit int) ([]domain.Product, bool, error) {
	products, ok := c.entries[cacheKey(userID, limit)]
	return products, ok, nil
}

func (c *fakeCache) Set(_ context.Context, userID uuid.UUID, limit int, products []domain.Product) error {
	c.sets++
	c.entries[cacheKey(userID, limit)] = products
	return nil
}

func (c *fakeCache) ClearUser(_ context.Context, userID uuid.UUID) error {
	c.cleared = append(c.cleared, userID)
	prefix := userID.String() + ":"
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	return nil
}

func product(name, category string, price float64, purchases int) domain.Product {
	return domain.Product{
		ID:            uuid.New(),
		Name:          name,
		Category:      category,
		Price:         decimal.NewFromFloat(price),
		StockQuantity: 5,
		PurchaseCount: purchases,
		IsActive:      true,
	}
}

func TestSimilarProductsPriceBand(t *testing.T) {
	source := product("Lavender Soap", "soap", 100, 10)
	inBandLow := product("Olive Soap", "soap", 70, 2)
	inBandHigh := product("Charcoal Soap", "soap", 130, 8)
	tooCheap := product("Sample Bar", "soap", 69.99, 50)
	tooExpensive := product("Gift Set", "soap", 130.01, 50)
	otherCategory := product("Shampoo", "haircare", 100, 50)

	store := &fakeStore{products: []domain.Product{
		source, inBandLow, inBandHigh, tooCheap, tooExpensive, otherCategory,
	}}
	svc := New(store, newFakeCache())

	got, err := svc.SimilarProducts(context.Background(), source.ID, 8)
	if err != nil {
		t.Fatalf("SimilarProducts: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 products in the [70, 130] band, got %d", len(got))
	}
	// Ranked by purchase count descending.
	if got[0].ID != inBandHigh.ID || got[1].ID != inBandLow.ID {
		t.Errorf("expected [Charcoal Soap, Olive Soap], got [%s %s]", got[0].Name, got[1].Name)
	}
	for _, p := range got {
		if p.ID == source.ID {
			t.Error("source product must not recommend itself")
		}
	}
}

func TestSimilarProductsUnknownProduct(t *testing.T) {
	svc := New(&fakeStore{}, newFakeCache())

	got, err := svc.SimilarProducts(context.Background(), uuid.New(), 8)
	if err != nil {
		t.Fatalf("expected unknown product to yield an empty list, got error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty list, got %d products", len(got))
	}
}

func TestFrequentlyBoughtTogether(t *testing.T) {
	source := product("Camera", "electronics", 300, 1)
	tripod := product("Tripod", "accessories", 40, 2)
	bag := product("Camera Bag", "accessories", 25, 1)
	strap := product("Strap", "accessories", 10, 1)

	store := &fakeStore{
		products: []domain.Product{source, tripod, bag, strap},
		associations: []domain.Association{
			{ProductAID: source.ID, ProductBID: tripod.ID, Count: 9},
			{ProductAID: bag.ID, ProductBID: source.ID, Count: 7},
			// Duplicate partner via the reverse orientation.
			{ProductAID: tripod.ID, ProductBID: source.ID, Count: 5},
			{ProductAID: strap.ID, ProductBID: source.ID, Count: 2},
		},
	}
	svc := New(store, newFakeCache())

	got, err := svc.FrequentlyBoughtTogether(context.Background(), source.ID, 2)
	if err != nil {
		t.Fatalf("FrequentlyBoughtTogether: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 products, got %d", len(got))
	}
	// Forward orientation first, then reverse, deduplicated and capped.
	if got[0].ID != tripod.ID || got[1].ID != bag.ID {
		t.Errorf("expected [Tripod, Camera Bag], got [%s %s]", got[0].Name, got[1].Name)
	}
}

func TestTrackViewBestEffort(t *testing.T) {
	p := product("Vitamin C", "vitamins", 12, 1)
	userID := uuid.New()

	t.Run("both writes succeed", func(t *testing.T) {
		store := &fakeStore{products: []domain.Product{p}}
		cache := newFakeCache()
		svc := New(store, cache)

		got := svc.TrackView(context.Background(), domain.ProductView{ProductID: p.ID, UserID: userID})
		if !got.ViewRecorded || !got.CountIncremented {
			t.Errorf("expected full success, got %+v", got)
		}
		if len(store.views) != 1 || store.views[0].Source != "unknown" {
			t.Errorf("expected one view with defaulted source, got %+v", store.views)
		}
		if len(cache.cleared) != 1 || cache.cleared[0] != userID {
			t.Errorf("expected cache invalidation for user, got %v", cache.cleared)
		}
	})

	t.Run("increment fails", func(t *testing.T) {
		store := &fakeStore{products: []domain.Product{p}, incrementErr: errors.New("update failed")}
		svc := New(store, newFakeCache())

		got := svc.TrackView(context.Background(), domain.ProductView{ProductID: p.ID})
		if !got.ViewRecorded || got.CountIncremented {
			t.Errorf("expected view recorded without increment, got %+v", got)
		}
	})

	t.Run("insert fails", func(t *testing.T) {
		store := &fakeStore{insertErr: errors.New("missing product")}
		cache := newFakeCache()
		svc := New(store, cache)

		got := svc.TrackView(context.Background(), domain.ProductView{ProductID: uuid.New(), UserID: userID})
		if got.ViewRecorded || got.CountIncremented {
			t.Errorf("expected full failure indicator, got %+v", got)
		}
		if len(store.incremented) != 0 {
			t.Error("counter must not be bumped when the view insert fails")
		}
	})
}

func TestPersonalizedCaching(t *testing.T) {
	products := []domain.Product{
		product("A", "", 1, 3),
		product("B", "", 2, 7),
	}
	store := &fakeStore{products: products}
	cache := newFakeCache()
	svc := New(store, cache)
	userID := uuid.New()

	first := svc.Personalized(context.Background(), userID, 2, nil)
	if first.CacheHit {
		t.Error("first call must miss the cache")
	}
	if cache.sets != 1 {
		t.Errorf("expected one cache fill, got %d", cache.sets)
	}

	second := svc.Personalized(context.Background(), userID, 2, nil)
	if !second.CacheHit {
		t.Error("second call must hit the cache")
	}
	if len(second.Products) != len(first.Products) {
		t.Errorf("cached list differs: %d vs %d", len(second.Products), len(first.Products))
	}

	// Caller exclusions bypass the cache in both directions.
	excluded := svc.Personalized(context.Background(), userID, 2, []uuid.UUID{products[1].ID})
	if excluded.CacheHit {
		t.Error("request with exclusions must not hit the cache")
	}
	if cache.sets != 1 {
		t.Errorf("request with exclusions must not fill the cache, got %d sets", cache.sets)
	}
	for _, p := range excluded.Products {
		if p.ID == products[1].ID {
			t.Error("excluded product in output")
		}
	}
}

func TestPersonalizedLimitClamp(t *testing.T) {
	var products []domain.Product
	for i := 0; i < 60; i++ {
		products = append(products, product(fmt.Sprintf("P%d", i), "", 1, i))
	}
	svc := New(&fakeStore{products: products}, newFakeCache())

	if got := svc.Personalized(context.Background(), uuid.Nil, 500, nil); len(got.Products) != maxLimit {
		t.Errorf("expected clamp to %d, got %d", maxLimit, len(got.Products))
	}
	if got := svc.Personalized(context.Background(), uuid.Nil, 0, nil); len(got.Products) != defaultLimit {
		t.Errorf("expected default limit %d, got %d", defaultLimit, len(got.Products))
	}
}
