// Package service orchestrates the recommendation engine, the product store
// and the cache behind the HTTP handlers.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/okazarian/product-recommendation-service/internal/domain"
	"github.com/okazarian/product-recommendation-service/internal/recommender"
)

const (
	defaultLimit = 12
	maxLimit     = 50

	// similarPriceBand is the relative width of the similar-products price
	// window: candidates must fall within +/-30% of the source price.
	similarPriceBand = 0.3

	similarOverfetch = 3
)

// Store is everything the service needs from the product store. The
// repository implements it; tests substitute an in-memory fake.
type Store interface {
	recommender.Catalog
	recommender.Activity
	ProductByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	InsertProductView(ctx context.Context, v domain.ProductView) error
	IncrementViewCount(ctx context.Context, productID uuid.UUID) error
}

// RecCache caches generated recommendation lists.
type RecCache interface {
	Get(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Product, bool, error)
	Set(ctx context.Context, userID uuid.UUID, limit int, products []domain.Product) error
	ClearUser(ctx context.Context, userID uuid.UUID) error
}

type Service struct {
	store  Store
	cache  RecCache
	engine *recommender.Engine
}

func New(store Store, cache RecCache) *Service {
	return &Service{
		store:  store,
		cache:  cache,
		engine: recommender.New(store, store),
	}
}

// Personalized returns up to limit recommendations for the user (uuid.Nil
// for anonymous requests). Strategy failures degrade to fewer candidates, so
// there is no error path; an empty list is a valid response. Requests with
// caller exclusions bypass the cache.
func (s *Service) Personalized(ctx context.Context, userID uuid.UUID, limit int, excludeIDs []uuid.UUID) *domain.RecommendationResult {
	if limit <= 0 {
		limit = defaultLimit
	} else if limit > maxLimit {
		limit = maxLimit
	}

	cacheable := len(excludeIDs) == 0
	if cacheable {
		cached, found, err := s.cache.Get(ctx, userID, limit)
		if err != nil {
			log.Printf("[service] cache get for user %s: %v", userKey(userID), err)
		}
		if found {
			return &domain.RecommendationResult{Products: cached, CacheHit: true}
		}
	}

	products := s.engine.Recommend(ctx, recommender.Request{
		UserID:     userID,
		Limit:      limit,
		ExcludeIDs: excludeIDs,
	})

	if cacheable {
		if err := s.cache.Set(ctx, userID, limit, products); err != nil {
			log.Printf("[service] cache set for user %s: %v", userKey(userID), err)
		}
	}
	return &domain.RecommendationResult{Products: products}
}

// SimilarProducts returns eligible products in the source product's category
// priced within the +/-30% band, ranked by purchase count. An unknown source
// product or one without a category yields an empty list.
func (s *Service) SimilarProducts(ctx context.Context, productID uuid.UUID, limit int) ([]domain.Product, error) {
	if limit <= 0 || limit > maxLimit {
		limit = maxLimit
	}

	source, err := s.store.ProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch source product: %w", err)
	}
	if source.Category == "" {
		return nil, nil
	}

	band := source.Price.Mul(decimal.NewFromFloat(similarPriceBand))
	priceMin := source.Price.Sub(band)
	priceMax := source.Price.Add(band)

	products, err := s.store.EligibleProducts(ctx, recommender.ProductFilter{
		Categories: []string{source.Category},
		ExcludeIDs: []uuid.UUID{source.ID},
		PriceMin:   &priceMin,
		PriceMax:   &priceMax,
		Limit:      limit * similarOverfetch,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch similar products: %w", err)
	}

	sort.SliceStable(products, func(i, j int) bool {
		return products[i].PurchaseCount > products[j].PurchaseCount
	})
	if len(products) > limit {
		products = products[:limit]
	}
	return products, nil
}

// FrequentlyBoughtTogether unions the top associated products from both
// pairing orientations, forward first, deduplicated and capped at limit. No
// ranking is applied beyond the per-orientation association-count order.
func (s *Service) FrequentlyBoughtTogether(ctx context.Context, productID uuid.UUID, limit int) ([]domain.Product, error) {
	if limit <= 0 || limit > maxLimit {
		limit = maxLimit
	}
	source := []uuid.UUID{productID}

	forward, err := s.store.Associations(ctx, source, recommender.Forward, limit)
	if err != nil {
		return nil, fmt.Errorf("forward associations: %w", err)
	}
	reverse, err := s.store.Associations(ctx, source, recommender.Reverse, limit)
	if err != nil {
		return nil, fmt.Errorf("reverse associations: %w", err)
	}

	seen := recommender.NewExclusionSet(productID)
	var ranked []uuid.UUID
	for _, a := range append(forward, reverse...) {
		if seen.Contains(a.ProductID) {
			continue
		}
		seen.Add(a.ProductID)
		ranked = append(ranked, a.ProductID)
	}
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	if len(ranked) == 0 {
		return nil, nil
	}

	products, err := s.store.EligibleProducts(ctx, recommender.ProductFilter{IDs: ranked})
	if err != nil {
		return nil, fmt.Errorf("fetch associated products: %w", err)
	}

	byID := make(map[uuid.UUID]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	out := make([]domain.Product, 0, len(ranked))
	for _, id := range ranked {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// TrackView records a view event and bumps the product's view counter. Both
// writes are best-effort: failures are logged and reported in the result,
// never raised. A successful view invalidates the user's cached lists.
func (s *Service) TrackView(ctx context.Context, view domain.ProductView) domain.TrackResult {
	if view.ViewedAt.IsZero() {
		view.ViewedAt = time.Now().UTC()
	}
	if view.Source == "" {
		view.Source = "unknown"
	}

	var result domain.TrackResult
	if err := s.store.InsertProductView(ctx, view); err != nil {
		log.Printf("[service] record view for product %s: %v", view.ProductID, err)
		return result
	}
	result.ViewRecorded = true

	if err := s.store.IncrementViewCount(ctx, view.ProductID); err != nil {
		log.Printf("[service] increment view count for product %s: %v", view.ProductID, err)
	} else {
		result.CountIncremented = true
	}

	if view.UserID != uuid.Nil {
		if err := s.cache.ClearUser(ctx, view.UserID); err != nil {
			log.Printf("[service] cache invalidation for user %s: %v", view.UserID, err)
		}
	}
	return result
}

func userKey(userID uuid.UUID) string {
	if userID == uuid.Nil {
		return "anon"
	}
	return userID.String()
}
