package recommender

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/okazarian/product-recommendation-service/internal/domain"
)

const (
	// browsingWindow bounds the browsing-history strategy to recent views.
	browsingWindow = 30 * 24 * time.Hour

	// Candidate pools are over-fetched so in-memory ranking has enough to
	// choose from after exclusions.
	candidateOverfetch = 3
	assocOverfetch     = 2
	trendingOverfetch  = 5
)

// Strategy generates ranked candidates. Implementations must return at most
// quota products and never one whose id is in exclude.
type Strategy interface {
	Name() string
	Generate(ctx context.Context, userID uuid.UUID, quota int, exclude ExclusionSet) ([]domain.Product, error)
}

// categoryCandidates is the shared body of the three category-driven
// strategies: fetch eligible products in the given categories, excluding the
// user's own source products and everything already recommended, then rank
// by metric descending. Ties keep the catalog's retrieval order.
func categoryCandidates(ctx context.Context, catalog Catalog, categories []string, sourceIDs []uuid.UUID, quota int, exclude ExclusionSet, metric func(domain.Product) int) ([]domain.Product, error) {
	excludeIDs := append(exclude.IDs(), sourceIDs...)
	products, err := catalog.EligibleProducts(ctx, ProductFilter{
		Categories: categories,
		ExcludeIDs: excludeIDs,
		Limit:      quota * candidateOverfetch,
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(products, func(i, j int) bool {
		return metric(products[i]) > metric(products[j])
	})
	if len(products) > quota {
		products = products[:quota]
	}
	return products, nil
}

// purchaseHistory recommends products from categories the user has bought
// from, excluding what they already own, ranked by purchase count.
type purchaseHistory struct {
	catalog  Catalog
	activity Activity
}

func (s *purchaseHistory) Name() string { return "purchase-history" }

func (s *purchaseHistory) Generate(ctx context.Context, userID uuid.UUID, quota int, exclude ExclusionSet) ([]domain.Product, error) {
	purchased, err := s.activity.CompletedOrderProductIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("completed order products: %w", err)
	}
	if len(purchased) == 0 {
		return nil, nil
	}

	categories, err := s.catalog.CategoriesOf(ctx, purchased)
	if err != nil {
		return nil, fmt.Errorf("purchased categories: %w", err)
	}
	if len(categories) == 0 {
		return nil, nil
	}

	return categoryCandidates(ctx, s.catalog, categories, purchased, quota, exclude,
		func(p domain.Product) int { return p.PurchaseCount })
}

// cartBased recommends products from the categories of the user's current
// cart, excluding the cart items themselves, ranked by purchase count.
type cartBased struct {
	catalog  Catalog
	activity Activity
}

func (s *cartBased) Name() string { return "cart-based" }

func (s *cartBased) Generate(ctx context.Context, userID uuid.UUID, quota int, exclude ExclusionSet) ([]domain.Product, error) {
	items, err := s.activity.CartProducts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("cart products: %w", err)
	}
	categories, sourceIDs := splitRefs(items)
	if len(categories) == 0 {
		return nil, nil
	}

	return categoryCandidates(ctx, s.catalog, categories, sourceIDs, quota, exclude,
		func(p domain.Product) int { return p.PurchaseCount })
}

// browsingHistory recommends products from the categories the user viewed in
// the last 30 days, excluding the viewed products, ranked by view count.
type browsingHistory struct {
	catalog  Catalog
	activity Activity
	now      func() time.Time
}

func (s *browsingHistory) Name() string { return "browsing-history" }

func (s *browsingHistory) Generate(ctx context.Context, userID uuid.UUID, quota int, exclude ExclusionSet) ([]domain.Product, error) {
	since := s.now().Add(-browsingWindow)
	viewed, err := s.activity.RecentlyViewedProducts(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("recently viewed products: %w", err)
	}
	categories, sourceIDs := splitRefs(viewed)
	if len(categories) == 0 {
		return nil, nil
	}

	return categoryCandidates(ctx, s.catalog, categories, sourceIDs, quota, exclude,
		func(p domain.Product) int { return p.ViewCount })
}

// collaborative recommends partners of the user's purchases from the
// association table ("people who bought X also bought Y"). The forward
// orientation is tried first; reverse only when forward yields nothing.
type collaborative struct {
	catalog  Catalog
	activity Activity
}

func (s *collaborative) Name() string { return "collaborative" }

func (s *collaborative) Generate(ctx context.Context, userID uuid.UUID, quota int, exclude ExclusionSet) ([]domain.Product, error) {
	purchased, err := s.activity.CompletedOrderProductIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("completed order products: %w", err)
	}
	if len(purchased) == 0 {
		return nil, nil
	}

	assocs, err := s.activity.Associations(ctx, purchased, Forward, quota*assocOverfetch)
	if err != nil {
		return nil, fmt.Errorf("forward associations: %w", err)
	}
	if len(assocs) == 0 {
		assocs, err = s.activity.Associations(ctx, purchased, Reverse, quota*assocOverfetch)
		if err != nil {
			return nil, fmt.Errorf("reverse associations: %w", err)
		}
	}
	if len(assocs) == 0 {
		return nil, nil
	}

	// Associations arrive ranked by count; keep that order while dropping
	// the user's own purchases, prior exclusions and duplicate partners.
	owned := NewExclusionSet(purchased...)
	seen := NewExclusionSet()
	ranked := make([]uuid.UUID, 0, len(assocs))
	for _, a := range assocs {
		if exclude.Contains(a.ProductID) || owned.Contains(a.ProductID) || seen.Contains(a.ProductID) {
			continue
		}
		seen.Add(a.ProductID)
		ranked = append(ranked, a.ProductID)
	}
	if len(ranked) == 0 {
		return nil, nil
	}

	products, err := s.catalog.EligibleProducts(ctx, ProductFilter{IDs: ranked})
	if err != nil {
		return nil, fmt.Errorf("associated products: %w", err)
	}

	byID := make(map[uuid.UUID]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	out := make([]domain.Product, 0, quota)
	for _, id := range ranked {
		if len(out) == quota {
			break
		}
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// trending is the universal fallback: eligible catalog products ranked by
// the popularity score. It needs no user and is always runnable.
type trending struct {
	catalog Catalog
}

func (s *trending) Name() string { return "trending" }

func (s *trending) Generate(ctx context.Context, _ uuid.UUID, quota int, exclude ExclusionSet) ([]domain.Product, error) {
	// Over-fetch more aggressively when exclusions will thin the pool.
	fetch := quota * 2
	if len(exclude) > 0 {
		fetch = quota * trendingOverfetch
	}
	products, err := s.catalog.EligibleProducts(ctx, ProductFilter{
		ExcludeIDs: exclude.IDs(),
		Limit:      fetch,
	})
	if err != nil {
		return nil, fmt.Errorf("trending products: %w", err)
	}
	RankByPopularity(products)
	if len(products) > quota {
		products = products[:quota]
	}
	return products, nil
}

// splitRefs extracts the distinct categories (first-seen order) and the
// source product ids from an activity result.
func splitRefs(refs []domain.ProductRef) ([]string, []uuid.UUID) {
	var categories []string
	seen := make(map[string]struct{})
	ids := make([]uuid.UUID, 0, len(refs))
	for _, ref := range refs {
		ids = append(ids, ref.ID)
		if ref.Category == "" {
			continue
		}
		if _, ok := seen[ref.Category]; ok {
			continue
		}
		seen[ref.Category] = struct{}{}
		categories = append(categories, ref.Category)
	}
	return categories, ids
}
