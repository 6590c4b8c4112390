package recommender

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/okazarian/product-recommendation-service/internal/domain"
)

// ExclusionSet tracks product ids that must not be recommended again within
// one request. It grows as strategies contribute candidates and is never
// shared across requests.
type ExclusionSet map[uuid.UUID]struct{}

func NewExclusionSet(ids ...uuid.UUID) ExclusionSet {
	s := make(ExclusionSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s ExclusionSet) Add(id uuid.UUID) { s[id] = struct{}{} }

func (s ExclusionSet) Contains(id uuid.UUID) bool {
	_, ok := s[id]
	return ok
}

// IDs returns the set members as a slice, for passing to store filters.
func (s ExclusionSet) IDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	return ids
}

// accumulator owns the per-request result list and exclusion set so each
// strategy sees the combined output of everything before it.
type accumulator struct {
	limit    int
	products []domain.Product
	exclude  ExclusionSet
}

func (a *accumulator) remaining() int { return a.limit - len(a.products) }

func (a *accumulator) full() bool { return a.remaining() <= 0 }

func (a *accumulator) add(products []domain.Product) {
	for _, p := range products {
		if a.full() {
			return
		}
		if a.exclude.Contains(p.ID) {
			continue
		}
		a.products = append(a.products, p)
		a.exclude.Add(p.ID)
	}
}

// Request describes one recommendation call. UserID is uuid.Nil for
// anonymous requests, which skip the personalized strategies entirely.
type Request struct {
	UserID     uuid.UUID
	Limit      int
	ExcludeIDs []uuid.UUID
}

// Engine runs the strategy chain.
type Engine struct {
	personalized []Strategy
	fallback     Strategy
}

func New(catalog Catalog, activity Activity) *Engine {
	return &Engine{
		personalized: []Strategy{
			&purchaseHistory{catalog: catalog, activity: activity},
			&cartBased{catalog: catalog, activity: activity},
			&browsingHistory{catalog: catalog, activity: activity, now: time.Now},
			&collaborative{catalog: catalog, activity: activity},
		},
		fallback: &trending{catalog: catalog},
	}
}

// Recommend runs the personalized strategies in priority order, then fills
// any remaining quota from the trending fallback. A failing strategy
// contributes nothing and the chain moves on; the pipeline itself never
// fails, so an empty or under-filled list is a valid result.
func (e *Engine) Recommend(ctx context.Context, req Request) []domain.Product {
	if req.Limit <= 0 {
		return nil
	}

	acc := &accumulator{
		limit:   req.Limit,
		exclude: NewExclusionSet(req.ExcludeIDs...),
	}

	if req.UserID != uuid.Nil {
		for _, s := range e.personalized {
			if acc.full() {
				break
			}
			e.run(ctx, s, req.UserID, acc)
		}
	}

	if !acc.full() {
		e.run(ctx, e.fallback, req.UserID, acc)
	}

	return acc.products
}

func (e *Engine) run(ctx context.Context, s Strategy, userID uuid.UUID, acc *accumulator) {
	products, err := s.Generate(ctx, userID, acc.remaining(), acc.exclude)
	if err != nil {
		log.Printf("[recommender] %s strategy: %v", s.Name(), err)
		return
	}
	acc.add(products)
}
