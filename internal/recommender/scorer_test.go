package recommender

import (
	"testing"

	"github.com/okazarian/product-recommendation-service/internal/domain"
)

func TestPopularityScore(t *testing.T) {
	p := domain.Product{TrendingScore: 2.5, PurchaseCount: 3, ViewCount: 10}

	// 2.5*1.0 + 3*10.0 + 10*0.1
	if got := PopularityScore(p); got != 33.5 {
		t.Errorf("expected 33.5, got %f", got)
	}

	if got := PopularityScore(domain.Product{}); got != 0 {
		t.Errorf("expected 0 for zero product, got %f", got)
	}
}

func TestRankByPopularityStableTies(t *testing.T) {
	// Equal purchase counts tie exactly; retrieval order must survive.
	first := domain.Product{Name: "first", PurchaseCount: 4}
	second := domain.Product{Name: "second", PurchaseCount: 4}
	top := domain.Product{Name: "top", PurchaseCount: 9}

	products := []domain.Product{first, second, top}
	RankByPopularity(products)

	want := []string{"top", "first", "second"}
	for i, name := range want {
		if products[i].Name != name {
			t.Errorf("position %d: expected %s, got %s", i, name, products[i].Name)
		}
	}
}
