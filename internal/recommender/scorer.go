package recommender

import (
	"sort"

	"github.com/okazarian/product-recommendation-service/internal/domain"
)

// Popularity weights. Purchases are the strongest relevance signal;
// trending_score is an externally maintained decay-weighted signal folded
// in at unit weight.
const (
	trendingWeight = 1.0
	purchaseWeight = 10.0
	viewWeight     = 0.1
)

// PopularityScore computes the ranking score used by the trending fallback.
// The score exists only for ordering and is never persisted or returned.
func PopularityScore(p domain.Product) float64 {
	return p.TrendingScore*trendingWeight +
		float64(p.PurchaseCount)*purchaseWeight +
		float64(p.ViewCount)*viewWeight
}

// RankByPopularity sorts products by popularity score descending.
// Equal scores keep their retrieval order.
func RankByPopularity(products []domain.Product) {
	sort.SliceStable(products, func(i, j int) bool {
		return PopularityScore(products[i]) > PopularityScore(products[j])
	})
}
