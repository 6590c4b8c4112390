package seeds

import (
	"context"
	"fmt"
	"log"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Setup fills an empty database with a browsable catalog plus enough user
// activity (orders, carts, views, co-purchase associations) for every
// recommendation strategy to produce candidates.
func Setup(ctx context.Context, pool *pgxpool.Pool) error {
	rng := rand.New(rand.NewSource(42))

	// Truncate existing data before insert
	log.Println("[seed] truncating existing data")
	if _, err := pool.Exec(ctx, `
		TRUNCATE product_associations, product_views, cart_items, order_items, orders, products, users
		RESTART IDENTITY CASCADE
	`); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}

	log.Println("[seed] inserting users")
	userIDs, err := seedUsers(ctx, pool, 20)
	if err != nil {
		return fmt.Errorf("seed users: %w", err)
	}

	log.Println("[seed] inserting products")
	productIDs, err := seedProducts(ctx, pool, rng, 60)
	if err != nil {
		return fmt.Errorf("seed products: %w", err)
	}

	log.Println("[seed] inserting orders")
	orderItems, err := seedOrders(ctx, pool, rng, userIDs, productIDs, 40)
	if err != nil {
		return fmt.Errorf("seed orders: %w", err)
	}

	log.Println("[seed] inserting cart items")
	if err := seedCarts(ctx, pool, rng, userIDs, productIDs); err != nil {
		return fmt.Errorf("seed carts: %w", err)
	}

	log.Println("[seed] inserting product views")
	if err := seedViews(ctx, pool, rng, userIDs, productIDs, 300); err != nil {
		return fmt.Errorf("seed views: %w", err)
	}

	log.Println("[seed] inserting product associations")
	if err := seedAssociations(ctx, pool, orderItems); err != nil {
		return fmt.Errorf("seed associations: %w", err)
	}

	log.Println("[seed] seeding complete")
	return nil
}

func seedUsers(ctx context.Context, pool *pgxpool.Pool, n int) ([]uuid.UUID, error) {
	rows := []string{}
	args := []any{}
	ids := make([]uuid.UUID, 0, n)

	for i := 0; i < n; i++ {
		id := uuid.New()
		ids = append(ids, id)

		base := len(args)
		rows = append(rows, fmt.Sprintf("($%d::uuid, $%d)", base+1, base+2))
		args = append(args, id.String(), fmt.Sprintf("user%02d@example.com", i+1))
	}

	query := "INSERT INTO users (id, email) VALUES " + strings.Join(rows, ", ")
	if _, err := pool.Exec(ctx, query, args...); err != nil {
		return nil, err
	}
	return ids, nil
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool, rng *rand.Rand, n int) ([]uuid.UUID, error) {
	categories := []string{"vitamins", "soap", "coffee", "tea", "snacks", "skincare"}
	names := map[string][]string{
		"vitamins": {"Vitamin C 500mg", "Vitamin D3", "Multivitamin", "Zinc Complex", "Omega-3", "Magnesium"},
		"soap":     {"Lavender Soap", "Olive Soap", "Charcoal Soap", "Goat Milk Soap", "Tea Tree Soap", "Oatmeal Soap"},
		"coffee":   {"Espresso Beans", "Filter Roast", "Decaf Blend", "Cold Brew Pack", "Single Origin", "Dark Roast"},
		"tea":      {"Green Tea", "Earl Grey", "Oolong", "Chamomile", "Peppermint", "Rooibos"},
		"snacks":   {"Trail Mix", "Dried Mango", "Rice Crackers", "Almond Bar", "Dark Chocolate", "Roasted Chickpeas"},
		"skincare": {"Face Cream", "Serum", "Sunscreen SPF50", "Lip Balm", "Night Mask", "Toner"},
	}
	priceRange := map[string][2]float64{
		"vitamins": {8, 35},
		"soap":     {3, 12},
		"coffee":   {9, 28},
		"tea":      {4, 18},
		"snacks":   {2, 10},
		"skincare": {6, 45},
	}

	rows := []string{}
	args := []any{}
	ids := make([]uuid.UUID, 0, n)

	for i := 0; i < n; i++ {
		category := categories[i%len(categories)]
		nameList := names[category]
		name := nameList[(i/len(categories))%len(nameList)]
		if i >= len(categories)*len(nameList) {
			name = fmt.Sprintf("%s %d", name, i/(len(categories)*len(nameList))+1)
		}

		bounds := priceRange[category]
		price := math.Round((bounds[0]+rng.Float64()*(bounds[1]-bounds[0]))*100) / 100
		purchases := powerLawCount(rng, 200)
		views := purchases*8 + powerLawCount(rng, 400)
		trending := math.Round(rng.Float64()*500) / 10
		stock := rng.Intn(80) + 1
		active := true
		// A few inactive or sold-out products so eligibility filters matter.
		if i%17 == 0 {
			active = false
		}
		if i%13 == 0 {
			stock = 0
		}
		createdAt := time.Now().AddDate(0, 0, -rng.Intn(365))

		id := uuid.New()
		ids = append(ids, id)

		base := len(args)
		placeholders := make([]string, 10)
		for j := range placeholders {
			placeholders[j] = fmt.Sprintf("$%d", base+j+1)
		}
		placeholders[0] += "::uuid"
		rows = append(rows, "("+strings.Join(placeholders, ", ")+")")
		args = append(args, id.String(), name, category, price, stock, purchases, views, trending, active, createdAt)
	}

	query := `INSERT INTO products
		(id, name, category, price, stock_quantity, purchase_count, view_count, trending_score, is_active, created_at)
		VALUES ` + strings.Join(rows, ", ")
	if _, err := pool.Exec(ctx, query, args...); err != nil {
		return nil, err
	}
	return ids, nil
}

// seedOrders creates completed orders with 1-4 items each and returns the
// product ids per order for association building.
func seedOrders(ctx context.Context, pool *pgxpool.Pool, rng *rand.Rand, userIDs, productIDs []uuid.UUID, n int) ([][]uuid.UUID, error) {
	orderRows := []string{}
	orderArgs := []any{}
	itemRows := []string{}
	itemArgs := []any{}
	grouped := make([][]uuid.UUID, 0, n)

	for i := 0; i < n; i++ {
		orderID := uuid.New()
		userID := userIDs[rng.Intn(len(userIDs))]
		status := "completed"
		if i%8 == 0 {
			status = "pending"
		}
		createdAt := time.Now().AddDate(0, 0, -rng.Intn(180))

		base := len(orderArgs)
		orderRows = append(orderRows, fmt.Sprintf("($%d::uuid, $%d::uuid, $%d, $%d)", base+1, base+2, base+3, base+4))
		orderArgs = append(orderArgs, orderID.String(), userID.String(), status, createdAt)

		itemCount := rng.Intn(4) + 1
		seen := map[uuid.UUID]bool{}
		var items []uuid.UUID
		for k := 0; k < itemCount; k++ {
			productID := productIDs[rng.Intn(len(productIDs))]
			if seen[productID] {
				continue
			}
			seen[productID] = true
			items = append(items, productID)

			ibase := len(itemArgs)
			itemRows = append(itemRows, fmt.Sprintf("($%d::uuid, $%d::uuid, $%d, $%d)", ibase+1, ibase+2, ibase+3, ibase+4))
			itemArgs = append(itemArgs, orderID.String(), productID.String(), rng.Intn(3)+1,
				math.Round((2+rng.Float64()*40)*100)/100)
		}
		if status == "completed" {
			grouped = append(grouped, items)
		}
	}

	orderQuery := "INSERT INTO orders (id, user_id, payment_status, created_at) VALUES " + strings.Join(orderRows, ", ")
	if _, err := pool.Exec(ctx, orderQuery, orderArgs...); err != nil {
		return nil, err
	}

	itemQuery := "INSERT INTO order_items (order_id, product_id, quantity, price_at_time) VALUES " + strings.Join(itemRows, ", ")
	if _, err := pool.Exec(ctx, itemQuery, itemArgs...); err != nil {
		return nil, err
	}
	return grouped, nil
}

func seedCarts(ctx context.Context, pool *pgxpool.Pool, rng *rand.Rand, userIDs, productIDs []uuid.UUID) error {
	rows := []string{}
	args := []any{}

	// Half the users keep 1-3 items in their cart.
	for i := 0; i < len(userIDs); i += 2 {
		seen := map[uuid.UUID]bool{}
		cartItemCount := rng.Intn(3) + 1
		for k := 0; k < cartItemCount; k++ {
			productID := productIDs[rng.Intn(len(productIDs))]
			if seen[productID] {
				continue
			}
			seen[productID] = true

			base := len(args)
			rows = append(rows, fmt.Sprintf("($%d::uuid, $%d::uuid, $%d)", base+1, base+2, base+3))
			args = append(args, userIDs[i].String(), productID.String(), rng.Intn(3)+1)
		}
	}

	if len(rows) == 0 {
		return nil
	}
	query := "INSERT INTO cart_items (user_id, product_id, quantity) VALUES " + strings.Join(rows, ", ")
	_, err := pool.Exec(ctx, query, args...)
	return err
}

func seedViews(ctx context.Context, pool *pgxpool.Pool, rng *rand.Rand, userIDs, productIDs []uuid.UUID, n int) error {
	sources := []string{"search", "category", "homepage", "email"}
	rows := []string{}
	args := []any{}

	for i := 0; i < n; i++ {
		// Power-law product popularity; a third of views are anonymous.
		productID := productIDs[powerLawCount(rng, len(productIDs)-1)]
		var userID any
		if rng.Intn(3) > 0 {
			userID = userIDs[rng.Intn(len(userIDs))].String()
		}
		viewedAt := time.Now().Add(-time.Duration(rng.Intn(60*24)) * time.Hour)

		base := len(args)
		rows = append(rows, fmt.Sprintf("($%d::uuid, $%d::uuid, $%d, $%d)", base+1, base+2, base+3, base+4))
		args = append(args, productID.String(), userID, sources[rng.Intn(len(sources))], viewedAt)
	}

	query := "INSERT INTO product_views (product_id, user_id, source, viewed_at) VALUES " + strings.Join(rows, ", ")
	_, err := pool.Exec(ctx, query, args...)
	return err
}

// seedAssociations derives co-purchase counts from the seeded completed
// orders, one row per unordered product pair.
func seedAssociations(ctx context.Context, pool *pgxpool.Pool, orderItems [][]uuid.UUID) error {
	counts := map[[2]uuid.UUID]int{}
	for _, items := range orderItems {
		for i := 0; i < len(items); i++ {
			for j := i + 1; j < len(items); j++ {
				a, b := items[i], items[j]
				if strings.Compare(a.String(), b.String()) > 0 {
					a, b = b, a
				}
				counts[[2]uuid.UUID{a, b}]++
			}
		}
	}
	if len(counts) == 0 {
		return nil
	}

	rows := []string{}
	args := []any{}
	for pair, count := range counts {
		base := len(args)
		rows = append(rows, fmt.Sprintf("($%d::uuid, $%d::uuid, $%d)", base+1, base+2, base+3))
		args = append(args, pair[0].String(), pair[1].String(), count)
	}

	query := "INSERT INTO product_associations (product_a_id, product_b_id, association_count) VALUES " + strings.Join(rows, ", ")
	_, err := pool.Exec(ctx, query, args...)
	return err
}

// powerLawCount returns an int in [0, max] skewed toward small values.
func powerLawCount(rng *rand.Rand, max int) int {
	u := rng.Float64()
	return int(math.Floor(math.Pow(u, 3) * float64(max+1) * 0.9999))
}
