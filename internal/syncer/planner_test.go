package syncer

import (
	"fmt"
	"gomarket_sync/internal/core/models"
	"math/rand/v2"
	"reflect"
	"slices"
	"testing"
)

func TestBuildPlanIntersectionInFeedOrder(t *testing.T) {
	records := []models.ProductRecord{record("C", 3, 300), record("A", 1, 100), record("X", 9, 900), record("B", 2, 200)}
	offers := toOffers([]string{"A", "B", "C", "Z"}, "111", "777")

	plan := BuildPlan(records, offers, Policy{})

	if got := skus(plan.Stocks, stockSKU); !slices.Equal(got, []string{"C", "A", "B"}) {
		t.Fatalf("stock order = %v", got)
	}
	if got := skus(plan.Prices, priceSKU); !slices.Equal(got, []string{"C", "A", "B"}) {
		t.Fatalf("price order = %v", got)
	}
	if plan.Stocks[0].Quantity != 3 || plan.Stocks[0].WarehouseID != "777" {
		t.Fatalf("stock = %+v", plan.Stocks[0])
	}
	if plan.Prices[2].Price.IntPart() != 200 {
		t.Fatalf("price = %+v", plan.Prices[2])
	}
}

func TestBuildPlanZeroOverlap(t *testing.T) {
	plan := BuildPlan([]models.ProductRecord{record("A", 1, 1)}, toOffers([]string{"B"}, "", ""), Policy{})
	if !plan.Empty() {
		t.Fatalf("expected empty plan, got %+v", plan)
	}
}

func TestBuildPlanClampsStock(t *testing.T) {
	records := []models.ProductRecord{record("A", 100, 1), record("B", 3, 1), record("C", -2, 1)}
	plan := BuildPlan(records, toOffers([]string{"A", "B", "C"}, "", "1"), Policy{MaxStock: 10})
	want := []int{10, 3, 0}
	for i, s := range plan.Stocks {
		if s.Quantity != want[i] {
			t.Fatalf("%s quantity = %d, want %d", s.SKU, s.Quantity, want[i])
		}
	}
}

func TestBuildPlanDuplicateSKUFirstWins(t *testing.T) {
	records := []models.ProductRecord{record("A", 5, 50), record("A", 7, 70)}
	plan := BuildPlan(records, toOffers([]string{"A", "A"}, "", ""), Policy{})
	if len(plan.Stocks) != 1 || plan.Stocks[0].Quantity != 5 || plan.Prices[0].Price.IntPart() != 50 {
		t.Fatalf("plan = %+v", plan)
	}
}

func TestBuildPlanZeroMissing(t *testing.T) {
	records := []models.ProductRecord{record("B", 4, 40)}
	offers := toOffers([]string{"C", "B", "A"}, "", "9")

	plan := BuildPlan(records, offers, Policy{ZeroMissing: true})

	if got := skus(plan.Stocks, stockSKU); !slices.Equal(got, []string{"B", "C", "A"}) {
		t.Fatalf("stocks = %v", got)
	}
	if plan.Stocks[1].Quantity != 0 || plan.Stocks[2].Quantity != 0 || plan.Stocks[1].WarehouseID != "9" {
		t.Fatalf("missing offers must be zeroed: %+v", plan.Stocks)
	}
	if got := skus(plan.Prices, priceSKU); !slices.Equal(got, []string{"B"}) {
		t.Fatalf("prices only for matched SKUs, got %v", got)
	}
}

func TestBuildPlanSubsetAndIdempotent(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for round := 0; round < 50; round++ {
		var records []models.ProductRecord
		for range rng.IntN(40) {
			records = append(records, record(fmt.Sprintf("S%d", rng.IntN(30)), rng.IntN(20), int64(rng.IntN(1000))))
		}
		var ids []string
		for range rng.IntN(40) {
			ids = append(ids, fmt.Sprintf("S%d", rng.IntN(30)))
		}
		offers := toOffers(ids, "", "1")

		inSupplier := map[string]bool{}
		for _, r := range records {
			inSupplier[r.SKU] = true
		}
		inCatalog := map[string]bool{}
		for _, id := range ids {
			inCatalog[id] = true
		}

		plan := BuildPlan(records, offers, Policy{MaxStock: 15})
		for _, s := range plan.Stocks {
			if !inSupplier[s.SKU] || !inCatalog[s.SKU] {
				t.Fatalf("round %d: %s is outside the intersection", round, s.SKU)
			}
			if s.Quantity > 15 {
				t.Fatalf("round %d: cap exceeded: %+v", round, s)
			}
		}
		for _, p := range plan.Prices {
			if !inSupplier[p.SKU] || !inCatalog[p.SKU] {
				t.Fatalf("round %d: price %s is outside the intersection", round, p.SKU)
			}
		}
		if again := BuildPlan(records, offers, Policy{MaxStock: 15}); !reflect.DeepEqual(plan, again) {
			t.Fatalf("round %d: plan is not deterministic", round)
		}
	}
}
