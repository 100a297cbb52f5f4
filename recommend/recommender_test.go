package recommend

import (
	"context"
	"testing"
	"time"

	"github.com/storeup/shopkit/catalog"
	"github.com/storeup/shopkit/core"
	"github.com/storeup/shopkit/recall"
	"github.com/storeup/shopkit/similarity"
	"github.com/storeup/shopkit/store"
)

// countingCatalog tracks how many times the engine walks the product table.
type countingCatalog struct {
	*catalog.MemoryCatalog
	listCalls int
}

func (c *countingCatalog) ListProducts(ctx context.Context, f core.ProductFilter) ([]core.Product, error) {
	c.listCalls++
	return c.MemoryCatalog.ListProducts(ctx, f)
}

func newFixture() (*Recommender, *countingCatalog) {
	cat := &countingCatalog{MemoryCatalog: catalog.NewMemoryCatalog()}
	cat.AddProducts(
		core.Product{ID: 1, CategoryID: 10, Name: "Cordless Drill", Price: 89.99, InStock: true, BestSelling: true},
		core.Product{ID: 2, CategoryID: 10, Name: "Cordless Driver Kit", Price: 99.99, InStock: true, Featured: true},
		core.Product{ID: 3, CategoryID: 10, Name: "Hammer Drill", Price: 129.00, InStock: true},
		core.Product{ID: 4, CategoryID: 10, Name: "Drill Bit Set", Price: 19.99, InStock: true},
	)

	rec := &Recommender{
		Catalog: cat,
		Store:   store.NewMemoryStore(),
		Engine:  &similarity.Engine{Catalog: cat},
		Popular: &recall.Popular{Catalog: cat},
	}
	return rec, cat
}

func TestSimilarProductsColdStartComputesOnce(t *testing.T) {
	rec, cat := newFixture()
	ctx := context.Background()

	first, err := rec.SimilarProducts(ctx, 1, 3)
	if err != nil {
		t.Fatalf("SimilarProducts() error = %v", err)
	}
	if len(first) == 0 {
		t.Fatal("no recommendations on cold start")
	}
	callsAfterFirst := cat.listCalls
	if callsAfterFirst == 0 {
		t.Fatal("cold start did not touch the catalog")
	}

	// warm cache: second call serves the snapshot without recomputing
	second, err := rec.SimilarProducts(ctx, 1, 3)
	if err != nil {
		t.Fatalf("SimilarProducts() error = %v", err)
	}
	if cat.listCalls != callsAfterFirst {
		t.Errorf("cache hit recomputed: catalog calls %d -> %d", callsAfterFirst, cat.listCalls)
	}
	if len(second) != len(first) {
		t.Fatalf("cached result differs: %v vs %v", second, first)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("cached result differs at %d: %v vs %v", i, first, second)
		}
	}
}

func TestSimilarProductsLimit(t *testing.T) {
	rec, _ := newFixture()
	ctx := context.Background()

	got, err := rec.SimilarProducts(ctx, 1, 2)
	if err != nil {
		t.Fatalf("SimilarProducts() error = %v", err)
	}
	if len(got) > 2 {
		t.Errorf("limit ignored: got %d ids", len(got))
	}
	for _, id := range got {
		if id == 1 {
			t.Errorf("query product recommended to itself")
		}
	}
}

func TestSimilarProductsUnknownProduct(t *testing.T) {
	rec, _ := newFixture()

	got, err := rec.SimilarProducts(context.Background(), 999, 5)
	if err != nil {
		t.Fatalf("SimilarProducts() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("unknown product returned %v, want empty", got)
	}
}

func TestForUserCartExcludesCartItems(t *testing.T) {
	rec, cat := newFixture()
	now := time.Now()
	cat.AddCartRows(
		core.CartRow{UserID: 42, ProductID: 1, CreatedAt: now},
		core.CartRow{UserID: 42, ProductID: 2, CreatedAt: now.Add(-time.Minute)},
	)

	got, err := rec.ForUserCart(context.Background(), 42, 10)
	if err != nil {
		t.Fatalf("ForUserCart() error = %v", err)
	}
	if len(got) == 0 {
		t.Fatal("no recommendations for a non-empty cart")
	}
	for _, id := range got {
		if id == 1 || id == 2 {
			t.Errorf("cart item %d recommended", id)
		}
	}
}

func TestForUserCartLimit(t *testing.T) {
	rec, cat := newFixture()
	cat.AddCartRows(core.CartRow{UserID: 42, ProductID: 1, CreatedAt: time.Now()})

	got, err := rec.ForUserCart(context.Background(), 42, 1)
	if err != nil {
		t.Fatalf("ForUserCart() error = %v", err)
	}
	if len(got) > 1 {
		t.Errorf("limit ignored: got %v", got)
	}
}

func TestForUserCartEmptyCartFallsBackToPopular(t *testing.T) {
	rec, cat := newFixture()
	ctx := context.Background()

	got, err := rec.ForUserCart(ctx, 999, 3)
	if err != nil {
		t.Fatalf("ForUserCart() error = %v", err)
	}
	// best_selling first, then featured, then the rest by id
	want := []int64{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("fallback = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("fallback order = %v, want %v", got, want)
		}
	}
	// popularity fallback never triggers a similarity compute
	if cat.listCalls > 1 {
		t.Errorf("fallback touched the catalog %d times, want at most 1", cat.listCalls)
	}
}

func TestForUserCartEmptyCartNoPopular(t *testing.T) {
	rec, _ := newFixture()
	rec.Popular = nil

	got, err := rec.ForUserCart(context.Background(), 999, 3)
	if err != nil {
		t.Fatalf("ForUserCart() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("no fallback configured but got %v", got)
	}
}

func TestWarmCacheReplacesSnapshot(t *testing.T) {
	rec, cat := newFixture()
	ctx := context.Background()

	if _, err := rec.WarmCache(ctx); err != nil {
		t.Fatalf("WarmCache() error = %v", err)
	}
	before, err := rec.SimilarProducts(ctx, 4, 10)
	if err != nil {
		t.Fatalf("SimilarProducts() error = %v", err)
	}

	// new product only becomes visible after the next warm
	cat.AddProducts(core.Product{ID: 5, CategoryID: 10, Name: "Drill Bit Case", Price: 18.99, InStock: true})
	after, err := rec.SimilarProducts(ctx, 4, 10)
	if err != nil {
		t.Fatalf("SimilarProducts() error = %v", err)
	}
	if len(after) != len(before) {
		t.Errorf("stale snapshot changed without a warm: %v vs %v", after, before)
	}

	if _, err := rec.WarmCache(ctx); err != nil {
		t.Fatalf("WarmCache() error = %v", err)
	}
	rewarmed, err := rec.SimilarProducts(ctx, 4, 10)
	if err != nil {
		t.Fatalf("SimilarProducts() error = %v", err)
	}
	found := false
	for _, id := range rewarmed {
		if id == 5 {
			found = true
		}
	}
	if !found {
		t.Errorf("rewarmed snapshot missing new product: %v", rewarmed)
	}
}
