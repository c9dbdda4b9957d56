package cache_test

import (
	"context"
	"fmt"
	"time"

	"github.com/jonwraymond/invoicekit/cache"
)

func ExampleNewStore() {
	policy := cache.DefaultPolicy()
	store := cache.NewStore(policy)

	ctx := context.Background()

	// Store a value under two tags
	store.Set(ctx, "invoice:42", "draft", 5*time.Minute, "invoice:all", "invoice:customer:7")

	// Retrieve the value
	value, ok := store.Get(ctx, "invoice:42")
	if ok {
		fmt.Println("Value:", value)
	}
	// Output:
	// Value: draft
}

func ExampleStore_InvalidateTag() {
	store := cache.NewStore(cache.DefaultPolicy())
	ctx := context.Background()

	store.Set(ctx, "a", 1, time.Hour, "x")
	store.Set(ctx, "b", 2, time.Hour, "y")

	removed := store.InvalidateTag(ctx, "x")
	_, aFound := store.Get(ctx, "a")
	_, bFound := store.Get(ctx, "b")

	fmt.Println("Removed:", removed)
	fmt.Println("a found:", aFound)
	fmt.Println("b found:", bFound)
	// Output:
	// Removed: 1
	// a found: false
	// b found: true
}

func ExampleStore_Stats() {
	store := cache.NewStore(cache.DefaultPolicy())
	ctx := context.Background()

	store.Set(ctx, "k", "v", time.Hour)
	store.Get(ctx, "k")
	store.Get(ctx, "missing")

	stats := store.Stats()
	fmt.Printf("hits=%d misses=%d size=%d hitRate=%.2f\n", stats.Hits, stats.Misses, stats.Size, stats.HitRate)
	// Output:
	// hits=1 misses=1 size=1 hitRate=0.50
}

func ExampleWrap() {
	store := cache.NewStore(cache.DefaultPolicy())
	reader := cache.NewReader(store, nil, cache.DefaultPolicy())
	ctx := context.Background()

	calls := 0
	fetch := func(_ context.Context, id string) (string, error) {
		calls++
		return "customer " + id, nil
	}
	tags := func(id string, _ string) []string {
		return []string{cache.TagAll("Customer"), cache.TagEntity("Customer", id)}
	}

	get := cache.Wrap(reader, "getCustomer", fetch, tags)

	first, _ := get(ctx, "7")
	second, _ := get(ctx, "7")
	fmt.Println(first, "|", second, "| fetches:", calls)

	// A mutation invalidates the entity tag; the next read fetches again.
	reader.Invalidate(ctx, cache.TagEntity("Customer", "7"))
	_, _ = get(ctx, "7")
	fmt.Println("fetches after invalidation:", calls)
	// Output:
	// customer 7 | customer 7 | fetches: 1
	// fetches after invalidation: 2
}

func ExampleDefaultKeyer_Key() {
	keyer := cache.NewDefaultKeyer()

	key, _ := keyer.Key("listInvoices", map[string]any{"status": "open", "customer": "7"})
	fmt.Println(key)
	// Output:
	// listInvoices:{"customer":"7","status":"open"}
}
