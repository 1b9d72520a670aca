// Command feedcheck loads every USGS recency feed once, the same way the
// dashboard does, and verifies the resulting tables: earthquake-only
// filtering against the raw CSV, the six-column projection, and
// newest-first ordering.
//
// Usage:
//
//	go run ./cmd/feedcheck -base-url https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/couchcryptid/quake-dashboard/internal/adapter/usgs"
	"github.com/couchcryptid/quake-dashboard/internal/config"
	"github.com/couchcryptid/quake-dashboard/internal/domain"
	"github.com/couchcryptid/quake-dashboard/internal/feed"
	"github.com/couchcryptid/quake-dashboard/internal/observability"
)

func main() {
	baseURL := flag.String("base-url", config.DefaultFeedBaseURL, "directory holding the all_{month,week,day,hour}.csv feeds")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall deadline for loading all feeds")
	flag.Parse()

	os.Exit(run(*baseURL, *timeout))
}

// rawFetcher keeps each feed's CSV body so the parsed tables can be checked
// against it.
type rawFetcher struct {
	client *usgs.Client

	mu  sync.Mutex
	raw map[string][]byte
}

func (f *rawFetcher) Fetch(ctx context.Context, src domain.FeedSource) (domain.EventTable, error) {
	data, err := f.client.FetchRaw(ctx, src)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.raw[src.Label] = data
	f.mu.Unlock()

	table, err := domain.ParseFeed(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", src.Label, err)
	}
	return table, nil
}

func run(baseURL string, timeout time.Duration) int {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	metrics := observability.NewMetricsForTesting()

	fetcher := &rawFetcher{
		client: usgs.NewClient(0, 0, metrics, logger),
		raw:    make(map[string][]byte),
	}
	loader := feed.NewLoader(fetcher, domain.DefaultSources(baseURL), nil, logger, metrics)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	fmt.Println("=== USGS Feed Check ===")
	fmt.Println()
	for _, src := range loader.Sources() {
		fmt.Printf("  %-12s %s\n", src.Label, src.URL)
	}
	fmt.Println()

	snap, err := loader.Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	fmt.Printf("Fetched at %s\n", snap.FetchedAt().Format(time.RFC3339))
	for _, label := range snap.Labels() {
		table, _ := snap.Table(label)
		fmt.Printf("  %-12s %6d earthquakes\n", label, table.Len())
	}

	phases := []*phase{
		checkFiltering(snap, fetcher.raw),
		checkProjection(snap),
		checkOrdering(snap),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-36s %s\n", p.name, status)
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll checks passed.")
		return 0
	}
	fmt.Println("\nFeed check FAILED.")
	return 1
}
