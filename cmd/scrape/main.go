package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/rentalwatch/enjoytravel-scraper/internal/artifacts"
	"github.com/rentalwatch/enjoytravel-scraper/internal/browserql"
	"github.com/rentalwatch/enjoytravel-scraper/internal/config"
	"github.com/rentalwatch/enjoytravel-scraper/internal/progress"
	"github.com/rentalwatch/enjoytravel-scraper/internal/scrape"
)

const previewCount = 5

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		fail(err)
	}

	locationQuery := flag.String("location", "Miami Airport", "location query to resolve")
	pickup := flag.String("pickup", "2026-01-03", "pickup date (YYYY-MM-DD)")
	dropoff := flag.String("dropoff", "2026-01-10", "dropoff date (YYYY-MM-DD)")
	rentalTime := flag.String("time", cfg.Scraper.DefaultTime, "pickup/dropoff time (HH:MM)")
	output := flag.String("output", "", "output CSV path (default: generated filename)")
	flag.Parse()

	executor, err := browserql.NewClient(browserql.Options{
		Endpoint: cfg.Browserless.Endpoint,
		APIKey:   cfg.Browserless.APIKey,
	}, logger)
	if err != nil {
		fail(err)
	}

	store := progress.NewMemoryStore(cfg.Scraper.SessionTTL)
	artifactStore := artifacts.NewStore(cfg.Scraper.SessionTTL)
	svc := scrape.NewService(executor, store, artifactStore, cfg.Scraper, logger)

	ctx := context.Background()

	fmt.Println("Starting BrowserQL scraper...")
	fmt.Printf("Resolving location %q...\n", *locationQuery)

	locations, err := svc.SearchLocations(ctx, *locationQuery)
	if err != nil {
		fail(err)
	}
	locationID := locationIDOf(locations[0])
	fmt.Printf("Location ID: %s\n", locationID)

	fmt.Printf("Searching %s to %s at %s...\n", *pickup, *dropoff, *rentalTime)

	sessionID := "cli"
	svc.RunSingle(ctx, sessionID, scrape.SingleRequest{
		LocationID:  locationID,
		Pickup:      *pickup,
		Dropoff:     *dropoff,
		PickupTime:  *rentalTime,
		DropoffTime: *rentalTime,
	})

	run, err := store.Get(ctx, sessionID)
	if err != nil {
		fail(err)
	}
	if run.Status != progress.StatusCompleted || run.Result == nil {
		fail(fmt.Errorf("%s", run.Message))
	}

	_, content, ok := artifactStore.Get(run.Result.CSVFilename)
	if !ok {
		fail(fmt.Errorf("csv artifact %s missing", run.Result.CSVFilename))
	}

	path := *output
	if path == "" {
		path = run.Result.CSVFilename
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		fail(err)
	}

	fmt.Printf("\nSUCCESS! Found %d car rental offers\n", run.Result.Total)
	fmt.Printf("CSV file saved: %s (%.2f KB)\n\n", path, float64(len(content))/1024)

	printPreview(run.Result)
}

func locationIDOf(location any) string {
	m, ok := location.(map[string]any)
	if !ok {
		return ""
	}
	switch id := m["id"].(type) {
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return ""
	}
}

func printPreview(result *progress.Result) {
	if result.Total == 0 {
		fmt.Println("No offers to display")
		return
	}

	preview := result.Offers
	if len(preview) > previewCount {
		preview = preview[:previewCount]
	}

	fmt.Printf("Preview (first %d offers):\n", len(preview))
	data, err := json.MarshalIndent(preview, "", "  ")
	if err == nil {
		fmt.Println(string(data))
	}

	if result.Total > previewCount {
		fmt.Printf("\n... and %d more offers (see CSV file)\n", result.Total-previewCount)
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "============================================================")
	fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
	fmt.Fprintln(os.Stderr, "============================================================")
	os.Exit(1)
}
