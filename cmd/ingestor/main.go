package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/flintapp/flint/internal/adapters/postgres"
	"github.com/flintapp/flint/internal/core/domain"
	"github.com/flintapp/flint/internal/pkg/config"
	"github.com/flintapp/flint/internal/pkg/proximity"
)

// ---------------------------------------------------------------------------
// Manifest types
// ---------------------------------------------------------------------------

type Manifest struct {
	Source string      `json:"source"`
	Cities []CityEntry `json:"cities"`
}

type CityEntry struct {
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	VenueURL string `json:"venue_url"` // CSV: name,category,lat,lon,address,rating
}

// ---------------------------------------------------------------------------
// Main
// ---------------------------------------------------------------------------

func main() {
	cfg, err := config.Load("flint-ingestor")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	venueRepo := postgres.NewVenueRepo(db)

	// Load manifest
	manifestPath := "manifest.json"
	if len(os.Args) > 1 {
		manifestPath = os.Args[1]
	}

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		log.Fatalf("read manifest: %v", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		log.Fatalf("parse manifest: %v", err)
	}

	log.Printf("Flint Venue Ingestor — %d cities from %s", len(manifest.Cities), manifest.Source)

	// Filter cities (optional CLI arg: slug list)
	slugFilter := map[string]bool{}
	if len(os.Args) > 2 {
		for _, s := range strings.Split(os.Args[2], ",") {
			slugFilter[strings.TrimSpace(s)] = true
		}
	}

	client := &http.Client{Timeout: 120 * time.Second}

	var wg sync.WaitGroup
	sem := make(chan struct{}, 4) // max 4 concurrent downloads

	for _, city := range manifest.Cities {
		if len(slugFilter) > 0 && !slugFilter[city.Slug] {
			continue
		}

		wg.Add(1)
		go func(c CityEntry) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if err := ingestCity(ctx, venueRepo, client, c); err != nil {
				log.Printf("ERROR [%s]: %v", c.Slug, err)
			}
		}(city)
	}

	wg.Wait()
	log.Println("ingestion complete")
}

// ---------------------------------------------------------------------------
// Per-city ingestion
// ---------------------------------------------------------------------------

func ingestCity(ctx context.Context, repo *postgres.VenueRepo, client *http.Client, city CityEntry) error {
	log.Printf("[%s] downloading venues from %s", city.Slug, city.VenueURL)

	resp, err := client.Get(city.VenueURL)
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d for %s", resp.StatusCode, city.VenueURL)
	}

	venues, skipped, err := parseVenueCSV(resp.Body, city.Slug)
	if err != nil {
		return fmt.Errorf("parse csv: %w", err)
	}

	const batchSize = 500
	for i := 0; i < len(venues); i += batchSize {
		end := i + batchSize
		if end > len(venues) {
			end = len(venues)
		}
		if err := repo.UpsertBatch(ctx, venues[i:end]); err != nil {
			return fmt.Errorf("upsert batch %d: %w", i/batchSize, err)
		}
	}

	log.Printf("[%s] %d venues upserted, %d rows skipped", city.Slug, len(venues), skipped)
	return nil
}

// parseVenueCSV reads rows of name,category,lat,lon,address,rating. Rows
// with unparseable or out-of-range coordinates are skipped and counted
// rather than aborting the whole import.
func parseVenueCSV(r io.Reader, citySlug string) ([]domain.Venue, int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}
	col := map[string]int{}
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"name", "category", "lat", "lon"} {
		if _, ok := col[required]; !ok {
			return nil, 0, fmt.Errorf("missing column %q", required)
		}
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var venues []domain.Venue
	skipped := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}

		name := field(row, "name")
		if name == "" {
			skipped++
			continue
		}

		lat, latErr := strconv.ParseFloat(field(row, "lat"), 64)
		lon, lonErr := strconv.ParseFloat(field(row, "lon"), 64)
		if latErr != nil || lonErr != nil || !(proximity.Coordinate{Lat: lat, Lon: lon}).Valid() {
			skipped++
			continue
		}

		rating := 0.0
		if raw := field(row, "rating"); raw != "" {
			if v, err := strconv.ParseFloat(raw, 64); err == nil {
				rating = v
			}
		}

		venues = append(venues, domain.Venue{
			Name:     name,
			Category: field(row, "category"),
			Location: &domain.GeoPoint{Lat: lat, Lon: lon},
			Address:  field(row, "address"),
			Rating:   rating,
			Metadata: map[string]any{"city": citySlug},
		})
	}

	return venues, skipped, nil
}
