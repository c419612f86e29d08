// Command seed loads facilities from a locations CSV
// (Street Address,City,State,Zipcode,Latitude,Longitude) and creates them
// through the facility service, so each one gets an audit row.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"

	natsadapter "github.com/samirrijal/facilitymap/internal/adapters/nats"
	"github.com/samirrijal/facilitymap/internal/adapters/postgres"
	"github.com/samirrijal/facilitymap/internal/adapters/valkey"
	"github.com/samirrijal/facilitymap/internal/core/domain"
	"github.com/samirrijal/facilitymap/internal/core/ports"
	"github.com/samirrijal/facilitymap/internal/core/usecases"
	"github.com/samirrijal/facilitymap/internal/pkg/config"
	"github.com/samirrijal/facilitymap/internal/pkg/logging"
)

const (
	defaultCountry = "USA"
	maxConns       = 2
)

// ---------------------------------------------------------------------------
// Main
// ---------------------------------------------------------------------------

func main() {
	cfg, err := config.Load("facilitymap-seed")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	path := "sampleData/locations.csv"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()

	facilities, err := readLocations(f)
	if err != nil {
		log.Fatalf("read %s: %v", path, err)
	}
	slog.Info("seeding facilities", "file", path, "count", len(facilities))

	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Database.DSN(), maxConns)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	var cacheSvc ports.CacheService
	if cache, err := valkey.New(cfg.Valkey.Addr); err == nil {
		defer cache.Close()
		cacheSvc = cache
	}
	var publisherSvc ports.EventPublisher
	if publisher, err := natsadapter.NewPublisher(cfg.NATS.URL); err == nil {
		defer publisher.Close()
		publisherSvc = publisher
	}

	repo := postgres.NewFacilityRepo(db)
	maps := usecases.NewMapDataService(repo, cacheSvc, cfg.Map.CacheTTL)
	svc := usecases.NewFacilityService(repo, repo, maps, publisherSvc)

	created, failed := seed(ctx, svc, facilities)
	slog.Info("seeding complete", "created", created, "failed", failed)
	if failed > 0 {
		os.Exit(1)
	}
}

// facilityCreator is the part of the facility service seed needs.
type facilityCreator interface {
	Create(ctx context.Context, f *domain.Facility) error
}

// seed creates facilities one at a time in file order, so ids (and the
// /map-data order) follow the CSV.
func seed(ctx context.Context, svc facilityCreator, facilities []domain.Facility) (created, failed int) {
	for i := range facilities {
		f := &facilities[i]
		if err := svc.Create(ctx, f); err != nil {
			slog.Error("create facility failed", "name", f.Name, "error", err)
			failed++
			continue
		}
		created++
	}
	return created, failed
}

// ---------------------------------------------------------------------------
// CSV parsing
// ---------------------------------------------------------------------------

// readLocations parses the locations CSV. The header row is skipped; a row
// that cannot be parsed aborts the whole file.
func readLocations(r io.Reader) ([]domain.Facility, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("header: %w", err)
	}

	var out []domain.Facility
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		f, err := parseLocation(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, f)
	}
	return out, nil
}

func parseLocation(row []string) (domain.Facility, error) {
	if len(row) < 6 {
		return domain.Facility{}, fmt.Errorf("expected 6 columns, got %d", len(row))
	}
	lat, err := parseFloat(row[4])
	if err != nil {
		return domain.Facility{}, fmt.Errorf("latitude: %w", err)
	}
	lon, err := parseFloat(row[5])
	if err != nil {
		return domain.Facility{}, fmt.Errorf("longitude: %w", err)
	}

	city := strings.TrimSpace(row[1])
	return domain.Facility{
		Name:                city + " Location",
		StreetAddress:       strings.TrimSpace(row[0]),
		City:                city,
		StateProvinceRegion: strings.TrimSpace(row[2]),
		PostalCode:          strings.TrimSpace(row[3]),
		Country:             defaultCountry,
		Location:            domain.GeoPoint{Lat: lat, Lon: lon},
		IsOperating:         true,
	}, nil
}

// parseFloat accepts thousands separators ("1,234.5").
func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", ""), 64)
}
