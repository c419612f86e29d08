// Command maploader fetches the facility map dataset once and renders it to
// an HTML page with Plotly. It exits non-zero when the map could not be drawn.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samirrijal/facilitymap/internal/adapters/mapsource"
	"github.com/samirrijal/facilitymap/internal/adapters/plotly"
	"github.com/samirrijal/facilitymap/internal/core/usecases"
	"github.com/samirrijal/facilitymap/internal/pkg/config"
	"github.com/samirrijal/facilitymap/internal/pkg/logging"
	"github.com/samirrijal/facilitymap/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("facilitymap-loader")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	if err := run(cfg); err != nil {
		os.Exit(1)
	}
}

// run loads the map once. The loader logs its own outcome, so the
// returned error is only used for the exit status.
func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	source := mapsource.New(cfg.Map.Endpoint, time.Duration(cfg.Map.FetchTimeout)*time.Second)
	renderer := plotly.NewFileRenderer(cfg.Map.Output, plotly.Options{})
	loader := usecases.NewMapLoader(source, renderer, cfg.Map.ContainerID, slog.Default())

	return loader.Load(ctx)
}
