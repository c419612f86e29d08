package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/samirrijal/facilitymap/internal/core/domain"
	"github.com/samirrijal/facilitymap/internal/core/ports"
	"github.com/samirrijal/facilitymap/internal/pkg/geospatial"
	"github.com/samirrijal/facilitymap/internal/pkg/metrics"
)

// MapLoader fetches the facility dataset once and hands a centroid-centered
// marker map to a renderer.
type MapLoader struct {
	source      ports.MapDataSource
	renderer    ports.Renderer
	containerID string
	logger      *slog.Logger
}

// NewMapLoader creates a new MapLoader. An empty containerID selects
// domain.DefaultContainerID and a nil logger selects slog.Default().
func NewMapLoader(source ports.MapDataSource, renderer ports.Renderer, containerID string, logger *slog.Logger) *MapLoader {
	if containerID == "" {
		containerID = domain.DefaultContainerID
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MapLoader{source: source, renderer: renderer, containerID: containerID, logger: logger}
}

// Load runs the loader: fetch and parse, then compute and render.
// Each failure is logged exactly once and returned; the renderer is only
// invoked for a dataset that passed validation.
func (l *MapLoader) Load(ctx context.Context) error {
	dataset, err := l.FetchAndParse(ctx)
	if err != nil {
		metrics.MapLoads.WithLabelValues("fetch_error").Inc()
		l.logger.ErrorContext(ctx, "error fetching map data", "error", err)
		return fmt.Errorf("fetch map data: %w", err)
	}

	spec, err := l.ComputeAndRender(ctx, dataset)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			metrics.MapLoads.WithLabelValues("invalid").Inc()
			l.logger.ErrorContext(ctx, "map data rejected", "error", err)
			return err
		}
		metrics.MapLoads.WithLabelValues("render_error").Inc()
		l.logger.ErrorContext(ctx, "error rendering map", "error", err)
		return fmt.Errorf("render map: %w", err)
	}

	metrics.MapLoads.WithLabelValues("ok").Inc()
	metrics.MapPoints.Set(float64(dataset.Len()))
	l.logger.InfoContext(ctx, "map rendered",
		"container", spec.ContainerID,
		"points", dataset.Len(),
		"center_lat", spec.Layout.Mapbox.Center.Lat,
		"center_lon", spec.Layout.Mapbox.Center.Lon,
	)
	return nil
}

// FetchAndParse is the fallible first stage: transport and decode errors only.
func (l *MapLoader) FetchAndParse(ctx context.Context) (*domain.MapDataset, error) {
	return l.source.Fetch(ctx)
}

// ComputeAndRender validates the dataset, builds the render spec and invokes
// the renderer once.
func (l *MapLoader) ComputeAndRender(ctx context.Context, dataset *domain.MapDataset) (*domain.MapRenderSpec, error) {
	spec, err := BuildRenderSpec(l.containerID, dataset)
	if err != nil {
		return nil, err
	}
	if err := l.renderer.Render(ctx, spec.ContainerID, spec.Layers, spec.Layout); err != nil {
		return nil, err
	}
	return spec, nil
}

// BuildRenderSpec turns a dataset into a single marker layer centered on the
// centroid of its points. lat, lon and text are passed through unchanged.
func BuildRenderSpec(containerID string, dataset *domain.MapDataset) (*domain.MapRenderSpec, error) {
	if err := dataset.Validate(); err != nil {
		return nil, err
	}

	avgLat, avgLon := geospatial.Centroid(dataset.Lat, dataset.Lon)

	layer := domain.MarkerLayer{
		Type: domain.LayerTypeScatterMapbox,
		Lat:  dataset.Lat,
		Lon:  dataset.Lon,
		Mode: domain.LayerModeMarkers,
		Marker: domain.Marker{
			Size:    domain.MarkerSize,
			Color:   domain.MarkerColor,
			Opacity: domain.MarkerOpacity,
		},
		Text: dataset.Text,
	}

	layout := domain.Layout{
		Mapbox: domain.Mapbox{
			Style:  domain.MapStyleOpenStreetMap,
			Center: domain.GeoPoint{Lat: avgLat, Lon: avgLon},
			Zoom:   domain.MapZoom,
		},
		Margin: domain.Margin{L: 0, R: 0, B: 0, T: 0},
	}

	return &domain.MapRenderSpec{
		ContainerID: containerID,
		Layers:      []domain.MarkerLayer{layer},
		Layout:      layout,
	}, nil
}
