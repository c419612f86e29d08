package usecases_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/samirrijal/facilitymap/internal/core/domain"
	"github.com/samirrijal/facilitymap/internal/core/usecases"
	"github.com/samirrijal/facilitymap/internal/pkg/logging"
)

func newTestLoader(src *mockSource, r *mockRenderer) (*usecases.MapLoader, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := logging.New(&buf, "debug", "json")
	return usecases.NewMapLoader(src, r, "map", logger), &buf
}

func logLines(buf *bytes.Buffer) []string {
	out := strings.TrimSpace(buf.String())
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}

func TestMapLoader_Load_TwoPoints(t *testing.T) {
	src := &mockSource{dataset: &domain.MapDataset{
		Lat:  []float64{10, 20},
		Lon:  []float64{30, 40},
		Text: []string{"A", "B"},
	}}
	r := &mockRenderer{}
	loader, _ := newTestLoader(src, r)

	if err := loader.Load(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.calls) != 1 {
		t.Fatalf("expected 1 render call, got %d", len(r.calls))
	}

	call := r.calls[0]
	if call.containerID != "map" {
		t.Errorf("expected container map, got %s", call.containerID)
	}
	if call.layout.Mapbox.Center != (domain.GeoPoint{Lat: 15, Lon: 35}) {
		t.Errorf("expected center (15, 35), got %+v", call.layout.Mapbox.Center)
	}
	if call.layout.Mapbox.Zoom != 3.5 {
		t.Errorf("expected zoom 3.5, got %v", call.layout.Mapbox.Zoom)
	}
	if len(call.layers) != 1 {
		t.Fatalf("expected 1 layer, got %d", len(call.layers))
	}
	layer := call.layers[0]
	if layer.Type != "scattermapbox" || layer.Mode != "markers" {
		t.Errorf("unexpected layer type/mode: %s/%s", layer.Type, layer.Mode)
	}
	if len(layer.Lat) != 2 || layer.Text[1] != "B" {
		t.Errorf("expected both points in layer, got %+v", layer)
	}
}

func TestMapLoader_Load_PassThrough(t *testing.T) {
	lat := []float64{43.263, -33.8688, 51.5072, 35.6762}
	lon := []float64{-2.935, 151.2093, -0.1276, 139.6503}
	text := []string{"Bilbao", "Sydney", "London", "Tokyo"}

	r := &mockRenderer{}
	loader, _ := newTestLoader(&mockSource{dataset: &domain.MapDataset{Lat: lat, Lon: lon, Text: text}}, r)
	if err := loader.Load(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	layer := r.calls[0].layers[0]
	for i := range lat {
		if layer.Lat[i] != lat[i] || layer.Lon[i] != lon[i] || layer.Text[i] != text[i] {
			t.Errorf("point %d changed: got (%v, %v, %q)", i, layer.Lat[i], layer.Lon[i], layer.Text[i])
		}
	}
	if len(layer.Lat) != len(lat) || len(layer.Lon) != len(lon) || len(layer.Text) != len(text) {
		t.Errorf("layer lengths changed")
	}
}

func TestMapLoader_Load_FixedStyling(t *testing.T) {
	datasets := []*domain.MapDataset{
		{Lat: []float64{0}, Lon: []float64{0}, Text: []string{"origin"}},
		{Lat: []float64{-89, 89, 12.5}, Lon: []float64{-179, 179, 0}, Text: []string{"s", "n", "x"}},
	}

	for _, ds := range datasets {
		r := &mockRenderer{}
		loader, _ := newTestLoader(&mockSource{dataset: ds}, r)
		if err := loader.Load(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		call := r.calls[0]
		m := call.layers[0].Marker
		if m.Size != 14 || m.Color != "rgb(255, 0, 0)" || m.Opacity != 0.7 {
			t.Errorf("unexpected marker styling: %+v", m)
		}
		if call.layout.Mapbox.Zoom != 3.5 {
			t.Errorf("expected zoom 3.5, got %v", call.layout.Mapbox.Zoom)
		}
		if call.layout.Mapbox.Style != "open-street-map" {
			t.Errorf("expected open-street-map style, got %s", call.layout.Mapbox.Style)
		}
		if call.layout.Margin != (domain.Margin{}) {
			t.Errorf("expected zero margins, got %+v", call.layout.Margin)
		}
	}
}

func TestMapLoader_Load_FetchError(t *testing.T) {
	fetchErr := errors.New("connection refused")
	r := &mockRenderer{}
	loader, buf := newTestLoader(&mockSource{err: fetchErr}, r)

	err := loader.Load(context.Background())
	if !errors.Is(err, fetchErr) {
		t.Fatalf("expected wrapped fetch error, got %v", err)
	}
	if len(r.calls) != 0 {
		t.Errorf("renderer must not be called, got %d calls", len(r.calls))
	}

	lines := logLines(buf)
	if len(lines) != 1 {
		t.Fatalf("expected exactly 1 log entry, got %d: %v", len(lines), lines)
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatal(err)
	}
	if entry["msg"] != "error fetching map data" {
		t.Errorf("unexpected log message: %v", entry["msg"])
	}
	if entry["level"] != "ERROR" {
		t.Errorf("expected ERROR level, got %v", entry["level"])
	}
}

func TestMapLoader_Load_EmptyDataset(t *testing.T) {
	r := &mockRenderer{}
	loader, buf := newTestLoader(&mockSource{dataset: &domain.MapDataset{
		Lat: []float64{}, Lon: []float64{}, Text: []string{},
	}}, r)

	err := loader.Load(context.Background())
	if !errors.Is(err, domain.ErrEmptyDataset) {
		t.Fatalf("expected ErrEmptyDataset, got %v", err)
	}
	if len(r.calls) != 0 {
		t.Errorf("renderer must not be called for an empty dataset")
	}
	if n := len(logLines(buf)); n != 1 {
		t.Errorf("expected 1 log entry, got %d", n)
	}
}

func TestMapLoader_Load_RenderError(t *testing.T) {
	r := &mockRenderer{err: errors.New("disk full")}
	loader, buf := newTestLoader(&mockSource{dataset: &domain.MapDataset{
		Lat: []float64{1}, Lon: []float64{2}, Text: []string{"a"},
	}}, r)

	if err := loader.Load(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if len(r.calls) != 1 {
		t.Errorf("expected 1 render call, got %d", len(r.calls))
	}
	if !strings.Contains(buf.String(), "error rendering map") {
		t.Errorf("expected render failure to be logged, got %s", buf.String())
	}
}

func TestBuildRenderSpec_LengthMismatch(t *testing.T) {
	_, err := usecases.BuildRenderSpec("map", &domain.MapDataset{
		Lat: []float64{1, 2}, Lon: []float64{1}, Text: []string{"a", "b"},
	})
	if !errors.Is(err, domain.ErrLengthMismatch) {
		t.Fatalf("expected ErrLengthMismatch, got %v", err)
	}
}

func TestBuildRenderSpec_CentroidTolerance(t *testing.T) {
	ds := &domain.MapDataset{
		Lat:  []float64{0.1, 0.2, 0.3},
		Lon:  []float64{-0.1, -0.2, -0.3},
		Text: []string{"a", "b", "c"},
	}
	spec, err := usecases.BuildRenderSpec("map", ds)
	if err != nil {
		t.Fatal(err)
	}
	c := spec.Layout.Mapbox.Center
	if math.Abs(c.Lat-0.2) > 1e-9 || math.Abs(c.Lon+0.2) > 1e-9 {
		t.Errorf("expected center (0.2, -0.2), got %+v", c)
	}
}

func TestNewMapLoader_DefaultContainer(t *testing.T) {
	r := &mockRenderer{}
	loader := usecases.NewMapLoader(&mockSource{dataset: &domain.MapDataset{
		Lat: []float64{1}, Lon: []float64{2}, Text: []string{"a"},
	}}, r, "", slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))

	if err := loader.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if r.calls[0].containerID != domain.DefaultContainerID {
		t.Errorf("expected default container %q, got %q", domain.DefaultContainerID, r.calls[0].containerID)
	}
}
