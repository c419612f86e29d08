package plotly

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel"

	"github.com/samirrijal/facilitymap/internal/core/domain"
	"github.com/samirrijal/facilitymap/internal/pkg/telemetry"
)

// DefaultScriptURL is the Plotly bundle loaded by rendered pages.
const DefaultScriptURL = "https://cdn.plot.ly/plotly-2.35.2.min.js"

var pageTmpl = template.Must(template.New("map").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <script src="{{.ScriptURL}}"></script>
  <style>html,body{margin:0;height:100%}#{{.ContainerID}}{width:100%;height:100%}</style>
</head>
<body>
  <div id="{{.ContainerID}}"></div>
  <script>
    Plotly.newPlot({{.ContainerID}}, {{.Layers}}, {{.Layout}});
{{- if .LiveURL}}
    (function () {
      var ws = new WebSocket({{.LiveURL}});
      ws.onmessage = function () { window.location.reload(); };
    })();
{{- end}}
  </script>
</body>
</html>
`))

type page struct {
	Title       string
	ScriptURL   string
	ContainerID string
	Layers      []domain.MarkerLayer
	Layout      domain.Layout
	LiveURL     string
}

// Options controls the generated page.
type Options struct {
	Title     string
	ScriptURL string
	// LiveURL, when set, is a WebSocket URL; any message on it reloads the page.
	LiveURL string
}

// HTMLRenderer implements ports.Renderer by writing a standalone HTML page
// that calls Plotly.newPlot on the target container.
type HTMLRenderer struct {
	w    io.Writer
	opts Options
}

// NewHTMLRenderer creates a renderer writing to w.
func NewHTMLRenderer(w io.Writer, opts Options) *HTMLRenderer {
	if opts.Title == "" {
		opts.Title = "Facility Map"
	}
	if opts.ScriptURL == "" {
		opts.ScriptURL = DefaultScriptURL
	}
	return &HTMLRenderer{w: w, opts: opts}
}

// Render writes the page.
func (r *HTMLRenderer) Render(ctx context.Context, containerID string, layers []domain.MarkerLayer, layout domain.Layout) error {
	_, span := otel.Tracer(telemetry.TracerName).Start(ctx, telemetry.SpanMapRender)
	defer span.End()

	if containerID == "" {
		return fmt.Errorf("render: container id is required")
	}
	return pageTmpl.Execute(r.w, page{
		Title:       r.opts.Title,
		ScriptURL:   r.opts.ScriptURL,
		ContainerID: containerID,
		Layers:      layers,
		Layout:      layout,
		LiveURL:     r.opts.LiveURL,
	})
}

const pageFileMode os.FileMode = 0o644

// FileRenderer implements ports.Renderer by writing the page to a file.
// The file is replaced atomically so readers never see a partial page.
type FileRenderer struct {
	path string
	opts Options
}

// NewFileRenderer creates a renderer writing to path.
func NewFileRenderer(path string, opts Options) *FileRenderer {
	return &FileRenderer{path: path, opts: opts}
}

// Render writes the page to the configured path.
func (r *FileRenderer) Render(ctx context.Context, containerID string, layers []domain.MarkerLayer, layout domain.Layout) error {
	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, ".map-*.html")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := NewHTMLRenderer(tmp, r.opts).Render(ctx, containerID, layers, layout); err != nil {
		tmp.Close()
		return err
	}
	// CreateTemp uses 0600; the page is meant to be served.
	if err := tmp.Chmod(pageFileMode); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("write %s: %w", r.path, err)
	}
	return nil
}
