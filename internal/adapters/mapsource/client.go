package mapsource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/facilitymap/internal/core/domain"
	"github.com/samirrijal/facilitymap/internal/pkg/telemetry"
)

// maxBodyBytes caps the size of a map data response.
const maxBodyBytes = 32 << 20

var errTrailingData = errors.New("unexpected data after JSON document")

// StatusError is returned when the endpoint answers with a non-2xx status.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: %s", e.URL, e.Status)
}

// Client implements ports.MapDataSource over HTTP.
type Client struct {
	url  string
	http *http.Client
}

// New creates a Client for the given /map-data URL.
func New(url string, timeout time.Duration) *Client {
	return &Client{url: url, http: &http.Client{Timeout: timeout}}
}

// Fetch issues one GET and decodes the JSON body. It does not validate
// the dataset.
func (c *Client) Fetch(ctx context.Context) (*domain.MapDataset, error) {
	ctx, span := otel.Tracer(telemetry.TracerName).Start(ctx, telemetry.SpanMapFetch)
	defer span.End()
	span.SetAttributes(attribute.String("http.url", c.url))

	dataset, err := c.fetch(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("map.points", len(dataset.Lat)))
	return dataset, nil
}

func (c *Client) fetch(ctx context.Context) (*domain.MapDataset, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", c.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{URL: c.url, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	// The body must be exactly one JSON document.
	dec := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes))
	var dataset domain.MapDataset
	if err := dec.Decode(&dataset); err != nil {
		return nil, fmt.Errorf("decode map data: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errTrailingData
		}
		return nil, fmt.Errorf("decode map data: %w", err)
	}
	return &dataset, nil
}
