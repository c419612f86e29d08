package usecases

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/facilitymap/internal/core/domain"
	"github.com/samirrijal/facilitymap/internal/core/ports"
	"github.com/samirrijal/facilitymap/internal/pkg/geospatial"
	"github.com/samirrijal/facilitymap/internal/pkg/metrics"
)

const mapDataCacheKey = "map:data"

// MapDataService serves the facility map dataset.
type MapDataService struct {
	facilities ports.FacilityRepository
	cache      ports.CacheService
	ttlSeconds int
}

// NewMapDataService creates a new MapDataService. cache may be nil.
func NewMapDataService(facilities ports.FacilityRepository, cache ports.CacheService, ttlSeconds int) *MapDataService {
	if ttlSeconds <= 0 {
		ttlSeconds = 60
	}
	return &MapDataService{facilities: facilities, cache: cache, ttlSeconds: ttlSeconds}
}

// Dataset returns every facility as parallel lat/lon/text sequences.
func (s *MapDataService) Dataset(ctx context.Context) (*domain.MapDataset, error) {
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, mapDataCacheKey); err == nil {
			var dataset domain.MapDataset
			if err := json.Unmarshal(data, &dataset); err == nil {
				metrics.CacheHits.WithLabelValues("map_data").Inc()
				return &dataset, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("map_data").Inc()
	}

	facilities, err := s.facilities.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list facilities: %w", err)
	}
	dataset := domain.DatasetFromFacilities(facilities)

	if s.cache != nil {
		if data, err := json.Marshal(dataset); err == nil {
			_ = s.cache.Set(ctx, mapDataCacheKey, data, s.ttlSeconds)
		}
	}

	return dataset, nil
}

// RenderSpec returns the marker map for the current dataset.
func (s *MapDataService) RenderSpec(ctx context.Context, containerID string) (*domain.MapRenderSpec, error) {
	dataset, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	if containerID == "" {
		containerID = domain.DefaultContainerID
	}
	return BuildRenderSpec(containerID, dataset)
}

// Centroid returns the mean position of all facilities.
func (s *MapDataService) Centroid(ctx context.Context) (*domain.GeoPoint, error) {
	dataset, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	if err := dataset.Validate(); err != nil {
		return nil, err
	}
	lat, lon := geospatial.Centroid(dataset.Lat, dataset.Lon)
	return &domain.GeoPoint{Lat: lat, Lon: lon}, nil
}

// Bounds returns the bounding box of all facilities.
func (s *MapDataService) Bounds(ctx context.Context) (*domain.Bounds, error) {
	dataset, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	if err := dataset.Validate(); err != nil {
		return nil, err
	}
	minLat, minLon, maxLat, maxLon := geospatial.BoundingBox(dataset.Lat, dataset.Lon)
	return &domain.Bounds{MinLat: minLat, MinLon: minLon, MaxLat: maxLat, MaxLon: maxLon}, nil
}

// GeoJSON returns the dataset as a FeatureCollection of named points.
func (s *MapDataService) GeoJSON(ctx context.Context) (*geojson.FeatureCollection, error) {
	dataset, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}

	fc := geojson.NewFeatureCollection()
	if dataset.Len() == 0 {
		return fc, nil
	}
	if err := dataset.Validate(); err != nil {
		return nil, err
	}

	points := make(orb.MultiPoint, 0, dataset.Len())
	for i := range dataset.Lat {
		p := orb.Point{dataset.Lon[i], dataset.Lat[i]}
		points = append(points, p)

		f := geojson.NewFeature(p)
		f.Properties["name"] = dataset.Text[i]
		fc.Append(f)
	}
	fc.BBox = geojson.NewBBox(points.Bound())

	return fc, nil
}

// Invalidate drops the cached dataset.
func (s *MapDataService) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, mapDataCacheKey)
}

// HandleFacilityEvent invalidates the cached dataset when another instance
// reports a facility write.
func (s *MapDataService) HandleFacilityEvent(ctx context.Context, event *domain.FacilityEvent) error {
	return s.Invalidate(ctx)
}
