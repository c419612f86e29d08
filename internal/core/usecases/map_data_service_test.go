package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/samirrijal/facilitymap/internal/core/domain"
	"github.com/samirrijal/facilitymap/internal/core/usecases"
)

func threeFacilities() []domain.Facility {
	return []domain.Facility{
		{ID: 1, Name: "Facility 0", Location: domain.GeoPoint{Lat: 0, Lon: 0}},
		{ID: 2, Name: "Facility 1", Location: domain.GeoPoint{Lat: 10, Lon: 20}},
		{ID: 3, Name: "Facility 2", Location: domain.GeoPoint{Lat: 20, Lon: 40}},
	}
}

func TestMapDataService_Dataset(t *testing.T) {
	repo := &mockFacilityRepo{
		listFn: func(ctx context.Context) ([]domain.Facility, error) { return threeFacilities(), nil },
	}
	svc := usecases.NewMapDataService(repo, nil, 60)

	ds, err := svc.Dataset(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ds.Len() != 3 {
		t.Fatalf("expected 3 points, got %d", ds.Len())
	}
	if ds.Lon[2] != 40 || ds.Text[1] != "Facility 1" {
		t.Errorf("unexpected dataset: %+v", ds)
	}
}

func TestMapDataService_Dataset_NoFacilities(t *testing.T) {
	svc := usecases.NewMapDataService(&mockFacilityRepo{}, nil, 60)

	ds, err := svc.Dataset(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ds.Lat == nil || ds.Lon == nil || ds.Text == nil {
		t.Error("expected empty, non-nil sequences")
	}
}

func TestMapDataService_Dataset_Cached(t *testing.T) {
	calls := 0
	repo := &mockFacilityRepo{
		listFn: func(ctx context.Context) ([]domain.Facility, error) {
			calls++
			return threeFacilities(), nil
		},
	}
	cache := newMockCache()
	svc := usecases.NewMapDataService(repo, cache, 60)

	for i := 0; i < 3; i++ {
		if _, err := svc.Dataset(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	if calls != 1 {
		t.Errorf("expected repo to be called once, got %d", calls)
	}

	if err := svc.Invalidate(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Dataset(context.Background()); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("expected repo to be called again after invalidation, got %d", calls)
	}
}

func TestMapDataService_Dataset_RepoError(t *testing.T) {
	repo := &mockFacilityRepo{
		listFn: func(ctx context.Context) ([]domain.Facility, error) { return nil, errors.New("db down") },
	}
	svc := usecases.NewMapDataService(repo, nil, 60)
	if _, err := svc.Dataset(context.Background()); err == nil {
		t.Error("expected error")
	}
}

func TestMapDataService_RenderSpec(t *testing.T) {
	repo := &mockFacilityRepo{
		listFn: func(ctx context.Context) ([]domain.Facility, error) { return threeFacilities(), nil },
	}
	svc := usecases.NewMapDataService(repo, nil, 60)

	spec, err := svc.RenderSpec(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if spec.ContainerID != "map" {
		t.Errorf("expected default container, got %s", spec.ContainerID)
	}
	if spec.Layout.Mapbox.Center != (domain.GeoPoint{Lat: 10, Lon: 20}) {
		t.Errorf("expected center (10, 20), got %+v", spec.Layout.Mapbox.Center)
	}
}

func TestMapDataService_RenderSpec_Empty(t *testing.T) {
	svc := usecases.NewMapDataService(&mockFacilityRepo{}, nil, 60)
	_, err := svc.RenderSpec(context.Background(), "map")
	if !errors.Is(err, domain.ErrEmptyDataset) {
		t.Fatalf("expected ErrEmptyDataset, got %v", err)
	}
}

func TestMapDataService_Bounds(t *testing.T) {
	repo := &mockFacilityRepo{
		listFn: func(ctx context.Context) ([]domain.Facility, error) { return threeFacilities(), nil },
	}
	svc := usecases.NewMapDataService(repo, nil, 60)

	b, err := svc.Bounds(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := domain.Bounds{MinLat: 0, MinLon: 0, MaxLat: 20, MaxLon: 40}
	if *b != want {
		t.Errorf("expected %+v, got %+v", want, *b)
	}
}

func TestMapDataService_GeoJSON(t *testing.T) {
	repo := &mockFacilityRepo{
		listFn: func(ctx context.Context) ([]domain.Facility, error) { return threeFacilities(), nil },
	}
	svc := usecases.NewMapDataService(repo, nil, 60)

	fc, err := svc.GeoJSON(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(fc.Features) != 3 {
		t.Fatalf("expected 3 features, got %d", len(fc.Features))
	}
	if name := fc.Features[1].Properties["name"]; name != "Facility 1" {
		t.Errorf("expected Facility 1, got %v", name)
	}
	if len(fc.BBox) != 4 || fc.BBox[2] != 40 || fc.BBox[3] != 20 {
		t.Errorf("unexpected bbox: %v", fc.BBox)
	}
}

func TestMapDataService_GeoJSON_Empty(t *testing.T) {
	svc := usecases.NewMapDataService(&mockFacilityRepo{}, nil, 60)
	fc, err := svc.GeoJSON(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(fc.Features) != 0 {
		t.Errorf("expected no features, got %d", len(fc.Features))
	}
}
