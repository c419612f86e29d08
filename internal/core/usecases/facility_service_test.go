package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/samirrijal/facilitymap/internal/core/domain"
	"github.com/samirrijal/facilitymap/internal/core/usecases"
)

type mockEventRepo struct {
	events []domain.FacilityEvent
}

func (m *mockEventRepo) ListByFacility(ctx context.Context, facilityID int64) ([]domain.FacilityEvent, error) {
	var out []domain.FacilityEvent
	for _, e := range m.events {
		if e.FacilityID == facilityID {
			out = append(out, e)
		}
	}
	return out, nil
}

func TestFacilityService_Create(t *testing.T) {
	repo := &mockFacilityRepo{
		createFn: func(ctx context.Context, f *domain.Facility) (*domain.FacilityEvent, error) {
			f.ID = 7
			return &domain.FacilityEvent{FacilityID: 7, Operation: domain.OperationInsert}, nil
		},
	}
	cache := newMockCache()
	pub := &mockPublisher{}
	maps := usecases.NewMapDataService(repo, cache, 60)
	svc := usecases.NewFacilityService(repo, nil, maps, pub)

	f := &domain.Facility{Name: "  Plant A ", Location: domain.GeoPoint{Lat: 43.26, Lon: -2.93}}
	if err := svc.Create(context.Background(), f); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.ID != 7 {
		t.Errorf("expected id 7, got %d", f.ID)
	}
	if f.Name != "Plant A" {
		t.Errorf("expected trimmed name, got %q", f.Name)
	}
	if cache.deletes != 1 {
		t.Errorf("expected map cache invalidation, got %d deletes", cache.deletes)
	}
	if len(pub.events) != 1 || pub.events[0].Operation != domain.OperationInsert {
		t.Errorf("expected one insert event, got %+v", pub.events)
	}
}

func TestFacilityService_Create_Invalid(t *testing.T) {
	called := false
	repo := &mockFacilityRepo{
		createFn: func(ctx context.Context, f *domain.Facility) (*domain.FacilityEvent, error) {
			called = true
			return nil, nil
		},
	}
	svc := usecases.NewFacilityService(repo, nil, nil, nil)

	cases := []*domain.Facility{
		{Name: "", Location: domain.GeoPoint{Lat: 1, Lon: 1}},
		{Name: "x", Location: domain.GeoPoint{Lat: 91, Lon: 1}},
		{Name: "x", Location: domain.GeoPoint{Lat: 1, Lon: -181}},
	}
	for _, f := range cases {
		err := svc.Create(context.Background(), f)
		var verr *domain.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("expected validation error for %+v, got %v", f, err)
		}
	}
	if called {
		t.Error("repo must not be called for invalid facilities")
	}
}

func TestFacilityService_Update_NotFound(t *testing.T) {
	repo := &mockFacilityRepo{
		updateFn: func(ctx context.Context, f *domain.Facility) (*domain.FacilityEvent, error) {
			return nil, domain.ErrNotFound
		},
	}
	pub := &mockPublisher{}
	svc := usecases.NewFacilityService(repo, nil, nil, pub)

	err := svc.Update(context.Background(), &domain.Facility{ID: 9, Name: "x"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(pub.events) != 0 {
		t.Error("no event should be published for a failed write")
	}
}

func TestFacilityService_Delete_PublishFailureIgnored(t *testing.T) {
	pub := &mockPublisher{err: errors.New("nats down")}
	svc := usecases.NewFacilityService(&mockFacilityRepo{}, nil, nil, pub)

	if err := svc.Delete(context.Background(), 3); err != nil {
		t.Fatalf("publish failure must not fail the delete: %v", err)
	}
	if len(pub.events) != 1 || pub.events[0].Operation != domain.OperationDelete {
		t.Errorf("expected delete event, got %+v", pub.events)
	}
}

func TestFacilityService_Transactions(t *testing.T) {
	events := &mockEventRepo{events: []domain.FacilityEvent{
		{ID: 1, FacilityID: 1, Operation: domain.OperationInsert},
		{ID: 2, FacilityID: 2, Operation: domain.OperationInsert},
		{ID: 3, FacilityID: 1, Operation: domain.OperationUpdate},
	}}
	svc := usecases.NewFacilityService(&mockFacilityRepo{}, events, nil, nil)

	got, err := svc.Transactions(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[1].Operation != domain.OperationUpdate {
		t.Errorf("unexpected transactions: %+v", got)
	}
}
