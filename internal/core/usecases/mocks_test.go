package usecases_test

import (
	"context"
	"sync"

	"github.com/samirrijal/facilitymap/internal/core/domain"
)

// --- Mock FacilityRepository ---

type mockFacilityRepo struct {
	listFn    func(ctx context.Context) ([]domain.Facility, error)
	getByIDFn func(ctx context.Context, id int64) (*domain.Facility, error)
	createFn  func(ctx context.Context, f *domain.Facility) (*domain.FacilityEvent, error)
	updateFn  func(ctx context.Context, f *domain.Facility) (*domain.FacilityEvent, error)
	deleteFn  func(ctx context.Context, id int64) (*domain.FacilityEvent, error)
}

func (m *mockFacilityRepo) List(ctx context.Context) ([]domain.Facility, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockFacilityRepo) GetByID(ctx context.Context, id int64) (*domain.Facility, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockFacilityRepo) Create(ctx context.Context, f *domain.Facility) (*domain.FacilityEvent, error) {
	if m.createFn != nil {
		return m.createFn(ctx, f)
	}
	return &domain.FacilityEvent{FacilityID: f.ID, Operation: domain.OperationInsert}, nil
}

func (m *mockFacilityRepo) Update(ctx context.Context, f *domain.Facility) (*domain.FacilityEvent, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, f)
	}
	return &domain.FacilityEvent{FacilityID: f.ID, Operation: domain.OperationUpdate}, nil
}

func (m *mockFacilityRepo) Delete(ctx context.Context, id int64) (*domain.FacilityEvent, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return &domain.FacilityEvent{FacilityID: id, Operation: domain.OperationDelete}, nil
}

// --- Mock CacheService ---

type mockCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	deletes int
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte)}
}

func (c *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return v, nil
}

func (c *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *mockCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	c.deletes++
	return nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	events []domain.FacilityEvent
	err    error
}

func (p *mockPublisher) PublishFacilityEvent(ctx context.Context, event *domain.FacilityEvent) error {
	p.events = append(p.events, *event)
	return p.err
}

// --- Mock MapDataSource / Renderer ---

type mockSource struct {
	dataset *domain.MapDataset
	err     error
}

func (s *mockSource) Fetch(ctx context.Context) (*domain.MapDataset, error) {
	return s.dataset, s.err
}

type renderCall struct {
	containerID string
	layers      []domain.MarkerLayer
	layout      domain.Layout
}

type mockRenderer struct {
	calls []renderCall
	err   error
}

func (r *mockRenderer) Render(ctx context.Context, containerID string, layers []domain.MarkerLayer, layout domain.Layout) error {
	r.calls = append(r.calls, renderCall{containerID: containerID, layers: layers, layout: layout})
	return r.err
}
