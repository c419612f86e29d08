package ports

import (
	"context"

	"github.com/samirrijal/facilitymap/internal/core/domain"
)

// MapDataSource fetches the map dataset from wherever it is served.
type MapDataSource interface {
	Fetch(ctx context.Context) (*domain.MapDataset, error)
}

// Renderer draws marker layers into the container identified by containerID.
type Renderer interface {
	Render(ctx context.Context, containerID string, layers []domain.MarkerLayer, layout domain.Layout) error
}

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishFacilityEvent(ctx context.Context, event *domain.FacilityEvent) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeFacilityEvents(ctx context.Context, handler func(ctx context.Context, event *domain.FacilityEvent) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
