package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/samirrijal/facilitymap/internal/core/domain"
	"github.com/samirrijal/facilitymap/internal/core/ports"
)

// FacilityService handles facility CRUD and keeps the map dataset fresh.
type FacilityService struct {
	facilities ports.FacilityRepository
	events     ports.FacilityEventRepository
	maps       *MapDataService
	publisher  ports.EventPublisher
}

// NewFacilityService creates a new FacilityService. publisher may be nil.
func NewFacilityService(
	facilities ports.FacilityRepository,
	events ports.FacilityEventRepository,
	maps *MapDataService,
	publisher ports.EventPublisher,
) *FacilityService {
	return &FacilityService{facilities: facilities, events: events, maps: maps, publisher: publisher}
}

// List returns all facilities ordered by id.
func (s *FacilityService) List(ctx context.Context) ([]domain.Facility, error) {
	return s.facilities.List(ctx)
}

// GetByID returns a single facility.
func (s *FacilityService) GetByID(ctx context.Context, id int64) (*domain.Facility, error) {
	return s.facilities.GetByID(ctx, id)
}

// Create validates and stores a new facility.
func (s *FacilityService) Create(ctx context.Context, f *domain.Facility) error {
	if err := ValidateFacility(f); err != nil {
		return err
	}
	event, err := s.facilities.Create(ctx, f)
	if err != nil {
		return fmt.Errorf("create facility: %w", err)
	}
	s.afterWrite(ctx, event)
	return nil
}

// Update validates and replaces an existing facility.
func (s *FacilityService) Update(ctx context.Context, f *domain.Facility) error {
	if err := ValidateFacility(f); err != nil {
		return err
	}
	event, err := s.facilities.Update(ctx, f)
	if err != nil {
		return fmt.Errorf("update facility %d: %w", f.ID, err)
	}
	s.afterWrite(ctx, event)
	return nil
}

// Delete removes a facility.
func (s *FacilityService) Delete(ctx context.Context, id int64) error {
	event, err := s.facilities.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete facility %d: %w", id, err)
	}
	s.afterWrite(ctx, event)
	return nil
}

// Transactions returns the audit trail of a facility, oldest first.
func (s *FacilityService) Transactions(ctx context.Context, id int64) ([]domain.FacilityEvent, error) {
	if s.events == nil {
		return nil, nil
	}
	return s.events.ListByFacility(ctx, id)
}

// afterWrite drops the cached map dataset and announces the change.
// Neither step can fail the write that already committed.
func (s *FacilityService) afterWrite(ctx context.Context, event *domain.FacilityEvent) {
	if s.maps != nil {
		if err := s.maps.Invalidate(ctx); err != nil {
			slog.WarnContext(ctx, "map cache invalidation failed", "error", err)
		}
	}
	if s.publisher != nil && event != nil {
		if err := s.publisher.PublishFacilityEvent(ctx, event); err != nil {
			slog.WarnContext(ctx, "publish facility event failed",
				"facility_id", event.FacilityID, "operation", event.Operation, "error", err)
		}
	}
}

// ValidateFacility checks the fields a facility cannot be stored without.
func ValidateFacility(f *domain.Facility) error {
	if f == nil {
		return &domain.ValidationError{Index: -1, Reason: domain.ErrInvalidFacility}
	}
	f.Name = strings.TrimSpace(f.Name)
	if f.Name == "" {
		return &domain.ValidationError{Field: "name", Index: -1, Reason: fmt.Errorf("%w: name is required", domain.ErrInvalidFacility)}
	}
	if len(f.Name) > 256 {
		return &domain.ValidationError{Field: "name", Index: -1, Reason: fmt.Errorf("%w: name longer than 256 characters", domain.ErrInvalidFacility)}
	}
	if !f.Location.Valid() {
		return &domain.ValidationError{Field: "location", Index: -1, Reason: domain.ErrInvalidCoordinate}
	}
	return nil
}
