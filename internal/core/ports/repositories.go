package ports

import (
	"context"

	"github.com/samirrijal/facilitymap/internal/core/domain"
)

// FacilityRepository persists facilities. Every write also records a
// domain.FacilityEvent, which is returned to the caller.
type FacilityRepository interface {
	List(ctx context.Context) ([]domain.Facility, error)
	GetByID(ctx context.Context, id int64) (*domain.Facility, error)
	Create(ctx context.Context, f *domain.Facility) (*domain.FacilityEvent, error)
	Update(ctx context.Context, f *domain.Facility) (*domain.FacilityEvent, error)
	Delete(ctx context.Context, id int64) (*domain.FacilityEvent, error)
}

// FacilityEventRepository reads the facility audit trail.
type FacilityEventRepository interface {
	ListByFacility(ctx context.Context, facilityID int64) ([]domain.FacilityEvent, error)
}
