package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/facilitymap/internal/core/domain"
)

const facilityColumns = `id, name, COALESCE(contact_info, ''), latitude, longitude, is_operating,
	COALESCE(street_address, ''), COALESCE(city, ''), COALESCE(state_province_region, ''),
	COALESCE(postal_code, ''), COALESCE(country, ''), COALESCE(notes, ''), created_at`

// FacilityRepo implements ports.FacilityRepository and
// ports.FacilityEventRepository with pgx.
type FacilityRepo struct {
	db *DB
}

// NewFacilityRepo creates a new FacilityRepo.
func NewFacilityRepo(db *DB) *FacilityRepo {
	return &FacilityRepo{db: db}
}

func scanFacility(row pgx.Row, f *domain.Facility) error {
	return row.Scan(
		&f.ID, &f.Name, &f.ContactInfo, &f.Location.Lat, &f.Location.Lon, &f.IsOperating,
		&f.StreetAddress, &f.City, &f.StateProvinceRegion,
		&f.PostalCode, &f.Country, &f.Notes, &f.CreatedAt,
	)
}

// List returns all facilities ordered by id.
func (r *FacilityRepo) List(ctx context.Context) ([]domain.Facility, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT `+facilityColumns+` FROM facilities ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var facilities []domain.Facility
	for rows.Next() {
		var f domain.Facility
		if err := scanFacility(rows, &f); err != nil {
			return nil, err
		}
		facilities = append(facilities, f)
	}
	return facilities, rows.Err()
}

// GetByID returns a facility or domain.ErrNotFound.
func (r *FacilityRepo) GetByID(ctx context.Context, id int64) (*domain.Facility, error) {
	return getFacility(r.db.Pool.QueryRow(ctx, `SELECT `+facilityColumns+` FROM facilities WHERE id = $1`, id))
}

func getFacility(row pgx.Row) (*domain.Facility, error) {
	var f domain.Facility
	if err := scanFacility(row, &f); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

// Create inserts a facility and its audit row in one transaction.
// f.ID and f.CreatedAt are filled in.
func (r *FacilityRepo) Create(ctx context.Context, f *domain.Facility) (*domain.FacilityEvent, error) {
	var event *domain.FacilityEvent
	err := pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `
			INSERT INTO facilities (name, contact_info, latitude, longitude, is_operating,
			                        street_address, city, state_province_region, postal_code, country, notes)
			VALUES ($1, NULLIF($2, ''), $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''),
			        NULLIF($9, ''), NULLIF($10, ''), NULLIF($11, ''))
			RETURNING id, created_at
		`, f.Name, f.ContactInfo, f.Location.Lat, f.Location.Lon, f.IsOperating,
			f.StreetAddress, f.City, f.StateProvinceRegion, f.PostalCode, f.Country, f.Notes,
		).Scan(&f.ID, &f.CreatedAt); err != nil {
			return fmt.Errorf("insert facility: %w", err)
		}

		changes := fmt.Sprintf("New facility created with Name: %s, Country: %s, ContactInfo: %s",
			f.Name, f.Country, f.ContactInfo)
		var err error
		event, err = insertEvent(ctx, tx, f.ID, domain.OperationInsert, changes)
		return err
	})
	return event, err
}

// Update replaces a facility and records which fields changed.
func (r *FacilityRepo) Update(ctx context.Context, f *domain.Facility) (*domain.FacilityEvent, error) {
	var event *domain.FacilityEvent
	err := pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		old, err := getFacility(tx.QueryRow(ctx,
			`SELECT `+facilityColumns+` FROM facilities WHERE id = $1 FOR UPDATE`, f.ID))
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `
			UPDATE facilities
			SET name = $2, contact_info = NULLIF($3, ''), latitude = $4, longitude = $5,
			    is_operating = $6, street_address = NULLIF($7, ''), city = NULLIF($8, ''),
			    state_province_region = NULLIF($9, ''), postal_code = NULLIF($10, ''),
			    country = NULLIF($11, ''), notes = NULLIF($12, '')
			WHERE id = $1
		`, f.ID, f.Name, f.ContactInfo, f.Location.Lat, f.Location.Lon, f.IsOperating,
			f.StreetAddress, f.City, f.StateProvinceRegion, f.PostalCode, f.Country, f.Notes,
		); err != nil {
			return fmt.Errorf("update facility: %w", err)
		}
		f.CreatedAt = old.CreatedAt

		diff := DescribeChanges(old, f)
		if diff == "" {
			return nil
		}
		event, err = insertEvent(ctx, tx, f.ID, domain.OperationUpdate, "Facility "+diff)
		return err
	})
	return event, err
}

// Delete removes a facility. The audit row is written before the delete.
func (r *FacilityRepo) Delete(ctx context.Context, id int64) (*domain.FacilityEvent, error) {
	var event *domain.FacilityEvent
	err := pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		var err error
		event, err = insertEvent(ctx, tx, id, domain.OperationDelete,
			fmt.Sprintf("Facility ID %d was deleted", id))
		if err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM facilities WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete facility: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

// ListByFacility returns the audit trail of a facility, oldest first.
func (r *FacilityRepo) ListByFacility(ctx context.Context, facilityID int64) ([]domain.FacilityEvent, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, object_id, operation, changes, timestamp
		FROM facility_transactions
		WHERE object_id = $1
		ORDER BY timestamp, id
	`, facilityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.FacilityEvent
	for rows.Next() {
		var e domain.FacilityEvent
		if err := rows.Scan(&e.ID, &e.FacilityID, &e.Operation, &e.Changes, &e.Timestamp); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func insertEvent(ctx context.Context, tx pgx.Tx, facilityID int64, operation, changes string) (*domain.FacilityEvent, error) {
	e := &domain.FacilityEvent{
		FacilityID: facilityID,
		Operation:  operation,
		Changes:    changes,
		Timestamp:  time.Now().UTC(),
	}
	if err := tx.QueryRow(ctx, `
		INSERT INTO facility_transactions (object_id, table_name, operation, changes, timestamp)
		VALUES ($1, 'facilities', $2, $3, $4)
		RETURNING id
	`, e.FacilityID, e.Operation, e.Changes, e.Timestamp).Scan(&e.ID); err != nil {
		return nil, fmt.Errorf("insert facility transaction: %w", err)
	}
	return e, nil
}

// DescribeChanges lists the fields that differ between old and updated as
// "field changed from X to Y" clauses joined by "; ". It returns "" when
// nothing changed.
func DescribeChanges(old, updated *domain.Facility) string {
	type field struct {
		name     string
		from, to any
	}
	fields := []field{
		{"name", old.Name, updated.Name},
		{"contact_info", old.ContactInfo, updated.ContactInfo},
		{"latitude", old.Location.Lat, updated.Location.Lat},
		{"longitude", old.Location.Lon, updated.Location.Lon},
		{"is_operating", old.IsOperating, updated.IsOperating},
		{"street_address", old.StreetAddress, updated.StreetAddress},
		{"city", old.City, updated.City},
		{"state_province_region", old.StateProvinceRegion, updated.StateProvinceRegion},
		{"postal_code", old.PostalCode, updated.PostalCode},
		{"country", old.Country, updated.Country},
		{"notes", old.Notes, updated.Notes},
	}

	var parts []string
	for _, f := range fields {
		if f.from != f.to {
			parts = append(parts, fmt.Sprintf("%s changed from %v to %v", f.name, f.from, f.to))
		}
	}
	return strings.Join(parts, "; ")
}
