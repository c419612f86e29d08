package domain

import (
	"time"
)

// Facility is a production facility plotted on the facility map.
type Facility struct {
	ID                  int64     `json:"id"`
	Name                string    `json:"name"`
	ContactInfo         string    `json:"contact_info,omitempty"`
	Location            GeoPoint  `json:"location"`
	IsOperating         bool      `json:"is_operating"`
	StreetAddress       string    `json:"street_address,omitempty"`
	City                string    `json:"city,omitempty"`
	StateProvinceRegion string    `json:"state_province_region,omitempty"`
	PostalCode          string    `json:"postal_code,omitempty"`
	Country             string    `json:"country,omitempty"`
	Notes               string    `json:"notes,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
}

// Facility audit operations.
const (
	OperationInsert = "insert"
	OperationUpdate = "update"
	OperationDelete = "delete"
)

// FacilityEvent is an audit record of a write to the facility table.
// It is stored alongside the write and published to subscribers.
type FacilityEvent struct {
	ID         int64     `json:"id"`
	FacilityID int64     `json:"facility_id"`
	Operation  string    `json:"operation"`
	Changes    string    `json:"changes"`
	Timestamp  time.Time `json:"timestamp"`
}
