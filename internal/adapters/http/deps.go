package http

import (
	"github.com/nats-io/nats.go"
	"github.com/samirrijal/facilitymap/internal/adapters/postgres"
	"github.com/samirrijal/facilitymap/internal/adapters/valkey"
	"github.com/samirrijal/facilitymap/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Facilities  *usecases.FacilityService
	Maps        *usecases.MapDataService
	NATS        *nats.Conn
	DB          *postgres.DB
	Cache       *valkey.Cache
	ContainerID string // render target id for /map, defaults to "map"
	ScriptURL   string // Plotly bundle for /map, defaults to the CDN build
}
