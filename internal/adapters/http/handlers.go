package http

import (
	"bytes"
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/facilitymap/internal/adapters/plotly"
	"github.com/samirrijal/facilitymap/internal/core/domain"
	"github.com/samirrijal/facilitymap/internal/pkg/metrics"
)

// ---- Map ----

// MapDataHandler returns every facility as parallel lat/lon/text arrays.
func MapDataHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dataset, err := deps.Maps.Dataset(c.UserContext())
		if err != nil {
			return errFromService(c, err, "map data")
		}
		metrics.MapRequests.WithLabelValues("json").Inc()
		metrics.MapPoints.Set(float64(dataset.Len()))
		return c.JSON(dataset)
	}
}

// MapGeoJSONHandler returns the map dataset as a GeoJSON FeatureCollection.
func MapGeoJSONHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fc, err := deps.Maps.GeoJSON(c.UserContext())
		if err != nil {
			return errFromService(c, err, "map data")
		}
		data, err := fc.MarshalJSON()
		if err != nil {
			return errInternal(c, "failed to encode geojson")
		}
		metrics.MapRequests.WithLabelValues("geojson").Inc()
		c.Set(fiber.HeaderContentType, "application/geo+json")
		return c.Send(data)
	}
}

// MapSpecHandler returns the marker map render spec as JSON.
// Query: ?container=<id> overrides the target container.
func MapSpecHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		spec, err := deps.Maps.RenderSpec(c.UserContext(), containerID(c, deps))
		if err != nil {
			return errFromService(c, err, "map data")
		}
		metrics.MapRequests.WithLabelValues("spec").Inc()
		return c.JSON(spec)
	}
}

// MapPageHandler serves an HTML page that draws the facility map with Plotly.
func MapPageHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		spec, err := deps.Maps.RenderSpec(ctx, containerID(c, deps))
		if err != nil {
			return errFromService(c, err, "map data")
		}

		opts := plotly.Options{ScriptURL: deps.ScriptURL}
		if deps.NATS != nil {
			scheme := "ws"
			if c.Protocol() == "https" {
				scheme = "wss"
			}
			opts.LiveURL = scheme + "://" + c.Hostname() + "/ws"
		}

		var buf bytes.Buffer
		if err := plotly.NewHTMLRenderer(&buf, opts).Render(ctx, spec.ContainerID, spec.Layers, spec.Layout); err != nil {
			LoggerFromCtx(ctx).Error("error rendering map", "error", err)
			return errInternal(c, "failed to render map")
		}

		metrics.MapRequests.WithLabelValues("html").Inc()
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.Send(buf.Bytes())
	}
}

func containerID(c *fiber.Ctx, deps *Dependencies) string {
	if id := strings.TrimSpace(c.Query("container")); id != "" {
		return id
	}
	if deps.ContainerID != "" {
		return deps.ContainerID
	}
	return domain.DefaultContainerID
}

// ---- Facilities ----

// facilityRequest is the body accepted by create and update.
// Pointers distinguish an omitted field from its zero value.
type facilityRequest struct {
	Name                string   `json:"name"`
	ContactInfo         string   `json:"contact_info"`
	Lat                 *float64 `json:"lat"`
	Lon                 *float64 `json:"lon"`
	IsOperating         *bool    `json:"is_operating"`
	StreetAddress       string   `json:"street_address"`
	City                string   `json:"city"`
	StateProvinceRegion string   `json:"state_province_region"`
	PostalCode          string   `json:"postal_code"`
	Country             string   `json:"country"`
	Notes               string   `json:"notes"`
}

func (r *facilityRequest) toFacility() (*domain.Facility, error) {
	if r.Lat == nil || r.Lon == nil {
		return nil, errors.New("lat and lon are required")
	}
	f := &domain.Facility{
		Name:                r.Name,
		ContactInfo:         r.ContactInfo,
		Location:            domain.GeoPoint{Lat: *r.Lat, Lon: *r.Lon},
		IsOperating:         true,
		StreetAddress:       r.StreetAddress,
		City:                r.City,
		StateProvinceRegion: r.StateProvinceRegion,
		PostalCode:          r.PostalCode,
		Country:             r.Country,
		Notes:               r.Notes,
	}
	if r.IsOperating != nil {
		f.IsOperating = *r.IsOperating
	}
	return f, nil
}

func parseFacilityID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("id must be a positive integer")
	}
	return id, nil
}

// ListFacilitiesHandler returns facilities ordered by id.
// Query: ?offset=0&limit=50
func ListFacilitiesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		facilities, err := deps.Facilities.List(c.UserContext())
		if err != nil {
			return errFromService(c, err, "facilities")
		}
		return paginate(c, facilities)
	}
}

// GetFacilityHandler returns a single facility.
func GetFacilityHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseFacilityID(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		f, err := deps.Facilities.GetByID(c.UserContext(), id)
		if err != nil {
			return errFromService(c, err, "facility")
		}
		return c.JSON(f)
	}
}

// CreateFacilityHandler stores a new facility and returns it with its id.
func CreateFacilityHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req facilityRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		f, err := req.toFacility()
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		if err := deps.Facilities.Create(c.UserContext(), f); err != nil {
			return errFromService(c, err, "facility")
		}
		metrics.FacilityWrites.WithLabelValues(domain.OperationInsert).Inc()
		c.Location("/v1/facilities/" + strconv.FormatInt(f.ID, 10))
		return c.Status(fiber.StatusCreated).JSON(f)
	}
}

// UpdateFacilityHandler replaces a facility.
func UpdateFacilityHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseFacilityID(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		var req facilityRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		f, err := req.toFacility()
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		f.ID = id
		if err := deps.Facilities.Update(c.UserContext(), f); err != nil {
			return errFromService(c, err, "facility")
		}
		metrics.FacilityWrites.WithLabelValues(domain.OperationUpdate).Inc()
		return c.JSON(f)
	}
}

// DeleteFacilityHandler removes a facility.
func DeleteFacilityHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseFacilityID(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		if err := deps.Facilities.Delete(c.UserContext(), id); err != nil {
			return errFromService(c, err, "facility")
		}
		metrics.FacilityWrites.WithLabelValues(domain.OperationDelete).Inc()
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// FacilityTransactionsHandler returns the audit trail of a facility.
// Query: ?offset=0&limit=50
func FacilityTransactionsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseFacilityID(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		events, err := deps.Facilities.Transactions(c.UserContext(), id)
		if err != nil {
			return errFromService(c, err, "facility")
		}
		return paginate(c, events)
	}
}
