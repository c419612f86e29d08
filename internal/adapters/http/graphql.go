package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"
)

// buildSchema creates the GraphQL schema wired to our services.
// Field names follow the JSON tags of the domain types, which the default
// resolver reads.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	boundsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Bounds",
		Fields: graphql.Fields{
			"min_lat": &graphql.Field{Type: graphql.Float},
			"min_lon": &graphql.Field{Type: graphql.Float},
			"max_lat": &graphql.Field{Type: graphql.Float},
			"max_lon": &graphql.Field{Type: graphql.Float},
		},
	})

	facilityType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Facility",
		Fields: graphql.Fields{
			"id":                    &graphql.Field{Type: graphql.Int},
			"name":                  &graphql.Field{Type: graphql.String},
			"contact_info":          &graphql.Field{Type: graphql.String},
			"location":              &graphql.Field{Type: geoPointType},
			"is_operating":          &graphql.Field{Type: graphql.Boolean},
			"street_address":        &graphql.Field{Type: graphql.String},
			"city":                  &graphql.Field{Type: graphql.String},
			"state_province_region": &graphql.Field{Type: graphql.String},
			"postal_code":           &graphql.Field{Type: graphql.String},
			"country":               &graphql.Field{Type: graphql.String},
			"notes":                 &graphql.Field{Type: graphql.String},
			"created_at":            &graphql.Field{Type: graphql.DateTime},
		},
	})

	mapDataType := graphql.NewObject(graphql.ObjectConfig{
		Name: "MapData",
		Fields: graphql.Fields{
			"lat":  &graphql.Field{Type: graphql.NewList(graphql.Float)},
			"lon":  &graphql.Field{Type: graphql.NewList(graphql.Float)},
			"text": &graphql.Field{Type: graphql.NewList(graphql.String)},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"facilities": &graphql.Field{
				Type:        graphql.NewList(facilityType),
				Description: "List all facilities ordered by id",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Facilities.List(p.Context)
				},
			},
			"facility": &graphql.Field{
				Type:        facilityType,
				Description: "Get a facility by id",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["id"].(int)
					return deps.Facilities.GetByID(p.Context, int64(id))
				},
			},
			"mapData": &graphql.Field{
				Type:        mapDataType,
				Description: "Facility positions as parallel lat/lon/text lists",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Maps.Dataset(p.Context)
				},
			},
			"centroid": &graphql.Field{
				Type:        geoPointType,
				Description: "Mean position of all facilities",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Maps.Centroid(p.Context)
				},
			},
			"bounds": &graphql.Field{
				Type:        boundsType,
				Description: "Bounding box of all facilities",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Maps.Bounds(p.Context)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Query == "" {
			return errBadRequest(c, "query is required")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
