package http

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/flintapp/flint/internal/core/usecases"
)

const callerKey ctxKey = "caller"

// callerFromCtx returns the authenticated profile ID placed in the
// context by GraphQLHandler.
func callerFromCtx(ctx context.Context) (string, error) {
	id, _ := ctx.Value(callerKey).(string)
	if id == "" {
		return "", fmt.Errorf("not authenticated")
	}
	return id, nil
}

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	venueType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Venue",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"name":        &graphql.Field{Type: graphql.String},
			"category":    &graphql.Field{Type: graphql.String},
			"location":    &graphql.Field{Type: geoPointType},
			"address":     &graphql.Field{Type: graphql.String},
			"rating":      &graphql.Field{Type: graphql.Float},
			"distance_km": &graphql.Field{Type: graphql.Float},
		},
	})

	profileType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Profile",
		Fields: graphql.Fields{
			"id":            &graphql.Field{Type: graphql.String},
			"handle":        &graphql.Field{Type: graphql.String},
			"display_name":  &graphql.Field{Type: graphql.String},
			"bio":           &graphql.Field{Type: graphql.String},
			"gender":        &graphql.Field{Type: graphql.String},
			"interested_in": &graphql.Field{Type: graphql.NewList(graphql.String)},
			"photo_urls":    &graphql.Field{Type: graphql.NewList(graphql.String)},
			"location":      &graphql.Field{Type: geoPointType},
			"active":        &graphql.Field{Type: graphql.Boolean},
			"distance_km":   &graphql.Field{Type: graphql.Float},
		},
	})

	matchType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Match",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: graphql.String},
			"profile_a":  &graphql.Field{Type: graphql.String},
			"profile_b":  &graphql.Field{Type: graphql.String},
			"matched_at": &graphql.Field{Type: graphql.String},
			"notified":   &graphql.Field{Type: graphql.Boolean},
		},
	})

	messageType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Message",
		Fields: graphql.Fields{
			"id":        &graphql.Field{Type: graphql.String},
			"match_id":  &graphql.Field{Type: graphql.String},
			"sender_id": &graphql.Field{Type: graphql.String},
			"body":      &graphql.Field{Type: graphql.String},
			"sent_at":   &graphql.Field{Type: graphql.String},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"venuesNearby": &graphql.Field{
				Type:        graphql.NewList(venueType),
				Description: "Find venues near a location",
				Args: graphql.FieldConfigArgument{
					"lat":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"radius_km": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 5.0},
					"category":  &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
					"limit":     &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					lat := p.Args["lat"].(float64)
					lon := p.Args["lon"].(float64)
					radiusKm := p.Args["radius_km"].(float64)
					if deps.MaxRadiusKm > 0 && radiusKm > deps.MaxRadiusKm {
						radiusKm = deps.MaxRadiusKm
					}
					category := p.Args["category"].(string)
					limit := p.Args["limit"].(int)
					return deps.Venues.Nearby(p.Context, lat, lon, radiusKm, category, limit)
				},
			},
			"searchVenues": &graphql.Field{
				Type:        graphql.NewList(venueType),
				Description: "Search venues by name (fuzzy matching)",
				Args: graphql.FieldConfigArgument{
					"query": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					q := p.Args["query"].(string)
					limit := p.Args["limit"].(int)
					return deps.Venues.Search(p.Context, q, limit)
				},
			},
			"venue": &graphql.Field{
				Type:        venueType,
				Description: "Get a venue by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["id"].(string)
					return deps.Venues.GetByID(p.Context, id)
				},
			},
			"me": &graphql.Field{
				Type:        profileType,
				Description: "The caller's own profile",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					caller, err := callerFromCtx(p.Context)
					if err != nil {
						return nil, err
					}
					return deps.Profiles.Get(p.Context, caller)
				},
			},
			"discovery": &graphql.Field{
				Type:        graphql.NewList(profileType),
				Description: "Candidate profiles near the caller, closest first",
				Args: graphql.FieldConfigArgument{
					"radius_km": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 0.0},
					"min_age":   &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
					"max_age":   &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
					"limit":     &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					caller, err := callerFromCtx(p.Context)
					if err != nil {
						return nil, err
					}
					viewer, err := deps.Profiles.Get(p.Context, caller)
					if err != nil {
						return nil, err
					}
					radiusKm := p.Args["radius_km"].(float64)
					if radiusKm == 0 {
						radiusKm = deps.DefaultRadiusKm
					}
					if deps.MaxRadiusKm > 0 && radiusKm > deps.MaxRadiusKm {
						radiusKm = deps.MaxRadiusKm
					}
					return deps.Discovery.NearbyProfiles(p.Context, viewer, usecases.DiscoveryFilter{
						RadiusKm: radiusKm,
						MinAge:   p.Args["min_age"].(int),
						MaxAge:   p.Args["max_age"].(int),
						Limit:    p.Args["limit"].(int),
					})
				},
			},
			"matches": &graphql.Field{
				Type:        graphql.NewList(matchType),
				Description: "The caller's active matches",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					caller, err := callerFromCtx(p.Context)
					if err != nil {
						return nil, err
					}
					return deps.Matches.ListMatches(p.Context, caller)
				},
			},
			"messages": &graphql.Field{
				Type:        graphql.NewList(messageType),
				Description: "Chat history for a match, newest first",
				Args: graphql.FieldConfigArgument{
					"match_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"limit":    &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 50},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					caller, err := callerFromCtx(p.Context)
					if err != nil {
						return nil, err
					}
					matchID := p.Args["match_id"].(string)
					limit := p.Args["limit"].(int)
					return deps.Chat.History(p.Context, matchID, caller, time.Time{}, limit)
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
		// This would be a programming error in the schema definition
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
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}

		// Carry the authenticated profile into resolver contexts.
		ctx := context.WithValue(c.Context(), callerKey, callerID(c))

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        ctx,
		})

		return c.JSON(result)
	}
}
