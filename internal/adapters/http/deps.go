package http

import (
	"github.com/nats-io/nats.go"

	"github.com/flintapp/flint/internal/adapters/postgres"
	"github.com/flintapp/flint/internal/adapters/valkey"
	"github.com/flintapp/flint/internal/core/ports"
	"github.com/flintapp/flint/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Profiles  *usecases.ProfileService
	Discovery *usecases.DiscoveryService
	Venues    *usecases.VenueService
	Matches   *usecases.MatchService
	Chat      *usecases.ChatService
	Publisher ports.EventPublisher
	Workflows ports.MatchWorkflowStarter
	NATS      *nats.Conn
	DB        *postgres.DB
	Cache     *valkey.Cache

	// SigningKey verifies bearer tokens issued by the identity provider.
	SigningKey string

	// Radius applied when a discovery request names none, and the hard
	// ceiling on any client-supplied radius (config: discovery.*).
	DefaultRadiusKm float64
	MaxRadiusKm     float64
}
