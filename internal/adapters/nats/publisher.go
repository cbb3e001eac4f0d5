package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/flintapp/flint/internal/core/domain"
)

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	// Ensure streams exist
	streams := []nats.StreamConfig{
		{
			Name:      "CHAT_MESSAGES",
			Subjects:  []string{"flint.chat.>"},
			Retention: nats.InterestPolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
		{
			Name:      "MATCH_EVENTS",
			Subjects:  []string{"flint.match.>"},
			Retention: nats.InterestPolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
		{
			Name:      "LOCATION_PINGS",
			Subjects:  []string{"flint.location.>"},
			Retention: nats.WorkQueuePolicy,
			MaxAge:    1 * time.Hour,
			Storage:   nats.FileStorage,
		},
	}

	for _, cfg := range streams {
		if _, err := js.AddStream(&cfg); err != nil {
			// Stream may already exist — try update
			if _, err := js.UpdateStream(&cfg); err != nil {
				return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishMessage fans a chat message out on the match's subject.
func (p *Publisher) PublishMessage(ctx context.Context, msg *domain.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	_, err = p.js.Publish("flint.chat."+msg.MatchID, data)
	return err
}

// PublishMatch announces a new match on both members' subjects so each
// client only has to watch its own.
func (p *Publisher) PublishMatch(ctx context.Context, match *domain.Match) error {
	data, err := json.Marshal(match)
	if err != nil {
		return err
	}
	if _, err := p.js.Publish("flint.match."+match.ProfileA, data); err != nil {
		return err
	}
	_, err = p.js.Publish("flint.match."+match.ProfileB, data)
	return err
}

// PublishLocationPing forwards a position report for the presence worker.
func (p *Publisher) PublishLocationPing(ctx context.Context, ping *domain.LocationPing) error {
	data, err := json.Marshal(ping)
	if err != nil {
		return err
	}
	_, err = p.js.Publish("flint.location."+ping.ProfileID, data)
	return err
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
