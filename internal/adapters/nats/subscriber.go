package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/flintapp/flint/internal/core/domain"
)

// Subscriber implements ports.EventSubscriber using NATS JetStream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber with its own NATS connection.
func NewSubscriber(url string) (*Subscriber, error) {
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
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribeMessages delivers persisted chat messages, e.g. to bump the
// sender's presence.
func (s *Subscriber) SubscribeMessages(ctx context.Context, handler func(ctx context.Context, msg *domain.Message) error) error {
	sub, err := s.js.Subscribe("flint.chat.>", func(m *nats.Msg) {
		var msg domain.Message
		if err := json.Unmarshal(m.Data, &msg); err != nil {
			_ = m.Nak()
			return
		}
		if err := handler(ctx, &msg); err != nil {
			_ = m.Nak()
			return
		}
		_ = m.Ack()
	},
		nats.Durable("presence-chat"),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// SubscribeLocationPings delivers client position reports.
func (s *Subscriber) SubscribeLocationPings(ctx context.Context, handler func(ctx context.Context, ping *domain.LocationPing) error) error {
	sub, err := s.js.Subscribe("flint.location.>", func(m *nats.Msg) {
		var ping domain.LocationPing
		if err := json.Unmarshal(m.Data, &ping); err != nil {
			_ = m.Nak()
			return
		}
		if err := handler(ctx, &ping); err != nil {
			_ = m.Nak()
			return
		}
		_ = m.Ack()
	},
		nats.Durable("presence-location"),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
