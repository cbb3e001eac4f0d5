package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	"github.com/flintapp/flint/internal/core/domain"
	"github.com/flintapp/flint/internal/pkg/metrics"
	"github.com/flintapp/flint/internal/pkg/proximity"
)

// wsMessage is sent from the client to manage subscriptions or report
// position. Lat/Lon are pointers so an omitted field is distinguishable
// from a genuine 0 (a valid coordinate).
type wsMessage struct {
	Action  string   `json:"action"`             // "subscribe" | "unsubscribe" | "location"
	Channel string   `json:"channel,omitempty"`  // "chat" | "matches" (default: matches)
	MatchID string   `json:"match_id,omitempty"` // required for channel "chat"
	Lat     *float64 `json:"lat,omitempty"`
	Lon     *float64 `json:"lon,omitempty"`
}

// WebSocketHandler returns a handler that upgrades to WebSocket and
// relays real-time NATS events to connected clients.
//
// Clients authenticate with ?token=<jwt> and are auto-subscribed to their
// own match events. They can additionally subscribe to the chat feed of a
// match they belong to:
//
//	{"action":"subscribe","channel":"chat","match_id":"..."}
//
// and report their position without a separate HTTP round-trip:
//
//	{"action":"location","lat":43.26,"lon":-2.93}
func WebSocketHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		profileID, err := parseToken(c.Query("token"), deps.SigningKey)
		if err != nil {
			_ = c.WriteMessage(websocket.TextMessage, []byte(`{"error":"unauthorized"}`))
			return
		}

		remoteAddr := c.RemoteAddr().String()
		log.Printf("ws client connected: %s (%s)", profileID, remoteAddr)
		metrics.WSConnections.Inc()
		defer metrics.WSConnections.Dec()

		var mu sync.Mutex
		subs := make(map[string]*nats.Subscription) // subject -> subscription

		// Helper: thread-safe write
		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		// Auto-subscribe to the caller's own match events
		defaultSubject := "flint.match." + profileID
		sub, err := deps.NATS.Subscribe(defaultSubject, func(msg *nats.Msg) {
			_ = writeJSON(json.RawMessage(msg.Data))
		})
		if err != nil {
			log.Printf("ws default subscribe error: %v", err)
			return
		}
		subs[defaultSubject] = sub

		// Keep-alive ping
		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		ctx := context.Background()

		// Read client messages
		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}

			if m.Action == "location" {
				_ = writeJSON(handleLocationAction(ctx, deps, profileID, m))
				continue
			}

			// Build NATS subject
			channel := m.Channel
			if channel == "" {
				channel = "matches"
			}

			var subject string
			switch channel {
			case "chat":
				if m.MatchID == "" {
					_ = writeJSON(map[string]string{"error": "match_id is required for chat"})
					continue
				}
				// Only members of a match may watch its chat feed
				if _, err := deps.Matches.Get(ctx, m.MatchID, profileID); err != nil {
					_ = writeJSON(map[string]string{"error": "match not found"})
					continue
				}
				subject = "flint.chat." + m.MatchID
			case "matches":
				subject = defaultSubject
			default:
				_ = writeJSON(map[string]string{"error": "unknown channel: " + channel})
				continue
			}

			switch m.Action {
			case "subscribe":
				if _, exists := subs[subject]; exists {
					_ = writeJSON(map[string]string{"status": "already subscribed", "subject": subject})
					continue
				}
				s, err := deps.NATS.Subscribe(subject, func(msg *nats.Msg) {
					_ = writeJSON(json.RawMessage(msg.Data))
				})
				if err != nil {
					_ = writeJSON(map[string]string{"error": "subscribe failed: " + err.Error()})
					continue
				}
				subs[subject] = s
				_ = writeJSON(map[string]string{"status": "subscribed", "subject": subject})

			case "unsubscribe":
				if s, exists := subs[subject]; exists {
					_ = s.Unsubscribe()
					delete(subs, subject)
					_ = writeJSON(map[string]string{"status": "unsubscribed", "subject": subject})
				} else {
					_ = writeJSON(map[string]string{"error": "not subscribed to " + subject})
				}

			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		// Cleanup
		close(done)
		for _, s := range subs {
			_ = s.Unsubscribe()
		}
		log.Printf("ws client disconnected: %s (%s)", profileID, remoteAddr)
	}
}

// handleLocationAction validates a client position report and publishes
// it for the presence worker. The publisher may be absent when the API
// runs in a degraded configuration, so that is reported, not assumed.
func handleLocationAction(ctx context.Context, deps *Dependencies, profileID string, m wsMessage) map[string]string {
	if deps.Publisher == nil {
		return map[string]string{"error": "location reporting unavailable"}
	}
	ping, err := locationPingFromMessage(profileID, m)
	if err != nil {
		return map[string]string{"error": err.Error()}
	}
	if err := deps.Publisher.PublishLocationPing(ctx, ping); err != nil {
		return map[string]string{"error": "location publish failed"}
	}
	return map[string]string{"status": "location accepted"}
}

// locationPingFromMessage turns a "location" message into a broker
// event. Omitted fields never coerce to (0, 0): both coordinates must be
// present and inside the valid lat/lon range.
func locationPingFromMessage(profileID string, m wsMessage) (*domain.LocationPing, error) {
	if m.Lat == nil || m.Lon == nil {
		return nil, fmt.Errorf("lat and lon are required")
	}
	if !(proximity.Coordinate{Lat: *m.Lat, Lon: *m.Lon}).Valid() {
		return nil, fmt.Errorf("invalid coordinates %.4f, %.4f", *m.Lat, *m.Lon)
	}
	return &domain.LocationPing{
		ProfileID: profileID,
		Location:  domain.GeoPoint{Lat: *m.Lat, Lon: *m.Lon},
		Time:      time.Now().UTC(),
	}, nil
}
