package domain

import (
	"time"
)

// Swipe directions.
const (
	SwipeLike = "like"
	SwipePass = "pass"
)

// Profile represents a user profile visible in discovery.
type Profile struct {
	ID           string         `json:"id"`
	Handle       string         `json:"handle"`
	DisplayName  string         `json:"display_name"`
	Bio          string         `json:"bio,omitempty"`
	BirthDate    time.Time      `json:"birth_date"`
	Gender       string         `json:"gender"`
	InterestedIn []string       `json:"interested_in"`
	PhotoURLs    []string       `json:"photo_urls,omitempty"`
	Location     *GeoPoint      `json:"location,omitempty"` // nil until the client reports one
	Active       bool           `json:"active"`
	LastSeen     time.Time      `json:"last_seen"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	DistanceKm   *float64       `json:"distance_km,omitempty"` // computed field
	CreatedAt    time.Time      `json:"created_at"`
}

// Age returns the profile's age in full years at the given instant.
func (p *Profile) Age(now time.Time) int {
	years := now.Year() - p.BirthDate.Year()
	anniversary := p.BirthDate.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	return years
}

// Venue represents a point of interest shown in venue discovery.
type Venue struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Category   string         `json:"category"`
	Location   *GeoPoint      `json:"location,omitempty"`
	Address    string         `json:"address,omitempty"`
	Rating     float64        `json:"rating"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	DistanceKm *float64       `json:"distance_km,omitempty"` // computed field
	CreatedAt  time.Time      `json:"created_at"`
}

// Swipe records a single like/pass decision.
type Swipe struct {
	ID        string    `json:"id"`
	SwiperID  string    `json:"swiper_id"`
	TargetID  string    `json:"target_id"`
	Direction string    `json:"direction"` // like | pass
	CreatedAt time.Time `json:"created_at"`
}

// Match links two profiles that liked each other.
type Match struct {
	ID          string     `json:"id"`
	ProfileA    string     `json:"profile_a"`
	ProfileB    string     `json:"profile_b"`
	MatchedAt   time.Time  `json:"matched_at"`
	UnmatchedAt *time.Time `json:"unmatched_at,omitempty"`
	Notified    bool       `json:"notified"`
}

// Involves reports whether the given profile is one of the two sides.
func (m *Match) Involves(profileID string) bool {
	return m.ProfileA == profileID || m.ProfileB == profileID
}

// Other returns the counterpart profile ID for one side of the match.
func (m *Match) Other(profileID string) string {
	if m.ProfileA == profileID {
		return m.ProfileB
	}
	return m.ProfileA
}

// Message is a chat message inside a match.
type Message struct {
	ID       string     `json:"id"`
	MatchID  string     `json:"match_id"`
	SenderID string     `json:"sender_id"`
	Body     string     `json:"body"`
	SentAt   time.Time  `json:"sent_at"`
	ReadAt   *time.Time `json:"read_at,omitempty"`
}

// LocationPing is a client-reported position update.
type LocationPing struct {
	ProfileID string    `json:"profile_id"`
	Location  GeoPoint  `json:"location"`
	Time      time.Time `json:"time"`
}
