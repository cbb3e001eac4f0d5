// Package proximity ranks geotagged entities by great-circle distance
// from an observer. It is pure and stateless: callers fetch candidate
// entities however they like and feed them in as a plain slice.
package proximity

import (
	"errors"
	"math"
	"sort"
)

const earthRadiusKm = 6371.0

var (
	// ErrInvalidCoordinate is returned when the observer coordinate is
	// missing, NaN, or out of the valid lat/lon range.
	ErrInvalidCoordinate = errors.New("proximity: invalid observer coordinate")

	// ErrInvalidRadius is returned when the query radius is zero or negative.
	ErrInvalidRadius = errors.New("proximity: radius must be positive")
)

// Coordinate is a WGS 84 point in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the coordinate is inside the valid lat/lon range.
// (0, 0) is a real place in the Gulf of Guinea and is valid; missing
// coordinates are expressed as a nil *Coordinate, never as zeroes.
func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// Entity is any point of interest subject to proximity search. Attrs
// carry caller-defined attributes for predicate filtering; the index
// never interprets them. A nil Coord means the location is unknown.
type Entity struct {
	ID    string
	Coord *Coordinate
	Attrs map[string]any
}

// Predicate filters entities before the radius check. Predicates on a
// query are AND-combined: an entity must satisfy all of them.
type Predicate func(Entity) bool

// Query describes a proximity search around an observer.
type Query struct {
	Observer   Coordinate
	RadiusKm   float64
	Predicates []Predicate
	Limit      int // max hits returned, 0 = uncapped
}

// Hit is an entity within radius, annotated with its distance.
type Hit struct {
	Entity     Entity
	DistanceKm float64
}

// Result is the outcome of a search. Excluded counts entities dropped
// for missing or invalid coordinates; bad rows from an external source
// must not break discovery for the rest of the set, so they are counted
// rather than surfaced as errors.
type Result struct {
	Hits     []Hit
	Excluded int
}

// Search returns the entities within q.RadiusKm of q.Observer, sorted
// ascending by distance. The sort is stable, so entities at equal
// distance keep their input order and repeated queries over unchanged
// input are deterministic. The radius boundary is inclusive, and the
// limit is applied after sorting so a capped result is always the
// closest N. Duplicate IDs pass through untouched; deduplication and
// self-exclusion are caller policy, supplied as predicates if wanted.
func Search(q Query, entities []Entity) (Result, error) {
	if !q.Observer.Valid() {
		return Result{}, ErrInvalidCoordinate
	}
	if q.RadiusKm <= 0 {
		return Result{}, ErrInvalidRadius
	}

	res := Result{}
	for _, e := range entities {
		if !matchesAll(e, q.Predicates) {
			continue
		}
		if e.Coord == nil || !e.Coord.Valid() {
			res.Excluded++
			continue
		}
		d := Distance(q.Observer, *e.Coord)
		if d <= q.RadiusKm {
			res.Hits = append(res.Hits, Hit{Entity: e, DistanceKm: d})
		}
	}

	sort.SliceStable(res.Hits, func(i, j int) bool {
		return res.Hits[i].DistanceKm < res.Hits[j].DistanceKm
	})

	if q.Limit > 0 && len(res.Hits) > q.Limit {
		res.Hits = res.Hits[:q.Limit]
	}

	return res, nil
}

func matchesAll(e Entity, preds []Predicate) bool {
	for _, p := range preds {
		if !p(e) {
			return false
		}
	}
	return true
}

// Distance returns the haversine great-circle distance in kilometers.
// The sin²(Δ/2) terms are periodic, so antimeridian and pole-adjacent
// pairs need no extra wraparound handling.
func Distance(a, b Coordinate) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLon := toRad(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c
}

// BoundingBox returns a lat/lon box around center that fully contains
// the radius. It is an equirectangular approximation meant only for
// storage-side candidate prefiltering; exact membership still comes
// from Search. Near the poles the lon span degenerates, so it is
// clamped to the full range there.
func BoundingBox(center Coordinate, radiusKm float64) (minLat, minLon, maxLat, maxLon float64) {
	latDelta := radiusKm / 111.32

	cosLat := math.Cos(toRad(center.Lat))
	lonDelta := 180.0
	if cosLat > 1e-6 {
		lonDelta = radiusKm / (111.32 * cosLat)
		if lonDelta > 180 {
			lonDelta = 180
		}
	}

	minLat = math.Max(center.Lat-latDelta, -90)
	maxLat = math.Min(center.Lat+latDelta, 90)
	return minLat, center.Lon - lonDelta, maxLat, center.Lon + lonDelta
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
