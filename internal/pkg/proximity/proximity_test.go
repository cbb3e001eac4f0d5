package proximity_test

import (
	"errors"
	"math"
	"testing"

	"github.com/flintapp/flint/internal/pkg/proximity"
)

var (
	sanFrancisco = proximity.Coordinate{Lat: 37.7749, Lon: -122.4194}
	nearbySF     = proximity.Coordinate{Lat: 37.7849, Lon: -122.4094}
	newYork      = proximity.Coordinate{Lat: 40.7128, Lon: -74.0060}
)

// entityAtKm places an entity east of the observer along the equator at
// (approximately exactly) the given distance.
func entityAtKm(id string, km float64) proximity.Entity {
	lon := (km / 6371.0) * 180 / math.Pi
	return proximity.Entity{ID: id, Coord: &proximity.Coordinate{Lat: 0, Lon: lon}}
}

func TestDistance_Symmetry(t *testing.T) {
	pairs := [][2]proximity.Coordinate{
		{sanFrancisco, newYork},
		{{Lat: 0, Lon: 179.9}, {Lat: 0, Lon: -179.9}},
		{{Lat: 89.9, Lon: 45}, {Lat: -89.9, Lon: -45}},
	}
	for _, p := range pairs {
		ab := proximity.Distance(p[0], p[1])
		ba := proximity.Distance(p[1], p[0])
		if math.Abs(ab-ba) > 1e-9 {
			t.Errorf("distance not symmetric: %f vs %f", ab, ba)
		}
	}
}

func TestDistance_KnownValues(t *testing.T) {
	d := proximity.Distance(sanFrancisco, nearbySF)
	if d < 1.3 || d > 1.5 {
		t.Errorf("SF short hop: expected ~1.4 km, got %f", d)
	}

	d = proximity.Distance(sanFrancisco, newYork)
	if d < 4000 || d > 4300 {
		t.Errorf("SF-NY: expected ~4130 km, got %f", d)
	}
}

func TestSearch_InvalidObserver(t *testing.T) {
	bad := []proximity.Coordinate{
		{Lat: math.NaN(), Lon: 0},
		{Lat: 0, Lon: math.NaN()},
		{Lat: 91, Lon: 0},
		{Lat: -90.5, Lon: 0},
		{Lat: 0, Lon: 180.1},
	}
	for _, obs := range bad {
		_, err := proximity.Search(proximity.Query{Observer: obs, RadiusKm: 10}, nil)
		if !errors.Is(err, proximity.ErrInvalidCoordinate) {
			t.Errorf("observer %+v: expected ErrInvalidCoordinate, got %v", obs, err)
		}
	}
}

func TestSearch_InvalidRadius(t *testing.T) {
	for _, r := range []float64{0, -5} {
		_, err := proximity.Search(proximity.Query{Observer: sanFrancisco, RadiusKm: r}, nil)
		if !errors.Is(err, proximity.ErrInvalidRadius) {
			t.Errorf("radius %f: expected ErrInvalidRadius, got %v", r, err)
		}
	}
}

func TestSearch_EmptyInput(t *testing.T) {
	res, err := proximity.Search(proximity.Query{Observer: sanFrancisco, RadiusKm: 10}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Hits) != 0 || res.Excluded != 0 {
		t.Errorf("expected empty result, got %+v", res)
	}
}

func TestSearch_RadiusBoundaryInclusive(t *testing.T) {
	obs := proximity.Coordinate{Lat: 0, Lon: 0}
	e := proximity.Entity{ID: "edge", Coord: &proximity.Coordinate{Lat: 0, Lon: 0.1}}
	d := proximity.Distance(obs, *e.Coord)

	res, err := proximity.Search(proximity.Query{Observer: obs, RadiusKm: d}, []proximity.Entity{e})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Hits) != 1 {
		t.Fatalf("entity exactly at radius must be included, got %d hits", len(res.Hits))
	}

	farther := proximity.Entity{ID: "past", Coord: &proximity.Coordinate{Lat: 0, Lon: 0.100001}}
	res, err = proximity.Search(proximity.Query{Observer: obs, RadiusKm: d}, []proximity.Entity{farther})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Hits) != 0 {
		t.Fatalf("entity past the radius must be excluded")
	}
}

func TestSearch_SFScenario(t *testing.T) {
	entities := []proximity.Entity{
		{ID: "close", Coord: &nearbySF},
		{ID: "nyc", Coord: &newYork},
	}
	res, err := proximity.Search(proximity.Query{Observer: sanFrancisco, RadiusKm: 10}, entities)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Hits) != 1 || res.Hits[0].Entity.ID != "close" {
		t.Fatalf("expected only the nearby entity, got %+v", res.Hits)
	}
	if math.Abs(res.Hits[0].DistanceKm-1.4) > 0.1 {
		t.Errorf("expected ~1.4 km, got %f", res.Hits[0].DistanceKm)
	}
}

func TestSearch_Antimeridian(t *testing.T) {
	obs := proximity.Coordinate{Lat: 0, Lon: 179.9}
	e := proximity.Entity{ID: "across", Coord: &proximity.Coordinate{Lat: 0, Lon: -179.9}}

	res, err := proximity.Search(proximity.Query{Observer: obs, RadiusKm: 50}, []proximity.Entity{e})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Hits) != 1 {
		t.Fatal("entity 0.2 degrees across the antimeridian must be within 50 km")
	}
	if res.Hits[0].DistanceKm < 20 || res.Hits[0].DistanceKm > 25 {
		t.Errorf("expected ~22 km, got %f", res.Hits[0].DistanceKm)
	}
}

func TestSearch_NearPole(t *testing.T) {
	obs := proximity.Coordinate{Lat: 89.9, Lon: 0}
	e := proximity.Entity{ID: "polar", Coord: &proximity.Coordinate{Lat: 89.9, Lon: 180}}

	res, err := proximity.Search(proximity.Query{Observer: obs, RadiusKm: 30}, []proximity.Entity{e})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Two points at 89.9N on opposite meridians are ~22 km apart over the pole.
	if len(res.Hits) != 1 {
		t.Fatal("pole-adjacent entity must be included")
	}
	if res.Hits[0].DistanceKm > 25 {
		t.Errorf("expected ~22 km over the pole, got %f", res.Hits[0].DistanceKm)
	}
}

func TestSearch_CoincidentObserver(t *testing.T) {
	e := proximity.Entity{ID: "self", Coord: &sanFrancisco}
	res, err := proximity.Search(proximity.Query{Observer: sanFrancisco, RadiusKm: 1}, []proximity.Entity{e})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Hits) != 1 || res.Hits[0].DistanceKm != 0 {
		t.Fatalf("distance-zero entity must be included, got %+v", res.Hits)
	}
}

func TestSearch_BadCoordinatesExcludedNotFatal(t *testing.T) {
	entities := []proximity.Entity{
		{ID: "missing", Coord: nil},
		{ID: "nan", Coord: &proximity.Coordinate{Lat: math.NaN(), Lon: 0}},
		{ID: "range", Coord: &proximity.Coordinate{Lat: 95, Lon: 0}},
		{ID: "ok", Coord: &nearbySF},
	}
	res, err := proximity.Search(proximity.Query{Observer: sanFrancisco, RadiusKm: 10}, entities)
	if err != nil {
		t.Fatalf("bad rows must not fail the query: %v", err)
	}
	if len(res.Hits) != 1 || res.Hits[0].Entity.ID != "ok" {
		t.Fatalf("expected only the valid entity, got %+v", res.Hits)
	}
	if res.Excluded != 3 {
		t.Errorf("expected 3 excluded, got %d", res.Excluded)
	}
}

func TestSearch_CapAppliedAfterSort(t *testing.T) {
	entities := []proximity.Entity{
		entityAtKm("a", 1),
		entityAtKm("b", 3),
		entityAtKm("c", 2),
		entityAtKm("d", 5),
		entityAtKm("e", 4),
	}
	res, err := proximity.Search(proximity.Query{
		Observer: proximity.Coordinate{Lat: 0, Lon: 0},
		RadiusKm: 10,
		Limit:    3,
	}, entities)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Hits) != 3 {
		t.Fatalf("expected 3 hits, got %d", len(res.Hits))
	}
	want := []string{"a", "c", "b"} // distances 1, 2, 3
	for i, id := range want {
		if res.Hits[i].Entity.ID != id {
			t.Errorf("hit %d: expected %s, got %s", i, id, res.Hits[i].Entity.ID)
		}
	}
}

func TestSearch_StableOrderForTies(t *testing.T) {
	same := proximity.Coordinate{Lat: 0, Lon: 0.01}
	entities := []proximity.Entity{
		{ID: "first", Coord: &same},
		{ID: "second", Coord: &same},
		{ID: "third", Coord: &same},
	}
	q := proximity.Query{Observer: proximity.Coordinate{Lat: 0, Lon: 0}, RadiusKm: 5}

	for run := 0; run < 3; run++ {
		res, err := proximity.Search(q, entities)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for i, id := range []string{"first", "second", "third"} {
			if res.Hits[i].Entity.ID != id {
				t.Fatalf("run %d: ties must keep input order, got %+v", run, res.Hits)
			}
		}
	}
}

func TestSearch_PredicatesAreANDed(t *testing.T) {
	entities := []proximity.Entity{
		{ID: "bar", Coord: &nearbySF, Attrs: map[string]any{"category": "bar", "rating": 4.5}},
		{ID: "cafe", Coord: &nearbySF, Attrs: map[string]any{"category": "cafe", "rating": 4.8}},
		{ID: "dive", Coord: &nearbySF, Attrs: map[string]any{"category": "bar", "rating": 2.0}},
	}
	isBar := func(e proximity.Entity) bool { return e.Attrs["category"] == "bar" }
	wellRated := func(e proximity.Entity) bool {
		r, ok := e.Attrs["rating"].(float64)
		return ok && r >= 4.0
	}

	res, err := proximity.Search(proximity.Query{
		Observer:   sanFrancisco,
		RadiusKm:   10,
		Predicates: []proximity.Predicate{isBar, wellRated},
	}, entities)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Hits) != 1 || res.Hits[0].Entity.ID != "bar" {
		t.Fatalf("expected only the well-rated bar, got %+v", res.Hits)
	}
}

func TestSearch_DuplicatesPassThrough(t *testing.T) {
	entities := []proximity.Entity{
		{ID: "dup", Coord: &nearbySF},
		{ID: "dup", Coord: &nearbySF},
	}
	res, err := proximity.Search(proximity.Query{Observer: sanFrancisco, RadiusKm: 10}, entities)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Hits) != 2 {
		t.Fatalf("duplicate IDs must not be deduplicated, got %d hits", len(res.Hits))
	}
}

func TestBoundingBox_ContainsRadius(t *testing.T) {
	center := proximity.Coordinate{Lat: 43.263, Lon: -2.935}
	minLat, minLon, maxLat, maxLon := proximity.BoundingBox(center, 5)

	// Points 5 km due north/south/east/west must fall inside the box.
	probes := []proximity.Coordinate{
		{Lat: center.Lat + 5/111.32, Lon: center.Lon},
		{Lat: center.Lat - 5/111.32, Lon: center.Lon},
	}
	for _, p := range probes {
		if p.Lat < minLat || p.Lat > maxLat || p.Lon < minLon || p.Lon > maxLon {
			t.Errorf("probe %+v outside box [%f,%f]x[%f,%f]", p, minLat, maxLat, minLon, maxLon)
		}
	}
}

func TestBoundingBox_PoleClamp(t *testing.T) {
	minLat, minLon, maxLat, maxLon := proximity.BoundingBox(proximity.Coordinate{Lat: 89.99, Lon: 0}, 50)
	if maxLat > 90 {
		t.Errorf("maxLat must clamp at 90, got %f", maxLat)
	}
	if minLat >= maxLat {
		t.Errorf("degenerate lat span [%f, %f]", minLat, maxLat)
	}
	if maxLon-minLon < 180 {
		t.Errorf("lon span near the pole should widen, got [%f, %f]", minLon, maxLon)
	}
}
