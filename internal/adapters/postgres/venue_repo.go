package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/flintapp/flint/internal/core/domain"
)

// VenueRepo implements ports.VenueRepository with pgx.
type VenueRepo struct {
	db *DB
}

// NewVenueRepo creates a new VenueRepo.
func NewVenueRepo(db *DB) *VenueRepo {
	return &VenueRepo{db: db}
}

// Upsert inserts or updates a single venue keyed by (name, address).
func (r *VenueRepo) Upsert(ctx context.Context, v *domain.Venue) error {
	if v.Location == nil {
		return fmt.Errorf("venue %q has no location", v.Name)
	}
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO venues (name, category, location, address, rating, metadata)
		VALUES ($1, $2, ST_SetSRID(ST_MakePoint($3, $4), 4326)::geography, $5, $6, $7)
		ON CONFLICT (name, address) DO UPDATE
		SET category = EXCLUDED.category, location = EXCLUDED.location,
		    rating = EXCLUDED.rating, metadata = EXCLUDED.metadata
	`, v.Name, v.Category, v.Location.Lon, v.Location.Lat, v.Address, v.Rating, v.Metadata)
	return err
}

// UpsertBatch inserts many venues using pgx.Batch.
func (r *VenueRepo) UpsertBatch(ctx context.Context, venues []domain.Venue) error {
	batch := &pgx.Batch{}
	queued := 0
	for _, v := range venues {
		if v.Location == nil {
			continue
		}
		batch.Queue(`
			INSERT INTO venues (name, category, location, address, rating, metadata)
			VALUES ($1, $2, ST_SetSRID(ST_MakePoint($3, $4), 4326)::geography, $5, $6, $7)
			ON CONFLICT (name, address) DO UPDATE
			SET category = EXCLUDED.category, location = EXCLUDED.location, rating = EXCLUDED.rating
		`, v.Name, v.Category, v.Location.Lon, v.Location.Lat, v.Address, v.Rating, v.Metadata)
		queued++
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for i := 0; i < queued; i++ {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}

const venueColumns = `
	id, name, category,
	ST_Y(location::geometry) as lat,
	ST_X(location::geometry) as lon,
	COALESCE(address, ''), rating, COALESCE(metadata, '{}'), created_at`

// GetByID returns a venue by UUID.
func (r *VenueRepo) GetByID(ctx context.Context, id string) (*domain.Venue, error) {
	var v domain.Venue
	var lat, lon float64
	err := r.db.Pool.QueryRow(ctx, `SELECT `+venueColumns+` FROM venues WHERE id = $1`, id).Scan(
		&v.ID, &v.Name, &v.Category, &lat, &lon, &v.Address, &v.Rating, &v.Metadata, &v.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	v.Location = &domain.GeoPoint{Lat: lat, Lon: lon}
	return &v, nil
}

// ListInBounds returns venues inside the lat/lon box, unranked.
func (r *VenueRepo) ListInBounds(ctx context.Context, minLat, minLon, maxLat, maxLon float64, limit int) ([]domain.Venue, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+venueColumns+`
		FROM venues
		WHERE location::geometry && ST_MakeEnvelope($1, $2, $3, $4, 4326)
		LIMIT $5
	`, minLon, minLat, maxLon, maxLat, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanVenues(rows)
}

// Search performs fuzzy + full-text search on venue names.
func (r *VenueRepo) Search(ctx context.Context, query string, limit int) ([]domain.Venue, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+venueColumns+`, similarity(name, $1) as sim
		FROM venues
		WHERE name_vector @@ plainto_tsquery('simple', $1)
		   OR name %> $1
		ORDER BY sim DESC
		LIMIT $2
	`, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var venues []domain.Venue
	for rows.Next() {
		var v domain.Venue
		var lat, lon, sim float64
		if err := rows.Scan(
			&v.ID, &v.Name, &v.Category, &lat, &lon, &v.Address, &v.Rating, &v.Metadata, &v.CreatedAt, &sim,
		); err != nil {
			return nil, err
		}
		v.Location = &domain.GeoPoint{Lat: lat, Lon: lon}
		venues = append(venues, v)
	}
	return venues, rows.Err()
}

func scanVenues(rows pgx.Rows) ([]domain.Venue, error) {
	var venues []domain.Venue
	for rows.Next() {
		var v domain.Venue
		var lat, lon float64
		if err := rows.Scan(
			&v.ID, &v.Name, &v.Category, &lat, &lon, &v.Address, &v.Rating, &v.Metadata, &v.CreatedAt,
		); err != nil {
			return nil, err
		}
		v.Location = &domain.GeoPoint{Lat: lat, Lon: lon}
		venues = append(venues, v)
	}
	return venues, rows.Err()
}
