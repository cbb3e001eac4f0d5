package postgres

import (
	"context"
	"time"

	"github.com/flintapp/flint/internal/core/domain"
)

// ProfileRepo implements ports.ProfileRepository with pgx.
type ProfileRepo struct {
	db *DB
}

// NewProfileRepo creates a new ProfileRepo.
func NewProfileRepo(db *DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

const profileColumns = `
	id, handle, display_name, COALESCE(bio, ''), birth_date, gender, interested_in,
	COALESCE(photo_urls, '{}'),
	CASE WHEN location IS NULL THEN NULL ELSE ST_Y(location::geometry) END,
	CASE WHEN location IS NULL THEN NULL ELSE ST_X(location::geometry) END,
	active, last_seen, COALESCE(metadata, '{}'), created_at`

// Upsert inserts or updates a profile keyed by handle.
func (r *ProfileRepo) Upsert(ctx context.Context, p *domain.Profile) error {
	var lat, lon *float64
	if p.Location != nil {
		lat, lon = &p.Location.Lat, &p.Location.Lon
	}
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO profiles (handle, display_name, bio, birth_date, gender, interested_in, photo_urls, location, active, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7,
			CASE WHEN $8::float8 IS NULL THEN NULL
			     ELSE ST_SetSRID(ST_MakePoint($9::float8, $8::float8), 4326)::geography END,
			$10, $11)
		ON CONFLICT (handle) DO UPDATE
		SET display_name = EXCLUDED.display_name, bio = EXCLUDED.bio,
		    birth_date = EXCLUDED.birth_date, gender = EXCLUDED.gender,
		    interested_in = EXCLUDED.interested_in, photo_urls = EXCLUDED.photo_urls,
		    active = EXCLUDED.active, metadata = EXCLUDED.metadata
	`, p.Handle, p.DisplayName, p.Bio, p.BirthDate, p.Gender, p.InterestedIn,
		p.PhotoURLs, lat, lon, p.Active, p.Metadata)
	return err
}

// GetByID returns a profile by UUID.
func (r *ProfileRepo) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	row := r.db.Pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id)
	return scanProfile(row)
}

// GetByIDs returns multiple profiles by UUID, in arbitrary order.
func (r *ProfileRepo) GetByIDs(ctx context.Context, ids []string) ([]domain.Profile, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.db.Pool.Query(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []domain.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}

// ListActiveInBounds returns active, located profiles inside the box.
// Exact radius filtering and ranking happen in the caller.
func (r *ProfileRepo) ListActiveInBounds(ctx context.Context, minLat, minLon, maxLat, maxLon float64, limit int) ([]domain.Profile, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+profileColumns+`
		FROM profiles
		WHERE active
		  AND location IS NOT NULL
		  AND location::geometry && ST_MakeEnvelope($1, $2, $3, $4, 4326)
		ORDER BY last_seen DESC
		LIMIT $5
	`, minLon, minLat, maxLon, maxLat, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []domain.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}

// UpdateLocation stores the latest reported position and bumps last_seen.
func (r *ProfileRepo) UpdateLocation(ctx context.Context, id string, loc domain.GeoPoint, seenAt time.Time) error {
	_, err := r.db.Pool.Exec(ctx, `
		UPDATE profiles
		SET location = ST_SetSRID(ST_MakePoint($2, $3), 4326)::geography, last_seen = $4
		WHERE id = $1
	`, id, loc.Lon, loc.Lat, seenAt)
	return err
}

// Deactivate hides the profile from discovery.
func (r *ProfileRepo) Deactivate(ctx context.Context, id string) error {
	_, err := r.db.Pool.Exec(ctx, `UPDATE profiles SET active = false WHERE id = $1`, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*domain.Profile, error) {
	var p domain.Profile
	var lat, lon *float64
	if err := row.Scan(
		&p.ID, &p.Handle, &p.DisplayName, &p.Bio, &p.BirthDate, &p.Gender, &p.InterestedIn,
		&p.PhotoURLs, &lat, &lon, &p.Active, &p.LastSeen, &p.Metadata, &p.CreatedAt,
	); err != nil {
		return nil, err
	}
	if lat != nil && lon != nil {
		p.Location = &domain.GeoPoint{Lat: *lat, Lon: *lon}
	}
	return &p, nil
}
