package usecases

import (
	"time"

	"github.com/flintapp/flint/internal/core/domain"
)

// Built-in sample data served only when discovery.sample_fallback is
// enabled and the store is unreachable. Kept deliberately small; this
// is a demo/dev aid, not a production degradation path.

func sampleVenues() []domain.Venue {
	return []domain.Venue{
		{
			ID:       "sample-venue-1",
			Name:     "Café Iruña",
			Category: "cafe",
			Location: &domain.GeoPoint{Lat: 43.2627, Lon: -2.9374},
			Address:  "Jardines de Albia, Bilbao",
			Rating:   4.5,
		},
		{
			ID:       "sample-venue-2",
			Name:     "La Terraza del Yandiola",
			Category: "bar",
			Location: &domain.GeoPoint{Lat: 43.2603, Lon: -2.9335},
			Address:  "Plaza Arrikibar 4, Bilbao",
			Rating:   4.3,
		},
		{
			ID:       "sample-venue-3",
			Name:     "Guggenheim Bistró",
			Category: "restaurant",
			Location: &domain.GeoPoint{Lat: 43.2687, Lon: -2.9340},
			Address:  "Abandoibarra Etorb. 2, Bilbao",
			Rating:   4.1,
		},
	}
}

func sampleProfiles() []domain.Profile {
	return []domain.Profile{
		{
			ID:           "sample-profile-1",
			Handle:       "maite_b",
			DisplayName:  "Maite",
			BirthDate:    time.Date(1996, 4, 12, 0, 0, 0, 0, time.UTC),
			Gender:       "woman",
			InterestedIn: []string{"everyone"},
			Location:     &domain.GeoPoint{Lat: 43.2630, Lon: -2.9350},
			Active:       true,
		},
		{
			ID:           "sample-profile-2",
			Handle:       "jon_arr",
			DisplayName:  "Jon",
			BirthDate:    time.Date(1993, 9, 2, 0, 0, 0, 0, time.UTC),
			Gender:       "man",
			InterestedIn: []string{"woman"},
			Location:     &domain.GeoPoint{Lat: 43.2655, Lon: -2.9301},
			Active:       true,
		},
	}
}
