package engine

import (
	"slices"

	"events-venues/data/models"
)

// RankedVenue is a venue together with the number of events it hosts.
type RankedVenue struct {
	models.Venue
	Events int `json:"events"`
}

// RankVenues orders venues by how many events reference them, most first.
// Venues with equal counts are ordered by name and then id, so venues with
// no events are included and always come last.
func RankVenues(venues []models.Venue, events []models.Event) []RankedVenue {
	counts := make(map[int64]int, len(venues))
	for _, e := range events {
		counts[e.VenueID]++
	}

	ranked := make([]RankedVenue, len(venues))
	for i, v := range venues {
		ranked[i] = RankedVenue{Venue: v, Events: counts[v.ID]}
	}
	slices.SortStableFunc(ranked, func(a, b RankedVenue) int {
		if a.Events != b.Events {
			return b.Events - a.Events
		}
		return VenuesByName(a.Venue, b.Venue)
	})
	return ranked
}
