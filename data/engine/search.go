package engine

import (
	"slices"
	"strings"
	"time"

	"events-venues/data/models"
)

// EventSearch is the result of an event keyword search split around the
// reference instant. Events starting exactly at the instant are in neither.
type EventSearch struct {
	Upcoming  []models.Event `json:"upcoming"`
	Preceding []models.Event `json:"preceding"`
}

// Matches reports whether keyword occurs in name, ignoring case.
func Matches(name, keyword string) bool {
	return strings.Contains(strings.ToLower(name), strings.ToLower(keyword))
}

// SearchEvents finds events whose name contains keyword and partitions them
// into upcoming and preceding relative to now, ordered as Upcoming and
// Preceding order them.
func SearchEvents(events []models.Event, keyword string, now time.Time) EventSearch {
	ref := At(now)
	res := EventSearch{
		Upcoming:  []models.Event{},
		Preceding: []models.Event{},
	}
	for _, e := range SortByDateTime(events) {
		if !Matches(e.Name, keyword) {
			continue
		}
		switch {
		case IsUpcoming(e, ref):
			res.Upcoming = append(res.Upcoming, e)
		case IsPreceding(e, ref):
			res.Preceding = append(res.Preceding, e)
		}
	}
	slices.SortStableFunc(res.Preceding, ByDateThenName)
	return res
}

// SearchVenues finds venues whose name contains keyword, alphabetically.
func SearchVenues(venues []models.Venue, keyword string) []models.Venue {
	return filter(SortVenuesByName(venues), func(v models.Venue) bool {
		return Matches(v.Name, keyword)
	})
}
