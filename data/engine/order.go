package engine

import (
	"cmp"
	"slices"
	"strings"

	"events-venues/data/models"
)

// ByDateTimeThenName orders events by date, then time of day (an event with
// no time comes first on its date), then name, then id.
func ByDateTimeThenName(a, b models.Event) int {
	if c := a.Date.Compare(b.Date); c != 0 {
		return c
	}
	if c := models.CompareTimes(a.Time, b.Time); c != 0 {
		return c
	}
	return byNameThenID(a, b)
}

// ByDateThenName orders events by date and alphabetically within a date.
// Time of day is not considered.
func ByDateThenName(a, b models.Event) int {
	if c := a.Date.Compare(b.Date); c != 0 {
		return c
	}
	return byNameThenID(a, b)
}

// ByDateDescThenName orders events newest date first and alphabetically
// within a date. Time of day is not considered.
func ByDateDescThenName(a, b models.Event) int {
	if c := b.Date.Compare(a.Date); c != 0 {
		return c
	}
	return byNameThenID(a, b)
}

func byNameThenID(a, b models.Event) int {
	if c := strings.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// VenuesByName orders venues alphabetically, then by id.
func VenuesByName(a, b models.Venue) int {
	if c := strings.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// SortByDateTime returns a chronologically ordered copy of events.
func SortByDateTime(events []models.Event) []models.Event {
	return sortedCopy(events, ByDateTimeThenName)
}

// SortByDate returns a copy of events ordered by ByDateThenName.
func SortByDate(events []models.Event) []models.Event {
	return sortedCopy(events, ByDateThenName)
}

// SortByDateDesc returns a copy of events ordered by ByDateDescThenName.
func SortByDateDesc(events []models.Event) []models.Event {
	return sortedCopy(events, ByDateDescThenName)
}

// SortVenuesByName returns an alphabetically ordered copy of venues.
func SortVenuesByName(venues []models.Venue) []models.Venue {
	return sortedCopy(venues, VenuesByName)
}

func sortedCopy[T any](in []T, compare func(a, b T) int) []T {
	out := make([]T, len(in))
	copy(out, in)
	slices.SortStableFunc(out, compare)
	return out
}
