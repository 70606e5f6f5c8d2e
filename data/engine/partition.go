package engine

import (
	"time"

	"events-venues/data/models"
)

// Instant is a reference point split into the calendar date and wall-clock
// time the partition rules compare against.
type Instant struct {
	Date models.Date
	Time models.TimeOfDay
}

// At converts now into an Instant in now's location.
func At(now time.Time) Instant {
	return Instant{Date: models.DateOf(now), Time: models.TimeOf(now)}
}

// IsUpcoming reports whether e starts strictly after ref. An event without a
// time on the reference date counts as already started.
func IsUpcoming(e models.Event, ref Instant) bool {
	switch c := e.Date.Compare(ref.Date); {
	case c > 0:
		return true
	case c < 0:
		return false
	default:
		return e.Time != nil && e.Time.Compare(ref.Time) > 0
	}
}

// IsPreceding reports whether e starts strictly before ref. An event without
// a time on the reference date counts as preceding.
func IsPreceding(e models.Event, ref Instant) bool {
	switch c := e.Date.Compare(ref.Date); {
	case c < 0:
		return true
	case c > 0:
		return false
	default:
		return e.Time == nil || e.Time.Compare(ref.Time) < 0
	}
}

// Upcoming returns the events that start after now, in chronological order.
func Upcoming(events []models.Event, now time.Time) []models.Event {
	return filter(SortByDateTime(events), upcomingAt(At(now)))
}

// Preceding returns the events that started before now, oldest date first
// and alphabetically within a date.
func Preceding(events []models.Event, now time.Time) []models.Event {
	ref := At(now)
	return filter(SortByDate(events), func(e models.Event) bool {
		return IsPreceding(e, ref)
	})
}

// NextForVenue walks events in chronological order and collects at most k
// upcoming events held at venueID, stopping as soon as k are found.
func NextForVenue(events []models.Event, venueID int64, k int, now time.Time) []models.Event {
	out := make([]models.Event, 0, max(k, 0))
	if k <= 0 {
		return out
	}
	isUpcoming := upcomingAt(At(now))
	for _, e := range SortByDateTime(events) {
		if e.VenueID != venueID || !isUpcoming(e) {
			continue
		}
		out = append(out, e)
		if len(out) == k {
			break
		}
	}
	return out
}

// UpcomingForVenue returns the upcoming events held at venueID in
// chronological order.
func UpcomingForVenue(events []models.Event, venueID int64, now time.Time) []models.Event {
	isUpcoming := upcomingAt(At(now))
	return filter(SortByDateTime(events), func(e models.Event) bool {
		return e.VenueID == venueID && isUpcoming(e)
	})
}

// AllForVenue returns every event held at venueID, past or future, in
// chronological order.
func AllForVenue(events []models.Event, venueID int64) []models.Event {
	return filter(SortByDateTime(events), func(e models.Event) bool {
		return e.VenueID == venueID
	})
}

// CountForVenue returns the number of events held at venueID.
func CountForVenue(events []models.Event, venueID int64) int {
	n := 0
	for _, e := range events {
		if e.VenueID == venueID {
			n++
		}
	}
	return n
}

func upcomingAt(ref Instant) func(models.Event) bool {
	return func(e models.Event) bool {
		return IsUpcoming(e, ref)
	}
}

func filter[T any](in []T, keep func(T) bool) []T {
	out := make([]T, 0, len(in))
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}
