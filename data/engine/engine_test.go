package engine

import (
	"time"

	"events-venues/data/models"
)

// 2022-07-11 11:00 UTC: between Event Beta (10:00) and Event Alpha (12:30).
var refNow = time.Date(2022, time.July, 11, 11, 0, 0, 0, time.UTC)

func d(s string) models.Date {
	date, err := models.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return date
}

func at(s string) *models.TimeOfDay {
	t, err := models.ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return &t
}

func ev(id int64, name, date string, tm *models.TimeOfDay, venue int64) models.Event {
	return models.Event{ID: id, Name: name, Date: d(date), Time: tm, VenueID: venue}
}

func names(events []models.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Name
	}
	return out
}

func venueNames(venues []models.Venue) []string {
	out := make([]string, len(venues))
	for i, v := range venues {
		out[i] = v.Name
	}
	return out
}

// sampleEvents mirrors the demo data: Venue A is 1, Venue B is 2.
func sampleEvents() []models.Event {
	return []models.Event{
		ev(1, "Event Alpha", "2022-07-11", at("12:30"), 2),
		ev(2, "Event Beta", "2022-07-11", at("10:00"), 1),
		ev(3, "Event Apple", "2022-07-12", nil, 1),
		ev(4, "Event Former", "2022-01-11", at("11:00"), 2),
		ev(5, "Event Previous", "2022-01-11", at("18:30"), 1),
		ev(6, "Event Past", "2022-01-10", at("17:00"), 1),
	}
}
