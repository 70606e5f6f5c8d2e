package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"events-venues/data/models"
)

type seedVenue struct {
	name, address, postcode string
	capacity                int
}

type seedEvent struct {
	name        string
	dayOffset   int
	time        string
	description string
	venue       int // index into seedVenues
}

var seedVenues = []seedVenue{
	{"Venue A", "23 Manchester Road", "E14 3BD", 50},
	{"Venue B", "Highland Road", "S43 2EZ", 1000},
	{"Venue C", "19 Acacia Avenue", "WA15 8QY", 10},
}

// Event dates are relative to the day the data is loaded, so there are
// always upcoming and past events to browse.
var seedEvents = []seedEvent{
	{"Event Alpha", 30, "12:30", "Event Alpha is the first of its kind.", 1},
	{"Event Beta", 30, "10:00", "", 0},
	{"Event Apple", 31, "", "Event Apple will be host to some of the world's best iOS developers.", 0},
	{"Event Former", -30, "11:00", "", 1},
	{"Event Previous", -30, "18:30", "", 0},
	{"Event Past", -31, "17:00", "", 0},
}

// seed loads demo venues and events into an empty store. Venues go through
// the catalogue so they are geocoded; events are written directly because
// some of them are in the past.
func (app *application) seed(ctx context.Context) error {
	n, err := app.store.CountVenues(ctx)
	if err != nil {
		return fmt.Errorf("error counting venues: %w", err)
	}
	if n > 0 {
		app.log.Info("store already has venues, skipping seed data", zap.Int("venues", n))
		return nil
	}

	ids := make([]int64, len(seedVenues))
	for i, sv := range seedVenues {
		v, err := app.catalog.CreateVenue(ctx, models.Venue{
			Name:     sv.name,
			Address:  sv.address,
			Postcode: sv.postcode,
			Capacity: sv.capacity,
		})
		if err != nil {
			return fmt.Errorf("error seeding venue %q: %w", sv.name, err)
		}
		ids[i] = v.ID
	}

	today := models.DateOf(app.clock.Now())
	for _, se := range seedEvents {
		e := models.Event{
			Name:        se.name,
			Date:        today.AddDays(se.dayOffset),
			Description: se.description,
			VenueID:     ids[se.venue],
		}
		if se.time != "" {
			t, err := models.ParseTimeOfDay(se.time)
			if err != nil {
				return fmt.Errorf("error parsing seed time %q: %w", se.time, err)
			}
			e.Time = &t
		}
		if _, err := app.store.CreateEvent(ctx, e); err != nil {
			return fmt.Errorf("error seeding event %q: %w", se.name, err)
		}
	}

	app.log.Info("seed data loaded", zap.Int("venues", len(seedVenues)), zap.Int("events", len(seedEvents)))
	return nil
}
