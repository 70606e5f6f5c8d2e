package main

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"events-venues/data/models"
)

func idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id < 1 {
		return 0, errInvalidID
	}
	return id, nil
}

func (app *application) health(w http.ResponseWriter, r *http.Request) {
	if app.db != nil {
		if err := app.db.PingContext(r.Context()); err != nil {
			app.serviceError(w, r, err)
			return
		}
	}
	app.SendSuccessJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (app *application) home(w http.ResponseWriter, r *http.Request) {
	home, err := app.catalog.Homepage(r.Context())
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, home)
}

// listEvents lists every event chronologically, or newest first with ?order=desc.
func (app *application) listEvents(w http.ResponseWriter, r *http.Request) {
	var (
		events []models.Event
		err    error
	)
	if r.URL.Query().Get("order") == "desc" {
		events, err = app.catalog.ListEventsByDateTimeDesc(r.Context())
	} else {
		events, err = app.catalog.ListEventsByDateTime(r.Context())
	}
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, events, "events")
}

func (app *application) upcomingEvents(w http.ResponseWriter, r *http.Request) {
	events, err := app.catalog.UpcomingEvents(r.Context())
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, events, "events")
}

func (app *application) pastEvents(w http.ResponseWriter, r *http.Request) {
	events, err := app.catalog.PrecedingEvents(r.Context())
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, events, "events")
}

func (app *application) searchEvents(w http.ResponseWriter, r *http.Request) {
	res, err := app.catalog.SearchEvents(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, res)
}

func (app *application) getEvent(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		app.badRequest(w, err)
		return
	}
	e, err := app.catalog.GetEvent(r.Context(), id)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, e, "event")
}

func (app *application) getEventVenue(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		app.badRequest(w, err)
		return
	}
	e, err := app.catalog.GetEvent(r.Context(), id)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	v, err := app.catalog.GetVenue(r.Context(), e.VenueID)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, v, "venue")
}

func (app *application) createEvent(w http.ResponseWriter, r *http.Request) {
	var e models.Event
	if err := app.ReadJSON(w, r, &e); err != nil {
		app.badRequest(w, err)
		return
	}
	created, err := app.catalog.CreateEvent(r.Context(), e)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusCreated, created, "event")
}

func (app *application) updateEvent(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		app.badRequest(w, err)
		return
	}
	var e models.Event
	if err := app.ReadJSON(w, r, &e); err != nil {
		app.badRequest(w, err)
		return
	}
	e.ID = id
	updated, err := app.catalog.UpdateEvent(r.Context(), e)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, updated, "event")
}

func (app *application) deleteEvent(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		app.badRequest(w, err)
		return
	}
	if err := app.catalog.DeleteEvent(r.Context(), id); err != nil {
		app.serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) listVenues(w http.ResponseWriter, r *http.Request) {
	venues, err := app.catalog.ListVenues(r.Context())
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, venues, "venues")
}

func (app *application) searchVenues(w http.ResponseWriter, r *http.Request) {
	venues, err := app.catalog.SearchVenues(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, venues, "venues")
}

func (app *application) popularVenues(w http.ResponseWriter, r *http.Request) {
	ranked, err := app.catalog.RankVenuesByPopularity(r.Context())
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, ranked, "venues")
}

func (app *application) getVenue(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		app.badRequest(w, err)
		return
	}
	v, err := app.catalog.GetVenue(r.Context(), id)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, v, "venue")
}

// venueEvents lists every event held at the venue, or only upcoming ones
// with ?upcoming=true.
func (app *application) venueEvents(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		app.badRequest(w, err)
		return
	}
	if _, err := app.catalog.GetVenue(r.Context(), id); err != nil {
		app.serviceError(w, r, err)
		return
	}

	var events []models.Event
	if upcoming, _ := strconv.ParseBool(r.URL.Query().Get("upcoming")); upcoming {
		events, err = app.catalog.UpcomingEventsForVenue(r.Context(), id)
	} else {
		events, err = app.catalog.AllEventsForVenue(r.Context(), id)
	}
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, events, "events")
}

func (app *application) venueNextEvents(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		app.badRequest(w, err)
		return
	}
	if _, err := app.catalog.GetVenue(r.Context(), id); err != nil {
		app.serviceError(w, r, err)
		return
	}
	events, err := app.catalog.NextEventsForVenue(r.Context(), id)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, events, "events")
}

func (app *application) createVenue(w http.ResponseWriter, r *http.Request) {
	var v models.Venue
	if err := app.ReadJSON(w, r, &v); err != nil {
		app.badRequest(w, err)
		return
	}
	created, err := app.catalog.CreateVenue(r.Context(), v)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusCreated, created, "venue")
}

func (app *application) updateVenue(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		app.badRequest(w, err)
		return
	}
	var v models.Venue
	if err := app.ReadJSON(w, r, &v); err != nil {
		app.badRequest(w, err)
		return
	}
	v.ID = id
	updated, err := app.catalog.UpdateVenue(r.Context(), v)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, updated, "venue")
}

func (app *application) deleteVenue(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		app.badRequest(w, err)
		return
	}
	if err := app.catalog.DeleteVenue(r.Context(), id); err != nil {
		app.serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
