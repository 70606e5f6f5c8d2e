package main

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (app *application) routes(gatherer prometheus.Gatherer) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = app.instrument(http.HandlerFunc(app.notFound))
	r.MethodNotAllowedHandler = app.instrument(http.HandlerFunc(app.methodNotAllowed))
	r.Use(app.instrument, app.recoverPanic)

	r.HandleFunc("/healthz", app.health).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	r.HandleFunc("/api", app.home).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/events", app.listEvents).Methods(http.MethodGet)
	api.HandleFunc("/events", app.createEvent).Methods(http.MethodPost)
	api.HandleFunc("/events/upcoming", app.upcomingEvents).Methods(http.MethodGet)
	api.HandleFunc("/events/past", app.pastEvents).Methods(http.MethodGet)
	api.HandleFunc("/events/search", app.searchEvents).Methods(http.MethodGet)
	api.HandleFunc("/events/{id:[0-9]+}", app.getEvent).Methods(http.MethodGet)
	api.HandleFunc("/events/{id:[0-9]+}", app.updateEvent).Methods(http.MethodPut)
	api.HandleFunc("/events/{id:[0-9]+}", app.deleteEvent).Methods(http.MethodDelete)
	api.HandleFunc("/events/{id:[0-9]+}/venue", app.getEventVenue).Methods(http.MethodGet)

	api.HandleFunc("/venues", app.listVenues).Methods(http.MethodGet)
	api.HandleFunc("/venues", app.createVenue).Methods(http.MethodPost)
	api.HandleFunc("/venues/search", app.searchVenues).Methods(http.MethodGet)
	api.HandleFunc("/venues/{id:[0-9]+}", app.getVenue).Methods(http.MethodGet)
	api.HandleFunc("/venues/{id:[0-9]+}", app.updateVenue).Methods(http.MethodPut)
	api.HandleFunc("/venues/{id:[0-9]+}", app.deleteVenue).Methods(http.MethodDelete)
	api.HandleFunc("/venues/{id:[0-9]+}/events", app.venueEvents).Methods(http.MethodGet)
	api.HandleFunc("/venues/{id:[0-9]+}/next3events", app.venueNextEvents).Methods(http.MethodGet)

	api.HandleFunc("/popular_venues", app.popularVenues).Methods(http.MethodGet)

	return r
}
