package repository

import (
	"context"
	"sort"
	"sync"

	"events-venues/data/models"
)

// MemRepo is an in-memory Store. Used for development and tests.
type MemRepo struct {
	mu      sync.RWMutex
	events  map[int64]models.Event
	venues  map[int64]models.Venue
	eventID int64
	venueID int64
}

var _ Store = (*MemRepo)(nil)

// NewMemRepo creates an empty in-memory store.
func NewMemRepo() *MemRepo {
	return &MemRepo{
		events: make(map[int64]models.Event),
		venues: make(map[int64]models.Venue),
	}
}

func (r *MemRepo) ListEvents(_ context.Context) ([]models.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Event, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, copyEvent(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemRepo) ListVenues(_ context.Context) ([]models.Venue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Venue, 0, len(r.venues))
	for _, v := range r.venues {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemRepo) GetEvent(_ context.Context, id int64) (models.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.events[id]
	if !ok {
		return models.Event{}, &models.NotFoundError{Kind: models.KindEvent, ID: id}
	}
	return copyEvent(e), nil
}

func (r *MemRepo) GetVenue(_ context.Context, id int64) (models.Venue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.venues[id]
	if !ok {
		return models.Venue{}, &models.NotFoundError{Kind: models.KindVenue, ID: id}
	}
	return v, nil
}

func (r *MemRepo) ExistsEvent(_ context.Context, id int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.events[id]
	return ok, nil
}

func (r *MemRepo) ExistsVenue(_ context.Context, id int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.venues[id]
	return ok, nil
}

// CreateEvent stores e under a new id. Any id already set on e is ignored.
func (r *MemRepo) CreateEvent(_ context.Context, e models.Event) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.venues[e.VenueID]; !ok {
		return 0, models.UnknownVenue(e.VenueID)
	}
	r.eventID++
	e.ID = r.eventID
	r.events[e.ID] = copyEvent(e)
	return e.ID, nil
}

// CreateVenue stores v under a new id with default coordinates.
func (r *MemRepo) CreateVenue(_ context.Context, v models.Venue) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.venueID++
	v.ID = r.venueID
	v.Latitude, v.Longitude = 0, 0
	r.venues[v.ID] = v
	return v.ID, nil
}

func (r *MemRepo) UpdateEvent(_ context.Context, e models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.events[e.ID]; !ok {
		return &models.NotFoundError{Kind: models.KindEvent, ID: e.ID}
	}
	if _, ok := r.venues[e.VenueID]; !ok {
		return models.UnknownVenue(e.VenueID)
	}
	r.events[e.ID] = copyEvent(e)
	return nil
}

// UpdateVenue overwrites v's fields but keeps the stored coordinates.
func (r *MemRepo) UpdateVenue(_ context.Context, v models.Venue) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, ok := r.venues[v.ID]
	if !ok {
		return &models.NotFoundError{Kind: models.KindVenue, ID: v.ID}
	}
	v.Latitude, v.Longitude = old.Latitude, old.Longitude
	r.venues[v.ID] = v
	return nil
}

func (r *MemRepo) DeleteEvent(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.events[id]; !ok {
		return &models.NotFoundError{Kind: models.KindEvent, ID: id}
	}
	delete(r.events, id)
	return nil
}

// DeleteVenue refuses to delete a venue that events still reference.
func (r *MemRepo) DeleteVenue(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.venues[id]; !ok {
		return &models.NotFoundError{Kind: models.KindVenue, ID: id}
	}
	for _, e := range r.events {
		if e.VenueID == id {
			return &models.ConflictError{VenueID: id}
		}
	}
	delete(r.venues, id)
	return nil
}

func (r *MemRepo) CountEventsForVenue(_ context.Context, venueID int64) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, e := range r.events {
		if e.VenueID == venueID {
			n++
		}
	}
	return n, nil
}

func (r *MemRepo) CountVenues(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.venues), nil
}

// UpdateVenueLocation ignores coordinates resolved for a postcode the venue
// no longer has.
func (r *MemRepo) UpdateVenueLocation(_ context.Context, id int64, postcode string, lat, lng float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.venues[id]
	if !ok || v.Postcode != postcode {
		return &models.NotFoundError{Kind: models.KindVenue, ID: id}
	}
	v.Latitude, v.Longitude = lat, lng
	r.venues[id] = v
	return nil
}

// copyEvent detaches the optional time so callers cannot mutate stored state.
func copyEvent(e models.Event) models.Event {
	if e.Time != nil {
		t := *e.Time
		e.Time = &t
	}
	return e
}
