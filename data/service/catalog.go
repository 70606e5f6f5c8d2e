// Package service exposes the catalogue operations. It takes a snapshot from
// the store, runs it through the engine and guards every mutation.
package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"events-venues/clock"
	"events-venues/data/engine"
	"events-venues/data/models"
	"events-venues/data/repository"
)

// NextEventsLimit is how many upcoming events are shown per venue and on the
// homepage.
const NextEventsLimit = 3

// LocationQueue accepts venues whose coordinates need resolving.
type LocationQueue interface {
	Enqueue(venueID int64, postcode string) bool
}

type noQueue struct{}

func (noQueue) Enqueue(int64, string) bool { return false }

// Catalog answers queries over events and venues and applies edits.
type Catalog struct {
	store repository.Store
	clock clock.Clock
	queue LocationQueue
	log   *zap.Logger
}

// NewCatalog wires a Catalog. A nil queue disables geocoding.
func NewCatalog(store repository.Store, clk clock.Clock, queue LocationQueue, log *zap.Logger) *Catalog {
	if queue == nil {
		queue = noQueue{}
	}
	return &Catalog{
		store: store,
		clock: clk,
		queue: queue,
		log:   log,
	}
}

// Homepage is the landing summary: the next few events overall and every
// venue ranked by popularity.
type Homepage struct {
	UpcomingEvents []models.Event       `json:"upcoming_events"`
	PopularVenues  []engine.RankedVenue `json:"popular_venues"`
}

func (c *Catalog) events(ctx context.Context) ([]models.Event, error) {
	events, err := c.store.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing events: %w", err)
	}
	return events, nil
}

func (c *Catalog) venues(ctx context.Context) ([]models.Venue, error) {
	venues, err := c.store.ListVenues(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing venues: %w", err)
	}
	return venues, nil
}

func (c *Catalog) ListEventsByDateTime(ctx context.Context) ([]models.Event, error) {
	events, err := c.events(ctx)
	if err != nil {
		return nil, err
	}
	return engine.SortByDateTime(events), nil
}

// ListEventsByDateTimeDesc lists newest events first, alphabetically within a date.
func (c *Catalog) ListEventsByDateTimeDesc(ctx context.Context) ([]models.Event, error) {
	events, err := c.events(ctx)
	if err != nil {
		return nil, err
	}
	return engine.SortByDateDesc(events), nil
}

func (c *Catalog) UpcomingEvents(ctx context.Context) ([]models.Event, error) {
	events, err := c.events(ctx)
	if err != nil {
		return nil, err
	}
	return engine.Upcoming(events, c.clock.Now()), nil
}

func (c *Catalog) PrecedingEvents(ctx context.Context) ([]models.Event, error) {
	events, err := c.events(ctx)
	if err != nil {
		return nil, err
	}
	return engine.Preceding(events, c.clock.Now()), nil
}

// NextEventsForVenue returns up to NextEventsLimit upcoming events at the
// venue. An unknown venue yields an empty list.
func (c *Catalog) NextEventsForVenue(ctx context.Context, venueID int64) ([]models.Event, error) {
	events, err := c.events(ctx)
	if err != nil {
		return nil, err
	}
	return engine.NextForVenue(events, venueID, NextEventsLimit, c.clock.Now()), nil
}

func (c *Catalog) UpcomingEventsForVenue(ctx context.Context, venueID int64) ([]models.Event, error) {
	events, err := c.events(ctx)
	if err != nil {
		return nil, err
	}
	return engine.UpcomingForVenue(events, venueID, c.clock.Now()), nil
}

// AllEventsForVenue returns every event held at the venue, past ones included.
func (c *Catalog) AllEventsForVenue(ctx context.Context, venueID int64) ([]models.Event, error) {
	events, err := c.events(ctx)
	if err != nil {
		return nil, err
	}
	return engine.AllForVenue(events, venueID), nil
}

func (c *Catalog) SearchEvents(ctx context.Context, keyword string) (engine.EventSearch, error) {
	events, err := c.events(ctx)
	if err != nil {
		return engine.EventSearch{}, err
	}
	return engine.SearchEvents(events, keyword, c.clock.Now()), nil
}

func (c *Catalog) SearchVenues(ctx context.Context, keyword string) ([]models.Venue, error) {
	venues, err := c.venues(ctx)
	if err != nil {
		return nil, err
	}
	return engine.SearchVenues(venues, keyword), nil
}

// ListVenues lists venues alphabetically.
func (c *Catalog) ListVenues(ctx context.Context) ([]models.Venue, error) {
	venues, err := c.venues(ctx)
	if err != nil {
		return nil, err
	}
	return engine.SortVenuesByName(venues), nil
}

func (c *Catalog) RankVenuesByPopularity(ctx context.Context) ([]engine.RankedVenue, error) {
	venues, err := c.venues(ctx)
	if err != nil {
		return nil, err
	}
	events, err := c.events(ctx)
	if err != nil {
		return nil, err
	}
	return engine.RankVenues(venues, events), nil
}

func (c *Catalog) Homepage(ctx context.Context) (Homepage, error) {
	venues, err := c.venues(ctx)
	if err != nil {
		return Homepage{}, err
	}
	events, err := c.events(ctx)
	if err != nil {
		return Homepage{}, err
	}

	upcoming := engine.Upcoming(events, c.clock.Now())
	if len(upcoming) > NextEventsLimit {
		upcoming = upcoming[:NextEventsLimit]
	}
	return Homepage{
		UpcomingEvents: upcoming,
		PopularVenues:  engine.RankVenues(venues, events),
	}, nil
}

func (c *Catalog) GetEvent(ctx context.Context, id int64) (models.Event, error) {
	return c.store.GetEvent(ctx, id)
}

func (c *Catalog) GetVenue(ctx context.Context, id int64) (models.Venue, error) {
	return c.store.GetVenue(ctx, id)
}

// CreateEvent validates e and stores it under a new id.
func (c *Catalog) CreateEvent(ctx context.Context, e models.Event) (models.Event, error) {
	e.ID = 0
	if err := c.validateEvent(ctx, e); err != nil {
		return models.Event{}, err
	}
	id, err := c.store.CreateEvent(ctx, e)
	if err != nil {
		return models.Event{}, err
	}
	e.ID = id
	c.log.Info("event created", zap.Int64("event_id", id), zap.Int64("venue_id", e.VenueID))
	return e, nil
}

// UpdateEvent overwrites every field of an existing event.
func (c *Catalog) UpdateEvent(ctx context.Context, e models.Event) (models.Event, error) {
	if err := c.requireEvent(ctx, e.ID); err != nil {
		return models.Event{}, err
	}
	if err := c.validateEvent(ctx, e); err != nil {
		return models.Event{}, err
	}
	if err := c.store.UpdateEvent(ctx, e); err != nil {
		return models.Event{}, err
	}
	c.log.Info("event updated", zap.Int64("event_id", e.ID))
	return e, nil
}

// DeleteEvent removes an event. Events can always be deleted.
func (c *Catalog) DeleteEvent(ctx context.Context, id int64) error {
	if err := c.requireEvent(ctx, id); err != nil {
		return err
	}
	if err := c.store.DeleteEvent(ctx, id); err != nil {
		return err
	}
	c.log.Info("event deleted", zap.Int64("event_id", id))
	return nil
}

// CreateVenue validates v, stores it and queues a coordinate lookup. The
// venue is returned before its coordinates are known.
func (c *Catalog) CreateVenue(ctx context.Context, v models.Venue) (models.Venue, error) {
	v.ID = 0
	v.Latitude, v.Longitude = 0, 0
	if err := models.ValidateVenue(v); err != nil {
		return models.Venue{}, err
	}
	id, err := c.store.CreateVenue(ctx, v)
	if err != nil {
		return models.Venue{}, err
	}
	v.ID = id
	c.log.Info("venue created", zap.Int64("venue_id", id))
	c.locate(v)
	return v, nil
}

// UpdateVenue overwrites an existing venue. Coordinates are kept unless the
// postcode changed, in which case they are reset and looked up again.
func (c *Catalog) UpdateVenue(ctx context.Context, v models.Venue) (models.Venue, error) {
	old, err := c.store.GetVenue(ctx, v.ID)
	if err != nil {
		return models.Venue{}, err
	}
	if err := models.ValidateVenue(v); err != nil {
		return models.Venue{}, err
	}
	if err := c.store.UpdateVenue(ctx, v); err != nil {
		return models.Venue{}, err
	}

	v.Latitude, v.Longitude = old.Latitude, old.Longitude
	if v.Postcode != old.Postcode {
		if err := c.store.UpdateVenueLocation(ctx, v.ID, v.Postcode, 0, 0); err != nil {
			return models.Venue{}, err
		}
		v.Latitude, v.Longitude = 0, 0
		c.locate(v)
	}
	c.log.Info("venue updated", zap.Int64("venue_id", v.ID))
	return v, nil
}

// CanDeleteVenue reports whether the venue exists and no event references it.
func (c *Catalog) CanDeleteVenue(ctx context.Context, id int64) (bool, error) {
	err := c.checkVenueDeletable(ctx, id)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, models.ErrNotFound), errors.Is(err, models.ErrConflict):
		return false, nil
	default:
		return false, err
	}
}

// DeleteVenue removes a venue that has no events. It returns a
// *models.NotFoundError for an unknown id and a *models.ConflictError while
// events still reference the venue.
func (c *Catalog) DeleteVenue(ctx context.Context, id int64) error {
	if err := c.checkVenueDeletable(ctx, id); err != nil {
		if errors.Is(err, models.ErrConflict) {
			c.log.Info("venue delete refused", zap.Int64("venue_id", id))
		}
		return err
	}
	if err := c.store.DeleteVenue(ctx, id); err != nil {
		return err
	}
	c.log.Info("venue deleted", zap.Int64("venue_id", id))
	return nil
}

func (c *Catalog) checkVenueDeletable(ctx context.Context, id int64) error {
	ok, err := c.store.ExistsVenue(ctx, id)
	if err != nil {
		return fmt.Errorf("error checking venue %d: %w", id, err)
	}
	if !ok {
		return &models.NotFoundError{Kind: models.KindVenue, ID: id}
	}
	n, err := c.store.CountEventsForVenue(ctx, id)
	if err != nil {
		return fmt.Errorf("error counting events for venue %d: %w", id, err)
	}
	if n > 0 {
		return &models.ConflictError{VenueID: id}
	}
	return nil
}

func (c *Catalog) requireEvent(ctx context.Context, id int64) error {
	ok, err := c.store.ExistsEvent(ctx, id)
	if err != nil {
		return fmt.Errorf("error checking event %d: %w", id, err)
	}
	if !ok {
		return &models.NotFoundError{Kind: models.KindEvent, ID: id}
	}
	return nil
}

// validateEvent checks e's fields against today's date and that its venue
// exists, reporting every failing field together.
func (c *Catalog) validateEvent(ctx context.Context, e models.Event) error {
	var errs models.ValidationErrors
	if err := models.ValidateEvent(e, models.DateOf(c.clock.Now())); err != nil {
		if !errors.As(err, &errs) {
			return err
		}
	}
	if e.VenueID != 0 {
		ok, err := c.store.ExistsVenue(ctx, e.VenueID)
		if err != nil {
			return fmt.Errorf("error checking venue %d: %w", e.VenueID, err)
		}
		if !ok {
			errs = append(errs, models.UnknownVenue(e.VenueID)...)
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (c *Catalog) locate(v models.Venue) {
	if !c.queue.Enqueue(v.ID, v.Postcode) {
		c.log.Debug("venue not queued for geocoding", zap.Int64("venue_id", v.ID))
	}
}
