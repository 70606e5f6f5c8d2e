package repository

import (
	"context"

	"events-venues/data/models"
)

// Store is the source of truth for events and venues. Implementations assign
// ids on create and are responsible for their own concurrency control.
//
// Get*, Update* and Delete* return a *models.NotFoundError when the record
// does not exist. DeleteVenue returns a *models.ConflictError when events
// still reference the venue.
type Store interface {
	ListEvents(ctx context.Context) ([]models.Event, error)
	ListVenues(ctx context.Context) ([]models.Venue, error)
	GetEvent(ctx context.Context, id int64) (models.Event, error)
	GetVenue(ctx context.Context, id int64) (models.Venue, error)
	ExistsEvent(ctx context.Context, id int64) (bool, error)
	ExistsVenue(ctx context.Context, id int64) (bool, error)
	CreateEvent(ctx context.Context, e models.Event) (int64, error)
	CreateVenue(ctx context.Context, v models.Venue) (int64, error)
	UpdateEvent(ctx context.Context, e models.Event) error
	UpdateVenue(ctx context.Context, v models.Venue) error
	DeleteEvent(ctx context.Context, id int64) error
	DeleteVenue(ctx context.Context, id int64) error
	CountEventsForVenue(ctx context.Context, venueID int64) (int, error)
	CountVenues(ctx context.Context) (int, error)

	// UpdateVenueLocation writes geocoded coordinates without touching the
	// venue's other fields. The write only applies while the venue still has
	// postcode; otherwise it returns a *models.NotFoundError.
	UpdateVenueLocation(ctx context.Context, id int64, postcode string, lat, lng float64) error
}
