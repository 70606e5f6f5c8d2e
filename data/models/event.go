package models

import "time"

// Event is a dated happening held at exactly one venue. Time is nil when the
// event has no specific start time.
type Event struct {
	ID          int64      `json:"id" db:"id" readOnly:"true"`
	Date        Date       `json:"date" db:"date"`
	Time        *TimeOfDay `json:"time,omitempty" db:"time"`
	Name        string     `validate:"required,notblank,max=255" json:"name" db:"name"`
	Description string     `validate:"max=499" json:"description,omitempty" db:"description"`
	VenueID     int64      `validate:"required" json:"venue_id" db:"venue_id"`
}

func (Event) TableName() string {
	return "events"
}

func (e Event) GetID() int64 {
	return e.ID
}

func (e Event) EmptySlice() interface{} {
	return &[]Event{}
}

// StartsAt returns the event start in loc. Events without a time start at
// midnight.
func (e Event) StartsAt(loc *time.Location) time.Time {
	t := e.Date.In(loc)
	if e.Time != nil {
		t = t.Add(time.Duration(e.Time.seconds()) * time.Second)
	}
	return t
}
