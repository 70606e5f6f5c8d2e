package models

// Venue is a place that hosts events. Latitude and Longitude are filled in
// by the geocoding job after the venue is saved and stay 0 until then.
// A venue's events are never stored on it; they are looked up by venue_id.
type Venue struct {
	ID        int64   `json:"id" db:"id" readOnly:"true"`
	Name      string  `validate:"required,notblank,max=255" json:"name" db:"name"`
	Address   string  `validate:"required,notblank,max=299" json:"address" db:"address"`
	Postcode  string  `validate:"required,notblank,max=32" json:"postcode" db:"postcode"`
	Capacity  int     `validate:"min=1,max=2147483647" json:"capacity" db:"capacity"`
	Latitude  float64 `json:"latitude" db:"latitude" readOnly:"true"`
	Longitude float64 `json:"longitude" db:"longitude" readOnly:"true"`
}

func (Venue) TableName() string {
	return "venues"
}

func (v Venue) GetID() int64 {
	return v.ID
}

func (v Venue) EmptySlice() interface{} {
	return &[]Venue{}
}

// Located reports whether the venue has been geocoded.
func (v Venue) Located() bool {
	return v.Latitude != 0 || v.Longitude != 0
}
