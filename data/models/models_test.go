package models

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetValsFromModel(t *testing.T) {
	venue := Venue{
		ID:        7,
		Name:      "Venue A",
		Address:   "23 Manchester Road",
		Postcode:  "E14 3BD",
		Capacity:  50,
		Latitude:  51.5,
		Longitude: -0.01,
	}

	vals := GetValsFromModel(venue)
	expectedVals := []interface{}{"Venue A", "23 Manchester Road", "E14 3BD", 50}

	assert.Equal(t, expectedVals, vals)
}

func TestGetColumnNames(t *testing.T) {
	tests := []struct {
		name            string
		model           Model
		excludeReadOnly bool
		want            []string
	}{
		{"venue writable", Venue{}, true, []string{"name", "address", "postcode", "capacity"}},
		{"venue all", Venue{}, false, []string{"id", "name", "address", "postcode", "capacity", "latitude", "longitude"}},
		{"event writable", Event{}, true, []string{"date", "time", "name", "description", "venue_id"}},
		{"event pointer", &Event{}, false, []string{"id", "date", "time", "name", "description", "venue_id"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetColumnNames(tt.model, tt.excludeReadOnly))
		})
	}
}

func TestScanRowToModel(t *testing.T) {
	model := &Venue{}

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "name", "address", "postcode", "capacity", "latitude", "longitude"}).
		AddRow(1, "Venue A", "23 Manchester Road", "E14 3BD", 50, 51.5, -0.01)

	mock.ExpectQuery("SELECT (.+) FROM venues WHERE id = \\$1").WillReturnRows(rows)
	row := db.QueryRow("SELECT id, name, address, postcode, capacity, latitude, longitude FROM venues WHERE id = $1", 1)

	err = ScanRowToModel(model, row)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), model.ID)
	assert.Equal(t, "Venue A", model.Name)
	assert.Equal(t, "E14 3BD", model.Postcode)
	assert.Equal(t, 50, model.Capacity)
	assert.Equal(t, 51.5, model.Latitude)
}

func TestScanRowToModel_NotPointer(t *testing.T) {
	err := ScanRowToModel(Venue{}, nil)
	assert.EqualError(t, err, "expected pointer to model, got models.Venue")
}

func TestScanRowsToSliceOfModels(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "date", "time", "name", "description", "venue_id"}).
		AddRow(1, time.Date(2030, 1, 2, 0, 0, 0, 0, time.UTC), "19:30:00", "Gig", "", 3).
		AddRow(2, time.Date(2030, 1, 3, 0, 0, 0, 0, time.UTC), nil, "Talk", "Bring a pen", 3)
	mock.ExpectQuery("SELECT (.+) FROM events").WillReturnRows(rows)

	r, err := db.Query("SELECT id, date, time, name, description, venue_id FROM events")
	require.NoError(t, err)
	defer r.Close()

	out, err := ScanRowsToSliceOfModels(Event{}, r, 2)
	require.NoError(t, err)
	events := *out.(*[]Event)
	require.Len(t, events, 2)

	assert.Equal(t, Date{Year: 2030, Month: time.January, Day: 2}, events[0].Date)
	require.NotNil(t, events[0].Time)
	assert.Equal(t, TimeOfDay{Hour: 19, Minute: 30}, *events[0].Time)
	assert.Nil(t, events[1].Time)
	assert.Equal(t, "Bring a pen", events[1].Description)
	assert.Equal(t, int64(3), events[1].VenueID)
}

func TestDetermineInitialCapacity(t *testing.T) {
	assert.Equal(t, 10, determineInitialCapacity(0))
	assert.Equal(t, 35, determineInitialCapacity(40))
	assert.Equal(t, 1000, determineInitialCapacity(5000))
}
