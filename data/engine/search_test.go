package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"events-venues/data/models"
)

func TestMatches(t *testing.T) {
	assert.True(t, Matches("Event Apple", "apple"))
	assert.True(t, Matches("Event Apple", "NT AP"))
	assert.True(t, Matches("Event Apple", ""))
	assert.False(t, Matches("Event Apple", "pear"))
}

func TestSearchEvents(t *testing.T) {
	before := time.Date(2022, time.July, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		keyword       string
		now           time.Time
		wantUpcoming  []string
		wantPreceding []string
	}{
		{
			name:          "apple before everything",
			keyword:       "apple",
			now:           before,
			wantUpcoming:  []string{"Event Apple"},
			wantPreceding: []string{},
		},
		{
			name:          "split around now",
			keyword:       "EVENT",
			now:           refNow,
			wantUpcoming:  []string{"Event Alpha", "Event Apple"},
			wantPreceding: []string{"Event Past", "Event Former", "Event Previous", "Event Beta"},
		},
		{
			name:          "no match",
			keyword:       "zebra",
			now:           refNow,
			wantUpcoming:  []string{},
			wantPreceding: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := SearchEvents(sampleEvents(), tt.keyword, tt.now)
			assert.Equal(t, tt.wantUpcoming, names(res.Upcoming))
			assert.Equal(t, tt.wantPreceding, names(res.Preceding))
			assert.NotNil(t, res.Upcoming)
			assert.NotNil(t, res.Preceding)
		})
	}
}

func TestSearchVenues(t *testing.T) {
	venues := []models.Venue{
		{ID: 1, Name: "Venue B"},
		{ID: 2, Name: "Bridgewater Hall"},
		{ID: 3, Name: "Venue A"},
	}

	assert.Equal(t, []string{"Venue A", "Venue B"}, venueNames(SearchVenues(venues, "venue")))
	assert.Equal(t, []string{"Bridgewater Hall", "Venue B"}, venueNames(SearchVenues(venues, "b")))
	assert.Empty(t, SearchVenues(venues, "stadium"))
	assert.NotNil(t, SearchVenues(nil, "x"))
}
