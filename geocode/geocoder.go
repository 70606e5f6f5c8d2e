// Package geocode resolves venue postcodes to coordinates in the background.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Point is a WGS84 coordinate.
type Point struct {
	Latitude  float64
	Longitude float64
}

// Geocoder looks up the coordinates of a postcode. found is false when the
// provider has no match, which is not an error.
type Geocoder interface {
	Lookup(ctx context.Context, postcode string) (p Point, found bool, err error)
}

// ErrRejected marks a provider response that retrying will not fix, such as
// a bad token or a malformed query.
var ErrRejected = errors.New("geocoding request rejected")

// Mapbox is a Geocoder backed by the Mapbox forward geocoding API.
type Mapbox struct {
	baseURL string
	token   string
	client  *http.Client
}

var _ Geocoder = (*Mapbox)(nil)

// NewMapbox creates a Mapbox client. A nil client gets a default one with the
// given timeout.
func NewMapbox(baseURL, token string, client *http.Client, timeout time.Duration) *Mapbox {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &Mapbox{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  client,
	}
}

type mapboxResponse struct {
	Features []struct {
		// Center is [longitude, latitude].
		Center []float64 `json:"center"`
	} `json:"features"`
}

// Lookup returns the centre of the first feature Mapbox finds for postcode.
func (m *Mapbox) Lookup(ctx context.Context, postcode string) (Point, bool, error) {
	endpoint := fmt.Sprintf("%s/geocoding/v5/mapbox.places/%s.json?%s",
		m.baseURL,
		url.PathEscape(postcode),
		url.Values{"access_token": {m.token}, "limit": {"1"}}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Point{}, false, fmt.Errorf("error building geocoding request: %w", err)
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return Point{}, false, fmt.Errorf("error calling geocoding api: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return Point{}, false, fmt.Errorf("geocoding api returned %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return Point{}, false, fmt.Errorf("%w: status %d", ErrRejected, resp.StatusCode)
	}

	var body mapboxResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Point{}, false, fmt.Errorf("error decoding geocoding response: %w", err)
	}
	if len(body.Features) == 0 || len(body.Features[0].Center) < 2 {
		return Point{}, false, nil
	}
	c := body.Features[0].Center
	return Point{Latitude: c[1], Longitude: c[0]}, true, nil
}

// Noop never finds anything. It stands in when no provider is configured.
type Noop struct{}

func (Noop) Lookup(context.Context, string) (Point, bool, error) {
	return Point{}, false, nil
}
