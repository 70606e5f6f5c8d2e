package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"events-venues/clock"
	"events-venues/config"
	"events-venues/data/models"
	"events-venues/data/repository"
	"events-venues/data/service"
)

var testNow = time.Date(2030, time.March, 15, 12, 0, 0, 0, time.UTC)

type testServer struct {
	app     *application
	store   *repository.MemRepo
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := repository.NewMemRepo()
	app := &application{
		cfg:     &config.Config{Store: config.StoreMemory},
		log:     zap.NewNop(),
		clock:   clock.NewFixed(testNow),
		store:   store,
		metrics: newHTTPMetrics(),
	}
	app.catalog = service.NewCatalog(store, app.clock, nil, app.log)

	reg := prometheus.NewRegistry()
	require.NoError(t, app.metrics.Register(reg))
	return &testServer{app: app, store: store, handler: app.routes(reg)}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) venue(t *testing.T, name string) int64 {
	t.Helper()
	id, err := s.store.CreateVenue(context.Background(), models.Venue{Name: name, Address: "Road", Postcode: "M1 1AA", Capacity: 10})
	require.NoError(t, err)
	return id
}

func (s *testServer) event(t *testing.T, name string, date models.Date, at string, venue int64) int64 {
	t.Helper()
	e := models.Event{Name: name, Date: date, VenueID: venue}
	if at != "" {
		tod, err := models.ParseTimeOfDay(at)
		require.NoError(t, err)
		e.Time = &tod
	}
	id, err := s.store.CreateEvent(context.Background(), e)
	require.NoError(t, err)
	return id
}

// decodeData unwraps the success envelope into out.
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	var env struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	require.Equal(t, "success", env.Status)
	require.NoError(t, json.Unmarshal(env.Data, out))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorJSON {
	t.Helper()
	var res errorJSON
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	return res
}

type eventsData struct {
	Events []models.Event `json:"events"`
}

func eventNames(events []models.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Name
	}
	return out
}

func date(s string) models.Date {
	d, err := models.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestEventListings(t *testing.T) {
	s := newTestServer(t)
	a := s.venue(t, "Venue A")
	s.event(t, "Later Today", date("2030-03-15"), "18:00", a)
	s.event(t, "Earlier Today", date("2030-03-15"), "09:00", a)
	s.event(t, "No Time Today", date("2030-03-15"), "", a)
	s.event(t, "Tomorrow", date("2030-03-16"), "", a)
	s.event(t, "Last Week", date("2030-03-08"), "20:00", a)

	tests := []struct {
		path string
		want []string
	}{
		{"/api/events", []string{"Last Week", "No Time Today", "Earlier Today", "Later Today", "Tomorrow"}},
		{"/api/events?order=desc", []string{"Tomorrow", "Earlier Today", "Later Today", "No Time Today", "Last Week"}},
		{"/api/events/upcoming", []string{"Later Today", "Tomorrow"}},
		{"/api/events/past", []string{"Last Week", "Earlier Today", "No Time Today"}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := s.do(t, http.MethodGet, tt.path, "")
			require.Equal(t, http.StatusOK, rec.Code)
			var data eventsData
			decodeData(t, rec, &data)
			assert.Equal(t, tt.want, eventNames(data.Events))
		})
	}
}

func TestSearchEvents(t *testing.T) {
	s := newTestServer(t)
	a := s.venue(t, "Venue A")
	s.event(t, "Jazz Night", date("2030-04-01"), "20:00", a)
	s.event(t, "Old Jazz", date("2029-04-01"), "20:00", a)
	s.event(t, "Rock Night", date("2030-04-02"), "20:00", a)

	rec := s.do(t, http.MethodGet, "/api/events/search?q=JAZZ", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var res struct {
		Upcoming  []models.Event `json:"upcoming"`
		Preceding []models.Event `json:"preceding"`
	}
	decodeData(t, rec, &res)
	assert.Equal(t, []string{"Jazz Night"}, eventNames(res.Upcoming))
	assert.Equal(t, []string{"Old Jazz"}, eventNames(res.Preceding))

	rec = s.do(t, http.MethodGet, "/api/events/search?q=opera", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"success","data":{"upcoming":[],"preceding":[]}}`, rec.Body.String())
}

func TestEventCRUD(t *testing.T) {
	s := newTestServer(t)
	a := s.venue(t, "Venue A")

	rec := s.do(t, http.MethodPost, "/api/events",
		`{"name":"Opening","date":"2030-05-01","time":"19:00","venue_id":1}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		Event models.Event `json:"event"`
	}
	decodeData(t, rec, &created)
	assert.Equal(t, int64(1), created.Event.ID)
	assert.Equal(t, a, created.Event.VenueID)

	rec = s.do(t, http.MethodGet, "/api/events/1/venue", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var venue struct {
		Venue models.Venue `json:"venue"`
	}
	decodeData(t, rec, &venue)
	assert.Equal(t, "Venue A", venue.Venue.Name)

	rec = s.do(t, http.MethodPut, "/api/events/1",
		`{"name":"Opening Night","date":"2030-05-01","description":"Doors at 6","venue_id":1}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/events/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		Event models.Event `json:"event"`
	}
	decodeData(t, rec, &got)
	assert.Equal(t, "Opening Night", got.Event.Name)
	assert.Equal(t, "Doors at 6", got.Event.Description)
	assert.Nil(t, got.Event.Time)

	rec = s.do(t, http.MethodDelete, "/api/events/1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/events/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "could not find event 1", decodeError(t, rec).Message)
}

func TestCreateEventValidation(t *testing.T) {
	s := newTestServer(t)
	s.venue(t, "Venue A")

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantFields []string
	}{
		{
			name:       "date not in the future",
			body:       `{"name":"Gig","date":"2030-03-15","venue_id":1}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantFields: []string{"date"},
		},
		{
			name:       "unknown venue and long name",
			body:       `{"name":"` + strings.Repeat("x", 256) + `","date":"2030-05-01","venue_id":9}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantFields: []string{"name", "venue_id"},
		},
		{
			name:       "bad date format",
			body:       `{"name":"Gig","date":"01/05/2030","venue_id":1}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown field",
			body:       `{"name":"Gig","date":"2030-05-01","venue_id":1,"price":3}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/api/events", tt.body)
			require.Equal(t, tt.wantStatus, rec.Code)
			res := decodeError(t, rec)
			assert.Equal(t, "fail", res.Status)
			fields := make([]string, len(res.Errors))
			for i, e := range res.Errors {
				fields[i] = e.Field
			}
			assert.ElementsMatch(t, tt.wantFields, fields)
		})
	}
}

func TestVenueEndpoints(t *testing.T) {
	s := newTestServer(t)
	a := s.venue(t, "Venue A")
	b := s.venue(t, "Venue B")
	s.venue(t, "Venue C")
	for i := 0; i < 4; i++ {
		s.event(t, "A event", date("2030-04-01").AddDays(i), "", a)
	}
	s.event(t, "A past", date("2030-01-01"), "", a)
	s.event(t, "B event", date("2030-04-01"), "", b)

	t.Run("next three", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/venues/1/next3events", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var data eventsData
		decodeData(t, rec, &data)
		require.Len(t, data.Events, 3)
		assert.Equal(t, date("2030-04-01"), data.Events[0].Date)
	})

	t.Run("all events for venue", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/venues/1/events", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var data eventsData
		decodeData(t, rec, &data)
		assert.Len(t, data.Events, 5)
		assert.Equal(t, "A past", data.Events[0].Name)
	})

	t.Run("upcoming events for venue", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/venues/1/events?upcoming=true", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var data eventsData
		decodeData(t, rec, &data)
		assert.Len(t, data.Events, 4)
	})

	t.Run("unknown venue", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/venues/42/next3events", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("popular venues", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/popular_venues", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var data struct {
			Venues []struct {
				Name   string `json:"name"`
				Events int    `json:"events"`
			} `json:"venues"`
		}
		decodeData(t, rec, &data)
		require.Len(t, data.Venues, 3)
		assert.Equal(t, "Venue A", data.Venues[0].Name)
		assert.Equal(t, 5, data.Venues[0].Events)
		assert.Equal(t, "Venue C", data.Venues[2].Name)
		assert.Equal(t, 0, data.Venues[2].Events)
	})

	t.Run("search venues", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/venues/search?q=b", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var data struct {
			Venues []models.Venue `json:"venues"`
		}
		decodeData(t, rec, &data)
		require.Len(t, data.Venues, 1)
		assert.Equal(t, "Venue B", data.Venues[0].Name)
	})

	t.Run("homepage", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var home service.Homepage
		decodeData(t, rec, &home)
		assert.Len(t, home.UpcomingEvents, 3)
		assert.Len(t, home.PopularVenues, 3)
	})
}

func TestDeleteVenue(t *testing.T) {
	s := newTestServer(t)
	a := s.venue(t, "Venue A")
	s.venue(t, "Venue C")
	s.event(t, "Gig", date("2030-04-01"), "", a)

	rec := s.do(t, http.MethodDelete, "/api/venues/1", "")
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "could not delete venue 1 due to linked events", decodeError(t, rec).Message)

	rec = s.do(t, http.MethodDelete, "/api/venues/2", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/venues/2", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVenueCreateAndUpdate(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/venues",
		`{"name":"Kilburn","address":"Oxford Road","postcode":"M13 9PL","capacity":80}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/venues", `{"name":"","address":"x","postcode":"y","capacity":0}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Len(t, decodeError(t, rec).Errors, 2)

	rec = s.do(t, http.MethodPut, "/api/venues/1",
		`{"name":"Kilburn Building","address":"Oxford Road","postcode":"M13 9PL","capacity":90}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		Venue models.Venue `json:"venue"`
	}
	decodeData(t, rec, &got)
	assert.Equal(t, "Kilburn Building", got.Venue.Name)
	assert.Equal(t, 90, got.Venue.Capacity)

	rec = s.do(t, http.MethodPut, "/api/venues/7",
		`{"name":"Ghost","address":"Nowhere","postcode":"X","capacity":1}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRoutingErrors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		method     string
		path       string
		wantStatus int
	}{
		{http.MethodGet, "/api/nothing", http.StatusNotFound},
		{http.MethodGet, "/api/events/abc", http.StatusNotFound},
		{http.MethodGet, "/api/events/0", http.StatusBadRequest},
		{http.MethodPatch, "/api/events", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := s.do(t, tt.method, tt.path, "")
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "fail", decodeError(t, rec).Status)
		})
	}
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	s.do(t, http.MethodGet, "/api/venues", "")
	rec = s.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="GET",route="/api/venues",status="200"} 1`)
}

func TestRecoverPanic(t *testing.T) {
	s := newTestServer(t)
	h := s.app.recoverPanic(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	res := decodeError(t, rec)
	assert.Equal(t, "error", res.Status)
	assert.Equal(t, errInternal.Error(), res.Message)
}

func TestPanicIsLoggedAndCounted(t *testing.T) {
	s := newTestServer(t)
	core, logs := observer.New(zapcore.InfoLevel)
	s.app.log = zap.New(core)

	router, ok := s.handler.(*mux.Router)
	require.True(t, ok)
	router.HandleFunc("/boom", func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}).Methods(http.MethodGet)

	rec := s.do(t, http.MethodGet, "/boom", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	access := logs.FilterMessage("request").All()
	require.Len(t, access, 1)
	assert.Equal(t, int64(http.StatusInternalServerError), access[0].ContextMap()["status"])

	rec = s.do(t, http.MethodGet, "/metrics", "")
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="GET",route="/boom",status="500"} 1`)
}

func TestSeed(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	require.NoError(t, s.app.seed(ctx))
	venues, _ := s.store.ListVenues(ctx)
	events, _ := s.store.ListEvents(ctx)
	assert.Len(t, venues, len(seedVenues))
	assert.Len(t, events, len(seedEvents))

	upcoming, err := s.app.catalog.UpcomingEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Event Beta", "Event Alpha", "Event Apple"}, eventNames(upcoming))

	// A second run leaves the populated store alone.
	require.NoError(t, s.app.seed(ctx))
	venues, _ = s.store.ListVenues(ctx)
	assert.Len(t, venues, len(seedVenues))
}
