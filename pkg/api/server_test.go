package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/railline/pkg/config"
	"github.com/travigo/railline/pkg/database"
	"github.com/travigo/railline/pkg/database/databasetest"
	"github.com/travigo/railline/pkg/engine"
	"github.com/travigo/railline/pkg/network"
	"gorm.io/gorm"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	cfg := config.Default()
	cfg.Provisioning.SeedSampleStations = true

	e := engine.New(cfg, databasetest.NewSession(t))
	require.NoError(t, e.Provision(context.Background()))

	return NewApp(e)
}

func doRequest(t *testing.T, app *fiber.App, method string, target string, body string) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := app.Test(req, -1)
	require.NoError(t, err)
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	return res.StatusCode, data
}

func TestVersion(t *testing.T) {
	status, body := doRequest(t, newTestApp(t), http.MethodGet, "/core/version", "")

	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"name":"railline"`)
}

func TestListStations(t *testing.T) {
	app := newTestApp(t)

	status, body := doRequest(t, app, http.MethodGet, "/core/stations", "")
	require.Equal(t, http.StatusOK, status)

	var stations []network.Station
	require.NoError(t, json.Unmarshal(body, &stations))
	require.Len(t, stations, 9)
	assert.Equal(t, "CN001", *stations[0].CN)

	status, body = doRequest(t, app, http.MethodGet, "/core/stations?view=basic", "")
	require.Equal(t, http.StatusOK, status)
	assert.NotContains(t, string(body), `"cn"`)
}

func TestStationLifecycle(t *testing.T) {
	app := newTestApp(t)

	status, body := doRequest(t, app, http.MethodPost, "/core/stations", `{"name":"Kwidzyn","order":10}`)
	require.Equal(t, http.StatusCreated, status, string(body))

	var created network.Station
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, "Kwidzyn", created.Name)

	status, body = doRequest(t, app, http.MethodPut, "/core/stations/10", `{"name":"Kwidzyn Główny","order":11,"cn":"CN011"}`)
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Contains(t, string(body), `"cn":"CN011"`)

	status, _ = doRequest(t, app, http.MethodPost, "/core/stations", `{"name":"","order":1}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = doRequest(t, app, http.MethodDelete, "/core/stations/10", "")
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = doRequest(t, app, http.MethodGet, "/core/stations/10", "")
	assert.Equal(t, http.StatusNotFound, status)

	// Station 1 is referenced by the seeded schedule
	status, _ = doRequest(t, app, http.MethodDelete, "/core/stations/1", "")
	assert.Equal(t, http.StatusConflict, status)

	status, _ = doRequest(t, app, http.MethodGet, "/core/stations/abc", "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestDestinationsAndInfo(t *testing.T) {
	app := newTestApp(t)

	status, body := doRequest(t, app, http.MethodGet, "/core/stations/1/destinations", "")
	require.Equal(t, http.StatusOK, status)

	var destinations []network.Destination
	require.NoError(t, json.Unmarshal(body, &destinations))
	require.Len(t, destinations, 8)
	assert.Equal(t, network.Destination{StationID: 2, Name: "Sopot", RouteCount: 1, Distance: 1}, destinations[0])

	status, body = doRequest(t, app, http.MethodGet, "/core/stations/1/info", "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"connected_stations":["Sopot"]`)
}

func TestRoutes(t *testing.T) {
	app := newTestApp(t)

	status, body := doRequest(t, app, http.MethodGet, "/core/routes?from=1&to=2", "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"departure_time":"08:00:00"`)

	status, _ = doRequest(t, app, http.MethodGet, "/core/routes?from=1&to=3", "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = doRequest(t, app, http.MethodGet, "/core/routes?from=1", "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = doRequest(t, app, http.MethodPost, "/core/routes", `{"from_station_id":1,"to_station_id":3,"departure_time":"07:00:00","arrival_time":"07:40:00"}`)
	require.Equal(t, http.StatusCreated, status, string(body))

	status, body = doRequest(t, app, http.MethodGet, "/core/routes/next?to=3", "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"departure_time":"07:00:00"`)

	status, _ = doRequest(t, app, http.MethodPost, "/core/routes", `{"from_station_id":1,"to_station_id":3,"departure_time":"7am","arrival_time":"07:40:00"}`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestQuoteAndBooking(t *testing.T) {
	app := newTestApp(t)

	status, body := doRequest(t, app, http.MethodGet, "/core/quotes?from=1&to=2", "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"price":5`)

	status, body = doRequest(t, app, http.MethodPost, "/core/bookings", `{"from":1,"to":2,"confirm":false}`)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"status":"declined"`)

	status, body = doRequest(t, app, http.MethodPost, "/core/bookings", `{"from":1,"to":2,"confirm":true}`)
	require.Equal(t, http.StatusCreated, status, string(body))
	assert.Contains(t, string(body), `"status":"booked"`)

	status, body = doRequest(t, app, http.MethodPost, "/core/bookings", `{"from":1,"to":5,"confirm":true}`)
	require.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, string(body), `"status":"no_route_available"`)

	status, body = doRequest(t, app, http.MethodGet, "/core/bookings", "")
	require.Equal(t, http.StatusOK, status)

	var tickets []network.Ticket
	require.NoError(t, json.Unmarshal(body, &tickets))
	require.Len(t, tickets, 1)
	assert.Equal(t, 5.00, tickets[0].Price)
}

func TestCarriers(t *testing.T) {
	app := newTestApp(t)

	status, body := doRequest(t, app, http.MethodPost, "/core/carriers", `{"cn":"CN007"}`)
	require.Equal(t, http.StatusCreated, status, string(body))
	assert.Contains(t, string(body), `"station_id":6`)

	status, _ = doRequest(t, app, http.MethodPost, "/core/carriers", `{"cn":"CN007"}`)
	assert.Equal(t, http.StatusConflict, status)

	status, body = doRequest(t, app, http.MethodPost, "/core/carriers/bulk", `{"cn":"CN900"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"updated":3`)

	status, _ = doRequest(t, app, http.MethodPost, "/core/carriers", `{"cn":"CN008"}`)
	assert.Equal(t, http.StatusConflict, status)

	status, body = doRequest(t, app, http.MethodPut, "/core/stations/2/cn", `{"cn":"CN001"}`)
	require.Equal(t, http.StatusOK, status, string(body))

	status, body = doRequest(t, app, http.MethodGet, "/core/carriers", "")
	require.Equal(t, http.StatusOK, status)

	var cns []string
	require.NoError(t, json.Unmarshal(body, &cns))
	assert.Equal(t, []string{"CN001", "CN003", "CN004", "CN005", "CN007", "CN900"}, cns)
}

func TestUnreachableStoreReturnsServiceUnavailable(t *testing.T) {
	session := &database.Session{
		Opener: func(ctx context.Context) (*gorm.DB, error) {
			return nil, assert.AnError
		},
		RetryAttempts: 1,
		RetryDelay:    time.Millisecond,
	}
	app := NewApp(engine.New(config.Default(), session))

	status, _ := doRequest(t, app, http.MethodGet, "/core/stations", "")
	assert.Equal(t, http.StatusServiceUnavailable, status)

	status, body := doRequest(t, app, http.MethodPost, "/core/bookings", `{"from":1,"to":2,"confirm":true}`)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Contains(t, string(body), `"status":"connectivity_failure"`)
}

func TestCarrierNumberIsTrimmedInResponse(t *testing.T) {
	app := newTestApp(t)

	status, body := doRequest(t, app, http.MethodPost, "/core/carriers", `{"cn":"  CN010 "}`)
	require.Equal(t, http.StatusCreated, status, string(body))
	assert.Contains(t, string(body), `"cn":"CN010"`)

	status, body = doRequest(t, app, http.MethodGet, "/core/carriers", "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"CN010"`)
}

func TestUnprovisionedStoreReturnsServerError(t *testing.T) {
	app := NewApp(engine.New(config.Default(), databasetest.NewSession(t)))

	status, body := doRequest(t, app, http.MethodGet, "/core/stations", "")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Contains(t, string(body), "store operation failed")
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApp(t)

	doRequest(t, app, http.MethodPost, "/core/bookings", `{"from":1,"to":2,"confirm":false}`)

	status, body := doRequest(t, app, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "railline_bookings_total")
}
