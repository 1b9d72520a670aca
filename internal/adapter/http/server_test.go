package http_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	httpadapter "github.com/couchcryptid/quake-dashboard/internal/adapter/http"
	"github.com/couchcryptid/quake-dashboard/internal/chart"
	"github.com/couchcryptid/quake-dashboard/internal/dashboard"
	"github.com/couchcryptid/quake-dashboard/internal/domain"
	"github.com/couchcryptid/quake-dashboard/internal/observability"
	"github.com/couchcryptid/quake-dashboard/internal/session"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockLoader struct {
	snap  *domain.Snapshot
	err   error
	calls int
}

func (m *mockLoader) Load(context.Context) (*domain.Snapshot, error) {
	m.calls++
	return m.snap, m.err
}

func (m *mockLoader) CheckReadiness(context.Context) error { return m.err }

var fetchedAt = time.Date(2024, time.April, 27, 6, 0, 0, 0, time.UTC)

func testSnapshot(t *testing.T) *domain.Snapshot {
	t.Helper()
	hour := domain.EventTable{
		{Time: fetchedAt.Add(-5 * time.Minute), Latitude: 61.2, Longitude: -150.1, Depth: 35.2, Magnitude: 3.4, Place: "10 km N of Willow, Alaska"},
		{Time: fetchedAt.Add(-9 * time.Minute), Latitude: 35.1, Longitude: -117.6, Depth: 7.5, Magnitude: 2.1, Place: "5 km W of Ridgecrest, CA"},
	}
	snap, err := domain.NewSnapshot([]domain.WindowTable{
		{Label: domain.LabelLastMonth, Table: hour},
		{Label: domain.LabelLastWeek, Table: hour},
		{Label: domain.LabelLastDay, Table: domain.EventTable{}},
		{Label: domain.LabelLastHour, Table: hour},
	}, fetchedAt)
	require.NoError(t, err)
	return snap
}

type fixture struct {
	srv      *httpadapter.Server
	loader   *mockLoader
	sessions *session.Store
	metrics  *observability.Metrics
}

func newFixture(loader *mockLoader) fixture {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetricsForTesting()
	ctrl := dashboard.NewController(loader, chart.NewRenderer(nil), logger, metrics)
	sessions := session.NewStore(10, time.Hour, clockwork.NewFakeClock())
	return fixture{
		srv:      httpadapter.NewServer(":0", ctrl, sessions, loader, logger, metrics),
		loader:   loader,
		sessions: sessions,
		metrics:  metrics,
	}
}

// tableRows counts the rows inside the page's table body.
func tableRows(t *testing.T, body string) int {
	t.Helper()
	start := strings.Index(body, "<tbody>")
	end := strings.Index(body, "</tbody>")
	require.True(t, start >= 0 && end > start, "page has a table body")
	return strings.Count(body[start:end], "<tr>")
}

func (f fixture) get(target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestDashboard_InitialPage(t *testing.T) {
	f := newFixture(&mockLoader{snap: testSnapshot(t)})

	rec := f.get("/")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "<title>Earthquake Dashboard</title>")
	assert.Contains(t, body, "Data fetched from USGS live feed successfully at 2024-04-27 06:00:00 UTC")
	assert.Contains(t, body, "See earthquakes from...")
	assert.Contains(t, body, "Select frequency...")
	for _, label := range []string{"Last month", "Last week", "Last day", "Last hour"} {
		assert.Contains(t, body, `<option value="`+label+`"`)
	}
	assert.NotContains(t, body, "<svg")
	assert.NotContains(t, body, "<table")
	assert.Equal(t, 1, f.sessions.Len())
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.SessionsActive), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.PageRenders.WithLabelValues("ok")), 0)
}

func TestDashboard_WindowSelected(t *testing.T) {
	f := newFixture(&mockLoader{snap: testSnapshot(t)})
	sess := f.sessions.Create()

	rec := f.get("/?" + url.Values{"sid": {sess.ID()}, "window": {domain.LabelLastHour}}.Encode())

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Displaying data from Last hour")
	assert.Equal(t, 2, strings.Count(body, "<svg"), "map and magnitude/depth charts")
	assert.Contains(t, body, "Generated from data recovered at 2024-04-27 06:00:00 UTC")
	assert.Contains(t, body, "<th>TIME</th>")
	assert.Contains(t, body, "<th>PLACE</th>")
	assert.Contains(t, body, "<td>10 km N of Willow, Alaska</td>")
	table, _ := testSnapshot(t).Table(domain.LabelLastHour)
	assert.Equal(t, table.Len(), tableRows(t, body))
	assert.Contains(t, body, `<option value="Last hour" selected>`)
	assert.Contains(t, body, `name="sid" value="`+sess.ID()+`"`)
	assert.Equal(t, 1, f.sessions.Len(), "known session is reused")
}

func TestDashboard_EmptyWindow(t *testing.T) {
	f := newFixture(&mockLoader{snap: testSnapshot(t)})

	rec := f.get("/?window=" + url.QueryEscape(domain.LabelLastDay))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Displaying data from Last day")
	assert.Equal(t, 2, strings.Count(body, "<svg"), "empty charts keep their axes")
	assert.Contains(t, body, "<th>MAG</th>")
	assert.Equal(t, 0, tableRows(t, body))
}

func TestDashboard_SessionLoadsOnce(t *testing.T) {
	f := newFixture(&mockLoader{snap: testSnapshot(t)})
	sess := f.sessions.Create()

	for _, w := range []string{"", domain.LabelLastDay, domain.LabelLastWeek} {
		rec := f.get("/?" + url.Values{"sid": {sess.ID()}, "window": {w}}.Encode())
		require.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, 1, f.loader.calls)

	f.get("/")
	assert.Equal(t, 2, f.loader.calls, "a request without a session starts a new one")
}

func TestDashboard_LoadFailure(t *testing.T) {
	f := newFixture(&mockLoader{err: errors.New("status 503")})

	rec := f.get("/?window=Last+hour")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, dashboard.FailureMessage)
	assert.NotContains(t, body, "<select")
	assert.NotContains(t, body, "<svg")
	assert.NotContains(t, body, "Data fetched from USGS")
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.PageRenders.WithLabelValues("failed")), 0)
}

func TestDashboard_UnknownPathIs404(t *testing.T) {
	f := newFixture(&mockLoader{snap: testSnapshot(t)})

	rec := f.get("/favicon.ico")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 0, f.loader.calls)
}

func TestHealthzReturns200(t *testing.T) {
	f := newFixture(&mockLoader{})

	rec := f.get("/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	f := newFixture(&mockLoader{})

	rec := f.get("/readyz")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	f := newFixture(&mockLoader{err: errors.New("no feed sources configured")})

	rec := f.get("/readyz")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(&mockLoader{})

	rec := f.get("/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
