package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/quake-dashboard/internal/chart"
	"github.com/couchcryptid/quake-dashboard/internal/domain"
	"github.com/couchcryptid/quake-dashboard/internal/observability"
	"github.com/couchcryptid/quake-dashboard/internal/session"
	"github.com/samber/lo"
)

// Fixed page text.
const (
	PageTitle      = "Earthquake Dashboard"
	SelectorLabel  = "See earthquakes from..."
	Placeholder    = "Select frequency..."
	FailureMessage = "There was an error connecting to the data feed. Please reload the webpage and try again."
)

// SnapshotLoader produces a complete Snapshot or fails.
type SnapshotLoader interface {
	Load(ctx context.Context) (*domain.Snapshot, error)
}

// ChartRenderer builds the two dashboard charts for one window.
type ChartRenderer interface {
	RenderMap(table domain.EventTable, label string, fetchedAt time.Time) chart.Chart
	RenderMagDepth(table domain.EventTable, label string, fetchedAt time.Time) chart.Chart
}

// View describes one rendered page.
type View struct {
	Title     string
	SessionID string

	// Load status. When Failed is set only Error is shown.
	Failed bool
	Error  string
	Status string

	SelectorLabel string
	Placeholder   string
	Options       []string
	Selected      string

	Header     string
	MapChart   *chart.Chart
	DepthChart *chart.Chart
	Columns    []string
	Table      domain.EventTable
}

// HasSelection reports whether the view carries charts and a table.
func (v View) HasSelection() bool { return v.Selected != "" }

// Controller turns (session, selection) into a View. All state it needs
// across requests lives in the session.
type Controller struct {
	loader   SnapshotLoader
	renderer ChartRenderer
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewController creates a Controller.
func NewController(loader SnapshotLoader, renderer ChartRenderer, logger *slog.Logger, metrics *observability.Metrics) *Controller {
	return &Controller{
		loader:   loader,
		renderer: renderer,
		logger:   logger,
		metrics:  metrics,
	}
}

// Run loads the session's Snapshot on first use and describes the page for
// selection. An empty or unknown selection shows the status line and the
// selector only.
func (c *Controller) Run(ctx context.Context, sess *session.Session, selection string) View {
	view := View{Title: PageTitle, SessionID: sess.ID()}

	state := sess.Load(ctx, c.loader.Load)
	if state.Failed() {
		c.logger.Warn("session has no snapshot", "session", sess.ID(), "error", state.Err)
		view.Failed = true
		view.Error = FailureMessage
		return view
	}

	snap := state.Snapshot
	view.Status = fmt.Sprintf("Data fetched from USGS live feed successfully at %s",
		state.FetchedAt.Format("2006-01-02 15:04:05 MST"))
	view.SelectorLabel = SelectorLabel
	view.Placeholder = Placeholder
	view.Options = snap.Labels()

	if selection == "" {
		return view
	}
	if !lo.Contains(view.Options, selection) {
		c.logger.Warn("unknown window selected", "session", sess.ID(), "window", selection)
		return view
	}

	table, _ := snap.Table(selection)
	mapChart := c.renderer.RenderMap(table, selection, state.FetchedAt)
	depthChart := c.renderer.RenderMagDepth(table, selection, state.FetchedAt)
	c.metrics.ChartRenders.WithLabelValues(string(chart.KindMap)).Inc()
	c.metrics.ChartRenders.WithLabelValues(string(chart.KindMagDepth)).Inc()

	view.Selected = selection
	view.Header = fmt.Sprintf("Displaying data from %s", selection)
	view.MapChart = &mapChart
	view.DepthChart = &depthChart
	view.Columns = table.Columns()
	view.Table = table
	return view
}
