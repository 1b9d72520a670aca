package domain

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Recency window labels, in feed order.
const (
	LabelLastMonth = "Last month"
	LabelLastWeek  = "Last week"
	LabelLastDay   = "Last day"
	LabelLastHour  = "Last hour"
)

// Columns are the canonical Event Table field names.
var Columns = []string{"TIME", "LATITUDE", "LONGITUDE", "DEPTH", "MAG", "PLACE"}

// FeedSource associates a recency label with the URL of its CSV feed.
type FeedSource struct {
	Label string
	URL   string
}

// DefaultSources returns the four recency feeds under baseURL, ordered from
// the widest window to the narrowest.
func DefaultSources(baseURL string) []FeedSource {
	base := strings.TrimRight(baseURL, "/")
	return []FeedSource{
		{Label: LabelLastMonth, URL: base + "/all_month.csv"},
		{Label: LabelLastWeek, URL: base + "/all_week.csv"},
		{Label: LabelLastDay, URL: base + "/all_day.csv"},
		{Label: LabelLastHour, URL: base + "/all_hour.csv"},
	}
}

// Event is one earthquake projected to the six canonical fields.
// Depth and Magnitude are NaN when the feed left them empty.
type Event struct {
	Time      time.Time `json:"TIME"`
	Latitude  float64   `json:"LATITUDE"`
	Longitude float64   `json:"LONGITUDE"`
	Depth     float64   `json:"DEPTH"` // kilometers
	Magnitude float64   `json:"MAG"`
	Place     string    `json:"PLACE"`
}

// Row returns the event's values formatted for display, aligned with Columns.
func (e Event) Row() []string {
	return []string{
		e.Time.UTC().Format("2006-01-02 15:04:05.000"),
		formatFloat(e.Latitude),
		formatFloat(e.Longitude),
		formatFloat(e.Depth),
		formatFloat(e.Magnitude),
		e.Place,
	}
}

// EventTable is the earthquakes of one recency window, most recent first.
type EventTable []Event

// Columns returns the canonical field names of the table.
func (t EventTable) Columns() []string {
	out := make([]string, len(Columns))
	copy(out, Columns)
	return out
}

// Len returns the number of rows.
func (t EventTable) Len() int { return len(t) }

func formatFloat(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
