package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSources(t *testing.T) {
	sources := DefaultSources("https://example.test/feed/")

	require.Len(t, sources, 4)
	assert.Equal(t, FeedSource{Label: LabelLastMonth, URL: "https://example.test/feed/all_month.csv"}, sources[0])
	assert.Equal(t, FeedSource{Label: LabelLastWeek, URL: "https://example.test/feed/all_week.csv"}, sources[1])
	assert.Equal(t, FeedSource{Label: LabelLastDay, URL: "https://example.test/feed/all_day.csv"}, sources[2])
	assert.Equal(t, FeedSource{Label: LabelLastHour, URL: "https://example.test/feed/all_hour.csv"}, sources[3])
}

func TestNewSnapshot(t *testing.T) {
	fetchedAt := time.Date(2024, 4, 27, 6, 0, 0, 0, time.UTC)
	hour := EventTable{{Place: "a"}}
	day := EventTable{{Place: "a"}, {Place: "b"}}

	snap, err := NewSnapshot([]WindowTable{
		{Label: LabelLastDay, Table: day},
		{Label: LabelLastHour, Table: hour},
	}, fetchedAt)
	require.NoError(t, err)

	assert.Equal(t, []string{LabelLastDay, LabelLastHour}, snap.Labels())
	assert.Equal(t, fetchedAt, snap.FetchedAt())

	got, ok := snap.Table(LabelLastDay)
	require.True(t, ok)
	assert.Len(t, got, 2)

	_, ok = snap.Table(LabelLastMonth)
	assert.False(t, ok)
}

func TestSnapshot_LabelsIsCopy(t *testing.T) {
	snap, err := NewSnapshot([]WindowTable{{Label: LabelLastHour}}, time.Time{})
	require.NoError(t, err)

	labels := snap.Labels()
	labels[0] = "mutated"
	assert.Equal(t, []string{LabelLastHour}, snap.Labels())
}

func TestNewSnapshot_DuplicateLabel(t *testing.T) {
	_, err := NewSnapshot([]WindowTable{{Label: LabelLastHour}, {Label: LabelLastHour}}, time.Time{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate window")
}

func TestEventTable_Columns(t *testing.T) {
	var table EventTable
	assert.Equal(t, []string{"TIME", "LATITUDE", "LONGITUDE", "DEPTH", "MAG", "PLACE"}, table.Columns())
}

func TestEvent_Row(t *testing.T) {
	e := Event{
		Time:      time.Date(2024, 4, 26, 15, 10, 3, 210_000_000, time.UTC),
		Latitude:  35.1,
		Longitude: -117.6,
		Depth:     math.NaN(),
		Magnitude: 2.1,
		Place:     "Ridgecrest",
	}

	row := e.Row()
	require.Len(t, row, len(Columns))
	assert.Equal(t, []string{"2024-04-26 15:10:03.210", "35.1", "-117.6", "", "2.1", "Ridgecrest"}, row)
}
