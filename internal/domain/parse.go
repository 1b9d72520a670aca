package domain

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
)

// EventTypeEarthquake is the only feed event type kept in an EventTable.
const EventTypeEarthquake = "earthquake"

var (
	// ErrMissingColumn is returned when the feed header lacks a required column.
	ErrMissingColumn = errors.New("missing required column")

	// ErrMalformedRow is returned when a kept row has an unparseable field.
	ErrMalformedRow = errors.New("malformed row")
)

// requiredColumns are the raw feed columns read by ParseFeed.
var requiredColumns = []string{"type", "time", "latitude", "longitude", "depth", "mag", "place"}

// ParseFeed reads a USGS summary CSV and returns its earthquakes as an
// EventTable: rows of any other type are dropped, the remaining rows are
// projected to the canonical columns and sorted most recent first.
func ParseFeed(r io.Reader) (EventTable, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("parse feed: %w: empty payload", ErrMissingColumn)
	}

	idx, err := indexHeader(records[0])
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	quakes := lo.Filter(records[1:], func(rec []string, _ int) bool {
		return rec[idx["type"]] == EventTypeEarthquake
	})

	table := make(EventTable, 0, len(quakes))
	for i, rec := range quakes {
		event, err := parseEvent(rec, idx)
		if err != nil {
			return nil, fmt.Errorf("parse feed: earthquake row %d: %w", i+1, err)
		}
		table = append(table, event)
	}

	SortByTimeDesc(table)
	return table, nil
}

// SortByTimeDesc orders the table most recent first. Rows with equal
// timestamps keep their feed order.
func SortByTimeDesc(t EventTable) {
	sort.SliceStable(t, func(i, j int) bool {
		return t[i].Time.After(t[j].Time)
	})
}

// indexHeader maps each required column name to its position in the header.
func indexHeader(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}

	missing := lo.Filter(requiredColumns, func(col string, _ int) bool {
		_, ok := idx[col]
		return !ok
	})
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return idx, nil
}

func parseEvent(rec []string, idx map[string]int) (Event, error) {
	ts, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(rec[idx["time"]]))
	if err != nil {
		return Event{}, fmt.Errorf("%w: time %q", ErrMalformedRow, rec[idx["time"]])
	}

	var fields [4]float64
	for i, col := range []string{"latitude", "longitude", "depth", "mag"} {
		v, err := parseOptionalFloat(rec[idx[col]])
		if err != nil {
			return Event{}, fmt.Errorf("%w: %s %q", ErrMalformedRow, col, rec[idx[col]])
		}
		fields[i] = v
	}

	return Event{
		Time:      ts.UTC(),
		Latitude:  fields[0],
		Longitude: fields[1],
		Depth:     fields[2],
		Magnitude: fields[3],
		Place:     rec[idx["place"]],
	}, nil
}

// parseOptionalFloat parses s as float64; an empty cell yields NaN.
func parseOptionalFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}
