package main

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"slices"
	"strings"

	"github.com/couchcryptid/quake-dashboard/internal/domain"
	"github.com/samber/lo"
)

// phase tracks pass/fail for one check.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// checkFiltering compares each table's length with the number of raw rows
// whose type is exactly "earthquake".
func checkFiltering(snap *domain.Snapshot, raw map[string][]byte) *phase {
	p := &phase{name: "Filtering (earthquake rows only)"}

	for _, label := range snap.Labels() {
		table, _ := snap.Table(label)
		data, ok := raw[label]
		if !ok {
			p.errorf("%s: no raw feed captured", label)
			continue
		}
		want, err := countEarthquakes(data)
		if err != nil {
			p.errorf("%s: read raw feed: %v", label, err)
			continue
		}
		if table.Len() != want {
			p.errorf("%s: raw feed has %d earthquake rows, table has %d", label, want, table.Len())
		}
	}
	return p
}

func countEarthquakes(data []byte) (int, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, fmt.Errorf("empty feed")
	}

	header := lo.Map(rows[0], func(h string, _ int) string {
		return strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	})
	typeIdx := slices.Index(header, "type")
	if typeIdx < 0 {
		return 0, fmt.Errorf("no type column")
	}

	return lo.CountBy(rows[1:], func(row []string) bool {
		return typeIdx < len(row) && row[typeIdx] == domain.EventTypeEarthquake
	}), nil
}

// checkProjection verifies every table exposes exactly the canonical columns
// and every row renders one value per column.
func checkProjection(snap *domain.Snapshot) *phase {
	p := &phase{name: "Projection (six canonical columns)"}

	for _, label := range snap.Labels() {
		table, _ := snap.Table(label)
		if !slices.Equal(table.Columns(), domain.Columns) {
			p.errorf("%s: columns %v", label, table.Columns())
		}
		for i, e := range table {
			if n := len(e.Row()); n != len(domain.Columns) {
				p.errorf("%s row %d: %d values", label, i, n)
			}
		}
	}
	return p
}

// checkOrdering verifies every table is sorted newest first.
func checkOrdering(snap *domain.Snapshot) *phase {
	p := &phase{name: "Ordering (TIME descending)"}

	for _, label := range snap.Labels() {
		table, _ := snap.Table(label)
		for i := 1; i < len(table); i++ {
			if table[i-1].Time.Before(table[i].Time) {
				p.errorf("%s rows %d,%d: %s before %s", label, i-1, i,
					table[i-1].Time.Format("2006-01-02T15:04:05.000Z"), table[i].Time.Format("2006-01-02T15:04:05.000Z"))
			}
		}
	}
	return p
}
