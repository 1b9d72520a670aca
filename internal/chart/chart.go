// Package chart builds the dashboard's chart descriptions from Event Tables.
//
// A Chart is a plain value: everything needed to draw it (points, axis
// ranges, orientation, basemap) is decided here, so the same inputs always
// describe the same picture. Drawing lives in adapter/svgchart.
package chart

import (
	"fmt"
	"math"
	"time"

	"github.com/couchcryptid/quake-dashboard/internal/domain"
	"github.com/paulmach/orb"
)

// Kind identifies which of the two dashboard charts a Chart is.
type Kind string

const (
	KindMap      Kind = "map"
	KindMagDepth Kind = "mag_depth"
)

// World extents used for the map axes.
var (
	worldLongitude = Range{Min: -180, Max: 180}
	worldLatitude  = Range{Min: -90, Max: 90}
	unitRange      = Range{Min: 0, Max: 1}
)

// Point is one plotted event; Value drives its color.
type Point struct {
	X     float64
	Y     float64
	Value float64
}

// Range is a closed axis interval with Max > Min.
type Range struct {
	Min float64
	Max float64
}

// Span returns Max - Min.
func (r Range) Span() float64 { return r.Max - r.Min }

// Chart describes one scatter chart.
type Chart struct {
	Kind    Kind
	Title   string
	Caption string
	XLabel  string
	YLabel  string

	Points []Point
	X      Range
	Y      Range
	Color  Range // Value range mapped onto the color scale

	InvertY bool // larger Y values are drawn lower
	Grid    bool // major grid lines

	Basemap []orb.Ring
}

// ColorFraction maps a point value to [0, 1] on the color scale. Values
// outside Color are clamped; NaN maps to 0.
func (c Chart) ColorFraction(v float64) float64 {
	if math.IsNaN(v) || c.Color.Span() <= 0 {
		return 0
	}
	f := (v - c.Color.Min) / c.Color.Span()
	return math.Max(0, math.Min(1, f))
}

// Caption is the footnote stamped on every chart.
func Caption(fetchedAt time.Time) string {
	return fmt.Sprintf("Generated from data recovered at %s", fetchedAt.Format("2006-01-02 15:04:05 MST"))
}

// Renderer builds the two dashboard charts. The basemap is read once at
// startup and shared by every map chart.
type Renderer struct {
	basemap []orb.Ring
}

// NewRenderer creates a Renderer drawing basemap under every map chart.
// A nil basemap draws points only.
func NewRenderer(basemap []orb.Ring) *Renderer {
	return &Renderer{basemap: basemap}
}

// RenderMap places each event at (longitude, latitude) over the world
// boundaries, colored by magnitude.
func (r *Renderer) RenderMap(table domain.EventTable, label string, fetchedAt time.Time) Chart {
	points := make([]Point, 0, len(table))
	for _, e := range table {
		if !finite(e.Longitude) || !finite(e.Latitude) {
			continue
		}
		points = append(points, Point{X: e.Longitude, Y: e.Latitude, Value: e.Magnitude})
	}

	return Chart{
		Kind:    KindMap,
		Title:   fmt.Sprintf("Global Distribution of Earthquakes (%s)", label),
		Caption: Caption(fetchedAt),
		XLabel:  "LONGITUDE",
		YLabel:  "LATITUDE",
		Points:  points,
		X:       worldLongitude,
		Y:       worldLatitude,
		Color:   valueRange(points),
		Basemap: r.basemap,
	}
}

// RenderMagDepth plots magnitude against depth with depth increasing
// downwards, so shallow events sit at the top.
func (r *Renderer) RenderMagDepth(table domain.EventTable, label string, fetchedAt time.Time) Chart {
	points := make([]Point, 0, len(table))
	for _, e := range table {
		if !finite(e.Magnitude) || !finite(e.Depth) {
			continue
		}
		points = append(points, Point{X: e.Magnitude, Y: e.Depth, Value: e.Magnitude})
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i], ys[i] = p.X, p.Y
	}

	return Chart{
		Kind:    KindMagDepth,
		Title:   fmt.Sprintf("Magnitude vs Depth (%s)", label),
		Caption: Caption(fetchedAt),
		XLabel:  "MAG",
		YLabel:  "DEPTH (kilometers)",
		Points:  points,
		X:       paddedRange(xs),
		Y:       paddedRange(ys),
		Color:   valueRange(points),
		InvertY: true,
		Grid:    true,
	}
}

// paddedRange returns the data extent widened by 5% on each side, or the
// unit range when vs is empty.
func paddedRange(vs []float64) Range {
	if len(vs) == 0 {
		return unitRange
	}
	lo, hi := vs[0], vs[0]
	for _, v := range vs[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = 0.5
	}
	return Range{Min: lo - pad, Max: hi + pad}
}

// valueRange returns the extent of finite point values for the color scale.
func valueRange(points []Point) Range {
	r := Range{Min: math.Inf(1), Max: math.Inf(-1)}
	for _, p := range points {
		if !finite(p.Value) {
			continue
		}
		r.Min = math.Min(r.Min, p.Value)
		r.Max = math.Max(r.Max, p.Value)
	}
	if math.IsInf(r.Min, 1) {
		return unitRange
	}
	if r.Max == r.Min {
		r.Max = r.Min + 1
	}
	return r
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
