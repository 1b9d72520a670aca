package svgchart

import (
	"fmt"
	"io"

	"github.com/couchcryptid/quake-dashboard/internal/chart"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Canvas size of every rendered chart, in pixels.
const (
	Width  = 640
	Height = 480
)

var (
	// Ends of the magnitude color scale (light to dark red).
	lowColor  = drawing.Color{R: 254, G: 224, B: 210, A: 255}
	highColor = drawing.Color{R: 103, G: 0, B: 13, A: 255}

	landColor = drawing.Color{R: 160, G: 160, B: 160, A: 255}
	gridColor = drawing.Color{R: 211, G: 211, B: 211, A: 255}

	// invisible is non-zero so go-chart does not swap in a default series color.
	invisible = drawing.Color{R: 255, G: 255, B: 255, A: 0}
)

// Write draws c as an SVG document.
func Write(w io.Writer, c chart.Chart) error {
	g := gochart.Chart{
		Title:  c.Title,
		Width:  Width,
		Height: Height,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 48, Left: 16, Right: 24, Bottom: 16},
		},
		XAxis: gochart.XAxis{
			Name:           c.XLabel,
			Range:          &gochart.ContinuousRange{Min: c.X.Min, Max: c.X.Max},
			GridMajorStyle: gochart.Style{Hidden: true},
			GridMinorStyle: gochart.Style{Hidden: true},
		},
		YAxis: gochart.YAxis{
			Name:           c.YLabel,
			Range:          &gochart.ContinuousRange{Min: c.Y.Min, Max: c.Y.Max, Descending: c.InvertY},
			GridMajorStyle: gochart.Style{Hidden: true},
			GridMinorStyle: gochart.Style{Hidden: true},
		},
		Series: series(c),
	}
	if c.Grid {
		g.XAxis.GridMajorStyle = gridStyle()
		g.YAxis.GridMajorStyle = gridStyle()
	}

	if err := g.Render(gochart.SVG, w); err != nil {
		return fmt.Errorf("render %s chart: %w", c.Kind, err)
	}
	return nil
}

// series lays out the basemap outlines first so event dots draw on top.
func series(c chart.Chart) []gochart.Series {
	out := make([]gochart.Series, 0, len(c.Basemap)+1)

	for _, ring := range c.Basemap {
		if len(ring) < 2 {
			continue
		}
		xs := make([]float64, len(ring))
		ys := make([]float64, len(ring))
		for i, p := range ring {
			xs[i], ys[i] = p.Lon(), p.Lat()
		}
		out = append(out, gochart.ContinuousSeries{
			Style:   gochart.Style{StrokeColor: landColor, StrokeWidth: 0.6},
			XValues: xs,
			YValues: ys,
		})
	}

	if len(c.Points) > 0 {
		xs := make([]float64, len(c.Points))
		ys := make([]float64, len(c.Points))
		for i, p := range c.Points {
			xs[i], ys[i] = p.X, p.Y
		}
		out = append(out, gochart.ContinuousSeries{
			Name: "events",
			Style: gochart.Style{
				StrokeWidth: gochart.Disabled,
				DotWidth:    3,
				DotColorProvider: func(_, _ gochart.Range, index int, _, _ float64) drawing.Color {
					return scale(c.ColorFraction(c.Points[index].Value))
				},
			},
			XValues: xs,
			YValues: ys,
		})
	}

	// go-chart refuses to draw without a visible series; an empty chart
	// still gets its axes from an invisible diagonal across the plot area.
	if len(out) == 0 {
		out = append(out, gochart.ContinuousSeries{
			Style:   gochart.Style{StrokeColor: invisible, StrokeWidth: 1},
			XValues: []float64{c.X.Min, c.X.Max},
			YValues: []float64{c.Y.Min, c.Y.Max},
		})
	}
	return out
}

func gridStyle() gochart.Style {
	return gochart.Style{StrokeColor: gridColor, StrokeWidth: 1}
}

// scale interpolates the magnitude color for f in [0, 1].
func scale(f float64) drawing.Color {
	lerp := func(a, b uint8) uint8 {
		return uint8(float64(a) + (float64(b)-float64(a))*f + 0.5)
	}
	return drawing.Color{
		R: lerp(lowColor.R, highColor.R),
		G: lerp(lowColor.G, highColor.G),
		B: lerp(lowColor.B, highColor.B),
		A: 255,
	}
}
