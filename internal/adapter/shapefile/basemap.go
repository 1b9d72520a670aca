package shapefile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
)

// ErrNoShapefile is returned when a directory holds no .shp file.
var ErrNoShapefile = errors.New("no .shp file found")

// LoadBasemap reads every polygon and polyline part of a shapefile as a ring
// of (lon, lat) points. path may name the .shp file itself or a directory
// containing one, as the Natural Earth downloads are distributed.
func LoadBasemap(path string) ([]orb.Ring, error) {
	shpPath, err := resolve(path)
	if err != nil {
		return nil, fmt.Errorf("load basemap: %w", err)
	}

	r, err := shp.Open(shpPath)
	if err != nil {
		return nil, fmt.Errorf("load basemap: open %s: %w", shpPath, err)
	}
	defer r.Close()

	var rings []orb.Ring
	for r.Next() {
		_, shape := r.Shape()
		switch s := shape.(type) {
		case *shp.Polygon:
			rings = append(rings, splitParts(s.Parts, s.Points)...)
		case *shp.PolyLine:
			rings = append(rings, splitParts(s.Parts, s.Points)...)
		}
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("load basemap: read %s: %w", shpPath, err)
	}
	return rings, nil
}

// resolve returns path if it is a file, or the first .shp (by name) inside
// it if it is a directory.
func resolve(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return path, nil
	}

	matches, err := filepath.Glob(filepath.Join(path, "*.shp"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("%w in %s", ErrNoShapefile, path)
	}
	sort.Strings(matches)
	return matches[0], nil
}

// splitParts cuts a flat point list into the rings starting at each part
// offset.
func splitParts(parts []int32, points []shp.Point) []orb.Ring {
	rings := make([]orb.Ring, 0, len(parts))
	for i, start := range parts {
		end := int32(len(points))
		if i+1 < len(parts) {
			end = parts[i+1]
		}
		if start < 0 || start >= end || int(end) > len(points) {
			continue
		}
		ring := make(orb.Ring, 0, end-start)
		for _, p := range points[start:end] {
			ring = append(ring, orb.Point{p.X, p.Y})
		}
		rings = append(rings, ring)
	}
	return rings
}
