package kml

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/simonhull/geolayer/internal/types"
)

func isGeometry(local string) bool {
	switch local {
	case "Point", "LineString", "LinearRing", "Polygon", "MultiGeometry":
		return true
	}
	return false
}

type coordsElement struct {
	Coordinates string `xml:"coordinates"`
}

type ringElement struct {
	Ring coordsElement `xml:"LinearRing"`
}

type polygonElement struct {
	Outer ringElement `xml:"outerBoundaryIs"`
	Inner []struct {
		Rings []coordsElement `xml:"LinearRing"`
	} `xml:"innerBoundaryIs"`
}

// coordinateError reports unusable coordinates inside an otherwise well-formed element.
type coordinateError struct {
	err      error
	geometry string
}

func (e *coordinateError) Error() string { return e.geometry + ": " + e.err.Error() }

func (e *coordinateError) Unwrap() error { return e.err }

// decodeGeometry consumes the element opened by se. Unusable coordinates are
// reported as *coordinateError after the element has been fully read.
func decodeGeometry(d *xml.Decoder, se xml.StartElement) (*types.Geometry, error) {
	switch se.Name.Local {
	case "Point":
		var el coordsElement
		if err := d.DecodeElement(&el, &se); err != nil {
			return nil, err
		}
		pts, perr := parseCoordinates(el.Coordinates)
		if perr != nil {
			return nil, &coordinateError{geometry: "Point", err: perr}
		}
		return types.PointGeometry(pts[0]), nil

	case "LineString":
		var el coordsElement
		if err := d.DecodeElement(&el, &se); err != nil {
			return nil, err
		}
		pts, perr := parseCoordinates(el.Coordinates)
		if perr != nil {
			return nil, &coordinateError{geometry: "LineString", err: perr}
		}
		return types.LineGeometry(pts), nil

	case "LinearRing":
		var el coordsElement
		if err := d.DecodeElement(&el, &se); err != nil {
			return nil, err
		}
		ring, perr := parseCoordinates(el.Coordinates)
		if perr != nil {
			return nil, &coordinateError{geometry: "LinearRing", err: perr}
		}
		return types.PolygonGeometry([][]types.Position{ring}), nil

	case "Polygon":
		var el polygonElement
		if err := d.DecodeElement(&el, &se); err != nil {
			return nil, err
		}
		outer, perr := parseCoordinates(el.Outer.Ring.Coordinates)
		if perr != nil {
			return nil, &coordinateError{geometry: "Polygon outer boundary", err: perr}
		}
		rings := [][]types.Position{outer}
		for _, ib := range el.Inner {
			for _, r := range ib.Rings {
				hole, perr := parseCoordinates(r.Coordinates)
				if perr != nil {
					return nil, &coordinateError{geometry: "Polygon inner boundary", err: perr}
				}
				rings = append(rings, hole)
			}
		}
		return types.PolygonGeometry(rings), nil

	case "MultiGeometry":
		return decodeMulti(d)
	}

	return nil, d.Skip()
}

func decodeMulti(d *xml.Decoder) (*types.Geometry, error) {
	g := &types.Geometry{Type: types.GeometryCollection, Geometries: []types.Geometry{}}
	var bad *coordinateError
	for {
		tok, err := d.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.EndElement:
			if bad != nil {
				return nil, &coordinateError{geometry: "MultiGeometry", err: bad}
			}
			return g, nil
		case xml.StartElement:
			if !isGeometry(t.Name.Local) {
				if err := d.Skip(); err != nil {
					return nil, err
				}
				continue
			}
			child, err := decodeGeometry(d, t)
			var ce *coordinateError
			switch {
			case errors.As(err, &ce):
				if bad == nil {
					bad = ce
				}
			case err != nil:
				return nil, err
			default:
				g.Geometries = append(g.Geometries, *child)
			}
		}
	}
}

var errNoCoordinates = errors.New("no coordinates")

// parseCoordinates reads whitespace-separated "lon,lat[,alt]" tuples.
func parseCoordinates(s string) ([]types.Position, error) {
	tuples := strings.Fields(joinCommas(s))
	if len(tuples) == 0 {
		return nil, errNoCoordinates
	}

	out := make([]types.Position, 0, len(tuples))
	for _, tuple := range tuples {
		parts := strings.Split(tuple, ",")
		if len(parts) < 2 || len(parts) > 3 {
			return nil, fmt.Errorf("coordinate %q: want lon,lat[,alt]", tuple)
		}
		pos := make(types.Position, len(parts))
		for i, p := range parts {
			v, err := strconv.ParseFloat(p, 64)
			if err != nil {
				return nil, fmt.Errorf("coordinate %q: %w", tuple, err)
			}
			pos[i] = v
		}
		out = append(out, pos)
	}
	return out, nil
}

// joinCommas drops whitespace around commas so "1, 2" reads as one tuple.
func joinCommas(s string) string {
	if !strings.Contains(s, ",") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	lastComma := false
	for _, r := range s {
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			pendingSpace = true
		case r == ',':
			b.WriteRune(r)
			pendingSpace = false
			lastComma = true
		default:
			if pendingSpace && !lastComma && b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteRune(r)
			pendingSpace = false
			lastComma = false
		}
	}
	return b.String()
}
