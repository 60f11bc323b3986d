// Package types provides the core data structures shared by the pipeline stages.
//
// This package defines the canonical FeatureCollection every decoder produces,
// the Format/Role tables that drive validation, the RawBuffer values exchanged
// between readers and the coordinator, and the PipelineError taxonomy.
package types

// Geometry type names, as used by GeoJSON.
const (
	GeometryPoint           = "Point"
	GeometryMultiPoint      = "MultiPoint"
	GeometryLineString      = "LineString"
	GeometryMultiLineString = "MultiLineString"
	GeometryPolygon         = "Polygon"
	GeometryMultiPolygon    = "MultiPolygon"
	GeometryCollection      = "GeometryCollection"
	typeFeature             = "Feature"
	typeFeatureCollection   = "FeatureCollection"
)

// Position is a single coordinate: longitude, latitude and an optional elevation.
type Position []float64

// Geometry is a GeoJSON-shaped geometry.
//
// Coordinates nest according to Type:
//   - Point: Position
//   - MultiPoint, LineString: []Position
//   - MultiLineString, Polygon: [][]Position
//   - MultiPolygon: [][][]Position
//
// Geometries decoded straight from GeoJSON text keep whatever nesting the
// source carried (generic []any values); the pipeline does not validate them.
type Geometry struct {
	Coordinates any        `json:"coordinates,omitempty" yaml:"coordinates,omitempty"`
	Type        string     `json:"type" yaml:"type"`
	Geometries  []Geometry `json:"geometries,omitempty" yaml:"geometries,omitempty"`
}

// Feature is one geometry plus its attributes. Property keys are unique.
type Feature struct {
	ID         any            `json:"id,omitempty" yaml:"id,omitempty"`
	Geometry   *Geometry      `json:"geometry" yaml:"geometry"`
	Properties map[string]any `json:"properties" yaml:"properties"`
	Type       string         `json:"type" yaml:"type"`
}

// FeatureCollection is the canonical output of every decoder.
//
// Once published by the pipeline a collection is read-only; it is replaced
// wholesale by the next successful decode.
type FeatureCollection struct {
	Type     string    `json:"type" yaml:"type"`
	Features []Feature `json:"features" yaml:"features"`
	BBox     []float64 `json:"bbox,omitempty" yaml:"bbox,omitempty"`
}

// NewFeatureCollection returns an empty collection with its type set.
func NewFeatureCollection(capacity int) *FeatureCollection {
	return &FeatureCollection{
		Type:     typeFeatureCollection,
		Features: make([]Feature, 0, capacity),
	}
}

// NewFeature returns a feature with its type set and a non-nil property map.
func NewFeature(g *Geometry, props map[string]any) Feature {
	if props == nil {
		props = map[string]any{}
	}
	return Feature{Type: typeFeature, Geometry: g, Properties: props}
}

// Len returns the number of features, treating a nil collection as empty.
func (fc *FeatureCollection) Len() int {
	if fc == nil {
		return 0
	}
	return len(fc.Features)
}

// Normalize fills in the type markers a hand-built or loosely parsed collection
// may be missing.
func (fc *FeatureCollection) Normalize() {
	if fc.Type == "" {
		fc.Type = typeFeatureCollection
	}
	if fc.Features == nil {
		fc.Features = []Feature{}
	}
	for i := range fc.Features {
		if fc.Features[i].Type == "" {
			fc.Features[i].Type = typeFeature
		}
		if fc.Features[i].Properties == nil {
			fc.Features[i].Properties = map[string]any{}
		}
	}
}

// PointGeometry builds a Point.
func PointGeometry(p Position) *Geometry {
	return &Geometry{Type: GeometryPoint, Coordinates: p}
}

// LineGeometry builds a LineString.
func LineGeometry(line []Position) *Geometry {
	return &Geometry{Type: GeometryLineString, Coordinates: line}
}

// PolygonGeometry builds a Polygon from an outer ring followed by holes.
func PolygonGeometry(rings [][]Position) *Geometry {
	return &Geometry{Type: GeometryPolygon, Coordinates: rings}
}

// CountPositions returns the number of positions held by g, walking nested
// coordinate arrays of either typed or generic shape.
func CountPositions(g *Geometry) int {
	if g == nil {
		return 0
	}
	n := countCoords(g.Coordinates)
	for i := range g.Geometries {
		n += CountPositions(&g.Geometries[i])
	}
	return n
}

func countCoords(v any) int {
	switch c := v.(type) {
	case nil:
		return 0
	case Position:
		return 1
	case []Position:
		return len(c)
	case [][]Position:
		n := 0
		for _, r := range c {
			n += len(r)
		}
		return n
	case [][][]Position:
		n := 0
		for _, p := range c {
			for _, r := range p {
				n += len(r)
			}
		}
		return n
	case []any:
		if len(c) == 0 {
			return 0
		}
		if _, ok := c[0].(float64); ok {
			return 1
		}
		n := 0
		for _, e := range c {
			n += countCoords(e)
		}
		return n
	default:
		return 0
	}
}
