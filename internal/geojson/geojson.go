// Package geojson decodes GeoJSON text into the canonical feature collection.
package geojson

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tidwall/jsonc"

	"github.com/simonhull/geolayer/internal/registry"
	"github.com/simonhull/geolayer/internal/types"
)

func init() {
	registry.Register(types.FormatGeoJSON, &decoder{})
}

type decoder struct{}

// Decode implements registry.Decoder.
func (d *decoder) Decode(ctx context.Context, set *types.BufferSet, opts types.DecodeOptions) (*types.Decoded, error) {
	buf, ok := set.Get(types.RoleTextPayload)
	if !ok {
		return nil, types.NewError(types.KindMalformedJSON, "", "no GeoJSON payload", nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fc, err := Parse([]byte(buf.Text), opts.LenientJSON)
	if err != nil {
		return nil, types.NewError(types.KindMalformedJSON, buf.Name, "", err)
	}
	return &types.Decoded{Collection: fc}, nil
}

type envelope struct {
	Type string `json:"type"`
}

// Parse decodes a GeoJSON document.
//
// A FeatureCollection is returned as is. A lone Feature or bare geometry is
// wrapped into a one-feature collection. With lenient set, comments and
// trailing commas are stripped first. Coordinates and properties are not
// validated.
func Parse(data []byte, lenient bool) (*types.FeatureCollection, error) {
	if lenient {
		data = jsonc.ToJSON(data)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("parse geojson: %w", err)
	}

	switch env.Type {
	case "FeatureCollection", "":
		var fc types.FeatureCollection
		if err := json.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("parse feature collection: %w", err)
		}
		if env.Type == "" && fc.Features == nil {
			return nil, fmt.Errorf("parse geojson: object has no type and no features")
		}
		fc.Normalize()
		return &fc, nil

	case "Feature":
		var f types.Feature
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse feature: %w", err)
		}
		return wrap(f), nil

	case types.GeometryPoint, types.GeometryMultiPoint,
		types.GeometryLineString, types.GeometryMultiLineString,
		types.GeometryPolygon, types.GeometryMultiPolygon,
		types.GeometryCollection:
		var g types.Geometry
		if err := json.Unmarshal(data, &g); err != nil {
			return nil, fmt.Errorf("parse geometry: %w", err)
		}
		return wrap(types.NewFeature(&g, nil)), nil

	default:
		return nil, fmt.Errorf("parse geojson: unsupported type %q", env.Type)
	}
}

func wrap(f types.Feature) *types.FeatureCollection {
	fc := types.NewFeatureCollection(1)
	fc.Features = append(fc.Features, f)
	fc.Normalize()
	return fc
}
