// Package shapefile decodes an ESRI shapefile geometry/attribute pair into the
// canonical feature collection.
//
// Main file records are read in order until the bytes run out; record i is
// joined with attribute row i. Null, Point, MultiPoint, PolyLine and Polygon
// shapes are supported with their Z and M variants (Z is kept as a third
// coordinate, M is dropped). Any structural error fails the whole decode.
package shapefile

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/simonhull/geolayer/internal/binary"
	"github.com/simonhull/geolayer/internal/registry"
	"github.com/simonhull/geolayer/internal/types"
)

func init() {
	registry.Register(types.FormatShapefile, &decoder{})
}

type decoder struct{}

// Decode implements registry.Decoder.
func (d *decoder) Decode(ctx context.Context, set *types.BufferSet, _ types.DecodeOptions) (*types.Decoded, error) {
	shp, ok := set.Get(types.RoleGeometry)
	if !ok {
		return nil, types.NewError(types.KindCorruptShapefile, "", "no .shp buffer", nil)
	}
	dbf, ok := set.Get(types.RoleAttributes)
	if !ok {
		return nil, types.NewError(types.KindCorruptShapefile, shp.Name, "no .dbf buffer", nil)
	}

	out, err := Decode(ctx, Input{
		SHP:     shp.Data,
		DBF:     dbf.Data,
		SHPName: shp.Name,
		DBFName: dbf.Name,
		CPG:     set.Sidecars["cpg"],
		PRJ:     set.Sidecars["prj"],
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, types.NewError(types.KindCorruptShapefile, shp.Name, "", err)
	}
	return out, nil
}

// Input is the raw material of one shapefile.
type Input struct {
	SHPName string
	DBFName string
	SHP     []byte
	DBF     []byte
	// CPG and PRJ are optional sidecar contents.
	CPG []byte
	PRJ []byte
}

// Decode reads the pair into a collection. Features are only returned when
// every record decodes.
func Decode(ctx context.Context, in Input) (*types.Decoded, error) {
	sr := binary.NewSafeReader(bytes.NewReader(in.SHP), int64(len(in.SHP)), in.SHPName)
	h, err := readHeader(sr)
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	tbl, err := openTable(in.DBF, in.DBFName, in.CPG)
	if err != nil {
		return nil, fmt.Errorf("read attributes: %w", err)
	}

	out := &types.Decoded{Collection: types.NewFeatureCollection(tbl.records)}
	if warn, ok := projectionWarning(in.PRJ); ok {
		out.Warnings = append(out.Warnings, warn)
	}
	if h.bbox != [4]float64{} {
		out.Collection.BBox = h.bbox[:]
	}

	it := newRecordIter(sr, h)
	for i := 0; it.more(); i++ {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		rec, err := it.next()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if rec.warn != "" {
			out.Warnings = append(out.Warnings, types.Warning{Stage: "shp", Message: rec.warn, Record: i})
		}

		var props map[string]any
		if i < tbl.records {
			props = tbl.row(i)
		}
		out.Collection.Features = append(out.Collection.Features, types.NewFeature(rec.geometry, props))
	}

	if n := out.Collection.Len(); n != tbl.records {
		out.Warnings = append(out.Warnings, types.Warning{
			Stage:   "dbf",
			Message: fmt.Sprintf("%d shapes but %d attribute rows; unmatched records have no properties", n, tbl.records),
			Record:  -1,
		})
	}
	return out, nil
}

// projectionWarning reports a .prj that does not describe geographic coordinates.
func projectionWarning(prj []byte) (types.Warning, bool) {
	wkt := strings.ToUpper(strings.TrimSpace(string(prj)))
	if wkt == "" || strings.HasPrefix(wkt, "GEOGCS") || strings.HasPrefix(wkt, "GEOGCRS") {
		return types.Warning{}, false
	}
	name := wkt
	if i := strings.IndexAny(name, ","); i > 0 {
		name = name[:i]
	}
	return types.Warning{
		Stage:   "prj",
		Message: fmt.Sprintf("coordinates are projected (%s); they are passed through without reprojection", name),
		Record:  -1,
	}, true
}
