package shapefile

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/simonhull/geolayer/internal/binary"
	"github.com/simonhull/geolayer/internal/types"
)

// RecordInfo locates one main file record.
type RecordInfo struct {
	Offset    int64
	Length    int64
	Number    int32
	ShapeType int32
}

// Layout is a .shp header plus the position of every record.
type Layout struct {
	Records   []RecordInfo
	BBox      [4]float64
	Length    int64
	Version   uint32
	ShapeType int32
}

// Inspect walks the record headers of a .shp main file without decoding
// geometries. Records read before a corrupt one are returned with the error.
func Inspect(data []byte, name string) (*Layout, error) {
	sr := binary.NewSafeReader(bytes.NewReader(data), int64(len(data)), name)
	h, err := readHeader(sr)
	if err != nil {
		return nil, err
	}

	l := &Layout{BBox: h.bbox, Length: h.length, Version: h.version, ShapeType: int32(h.shapeType)}
	end := recordsEnd(sr, h)
	for off := int64(headerSize); off < end; {
		if end-off < 12 {
			return l, &types.CorruptedFileError{Path: name, Offset: off,
				Reason: fmt.Sprintf("truncated record header (%d trailing bytes)", end-off)}
		}
		number, err := binary.ReadBE[uint32](sr, off, "record number")
		if err != nil {
			return l, err
		}
		words, err := binary.ReadBE[uint32](sr, off+4, "content length")
		if err != nil {
			return l, err
		}
		size := int64(words) * 2
		if words < 2 || off+8+size > end {
			return l, &types.CorruptedFileError{Path: name, Offset: off,
				Reason: fmt.Sprintf("record %d declares %d content bytes, %d available", number, size, end-off-8)}
		}
		st, err := binary.ReadLE[uint32](sr, off+8, "shape type")
		if err != nil {
			return l, err
		}

		l.Records = append(l.Records, RecordInfo{
			Offset:    off,
			Length:    size,
			Number:    int32(number),
			ShapeType: int32(st),
		})
		off += 8 + size
	}
	return l, nil
}

// ShapeTypeName returns the name of a shape type code.
func ShapeTypeName(code int32) string {
	switch code {
	case shapeNull:
		return "Null"
	case shapePoint:
		return "Point"
	case shapePolyLine:
		return "PolyLine"
	case shapePolygon:
		return "Polygon"
	case shapeMultiPoint:
		return "MultiPoint"
	case shapePointZ:
		return "PointZ"
	case shapePolyLineZ:
		return "PolyLineZ"
	case shapePolygonZ:
		return "PolygonZ"
	case shapeMultiPointZ:
		return "MultiPointZ"
	case shapePointM:
		return "PointM"
	case shapePolyLineM:
		return "PolyLineM"
	case shapePolygonM:
		return "PolygonM"
	case shapeMultiPointM:
		return "MultiPointM"
	case shapeMultiPatch:
		return "MultiPatch"
	default:
		return "Unknown(" + strconv.Itoa(int(code)) + ")"
	}
}
