package shapefile

import (
	"bytes"
	"fmt"

	"github.com/simonhull/geolayer/internal/binary"
	"github.com/simonhull/geolayer/internal/types"
)

const (
	headerSize = 100
	fileCode   = 9994
)

// Shape types.
const (
	shapeNull        = 0
	shapePoint       = 1
	shapePolyLine    = 3
	shapePolygon     = 5
	shapeMultiPoint  = 8
	shapePointZ      = 11
	shapePolyLineZ   = 13
	shapePolygonZ    = 15
	shapeMultiPointZ = 18
	shapePointM      = 21
	shapePolyLineM   = 23
	shapePolygonM    = 25
	shapeMultiPointM = 28
	shapeMultiPatch  = 31
)

// header is the fixed 100-byte main file header.
type header struct {
	bbox      [4]float64
	length    int64
	version   uint32
	shapeType uint32
}

// record is one decoded main file record. A nil geometry means a null shape
// or an unsupported one reported through warn.
type record struct {
	geometry *types.Geometry
	warn     string
	number   int32
}

func readHeader(sr *binary.SafeReader) (header, error) {
	var h header
	if sr.Size() < headerSize {
		return h, &types.CorruptedFileError{Path: sr.Path(), Offset: 0,
			Reason: fmt.Sprintf("file is %d bytes, shorter than the %d-byte header", sr.Size(), headerSize)}
	}

	cr := binary.NewChainReader(binary.NewReader(sr, 0))
	code := binary.ReadChained[uint32](cr, "file code", binary.BigEndian)
	cr.Skip(20)
	words := binary.ReadChained[uint32](cr, "file length", binary.BigEndian)
	h.version = binary.ReadChained[uint32](cr, "version", binary.LittleEndian)
	h.shapeType = binary.ReadChained[uint32](cr, "shape type", binary.LittleEndian)
	for i := range h.bbox {
		h.bbox[i] = cr.Float64("bounding box")
	}
	if err := cr.Error(); err != nil {
		return h, err
	}

	if code != fileCode {
		return h, &types.CorruptedFileError{Path: sr.Path(), Offset: 0,
			Reason: fmt.Sprintf("file code %d, want %d", code, fileCode)}
	}
	h.length = int64(words) * 2
	return h, nil
}

// recordIter walks main file records until the bytes run out.
type recordIter struct {
	sr  *binary.SafeReader
	r   *binary.Reader
	end int64
}

func newRecordIter(sr *binary.SafeReader, h header) *recordIter {
	return &recordIter{sr: sr, r: binary.NewReader(sr, headerSize), end: recordsEnd(sr, h)}
}

// recordsEnd is the declared file length when it is plausible, else the
// number of bytes actually present.
func recordsEnd(sr *binary.SafeReader, h header) int64 {
	end := sr.Size()
	if h.length >= headerSize && h.length < end {
		end = h.length
	}
	return end
}

func (it *recordIter) more() bool {
	return it.r.Offset() < it.end
}

func (it *recordIter) next() (record, error) {
	number, content, err := it.raw()
	if err != nil {
		return record{}, err
	}

	rec := record{number: number}
	rec.geometry, rec.warn, err = parseShape(content, fmt.Sprintf("%s record %d", it.sr.Path(), number))
	if err != nil {
		return record{}, err
	}
	return rec, nil
}

// raw reads the next record header and its undecoded content.
func (it *recordIter) raw() (int32, []byte, error) {
	start := it.r.Offset()
	if it.end-start < 8 {
		return 0, nil, &types.CorruptedFileError{Path: it.sr.Path(), Offset: start,
			Reason: fmt.Sprintf("truncated record header (%d trailing bytes)", it.end-start)}
	}

	cr := binary.NewChainReader(it.r)
	number := cr.Int32BE("record number")
	words := cr.Int32BE("content length")
	if err := cr.Error(); err != nil {
		return 0, nil, err
	}

	size := int64(words) * 2
	if words < 2 || start+8+size > it.end {
		return 0, nil, &types.CorruptedFileError{Path: it.sr.Path(), Offset: start,
			Reason: fmt.Sprintf("record %d declares %d content bytes, %d available", number, size, it.end-start-8)}
	}

	content, err := it.r.ReadBytes(int(size), "record content")
	if err != nil {
		return 0, nil, err
	}
	return number, content, nil
}

// parseShape decodes one record's content.
func parseShape(content []byte, path string) (*types.Geometry, string, error) {
	sr := binary.NewSafeReader(bytes.NewReader(content), int64(len(content)), path)
	cr := binary.NewChainReader(binary.NewReader(sr, 0))
	st := cr.Int32LE("shape type")
	if err := cr.Error(); err != nil {
		return nil, "", err
	}

	switch st {
	case shapeNull:
		return nil, "", nil
	case shapePoint, shapePointZ, shapePointM:
		return parsePoint(cr, st == shapePointZ)
	case shapeMultiPoint, shapeMultiPointZ, shapeMultiPointM:
		return parseMultiPoint(cr, st == shapeMultiPointZ)
	case shapePolyLine, shapePolyLineZ, shapePolyLineM:
		return parseParts(cr, st == shapePolyLineZ, false)
	case shapePolygon, shapePolygonZ, shapePolygonM:
		return parseParts(cr, st == shapePolygonZ, true)
	case shapeMultiPatch:
		return nil, "MultiPatch geometry is not supported", nil
	default:
		return nil, "", &types.CorruptedFileError{Path: path, Offset: 0,
			Reason: fmt.Sprintf("unknown shape type %d", st)}
	}
}

func parsePoint(cr *binary.ChainReader, hasZ bool) (*types.Geometry, string, error) {
	p := types.Position{cr.Float64("x"), cr.Float64("y")}
	if hasZ {
		p = append(p, cr.Float64("z"))
	}
	if err := cr.Error(); err != nil {
		return nil, "", err
	}
	return types.PointGeometry(p), "", nil
}

func parseMultiPoint(cr *binary.ChainReader, hasZ bool) (*types.Geometry, string, error) {
	cr.Skip(32)
	n := cr.Int32LE("point count")
	if err := cr.Error(); err != nil {
		return nil, "", err
	}
	if err := checkCount(cr, int64(n), 16, "point count"); err != nil {
		return nil, "", err
	}

	pts := readPoints(cr, int(n), hasZ)
	if err := cr.Error(); err != nil {
		return nil, "", err
	}
	return &types.Geometry{Type: types.GeometryMultiPoint, Coordinates: pts}, "", nil
}

func parseParts(cr *binary.ChainReader, hasZ, polygon bool) (*types.Geometry, string, error) {
	cr.Skip(32)
	numParts := cr.Int32LE("part count")
	numPoints := cr.Int32LE("point count")
	if err := cr.Error(); err != nil {
		return nil, "", err
	}
	if err := checkCount(cr, int64(numParts), 4, "part count"); err != nil {
		return nil, "", err
	}
	if err := checkCount(cr, int64(numPoints), 16, "point count"); err != nil {
		return nil, "", err
	}

	starts := make([]int, numParts)
	for i := range starts {
		starts[i] = int(cr.Int32LE("part index"))
	}
	pts := readPoints(cr, int(numPoints), hasZ)
	if err := cr.Error(); err != nil {
		return nil, "", err
	}

	parts, err := split(pts, starts)
	if err != nil {
		return nil, "", &types.CorruptedFileError{Path: cr.Path(), Offset: cr.Offset(), Reason: err.Error()}
	}
	if len(parts) == 0 {
		return nil, "", nil
	}

	if polygon {
		return assemblePolygon(parts), "", nil
	}
	if len(parts) == 1 {
		return types.LineGeometry(parts[0]), "", nil
	}
	return &types.Geometry{Type: types.GeometryMultiLineString, Coordinates: parts}, "", nil
}

// readPoints reads n XY pairs, then the Z range and Z values when hasZ is set.
// Trailing M values are ignored.
func readPoints(cr *binary.ChainReader, n int, hasZ bool) []types.Position {
	pts := make([]types.Position, n)
	for i := range pts {
		pts[i] = types.Position{cr.Float64("x"), cr.Float64("y")}
	}
	if hasZ {
		cr.Skip(16)
		for i := range pts {
			pts[i] = append(pts[i], cr.Float64("z"))
		}
	}
	return pts
}

// checkCount rejects negative counts and counts that cannot fit in what remains.
func checkCount(cr *binary.ChainReader, n, unit int64, what string) error {
	if n < 0 || n*unit > cr.Remaining() {
		return &types.CorruptedFileError{Path: cr.Path(), Offset: cr.Offset(),
			Reason: fmt.Sprintf("%s %d does not fit in %d remaining bytes", what, n, cr.Remaining())}
	}
	return nil
}

func split(pts []types.Position, starts []int) ([][]types.Position, error) {
	parts := make([][]types.Position, 0, len(starts))
	for i, s := range starts {
		e := len(pts)
		if i+1 < len(starts) {
			e = starts[i+1]
		}
		if s < 0 || s > e || e > len(pts) {
			return nil, fmt.Errorf("part %d spans points %d..%d of %d", i, s, e, len(pts))
		}
		if s == e {
			continue
		}
		parts = append(parts, pts[s:e])
	}
	return parts, nil
}
