// Package archive expands a zipped shapefile into its geometry and attribute members.
package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/simonhull/geolayer/internal/types"
)

// ErrEntryTooLarge is wrapped when a member decompresses past the size limit.
var ErrEntryTooLarge = errors.New("archive member exceeds size limit")

// Members holds the extracted shapefile pair, tagged with the archive's generation.
type Members struct {
	// Sidecars maps "cpg" and "prj" to the first such member, when present.
	Sidecars   map[string][]byte
	Geometry   types.RawBuffer
	Attributes types.RawBuffer
}

// Buffers returns the pair keyed by role.
func (m *Members) Buffers() map[types.Role]types.RawBuffer {
	return map[types.Role]types.RawBuffer{
		types.RoleGeometry:   m.Geometry,
		types.RoleAttributes: m.Attributes,
	}
}

// Extractor opens shapefile archives held in memory.
type Extractor struct {
	// MaxEntrySize caps the decompressed size of a single member. Zero means no limit.
	MaxEntrySize int64
}

// New returns an Extractor with the given per-member limit.
func New(maxEntrySize int64) *Extractor {
	return &Extractor{MaxEntrySize: maxEntrySize}
}

// Extract picks the first .shp and the first .dbf member of src, in archive
// order, matched by base name without regard to case. Directories and every
// other member are ignored.
//
// A missing member or an unreadable archive is ArchiveIncomplete; a member
// over the size limit is ReadFailure.
func (e *Extractor) Extract(src types.RawBuffer) (*Members, error) {
	data := src.Bytes()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, types.NewError(types.KindArchiveIncomplete, src.Name, "not a readable zip archive", err)
	}

	var shp, dbf *zip.File
	sidecars := make(map[string]*zip.File)
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || strings.HasSuffix(f.Name, "/") {
			continue
		}
		switch ext := types.Ext(path.Base(f.Name)); ext {
		case "shp":
			if shp == nil {
				shp = f
			}
		case "dbf":
			if dbf == nil {
				dbf = f
			}
		case "cpg", "prj":
			if _, ok := sidecars[ext]; !ok {
				sidecars[ext] = f
			}
		}
	}

	switch {
	case shp == nil && dbf == nil:
		return nil, types.NewError(types.KindArchiveIncomplete, src.Name, "no .shp or .dbf member", nil)
	case shp == nil:
		return nil, types.NewError(types.KindArchiveIncomplete, src.Name, "no .shp member", nil)
	case dbf == nil:
		return nil, types.NewError(types.KindArchiveIncomplete, src.Name, "no .dbf member", nil)
	}

	m := &Members{}
	if m.Geometry, err = e.member(src, shp, types.RoleGeometry); err != nil {
		return nil, err
	}
	if m.Attributes, err = e.member(src, dbf, types.RoleAttributes); err != nil {
		return nil, err
	}
	for ext, f := range sidecars {
		b, err := e.read(src.Name, f)
		if err != nil {
			return nil, err
		}
		if m.Sidecars == nil {
			m.Sidecars = make(map[string][]byte, len(sidecars))
		}
		m.Sidecars[ext] = b
	}
	return m, nil
}

func (e *Extractor) member(src types.RawBuffer, f *zip.File, role types.Role) (types.RawBuffer, error) {
	data, err := e.read(src.Name, f)
	if err != nil {
		return types.RawBuffer{}, err
	}
	return types.RawBuffer{
		Generation: src.Generation,
		Role:       role,
		Mode:       types.ModeBinary,
		Name:       src.Name + "/" + f.Name,
		Data:       data,
		Size:       int64(len(data)),
		Digest:     types.DigestOf(data),
	}, nil
}

func (e *Extractor) read(archiveName string, f *zip.File) ([]byte, error) {
	name := archiveName + "/" + f.Name
	if e.MaxEntrySize > 0 && f.UncompressedSize64 > uint64(e.MaxEntrySize) {
		return nil, types.NewError(types.KindReadFailure, name, "", fmt.Errorf("%w (%d bytes)", ErrEntryTooLarge, e.MaxEntrySize))
	}

	rc, err := f.Open()
	if err != nil {
		return nil, types.NewError(types.KindArchiveIncomplete, name, "open member", err)
	}
	defer rc.Close()

	r := io.Reader(rc)
	if e.MaxEntrySize > 0 {
		r = io.LimitReader(rc, e.MaxEntrySize+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, types.NewError(types.KindArchiveIncomplete, name, "read member", err)
	}
	if e.MaxEntrySize > 0 && int64(len(data)) > e.MaxEntrySize {
		return nil, types.NewError(types.KindReadFailure, name, "", fmt.Errorf("%w (%d bytes)", ErrEntryTooLarge, e.MaxEntrySize))
	}
	return data, nil
}
