package archive

import (
	"bytes"
	"errors"
	"testing"

	"github.com/klauspost/compress/zip"

	"github.com/simonhull/geolayer/internal/types"
)

type entry struct {
	name string
	data string
}

func buildZip(t *testing.T, entries ...entry) types.RawBuffer {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.name)
		if err != nil {
			t.Fatalf("create %s: %v", e.name, err)
		}
		if _, err := w.Write([]byte(e.data)); err != nil {
			t.Fatalf("write %s: %v", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return types.RawBuffer{Name: "bundle.zip", Generation: 7, Role: types.RoleArchive, Data: buf.Bytes(), Size: int64(buf.Len())}
}

func TestExtract_Pair(t *testing.T) {
	src := buildZip(t,
		entry{"roads.shp", "SHP"},
		entry{"roads.dbf", "DBF"},
		entry{"readme.txt", "ignored"},
	)

	m, err := New(0).Extract(src)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if string(m.Geometry.Data) != "SHP" || string(m.Attributes.Data) != "DBF" {
		t.Errorf("extracted %q / %q", m.Geometry.Data, m.Attributes.Data)
	}
	if m.Geometry.Generation != 7 || m.Attributes.Generation != 7 {
		t.Error("members should inherit the archive generation")
	}
	if m.Geometry.Role != types.RoleGeometry || m.Attributes.Role != types.RoleAttributes {
		t.Error("members should carry their roles")
	}
	if m.Geometry.Name != "bundle.zip/roads.shp" {
		t.Errorf("Name = %q", m.Geometry.Name)
	}
	if len(m.Buffers()) != 2 {
		t.Errorf("Buffers() = %d entries, want 2", len(m.Buffers()))
	}
	if m.Sidecars != nil {
		t.Errorf("Sidecars = %v, want nil", m.Sidecars)
	}
}

func TestExtract_FirstMatchWins(t *testing.T) {
	src := buildZip(t,
		entry{"data/", ""},
		entry{"data/A.SHP", "first-shp"},
		entry{"other/b.shp", "second-shp"},
		entry{"data/a.Dbf", "first-dbf"},
		entry{"b.dbf", "second-dbf"},
		entry{"a.cpg", "UTF-8"},
		entry{"b.cpg", "LATIN1"},
		entry{"a.prj", `GEOGCS["WGS 84"]`},
	)

	m, err := New(0).Extract(src)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if string(m.Geometry.Data) != "first-shp" || string(m.Attributes.Data) != "first-dbf" {
		t.Errorf("extracted %q / %q", m.Geometry.Data, m.Attributes.Data)
	}
	if string(m.Sidecars["cpg"]) != "UTF-8" {
		t.Errorf("cpg sidecar = %q", m.Sidecars["cpg"])
	}
	if string(m.Sidecars["prj"]) != `GEOGCS["WGS 84"]` {
		t.Errorf("prj sidecar = %q", m.Sidecars["prj"])
	}
}

func TestExtract_Incomplete(t *testing.T) {
	tests := []struct {
		name   string
		src    types.RawBuffer
		reason string
	}{
		{"no dbf", buildZip(t, entry{"a.shp", "x"}, entry{"a.shx", "x"}), "no .dbf member"},
		{"no shp", buildZip(t, entry{"a.dbf", "x"}), "no .shp member"},
		{"empty", buildZip(t), "no .shp or .dbf member"},
		{"directory named like shp", buildZip(t, entry{"a.shp/", ""}, entry{"a.dbf", "x"}), "no .shp member"},
		{"not a zip", types.RawBuffer{Name: "bad.zip", Data: []byte("plain text")}, "not a readable zip archive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(0).Extract(tt.src)
			var pe *types.PipelineError
			if !errors.As(err, &pe) || pe.Kind != types.KindArchiveIncomplete {
				t.Fatalf("error = %v, want ArchiveIncomplete", err)
			}
			if pe.Reason != tt.reason {
				t.Errorf("reason = %q, want %q", pe.Reason, tt.reason)
			}
		})
	}
}

func TestExtract_EntryLimit(t *testing.T) {
	src := buildZip(t,
		entry{"a.shp", string(bytes.Repeat([]byte{0}, 64))},
		entry{"a.dbf", "x"},
	)

	_, err := New(32).Extract(src)
	if !errors.Is(err, types.ErrReadFailure) || !errors.Is(err, ErrEntryTooLarge) {
		t.Fatalf("error = %v, want ReadFailure wrapping ErrEntryTooLarge", err)
	}

	if _, err := New(64).Extract(src); err != nil {
		t.Errorf("member at the limit should be accepted: %v", err)
	}
}
