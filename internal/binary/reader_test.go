package binary

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/simonhull/geolayer/internal/types"
)

// mockReader implements io.ReaderAt for testing.
type mockReader struct {
	data []byte
}

func (m *mockReader) ReadAt(p []byte, off int64) (n int, err error) {
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n = copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func TestSafeReader_ReadAt_Success(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04}
	sr := NewSafeReader(&mockReader{data: data}, int64(len(data)), "roads.shp")

	buf := make([]byte, 2)
	if err := sr.ReadAt(buf, 0, "test read"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf[0] != 0x01 || buf[1] != 0x02 {
		t.Errorf("expected [0x01, 0x02], got [0x%02x, 0x%02x]", buf[0], buf[1])
	}
}

func TestSafeReader_ReadAt_OutOfBounds(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04}
	sr := NewSafeReader(&mockReader{data: data}, int64(len(data)), "roads.shp")

	tests := []struct {
		name   string
		offset int64
		length int
	}{
		{"offset past end", 10, 2},
		{"read crosses end", 3, 2},
		{"negative offset", -1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := sr.ReadAt(make([]byte, tt.length), tt.offset, "record header")
			var oob *types.OutOfBoundsError
			if !errors.As(err, &oob) {
				t.Fatalf("expected *OutOfBoundsError, got %v", err)
			}
			if oob.Offset != tt.offset || oob.Size != 4 {
				t.Errorf("unexpected bounds detail: %+v", oob)
			}
			msg := err.Error()
			if !strings.Contains(msg, "roads.shp") || !strings.Contains(msg, "record header") {
				t.Errorf("error should name file and field: %v", msg)
			}
		})
	}
}

func TestSafeReader_Bytes(t *testing.T) {
	data := []byte("ABCDEF")
	sr := NewSafeReader(bytes.NewReader(data), int64(len(data)), "t")

	got, err := sr.Bytes(2, 3, "middle")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != "CDE" {
		t.Errorf("Bytes = %q, want CDE", got)
	}

	empty, err := sr.Bytes(6, 0, "nothing")
	if err != nil || len(empty) != 0 {
		t.Errorf("zero-length read = %q, %v", empty, err)
	}

	if _, err := sr.Bytes(0, -1, "negative"); err == nil {
		t.Error("expected error for negative length")
	}
}

func TestReader_Sequential(t *testing.T) {
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.BigEndian, uint32(7))
	binary.Write(buf, binary.BigEndian, uint32(10))
	binary.Write(buf, binary.LittleEndian, uint32(1))
	binary.Write(buf, binary.LittleEndian, 12.5)
	data := buf.Bytes()

	r := NewReader(NewSafeReader(bytes.NewReader(data), int64(len(data)), "seq.shp"), 0)

	num, err := ReadValue[uint32](r, "record number", BigEndian)
	if err != nil || num != 7 {
		t.Fatalf("record number = %d, %v", num, err)
	}
	length, err := ReadValue[uint32](r, "content length", BigEndian)
	if err != nil || length != 10 {
		t.Fatalf("content length = %d, %v", length, err)
	}
	shape, err := ReadValue[uint32](r, "shape type", LittleEndian)
	if err != nil || shape != 1 {
		t.Fatalf("shape type = %d, %v", shape, err)
	}
	x, err := r.Float64("x")
	if err != nil || x != 12.5 {
		t.Fatalf("x = %v, %v", x, err)
	}

	if r.Offset() != 20 {
		t.Errorf("expected offset 20, got %d", r.Offset())
	}
	if r.Remaining() != 0 {
		t.Errorf("expected 0 remaining, got %d", r.Remaining())
	}
}

func TestReader_SkipSeek(t *testing.T) {
	data := make([]byte, 100)
	r := NewReader(NewSafeReader(&mockReader{data: data}, int64(len(data)), "t"), 10)

	r.Skip(20)
	if r.Offset() != 30 {
		t.Errorf("expected offset 30 after skip, got %d", r.Offset())
	}
	if r.Remaining() != 70 {
		t.Errorf("expected 70 remaining, got %d", r.Remaining())
	}

	r.Seek(200)
	if r.Remaining() != 0 {
		t.Errorf("expected 0 remaining past end, got %d", r.Remaining())
	}
}

func TestReader_ReadBytes(t *testing.T) {
	data := []byte("NAME\x00\x00\x00\x00\x00\x00\x00C")
	r := NewReader(NewSafeReader(&mockReader{data: data}, int64(len(data)), "t.dbf"), 0)

	name, err := r.ReadBytes(11, "field name")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(bytes.TrimRight(name, "\x00")) != "NAME" {
		t.Errorf("field name = %q", name)
	}
	if r.Offset() != 11 {
		t.Errorf("expected offset 11, got %d", r.Offset())
	}
}

func TestChainReader_Success(t *testing.T) {
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.BigEndian, int32(-2))
	binary.Write(buf, binary.LittleEndian, int32(-3))
	binary.Write(buf, binary.LittleEndian, 1.5)
	buf.WriteString("xy")
	data := buf.Bytes()

	cr := NewChainReader(NewReader(NewSafeReader(bytes.NewReader(data), int64(len(data)), "t"), 0))

	be := cr.Int32BE("be")
	le := cr.Int32LE("le")
	f := cr.Float64("double")
	raw := cr.Bytes(2, "tail")

	if err := cr.Error(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if be != -2 || le != -3 || f != 1.5 || string(raw) != "xy" {
		t.Errorf("unexpected values: %d %d %v %q", be, le, f, raw)
	}
}

func TestChainReader_ErrorAccumulation(t *testing.T) {
	data := []byte{0x01, 0x02}
	cr := NewChainReader(NewReader(NewSafeReader(&mockReader{data: data}, int64(len(data)), "t.shp"), 0))

	_ = ReadChained[uint8](cr, "first", LittleEndian)
	_ = ReadChained[uint8](cr, "second", LittleEndian)
	_ = cr.Int32LE("third")

	first := cr.Error()
	if first == nil {
		t.Fatal("expected error, got nil")
	}

	if v := cr.Float64("after failure"); v != 0 {
		t.Errorf("reads after failure should return zero, got %v", v)
	}
	if b := cr.Bytes(1, "after failure"); b != nil {
		t.Errorf("reads after failure should return nil, got %v", b)
	}
	if cr.Error() != first {
		t.Error("first error should persist")
	}
}

func BenchmarkReader_Sequential(b *testing.B) {
	data := make([]byte, 1024*1024)
	sr := NewSafeReader(&mockReader{data: data}, int64(len(data)), "bench.shp")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r := NewReader(sr, 0)
		for j := 0; j < 1000; j++ {
			_, _ = r.Float64("x")
		}
	}
}
