// Package binary provides bounds-checked readers for the fixed-layout headers
// and records of shapefile geometry and attribute tables.
package binary

import (
	"fmt"
	"io"
	"math"

	"github.com/simonhull/geolayer/internal/types"
)

// SafeReader wraps io.ReaderAt with bounds checking and helpful error messages.
type SafeReader struct {
	r    io.ReaderAt
	path string
	size int64
}

// NewSafeReader creates a new SafeReader.
func NewSafeReader(r io.ReaderAt, size int64, path string) *SafeReader {
	return &SafeReader{
		r:    r,
		size: size,
		path: path,
	}
}

// Path returns the file name associated with this reader.
func (sr *SafeReader) Path() string {
	return sr.path
}

// Size returns the number of readable bytes.
func (sr *SafeReader) Size() int64 {
	return sr.size
}

// ReadAt fills b from offset off. Reads past the end return *types.OutOfBoundsError.
func (sr *SafeReader) ReadAt(b []byte, off int64, what string) error {
	if off < 0 || off >= sr.size || off+int64(len(b)) > sr.size {
		return &types.OutOfBoundsError{
			Path:   sr.path,
			What:   what,
			Offset: off,
			Length: len(b),
			Size:   sr.size,
		}
	}

	n, err := sr.r.ReadAt(b, off)
	if err != nil && err != io.EOF {
		return fmt.Errorf("%s: read %s at offset %d: %w", sr.path, what, off, err)
	}
	if n < len(b) {
		return fmt.Errorf("%s: short read for %s at offset %d: got %d bytes, expected %d",
			sr.path, what, off, n, len(b))
	}

	return nil
}

// Bytes reads n bytes at off.
func (sr *SafeReader) Bytes(off int64, n int, what string) ([]byte, error) {
	if n < 0 {
		return nil, &types.OutOfBoundsError{Path: sr.path, What: what, Offset: off, Length: n, Size: sr.size}
	}
	buf := make([]byte, n)
	if n == 0 {
		return buf, nil
	}
	if err := sr.ReadAt(buf, off, what); err != nil {
		return nil, err
	}
	return buf, nil
}

// Reader provides sequential reading with automatic offset tracking.
type Reader struct {
	*SafeReader
	offset int64
}

// NewReader creates a new Reader starting at the given offset.
func NewReader(sr *SafeReader, offset int64) *Reader {
	return &Reader{
		SafeReader: sr,
		offset:     offset,
	}
}

// ReadValue reads a numeric value in the given byte order and advances the offset.
func ReadValue[T uint8 | uint16 | uint32 | uint64](r *Reader, what string, endian Endianness) (T, error) {
	val, err := ReadEndian[T](r.SafeReader, r.offset, what, endian)
	if err != nil {
		var zero T
		return zero, err
	}
	r.offset += int64(sizeOf[T]())
	return val, nil
}

// Float64 reads a little-endian IEEE 754 double and advances the offset.
func (r *Reader) Float64(what string) (float64, error) {
	v, err := ReadFloat64LE(r.SafeReader, r.offset, what)
	if err != nil {
		return 0, err
	}
	r.offset += 8
	return v, nil
}

// ReadBytes reads n bytes and advances the offset.
func (r *Reader) ReadBytes(n int, what string) ([]byte, error) {
	buf, err := r.SafeReader.Bytes(r.offset, n, what)
	if err != nil {
		return nil, err
	}
	r.offset += int64(n)
	return buf, nil
}

// Skip advances the offset by n bytes.
func (r *Reader) Skip(n int64) {
	r.offset += n
}

// Seek moves to an absolute offset.
func (r *Reader) Seek(off int64) {
	r.offset = off
}

// Offset returns the current offset.
func (r *Reader) Offset() int64 {
	return r.offset
}

// Remaining returns the bytes left after the current offset.
func (r *Reader) Remaining() int64 {
	if r.offset >= r.size {
		return 0
	}
	return r.size - r.offset
}

// ChainReader allows chaining multiple reads with deferred error checking.
type ChainReader struct {
	*Reader
	err error
}

// NewChainReader creates a new ChainReader.
func NewChainReader(r *Reader) *ChainReader {
	return &ChainReader{Reader: r}
}

// ReadChained reads a value with deferred error checking.
// If a previous read failed, returns zero value without attempting read.
func ReadChained[T uint8 | uint16 | uint32 | uint64](cr *ChainReader, what string, endian Endianness) T {
	if cr.err != nil {
		var zero T
		return zero
	}

	val, err := ReadValue[T](cr.Reader, what, endian)
	if err != nil {
		cr.err = err
		var zero T
		return zero
	}

	return val
}

// Int32LE reads a little-endian signed 32-bit value.
func (cr *ChainReader) Int32LE(what string) int32 {
	return int32(ReadChained[uint32](cr, what, LittleEndian))
}

// Int32BE reads a big-endian signed 32-bit value.
func (cr *ChainReader) Int32BE(what string) int32 {
	return int32(ReadChained[uint32](cr, what, BigEndian))
}

// Float64 reads a little-endian double, accumulating any error.
func (cr *ChainReader) Float64(what string) float64 {
	if cr.err != nil {
		return 0
	}
	v, err := cr.Reader.Float64(what)
	if err != nil {
		cr.err = err
		return 0
	}
	return v
}

// Bytes reads n raw bytes, accumulating any error.
func (cr *ChainReader) Bytes(n int, what string) []byte {
	if cr.err != nil {
		return nil
	}
	buf, err := cr.Reader.ReadBytes(n, what)
	if err != nil {
		cr.err = err
		return nil
	}
	return buf
}

// Error returns the accumulated error, if any.
func (cr *ChainReader) Error() error {
	return cr.err
}

// ReadFloat64LE reads a little-endian IEEE 754 double at off.
func ReadFloat64LE(sr *SafeReader, off int64, what string) (float64, error) {
	bits, err := ReadLE[uint64](sr, off, what)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(bits), nil
}

func sizeOf[T uint8 | uint16 | uint32 | uint64]() int {
	var zero T
	switch any(zero).(type) {
	case uint8:
		return 1
	case uint16:
		return 2
	case uint32:
		return 4
	default:
		return 8
	}
}
