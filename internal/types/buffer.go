package types

import (
	"bytes"
	"encoding/hex"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

// Generation tags every selection. It increases on each new selection, clear,
// or format change; results carrying an older generation are discarded.
type Generation uint64

// Upload is one user-selected file: its name and a way to read its bytes.
type Upload struct {
	// Open returns a fresh reader over the file contents.
	Open func() (io.ReadCloser, error)

	// Name is the file name as selected, including its extension.
	Name string
}

// UploadBytes wraps in-memory content as an Upload.
func UploadBytes(name string, data []byte) Upload {
	return Upload{
		Name: name,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// UploadFile wraps a file on disk as an Upload. The file is opened lazily.
func UploadFile(path string) Upload {
	return Upload{
		Name: path,
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}
}

// Digest is a 32-byte BLAKE3 hash of a raw buffer's bytes.
type Digest [32]byte

// DigestOf hashes data.
func DigestOf(data []byte) Digest {
	return Digest(blake3.Sum256(data))
}

// String returns the full hex encoding.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Short returns the first 12 hex characters, enough to tell uploads apart in logs.
func (d Digest) Short() string {
	return hex.EncodeToString(d[:6])
}

// RawBuffer is the loaded content of one file for one generation.
//
// Exactly one of Text or Data is meaningful, depending on Mode.
type RawBuffer struct {
	Name       string
	Text       string
	Data       []byte
	Size       int64
	Generation Generation
	Digest     Digest
	Role       Role
	Mode       Mode
}

// Bytes returns the buffer content regardless of mode.
func (b RawBuffer) Bytes() []byte {
	if b.Mode == ModeText {
		return []byte(b.Text)
	}
	return b.Data
}

// Source describes a buffer that contributed to a published collection.
type Source struct {
	Name   string
	Role   Role
	Size   int64
	Digest Digest
}

// Source returns the descriptor of b.
func (b RawBuffer) Source() Source {
	return Source{Name: b.Name, Role: b.Role, Size: b.Size, Digest: b.Digest}
}

// BufferSet is the completed role set handed to a decoder.
type BufferSet struct {
	// Buffers holds exactly the roles the format requires.
	Buffers map[Role]RawBuffer

	// Sidecars carries optional extra archive members keyed by extension
	// ("cpg", "prj"). Nil when there are none.
	Sidecars map[string][]byte

	Format     Format
	Generation Generation
}

// Get returns the buffer for role.
func (s *BufferSet) Get(role Role) (RawBuffer, bool) {
	b, ok := s.Buffers[role]
	return b, ok
}

// Sources lists the buffers of the set in role order.
func (s *BufferSet) Sources() []Source {
	out := make([]Source, 0, len(s.Buffers))
	for _, role := range []Role{RoleTextPayload, RoleArchive, RoleGeometry, RoleAttributes} {
		if b, ok := s.Buffers[role]; ok {
			out = append(out, b.Source())
		}
	}
	return out
}

// DecodeOptions tunes decoder behavior.
type DecodeOptions struct {
	// StrictKML reports XML parse failures as MalformedXML instead of
	// returning an empty collection with a warning.
	StrictKML bool

	// LenientJSON strips comments and trailing commas before parsing GeoJSON.
	LenientJSON bool
}

// Decoded is a decoder's successful output.
type Decoded struct {
	Collection *FeatureCollection
	Warnings   []Warning
}
