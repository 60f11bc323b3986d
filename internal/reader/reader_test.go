package reader

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/simonhull/geolayer/internal/types"
	"github.com/simonhull/geolayer/internal/validate"
)

func item(name string, data []byte, role types.Role) validate.Item {
	return validate.Item{Upload: types.UploadBytes(name, data), Role: role, Mode: role.Mode()}
}

func TestRead_Text(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{"plain", []byte(`{"type":"FeatureCollection"}`), `{"type":"FeatureCollection"}`},
		{"bom stripped", append([]byte{0xEF, 0xBB, 0xBF}, "<kml/>"...), "<kml/>"},
		{"invalid utf8", []byte("caf\xe9"), "caf\uFFFD"},
		{"empty", nil, ""},
	}

	r := New(0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := r.Read(context.Background(), 3, item("a.json", tt.in, types.RoleTextPayload))
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if buf.Text != tt.want {
				t.Errorf("Text = %q, want %q", buf.Text, tt.want)
			}
			if buf.Data != nil {
				t.Error("text buffers should not carry Data")
			}
			if buf.Generation != 3 || buf.Role != types.RoleTextPayload || buf.Mode != types.ModeText {
				t.Errorf("unexpected tags: %+v", buf)
			}
			if buf.Size != int64(len(tt.in)) {
				t.Errorf("Size = %d, want %d", buf.Size, len(tt.in))
			}
		})
	}
}

func TestRead_Binary(t *testing.T) {
	data := []byte{0x00, 0x00, 0x27, 0x0A, 0xFF}
	buf, err := New(0).Read(context.Background(), 1, item("a.shp", data, types.RoleGeometry))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(buf.Data) != string(data) || buf.Text != "" {
		t.Errorf("binary buffer = %+v", buf)
	}
	if buf.Digest != types.DigestOf(data) {
		t.Error("digest should hash the raw bytes")
	}
}

func TestRead_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lines.kml")
	if err := os.WriteFile(path, []byte("<kml></kml>"), 0o644); err != nil {
		t.Fatal(err)
	}
	it := validate.Item{Upload: types.UploadFile(path), Role: types.RoleTextPayload, Mode: types.ModeText}

	buf, err := New(0).Read(context.Background(), 1, it)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if buf.Text != "<kml></kml>" {
		t.Errorf("Text = %q", buf.Text)
	}
}

func TestRead_Failures(t *testing.T) {
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	openErr := errors.New("permission denied")
	tests := []struct {
		name  string
		ctx   context.Context
		r     *Reader
		it    validate.Item
		cause error
	}{
		{
			name: "open error",
			ctx:  context.Background(),
			r:    New(0),
			it: validate.Item{Upload: types.Upload{Name: "a.dbf", Open: func() (io.ReadCloser, error) {
				return nil, openErr
			}}, Role: types.RoleAttributes},
			cause: openErr,
		},
		{
			name:  "cancelled",
			ctx:   cancelled,
			r:     New(0),
			it:    item("a.shp", []byte{1}, types.RoleGeometry),
			cause: context.Canceled,
		},
		{
			name:  "too large",
			ctx:   context.Background(),
			r:     New(4),
			it:    item("a.json", []byte("12345"), types.RoleTextPayload),
			cause: ErrTooLarge,
		},
		{
			name: "nil open",
			ctx:  context.Background(),
			r:    New(0),
			it:   validate.Item{Upload: types.Upload{Name: "a.kml"}, Role: types.RoleTextPayload},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.r.Read(tt.ctx, 1, tt.it)
			if !errors.Is(err, types.ErrReadFailure) {
				t.Fatalf("error = %v, want ReadFailure", err)
			}
			if tt.cause != nil && !errors.Is(err, tt.cause) {
				t.Errorf("error = %v, want cause %v", err, tt.cause)
			}
			if !strings.Contains(err.Error(), tt.it.Upload.Name) {
				t.Errorf("error should name the file: %v", err)
			}
		})
	}
}

func TestRead_SizeLimitExact(t *testing.T) {
	if _, err := New(5).Read(context.Background(), 1, item("a.json", []byte("12345"), types.RoleTextPayload)); err != nil {
		t.Errorf("file at the limit should be accepted: %v", err)
	}
}
