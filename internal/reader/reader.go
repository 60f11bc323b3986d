// Package reader loads selected uploads into generation-tagged raw buffers.
package reader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/simonhull/geolayer/internal/types"
	"github.com/simonhull/geolayer/internal/validate"
)

var bom = []byte{0xEF, 0xBB, 0xBF}

// Reader reads one planned upload at a time. It is safe for concurrent use.
type Reader struct {
	// MaxSize caps the bytes read from a single upload. Zero means no limit.
	MaxSize int64
}

// New returns a Reader with the given size limit.
func New(maxSize int64) *Reader {
	return &Reader{MaxSize: maxSize}
}

// Read loads item and tags the result with gen.
//
// Text mode strips a UTF-8 byte order mark and replaces invalid sequences
// with U+FFFD. Every failure, including cancellation of ctx, is returned as
// a ReadFailure *types.PipelineError.
func (r *Reader) Read(ctx context.Context, gen types.Generation, item validate.Item) (types.RawBuffer, error) {
	name := item.Upload.Name
	if err := ctx.Err(); err != nil {
		return types.RawBuffer{}, failure(name, "read cancelled", err)
	}
	if item.Upload.Open == nil {
		return types.RawBuffer{}, failure(name, "upload has no content", nil)
	}

	rc, err := item.Upload.Open()
	if err != nil {
		return types.RawBuffer{}, failure(name, "open", err)
	}
	defer rc.Close()

	data, err := readAll(ctx, rc, r.MaxSize)
	if err != nil {
		return types.RawBuffer{}, failure(name, "", err)
	}

	buf := types.RawBuffer{
		Generation: gen,
		Role:       item.Role,
		Mode:       item.Mode,
		Name:       name,
		Size:       int64(len(data)),
		Digest:     types.DigestOf(data),
	}
	if item.Mode == types.ModeText {
		buf.Text = DecodeText(data)
	} else {
		buf.Data = data
	}
	return buf, nil
}

// DecodeText converts raw bytes to a string the way a browser file reader
// does for UTF-8: a leading BOM is dropped and invalid sequences become U+FFFD.
func DecodeText(data []byte) string {
	data = bytes.TrimPrefix(data, bom)
	if utf8.Valid(data) {
		return string(data)
	}
	return strings.ToValidUTF8(string(data), "\uFFFD")
}

// ErrTooLarge is wrapped when an upload exceeds the configured size limit.
var ErrTooLarge = errors.New("file exceeds size limit")

func readAll(ctx context.Context, r io.Reader, limit int64) ([]byte, error) {
	src := io.Reader(&ctxReader{ctx: ctx, r: r})
	if limit > 0 {
		src = io.LimitReader(src, limit+1)
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, fmt.Errorf("%w (%d bytes)", ErrTooLarge, limit)
	}
	return data, nil
}

// ctxReader stops reading once its context is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

func failure(name, reason string, err error) error {
	return types.NewError(types.KindReadFailure, name, reason, err)
}
