// Package registry maps declared formats to their decoders.
package registry

import (
	"context"
	"sort"

	"github.com/simonhull/geolayer/internal/types"
)

// Decoder is the interface all format decoders implement.
type Decoder interface {
	// Decode turns a completed buffer set into a feature collection.
	// Failures are returned as *types.PipelineError of the decoder's kind.
	Decode(ctx context.Context, set *types.BufferSet, opts types.DecodeOptions) (*types.Decoded, error)
}

// DecoderFunc adapts a plain function to Decoder.
type DecoderFunc func(ctx context.Context, set *types.BufferSet, opts types.DecodeOptions) (*types.Decoded, error)

// Decode calls f.
func (f DecoderFunc) Decode(ctx context.Context, set *types.BufferSet, opts types.DecodeOptions) (*types.Decoded, error) {
	return f(ctx, set, opts)
}

// decoders maps formats to their decoders.
var decoders = make(map[types.Format]Decoder)

// Register registers a decoder for a format.
// This is called by format packages during initialization (init functions).
func Register(format types.Format, d Decoder) {
	decoders[format] = d
}

// Get returns the decoder for a given format.
// Returns nil if no decoder is registered for the format.
func Get(format types.Format) Decoder {
	return decoders[format]
}

// Registered lists the formats that have a decoder, in ascending order.
func Registered() []types.Format {
	out := make([]types.Format, 0, len(decoders))
	for f := range decoders {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
