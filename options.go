package geolayer

import "log/slog"

// Option configures a Pipeline.
//
// Options use the functional options pattern for clean, extensible APIs.
//
// Example:
//
//	p := geolayer.New(
//	    geolayer.WithLogger(logger),
//	    geolayer.WithStrictKML(),
//	)
type Option func(*options)

// options holds pipeline configuration.
type options struct {
	logger          *slog.Logger
	listener        func(Status)
	inputReset      func(error)
	maxFileSize     int64 // 0 = no limit
	maxArchiveEntry int64 // 0 = no limit
	strictKML       bool
	lenientJSON     bool
}

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		logger: slog.New(slog.DiscardHandler),
	}
}

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithListener registers fn to receive every state transition, in order.
//
// fn runs on a notifier goroutine, outside the pipeline's locks, and may call
// any Pipeline method, including Wait on the generation it was told about.
// Calls are never concurrent. Transitions that happen while fn runs are
// delivered after it returns.
//
// Example:
//
//	p := geolayer.New(geolayer.WithListener(func(s geolayer.Status) {
//	    if s.State == geolayer.StateReady {
//	        render(s.Collection)
//	    }
//	}))
func WithListener(fn func(Status)) Option {
	return func(o *options) {
		o.listener = fn
	}
}

// WithInputReset registers fn to be called whenever a selection is rejected,
// so the file input can be cleared. fn receives the rejection error.
func WithInputReset(fn func(error)) Option {
	return func(o *options) {
		o.inputReset = fn
	}
}

// WithStrictKML reports unparseable KML documents as MalformedXML.
//
// By default such a document yields an empty collection and a warning.
func WithStrictKML() Option {
	return func(o *options) {
		o.strictKML = true
	}
}

// WithLenientJSON accepts GeoJSON with comments and trailing commas.
func WithLenientJSON() Option {
	return func(o *options) {
		o.lenientJSON = true
	}
}

// WithMaxFileSize limits the bytes read from any single upload.
// Larger uploads fail with ReadFailure. Default is 0 (no limit).
func WithMaxFileSize(bytes int64) Option {
	return func(o *options) {
		o.maxFileSize = bytes
	}
}

// WithMaxArchiveEntrySize limits the decompressed size of each member taken
// from a shapefile archive. Default is 0 (no limit).
//
// Example:
//
//	// Refuse members over 512MB
//	p := geolayer.New(geolayer.WithMaxArchiveEntrySize(512 << 20))
func WithMaxArchiveEntrySize(bytes int64) Option {
	return func(o *options) {
		o.maxArchiveEntry = bytes
	}
}
