package geolayer

import (
	"errors"

	"github.com/simonhull/geolayer/internal/types"
)

// PipelineError is an alias to types.PipelineError.
// Re-exporting from internal/types to maintain public API.
type PipelineError = types.PipelineError

// ErrorKind is an alias to types.ErrorKind.
type ErrorKind = types.ErrorKind

// OutOfBoundsError is an alias to types.OutOfBoundsError.
type OutOfBoundsError = types.OutOfBoundsError

// CorruptedFileError is an alias to types.CorruptedFileError.
type CorruptedFileError = types.CorruptedFileError

// Warning is an alias to types.Warning.
type Warning = types.Warning

// Re-export all error kinds.
const (
	KindUnknown           = types.KindUnknown
	KindFormatNotChosen   = types.KindFormatNotChosen
	KindExtensionMismatch = types.KindExtensionMismatch
	KindArchiveIncomplete = types.KindArchiveIncomplete
	KindMalformedJSON     = types.KindMalformedJSON
	KindMalformedXML      = types.KindMalformedXML
	KindCorruptShapefile  = types.KindCorruptShapefile
	KindReadFailure       = types.KindReadFailure
)

// Sentinels for errors.Is matching by kind.
var (
	ErrFormatNotChosen   = types.ErrFormatNotChosen
	ErrExtensionMismatch = types.ErrExtensionMismatch
	ErrArchiveIncomplete = types.ErrArchiveIncomplete
	ErrMalformedJSON     = types.ErrMalformedJSON
	ErrMalformedXML      = types.ErrMalformedXML
	ErrCorruptShapefile  = types.ErrCorruptShapefile
	ErrReadFailure       = types.ErrReadFailure
)

// ErrSuperseded is returned by Wait when a newer selection, a format change
// or a clear replaced the awaited generation before it settled.
var ErrSuperseded = errors.New("geolayer: generation superseded")

// KindOf returns the kind of the first PipelineError in err's chain.
func KindOf(err error) ErrorKind {
	return types.KindOf(err)
}

// UserMessage returns the display message for err. Errors that are not
// pipeline errors get a generic message.
func UserMessage(err error) string {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.UserMessage()
	}
	if errors.Is(err, ErrSuperseded) {
		return "The upload was replaced by a newer selection."
	}
	return "The upload failed."
}
