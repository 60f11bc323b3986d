package types

import (
	"errors"
	"fmt"
)

// ErrorKind classifies pipeline failures.
type ErrorKind int

const (
	// KindUnknown is never produced by the pipeline.
	KindUnknown ErrorKind = iota
	// KindFormatNotChosen means files were selected before a format was declared.
	KindFormatNotChosen
	// KindExtensionMismatch means the selection does not fit the declared format.
	KindExtensionMismatch
	// KindArchiveIncomplete means a shapefile archive lacks a .shp or .dbf member.
	KindArchiveIncomplete
	// KindMalformedJSON means a GeoJSON payload failed to parse.
	KindMalformedJSON
	// KindMalformedXML means a KML payload failed to parse (strict mode only).
	KindMalformedXML
	// KindCorruptShapefile means shapefile record iteration failed.
	KindCorruptShapefile
	// KindReadFailure means an underlying read failed.
	KindReadFailure
)

func (k ErrorKind) String() string {
	switch k {
	case KindFormatNotChosen:
		return "FormatNotChosen"
	case KindExtensionMismatch:
		return "ExtensionMismatch"
	case KindArchiveIncomplete:
		return "ArchiveIncomplete"
	case KindMalformedJSON:
		return "MalformedJSON"
	case KindMalformedXML:
		return "MalformedXML"
	case KindCorruptShapefile:
		return "CorruptShapefile"
	case KindReadFailure:
		return "ReadFailure"
	default:
		return "Unknown"
	}
}

// PipelineError is the tagged failure value carried instead of a result.
//
// Errors match the exported sentinels by kind:
//
//	if errors.Is(err, types.ErrMalformedJSON) {
//		// ...
//	}
type PipelineError struct {
	Err    error
	Path   string
	Reason string
	Kind   ErrorKind
}

func (e *PipelineError) Error() string {
	msg := e.Kind.String()
	if e.Path != "" {
		msg = e.Path + ": " + msg
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause, if any.
func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a PipelineError of the same kind.
func (e *PipelineError) Is(target error) bool {
	t, ok := target.(*PipelineError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// UserMessage returns a single human-readable sentence for display.
func (e *PipelineError) UserMessage() string {
	var base string
	switch e.Kind {
	case KindFormatNotChosen:
		base = "Choose a map format before selecting files."
	case KindExtensionMismatch:
		base = "The selected files do not match the chosen map format."
	case KindArchiveIncomplete:
		base = "The archive must contain a .shp and a .dbf file."
	case KindMalformedJSON:
		base = "The GeoJSON file could not be parsed."
	case KindMalformedXML:
		base = "The KML file could not be parsed."
	case KindCorruptShapefile:
		base = "The shapefile is corrupt or unsupported."
	case KindReadFailure:
		base = "The file could not be read."
	default:
		base = "The upload failed."
	}
	if e.Reason != "" {
		return base + " (" + e.Reason + ")"
	}
	return base
}

// Sentinels for errors.Is matching.
var (
	ErrFormatNotChosen   = &PipelineError{Kind: KindFormatNotChosen}
	ErrExtensionMismatch = &PipelineError{Kind: KindExtensionMismatch}
	ErrArchiveIncomplete = &PipelineError{Kind: KindArchiveIncomplete}
	ErrMalformedJSON     = &PipelineError{Kind: KindMalformedJSON}
	ErrMalformedXML      = &PipelineError{Kind: KindMalformedXML}
	ErrCorruptShapefile  = &PipelineError{Kind: KindCorruptShapefile}
	ErrReadFailure       = &PipelineError{Kind: KindReadFailure}
)

// NewError builds a PipelineError of the given kind.
func NewError(kind ErrorKind, path, reason string, cause error) *PipelineError {
	return &PipelineError{Kind: kind, Path: path, Reason: reason, Err: cause}
}

// KindOf returns the kind of the first PipelineError in err's chain.
func KindOf(err error) ErrorKind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnknown
}

// OutOfBoundsError is returned when attempting to read beyond buffer bounds.
type OutOfBoundsError struct {
	Path   string
	What   string
	Offset int64
	Length int
	Size   int64
}

func (e *OutOfBoundsError) Error() string {
	if e.Offset >= e.Size {
		return fmt.Sprintf("%s: offset %d out of bounds (size: %d) while reading %s",
			e.Path, e.Offset, e.Size, e.What)
	}
	return fmt.Sprintf("%s: read of %d bytes at offset %d would exceed size %d while reading %s",
		e.Path, e.Length, e.Offset, e.Size, e.What)
}

// CorruptedFileError is returned when a binary structure is invalid.
type CorruptedFileError struct {
	Path   string
	Reason string
	Offset int64
}

func (e *CorruptedFileError) Error() string {
	return fmt.Sprintf("%s: corrupted at offset %d: %s", e.Path, e.Offset, e.Reason)
}

// Warning represents a non-fatal issue encountered during decoding.
//
// Warnings indicate problems that don't prevent a collection from being
// produced. Examples include:
//   - A KML document that failed to parse in permissive mode
//   - Shapefile and attribute table record counts that differ
//   - A projection sidecar announcing non-geographic coordinates
type Warning struct {
	// Stage where the warning occurred ("kml", "shp", "dbf", "prj")
	Stage string

	// Warning message
	Message string

	// Record index the issue relates to (-1 if not applicable)
	Record int
}

// String returns a human-readable warning message.
func (w Warning) String() string {
	if w.Record >= 0 {
		return fmt.Sprintf("%s (record %d): %s", w.Stage, w.Record, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Stage, w.Message)
}
