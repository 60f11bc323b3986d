package geolayer

// State is the pipeline's position in the upload lifecycle.
type State int

const (
	// StateIdle means nothing is in flight.
	StateIdle State = iota
	// StateValidating means a selection is being checked against the format.
	StateValidating
	// StateReading means uploads are being loaded.
	StateReading
	// StatePairing means part of a shapefile pair has arrived and the rest is awaited.
	StatePairing
	// StateDecoding means a complete buffer set is being decoded.
	StateDecoding
	// StateReady means a collection has been published.
	StateReady
	// StateError means the last selection failed.
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateReading:
		return "reading"
	case StatePairing:
		return "pairing"
	case StateDecoding:
		return "decoding"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// inFlight reports whether s is between selection and settlement.
func (s State) inFlight() bool {
	switch s {
	case StateValidating, StateReading, StatePairing, StateDecoding:
		return true
	}
	return false
}

// Status is a snapshot of the pipeline.
type Status struct {
	// Collection is the published collection. It survives new selections
	// until a decode replaces it, and is nil after Clear.
	Collection *FeatureCollection

	// Err is the failure of the last selection while State is StateError.
	Err error

	// Warnings were produced by the decode that published Collection.
	Warnings []Warning

	// Sources describe the buffers Collection was decoded from.
	Sources []Source

	State      State
	Generation Generation
	Format     Format
}
