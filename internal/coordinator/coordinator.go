// Package coordinator joins the raw buffers of one generation and hands the
// completed set to a decoder exactly once.
package coordinator

import (
	"maps"
	"slices"
	"sync"

	"github.com/simonhull/geolayer/internal/types"
)

// Outcome reports what Submit did with a buffer.
type Outcome int

const (
	// Stale means the buffer belonged to a superseded generation and was dropped.
	Stale Outcome = iota
	// Pending means the buffer was recorded and other roles are still missing.
	Pending
	// Complete means the buffer completed the set and the callback ran.
	Complete
	// Ignored means the role is not required, already recorded, or the set already fired.
	Ignored
)

func (o Outcome) String() string {
	switch o {
	case Stale:
		return "stale"
	case Pending:
		return "pending"
	case Complete:
		return "complete"
	case Ignored:
		return "ignored"
	default:
		return "unknown"
	}
}

// Coordinator holds the partial role set of the single live generation.
// It is safe for concurrent use.
type Coordinator struct {
	onComplete func(*types.BufferSet)
	partial    map[types.Role]types.RawBuffer
	sidecars   map[string][]byte
	required   []types.Role
	mu         sync.Mutex
	gen        types.Generation
	format     types.Format
	fired      bool
}

// New returns a Coordinator that calls onComplete with each completed set.
// The callback runs on the goroutine whose Submit completed the set, outside
// the coordinator's lock.
func New(onComplete func(*types.BufferSet)) *Coordinator {
	return &Coordinator{onComplete: onComplete}
}

// Advance makes gen the live generation and discards earlier partials.
// A gen older than the live one is ignored.
func (c *Coordinator) Advance(gen types.Generation, format types.Format, required []types.Role) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen < c.gen {
		return
	}
	c.gen = gen
	c.format = format
	c.required = append([]types.Role(nil), required...)
	c.partial = make(map[types.Role]types.RawBuffer, len(required))
	c.sidecars = nil
	c.fired = false
}

// Reset makes gen the live generation with nothing pending.
func (c *Coordinator) Reset(gen types.Generation) {
	c.Advance(gen, types.FormatNone, nil)
}

// Generation returns the live generation.
func (c *Coordinator) Generation() types.Generation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// Missing lists the required roles not yet recorded for the live generation.
func (c *Coordinator) Missing() []types.Role {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fired {
		return nil
	}
	var out []types.Role
	for _, r := range c.required {
		if _, ok := c.partial[r]; !ok {
			out = append(out, r)
		}
	}
	return out
}

// AttachSidecars records optional extra files for gen's set.
// Stale or already completed generations are ignored.
func (c *Coordinator) AttachSidecars(gen types.Generation, sidecars map[string][]byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen || c.fired || len(sidecars) == 0 {
		return false
	}
	if c.sidecars == nil {
		c.sidecars = make(map[string][]byte, len(sidecars))
	}
	maps.Copy(c.sidecars, sidecars)
	return true
}

// Submit records buf under role for gen. Arrival order does not matter:
// the callback fires once, when the last required role arrives.
func (c *Coordinator) Submit(gen types.Generation, role types.Role, buf types.RawBuffer) Outcome {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return Stale
	}
	if c.fired || !slices.Contains(c.required, role) {
		c.mu.Unlock()
		return Ignored
	}
	if _, dup := c.partial[role]; dup {
		c.mu.Unlock()
		return Ignored
	}
	c.partial[role] = buf
	if len(c.partial) < len(c.required) {
		c.mu.Unlock()
		return Pending
	}

	set := &types.BufferSet{
		Format:     c.format,
		Generation: c.gen,
		Buffers:    c.partial,
		Sidecars:   c.sidecars,
	}
	c.partial = make(map[types.Role]types.RawBuffer)
	c.sidecars = nil
	c.fired = true
	cb := c.onComplete
	c.mu.Unlock()

	if cb != nil {
		cb(set)
	}
	return Complete
}
