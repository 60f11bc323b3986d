package geolayer

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/simonhull/geolayer/internal/archive"
	"github.com/simonhull/geolayer/internal/coordinator"
	"github.com/simonhull/geolayer/internal/reader"
	"github.com/simonhull/geolayer/internal/registry"
	"github.com/simonhull/geolayer/internal/types"
	"github.com/simonhull/geolayer/internal/validate"
)

// Pipeline turns file selections into a published FeatureCollection.
//
// Every selection, format change and clear starts a new generation. Work
// belonging to an older generation is discarded when it arrives, so a slow
// read can never overwrite the result of a newer selection. A Pipeline is
// safe for concurrent use.
//
//	p := geolayer.New()
//	p.SetFormat(geolayer.FormatShapefile)
//	fc, err := p.Upload(ctx, geolayer.UploadFiles("roads.shp", "roads.dbf"))
type Pipeline struct {
	opts      *options
	log       *slog.Logger
	reader    *reader.Reader
	extractor *archive.Extractor
	coord     *coordinator.Coordinator

	mu        sync.Mutex
	published *FeatureCollection
	lastErr   error
	runCtx    context.Context
	cancel    context.CancelFunc
	waiter    *settlement
	warnings  []Warning
	sources   []Source
	queue     []Status
	gen       Generation
	format    Format
	state     State
	draining  bool
}

// settlement is the outcome of one generation. done closes exactly once.
type settlement struct {
	done chan struct{}
	fc   *FeatureCollection
	err  error
}

func newSettlement() *settlement {
	return &settlement{done: make(chan struct{})}
}

// settle records the outcome unless one was already recorded. Callers hold p.mu.
func (s *settlement) settle(fc *FeatureCollection, err error) {
	select {
	case <-s.done:
		return
	default:
	}
	s.fc, s.err = fc, err
	close(s.done)
}

// New creates an idle Pipeline with no format chosen.
func New(opts ...Option) *Pipeline {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	p := &Pipeline{
		opts:      o,
		log:       o.logger,
		reader:    reader.New(o.maxFileSize),
		extractor: archive.New(o.maxArchiveEntry),
		waiter:    newSettlement(),
	}
	p.waiter.settle(nil, nil)
	p.coord = coordinator.New(p.decode)
	return p
}

// SetFormat declares the format of the next selection.
//
// Any in-flight selection is abandoned and the pipeline returns to StateIdle.
// A published collection or a reported error stays in place.
func (p *Pipeline) SetFormat(f Format) Generation {
	p.mu.Lock()
	gen := p.advanceLocked()
	p.format = f
	p.coord.Reset(gen)
	if p.state.inFlight() {
		p.state = StateIdle
	}
	p.waiter.settle(p.published, nil)
	p.log.Debug("format set", slog.Uint64("generation", uint64(gen)), slog.String("format", f.String()))
	p.commitLocked()
	return gen
}

// Clear abandons in-flight work and drops the published collection.
// The declared format is kept.
func (p *Pipeline) Clear() Generation {
	p.mu.Lock()
	gen := p.advanceLocked()
	p.coord.Reset(gen)
	p.published = nil
	p.warnings = nil
	p.sources = nil
	p.lastErr = nil
	p.state = StateIdle
	p.waiter.settle(nil, nil)
	p.log.Debug("cleared", slog.Uint64("generation", uint64(gen)))
	p.commitLocked()
	return gen
}

// Select starts a new generation for uploads and returns it.
//
// The selection is validated against the declared format first. A rejection
// moves the pipeline to StateError, triggers the input reset hook, and is
// returned. Accepted uploads are read concurrently in the background, bound
// to ctx; use Wait to block until the generation settles.
func (p *Pipeline) Select(ctx context.Context, uploads []Upload) (Generation, error) {
	p.mu.Lock()
	gen := p.advanceLocked()
	format := p.format
	p.coord.Reset(gen)
	p.state = StateValidating
	p.lastErr = nil
	p.commitLocked()

	plan, err := validate.Check(format, uploads)
	if err != nil {
		p.log.Info("selection rejected",
			slog.Uint64("generation", uint64(gen)),
			slog.String("format", format.String()),
			slog.String("error_kind", types.KindOf(err).String()),
			slog.String("error", err.Error()))
		p.fail(gen, err)
		if p.opts.inputReset != nil {
			p.opts.inputReset(err)
		}
		return gen, err
	}

	p.mu.Lock()
	if gen != p.gen {
		p.mu.Unlock()
		return gen, ErrSuperseded
	}
	runCtx, cancel := context.WithCancel(ctx)
	p.runCtx, p.cancel = runCtx, cancel
	p.coord.Advance(gen, format, format.RequiredRoles())
	p.state = StateReading
	p.log.Debug("reading selection",
		slog.Uint64("generation", uint64(gen)),
		slog.String("format", format.String()),
		slog.Int("files", len(plan.Items)),
		slog.Any("roles", plan.Roles()),
		slog.Bool("archive", plan.IsArchive()))
	go p.run(runCtx, cancel, gen, plan)
	p.commitLocked()
	return gen, nil
}

// Wait blocks until gen settles and returns the collection it published.
//
// It returns ErrSuperseded when a newer generation replaced gen first, the
// generation's PipelineError when it failed, or ctx's error.
func (p *Pipeline) Wait(ctx context.Context, gen Generation) (*FeatureCollection, error) {
	p.mu.Lock()
	if gen < p.gen {
		p.mu.Unlock()
		return nil, ErrSuperseded
	}
	if gen > p.gen {
		p.mu.Unlock()
		return nil, fmt.Errorf("geolayer: generation %d has not started", gen)
	}
	w := p.waiter
	p.mu.Unlock()

	select {
	case <-w.done:
		return w.fc, w.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Upload selects uploads and waits for the result.
func (p *Pipeline) Upload(ctx context.Context, uploads []Upload) (*FeatureCollection, error) {
	gen, err := p.Select(ctx, uploads)
	if err != nil {
		return nil, err
	}
	return p.Wait(ctx, gen)
}

// Status returns a snapshot of the pipeline.
func (p *Pipeline) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.statusLocked()
}

func (p *Pipeline) statusLocked() Status {
	st := Status{
		State:      p.state,
		Generation: p.gen,
		Format:     p.format,
		Collection: p.published,
		Warnings:   slices.Clone(p.warnings),
		Sources:    slices.Clone(p.sources),
	}
	if p.state == StateError {
		st.Err = p.lastErr
	}
	return st
}

// advanceLocked starts a new generation: the previous one is cancelled and
// its waiters are released with ErrSuperseded.
func (p *Pipeline) advanceLocked() Generation {
	p.gen++
	if p.cancel != nil {
		p.cancel()
	}
	p.runCtx, p.cancel = nil, nil
	p.waiter.settle(nil, ErrSuperseded)
	p.waiter = newSettlement()
	return p.gen
}

// run reads every planned upload on its own goroutine.
func (p *Pipeline) run(ctx context.Context, cancel context.CancelFunc, gen Generation, plan *validate.Plan) {
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	for _, item := range plan.Items {
		g.Go(func() error {
			return p.load(gctx, gen, item)
		})
	}
	if err := g.Wait(); err != nil {
		p.fail(gen, err)
	}
}

func (p *Pipeline) load(ctx context.Context, gen Generation, item validate.Item) error {
	buf, err := p.reader.Read(ctx, gen, item)
	if err != nil {
		return err
	}
	p.log.Debug("upload read",
		slog.Uint64("generation", uint64(gen)),
		slog.String("file", buf.Name),
		slog.String("role", buf.Role.String()),
		slog.Int64("bytes", buf.Size),
		slog.String("digest", buf.Digest.Short()))

	if item.Role != types.RoleArchive {
		p.submit(gen, buf)
		return nil
	}

	m, err := p.extractor.Extract(buf)
	if err != nil {
		return err
	}
	p.log.Debug("archive extracted",
		slog.Uint64("generation", uint64(gen)),
		slog.String("file", buf.Name),
		slog.String("geometry", m.Geometry.Name),
		slog.String("attributes", m.Attributes.Name),
		slog.Int("sidecars", len(m.Sidecars)))
	p.coord.AttachSidecars(gen, m.Sidecars)
	members := m.Buffers()
	for _, role := range types.FormatShapefile.RequiredRoles() {
		p.submit(gen, members[role])
	}
	return nil
}

func (p *Pipeline) submit(gen Generation, buf types.RawBuffer) {
	switch p.coord.Submit(gen, buf.Role, buf) {
	case coordinator.Pending:
		if p.transition(gen, StatePairing, StateReading) {
			p.log.Debug("waiting for partner file",
				slog.Uint64("generation", uint64(gen)),
				slog.String("file", buf.Name),
				slog.Any("missing", p.coord.Missing()))
		}
	case coordinator.Stale:
		p.log.Debug("stale buffer dropped",
			slog.Uint64("generation", uint64(gen)),
			slog.String("file", buf.Name),
			slog.String("role", buf.Role.String()))
	}
}

// transition moves gen to state when it is still live and in one of from.
func (p *Pipeline) transition(gen Generation, state State, from ...State) bool {
	p.mu.Lock()
	if gen != p.gen || !slices.Contains(from, p.state) {
		p.mu.Unlock()
		return false
	}
	p.state = state
	p.commitLocked()
	return true
}

// decode is the coordinator's completion callback.
func (p *Pipeline) decode(set *types.BufferSet) {
	gen := set.Generation

	p.mu.Lock()
	if gen != p.gen || (p.state != StateReading && p.state != StatePairing) {
		p.mu.Unlock()
		return
	}
	ctx := p.runCtx
	if ctx == nil {
		ctx = context.Background()
	}
	opts := types.DecodeOptions{StrictKML: p.opts.strictKML, LenientJSON: p.opts.lenientJSON}
	p.state = StateDecoding
	p.commitLocked()

	d := registry.Get(set.Format)
	if d == nil {
		p.fail(gen, fmt.Errorf("no decoder registered for %v", set.Format))
		return
	}

	out, err := d.Decode(ctx, set, opts)
	if err != nil {
		p.fail(gen, err)
		return
	}
	p.publish(gen, out, set.Sources())
}

// fail settles gen with err when gen is still live and unsettled.
func (p *Pipeline) fail(gen Generation, err error) {
	if types.KindOf(err) == types.KindUnknown {
		err = types.NewError(types.KindReadFailure, "", "", err)
	}

	p.mu.Lock()
	if gen != p.gen || !p.state.inFlight() {
		p.mu.Unlock()
		p.log.Debug("stale failure dropped", slog.Uint64("generation", uint64(gen)), slog.String("error", err.Error()))
		return
	}
	p.state = StateError
	p.lastErr = err
	p.waiter.settle(nil, err)
	p.log.Warn("upload failed",
		slog.Uint64("generation", uint64(gen)),
		slog.String("format", p.format.String()),
		slog.String("error_kind", types.KindOf(err).String()),
		slog.String("error", err.Error()))
	p.commitLocked()
}

// publish replaces the published collection when gen is still live.
func (p *Pipeline) publish(gen Generation, out *types.Decoded, sources []Source) {
	p.mu.Lock()
	if gen != p.gen || p.state != StateDecoding {
		p.mu.Unlock()
		p.log.Debug("stale result dropped", slog.Uint64("generation", uint64(gen)))
		return
	}
	p.published = out.Collection
	p.warnings = out.Warnings
	p.sources = sources
	p.lastErr = nil
	p.state = StateReady
	p.waiter.settle(out.Collection, nil)

	p.log.Info("collection published",
		slog.Uint64("generation", uint64(gen)),
		slog.String("format", p.format.String()),
		slog.Int("features", out.Collection.Len()),
		slog.Int("warnings", len(out.Warnings)))
	for _, w := range out.Warnings {
		p.log.Warn("decode warning", slog.Uint64("generation", uint64(gen)), slog.String("warning", w.String()))
	}
	p.commitLocked()
}

// commitLocked queues a snapshot for the listener and releases p.mu.
// Snapshots are delivered in order by a single notify goroutine, outside the
// lock and off the caller's goroutine.
func (p *Pipeline) commitLocked() {
	if p.opts.listener == nil {
		p.mu.Unlock()
		return
	}
	p.queue = append(p.queue, p.statusLocked())
	if !p.draining {
		p.draining = true
		go p.notify()
	}
	p.mu.Unlock()
}

// notify delivers queued snapshots until the queue is empty.
func (p *Pipeline) notify() {
	for {
		p.mu.Lock()
		if len(p.queue) == 0 {
			p.draining = false
			p.mu.Unlock()
			return
		}
		batch := p.queue
		p.queue = nil
		p.mu.Unlock()

		for _, st := range batch {
			p.opts.listener(st)
		}
	}
}
