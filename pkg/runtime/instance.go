package runtime

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/reflow-ui/reflow/internal/errors"
	"github.com/reflow-ui/reflow/pkg/hooks"
)

// Ctx is the hook context handed to component bodies.
type Ctx = hooks.Ctx

// State is the coordinator state of an instance.
type State uint8

const (
	// StateIdle accepts a render pass.
	StateIdle State = iota

	// StateRendering is the pure re-evaluation of the component body.
	StateRendering

	// StateCommitLayout means a completed render awaits (or is running)
	// its synchronous, pre-paint commit pass.
	StateCommitLayout

	// StatePaintBarrier suspends the instance until the host signals that
	// its paint-equivalent work completed.
	StatePaintBarrier

	// StateCommitPassive means the barrier is released and the deferred
	// commit pass is due (or running).
	StateCommitPassive

	// StateUnmounted is terminal.
	StateUnmounted
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRendering:
		return "rendering"
	case StateCommitLayout:
		return "commit-layout"
	case StatePaintBarrier:
		return "paint-barrier"
	case StateCommitPassive:
		return "commit-passive"
	case StateUnmounted:
		return "unmounted"
	default:
		return "unknown"
	}
}

// RenderResult is what a render pass produces for the host: the effect
// candidates the commit passes will consume, and the bail-out flag.
type RenderResult struct {
	// Changed lists the effect slots whose dependencies changed, in
	// ledger order. No effect body has run yet.
	Changed []hooks.EffectCandidate

	// Unchanged is true when no state slot changed during the pass. The
	// host may skip descendant work for this instance; the commit passes
	// must still be driven (they are no-ops when Changed is empty).
	Unchanged bool

	// Generation is the instance's render generation after this pass.
	Generation uint64
}

var instanceIDCounter atomic.Uint64

// Instance is a mounted component: the slot ledger, the coordinator state
// machine, and the dirty flag that coalesces dispatches into one scheduled
// render.
type Instance struct {
	id   uint64
	rt   *Runtime
	body ComponentFunc
	ctx  *hooks.Ctx

	logger *slog.Logger

	// mu guards state. The coordinator is single-threaded, but dispatch
	// handles may invalidate from any goroutine and need a consistent
	// view of the state to decide whether to schedule now or defer.
	mu    sync.Mutex
	state State

	// dirty is set by Invalidate and cleared when a render pass begins.
	dirty atomic.Bool

	// failed holds the ledger-consistency error that made the instance
	// unusable. Set once; further render passes return it.
	failed error
}

func newInstance(rt *Runtime, body ComponentFunc) *Instance {
	inst := &Instance{
		id:   instanceIDCounter.Add(1),
		rt:   rt,
		body: body,
	}
	inst.logger = rt.logger.With("instance", inst.id)
	inst.ctx = hooks.NewCtx(inst)
	return inst
}

// ID returns the unique instance identifier.
func (in *Instance) ID() uint64 {
	return in.id
}

// State returns the current coordinator state.
func (in *Instance) State() State {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.state
}

// Dirty reports whether updates have been dispatched since the last render
// pass began.
func (in *Instance) Dirty() bool {
	return in.dirty.Load()
}

// Invalidate implements hooks.Invalidator. Dispatch handles call it after
// enqueueing an update; the first call per quiet period forwards one
// ScheduleRender to the host. Dispatches landing while a pass is in flight
// are picked up when the instance returns to idle.
func (in *Instance) Invalidate() {
	in.mu.Lock()
	if in.state == StateUnmounted {
		in.mu.Unlock()
		return
	}
	idle := in.state == StateIdle
	first := in.dirty.CompareAndSwap(false, true)
	in.mu.Unlock()

	if first && idle {
		in.rt.scheduler.ScheduleRender(in)
	}
}

// RenderPass re-executes the component body top-to-bottom through the slot
// ledger. It is pure: slot values update, memo results refresh, and effect
// candidates are recorded, but no effect body runs.
//
// A ledger-consistency violation is returned as an error with the instance
// left unusable for further passes; the host should unmount it, which still
// runs outstanding cleanups. A panic from user code (a reducer, updater, or
// memo computation) aborts the pass and propagates to the caller.
func (in *Instance) RenderPass() (RenderResult, error) {
	in.mu.Lock()
	if in.failed != nil {
		err := in.failed
		in.mu.Unlock()
		return RenderResult{}, err
	}
	switch in.state {
	case StateIdle:
	case StateUnmounted:
		in.mu.Unlock()
		return RenderResult{}, errors.Newf(errors.CodeUnmounted, errors.CategoryLifecycle,
			"render pass on unmounted instance %d", in.id)
	default:
		st := in.state
		in.mu.Unlock()
		return RenderResult{}, errors.Newf(errors.CodePhase, errors.CategoryLifecycle,
			"render pass while instance %d is %s", in.id, st).
			WithSuggestion("drive the previous render's commit passes to completion first")
	}
	in.state = StateRendering
	in.mu.Unlock()

	// The pass consumes every update dispatched so far; later dispatches
	// belong to the next render.
	in.dirty.Store(false)

	start := time.Now()
	end := in.rt.traceSpan("reflow.render",
		attribute.Int64("reflow.instance", int64(in.id)))

	result, err := in.renderLocked()

	end(err)
	if in.rt.metrics != nil {
		in.rt.metrics.observeRender(time.Since(start), result, err)
	}

	if err != nil {
		// Ledger violations are not recoverable: the instance refuses
		// further passes. Unmount still runs outstanding cleanups.
		in.mu.Lock()
		in.failed = err
		if in.state != StateUnmounted {
			in.state = StateIdle
		}
		in.mu.Unlock()
		in.logger.Error("render pass failed", "error", err)
		return RenderResult{}, err
	}

	in.setState(StateCommitLayout)
	in.logger.Debug("render pass complete",
		"generation", result.Generation,
		"changed_effects", len(result.Changed),
		"unchanged", result.Unchanged)
	return result, nil
}

// renderLocked runs the body and converts structured hook panics into
// errors. Any other panic is user code faulting and keeps propagating, with
// the instance returned to idle so the host can decide what to do.
func (in *Instance) renderLocked() (result RenderResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(*errors.Error); ok {
				err = e
				return
			}
			in.setState(StateIdle)
			panic(r)
		}
	}()

	in.ctx.BeginRender()
	in.body(in.ctx)
	if err = in.ctx.EndRender(); err != nil {
		return RenderResult{}, err
	}

	return RenderResult{
		Changed:    in.ctx.EffectCandidates(),
		Unchanged:  !in.ctx.StateChanged(),
		Generation: in.ctx.Generation(),
	}, nil
}

// CommitPass runs the cleanup+body pairs for every changed effect of the
// given phase, in ledger order. The layout phase must run directly after a
// render pass; the passive phase only after the host has released the paint
// barrier via SignalPaintComplete.
//
// A panic from an effect body or cleanup propagates out of the commit pass;
// work strictly prior in ledger order has already run, work after it is
// skipped for this commit, and nothing is retried.
func (in *Instance) CommitPass(phase hooks.Phase) error {
	var next State
	in.mu.Lock()
	switch {
	case in.state == StateUnmounted:
		in.mu.Unlock()
		return errors.Newf(errors.CodeUnmounted, errors.CategoryLifecycle,
			"commit pass on unmounted instance %d", in.id)
	case phase == hooks.PhaseLayout && in.state == StateCommitLayout:
		next = StatePaintBarrier
	case phase == hooks.PhasePassive && in.state == StateCommitPassive:
		next = StateIdle
	default:
		st := in.state
		in.mu.Unlock()
		return errors.Newf(errors.CodePhase, errors.CategoryLifecycle,
			"%s commit while instance %d is %s", phase, in.id, st).
			WithSuggestion("the order is RenderPass, CommitPass(layout), SignalPaintComplete, CommitPass(passive)")
	}
	in.mu.Unlock()

	end := in.rt.traceSpan("reflow.commit",
		attribute.Int64("reflow.instance", int64(in.id)),
		attribute.String("reflow.phase", phase.String()))

	// Advance the machine even when an effect faults, so teardown and
	// diagnostics see a consistent state.
	defer func() {
		in.setState(next)
		if next == StateIdle && in.dirty.Load() {
			in.rt.scheduler.ScheduleRender(in)
		}
	}()
	defer end(nil)

	ran := in.ctx.RunCommit(phase)
	if in.rt.metrics != nil {
		in.rt.metrics.observeCommit(phase, ran)
	}
	in.logger.Debug("commit pass complete", "phase", phase.String(), "effects_run", ran)
	return nil
}

// SignalPaintComplete releases the paint barrier: the host's
// paint-equivalent work for the last layout commit is done and the passive
// commit may run.
func (in *Instance) SignalPaintComplete() error {
	in.mu.Lock()
	defer in.mu.Unlock()
	switch in.state {
	case StatePaintBarrier:
		in.state = StateCommitPassive
		return nil
	case StateUnmounted:
		return errors.Newf(errors.CodeUnmounted, errors.CategoryLifecycle,
			"paint signal on unmounted instance %d", in.id)
	default:
		return errors.Newf(errors.CodePhase, errors.CategoryLifecycle,
			"paint signal while instance %d is %s", in.id, in.state)
	}
}

// Unmount tears the instance down: every outstanding effect cleanup runs
// exactly once, in ledger order; effect bodies that never got their commit
// are dropped; further scheduled passes are refused. Unmount is idempotent.
func (in *Instance) Unmount() {
	in.mu.Lock()
	if in.state == StateUnmounted {
		in.mu.Unlock()
		return
	}
	in.state = StateUnmounted
	in.mu.Unlock()

	cleaned := in.ctx.Teardown()
	if in.rt.metrics != nil {
		in.rt.metrics.mounted.Dec()
		in.rt.metrics.cleanups.Add(float64(cleaned))
	}
	in.logger.Debug("unmounted", "cleanups_run", cleaned)
}

func (in *Instance) setState(s State) {
	in.mu.Lock()
	// Unmount may have preempted a pass in flight; its state wins.
	if in.state != StateUnmounted {
		in.state = s
	}
	in.mu.Unlock()
}

// String implements fmt.Stringer for log output.
func (in *Instance) String() string {
	return fmt.Sprintf("instance(%d)", in.id)
}
