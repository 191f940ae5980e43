package hooks

import (
	"github.com/reflow-ui/reflow/internal/errors"
)

// Phase classifies when an effect's commit work runs relative to the host's
// paint-equivalent step.
type Phase uint8

const (
	// PhaseLayout effects run synchronously, before the host paints.
	PhaseLayout Phase = iota + 1

	// PhasePassive effects run deferred, after the host signals that the
	// paint-equivalent work completed.
	PhasePassive
)

// String returns a human-readable name for the phase.
func (p Phase) String() string {
	switch p {
	case PhaseLayout:
		return "layout"
	case PhasePassive:
		return "passive"
	default:
		return "unknown"
	}
}

// Cleanup is the function an effect body may return to release whatever the
// body acquired. It is called before the effect's next run and at unmount.
type Cleanup func()

// effectSlot holds the registry entry for one effect: the dependency
// snapshot of the last run, the pending cleanup, and the body captured by
// the most recent render whose dependencies changed.
type effectSlot struct {
	phase Phase

	deps    Deps
	hasDeps bool

	body    func() Cleanup
	cleanup Cleanup
	eq      Equality

	// pending marks the slot as a candidate for the next commit of its
	// phase. The render pass sets it; the commit pass consumes it.
	pending bool
}

// commit runs the stored cleanup (if any) and then the body, storing the new
// cleanup. pending clears before the body runs so a faulting effect is never
// retried.
func (es *effectSlot) commit() {
	es.pending = false
	if es.cleanup != nil {
		cl := es.cleanup
		es.cleanup = nil
		cl()
	}
	es.cleanup = es.body()
}

// EffectOption configures an effect slot at creation.
type EffectOption func(*effectOptions)

type effectOptions struct {
	eq Equality
}

// EffectEquals overrides the equality used for the slot's dependency
// diffing. The default is SameValue.
func EffectEquals(eq Equality) EffectOption {
	return func(o *effectOptions) {
		o.eq = eq
	}
}

// UseEffect schedules a deferred (passive) effect: the body runs during the
// post-paint commit pass of any render where the dependency snapshot
// changed, after the cleanup from the previous run.
//
// A nil deps re-runs the effect on every commit. An empty Deps{} runs the
// body only at the first commit after mount; its cleanup runs only at
// unmount. The render pass never executes the body.
func UseEffect(ctx *Ctx, body func() Cleanup, deps Deps, opts ...EffectOption) {
	useEffect(ctx, body, deps, PhasePassive, opts...)
}

// UseLayoutEffect schedules a synchronous (layout) effect: identical to
// UseEffect except that the body runs in the pre-paint commit pass, before
// the host proceeds to its paint-equivalent step.
func UseLayoutEffect(ctx *Ctx, body func() Cleanup, deps Deps, opts ...EffectOption) {
	useEffect(ctx, body, deps, PhaseLayout, opts...)
}

func useEffect(ctx *Ctx, body func() Cleanup, deps Deps, phase Phase, opts ...EffectOption) {
	entry := ctx.next(KindEffect)

	if entry.cell == nil {
		var o effectOptions
		for _, opt := range opts {
			opt(&o)
		}
		entry.cell = &effectSlot{
			phase:   phase,
			body:    body,
			deps:    snapshotDeps(deps),
			hasDeps: deps != nil,
			eq:      o.eq,
			pending: true,
		}
		return
	}

	es := entry.cell.(*effectSlot)
	if es.phase != phase {
		panic(errors.Newf(errors.CodeSlotKind, errors.CategoryLedger,
			"effect slot phase changed between renders: was %s, now %s", es.phase, phase))
	}

	unchanged := deps != nil && es.hasDeps && depsEqual(es.eq, es.deps, deps)
	es.deps = snapshotDeps(deps)
	es.hasDeps = deps != nil
	if unchanged {
		// Keep any still-pending run from an uncommitted earlier render,
		// but refresh the body so it sees current captures.
		if es.pending {
			es.body = body
		}
		return
	}

	es.body = body
	es.pending = true
}
