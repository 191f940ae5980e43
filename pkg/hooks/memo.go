package hooks

import (
	"github.com/reflow-ui/reflow/internal/errors"
)

// memoSlot caches the last computed value and the dependency snapshot it was
// computed from.
type memoSlot[T any] struct {
	value T

	// deps is the snapshot from the computing render. hasDeps is false
	// when no dependency array was supplied (recompute every render).
	deps    Deps
	hasDeps bool

	eq       Equality
	computed bool
}

// MemoOption configures a memo slot at creation.
type MemoOption func(*memoOptions)

type memoOptions struct {
	eq Equality
}

// MemoEquals overrides the equality used for the slot's dependency diffing.
// The default is SameValue.
func MemoEquals(eq Equality) MemoOption {
	return func(o *memoOptions) {
		o.eq = eq
	}
}

// UseMemo returns a memoized value, recomputing only when the dependency
// snapshot differs from the previous render's: any position differing under
// the slot's equality, or a differing length, triggers recomputation. A nil
// deps means compute on every render.
//
// compute must not perform host-visible side effects; the memo cache is an
// optimization, never a correctness mechanism, and hosts are free to evict
// and recompute eagerly.
func UseMemo[T any](ctx *Ctx, compute func() T, deps Deps, opts ...MemoOption) T {
	entry := ctx.next(KindMemo)

	if entry.cell == nil {
		var o memoOptions
		for _, opt := range opts {
			opt(&o)
		}
		slot := &memoSlot[T]{eq: o.eq}
		entry.cell = slot
	}

	slot, ok := entry.cell.(*memoSlot[T])
	if !ok {
		panic(errors.New(errors.CodeSlotKind, errors.CategoryLedger,
			"memo slot value type changed between renders"))
	}

	if slot.computed && deps != nil && slot.hasDeps && depsEqual(slot.eq, slot.deps, deps) {
		return slot.value
	}

	slot.value = compute()
	slot.deps = snapshotDeps(deps)
	slot.hasDeps = deps != nil
	slot.computed = true
	return slot.value
}

// snapshotDeps copies a dependency array so later caller mutation of the
// backing slice cannot alter the stored snapshot.
func snapshotDeps(deps Deps) Deps {
	if deps == nil {
		return nil
	}
	out := make(Deps, len(deps))
	copy(out, deps)
	return out
}
