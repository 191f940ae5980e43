package hooks

import (
	"github.com/reflow-ui/reflow/internal/errors"
)

// Kind identifies the hook primitive occupying a ledger slot.
type Kind uint8

const (
	KindState Kind = iota + 1
	KindReducer
	KindMemo
	KindEffect
)

// String returns a human-readable name for the slot kind.
func (k Kind) String() string {
	switch k {
	case KindState:
		return "State"
	case KindReducer:
		return "Reducer"
	case KindMemo:
		return "Memo"
	case KindEffect:
		return "Effect"
	default:
		return "Unknown"
	}
}

// Invalidator receives re-evaluation requests from dispatch handles.
// The runtime's Instance implements it; dispatching a state update outside a
// render asks the host, through the Invalidator, to schedule a new render
// pass. Multiple dispatches before that pass coalesce into one request.
type Invalidator interface {
	Invalidate()
}

// slotEntry is one position in the ledger. The kind tag and the concrete
// cell type must be identical at this position on every render.
type slotEntry struct {
	kind Kind
	cell any
}

// Ctx is the explicit per-instance hook handle threaded through a component
// body. It owns the instance's slot ledger and the per-render cursor.
//
// A Ctx is exclusively owned by the coordinator during a pass; hook
// primitives must only be called from inside the component body while a
// render pass is active.
type Ctx struct {
	inv Invalidator

	// slots is the ledger: one entry per hook call, in call order.
	slots []slotEntry

	// cursor is the per-render position, reset by BeginRender.
	cursor int

	// ledgerLen is the slot count locked in by the first completed render.
	ledgerLen int

	// generation counts completed renders.
	generation uint64

	// rendering is true between BeginRender and EndRender.
	rendering bool

	// stateChanged records whether any state slot's fold produced a new
	// value this render. The mount render always counts as changed.
	stateChanged bool
}

// NewCtx creates a hook context bound to an invalidator.
func NewCtx(inv Invalidator) *Ctx {
	return &Ctx{inv: inv}
}

// BeginRender resets the per-render cursor. Called by the coordinator at the
// start of every render pass.
func (c *Ctx) BeginRender() {
	c.cursor = 0
	c.rendering = true
	// The first render is the mount; it always reports changed state so
	// the host does not bail out of initial downstream work.
	c.stateChanged = c.generation == 0
}

// EndRender closes the render pass and validates ledger consistency: every
// slot recorded on the first render must have been revisited.
func (c *Ctx) EndRender() error {
	c.rendering = false

	if c.generation == 0 {
		c.ledgerLen = len(c.slots)
		c.generation++
		return nil
	}

	c.generation++
	if c.cursor != c.ledgerLen {
		return errors.Newf(errors.CodeLedgerOrder, errors.CategoryLedger,
			"hook call order changed: expected %d hook calls, got %d", c.ledgerLen, c.cursor).
			WithSuggestion("hooks must not be called conditionally or in loops with varying iteration counts")
	}
	return nil
}

// Generation returns the number of completed renders for this instance.
func (c *Ctx) Generation() uint64 {
	return c.generation
}

// StateChanged reports whether any state slot changed during the render pass
// that just completed. When false the host may skip descendant work
// (bail-out); the render pass itself has still run in full.
func (c *Ctx) StateChanged() bool {
	return c.stateChanged
}

// next advances the cursor and returns the slot entry at the current
// position, allocating it on the first render. Call-order divergence is
// fatal and surfaces as a structured panic that the coordinator's render
// pass recovers into an error.
func (c *Ctx) next(kind Kind) *slotEntry {
	if !c.rendering {
		panic(errors.Newf(errors.CodePhase, errors.CategoryLifecycle,
			"%s hook called outside a render pass", kind).
			WithSuggestion("hook primitives may only be called from the component body during a render"))
	}

	idx := c.cursor
	c.cursor++

	if idx < len(c.slots) {
		entry := &c.slots[idx]
		if entry.kind != kind {
			panic(errors.Newf(errors.CodeSlotKind, errors.CategoryLedger,
				"hook call order changed at slot %d: expected %s, got %s", idx, entry.kind, kind))
		}
		return entry
	}

	if c.generation > 0 {
		panic(errors.Newf(errors.CodeLedgerOrder, errors.CategoryLedger,
			"hook call order changed: extra %s hook at slot %d", kind, idx))
	}

	c.slots = append(c.slots, slotEntry{kind: kind})
	return &c.slots[len(c.slots)-1]
}

// invalidate requests a re-evaluation from the host.
func (c *Ctx) invalidate() {
	if c.inv != nil {
		c.inv.Invalidate()
	}
}

// EffectCandidate identifies an effect slot whose dependencies changed
// during the last render pass and which will run at the next commit.
type EffectCandidate struct {
	// Slot is the ledger index of the effect.
	Slot int

	// Phase is the commit phase the effect runs in.
	Phase Phase
}

// EffectCandidates returns the effects scheduled by the last render pass, in
// ledger order. The render pass itself never executes effect bodies; this
// listing is what the commit passes consume.
func (c *Ctx) EffectCandidates() []EffectCandidate {
	var out []EffectCandidate
	for i := range c.slots {
		if c.slots[i].kind != KindEffect {
			continue
		}
		es := c.slots[i].cell.(*effectSlot)
		if es.pending {
			out = append(out, EffectCandidate{Slot: i, Phase: es.phase})
		}
	}
	return out
}

// RunCommit executes cleanup and body for every pending effect of the given
// phase, in ledger order, and returns the number of effects run. A panic
// from a body or cleanup propagates after all strictly-prior work has run;
// the failing effect is not retried.
func (c *Ctx) RunCommit(phase Phase) int {
	ran := 0
	for i := range c.slots {
		if c.slots[i].kind != KindEffect {
			continue
		}
		es := c.slots[i].cell.(*effectSlot)
		if !es.pending || es.phase != phase {
			continue
		}
		es.commit()
		ran++
	}
	return ran
}

// HasPending reports whether any effect of the given phase is still awaiting
// its commit pass.
func (c *Ctx) HasPending(phase Phase) bool {
	for i := range c.slots {
		if c.slots[i].kind != KindEffect {
			continue
		}
		es := c.slots[i].cell.(*effectSlot)
		if es.pending && es.phase == phase {
			return true
		}
	}
	return false
}

// Teardown runs every outstanding effect cleanup exactly once, in ledger
// order, and drops any effect body that never got its commit. It returns the
// number of cleanups run. Called by the coordinator during unmount.
func (c *Ctx) Teardown() int {
	ran := 0
	for i := range c.slots {
		if c.slots[i].kind != KindEffect {
			continue
		}
		es := c.slots[i].cell.(*effectSlot)
		es.pending = false
		if es.cleanup != nil {
			cl := es.cleanup
			es.cleanup = nil
			cl()
			ran++
		}
	}
	return ran
}
