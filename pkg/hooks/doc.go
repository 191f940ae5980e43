// Package hooks provides the hook primitives of the reflow engine: per-slot
// persistent state, reducer-derived state, memoized computations, and
// two-phase effects, all addressed through the ordered sequence of hook
// calls a component body makes on every render.
//
// Unlike ambient-context hook systems, every primitive takes an explicit
// *Ctx handle:
//
//	func Counter(ctx *hooks.Ctx) {
//	    count, setCount := hooks.UseState(ctx, 0)
//	    doubled := hooks.UseMemo(ctx, func() int { return count * 2 }, hooks.Deps{count})
//	    hooks.UseEffect(ctx, func() hooks.Cleanup {
//	        log.Printf("count=%d doubled=%d", count, doubled)
//	        return nil
//	    }, hooks.Deps{count})
//	    _ = setCount
//	}
//
// Slot identity is positional: the Nth hook call of a render always refers
// to the Nth slot of the instance's ledger, so the hook call order must be
// identical on every render. A diverging order is a fatal ledger-consistency
// error, not a recoverable one.
//
// The package only records work; it performs no side effects during a render
// pass. Effect bodies and cleanups run later, during the commit passes
// driven by the runtime package.
package hooks
