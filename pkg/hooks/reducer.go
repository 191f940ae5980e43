package hooks

import (
	"sync"

	"github.com/reflow-ui/reflow/internal/errors"
)

// DispatchAction is the stable action handle returned by UseReducer. Like
// Dispatch, it is created once per slot and keeps its identity for the
// instance's lifetime.
type DispatchAction[A any] struct {
	id   uint64
	send func(A)
	ctx  *Ctx
}

// ID returns the unique identifier of this handle.
func (d *DispatchAction[A]) ID() uint64 {
	return d.id
}

// Dispatch enqueues an action and asks the host to schedule a render.
// Actions queued before that render are folded through the reducer in
// dispatch call order.
func (d *DispatchAction[A]) Dispatch(action A) {
	d.send(action)
	d.ctx.invalidate()
}

// reducerSlot holds reducer-derived state: the current value, the reducer,
// and the queue of pending actions.
type reducerSlot[S, A any] struct {
	value    S
	reducer  func(S, A) S
	eq       Equality
	dispatch *DispatchAction[A]

	mu    sync.Mutex
	queue []A
}

func (s *reducerSlot[S, A]) enqueue(action A) {
	s.mu.Lock()
	s.queue = append(s.queue, action)
	s.mu.Unlock()
}

// fold passes every queued action through the reducer, left-to-right. A
// panicking reducer leaves the value and queue untouched; the fault
// propagates out of the render pass that consumed the queue.
func (s *reducerSlot[S, A]) fold() bool {
	s.mu.Lock()
	queue := s.queue
	s.mu.Unlock()

	if len(queue) == 0 {
		return false
	}

	v := s.value
	for _, action := range queue {
		v = s.reducer(v, action)
	}

	changed := !typedEquals(s.eq, s.value, v)
	s.value = v

	s.mu.Lock()
	s.queue = s.queue[len(queue):]
	s.mu.Unlock()

	return changed
}

// ReducerOption configures a reducer slot at creation.
type ReducerOption[S any] func(*reducerConfig[S])

type reducerConfig[S any] struct {
	eq Equality
}

// ReducerEquals overrides the slot's equality for the bail-out decision.
func ReducerEquals[S any](eq func(a, b S) bool) ReducerOption[S] {
	return func(c *reducerConfig[S]) {
		c.eq = func(a, b any) bool { return eq(a.(S), b.(S)) }
	}
}

// UseReducer returns the slot's current value and its stable action handle,
// creating the slot with the given initial value on the first render.
//
// The reducer closure is refreshed on every render so captured values stay
// current, but queued actions always fold through the reducer that the
// consuming render observes.
func UseReducer[S, A any](ctx *Ctx, reducer func(S, A) S, initial S, opts ...ReducerOption[S]) (S, *DispatchAction[A]) {
	return useReducer(ctx, reducer, func() S { return initial }, opts...)
}

// UseReducerInit is UseReducer with a lazy initializer: the stored initial
// value is init(initialArg), computed exactly once at slot creation.
func UseReducerInit[S, A, I any](ctx *Ctx, reducer func(S, A) S, initialArg I, init func(I) S, opts ...ReducerOption[S]) (S, *DispatchAction[A]) {
	return useReducer(ctx, reducer, func() S { return init(initialArg) }, opts...)
}

func useReducer[S, A any](ctx *Ctx, reducer func(S, A) S, init func() S, opts ...ReducerOption[S]) (S, *DispatchAction[A]) {
	entry := ctx.next(KindReducer)

	if entry.cell == nil {
		var cfg reducerConfig[S]
		for _, opt := range opts {
			opt(&cfg)
		}
		slot := &reducerSlot[S, A]{value: init(), reducer: reducer, eq: cfg.eq}
		slot.dispatch = &DispatchAction[A]{id: nextID(), send: slot.enqueue, ctx: ctx}
		entry.cell = slot
		return slot.value, slot.dispatch
	}

	slot, ok := entry.cell.(*reducerSlot[S, A])
	if !ok {
		panic(errors.New(errors.CodeSlotKind, errors.CategoryLedger,
			"reducer slot value type changed between renders"))
	}
	slot.reducer = reducer
	if slot.fold() {
		ctx.stateChanged = true
	}
	return slot.value, slot.dispatch
}
