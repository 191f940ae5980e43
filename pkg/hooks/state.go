package hooks

import (
	"sync"

	"github.com/reflow-ui/reflow/internal/errors"
)

// Dispatch is the stable update handle returned by UseState. One Dispatch is
// created when its slot is created and the same handle is returned on every
// subsequent render, so it is safe to capture in goroutines and to omit from
// dependency snapshots.
//
// Dispatch never mutates the slot value directly; it appends to the slot's
// update queue and asks the host to schedule a render. The queue is folded
// into the value when the slot's hook call executes during that render.
type Dispatch[T any] struct {
	id   uint64
	slot *stateSlot[T]
	ctx  *Ctx
}

// ID returns the unique identifier of this handle.
func (d *Dispatch[T]) ID() uint64 {
	return d.id
}

// Set enqueues a replacement value.
func (d *Dispatch[T]) Set(v T) {
	d.slot.enqueue(func(T) T { return v })
	d.ctx.invalidate()
}

// Update enqueues a functional update. The function receives the value
// produced by the updates queued before it, in dispatch call order.
func (d *Dispatch[T]) Update(fn func(T) T) {
	d.slot.enqueue(fn)
	d.ctx.invalidate()
}

// stateSlot holds a state container: the current value, the queue of
// pending updates, and the configured equality.
type stateSlot[T any] struct {
	value    T
	eq       Equality
	dispatch *Dispatch[T]

	// queue holds updates in dispatch call order. Guarded by mu because
	// dispatches may arrive from any goroutine; everything else on the
	// slot is coordinator-owned.
	mu    sync.Mutex
	queue []func(T) T
}

func (s *stateSlot[T]) enqueue(fn func(T) T) {
	s.mu.Lock()
	s.queue = append(s.queue, fn)
	s.mu.Unlock()
}

// fold applies the queued updates left-to-right over the current value and
// reports whether the result differs under the slot's equality. The queue is
// consumed only after every update has applied; a panicking updater leaves
// both the value and the queue untouched.
func (s *stateSlot[T]) fold() bool {
	s.mu.Lock()
	queue := s.queue
	s.mu.Unlock()

	if len(queue) == 0 {
		return false
	}

	v := s.value
	for _, fn := range queue {
		v = fn(v)
	}

	changed := !typedEquals(s.eq, s.value, v)
	s.value = v

	s.mu.Lock()
	s.queue = s.queue[len(queue):]
	s.mu.Unlock()

	return changed
}

// StateOption configures a state slot at creation.
type StateOption[T any] func(*stateSlot[T])

// StateEquals overrides the slot's equality, used for the bail-out decision
// after each fold. The default is SameValue.
func StateEquals[T any](eq func(a, b T) bool) StateOption[T] {
	return func(s *stateSlot[T]) {
		s.eq = func(a, b any) bool { return eq(a.(T), b.(T)) }
	}
}

// UseState returns the slot's current value and its stable dispatch handle,
// creating the slot with the given initial value on the first render.
//
// On renders after a dispatch, the queued updates are folded left-to-right
// over the current value before it is returned. If the fold result equals
// the previous value under the slot's equality, the change does not
// propagate: downstream memo and effect work keyed on the value sees no
// difference, and the instance reports an unchanged render to the host.
func UseState[T any](ctx *Ctx, initial T, opts ...StateOption[T]) (T, *Dispatch[T]) {
	return useState(ctx, func() T { return initial }, opts...)
}

// UseStateFunc is UseState with a lazily produced initial value. The
// producer is invoked exactly once, when the slot is first created, and
// never again for the lifetime of the instance.
func UseStateFunc[T any](ctx *Ctx, init func() T, opts ...StateOption[T]) (T, *Dispatch[T]) {
	return useState(ctx, init, opts...)
}

func useState[T any](ctx *Ctx, init func() T, opts ...StateOption[T]) (T, *Dispatch[T]) {
	entry := ctx.next(KindState)

	if entry.cell == nil {
		slot := &stateSlot[T]{value: init()}
		for _, opt := range opts {
			opt(slot)
		}
		slot.dispatch = &Dispatch[T]{id: nextID(), slot: slot, ctx: ctx}
		entry.cell = slot
		return slot.value, slot.dispatch
	}

	slot, ok := entry.cell.(*stateSlot[T])
	if !ok {
		panic(errors.New(errors.CodeSlotKind, errors.CategoryLedger,
			"state slot value type changed between renders"))
	}
	if slot.fold() {
		ctx.stateChanged = true
	}
	return slot.value, slot.dispatch
}
