// Package reflow re-exports the engine's common surface so applications can
// depend on a single import:
//
//	import "github.com/reflow-ui/reflow"
//
//	rt := reflow.New()
//	inst := rt.Mount(func(ctx *reflow.Ctx) {
//	    count, setCount := reflow.UseState(ctx, 0)
//	    ...
//	})
//
// The underlying packages remain importable directly: pkg/hooks for the
// primitives, pkg/runtime for the coordinator, pkg/host for the websocket
// host.
package reflow

import (
	"github.com/reflow-ui/reflow/pkg/hooks"
	"github.com/reflow-ui/reflow/pkg/runtime"
)

// Ctx is the explicit hook context threaded through component bodies.
type Ctx = runtime.Ctx

// Deps is a dependency snapshot for UseMemo, UseEffect, and UseLayoutEffect.
type Deps = hooks.Deps

// Cleanup is the function an effect body may return.
type Cleanup = hooks.Cleanup

// Phase classifies effect commit timing.
type Phase = hooks.Phase

// Phase constants.
const (
	PhaseLayout  = hooks.PhaseLayout
	PhasePassive = hooks.PhasePassive
)

// Runtime aliases for single-import use.
type (
	Runtime       = runtime.Runtime
	Instance      = runtime.Instance
	RenderResult  = runtime.RenderResult
	Scheduler     = runtime.Scheduler
	LoopDriver    = runtime.LoopDriver
	ComponentFunc = runtime.ComponentFunc
)

// Runtime option re-exports.
var (
	WithScheduler = runtime.WithScheduler
	WithLogger    = runtime.WithLogger
	WithMetrics   = runtime.WithMetrics
	WithTracer    = runtime.WithTracer
)

// New creates a Runtime. See runtime.New for options.
func New(opts ...runtime.Option) *Runtime {
	return runtime.New(opts...)
}

// NewLoopDriver creates the bundled coalescing scheduler.
func NewLoopDriver(opts ...runtime.DriverOption) *LoopDriver {
	return runtime.NewLoopDriver(opts...)
}

// UseState returns the slot's value and stable dispatch handle.
func UseState[T any](ctx *Ctx, initial T, opts ...hooks.StateOption[T]) (T, *hooks.Dispatch[T]) {
	return hooks.UseState(ctx, initial, opts...)
}

// UseStateFunc is UseState with a lazily produced initial value.
func UseStateFunc[T any](ctx *Ctx, init func() T, opts ...hooks.StateOption[T]) (T, *hooks.Dispatch[T]) {
	return hooks.UseStateFunc(ctx, init, opts...)
}

// UseReducer returns reducer-derived state and its stable action handle.
func UseReducer[S, A any](ctx *Ctx, reducer func(S, A) S, initial S, opts ...hooks.ReducerOption[S]) (S, *hooks.DispatchAction[A]) {
	return hooks.UseReducer(ctx, reducer, initial, opts...)
}

// UseReducerInit is UseReducer with a lazy initializer.
func UseReducerInit[S, A, I any](ctx *Ctx, reducer func(S, A) S, initialArg I, init func(I) S, opts ...hooks.ReducerOption[S]) (S, *hooks.DispatchAction[A]) {
	return hooks.UseReducerInit(ctx, reducer, initialArg, init, opts...)
}

// UseMemo returns a memoized value keyed on a dependency snapshot.
func UseMemo[T any](ctx *Ctx, compute func() T, deps Deps, opts ...hooks.MemoOption) T {
	return hooks.UseMemo(ctx, compute, deps, opts...)
}

// UseEffect schedules a deferred (passive) effect.
func UseEffect(ctx *Ctx, body func() Cleanup, deps Deps, opts ...hooks.EffectOption) {
	hooks.UseEffect(ctx, body, deps, opts...)
}

// UseLayoutEffect schedules a synchronous (layout) effect.
func UseLayoutEffect(ctx *Ctx, body func() Cleanup, deps Deps, opts ...hooks.EffectOption) {
	hooks.UseLayoutEffect(ctx, body, deps, opts...)
}
