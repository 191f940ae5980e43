package hooks

import (
	"strings"
	"testing"
)

func TestUseStateInitialValue(t *testing.T) {
	c := NewCtx(&testHost{})

	var got string
	renderOnce(t, c, func(c *Ctx) {
		got, _ = UseState(c, "hello")
	})
	if got != "hello" {
		t.Fatalf("initial value=%q, want %q", got, "hello")
	}
}

func TestUseStateFuncInitRunsOnce(t *testing.T) {
	c := NewCtx(&testHost{})

	inits := 0
	body := func(c *Ctx) {
		UseStateFunc(c, func() int {
			inits++
			return 42
		})
	}

	for i := 0; i < 3; i++ {
		renderOnce(t, c, body)
	}
	if inits != 1 {
		t.Fatalf("initializer ran %d times, want 1", inits)
	}
}

func TestDispatchIdentityStableAcrossRenders(t *testing.T) {
	c := NewCtx(&testHost{})

	var handles []*Dispatch[int]
	body := func(c *Ctx) {
		_, d := UseState(c, 0)
		handles = append(handles, d)
	}

	renderOnce(t, c, body)
	handles[0].Set(1)
	renderOnce(t, c, body)
	renderOnce(t, c, body)

	for i := 1; i < len(handles); i++ {
		if handles[i] != handles[0] {
			t.Fatalf("render %d returned a different dispatch handle", i)
		}
		if handles[i].ID() != handles[0].ID() {
			t.Fatalf("render %d returned a different handle ID", i)
		}
	}
}

func TestQueuedUpdatesFoldInDispatchOrder(t *testing.T) {
	host := &testHost{}
	c := NewCtx(host)

	var got int
	var dispatch *Dispatch[int]
	body := func(c *Ctx) {
		got, dispatch = UseState(c, 0)
	}

	renderOnce(t, c, body)

	// Set then two functional updates; all fold in one render.
	dispatch.Set(5)
	dispatch.Update(func(v int) int { return v * 2 })
	dispatch.Update(func(v int) int { return v + 1 })

	if host.invalidations != 3 {
		t.Fatalf("invalidations=%d, want 3", host.invalidations)
	}

	renderOnce(t, c, body)
	if got != 11 {
		t.Fatalf("folded value=%d, want 11", got)
	}
}

func TestStateEqualsOverridesBailout(t *testing.T) {
	c := NewCtx(&testHost{})

	var dispatch *Dispatch[string]
	body := func(c *Ctx) {
		_, dispatch = UseState(c, "Go", StateEquals(strings.EqualFold))
	}

	renderOnce(t, c, body)

	dispatch.Set("GO")
	renderOnce(t, c, body)
	if c.StateChanged() {
		t.Fatal("case-insensitive equality must bail out on GO")
	}

	dispatch.Set("Rust")
	renderOnce(t, c, body)
	if !c.StateChanged() {
		t.Fatal("distinct value must report changed state")
	}
}

func TestFaultingUpdaterPreservesQueue(t *testing.T) {
	c := NewCtx(&testHost{})

	var got int
	var dispatch *Dispatch[int]
	body := func(c *Ctx) {
		got, dispatch = UseState(c, 1)
	}

	renderOnce(t, c, body)

	dispatch.Update(func(int) int { panic("updater fault") })

	render := func() (recovered any) {
		defer func() { recovered = recover() }()
		c.BeginRender()
		body(c)
		c.EndRender()
		return nil
	}

	if r := render(); r == nil {
		t.Fatal("expected updater panic to propagate")
	}
	if got != 1 {
		t.Fatalf("value after fault=%d, want 1 (untouched)", got)
	}

	// The queue was not consumed: the next render hits the same fault.
	if r := render(); r == nil {
		t.Fatal("expected queue to be preserved after fault")
	}
}
