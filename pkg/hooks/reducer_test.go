package hooks

import (
	"testing"
)

type counterAction string

func counterReducer(v int, a counterAction) int {
	switch a {
	case "inc":
		return v + 1
	case "dec":
		return v - 1
	case "reset":
		return 0
	}
	return v
}

func TestUseReducerFoldsActionsInDispatchOrder(t *testing.T) {
	host := &testHost{}
	c := NewCtx(host)

	var got int
	var dispatch *DispatchAction[counterAction]
	body := func(c *Ctx) {
		got, dispatch = UseReducer(c, counterReducer, 0)
	}

	renderOnce(t, c, body)
	if got != 0 {
		t.Fatalf("initial value=%d, want 0", got)
	}

	// Two dispatches before the next render fold into one pass.
	dispatch.Dispatch("inc")
	dispatch.Dispatch("inc")
	if host.invalidations != 2 {
		t.Fatalf("invalidations=%d, want 2", host.invalidations)
	}

	renderOnce(t, c, body)
	if got != 2 {
		t.Fatalf("folded value=%d, want 2", got)
	}

	dispatch.Dispatch("inc")
	dispatch.Dispatch("reset")
	dispatch.Dispatch("dec")
	renderOnce(t, c, body)
	if got != -1 {
		t.Fatalf("folded value=%d, want -1 (inc, reset, dec in order)", got)
	}
}

func TestUseReducerInitRunsOnce(t *testing.T) {
	c := NewCtx(&testHost{})

	inits := 0
	var got int
	body := func(c *Ctx) {
		got, _ = UseReducerInit(c, counterReducer, 10, func(arg int) int {
			inits++
			return arg * 10
		})
	}

	renderOnce(t, c, body)
	renderOnce(t, c, body)
	if inits != 1 {
		t.Fatalf("initializer ran %d times, want 1", inits)
	}
	if got != 100 {
		t.Fatalf("value=%d, want 100", got)
	}
}

func TestUseReducerSeesLatestReducerClosure(t *testing.T) {
	c := NewCtx(&testHost{})

	step := 1
	var got int
	var dispatch *DispatchAction[counterAction]
	body := func(c *Ctx) {
		got, dispatch = UseReducer(c, func(v int, a counterAction) int {
			if a == "inc" {
				return v + step
			}
			return v
		}, 0)
	}

	renderOnce(t, c, body)
	dispatch.Dispatch("inc")
	renderOnce(t, c, body)
	if got != 1 {
		t.Fatalf("value=%d, want 1", got)
	}

	// Actions dispatched after this render fold through the reducer the
	// consuming render observes.
	step = 5
	dispatch.Dispatch("inc")
	renderOnce(t, c, body)
	if got != 6 {
		t.Fatalf("value=%d, want 6 (latest reducer closure)", got)
	}
}

func TestReducerEqualsBailout(t *testing.T) {
	c := NewCtx(&testHost{})

	var dispatch *DispatchAction[counterAction]
	body := func(c *Ctx) {
		_, dispatch = UseReducer(c, func(v int, _ counterAction) int {
			return v
		}, 3, ReducerEquals(func(a, b int) bool { return a == b }))
	}

	renderOnce(t, c, body)
	dispatch.Dispatch("inc")
	renderOnce(t, c, body)
	if c.StateChanged() {
		t.Fatal("identity reducer must bail out")
	}
}

func TestFaultingReducerPreservesQueue(t *testing.T) {
	c := NewCtx(&testHost{})

	var got int
	var dispatch *DispatchAction[counterAction]
	body := func(c *Ctx) {
		got, dispatch = UseReducer(c, func(v int, a counterAction) int {
			if a == "boom" {
				panic("reducer fault")
			}
			return counterReducer(v, a)
		}, 0)
	}

	renderOnce(t, c, body)
	dispatch.Dispatch("inc")
	dispatch.Dispatch("boom")

	render := func() (recovered any) {
		defer func() { recovered = recover() }()
		c.BeginRender()
		body(c)
		c.EndRender()
		return nil
	}

	if r := render(); r == nil {
		t.Fatal("expected reducer panic to propagate")
	}
	if got != 0 {
		t.Fatalf("value after fault=%d, want 0 (untouched)", got)
	}
	if r := render(); r == nil {
		t.Fatal("expected queue to be preserved after fault")
	}
}
