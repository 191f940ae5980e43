package hooks

import (
	"strings"
	"testing"
)

func TestUseMemoRecomputesOnlyWhenDepsChange(t *testing.T) {
	c := NewCtx(&testHost{})

	computes := 0
	dep := 1
	var got int
	body := func(c *Ctx) {
		got = UseMemo(c, func() int {
			computes++
			return dep * 10
		}, Deps{dep})
	}

	renderOnce(t, c, body)
	renderOnce(t, c, body)
	renderOnce(t, c, body)
	if computes != 1 {
		t.Fatalf("computes=%d, want 1 (unchanged deps)", computes)
	}
	if got != 10 {
		t.Fatalf("value=%d, want 10", got)
	}

	dep = 2
	renderOnce(t, c, body)
	if computes != 2 {
		t.Fatalf("computes=%d, want 2 after dep change", computes)
	}
	if got != 20 {
		t.Fatalf("value=%d, want 20", got)
	}

	dep = 1
	renderOnce(t, c, body)
	if computes != 3 {
		t.Fatalf("computes=%d, want 3 (dep differs from last snapshot)", computes)
	}
}

func TestUseMemoNilDepsRecomputesEveryRender(t *testing.T) {
	c := NewCtx(&testHost{})

	computes := 0
	body := func(c *Ctx) {
		UseMemo(c, func() int {
			computes++
			return computes
		}, nil)
	}

	for i := 0; i < 4; i++ {
		renderOnce(t, c, body)
	}
	if computes != 4 {
		t.Fatalf("computes=%d, want 4 (nil deps recompute every render)", computes)
	}
}

func TestUseMemoEmptyDepsComputesOnce(t *testing.T) {
	c := NewCtx(&testHost{})

	computes := 0
	body := func(c *Ctx) {
		UseMemo(c, func() string {
			computes++
			return "once"
		}, Deps{})
	}

	for i := 0; i < 4; i++ {
		renderOnce(t, c, body)
	}
	if computes != 1 {
		t.Fatalf("computes=%d, want 1 (empty deps never change)", computes)
	}
}

func TestUseMemoDepLengthChangeRecomputes(t *testing.T) {
	c := NewCtx(&testHost{})

	computes := 0
	deps := Deps{1}
	body := func(c *Ctx) {
		UseMemo(c, func() int {
			computes++
			return 0
		}, deps)
	}

	renderOnce(t, c, body)
	deps = Deps{1, 2}
	renderOnce(t, c, body)
	if computes != 2 {
		t.Fatalf("computes=%d, want 2 (length change)", computes)
	}
}

func TestMemoEqualsOverridesDiffing(t *testing.T) {
	c := NewCtx(&testHost{})

	computes := 0
	dep := "go"
	body := func(c *Ctx) {
		UseMemo(c, func() int {
			computes++
			return len(dep)
		}, Deps{dep}, MemoEquals(func(a, b any) bool {
			return strings.EqualFold(a.(string), b.(string))
		}))
	}

	renderOnce(t, c, body)
	dep = "GO"
	renderOnce(t, c, body)
	if computes != 1 {
		t.Fatalf("computes=%d, want 1 (case-insensitive deps)", computes)
	}

	dep = "rust"
	renderOnce(t, c, body)
	if computes != 2 {
		t.Fatalf("computes=%d, want 2", computes)
	}
}

func TestUseMemoSliceDepComparesByIdentity(t *testing.T) {
	c := NewCtx(&testHost{})

	computes := 0
	dep := []int{1, 2}
	body := func(c *Ctx) {
		UseMemo(c, func() int {
			computes++
			return len(dep)
		}, Deps{dep})
	}

	renderOnce(t, c, body)
	renderOnce(t, c, body)
	if computes != 1 {
		t.Fatalf("computes=%d, want 1 (same backing array)", computes)
	}

	// Equal contents, different allocation: identity differs, recompute.
	dep = []int{1, 2}
	renderOnce(t, c, body)
	if computes != 2 {
		t.Fatalf("computes=%d, want 2 (new slice identity)", computes)
	}
}
