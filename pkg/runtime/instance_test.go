package runtime

import (
	"sync"
	"testing"

	"github.com/reflow-ui/reflow/internal/errors"
	"github.com/reflow-ui/reflow/pkg/hooks"
)

// recordScheduler records every ScheduleRender call.
type recordScheduler struct {
	mu    sync.Mutex
	calls []*Instance
}

func (s *recordScheduler) ScheduleRender(inst *Instance) {
	s.mu.Lock()
	s.calls = append(s.calls, inst)
	s.mu.Unlock()
}

func (s *recordScheduler) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// cycle drives one full render/commit cycle and fails the test on any error.
func cycle(t *testing.T, inst *Instance) RenderResult {
	t.Helper()
	result, err := inst.RenderPass()
	if err != nil {
		t.Fatalf("RenderPass: %v", err)
	}
	if err := inst.CommitPass(hooks.PhaseLayout); err != nil {
		t.Fatalf("CommitPass(layout): %v", err)
	}
	if err := inst.SignalPaintComplete(); err != nil {
		t.Fatalf("SignalPaintComplete: %v", err)
	}
	if err := inst.CommitPass(hooks.PhasePassive); err != nil {
		t.Fatalf("CommitPass(passive): %v", err)
	}
	return result
}

func TestCoordinatorStateTransitions(t *testing.T) {
	rt := New()
	inst := rt.Mount(func(ctx *Ctx) {
		hooks.UseState(ctx, 0)
	})

	if got := inst.State(); got != StateIdle {
		t.Fatalf("state=%s, want idle", got)
	}

	if _, err := inst.RenderPass(); err != nil {
		t.Fatalf("RenderPass: %v", err)
	}
	if got := inst.State(); got != StateCommitLayout {
		t.Fatalf("state=%s, want commit-layout", got)
	}

	if err := inst.CommitPass(hooks.PhaseLayout); err != nil {
		t.Fatalf("CommitPass(layout): %v", err)
	}
	if got := inst.State(); got != StatePaintBarrier {
		t.Fatalf("state=%s, want paint-barrier", got)
	}

	if err := inst.SignalPaintComplete(); err != nil {
		t.Fatalf("SignalPaintComplete: %v", err)
	}
	if got := inst.State(); got != StateCommitPassive {
		t.Fatalf("state=%s, want commit-passive", got)
	}

	if err := inst.CommitPass(hooks.PhasePassive); err != nil {
		t.Fatalf("CommitPass(passive): %v", err)
	}
	if got := inst.State(); got != StateIdle {
		t.Fatalf("state=%s, want idle", got)
	}
}

func TestCoordinatorRejectsOutOfOrderOperations(t *testing.T) {
	rt := New()
	inst := rt.Mount(func(ctx *Ctx) {
		hooks.UseState(ctx, 0)
	})

	// Commit before any render.
	if err := inst.CommitPass(hooks.PhaseLayout); !errors.IsCode(err, errors.CodePhase) {
		t.Fatalf("layout commit while idle: err=%v, want code %s", err, errors.CodePhase)
	}
	if err := inst.SignalPaintComplete(); !errors.IsCode(err, errors.CodePhase) {
		t.Fatalf("paint signal while idle: err=%v, want code %s", err, errors.CodePhase)
	}

	if _, err := inst.RenderPass(); err != nil {
		t.Fatalf("RenderPass: %v", err)
	}

	// Re-entrant render.
	if _, err := inst.RenderPass(); !errors.IsCode(err, errors.CodePhase) {
		t.Fatalf("render during commit-layout: err=%v, want code %s", err, errors.CodePhase)
	}

	// Passive commit before the barrier is released.
	if err := inst.CommitPass(hooks.PhasePassive); !errors.IsCode(err, errors.CodePhase) {
		t.Fatalf("passive commit before barrier: err=%v, want code %s", err, errors.CodePhase)
	}
}

func TestBailoutReportsUnchangedAndNoCandidates(t *testing.T) {
	rt := New()

	var dispatch *hooks.Dispatch[int]
	effectRuns := 0
	inst := rt.Mount(func(ctx *Ctx) {
		var count int
		count, dispatch = hooks.UseState(ctx, 0)
		hooks.UseEffect(ctx, func() hooks.Cleanup {
			effectRuns++
			return nil
		}, hooks.Deps{count})
	})

	result := cycle(t, inst)
	if result.Unchanged {
		t.Fatal("mount render must not report unchanged")
	}
	if effectRuns != 1 {
		t.Fatalf("effectRuns=%d, want 1 after mount", effectRuns)
	}

	// Equal-value dispatch: fold produces no change, deps do not differ.
	dispatch.Set(0)
	result = cycle(t, inst)
	if !result.Unchanged {
		t.Fatal("equal-value dispatch must report unchanged")
	}
	if len(result.Changed) != 0 {
		t.Fatalf("candidates=%d, want 0 on bail-out", len(result.Changed))
	}
	if effectRuns != 1 {
		t.Fatalf("effectRuns=%d, want 1 (no re-run on bail-out)", effectRuns)
	}

	dispatch.Set(3)
	result = cycle(t, inst)
	if result.Unchanged {
		t.Fatal("new value must not report unchanged")
	}
	if effectRuns != 2 {
		t.Fatalf("effectRuns=%d, want 2", effectRuns)
	}
}

func TestDispatchesCoalesceIntoOneScheduledRender(t *testing.T) {
	sched := &recordScheduler{}
	rt := New(WithScheduler(sched))

	var count int
	var dispatch *hooks.Dispatch[int]
	inst := rt.Mount(func(ctx *Ctx) {
		count, dispatch = hooks.UseState(ctx, 0)
	})

	cycle(t, inst)

	dispatch.Update(func(v int) int { return v + 1 })
	dispatch.Update(func(v int) int { return v + 1 })
	dispatch.Update(func(v int) int { return v + 1 })

	if got := sched.count(); got != 1 {
		t.Fatalf("scheduled renders=%d, want 1 (coalesced)", got)
	}

	cycle(t, inst)
	if count != 3 {
		t.Fatalf("count=%d, want 3 (all updates folded)", count)
	}
}

func TestDispatchDuringCommitSchedulesAfterIdle(t *testing.T) {
	sched := &recordScheduler{}
	rt := New(WithScheduler(sched))

	var dispatch *hooks.Dispatch[int]
	fired := false
	inst := rt.Mount(func(ctx *Ctx) {
		_, dispatch = hooks.UseState(ctx, 0)
		hooks.UseEffect(ctx, func() hooks.Cleanup {
			if !fired {
				fired = true
				dispatch.Set(1)
			}
			return nil
		}, hooks.Deps{})
	})

	cycle(t, inst)

	// The dispatch landed while the instance was mid-cycle; the schedule
	// request must arrive once the passive commit returns it to idle.
	if got := sched.count(); got != 1 {
		t.Fatalf("scheduled renders=%d, want 1 (deferred to idle)", got)
	}
	if !inst.Dirty() {
		t.Fatal("instance must be dirty after the effect's dispatch")
	}

	// The next cycle folds the deferred update.
	result := cycle(t, inst)
	if result.Unchanged {
		t.Fatal("deferred update must produce a changed render")
	}
}

func TestLedgerViolationFailsInstanceButTeardownStillRuns(t *testing.T) {
	rt := New()

	cleanups := 0
	extra := false
	inst := rt.Mount(func(ctx *Ctx) {
		hooks.UseState(ctx, 0)
		hooks.UseEffect(ctx, func() hooks.Cleanup {
			return func() { cleanups++ }
		}, hooks.Deps{})
		if extra {
			hooks.UseState(ctx, 1)
		}
	})

	cycle(t, inst)

	extra = true
	_, err := inst.RenderPass()
	if !errors.IsCode(err, errors.CodeLedgerOrder) {
		t.Fatalf("err=%v, want code %s", err, errors.CodeLedgerOrder)
	}

	// The instance refuses further passes with the same error.
	_, err2 := inst.RenderPass()
	if !errors.IsCode(err2, errors.CodeLedgerOrder) {
		t.Fatalf("second pass err=%v, want code %s", err2, errors.CodeLedgerOrder)
	}

	// The host unmounts a failed instance; cleanups still run.
	inst.Unmount()
	if cleanups != 1 {
		t.Fatalf("cleanups=%d, want 1", cleanups)
	}
}

func TestUnmountIsIdempotentAndRefusesFurtherWork(t *testing.T) {
	sched := &recordScheduler{}
	rt := New(WithScheduler(sched))

	cleanups := 0
	var dispatch *hooks.Dispatch[int]
	inst := rt.Mount(func(ctx *Ctx) {
		_, dispatch = hooks.UseState(ctx, 0)
		hooks.UseEffect(ctx, func() hooks.Cleanup {
			return func() { cleanups++ }
		}, hooks.Deps{})
	})

	cycle(t, inst)

	inst.Unmount()
	inst.Unmount()
	if cleanups != 1 {
		t.Fatalf("cleanups=%d, want 1 (exactly once)", cleanups)
	}

	if _, err := inst.RenderPass(); !errors.IsCode(err, errors.CodeUnmounted) {
		t.Fatalf("render after unmount: err=%v, want code %s", err, errors.CodeUnmounted)
	}
	if err := inst.CommitPass(hooks.PhaseLayout); !errors.IsCode(err, errors.CodeUnmounted) {
		t.Fatalf("commit after unmount: err=%v, want code %s", err, errors.CodeUnmounted)
	}

	// Dispatches after unmount must not schedule anything.
	before := sched.count()
	dispatch.Set(9)
	if got := sched.count(); got != before {
		t.Fatalf("scheduled renders=%d, want %d (unmounted)", got, before)
	}
}

func TestUserPanicPropagatesAndReturnsToIdle(t *testing.T) {
	rt := New()

	var dispatch *hooks.Dispatch[int]
	inst := rt.Mount(func(ctx *Ctx) {
		_, dispatch = hooks.UseState(ctx, 0)
	})

	cycle(t, inst)

	dispatch.Update(func(int) int { panic("updater fault") })

	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("expected user panic to propagate")
			}
		}()
		inst.RenderPass()
	}()

	if got := inst.State(); got != StateIdle {
		t.Fatalf("state after user panic=%s, want idle", got)
	}
}
