package runtime

import (
	"context"
	"sync"

	"github.com/reflow-ui/reflow/internal/errors"
	"github.com/reflow-ui/reflow/pkg/hooks"
)

// PaintFunc is the host's paint-equivalent step, invoked by the driver
// between the layout and passive commit passes of a cycle.
type PaintFunc func(*Instance)

// LoopDriver is a bundled Scheduler for hosts without their own frame
// clock. Scheduled instances queue up (deduplicated) and each Flush drives
// every queued instance through one full cycle: render, layout commit,
// paint, barrier release, passive commit.
//
// The driver serializes all passes on the flushing goroutine, matching the
// engine's single-threaded cooperative model. Dispatches may still arrive
// from any goroutine; they simply queue more work.
type LoopDriver struct {
	paint PaintFunc

	mu     sync.Mutex
	queue  []*Instance
	queued map[uint64]bool

	// wake is a capacity-1 doorbell, the way a session render channel
	// coalesces schedule requests.
	wake chan struct{}
}

// DriverOption configures a LoopDriver.
type DriverOption func(*LoopDriver)

// WithPaint sets the paint-equivalent step run between the commit phases of
// each cycle. Without it the barrier is released immediately.
func WithPaint(paint PaintFunc) DriverOption {
	return func(d *LoopDriver) {
		d.paint = paint
	}
}

// NewLoopDriver creates a LoopDriver.
func NewLoopDriver(opts ...DriverOption) *LoopDriver {
	d := &LoopDriver{
		queued: make(map[uint64]bool),
		wake:   make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ScheduleRender implements Scheduler. Requests for an already-queued
// instance coalesce.
func (d *LoopDriver) ScheduleRender(inst *Instance) {
	d.mu.Lock()
	if !d.queued[inst.ID()] {
		d.queued[inst.ID()] = true
		d.queue = append(d.queue, inst)
	}
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// pop removes and returns the next queued instance, or nil.
func (d *LoopDriver) pop() *Instance {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.queue) == 0 {
		return nil
	}
	inst := d.queue[0]
	d.queue = d.queue[1:]
	delete(d.queued, inst.ID())
	return inst
}

// Flush drives every queued instance through one cycle, including instances
// scheduled by dispatches made during the flush, until the queue is empty.
// The FIFO barrier holds throughout: an instance's next render only starts
// after its previous passive commit finished.
func (d *LoopDriver) Flush() error {
	for {
		inst := d.pop()
		if inst == nil {
			return nil
		}
		if inst.State() == StateUnmounted {
			// Scheduled passes for a torn-down instance are dropped.
			continue
		}
		if err := d.Cycle(inst); err != nil {
			if errors.IsCode(err, errors.CodeUnmounted) {
				continue
			}
			return err
		}
	}
}

// Run flushes whenever work is scheduled, until the context is canceled.
func (d *LoopDriver) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-d.wake:
			if err := d.Flush(); err != nil {
				return err
			}
		}
	}
}

// Cycle drives one full render/commit cycle for an instance.
func (d *LoopDriver) Cycle(inst *Instance) error {
	if _, err := inst.RenderPass(); err != nil {
		return err
	}
	if err := inst.CommitPass(hooks.PhaseLayout); err != nil {
		return err
	}
	if d.paint != nil {
		d.paint(inst)
	}
	if err := inst.SignalPaintComplete(); err != nil {
		return err
	}
	return inst.CommitPass(hooks.PhasePassive)
}
