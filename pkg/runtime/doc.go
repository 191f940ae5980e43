// Package runtime provides the render/commit coordinator of the reflow
// engine. It owns component instances, drives the per-instance state machine
//
//	Idle → Rendering → Committing(layout) → PaintBarrier →
//	Committing(passive) → Idle
//
// and enforces the engine's ordering guarantees: a render pass is pure and
// only records effect candidates; the layout commit flushes before the host
// paints; the passive commit flushes after the host releases the paint
// barrier; and a subsequent render's effects never run while the previous
// render's passive effects are still pending.
//
// What counts as the paint-equivalent step, and when a scheduled render
// actually runs, are host policy: hosts plug in via the Scheduler interface
// and release the barrier with SignalPaintComplete. Hosts without their own
// frame clock can use the bundled LoopDriver.
package runtime
