package runtime

import (
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// ComponentFunc is a component body: a function that issues hook calls
// against the explicit hook context, in the same order on every render.
type ComponentFunc func(*Ctx)

// Scheduler is the host collaborator that decides when a scheduled
// re-evaluation actually runs. The engine guarantees at most one
// ScheduleRender call per instance per quiet period: dispatches arriving
// before the scheduled render are coalesced into it.
type Scheduler interface {
	ScheduleRender(*Instance)
}

// nopScheduler discards schedule requests. Instances still mark themselves
// dirty, so hosts polling Dirty() can drive renders themselves.
type nopScheduler struct{}

func (nopScheduler) ScheduleRender(*Instance) {}

// Runtime mounts component instances and carries the cross-instance
// collaborators: the scheduler, logger, metrics, and tracer.
type Runtime struct {
	scheduler Scheduler
	logger    *slog.Logger
	metrics   *Metrics
	tracer    trace.Tracer
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithScheduler sets the host scheduler that receives re-render requests.
func WithScheduler(s Scheduler) Option {
	return func(r *Runtime) {
		r.scheduler = s
	}
}

// WithLogger sets the runtime logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runtime) {
		r.logger = logger
	}
}

// WithMetrics enables Prometheus instrumentation of render and commit work.
func WithMetrics(m *Metrics) Option {
	return func(r *Runtime) {
		r.metrics = m
	}
}

// WithTracer enables OpenTelemetry spans around render and commit passes.
func WithTracer(t trace.Tracer) Option {
	return func(r *Runtime) {
		r.tracer = t
	}
}

// New creates a Runtime.
func New(opts ...Option) *Runtime {
	r := &Runtime{
		scheduler: nopScheduler{},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default().With("component", "runtime")
	}
	return r
}

// Logger returns the runtime logger.
func (r *Runtime) Logger() *slog.Logger {
	return r.logger
}

// Mount creates an instance for the component body and runs nothing yet: the
// host drives the first render pass like any other. The returned handle is
// what RenderPass, CommitPass, SignalPaintComplete, and Unmount operate on.
func (r *Runtime) Mount(body ComponentFunc) *Instance {
	inst := newInstance(r, body)
	if r.metrics != nil {
		r.metrics.mounted.Inc()
	}
	r.logger.Debug("mounted instance", "instance", inst.ID())
	return inst
}
