package host

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/reflow-ui/reflow/pkg/runtime"
)

// Program is a session's component body: hook calls against ctx plus
// handler registration and snapshot publication against the session.
type Program func(ctx *runtime.Ctx, sess *Session)

// Config holds host tuning knobs.
type Config struct {
	// ReadTimeout bounds how long a connection may stay silent.
	ReadTimeout time.Duration

	// WriteTimeout bounds each frame write.
	WriteTimeout time.Duration

	// EventQueueSize bounds the per-session inbound event queue.
	EventQueueSize int

	// CheckOrigin overrides the websocket upgrader's origin check.
	CheckOrigin func(*http.Request) bool
}

func defaultConfig() Config {
	return Config{
		ReadTimeout:    60 * time.Second,
		WriteTimeout:   10 * time.Second,
		EventQueueSize: 64,
	}
}

// Option configures a Host.
type Option func(*Host)

// WithConfig replaces the host configuration.
func WithConfig(config Config) Option {
	return func(h *Host) {
		h.config = config
	}
}

// WithLogger sets the host logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Host) {
		h.logger = logger
	}
}

// WithRuntimeOptions passes options through to the runtime the host creates.
// The host always installs itself as the runtime's scheduler.
func WithRuntimeOptions(opts ...runtime.Option) Option {
	return func(h *Host) {
		h.rtOpts = opts
	}
}

// Host upgrades websocket connections and runs one Program session per
// connection. It implements runtime.Scheduler by routing schedule requests
// to the owning session's render doorbell.
type Host struct {
	program Program
	config  Config
	logger  *slog.Logger
	rtOpts  []runtime.Option

	rt       *runtime.Runtime
	upgrader websocket.Upgrader

	mu       sync.Mutex
	sessions map[uint64]*Session // keyed by instance ID
}

// New creates a Host running the given program.
func New(program Program, opts ...Option) *Host {
	h := &Host{
		program:  program,
		config:   defaultConfig(),
		sessions: make(map[uint64]*Session),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = slog.Default().With("component", "host")
	}

	rtOpts := append([]runtime.Option{runtime.WithScheduler(h)}, h.rtOpts...)
	h.rt = runtime.New(rtOpts...)

	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     h.config.CheckOrigin,
	}
	return h
}

// Runtime returns the runtime backing this host.
func (h *Host) Runtime() *runtime.Runtime {
	return h.rt
}

// Routes returns a chi router serving the websocket endpoint at /ws and a
// liveness endpoint at /healthz.
func (h *Host) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/ws", h.handleWS)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return r
}

// ScheduleRender implements runtime.Scheduler: the request lands on the
// owning session's doorbell so the flush happens on that session's loop.
func (h *Host) ScheduleRender(inst *runtime.Instance) {
	h.mu.Lock()
	sess := h.sessions[inst.ID()]
	h.mu.Unlock()
	if sess != nil {
		sess.scheduleRender()
	}
}

// SessionCount returns the number of live sessions.
func (h *Host) SessionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// handleWS upgrades the connection and runs a session until it closes.
func (h *Host) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	sess := newSession(h, conn)

	h.mu.Lock()
	h.sessions[sess.inst.ID()] = sess
	h.mu.Unlock()

	h.logger.Info("session opened", "instance", sess.inst.ID(), "remote", r.RemoteAddr)

	sess.run()

	h.mu.Lock()
	delete(h.sessions, sess.inst.ID())
	h.mu.Unlock()

	h.logger.Info("session closed", "instance", sess.inst.ID())
}
