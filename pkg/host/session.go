package host

import (
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/reflow-ui/reflow/pkg/hooks"
	"github.com/reflow-ui/reflow/pkg/runtime"
)

// EventFrame is the client-to-server wire format: a named event with an
// opaque payload, routed to the handler the program registered under that
// name during its last render.
type EventFrame struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// SnapshotFrame is the server-to-client wire format: the snapshot the
// program published, sent as the session's paint-equivalent step.
type SnapshotFrame struct {
	Seq      uint64 `json:"seq"`
	Snapshot any    `json:"snapshot"`
}

// errorFrame reports a host-level problem to the client.
type errorFrame struct {
	Error string `json:"error"`
}

// Session binds one websocket connection to one engine instance.
type Session struct {
	host   *Host
	conn   *websocket.Conn
	logger *slog.Logger
	inst   *runtime.Instance

	// events carries decoded client frames from the read goroutine to
	// the session loop.
	events chan EventFrame

	// renderCh is the capacity-1 render doorbell; schedule requests
	// coalesce on it.
	renderCh chan struct{}

	// done closes when the read loop exits.
	done chan struct{}

	// handlers is the registration from the last completed render;
	// nextHandlers accumulates during the in-flight render.
	handlers     map[string]func(json.RawMessage)
	nextHandlers map[string]func(json.RawMessage)

	// snapshot is what Publish recorded during the current render.
	snapshot    any
	hasSnapshot bool

	// writeMu serializes frame writes: snapshots go out on the session
	// loop, decode errors on the reader goroutine.
	writeMu sync.Mutex
	sendSeq atomic.Uint64
	closed  atomic.Bool
}

func newSession(h *Host, conn *websocket.Conn) *Session {
	s := &Session{
		host:     h,
		conn:     conn,
		events:   make(chan EventFrame, h.config.EventQueueSize),
		renderCh: make(chan struct{}, 1),
		done:     make(chan struct{}),
		handlers: make(map[string]func(json.RawMessage)),
	}

	s.inst = h.rt.Mount(func(ctx *runtime.Ctx) {
		s.nextHandlers = make(map[string]func(json.RawMessage))
		s.hasSnapshot = false
		h.program(ctx, s)
	})
	s.logger = h.logger.With("instance", s.inst.ID())
	return s
}

// HandleFunc registers an event handler for the current render. Must be
// called from the program body; registrations not repeated on the next
// render disappear with that render.
func (s *Session) HandleFunc(name string, fn func(payload json.RawMessage)) {
	s.nextHandlers[name] = fn
}

// Publish records the snapshot to send to the client when this render
// reaches its paint step. The value must marshal as JSON.
func (s *Session) Publish(v any) {
	s.snapshot = v
	s.hasSnapshot = true
}

// run mounts the session loop and the connection read loop, flushes the
// initial render, and blocks until the connection closes. The instance is
// unmounted (cleanups run) before run returns.
func (s *Session) run() {
	defer s.inst.Unmount()
	defer s.conn.Close()

	go s.readLoop()

	// Initial render.
	s.scheduleRender()

	for {
		select {
		case <-s.done:
			return
		case ev := <-s.events:
			s.handleEvent(ev)
		case <-s.renderCh:
			if err := s.flush(); err != nil {
				s.logger.Error("render flush failed", "error", err)
				return
			}
		}
	}
}

// scheduleRender coalesces a render request onto the doorbell.
func (s *Session) scheduleRender() {
	select {
	case s.renderCh <- struct{}{}:
	default:
	}
}

// readLoop reads and decodes frames on the connection's reader goroutine
// and queues them for the session loop.
func (s *Session) readLoop() {
	defer close(s.done)

	for {
		s.conn.SetReadDeadline(time.Now().Add(s.host.config.ReadTimeout))
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
			}
			return
		}

		var ev EventFrame
		if err := json.Unmarshal(msg, &ev); err != nil {
			s.logger.Error("event decode error", "error", err)
			s.sendError("invalid event format")
			continue
		}

		select {
		case s.events <- ev:
		default:
			s.sendError("event queue full")
		}
	}
}

// handleEvent invokes the registered handler. Dispatches made inside the
// handler mark the instance dirty; the render they schedule runs on this
// same loop, so they all fold into one pass.
func (s *Session) handleEvent(ev EventFrame) {
	fn, ok := s.handlers[ev.Event]
	if !ok {
		s.logger.Warn("no handler for event", "event", ev.Event)
		s.sendError("unknown event: " + ev.Event)
		return
	}
	fn(ev.Payload)
}

// flush drives one full cycle: render, layout commit, snapshot send (the
// paint step), barrier release, passive commit.
func (s *Session) flush() error {
	if _, err := s.inst.RenderPass(); err != nil {
		return err
	}
	s.handlers = s.nextHandlers

	if err := s.inst.CommitPass(hooks.PhaseLayout); err != nil {
		return err
	}

	if s.hasSnapshot {
		s.sendSnapshot(s.snapshot)
	}

	if err := s.inst.SignalPaintComplete(); err != nil {
		return err
	}
	return s.inst.CommitPass(hooks.PhasePassive)
}

// sendSnapshot writes a snapshot frame with the next sequence number.
func (s *Session) sendSnapshot(v any) {
	frame := SnapshotFrame{Seq: s.sendSeq.Add(1), Snapshot: v}
	s.writeJSON(frame)
}

func (s *Session) sendError(msg string) {
	s.writeJSON(errorFrame{Error: msg})
}

func (s *Session) writeJSON(v any) {
	if s.closed.Load() {
		return
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(s.host.config.WriteTimeout))
	if err := s.conn.WriteJSON(v); err != nil {
		s.logger.Error("write error", "error", err)
		s.closed.Store(true)
	}
}
