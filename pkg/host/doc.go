// Package host provides a websocket host for the reflow engine: one engine
// instance per connection, JSON event frames from the client invoking
// handlers the program registered during its last render, and a JSON
// snapshot frame as the paint-equivalent step.
//
// Each session is single-threaded: events and render flushes interleave on
// one goroutine, so dispatches made inside an event handler coalesce into
// the one render that follows it. This is the cooperative model the engine
// assumes; the host adds nothing beyond frame transport.
package host
