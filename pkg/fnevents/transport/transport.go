// Package transport carries emitted events to listeners and control
// commands back to the emitter.
//
// Transport is the emitter-facing side: a cheap Enabled check and a
// non-blocking Write. Bus is the in-process implementation, fanning events
// out to Listeners and delivering commands to CommandHandlers.
package transport

import (
	"github.com/randalmurphal/fnevents/pkg/fnevents/command"
	"github.com/randalmurphal/fnevents/pkg/fnevents/wire"
)

// Transport receives emitted events.
type Transport interface {
	// Enabled reports whether any listener is attached. Must be cheap.
	Enabled() bool

	// Write forwards an event. It must not block and never fails;
	// undeliverable events are dropped.
	Write(evt wire.Event)
}

// CommandHandler receives control commands. OnCommand is called on a
// goroutine owned by the transport and must return promptly.
type CommandHandler interface {
	OnCommand(cmd command.Command)
}

// CommandHandlerFunc adapts a function to CommandHandler.
type CommandHandlerFunc func(cmd command.Command)

// OnCommand implements CommandHandler.
func (f CommandHandlerFunc) OnCommand(cmd command.Command) { f(cmd) }

// nopTransport discards everything.
type nopTransport struct{}

// Enabled always returns false.
func (nopTransport) Enabled() bool { return false }

// Write does nothing.
func (nopTransport) Write(wire.Event) {}

// Nop is a transport with no listeners.
var Nop Transport = nopTransport{}
