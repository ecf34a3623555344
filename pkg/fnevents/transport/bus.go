package transport

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/randalmurphal/fnevents/pkg/fnevents/command"
	"github.com/randalmurphal/fnevents/pkg/fnevents/observability"
	"github.com/randalmurphal/fnevents/pkg/fnevents/wire"
)

// Listener consumes events delivered by a Bus. Handle runs on the
// listener's own goroutine; events arrive in write order.
type Listener interface {
	Handle(evt wire.Event)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(evt wire.Event)

// Handle implements Listener.
func (f ListenerFunc) Handle(evt wire.Event) { f(evt) }

// BusConfig configures bus behavior.
type BusConfig struct {
	// BufferSize is the channel buffer size per listener.
	// Default: 256
	BufferSize int

	// Logger receives drop warnings. Nil disables logging.
	Logger *slog.Logger

	// OnDrop is called when an event is dropped because a listener's
	// buffer is full.
	OnDrop func(evt wire.Event, listenerID uint64)
}

// DefaultBusConfig provides reasonable defaults.
var DefaultBusConfig = BusConfig{
	BufferSize: 256,
}

// Bus is an in-memory Transport with listener fan-out and command delivery.
//
// Attaching the first listener delivers an Enable command to every
// attached handler; removing the last delivers Disable. Handlers see the two
// strictly alternating, and the last one delivered matches whether
// listeners are attached.
type Bus struct {
	config BusConfig

	mu        sync.RWMutex
	listeners map[uint64]*listener
	handlers  []handlerEntry
	closed    bool

	// notifyMu serializes Enable/Disable delivery; notified is the last
	// state delivered.
	notifyMu sync.Mutex
	notified bool

	active atomic.Int32
	nextID atomic.Uint64
	wg     sync.WaitGroup
}

type handlerEntry struct {
	id uint64
	h  CommandHandler
}

type listener struct {
	id     uint64
	l      Listener
	events chan wire.Event
	done   chan struct{}
}

// NewBus creates a bus.
func NewBus(config BusConfig) *Bus {
	if config.BufferSize <= 0 {
		config.BufferSize = DefaultBusConfig.BufferSize
	}
	return &Bus{
		config:    config,
		listeners: make(map[uint64]*listener),
	}
}

// Enabled reports whether any listener is attached.
func (b *Bus) Enabled() bool {
	return b.active.Load() > 0
}

// Write fans an event out to every listener without blocking. Drops are
// reported after the bus lock is released, so OnDrop may use the bus.
func (b *Bus) Write(evt wire.Event) {
	if evt == nil || b.active.Load() == 0 {
		return
	}

	var dropped []uint64
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return
	}
	for _, ln := range b.listeners {
		select {
		case ln.events <- evt:
		default:
			dropped = append(dropped, ln.id)
		}
	}
	b.mu.RUnlock()

	for _, id := range dropped {
		observability.LogListenerDropped(b.config.Logger, id, evt.ID().String())
		if b.config.OnDrop != nil {
			b.config.OnDrop(evt, id)
		}
	}
}

// Subscription is an attached listener.
type Subscription struct {
	bus  *Bus
	ln   *listener
	once sync.Once
}

// ID returns the listener ID.
func (s *Subscription) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.ln.id
}

// Subscribe attaches a listener. It returns nil once the bus is closed.
func (b *Bus) Subscribe(l Listener) *Subscription {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}

	ln := &listener{
		id:     b.nextID.Add(1),
		l:      l,
		events: make(chan wire.Event, b.config.BufferSize),
		done:   make(chan struct{}),
	}
	b.listeners[ln.id] = ln
	b.active.Add(1)
	b.wg.Add(1)
	b.mu.Unlock()

	go ln.process(&b.wg)

	b.notifyState()
	return &Subscription{bus: b, ln: ln}
}

// Close detaches the listener and waits for its buffered events to be
// handled. It must not be called from the listener's own Handle.
func (s *Subscription) Close() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		b := s.bus

		b.mu.Lock()
		if _, ok := b.listeners[s.ln.id]; !ok {
			b.mu.Unlock()
			<-s.ln.done
			return
		}
		delete(b.listeners, s.ln.id)
		b.active.Add(-1)
		close(s.ln.events)
		b.mu.Unlock()

		<-s.ln.done
		b.notifyState()
	})
}

// notifyState delivers Enable or Disable if the listener state differs from
// what handlers last saw. Handlers must not subscribe or close
// subscriptions from OnCommand.
func (b *Bus) notifyState() {
	b.notifyMu.Lock()
	defer b.notifyMu.Unlock()

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return
	}
	enabled := len(b.listeners) > 0
	handlers := b.handlersLocked()
	b.mu.RUnlock()

	if enabled == b.notified {
		return
	}
	b.notified = enabled
	kind := command.Disable
	if enabled {
		kind = command.Enable
	}
	deliver(handlers, command.New(kind, nil))
}

// Attach registers a command handler and returns a function that detaches
// it. If listeners are already attached, Enable is replayed to h.
func (b *Bus) Attach(h CommandHandler) (detach func()) {
	b.notifyMu.Lock()
	b.mu.Lock()
	id := b.nextID.Add(1)
	b.handlers = append(b.handlers, handlerEntry{id: id, h: h})
	b.mu.Unlock()

	if b.notified {
		h.OnCommand(command.New(command.Enable, nil))
	}
	b.notifyMu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, e := range b.handlers {
			if e.id == id {
				b.handlers = append(b.handlers[:i:i], b.handlers[i+1:]...)
				return
			}
		}
	}
}

// Command delivers cmd to every attached handler on the caller's goroutine.
func (b *Bus) Command(cmd command.Command) {
	b.mu.RLock()
	handlers := b.handlersLocked()
	b.mu.RUnlock()
	deliver(handlers, cmd)
}

// Len returns the number of attached listeners.
func (b *Bus) Len() int {
	return int(b.active.Load())
}

// Close detaches every listener and waits for them to drain. Handlers are
// not notified.
func (b *Bus) Close() {
	b.notifyMu.Lock()
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		b.notifyMu.Unlock()
		return
	}
	b.closed = true
	b.notified = false
	for id, ln := range b.listeners {
		close(ln.events)
		delete(b.listeners, id)
	}
	b.active.Store(0)
	b.mu.Unlock()
	b.notifyMu.Unlock()

	b.wg.Wait()
}

func (b *Bus) handlersLocked() []CommandHandler {
	hs := make([]CommandHandler, len(b.handlers))
	for i, e := range b.handlers {
		hs[i] = e.h
	}
	return hs
}

func deliver(handlers []CommandHandler, cmd command.Command) {
	for _, h := range handlers {
		h.OnCommand(cmd)
	}
}

// process handles events for a listener until its channel closes.
func (ln *listener) process(wg *sync.WaitGroup) {
	defer wg.Done()
	defer close(ln.done)
	for evt := range ln.events {
		ln.l.Handle(evt)
	}
}
