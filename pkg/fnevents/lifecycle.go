package fnevents

import (
	"sync"
	"sync/atomic"

	"github.com/randalmurphal/fnevents/pkg/fnevents/command"
)

// State is the command-handling lifecycle state of a Source.
type State int32

// Lifecycle states. The only transition is Constructing to Ready.
const (
	StateConstructing State = iota
	StateReady
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateConstructing:
		return "constructing"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// lifecycle parks warranted commands until construction completes.
//
// state is only written under mu, and the pending list is drained in the
// same critical section that publishes Ready, so a command is either parked
// and later returned by markReady, or observes Ready and runs immediately.
type lifecycle struct {
	mu      sync.Mutex
	state   atomic.Int32
	pending []command.Command
}

func (l *lifecycle) current() State {
	return State(l.state.Load())
}

// park queues cmd if still constructing. It reports whether cmd was parked.
func (l *lifecycle) park(cmd command.Command) bool {
	if l.current() == StateReady {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current() == StateReady {
		return false
	}
	l.pending = append(l.pending, cmd)
	return true
}

// markReady transitions to Ready and returns the parked commands. Only the
// first call returns anything.
func (l *lifecycle) markReady() []command.Command {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current() == StateReady {
		return nil
	}
	pending := l.pending
	l.pending = nil
	l.state.Store(int32(StateReady))
	return pending
}
