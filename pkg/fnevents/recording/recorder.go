package recording

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/randalmurphal/fnevents/pkg/fnevents/wire"
)

// Recorder appends every event it handles to a Store under one session.
// It implements transport.Listener.
type Recorder struct {
	store   Store
	session string
	logger  *slog.Logger

	mu    sync.Mutex
	count int64
	err   error
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithSessionID sets the session ID. Default: a random UUID.
func WithSessionID(id string) RecorderOption {
	return func(r *Recorder) {
		if id != "" {
			r.session = id
		}
	}
}

// WithLogger logs append failures. A nil logger disables logging.
func WithLogger(logger *slog.Logger) RecorderOption {
	return func(r *Recorder) {
		r.logger = logger
	}
}

// NewRecorder creates a Recorder writing to store.
func NewRecorder(store Store, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		store:   store,
		session: uuid.New().String(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Session returns the session ID.
func (r *Recorder) Session() string {
	return r.session
}

// Handle encodes and stores evt. Failures are kept in Err and do not stop
// later events from being recorded.
func (r *Recorder) Handle(evt wire.Event) {
	frame, err := wire.Encode(evt)
	if err == nil {
		_, err = r.store.Append(r.session, evt.ID(), frame)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		if r.err == nil {
			r.err = err
		}
		if r.logger != nil {
			r.logger.Warn("event not recorded",
				slog.String("session_id", r.session),
				slog.String("error", err.Error()),
			)
		}
		return
	}
	r.count++
}

// Count returns the number of events recorded.
func (r *Recorder) Count() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Err returns the first recording failure.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}
