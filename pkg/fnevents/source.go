package fnevents

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/randalmurphal/fnevents/pkg/fnevents/catalog"
	"github.com/randalmurphal/fnevents/pkg/fnevents/command"
	"github.com/randalmurphal/fnevents/pkg/fnevents/dispatch"
	fnerrors "github.com/randalmurphal/fnevents/pkg/fnevents/errors"
	"github.com/randalmurphal/fnevents/pkg/fnevents/funcid"
	"github.com/randalmurphal/fnevents/pkg/fnevents/observability"
	"github.com/randalmurphal/fnevents/pkg/fnevents/transport"
	"github.com/randalmurphal/fnevents/pkg/fnevents/wire"
)

// Message is a lazily rendered event message. String is only called when a
// listener is attached.
type Message interface {
	String() string
}

// Text is a fixed Message.
type Text string

// String implements Message.
func (t Text) String() string { return string(t) }

// MessageFunc renders a Message on demand.
type MessageFunc func() string

// String implements Message. A nil MessageFunc renders as "".
func (f MessageFunc) String() string {
	if f == nil {
		return ""
	}
	return f()
}

func render(m Message) string {
	if m == nil {
		return ""
	}
	return m.String()
}

// publishTask names catalog publishes in dispatch logs.
const publishTask = "catalog.publish"

// Source emits block lifecycle events and answers control commands by
// publishing the function catalog.
//
// Emission methods are synchronous, never block, never fail and never log.
// Commands are handled on the transport's goroutine; catalog generation
// runs on a bounded background pool.
type Source struct {
	transport transport.Transport
	generator *catalog.Generator
	logger    *slog.Logger
	metrics   observability.MetricsRecorder
	spans     observability.SpanManager
	pool      *dispatch.Pool
	life      lifecycle
}

// New creates a Source in the Constructing state. Warranted commands received
// before MarkReady are deferred.
func New(t transport.Transport, g *catalog.Generator, opts ...Option) *Source {
	return newSource(t, g, applyOptions(opts))
}

func newSource(t transport.Transport, g *catalog.Generator, cfg sourceConfig) *Source {
	if t == nil {
		t = transport.Nop
	}
	return &Source{
		transport: t,
		generator: g,
		logger:    cfg.logger,
		metrics:   cfg.metrics,
		spans:     cfg.spans,
		pool:      dispatch.NewPool(cfg.dispatchLimit, cfg.logger),
	}
}

// MarkReady ends construction and dispatches each deferred publish once.
// Later calls do nothing.
func (s *Source) MarkReady() {
	for _, cmd := range s.life.markReady() {
		s.dispatchPublish(cmd)
	}
}

// State returns the lifecycle state.
func (s *Source) State() State {
	return s.life.current()
}

// IsEnabled reports whether a listener is attached. Callers may use it to
// skip building expensive messages.
func (s *Source) IsEnabled() bool {
	return s.transport.Enabled()
}

// Log emits a Log event.
func (s *Source) Log(message string, id funcid.FunctionID) {
	if !s.transport.Enabled() {
		return
	}
	s.emit(wire.Log{Message: message, FunctionID: int32(id)})
}

// LogMessage emits a Log event with a lazily rendered message. A nil message
// is sent as "".
func (s *Source) LogMessage(message Message, id funcid.FunctionID) {
	if !s.transport.Enabled() {
		return
	}
	s.emit(wire.Log{Message: render(message), FunctionID: int32(id)})
}

// BlockStart emits the start of a tracked block. A nil message is sent as "".
func (s *Source) BlockStart(message Message, id funcid.FunctionID, blockID int32) {
	if !s.transport.Enabled() {
		return
	}
	s.emit(wire.BlockStart{Message: render(message), FunctionID: int32(id), BlockID: blockID})
}

// BlockStop emits the normal end of a tracked block. tick is a caller
// supplied monotonic value; duration is derived by consumers.
func (s *Source) BlockStop(id funcid.FunctionID, tick, blockID int32) {
	if !s.transport.Enabled() {
		return
	}
	s.emit(wire.BlockStop{FunctionID: int32(id), Tick: tick, BlockID: blockID})
}

// BlockCancel emits the abnormal end of a tracked block.
func (s *Source) BlockCancel(id funcid.FunctionID, tick, blockID int32) {
	if !s.transport.Enabled() {
		return
	}
	s.emit(wire.BlockCancel{FunctionID: int32(id), Tick: tick, BlockID: blockID})
}

func (s *Source) emit(evt wire.Event) {
	s.transport.Write(evt)
	s.metrics.RecordEmit(context.Background(), evt.ID().String())
}

// OnCommand implements transport.CommandHandler. It never blocks on
// catalog generation.
func (s *Source) OnCommand(cmd command.Command) {
	ctx := context.Background()
	kind := cmd.Kind.String()
	warranted := command.Warranted(cmd)
	observability.LogCommand(s.logger, kind, cmd.ID, warranted)

	if !warranted {
		s.metrics.RecordCommand(ctx, kind, false, false)
		return
	}
	if s.life.park(cmd) {
		observability.LogCommandDeferred(s.logger, kind, cmd.ID)
		s.metrics.RecordCommand(ctx, kind, true, true)
		return
	}
	s.metrics.RecordCommand(ctx, kind, true, false)
	s.dispatchPublish(cmd)
}

func (s *Source) dispatchPublish(cmd command.Command) {
	s.pool.Submit(publishTask, func(ctx context.Context) error {
		// Failures are logged by publish; the next command is the retry.
		_ = s.publish(ctx, cmd.ID)
		return nil
	})
}

// SendCatalog generates and publishes the catalog on the caller's
// goroutine.
func (s *Source) SendCatalog(ctx context.Context) error {
	return s.publish(ctx, "")
}

func (s *Source) publish(ctx context.Context, commandID string) (err error) {
	ctx, span := s.spans.StartCatalogSpan(ctx, commandID)
	done := observability.TimedOperation()
	defer func() {
		s.spans.EndSpanWithError(span, err)
	}()

	if s.generator == nil {
		err = fmt.Errorf("publish catalog: %w: no generator", fnerrors.ErrMetadataUnavailable)
		observability.LogCatalogFailed(ctx, s.logger, commandID, err)
		s.metrics.RecordCatalogPublish(ctx, false, 0, 0)
		return err
	}

	text, err := s.generator.Generate(ctx)
	durationMs := done()
	duration := time.Duration(durationMs * float64(time.Millisecond))
	if err != nil {
		observability.LogCatalogFailed(ctx, s.logger, commandID, err)
		s.metrics.RecordCatalogPublish(ctx, false, duration, 0)
		return err
	}

	s.transport.Write(wire.SendCatalog{Text: text})
	observability.LogCatalogPublished(s.logger, commandID, len(text), durationMs)
	s.metrics.RecordCatalogPublish(ctx, true, duration, int64(len(text)))
	return nil
}

// Wait blocks until dispatched publishes have finished.
func (s *Source) Wait() {
	s.pool.Wait()
}

var _ transport.CommandHandler = (*Source)(nil)
