package fnevents_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/fnevents/pkg/fnevents"
	"github.com/randalmurphal/fnevents/pkg/fnevents/catalog"
	"github.com/randalmurphal/fnevents/pkg/fnevents/command"
	"github.com/randalmurphal/fnevents/pkg/fnevents/config"
	fnerrors "github.com/randalmurphal/fnevents/pkg/fnevents/errors"
	"github.com/randalmurphal/fnevents/pkg/fnevents/funcid"
	"github.com/randalmurphal/fnevents/pkg/fnevents/transport"
	"github.com/randalmurphal/fnevents/pkg/fnevents/version"
	"github.com/randalmurphal/fnevents/pkg/fnevents/wire"
)

const scenarioCatalog = "9.0.1\n1 OpenDoc Undefined\n2 CloseDoc Perf\n"

// captureTransport records writes while enabled.
type captureTransport struct {
	enabled atomic.Bool
	mu      sync.Mutex
	events  []wire.Event
}

func newCapture(enabled bool) *captureTransport {
	c := &captureTransport{}
	c.enabled.Store(enabled)
	return c
}

func (c *captureTransport) Enabled() bool { return c.enabled.Load() }

func (c *captureTransport) Write(evt wire.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, evt)
}

func (c *captureTransport) Events() []wire.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]wire.Event(nil), c.events...)
}

func (c *captureTransport) Catalogs() []string {
	var out []string
	for _, evt := range c.Events() {
		if sc, ok := evt.(wire.SendCatalog); ok {
			out = append(out, sc.Text)
		}
	}
	return out
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func scenarioGenerator() *catalog.Generator {
	table := funcid.NewTable()
	table.MustRegister(1, "OpenDoc")
	table.MustRegister(2, "CloseDoc", funcid.WithGoal("Perf"))
	return catalog.NewGenerator(table, version.Static("9.0.1"), catalog.Options{})
}

func readySource(t *testing.T, tr transport.Transport, opts ...fnevents.Option) *fnevents.Source {
	t.Helper()
	opts = append([]fnevents.Option{fnevents.WithLogger(nil)}, opts...)
	src := fnevents.New(tr, scenarioGenerator(), opts...)
	src.MarkReady()
	return src
}

func TestLogNilMessage(t *testing.T) {
	tr := newCapture(true)
	src := readySource(t, tr)

	src.LogMessage(nil, 1)
	src.LogMessage(fnevents.MessageFunc(nil), 1)
	src.Log("", 1)

	want := wire.Log{Message: "", FunctionID: 1}
	assert.Equal(t, []wire.Event{want, want, want}, tr.Events())
}

func TestEmissionNoopWhenDisabled(t *testing.T) {
	tr := newCapture(false)
	src := readySource(t, tr)

	var rendered atomic.Bool
	msg := fnevents.MessageFunc(func() string {
		rendered.Store(true)
		return "expensive"
	})

	assert.False(t, src.IsEnabled())
	src.Log("x", 1)
	src.LogMessage(msg, 1)
	src.BlockStart(msg, 1, 1)
	src.BlockStop(1, 2, 1)
	src.BlockCancel(1, 2, 1)

	assert.Empty(t, tr.Events())
	assert.False(t, rendered.Load())
}

func TestBlockEvents(t *testing.T) {
	tr := newCapture(true)
	src := readySource(t, tr)

	src.BlockStart(fnevents.Text("parse"), 3, 10)
	src.BlockStop(3, 1500, 10)
	src.BlockStart(nil, 4, 11)
	src.BlockCancel(4, 1600, 11)

	assert.Equal(t, []wire.Event{
		wire.BlockStart{Message: "parse", FunctionID: 3, BlockID: 10},
		wire.BlockStop{FunctionID: 3, Tick: 1500, BlockID: 10},
		wire.BlockStart{Message: "", FunctionID: 4, BlockID: 11},
		wire.BlockCancel{FunctionID: 4, Tick: 1600, BlockID: 11},
	}, tr.Events())
}

func TestEmissionPreservesOrder(t *testing.T) {
	tr := newCapture(true)
	src := readySource(t, tr)

	var want []wire.Event
	for i := int32(0); i < 100; i++ {
		src.BlockStop(1, i, i)
		want = append(want, wire.BlockStop{FunctionID: 1, Tick: i, BlockID: i})
	}
	assert.Equal(t, want, tr.Events())
}

func TestScenarioCatalog(t *testing.T) {
	tr := newCapture(true)
	src := readySource(t, tr)

	src.OnCommand(command.New(command.SendManifest, nil))
	src.Wait()
	assert.Equal(t, []string{scenarioCatalog}, tr.Catalogs())
}

func TestDeferredSendManifestPublishesOnce(t *testing.T) {
	tr := newCapture(true)
	src := fnevents.New(tr, scenarioGenerator(), fnevents.WithLogger(nil))
	assert.Equal(t, fnevents.StateConstructing, src.State())

	src.OnCommand(command.New(command.SendManifest, nil))
	src.Wait()
	assert.Empty(t, tr.Catalogs(), "no publish before ready")

	src.MarkReady()
	src.Wait()
	assert.Equal(t, fnevents.StateReady, src.State())
	assert.Equal(t, []string{scenarioCatalog}, tr.Catalogs())

	src.MarkReady()
	src.Wait()
	assert.Len(t, tr.Catalogs(), 1)
}

func TestDeferredRequestsEachRunOnce(t *testing.T) {
	tr := newCapture(true)
	src := fnevents.New(tr, scenarioGenerator(), fnevents.WithLogger(nil))

	src.OnCommand(command.New(command.SendManifest, nil))
	src.OnCommand(command.New(command.Enable, nil))
	src.OnCommand(command.New(command.Disable, nil))
	src.MarkReady()
	src.Wait()

	assert.Len(t, tr.Catalogs(), 2)
}

func TestCommandsRacingMarkReadyPublishExactlyOnce(t *testing.T) {
	const commands = 8
	for round := 0; round < 50; round++ {
		tr := newCapture(true)
		src := fnevents.New(tr, scenarioGenerator(), fnevents.WithLogger(nil))

		start := make(chan struct{})
		var wg sync.WaitGroup
		for i := 0; i < commands; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				src.OnCommand(command.New(command.SendManifest, nil))
			}()
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			src.MarkReady()
		}()

		close(start)
		wg.Wait()
		src.Wait()

		require.Equal(t, fnevents.StateReady, src.State())
		require.Len(t, tr.Catalogs(), commands, "round %d", round)
	}
}

func TestCommandWarranting(t *testing.T) {
	tests := []struct {
		name string
		cmd  command.Command
		want int
	}{
		{"disable", command.New(command.Disable, nil), 0},
		{"disable with definitions arg", command.New(command.Disable, map[string]string{command.ArgSendFunctionDefinitions: "1"}), 1},
		{"enable", command.New(command.Enable, nil), 1},
		{"other", command.New(command.Other, nil), 1},
		{"send manifest", command.New(command.SendManifest, nil), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newCapture(true)
			src := readySource(t, tr)
			src.OnCommand(tt.cmd)
			src.Wait()
			assert.Len(t, tr.Catalogs(), tt.want)
		})
	}
}

func TestConcurrentSendManifest(t *testing.T) {
	tr := newCapture(true)
	src := readySource(t, tr)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			src.OnCommand(command.New(command.SendManifest, nil))
		}()
	}
	wg.Wait()
	src.Wait()

	assert.Equal(t, []string{scenarioCatalog, scenarioCatalog}, tr.Catalogs())
}

// blockingSource stalls Definitions until released.
type blockingSource struct {
	release chan struct{}
}

func (b blockingSource) Definitions() []funcid.Definition {
	<-b.release
	return nil
}

func TestOnCommandDoesNotBlock(t *testing.T) {
	tr := newCapture(true)
	release := make(chan struct{})
	gen := catalog.NewGenerator(blockingSource{release: release}, version.Static("1.0"), catalog.Options{})
	src := fnevents.New(tr, gen, fnevents.WithLogger(nil))
	src.MarkReady()

	returned := make(chan struct{})
	go func() {
		src.OnCommand(command.New(command.SendManifest, nil))
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("OnCommand blocked on catalog generation")
	}
	assert.Empty(t, tr.Catalogs())

	close(release)
	src.Wait()
	assert.Equal(t, []string{"1.0\n"}, tr.Catalogs())
}

func TestGenerationFailureSkipsPublish(t *testing.T) {
	buf := &syncBuffer{}
	logger := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var available atomic.Bool
	ver := version.ProviderFunc(func() (string, error) {
		if !available.Load() {
			return "", fnerrors.ErrMetadataUnavailable
		}
		return "2.0", nil
	})

	tr := newCapture(true)
	src := fnevents.New(tr, catalog.NewGenerator(funcid.NewTable(), ver, catalog.Options{}), fnevents.WithLogger(logger))
	src.MarkReady()

	src.OnCommand(command.New(command.SendManifest, nil))
	src.Wait()
	assert.Empty(t, tr.Catalogs())
	assert.Contains(t, buf.String(), "catalog publish skipped")
	assert.Contains(t, buf.String(), `"category":"contained"`)

	available.Store(true)
	src.OnCommand(command.New(command.SendManifest, nil))
	src.Wait()
	assert.Equal(t, []string{"2.0\n"}, tr.Catalogs())
	assert.Contains(t, buf.String(), "catalog published")
}

func TestSendCatalog(t *testing.T) {
	tr := newCapture(true)
	src := readySource(t, tr)
	require.NoError(t, src.SendCatalog(context.Background()))
	assert.Equal(t, []string{scenarioCatalog}, tr.Catalogs())

	noGen := fnevents.New(tr, nil, fnevents.WithLogger(nil))
	err := noGen.SendCatalog(context.Background())
	assert.True(t, errors.Is(err, fnerrors.ErrMetadataUnavailable))
}

func TestNilTransport(t *testing.T) {
	src := fnevents.New(nil, scenarioGenerator(), fnevents.WithLogger(nil))
	src.MarkReady()
	assert.False(t, src.IsEnabled())
	src.Log("dropped", 1)
	assert.NoError(t, src.SendCatalog(context.Background()))
}

type recordedCommand struct {
	kind      string
	warranted bool
	deferred  bool
}

type fakeMetrics struct {
	mu       sync.Mutex
	emits    []string
	commands []recordedCommand
	publish  []bool
}

func (m *fakeMetrics) RecordEmit(_ context.Context, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.emits = append(m.emits, name)
}

func (m *fakeMetrics) RecordCommand(_ context.Context, kind string, warranted, deferred bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commands = append(m.commands, recordedCommand{kind, warranted, deferred})
}

func (m *fakeMetrics) RecordCatalogPublish(_ context.Context, success bool, _ time.Duration, _ int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.publish = append(m.publish, success)
}

func TestMetricsRecorded(t *testing.T) {
	m := &fakeMetrics{}
	tr := newCapture(true)
	src := fnevents.New(tr, scenarioGenerator(), fnevents.WithLogger(nil), fnevents.WithMetricsRecorder(m))

	src.OnCommand(command.New(command.SendManifest, nil))
	src.MarkReady()
	src.OnCommand(command.New(command.Disable, nil))
	src.Log("hi", 1)
	src.Wait()

	m.mu.Lock()
	defer m.mu.Unlock()
	assert.Equal(t, []recordedCommand{
		{"SendManifest", true, true},
		{"Disable", false, false},
	}, m.commands)
	assert.Equal(t, []string{"Log"}, m.emits)
	assert.Equal(t, []bool{true}, m.publish)
}

func TestWithSettingsDispatchLimit(t *testing.T) {
	tr := newCapture(true)
	s := config.DefaultSettings
	s.DispatchLimit = 1
	src := readySource(t, tr, fnevents.WithSettings(s))

	for i := 0; i < 5; i++ {
		src.OnCommand(command.New(command.SendManifest, nil))
	}
	src.Wait()
	assert.Len(t, tr.Catalogs(), 5)
}

func TestBusIntegration(t *testing.T) {
	bus := transport.NewBus(transport.DefaultBusConfig)
	defer bus.Close()

	src := fnevents.New(bus, scenarioGenerator(), fnevents.WithLogger(nil))
	detach := bus.Attach(src)
	defer detach()

	var (
		mu     sync.Mutex
		events []wire.Event
	)
	sub := bus.Subscribe(transport.ListenerFunc(func(evt wire.Event) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, evt)
	}))

	// Enable arrived while constructing.
	src.Wait()
	mu.Lock()
	assert.Empty(t, events)
	mu.Unlock()

	src.MarkReady()
	src.Wait()
	src.Log("after ready", 2)
	sub.Close()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []wire.Event{
		wire.SendCatalog{Text: scenarioCatalog},
		wire.Log{Message: "after ready", FunctionID: 2},
	}, events)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "constructing", fnevents.StateConstructing.String())
	assert.Equal(t, "ready", fnevents.StateReady.String())
	assert.Equal(t, "unknown", fnevents.State(9).String())
}
