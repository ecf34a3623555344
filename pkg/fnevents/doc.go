/*
Package fnevents is a low-latency structured event emitter with a
self-describing function catalog.

# Overview

Application code marks units of work with block lifecycle events tagged by
integer function identifiers. A trace consumer attached to the transport
asks for the catalog, a plain-text document mapping identifiers to names,
so recorded traces can be decoded without linking against the emitter.

	var (
	    OpenDocument = funcid.MustRegister(1, "Workspace_OpenDocument")
	    Parse        = funcid.MustRegister(2, "Parser_Parse", funcid.WithGoal("Perf"))
	)

	func open(path string) {
	    fnevents.BlockStart(fnevents.Text(path), OpenDocument, 1)
	    defer fnevents.BlockStop(OpenDocument, tick(), 1)
	    // ...
	}

# Emission

Log, BlockStart, BlockStop and BlockCancel are synchronous and never block
or fail. With no listener attached each call is a single atomic load.
Messages are rendered only when a listener is present:

	fnevents.LogMessage(fnevents.MessageFunc(func() string {
	    return expensiveSummary()
	}), Parse)

A nil message is sent as the empty string.

# Catalog Publishing

A Source answers control commands from its transport. Every command other
than Disable triggers a publish, as does any command carrying the
SendFunctionDefinitions argument. Publishing runs on a bounded background
pool; the transport's goroutine is never blocked. Generation failures are
logged and the publish is skipped; the next command is the retry.

# Lifecycle

A Source starts in the Constructing state. Publishes requested before
MarkReady are parked and each runs exactly once after it:

	bus := transport.NewBus(transport.DefaultBusConfig)
	src := fnevents.New(bus, catalog.NewGenerator(table, version.BuildInfo(), catalog.Options{}))
	bus.Attach(src)
	src.MarkReady()

Default returns a process-wide Source built this way on first use.

# Observability

Command handling and publishing log through slog and can record
OpenTelemetry metrics and spans:

	src := fnevents.New(bus, gen,
	    fnevents.WithLogger(logger),
	    fnevents.WithMetrics(true),
	    fnevents.WithTracing(true),
	)
*/
package fnevents
