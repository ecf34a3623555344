// Package catalog generates the self-describing identifier catalog that trace
// tools use to decode function identifiers without linking against the
// emitting process.
//
// A catalog document is one version line followed by one line per published
// identifier:
//
//	<productVersion>
//	<value> <name> <goal>
//	<value> <name> <goal>
//
// Fields are separated by single spaces and no escaping is defined, so names
// must not contain spaces.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	fnerrors "github.com/randalmurphal/fnevents/pkg/fnevents/errors"
	"github.com/randalmurphal/fnevents/pkg/fnevents/config"
	"github.com/randalmurphal/fnevents/pkg/fnevents/funcid"
	"github.com/randalmurphal/fnevents/pkg/fnevents/observability"
	"github.com/randalmurphal/fnevents/pkg/fnevents/version"
)

// DefaultDebugMarker prefixes names in non-release catalogs.
const DefaultDebugMarker = "DEBUG_"

// Options configures catalog naming.
type Options struct {
	// Debug marks the running build as non-release; every name is prefixed
	// with DebugMarker so debug traces are told apart from release traces.
	Debug bool

	// DebugMarker defaults to DefaultDebugMarker.
	DebugMarker string

	// Logger receives a warning for each skipped definition. Nil disables.
	Logger *slog.Logger
}

// OptionsFromSettings maps configuration onto catalog options.
func OptionsFromSettings(s config.Settings) Options {
	return Options{
		Debug:       s.Debug,
		DebugMarker: s.DebugMarker,
	}
}

// Generator builds catalog documents from a Source and a version Provider.
// It holds no state between calls; Generate is safe for concurrent use.
type Generator struct {
	source  funcid.Source
	version version.Provider
	opts    Options
}

// NewGenerator creates a Generator.
func NewGenerator(src funcid.Source, ver version.Provider, opts Options) *Generator {
	if opts.DebugMarker == "" {
		opts.DebugMarker = DefaultDebugMarker
	}
	return &Generator{
		source:  src,
		version: ver,
		opts:    opts,
	}
}

// Generate renders the catalog.
//
// Special identifiers are left out. A definition whose value cannot be
// resolved, or whose name or goal would not fit in one space-separated
// field, is skipped on its own. If the product version cannot be read the
// whole attempt fails with an error matching errors.ErrMetadataUnavailable.
// Output is byte-identical across calls while the source and version are
// unchanged.
func (g *Generator) Generate(ctx context.Context) (string, error) {
	if g.version == nil {
		return "", fmt.Errorf("generate catalog: %w", fnerrors.ErrMetadataUnavailable)
	}
	v, err := g.version.ProductVersion()
	if err != nil {
		if errors.Is(err, fnerrors.ErrMetadataUnavailable) {
			return "", fmt.Errorf("generate catalog: %w", err)
		}
		return "", fmt.Errorf("generate catalog: %w: %w", fnerrors.ErrMetadataUnavailable, err)
	}
	v = strings.TrimSpace(v)
	if v == "" || strings.ContainsAny(v, "\r\n") {
		return "", fmt.Errorf("generate catalog: %w: bad version %q", fnerrors.ErrMetadataUnavailable, v)
	}

	var sb strings.Builder
	sb.WriteString(v)
	sb.WriteByte('\n')

	if g.source == nil {
		return sb.String(), nil
	}

	for _, def := range g.source.Definitions() {
		if def.Special {
			continue
		}
		id, err := def.ID()
		if err != nil {
			observability.LogDefinitionSkipped(ctx, g.opts.Logger, def.Name, err)
			continue
		}

		if err := def.Validate(); err != nil {
			observability.LogDefinitionSkipped(ctx, g.opts.Logger, def.Name, err)
			continue
		}

		name := def.Name
		if g.opts.Debug {
			name = g.opts.DebugMarker + name
		}
		if funcid.ContainsSpace(name) {
			err := &fnerrors.MalformedIdentifierError{Name: name, Value: def.Value, Err: errors.New("debug marker contains whitespace")}
			observability.LogDefinitionSkipped(ctx, g.opts.Logger, def.Name, err)
			continue
		}
		fmt.Fprintf(&sb, "%d %s %s\n", int32(id), name, def.GoalOrDefault())
	}

	return sb.String(), nil
}
