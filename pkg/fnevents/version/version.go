// Package version supplies the product version string stamped on the catalog.
package version

import (
	"runtime/debug"
	"strings"
	"sync"

	fnerrors "github.com/randalmurphal/fnevents/pkg/fnevents/errors"
)

// Version can be set at build time:
//
//	go build -ldflags "-X github.com/randalmurphal/fnevents/pkg/fnevents/version.Version=1.2.3"
var Version = ""

// Provider returns the running product version.
// It returns errors.ErrMetadataUnavailable when no version is known.
type Provider interface {
	ProductVersion() (string, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func() (string, error)

// ProductVersion implements Provider.
func (f ProviderFunc) ProductVersion() (string, error) {
	return f()
}

// Static returns a Provider for a fixed version string.
// An empty string reports ErrMetadataUnavailable.
func Static(v string) Provider {
	return ProviderFunc(func() (string, error) {
		if strings.TrimSpace(v) == "" {
			return "", fnerrors.ErrMetadataUnavailable
		}
		return v, nil
	})
}

// readBuildInfo is swapped in tests.
var readBuildInfo = debug.ReadBuildInfo

type buildInfo struct {
	once sync.Once
	v    string
}

// BuildInfo returns a Provider that prefers the -ldflags Version variable and
// falls back to the main module version recorded by the Go toolchain.
// A "(devel)" module version counts as unavailable.
func BuildInfo() Provider {
	return &buildInfo{}
}

func (b *buildInfo) ProductVersion() (string, error) {
	if Version != "" {
		return Version, nil
	}
	b.once.Do(func() {
		info, ok := readBuildInfo()
		if !ok || info == nil {
			return
		}
		if v := info.Main.Version; v != "" && v != "(devel)" {
			b.v = v
		}
	})
	if b.v == "" {
		return "", fnerrors.ErrMetadataUnavailable
	}
	return b.v, nil
}

// Override returns p unless v is non-empty, in which case v wins.
func Override(p Provider, v string) Provider {
	if strings.TrimSpace(v) != "" {
		return Static(v)
	}
	return p
}
