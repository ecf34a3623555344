// Package errors defines the failure taxonomy of fnevents and how each
// failure is contained.
//
// Nothing in fnevents propagates an error to the code that emits events:
//   - Benign: no listener is attached; emission is a no-op
//   - Contained: catalog generation failed; that publish is skipped
//   - Partial: one identifier definition was unusable; it is skipped
package errors

import (
	"errors"
	"fmt"
	"log/slog"
)

// Sentinel errors.
var (
	// ErrTransportUnavailable indicates no listener is attached to the transport.
	// It is the steady state while tracing is disabled.
	ErrTransportUnavailable = errors.New("transport has no active listener")

	// ErrMetadataUnavailable indicates the build/product version could not be read.
	ErrMetadataUnavailable = errors.New("build metadata unavailable")
)

// Category represents how a failure is contained.
type Category int

const (
	// CategoryUnknown is any error outside the taxonomy.
	CategoryUnknown Category = iota

	// CategoryBenign is an expected condition, not a fault.
	CategoryBenign

	// CategoryContained aborts one background attempt only.
	CategoryContained

	// CategoryPartial drops one item and lets the rest proceed.
	CategoryPartial
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryBenign:
		return "benign"
	case CategoryContained:
		return "contained"
	case CategoryPartial:
		return "partial"
	default:
		return "unknown"
	}
}

// MalformedIdentifierError reports a function identifier definition whose
// integer value cannot be resolved.
type MalformedIdentifierError struct {
	// Name is the symbolic name of the definition.
	Name string

	// Value is the raw declared value.
	Value any

	// Err is the underlying conversion error, if any.
	Err error
}

// Error implements the error interface.
func (e *MalformedIdentifierError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed identifier %q (value %v): %v", e.Name, e.Value, e.Err)
	}
	return fmt.Sprintf("malformed identifier %q (value %v)", e.Name, e.Value)
}

// Unwrap returns the underlying error.
func (e *MalformedIdentifierError) Unwrap() error {
	return e.Err
}

// Categorize determines how an error is contained.
func Categorize(err error) Category {
	if err == nil {
		return CategoryUnknown
	}

	var malformed *MalformedIdentifierError
	if errors.As(err, &malformed) {
		return CategoryPartial
	}

	switch {
	case errors.Is(err, ErrTransportUnavailable):
		return CategoryBenign
	case errors.Is(err, ErrMetadataUnavailable):
		return CategoryContained
	}

	return CategoryUnknown
}

// LogLevel returns the slog level a failure is reported at.
func LogLevel(err error) slog.Level {
	switch Categorize(err) {
	case CategoryBenign:
		return slog.LevelDebug
	case CategoryContained, CategoryPartial:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
