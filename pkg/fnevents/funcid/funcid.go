// Package funcid defines function identifiers: stable integer codes that name
// an operation category and are attached to every emitted event.
//
// Identifiers are values in recorded traces, so a value must never be reused
// or renumbered once it has shipped. The catalog published to trace tools is
// generated from a Source, which is the single place identifiers are declared.
package funcid

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	fnerrors "github.com/randalmurphal/fnevents/pkg/fnevents/errors"
)

// FunctionID names a logical operation category, e.g. Workspace_OpenDocument.
type FunctionID int32

// Goal is a coarse interaction class used for performance triage.
type Goal string

// GoalUndefined is used when a definition declares no goal.
const GoalUndefined Goal = "Undefined"

// Definition declares one function identifier.
type Definition struct {
	// Name is the symbolic name. It must not contain spaces.
	Name string `yaml:"name" json:"name" toml:"name"`

	// Value is the declared integer value. It is kept raw so definitions
	// loaded from files can be resolved, and rejected, one at a time.
	Value any `yaml:"value" json:"value" toml:"value"`

	// Goal is the optional interaction class.
	Goal Goal `yaml:"goal,omitempty" json:"goal,omitempty" toml:"goal,omitempty"`

	// Special marks reserved or sentinel values that are not published.
	Special bool `yaml:"special,omitempty" json:"special,omitempty" toml:"special,omitempty"`
}

// ID resolves the definition's integer value.
func (d Definition) ID() (FunctionID, error) {
	return ResolveValue(d.Name, d.Value)
}

// GoalOrDefault returns the declared goal, or GoalUndefined.
func (d Definition) GoalOrDefault() Goal {
	if d.Goal == "" {
		return GoalUndefined
	}
	return d.Goal
}

// Validate reports whether the definition can appear in a catalog line: the
// name must be non-empty and neither name nor goal may contain whitespace.
// The value is not resolved.
func (d Definition) Validate() error {
	switch {
	case d.Name == "":
		return &fnerrors.MalformedIdentifierError{Name: d.Name, Value: d.Value, Err: fmt.Errorf("name is required")}
	case ContainsSpace(d.Name):
		return &fnerrors.MalformedIdentifierError{Name: d.Name, Value: d.Value, Err: fmt.Errorf("name contains whitespace")}
	case ContainsSpace(string(d.Goal)):
		return &fnerrors.MalformedIdentifierError{Name: d.Name, Value: d.Value, Err: fmt.Errorf("goal contains whitespace")}
	}
	return nil
}

// ContainsSpace reports whether s would split a space-separated catalog field.
func ContainsSpace(s string) bool {
	return strings.IndexFunc(s, unicode.IsSpace) >= 0
}

// Source is an enumerable set of identifier definitions.
// Definitions must return entries in a stable order.
type Source interface {
	Definitions() []Definition
}

// Definitions is a Source backed by a slice, in slice order.
type Definitions []Definition

// Definitions implements Source.
func (d Definitions) Definitions() []Definition {
	out := make([]Definition, len(d))
	copy(out, d)
	return out
}

// ResolveValue converts a raw declared value into a FunctionID.
//
// Accepts FunctionID, signed and unsigned integers, integral float64 (JSON
// numbers) and decimal strings, all within int32 range. Anything else yields a
// *errors.MalformedIdentifierError.
func ResolveValue(name string, v any) (FunctionID, error) {
	var n int64
	switch val := v.(type) {
	case FunctionID:
		return val, nil
	case int32:
		return FunctionID(val), nil
	case int:
		n = int64(val)
	case int8:
		n = int64(val)
	case int16:
		n = int64(val)
	case int64:
		n = val
	case uint8:
		n = int64(val)
	case uint16:
		n = int64(val)
	case uint32:
		n = int64(val)
	case uint:
		if uint64(val) > math.MaxInt32 {
			return 0, outOfRange(name, v)
		}
		n = int64(val)
	case uint64:
		if val > math.MaxInt32 {
			return 0, outOfRange(name, v)
		}
		n = int64(val)
	case float64:
		if val != math.Trunc(val) {
			return 0, &fnerrors.MalformedIdentifierError{Name: name, Value: v, Err: fmt.Errorf("fractional value")}
		}
		if val < math.MinInt32 || val > math.MaxInt32 {
			return 0, outOfRange(name, v)
		}
		n = int64(val)
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(val), 10, 32)
		if err != nil {
			return 0, &fnerrors.MalformedIdentifierError{Name: name, Value: v, Err: err}
		}
		n = parsed
	case nil:
		return 0, &fnerrors.MalformedIdentifierError{Name: name, Value: v, Err: fmt.Errorf("missing value")}
	default:
		return 0, &fnerrors.MalformedIdentifierError{Name: name, Value: v, Err: fmt.Errorf("unsupported type %T", v)}
	}

	if n < math.MinInt32 || n > math.MaxInt32 {
		return 0, outOfRange(name, v)
	}
	return FunctionID(n), nil
}

func outOfRange(name string, v any) error {
	return &fnerrors.MalformedIdentifierError{Name: name, Value: v, Err: fmt.Errorf("outside int32 range")}
}
