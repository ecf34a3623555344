package funcid

import (
	"fmt"

	"github.com/randalmurphal/fnevents/pkg/fnevents/registry"
)

// Table is a statically registered identifier Source, enumerated in
// registration order.
type Table struct {
	entries *registry.Registry[FunctionID, Definition]
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{entries: registry.New[FunctionID, Definition]()}
}

// DefinitionOption configures a registered definition.
type DefinitionOption func(*Definition)

// WithGoal sets the interaction class.
func WithGoal(g Goal) DefinitionOption {
	return func(d *Definition) {
		d.Goal = g
	}
}

// AsSpecial marks the identifier as reserved; it is never published.
func AsSpecial() DefinitionOption {
	return func(d *Definition) {
		d.Special = true
	}
}

// Register adds an identifier to the table and returns it, so tables can be
// declared as package variables:
//
//	var OpenDocument = tbl.MustRegister(1, "Workspace_OpenDocument")
//
// It fails if the value is already taken, the name is empty, or the name
// or goal contains whitespace.
func (t *Table) Register(id FunctionID, name string, opts ...DefinitionOption) (FunctionID, error) {
	if name == "" {
		return 0, fmt.Errorf("function id %d: name is required", id)
	}
	def := Definition{Name: name, Value: id}
	for _, opt := range opts {
		opt(&def)
	}
	if err := def.Validate(); err != nil {
		return 0, fmt.Errorf("function id %d: %w", id, err)
	}
	if !t.entries.TryRegister(id, def) {
		existing, _ := t.entries.Get(id)
		return 0, fmt.Errorf("function id %d: already registered as %q", id, existing.Name)
	}
	return id, nil
}

// MustRegister is Register that panics on error.
func (t *Table) MustRegister(id FunctionID, name string, opts ...DefinitionOption) FunctionID {
	id, err := t.Register(id, name, opts...)
	if err != nil {
		panic(fmt.Sprintf("funcid: %v", err))
	}
	return id
}

// Definitions implements Source.
func (t *Table) Definitions() []Definition {
	return t.entries.Values()
}

// Lookup returns the definition registered for id.
func (t *Table) Lookup(id FunctionID) (Definition, bool) {
	return t.entries.Get(id)
}

// Name returns the symbolic name for id, or its decimal value if unknown.
func (t *Table) Name(id FunctionID) string {
	if def, ok := t.entries.Get(id); ok {
		return def.Name
	}
	return fmt.Sprintf("%d", int32(id))
}

// Len returns the number of registered identifiers.
func (t *Table) Len() int {
	return t.entries.Len()
}

// Default is the process-wide identifier table used by fnevents.Default.
var Default = NewTable()

// Register adds an identifier to the Default table.
func Register(id FunctionID, name string, opts ...DefinitionOption) (FunctionID, error) {
	return Default.Register(id, name, opts...)
}

// MustRegister adds an identifier to the Default table, panicking on error.
func MustRegister(id FunctionID, name string, opts ...DefinitionOption) FunctionID {
	return Default.MustRegister(id, name, opts...)
}
