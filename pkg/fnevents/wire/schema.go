package wire

import (
	"fmt"
	"math"
	"sync"
)

// FieldType is the wire type of a positional field.
type FieldType string

// Field types.
const (
	TypeString FieldType = "string"
	TypeInt32  FieldType = "int32"
)

// Field describes one positional field.
type Field struct {
	Name string
	Type FieldType
}

// Schema defines the shape of an event ID.
type Schema struct {
	// ID is the event identifier.
	ID EventID

	// Name is the event name (e.g., "BlockStart").
	Name string

	// Version is the schema version number.
	Version int

	// Description explains the event's purpose.
	Description string

	// Fields lists the payload in wire order.
	Fields []Field
}

// Validate checks that an event's fields match the schema positionally.
func (s *Schema) Validate(evt Event) error {
	if evt.ID() != s.ID {
		return fmt.Errorf("event id mismatch: expected %d, got %d", s.ID, evt.ID())
	}

	fields := evt.Fields()
	if len(fields) != len(s.Fields) {
		return fmt.Errorf("%s: expected %d fields, got %d", s.Name, len(s.Fields), len(fields))
	}

	for i, f := range s.Fields {
		if !f.Type.matches(fields[i]) {
			return fmt.Errorf("%s: field %d (%s) expected %s, got %T", s.Name, i, f.Name, f.Type, fields[i])
		}
	}
	return nil
}

// ValidateValues checks a raw decoded payload against the schema. Integers
// may arrive as any signed or unsigned width but must fit in int32.
func (s *Schema) ValidateValues(values []any) error {
	if len(values) != len(s.Fields) {
		return fmt.Errorf("%s: expected %d fields, got %d", s.Name, len(s.Fields), len(values))
	}
	for i, f := range s.Fields {
		if err := f.Type.check(values[i]); err != nil {
			return fmt.Errorf("%s: field %d (%s) %w", s.Name, i, f.Name, err)
		}
	}
	return nil
}

func (t FieldType) check(v any) error {
	if t == TypeString {
		if _, ok := v.(string); ok {
			return nil
		}
		return fmt.Errorf("expected %s, got %T", t, v)
	}
	var n int64
	switch x := v.(type) {
	case int64:
		n = x
	case int32:
		n = int64(x)
	case int16:
		n = int64(x)
	case int8:
		n = int64(x)
	case uint64:
		if x > math.MaxInt32 {
			return fmt.Errorf("value %d out of int32 range", x)
		}
		n = int64(x)
	case uint32:
		n = int64(x)
	case uint16:
		n = int64(x)
	case uint8:
		n = int64(x)
	default:
		return fmt.Errorf("expected %s, got %T", t, v)
	}
	if n < math.MinInt32 || n > math.MaxInt32 {
		return fmt.Errorf("value %d out of int32 range", n)
	}
	return nil
}

func (t FieldType) matches(v any) bool {
	switch t {
	case TypeString:
		_, ok := v.(string)
		return ok
	case TypeInt32:
		_, ok := v.(int32)
		return ok
	default:
		return false
	}
}

// SchemaRegistry holds event schemas keyed by ID.
type SchemaRegistry struct {
	mu      sync.RWMutex
	schemas map[EventID]*Schema
}

// NewSchemaRegistry creates an empty registry.
func NewSchemaRegistry() *SchemaRegistry {
	return &SchemaRegistry{schemas: make(map[EventID]*Schema)}
}

// Register adds a schema. A schema with the same ID is replaced only by a
// higher version.
func (r *SchemaRegistry) Register(schema *Schema) error {
	if schema.ID == 0 {
		return fmt.Errorf("event id is required")
	}
	if schema.Name == "" {
		return fmt.Errorf("event name is required")
	}
	if schema.Version <= 0 {
		return fmt.Errorf("version must be positive")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.schemas[schema.ID]; ok && current.Version >= schema.Version {
		return fmt.Errorf("event id %d already registered at version %d", schema.ID, current.Version)
	}
	r.schemas[schema.ID] = schema
	return nil
}

// Get returns the schema for an event ID.
func (r *SchemaRegistry) Get(id EventID) (*Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[id]
	return s, ok
}

// Validate checks an event against its registered schema.
func (r *SchemaRegistry) Validate(evt Event) error {
	s, ok := r.Get(evt.ID())
	if !ok {
		return fmt.Errorf("unknown event id: %d", evt.ID())
	}
	return s.Validate(evt)
}

// IDs returns registered IDs in ascending order.
func (r *SchemaRegistry) IDs() []EventID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ids []EventID
	for id := EventID(1); id != 0; id++ {
		if _, ok := r.schemas[id]; ok {
			ids = append(ids, id)
		}
		if len(ids) == len(r.schemas) {
			break
		}
	}
	return ids
}

// DefaultSchemas holds the built-in event shapes.
var DefaultSchemas = builtinSchemas()

func builtinSchemas() *SchemaRegistry {
	r := NewSchemaRegistry()
	for _, s := range []*Schema{
		{
			ID: IDLog, Name: "Log", Version: 1,
			Description: "Simple log line",
			Fields:      []Field{{"message", TypeString}, {"functionId", TypeInt32}},
		},
		{
			ID: IDBlockStart, Name: "BlockStart", Version: 1,
			Description: "Start of a tracked block",
			Fields:      []Field{{"message", TypeString}, {"functionId", TypeInt32}, {"blockId", TypeInt32}},
		},
		{
			ID: IDBlockStop, Name: "BlockStop", Version: 1,
			Description: "Normal end of a tracked block",
			Fields:      []Field{{"functionId", TypeInt32}, {"tick", TypeInt32}, {"blockId", TypeInt32}},
		},
		{
			ID: IDSendCatalog, Name: "SendCatalog", Version: 1,
			Description: "Function catalog document",
			Fields:      []Field{{"catalogText", TypeString}},
		},
		{
			ID: IDBlockCancel, Name: "BlockCancel", Version: 1,
			Description: "Abnormal end of a tracked block",
			Fields:      []Field{{"functionId", TypeInt32}, {"tick", TypeInt32}, {"blockId", TypeInt32}},
		},
	} {
		if err := r.Register(s); err != nil {
			panic("wire: " + err.Error())
		}
	}
	return r
}
