package wire

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// envelope is the binary frame: [id, [fields...]].
type envelope struct {
	_msgpack struct{} `msgpack:",as_array"`

	ID      EventID
	Payload msgpack.RawMessage
}

// Encode serializes an event as a msgpack array frame.
func Encode(evt Event) ([]byte, error) {
	if evt == nil {
		return nil, fmt.Errorf("encode event: nil event")
	}
	payload, err := msgpack.Marshal(evt)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", evt.ID(), err)
	}
	data, err := msgpack.Marshal(&envelope{ID: evt.ID(), Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("encode %s frame: %w", evt.ID(), err)
	}
	return data, nil
}

// Decode parses a frame produced by Encode, checking its positional
// payload against DefaultSchemas.
func Decode(data []byte) (Event, error) {
	return DefaultSchemas.Decode(data)
}

// Decode parses a frame. The payload must match the registered schema for
// its event ID in field count, order and type before it is bound to an
// event struct.
func (r *SchemaRegistry) Decode(data []byte) (Event, error) {
	var env envelope
	if err := msgpack.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}

	schema, ok := r.Get(env.ID)
	if !ok {
		return nil, fmt.Errorf("decode frame: unknown event id %d", env.ID)
	}
	dec := msgpack.NewDecoder(bytes.NewReader(env.Payload))
	raw, err := dec.DecodeInterfaceLoose()
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", env.ID, err)
	}
	values, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("decode %s: payload is %T, not an array", env.ID, raw)
	}
	if err := schema.ValidateValues(values); err != nil {
		return nil, fmt.Errorf("decode %s: %w", env.ID, err)
	}

	return bind(env)
}

func bind(env envelope) (Event, error) {
	var (
		evt Event
		err error
	)
	switch env.ID {
	case IDLog:
		var e Log
		err = msgpack.Unmarshal(env.Payload, &e)
		evt = e
	case IDBlockStart:
		var e BlockStart
		err = msgpack.Unmarshal(env.Payload, &e)
		evt = e
	case IDBlockStop:
		var e BlockStop
		err = msgpack.Unmarshal(env.Payload, &e)
		evt = e
	case IDSendCatalog:
		var e SendCatalog
		err = msgpack.Unmarshal(env.Payload, &e)
		evt = e
	case IDBlockCancel:
		var e BlockCancel
		err = msgpack.Unmarshal(env.Payload, &e)
		evt = e
	default:
		return nil, fmt.Errorf("decode frame: unknown event id %d", env.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", env.ID, err)
	}
	return evt, nil
}

// jsonLine is the NDJSON rendering of an event.
type jsonLine struct {
	ID     EventID `json:"id"`
	Event  string  `json:"event"`
	Fields []any   `json:"fields"`
}

// MarshalJSONLine renders an event as one newline-terminated JSON object
// with its fields in wire order.
func MarshalJSONLine(evt Event) ([]byte, error) {
	if evt == nil {
		return nil, fmt.Errorf("marshal event: nil event")
	}
	data, err := json.Marshal(jsonLine{ID: evt.ID(), Event: evt.ID().String(), Fields: evt.Fields()})
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", evt.ID(), err)
	}
	return append(data, '\n'), nil
}
