// Package wire defines the fixed, numbered event shapes fnevents emits.
//
// Consumers bind to these shapes positionally: the event ID selects the
// shape, and fields are read in declaration order. Field order and count are
// part of the compatibility surface and must not change without a new event ID.
//
//	ID  Name         Fields
//	1   Log          message:string, functionId:int32
//	2   BlockStart   message:string, functionId:int32, blockId:int32
//	3   BlockStop    functionId:int32, tick:int32, blockId:int32
//	4   SendCatalog  catalogText:string
//	5   BlockCancel  functionId:int32, tick:int32, blockId:int32
package wire

// EventID selects an event shape.
type EventID uint8

// Event IDs. Values are stable.
const (
	IDLog         EventID = 1
	IDBlockStart  EventID = 2
	IDBlockStop   EventID = 3
	IDSendCatalog EventID = 4
	IDBlockCancel EventID = 5
)

// String returns the event name.
func (id EventID) String() string {
	switch id {
	case IDLog:
		return "Log"
	case IDBlockStart:
		return "BlockStart"
	case IDBlockStop:
		return "BlockStop"
	case IDSendCatalog:
		return "SendCatalog"
	case IDBlockCancel:
		return "BlockCancel"
	default:
		return "unknown"
	}
}

// Event is one emitted record.
type Event interface {
	// ID returns the shape identifier.
	ID() EventID

	// Fields returns the payload in wire order.
	Fields() []any
}

// Log is a simple log line tagged with a function identifier.
type Log struct {
	_msgpack struct{} `msgpack:",as_array"`

	Message    string
	FunctionID int32
}

// ID implements Event.
func (Log) ID() EventID { return IDLog }

// Fields implements Event.
func (e Log) Fields() []any { return []any{e.Message, e.FunctionID} }

// BlockStart marks the beginning of a tracked block.
type BlockStart struct {
	_msgpack struct{} `msgpack:",as_array"`

	Message    string
	FunctionID int32
	BlockID    int32
}

// ID implements Event.
func (BlockStart) ID() EventID { return IDBlockStart }

// Fields implements Event.
func (e BlockStart) Fields() []any { return []any{e.Message, e.FunctionID, e.BlockID} }

// BlockStop marks normal completion of a tracked block. Tick is supplied by
// the caller; consumers derive duration from it.
type BlockStop struct {
	_msgpack struct{} `msgpack:",as_array"`

	FunctionID int32
	Tick       int32
	BlockID    int32
}

// ID implements Event.
func (BlockStop) ID() EventID { return IDBlockStop }

// Fields implements Event.
func (e BlockStop) Fields() []any { return []any{e.FunctionID, e.Tick, e.BlockID} }

// SendCatalog carries a catalog document.
type SendCatalog struct {
	_msgpack struct{} `msgpack:",as_array"`

	Text string
}

// ID implements Event.
func (SendCatalog) ID() EventID { return IDSendCatalog }

// Fields implements Event.
func (e SendCatalog) Fields() []any { return []any{e.Text} }

// BlockCancel marks abnormal termination of a tracked block.
type BlockCancel struct {
	_msgpack struct{} `msgpack:",as_array"`

	FunctionID int32
	Tick       int32
	BlockID    int32
}

// ID implements Event.
func (BlockCancel) ID() EventID { return IDBlockCancel }

// Fields implements Event.
func (e BlockCancel) Fields() []any { return []any{e.FunctionID, e.Tick, e.BlockID} }
