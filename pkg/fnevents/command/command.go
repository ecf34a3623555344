// Package command models control commands delivered by a transport.
//
// Commands are fire-and-forget: the transport hands one to a CommandHandler
// on its own goroutine and expects the handler to return immediately.
//
// Common kinds:
//   - Enable: a listener attached
//   - Disable: the last listener detached
//   - SendManifest: a consumer asked for the function catalog
//
// Any other request is represented as Other.
package command

import (
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind is the command type.
type Kind int

// Command kinds.
const (
	Other Kind = iota
	Enable
	Disable
	SendManifest
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Enable:
		return "Enable"
	case Disable:
		return "Disable"
	case SendManifest:
		return "SendManifest"
	default:
		return "Other"
	}
}

// ParseKind maps a name to a Kind. Matching ignores case. Unknown names
// map to Other and report false.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "enable":
		return Enable, true
	case "disable":
		return Disable, true
	case "sendmanifest", "send_manifest", "send-manifest":
		return SendManifest, true
	case "other":
		return Other, true
	default:
		return Other, false
	}
}

// ArgSendFunctionDefinitions forces a catalog publish when present in Args,
// whatever the Kind.
const ArgSendFunctionDefinitions = "SendFunctionDefinitions"

// Command is one control request.
type Command struct {
	// ID uniquely identifies this command.
	ID string `json:"id"`

	// Kind is the command type.
	Kind Kind `json:"kind"`

	// Args holds optional key/value arguments.
	Args map[string]string `json:"args,omitempty"`

	// IssuedAt is when the command was created.
	IssuedAt time.Time `json:"issued_at"`
}

// New creates a command. Args are copied.
func New(kind Kind, args map[string]string) Command {
	return Command{
		ID:       fmt.Sprintf("cmd-%s", uuid.New().String()[:8]),
		Kind:     kind,
		Args:     maps.Clone(args),
		IssuedAt: time.Now(),
	}
}

// HasArg reports whether key is present in Args.
func (c Command) HasArg(key string) bool {
	_, ok := c.Args[key]
	return ok
}

// Warranted reports whether cmd should trigger a catalog publish.
//
// Every kind except Disable publishes, including Other. Disable publishes
// only when Args names ArgSendFunctionDefinitions.
func Warranted(cmd Command) bool {
	if cmd.Kind == SendManifest {
		return true
	}
	if cmd.Kind != Disable {
		return true
	}
	return cmd.HasArg(ArgSendFunctionDefinitions)
}
