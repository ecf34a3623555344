package decode

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/randalmurphal/fnevents/pkg/fnevents/catalog"
	"github.com/randalmurphal/fnevents/pkg/fnevents/funcid"
	"github.com/randalmurphal/fnevents/pkg/fnevents/wire"
)

// Line is one decoded event.
type Line struct {
	At         time.Time     `json:"at"`
	Event      string        `json:"event"`
	Function   string        `json:"function,omitempty"`
	FunctionID int32         `json:"function_id"`
	Message    string        `json:"message,omitempty"`
	BlockID    int32         `json:"block_id,omitempty"`
	Tick       int32         `json:"tick,omitempty"`
	Elapsed    time.Duration `json:"elapsed_ns,omitempty"`
	Orphan     bool          `json:"orphan,omitempty"`

	// Set for SendCatalog.
	CatalogVersion string `json:"catalog_version,omitempty"`
	CatalogEntries int    `json:"catalog_entries,omitempty"`
}

// Decoder resolves a stream of events into Lines.
//
// Not safe for concurrent use.
type Decoder struct {
	catalog *catalog.Catalog
	blocks  *BlockTracker
}

// NewDecoder creates a Decoder with no catalog.
func NewDecoder() *Decoder {
	return &Decoder{blocks: NewBlockTracker()}
}

// Catalog returns the most recent catalog, or nil.
func (d *Decoder) Catalog() *catalog.Catalog {
	return d.catalog
}

// Blocks returns the block tracker.
func (d *Decoder) Blocks() *BlockTracker {
	return d.blocks
}

// Decode resolves one event observed at at. Until a catalog arrives
// functions are named by their decimal value. A malformed catalog is
// reported and the previous catalog stays in effect.
func (d *Decoder) Decode(evt wire.Event, at time.Time) (Line, error) {
	if evt == nil {
		return Line{}, fmt.Errorf("decode: nil event")
	}
	line := Line{At: at, Event: evt.ID().String()}

	switch e := evt.(type) {
	case wire.Log:
		d.function(&line, e.FunctionID)
		line.Message = e.Message
	case wire.BlockStart:
		d.function(&line, e.FunctionID)
		line.Message = e.Message
		line.BlockID = e.BlockID
		d.blocks.Start(e, at)
	case wire.BlockStop:
		d.function(&line, e.FunctionID)
		line.BlockID = e.BlockID
		line.Tick = e.Tick
		b, ok := d.blocks.Stop(e, at)
		d.terminal(&line, b, ok)
	case wire.BlockCancel:
		d.function(&line, e.FunctionID)
		line.BlockID = e.BlockID
		line.Tick = e.Tick
		b, ok := d.blocks.Cancel(e, at)
		d.terminal(&line, b, ok)
	case wire.SendCatalog:
		c, err := catalog.Parse(e.Text)
		if err != nil {
			return line, fmt.Errorf("decode catalog: %w", err)
		}
		d.catalog = c
		line.CatalogVersion = c.Version
		line.CatalogEntries = len(c.Entries)
	default:
		return line, fmt.Errorf("decode: unsupported event %T", evt)
	}
	return line, nil
}

func (d *Decoder) function(line *Line, id int32) {
	line.FunctionID = id
	if d.catalog == nil {
		line.Function = strconv.FormatInt(int64(id), 10)
		return
	}
	line.Function = d.catalog.Name(funcid.FunctionID(id))
}

func (d *Decoder) terminal(line *Line, b Block, ok bool) {
	if !ok {
		line.Orphan = true
		return
	}
	line.Elapsed = b.Elapsed()
	if line.Message == "" {
		line.Message = b.Message
	}
}

// Text renders a Line on one row.
func (l Line) Text() string {
	var sb strings.Builder
	sb.WriteString(l.At.UTC().Format("15:04:05.000000"))
	sb.WriteByte(' ')
	sb.WriteString(l.Event)

	if l.Event == wire.IDSendCatalog.String() {
		fmt.Fprintf(&sb, " version=%s entries=%d", l.CatalogVersion, l.CatalogEntries)
		return sb.String()
	}

	fmt.Fprintf(&sb, " %s(%d)", l.Function, l.FunctionID)
	if l.Event != wire.IDLog.String() {
		fmt.Fprintf(&sb, " block=%d", l.BlockID)
	}
	if l.Event == wire.IDBlockStop.String() || l.Event == wire.IDBlockCancel.String() {
		fmt.Fprintf(&sb, " tick=%d", l.Tick)
		if l.Orphan {
			sb.WriteString(" orphan")
		} else {
			fmt.Fprintf(&sb, " elapsed=%s", l.Elapsed)
		}
	}
	if l.Message != "" {
		fmt.Fprintf(&sb, " %q", l.Message)
	}
	return sb.String()
}
