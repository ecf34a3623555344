// Package decode turns recorded event streams back into readable traces.
//
// A Decoder resolves function identifiers through the most recent
// SendCatalog seen in the stream and pairs block starts with their stop or
// cancel through a BlockTracker.
package decode

import (
	"sort"
	"time"

	"github.com/randalmurphal/fnevents/pkg/fnevents/wire"
)

// Block is a tracked span of work.
type Block struct {
	FunctionID int32     `json:"function_id"`
	BlockID    int32     `json:"block_id"`
	Message    string    `json:"message,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	EndedAt    time.Time `json:"ended_at,omitzero"`
	Tick       int32     `json:"tick,omitempty"`
	Canceled   bool      `json:"canceled,omitempty"`

	seq int
}

// Elapsed is the wall time between start and terminal. Zero while open.
func (b Block) Elapsed() time.Duration {
	if b.EndedAt.IsZero() {
		return 0
	}
	return b.EndedAt.Sub(b.StartedAt)
}

type blockKey struct {
	functionID int32
	blockID    int32
}

// BlockTracker pairs each BlockStart with the single BlockStop or
// BlockCancel sharing its function and block IDs.
//
// Not safe for concurrent use.
type BlockTracker struct {
	open      map[blockKey]*Block
	completed []Block
	abandoned []Block
	orphans   []wire.Event
	next      int
}

// NewBlockTracker creates an empty tracker.
func NewBlockTracker() *BlockTracker {
	return &BlockTracker{open: make(map[blockKey]*Block)}
}

// Start opens a block. A start for a block that is already open abandons
// the earlier one.
func (t *BlockTracker) Start(evt wire.BlockStart, at time.Time) {
	key := blockKey{evt.FunctionID, evt.BlockID}
	if prev, ok := t.open[key]; ok {
		t.abandoned = append(t.abandoned, *prev)
	}
	t.next++
	t.open[key] = &Block{
		FunctionID: evt.FunctionID,
		BlockID:    evt.BlockID,
		Message:    evt.Message,
		StartedAt:  at,
		seq:        t.next,
	}
}

// Stop closes a block normally. It reports false for a stop with no open
// start, which is kept as an orphan.
func (t *BlockTracker) Stop(evt wire.BlockStop, at time.Time) (Block, bool) {
	return t.finish(evt, evt.FunctionID, evt.BlockID, evt.Tick, at, false)
}

// Cancel closes a block abnormally. It reports false for a cancel with no
// open start, which is kept as an orphan.
func (t *BlockTracker) Cancel(evt wire.BlockCancel, at time.Time) (Block, bool) {
	return t.finish(evt, evt.FunctionID, evt.BlockID, evt.Tick, at, true)
}

func (t *BlockTracker) finish(evt wire.Event, functionID, blockID, tick int32, at time.Time, canceled bool) (Block, bool) {
	key := blockKey{functionID, blockID}
	b, ok := t.open[key]
	if !ok {
		t.orphans = append(t.orphans, evt)
		return Block{}, false
	}
	delete(t.open, key)

	b.EndedAt = at
	b.Tick = tick
	b.Canceled = canceled
	t.completed = append(t.completed, *b)
	return *b, true
}

// Open returns blocks still waiting for a terminal, in start order.
func (t *BlockTracker) Open() []Block {
	blocks := make([]Block, 0, len(t.open))
	for _, b := range t.open {
		blocks = append(blocks, *b)
	}
	sort.Slice(blocks, func(i, j int) bool {
		return blocks[i].seq < blocks[j].seq
	})
	return blocks
}

// Completed returns terminated blocks in terminal order.
func (t *BlockTracker) Completed() []Block {
	return append([]Block(nil), t.completed...)
}

// Abandoned returns blocks replaced by a second start before terminating.
func (t *BlockTracker) Abandoned() []Block {
	return append([]Block(nil), t.abandoned...)
}

// Orphans returns terminal events that had no matching start.
func (t *BlockTracker) Orphans() []wire.Event {
	return append([]wire.Event(nil), t.orphans...)
}
