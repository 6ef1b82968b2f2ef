// Package blocktrack implements the Block & Run Tracker: an append-only log
// of blocks plus the run-length bookkeeping every other subsystem reads
// (spec.md §4.1). Grounded on the teacher's append-only candle slice
// pattern in internal/backtest/engine.go (candles []binance.Kline, indexed
// by position) generalized to the spec's Block/Run data model.
package blocktrack

import (
	"fmt"

	"blockengine/internal/coretypes"
)

// Block is one immutable observed outcome.
type Block struct {
	Index     uint32
	Direction coretypes.Direction
	Magnitude float64 // percent, in [0,100]
}

// Run is a maximal consecutive same-direction span, recorded once it has
// completed. MagnitudeSum is the unsigned total of every block's
// magnitude within the run, letting callers derive a signed run profit
// (direction.Sign() * MagnitudeSum) without re-reading block history.
type Run struct {
	Direction    coretypes.Direction
	Length       int
	StartIdx     uint32
	EndIdx       uint32
	MagnitudeSum float64
}

// Tracker owns the append-only block log and run bookkeeping.
type Tracker struct {
	blocks []Block

	lengths          []int // completed run lengths, in order; current run excluded
	completedRuns    []Run
	currentDirection coretypes.Direction
	currentLength    int
	currentStart     uint32
	currentMagSum    float64
	hasCurrent       bool
}

// New returns an empty tracker.
func New() *Tracker {
	return &Tracker{}
}

// AddBlock appends a block, extending or starting a run as needed. Fails
// only when magnitude is outside [0,100] (spec.md §4.1). When this block
// ends the previous run (a direction change), completedRun is non-nil and
// describes that just-finished run, so callers (Same-Direction, the
// pattern-specific break checks) can react to the transition without
// re-deriving it from Lengths().
func (t *Tracker) AddBlock(dir coretypes.Direction, magnitude float64) (b Block, completedRun *Run, err error) {
	if magnitude < 0 || magnitude > 100 {
		return Block{}, nil, fmt.Errorf("blocktrack: magnitude %.4f out of range [0,100]", magnitude)
	}
	idx := uint32(len(t.blocks))
	b = Block{Index: idx, Direction: dir, Magnitude: magnitude}
	t.blocks = append(t.blocks, b)

	if !t.hasCurrent {
		t.hasCurrent = true
		t.currentDirection = dir
		t.currentLength = 1
		t.currentStart = idx
		t.currentMagSum = magnitude
		return b, nil, nil
	}

	if dir == t.currentDirection {
		t.currentLength++
		t.currentMagSum += magnitude
		return b, nil, nil
	}

	// Run ended; record it, then start the new one.
	finished := Run{
		Direction:    t.currentDirection,
		Length:       t.currentLength,
		StartIdx:     t.currentStart,
		EndIdx:       idx - 1,
		MagnitudeSum: t.currentMagSum,
	}
	t.completedRuns = append(t.completedRuns, finished)
	t.lengths = append(t.lengths, t.currentLength)
	t.currentDirection = dir
	t.currentLength = 1
	t.currentStart = idx
	t.currentMagSum = magnitude
	return b, &finished, nil
}

// RemoveLast pops the most recently appended block, reversing run state.
// Returns false if the log is empty. Used by the Snapshot/Undo rebuild
// (spec.md §4.13) rather than a structural snapshot restore, since run
// state can always be recomputed by re-deriving from the remaining blocks.
func (t *Tracker) RemoveLast() (Block, bool) {
	n := len(t.blocks)
	if n == 0 {
		return Block{}, false
	}
	removed := t.blocks[n-1]
	t.blocks = t.blocks[:n-1]
	t.rebuildRuns()
	return removed, true
}

// rebuildRuns recomputes all run bookkeeping from scratch off t.blocks. This
// keeps RemoveLast (and any future bulk replay) trivially correct at the
// cost of O(n); blocks are bounded by a single session so this is cheap.
func (t *Tracker) rebuildRuns() {
	t.lengths = t.lengths[:0]
	t.completedRuns = t.completedRuns[:0]
	t.hasCurrent = false
	t.currentLength = 0
	t.currentMagSum = 0

	for _, b := range t.blocks {
		if !t.hasCurrent {
			t.hasCurrent = true
			t.currentDirection = b.Direction
			t.currentLength = 1
			t.currentStart = b.Index
			t.currentMagSum = b.Magnitude
			continue
		}
		if b.Direction == t.currentDirection {
			t.currentLength++
			t.currentMagSum += b.Magnitude
			continue
		}
		t.completedRuns = append(t.completedRuns, Run{
			Direction:    t.currentDirection,
			Length:       t.currentLength,
			StartIdx:     t.currentStart,
			EndIdx:       b.Index - 1,
			MagnitudeSum: t.currentMagSum,
		})
		t.lengths = append(t.lengths, t.currentLength)
		t.currentDirection = b.Direction
		t.currentLength = 1
		t.currentStart = b.Index
		t.currentMagSum = b.Magnitude
	}
}

// Reset clears all state.
func (t *Tracker) Reset() {
	*t = Tracker{}
}

// Len returns the number of appended blocks.
func (t *Tracker) Len() int {
	return len(t.blocks)
}

// Block returns the block at index, and whether it exists.
func (t *Tracker) Block(index uint32) (Block, bool) {
	if int(index) >= len(t.blocks) {
		return Block{}, false
	}
	return t.blocks[index], true
}

// Last returns the most recently appended block.
func (t *Tracker) Last() (Block, bool) {
	if len(t.blocks) == 0 {
		return Block{}, false
	}
	return t.blocks[len(t.blocks)-1], true
}

// CurrentRun returns the direction and length of the in-progress run.
func (t *Tracker) CurrentRun() (coretypes.Direction, int, bool) {
	if !t.hasCurrent {
		return 0, 0, false
	}
	return t.currentDirection, t.currentLength, true
}

// Lengths returns the full run-length sequence, completed runs first and
// the current (possibly still open) run appended last — matching the data
// model's "lengths: ordered sequence of positive integers... last element
// is current run" (spec.md §3).
func (t *Tracker) Lengths() []int {
	out := make([]int, 0, len(t.lengths)+1)
	out = append(out, t.lengths...)
	if t.hasCurrent {
		out = append(out, t.currentLength)
	}
	return out
}

// CompletedRuns returns completed runs in chronological order.
func (t *Tracker) CompletedRuns() []Run {
	out := make([]Run, len(t.completedRuns))
	copy(out, t.completedRuns)
	return out
}

// RecentMagnitudes returns the magnitudes of the last n blocks, oldest
// first. If fewer than n blocks exist, returns all of them.
func (t *Tracker) RecentMagnitudes(n int) []float64 {
	if n > len(t.blocks) {
		n = len(t.blocks)
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = t.blocks[len(t.blocks)-n+i].Magnitude
	}
	return out
}
