// Package snapshot implements the per-block Snapshot/Undo record (spec.md
// §4.13): a structural copy of every subsystem's state, tagged by block
// index, plus the bookkeeping the Reaction Engine needs to perform a
// structural rebuild on undo rather than a plain rollback.
package snapshot

import (
	"blockengine/internal/bucket"
	"blockengine/internal/coretypes"
	"blockengine/internal/hostility"
	"blockengine/internal/ledger"
	"blockengine/internal/lifecycle"
	"blockengine/internal/pause"
	"blockengine/internal/samedir"
	"blockengine/internal/zz"
)

// Snapshot is one block's complete subsystem state copy.
type Snapshot struct {
	BlockIndex uint32
	Bucket     [coretypes.NumPatterns]bucket.State
	Pause      pause.State
	Hostility  hostility.State
	SameDir    samedir.State
	Lifecycle  [coretypes.NumPatterns]lifecycle.Cycle
	ZZ         zz.State
	Ledger     ledger.Snapshot
}

// Ring is a bounded history of per-block snapshots, oldest first.
type Ring struct {
	entries []Snapshot
	limit   int
}

// NewRing creates a Ring retaining at most limit snapshots (0 = unbounded).
func NewRing(limit int) *Ring {
	return &Ring{limit: limit}
}

// Push appends a snapshot, evicting the oldest if over limit.
func (r *Ring) Push(s Snapshot) {
	r.entries = append(r.entries, s)
	if r.limit > 0 && len(r.entries) > r.limit {
		r.entries = r.entries[len(r.entries)-r.limit:]
	}
}

// PopLast removes and returns the most recent snapshot, if any.
func (r *Ring) PopLast() (Snapshot, bool) {
	if len(r.entries) == 0 {
		return Snapshot{}, false
	}
	last := r.entries[len(r.entries)-1]
	r.entries = r.entries[:len(r.entries)-1]
	return last, true
}

// Last returns the most recent snapshot without removing it.
func (r *Ring) Last() (Snapshot, bool) {
	if len(r.entries) == 0 {
		return Snapshot{}, false
	}
	return r.entries[len(r.entries)-1], true
}

// All returns every retained snapshot, oldest first.
func (r *Ring) All() []Snapshot { return r.entries }

// Reset clears the ring.
func (r *Ring) Reset() { r.entries = nil }
