// Package ledger implements the Ledger (spec.md §4.12): an append-only
// dual log (actual vs. simulated trades) with aggregate queries and a
// snapshot/restore pair for undo.
package ledger

import "blockengine/internal/coretypes"

// Entry is one closed trade record in either log.
type Entry struct {
	BlockIndex uint32
	Pattern    coretypes.PatternID
	Direction  coretypes.Direction
	PnL        float64
	Verdict    coretypes.Verdict
}

// Ledger holds the two append-only logs.
type Ledger struct {
	actual    []Entry
	simulated []Entry
}

// New creates an empty Ledger.
func New() *Ledger { return &Ledger{} }

// Reset clears both logs.
func (l *Ledger) Reset() { l.actual = nil; l.simulated = nil }

// RecordActual appends a real trade.
func (l *Ledger) RecordActual(e Entry) { l.actual = append(l.actual, e) }

// RecordSimulated appends a simulated (imaginary or locked-session) trade.
func (l *Ledger) RecordSimulated(e Entry) { l.simulated = append(l.simulated, e) }

// Actual returns the actual log.
func (l *Ledger) Actual() []Entry { return l.actual }

// Simulated returns the simulated log.
func (l *Ledger) Simulated() []Entry { return l.simulated }

// ActualPnL folds the actual log's PnL.
func (l *Ledger) ActualPnL() float64 { return sumPnL(l.actual) }

// SimulatedPnL folds the simulated log's PnL.
func (l *Ledger) SimulatedPnL() float64 { return sumPnL(l.simulated) }

func sumPnL(entries []Entry) float64 {
	var total float64
	for _, e := range entries {
		total += e.PnL
	}
	return total
}

// WinRate returns wins/total for a log (verdict fair or neutral-but-
// correct counts as a win iff PnL > 0, keeping the rate purely PnL-based
// rather than re-deriving correctness from the verdict).
func WinRate(entries []Entry) float64 {
	if len(entries) == 0 {
		return 0
	}
	var wins int
	for _, e := range entries {
		if e.PnL > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(entries))
}

// LastN returns the last n entries of a log (fewer if the log is shorter).
func LastN(entries []Entry, n int) []Entry {
	if n >= len(entries) {
		return entries
	}
	return entries[len(entries)-n:]
}

// PatternRollup is the per-pattern aggregate over a block range.
type PatternRollup struct {
	Pattern coretypes.PatternID
	Count   int
	PnL     float64
	WinRate float64
}

// RollupByPattern aggregates a log's entries within [fromBlock, toBlock]
// (inclusive), grouped by pattern, in canonical pattern order.
func RollupByPattern(entries []Entry, fromBlock, toBlock uint32) []PatternRollup {
	var counts [coretypes.NumPatterns]int
	var pnls [coretypes.NumPatterns]float64
	var wins [coretypes.NumPatterns]int

	for _, e := range entries {
		if e.BlockIndex < fromBlock || e.BlockIndex > toBlock {
			continue
		}
		counts[e.Pattern]++
		pnls[e.Pattern] += e.PnL
		if e.PnL > 0 {
			wins[e.Pattern]++
		}
	}

	var out []PatternRollup
	for _, p := range coretypes.AllPatterns() {
		if counts[p] == 0 {
			continue
		}
		out = append(out, PatternRollup{
			Pattern: p,
			Count:   counts[p],
			PnL:     pnls[p],
			WinRate: float64(wins[p]) / float64(counts[p]),
		})
	}
	return out
}

// Snapshot is an immutable copy of both logs' current lengths, used by
// Snapshot/Undo to truncate back to a prior block (spec.md §4.13: "pop
// the last block and any trade evaluated at its index").
type Snapshot struct {
	ActualLen    int
	SimulatedLen int
}

// Capture returns the current log lengths.
func (l *Ledger) Capture() Snapshot {
	return Snapshot{ActualLen: len(l.actual), SimulatedLen: len(l.simulated)}
}

// Restore truncates both logs back to a prior Snapshot.
func (l *Ledger) Restore(s Snapshot) {
	if s.ActualLen <= len(l.actual) {
		l.actual = l.actual[:s.ActualLen]
	}
	if s.SimulatedLen <= len(l.simulated) {
		l.simulated = l.simulated[:s.SimulatedLen]
	}
}
