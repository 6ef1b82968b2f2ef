// Package lifecycle implements the Pattern Lifecycle (spec.md §4.4): the
// per-pattern Observing/Active state machine, cumulative/run profit
// accounting, activation, break, and cross-pair loss transfer. State is
// stored as a fixed-size indexed table keyed by coretypes.PatternID, per
// spec.md §9's "map-of-maps" redesign note.
package lifecycle

import "blockengine/internal/coretypes"

// Cycle is one pattern's PatternCycle (spec.md §3).
type Cycle struct {
	State                   coretypes.LifecycleState
	CumulativeProfit        float64 // clamped at 0
	RunProfit               float64 // accumulates while Active; reset on (re)activation
	LastRunProfit           float64
	BreakRunProfit          float64
	AllTimeProfit           float64 // unclamped, never reset
	LastFormationBlock      *uint32
	SavedIndicatorDirection *coretypes.Direction
}

// Transition reports the side effects of one ApplyResult/ForceBreak/
// Activate/Deactivate call, so the Reaction Engine can react (e.g. flip
// the Bucket Manager's classification) without Lifecycle reaching into
// Bucket itself (spec.md §9: "no direct back-pointers").
type Transition struct {
	Activated         bool
	Broke             bool
	BreakRunProfit    float64
	CrossPairTransfer float64 // amount added to the opposite pattern, 0 if none
	OppositePattern   coretypes.PatternID
}

// ActivationThreshold is the single-result profit that activates a pattern
// outright (spec.md §4.4, condition a).
const ActivationThreshold = 70

// CumulativeActivationThreshold is condition (b).
const CumulativeActivationThreshold = 100

// BreakRunProfitFraction is the run-profit threshold (as a fraction of
// magnitude terms, matching the spec's percent-as-0..100 convention) below
// which the Bucket Manager enters BNS on break (spec.md §3, §4.8). It is
// exposed here because the invariant that defines it ("run_profit ≤ -70%")
// lives in the PatternCycle data model.
const BreakRunProfitFraction = -70

// Lifecycle owns the fixed per-pattern PatternCycle table.
type Lifecycle struct {
	cycles [coretypes.NumPatterns]Cycle
}

// New returns a Lifecycle with every pattern Observing.
func New() *Lifecycle {
	return &Lifecycle{}
}

// Reset clears all cycles.
func (l *Lifecycle) Reset() {
	*l = Lifecycle{}
}

// Cycle returns a copy of pattern's current cycle.
func (l *Lifecycle) Cycle(pattern coretypes.PatternID) Cycle {
	return l.cycles[pattern]
}

// All returns a snapshot of every pattern's cycle, indexed by PatternID.
func (l *Lifecycle) All() [coretypes.NumPatterns]Cycle {
	return l.cycles
}

// Restore replaces the entire table (used by Snapshot/Undo restore and by
// the structural rebuild in spec.md §4.13).
func (l *Lifecycle) Restore(cycles [coretypes.NumPatterns]Cycle) {
	l.cycles = cycles
}

// ApplyResult folds one evaluated result's profit into pattern's cycle.
// autoActivate must be false for ZZ/AntiZZ (spec.md §4.4: "ZZ/AntiZZ are
// activated exclusively by the ZZ State Manager — they do not auto-activate
// from results"); true for every other pattern. Break-on-loss-while-active
// and cross-pair transfer apply uniformly regardless of autoActivate — the
// spec excludes only the activation path, not the break path, from ZZ's
// special handling.
func (l *Lifecycle) ApplyResult(pattern coretypes.PatternID, profit float64, autoActivate bool, formedAt uint32) Transition {
	c := &l.cycles[pattern]
	c.AllTimeProfit += profit
	wasActive := c.State == coretypes.Active

	if wasActive {
		c.RunProfit += profit
	}

	c.CumulativeProfit += profit
	if c.CumulativeProfit < 0 {
		c.CumulativeProfit = 0
	}

	var t Transition

	if wasActive && profit < 0 {
		opp := pattern.Opposite()
		loss := -profit
		l.cycles[opp].CumulativeProfit += loss
		if l.cycles[opp].CumulativeProfit < 0 {
			l.cycles[opp].CumulativeProfit = 0
		}

		c.BreakRunProfit = c.RunProfit
		c.LastRunProfit = c.RunProfit
		c.State = coretypes.Observing
		c.RunProfit = 0

		t.Broke = true
		t.BreakRunProfit = c.BreakRunProfit
		t.CrossPairTransfer = loss
		t.OppositePattern = opp
		return t
	}

	if autoActivate && !wasActive {
		if profit >= ActivationThreshold || c.CumulativeProfit >= CumulativeActivationThreshold {
			c.State = coretypes.Active
			c.RunProfit = 0
			block := formedAt
			c.LastFormationBlock = &block
			t.Activated = true
		}
	}

	return t
}

// ForceBreak transitions an Active pattern to Observing without an
// accompanying loss result — the pattern-specific structural kill path
// (spec.md §4.4: "a pattern-specific structural kill signalled by the
// Block Tracker"). It is a no-op if the pattern is not Active.
func (l *Lifecycle) ForceBreak(pattern coretypes.PatternID) Transition {
	c := &l.cycles[pattern]
	if c.State != coretypes.Active {
		return Transition{}
	}
	c.BreakRunProfit = c.RunProfit
	c.LastRunProfit = c.RunProfit
	c.State = coretypes.Observing
	c.RunProfit = 0
	return Transition{Broke: true, BreakRunProfit: c.BreakRunProfit}
}

// Activate transitions an Observing pattern to Active explicitly — the
// path the ZZ State Manager uses instead of the auto-activate rule
// (spec.md §4.9).
func (l *Lifecycle) Activate(pattern coretypes.PatternID, formedAt uint32) {
	c := &l.cycles[pattern]
	if c.State == coretypes.Active {
		return
	}
	c.State = coretypes.Active
	c.RunProfit = 0
	block := formedAt
	c.LastFormationBlock = &block
}

// Deactivate transitions an Active pattern to Observing without requiring
// a loss — used by the ZZ State Manager for AntiZZ's win-triggered
// deactivation (spec.md §4.9: "On win: AntiZZ stays P1 for the next
// indicator; deactivates now").
func (l *Lifecycle) Deactivate(pattern coretypes.PatternID) {
	c := &l.cycles[pattern]
	if c.State != coretypes.Active {
		return
	}
	c.BreakRunProfit = c.RunProfit
	c.LastRunProfit = c.RunProfit
	c.State = coretypes.Observing
	c.RunProfit = 0
}

// IsActive reports whether pattern is currently Active.
func (l *Lifecycle) IsActive(pattern coretypes.PatternID) bool {
	return l.cycles[pattern].State == coretypes.Active
}
