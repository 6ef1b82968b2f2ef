// Package bucket implements the Bucket Manager (spec.md §4.8): the
// per-pattern WAITING/MAIN/BNS classification driven by the Pattern
// Lifecycle, the bait-and-switch mechanics that let a broken pattern's
// opposite play an inverse trade, and the pattern-specific structural
// kill machines for OZ/AP5/PP/ST. ZZ/AntiZZ are out of scope here — they
// are governed exclusively by package zz.
package bucket

import "blockengine/internal/coretypes"

// Config holds the tunables from spec.md §6.1.
type Config struct {
	ConsecutiveWinsToBreakBNS int     // 2
	SingleBaitThreshold       float64 // 70
	CumulativeBaitThreshold   float64 // 100
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{ConsecutiveWinsToBreakBNS: 2, SingleBaitThreshold: 70, CumulativeBaitThreshold: 100}
}

// State is one pattern's bucket bookkeeping (spec.md §3).
type State struct {
	Bucket                  coretypes.Bucket
	BlockedByOpposite       bool
	CumulativeBaitProfit    float64
	BaitConfirmed           bool
	SwitchPlayed            bool
	ConsecutiveOppositeWins int
	AccumulatedWhileBlocked float64
	LastSwitchBlock         *uint32
}

// Bucket owns the per-pattern bucket table (ZZ/AntiZZ slots are present
// but unused, to keep the table indexed directly by coretypes.PatternID).
type Bucket struct {
	cfg    Config
	states [coretypes.NumPatterns]State
}

// New creates a Bucket Manager with every pattern WAITING.
func New(cfg Config) *Bucket {
	if cfg.SingleBaitThreshold == 0 {
		cfg = DefaultConfig()
	}
	return &Bucket{cfg: cfg}
}

// State returns a copy of one pattern's bucket state.
func (b *Bucket) State(pattern coretypes.PatternID) State { return b.states[pattern] }

// All returns a snapshot of the entire table.
func (b *Bucket) All() [coretypes.NumPatterns]State { return b.states }

// Restore replaces the entire table (snapshot/undo rebuild).
func (b *Bucket) Restore(states [coretypes.NumPatterns]State) { b.states = states }

// Reset clears all state.
func (b *Bucket) Reset() { b.states = [coretypes.NumPatterns]State{} }

// ShouldPlay reports whether pattern is eligible for a Hierarchy bet:
// bucket in {MAIN, BNS} and not blocked by its opposite's BNS.
func (b *Bucket) ShouldPlay(pattern coretypes.PatternID) bool {
	s := &b.states[pattern]
	if s.BlockedByOpposite {
		return false
	}
	return s.Bucket == coretypes.Main || s.Bucket == coretypes.BNS
}

// OnActivated handles a pattern's Observing→Active transition (spec.md
// §4.8). A re-activation while the pattern itself is already in BNS (the
// bait is now confirmed, switch may fire) leaves the bucket BNS rather
// than resetting it to MAIN.
func (b *Bucket) OnActivated(pattern coretypes.PatternID) {
	s := &b.states[pattern]
	if s.Bucket == coretypes.BNS {
		return // re-activation while already BNS: bait confirmed, stays BNS
	}
	if s.BlockedByOpposite {
		s.Bucket = coretypes.Waiting
		return
	}
	s.Bucket = coretypes.Main
}

// OnBrokeWhileMain handles the break rule for a pattern that was MAIN
// (spec.md §4.8): enters BNS if the break was severe (<= -70), blocking
// the opposite pattern from entering BNS simultaneously; otherwise WAITING.
func (b *Bucket) OnBrokeWhileMain(pattern coretypes.PatternID, breakRunProfit float64, breakLossMagnitude float64) {
	s := &b.states[pattern]
	if breakRunProfit <= -70 {
		s.Bucket = coretypes.BNS
		s.CumulativeBaitProfit = breakLossMagnitude
		s.BaitConfirmed = false
		s.SwitchPlayed = false
		s.ConsecutiveOppositeWins = 0
		s.LastSwitchBlock = nil

		opp := &b.states[pattern.Opposite()]
		opp.BlockedByOpposite = true
		opp.AccumulatedWhileBlocked = 0
		return
	}
	s.Bucket = coretypes.Waiting
}

// OnBrokeWhileBNS handles the break rule for a pattern that was BNS with
// its switch already played (spec.md §4.8).
func (b *Bucket) OnBrokeWhileBNS(pattern coretypes.PatternID, switchResultProfit float64) {
	s := &b.states[pattern]
	opp := &b.states[pattern.Opposite()]

	switch {
	case switchResultProfit <= -70:
		s.Bucket = coretypes.Main
		opp.BlockedByOpposite = false
	case switchResultProfit < 0:
		s.Bucket = coretypes.Waiting
		opp.BlockedByOpposite = false
	default:
		// switch won: stay BNS, clear the bait for the next cycle.
		s.BaitConfirmed = false
		s.CumulativeBaitProfit = 0
		s.SwitchPlayed = false
	}
}

// ObserveBaitProgress folds one observation-phase result for a BNS
// pattern into its bait accumulation, confirming the bait or failing it
// (RRR rule: a loss while accumulation has begun but is unconfirmed exits
// to WAITING).
func (b *Bucket) ObserveBaitProgress(pattern coretypes.PatternID, profit float64) {
	s := &b.states[pattern]
	if s.Bucket != coretypes.BNS || s.BaitConfirmed {
		return
	}
	if profit < 0 {
		if s.CumulativeBaitProfit > 0 {
			s.Bucket = coretypes.Waiting
			b.states[pattern.Opposite()].BlockedByOpposite = false
		}
		return
	}
	s.CumulativeBaitProfit += profit
	if profit >= b.cfg.SingleBaitThreshold || s.CumulativeBaitProfit >= b.cfg.CumulativeBaitThreshold {
		s.BaitConfirmed = true
	}
}

// MarkSwitchPlayed records that the BNS switch trade fired at blockIndex,
// suppressing structural kill checks for that same block.
func (b *Bucket) MarkSwitchPlayed(pattern coretypes.PatternID, blockIndex uint32) {
	s := &b.states[pattern]
	s.SwitchPlayed = true
	block := blockIndex
	s.LastSwitchBlock = &block
}

// ObserveBlockedOppositeResult increments the blocked pattern's
// consecutive-opposite-win counter (real or imaginary wins count) and
// accumulates its while-blocked profit; a loss resets the counter. When
// the configured consecutive-win count is reached, BNS is killed to
// WAITING and the freshly unblocked pattern immediately activates to MAIN
// if it accumulated enough while blocked.
func (b *Bucket) ObserveBlockedOppositeResult(bnsPattern coretypes.PatternID, isWin bool, profit float64) (killed, unblockedActivated bool) {
	blocked := &b.states[bnsPattern.Opposite()]
	if !blocked.BlockedByOpposite {
		return false, false
	}
	blocked.AccumulatedWhileBlocked += profit

	bns := &b.states[bnsPattern]
	if !isWin {
		bns.ConsecutiveOppositeWins = 0
		return false, false
	}
	bns.ConsecutiveOppositeWins++
	if bns.ConsecutiveOppositeWins < b.cfg.ConsecutiveWinsToBreakBNS {
		return false, false
	}

	bns.Bucket = coretypes.Waiting
	blocked.BlockedByOpposite = false
	if blocked.AccumulatedWhileBlocked >= b.cfg.SingleBaitThreshold {
		blocked.Bucket = coretypes.Main
		return true, true
	}
	return true, false
}

// CheckStructuralKill is the shared entry point for the OZ/AP5/PP/ST
// kill machines (spec.md §4.8): a new formation of the same pattern while
// its switch has already been played and is still pending a result kills
// the BNS outright, regardless of P&L — unless it falls on the very
// block the switch was played (lastSwitchBlock suppression).
func (b *Bucket) CheckStructuralKill(pattern coretypes.PatternID, atBlock uint32) (killed bool) {
	s := &b.states[pattern]
	if s.Bucket != coretypes.BNS || !s.SwitchPlayed {
		return false
	}
	if s.LastSwitchBlock != nil && *s.LastSwitchBlock == atBlock {
		return false
	}
	s.Bucket = coretypes.Waiting
	b.states[pattern.Opposite()].BlockedByOpposite = false
	return true
}
