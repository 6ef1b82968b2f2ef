// Package samedir implements the Same-Direction Manager (spec.md §4.7): a
// continuation bet that activates on a strong completed run, accumulates
// loss while active, and is independently paused/resumed by its own
// triggers. The actual pause bookkeeping (blocks_remaining, STOP_GAME)
// lives in package pause; this package only decides WHEN to trigger or
// clear that track, keeping no back-pointer to it.
package samedir

import "blockengine/internal/coretypes"

// ActivationDeactivationThreshold is both the 140 activation floor and the
// 140 accumulated-loss deactivation ceiling (spec.md §6.1 lists these as a
// single 140/140 pair).
const ActivationDeactivationThreshold = 140

// State is the Same-Direction Manager's state (spec.md §3).
type State struct {
	Active          bool
	AccumulatedLoss float64
}

// SameDir owns State and its transition rules.
type SameDir struct {
	state State
}

// New creates an inactive Same-Direction manager.
func New() *SameDir { return &SameDir{} }

// State returns a copy of the current state.
func (s *SameDir) State() State { return s.state }

// Restore replaces the state wholesale.
func (s *SameDir) Restore(st State) { s.state = st }

// Reset clears all state.
func (s *SameDir) Reset() { s.state = State{} }

// IsActive reports whether Same-Direction is currently active.
func (s *SameDir) IsActive() bool { return s.state.Active }

// OnRunCompleted processes one completed run transition (direction
// change). runLength and runProfit describe the run that just ended;
// breakBlockMagnitude is the magnitude of the single block that ended it
// when runLength < 2 (a single-block flip); zzFamilyActive reports
// whether ZZ or AntiZZ is currently active, which hard-isolates
// single-block-flip losses from accumulated_loss.
func (s *SameDir) OnRunCompleted(runLength int, runProfit, breakBlockMagnitude float64, zzFamilyActive bool) (activated, deactivated bool) {
	if !s.state.Active {
		if runLength >= 2 && runProfit >= ActivationDeactivationThreshold {
			s.state.Active = true
			s.state.AccumulatedLoss = 0
			return true, false
		}
		return false, false
	}

	if runLength >= 2 {
		switch {
		case runProfit < 0:
			s.state.AccumulatedLoss += -runProfit
			if s.state.AccumulatedLoss > ActivationDeactivationThreshold {
				s.state.Active = false
				return false, true
			}
		case runProfit > s.state.AccumulatedLoss:
			s.state.AccumulatedLoss = 0
		}
		return false, false
	}

	// Single-block flip.
	if !zzFamilyActive {
		s.state.AccumulatedLoss += breakBlockMagnitude
	}
	return false, false
}

// xaxDecayFamily is the set of patterns whose win, while Same-Direction is
// paused, decays accumulated_loss (spec.md §4.7). ZZ/AntiZZ are excluded.
var xaxDecayFamily = map[coretypes.PatternID]bool{
	coretypes.A2: true, coretypes.A3: true, coretypes.A4: true,
	coretypes.A5: true, coretypes.A6: true,
}

// ApplyPausedWinDecay applies 50% of a winning XAX pattern's magnitude as
// decay to accumulated_loss, floored at 0. Call only while the
// Same-Direction pause track is active; a no-op for non-XAX patterns.
func (s *SameDir) ApplyPausedWinDecay(pattern coretypes.PatternID, magnitude float64) {
	if !xaxDecayFamily[pattern] {
		return
	}
	s.state.AccumulatedLoss -= 0.5 * magnitude
	if s.state.AccumulatedLoss < 0 {
		s.state.AccumulatedLoss = 0
	}
}

// ShouldTriggerHighPctReversalPause reports whether a just-evaluated
// Same-Direction bet should arm the HIGH_PCT_REVERSAL pause: a loss on a
// reversal block with magnitude >= 70.
func ShouldTriggerHighPctReversalPause(isReversalBlock, isLoss bool, magnitude float64) bool {
	return isReversalBlock && isLoss && magnitude >= 70
}

// resumeFamily is the alternation-pattern set whose loss resumes
// Same-Direction from pause (spec.md §4.7). Anti- (continuation)
// patterns losing never resume it.
var resumeFamily = map[coretypes.PatternID]bool{
	coretypes.ZZ: true, coretypes.A2: true, coretypes.A3: true,
	coretypes.A4: true, coretypes.A5: true, coretypes.A6: true,
}

// ShouldResumeFromPause reports whether a losing pattern result should
// clear the Same-Direction pause track. zzBrokeOnFirstBet is only
// consulted when pattern is ZZ: ZZ's loss resumes SD only if that loss
// was not on ZZ's first bet of its run (spec.md §4.7: "resume is blocked
// if ZZ broke on its first bet").
func ShouldResumeFromPause(pattern coretypes.PatternID, isLoss, zzBrokeOnFirstBet bool) bool {
	if !isLoss || !resumeFamily[pattern] {
		return false
	}
	if pattern == coretypes.ZZ {
		return !zzBrokeOnFirstBet
	}
	return true
}
