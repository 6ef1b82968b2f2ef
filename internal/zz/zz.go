// Package zz implements the ZZ State Manager (spec.md §4.9): the
// exclusive governor of the ZZ/AntiZZ pattern pair. Pockets (P1 allowed
// to bet real trades, P2 observe-only) are the single source of truth;
// the Bucket Manager never sees these two patterns.
package zz

import "blockengine/internal/coretypes"

// State is the ZZ State Manager's state (spec.md §3).
type State struct {
	ZZPocket           coretypes.Pocket
	AntiZZPocket       coretypes.Pocket
	Active             coretypes.PatternID // ZZ, AntiZZ, or NoPattern
	hasActive          bool
	RunProfitZZ        float64
	AntiIsCandidate    bool
	WaitingForFirstBet bool
	FirstBetBlock      uint32
	SavedIndicatorDir  coretypes.Direction
	IsFirstBetOfRun    bool
	IsInBaitSwitch     bool
}

// NoActive reports whether neither ZZ nor AntiZZ is currently active.
func (s State) NoActive() bool { return !s.hasActive }

// Action describes what the engine must do in response to one call:
// whether to place a real bet this block, for which pattern/direction,
// and whether an imaginary (non-betting) evaluation occurred instead.
type Action struct {
	ShouldBet      bool
	Pattern        coretypes.PatternID
	Direction      coretypes.Direction
	ImaginaryOnly  bool
	RunEnded       bool
	BrokeFirstBet  bool
}

// ZZ owns the State and its transition rules. It starts with ZZ in P1
// and AntiZZ in P2 (spec.md §4.9's "ZZ in P1 (default)").
type ZZ struct {
	state State
}

// New creates a ZZ State Manager with ZZ in P1 by default.
func New() *ZZ {
	return &ZZ{state: State{ZZPocket: coretypes.P1, AntiZZPocket: coretypes.P2}}
}

// State returns a copy of the current state.
func (z *ZZ) State() State { return z.state }

// Restore replaces the state wholesale.
func (z *ZZ) Restore(s State) { z.state = s }

// Reset reinitializes to ZZ-in-P1 defaults.
func (z *ZZ) Reset() { *z = *New() }

// SetBaitSwitch toggles bet suppression without interrupting pocket/
// run_profit_zz/indicator tracking (spec.md §4.9).
func (z *ZZ) SetBaitSwitch(active bool) { z.state.IsInBaitSwitch = active }

// OnIndicator handles detection of a ZZ indicator at block N, given the
// direction saved at detection time (spec.md §4.9, "Indicator handling").
func (z *ZZ) OnIndicator(blockIndex uint32, direction coretypes.Direction) Action {
	z.state.SavedIndicatorDir = direction

	if z.state.AntiZZPocket == coretypes.P1 {
		z.state.Active, z.state.hasActive = coretypes.AntiZZ, true
		z.state.AntiIsCandidate = false
		z.state.IsFirstBetOfRun = true
		return z.bet(coretypes.AntiZZ, blockIndex+1)
	}

	if z.state.ZZPocket == coretypes.P1 {
		z.state.Active, z.state.hasActive = coretypes.ZZ, true
		z.state.IsFirstBetOfRun = true
		return z.bet(coretypes.ZZ, blockIndex+1)
	}

	z.state.WaitingForFirstBet = true
	z.state.FirstBetBlock = blockIndex + 1
	return Action{}
}

func (z *ZZ) bet(pattern coretypes.PatternID, atBlock uint32) Action {
	if z.state.IsInBaitSwitch {
		return Action{}
	}
	dir := z.expectedDirection(pattern)
	return Action{ShouldBet: true, Pattern: pattern, Direction: dir}
}

// expectedDirection is the opposite of the saved indicator direction for
// both ZZ and AntiZZ (both are alternation plays off the same indicator).
func (z *ZZ) expectedDirection(pattern coretypes.PatternID) coretypes.Direction {
	return z.state.SavedIndicatorDir.Opposite()
}

// EvaluateWaitingFirstBet handles the imaginary first-bet evaluation
// (spec.md §4.9) when ZZ is in P2 waiting and block N+1 arrives.
// actualDirection/magnitude describe that resolving block.
func (z *ZZ) EvaluateWaitingFirstBet(actualDirection coretypes.Direction, magnitude float64) Action {
	if !z.state.WaitingForFirstBet {
		return Action{}
	}
	z.state.WaitingForFirstBet = false

	expected := z.state.SavedIndicatorDir.Opposite()
	var imaginaryProfit float64
	if actualDirection == expected {
		imaginaryProfit = magnitude
	} else {
		imaginaryProfit = -magnitude
	}
	z.state.RunProfitZZ = imaginaryProfit

	if imaginaryProfit >= 0 {
		z.state.ZZPocket = coretypes.P1
		z.state.Active, z.state.hasActive = coretypes.ZZ, true
		z.state.IsFirstBetOfRun = false // this imaginary evaluation consumed the first bet
		return Action{ImaginaryOnly: true}
	}

	z.state.AntiIsCandidate = true
	return Action{ImaginaryOnly: true}
}

// ResultZZ processes a real or imaginary ZZ result (spec.md §4.9).
func (z *ZZ) ResultZZ(profit float64) Action {
	z.state.RunProfitZZ += profit

	if z.state.IsFirstBetOfRun {
		if profit < 0 {
			z.state.AntiIsCandidate = true
			z.deactivateZZ()
			z.recomputeZZPocket()
			return Action{RunEnded: true, BrokeFirstBet: true}
		}
		z.state.IsFirstBetOfRun = false
		return Action{}
	}

	if profit < 0 {
		z.recomputeZZPocket()
		z.deactivateZZ()
		return Action{RunEnded: true}
	}
	return Action{}
}

func (z *ZZ) recomputeZZPocket() {
	if z.state.RunProfitZZ >= 0 {
		z.state.ZZPocket = coretypes.P1
	} else {
		z.state.ZZPocket = coretypes.P2
	}
}

func (z *ZZ) deactivateZZ() {
	if z.state.hasActive && z.state.Active == coretypes.ZZ {
		z.state.hasActive = false
	}
}

// ResultAntiZZ processes AntiZZ's single bet per indicator (spec.md
// §4.9). On win, AntiZZ stays P1 for the next indicator and deactivates
// now. On loss, ZZ and AntiZZ swap pockets and ZZ activates this same
// block with run_profit_zz = +pct (the imaginary first bet ZZ "would
// have" won).
func (z *ZZ) ResultAntiZZ(profit float64) Action {
	if z.state.hasActive && z.state.Active == coretypes.AntiZZ {
		z.state.hasActive = false
	}

	if profit >= 0 {
		return Action{}
	}

	z.state.AntiZZPocket = coretypes.P2
	z.state.ZZPocket = coretypes.P1
	z.state.Active, z.state.hasActive = coretypes.ZZ, true
	z.state.RunProfitZZ = -profit
	z.state.IsFirstBetOfRun = false
	return Action{}
}
