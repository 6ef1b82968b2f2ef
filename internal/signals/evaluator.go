// Package signals implements the Signal Evaluator (spec.md §4.3): resolving
// every pending PatternSignal against the block that arrives at
// signal_index+1, producing EvaluatedResults with the verdict rules from
// spec.md §4.4.
package signals

import (
	"fmt"

	"blockengine/internal/blocktrack"
	"blockengine/internal/coretypes"
	"blockengine/internal/engerr"
	"blockengine/internal/patterns"
)

// Result is the spec's EvaluatedResult (spec.md §3).
type Result struct {
	Pattern           coretypes.PatternID
	SignalIndex       uint32
	EvalIndex         uint32
	ExpectedDirection coretypes.Direction
	ActualDirection   coretypes.Direction
	Magnitude         float64
	Verdict           coretypes.Verdict
	Profit            float64
	WasBet            bool
	IsInversePlay     bool
}

// Config holds the verdict band (spec.md §4.4, §6.1 neutral_band).
type Config struct {
	NeutralBand float64 // default 0.05
}

// DefaultConfig returns the documented default.
func DefaultConfig() Config {
	return Config{NeutralBand: 0.05}
}

// Evaluator is a pure function object: Evaluate takes one pending signal
// and the block that resolves it.
type Evaluator struct {
	cfg Config
}

// New creates an Evaluator. A non-positive band falls back to the default.
func New(cfg Config) *Evaluator {
	if cfg.NeutralBand <= 0 {
		cfg.NeutralBand = DefaultConfig().NeutralBand
	}
	return &Evaluator{cfg: cfg}
}

// Evaluate resolves a single pending signal against the resolving block.
// wasBet indicates whether this signal was actually traded (vs. merely
// observed) — it has no effect on correctness/profit math but is carried
// through to the result record per the data model.
func (e *Evaluator) Evaluate(sig patterns.Signal, resolvingBlock blocktrack.Block, wasBet bool) (Result, error) {
	if resolvingBlock.Index != sig.SignalIndex+1 {
		return Result{}, engerr.NewInvariantViolation("signals.Evaluator",
			fmt.Sprintf("resolving block index must be signal_index+1: signal_index=%d resolving_index=%d",
				sig.SignalIndex, resolvingBlock.Index),
			map[string]any{"pattern": sig.Pattern.String()})
	}

	var isCorrect bool
	if sig.IsInversePlay {
		isCorrect = resolvingBlock.Direction != sig.ExpectedDirection
	} else {
		isCorrect = resolvingBlock.Direction == sig.ExpectedDirection
	}

	profit := resolvingBlock.Magnitude
	if !isCorrect {
		profit = -resolvingBlock.Magnitude
	}

	verdict := e.verdict(isCorrect, resolvingBlock.Magnitude)

	return Result{
		Pattern:           sig.Pattern,
		SignalIndex:       sig.SignalIndex,
		EvalIndex:         resolvingBlock.Index,
		ExpectedDirection: sig.ExpectedDirection,
		ActualDirection:   resolvingBlock.Direction,
		Magnitude:         resolvingBlock.Magnitude,
		Verdict:           verdict,
		Profit:            profit,
		WasBet:            wasBet,
		IsInversePlay:     sig.IsInversePlay,
	}, nil
}

func (e *Evaluator) verdict(correct bool, pct float64) coretypes.Verdict {
	if !correct {
		if pct >= 70 {
			return coretypes.VerdictFake
		}
		return coretypes.VerdictUnfair
	}
	low := 50 - 100*e.cfg.NeutralBand
	high := 50 + 100*e.cfg.NeutralBand
	if pct < low || pct > high {
		return coretypes.VerdictFair
	}
	return coretypes.VerdictNeutral
}

