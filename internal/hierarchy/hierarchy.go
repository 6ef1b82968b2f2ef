// Package hierarchy implements the Hierarchy Arbiter (spec.md §4.10): a
// pure function from the current subsystem views to a single betting
// decision, in fixed priority order Pocket > Same-Direction > Bucket >
// None.
package hierarchy

import "blockengine/internal/coretypes"

// Decision is the spec's HierarchyDecision.
type Decision struct {
	Source         coretypes.DecisionSource
	Pattern        *coretypes.PatternID
	Direction      *coretypes.Direction
	ShouldBet      bool
	PausedSystems  []coretypes.DecisionSource
	ImaginarySDDir *coretypes.Direction
}

// PendingSignal is the minimal view of a detector-emitted signal the
// arbiter needs to scan the bucket-eligible candidates.
type PendingSignal struct {
	Pattern           coretypes.PatternID
	ExpectedDirection coretypes.Direction
	IsInversePlay     bool
	CumulativeProfit  float64 // for tie-breaking (descending), spec.md §5
	CanonicalOrder    int     // tie-break after cumulative profit
}

// Input bundles every subsystem view the arbiter reads. It never holds a
// pointer to any subsystem — callers project the fields it needs.
type Input struct {
	// Pocket (ZZ/AntiZZ).
	PocketActive    bool
	PocketPattern   coretypes.PatternID
	PocketDirection coretypes.Direction
	PocketShouldBet bool
	CanPocketTrade  bool

	// Same-Direction.
	SameDirActive      bool
	SameDirCanBet      bool // active && not paused && not globally stopped
	SameDirDirection   coretypes.Direction
	SameDirImaginaryOK bool // emit the imaginary direction even when not betting

	// Bucket: candidates already filtered to ShouldPlay()==true by the
	// caller, in detection order; the arbiter applies the tie-break.
	BucketCandidates []PendingSignal
	CanBucketTrade   bool
	BucketBNS        map[coretypes.PatternID]bool // true if that pattern's bucket is BNS (bet is inverted)
}

// Decide applies the §4.10 priority order.
func Decide(in Input) Decision {
	var paused []coretypes.DecisionSource

	if !in.CanPocketTrade {
		paused = append(paused, coretypes.SourcePocket)
	} else if in.PocketActive && in.PocketShouldBet {
		p := in.PocketPattern
		d := in.PocketDirection
		return Decision{Source: coretypes.SourcePocket, Pattern: &p, Direction: &d, ShouldBet: true, PausedSystems: paused}
	}

	if in.SameDirActive && !in.SameDirCanBet {
		paused = append(paused, coretypes.SourceSameDir)
	} else if in.SameDirActive {
		d := in.SameDirDirection
		return Decision{Source: coretypes.SourceSameDir, Direction: &d, ShouldBet: true, PausedSystems: paused}
	}

	if !in.CanBucketTrade {
		paused = append(paused, coretypes.SourceBucket)
	} else if best, ok := pickBucketCandidate(in.BucketCandidates); ok {
		p := best.Pattern
		d := best.ExpectedDirection
		if in.BucketBNS[best.Pattern] {
			d = d.Opposite()
		}
		return Decision{Source: coretypes.SourceBucket, Pattern: &p, Direction: &d, ShouldBet: true, PausedSystems: paused}
	}

	dec := Decision{Source: coretypes.SourceNone, ShouldBet: false, PausedSystems: paused}
	if in.SameDirActive && in.SameDirImaginaryOK {
		d := in.SameDirDirection
		dec.ImaginarySDDir = &d
	}
	return dec
}

func pickBucketCandidate(candidates []PendingSignal) (PendingSignal, bool) {
	if len(candidates) == 0 {
		return PendingSignal{}, false
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.CumulativeProfit > best.CumulativeProfit {
			best = c
			continue
		}
		if c.CumulativeProfit == best.CumulativeProfit && c.CanonicalOrder < best.CanonicalOrder {
			best = c
		}
	}
	return best, true
}
