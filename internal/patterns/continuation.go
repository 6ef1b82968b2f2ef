package patterns

import "blockengine/internal/coretypes"

// detectContinuationAndSpecialShapes evaluates the four non-XAX triggers:
// AP5, OZ, PP and ST. AP5, OZ and ST are continuation patterns (they
// predict the current run's direction persists); PP is an alternation
// pattern. This file, like the teacher's continuation.go, groups the
// continuation-style checks; reversal.go holds PP, while the XAX
// alternation table lives in detector.go.
func (d *Detector) detectContinuationAndSpecialShapes(in Input, prev, cur int, emit func(coretypes.PatternID, bool)) {
	d.detectAP5(in, prev, cur, emit)
	d.detectOZ(prev, cur, emit)
	d.detectST(prev, cur, emit)
	d.detectPP(prev, cur, emit)
}

// detectAP5 implements "AP5 confirms when a length ≥ 3 run follows a
// length ≥ 2 run with the confirmation block's magnitude meeting a
// threshold" (spec.md §4.2). The confirmation block is the 3rd block of
// the new run — the first block at which the run's length reaches 3.
func (d *Detector) detectAP5(in Input, prev, cur int, emit func(coretypes.PatternID, bool)) {
	if prev >= 2 && cur == 3 && in.CurrentMagnitude >= d.cfg.AP5ConfirmationThreshold {
		emit(coretypes.AP5, false)
	}
}

// detectOZ implements "OZ confirms on length-3 run preceded by length-1"
// (spec.md §4.2).
func (d *Detector) detectOZ(prev, cur int, emit func(coretypes.PatternID, bool)) {
	if prev == 1 && cur == 3 {
		emit(coretypes.OZ, false)
	}
}

// detectST implements "ST on length-2 preceded by length ≥ 2" (spec.md
// §4.2).
func (d *Detector) detectST(prev, cur int, emit func(coretypes.PatternID, bool)) {
	if prev >= 2 && cur == 2 {
		emit(coretypes.ST, false)
	}
}
