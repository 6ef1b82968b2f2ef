package patterns

import "blockengine/internal/coretypes"

// detectPP implements "PP on length-2 preceded by length-1" (spec.md
// §4.2). PP is classified as an alternation pattern — see
// coretypes.PatternID.IsAlternation and DESIGN.md for the reasoning.
func (d *Detector) detectPP(prev, cur int, emit func(coretypes.PatternID, bool)) {
	if prev == 1 && cur == 2 {
		emit(coretypes.PP, true)
	}
}
