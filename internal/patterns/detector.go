// Package patterns implements the Pattern Detector (spec.md §4.2): a pure
// function from run-length history to newly formed pattern signals. It is
// grounded on the teacher's internal/patterns/detector.go shape — a
// configurable detector struct with one "is<Pattern>" predicate per pattern
// and a single DetectPatterns entry point — generalized from candlestick
// shapes to the spec's run-length shapes.
package patterns

import "blockengine/internal/coretypes"

// Signal is the Pattern Detector's output for one pattern formed on the
// just-appended block (spec.md §3 PatternSignal). It is resolved by the
// Signal Evaluator at block index CreatedBlock+1.
type Signal struct {
	Pattern            coretypes.PatternID
	SignalIndex        uint32 // == CreatedBlock; kept distinct to mirror the data model field name
	CreatedBlock       uint32
	ExpectedDirection  coretypes.Direction
	IsInversePlay      bool
	IndicatorDirection *coretypes.Direction
}

// Indicator is the ZZ-family wake-up event (spec.md §4.9, Glossary
// "Indicator"): a length≥2 run followed by three or more length-1 runs.
// It is not a PatternSignal — it is consumed directly by the ZZ State
// Manager, never by the Bucket Manager.
type Indicator struct {
	BlockIndex uint32
	Direction  coretypes.Direction
}

// Config tunes the few numeric thresholds the detector's triggers need.
// Defaults mirror the teacher's NewPatternDetector default-filling
// constructor style.
type Config struct {
	AP5ConfirmationThreshold float64 // percent; default 60
}

// DefaultConfig returns the detector's documented defaults.
func DefaultConfig() Config {
	return Config{AP5ConfirmationThreshold: 60}
}

// Detector is a pure, stateless pattern-trigger evaluator. All the state it
// needs (run-length history, recent magnitudes, which patterns already have
// an unresolved pending signal) is passed in on each call — it owns no
// mutable session state itself, per spec.md §9 ("explicit transition
// methods taking immutable views of peer state").
type Detector struct {
	cfg Config
}

// New creates a Detector. A zero or negative threshold falls back to the
// default, matching the teacher's defensive constructor pattern.
func New(cfg Config) *Detector {
	if cfg.AP5ConfirmationThreshold <= 0 {
		cfg.AP5ConfirmationThreshold = DefaultConfig().AP5ConfirmationThreshold
	}
	return &Detector{cfg: cfg}
}

// Input bundles everything the detector's triggers read for one block.
type Input struct {
	// Lengths is the run-length sequence returned by blocktrack.Lengths:
	// completed runs in order, with the current (possibly still open) run
	// as the last element.
	Lengths []int
	// CurrentDirection is the direction of the in-progress run.
	CurrentDirection coretypes.Direction
	// CurrentBlockIndex is the index of the block just appended.
	CurrentBlockIndex uint32
	// CurrentMagnitude is the magnitude of the block just appended (the
	// candidate confirmation block for magnitude-gated triggers).
	CurrentMagnitude float64
	// Pending lists patterns that already have an unresolved signal; the
	// detector must not emit a duplicate for them (spec.md §4.2 contract).
	Pending map[coretypes.PatternID]bool
}

// Detect scans every pattern's trigger and returns the signals newly formed
// on this block, plus a ZZ indicator if one formed. At most one signal per
// pattern is ever returned (enforced per-call, since a pure function has no
// history of its own — the caller supplies Pending from the engine's live
// pending-signal set).
func (d *Detector) Detect(in Input) ([]Signal, *Indicator) {
	var out []Signal

	n := len(in.Lengths)
	cur := 0
	if n > 0 {
		cur = in.Lengths[n-1]
	}
	prev := 0
	if n > 1 {
		prev = in.Lengths[n-2]
	}

	emit := func(pattern coretypes.PatternID, alternation bool) {
		if in.Pending[pattern] {
			return
		}
		expected := in.CurrentDirection
		if alternation {
			expected = in.CurrentDirection.Opposite()
		}
		out = append(out, Signal{
			Pattern:           pattern,
			SignalIndex:       in.CurrentBlockIndex,
			CreatedBlock:      in.CurrentBlockIndex,
			ExpectedDirection: expected,
		})
	}

	// XAX alternation family: triggers on the Nth block of a new length-N
	// run (spec.md §4.2, generalized from the explicit 2A2 rule to
	// 3A3/4A4/5A5/6A6 — see DESIGN.md).
	for pattern, length := range xaxLengths {
		if cur == length {
			emit(pattern, true)
		}
	}

	d.detectContinuationAndSpecialShapes(in, prev, cur, emit)

	indicator := d.detectZZIndicator(in.Lengths, in.CurrentDirection, in.CurrentBlockIndex)

	return out, indicator
}

// xaxLengths maps each alternation pattern to the run length that confirms
// it.
var xaxLengths = map[coretypes.PatternID]int{
	coretypes.A2: 2,
	coretypes.A3: 3,
	coretypes.A4: 4,
	coretypes.A5: 5,
	coretypes.A6: 6,
}

// detectZZIndicator implements "ZZ-indicator requires a length ≥ 2 run
// followed by three or more length-1 runs" (spec.md §4.2). The mechanical
// check below fires exactly once — on the block that completes the third
// consecutive singleton run following a length≥2 run — because a fourth
// singleton run no longer has a length≥2 run three slots back. See
// DESIGN.md's Open Questions section for why this single-shot framing was
// chosen over re-firing on every subsequent singleton.
func (d *Detector) detectZZIndicator(lengths []int, curDir coretypes.Direction, blockIdx uint32) *Indicator {
	n := len(lengths)
	if n < 4 {
		return nil
	}
	if lengths[n-1] == 1 && lengths[n-2] == 1 && lengths[n-3] == 1 && lengths[n-4] >= 2 {
		return &Indicator{BlockIndex: blockIdx, Direction: curDir}
	}
	return nil
}
