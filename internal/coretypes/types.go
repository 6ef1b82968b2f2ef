// Package coretypes holds the value types shared across every subsystem of
// the decision engine: direction, pattern identity, pocket and bucket
// membership. Nothing in this package owns mutable session state — it is
// the "Hierarchy Glue & Types" component (spec component #14), kept
// deliberately tiny so every other package can depend on it without risking
// an import cycle back into the engine.
package coretypes

import "fmt"

// Direction is a signed unit outcome for one block: Up or Down.
type Direction int8

const (
	Down Direction = -1
	Up   Direction = 1
)

// Opposite returns the reverse direction.
func (d Direction) Opposite() Direction {
	return -d
}

func (d Direction) String() string {
	if d == Up {
		return "up"
	}
	return "down"
}

// Sign returns +1/-1, matching the wire representation used throughout the
// spec for direction-signed magnitudes.
func (d Direction) Sign() float64 {
	return float64(d)
}

// ParseDirection validates a raw signed direction value. Only +1 and -1 are
// legal; anything else is an invalid-input error (spec.md §7).
func ParseDirection(raw int) (Direction, error) {
	switch raw {
	case 1:
		return Up, nil
	case -1:
		return Down, nil
	default:
		return 0, fmt.Errorf("direction must be +1 or -1, got %d", raw)
	}
}

// PatternID enumerates the fixed closed set of named patterns. The set is
// deliberately wider than the "examples used below" list in spec.md §3: it
// includes every pattern explicitly exercised elsewhere in the spec (the
// Same-Direction resume/decay rules name 6A6 alongside 2A2..5A5 in §4.7) and
// gives every non-ZZ pattern a designated opposite slot, matching the
// invariant "Each non-ZZ pattern has a designated opposite" in spec.md §3.
// See DESIGN.md for the reasoning behind extending AP5/OZ/PP/ST with
// synthetic Anti- counterparts.
type PatternID uint8

const (
	ZZ PatternID = iota
	AntiZZ

	A2 // "2A2"
	AntiA2

	A3 // "3A3"
	AntiA3

	A4 // "4A4"
	AntiA4

	A5 // "5A5"
	AntiA5

	A6 // "6A6"
	AntiA6

	AP5
	AntiAP5

	OZ
	AntiOZ

	PP
	AntiPP

	ST
	AntiST

	numPatterns
)

// NumPatterns is the fixed table size backing every per-pattern indexed
// store in the engine (spec.md §9: "represent patterns as a small closed
// enum and store per-pattern state as a fixed-size indexed table").
const NumPatterns = int(numPatterns)

var patternNames = [numPatterns]string{
	ZZ: "ZZ", AntiZZ: "AntiZZ",
	A2: "2A2", AntiA2: "Anti2A2",
	A3: "3A3", AntiA3: "Anti3A3",
	A4: "4A4", AntiA4: "Anti4A4",
	A5: "5A5", AntiA5: "Anti5A5",
	A6: "6A6", AntiA6: "Anti6A6",
	AP5: "AP5", AntiAP5: "AntiAP5",
	OZ: "OZ", AntiOZ: "AntiOZ",
	PP: "PP", AntiPP: "AntiPP",
	ST: "ST", AntiST: "AntiST",
}

func (p PatternID) String() string {
	if int(p) < len(patternNames) {
		return patternNames[p]
	}
	return "unknown"
}

// Valid reports whether p is inside the closed set.
func (p PatternID) Valid() bool {
	return p < numPatterns
}

// opposites maps every pattern to its designated cross-pair partner. ZZ and
// AntiZZ are paired here too (spec.md §4.4: "ZZ↔AntiZZ are paired for this
// transfer") even though the ZZ State Manager, not the Bucket Manager, owns
// their betting lifecycle.
var opposites = [numPatterns]PatternID{
	ZZ: AntiZZ, AntiZZ: ZZ,
	A2: AntiA2, AntiA2: A2,
	A3: AntiA3, AntiA3: A3,
	A4: AntiA4, AntiA4: A4,
	A5: AntiA5, AntiA5: A5,
	A6: AntiA6, AntiA6: A6,
	AP5: AntiAP5, AntiAP5: AP5,
	OZ: AntiOZ, AntiOZ: OZ,
	PP: AntiPP, AntiPP: PP,
	ST: AntiST, AntiST: ST,
}

// Opposite returns p's designated cross-pair partner.
func (p PatternID) Opposite() PatternID {
	return opposites[p]
}

// IsZZFamily reports whether p is ZZ or AntiZZ. The ZZ family is handled
// exclusively by the ZZ State Manager and is invisible to the Bucket
// Manager (spec.md §4.9: "Bucket Manager ignores these patterns").
func (p PatternID) IsZZFamily() bool {
	return p == ZZ || p == AntiZZ
}

// IsAlternation reports whether p predicts the opposite of the current run
// direction ("alternation patterns predict opposite of current direction",
// spec.md §4.2). The XAX family (2A2..6A6) and PP are alternation patterns;
// AP5, OZ and ST are continuation patterns. See DESIGN.md for the
// resolution of this otherwise-unstated classification.
func (p PatternID) IsAlternation() bool {
	switch p {
	case A2, AntiA2, A3, AntiA3, A4, AntiA4, A5, AntiA5, A6, AntiA6, PP, AntiPP:
		return true
	default:
		return false
	}
}

// AllPatterns returns the canonical iteration order used by every
// subsystem that must process patterns deterministically (spec.md §5:
// "Pattern updates within each step iterate patterns in a stable,
// documented order").
func AllPatterns() []PatternID {
	out := make([]PatternID, 0, numPatterns)
	for i := PatternID(0); i < numPatterns; i++ {
		out = append(out, i)
	}
	return out
}

// NonZZPatterns returns the canonical order restricted to patterns owned by
// the Bucket Manager.
func NonZZPatterns() []PatternID {
	out := make([]PatternID, 0, numPatterns-2)
	for i := PatternID(0); i < numPatterns; i++ {
		if !i.IsZZFamily() {
			out = append(out, i)
		}
	}
	return out
}

// Pocket is the ZZ/AntiZZ betting-permission slot (spec.md §3, Glossary).
type Pocket uint8

const (
	P1 Pocket = iota // allowed to bet real trades
	P2               // observe only
)

func (p Pocket) String() string {
	if p == P1 {
		return "P1"
	}
	return "P2"
}

// Bucket is a non-ZZ pattern's play mode (spec.md §4.8).
type Bucket uint8

const (
	Waiting Bucket = iota
	Main
	BNS
)

func (b Bucket) String() string {
	switch b {
	case Main:
		return "MAIN"
	case BNS:
		return "BNS"
	default:
		return "WAITING"
	}
}

// LifecycleState is a pattern's activation state (spec.md §3, §4.4).
type LifecycleState uint8

const (
	Observing LifecycleState = iota
	Active
)

func (s LifecycleState) String() string {
	if s == Active {
		return "active"
	}
	return "observing"
}

// Verdict classifies an evaluated result (spec.md §4.4).
type Verdict uint8

const (
	VerdictNeutral Verdict = iota
	VerdictFair
	VerdictUnfair
	VerdictFake
)

func (v Verdict) String() string {
	switch v {
	case VerdictFair:
		return "fair"
	case VerdictUnfair:
		return "unfair"
	case VerdictFake:
		return "fake"
	default:
		return "neutral"
	}
}

// DecisionSource identifies which subsystem produced a hierarchy decision
// (spec.md §4.10).
type DecisionSource uint8

const (
	SourceNone DecisionSource = iota
	SourcePocket
	SourceSameDir
	SourceBucket
)

func (s DecisionSource) String() string {
	switch s {
	case SourcePocket:
		return "pocket"
	case SourceSameDir:
		return "same_direction"
	case SourceBucket:
		return "bucket"
	default:
		return "none"
	}
}
