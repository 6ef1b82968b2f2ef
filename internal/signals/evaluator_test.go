package signals

import (
	"testing"

	"blockengine/internal/blocktrack"
	"blockengine/internal/coretypes"
	"blockengine/internal/patterns"
)

func sig(pattern coretypes.PatternID, idx uint32, expected coretypes.Direction, inverse bool) patterns.Signal {
	return patterns.Signal{Pattern: pattern, SignalIndex: idx, CreatedBlock: idx, ExpectedDirection: expected, IsInversePlay: inverse}
}

func TestEvaluateCorrectFair(t *testing.T) {
	e := New(DefaultConfig())
	result, err := e.Evaluate(sig(coretypes.A2, 4, coretypes.Up, false),
		blocktrack.Block{Index: 5, Direction: coretypes.Up, Magnitude: 80}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Verdict != coretypes.VerdictFair || result.Profit != 80 {
		t.Errorf("expected fair win profit=80, got verdict=%v profit=%v", result.Verdict, result.Profit)
	}
}

func TestEvaluateCorrectNeutral(t *testing.T) {
	e := New(DefaultConfig())
	result, _ := e.Evaluate(sig(coretypes.A2, 4, coretypes.Up, false),
		blocktrack.Block{Index: 5, Direction: coretypes.Up, Magnitude: 51}, true)
	if result.Verdict != coretypes.VerdictNeutral {
		t.Errorf("expected neutral, got %v", result.Verdict)
	}
}

func TestEvaluateIncorrectFakeVsUnfair(t *testing.T) {
	e := New(DefaultConfig())

	fake, _ := e.Evaluate(sig(coretypes.A2, 4, coretypes.Up, false),
		blocktrack.Block{Index: 5, Direction: coretypes.Down, Magnitude: 75}, true)
	if fake.Verdict != coretypes.VerdictFake || fake.Profit != -75 {
		t.Errorf("expected fake loss profit=-75, got verdict=%v profit=%v", fake.Verdict, fake.Profit)
	}

	unfair, _ := e.Evaluate(sig(coretypes.A2, 4, coretypes.Up, false),
		blocktrack.Block{Index: 5, Direction: coretypes.Down, Magnitude: 40}, true)
	if unfair.Verdict != coretypes.VerdictUnfair || unfair.Profit != -40 {
		t.Errorf("expected unfair loss profit=-40, got verdict=%v profit=%v", unfair.Verdict, unfair.Profit)
	}
}

func TestEvaluateInversePlay(t *testing.T) {
	e := New(DefaultConfig())
	result, _ := e.Evaluate(sig(coretypes.AntiA2, 4, coretypes.Up, true),
		blocktrack.Block{Index: 5, Direction: coretypes.Down, Magnitude: 60}, true)
	if result.Profit != 60 {
		t.Errorf("inverse play should win when actual != expected, got profit=%v", result.Profit)
	}
}

func TestEvaluateRejectsWrongBlockIndex(t *testing.T) {
	e := New(DefaultConfig())
	_, err := e.Evaluate(sig(coretypes.A2, 4, coretypes.Up, false),
		blocktrack.Block{Index: 6, Direction: coretypes.Up, Magnitude: 10}, true)
	if err == nil {
		t.Error("expected invariant violation for mismatched resolving block index")
	}
}
