package engine

import (
	"testing"

	"blockengine/internal/coretypes"
	"blockengine/internal/hostility"
)

func feed(t *testing.T, e *Engine, seq []struct {
	dir coretypes.Direction
	pct float64
}) []BlockResult {
	t.Helper()
	var out []BlockResult
	for i, s := range seq {
		res, err := e.AddBlock(s.dir, s.pct)
		if err != nil {
			t.Fatalf("block %d: unexpected error: %v", i, err)
		}
		out = append(out, res)
	}
	return out
}

func TestAddBlockRejectsBadMagnitudeWithoutMutatingState(t *testing.T) {
	e := New(DefaultConfig())
	if _, err := e.AddBlock(coretypes.Up, 150); err == nil {
		t.Fatal("expected error for out-of-range magnitude")
	}
	if e.Tracker().Len() != 0 {
		t.Errorf("rejected block must not be appended, got len=%d", e.Tracker().Len())
	}
	if e.Halted() {
		t.Error("an invalid-input rejection must not halt the engine")
	}
}

func TestXAXPatternFormsAndResolves(t *testing.T) {
	e := New(DefaultConfig())
	seq := []struct {
		dir coretypes.Direction
		pct float64
	}{
		{coretypes.Up, 10}, {coretypes.Up, 20}, // 2A2 forms on the 2nd Up block
		{coretypes.Down, 30}, // resolves the 2A2 signal (expected Down, correct)
	}
	results := feed(t, e, seq)

	last := results[len(results)-1]
	var found bool
	for _, r := range last.Results {
		if r.Pattern == coretypes.A2 {
			found = true
			if r.Profit != 30 {
				t.Errorf("expected 2A2 profit 30, got %v", r.Profit)
			}
		}
	}
	if !found {
		t.Fatal("expected 2A2 to resolve on the 3rd block")
	}
}

func TestSevereLossLocksHostility(t *testing.T) {
	e := New(DefaultConfig())
	// One severe-loss result triggers one SevereLoss indicator (severity 3
	// by default), below the lock threshold of 10; the engine's hostility
	// wiring is exercised end to end via a single losing block, then the
	// lock threshold itself is exercised directly against the exposed
	// subsystem to avoid hand-crafting a long, brittle losing streak.
	seq := []struct {
		dir coretypes.Direction
		pct float64
	}{
		{coretypes.Up, 10}, {coretypes.Up, 20},
		{coretypes.Up, 90}, // 2A2 expected Down, actual Up: severe loss
	}
	feed(t, e, seq)

	if e.Hostility().State().Score <= 0 {
		t.Fatalf("expected a nonzero hostility score after a severe loss, got %v", e.Hostility().State().Score)
	}
	if e.Hostility().IsLocked() {
		t.Fatalf("one severe loss must not reach the default lock threshold, score=%v", e.Hostility().State().Score)
	}

	for i := 0; i < 3; i++ {
		pattern := coretypes.A3
		e.Hostility().RecordIndicator(hostility.SevereLoss, uint32(3+i), &pattern, false)
	}
	if !e.Hostility().IsLocked() {
		t.Errorf("expected hostility locked after enough severe indicators, score=%v", e.Hostility().State().Score)
	}
}

func TestUndoLastBlockRestoresPriorState(t *testing.T) {
	e := New(DefaultConfig())
	seq := []struct {
		dir coretypes.Direction
		pct float64
	}{
		{coretypes.Up, 10}, {coretypes.Up, 20}, {coretypes.Down, 30},
	}
	feed(t, e, seq)

	lenBefore := e.Tracker().Len()

	removed, ok := e.UndoLastBlock()
	if !ok || removed.Direction != coretypes.Down {
		t.Fatalf("unexpected undo result: %+v ok=%v", removed, ok)
	}
	if e.Tracker().Len() != lenBefore-1 {
		t.Errorf("expected tracker length to shrink by one, got %d", e.Tracker().Len())
	}
	dir, length, ok := e.Tracker().CurrentRun()
	if !ok || dir != coretypes.Up || length != 2 {
		t.Errorf("expected current run Up/2 after undo, got %v/%d", dir, length)
	}
}

func TestUndoOnEmptyEngineIsNoOp(t *testing.T) {
	e := New(DefaultConfig())
	if _, ok := e.UndoLastBlock(); ok {
		t.Error("expected undo on empty engine to report false")
	}
}

func TestHaltedEngineRejectsFurtherBlocks(t *testing.T) {
	e := New(DefaultConfig())
	// Craft a scenario the evaluator would reject: directly exercise the
	// halt path by driving two signals that cannot both be evaluated
	// consistently is hard to force externally, so instead verify the
	// contract on an engine already marked halted.
	e.halted = true
	if _, err := e.AddBlock(coretypes.Up, 10); err == nil {
		t.Error("expected halted engine to reject AddBlock")
	}
}

func TestResetClearsAllSubsystems(t *testing.T) {
	e := New(DefaultConfig())
	seq := []struct {
		dir coretypes.Direction
		pct float64
	}{
		{coretypes.Up, 10}, {coretypes.Up, 20}, {coretypes.Down, 90},
	}
	feed(t, e, seq)
	e.Reset()

	if e.Tracker().Len() != 0 {
		t.Errorf("expected empty tracker after reset, got %d", e.Tracker().Len())
	}
	if e.Hostility().State().Score != 0 {
		t.Errorf("expected zeroed hostility after reset, got %v", e.Hostility().State().Score)
	}
	if e.Halted() {
		t.Error("reset must clear the halted flag")
	}
}

func TestSnapshotsAccumulatePerBlock(t *testing.T) {
	e := New(DefaultConfig())
	seq := []struct {
		dir coretypes.Direction
		pct float64
	}{
		{coretypes.Up, 10}, {coretypes.Down, 20}, {coretypes.Up, 30},
	}
	feed(t, e, seq)

	all := e.Snapshots().All()
	if len(all) != 3 {
		t.Fatalf("expected 3 snapshots, got %d", len(all))
	}
	if all[2].BlockIndex != 2 {
		t.Errorf("expected last snapshot block index 2, got %d", all[2].BlockIndex)
	}
}
