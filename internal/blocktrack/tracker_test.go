package blocktrack

import (
	"testing"

	"blockengine/internal/coretypes"
)

func TestAddBlockRejectsBadMagnitude(t *testing.T) {
	tr := New()
	if _, _, err := tr.AddBlock(coretypes.Up, 101); err == nil {
		t.Error("expected error for magnitude > 100")
	}
	if _, _, err := tr.AddBlock(coretypes.Up, -1); err == nil {
		t.Error("expected error for negative magnitude")
	}
	if tr.Len() != 0 {
		t.Errorf("rejected blocks must not be appended, got len=%d", tr.Len())
	}
}

func TestRunTracking(t *testing.T) {
	tr := New()
	seq := []struct {
		dir coretypes.Direction
		pct float64
	}{
		{coretypes.Up, 10}, {coretypes.Up, 20}, {coretypes.Down, 30},
		{coretypes.Down, 40}, {coretypes.Down, 50}, {coretypes.Up, 60},
	}
	for _, s := range seq {
		if _, _, err := tr.AddBlock(s.dir, s.pct); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	dir, length, ok := tr.CurrentRun()
	if !ok || dir != coretypes.Up || length != 1 {
		t.Errorf("expected current run Up/1, got %v/%d ok=%v", dir, length, ok)
	}

	lengths := tr.Lengths()
	want := []int{2, 3, 1}
	if len(lengths) != len(want) {
		t.Fatalf("lengths = %v, want %v", lengths, want)
	}
	for i := range want {
		if lengths[i] != want[i] {
			t.Errorf("lengths[%d] = %d, want %d", i, lengths[i], want[i])
		}
	}

	runs := tr.CompletedRuns()
	if len(runs) != 2 {
		t.Fatalf("expected 2 completed runs, got %d", len(runs))
	}
	if runs[0].Direction != coretypes.Up || runs[0].Length != 2 {
		t.Errorf("first completed run wrong: %+v", runs[0])
	}
	if runs[1].Direction != coretypes.Down || runs[1].Length != 3 {
		t.Errorf("second completed run wrong: %+v", runs[1])
	}
}

func TestRemoveLastRebuildsRuns(t *testing.T) {
	tr := New()
	for _, d := range []coretypes.Direction{coretypes.Up, coretypes.Up, coretypes.Down} {
		tr.AddBlock(d, 10)
	}

	removed, ok := tr.RemoveLast()
	if !ok || removed.Direction != coretypes.Down {
		t.Fatalf("unexpected removal: %+v ok=%v", removed, ok)
	}
	dir, length, _ := tr.CurrentRun()
	if dir != coretypes.Up || length != 2 {
		t.Errorf("after undo expected current run Up/2, got %v/%d", dir, length)
	}
	if len(tr.CompletedRuns()) != 0 {
		t.Errorf("expected no completed runs after undo, got %v", tr.CompletedRuns())
	}
}

func TestAddBlockReportsCompletedRun(t *testing.T) {
	tr := New()
	_, completed, _ := tr.AddBlock(coretypes.Up, 10)
	if completed != nil {
		t.Error("expected no completed run on the first block")
	}
	_, completed, _ = tr.AddBlock(coretypes.Up, 10)
	if completed != nil {
		t.Error("expected no completed run while extending a run")
	}
	_, completed, _ = tr.AddBlock(coretypes.Down, 10)
	if completed == nil || completed.Direction != coretypes.Up || completed.Length != 2 {
		t.Fatalf("expected completed run Up/2 reported on direction change, got %+v", completed)
	}
}

func TestRemoveLastOnEmpty(t *testing.T) {
	tr := New()
	if _, ok := tr.RemoveLast(); ok {
		t.Error("expected RemoveLast on empty tracker to report false")
	}
}
