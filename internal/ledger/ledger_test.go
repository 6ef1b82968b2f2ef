package ledger

import (
	"testing"

	"blockengine/internal/coretypes"
)

func TestActualAndSimulatedPnLAreIndependentFolds(t *testing.T) {
	l := New()
	l.RecordActual(Entry{BlockIndex: 1, Pattern: coretypes.A2, PnL: 50})
	l.RecordActual(Entry{BlockIndex: 2, Pattern: coretypes.A2, PnL: -20})
	l.RecordSimulated(Entry{BlockIndex: 3, Pattern: coretypes.A2, PnL: 90})

	if l.ActualPnL() != 30 {
		t.Errorf("expected actual pnl 30, got %v", l.ActualPnL())
	}
	if l.SimulatedPnL() != 90 {
		t.Errorf("expected simulated pnl 90, got %v", l.SimulatedPnL())
	}
}

func TestWinRate(t *testing.T) {
	entries := []Entry{{PnL: 10}, {PnL: -5}, {PnL: 20}, {PnL: -1}}
	if got := WinRate(entries); got != 0.5 {
		t.Errorf("expected win rate 0.5, got %v", got)
	}
	if got := WinRate(nil); got != 0 {
		t.Errorf("expected win rate 0 for empty log, got %v", got)
	}
}

func TestLastN(t *testing.T) {
	entries := []Entry{{BlockIndex: 1}, {BlockIndex: 2}, {BlockIndex: 3}}
	last2 := LastN(entries, 2)
	if len(last2) != 2 || last2[0].BlockIndex != 2 {
		t.Errorf("unexpected last-2: %+v", last2)
	}
	if all := LastN(entries, 10); len(all) != 3 {
		t.Error("expected full log when n exceeds length")
	}
}

func TestRollupByPatternWithinRange(t *testing.T) {
	entries := []Entry{
		{BlockIndex: 1, Pattern: coretypes.A2, PnL: 50},
		{BlockIndex: 5, Pattern: coretypes.A2, PnL: -10},
		{BlockIndex: 100, Pattern: coretypes.A2, PnL: 1000}, // out of range
		{BlockIndex: 2, Pattern: coretypes.A3, PnL: 20},
	}
	rollups := RollupByPattern(entries, 0, 10)
	if len(rollups) != 2 {
		t.Fatalf("expected 2 pattern rollups in range, got %d", len(rollups))
	}
	for _, r := range rollups {
		if r.Pattern == coretypes.A2 {
			if r.Count != 2 || r.PnL != 40 {
				t.Errorf("unexpected A2 rollup: %+v", r)
			}
		}
	}
}

func TestSnapshotRestoreTruncates(t *testing.T) {
	l := New()
	l.RecordActual(Entry{BlockIndex: 1, PnL: 10})
	snap := l.Capture()
	l.RecordActual(Entry{BlockIndex: 2, PnL: 20})
	l.Restore(snap)
	if len(l.Actual()) != 1 {
		t.Errorf("expected restore to truncate back to 1 entry, got %d", len(l.Actual()))
	}
}
