package lifecycle

import (
	"testing"

	"blockengine/internal/coretypes"
)

func TestActivateOnSingleResultThreshold(t *testing.T) {
	l := New()
	tr := l.ApplyResult(coretypes.A2, 80, true, 10)
	if !tr.Activated {
		t.Fatal("expected activation on single result >= 70")
	}
	if !l.IsActive(coretypes.A2) {
		t.Error("pattern should be Active after activation")
	}
	if c := l.Cycle(coretypes.A2); c.RunProfit != 0 {
		t.Errorf("run profit should reset to 0 on activation, got %v", c.RunProfit)
	}
}

func TestActivateOnCumulativeThreshold(t *testing.T) {
	l := New()
	l.ApplyResult(coretypes.A3, 40, true, 1)
	l.ApplyResult(coretypes.A3, 30, true, 2)
	tr := l.ApplyResult(coretypes.A3, 30, true, 3)
	if !tr.Activated {
		t.Fatal("expected activation once cumulative profit reaches 100")
	}
}

func TestNoActivationBelowThresholds(t *testing.T) {
	l := New()
	tr := l.ApplyResult(coretypes.A2, 20, true, 1)
	if tr.Activated || l.IsActive(coretypes.A2) {
		t.Error("should not activate below both thresholds")
	}
}

func TestZZFamilyDoesNotAutoActivate(t *testing.T) {
	l := New()
	tr := l.ApplyResult(coretypes.ZZ, 500, false, 1)
	if tr.Activated || l.IsActive(coretypes.ZZ) {
		t.Error("ZZ must never auto-activate from ApplyResult")
	}
}

func TestBreakOnLossWhileActiveTransfersToOpposite(t *testing.T) {
	l := New()
	l.ApplyResult(coretypes.A2, 80, true, 1)
	if !l.IsActive(coretypes.A2) {
		t.Fatal("setup: A2 should be active")
	}
	l.ApplyResult(coretypes.A2, 20, true, 2) // win while active, accumulates run profit
	tr := l.ApplyResult(coretypes.A2, -30, true, 3)

	if !tr.Broke {
		t.Fatal("expected break on loss while active")
	}
	if l.IsActive(coretypes.A2) {
		t.Error("A2 should be Observing after break")
	}
	if tr.BreakRunProfit != -10 { // run_profit resets to 0 on activation, then accumulates 20, then -30
		t.Errorf("expected break_run_profit -10, got %v", tr.BreakRunProfit)
	}
	opp := l.Cycle(coretypes.AntiA2)
	if opp.CumulativeProfit != 30 {
		t.Errorf("expected opposite cumulative_profit += |loss| (30), got %v", opp.CumulativeProfit)
	}
}

func TestCumulativeProfitClampedAtZero(t *testing.T) {
	l := New()
	l.ApplyResult(coretypes.A4, 10, true, 1)
	l.ApplyResult(coretypes.A4, -50, true, 2)
	if c := l.Cycle(coretypes.A4); c.CumulativeProfit != 0 {
		t.Errorf("cumulative profit must clamp at 0, got %v", c.CumulativeProfit)
	}
}

func TestForceBreakIsNoOpWhenObserving(t *testing.T) {
	l := New()
	tr := l.ForceBreak(coretypes.OZ)
	if tr.Broke {
		t.Error("ForceBreak should be a no-op on an Observing pattern")
	}
}

func TestExplicitActivateAndDeactivateForZZFamily(t *testing.T) {
	l := New()
	l.Activate(coretypes.AntiZZ, 5)
	if !l.IsActive(coretypes.AntiZZ) {
		t.Fatal("expected explicit activation")
	}
	l.Deactivate(coretypes.AntiZZ)
	if l.IsActive(coretypes.AntiZZ) {
		t.Error("expected explicit deactivation")
	}
}
