package zz

import (
	"testing"

	"blockengine/internal/coretypes"
)

func TestIndicatorWithZZInP1Activates(t *testing.T) {
	z := New()
	action := z.OnIndicator(4, coretypes.Up)
	if !action.ShouldBet || action.Pattern != coretypes.ZZ {
		t.Fatalf("expected ZZ to activate and bet, got %+v", action)
	}
	if action.Direction != coretypes.Down {
		t.Errorf("expected bet direction opposite of indicator, got %v", action.Direction)
	}
}

func TestIndicatorWithAntiZZInP1PlaysOneBet(t *testing.T) {
	z := New()
	z.state.AntiZZPocket = coretypes.P1
	z.state.AntiIsCandidate = true
	action := z.OnIndicator(4, coretypes.Down)
	if !action.ShouldBet || action.Pattern != coretypes.AntiZZ {
		t.Fatalf("expected AntiZZ to activate and bet, got %+v", action)
	}
	if z.state.AntiIsCandidate {
		t.Error("expected anti_is_candidate cleared")
	}
}

func TestIndicatorWithZZInP2WaitsForFirstBet(t *testing.T) {
	z := New()
	z.state.ZZPocket = coretypes.P2
	action := z.OnIndicator(4, coretypes.Up)
	if action.ShouldBet {
		t.Error("expected no real bet while waiting for first bet")
	}
	if !z.state.WaitingForFirstBet || z.state.FirstBetBlock != 5 {
		t.Errorf("expected waiting_for_first_bet at block 5, got %+v", z.state)
	}
}

func TestImaginaryFirstBetWinMovesToP1(t *testing.T) {
	z := New()
	z.state.ZZPocket = coretypes.P2
	z.OnIndicator(4, coretypes.Up) // expected direction Down
	action := z.EvaluateWaitingFirstBet(coretypes.Down, 50) // correct
	if !action.ImaginaryOnly {
		t.Fatal("expected imaginary-only result")
	}
	if z.state.ZZPocket != coretypes.P1 {
		t.Error("expected ZZ moved to P1 on non-negative imaginary profit")
	}
	if z.state.RunProfitZZ != 50 {
		t.Errorf("expected run_profit_zz = +50, got %v", z.state.RunProfitZZ)
	}
}

func TestImaginaryFirstBetLossKeepsP2AndMarksAntiCandidate(t *testing.T) {
	z := New()
	z.state.ZZPocket = coretypes.P2
	z.OnIndicator(4, coretypes.Up)
	z.EvaluateWaitingFirstBet(coretypes.Up, 50) // incorrect, expected Down
	if z.state.ZZPocket != coretypes.P2 {
		t.Error("expected ZZ to stay P2 on negative imaginary profit")
	}
	if !z.state.AntiIsCandidate {
		t.Error("expected AntiZZ to become candidate")
	}
	if z.state.RunProfitZZ != -50 {
		t.Errorf("expected run_profit_zz = -50 unconditionally, got %v", z.state.RunProfitZZ)
	}
}

func TestResultZZFirstBetLossTransfersCandidacy(t *testing.T) {
	z := New()
	z.OnIndicator(4, coretypes.Up) // ZZ active, first bet of run
	action := z.ResultZZ(-40)
	if !action.RunEnded || !action.BrokeFirstBet {
		t.Fatal("expected run-ended + broke-first-bet on first-bet loss")
	}
	if !z.state.AntiIsCandidate {
		t.Error("expected AntiZZ candidacy on ZZ first-bet loss")
	}
	if z.state.hasActive {
		t.Error("expected ZZ deactivated")
	}
}

func TestResultZZContinuesOnWin(t *testing.T) {
	z := New()
	z.OnIndicator(4, coretypes.Up)
	action := z.ResultZZ(30)
	if action.RunEnded {
		t.Error("a win should not end the run")
	}
	if !z.state.hasActive {
		t.Error("ZZ should remain active after a win")
	}
}

func TestResultAntiZZWinStaysP1AndDeactivates(t *testing.T) {
	z := New()
	z.state.AntiZZPocket = coretypes.P1
	z.OnIndicator(4, coretypes.Up)
	z.ResultAntiZZ(40)
	if z.state.AntiZZPocket != coretypes.P1 {
		t.Error("expected AntiZZ to stay P1 on win")
	}
	if z.state.hasActive {
		t.Error("expected AntiZZ deactivated after its single bet")
	}
}

func TestResultAntiZZLossSwapsPockets(t *testing.T) {
	z := New()
	z.state.AntiZZPocket = coretypes.P1
	z.OnIndicator(4, coretypes.Up)
	z.ResultAntiZZ(-40)
	if z.state.AntiZZPocket != coretypes.P2 || z.state.ZZPocket != coretypes.P1 {
		t.Error("expected pocket swap on AntiZZ loss")
	}
	if !z.state.hasActive || z.state.Active != coretypes.ZZ {
		t.Error("expected ZZ to activate immediately with imaginary profit")
	}
	if z.state.RunProfitZZ != 40 {
		t.Errorf("expected run_profit_zz = +40, got %v", z.state.RunProfitZZ)
	}
}

func TestAtMostOneOfZZAntiZZActive(t *testing.T) {
	z := New()
	z.OnIndicator(4, coretypes.Up)
	if z.state.Active == coretypes.AntiZZ && z.state.hasActive {
		t.Fatal("invariant setup failed")
	}
}

func TestBaitSwitchSuppressesBettingNotTracking(t *testing.T) {
	z := New()
	z.SetBaitSwitch(true)
	action := z.OnIndicator(4, coretypes.Up)
	if action.ShouldBet {
		t.Error("expected betting suppressed while in bait-switch mode")
	}
	if !z.state.hasActive {
		t.Error("expected pocket/active tracking to continue despite suppressed betting")
	}
}
