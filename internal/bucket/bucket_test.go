package bucket

import (
	"testing"

	"blockengine/internal/coretypes"
)

func TestActivatesToMain(t *testing.T) {
	b := New(DefaultConfig())
	b.OnActivated(coretypes.A2)
	if b.State(coretypes.A2).Bucket != coretypes.Main {
		t.Error("expected MAIN on first activation")
	}
}

func TestSevereBreakEntersBNSAndBlocksOpposite(t *testing.T) {
	b := New(DefaultConfig())
	b.OnActivated(coretypes.A2)
	b.OnBrokeWhileMain(coretypes.A2, -80, 80)
	if b.State(coretypes.A2).Bucket != coretypes.BNS {
		t.Fatal("expected BNS on severe break")
	}
	if !b.State(coretypes.AntiA2).BlockedByOpposite {
		t.Error("expected opposite to be blocked while paired BNS active")
	}
	if b.State(coretypes.A2).CumulativeBaitProfit != 80 {
		t.Errorf("expected bait to seed with entering loss magnitude, got %v", b.State(coretypes.A2).CumulativeBaitProfit)
	}
}

func TestMildBreakEntersWaiting(t *testing.T) {
	b := New(DefaultConfig())
	b.OnActivated(coretypes.A2)
	b.OnBrokeWhileMain(coretypes.A2, -30, 30)
	if b.State(coretypes.A2).Bucket != coretypes.Waiting {
		t.Error("expected WAITING on a mild break")
	}
}

func TestBaitConfirmsOnSingleThreshold(t *testing.T) {
	b := New(DefaultConfig())
	b.OnBrokeWhileMain(coretypes.A2, -80, 80)
	b.ObserveBaitProgress(coretypes.A2, 75)
	if !b.State(coretypes.A2).BaitConfirmed {
		t.Error("expected bait confirmation on single observation >= threshold")
	}
}

func TestBaitFailedRRRExitsToWaiting(t *testing.T) {
	b := New(DefaultConfig())
	b.OnBrokeWhileMain(coretypes.A2, -80, 80)
	b.ObserveBaitProgress(coretypes.A2, -10)
	if b.State(coretypes.A2).Bucket != coretypes.Waiting {
		t.Error("expected RRR bait-failed to exit to WAITING")
	}
	if b.State(coretypes.AntiA2).BlockedByOpposite {
		t.Error("opposite should be unblocked after bait failure")
	}
}

func TestSwitchWinStaysBNSAndClearsBait(t *testing.T) {
	b := New(DefaultConfig())
	b.OnBrokeWhileMain(coretypes.A2, -80, 80)
	b.MarkSwitchPlayed(coretypes.A2, 10)
	b.OnBrokeWhileBNS(coretypes.A2, 50)
	s := b.State(coretypes.A2)
	if s.Bucket != coretypes.BNS {
		t.Error("expected to stay BNS after a winning switch")
	}
	if s.BaitConfirmed || s.CumulativeBaitProfit != 0 {
		t.Error("expected bait state cleared for next cycle")
	}
}

func TestSwitchSevereLossInvalidatesBNS(t *testing.T) {
	b := New(DefaultConfig())
	b.OnBrokeWhileMain(coretypes.A2, -80, 80)
	b.MarkSwitchPlayed(coretypes.A2, 10)
	b.OnBrokeWhileBNS(coretypes.A2, -75)
	if b.State(coretypes.A2).Bucket != coretypes.Main {
		t.Error("expected severe switch loss to invalidate B&S back to MAIN")
	}
}

func TestConsecutiveOppositeWinsKillsBNS(t *testing.T) {
	b := New(DefaultConfig())
	b.OnBrokeWhileMain(coretypes.A2, -80, 80)
	b.ObserveBlockedOppositeResult(coretypes.A2, true, 60)
	if b.State(coretypes.A2).Bucket != coretypes.BNS {
		t.Fatal("should not kill on first opposite win")
	}
	killed, activated := b.ObserveBlockedOppositeResult(coretypes.A2, true, 60)
	if !killed {
		t.Fatal("expected BNS killed after consecutive_wins_to_break_bns opposite wins")
	}
	if !activated {
		t.Error("expected the unblocked opposite to activate to MAIN given accumulated-while-blocked >= threshold")
	}
}

func TestStructuralKillSuppressedOnSwitchBlock(t *testing.T) {
	b := New(DefaultConfig())
	b.OnBrokeWhileMain(coretypes.OZ, -80, 80)
	b.MarkSwitchPlayed(coretypes.OZ, 20)
	if b.CheckStructuralKill(coretypes.OZ, 20) {
		t.Error("kill check should suppress on the same block the switch was played")
	}
	if !b.CheckStructuralKill(coretypes.OZ, 21) {
		t.Error("expected structural kill once switch has resolved past its block")
	}
}
