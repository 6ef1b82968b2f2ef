package hierarchy

import (
	"testing"

	"blockengine/internal/coretypes"
)

func TestPocketTakesPriority(t *testing.T) {
	d := Decide(Input{
		CanPocketTrade: true, PocketActive: true, PocketShouldBet: true,
		PocketPattern: coretypes.ZZ, PocketDirection: coretypes.Up,
	})
	if d.Source != coretypes.SourcePocket || !d.ShouldBet {
		t.Fatalf("expected pocket to win priority, got %+v", d)
	}
}

func TestSameDirWinsWhenPocketInactive(t *testing.T) {
	d := Decide(Input{
		CanPocketTrade: true, PocketActive: false,
		SameDirActive: true, SameDirCanBet: true, SameDirDirection: coretypes.Down,
		CanBucketTrade: true,
	})
	if d.Source != coretypes.SourceSameDir || *d.Direction != coretypes.Down {
		t.Fatalf("expected same-direction to win, got %+v", d)
	}
}

func TestBucketTieBreakByCumulativeProfitThenOrder(t *testing.T) {
	a2 := coretypes.A2
	a3 := coretypes.A3
	d := Decide(Input{
		CanPocketTrade: true, CanBucketTrade: true,
		BucketCandidates: []PendingSignal{
			{Pattern: a2, ExpectedDirection: coretypes.Up, CumulativeProfit: 50, CanonicalOrder: 2},
			{Pattern: a3, ExpectedDirection: coretypes.Down, CumulativeProfit: 80, CanonicalOrder: 1},
		},
	})
	if d.Pattern == nil || *d.Pattern != a3 {
		t.Fatalf("expected higher cumulative profit to win tie-break, got %+v", d)
	}
}

func TestBucketBNSInvertsDirection(t *testing.T) {
	d := Decide(Input{
		CanPocketTrade: true, CanBucketTrade: true,
		BucketCandidates: []PendingSignal{{Pattern: coretypes.OZ, ExpectedDirection: coretypes.Up}},
		BucketBNS:        map[coretypes.PatternID]bool{coretypes.OZ: true},
	})
	if d.Direction == nil || *d.Direction != coretypes.Down {
		t.Fatalf("expected BNS to invert the predicted direction, got %+v", d)
	}
}

func TestNoneWhenNothingEligible(t *testing.T) {
	d := Decide(Input{CanPocketTrade: true, CanBucketTrade: true})
	if d.Source != coretypes.SourceNone || d.ShouldBet {
		t.Fatalf("expected no eligible candidate to decide None, got %+v", d)
	}
}

func TestPausedSystemsAreRecordedNotFatal(t *testing.T) {
	d := Decide(Input{CanPocketTrade: false, CanBucketTrade: false})
	if len(d.PausedSystems) != 2 {
		t.Fatalf("expected pocket and bucket both recorded paused, got %+v", d.PausedSystems)
	}
}

func TestImaginarySameDirectionRecordedWhenNotBetting(t *testing.T) {
	d := Decide(Input{
		CanPocketTrade: true, CanBucketTrade: true,
		SameDirActive: true, SameDirCanBet: false, SameDirImaginaryOK: true, SameDirDirection: coretypes.Up,
	})
	if d.ShouldBet {
		t.Fatal("should not actually bet while same-direction is paused")
	}
	if d.ImaginarySDDir == nil || *d.ImaginarySDDir != coretypes.Up {
		t.Error("expected imaginary same-direction recorded for analytics")
	}
}
