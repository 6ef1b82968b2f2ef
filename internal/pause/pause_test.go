package pause

import "testing"

func TestGlobalStopGameOnDrawdown(t *testing.T) {
	p := New(DefaultConfig())
	p.UpdatePnL(TrackSameDir, -1200, -1200)
	if !p.state.StopGame {
		t.Error("expected STOP_GAME once drawdown threshold crossed")
	}
	if p.CanPocketTrade() {
		t.Error("no track should be tradeable once globally stopped")
	}
}

func TestMajorPauseOnDrawdownMilestone(t *testing.T) {
	p := New(DefaultConfig())
	p.UpdatePnL(TrackBucket, -300, -300)
	if !p.IsPaused(TrackBucket) {
		t.Fatal("expected major pause on crossing one interval")
	}
	if p.CanBucketTrade() {
		t.Error("track should not be tradeable while paused")
	}
}

func TestMajorPauseClearsAfterBlocks(t *testing.T) {
	p := New(DefaultConfig())
	p.UpdatePnL(TrackBucket, -300, -300)
	for i := 0; i < DefaultConfig().MajorPauseBlocks; i++ {
		p.Tick()
	}
	if p.IsPaused(TrackBucket) {
		t.Error("expected pause to clear after major_pause_blocks ticks")
	}
}

func TestMinorPauseOnConsecutiveLosses(t *testing.T) {
	p := New(DefaultConfig())
	p.RecordResult(TrackSameDir, true)
	if p.IsPaused(TrackSameDir) {
		t.Fatal("one loss should not trigger minor pause at default threshold 2")
	}
	p.RecordResult(TrackSameDir, true)
	if !p.IsPaused(TrackSameDir) {
		t.Error("expected minor pause after minor_pause_losses consecutive losses")
	}
}

func TestWinResetsConsecutiveLossCounter(t *testing.T) {
	p := New(DefaultConfig())
	p.RecordResult(TrackSameDir, true)
	p.RecordResult(TrackSameDir, false)
	p.RecordResult(TrackSameDir, true)
	if p.IsPaused(TrackSameDir) {
		t.Error("a win should reset the consecutive-loss counter")
	}
}

func TestTracksAreIndependent(t *testing.T) {
	p := New(DefaultConfig())
	p.UpdatePnL(TrackBucket, -300, 0)
	if p.IsPaused(TrackSameDir) {
		t.Error("bucket's pause should not affect same-direction track")
	}
}
