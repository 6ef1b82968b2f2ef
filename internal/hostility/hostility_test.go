package hostility

import (
	"testing"

	"blockengine/internal/coretypes"
)

func TestRecordIndicatorRaisesScoreAndLocks(t *testing.T) {
	h := New(DefaultConfig())
	h.RecordIndicator(SevereLoss, 1, nil, false)
	h.RecordIndicator(SevereLoss, 2, nil, false)
	h.RecordIndicator(SevereLoss, 3, nil, false)
	h.RecordIndicator(SevereLoss, 4, nil, false)
	if !h.IsLocked() {
		t.Fatalf("expected lock once score >= threshold, got score=%v", h.State().Score)
	}
}

func TestBaitSwitchConfirmedWeighsMore(t *testing.T) {
	h := New(DefaultConfig())
	h.RecordIndicator(BaitSwitch, 1, nil, false)
	unconfirmedScore := h.State().Score
	h2 := New(DefaultConfig())
	h2.RecordIndicator(BaitSwitch, 1, nil, true)
	if h2.State().Score <= unconfirmedScore {
		t.Error("confirmed bait-switch should weigh more than unconfirmed")
	}
}

func TestDecayReducesScoreOverBlocks(t *testing.T) {
	h := New(DefaultConfig())
	h.RecordIndicator(NegativePatternRun, 1, nil, false)
	before := h.State().Score
	h.decay(1 + 20)
	if h.State().Score >= before {
		t.Error("score should decay over elapsed blocks")
	}
}

func TestUnlockRequiresCleanRecovery(t *testing.T) {
	h := New(DefaultConfig())
	for i := uint32(1); i <= 4; i++ {
		h.RecordIndicator(SevereLoss, i, nil, false)
	}
	if !h.IsLocked() {
		t.Fatal("setup: expected locked")
	}
	h.UpdatePatternRecovery(coretypes.A2, 120, true)
	if !h.IsLocked() {
		t.Fatal("bait-switch-flagged profit should not unlock")
	}
	h.UpdatePatternRecovery(coretypes.A3, 150, false)
	if h.IsLocked() {
		t.Error("expected unlock once a different pattern cleanly recovers")
	}
}

func TestIndicatorsExpireByTTL(t *testing.T) {
	h := New(DefaultConfig())
	h.RecordIndicator(NegativePatternRun, 1, nil, false)
	h.decay(1 + h.cfg.IndicatorTTL + 1)
	if len(h.State().Indicators) != 0 {
		t.Error("expected indicator to expire past its TTL")
	}
}
