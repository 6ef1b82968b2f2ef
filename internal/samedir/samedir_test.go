package samedir

import (
	"testing"

	"blockengine/internal/coretypes"
)

func TestActivatesOnStrongRun(t *testing.T) {
	s := New()
	activated, _ := s.OnRunCompleted(3, 150, 0, false)
	if !activated || !s.IsActive() {
		t.Fatal("expected activation on run length>=2 with profit>=140")
	}
}

func TestDoesNotActivateBelowThreshold(t *testing.T) {
	s := New()
	activated, _ := s.OnRunCompleted(3, 100, 0, false)
	if activated || s.IsActive() {
		t.Error("should not activate below the 140 profit floor")
	}
}

func TestAccumulatesLossAndDeactivates(t *testing.T) {
	s := New()
	s.OnRunCompleted(3, 150, 0, false)
	_, deactivated := s.OnRunCompleted(2, -150, 0, false)
	if !deactivated || s.IsActive() {
		t.Fatal("expected deactivation once accumulated_loss exceeds 140")
	}
}

func TestPositiveRunResetsAccumulatedLossAboveIt(t *testing.T) {
	s := New()
	s.OnRunCompleted(3, 150, 0, false)
	s.OnRunCompleted(2, -50, 0, false) // accumulated_loss=50
	s.OnRunCompleted(2, 60, 0, false)  // 60 > 50 -> reset to 0
	if s.State().AccumulatedLoss != 0 {
		t.Errorf("expected accumulated_loss reset to 0, got %v", s.State().AccumulatedLoss)
	}
}

func TestSingleBlockFlipAddsMagnitudeUnlessZZActive(t *testing.T) {
	s := New()
	s.OnRunCompleted(3, 150, 0, false)
	s.OnRunCompleted(1, 0, 40, false)
	if s.State().AccumulatedLoss != 40 {
		t.Errorf("expected accumulated_loss=40, got %v", s.State().AccumulatedLoss)
	}

	s2 := New()
	s2.OnRunCompleted(3, 150, 0, false)
	s2.OnRunCompleted(1, 0, 40, true) // ZZ family active: hard-isolated
	if s2.State().AccumulatedLoss != 0 {
		t.Errorf("expected hard-isolated accumulated_loss=0, got %v", s2.State().AccumulatedLoss)
	}
}

func TestPausedWinDecay(t *testing.T) {
	s := New()
	s.OnRunCompleted(3, 150, 0, false)
	s.OnRunCompleted(2, -150, 0, false) // accumulated_loss=150 (>140 also deactivates; decay still applies)
	s.ApplyPausedWinDecay(coretypes.A2, 60)
	if s.State().AccumulatedLoss != 120 {
		t.Errorf("expected 150-30=120, got %v", s.State().AccumulatedLoss)
	}
	s.ApplyPausedWinDecay(coretypes.ZZ, 1000)
	if s.State().AccumulatedLoss != 120 {
		t.Error("ZZ win should never decay accumulated_loss")
	}
}

func TestResumeRules(t *testing.T) {
	if !ShouldResumeFromPause(coretypes.A2, true, false) {
		t.Error("A2 loss should resume SD")
	}
	if ShouldResumeFromPause(coretypes.AntiA2, true, false) {
		t.Error("AntiA2 (continuation) loss should never resume SD")
	}
	if !ShouldResumeFromPause(coretypes.ZZ, true, false) {
		t.Error("ZZ loss not on first bet should resume SD")
	}
	if ShouldResumeFromPause(coretypes.ZZ, true, true) {
		t.Error("ZZ loss on first bet should not resume SD")
	}
	if ShouldResumeFromPause(coretypes.A2, false, false) {
		t.Error("a win should never resume SD")
	}
}

func TestHighPctReversalTrigger(t *testing.T) {
	if !ShouldTriggerHighPctReversalPause(true, true, 75) {
		t.Error("expected trigger on reversal loss >= 70")
	}
	if ShouldTriggerHighPctReversalPause(true, true, 50) {
		t.Error("should not trigger below 70")
	}
	if ShouldTriggerHighPctReversalPause(false, true, 90) {
		t.Error("should not trigger on a non-reversal block")
	}
}
