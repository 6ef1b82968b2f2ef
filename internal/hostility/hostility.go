// Package hostility implements the Hostility/Health subsystem (spec.md
// §4.5): a decaying weighted-indicator score that can LOCK the session
// into simulated-only trading, plus per-pattern recovery tracking that
// gates unlock.
package hostility

import "blockengine/internal/coretypes"

// IndicatorKind is the closed set of hostility indicator types.
type IndicatorKind uint8

const (
	SevereLoss IndicatorKind = iota
	ConsecutiveLosses
	NegativePatternRun
	BaitSwitch
	BaitSwitchConfirmed
	MultiPatternBait
)

// Indicator is one entry in the ordered indicator sequence.
type Indicator struct {
	Kind       IndicatorKind
	Severity   float64
	BlockIndex uint32
	Pattern    *coretypes.PatternID
}

// Recovery tracks one pattern's path back to health.
type Recovery struct {
	IsRecovered      bool
	CumulativeProfit float64
	HasBaitSwitch    bool
}

// Config holds the tunables from spec.md §6.1.
type Config struct {
	SevereLossThreshold  float64 // 85
	LockThreshold        float64 // 10
	IndicatorTTL         uint32  // blocks
	DecayPerBlock        float64
	WinReduction         float64
	ConsecutiveWinBonus  float64
	ConsecutiveLossCount int
	ProfitResetThreshold float64
	Severities           map[IndicatorKind]float64
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		SevereLossThreshold:  85,
		LockThreshold:        10,
		IndicatorTTL:         50,
		DecayPerBlock:        0.2,
		WinReduction:         1,
		ConsecutiveWinBonus:  1,
		ConsecutiveLossCount: 2,
		ProfitResetThreshold: 100,
		Severities: map[IndicatorKind]float64{
			SevereLoss:          3,
			ConsecutiveLosses:   2,
			NegativePatternRun:  1,
			BaitSwitch:          2,
			BaitSwitchConfirmed: 3,
			MultiPatternBait:    4,
		},
	}
}

// State is the full Hostility/Health state (spec.md §3).
type State struct {
	Score             float64
	Indicators        []Indicator
	IsLocked          bool
	ConsecutiveWins   int
	PatternRecovery   [coretypes.NumPatterns]Recovery
	lastBlockIndex    uint32
	hasLastBlockIndex bool
}

// Hostility owns the State and the rules that mutate it.
type Hostility struct {
	cfg   Config
	state State
}

// New creates a Hostility tracker.
func New(cfg Config) *Hostility {
	if cfg.Severities == nil {
		cfg = DefaultConfig()
	}
	return &Hostility{cfg: cfg}
}

// State returns a copy of the current state.
func (h *Hostility) State() State { return h.state }

// Restore replaces the state wholesale (snapshot/undo rebuild).
func (h *Hostility) Restore(s State) { h.state = s }

// Reset clears all state.
func (h *Hostility) Reset() { h.state = State{} }

func (h *Hostility) severity(kind IndicatorKind, confirmed bool) float64 {
	if kind == BaitSwitch && confirmed {
		return h.cfg.Severities[BaitSwitchConfirmed]
	}
	return h.cfg.Severities[kind]
}

// decay applies decay_per_block * delta-blocks since the last observed
// block, floored at 0.
func (h *Hostility) decay(blockIndex uint32) {
	if !h.state.hasLastBlockIndex {
		h.state.lastBlockIndex = blockIndex
		h.state.hasLastBlockIndex = true
		return
	}
	if blockIndex <= h.state.lastBlockIndex {
		return
	}
	delta := float64(blockIndex - h.state.lastBlockIndex)
	h.state.Score -= h.cfg.DecayPerBlock * delta
	if h.state.Score < 0 {
		h.state.Score = 0
	}
	h.state.lastBlockIndex = blockIndex

	// indicators older than the TTL fall out of the sliding window.
	cutoff := int64(blockIndex) - int64(h.cfg.IndicatorTTL)
	kept := h.state.Indicators[:0]
	for _, ind := range h.state.Indicators {
		if int64(ind.BlockIndex) >= cutoff {
			kept = append(kept, ind)
		}
	}
	h.state.Indicators = kept
}

// RecordIndicator appends a weighted indicator and raises the score,
// applying decay for the elapsed blocks first.
func (h *Hostility) RecordIndicator(kind IndicatorKind, blockIndex uint32, pattern *coretypes.PatternID, confirmed bool) {
	h.decay(blockIndex)
	sev := h.severity(kind, confirmed)
	h.state.Indicators = append(h.state.Indicators, Indicator{Kind: kind, Severity: sev, BlockIndex: blockIndex, Pattern: pattern})
	h.state.Score += sev
	h.maybeLock()
}

// RecordWin applies win_reduction (plus a bonus after 3 consecutive wins)
// to the score, and advances the consecutive-win counter.
func (h *Hostility) RecordWin(blockIndex uint32) {
	h.decay(blockIndex)
	h.state.ConsecutiveWins++
	reduction := h.cfg.WinReduction
	if h.state.ConsecutiveWins >= 3 {
		reduction += h.cfg.ConsecutiveWinBonus
	}
	h.state.Score -= reduction
	if h.state.Score < 0 {
		h.state.Score = 0
	}
}

// RecordLoss resets the consecutive-win counter; the score impact of a
// loss is driven entirely through RecordIndicator (severe_loss,
// consecutive_losses, negative_pattern_run), not here.
func (h *Hostility) RecordLoss(blockIndex uint32) {
	h.decay(blockIndex)
	h.state.ConsecutiveWins = 0
}

// ProfitReset zeros the score on a session-level profit reset.
func (h *Hostility) ProfitReset() {
	h.state.Score = 0
}

func (h *Hostility) maybeLock() {
	if !h.state.IsLocked && h.state.Score >= h.cfg.LockThreshold {
		h.state.IsLocked = true
		h.state.PatternRecovery = [coretypes.NumPatterns]Recovery{}
	}
}

// UpdatePatternRecovery folds a pattern's evaluated result into its
// recovery tracker and checks for unlock eligibility while locked.
func (h *Hostility) UpdatePatternRecovery(pattern coretypes.PatternID, profit float64, hasBaitSwitch bool) {
	r := &h.state.PatternRecovery[pattern]
	r.CumulativeProfit += profit
	if r.CumulativeProfit < 0 {
		r.CumulativeProfit = 0
	}
	r.HasBaitSwitch = hasBaitSwitch
	r.IsRecovered = r.CumulativeProfit >= h.cfg.ProfitResetThreshold && !r.HasBaitSwitch

	if h.state.IsLocked && r.IsRecovered {
		h.state.IsLocked = false
	}
}

// IsLocked reports whether the session is currently locked to simulated
// trading only.
func (h *Hostility) IsLocked() bool { return h.state.IsLocked }
