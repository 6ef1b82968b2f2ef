// Package pause implements the Pause Manager (spec.md §4.6): a global
// terminal STOP_GAME stop plus three independent per-subsystem pause
// tracks (pocket, same-direction, bucket), each with a major drawdown-
// milestone pause and a minor consecutive-loss pause.
package pause

// Track identifies one of the three per-subsystem pause tracks.
type Track uint8

const (
	TrackSameDir Track = iota
	TrackBucket
	TrackPocket
	numTracks
)

// Reason is why a track most recently paused.
type Reason uint8

const (
	ReasonNone Reason = iota
	ReasonMajorDrawdown
	ReasonMinorConsecutiveLosses
	ReasonHighPctReversal
	ReasonConsecutiveLosses
)

// trackState is one track's pause bookkeeping.
type trackState struct {
	BlocksRemaining  int
	LastReason       Reason
	Drawdown         float64
	nextMajorMark    float64
	ConsecutiveLoss  int
}

// State is the full Pause Manager state.
type State struct {
	StopGame        bool
	TotalPnL        float64
	ActualPnL       float64
	Tracks          [numTracks]trackState
}

// Config holds the tunables from spec.md §6.1.
type Config struct {
	StopGameDrawdown   float64
	StopGameActualLoss float64
	MajorPauseInterval float64 // e.g. 300
	MajorPauseBlocks   int     // 10
	MinorPauseBlocks   int     // 3
	MinorPauseLosses   int
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		StopGameDrawdown:   -1000,
		StopGameActualLoss: -1000,
		MajorPauseInterval: 300,
		MajorPauseBlocks:   10,
		MinorPauseBlocks:   3,
		MinorPauseLosses:   2,
	}
}

// Pause owns the pause state and its transition rules.
type Pause struct {
	cfg   Config
	state State
}

// New creates a Pause manager. Each track's next major-drawdown mark
// starts at -interval (the first crossing is a drop of one full interval).
func New(cfg Config) *Pause {
	p := &Pause{cfg: cfg}
	for i := range p.state.Tracks {
		p.state.Tracks[i].nextMajorMark = -cfg.MajorPauseInterval
	}
	return p
}

// State returns a copy of the current state.
func (p *Pause) State() State { return p.state }

// Restore replaces the state wholesale (snapshot/undo rebuild).
func (p *Pause) Restore(s State) { p.state = s }

// Reset clears all state.
func (p *Pause) Reset() {
	*p = *New(p.cfg)
}

// Tick decrements every non-global track's blocks_remaining by one block,
// clearing the pause at zero. Call once per block, after drawdown/loss
// updates for that block have been applied.
func (p *Pause) Tick() {
	for i := range p.state.Tracks {
		if p.state.Tracks[i].BlocksRemaining > 0 {
			p.state.Tracks[i].BlocksRemaining--
		}
	}
}

// UpdatePnL folds one block's realized PnL into total/actual running
// totals, checks the global STOP_GAME condition, and checks the track's
// major-drawdown milestone.
func (p *Pause) UpdatePnL(track Track, totalDelta, actualDelta float64) {
	p.state.TotalPnL += totalDelta
	p.state.ActualPnL += actualDelta

	if p.state.TotalPnL <= p.cfg.StopGameDrawdown || p.state.ActualPnL <= p.cfg.StopGameActualLoss {
		p.state.StopGame = true
	}

	ts := &p.state.Tracks[track]
	ts.Drawdown += totalDelta
	for ts.Drawdown <= ts.nextMajorMark {
		ts.BlocksRemaining = p.cfg.MajorPauseBlocks
		ts.LastReason = ReasonMajorDrawdown
		ts.nextMajorMark -= p.cfg.MajorPauseInterval
	}
}

// RecordResult advances or resets a track's consecutive-loss counter and
// arms the minor pause once the configured loss count is reached.
func (p *Pause) RecordResult(track Track, isLoss bool) {
	ts := &p.state.Tracks[track]
	if !isLoss {
		ts.ConsecutiveLoss = 0
		return
	}
	ts.ConsecutiveLoss++
	if ts.ConsecutiveLoss >= p.cfg.MinorPauseLosses {
		ts.BlocksRemaining = p.cfg.MinorPauseBlocks
		ts.LastReason = ReasonMinorConsecutiveLosses
	}
}

// ForcePause arms a track's pause directly for a subsystem-specific
// trigger not covered by the generic drawdown/consecutive-loss rules
// (e.g. Same-Direction's HIGH_PCT_REVERSAL, spec.md §4.7).
func (p *Pause) ForcePause(track Track, blocks int, reason Reason) {
	ts := &p.state.Tracks[track]
	ts.BlocksRemaining = blocks
	ts.LastReason = reason
}

// CanTrade reports whether a track is currently allowed to bet: not
// globally stopped, and its own pause has cleared.
func (p *Pause) CanTrade(track Track) bool {
	if p.state.StopGame {
		return false
	}
	return p.state.Tracks[track].BlocksRemaining == 0
}

// CanPocketTrade, CanBucketTrade, CanSameDirTrade are the named queries
// from spec.md §4.6.
func (p *Pause) CanPocketTrade() bool  { return p.CanTrade(TrackPocket) }
func (p *Pause) CanBucketTrade() bool  { return p.CanTrade(TrackBucket) }
func (p *Pause) CanSameDirTrade() bool { return p.CanTrade(TrackSameDir) }

// IsPaused reports whether a track currently has blocks remaining,
// irrespective of the global stop.
func (p *Pause) IsPaused(track Track) bool {
	return p.state.Tracks[track].BlocksRemaining > 0
}
