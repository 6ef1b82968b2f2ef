// Package engine implements the Reaction Engine (spec.md §4.11): the
// single-threaded, deterministic per-block orchestrator that owns every
// subsystem and drives them through the ordered pipeline. This is the
// only package that holds pointers to every other core package — per
// spec.md §3's "Lifecycle ownership: all mutable state is owned by the
// Reaction Engine. Subsystems expose pure queries and transition
// methods; they never reach into siblings."
package engine

import (
	"blockengine/internal/blocktrack"
	"blockengine/internal/bucket"
	"blockengine/internal/coretypes"
	"blockengine/internal/engerr"
	"blockengine/internal/hierarchy"
	"blockengine/internal/hostility"
	"blockengine/internal/ledger"
	"blockengine/internal/lifecycle"
	"blockengine/internal/patterns"
	"blockengine/internal/pause"
	"blockengine/internal/samedir"
	"blockengine/internal/signals"
	"blockengine/internal/snapshot"
	"blockengine/internal/zz"
)

// Config bundles every subsystem's configuration (spec.md §6.1).
type Config struct {
	Signals           signals.Config
	Patterns          patterns.Config
	Hostility         hostility.Config
	Pause             pause.Config
	Bucket            bucket.Config
	SnapshotLimit     int
	CooldownArmLosses int
	CooldownBlocks    int
}

// DefaultConfig returns the documented defaults for every subsystem.
func DefaultConfig() Config {
	return Config{
		Signals:           signals.DefaultConfig(),
		Patterns:          patterns.DefaultConfig(),
		Hostility:         hostility.DefaultConfig(),
		Pause:             pause.DefaultConfig(),
		Bucket:            bucket.DefaultConfig(),
		SnapshotLimit:     100,
		CooldownArmLosses: 2,
		CooldownBlocks:    3,
	}
}

// OpenTrade is the single in-flight bet opened by the Hierarchy Arbiter,
// evaluated when the next block arrives.
type OpenTrade struct {
	Source    coretypes.DecisionSource
	Pattern   *coretypes.PatternID
	Direction coretypes.Direction
	OpenedAt  uint32
	IsReal    bool // false while Hostility is locked: recorded to ledger.simulated
	WasSwitch bool // BNS switch trade, for bucket.MarkSwitchPlayed bookkeeping
}

// BlockResult is what AddBlock returns: everything that happened during
// one tick of the §4.11 pipeline.
type BlockResult struct {
	Block       blocktrack.Block
	Results     []signals.Result
	NewSignals  []patterns.Signal
	Decision    hierarchy.Decision
	OpenedTrade *OpenTrade
	ClosedEntry *ledger.Entry
	IsLocked    bool
	StopGame    bool
}

// Engine owns every subsystem and the cross-cutting bookkeeping that
// doesn't belong to any single one (pending signals, the open trade,
// cooldown).
type Engine struct {
	cfg Config

	tracker   *blocktrack.Tracker
	detector  *patterns.Detector
	evaluator *signals.Evaluator
	lifecycle *lifecycle.Lifecycle
	hostility *hostility.Hostility
	pause     *pause.Pause
	samedir   *samedir.SameDir
	bucket    *bucket.Bucket
	zz        *zz.ZZ
	ledger    *ledger.Ledger
	snapshots *snapshot.Ring

	pending           [coretypes.NumPatterns]*patterns.Signal
	openTrade         *OpenTrade
	cooldownRemaining int
	realConsecLosses  int
	halted            bool
}

// New constructs an Engine with every subsystem fresh.
func New(cfg Config) *Engine {
	return &Engine{
		cfg:       cfg,
		tracker:   blocktrack.New(),
		detector:  patterns.New(cfg.Patterns),
		evaluator: signals.New(cfg.Signals),
		lifecycle: lifecycle.New(),
		hostility: hostility.New(cfg.Hostility),
		pause:     pause.New(cfg.Pause),
		samedir:   samedir.New(),
		bucket:    bucket.New(cfg.Bucket),
		zz:        zz.New(),
		ledger:    ledger.New(),
		snapshots: snapshot.NewRing(cfg.SnapshotLimit),
	}
}

// Reset clears every subsystem back to a fresh session.
func (e *Engine) Reset() {
	*e = *New(e.cfg)
}

// Halted reports whether a state-invariant violation has halted the
// engine (spec.md §7: halted engines refuse further AddBlock calls).
func (e *Engine) Halted() bool { return e.halted }

// AddBlock runs one full tick of the §4.11 pipeline.
func (e *Engine) AddBlock(dir coretypes.Direction, magnitude float64) (BlockResult, error) {
	if e.halted {
		return BlockResult{}, engerr.NewInvariantViolation("engine.Engine", "add_block called after halt", nil)
	}

	// Step 1: append block.
	block, completedRun, err := e.tracker.AddBlock(dir, magnitude)
	if err != nil {
		return BlockResult{}, engerr.NewInvalidInput("magnitude", err.Error())
	}

	zzFamilyActive := !e.zz.State().NoActive()

	// Step 2: Same-Direction's run-completion bookkeeping (activation,
	// accumulation, deactivation) is purely a function of the run that
	// just ended.
	if completedRun != nil {
		sign := completedRun.Direction.Sign()
		runProfit := sign * completedRun.MagnitudeSum
		e.samedir.OnRunCompleted(completedRun.Length, runProfit, block.Magnitude, zzFamilyActive)
	}

	// Step 3+4: evaluate pending signals, update Lifecycle.
	var results []signals.Result
	for _, p := range coretypes.AllPatterns() {
		sig := e.pending[p]
		if sig == nil || sig.SignalIndex+1 != block.Index {
			continue
		}
		wasBet := e.openTrade != nil && e.openTrade.Pattern != nil && *e.openTrade.Pattern == p
		res, everr := e.evaluator.Evaluate(*sig, block, wasBet)
		if everr != nil {
			e.halted = true
			return BlockResult{}, everr
		}
		e.pending[p] = nil
		results = append(results, res)

		autoActivate := !p.IsZZFamily()
		if autoActivate {
			tr := e.lifecycle.ApplyResult(p, res.Profit, true, block.Index)
			if tr.Activated {
				e.bucket.OnActivated(p)
			}
			if tr.Broke {
				e.applyBucketBreak(p, tr.BreakRunProfit, res)
			}
		} else {
			e.lifecycle.ApplyResult(p, res.Profit, false, block.Index)
		}

		// Step 5: Hostility.
		e.updateHostilityFromResult(p, res)
	}

	// Step 6: Bucket bait/BNS bookkeeping from this block's results.
	for _, res := range results {
		e.bucket.ObserveBaitProgress(res.Pattern, res.Profit)
		opp := res.Pattern.Opposite()
		if e.bucket.State(opp).Bucket == coretypes.BNS && e.bucket.State(res.Pattern).BlockedByOpposite {
			e.bucket.ObserveBlockedOppositeResult(opp, res.Profit > 0, res.Profit)
		}
	}

	// Step 7: detect new formations. A new formation of a pattern whose
	// bucket is already BNS with its switch played is the structural-kill
	// trigger (spec.md §4.8), checked here rather than on every block so
	// it fires exactly on the re-formation block.
	lengths := e.tracker.Lengths()
	curDir, _, _ := e.tracker.CurrentRun()
	newSignals, indicator := e.detector.Detect(patterns.Input{
		Lengths:           lengths,
		CurrentDirection:  curDir,
		CurrentBlockIndex: block.Index,
		CurrentMagnitude:  block.Magnitude,
		Pending:           e.pendingMap(),
	})
	for i := range newSignals {
		sig := newSignals[i]
		e.pending[sig.Pattern] = &sig
		if e.bucket.CheckStructuralKill(sig.Pattern, block.Index) {
			e.lifecycle.ForceBreak(sig.Pattern)
		}
	}
	if indicator != nil {
		e.zz.OnIndicator(indicator.BlockIndex, indicator.Direction)
	}
	if e.zz.State().WaitingForFirstBet && e.zz.State().FirstBetBlock == block.Index {
		e.zz.EvaluateWaitingFirstBet(block.Direction, block.Magnitude)
	}

	// Step 8: Same-Direction's own pause/resume triggers, independent of
	// the Pause Manager's generic drawdown/consecutive-loss rules.
	if e.pause.IsPaused(pause.TrackSameDir) {
		for _, res := range results {
			if res.Profit > 0 {
				e.samedir.ApplyPausedWinDecay(res.Pattern, res.Magnitude)
			} else {
				if samedir.ShouldResumeFromPause(res.Pattern, true, e.zzBrokeOnFirstBet(res)) {
					e.pause.ForcePause(pause.TrackSameDir, 0, pause.ReasonNone)
				}
			}
		}
	}

	// Step 9: evaluate a pending trade opened at index-1.
	var closedEntry *ledger.Entry
	if e.openTrade != nil && e.openTrade.OpenedAt+1 == block.Index {
		closedEntry = e.closeOpenTrade(block)
	}

	e.pause.Tick()

	// Step 10: Hierarchy decides.
	decision := e.decide(block)
	if decision.ShouldBet {
		e.openNewTrade(decision, block.Index)
	}

	// Step 11: snapshot.
	e.captureSnapshot(block.Index)

	return BlockResult{
		Block:       block,
		Results:     results,
		NewSignals:  newSignals,
		Decision:    decision,
		OpenedTrade: e.openTrade,
		ClosedEntry: closedEntry,
		IsLocked:    e.hostility.IsLocked(),
		StopGame:    e.pause.State().StopGame,
	}, nil
}

func (e *Engine) pendingMap() map[coretypes.PatternID]bool {
	m := make(map[coretypes.PatternID]bool, coretypes.NumPatterns)
	for _, p := range coretypes.AllPatterns() {
		if e.pending[p] != nil {
			m[p] = true
		}
	}
	return m
}

func (e *Engine) zzBrokeOnFirstBet(res signals.Result) bool {
	return res.Pattern == coretypes.ZZ && e.zz.State().IsFirstBetOfRun
}

func (e *Engine) applyBucketBreak(p coretypes.PatternID, breakRunProfit float64, res signals.Result) {
	if e.bucket.State(p).Bucket == coretypes.BNS {
		e.bucket.OnBrokeWhileBNS(p, res.Profit)
		return
	}
	e.bucket.OnBrokeWhileMain(p, breakRunProfit, -res.Profit)
}

func (e *Engine) updateHostilityFromResult(p coretypes.PatternID, res signals.Result) {
	if res.Profit < 0 {
		e.hostility.RecordLoss(res.EvalIndex)
		if res.Magnitude >= e.cfg.Hostility.SevereLossThreshold {
			pattern := p
			e.hostility.RecordIndicator(hostility.SevereLoss, res.EvalIndex, &pattern, false)
		}
		e.realConsecLosses++
		if e.realConsecLosses >= e.cfg.CooldownArmLosses {
			e.cooldownRemaining = e.cfg.CooldownBlocks
		}
	} else {
		e.hostility.RecordWin(res.EvalIndex)
		e.realConsecLosses = 0
	}
	e.hostility.UpdatePatternRecovery(p, res.Profit, e.bucket.State(p).Bucket == coretypes.BNS)
}

func (e *Engine) decide(block blocktrack.Block) hierarchy.Decision {
	var candidates []hierarchy.PendingSignal
	order := 0
	for _, p := range coretypes.NonZZPatterns() {
		if e.bucket.ShouldPlay(p) {
			sig := e.pending[p]
			if sig == nil {
				order++
				continue
			}
			candidates = append(candidates, hierarchy.PendingSignal{
				Pattern:           p,
				ExpectedDirection: sig.ExpectedDirection,
				IsInversePlay:     sig.IsInversePlay,
				CumulativeProfit:  e.lifecycle.Cycle(p).CumulativeProfit,
				CanonicalOrder:    order,
			})
			order++
		}
	}

	bnsMap := make(map[coretypes.PatternID]bool, len(candidates))
	for _, p := range coretypes.NonZZPatterns() {
		if e.bucket.State(p).Bucket == coretypes.BNS {
			bnsMap[p] = true
		}
	}

	zzState := e.zz.State()
	pocketActive := !zzState.NoActive()
	var pocketPattern coretypes.PatternID
	var pocketDir coretypes.Direction
	if pocketActive {
		pocketPattern = zzState.Active
		pocketDir = zzState.SavedIndicatorDir.Opposite()
	}

	in := hierarchy.Input{
		PocketActive:       pocketActive,
		PocketPattern:      pocketPattern,
		PocketDirection:    pocketDir,
		PocketShouldBet:    pocketActive && e.cooldownRemaining == 0,
		CanPocketTrade:     e.pause.CanPocketTrade(),
		SameDirActive:      e.samedir.IsActive(),
		SameDirCanBet:      e.samedir.IsActive() && e.pause.CanSameDirTrade() && e.cooldownRemaining == 0,
		SameDirDirection:   block.Direction,
		SameDirImaginaryOK: true,
		BucketCandidates:   candidates,
		CanBucketTrade:     e.pause.CanBucketTrade() && e.cooldownRemaining == 0,
		BucketBNS:          bnsMap,
	}
	return hierarchy.Decide(in)
}

func (e *Engine) openNewTrade(d hierarchy.Decision, blockIndex uint32) {
	t := &OpenTrade{Source: d.Source, Pattern: d.Pattern, Direction: *d.Direction, OpenedAt: blockIndex, IsReal: !e.hostility.IsLocked()}
	if d.Pattern != nil && e.bucket.State(*d.Pattern).Bucket == coretypes.BNS {
		t.WasSwitch = true
		e.bucket.MarkSwitchPlayed(*d.Pattern, blockIndex)
	}
	e.openTrade = t
}

func (e *Engine) closeOpenTrade(resolving blocktrack.Block) *ledger.Entry {
	t := e.openTrade
	e.openTrade = nil
	if e.cooldownRemaining > 0 {
		e.cooldownRemaining--
	}

	correct := resolving.Direction == t.Direction
	pnl := resolving.Magnitude
	if !correct {
		pnl = -resolving.Magnitude
	}

	var verdict coretypes.Verdict
	switch {
	case !correct && resolving.Magnitude >= 70:
		verdict = coretypes.VerdictFake
	case !correct:
		verdict = coretypes.VerdictUnfair
	default:
		verdict = coretypes.VerdictFair
	}

	var pattern coretypes.PatternID
	if t.Pattern != nil {
		pattern = *t.Pattern
	}
	entry := ledger.Entry{BlockIndex: resolving.Index, Pattern: pattern, Direction: t.Direction, PnL: pnl, Verdict: verdict}

	if t.IsReal {
		e.ledger.RecordActual(entry)
	} else {
		e.ledger.RecordSimulated(entry)
	}

	track := trackForSource(t.Source)
	actualDelta := pnl
	if !t.IsReal {
		actualDelta = 0
	}
	e.pause.UpdatePnL(track, pnl, actualDelta)
	e.pause.RecordResult(track, pnl < 0)

	if t.Source == coretypes.SourceSameDir && !correct {
		if samedir.ShouldTriggerHighPctReversalPause(true, true, resolving.Magnitude) {
			e.pause.ForcePause(pause.TrackSameDir, e.cfg.Pause.MinorPauseBlocks, pause.ReasonHighPctReversal)
		}
	}

	if t.Source == coretypes.SourcePocket && t.Pattern != nil {
		e.resolvePocketTrade(*t.Pattern, pnl)
	}
	if t.WasSwitch && t.Pattern != nil {
		e.bucket.OnBrokeWhileBNS(*t.Pattern, pnl)
	}

	return &entry
}

func trackForSource(src coretypes.DecisionSource) pause.Track {
	switch src {
	case coretypes.SourcePocket:
		return pause.TrackPocket
	case coretypes.SourceBucket:
		return pause.TrackBucket
	default:
		return pause.TrackSameDir
	}
}

// resolvePocketTrade feeds a real pocket trade's result back into the ZZ
// State Manager, which owns pocket-swap/activation bookkeeping for the
// ZZ/AntiZZ pair.
func (e *Engine) resolvePocketTrade(pattern coretypes.PatternID, pnl float64) {
	if pattern == coretypes.AntiZZ {
		e.zz.ResultAntiZZ(pnl)
		return
	}
	e.zz.ResultZZ(pnl)
}

func (e *Engine) captureSnapshot(blockIndex uint32) {
	s := snapshot.Snapshot{
		BlockIndex: blockIndex,
		Bucket:     e.bucket.All(),
		Pause:      e.pause.State(),
		Hostility:  e.hostility.State(),
		SameDir:    e.samedir.State(),
		Lifecycle:  e.lifecycle.All(),
		ZZ:         e.zz.State(),
		Ledger:     e.ledger.Capture(),
	}
	e.snapshots.Push(s)
}

// UndoLastBlock pops the last block and performs the structural rebuild
// described in spec.md §4.13. Returns (removedBlock, false) if history is
// empty (a no-op per spec.md §7).
func (e *Engine) UndoLastBlock() (blocktrack.Block, bool) {
	removed, ok := e.tracker.RemoveLast()
	if !ok {
		return blocktrack.Block{}, false
	}
	if _, ok := e.snapshots.PopLast(); ok {
		if prior, ok := e.snapshots.Last(); ok {
			e.bucket.Restore(prior.Bucket)
			e.pause.Restore(prior.Pause)
			e.hostility.Restore(prior.Hostility)
			e.samedir.Restore(prior.SameDir)
			e.lifecycle.Restore(prior.Lifecycle)
			e.zz.Restore(prior.ZZ)
			e.ledger.Restore(prior.Ledger)
		}
	}
	e.cooldownRemaining = 0
	return removed, true
}

// Ledger exposes the dual ledger for read-only aggregate queries.
func (e *Engine) Ledger() *ledger.Ledger { return e.ledger }

// Hostility exposes the hostility subsystem for read-only queries.
func (e *Engine) Hostility() *hostility.Hostility { return e.hostility }

// Pause exposes the pause subsystem for read-only queries.
func (e *Engine) Pause() *pause.Pause { return e.pause }

// Lifecycle exposes the lifecycle table for read-only queries.
func (e *Engine) Lifecycle() *lifecycle.Lifecycle { return e.lifecycle }

// Bucket exposes the bucket table for read-only queries.
func (e *Engine) Bucket() *bucket.Bucket { return e.bucket }

// ZZ exposes the ZZ state manager for read-only queries.
func (e *Engine) ZZ() *zz.ZZ { return e.zz }

// SameDir exposes the Same-Direction manager for read-only queries.
func (e *Engine) SameDir() *samedir.SameDir { return e.samedir }

// Snapshots exposes the per-block snapshot ring for the exported query.
func (e *Engine) Snapshots() *snapshot.Ring { return e.snapshots }

// Tracker exposes the block/run tracker for read-only queries.
func (e *Engine) Tracker() *blocktrack.Tracker { return e.tracker }
