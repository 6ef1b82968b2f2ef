// Package persistence implements the versioned state record export and
// the optional durable backing stores described by the engine's
// persistence surface: a Redis-backed snapshot ring and a Postgres-backed
// ledger append log, grounded on the teacher's internal/database and
// internal/cache packages.
package persistence

import (
	"blockengine/internal/engine"
	"blockengine/internal/ledger"
	"blockengine/internal/snapshot"
)

// RecordVersion identifies the wire shape of an exported state record.
const RecordVersion = 1

// StateRecordV1 is the versioned, stable-field-order export of one
// engine snapshot plus the ledger entries resolved up to that block.
// Field order is fixed by declaration order, which encoding/json
// preserves on Marshal; wire encoding itself (the exact bytes on disk or
// over the network) is an excluded external collaborator per the spec's
// persistence boundary.
type StateRecordV1 struct {
	Version    int               `json:"version"`
	BlockIndex uint32            `json:"block_index"`
	Snapshot   snapshot.Snapshot `json:"snapshot"`
	Actual     []ledger.Entry    `json:"actual_ledger"`
	Simulated  []ledger.Entry    `json:"simulated_ledger"`
}

// Export builds a StateRecordV1 from the engine's current state,
// capturing the latest snapshot taken by Engine.AddBlock along with the
// full ledger history.
func Export(e *engine.Engine) (StateRecordV1, bool) {
	last, ok := e.Snapshots().Last()
	if !ok {
		return StateRecordV1{}, false
	}
	return StateRecordV1{
		Version:    RecordVersion,
		BlockIndex: last.BlockIndex,
		Snapshot:   last,
		Actual:     e.Ledger().Actual(),
		Simulated:  e.Ledger().Simulated(),
	}, true
}

// AggregateStats is the aggregate stats view: per-pattern rollups plus
// headline totals, computed from a StateRecordV1 rather than requiring a
// live engine handle.
type AggregateStats struct {
	ByPattern             []ledger.PatternRollup `json:"by_pattern"`
	ActualPnL             float64                `json:"actual_pnl"`
	SimulatedPnL          float64                `json:"simulated_pnl"`
	BlocksProcessed       uint32                 `json:"blocks_processed"`
	CurrentHostilityScore float64                `json:"current_hostility_score"`
}

// ComputeAggregateStats derives AggregateStats from a StateRecordV1.
func ComputeAggregateStats(r StateRecordV1) AggregateStats {
	var actualPnL, simulatedPnL float64
	for _, e := range r.Actual {
		actualPnL += e.PnL
	}
	for _, e := range r.Simulated {
		simulatedPnL += e.PnL
	}

	rollup := ledger.RollupByPattern(r.Actual, 0, r.BlockIndex)

	return AggregateStats{
		ByPattern:             rollup,
		ActualPnL:             actualPnL,
		SimulatedPnL:          simulatedPnL,
		BlocksProcessed:       r.BlockIndex + 1,
		CurrentHostilityScore: r.Snapshot.Hostility.Score,
	}
}
