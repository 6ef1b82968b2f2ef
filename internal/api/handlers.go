package api

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"blockengine/internal/coretypes"
	"blockengine/internal/engine"
	"blockengine/internal/events"
	"blockengine/internal/hierarchy"
	"blockengine/internal/persistence"
)

// decisionLogEntry is one Hierarchy Arbiter decision, kept by the API
// layer since the engine itself only returns the current block's
// decision and doesn't retain history beyond the snapshot ring.
type decisionLogEntry struct {
	BlockIndex uint32             `json:"block_index"`
	Decision   hierarchy.Decision `json:"decision"`
}

const decisionLogLimit = 500

type addBlockRequest struct {
	Direction int     `json:"direction" binding:"required"`
	Magnitude float64 `json:"magnitude" binding:"required"`
}

func (s *Server) handleAddBlock(c *gin.Context) {
	var req addBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	dir, err := coretypes.ParseDirection(req.Direction)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	if s.engine.Halted() {
		s.mu.Unlock()
		errorResponse(c, http.StatusConflict, "engine is halted")
		return
	}

	blockIndex := uint32(s.engine.Tracker().Len())
	if !s.window.IsOpen(blockIndex) {
		s.mu.Unlock()
		errorResponse(c, http.StatusForbidden, "trading window is closed")
		return
	}

	result, err := s.engine.AddBlock(dir, req.Magnitude)
	if err != nil {
		s.mu.Unlock()
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	s.appendDecisionLogLocked(result.Block.Index, result.Decision)
	s.persistBlockLocked(c.Request.Context(), result)
	s.mu.Unlock()

	s.publishBlockEvents(result)
	successResponse(c, result)
}

// persistBlockLocked caches the snapshot just pushed and appends a
// resolved ledger entry to the durable store, when those stores are
// configured. Both are best-effort: a failure here never blocks the
// caller driving the engine, matching the teacher's cache
// degrades-to-off policy.
func (s *Server) persistBlockLocked(ctx context.Context, result engine.BlockResult) {
	if s.redisStore != nil {
		if snap, ok := s.engine.Snapshots().Last(); ok {
			if err := s.redisStore.Put(ctx, snap); err != nil {
				log.Printf("cache snapshot: %v", err)
			}
		}
	}
	if s.pgStore != nil && result.ClosedEntry != nil {
		actual := s.engine.Ledger().Actual()
		isReal := len(actual) > 0 && actual[len(actual)-1].BlockIndex == result.ClosedEntry.BlockIndex
		if err := s.pgStore.AppendEntry(ctx, *result.ClosedEntry, isReal); err != nil {
			log.Printf("append ledger entry: %v", err)
		}
	}
}

func (s *Server) appendDecisionLogLocked(blockIndex uint32, d hierarchy.Decision) {
	s.decisionLog = append(s.decisionLog, decisionLogEntry{BlockIndex: blockIndex, Decision: d})
	if len(s.decisionLog) > decisionLogLimit {
		s.decisionLog = s.decisionLog[len(s.decisionLog)-decisionLogLimit:]
	}
}

func (s *Server) publishBlockEvents(result engine.BlockResult) {
	s.eventBus.Publish(events.Event{
		Type: events.EventBlockIngested,
		Data: map[string]interface{}{"block_index": result.Block.Index, "direction": result.Block.Direction.String(), "magnitude": result.Block.Magnitude},
	})
	for _, r := range result.Results {
		s.eventBus.Publish(events.Event{
			Type: events.EventSignalEvaluated,
			Data: map[string]interface{}{"pattern": r.Pattern.String(), "verdict": r.Verdict.String(), "profit": r.Profit},
		})
	}
	if result.OpenedTrade != nil {
		s.eventBus.Publish(events.Event{
			Type: events.EventTradeOpened,
			Data: map[string]interface{}{"source": result.OpenedTrade.Source.String(), "is_real": result.OpenedTrade.IsReal},
		})
	}
	if result.ClosedEntry != nil {
		s.eventBus.Publish(events.Event{
			Type: events.EventTradeClosed,
			Data: map[string]interface{}{"pattern": result.ClosedEntry.Pattern.String(), "pnl": result.ClosedEntry.PnL},
		})
	}
	if result.IsLocked {
		s.eventBus.Publish(events.Event{Type: events.EventHostilityLocked, Data: nil})
	}
}

func (s *Server) handleUndo(c *gin.Context) {
	s.mu.Lock()
	block, ok := s.engine.UndoLastBlock()
	if ok && len(s.decisionLog) > 0 {
		s.decisionLog = s.decisionLog[:len(s.decisionLog)-1]
	}
	s.mu.Unlock()

	if !ok {
		successResponse(c, gin.H{"undone": false})
		return
	}
	s.eventBus.Publish(events.Event{
		Type: events.EventUndoPerformed,
		Data: map[string]interface{}{"block_index": block.Index},
	})
	successResponse(c, gin.H{"undone": true, "block": block})
}

func (s *Server) handleReset(c *gin.Context) {
	s.mu.Lock()
	s.engine.Reset()
	s.decisionLog = nil
	s.mu.Unlock()
	successResponse(c, gin.H{"reset": true})
}

// handleGetPrediction returns the hierarchy's decision from the most
// recently ingested block, without ingesting a new one.
func (s *Server) handleGetPrediction(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.decisionLog) == 0 {
		successResponse(c, gin.H{"decision": nil})
		return
	}
	successResponse(c, s.decisionLog[len(s.decisionLog)-1].Decision)
}

func (s *Server) handleGetDecisionLog(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	successResponse(c, s.decisionLog)
}

func (s *Server) handleGetLedgerActual(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	successResponse(c, s.engine.Ledger().Actual())
}

func (s *Server) handleGetLedgerSimulated(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	successResponse(c, s.engine.Ledger().Simulated())
}

func (s *Server) handleGetHostility(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	successResponse(c, s.engine.Hostility().State())
}

func (s *Server) handleGetPause(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	successResponse(c, s.engine.Pause().State())
}

func (s *Server) handleGetPatternLifecycle(c *gin.Context) {
	pattern, ok := parsePatternParam(c.Param("pattern"))
	if !ok {
		errorResponse(c, http.StatusBadRequest, "unknown pattern")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	successResponse(c, s.engine.Lifecycle().Cycle(pattern))
}

func (s *Server) handleGetPocket(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	successResponse(c, gin.H{
		"zz":      s.engine.ZZ().State(),
		"samedir": s.engine.SameDir().State(),
	})
}

func (s *Server) handleGetBucket(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	successResponse(c, s.engine.Bucket().All())
}

func (s *Server) handleGetSnapshots(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	successResponse(c, s.engine.Snapshots().All())
}

func (s *Server) handleGetStats(c *gin.Context) {
	s.mu.Lock()
	record, ok := persistence.Export(s.engine)
	s.mu.Unlock()

	if !ok {
		successResponse(c, persistence.AggregateStats{})
		return
	}
	stats := persistence.ComputeAggregateStats(record)

	if s.pgStore != nil {
		if durable, err := s.pgStore.PatternPnL(c.Request.Context()); err == nil {
			successResponse(c, gin.H{"in_memory": stats, "durable_pattern_pnl": durable})
			return
		}
	}
	successResponse(c, stats)
}

func (s *Server) handleExportState(c *gin.Context) {
	s.mu.Lock()
	record, ok := persistence.Export(s.engine)
	s.mu.Unlock()

	if !ok {
		errorResponse(c, http.StatusNotFound, "no snapshot captured yet")
		return
	}

	resp := gin.H{"record": record}
	if s.authEnabled {
		if token, err := persistence.SignExport(s.authService.GetJWTManager(), record); err == nil {
			resp["signature"] = token
		}
	}
	successResponse(c, resp)
}

func parsePatternParam(raw string) (coretypes.PatternID, bool) {
	raw = strings.ToUpper(raw)
	for _, p := range coretypes.AllPatterns() {
		if p.String() == raw {
			return p, true
		}
	}
	if n, err := strconv.Atoi(raw); err == nil {
		p := coretypes.PatternID(n)
		if p.Valid() {
			return p, true
		}
	}
	return 0, false
}
