// Package tradingwindow implements the oracle seam (§ Supplemented
// features) that the API layer checks before forwarding an ingested
// block to the engine: a block arriving while the window is closed is
// rejected at the transport boundary, never reaching engine.AddBlock.
package tradingwindow

import (
	"time"

	"blockengine/config"
)

// Window decides whether the engine should accept a block at the given
// index. The engine itself stays pure and wall-clock-free; Window is
// consulted only by the caller driving it.
type Window interface {
	IsOpen(blockIndex uint32) bool
}

// AlwaysOpen never blocks ingestion. It is the default when no window is
// configured.
type AlwaysOpen struct{}

// IsOpen always returns true.
func (AlwaysOpen) IsOpen(blockIndex uint32) bool { return true }

// Clock gates ingestion by wall-clock hour, closing outside
// [OpenHour, CloseHour) in the configured timezone.
type Clock struct {
	openHour, closeHour int
	loc                 *time.Location
	now                 func() time.Time
}

// NewClock builds a Clock from config. Falls back to UTC if the
// configured timezone name cannot be loaded.
func NewClock(cfg config.TradingWindowConfig) *Clock {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil || loc == nil {
		loc = time.UTC
	}
	return &Clock{
		openHour:  cfg.OpenHour,
		closeHour: cfg.CloseHour,
		loc:       loc,
		now:       time.Now,
	}
}

// IsOpen reports whether the current wall-clock hour falls within the
// configured window. blockIndex is accepted to satisfy Window but is not
// used by a clock-based policy.
func (c *Clock) IsOpen(blockIndex uint32) bool {
	hour := c.now().In(c.loc).Hour()
	if c.openHour <= c.closeHour {
		return hour >= c.openHour && hour < c.closeHour
	}
	// window wraps past midnight, e.g. open=22 close=6
	return hour >= c.openHour || hour < c.closeHour
}

// FromConfig returns the configured Window implementation: AlwaysOpen
// when disabled, a Clock otherwise.
func FromConfig(cfg config.TradingWindowConfig) Window {
	if !cfg.Enabled {
		return AlwaysOpen{}
	}
	return NewClock(cfg)
}
