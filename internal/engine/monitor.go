package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alejandrodnm/pumpbot/internal/domain"
	"github.com/alejandrodnm/pumpbot/internal/metrics"
	"github.com/alejandrodnm/pumpbot/internal/ports"
)

// monitorState is the per-position state machine:
// Watching → Selling → Closed, with Errored as a transient detour back to
// Watching after a backoff.
type monitorState int

const (
	stateWatching monitorState = iota
	stateErrored
	stateSelling
	stateClosed
)

func (s monitorState) String() string {
	switch s {
	case stateWatching:
		return "watching"
	case stateErrored:
		return "errored"
	case stateSelling:
		return "selling"
	case stateClosed:
		return "closed"
	}
	return "unknown"
}

// MonitorConfig holds the polling timings.
type MonitorConfig struct {
	// PollInterval is the wait between price checks while watching.
	PollInterval time.Duration
	// ErrorBackoff is the wait after a failed or empty book read.
	ErrorBackoff time.Duration
}

// DefaultMonitorConfig returns the production timings: 5 minute poll,
// 5 minute backoff.
func DefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		PollInterval: 5 * time.Minute,
		ErrorBackoff: 5 * time.Minute,
	}
}

// Monitor watches one open position until its profit target is hit.
// It is seeded once at spawn with the position read from the ledger; the
// position is not re-read per tick.
type Monitor struct {
	engine *Engine
	venue  ports.Venue
	pos    domain.Position
	cfg    MonitorConfig
}

// NewMonitor creates a monitor for the given position.
func NewMonitor(eng *Engine, venue ports.Venue, pos domain.Position, cfg MonitorConfig) *Monitor {
	return &Monitor{engine: eng, venue: venue, pos: pos, cfg: cfg}
}

// Run drives the state machine until the monitor closes or ctx is cancelled.
// It runs indefinitely on persistent no-liquidity; context cancellation is the
// only external stop. Exactly one sell attempt is made: whatever its outcome,
// the monitor terminates. A failed sell therefore leaves the ledger entry
// without a watcher — logged as an orphaned position on exit.
func (m *Monitor) Run(ctx context.Context) {
	target := m.pos.TargetPrice(m.engine.cfg.ProfitMultiplier)

	slog.Info("monitor: watching position",
		"address", m.pos.Address,
		"initial_price", m.pos.InitialPrice,
		"amount", m.pos.Amount,
		"target", target,
	)
	metrics.MonitorsActive.Inc()
	defer metrics.MonitorsActive.Dec()

	st := stateWatching
	for st != stateClosed {
		if ctx.Err() != nil {
			slog.Info("monitor: cancelled", "address", m.pos.Address, "state", st)
			return
		}

		switch st {
		case stateWatching:
			st = m.tick(ctx, target)

		case stateErrored:
			if !sleepCtx(ctx, m.cfg.ErrorBackoff) {
				return
			}
			st = stateWatching

		case stateSelling:
			m.sellOnce(ctx)
			st = stateClosed
		}
	}

	// Una cancelación durante el sleep de watching también sale por aquí:
	// no es una posición huérfana, es el shutdown.
	if ctx.Err() != nil {
		slog.Info("monitor: cancelled", "address", m.pos.Address, "state", st)
		return
	}

	if m.engine.book.Contains(m.pos.Address) {
		slog.Warn("monitor: closed with position still open (orphaned)",
			"address", m.pos.Address)
	}
	slog.Info("monitor: closed", "address", m.pos.Address)
}

// tick reads the top ask once and decides the next state.
func (m *Monitor) tick(ctx context.Context, target decimal.Decimal) monitorState {
	price, ok, err := m.venue.TopAsk(ctx)
	if err != nil {
		slog.Warn("monitor: price read failed, backing off",
			"address", m.pos.Address, "err", err)
		return stateErrored
	}
	if !ok {
		slog.Warn("monitor: no asks available, backing off",
			"address", m.pos.Address)
		return stateErrored
	}

	slog.Debug("monitor: price check",
		"address", m.pos.Address, "price", price, "target", target)

	// Inclusive trigger: price == target sells.
	if price.GreaterThanOrEqual(target) {
		slog.Info("monitor: profit target reached",
			"address", m.pos.Address, "price", price, "target", target)
		return stateSelling
	}

	if !sleepCtx(ctx, m.cfg.PollInterval) {
		return stateClosed
	}
	return stateWatching
}

// sellOnce performs the single sell attempt of the monitor's lifetime.
func (m *Monitor) sellOnce(ctx context.Context) {
	_, err := m.engine.Sell(ctx, m.pos.Address, m.pos)
	switch {
	case err == nil:
		metrics.PositionsClosed.Inc()
	case errors.Is(err, ErrBelowTarget):
		// Price slipped between tick and sell. Still one attempt only.
		slog.Info("monitor: ask moved below target before sell",
			"address", m.pos.Address)
	default:
		slog.Error("monitor: sell failed", "address", m.pos.Address, "err", err)
	}
}

// sleepCtx waits for d or until ctx is done. Returns false on cancellation.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
