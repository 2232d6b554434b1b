// Package bot contiene el discovery loop: el orquestador que descubre
// candidatos, los pasa por el screener, compra los elegibles y lanza un
// monitor por posición abierta.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alejandrodnm/pumpbot/internal/domain"
	"github.com/alejandrodnm/pumpbot/internal/engine"
	"github.com/alejandrodnm/pumpbot/internal/ledger"
	"github.com/alejandrodnm/pumpbot/internal/metrics"
	"github.com/alejandrodnm/pumpbot/internal/ports"
	"github.com/alejandrodnm/pumpbot/internal/screener"
)

// Config controla el comportamiento del loop.
type Config struct {
	// ScanInterval es el periodo entre ciclos de discovery.
	ScanInterval time.Duration
	// BuyBudget es el gasto fijo por compra, en moneda quote.
	BuyBudget decimal.Decimal
	// Monitor son los timings de los monitores de posición.
	Monitor engine.MonitorConfig
	// DryRun evalúa candidatos sin enviar órdenes. Once ejecuta un solo ciclo.
	DryRun bool
	Once   bool
}

// DefaultConfig devuelve la configuración de producción: ciclo de 10 minutos,
// presupuesto 0.01 por compra.
func DefaultConfig() Config {
	return Config{
		ScanInterval: 10 * time.Minute,
		BuyBudget:    decimal.NewFromFloat(0.01),
		Monitor:      engine.DefaultMonitorConfig(),
	}
}

// Bot es el orquestador principal.
type Bot struct {
	cfg      Config
	feed     ports.CandidateProvider
	screen   *screener.Screener
	exec     *engine.Engine
	book     *ledger.Ledger
	venue    ports.Venue
	notifier ports.Notifier
	journal  ports.TradeJournal

	monitors sync.WaitGroup
}

// New crea un Bot con todas las dependencias inyectadas.
// journal y notifier pueden ser nil.
func New(
	cfg Config,
	feed ports.CandidateProvider,
	screen *screener.Screener,
	exec *engine.Engine,
	book *ledger.Ledger,
	venue ports.Venue,
	notifier ports.Notifier,
	journal ports.TradeJournal,
) *Bot {
	return &Bot{
		cfg:      cfg,
		feed:     feed,
		screen:   screen,
		exec:     exec,
		book:     book,
		venue:    venue,
		notifier: notifier,
		journal:  journal,
	}
}

// Run ejecuta el discovery loop hasta que el contexto se cancele.
// Un fallo dentro de un ciclo se loguea/notifica y el loop continúa con el
// siguiente periodo; nunca se propaga hacia afuera.
func (b *Bot) Run(ctx context.Context) error {
	slog.Info("bot: discovery loop starting",
		"interval", b.cfg.ScanInterval,
		"budget", b.cfg.BuyBudget,
		"dry_run", b.cfg.DryRun,
	)

	b.runCycle(ctx)

	if b.cfg.Once {
		b.monitors.Wait()
		return nil
	}

	ticker := time.NewTicker(b.cfg.ScanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("bot: discovery loop stopped, waiting for monitors")
			b.monitors.Wait()
			return nil
		case <-ticker.C:
			b.runCycle(ctx)
		}
	}
}

// runCycle ejecuta un ciclo completo: fetch → screen → buy → spawn monitor.
func (b *Bot) runCycle(ctx context.Context) {
	start := time.Now()

	candidates, err := b.feed.FetchCandidates(ctx)
	if err != nil {
		// Fallo del feed = ciclo vacío, nunca fatal.
		slog.Warn("bot: discovery fetch failed, skipping cycle", "err", err)
		b.notify(ctx, "Bot error", fmt.Sprintf("Discovery fetch failed: %v", err))
		candidates = nil
	}

	var stats screener.Stats
	summary := domain.CycleSummary{
		ScannedAt:  start.UTC(),
		Candidates: len(candidates),
	}

	for _, c := range candidates {
		decision := b.screen.Evaluate(ctx, c)
		if !decision.Accepted {
			stats.Record(decision.Reason)
			metrics.ScreeningRejects.WithLabelValues(decision.Reason.String()).Inc()
			continue
		}
		summary.Accepted++

		if b.cfg.DryRun {
			slog.Info("bot: dry-run, would buy", "token", c.Name, "address", c.Address)
			continue
		}

		if err := b.buyAndWatch(ctx, c); err != nil {
			continue
		}
		summary.Bought++
	}

	summary.OpenCount = b.book.Len()
	b.saveCycle(ctx, summary)

	if b.notifier != nil {
		if err := b.notifier.ReportPositions(ctx, b.book.Snapshot()); err != nil {
			slog.Warn("bot: position report error", "err", err)
		}
	}

	elapsed := time.Since(start)
	metrics.CycleDuration.Observe(elapsed.Seconds())
	attrs := append([]any{
		"candidates", summary.Candidates,
		"accepted", summary.Accepted,
		"bought", summary.Bought,
		"open_positions", summary.OpenCount,
		"duration", elapsed.Round(time.Millisecond),
	}, stats.Attrs()...)
	slog.Info("bot: cycle complete", attrs...)
}

// buyAndWatch compra el candidato y lanza su monitor.
// El monitor se siembra con la posición leída del ledger en el spawn, una sola vez.
func (b *Bot) buyAndWatch(ctx context.Context, c domain.Candidate) error {
	if _, err := b.exec.Buy(ctx, c, b.cfg.BuyBudget); err != nil {
		if errors.Is(err, engine.ErrAlreadyHeld) {
			slog.Debug("bot: already holding, skipping buy", "address", c.Address)
		} else {
			slog.Warn("bot: buy failed", "token", c.Name, "err", err)
		}
		return err
	}

	pos, ok := b.book.Get(c.Address)
	if !ok {
		// El sell del monitor pudo haber cerrado ya la posición; nada que vigilar.
		slog.Warn("bot: position missing right after buy", "address", c.Address)
		return nil
	}

	mon := engine.NewMonitor(b.exec, b.venue, pos, b.cfg.Monitor)
	b.monitors.Add(1)
	go func() {
		defer b.monitors.Done()
		mon.Run(ctx)
	}()
	return nil
}

// saveCycle persiste el resumen del ciclo. Best-effort.
func (b *Bot) saveCycle(ctx context.Context, summary domain.CycleSummary) {
	if b.journal == nil {
		return
	}
	if err := b.journal.SaveCycle(ctx, summary); err != nil {
		slog.Warn("bot: journal error", "err", err)
	}
}

// notify entrega la notificación best-effort.
func (b *Bot) notify(ctx context.Context, subject, body string) {
	if b.notifier == nil {
		return
	}
	if err := b.notifier.Notify(ctx, subject, body); err != nil {
		slog.Warn("bot: notifier error", "subject", subject, "err", err)
	}
}
