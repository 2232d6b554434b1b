// Package engine ejecuta buys y sells con cotas de slippage contra el venue,
// manteniendo el ledger consistente con las órdenes aceptadas.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/alejandrodnm/pumpbot/internal/domain"
	"github.com/alejandrodnm/pumpbot/internal/ledger"
	"github.com/alejandrodnm/pumpbot/internal/metrics"
	"github.com/alejandrodnm/pumpbot/internal/ports"
)

var (
	// ErrNoLiquidity indica que el lado relevante del book está vacío.
	ErrNoLiquidity = errors.New("no liquidity in order book")

	// ErrAlreadyHeld indica que ya existe una posición abierta para la dirección.
	ErrAlreadyHeld = errors.New("position already open for address")

	// ErrBelowTarget es la decisión negativa de un sell: el ask aún no alcanza
	// el precio objetivo. No es un fallo — el caller debe tratarlo como "todavía no".
	ErrBelowTarget = errors.New("ask below target price")
)

// Config contiene los parámetros de ejecución.
type Config struct {
	// SlippagePct es la tolerancia de slippage en porcentaje (1 = 1%).
	SlippagePct decimal.Decimal
	// ProfitMultiplier es el ratio precio objetivo / precio de entrada.
	ProfitMultiplier decimal.Decimal
}

// DefaultConfig devuelve los parámetros de producción: 1% slippage, 5x target.
func DefaultConfig() Config {
	return Config{
		SlippagePct:      decimal.NewFromInt(1),
		ProfitMultiplier: decimal.NewFromInt(5),
	}
}

// Engine ejecuta órdenes contra el venue y actualiza el ledger.
type Engine struct {
	venue    ports.Venue
	book     *ledger.Ledger
	journal  ports.TradeJournal
	notifier ports.Notifier
	ids      *ClientIDGenerator
	cfg      Config
}

// New crea un Engine con todas las dependencias inyectadas.
// journal puede ser nil (modo dry-run / tests).
func New(venue ports.Venue, book *ledger.Ledger, journal ports.TradeJournal, notifier ports.Notifier, cfg Config) *Engine {
	return &Engine{
		venue:    venue,
		book:     book,
		journal:  journal,
		notifier: notifier,
		ids:      NewClientIDGenerator(),
		cfg:      cfg,
	}
}

// Buy compra el candidato gastando budget al mejor bid actual.
//
// La reserva en el ledger ES la exclusión mutua del guard de duplicados:
// TryInsert antes del submit garantiza que bajo N buys concurrentes para la
// misma dirección exactamente uno llega al venue, y que nunca hay una orden
// viva sin entrada en el ledger. Si el submit falla, la reserva se revierte y
// el ledger queda como estaba.
func (e *Engine) Buy(ctx context.Context, c domain.Candidate, budget decimal.Decimal) (domain.Fill, error) {
	if e.book.Contains(c.Address) {
		return domain.Fill{}, fmt.Errorf("engine.Buy %s: %w", c.Address, ErrAlreadyHeld)
	}

	price, ok, err := e.venue.TopBid(ctx)
	if err != nil {
		return domain.Fill{}, fmt.Errorf("engine.Buy %s: read top bid: %w", c.Address, err)
	}
	if !ok {
		return domain.Fill{}, fmt.Errorf("engine.Buy %s: %w", c.Address, ErrNoLiquidity)
	}
	if !price.IsPositive() {
		// Un bid de 0 del gateway es un book degenerado, no un precio operable.
		return domain.Fill{}, fmt.Errorf("engine.Buy %s: non-positive top bid %s: %w",
			c.Address, price, ErrNoLiquidity)
	}

	quantity := domain.TruncateForVenue(budget.Div(price))
	minQuantity := domain.MinQuantityAfterSlippage(quantity, e.cfg.SlippagePct)

	order := domain.Order{
		Side:        domain.SideBuy,
		Price:       price,
		Quantity:    quantity,
		MinQuantity: minQuantity,
		ClientID:    e.ids.Next(),
	}

	pos := domain.Position{
		Address:      c.Address,
		InitialPrice: price,
		Amount:       quantity,
		OpenedAt:     time.Now().UTC(),
	}
	if !e.book.TryInsert(pos) {
		return domain.Fill{}, fmt.Errorf("engine.Buy %s: %w", c.Address, ErrAlreadyHeld)
	}

	slog.Info("engine: buying",
		"token", c.Name,
		"price", price,
		"quantity", quantity,
		"min_quantity", minQuantity,
		"client_id", order.ClientID,
	)

	fill, err := e.venue.SubmitOrder(ctx, order)
	if err != nil {
		e.book.Remove(c.Address)
		e.notify(ctx, fmt.Sprintf("Buy failed for %s", c.Name),
			fmt.Sprintf("Failed to purchase %s. Error: %v", c.Name, err))
		return domain.Fill{}, fmt.Errorf("engine.Buy %s: submit order: %w", c.Address, err)
	}

	metrics.OrdersPlaced.WithLabelValues(string(domain.SideBuy)).Inc()
	metrics.OpenPositions.Set(float64(e.book.Len()))

	e.record(ctx, c.Address, c.Name, order, fill)
	e.notify(ctx, fmt.Sprintf("Bought %s", c.Name),
		fmt.Sprintf("Purchased %s %s at %s each. Transaction Signature: %s",
			quantity, c.Name, price, fill.Signature))

	return fill, nil
}

// Sell liquida la posición completa si el ask actual alcanzó el precio objetivo.
//
// Devuelve ErrBelowTarget (decisión, no fallo) si el ask está por debajo de
// initial × multiplier. En cualquier fallo de venue la entrada del ledger se
// conserva intacta para permitir un retry posterior; solo una aceptación
// elimina la posición.
func (e *Engine) Sell(ctx context.Context, address string, pos domain.Position) (domain.Fill, error) {
	target := pos.TargetPrice(e.cfg.ProfitMultiplier)

	price, ok, err := e.venue.TopAsk(ctx)
	if err != nil {
		return domain.Fill{}, fmt.Errorf("engine.Sell %s: read top ask: %w", address, err)
	}
	if !ok {
		return domain.Fill{}, fmt.Errorf("engine.Sell %s: %w", address, ErrNoLiquidity)
	}
	if !price.IsPositive() {
		return domain.Fill{}, fmt.Errorf("engine.Sell %s: non-positive top ask %s: %w",
			address, price, ErrNoLiquidity)
	}
	if price.LessThan(target) {
		return domain.Fill{}, fmt.Errorf("engine.Sell %s: ask %s target %s: %w",
			address, price, target, ErrBelowTarget)
	}

	amount := domain.TruncateForVenue(pos.Amount)
	minProceeds := domain.MinProceedsAfterSlippage(price, amount, e.cfg.SlippagePct)

	order := domain.Order{
		Side:        domain.SideSell,
		Price:       price,
		Quantity:    amount,
		MinProceeds: minProceeds,
		ClientID:    e.ids.Next(),
	}

	slog.Info("engine: selling",
		"address", address,
		"price", price,
		"target", target,
		"amount", amount,
		"min_proceeds", minProceeds,
		"client_id", order.ClientID,
	)

	fill, err := e.venue.SubmitOrder(ctx, order)
	if err != nil {
		e.notify(ctx, fmt.Sprintf("Sell failed for %s", address),
			fmt.Sprintf("Failed to sell %s. Error: %v", address, err))
		return domain.Fill{}, fmt.Errorf("engine.Sell %s: submit order: %w", address, err)
	}

	e.book.Remove(address)
	metrics.OrdersPlaced.WithLabelValues(string(domain.SideSell)).Inc()
	metrics.OpenPositions.Set(float64(e.book.Len()))

	e.record(ctx, address, address, order, fill)
	e.notify(ctx, fmt.Sprintf("Sold %s", address),
		fmt.Sprintf("Sold %s at %s each. Transaction Signature: %s",
			amount, price, fill.Signature))

	return fill, nil
}

// record persiste el trade en el journal. Best-effort: un fallo se loguea y no
// interrumpe el flujo.
func (e *Engine) record(ctx context.Context, address, name string, order domain.Order, fill domain.Fill) {
	if e.journal == nil {
		return
	}
	trade := domain.TradeRecord{
		ID:         uuid.New().String(),
		Address:    address,
		Name:       name,
		Side:       order.Side,
		Price:      order.Price,
		Quantity:   order.Quantity,
		Signature:  fill.Signature,
		ClientID:   order.ClientID,
		ExecutedAt: time.Now().UTC(),
	}
	if err := e.journal.SaveTrade(ctx, trade); err != nil {
		slog.Warn("engine: journal error", "address", address, "err", err)
	}
}

// notify entrega la notificación best-effort.
func (e *Engine) notify(ctx context.Context, subject, body string) {
	if e.notifier == nil {
		return
	}
	if err := e.notifier.Notify(ctx, subject, body); err != nil {
		slog.Warn("engine: notifier error", "subject", subject, "err", err)
	}
}
