// Package notify contiene los notificadores: consola, email y el fan-out.
package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"

	"github.com/alejandrodnm/pumpbot/internal/domain"
)

// Console implementa ports.Notifier escribiendo a stdout.
type Console struct {
	out        io.Writer
	multiplier decimal.Decimal // para mostrar el target de cada posición
}

// NewConsole crea un notificador de consola.
func NewConsole(profitMultiplier decimal.Decimal) *Console {
	return &Console{out: os.Stdout, multiplier: profitMultiplier}
}

// NewConsoleWriter crea un notificador de consola para tests.
func NewConsoleWriter(w io.Writer, profitMultiplier decimal.Decimal) *Console {
	return &Console{out: w, multiplier: profitMultiplier}
}

// Notify imprime el evento en una línea.
func (c *Console) Notify(_ context.Context, subject, body string) error {
	fmt.Fprintf(c.out, "[%s] %s — %s\n", time.Now().Format("15:04:05"), subject, body)
	return nil
}

// ReportPositions imprime la tabla de posiciones abiertas.
func (c *Console) ReportPositions(_ context.Context, positions []domain.Position) error {
	now := time.Now().Format("15:04:05")
	if len(positions) == 0 {
		fmt.Fprintf(c.out, "[%s] no open positions\n", now)
		return nil
	}

	fmt.Fprintf(c.out, "\n[%s] %d open positions\n", now, len(positions))

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Address", "Entry", "Target", "Amount", "Age")

	for i, pos := range positions {
		table.Append(
			fmt.Sprintf("%d", i+1),
			shortAddr(pos.Address),
			pos.InitialPrice.String(),
			pos.TargetPrice(c.multiplier).String(),
			pos.Amount.String(),
			time.Since(pos.OpenedAt).Round(time.Minute).String(),
		)
	}

	table.Render()
	return nil
}

// shortAddr acorta una dirección para la tabla: 8 + … + 4.
func shortAddr(addr string) string {
	if len(addr) <= 14 {
		return addr
	}
	return addr[:8] + "…" + addr[len(addr)-4:]
}
