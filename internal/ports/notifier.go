package ports

import (
	"context"

	"github.com/alejandrodnm/pumpbot/internal/domain"
)

// Notifier entrega notificaciones al operador. Best-effort: los fallos se
// loguean en el call site y nunca interrumpen el flujo de trading.
type Notifier interface {
	// Notify entrega un evento puntual (buy, sell, fallo).
	Notify(ctx context.Context, subject, body string) error

	// ReportPositions presenta el estado de las posiciones abiertas al cierre
	// de cada ciclo. Las implementaciones sin presentación lo ignoran.
	ReportPositions(ctx context.Context, positions []domain.Position) error
}
