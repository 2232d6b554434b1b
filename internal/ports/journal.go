package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/pumpbot/internal/domain"
)

// TradeJournal persiste el historial de ciclos y trades ejecutados.
// Es observacional: el ledger en memoria sigue siendo la fuente autoritativa
// de posiciones abiertas, y un fallo del journal nunca falla un trade.
type TradeJournal interface {
	// SaveCycle persiste el resumen de un ciclo de discovery.
	SaveCycle(ctx context.Context, summary domain.CycleSummary) error

	// SaveTrade persiste un buy o sell ejecutado.
	SaveTrade(ctx context.Context, trade domain.TradeRecord) error

	// GetTradeHistory devuelve los trades registrados en el rango de tiempo dado.
	GetTradeHistory(ctx context.Context, from, to time.Time) ([]domain.TradeRecord, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
