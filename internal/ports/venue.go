package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/alejandrodnm/pumpbot/internal/domain"
)

// Venue es la conexión al order book y a la ejecución de órdenes del marketplace.
// Las operaciones son independientes por llamada: el cliente no guarda estado
// mutable compartido entre llamadas.
type Venue interface {
	// TopBid devuelve el mejor bid del book. ok es false si el book está vacío.
	TopBid(ctx context.Context) (price decimal.Decimal, ok bool, err error)

	// TopAsk devuelve el mejor ask del book. ok es false si el book está vacío.
	TopAsk(ctx context.Context) (price decimal.Decimal, ok bool, err error)

	// SubmitOrder firma y envía una orden límite al venue.
	SubmitOrder(ctx context.Context, order domain.Order) (domain.Fill, error)
}
