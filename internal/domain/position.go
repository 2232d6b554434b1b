package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position es una posición abierta en el ledger.
// Se crea con un buy exitoso y solo se elimina con el sell que la cierra;
// nunca se actualiza parcialmente.
type Position struct {
	Address      string          // dirección del token (clave única del ledger)
	InitialPrice decimal.Decimal // precio de fill del buy, > 0
	Amount       decimal.Decimal // cantidad de tokens en cartera, > 0
	OpenedAt     time.Time
}

// TargetPrice devuelve el precio objetivo de venta: InitialPrice × multiplier.
func (p Position) TargetPrice(multiplier decimal.Decimal) decimal.Decimal {
	return p.InitialPrice.Mul(multiplier)
}

// Side es el lado de una orden.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Order describe una orden límite lista para enviar al venue.
// MinQuantity y MinProceeds son cotas advisory de slippage: el venue es
// responsable de rechazar fills por debajo de ellas, el engine no las
// re-verifica.
type Order struct {
	Side        Side
	Price       decimal.Decimal // precio límite (top-of-book al momento de crear la orden)
	Quantity    decimal.Decimal // cantidad objetivo, ya truncada para el venue
	MinQuantity decimal.Decimal // buy: cantidad mínima aceptable tras slippage
	MinProceeds decimal.Decimal // sell: proceeds mínimos aceptables tras slippage
	ClientID    uint64          // identificador único asignado por el cliente
}

// Fill es la confirmación de una orden aceptada por el venue.
type Fill struct {
	Signature string          // firma/hash de la transacción en el venue
	Price     decimal.Decimal // precio límite de la orden aceptada
	Quantity  decimal.Decimal // cantidad enviada
}
