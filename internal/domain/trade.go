package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeRecord es la fila de journal de un buy o sell ejecutado.
type TradeRecord struct {
	ID         string // uuid asignado al registrar
	Address    string
	Name       string
	Side       Side
	Price      decimal.Decimal
	Quantity   decimal.Decimal
	Signature  string // confirmación del venue
	ClientID   uint64
	ExecutedAt time.Time
}

// CycleSummary resume un ciclo del discovery loop para el journal.
type CycleSummary struct {
	ScannedAt  time.Time
	Candidates int // candidatos recibidos del feed
	Accepted   int // candidatos que pasaron el screening
	Bought     int // buys ejecutados con éxito
	OpenCount  int // posiciones abiertas al cierre del ciclo
}
