package engine

import (
	"sync/atomic"
	"time"
)

// ClientIDGenerator produce identificadores de orden únicos por proceso.
// Sembrado con el reloj y estrictamente monotónico después, es libre de
// colisiones bajo uso concurrente y entre reinicios del proceso, evitando
// choques de idempotencia del lado del venue.
type ClientIDGenerator struct {
	last atomic.Uint64
}

// NewClientIDGenerator crea un generador sembrado con el timestamp actual.
func NewClientIDGenerator() *ClientIDGenerator {
	g := &ClientIDGenerator{}
	g.last.Store(uint64(time.Now().UnixNano()))
	return g
}

// Next devuelve el siguiente identificador único.
func (g *ClientIDGenerator) Next() uint64 {
	return g.last.Add(1)
}
