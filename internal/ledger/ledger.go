// Package ledger mantiene el conjunto canónico de posiciones abiertas.
//
// Es el único dueño del mapa: el engine y los monitores solo leen/escriben a
// través de esta superficie sincronizada, nunca guardan copias privadas que
// puedan divergir. Invariante: existe una posición en el ledger si y solo si
// hay un monitor activo (o en su transición terminal) para esa dirección.
package ledger

import (
	"sync"

	"github.com/alejandrodnm/pumpbot/internal/domain"
)

// Ledger es el mapa sincronizado dirección → posición abierta.
type Ledger struct {
	mu        sync.RWMutex
	positions map[string]domain.Position
}

// New crea un Ledger vacío.
func New() *Ledger {
	return &Ledger{positions: make(map[string]domain.Position)}
}

// TryInsert inserta la posición si la dirección no tiene una abierta.
// El check de ausencia y el insert son un único paso atómico: bajo N intentos
// concurrentes para la misma dirección exactamente uno devuelve true.
func (l *Ledger) TryInsert(pos domain.Position) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.positions[pos.Address]; exists {
		return false
	}
	l.positions[pos.Address] = pos
	return true
}

// Remove elimina la posición de la dirección dada.
// Devuelve false si no había posición abierta.
func (l *Ledger) Remove(address string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.positions[address]; !exists {
		return false
	}
	delete(l.positions, address)
	return true
}

// Contains devuelve true si hay una posición abierta para la dirección.
func (l *Ledger) Contains(address string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, exists := l.positions[address]
	return exists
}

// Get devuelve la posición abierta para la dirección, si existe.
func (l *Ledger) Get(address string) (domain.Position, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	pos, exists := l.positions[address]
	return pos, exists
}

// Snapshot devuelve una copia de todas las posiciones abiertas.
func (l *Ledger) Snapshot() []domain.Position {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.Position, 0, len(l.positions))
	for _, pos := range l.positions {
		out = append(out, pos)
	}
	return out
}

// Len devuelve el número de posiciones abiertas.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.positions)
}
