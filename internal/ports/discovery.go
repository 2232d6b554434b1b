package ports

import (
	"context"

	"github.com/alejandrodnm/pumpbot/internal/domain"
)

// CandidateProvider obtiene los tokens recién listados desde el feed de discovery.
type CandidateProvider interface {
	// FetchCandidates devuelve los candidatos del ciclo actual.
	// Puede devolver una lista vacía; un error se trata como ciclo vacío.
	FetchCandidates(ctx context.Context) ([]domain.Candidate, error)
}
