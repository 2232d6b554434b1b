package ports

import "context"

// RiskChecker consulta el servicio externo de risk-scoring.
type RiskChecker interface {
	// IsSafe devuelve true si el token no está marcado como riesgoso.
	// Un error del servicio se trata como no-seguro (fail-closed) en el screener.
	IsSafe(ctx context.Context, address string) (bool, error)
}
