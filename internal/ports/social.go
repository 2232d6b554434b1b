package ports

import "context"

// SocialProvider consulta la presencia social de un token.
type SocialProvider interface {
	// AccountCount devuelve el número de cuentas sociales vinculadas al token.
	// Un error del servicio se trata como cero cuentas (fail-closed) en el screener.
	AccountCount(ctx context.Context, address string) (int, error)
}
