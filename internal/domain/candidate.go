package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Candidate representa un token recién listado en el marketplace.
// Es inmutable una vez obtenido del feed; vive lo que dura un pase de screening.
type Candidate struct {
	Address       string          // dirección del contrato (identidad opaca)
	Name          string          // nombre para mostrar en logs y notificaciones
	LaunchTime    time.Time       // timestamp de lanzamiento según el feed
	MarketCap     decimal.Decimal // capitalización en moneda quote del venue
	HasLiveStream bool            // true si el token tiene promoción por live stream activa
}

// AgeHours devuelve la edad del candidato en horas respecto a now.
func (c Candidate) AgeHours(now time.Time) float64 {
	return now.Sub(c.LaunchTime).Hours()
}
