// Package screener decide la elegibilidad de candidatos recién listados.
//
// La pipeline aplica los criterios en orden fijo y corta en el primer fallo.
// Los checks contra colaboradores externos (risk, social) son fail-closed:
// un error del servicio cuenta como rechazo, nunca como aprobación.
package screener

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alejandrodnm/pumpbot/internal/domain"
	"github.com/alejandrodnm/pumpbot/internal/ports"
)

// Config contiene las ventanas de elegibilidad.
type Config struct {
	// MinAgeHours y MaxAgeHours delimitan (inclusive) la edad aceptable del token.
	MinAgeHours float64
	MaxAgeHours float64
	// MinMarketCap y MaxMarketCap delimitan (inclusive) la capitalización aceptable.
	MinMarketCap decimal.Decimal
	MaxMarketCap decimal.Decimal
}

// DefaultConfig devuelve las ventanas de producción: 5–10h de edad,
// 5000–10000 de market cap.
func DefaultConfig() Config {
	return Config{
		MinAgeHours:  5,
		MaxAgeHours:  10,
		MinMarketCap: decimal.NewFromInt(5000),
		MaxMarketCap: decimal.NewFromInt(10000),
	}
}

// PositionSet es la vista del ledger que necesita el screener: solo el
// check de duplicados.
type PositionSet interface {
	Contains(address string) bool
}

// Screener ejecuta la pipeline de elegibilidad.
type Screener struct {
	cfg    Config
	risk   ports.RiskChecker
	social ports.SocialProvider
	open   PositionSet
	now    func() time.Time
}

// New crea un Screener con todas las dependencias inyectadas.
func New(cfg Config, risk ports.RiskChecker, social ports.SocialProvider, open PositionSet) *Screener {
	return &Screener{
		cfg:    cfg,
		risk:   risk,
		social: social,
		open:   open,
		now:    time.Now,
	}
}

// WithNow fija la fuente de tiempo del screener. Para tests.
func (s *Screener) WithNow(now func() time.Time) *Screener {
	s.now = now
	return s
}

// Decision es el resultado de evaluar un candidato.
type Decision struct {
	Accepted bool
	Reason   RejectReason // válido solo si !Accepted
}

// Evaluate aplica la pipeline completa sobre un candidato.
// Sin efectos secundarios más allá del log estructurado del motivo de rechazo.
func (s *Screener) Evaluate(ctx context.Context, c domain.Candidate) Decision {
	if reason, rejected := s.check(ctx, c); rejected {
		slog.Info("screener: reject",
			"token", c.Name,
			"address", c.Address,
			"reason", reason.String(),
		)
		return Decision{Reason: reason}
	}
	return Decision{Accepted: true}
}

// check recorre los criterios en orden y devuelve el primer motivo de rechazo.
func (s *Screener) check(ctx context.Context, c domain.Candidate) (RejectReason, bool) {
	age := c.AgeHours(s.now())
	if age < s.cfg.MinAgeHours || age > s.cfg.MaxAgeHours {
		return RejectAgeOutOfWindow, true
	}

	if c.MarketCap.LessThan(s.cfg.MinMarketCap) || c.MarketCap.GreaterThan(s.cfg.MaxMarketCap) {
		return RejectMarketCapOutOfWindow, true
	}

	if c.HasLiveStream {
		return RejectLiveStream, true
	}

	safe, err := s.risk.IsSafe(ctx, c.Address)
	if err != nil {
		slog.Warn("screener: risk check failed, treating as unsafe",
			"address", c.Address, "err", err)
		return RejectRiskUnsafe, true
	}
	if !safe {
		return RejectRiskUnsafe, true
	}

	accounts, err := s.social.AccountCount(ctx, c.Address)
	if err != nil {
		slog.Warn("screener: social check failed, treating as zero accounts",
			"address", c.Address, "err", err)
		return RejectNoSocialPresence, true
	}
	if accounts == 0 {
		return RejectNoSocialPresence, true
	}

	if s.open.Contains(c.Address) {
		return RejectAlreadyHeld, true
	}

	return 0, false
}
