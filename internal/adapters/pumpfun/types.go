package pumpfun

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alejandrodnm/pumpbot/internal/domain"
)

// coinPayload es la fila del endpoint de listados.
type coinPayload struct {
	Mint             string  `json:"mint"`
	Name             string  `json:"name"`
	CreatedTimestamp int64   `json:"created_timestamp"` // epoch millis
	USDMarketCap     float64 `json:"usd_market_cap"`
	IsCurrentlyLive  bool    `json:"is_currently_live"`
}

// toDomain mapea el payload del feed al tipo de dominio.
func (p coinPayload) toDomain() domain.Candidate {
	return domain.Candidate{
		Address:       p.Mint,
		Name:          p.Name,
		LaunchTime:    time.UnixMilli(p.CreatedTimestamp).UTC(),
		MarketCap:     decimal.NewFromFloat(p.USDMarketCap),
		HasLiveStream: p.IsCurrentlyLive,
	}
}

// FetchCandidates devuelve los tokens listados más recientes.
func (c *Client) FetchCandidates(ctx context.Context) ([]domain.Candidate, error) {
	url := fmt.Sprintf("%s?sort=created_timestamp&order=DESC&limit=100", c.baseURL)

	var payload []coinPayload
	if err := c.get(ctx, url, &payload); err != nil {
		return nil, fmt.Errorf("pumpfun.FetchCandidates: %w", err)
	}

	candidates := make([]domain.Candidate, 0, len(payload))
	for _, p := range payload {
		if p.Mint == "" {
			continue
		}
		candidates = append(candidates, p.toDomain())
	}
	return candidates, nil
}
