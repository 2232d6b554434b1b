// Package moni implementa el colaborador de presencia social.
//
// Igual que rugcheck: contrato estrecho, sin retries. Un error aquí se trata
// como cero cuentas en el screener (fail-closed).
package moni

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client es el HTTP client del servicio de presencia social.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
}

// NewClient crea un Client con el endpoint y la API key dados.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		http:    &http.Client{Timeout: 10 * time.Second},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

type projectResponse struct {
	SocialMedia map[string]string `json:"socialMedia"`
}

// AccountCount devuelve el número de cuentas sociales vinculadas al token.
func (c *Client) AccountCount(ctx context.Context, address string) (int, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, address)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("moni.AccountCount: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("moni.AccountCount: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("moni.AccountCount: status %d", resp.StatusCode)
	}

	var out projectResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("moni.AccountCount: decode: %w", err)
	}
	return len(out.SocialMedia), nil
}
