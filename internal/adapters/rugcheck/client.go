// Package rugcheck implementa el colaborador de risk-scoring.
//
// El contrato es deliberadamente estrecho: un bool por dirección. Cualquier
// respuesta no-200 o fallo de red se devuelve como error y el screener lo
// trata como no-seguro (fail-closed); aquí no hay retries.
package rugcheck

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client es el HTTP client del servicio de risk-scoring.
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

type checkRequest struct {
	ContractAddress string `json:"contractAddress"`
}

type checkResponse struct {
	IsRugPull bool `json:"isRugPull"`
}

// IsSafe devuelve true si el servicio no marca el token como rug pull.
func (c *Client) IsSafe(ctx context.Context, address string) (bool, error) {
	body, err := json.Marshal(checkRequest{ContractAddress: address})
	if err != nil {
		return false, fmt.Errorf("rugcheck.IsSafe: marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("rugcheck.IsSafe: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("rugcheck.IsSafe: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("rugcheck.IsSafe: status %d", resp.StatusCode)
	}

	var out checkResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, fmt.Errorf("rugcheck.IsSafe: decode: %w", err)
	}
	return !out.IsRugPull, nil
}
