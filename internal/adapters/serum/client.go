// Package serum implementa ports.Venue contra el gateway HTTP del DEX.
//
// Las operaciones son independientes por llamada: el cliente no guarda estado
// mutable entre llamadas más allá del rate limiter. Los precios llegan como
// strings decimales y se parsean sin pasar por float64.
package serum

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/mr-tron/base58"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/alejandrodnm/pumpbot/internal/domain"
)

const (
	// El gateway tolera ~20 req/s; nos quedamos por debajo.
	venueRatePerSec = 10

	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond
)

// Client es el cliente del venue para un único mercado.
type Client struct {
	http         *http.Client
	baseURL      string
	market       string
	walletSecret string
	limiter      *rate.Limiter
}

// NewClient crea un Client para el mercado dado.
// Valida que la dirección del mercado sea base58 bien formada antes de operar.
func NewClient(baseURL, marketAddress, walletSecret string) (*Client, error) {
	raw, err := base58.Decode(marketAddress)
	if err != nil {
		return nil, fmt.Errorf("serum.NewClient: invalid market address %q: %w", marketAddress, err)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("serum.NewClient: market address %q: expected 32 bytes, got %d", marketAddress, len(raw))
	}

	return &Client{
		http:         &http.Client{Timeout: 10 * time.Second},
		baseURL:      baseURL,
		market:       marketAddress,
		walletSecret: walletSecret,
		limiter:      rate.NewLimiter(venueRatePerSec, 5),
	}, nil
}

// bookLevelPayload es un nivel del book en el wire: decimales como string.
type bookLevelPayload struct {
	Price string `json:"price"`
	Size  string `json:"size"`
}

type bookPayload struct {
	Bids []bookLevelPayload `json:"bids"`
	Asks []bookLevelPayload `json:"asks"`
}

// TopBid devuelve el mejor bid del book. ok es false con book vacío.
func (c *Client) TopBid(ctx context.Context) (decimal.Decimal, bool, error) {
	book, err := c.fetchBook(ctx)
	if err != nil {
		return decimal.Decimal{}, false, err
	}
	price, ok := book.TopBid()
	return price, ok, nil
}

// TopAsk devuelve el mejor ask del book. ok es false con book vacío.
func (c *Client) TopAsk(ctx context.Context) (decimal.Decimal, bool, error) {
	book, err := c.fetchBook(ctx)
	if err != nil {
		return decimal.Decimal{}, false, err
	}
	price, ok := book.TopAsk()
	return price, ok, nil
}

// fetchBook lee y parsea el orderbook completo del mercado.
func (c *Client) fetchBook(ctx context.Context) (domain.OrderBook, error) {
	url := fmt.Sprintf("%s/markets/%s/orderbook", c.baseURL, c.market)

	var payload bookPayload
	if err := c.get(ctx, url, &payload); err != nil {
		return domain.OrderBook{}, fmt.Errorf("serum.fetchBook: %w", err)
	}

	book := domain.OrderBook{
		Bids: make([]domain.BookLevel, 0, len(payload.Bids)),
		Asks: make([]domain.BookLevel, 0, len(payload.Asks)),
	}
	for _, lvl := range payload.Bids {
		parsed, err := parseLevel(lvl)
		if err != nil {
			return domain.OrderBook{}, fmt.Errorf("serum.fetchBook: bid: %w", err)
		}
		book.Bids = append(book.Bids, parsed)
	}
	for _, lvl := range payload.Asks {
		parsed, err := parseLevel(lvl)
		if err != nil {
			return domain.OrderBook{}, fmt.Errorf("serum.fetchBook: ask: %w", err)
		}
		book.Asks = append(book.Asks, parsed)
	}
	return book, nil
}

func parseLevel(lvl bookLevelPayload) (domain.BookLevel, error) {
	price, err := decimal.NewFromString(lvl.Price)
	if err != nil {
		return domain.BookLevel{}, fmt.Errorf("parse price %q: %w", lvl.Price, err)
	}
	size, err := decimal.NewFromString(lvl.Size)
	if err != nil {
		return domain.BookLevel{}, fmt.Errorf("parse size %q: %w", lvl.Size, err)
	}
	return domain.BookLevel{Price: price, Size: size}, nil
}

// orderRequest es el cuerpo de submit de una orden límite.
type orderRequest struct {
	Side        string `json:"side"`
	LimitPrice  string `json:"limit_price"`
	MaxQuantity string `json:"max_quantity"`
	OrderType   string `json:"order_type"`
	ClientID    uint64 `json:"client_id"`
}

type orderResponse struct {
	Signature string `json:"signature"`
}

// SubmitOrder firma y envía una orden límite al mercado.
func (c *Client) SubmitOrder(ctx context.Context, order domain.Order) (domain.Fill, error) {
	url := fmt.Sprintf("%s/markets/%s/orders", c.baseURL, c.market)

	body := orderRequest{
		Side:        string(order.Side),
		LimitPrice:  order.Price.String(),
		MaxQuantity: order.Quantity.String(),
		OrderType:   "limit",
		ClientID:    order.ClientID,
	}

	var out orderResponse
	if err := c.post(ctx, url, body, &out); err != nil {
		return domain.Fill{}, fmt.Errorf("serum.SubmitOrder: %w", err)
	}
	if out.Signature == "" {
		return domain.Fill{}, fmt.Errorf("serum.SubmitOrder: empty signature in response")
	}

	return domain.Fill{
		Signature: out.Signature,
		Price:     order.Price,
		Quantity:  order.Quantity,
	}, nil
}

// get hace un GET con rate limiting y retries.
func (c *Client) get(ctx context.Context, url string, out any) error {
	return c.doWithRetry(ctx, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return c.http.Do(req)
	}, out, true)
}

// post hace un POST JSON. Las submissions de órdenes NO se reintentan: un
// retry ciego tras un timeout podría duplicar la orden en el venue.
func (c *Client) post(ctx context.Context, url string, body, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal body: %w", err)
	}
	return c.doWithRetry(ctx, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.walletSecret)
		return c.http.Do(req)
	}, out, false)
}

// doWithRetry ejecuta la función con backoff exponencial si retry está activo.
func (c *Client) doWithRetry(ctx context.Context, fn func() (*http.Response, error), out any, retry bool) error {
	attempts := 0
	if retry {
		attempts = maxRetries
	}

	for attempt := 0; attempt <= attempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		resp, err := fn()
		if err != nil {
			if attempt == attempts {
				return err
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			resp.Body.Close()
			if attempt == attempts {
				return fmt.Errorf("server error %d", resp.StatusCode)
			}
			slog.Warn("serum: retrying", "status", resp.StatusCode, "attempt", attempt+1)
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 400 {
			msg, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return fmt.Errorf("client error %d: %s", resp.StatusCode, string(msg))
		}

		defer resp.Body.Close()
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
	return fmt.Errorf("exhausted retries")
}

// sleep espera con backoff exponencial, respetando el contexto.
func (c *Client) sleep(ctx context.Context, attempt int) {
	wait := time.Duration(math.Pow(2, float64(attempt))) * baseRetryWait
	select {
	case <-time.After(wait):
	case <-ctx.Done():
	}
}
