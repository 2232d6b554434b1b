package engine_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/pumpbot/internal/domain"
	"github.com/alejandrodnm/pumpbot/internal/engine"
	"github.com/alejandrodnm/pumpbot/internal/ledger"
)

// --- mocks ---

// mockVenue devuelve precios fijos y registra las órdenes enviadas.
type mockVenue struct {
	mu sync.Mutex

	bid    decimal.Decimal
	bidOK  bool
	bidErr error

	ask    decimal.Decimal
	askOK  bool
	askErr error

	submitErr error
	submitted []domain.Order
}

func (m *mockVenue) TopBid(_ context.Context) (decimal.Decimal, bool, error) {
	return m.bid, m.bidOK, m.bidErr
}

func (m *mockVenue) TopAsk(_ context.Context) (decimal.Decimal, bool, error) {
	return m.ask, m.askOK, m.askErr
}

func (m *mockVenue) SubmitOrder(_ context.Context, order domain.Order) (domain.Fill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.submitErr != nil {
		return domain.Fill{}, m.submitErr
	}
	m.submitted = append(m.submitted, order)
	return domain.Fill{
		Signature: fmt.Sprintf("sig-%d", len(m.submitted)),
		Price:     order.Price,
		Quantity:  order.Quantity,
	}, nil
}

func (m *mockVenue) orders() []domain.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Order(nil), m.submitted...)
}

// --- helpers ---

func makeCandidate(address string) domain.Candidate {
	return domain.Candidate{
		Address:    address,
		Name:       "TESTCOIN",
		LaunchTime: time.Now().Add(-7 * time.Hour),
		MarketCap:  decimal.NewFromInt(8000),
	}
}

func newTestEngine(venue *mockVenue) (*engine.Engine, *ledger.Ledger) {
	book := ledger.New()
	return engine.New(venue, book, nil, nil, engine.DefaultConfig()), book
}

// --- tests ---

func TestEngine_Buy_Success(t *testing.T) {
	venue := &mockVenue{bid: decimal.NewFromFloat(0.01), bidOK: true}
	eng, book := newTestEngine(venue)

	fill, err := eng.Buy(context.Background(), makeCandidate("addr1"), decimal.NewFromFloat(0.01))
	require.NoError(t, err)
	assert.NotEmpty(t, fill.Signature)

	// budget 0.01 / bid 0.01 = 1 token exacto
	orders := venue.orders()
	require.Len(t, orders, 1)
	assert.Equal(t, domain.SideBuy, orders[0].Side)
	assert.True(t, orders[0].Quantity.Equal(decimal.NewFromInt(1)), "got %s", orders[0].Quantity)
	// min_quantity = 1 × 0.99
	assert.True(t, orders[0].MinQuantity.Equal(decimal.NewFromFloat(0.99)), "got %s", orders[0].MinQuantity)

	// La posición queda en el ledger con el precio de entrada
	pos, ok := book.Get("addr1")
	require.True(t, ok)
	assert.True(t, pos.InitialPrice.Equal(decimal.NewFromFloat(0.01)))
	assert.True(t, pos.Amount.Equal(decimal.NewFromInt(1)))
}

func TestEngine_Buy_TruncatesQuantity(t *testing.T) {
	// 0.01 / 0.03 = 0.3333... → truncado a 8 decimales, no redondeado
	venue := &mockVenue{bid: decimal.NewFromFloat(0.03), bidOK: true}
	eng, _ := newTestEngine(venue)

	_, err := eng.Buy(context.Background(), makeCandidate("addr1"), decimal.NewFromFloat(0.01))
	require.NoError(t, err)

	want, _ := decimal.NewFromString("0.33333333")
	orders := venue.orders()
	require.Len(t, orders, 1)
	assert.True(t, orders[0].Quantity.Equal(want), "got %s", orders[0].Quantity)
}

func TestEngine_Buy_NoLiquidity(t *testing.T) {
	venue := &mockVenue{bidOK: false}
	eng, book := newTestEngine(venue)

	_, err := eng.Buy(context.Background(), makeCandidate("addr1"), decimal.NewFromFloat(0.01))
	assert.ErrorIs(t, err, engine.ErrNoLiquidity)
	assert.Equal(t, 0, book.Len())
	assert.Empty(t, venue.orders())
}

func TestEngine_Buy_ZeroBidIsNoLiquidity(t *testing.T) {
	// Un gateway degenerado puede responder un bid de "0": debe tratarse como
	// book vacío, nunca dividir el budget por él.
	venue := &mockVenue{bid: decimal.Zero, bidOK: true}
	eng, book := newTestEngine(venue)

	var err error
	require.NotPanics(t, func() {
		_, err = eng.Buy(context.Background(), makeCandidate("addr1"), decimal.NewFromFloat(0.01))
	})
	assert.ErrorIs(t, err, engine.ErrNoLiquidity)
	assert.Equal(t, 0, book.Len())
	assert.Empty(t, venue.orders())
}

func TestEngine_Buy_NegativeBidIsNoLiquidity(t *testing.T) {
	venue := &mockVenue{bid: decimal.NewFromFloat(-0.01), bidOK: true}
	eng, book := newTestEngine(venue)

	_, err := eng.Buy(context.Background(), makeCandidate("addr1"), decimal.NewFromFloat(0.01))
	assert.ErrorIs(t, err, engine.ErrNoLiquidity)
	assert.Equal(t, 0, book.Len())
}

func TestEngine_Buy_VenueReadError(t *testing.T) {
	venue := &mockVenue{bidErr: errors.New("rpc down")}
	eng, book := newTestEngine(venue)

	_, err := eng.Buy(context.Background(), makeCandidate("addr1"), decimal.NewFromFloat(0.01))
	assert.Error(t, err)
	assert.Equal(t, 0, book.Len())
}

func TestEngine_Buy_SubmitFailureLeavesLedgerUntouched(t *testing.T) {
	venue := &mockVenue{
		bid:       decimal.NewFromFloat(0.01),
		bidOK:     true,
		submitErr: errors.New("venue rejected"),
	}
	eng, book := newTestEngine(venue)

	_, err := eng.Buy(context.Background(), makeCandidate("addr1"), decimal.NewFromFloat(0.01))
	assert.Error(t, err)

	// La reserva se revierte: el ledger queda como estaba
	assert.False(t, book.Contains("addr1"))
	assert.Equal(t, 0, book.Len())
}

func TestEngine_Buy_AlreadyHeld(t *testing.T) {
	venue := &mockVenue{bid: decimal.NewFromFloat(0.01), bidOK: true}
	eng, book := newTestEngine(venue)

	_, err := eng.Buy(context.Background(), makeCandidate("addr1"), decimal.NewFromFloat(0.01))
	require.NoError(t, err)
	require.Equal(t, 1, book.Len())

	_, err = eng.Buy(context.Background(), makeCandidate("addr1"), decimal.NewFromFloat(0.01))
	assert.ErrorIs(t, err, engine.ErrAlreadyHeld)

	// Solo la primera orden llegó al venue
	assert.Len(t, venue.orders(), 1)
	assert.Equal(t, 1, book.Len())
}

func TestEngine_Buy_ConcurrentSameAddress_OneOrder(t *testing.T) {
	venue := &mockVenue{bid: decimal.NewFromFloat(0.01), bidOK: true}
	eng, book := newTestEngine(venue)

	const attempts = 20
	var wg sync.WaitGroup
	errs := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := eng.Buy(context.Background(), makeCandidate("contested"), decimal.NewFromFloat(0.01))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var succeeded, duplicated int
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, engine.ErrAlreadyHeld):
			duplicated++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, succeeded, "exactamente un buy debe llegar al venue")
	assert.Equal(t, attempts-1, duplicated)
	assert.Len(t, venue.orders(), 1)
	assert.Equal(t, 1, book.Len())
}

func TestEngine_Sell_AtTargetExactly(t *testing.T) {
	// Trigger inclusive: ask == target vende
	venue := &mockVenue{ask: decimal.NewFromFloat(0.05), askOK: true}
	eng, book := newTestEngine(venue)

	pos := domain.Position{
		Address:      "addr1",
		InitialPrice: decimal.NewFromFloat(0.01),
		Amount:       decimal.NewFromInt(1),
		OpenedAt:     time.Now().UTC(),
	}
	require.True(t, book.TryInsert(pos))

	fill, err := eng.Sell(context.Background(), "addr1", pos)
	require.NoError(t, err)
	assert.NotEmpty(t, fill.Signature)

	orders := venue.orders()
	require.Len(t, orders, 1)
	assert.Equal(t, domain.SideSell, orders[0].Side)
	// min_proceeds = 0.05 × 1 × 0.99 = 0.0495
	assert.True(t, orders[0].MinProceeds.Equal(decimal.NewFromFloat(0.0495)), "got %s", orders[0].MinProceeds)

	// Solo una aceptación elimina la posición
	assert.False(t, book.Contains("addr1"))
}

func TestEngine_Sell_BelowTarget(t *testing.T) {
	venue := &mockVenue{ask: decimal.NewFromFloat(0.049), askOK: true}
	eng, book := newTestEngine(venue)

	pos := domain.Position{
		Address:      "addr1",
		InitialPrice: decimal.NewFromFloat(0.01),
		Amount:       decimal.NewFromInt(1),
	}
	require.True(t, book.TryInsert(pos))

	_, err := eng.Sell(context.Background(), "addr1", pos)
	assert.ErrorIs(t, err, engine.ErrBelowTarget)

	// Decisión, no fallo: nada enviado, posición intacta
	assert.Empty(t, venue.orders())
	assert.True(t, book.Contains("addr1"))
}

func TestEngine_Sell_NoLiquidity(t *testing.T) {
	venue := &mockVenue{askOK: false}
	eng, book := newTestEngine(venue)

	pos := domain.Position{
		Address:      "addr1",
		InitialPrice: decimal.NewFromFloat(0.01),
		Amount:       decimal.NewFromInt(1),
	}
	require.True(t, book.TryInsert(pos))

	_, err := eng.Sell(context.Background(), "addr1", pos)
	assert.ErrorIs(t, err, engine.ErrNoLiquidity)
	assert.True(t, book.Contains("addr1"))
}

func TestEngine_Sell_ZeroAskIsNoLiquidity(t *testing.T) {
	venue := &mockVenue{ask: decimal.Zero, askOK: true}
	eng, book := newTestEngine(venue)

	pos := domain.Position{
		Address:      "addr1",
		InitialPrice: decimal.NewFromFloat(0.01),
		Amount:       decimal.NewFromInt(1),
	}
	require.True(t, book.TryInsert(pos))

	var err error
	require.NotPanics(t, func() {
		_, err = eng.Sell(context.Background(), "addr1", pos)
	})
	assert.ErrorIs(t, err, engine.ErrNoLiquidity)
	assert.Empty(t, venue.orders())
	assert.True(t, book.Contains("addr1"))
}

func TestEngine_Sell_SubmitFailureRetainsPosition(t *testing.T) {
	venue := &mockVenue{
		ask:       decimal.NewFromFloat(0.10),
		askOK:     true,
		submitErr: errors.New("venue rejected"),
	}
	eng, book := newTestEngine(venue)

	pos := domain.Position{
		Address:      "addr1",
		InitialPrice: decimal.NewFromFloat(0.01),
		Amount:       decimal.NewFromInt(1),
	}
	require.True(t, book.TryInsert(pos))

	_, err := eng.Sell(context.Background(), "addr1", pos)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, engine.ErrBelowTarget)

	// El fallo de venue conserva la entrada para un retry posterior
	assert.True(t, book.Contains("addr1"))
}
