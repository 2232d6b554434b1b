package domain_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/alejandrodnm/pumpbot/internal/domain"
)

func TestMinQuantityAfterSlippage(t *testing.T) {
	// 100 tokens con 1% de slippage → mínimo exacto 99, sin drift de float
	got := domain.MinQuantityAfterSlippage(decimal.NewFromInt(100), decimal.NewFromInt(1))
	assert.True(t, got.Equal(decimal.NewFromInt(99)), "esperado 99 exacto, got %s", got)
}

func TestMinQuantityAfterSlippage_ZeroSlippage(t *testing.T) {
	qty := decimal.NewFromFloat(42.5)
	got := domain.MinQuantityAfterSlippage(qty, decimal.Zero)
	assert.True(t, got.Equal(qty))
}

func TestMinProceedsAfterSlippage(t *testing.T) {
	// 0.05 × 200 × 0.99 = 9.9
	got := domain.MinProceedsAfterSlippage(
		decimal.NewFromFloat(0.05),
		decimal.NewFromInt(200),
		decimal.NewFromInt(1),
	)
	assert.True(t, got.Equal(decimal.NewFromFloat(9.9)), "esperado 9.9 exacto, got %s", got)
}

func TestTruncateForVenue(t *testing.T) {
	// Trunca, no redondea: el noveno dígito se descarta aunque sea alto
	v, err := decimal.NewFromString("0.123456789")
	assert.NoError(t, err)

	got := domain.TruncateForVenue(v)
	want, _ := decimal.NewFromString("0.12345678")
	assert.True(t, got.Equal(want), "got %s", got)
}

func TestTruncateForVenue_ShorterUnchanged(t *testing.T) {
	v := decimal.NewFromFloat(1.5)
	assert.True(t, domain.TruncateForVenue(v).Equal(v))
}

func TestPosition_TargetPrice(t *testing.T) {
	pos := domain.Position{InitialPrice: decimal.NewFromFloat(0.01)}
	target := pos.TargetPrice(decimal.NewFromInt(5))
	assert.True(t, target.Equal(decimal.NewFromFloat(0.05)), "got %s", target)
}

func TestCandidate_AgeHours(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := domain.Candidate{LaunchTime: now.Add(-7 * time.Hour)}
	assert.InDelta(t, 7.0, c.AgeHours(now), 0.0001)
}

func TestOrderBook_TopOfBook(t *testing.T) {
	book := domain.OrderBook{
		Bids: []domain.BookLevel{{Price: decimal.NewFromFloat(0.010), Size: decimal.NewFromInt(100)}},
		Asks: []domain.BookLevel{{Price: decimal.NewFromFloat(0.012), Size: decimal.NewFromInt(80)}},
	}

	bid, ok := book.TopBid()
	assert.True(t, ok)
	assert.True(t, bid.Equal(decimal.NewFromFloat(0.010)))

	ask, ok := book.TopAsk()
	assert.True(t, ok)
	assert.True(t, ask.Equal(decimal.NewFromFloat(0.012)))
}

func TestOrderBook_Empty(t *testing.T) {
	var book domain.OrderBook

	_, ok := book.TopBid()
	assert.False(t, ok)

	_, ok = book.TopAsk()
	assert.False(t, ok)
}
