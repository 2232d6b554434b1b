package screener_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/alejandrodnm/pumpbot/internal/domain"
	"github.com/alejandrodnm/pumpbot/internal/screener"
)

// --- mocks ---

type mockRisk struct {
	safe   bool
	err    error
	called bool
}

func (m *mockRisk) IsSafe(_ context.Context, _ string) (bool, error) {
	m.called = true
	return m.safe, m.err
}

type mockSocial struct {
	accounts int
	err      error
	called   bool
}

func (m *mockSocial) AccountCount(_ context.Context, _ string) (int, error) {
	m.called = true
	return m.accounts, m.err
}

type mockPositions struct {
	held map[string]bool
}

func (m *mockPositions) Contains(address string) bool {
	return m.held[address]
}

// --- helpers ---

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func makeCandidate(ageHours float64, mcap float64, live bool) domain.Candidate {
	return domain.Candidate{
		Address:       "So11111111111111111111111111111111111111112",
		Name:          "TESTCOIN",
		LaunchTime:    testNow.Add(-time.Duration(ageHours * float64(time.Hour))),
		MarketCap:     decimal.NewFromFloat(mcap),
		HasLiveStream: live,
	}
}

func newTestScreener(risk *mockRisk, social *mockSocial, open *mockPositions) *screener.Screener {
	if open == nil {
		open = &mockPositions{}
	}
	s := screener.New(screener.DefaultConfig(), risk, social, open)
	return s.WithNow(func() time.Time { return testNow })
}

// --- tests ---

func TestScreener_AcceptsEligibleCandidate(t *testing.T) {
	risk := &mockRisk{safe: true}
	social := &mockSocial{accounts: 3}
	s := newTestScreener(risk, social, nil)

	// 7h de edad, 8000 de mcap, sin stream, seguro, con presencia social
	d := s.Evaluate(context.Background(), makeCandidate(7, 8000, false))
	assert.True(t, d.Accepted)
}

func TestScreener_RejectsAgeOutOfWindow(t *testing.T) {
	s := newTestScreener(&mockRisk{safe: true}, &mockSocial{accounts: 1}, nil)

	cases := []struct {
		name string
		age  float64
	}{
		{"too young", 2},
		{"too old", 12},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := s.Evaluate(context.Background(), makeCandidate(tc.age, 8000, false))
			assert.False(t, d.Accepted)
			assert.Equal(t, screener.RejectAgeOutOfWindow, d.Reason)
		})
	}
}

func TestScreener_AgeBoundariesInclusive(t *testing.T) {
	s := newTestScreener(&mockRisk{safe: true}, &mockSocial{accounts: 1}, nil)

	// Exactamente 5h y exactamente 10h deben pasar la ventana
	assert.True(t, s.Evaluate(context.Background(), makeCandidate(5, 8000, false)).Accepted)
	assert.True(t, s.Evaluate(context.Background(), makeCandidate(10, 8000, false)).Accepted)
}

func TestScreener_RejectsMarketCapOutOfWindow(t *testing.T) {
	s := newTestScreener(&mockRisk{safe: true}, &mockSocial{accounts: 1}, nil)

	d := s.Evaluate(context.Background(), makeCandidate(7, 4999, false))
	assert.False(t, d.Accepted)
	assert.Equal(t, screener.RejectMarketCapOutOfWindow, d.Reason)

	d = s.Evaluate(context.Background(), makeCandidate(7, 10001, false))
	assert.False(t, d.Accepted)
	assert.Equal(t, screener.RejectMarketCapOutOfWindow, d.Reason)

	// Bordes inclusive
	assert.True(t, s.Evaluate(context.Background(), makeCandidate(7, 5000, false)).Accepted)
	assert.True(t, s.Evaluate(context.Background(), makeCandidate(7, 10000, false)).Accepted)
}

func TestScreener_RejectsLiveStream(t *testing.T) {
	s := newTestScreener(&mockRisk{safe: true}, &mockSocial{accounts: 1}, nil)

	d := s.Evaluate(context.Background(), makeCandidate(7, 8000, true))
	assert.False(t, d.Accepted)
	assert.Equal(t, screener.RejectLiveStream, d.Reason)
}

func TestScreener_RejectsUnsafe(t *testing.T) {
	s := newTestScreener(&mockRisk{safe: false}, &mockSocial{accounts: 1}, nil)

	d := s.Evaluate(context.Background(), makeCandidate(7, 8000, false))
	assert.False(t, d.Accepted)
	assert.Equal(t, screener.RejectRiskUnsafe, d.Reason)
}

func TestScreener_RiskErrorFailsClosed(t *testing.T) {
	// Un error del servicio de riesgo cuenta como rechazo, nunca como aprobación
	s := newTestScreener(&mockRisk{err: errors.New("rugcheck down")}, &mockSocial{accounts: 1}, nil)

	d := s.Evaluate(context.Background(), makeCandidate(7, 8000, false))
	assert.False(t, d.Accepted)
	assert.Equal(t, screener.RejectRiskUnsafe, d.Reason)
}

func TestScreener_RejectsNoSocialPresence(t *testing.T) {
	s := newTestScreener(&mockRisk{safe: true}, &mockSocial{accounts: 0}, nil)

	d := s.Evaluate(context.Background(), makeCandidate(7, 8000, false))
	assert.False(t, d.Accepted)
	assert.Equal(t, screener.RejectNoSocialPresence, d.Reason)
}

func TestScreener_SocialErrorFailsClosed(t *testing.T) {
	s := newTestScreener(&mockRisk{safe: true}, &mockSocial{err: errors.New("getmoni down")}, nil)

	d := s.Evaluate(context.Background(), makeCandidate(7, 8000, false))
	assert.False(t, d.Accepted)
	assert.Equal(t, screener.RejectNoSocialPresence, d.Reason)
}

func TestScreener_RejectsAlreadyHeld(t *testing.T) {
	c := makeCandidate(7, 8000, false)
	open := &mockPositions{held: map[string]bool{c.Address: true}}
	s := newTestScreener(&mockRisk{safe: true}, &mockSocial{accounts: 1}, open)

	d := s.Evaluate(context.Background(), c)
	assert.False(t, d.Accepted)
	assert.Equal(t, screener.RejectAlreadyHeld, d.Reason)
}

func TestScreener_ShortCircuitsBeforeExternalCalls(t *testing.T) {
	// Un rechazo por edad no debe tocar los servicios externos
	risk := &mockRisk{safe: true}
	social := &mockSocial{accounts: 1}
	s := newTestScreener(risk, social, nil)

	d := s.Evaluate(context.Background(), makeCandidate(1, 8000, false))
	assert.False(t, d.Accepted)
	assert.False(t, risk.called, "risk no debe consultarse tras rechazo por edad")
	assert.False(t, social.called, "social no debe consultarse tras rechazo por edad")
}

func TestScreener_EvaluateIsIdempotent(t *testing.T) {
	s := newTestScreener(&mockRisk{safe: true}, &mockSocial{accounts: 2}, nil)
	c := makeCandidate(7, 8000, false)

	first := s.Evaluate(context.Background(), c)
	second := s.Evaluate(context.Background(), c)
	assert.Equal(t, first, second)
}

func TestStats_RecordAndTotal(t *testing.T) {
	var stats screener.Stats
	stats.Record(screener.RejectAgeOutOfWindow)
	stats.Record(screener.RejectAgeOutOfWindow)
	stats.Record(screener.RejectRiskUnsafe)

	assert.Equal(t, 3, stats.Total())
}
