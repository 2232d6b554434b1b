package moni_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/pumpbot/internal/adapters/moni"
)

func TestClient_AccountCount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/addr1", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		w.Write([]byte(`{"socialMedia": {"twitter": "@x", "telegram": "@y"}}`))
	}))
	defer srv.Close()

	client := moni.NewClient(srv.URL, "test-key")
	count, err := client.AccountCount(context.Background(), "addr1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestClient_AccountCount_NoAccounts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"socialMedia": {}}`))
	}))
	defer srv.Close()

	client := moni.NewClient(srv.URL, "test-key")
	count, err := client.AccountCount(context.Background(), "addr1")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestClient_AccountCount_Non200IsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := moni.NewClient(srv.URL, "test-key")
	_, err := client.AccountCount(context.Background(), "addr1")
	assert.Error(t, err)
}
