package rugcheck_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/pumpbot/internal/adapters/rugcheck"
)

func TestClient_IsSafe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "addr1", body["contractAddress"])

		w.Write([]byte(`{"isRugPull": false}`))
	}))
	defer srv.Close()

	client := rugcheck.NewClient(srv.URL, "test-key")
	safe, err := client.IsSafe(context.Background(), "addr1")
	require.NoError(t, err)
	assert.True(t, safe)
}

func TestClient_IsSafe_RugPull(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"isRugPull": true}`))
	}))
	defer srv.Close()

	client := rugcheck.NewClient(srv.URL, "test-key")
	safe, err := client.IsSafe(context.Background(), "addr1")
	require.NoError(t, err)
	assert.False(t, safe)
}

func TestClient_IsSafe_Non200IsError(t *testing.T) {
	// El error se propaga tal cual; es el screener quien lo trata como no-seguro
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := rugcheck.NewClient(srv.URL, "test-key")
	_, err := client.IsSafe(context.Background(), "addr1")
	assert.Error(t, err)
}
