package metadata

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pooofdevelopment/go-postmarket-client/pkg/headers"
	"github.com/pooofdevelopment/go-postmarket-client/pkg/types"
)

func testCreds() *types.GatewayCreds {
	return &types.GatewayCreds{
		APIKey:        "key-1",
		APISecret:     base64.URLEncoding.EncodeToString([]byte("secret")),
		APIPassphrase: "phrase",
	}
}

func TestGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, types.MetaMarket+"42", r.URL.Path)

		json.NewEncoder(w).Encode(types.MarketMeta{
			MarketID:  "42",
			Question:  "Will it rain tomorrow?",
			PostURL:   "https://x.com/u/status/1",
			Duration:  types.Duration7d,
			CreatedAt: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		})
	}))
	defer server.Close()

	s := NewStore(server.URL)
	meta, err := s.Get(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, "Will it rain tomorrow?", meta.Question)
	assert.Equal(t, types.Duration7d, meta.Duration)
}

func TestGetUnknownMarket(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	s := NewStore(server.URL)
	_, err := s.Get(context.Background(), "42")
	assert.Error(t, err)
}

func TestPutSignsRequest(t *testing.T) {
	var got *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	s := NewStore(server.URL, WithCredentials("0xabc", testCreds()))
	err := s.Put(context.Background(), &types.MarketMeta{
		MarketID: "42",
		Question: "Will it rain tomorrow?",
		PostURL:  "https://x.com/u/status/1",
	})
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, http.MethodPut, got.Method)
	assert.Equal(t, types.MetaMarket+"42", got.URL.Path)
	assert.Equal(t, "0xabc", got.Header.Get(headers.PMKTAddress))
	assert.Equal(t, "key-1", got.Header.Get(headers.PMKTAPIKey))
	assert.NotEmpty(t, got.Header.Get(headers.PMKTSignature))
}

func TestPutWithoutCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get(headers.PMKTAPIKey))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	s := NewStore(server.URL)
	err := s.Put(context.Background(), &types.MarketMeta{MarketID: "42", Question: "q"})
	require.NoError(t, err)
}

func TestList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, types.MetaMarkets, r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"markets": []types.MarketMeta{
				{MarketID: "2", Question: "second"},
				{MarketID: "1", Question: "first"},
			},
		})
	}))
	defer server.Close()

	s := NewStore(server.URL)
	list, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "2", list[0].MarketID)
}
