package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pooofdevelopment/go-postmarket-client/pkg/headers"
	"github.com/pooofdevelopment/go-postmarket-client/pkg/signer"
	"github.com/pooofdevelopment/go-postmarket-client/pkg/types"
)

const (
	testPrivateKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testAddress    = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

func testSigner(t *testing.T) *signer.Signer {
	t.Helper()
	s, err := signer.NewSigner(testPrivateKey, 8453)
	require.NoError(t, err)
	return s
}

func TestCreateAPIKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, types.GatewayAuthCreate, r.URL.Path)
		assert.Equal(t, testAddress, r.Header.Get(headers.PMKTAddress))
		assert.NotEmpty(t, r.Header.Get(headers.PMKTSignature))
		assert.NotEmpty(t, r.Header.Get(headers.PMKTTimestamp))
		assert.Equal(t, "0", r.Header.Get(headers.PMKTNonce))
		json.NewEncoder(w).Encode(testCreds())
	}))
	defer srv.Close()

	creds, err := NewClient(srv.URL).CreateAPIKey(context.Background(), testSigner(t), nil)
	require.NoError(t, err)
	assert.Equal(t, testCreds(), creds)
}

func TestCreateOrDeriveAPICredsFallsBackToDerive(t *testing.T) {
	var createCalls, deriveCalls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case types.GatewayAuthCreate:
			createCalls++
			w.WriteHeader(http.StatusConflict)
			json.NewEncoder(w).Encode(map[string]string{"error": "key exists"})
		case types.GatewayAuthDerive:
			deriveCalls++
			require.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, testAddress, r.Header.Get(headers.PMKTAddress))
			assert.NotEmpty(t, r.Header.Get(headers.PMKTSignature))
			json.NewEncoder(w).Encode(testCreds())
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	creds, err := NewClient(srv.URL).CreateOrDeriveAPICreds(context.Background(), testSigner(t), nil)
	require.NoError(t, err)
	assert.Equal(t, testCreds(), creds)
	assert.Equal(t, 1, createCalls)
	assert.Equal(t, 1, deriveCalls)
}

func TestSetCredentialsEnablesTransfers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, testCreds().APIKey, r.Header.Get(headers.PMKTAPIKey))
		json.NewEncoder(w).Encode(TransferReceipt{ID: "tr_2", Status: "pending"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	plan := types.TransferSourcePlan{{ChainKey: "base", Amount: dec(t, "1")}}
	_, err := c.Transfer(context.Background(), "0xdef", "base", dec(t, "1"), plan)
	require.Error(t, err)

	c.SetCredentials("0xabc", testCreds())
	receipt, err := c.Transfer(context.Background(), "0xdef", "base", dec(t, "1"), plan)
	require.NoError(t, err)
	assert.Equal(t, "tr_2", receipt.ID)
}
