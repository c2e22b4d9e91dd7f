package headers

import (
	"encoding/base64"
	"net/http"
	"testing"

	"github.com/pooofdevelopment/go-postmarket-client/pkg/signer"
	"github.com/pooofdevelopment/go-postmarket-client/pkg/types"
)

const testPrivateKey = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

func TestCreateWalletAuthHeaders(t *testing.T) {
	s, err := signer.NewSigner(testPrivateKey, 8453)
	if err != nil {
		t.Fatalf("Failed to create signer: %v", err)
	}

	nonce := 5
	h, err := CreateWalletAuthHeaders(s, &nonce)
	if err != nil {
		t.Fatalf("CreateWalletAuthHeaders error: %v", err)
	}

	if h[PMKTAddress] != s.Address().Hex() {
		t.Errorf("address header = %s, want %s", h[PMKTAddress], s.Address().Hex())
	}
	if h[PMKTNonce] != "5" {
		t.Errorf("nonce header = %s, want 5", h[PMKTNonce])
	}
	if h[PMKTSignature] == "" || h[PMKTTimestamp] == "" {
		t.Error("signature and timestamp headers must be set")
	}
}

func TestCreateWalletAuthHeadersDefaultNonce(t *testing.T) {
	s, err := signer.NewSigner(testPrivateKey, 8453)
	if err != nil {
		t.Fatalf("Failed to create signer: %v", err)
	}

	h, err := CreateWalletAuthHeaders(s, nil)
	if err != nil {
		t.Fatalf("CreateWalletAuthHeaders error: %v", err)
	}
	if h[PMKTNonce] != "0" {
		t.Errorf("nonce header = %s, want 0", h[PMKTNonce])
	}
}

func TestCreateAPIKeyHeaders(t *testing.T) {
	creds := &types.GatewayCreds{
		APIKey:        "key-1",
		APISecret:     base64.URLEncoding.EncodeToString([]byte("secret")),
		APIPassphrase: "phrase",
	}

	h, err := CreateAPIKeyHeaders("0xabc", creds, &types.RequestArgs{
		Method:      http.MethodPost,
		RequestPath: "/v1/transfer",
		Body:        map[string]string{"amount": "1"},
	})
	if err != nil {
		t.Fatalf("CreateAPIKeyHeaders error: %v", err)
	}

	if h[PMKTAddress] != "0xabc" {
		t.Errorf("address header = %s, want 0xabc", h[PMKTAddress])
	}
	if h[PMKTAPIKey] != "key-1" {
		t.Errorf("api key header = %s, want key-1", h[PMKTAPIKey])
	}
	if h[PMKTPassphrase] != "phrase" {
		t.Errorf("passphrase header = %s, want phrase", h[PMKTPassphrase])
	}
	if h[PMKTSignature] == "" || h[PMKTTimestamp] == "" {
		t.Error("signature and timestamp headers must be set")
	}
}

func TestCreateAPIKeyHeadersBadSecret(t *testing.T) {
	creds := &types.GatewayCreds{APIKey: "k", APISecret: "!!!", APIPassphrase: "p"}

	_, err := CreateAPIKeyHeaders("0xabc", creds, &types.RequestArgs{Method: http.MethodGet, RequestPath: "/"})
	if err == nil {
		t.Error("expected error for undecodable secret")
	}
}
