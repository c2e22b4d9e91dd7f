package signing

import (
	"encoding/base64"
	"testing"
)

func TestBuildHMACSignature(t *testing.T) {
	secret := base64.URLEncoding.EncodeToString([]byte("test-secret"))

	sig, err := BuildHMACSignature(secret, 1234567890, "POST", "/v1/transfer", map[string]string{"amount": "12.5"})
	if err != nil {
		t.Fatalf("BuildHMACSignature error: %v", err)
	}
	if sig == "" {
		t.Fatal("empty signature")
	}
	if _, err := base64.URLEncoding.DecodeString(sig); err != nil {
		t.Errorf("signature is not URL-safe base64: %v", err)
	}

	// Deterministic for identical inputs.
	again, err := BuildHMACSignature(secret, 1234567890, "POST", "/v1/transfer", map[string]string{"amount": "12.5"})
	if err != nil {
		t.Fatalf("BuildHMACSignature error: %v", err)
	}
	if again != sig {
		t.Error("signatures for identical inputs differ")
	}

	// Different path must change the signature.
	other, err := BuildHMACSignature(secret, 1234567890, "POST", "/v1/deposit", map[string]string{"amount": "12.5"})
	if err != nil {
		t.Fatalf("BuildHMACSignature error: %v", err)
	}
	if other == sig {
		t.Error("different path produced identical signature")
	}
}

func TestBuildHMACSignatureNilBody(t *testing.T) {
	secret := base64.URLEncoding.EncodeToString([]byte("test-secret"))

	withBody, err := BuildHMACSignature(secret, 1, "GET", "/v1/balances", map[string]string{"a": "b"})
	if err != nil {
		t.Fatalf("BuildHMACSignature error: %v", err)
	}
	withoutBody, err := BuildHMACSignature(secret, 1, "GET", "/v1/balances", nil)
	if err != nil {
		t.Fatalf("BuildHMACSignature error: %v", err)
	}
	if withBody == withoutBody {
		t.Error("body should be part of the signed message")
	}
}

func TestBuildHMACSignatureBadSecret(t *testing.T) {
	if _, err := BuildHMACSignature("not base64 !!!", 1, "GET", "/", nil); err == nil {
		t.Error("expected error for undecodable secret")
	}
}
