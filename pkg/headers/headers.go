package headers

import (
	"fmt"
	"time"

	"github.com/pooofdevelopment/go-postmarket-client/pkg/signer"
	"github.com/pooofdevelopment/go-postmarket-client/pkg/signing"
	"github.com/pooofdevelopment/go-postmarket-client/pkg/types"
)

// Header names the gateway and metadata services expect
const (
	PMKTAddress    = "PMKT_ADDRESS"
	PMKTSignature  = "PMKT_SIGNATURE"
	PMKTTimestamp  = "PMKT_TIMESTAMP"
	PMKTNonce      = "PMKT_NONCE"
	PMKTAPIKey     = "PMKT_API_KEY"
	PMKTPassphrase = "PMKT_PASSPHRASE"
)

// CreateWalletAuthHeaders builds wallet-signature headers: the caller
// proves key control by signing the session auth message. Used to derive
// or refresh gateway API credentials.
func CreateWalletAuthHeaders(s *signer.Signer, nonce *int) (map[string]string, error) {
	timestamp := time.Now().Unix()

	n := 0
	if nonce != nil {
		n = *nonce
	}

	signature, err := signing.SignSessionAuthMessage(s, timestamp, n)
	if err != nil {
		return nil, fmt.Errorf("failed to sign auth message: %w", err)
	}

	return map[string]string{
		PMKTAddress:   s.Address().Hex(),
		PMKTSignature: signature,
		PMKTTimestamp: fmt.Sprintf("%d", timestamp),
		PMKTNonce:     fmt.Sprintf("%d", n),
	}, nil
}

// CreateAPIKeyHeaders builds API-key headers for an authenticated request:
// an HMAC over the timestamp, method, path and body.
func CreateAPIKeyHeaders(address string, creds *types.GatewayCreds, requestArgs *types.RequestArgs) (map[string]string, error) {
	timestamp := time.Now().Unix()

	hmacSig, err := signing.BuildHMACSignature(
		creds.APISecret,
		timestamp,
		requestArgs.Method,
		requestArgs.RequestPath,
		requestArgs.Body,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build HMAC signature: %w", err)
	}

	return map[string]string{
		PMKTAddress:    address,
		PMKTSignature:  hmacSig,
		PMKTTimestamp:  fmt.Sprintf("%d", timestamp),
		PMKTAPIKey:     creds.APIKey,
		PMKTPassphrase: creds.APIPassphrase,
	}, nil
}
