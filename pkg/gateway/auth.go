package gateway

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pooofdevelopment/go-postmarket-client/pkg/headers"
	"github.com/pooofdevelopment/go-postmarket-client/pkg/signer"
	"github.com/pooofdevelopment/go-postmarket-client/pkg/types"
)

// CreateAPIKey asks the gateway to mint fresh API credentials for the
// wallet. The wallet proves key control by signing the session auth
// message; the gateway rejects the request if a key already exists.
func (c *Client) CreateAPIKey(ctx context.Context, s *signer.Signer, nonce *int) (*types.GatewayCreds, error) {
	h, err := headers.CreateWalletAuthHeaders(s, nonce)
	if err != nil {
		return nil, err
	}

	var creds types.GatewayCreds
	if err := c.httpClient.PostJSON(ctx, c.host+types.GatewayAuthCreate, h, nil, &creds); err != nil {
		return nil, fmt.Errorf("failed to create API key: %w", err)
	}
	return &creds, nil
}

// DeriveAPIKey recovers the existing API credentials for the wallet.
func (c *Client) DeriveAPIKey(ctx context.Context, s *signer.Signer, nonce *int) (*types.GatewayCreds, error) {
	h, err := headers.CreateWalletAuthHeaders(s, nonce)
	if err != nil {
		return nil, err
	}

	var creds types.GatewayCreds
	if err := c.httpClient.GetJSON(ctx, c.host+types.GatewayAuthDerive, h, &creds); err != nil {
		return nil, fmt.Errorf("failed to derive API key: %w", err)
	}
	return &creds, nil
}

// CreateOrDeriveAPICreds creates API credentials if the wallet has none
// yet, otherwise derives the existing ones.
func (c *Client) CreateOrDeriveAPICreds(ctx context.Context, s *signer.Signer, nonce *int) (*types.GatewayCreds, error) {
	creds, err := c.CreateAPIKey(ctx, s, nonce)
	if err == nil {
		return creds, nil
	}
	return c.DeriveAPIKey(ctx, s, nonce)
}

// SetCredentials attaches API credentials for subsequent authenticated
// calls.
func (c *Client) SetCredentials(address string, creds *types.GatewayCreds) {
	c.address = address
	c.creds = creds
	c.logger.Debug("gateway credentials set", zap.String("address", address))
}
