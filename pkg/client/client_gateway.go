package client

import (
	"context"

	"github.com/cockroachdb/apd/v3"
	pkgerrors "github.com/pkg/errors"
	"go.uber.org/zap"

	clienterrors "github.com/pooofdevelopment/go-postmarket-client/pkg/errors"
	"github.com/pooofdevelopment/go-postmarket-client/pkg/gateway"
	"github.com/pooofdevelopment/go-postmarket-client/pkg/signer"
	"github.com/pooofdevelopment/go-postmarket-client/pkg/types"
	"github.com/pooofdevelopment/go-postmarket-client/pkg/wallet"
)

// DeriveGatewayCredentials obtains API credentials for the configured
// wallet by signing the session auth message, then attaches them to the
// gateway and metadata clients so subsequent writes are authenticated.
// A nil nonce selects the wallet's default key.
func (c *Client) DeriveGatewayCredentials(ctx context.Context, nonce *int) (*types.GatewayCreds, error) {
	if err := c.requireWallet(); err != nil {
		return nil, err
	}
	s, err := walletSigner(c.wallet)
	if err != nil {
		return nil, err
	}

	creds, err := c.gateway.CreateOrDeriveAPICreds(ctx, s, nonce)
	if err != nil {
		return nil, err
	}

	address := c.wallet.Address().Hex()
	c.creds = creds
	c.gateway.SetCredentials(address, creds)
	c.metadata.SetCredentials(address, creds)

	c.logger.Info("gateway credentials ready", zap.String("address", address))
	return creds, nil
}

// walletSigner extracts the key that signs session auth messages. Smart
// accounts authenticate with their owner key.
func walletSigner(w wallet.Wallet) (*signer.Signer, error) {
	switch v := w.(type) {
	case *wallet.EOA:
		return v.Signer(), nil
	case *wallet.SmartAccount:
		return v.Owner(), nil
	default:
		return nil, clienterrors.NewClientError("wallet cannot sign gateway auth messages")
	}
}

// UnifiedBalance reports the wallet's USDC across all supported chains.
func (c *Client) UnifiedBalance(ctx context.Context) (*types.UnifiedBalance, error) {
	if err := c.requireWallet(); err != nil {
		return nil, err
	}
	return c.gateway.UnifiedBalance(ctx, c.wallet.Address().Hex())
}

// TransferUSDC moves USDC to a recipient on this client's chain, funded
// from whichever chains the unified balance selects. Amount is in display
// units, e.g. "12.50".
func (c *Client) TransferUSDC(ctx context.Context, recipient string, amount string) (*gateway.TransferReceipt, error) {
	if err := c.requireWallet(); err != nil {
		return nil, err
	}

	target, _, err := apd.NewFromString(amount)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "invalid amount %q", amount)
	}

	sender := c.wallet.Address().Hex()
	plan, err := c.gateway.PlanTransfer(ctx, sender, target)
	if err != nil {
		return nil, err
	}

	c.logger.Info("planned cross-chain transfer",
		zap.String("recipient", recipient),
		zap.String("amount", amount),
		zap.Int("legs", len(plan)))

	return c.gateway.Transfer(ctx, recipient, c.contracts.GatewayChainKey, target, plan)
}

// RegisterDeposit tells the gateway about a USDC deposit made directly on
// chain so it shows up in the unified balance.
func (c *Client) RegisterDeposit(ctx context.Context, amount string, txHash string) (*gateway.TransferReceipt, error) {
	target, _, err := apd.NewFromString(amount)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "invalid amount %q", amount)
	}
	return c.gateway.Deposit(ctx, c.contracts.GatewayChainKey, target, txHash)
}

// TransferHistory lists the wallet's gateway transfers.
func (c *Client) TransferHistory(ctx context.Context) ([]gateway.TransferReceipt, error) {
	if err := c.requireWallet(); err != nil {
		return nil, err
	}
	return c.gateway.Transfers(ctx, c.wallet.Address().Hex())
}
