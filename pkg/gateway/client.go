// Package gateway talks to the cross-chain USDC gateway: the unified
// balance API and the burn/mint transfer API, plus the pure source
// selection that decides which chains a transfer debits.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pooofdevelopment/go-postmarket-client/pkg/errors"
	"github.com/pooofdevelopment/go-postmarket-client/pkg/headers"
	"github.com/pooofdevelopment/go-postmarket-client/pkg/httpclient"
	"github.com/pooofdevelopment/go-postmarket-client/pkg/types"
)

// Client is the gateway API client.
type Client struct {
	host       string
	httpClient *httpclient.Client
	creds      *types.GatewayCreds
	address    string
	selector   SelectorConfig
	logger     *zap.Logger
}

// Option is a functional option for configuring the gateway client
type Option func(*Client)

// WithCredentials sets the API credentials used for transfer submission.
func WithCredentials(address string, creds *types.GatewayCreds) Option {
	return func(c *Client) {
		c.address = address
		c.creds = creds
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpclient.NewClientWithHTTPClient(httpClient)
	}
}

// WithSelectorConfig overrides the source-selection parameters.
func WithSelectorConfig(cfg SelectorConfig) Option {
	return func(c *Client) {
		c.selector = cfg
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a gateway client for the given API host.
func NewClient(host string, opts ...Option) *Client {
	c := &Client{
		host:       strings.TrimSuffix(host, "/"),
		httpClient: httpclient.NewClient(),
		selector:   DefaultSelectorConfig(),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// wire shapes: the gateway reports amounts as decimal strings in display
// units

type balanceWire struct {
	Chain     string `json:"chain"`
	Available string `json:"available"`
}

type unifiedBalanceWire struct {
	Address string        `json:"address"`
	Total   string        `json:"total"`
	Chains  []balanceWire `json:"chains"`
}

// UnifiedBalance fetches the per-chain balances for address. The result is
// a fresh snapshot; the client never caches it.
func (c *Client) UnifiedBalance(ctx context.Context, address string) (*types.UnifiedBalance, error) {
	url := httpclient.WithQuery(c.host+types.GatewayBalances, map[string]string{"address": address})

	var wire unifiedBalanceWire
	if err := c.httpClient.GetJSON(ctx, url, nil, &wire); err != nil {
		return nil, fmt.Errorf("failed to fetch unified balance: %w", err)
	}

	total, _, err := apd.NewFromString(wire.Total)
	if err != nil {
		return nil, fmt.Errorf("invalid total %q in balance response: %w", wire.Total, err)
	}
	out := &types.UnifiedBalance{
		Address: wire.Address,
		Total:   total,
		Chains:  make([]types.ChainBalance, 0, len(wire.Chains)),
	}
	for _, ch := range wire.Chains {
		available, _, err := apd.NewFromString(ch.Available)
		if err != nil {
			return nil, fmt.Errorf("invalid balance %q for chain %s: %w", ch.Available, ch.Chain, err)
		}
		out.Chains = append(out.Chains, types.ChainBalance{ChainKey: ch.Chain, Available: available})
	}

	c.logger.Debug("fetched unified balance",
		zap.String("address", address),
		zap.String("total", total.Text('f')),
		zap.Int("chains", len(out.Chains)))

	return out, nil
}

// SupportedChains lists the chain keys the gateway can burn from or mint
// to.
func (c *Client) SupportedChains(ctx context.Context) ([]string, error) {
	var out struct {
		Chains []string `json:"chains"`
	}
	if err := c.httpClient.GetJSON(ctx, c.host+types.GatewayChains, nil, &out); err != nil {
		return nil, fmt.Errorf("failed to fetch supported chains: %w", err)
	}
	return out.Chains, nil
}

// PlanTransfer fetches the caller's unified balance and selects sources
// for target. It returns ErrInsufficientUnifiedBalance when the plan's
// total falls short of target, and ErrZeroPlan when nothing at all is
// usable.
func (c *Client) PlanTransfer(ctx context.Context, address string, target *apd.Decimal) (types.TransferSourcePlan, error) {
	balance, err := c.UnifiedBalance(ctx, address)
	if err != nil {
		return nil, err
	}

	plan := SelectSources(target, balance.Chains, c.selector)
	total := plan.Total()
	if total.Sign() == 0 {
		return nil, errors.ErrZeroPlan
	}
	if total.Cmp(target) < 0 {
		return nil, errors.ErrInsufficientUnifiedBalance
	}
	return plan, nil
}

// TransferRequest asks the gateway for a burn/mint move of USDC to a
// recipient on the destination chain, debited from the planned sources.
type TransferRequest struct {
	Recipient   string               `json:"recipient"`
	DestChain   string               `json:"dest_chain"`
	Amount      string               `json:"amount"`
	Sources     []transferSourceWire `json:"sources"`
	Idempotency string               `json:"idempotency_key"`
}

type transferSourceWire struct {
	Chain  string `json:"chain"`
	Amount string `json:"amount"`
}

// TransferReceipt is the gateway's acknowledgement of a transfer.
type TransferReceipt struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Transfer executes a planned cross-chain move. Requires API credentials.
func (c *Client) Transfer(ctx context.Context, recipient, destChain string, target *apd.Decimal, plan types.TransferSourcePlan) (*TransferReceipt, error) {
	if c.creds == nil {
		return nil, errors.ErrGatewayAuthUnavailable
	}
	if len(plan) == 0 {
		return nil, errors.ErrZeroPlan
	}

	req := TransferRequest{
		Recipient:   recipient,
		DestChain:   destChain,
		Amount:      target.Text('f'),
		Sources:     make([]transferSourceWire, 0, len(plan)),
		Idempotency: uuid.NewString(),
	}
	for _, leg := range plan {
		req.Sources = append(req.Sources, transferSourceWire{Chain: leg.ChainKey, Amount: leg.Amount.Text('f')})
	}

	h, err := headers.CreateAPIKeyHeaders(c.address, c.creds, &types.RequestArgs{
		Method:      http.MethodPost,
		RequestPath: types.GatewayTransfer,
		Body:        req,
	})
	if err != nil {
		return nil, err
	}

	var receipt TransferReceipt
	if err := c.httpClient.PostJSON(ctx, c.host+types.GatewayTransfer, h, req, &receipt); err != nil {
		return nil, fmt.Errorf("transfer failed: %w", err)
	}

	c.logger.Info("submitted gateway transfer",
		zap.String("id", receipt.ID),
		zap.String("dest_chain", destChain),
		zap.String("amount", req.Amount),
		zap.Int("sources", len(plan)))

	return &receipt, nil
}

// DepositRequest credits the unified balance from a single source chain.
type DepositRequest struct {
	Chain       string `json:"chain"`
	Amount      string `json:"amount"`
	TxHash      string `json:"tx_hash"`
	Idempotency string `json:"idempotency_key"`
}

// Deposit registers an on-chain deposit with the gateway so it shows up in
// the unified balance once confirmed.
func (c *Client) Deposit(ctx context.Context, chain string, amount *apd.Decimal, txHash string) (*TransferReceipt, error) {
	if c.creds == nil {
		return nil, errors.ErrGatewayAuthUnavailable
	}

	req := DepositRequest{
		Chain:       chain,
		Amount:      amount.Text('f'),
		TxHash:      txHash,
		Idempotency: uuid.NewString(),
	}

	h, err := headers.CreateAPIKeyHeaders(c.address, c.creds, &types.RequestArgs{
		Method:      http.MethodPost,
		RequestPath: types.GatewayDeposit,
		Body:        req,
	})
	if err != nil {
		return nil, err
	}

	var receipt TransferReceipt
	if err := c.httpClient.PostJSON(ctx, c.host+types.GatewayDeposit, h, req, &receipt); err != nil {
		return nil, fmt.Errorf("deposit failed: %w", err)
	}
	return &receipt, nil
}

// Transfers lists past transfers for an address, newest first.
func (c *Client) Transfers(ctx context.Context, address string) ([]TransferReceipt, error) {
	url := httpclient.WithQuery(c.host+types.GatewayTransfers, map[string]string{"address": address})

	var out struct {
		Transfers []TransferReceipt `json:"transfers"`
	}
	if err := c.httpClient.GetJSON(ctx, url, nil, &out); err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}
	return out.Transfers, nil
}
