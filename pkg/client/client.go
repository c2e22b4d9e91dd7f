// Package client composes the postmarket SDK: the AMM contract, the
// wallet, the cross-chain gateway, the metadata store and the AI question
// service behind one client.
package client

import (
	"context"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/go-playground/validator/v10"
	pkgerrors "github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/pooofdevelopment/go-postmarket-client/pkg/ai"
	"github.com/pooofdevelopment/go-postmarket-client/pkg/config"
	clienterrors "github.com/pooofdevelopment/go-postmarket-client/pkg/errors"
	"github.com/pooofdevelopment/go-postmarket-client/pkg/gateway"
	"github.com/pooofdevelopment/go-postmarket-client/pkg/market"
	"github.com/pooofdevelopment/go-postmarket-client/pkg/metadata"
	"github.com/pooofdevelopment/go-postmarket-client/pkg/types"
	"github.com/pooofdevelopment/go-postmarket-client/pkg/wallet"
)

// ChainBackend is the node access the client needs: contract reads plus
// transaction submission. *ethclient.Client satisfies it.
type ChainBackend interface {
	market.Backend
	wallet.Backend
}

// Config collects the service endpoints the client talks to. RPCURL may
// be empty when a backend is injected with WithBackend.
type Config struct {
	ChainID      int64  `validate:"required"`
	RPCURL       string `validate:"omitempty,url"`
	GatewayHost  string `validate:"required,url"`
	MetadataHost string `validate:"required,url"`
	AIHost       string `validate:"required,url"`
}

// Client is the composed postmarket client.
type Client struct {
	chainID   int64
	contracts *config.ContractConfig
	backend   ChainBackend
	wallet    wallet.Wallet
	market    *market.Contract
	gateway   *gateway.Client
	metadata  *metadata.Store
	ai        *ai.Client
	creds     *types.GatewayCreds
	logger    *zap.Logger
}

// Option is a functional option for configuring the Client
type Option func(*Client)

// WithWallet sets the wallet transactions are submitted through.
func WithWallet(w wallet.Wallet) Option {
	return func(c *Client) {
		c.wallet = w
	}
}

// WithBackend injects a chain backend instead of dialing Config.RPCURL.
func WithBackend(backend ChainBackend) Option {
	return func(c *Client) {
		c.backend = backend
	}
}

// WithGatewayCredentials sets the API credentials for gateway and
// metadata writes.
func WithGatewayCredentials(creds *types.GatewayCreds) Option {
	return func(c *Client) {
		c.creds = creds
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a postmarket client. The wallet is optional; a client
// without one can read markets and balances but not transact.
func New(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	c := &Client{
		chainID: cfg.ChainID,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, pkgerrors.WithStack(err)
	}

	contracts, err := config.GetContractConfig(cfg.ChainID)
	if err != nil {
		return nil, clienterrors.ErrInvalidChainID
	}
	c.contracts = contracts

	if c.backend == nil {
		if cfg.RPCURL == "" {
			return nil, pkgerrors.New("either RPCURL or an injected backend is required")
		}
		eth, err := ethclient.DialContext(ctx, cfg.RPCURL)
		if err != nil {
			return nil, pkgerrors.WithStack(err)
		}
		c.backend = eth
	}

	c.market = market.New(contracts.Market, contracts.Collateral, c.backend)

	gatewayOpts := []gateway.Option{gateway.WithLogger(c.logger)}
	metaOpts := []metadata.Option{}
	if c.creds != nil && c.wallet != nil {
		addr := c.wallet.Address().Hex()
		gatewayOpts = append(gatewayOpts, gateway.WithCredentials(addr, c.creds))
		metaOpts = append(metaOpts, metadata.WithCredentials(addr, c.creds))
	}
	c.gateway = gateway.NewClient(cfg.GatewayHost, gatewayOpts...)
	c.metadata = metadata.NewStore(cfg.MetadataHost, metaOpts...)
	c.ai = ai.NewClient(cfg.AIHost)

	return c, nil
}

// Wallet returns the configured wallet, or nil for a read-only client.
func (c *Client) Wallet() wallet.Wallet {
	return c.wallet
}

// Gateway returns the underlying gateway client.
func (c *Client) Gateway() *gateway.Client {
	return c.gateway
}

// Contract returns the underlying market contract client.
func (c *Client) Contract() *market.Contract {
	return c.market
}

// ChainKey returns this chain's identifier in the gateway API.
func (c *Client) ChainKey() string {
	return c.contracts.GatewayChainKey
}

func (c *Client) requireWallet() error {
	if c.wallet == nil {
		return clienterrors.ErrWalletUnavailable
	}
	return nil
}
