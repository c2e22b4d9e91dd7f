// Package metadata is the accessor for the off-chain market metadata
// store: question text, AI-generated context and the source post snapshot,
// keyed by on-chain market ID.
package metadata

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/pooofdevelopment/go-postmarket-client/pkg/headers"
	"github.com/pooofdevelopment/go-postmarket-client/pkg/httpclient"
	"github.com/pooofdevelopment/go-postmarket-client/pkg/types"
)

// Store is the metadata service client.
type Store struct {
	host       string
	httpClient *httpclient.Client
	creds      *types.GatewayCreds
	address    string
}

// Option is a functional option for configuring the store
type Option func(*Store)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(s *Store) {
		s.httpClient = httpclient.NewClientWithHTTPClient(httpClient)
	}
}

// WithCredentials sets the API credentials writes are signed with.
func WithCredentials(address string, creds *types.GatewayCreds) Option {
	return func(s *Store) {
		s.address = address
		s.creds = creds
	}
}

// SetCredentials attaches API credentials for subsequent writes.
func (s *Store) SetCredentials(address string, creds *types.GatewayCreds) {
	s.address = address
	s.creds = creds
}

// NewStore creates a metadata store client for the given service host.
func NewStore(host string, opts ...Option) *Store {
	s := &Store{
		host:       strings.TrimSuffix(host, "/"),
		httpClient: httpclient.NewClient(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get fetches the metadata document for a market.
func (s *Store) Get(ctx context.Context, marketID string) (*types.MarketMeta, error) {
	var meta types.MarketMeta
	if err := s.httpClient.GetJSON(ctx, s.host+types.MetaMarket+marketID, nil, &meta); err != nil {
		return nil, fmt.Errorf("failed to fetch metadata for market %s: %w", marketID, err)
	}
	return &meta, nil
}

// Put stores the metadata document for a market, overwriting any previous
// version.
func (s *Store) Put(ctx context.Context, meta *types.MarketMeta) error {
	path := types.MetaMarket + meta.MarketID

	var h map[string]string
	if s.creds != nil {
		var err error
		h, err = headers.CreateAPIKeyHeaders(s.address, s.creds, &types.RequestArgs{
			Method:      http.MethodPut,
			RequestPath: path,
			Body:        meta,
		})
		if err != nil {
			return err
		}
	}

	if err := s.httpClient.PutJSON(ctx, s.host+path, h, meta, nil); err != nil {
		return fmt.Errorf("failed to store metadata for market %s: %w", meta.MarketID, err)
	}
	return nil
}

// List fetches metadata documents for all markets, newest first.
func (s *Store) List(ctx context.Context) ([]types.MarketMeta, error) {
	var out struct {
		Markets []types.MarketMeta `json:"markets"`
	}
	if err := s.httpClient.GetJSON(ctx, s.host+types.MetaMarkets, nil, &out); err != nil {
		return nil, fmt.Errorf("failed to list market metadata: %w", err)
	}
	return out.Markets, nil
}
