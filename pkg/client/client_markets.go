package client

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	pkgerrors "github.com/pkg/errors"
	"go.uber.org/zap"

	clienterrors "github.com/pooofdevelopment/go-postmarket-client/pkg/errors"
	"github.com/pooofdevelopment/go-postmarket-client/pkg/market"
	"github.com/pooofdevelopment/go-postmarket-client/pkg/postref"
	"github.com/pooofdevelopment/go-postmarket-client/pkg/types"
)

// PendingMarket is the result of submitting a market creation. The market
// id is only known once the transaction lands, so it is resolved later
// with ConfirmMarket.
type PendingMarket struct {
	TxHash  common.Hash
	PostRef [32]byte
	PostURL string
	Meta    *types.MarketMeta
}

// CreateMarketFromPost generates a question for the post via the AI
// service, then submits the createMarket transaction. initialLiquidity is
// in USDC display units. The returned PendingMarket carries the metadata
// document to persist once the market id is known.
func (c *Client) CreateMarketFromPost(ctx context.Context, postURL string, initialLiquidity float64) (*PendingMarket, error) {
	if err := c.requireWallet(); err != nil {
		return nil, err
	}

	ref := postref.ParseURL(postURL)
	if ref == nil {
		return nil, clienterrors.ErrUnsupportedPostURL
	}
	encoded, err := postref.Encode(ref.PostID, ref.Author)
	if err != nil {
		return nil, err
	}

	// An existing market short-circuits creation.
	if _, err := c.market.MarketIDByPostRef(ctx, encoded); err == nil {
		return nil, pkgerrors.New("market already exists for post")
	} else if !pkgerrors.Is(err, clienterrors.ErrMarketNotFound) {
		return nil, err
	}

	generated, err := c.ai.Generate(ctx, postURL)
	if err != nil {
		return nil, err
	}

	closeTime := uint64(time.Now().Unix()) + generated.Duration.Seconds()
	liquidity := displayToMinorUnits(initialLiquidity)

	if err := c.ensureCollateralAllowance(ctx, liquidity); err != nil {
		return nil, err
	}

	call, err := c.market.CreateMarketCall(encoded, closeTime, liquidity)
	if err != nil {
		return nil, err
	}
	txHash, err := c.wallet.SendTransaction(ctx, call)
	if err != nil {
		return nil, err
	}

	c.logger.Info("submitted market creation",
		zap.String("tx", txHash.Hex()),
		zap.String("post_url", postURL),
		zap.String("question", generated.Question))

	return &PendingMarket{
		TxHash:  txHash,
		PostRef: encoded,
		PostURL: postURL,
		Meta: &types.MarketMeta{
			Question:     generated.Question,
			Context:      generated.Context,
			PostURL:      postURL,
			PostSnapshot: generated.PostSnapshot,
			Duration:     generated.Duration,
			CreatedAt:    time.Now().UTC(),
		},
	}, nil
}

// ConfirmMarket resolves a pending creation to its on-chain market id and
// persists the metadata document. Call it after the creation transaction
// has been mined; it returns ErrMarketNotFound until then.
func (c *Client) ConfirmMarket(ctx context.Context, pending *PendingMarket) (*types.Market, error) {
	id, err := c.market.MarketIDByPostRef(ctx, pending.PostRef)
	if err != nil {
		return nil, err
	}

	pool, err := c.market.GetPool(ctx, id)
	if err != nil {
		return nil, err
	}

	meta := pending.Meta
	meta.MarketID = id.String()
	if err := c.metadata.Put(ctx, meta); err != nil {
		// The market exists on chain regardless, so report it with the error.
		c.logger.Warn("market created but metadata write failed",
			zap.String("market_id", id.String()), zap.Error(err))
		return &types.Market{ID: id, PostRef: pending.PostRef, PostURL: pending.PostURL, Pool: pool}, err
	}

	return &types.Market{
		ID:      id,
		PostRef: pending.PostRef,
		PostURL: pending.PostURL,
		Pool:    pool,
		Meta:    meta,
	}, nil
}

// Market fetches one market's pool state, post URL and metadata.
func (c *Client) Market(ctx context.Context, marketID *big.Int) (*types.Market, error) {
	pool, err := c.market.GetPool(ctx, marketID)
	if err != nil {
		return nil, err
	}
	ref, err := c.market.PostRefOf(ctx, marketID)
	if err != nil {
		return nil, err
	}

	m := &types.Market{
		ID:      marketID,
		PostRef: ref,
		PostURL: postref.DecodeURL(ref),
		Pool:    pool,
	}

	// Metadata is best-effort; an unreachable store does not hide the market.
	if meta, err := c.metadata.Get(ctx, marketID.String()); err == nil {
		m.Meta = meta
	} else {
		c.logger.Debug("metadata lookup failed",
			zap.String("market_id", marketID.String()), zap.Error(err))
	}
	return m, nil
}

// MarketByPostURL looks up the market tied to a post URL.
func (c *Client) MarketByPostURL(ctx context.Context, postURL string) (*types.Market, error) {
	ref := postref.EncodeURL(postURL)
	if ref == postref.Zero {
		return nil, clienterrors.ErrUnsupportedPostURL
	}
	id, err := c.market.MarketIDByPostRef(ctx, ref)
	if err != nil {
		return nil, err
	}
	return c.Market(ctx, id)
}

// Markets lists all markets, newest first. Metadata lookups are
// best-effort per market.
func (c *Client) Markets(ctx context.Context) ([]types.Market, error) {
	count, err := c.market.MarketCount(ctx)
	if err != nil {
		return nil, err
	}

	markets := make([]types.Market, 0, count.Int64())
	one := big.NewInt(1)
	for id := new(big.Int).Set(count); id.Sign() > 0; id = new(big.Int).Sub(id, one) {
		m, err := c.Market(ctx, new(big.Int).Set(id))
		if err != nil {
			if pkgerrors.Is(err, clienterrors.ErrMarketNotFound) {
				continue
			}
			return nil, err
		}
		markets = append(markets, *m)
	}
	return markets, nil
}

// ImpliedProbability returns the market's current YES probability.
func (c *Client) ImpliedProbability(ctx context.Context, marketID *big.Int) (float64, error) {
	pool, err := c.market.GetPool(ctx, marketID)
	if err != nil {
		return 0, err
	}
	return market.ImpliedProbability(pool), nil
}
