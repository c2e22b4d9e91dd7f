package client

import (
	"context"
	"math/big"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	clienterrors "github.com/pooofdevelopment/go-postmarket-client/pkg/errors"
	"github.com/pooofdevelopment/go-postmarket-client/pkg/types"
	"github.com/pooofdevelopment/go-postmarket-client/pkg/utilities"
)

// DefaultSlippageBps is the default tolerance applied to quotes when
// deriving the min-out bound for a trade.
const DefaultSlippageBps = 100

// TradeParams describes a buy or sell against a market's pool.
// Amount is in USDC display units for buys and in shares (display units)
// for sells. ExactAmount, when set, takes precedence over Amount and
// avoids float conversion entirely. SlippageBps of zero means
// DefaultSlippageBps.
type TradeParams struct {
	MarketID    *big.Int
	OutcomeYes  bool
	Amount      float64
	ExactAmount *apd.Decimal
	SlippageBps int64
}

// minorUnits converts the trade size to minor units. Both paths truncate
// below minor-unit precision so a trade never spends more than asked.
func (p TradeParams) minorUnits() (*big.Int, error) {
	if p.ExactAmount != nil {
		return utilities.DecimalToMinorUnits(p.ExactAmount)
	}
	return displayToMinorUnits(p.Amount), nil
}

// displayToMinorUnits floors a display-unit float at USDC precision before
// scaling, so float noise above the 6th decimal cannot round the amount
// up.
func displayToMinorUnits(amount float64) *big.Int {
	return utilities.ToMinorUnits(utilities.RoundDown(amount, types.USDCDecimals))
}

// TradeResult reports a submitted trade and the quote it was priced at.
type TradeResult struct {
	TxHash common.Hash
	Quoted *big.Int // quoted out amount in minor units
	MinOut *big.Int // min-out bound submitted with the trade
}

func applySlippage(quoted *big.Int, bps int64) *big.Int {
	if bps == 0 {
		bps = DefaultSlippageBps
	}
	minOut := new(big.Int).Mul(quoted, big.NewInt(10000-bps))
	return minOut.Div(minOut, big.NewInt(10000))
}

// ensureCollateralAllowance approves the market contract for the wallet's
// collateral when the current allowance does not cover amount.
func (c *Client) ensureCollateralAllowance(ctx context.Context, amount *big.Int) error {
	owner := c.wallet.Address()
	allowance, err := c.market.CollateralAllowance(ctx, owner)
	if err != nil {
		return err
	}
	if allowance.Cmp(amount) >= 0 {
		return nil
	}

	call, err := c.market.ApproveCollateralCall(amount)
	if err != nil {
		return err
	}
	txHash, err := c.wallet.SendTransaction(ctx, call)
	if err != nil {
		return err
	}
	c.logger.Info("approved collateral",
		zap.String("tx", txHash.Hex()),
		zap.String("amount", utilities.FormatUSDC(amount)))
	return nil
}

// checkOpen rejects trades against closed or resolved markets before
// spending gas on them.
func (c *Client) checkOpen(ctx context.Context, marketID *big.Int) error {
	pool, err := c.market.GetPool(ctx, marketID)
	if err != nil {
		return err
	}
	if pool.Resolved || pool.CloseTime <= uint64(time.Now().Unix()) {
		return clienterrors.ErrMarketClosed
	}
	return nil
}

// Buy swaps USDC into outcome shares. The quote is taken at call time and
// the trade carries a min-out bound derived from it.
func (c *Client) Buy(ctx context.Context, params TradeParams) (*TradeResult, error) {
	if err := c.requireWallet(); err != nil {
		return nil, err
	}
	if err := c.checkOpen(ctx, params.MarketID); err != nil {
		return nil, err
	}

	usdcIn, err := params.minorUnits()
	if err != nil {
		return nil, err
	}
	quoted, err := c.market.QuoteBuy(ctx, params.MarketID, params.OutcomeYes, usdcIn)
	if err != nil {
		return nil, err
	}
	minOut := applySlippage(quoted, params.SlippageBps)
	if minOut.Sign() <= 0 {
		return nil, clienterrors.NewSlippageError(quoted.String(), minOut.String())
	}

	if err := c.ensureCollateralAllowance(ctx, usdcIn); err != nil {
		return nil, err
	}

	call, err := c.market.BuyCall(params.MarketID, params.OutcomeYes, usdcIn, minOut)
	if err != nil {
		return nil, err
	}
	txHash, err := c.wallet.SendTransaction(ctx, call)
	if err != nil {
		return nil, err
	}

	c.logger.Info("submitted buy",
		zap.String("tx", txHash.Hex()),
		zap.String("market_id", params.MarketID.String()),
		zap.Bool("yes", params.OutcomeYes),
		zap.String("usdc_in", utilities.FormatUSDC(usdcIn)))

	return &TradeResult{TxHash: txHash, Quoted: quoted, MinOut: minOut}, nil
}

// Sell swaps outcome shares back into USDC, with a min-out bound derived
// from the current quote.
func (c *Client) Sell(ctx context.Context, params TradeParams) (*TradeResult, error) {
	if err := c.requireWallet(); err != nil {
		return nil, err
	}
	if err := c.checkOpen(ctx, params.MarketID); err != nil {
		return nil, err
	}

	sharesIn, err := params.minorUnits()
	if err != nil {
		return nil, err
	}
	quoted, err := c.market.QuoteSell(ctx, params.MarketID, params.OutcomeYes, sharesIn)
	if err != nil {
		return nil, err
	}
	minOut := applySlippage(quoted, params.SlippageBps)
	if minOut.Sign() <= 0 {
		return nil, clienterrors.NewSlippageError(quoted.String(), minOut.String())
	}

	call, err := c.market.SellCall(params.MarketID, params.OutcomeYes, sharesIn, minOut)
	if err != nil {
		return nil, err
	}
	txHash, err := c.wallet.SendTransaction(ctx, call)
	if err != nil {
		return nil, err
	}

	c.logger.Info("submitted sell",
		zap.String("tx", txHash.Hex()),
		zap.String("market_id", params.MarketID.String()),
		zap.Bool("yes", params.OutcomeYes),
		zap.String("shares_in", utilities.FormatUSDC(sharesIn)))

	return &TradeResult{TxHash: txHash, Quoted: quoted, MinOut: minOut}, nil
}

// AddLiquidity deposits USDC into a market's pool for LP shares.
func (c *Client) AddLiquidity(ctx context.Context, marketID *big.Int, amount float64) (common.Hash, error) {
	if err := c.requireWallet(); err != nil {
		return common.Hash{}, err
	}
	if err := c.checkOpen(ctx, marketID); err != nil {
		return common.Hash{}, err
	}

	usdcIn := displayToMinorUnits(amount)
	if err := c.ensureCollateralAllowance(ctx, usdcIn); err != nil {
		return common.Hash{}, err
	}

	call, err := c.market.AddLiquidityCall(marketID, usdcIn)
	if err != nil {
		return common.Hash{}, err
	}
	return c.wallet.SendTransaction(ctx, call)
}

// RemoveLiquidity burns LP shares for the underlying collateral.
func (c *Client) RemoveLiquidity(ctx context.Context, marketID *big.Int, lpShares *big.Int) (common.Hash, error) {
	if err := c.requireWallet(); err != nil {
		return common.Hash{}, err
	}

	call, err := c.market.RemoveLiquidityCall(marketID, lpShares)
	if err != nil {
		return common.Hash{}, err
	}
	return c.wallet.SendTransaction(ctx, call)
}

// Redeem claims winnings from a resolved market.
func (c *Client) Redeem(ctx context.Context, marketID *big.Int) (common.Hash, error) {
	if err := c.requireWallet(); err != nil {
		return common.Hash{}, err
	}

	pool, err := c.market.GetPool(ctx, marketID)
	if err != nil {
		return common.Hash{}, err
	}
	if !pool.Resolved {
		return common.Hash{}, clienterrors.NewClientError("market is not resolved yet")
	}

	call, err := c.market.RedeemCall(marketID)
	if err != nil {
		return common.Hash{}, err
	}
	return c.wallet.SendTransaction(ctx, call)
}

// Quote prices a prospective buy without submitting anything. Returns
// shares out in minor units.
func (c *Client) Quote(ctx context.Context, marketID *big.Int, outcomeYes bool, usdcAmount float64) (*big.Int, error) {
	return c.market.QuoteBuy(ctx, marketID, outcomeYes, displayToMinorUnits(usdcAmount))
}
