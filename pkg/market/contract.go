// Package market is the typed client for the on-chain prediction-market
// AMM. Reads go through eth_call; writes are returned as call requests the
// caller submits through a wallet, so the same code path serves gas-paying
// and sponsored submission.
package market

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	pkgerrors "github.com/pooofdevelopment/go-postmarket-client/pkg/errors"
	"github.com/pooofdevelopment/go-postmarket-client/pkg/types"
)

// Backend is the read-only node access the contract client needs;
// *ethclient.Client satisfies it.
type Backend interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Contract is a typed handle on one market-contract deployment.
type Contract struct {
	address    common.Address
	collateral common.Address
	backend    Backend
}

// New creates a contract client. collateral is the USDC token the pools
// settle in.
func New(address, collateral common.Address, backend Backend) *Contract {
	return &Contract{address: address, collateral: collateral, backend: backend}
}

// Address returns the market contract address.
func (c *Contract) Address() common.Address {
	return c.address
}

// Collateral returns the USDC token address.
func (c *Contract) Collateral() common.Address {
	return c.collateral
}

func (c *Contract) call(ctx context.Context, parsed abi.ABI, to common.Address, method string, args ...interface{}) ([]interface{}, error) {
	input, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s call: %w", method, err)
	}
	out, err := c.backend.CallContract(ctx, ethereum.CallMsg{To: &to, Data: input}, nil)
	if err != nil {
		return nil, pkgerrors.NewRevertError(method, err)
	}
	values, err := parsed.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s result: %w", method, err)
	}
	return values, nil
}

// MarketCount returns how many markets have been created.
func (c *Contract) MarketCount(ctx context.Context) (*big.Int, error) {
	values, err := c.call(ctx, marketParsedABI, c.address, "marketCount")
	if err != nil {
		return nil, err
	}
	return values[0].(*big.Int), nil
}

// GetPool reads a market's pool state.
func (c *Contract) GetPool(ctx context.Context, marketID *big.Int) (*types.PoolState, error) {
	values, err := c.call(ctx, marketParsedABI, c.address, "pools", marketID)
	if err != nil {
		return nil, err
	}

	pool := &types.PoolState{
		YesReserve:      values[0].(*big.Int),
		NoReserve:       values[1].(*big.Int),
		LiquiditySupply: values[2].(*big.Int),
		CloseTime:       values[3].(uint64),
		Resolved:        values[4].(bool),
	}
	if pool.Resolved {
		if values[5].(bool) {
			pool.Outcome = types.YES
		} else {
			pool.Outcome = types.NO
		}
	}
	// an unset slot decodes to all zeroes
	if pool.CloseTime == 0 {
		return nil, pkgerrors.ErrMarketNotFound
	}
	return pool, nil
}

// PostRefOf reads the packed post reference a market was created from.
func (c *Contract) PostRefOf(ctx context.Context, marketID *big.Int) ([32]byte, error) {
	values, err := c.call(ctx, marketParsedABI, c.address, "postRefs", marketID)
	if err != nil {
		return [32]byte{}, err
	}
	return values[0].([32]byte), nil
}

// MarketIDByPostRef looks up the market created for a post reference.
// Returns ErrMarketNotFound for an unknown reference.
func (c *Contract) MarketIDByPostRef(ctx context.Context, ref [32]byte) (*big.Int, error) {
	values, err := c.call(ctx, marketParsedABI, c.address, "marketIdByPostRef", ref)
	if err != nil {
		return nil, err
	}
	id := values[0].(*big.Int)
	if id.Sign() == 0 {
		return nil, pkgerrors.ErrMarketNotFound
	}
	return id, nil
}

// QuoteBuy quotes the shares a USDC amount would buy right now.
func (c *Contract) QuoteBuy(ctx context.Context, marketID *big.Int, outcomeYes bool, usdcIn *big.Int) (*big.Int, error) {
	values, err := c.call(ctx, marketParsedABI, c.address, "quoteBuy", marketID, outcomeYes, usdcIn)
	if err != nil {
		return nil, err
	}
	return values[0].(*big.Int), nil
}

// QuoteSell quotes the USDC a share amount would sell for right now.
func (c *Contract) QuoteSell(ctx context.Context, marketID *big.Int, outcomeYes bool, sharesIn *big.Int) (*big.Int, error) {
	values, err := c.call(ctx, marketParsedABI, c.address, "quoteSell", marketID, outcomeYes, sharesIn)
	if err != nil {
		return nil, err
	}
	return values[0].(*big.Int), nil
}

// CollateralBalance reads the owner's USDC balance (minor units).
func (c *Contract) CollateralBalance(ctx context.Context, owner common.Address) (*big.Int, error) {
	values, err := c.call(ctx, erc20ParsedABI, c.collateral, "balanceOf", owner)
	if err != nil {
		return nil, err
	}
	return values[0].(*big.Int), nil
}

// CollateralAllowance reads how much USDC the market contract may pull
// from owner.
func (c *Contract) CollateralAllowance(ctx context.Context, owner common.Address) (*big.Int, error) {
	values, err := c.call(ctx, erc20ParsedABI, c.collateral, "allowance", owner, c.address)
	if err != nil {
		return nil, err
	}
	return values[0].(*big.Int), nil
}

// ImpliedProbability derives the YES probability from pool reserves: the
// cheaper side is the likelier one, so p(YES) = noReserve / (yes + no).
func ImpliedProbability(pool *types.PoolState) float64 {
	yes := new(big.Float).SetInt(pool.YesReserve)
	no := new(big.Float).SetInt(pool.NoReserve)
	sum := new(big.Float).Add(yes, no)
	if sum.Sign() == 0 {
		return 0
	}
	p, _ := new(big.Float).Quo(no, sum).Float64()
	return p
}

// write-call builders: each returns the call request a wallet submits

func (c *Contract) packTx(parsed abi.ABI, to common.Address, method string, args ...interface{}) (types.TxRequest, error) {
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return types.TxRequest{}, fmt.Errorf("failed to pack %s call: %w", method, err)
	}
	return types.TxRequest{To: to, Value: new(big.Int), Data: data}, nil
}

// CreateMarketCall builds the createMarket transaction.
func (c *Contract) CreateMarketCall(postRef [32]byte, closeTime uint64, initialLiquidity *big.Int) (types.TxRequest, error) {
	return c.packTx(marketParsedABI, c.address, "createMarket", postRef, closeTime, initialLiquidity)
}

// BuyCall builds the buyShares transaction.
func (c *Contract) BuyCall(marketID *big.Int, outcomeYes bool, usdcIn, minSharesOut *big.Int) (types.TxRequest, error) {
	return c.packTx(marketParsedABI, c.address, "buyShares", marketID, outcomeYes, usdcIn, minSharesOut)
}

// SellCall builds the sellShares transaction.
func (c *Contract) SellCall(marketID *big.Int, outcomeYes bool, sharesIn, minUsdcOut *big.Int) (types.TxRequest, error) {
	return c.packTx(marketParsedABI, c.address, "sellShares", marketID, outcomeYes, sharesIn, minUsdcOut)
}

// AddLiquidityCall builds the addLiquidity transaction.
func (c *Contract) AddLiquidityCall(marketID *big.Int, usdcIn *big.Int) (types.TxRequest, error) {
	return c.packTx(marketParsedABI, c.address, "addLiquidity", marketID, usdcIn)
}

// RemoveLiquidityCall builds the removeLiquidity transaction.
func (c *Contract) RemoveLiquidityCall(marketID *big.Int, lpShares *big.Int) (types.TxRequest, error) {
	return c.packTx(marketParsedABI, c.address, "removeLiquidity", marketID, lpShares)
}

// RedeemCall builds the redeem transaction for a resolved market.
func (c *Contract) RedeemCall(marketID *big.Int) (types.TxRequest, error) {
	return c.packTx(marketParsedABI, c.address, "redeem", marketID)
}

// ApproveCollateralCall builds the USDC approve transaction granting the
// market contract an allowance.
func (c *Contract) ApproveCollateralCall(amount *big.Int) (types.TxRequest, error) {
	return c.packTx(erc20ParsedABI, c.collateral, "approve", c.address, amount)
}
