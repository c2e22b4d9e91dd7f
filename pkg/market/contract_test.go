package market

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/pooofdevelopment/go-postmarket-client/pkg/errors"
	"github.com/pooofdevelopment/go-postmarket-client/pkg/types"
)

var (
	marketAddr     = common.HexToAddress("0x1111111111111111111111111111111111111111")
	collateralAddr = common.HexToAddress("0x2222222222222222222222222222222222222222")
)

// fakeBackend answers eth_call by method selector.
type fakeBackend struct {
	responses map[string][]byte
	calls     []ethereum.CallMsg
}

func (f *fakeBackend) CallContract(_ context.Context, call ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	f.calls = append(f.calls, call)
	sel := hex.EncodeToString(call.Data[:4])
	resp, ok := f.responses[sel]
	if !ok {
		return nil, fmt.Errorf("unexpected selector %s", sel)
	}
	return resp, nil
}

func selector(method string) string {
	return hex.EncodeToString(marketParsedABI.Methods[method].ID)
}

func packOutputs(t *testing.T, method string, values ...interface{}) []byte {
	t.Helper()
	out, err := marketParsedABI.Methods[method].Outputs.Pack(values...)
	require.NoError(t, err)
	return out
}

func TestGetPool(t *testing.T) {
	backend := &fakeBackend{responses: map[string][]byte{
		selector("pools"): packOutputs(t, "pools",
			big.NewInt(4_000_000), // yes reserve
			big.NewInt(6_000_000), // no reserve
			big.NewInt(5_000_000), // liquidity supply
			uint64(1_700_000_000),
			true,
			true,
		),
	}}
	c := New(marketAddr, collateralAddr, backend)

	pool, err := c.GetPool(context.Background(), big.NewInt(1))
	require.NoError(t, err)

	assert.Equal(t, int64(4_000_000), pool.YesReserve.Int64())
	assert.Equal(t, int64(6_000_000), pool.NoReserve.Int64())
	assert.Equal(t, uint64(1_700_000_000), pool.CloseTime)
	assert.True(t, pool.Resolved)
	assert.Equal(t, types.YES, pool.Outcome)

	require.Len(t, backend.calls, 1)
	assert.Equal(t, marketAddr, *backend.calls[0].To)
}

func TestGetPoolUnsetSlot(t *testing.T) {
	backend := &fakeBackend{responses: map[string][]byte{
		selector("pools"): packOutputs(t, "pools",
			new(big.Int), new(big.Int), new(big.Int), uint64(0), false, false),
	}}
	c := New(marketAddr, collateralAddr, backend)

	_, err := c.GetPool(context.Background(), big.NewInt(99))
	assert.ErrorIs(t, err, pkgerrors.ErrMarketNotFound)
}

func TestMarketIDByPostRef(t *testing.T) {
	ref := [32]byte{1, 2, 3}
	backend := &fakeBackend{responses: map[string][]byte{
		selector("marketIdByPostRef"): packOutputs(t, "marketIdByPostRef", big.NewInt(7)),
	}}
	c := New(marketAddr, collateralAddr, backend)

	id, err := c.MarketIDByPostRef(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, int64(7), id.Int64())
}

func TestMarketIDByPostRefUnknown(t *testing.T) {
	backend := &fakeBackend{responses: map[string][]byte{
		selector("marketIdByPostRef"): packOutputs(t, "marketIdByPostRef", new(big.Int)),
	}}
	c := New(marketAddr, collateralAddr, backend)

	_, err := c.MarketIDByPostRef(context.Background(), [32]byte{9})
	assert.ErrorIs(t, err, pkgerrors.ErrMarketNotFound)
}

func TestImpliedProbability(t *testing.T) {
	tests := []struct {
		name string
		yes  int64
		no   int64
		want float64
	}{
		{name: "even pool", yes: 5_000_000, no: 5_000_000, want: 0.5},
		{name: "yes favored", yes: 4_000_000, no: 6_000_000, want: 0.6},
		{name: "no favored", yes: 9_000_000, no: 1_000_000, want: 0.1},
		{name: "empty pool", yes: 0, no: 0, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := &types.PoolState{
				YesReserve: big.NewInt(tt.yes),
				NoReserve:  big.NewInt(tt.no),
			}
			assert.InDelta(t, tt.want, ImpliedProbability(pool), 1e-9)
		})
	}
}

func TestBuyCallEncoding(t *testing.T) {
	c := New(marketAddr, collateralAddr, nil)

	req, err := c.BuyCall(big.NewInt(3), true, big.NewInt(1_000_000), big.NewInt(900_000))
	require.NoError(t, err)

	assert.Equal(t, marketAddr, req.To)
	assert.Zero(t, req.Value.Sign())
	assert.Equal(t, marketParsedABI.Methods["buyShares"].ID, req.Data[:4])

	values, err := marketParsedABI.Methods["buyShares"].Inputs.Unpack(req.Data[4:])
	require.NoError(t, err)
	assert.Equal(t, int64(3), values[0].(*big.Int).Int64())
	assert.Equal(t, true, values[1].(bool))
	assert.Equal(t, int64(1_000_000), values[2].(*big.Int).Int64())
	assert.Equal(t, int64(900_000), values[3].(*big.Int).Int64())
}

func TestApproveCollateralCallTargetsToken(t *testing.T) {
	c := New(marketAddr, collateralAddr, nil)

	req, err := c.ApproveCollateralCall(big.NewInt(5_000_000))
	require.NoError(t, err)

	assert.Equal(t, collateralAddr, req.To)
	assert.Equal(t, erc20ParsedABI.Methods["approve"].ID, req.Data[:4])
}

func TestCreateMarketCallEncoding(t *testing.T) {
	c := New(marketAddr, collateralAddr, nil)
	ref := [32]byte{0xAA, 0xBB}

	req, err := c.CreateMarketCall(ref, 1_800_000_000, big.NewInt(10_000_000))
	require.NoError(t, err)

	values, err := marketParsedABI.Methods["createMarket"].Inputs.Unpack(req.Data[4:])
	require.NoError(t, err)
	assert.Equal(t, ref, values[0].([32]byte))
	assert.Equal(t, uint64(1_800_000_000), values[1].(uint64))
}
