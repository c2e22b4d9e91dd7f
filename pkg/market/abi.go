package market

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// marketABI is the surface of the prediction-market AMM contract the
// client calls. Pools price YES/NO shares from their reserves; all
// amounts are USDC minor units.
const marketABI = `[
	{"name":"marketCount","type":"function","stateMutability":"view","inputs":[],
		"outputs":[{"name":"count","type":"uint256"}]},
	{"name":"pools","type":"function","stateMutability":"view",
		"inputs":[{"name":"marketId","type":"uint256"}],
		"outputs":[
			{"name":"yesReserve","type":"uint256"},
			{"name":"noReserve","type":"uint256"},
			{"name":"liquiditySupply","type":"uint256"},
			{"name":"closeTime","type":"uint64"},
			{"name":"resolved","type":"bool"},
			{"name":"outcomeYes","type":"bool"}]},
	{"name":"postRefs","type":"function","stateMutability":"view",
		"inputs":[{"name":"marketId","type":"uint256"}],
		"outputs":[{"name":"ref","type":"bytes32"}]},
	{"name":"marketIdByPostRef","type":"function","stateMutability":"view",
		"inputs":[{"name":"ref","type":"bytes32"}],
		"outputs":[{"name":"marketId","type":"uint256"}]},
	{"name":"quoteBuy","type":"function","stateMutability":"view",
		"inputs":[
			{"name":"marketId","type":"uint256"},
			{"name":"outcomeYes","type":"bool"},
			{"name":"usdcIn","type":"uint256"}],
		"outputs":[{"name":"sharesOut","type":"uint256"}]},
	{"name":"quoteSell","type":"function","stateMutability":"view",
		"inputs":[
			{"name":"marketId","type":"uint256"},
			{"name":"outcomeYes","type":"bool"},
			{"name":"sharesIn","type":"uint256"}],
		"outputs":[{"name":"usdcOut","type":"uint256"}]},
	{"name":"createMarket","type":"function",
		"inputs":[
			{"name":"postRef","type":"bytes32"},
			{"name":"closeTime","type":"uint64"},
			{"name":"initialLiquidity","type":"uint256"}],
		"outputs":[{"name":"marketId","type":"uint256"}]},
	{"name":"buyShares","type":"function",
		"inputs":[
			{"name":"marketId","type":"uint256"},
			{"name":"outcomeYes","type":"bool"},
			{"name":"usdcIn","type":"uint256"},
			{"name":"minSharesOut","type":"uint256"}],
		"outputs":[{"name":"sharesOut","type":"uint256"}]},
	{"name":"sellShares","type":"function",
		"inputs":[
			{"name":"marketId","type":"uint256"},
			{"name":"outcomeYes","type":"bool"},
			{"name":"sharesIn","type":"uint256"},
			{"name":"minUsdcOut","type":"uint256"}],
		"outputs":[{"name":"usdcOut","type":"uint256"}]},
	{"name":"addLiquidity","type":"function",
		"inputs":[
			{"name":"marketId","type":"uint256"},
			{"name":"usdcIn","type":"uint256"}],
		"outputs":[{"name":"lpShares","type":"uint256"}]},
	{"name":"removeLiquidity","type":"function",
		"inputs":[
			{"name":"marketId","type":"uint256"},
			{"name":"lpShares","type":"uint256"}],
		"outputs":[{"name":"usdcOut","type":"uint256"}]},
	{"name":"redeem","type":"function",
		"inputs":[{"name":"marketId","type":"uint256"}],
		"outputs":[{"name":"usdcOut","type":"uint256"}]}
]`

// erc20ABI covers the collateral-token calls the client needs.
const erc20ABI = `[
	{"name":"balanceOf","type":"function","stateMutability":"view",
		"inputs":[{"name":"owner","type":"address"}],
		"outputs":[{"name":"balance","type":"uint256"}]},
	{"name":"allowance","type":"function","stateMutability":"view",
		"inputs":[
			{"name":"owner","type":"address"},
			{"name":"spender","type":"address"}],
		"outputs":[{"name":"remaining","type":"uint256"}]},
	{"name":"approve","type":"function",
		"inputs":[
			{"name":"spender","type":"address"},
			{"name":"amount","type":"uint256"}],
		"outputs":[{"name":"ok","type":"bool"}]}
]`

var (
	marketParsedABI = mustParseABI(marketABI)
	erc20ParsedABI  = mustParseABI(erc20ABI)
)

func mustParseABI(s string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(err)
	}
	return parsed
}
