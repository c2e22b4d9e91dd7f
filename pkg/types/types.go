package types

import (
	"math/big"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/ethereum/go-ethereum/common"
)

// PostReference identifies the social post a market is tied to.
type PostReference struct {
	PostID uint64 `json:"post_id"`
	Author string `json:"author"`
}

// GatewayCreds represents API credentials for the gateway and metadata services
type GatewayCreds struct {
	APIKey        string `json:"api_key"`
	APISecret     string `json:"api_secret"`
	APIPassphrase string `json:"api_passphrase"`
}

// RequestArgs represents arguments for building request auth headers
type RequestArgs struct {
	Method      string      `json:"method"`
	RequestPath string      `json:"request_path"`
	Body        interface{} `json:"body,omitempty"`
}

// PoolState is the on-chain AMM pool state of a single market.
// Reserves and supply are in USDC minor units (6 decimals).
type PoolState struct {
	YesReserve      *big.Int `json:"yes_reserve"`
	NoReserve       *big.Int `json:"no_reserve"`
	LiquiditySupply *big.Int `json:"liquidity_supply"`
	CloseTime       uint64   `json:"close_time"`
	Resolved        bool     `json:"resolved"`
	Outcome         string   `json:"outcome,omitempty"` // YES/NO once resolved
}

// Market joins a market's on-chain state with its off-chain metadata.
type Market struct {
	ID      *big.Int    `json:"id"`
	PostRef [32]byte    `json:"-"`
	PostURL string      `json:"post_url,omitempty"`
	Pool    *PoolState  `json:"pool"`
	Meta    *MarketMeta `json:"meta,omitempty"`
}

// MarketMeta is the off-chain document stored per market: the generated
// question, descriptive context and a snapshot of the source post.
type MarketMeta struct {
	MarketID     string    `json:"market_id"`
	Question     string    `json:"question"`
	Context      string    `json:"context,omitempty"`
	PostURL      string    `json:"post_url"`
	PostSnapshot string    `json:"post_snapshot,omitempty"`
	Duration     Duration  `json:"duration,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Duration is a market lifetime from the enumerated set the AI service
// may suggest.
type Duration string

const (
	Duration1d  Duration = "1d"
	Duration3d  Duration = "3d"
	Duration7d  Duration = "7d"
	Duration14d Duration = "14d"
	Duration30d Duration = "30d"

	DefaultDuration = Duration7d
)

var durationSeconds = map[Duration]uint64{
	Duration1d:  24 * 60 * 60,
	Duration3d:  3 * 24 * 60 * 60,
	Duration7d:  7 * 24 * 60 * 60,
	Duration14d: 14 * 24 * 60 * 60,
	Duration30d: 30 * 24 * 60 * 60,
}

// Valid reports whether d is one of the enumerated durations.
func (d Duration) Valid() bool {
	_, ok := durationSeconds[d]
	return ok
}

// Seconds returns the duration length in seconds, or the default's length
// when d is not in the enumerated set.
func (d Duration) Seconds() uint64 {
	if s, ok := durationSeconds[d]; ok {
		return s
	}
	return durationSeconds[DefaultDuration]
}

// ChainBalance is the balance spendable from one chain, in display units,
// as reported by the gateway. Fetched fresh per query and never cached.
type ChainBalance struct {
	ChainKey  string       `json:"chain"`
	Available *apd.Decimal `json:"available"`
}

// UnifiedBalance presents USDC spread across chains as a single total.
type UnifiedBalance struct {
	Address string         `json:"address"`
	Total   *apd.Decimal   `json:"total"`
	Chains  []ChainBalance `json:"chains"`
}

// SourceAmount is one (chain, amount) leg of a cross-chain transfer plan.
type SourceAmount struct {
	ChainKey string       `json:"chain"`
	Amount   *apd.Decimal `json:"amount"`
}

// TransferSourcePlan is an ordered list of source legs whose amounts sum to
// at most the requested transfer target.
type TransferSourcePlan []SourceAmount

// Total sums the plan's leg amounts.
func (p TransferSourcePlan) Total() *apd.Decimal {
	total := apd.New(0, 0)
	ctx := apd.BaseContext.WithPrecision(34)
	for _, leg := range p {
		// amounts are bounded well inside the context precision
		ctx.Add(total, total, leg.Amount) //nolint:errcheck
	}
	return total
}

// TxRequest is a chain call to be signed and submitted by a wallet.
type TxRequest struct {
	To    common.Address
	Value *big.Int
	Data  []byte
}
