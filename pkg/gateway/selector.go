package gateway

import (
	"sort"

	"github.com/cockroachdb/apd/v3"

	"github.com/pooofdevelopment/go-postmarket-client/pkg/types"
)

// SelectorConfig parameterizes source selection for one asset. Both knobs
// follow the asset's minor-unit precision so a plan never proposes an
// amount the transfer mechanism cannot represent.
type SelectorConfig struct {
	// DustThreshold is the smallest standalone contribution a chain may
	// make to a plan, in display units.
	DustThreshold *apd.Decimal
	// Decimals is the flooring precision applied to every leg amount.
	Decimals int32
}

// DefaultSelectorConfig matches USDC: 6 decimals, 1e-6 dust floor.
func DefaultSelectorConfig() SelectorConfig {
	return SelectorConfig{
		DustThreshold: apd.New(1, -types.USDCDecimals),
		Decimals:      types.USDCDecimals,
	}
}

// decimal context sized far beyond any representable USDC amount
var decCtx = apd.BaseContext.WithPrecision(34)

// SelectSources partitions target across the given per-chain balances,
// largest balance first, and returns the ordered source plan. The walk
// takes min(available, remaining) from each chain, skips contributions
// below the dust threshold, and floors every taken amount to the
// configured precision (truncation only, never rounding up) while
// decrementing the remainder by the pre-floor take.
//
// The selector is total: it never fails, it returns an empty or partial
// plan instead. Callers compare Plan.Total() against target and treat a
// shortfall as insufficient balance.
func SelectSources(target *apd.Decimal, balances []types.ChainBalance, cfg SelectorConfig) types.TransferSourcePlan {
	plan := types.TransferSourcePlan{}
	if target == nil || target.Sign() <= 0 {
		return plan
	}
	if cfg.DustThreshold == nil {
		cfg = DefaultSelectorConfig()
	}

	usable := make([]types.ChainBalance, 0, len(balances))
	for _, b := range balances {
		if b.Available != nil && b.Available.Sign() > 0 {
			usable = append(usable, b)
		}
	}
	// stable: equal balances keep their reported order, so plans are
	// reproducible for a fixed input
	sort.SliceStable(usable, func(i, j int) bool {
		return usable[i].Available.Cmp(usable[j].Available) > 0
	})

	remaining := new(apd.Decimal).Set(target)
	floorCtx := *decCtx
	floorCtx.Rounding = apd.RoundFloor

	for _, entry := range usable {
		if remaining.Sign() <= 0 {
			break
		}

		take := entry.Available
		if remaining.Cmp(entry.Available) < 0 {
			take = remaining
		}
		if take.Cmp(cfg.DustThreshold) < 0 {
			// a sub-dust leg would strand value in the transfer mechanism
			continue
		}

		floored := new(apd.Decimal)
		// operands stay well inside the context precision
		floorCtx.Quantize(floored, take, -cfg.Decimals) //nolint:errcheck
		plan = append(plan, types.SourceAmount{ChainKey: entry.ChainKey, Amount: floored})

		// subtract the pre-floor take so the running total tracks what was
		// requested, not what flooring kept
		next := new(apd.Decimal)
		decCtx.Sub(next, remaining, take) //nolint:errcheck
		remaining = next
	}

	return plan
}
