package config

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// ContractConfig holds the per-chain deployment addresses and service
// identifiers the client needs.
type ContractConfig struct {
	// Market is the prediction-market AMM contract.
	Market common.Address
	// Collateral is the USDC token the pools settle in.
	Collateral common.Address
	// EntryPoint is the 4337 entry point smart accounts run through.
	EntryPoint common.Address
	// GatewayChainKey is this chain's identifier in the gateway's
	// unified-balance API.
	GatewayChainKey string
}

// canonical entry point deployment shared across chains
var entryPoint = common.HexToAddress("0x5FF137D4b0FDCD49DcA30c7CF57E578a026d2789")

var configs = map[int64]*ContractConfig{
	8453: { // Base mainnet
		Market:          common.HexToAddress("0x6A3fDE2647F74E03F0A7F75E47a7399fB9fDC345"),
		Collateral:      common.HexToAddress("0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"),
		EntryPoint:      entryPoint,
		GatewayChainKey: "base",
	},
	84532: { // Base Sepolia testnet
		Market:          common.HexToAddress("0x91b2E49Ed1A60F39cD4cD7A1e2bbfAE45E1f8b4C"),
		Collateral:      common.HexToAddress("0x036CbD53842c5426634e7929541eC2318f3dCF7e"),
		EntryPoint:      entryPoint,
		GatewayChainKey: "base-sepolia",
	},
	42161: { // Arbitrum One
		Market:          common.HexToAddress("0xD3aF54dE2A4C921A18a1B2861A1b2e0b5aFd8c2E"),
		Collateral:      common.HexToAddress("0xaf88d065e77c8cC2239327C5EDb3A432268e5831"),
		EntryPoint:      entryPoint,
		GatewayChainKey: "arbitrum",
	},
	137: { // Polygon mainnet
		Market:          common.HexToAddress("0x2E8fBB61E1b1E4fD8F1a47E1c77a3aE5A2d9cD2a"),
		Collateral:      common.HexToAddress("0x3c499c542cEF5E3811e1192ce70d8cC03d5c3359"),
		EntryPoint:      entryPoint,
		GatewayChainKey: "polygon",
	},
}

// GetContractConfig returns the deployment configuration for a chain.
func GetContractConfig(chainID int64) (*ContractConfig, error) {
	cfg, ok := configs[chainID]
	if !ok {
		return nil, fmt.Errorf("invalid chainID: %d", chainID)
	}
	return cfg, nil
}

// SupportedChainIDs lists the chains the client has deployments for.
func SupportedChainIDs() []int64 {
	ids := make([]int64, 0, len(configs))
	for id := range configs {
		ids = append(ids, id)
	}
	return ids
}
