// Package wallet provides the two wallet variants the client can submit
// transactions through: a gas-paying EOA backed by a local key, and a
// sponsored smart account that posts user operations to a bundler. Callers
// hold the Wallet interface and dispatch once at construction time.
package wallet

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/pooofdevelopment/go-postmarket-client/pkg/types"
)

// Wallet is a capability an on-chain call can be submitted through.
type Wallet interface {
	// Address is the account address on-chain state is attributed to (the
	// smart-account address for the sponsored variant, not its owner key).
	Address() common.Address
	// Kind reports the wallet variant, types.WalletKindEOA or
	// types.WalletKindSmartAccount.
	Kind() string
	// SignHash signs a 32-byte digest with the wallet's key.
	SignHash(ctx context.Context, hash [32]byte) ([]byte, error)
	// SendTransaction signs and submits the call, returning the
	// transaction hash (or user-operation hash for sponsored submission).
	SendTransaction(ctx context.Context, req types.TxRequest) (common.Hash, error)
}

// Backend is the subset of ethclient.Client the EOA wallet needs. It is an
// interface so tests can substitute a fake node.
type Backend interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*ethtypes.Header, error)
	EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *ethtypes.Transaction) error
}
