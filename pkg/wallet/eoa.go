package wallet

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/pooofdevelopment/go-postmarket-client/pkg/signer"
	"github.com/pooofdevelopment/go-postmarket-client/pkg/types"
)

// EOA is the gas-paying wallet variant: a plain externally-owned account
// that signs EIP-1559 transactions locally and submits them itself.
type EOA struct {
	signer  *signer.Signer
	backend Backend
}

// NewEOA creates an EOA wallet from a hex private key.
func NewEOA(privateKeyHex string, chainID int64, backend Backend) (*EOA, error) {
	s, err := signer.NewSigner(privateKeyHex, chainID)
	if err != nil {
		return nil, err
	}
	return &EOA{signer: s, backend: backend}, nil
}

// NewEOAFromSigner wraps an existing signer.
func NewEOAFromSigner(s *signer.Signer, backend Backend) *EOA {
	return &EOA{signer: s, backend: backend}
}

func (w *EOA) Address() common.Address {
	return w.signer.Address()
}

func (w *EOA) Kind() string {
	return types.WalletKindEOA
}

// Signer exposes the underlying key wrapper for API auth header signing.
func (w *EOA) Signer() *signer.Signer {
	return w.signer
}

func (w *EOA) SignHash(_ context.Context, hash [32]byte) ([]byte, error) {
	return w.signer.SignHash(hash)
}

// SendTransaction builds, signs and submits an EIP-1559 transaction for
// the requested call, paying gas from the account's own balance.
func (w *EOA) SendTransaction(ctx context.Context, req types.TxRequest) (common.Hash, error) {
	from := w.signer.Address()

	nonce, err := w.backend.PendingNonceAt(ctx, from)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to fetch nonce: %w", err)
	}

	tip, err := w.backend.SuggestGasTipCap(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to fetch gas tip: %w", err)
	}
	head, err := w.backend.HeaderByNumber(ctx, nil)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to fetch head: %w", err)
	}
	if head.BaseFee == nil {
		return common.Hash{}, fmt.Errorf("chain %d does not report a base fee; dynamic fee transactions unsupported", w.signer.ChainID())
	}
	// tip + 2*baseFee keeps the cap valid across short base-fee climbs
	feeCap := new(big.Int).Add(tip, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))

	value := req.Value
	if value == nil {
		value = new(big.Int)
	}

	gas, err := w.backend.EstimateGas(ctx, ethereum.CallMsg{
		From:  from,
		To:    &req.To,
		Value: value,
		Data:  req.Data,
	})
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to estimate gas: %w", err)
	}

	to := req.To
	tx := ethtypes.NewTx(&ethtypes.DynamicFeeTx{
		ChainID:   w.signer.ChainID(),
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       gas,
		To:        &to,
		Value:     value,
		Data:      req.Data,
	})

	signed, err := ethtypes.SignTx(tx, ethtypes.LatestSignerForChainID(w.signer.ChainID()), w.signer.PrivateKey())
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := w.backend.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("failed to submit transaction: %w", err)
	}

	return signed.Hash(), nil
}
