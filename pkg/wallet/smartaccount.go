package wallet

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/pooofdevelopment/go-postmarket-client/pkg/signer"
	"github.com/pooofdevelopment/go-postmarket-client/pkg/types"
)

// CallBackend is the read-only node access the smart account needs to
// query its entry-point nonce.
type CallBackend interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// SmartAccount is the sponsored wallet variant: an embedded account whose
// calls are wrapped in user operations, paid for by a paymaster and posted
// to a bundler. The owner key never holds gas money.
type SmartAccount struct {
	owner      *signer.Signer
	account    common.Address
	entryPoint common.Address
	paymaster  []byte
	bundler    *BundlerClient
	backend    CallBackend
}

// SmartAccountConfig collects the deployment-specific pieces of a smart
// account.
type SmartAccountConfig struct {
	// Account is the deployed (or counterfactual) account address.
	Account common.Address
	// EntryPoint is the 4337 entry-point contract.
	EntryPoint common.Address
	// PaymasterAndData sponsors gas; empty means self-paying operations.
	PaymasterAndData []byte
	// BundlerURL is the bundler JSON-RPC endpoint.
	BundlerURL string
}

// NewSmartAccount creates the sponsored wallet variant around an owner key.
func NewSmartAccount(ownerKeyHex string, chainID int64, cfg SmartAccountConfig, backend CallBackend) (*SmartAccount, error) {
	owner, err := signer.NewSigner(ownerKeyHex, chainID)
	if err != nil {
		return nil, err
	}
	if cfg.Account == (common.Address{}) {
		return nil, fmt.Errorf("smart account address is required")
	}
	if cfg.BundlerURL == "" {
		return nil, fmt.Errorf("bundler URL is required")
	}
	return &SmartAccount{
		owner:      owner,
		account:    cfg.Account,
		entryPoint: cfg.EntryPoint,
		paymaster:  cfg.PaymasterAndData,
		bundler:    NewBundlerClient(cfg.BundlerURL),
		backend:    backend,
	}, nil
}

func (w *SmartAccount) Address() common.Address {
	return w.account
}

func (w *SmartAccount) Kind() string {
	return types.WalletKindSmartAccount
}

// Owner returns the owner key wrapper, used for API auth header signing.
func (w *SmartAccount) Owner() *signer.Signer {
	return w.owner
}

func (w *SmartAccount) SignHash(_ context.Context, hash [32]byte) ([]byte, error) {
	return w.owner.SignHash(hash)
}

// executeABI is the account's single-call dispatch function.
const executeABI = `[{"name":"execute","type":"function","inputs":[
	{"name":"dest","type":"address"},
	{"name":"value","type":"uint256"},
	{"name":"func","type":"bytes"}],"outputs":[]}]`

// getNonceABI reads the account's sequential nonce from the entry point.
const getNonceABI = `[{"name":"getNonce","type":"function","stateMutability":"view","inputs":[
	{"name":"sender","type":"address"},
	{"name":"key","type":"uint192"}],"outputs":[{"name":"nonce","type":"uint256"}]}]`

var (
	executeParsedABI  = mustParseABI(executeABI)
	getNonceParsedABI = mustParseABI(getNonceABI)
)

func mustParseABI(s string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(err)
	}
	return parsed
}

// SendTransaction wraps the call in a sponsored user operation: encode
// execute(to, value, data), fetch the entry-point nonce, take the
// bundler's gas quote, sign the operation hash with the owner key and
// submit. The returned hash is the user-operation hash.
func (w *SmartAccount) SendTransaction(ctx context.Context, req types.TxRequest) (common.Hash, error) {
	value := req.Value
	if value == nil {
		value = new(big.Int)
	}

	callData, err := packExecute(req.To, value, req.Data)
	if err != nil {
		return common.Hash{}, err
	}

	nonce, err := w.entryPointNonce(ctx)
	if err != nil {
		return common.Hash{}, err
	}

	op := &UserOperation{
		Sender:               w.account,
		Nonce:                (*hexutil.Big)(nonce),
		InitCode:             hexutil.Bytes{},
		CallData:             callData,
		CallGasLimit:         (*hexutil.Big)(new(big.Int)),
		VerificationGasLimit: (*hexutil.Big)(new(big.Int)),
		PreVerificationGas:   (*hexutil.Big)(new(big.Int)),
		MaxFeePerGas:         (*hexutil.Big)(new(big.Int)),
		MaxPriorityFeePerGas: (*hexutil.Big)(new(big.Int)),
		PaymasterAndData:     w.paymaster,
		Signature:            hexutil.Bytes{},
	}

	est, err := w.bundler.EstimateUserOperationGas(ctx, op, w.entryPoint)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to estimate user operation gas: %w", err)
	}
	op.CallGasLimit = est.CallGasLimit
	op.VerificationGasLimit = est.VerificationGasLimit
	op.PreVerificationGas = est.PreVerificationGas

	opHash, err := op.Hash(w.entryPoint, w.owner.ChainID())
	if err != nil {
		return common.Hash{}, err
	}
	// the account validates an ERC-191 personal-message signature over the
	// operation hash
	signed := accounts.TextHash(opHash.Bytes())
	sig, err := w.owner.SignHash([32]byte(signed))
	if err != nil {
		return common.Hash{}, err
	}
	op.Signature = sig

	return w.bundler.SendUserOperation(ctx, op, w.entryPoint)
}

// ConfirmUserOperation looks up a previously submitted operation on the
// bundler. Returns nil without error while it is still pending; once
// included, the lookup carries the transaction that landed it.
func (w *SmartAccount) ConfirmUserOperation(ctx context.Context, opHash common.Hash) (*UserOperationLookup, error) {
	return w.bundler.GetUserOperationByHash(ctx, opHash)
}

func packExecute(to common.Address, value *big.Int, data []byte) (hexutil.Bytes, error) {
	packed, err := executeParsedABI.Pack("execute", to, value, data)
	if err != nil {
		return nil, fmt.Errorf("failed to pack execute call: %w", err)
	}
	return packed, nil
}

func (w *SmartAccount) entryPointNonce(ctx context.Context) (*big.Int, error) {
	input, err := getNonceParsedABI.Pack("getNonce", w.account, new(big.Int))
	if err != nil {
		return nil, fmt.Errorf("failed to pack getNonce call: %w", err)
	}
	out, err := w.backend.CallContract(ctx, ethereum.CallMsg{To: &w.entryPoint, Data: input}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read entry-point nonce: %w", err)
	}
	values, err := getNonceParsedABI.Unpack("getNonce", out)
	if err != nil {
		return nil, fmt.Errorf("failed to decode entry-point nonce: %w", err)
	}
	nonce, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected nonce type %T", values[0])
	}
	return nonce, nil
}
