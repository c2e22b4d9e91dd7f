package wallet

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/pooofdevelopment/go-postmarket-client/pkg/httpclient"
	"github.com/pooofdevelopment/go-postmarket-client/pkg/types"
)

// UserOperation is the 4337-style operation envelope the bundler accepts.
// Numeric fields travel as hex quantities.
type UserOperation struct {
	Sender               common.Address `json:"sender"`
	Nonce                *hexutil.Big   `json:"nonce"`
	InitCode             hexutil.Bytes  `json:"initCode"`
	CallData             hexutil.Bytes  `json:"callData"`
	CallGasLimit         *hexutil.Big   `json:"callGasLimit"`
	VerificationGasLimit *hexutil.Big   `json:"verificationGasLimit"`
	PreVerificationGas   *hexutil.Big   `json:"preVerificationGas"`
	MaxFeePerGas         *hexutil.Big   `json:"maxFeePerGas"`
	MaxPriorityFeePerGas *hexutil.Big   `json:"maxPriorityFeePerGas"`
	PaymasterAndData     hexutil.Bytes  `json:"paymasterAndData"`
	Signature            hexutil.Bytes  `json:"signature"`
}

var (
	typeAddress = mustABIType("address")
	typeUint256 = mustABIType("uint256")
	typeBytes32 = mustABIType("bytes32")

	userOpPackArgs = abi.Arguments{
		{Type: typeAddress}, // sender
		{Type: typeUint256}, // nonce
		{Type: typeBytes32}, // keccak(initCode)
		{Type: typeBytes32}, // keccak(callData)
		{Type: typeUint256}, // callGasLimit
		{Type: typeUint256}, // verificationGasLimit
		{Type: typeUint256}, // preVerificationGas
		{Type: typeUint256}, // maxFeePerGas
		{Type: typeUint256}, // maxPriorityFeePerGas
		{Type: typeBytes32}, // keccak(paymasterAndData)
	}

	userOpHashArgs = abi.Arguments{
		{Type: typeBytes32}, // keccak(packed op)
		{Type: typeAddress}, // entry point
		{Type: typeUint256}, // chain id
	}
)

func mustABIType(name string) abi.Type {
	t, err := abi.NewType(name, "", nil)
	if err != nil {
		panic(err)
	}
	return t
}

// Hash computes the user-operation hash the entry point expects the owner
// signature to cover: keccak(keccak(packed fields), entryPoint, chainID).
func (op *UserOperation) Hash(entryPoint common.Address, chainID *big.Int) (common.Hash, error) {
	packed, err := userOpPackArgs.Pack(
		op.Sender,
		op.Nonce.ToInt(),
		crypto.Keccak256Hash(op.InitCode),
		crypto.Keccak256Hash(op.CallData),
		op.CallGasLimit.ToInt(),
		op.VerificationGasLimit.ToInt(),
		op.PreVerificationGas.ToInt(),
		op.MaxFeePerGas.ToInt(),
		op.MaxPriorityFeePerGas.ToInt(),
		crypto.Keccak256Hash(op.PaymasterAndData),
	)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to pack user operation: %w", err)
	}

	outer, err := userOpHashArgs.Pack(crypto.Keccak256Hash(packed), entryPoint, chainID)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to pack user operation envelope: %w", err)
	}
	return crypto.Keccak256Hash(outer), nil
}

// BundlerClient posts user operations to a 4337 bundler over JSON-RPC.
type BundlerClient struct {
	url        string
	httpClient *httpclient.Client
}

// NewBundlerClient creates a bundler client for the given RPC URL.
func NewBundlerClient(url string) *BundlerClient {
	return &BundlerClient{url: url, httpClient: httpclient.NewClient()}
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func (b *BundlerClient) call(ctx context.Context, method string, params []interface{}, out interface{}) error {
	req := rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params}
	var resp rpcResponse
	if err := b.httpClient.PostJSON(ctx, b.url, nil, req, &resp); err != nil {
		return err
	}
	if resp.Error != nil {
		return fmt.Errorf("bundler error %d: %s", resp.Error.Code, resp.Error.Message)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Result, out); err != nil {
		return fmt.Errorf("failed to decode bundler result: %w", err)
	}
	return nil
}

// GasEstimate is the bundler's gas quote for a user operation.
type GasEstimate struct {
	PreVerificationGas   *hexutil.Big `json:"preVerificationGas"`
	VerificationGasLimit *hexutil.Big `json:"verificationGasLimit"`
	CallGasLimit         *hexutil.Big `json:"callGasLimit"`
}

// EstimateUserOperationGas asks the bundler for gas limits for op.
func (b *BundlerClient) EstimateUserOperationGas(ctx context.Context, op *UserOperation, entryPoint common.Address) (*GasEstimate, error) {
	var est GasEstimate
	if err := b.call(ctx, types.MethodEstimateUserOperation, []interface{}{op, entryPoint.Hex()}, &est); err != nil {
		return nil, err
	}
	return &est, nil
}

// SendUserOperation submits op and returns the user-operation hash.
func (b *BundlerClient) SendUserOperation(ctx context.Context, op *UserOperation, entryPoint common.Address) (common.Hash, error) {
	var hashHex string
	if err := b.call(ctx, types.MethodSendUserOperation, []interface{}{op, entryPoint.Hex()}, &hashHex); err != nil {
		return common.Hash{}, err
	}
	return common.HexToHash(hashHex), nil
}

// UserOperationLookup is the bundler's record of a submitted operation.
type UserOperationLookup struct {
	UserOperation   *UserOperation `json:"userOperation"`
	EntryPoint      common.Address `json:"entryPoint"`
	BlockNumber     *hexutil.Big   `json:"blockNumber"`
	BlockHash       common.Hash    `json:"blockHash"`
	TransactionHash common.Hash    `json:"transactionHash"`
}

// GetUserOperationByHash looks up a submitted operation. Returns nil
// without error while the bundler has not included it yet.
func (b *BundlerClient) GetUserOperationByHash(ctx context.Context, hash common.Hash) (*UserOperationLookup, error) {
	var lookup *UserOperationLookup
	if err := b.call(ctx, types.MethodGetUserOperationByHash, []interface{}{hash.Hex()}, &lookup); err != nil {
		return nil, err
	}
	return lookup, nil
}
