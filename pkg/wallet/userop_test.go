package wallet

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/pooofdevelopment/go-postmarket-client/pkg/types"
)

func testUserOp() *UserOperation {
	return &UserOperation{
		Sender:               common.HexToAddress("0x3333333333333333333333333333333333333333"),
		Nonce:                (*hexutil.Big)(big.NewInt(4)),
		InitCode:             hexutil.Bytes{},
		CallData:             hexutil.Bytes{0x01, 0x02},
		CallGasLimit:         (*hexutil.Big)(big.NewInt(100_000)),
		VerificationGasLimit: (*hexutil.Big)(big.NewInt(200_000)),
		PreVerificationGas:   (*hexutil.Big)(big.NewInt(50_000)),
		MaxFeePerGas:         (*hexutil.Big)(big.NewInt(1_000_000_000)),
		MaxPriorityFeePerGas: (*hexutil.Big)(big.NewInt(100_000_000)),
		PaymasterAndData:     hexutil.Bytes{},
		Signature:            hexutil.Bytes{},
	}
}

func TestUserOperationHash(t *testing.T) {
	entryPoint := common.HexToAddress("0x5FF137D4b0FDCD49DcA30c7CF57E578a026d2789")
	chainID := big.NewInt(8453)

	op := testUserOp()
	h1, err := op.Hash(entryPoint, chainID)
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	h2, err := op.Hash(entryPoint, chainID)
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if h1 != h2 {
		t.Error("hash is not deterministic")
	}

	// The hash binds the chain id and entry point.
	other, err := op.Hash(entryPoint, big.NewInt(137))
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if other == h1 {
		t.Error("different chain id produced identical hash")
	}

	// And the call data.
	changed := testUserOp()
	changed.CallData = hexutil.Bytes{0xff}
	h3, err := changed.Hash(entryPoint, chainID)
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if h3 == h1 {
		t.Error("different call data produced identical hash")
	}
}

func TestBundlerSendUserOperation(t *testing.T) {
	wantHash := "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if req.Method != types.MethodSendUserOperation {
			t.Errorf("method = %s, want %s", req.Method, types.MethodSendUserOperation)
		}
		if len(req.Params) != 2 {
			t.Errorf("params length = %d, want 2", len(req.Params))
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0", "id": 1, "result": wantHash,
		})
	}))
	defer server.Close()

	b := NewBundlerClient(server.URL)
	hash, err := b.SendUserOperation(context.Background(), testUserOp(), common.Address{})
	if err != nil {
		t.Fatalf("SendUserOperation error: %v", err)
	}
	if hash != common.HexToHash(wantHash) {
		t.Errorf("hash = %s, want %s", hash.Hex(), wantHash)
	}
}

func TestBundlerErrorSurface(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0", "id": 1,
			"error": map[string]interface{}{"code": -32500, "message": "paymaster rejected"},
		})
	}))
	defer server.Close()

	b := NewBundlerClient(server.URL)
	_, err := b.SendUserOperation(context.Background(), testUserOp(), common.Address{})
	if err == nil {
		t.Fatal("expected bundler error")
	}
	if got := err.Error(); got != "bundler error -32500: paymaster rejected" {
		t.Errorf("unexpected error message: %s", got)
	}
}

func TestBundlerGetUserOperationByHash(t *testing.T) {
	opHash := common.HexToHash("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	txHash := common.HexToHash("0xcccccccccccccccccccccccccccccccccccccccccccccccccccccccccccccccc")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string   `json:"method"`
			Params []string `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if req.Method != types.MethodGetUserOperationByHash {
			t.Errorf("method = %s, want %s", req.Method, types.MethodGetUserOperationByHash)
		}
		if len(req.Params) != 1 || req.Params[0] != opHash.Hex() {
			t.Errorf("params = %v, want [%s]", req.Params, opHash.Hex())
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0", "id": 1,
			"result": map[string]interface{}{
				"userOperation":   testUserOp(),
				"entryPoint":      "0x5FF137D4b0FDCD49DcA30c7CF57E578a026d2789",
				"blockNumber":     "0x10",
				"blockHash":       common.Hash{}.Hex(),
				"transactionHash": txHash.Hex(),
			},
		})
	}))
	defer server.Close()

	b := NewBundlerClient(server.URL)
	lookup, err := b.GetUserOperationByHash(context.Background(), opHash)
	if err != nil {
		t.Fatalf("GetUserOperationByHash error: %v", err)
	}
	if lookup == nil {
		t.Fatal("expected lookup, got nil")
	}
	if lookup.TransactionHash != txHash {
		t.Errorf("tx hash = %s, want %s", lookup.TransactionHash.Hex(), txHash.Hex())
	}
	if lookup.BlockNumber.ToInt().Int64() != 16 {
		t.Errorf("block number = %d, want 16", lookup.BlockNumber.ToInt().Int64())
	}
	if lookup.UserOperation == nil || lookup.UserOperation.Sender != testUserOp().Sender {
		t.Error("user operation not decoded")
	}
}

func TestBundlerGetUserOperationByHashPending(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0", "id": 1, "result": nil,
		})
	}))
	defer server.Close()

	b := NewBundlerClient(server.URL)
	lookup, err := b.GetUserOperationByHash(context.Background(), common.Hash{})
	if err != nil {
		t.Fatalf("GetUserOperationByHash error: %v", err)
	}
	if lookup != nil {
		t.Errorf("expected nil lookup for pending operation, got %+v", lookup)
	}
}

func TestSmartAccountConfirmUserOperation(t *testing.T) {
	txHash := common.HexToHash("0xcccccccccccccccccccccccccccccccccccccccccccccccccccccccccccccccc")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0", "id": 1,
			"result": map[string]interface{}{
				"userOperation":   testUserOp(),
				"entryPoint":      "0x5FF137D4b0FDCD49DcA30c7CF57E578a026d2789",
				"blockNumber":     "0x10",
				"blockHash":       common.Hash{}.Hex(),
				"transactionHash": txHash.Hex(),
			},
		})
	}))
	defer server.Close()

	w, err := NewSmartAccount(testPrivateKey, 8453, SmartAccountConfig{
		Account:    common.HexToAddress("0x4444444444444444444444444444444444444444"),
		EntryPoint: common.HexToAddress("0x5FF137D4b0FDCD49DcA30c7CF57E578a026d2789"),
		BundlerURL: server.URL,
	}, nil)
	if err != nil {
		t.Fatalf("NewSmartAccount error: %v", err)
	}

	lookup, err := w.ConfirmUserOperation(context.Background(), common.Hash{})
	if err != nil {
		t.Fatalf("ConfirmUserOperation error: %v", err)
	}
	if lookup == nil || lookup.TransactionHash != txHash {
		t.Errorf("lookup = %+v, want transaction %s", lookup, txHash.Hex())
	}
}

func TestBundlerEstimateGas(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0", "id": 1,
			"result": map[string]string{
				"preVerificationGas":   "0xc350",
				"verificationGasLimit": "0x30d40",
				"callGasLimit":         "0x186a0",
			},
		})
	}))
	defer server.Close()

	b := NewBundlerClient(server.URL)
	est, err := b.EstimateUserOperationGas(context.Background(), testUserOp(), common.Address{})
	if err != nil {
		t.Fatalf("EstimateUserOperationGas error: %v", err)
	}
	if est.CallGasLimit.ToInt().Int64() != 100_000 {
		t.Errorf("call gas = %d, want 100000", est.CallGasLimit.ToInt().Int64())
	}
	if est.PreVerificationGas.ToInt().Int64() != 50_000 {
		t.Errorf("pre-verification gas = %d, want 50000", est.PreVerificationGas.ToInt().Int64())
	}
}
