package signer

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer wraps a local ECDSA key. It is the signing primitive shared by
// both wallet variants: the EOA wallet signs transactions with it directly,
// the smart-account wallet uses it as the account owner key.
type Signer struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
	chainID    *big.Int
}

// NewSigner creates a new signer from a hex private key string
func NewSigner(privateKeyHex string, chainID int64) (*Signer, error) {
	if privateKeyHex == "" || chainID == 0 {
		return nil, fmt.Errorf("private key and chain ID are required")
	}

	privateKeyHex = strings.TrimPrefix(privateKeyHex, "0x")

	privateKey, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	publicKey, ok := privateKey.Public().(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("failed to cast public key to ECDSA")
	}

	return &Signer{
		privateKey: privateKey,
		address:    crypto.PubkeyToAddress(*publicKey),
		chainID:    big.NewInt(chainID),
	}, nil
}

// Address returns the signer's address
func (s *Signer) Address() common.Address {
	return s.address
}

// ChainID returns the chain ID the signer is bound to
func (s *Signer) ChainID() *big.Int {
	return new(big.Int).Set(s.chainID)
}

// SignHash signs a 32-byte digest and returns the 65-byte [R || S || V]
// signature with V in Ethereum's 27/28 convention.
func (s *Signer) SignHash(hash [32]byte) ([]byte, error) {
	signature, err := crypto.Sign(hash[:], s.privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign digest: %w", err)
	}
	signature[64] += 27
	return signature, nil
}

// SignHashHex signs a 32-byte digest and returns the signature hex-encoded
// with a 0x prefix, the form the gateway auth headers carry.
func (s *Signer) SignHashHex(hash [32]byte) (string, error) {
	signature, err := s.SignHash(hash)
	if err != nil {
		return "", err
	}
	return "0x" + common.Bytes2Hex(signature), nil
}

// PrivateKey returns the underlying key for transaction signing.
func (s *Signer) PrivateKey() *ecdsa.PrivateKey {
	return s.privateKey
}
