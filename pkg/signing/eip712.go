package signing

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/pooofdevelopment/go-postmarket-client/pkg/signer"
)

// Constants for gateway session authentication
const (
	AuthDomainName = "PostmarketAuthDomain"
	AuthVersion    = "1"
	MsgToSign      = "This message attests that I control the given wallet"
)

// SessionAuth is the EIP-712 message a wallet signs to open a gateway
// session.
type SessionAuth struct {
	Address   string `json:"address"`
	Timestamp string `json:"timestamp"`
	Nonce     int    `json:"nonce"`
	Message   string `json:"message"`
}

// EIP712Domain represents the domain separator for EIP712
type EIP712Domain struct {
	Name    string   `json:"name"`
	Version string   `json:"version"`
	ChainID *big.Int `json:"chainId"`
}

// SignSessionAuthMessage signs the gateway session authentication message
// with the wallet's key.
func SignSessionAuthMessage(s *signer.Signer, timestamp int64, nonce int) (string, error) {
	authMsg := SessionAuth{
		Address:   s.Address().Hex(),
		Timestamp: fmt.Sprintf("%d", timestamp),
		Nonce:     nonce,
		Message:   MsgToSign,
	}

	domain := EIP712Domain{
		Name:    AuthDomainName,
		Version: AuthVersion,
		ChainID: s.ChainID(),
	}

	domainSeparator := buildDomainSeparatorHash(domain)
	messageHash := buildAuthMessageHash(authMsg)

	rawData := append([]byte("\x19\x01"), domainSeparator.Bytes()...)
	rawData = append(rawData, messageHash.Bytes()...)
	finalHash := crypto.Keccak256Hash(rawData)

	signature, err := s.SignHashHex([32]byte(finalHash))
	if err != nil {
		return "", err
	}

	return signature, nil
}

// buildDomainSeparatorHash builds the domain separator hash
func buildDomainSeparatorHash(domain EIP712Domain) common.Hash {
	// keccak256("EIP712Domain(string name,string version,uint256 chainId)")
	typeHash := crypto.Keccak256Hash([]byte("EIP712Domain(string name,string version,uint256 chainId)"))

	nameHash := crypto.Keccak256Hash([]byte(domain.Name))
	versionHash := crypto.Keccak256Hash([]byte(domain.Version))

	encoded := make([]byte, 0, 128)
	encoded = append(encoded, typeHash.Bytes()...)
	encoded = append(encoded, nameHash.Bytes()...)
	encoded = append(encoded, versionHash.Bytes()...)
	encoded = append(encoded, common.LeftPadBytes(domain.ChainID.Bytes(), 32)...)

	return crypto.Keccak256Hash(encoded)
}

// buildAuthMessageHash builds the struct hash for SessionAuth
func buildAuthMessageHash(auth SessionAuth) common.Hash {
	// keccak256("SessionAuth(address address,string timestamp,uint256 nonce,string message)")
	typeHash := crypto.Keccak256Hash([]byte("SessionAuth(address address,string timestamp,uint256 nonce,string message)"))

	timestampHash := crypto.Keccak256Hash([]byte(auth.Timestamp))
	messageHash := crypto.Keccak256Hash([]byte(auth.Message))
	nonceBig := big.NewInt(int64(auth.Nonce))

	encoded := make([]byte, 0, 160)
	encoded = append(encoded, typeHash.Bytes()...)
	encoded = append(encoded, common.LeftPadBytes(common.HexToAddress(auth.Address).Bytes(), 32)...)
	encoded = append(encoded, timestampHash.Bytes()...)
	encoded = append(encoded, common.LeftPadBytes(nonceBig.Bytes(), 32)...)
	encoded = append(encoded, messageHash.Bytes()...)

	return crypto.Keccak256Hash(encoded)
}
