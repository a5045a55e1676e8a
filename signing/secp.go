package signing

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// RecoverableSize is the size of [R || S || V] secp256k1 signature.
const RecoverableSize = crypto.SignatureLength

// EthSigner signs 32-byte hashes as EIP-191 personal messages with a secp256k1 key.
type EthSigner struct {
	key *ecdsa.PrivateKey
}

// NewEthSigner generates a new key.
func NewEthSigner() (*EthSigner, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generate secp256k1 key: %w", err)
	}
	return &EthSigner{key: key}, nil
}

// EthSignerFromHex loads the key from hex.
func EthSignerFromHex(hexkey string) (*EthSigner, error) {
	key, err := crypto.HexToECDSA(hexkey)
	if err != nil {
		return nil, fmt.Errorf("parse secp256k1 key: %w", err)
	}
	return &EthSigner{key: key}, nil
}

// Address derived from the public key.
func (s *EthSigner) Address() common.Address {
	return crypto.PubkeyToAddress(s.key.PublicKey)
}

// Sign returns signature with V in {27, 28}.
func (s *EthSigner) Sign(hash common.Hash) []byte {
	sig, err := crypto.Sign(accounts.TextHash(hash[:]), s.key)
	if err != nil {
		panic(fmt.Sprintf("sign hash %v: %v", hash, err))
	}
	sig[crypto.RecoveryIDOffset] += 27
	return sig
}

// Recover the address that signed hash with EthSigner. V may be {0, 1} or {27, 28}.
func Recover(hash common.Hash, sig []byte) (common.Address, bool) {
	if len(sig) != RecoverableSize {
		return common.Address{}, false
	}
	normalized := make([]byte, RecoverableSize)
	copy(normalized, sig)
	if v := normalized[crypto.RecoveryIDOffset]; v >= 27 {
		normalized[crypto.RecoveryIDOffset] = v - 27
	}
	pub, err := crypto.SigToPub(accounts.TextHash(hash[:]), normalized)
	if err != nil {
		return common.Address{}, false
	}
	return crypto.PubkeyToAddress(*pub), true
}
