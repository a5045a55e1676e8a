package signing

import (
	"encoding/hex"

	"github.com/oasisprotocol/curve25519-voi/primitives/ed25519"
	"github.com/spacemeshos/go-scale"
)

// PrivateKey is an alias to ed25519.PrivateKey.
type PrivateKey = ed25519.PrivateKey

const (
	// PrivateKeySize size of the private key in bytes.
	PrivateKeySize = ed25519.PrivateKeySize
	// PublicKeySize size of the public key in bytes.
	PublicKeySize = ed25519.PublicKeySize
	// SignatureSize size of the ed25519 signature in bytes.
	SignatureSize = ed25519.SignatureSize
)

// PublicKey is an ed25519 public key.
type PublicKey [PublicKeySize]byte

// String returns the public key as a hex representation string.
func (p PublicKey) String() string {
	return hex.EncodeToString(p[:])
}

const shortStringSize = 5

// ShortString returns a representative sub string.
func (p PublicKey) ShortString() string {
	return p.String()[:shortStringSize]
}

// EncodeScale implements scale codec interface.
func (p *PublicKey) EncodeScale(enc *scale.Encoder) (int, error) {
	return scale.EncodeByteArray(enc, p[:])
}

// DecodeScale implements scale codec interface.
func (p *PublicKey) DecodeScale(dec *scale.Decoder) (int, error) {
	return scale.DecodeByteArray(dec, p[:])
}

// Signature is an ed25519 signature.
type Signature [SignatureSize]byte

// EncodeScale implements scale codec interface.
func (s *Signature) EncodeScale(enc *scale.Encoder) (int, error) {
	return scale.EncodeByteArray(enc, s[:])
}

// DecodeScale implements scale codec interface.
func (s *Signature) DecodeScale(dec *scale.Decoder) (int, error) {
	return scale.DecodeByteArray(dec, s[:])
}
