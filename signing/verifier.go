package signing

import (
	"github.com/oasisprotocol/curve25519-voi/primitives/ed25519"
)

type edVerifierOption struct {
	prefix []byte
}

// VerifierOptionFunc to modify verifier.
type VerifierOptionFunc func(*edVerifierOption) error

// WithVerifierPrefix sets the prefix used by EdVerifier.
func WithVerifierPrefix(prefix []byte) VerifierOptionFunc {
	return func(opts *edVerifierOption) error {
		opts.prefix = prefix
		return nil
	}
}

// EdVerifier checks ed25519 signatures produced by EdSigner.
type EdVerifier struct {
	prefix []byte
}

func NewEdVerifier(opts ...VerifierOptionFunc) (*EdVerifier, error) {
	cfg := &edVerifierOption{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	return &EdVerifier{prefix: cfg.prefix}, nil
}

// Verify verifies that a signature matches public key and message.
func (ev *EdVerifier) Verify(d Domain, pub PublicKey, m []byte, sig Signature) bool {
	return ed25519.Verify(pub[:], message(ev.prefix, d, m), sig[:])
}

// BatchVerifier checks several signatures at once.
type BatchVerifier struct {
	prefix []byte
	batch  *ed25519.BatchVerifier
}

// Batch creates verifier for n signatures.
func (ev *EdVerifier) Batch(n int) *BatchVerifier {
	return &BatchVerifier{prefix: ev.prefix, batch: ed25519.NewBatchVerifierWithCapacity(n)}
}

// Add signature to the batch.
func (bv *BatchVerifier) Add(d Domain, pub PublicKey, m []byte, sig Signature) {
	bv.batch.Add(pub[:], message(bv.prefix, d, m), sig[:])
}

// Verify is true only if every signature in the batch is valid.
func (bv *BatchVerifier) Verify() bool {
	valid, _ := bv.batch.Verify(nil)
	return valid
}
