package signing

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/oasisprotocol/curve25519-voi/primitives/ed25519"
)

type Domain byte

const (
	// OPERATION domain is used by accounts that sign operation hashes.
	OPERATION Domain = 0
	// SPONSORSHIP domain is used by authorizers of sponsored operations.
	SPONSORSHIP Domain = 1
)

// String returns the string representation of a domain.
func (d Domain) String() string {
	switch d {
	case OPERATION:
		return "OPERATION"
	case SPONSORSHIP:
		return "SPONSORSHIP"
	default:
		return "UNKNOWN"
	}
}

type edSignerOption struct {
	priv   PrivateKey
	file   string
	prefix []byte
}

// EdSignerOptionFunc modifies EdSigner.
type EdSignerOptionFunc func(*edSignerOption) error

// WithPrefix sets the prefix used by EdSigner.
func WithPrefix(prefix []byte) EdSignerOptionFunc {
	return func(opt *edSignerOption) error {
		opt.prefix = prefix
		return nil
	}
}

// ToFile writes the private key to a file after creation.
func ToFile(path string) EdSignerOptionFunc {
	return func(opt *edSignerOption) error {
		if opt.file != "" {
			return errors.New("invalid option ToFile: file already set")
		}
		opt.file = path
		return nil
	}
}

// FromFile loads the private key from a file.
func FromFile(path string) EdSignerOptionFunc {
	return func(opt *edSignerOption) error {
		if opt.priv != nil {
			return errors.New("invalid option FromFile: private key already set")
		}
		if opt.file != "" {
			return errors.New("invalid option FromFile: file already set")
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to open key file at %s: %w", path, err)
		}
		if n := hex.DecodedLen(len(data)); n != PrivateKeySize {
			return fmt.Errorf("invalid key size %d/%d for %s", n, PrivateKeySize, filepath.Base(path))
		}
		dst := make([]byte, PrivateKeySize)
		n, err := hex.Decode(dst, data)
		if err != nil || n != PrivateKeySize {
			return fmt.Errorf("decoding private key in %s: %w", filepath.Base(path), err)
		}
		priv := PrivateKey(dst)
		keyPair := ed25519.NewKeyFromSeed(priv[:32])
		if !bytes.Equal(keyPair[32:], priv.Public().(ed25519.PublicKey)) {
			return errors.New("private and public do not match")
		}
		opt.priv = priv
		opt.file = filepath.Base(path)
		return nil
	}
}

// WithPrivateKey sets the private key used by EdSigner.
func WithPrivateKey(priv PrivateKey) EdSignerOptionFunc {
	return func(opt *edSignerOption) error {
		if opt.priv != nil {
			return errors.New("invalid option WithPrivateKey: private key already set")
		}
		if len(priv) != ed25519.PrivateKeySize {
			return fmt.Errorf("could not create EdSigner: key of %d bytes is too small", len(priv))
		}
		keyPair := ed25519.NewKeyFromSeed(priv[:32])
		if !bytes.Equal(keyPair[32:], priv.Public().(ed25519.PublicKey)) {
			return errors.New("private and public do not match")
		}
		opt.priv = priv
		return nil
	}
}

// WithKeyFromRand sets the private key used by EdSigner using predictable randomness source.
func WithKeyFromRand(rand io.Reader) EdSignerOptionFunc {
	return func(opt *edSignerOption) error {
		_, priv, err := ed25519.GenerateKey(rand)
		if err != nil {
			return fmt.Errorf("could not generate key pair: %w", err)
		}
		opt.priv = priv
		return nil
	}
}

// EdSigner represents an ED25519 signer.
type EdSigner struct {
	priv PrivateKey
	file string

	prefix []byte
}

// NewEdSigner returns an auto-generated ed signer.
func NewEdSigner(opts ...EdSignerOptionFunc) (*EdSigner, error) {
	cfg := &edSignerOption{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.priv == nil {
		_, priv, err := ed25519.GenerateKey(nil)
		if err != nil {
			return nil, fmt.Errorf("could not generate key pair: %w", err)
		}
		cfg.priv = priv

		if cfg.file != "" {
			_, err := os.Stat(cfg.file)
			switch {
			case errors.Is(err, fs.ErrNotExist):
			// continue
			case err != nil:
				return nil, fmt.Errorf("stat key file %s: %w", filepath.Base(cfg.file), err)
			default: // err == nil
				return nil, fmt.Errorf("save key file %s: %w", filepath.Base(cfg.file), fs.ErrExist)
			}
			dst := make([]byte, hex.EncodedLen(len(cfg.priv)))
			hex.Encode(dst, cfg.priv)
			if err := os.WriteFile(cfg.file, dst, 0o600); err != nil {
				return nil, fmt.Errorf("failed to write key file: %w", err)
			}
		}
	}
	return &EdSigner{
		priv:   cfg.priv,
		prefix: cfg.prefix,
		file:   cfg.file,
	}, nil
}

// Sign signs the provided message.
func (es *EdSigner) Sign(d Domain, m []byte) Signature {
	return Signature(ed25519.Sign(es.priv, message(es.prefix, d, m)))
}

// PublicKey returns the public key of the signer.
func (es *EdSigner) PublicKey() PublicKey {
	return PublicKey(es.priv.Public().(ed25519.PublicKey))
}

// PrivateKey returns private key.
func (es *EdSigner) PrivateKey() PrivateKey {
	return es.priv
}

// Name returns the name of the signer. This is the filename of the key file.
func (es *EdSigner) Name() string {
	if es.file == "" {
		return ""
	}
	return filepath.Base(es.file)
}

func (es *EdSigner) Prefix() []byte {
	return es.prefix
}

func (es *EdSigner) String() string {
	return es.PublicKey().ShortString()
}

func message(prefix []byte, d Domain, m []byte) []byte {
	msg := make([]byte, 0, len(prefix)+1+len(m))
	msg = append(msg, prefix...)
	msg = append(msg, byte(d))
	return append(msg, m...)
}
