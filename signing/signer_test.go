package signing

import (
	"crypto/ed25519"
	"crypto/rand"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestNewEdSignerFromBuffer(t *testing.T) {
	b := []byte{1, 2, 3}
	_, err := NewEdSigner(WithPrivateKey(b))
	require.ErrorContains(t, err, "too small")

	b = make([]byte, 64)
	_, err = NewEdSigner(WithPrivateKey(b))
	require.ErrorContains(t, err, "private and public do not match")
}

func TestEdSigner_Sign(t *testing.T) {
	ed, err := NewEdSigner(WithPrefix([]byte{7}))
	require.NoError(t, err)

	m := make([]byte, 4)
	rand.Read(m)
	sig := ed.Sign(OPERATION, m)
	signed := append([]byte{7, byte(OPERATION)}, m...)

	pub := ed.PublicKey()
	require.True(t, ed25519.Verify(pub[:], signed, sig[:]))

	verifier, err := NewEdVerifier(WithVerifierPrefix([]byte{7}))
	require.NoError(t, err)
	require.True(t, verifier.Verify(OPERATION, pub, m, sig))
	require.False(t, verifier.Verify(SPONSORSHIP, pub, m, sig))
}

func TestEdSigner_WithPrivateKey(t *testing.T) {
	ed, err := NewEdSigner()
	require.NoError(t, err)

	ed2, err := NewEdSigner(WithPrivateKey(ed.PrivateKey()))
	require.NoError(t, err)
	require.Equal(t, ed.PublicKey(), ed2.PublicKey())
}

func TestEdSigner_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key")
	ed, err := NewEdSigner(ToFile(path))
	require.NoError(t, err)

	loaded, err := NewEdSigner(FromFile(path))
	require.NoError(t, err)
	require.Equal(t, ed.PublicKey(), loaded.PublicKey())
	require.Equal(t, "key", loaded.Name())

	_, err = NewEdSigner(ToFile(path))
	require.Error(t, err)
}

func TestBatchVerifier(t *testing.T) {
	verifier, err := NewEdVerifier()
	require.NoError(t, err)

	batch := verifier.Batch(2)
	for i := 0; i < 2; i++ {
		signer, err := NewEdSigner()
		require.NoError(t, err)
		batch.Add(OPERATION, signer.PublicKey(), []byte("msg"), signer.Sign(OPERATION, []byte("msg")))
	}
	require.True(t, batch.Verify())

	signer, err := NewEdSigner()
	require.NoError(t, err)
	batch.Add(OPERATION, signer.PublicKey(), []byte("other"), signer.Sign(OPERATION, []byte("msg")))
	require.False(t, batch.Verify())
}

func TestEthSignerRecover(t *testing.T) {
	signer, err := NewEthSigner()
	require.NoError(t, err)

	hash := common.HexToHash("0x01")
	sig := signer.Sign(hash)
	require.Len(t, sig, RecoverableSize)

	addr, ok := Recover(hash, sig)
	require.True(t, ok)
	require.Equal(t, signer.Address(), addr)

	addr, ok = Recover(common.HexToHash("0x02"), sig)
	require.True(t, ok)
	require.NotEqual(t, signer.Address(), addr)

	_, ok = Recover(hash, sig[:64])
	require.False(t, ok)
}
