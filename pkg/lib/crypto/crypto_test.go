package crypto

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKeyTypes = []KeyType{KeyTypeEd25519, KeyTypeSecp256k1}

func TestKeyType_String(t *testing.T) {
	assert.Equal(t, "Ed25519", KeyTypeEd25519.String())
	assert.Equal(t, "Secp256k1", KeyTypeSecp256k1.String())
	assert.Equal(t, "Unknown", KeyType(99).String())

	kt, err := ParseKeyType("secp256k1")
	require.NoError(t, err)
	assert.Equal(t, KeyTypeSecp256k1, kt)

	_, err = ParseKeyType("rsa")
	assert.ErrorIs(t, err, ErrBadKeyType)
}

func TestSignVerify(t *testing.T) {
	for _, kt := range allKeyTypes {
		t.Run(kt.String(), func(t *testing.T) {
			priv, pub, err := GenerateKeyPair(kt)
			require.NoError(t, err)

			msg := []byte("noise-libp2p-static-key:test")
			sig, err := priv.Sign(msg)
			require.NoError(t, err)

			ok, err := pub.Verify(msg, sig)
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = pub.Verify([]byte("tampered"), sig)
			require.NoError(t, err)
			assert.False(t, ok)

			assert.True(t, priv.PublicKey().Equals(pub))
		})
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	for _, kt := range allKeyTypes {
		t.Run(kt.String(), func(t *testing.T) {
			priv, pub, err := GenerateKeyPair(kt)
			require.NoError(t, err)

			pubBytes, err := MarshalPublicKey(pub)
			require.NoError(t, err)
			assert.Equal(t, byte(kt), pubBytes[0])

			pub2, err := UnmarshalPublicKeyBytes(pubBytes)
			require.NoError(t, err)
			assert.True(t, pub.Equals(pub2))

			privBytes, err := MarshalPrivateKey(priv)
			require.NoError(t, err)
			priv2, err := UnmarshalPrivateKeyBytes(privBytes)
			require.NoError(t, err)
			assert.True(t, priv.Equals(priv2))
		})
	}
}

func TestUnmarshal_Invalid(t *testing.T) {
	_, err := UnmarshalPublicKeyBytes([]byte{2, 0})
	assert.ErrorIs(t, err, ErrUnmarshalFailed)

	_, err = UnmarshalPublicKeyBytes([]byte{2, 0, 0, 0, 4, 1, 2})
	assert.ErrorIs(t, err, ErrUnmarshalFailed)

	_, err = UnmarshalPublicKeyBytes([]byte{2, 0, 0, 0, 2, 1, 2})
	assert.ErrorIs(t, err, ErrInvalidKeySize)

	_, err = UnmarshalPublicKeyBytes([]byte{9, 0, 0, 0, 1, 1})
	assert.ErrorIs(t, err, ErrBadKeyType)

	_, err = MarshalPublicKey(nil)
	assert.ErrorIs(t, err, ErrNilPublicKey)
}

func TestPeerIDFromPublicKey(t *testing.T) {
	priv, pub, err := GenerateKeyPair(KeyTypeEd25519)
	require.NoError(t, err)

	id, err := PeerIDFromPublicKey(pub)
	require.NoError(t, err)
	require.NoError(t, id.Validate())
	assert.True(t, strings.HasPrefix(id.String(), "Qm"))

	id2, err := PeerIDFromPrivateKey(priv)
	require.NoError(t, err)
	assert.Equal(t, id, id2)
	assert.True(t, MatchesPeerID(pub, id))

	_, other, err := GenerateKeyPair(KeyTypeSecp256k1)
	require.NoError(t, err)
	assert.False(t, MatchesPeerID(other, id))
}

func TestLoadOrGenerateKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys", "identity.key")

	k1, err := LoadOrGenerateKey(path, KeyTypeSecp256k1)
	require.NoError(t, err)
	assert.Equal(t, KeyTypeSecp256k1, k1.Type())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(keyFileMode), info.Mode().Perm())

	k2, err := LoadOrGenerateKey(path, KeyTypeEd25519)
	require.NoError(t, err)
	assert.True(t, k1.Equals(k2), "existing key must be reused")

	require.NoError(t, os.WriteFile(path, []byte("zz"), keyFileMode))
	_, err = LoadOrGenerateKey(path, KeyTypeEd25519)
	assert.ErrorIs(t, err, ErrKeyFileCorrupt)

	ephemeral, err := LoadOrGenerateKey("", KeyTypeEd25519)
	require.NoError(t, err)
	assert.NotNil(t, ephemeral)
}
