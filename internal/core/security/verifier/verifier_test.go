package verifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-p2pnode/pkg/lib/crypto"
	"github.com/dep2p/go-p2pnode/pkg/types"
)

func genPeer(t *testing.T) (crypto.PublicKey, types.PeerID) {
	t.Helper()
	_, pub, err := crypto.GenerateKeyPair(crypto.KeyTypeEd25519)
	require.NoError(t, err)
	id, err := crypto.PeerIDFromPublicKey(pub)
	require.NoError(t, err)
	return pub, id
}

func TestVerifyBinding(t *testing.T) {
	pub, id := genPeer(t)
	_, otherID := genPeer(t)

	tests := []struct {
		name     string
		pub      crypto.PublicKey
		claimed  types.PeerID
		expected types.PeerID
		wantErr  error
	}{
		{"匹配", pub, id, "", nil},
		{"匹配且符合期望", pub, id, id, nil},
		{"缺少公钥", nil, id, "", ErrMissingPublicKey},
		{"PeerID 格式非法", pub, "not-a-peer-id", "", ErrMalformedPeerID},
		{"PeerID 为空", pub, "", "", ErrMalformedPeerID},
		{"声明与公钥不符", pub, otherID, "", ErrIdentityMismatch},
		{"不是期望的节点", pub, id, otherID, ErrUnexpectedPeer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := VerifyBinding(tt.pub, tt.claimed, tt.expected)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.True(t, got.IsEmpty())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, id, got)
		})
	}
}
