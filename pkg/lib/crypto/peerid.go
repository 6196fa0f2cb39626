package crypto

import (
	"fmt"

	"github.com/dep2p/go-p2pnode/pkg/types"
)

// PeerIDFromPublicKey 从公钥派生 PeerID
//
// PeerID = base58(multihash-sha256(MarshalPublicKey(pub)))
func PeerIDFromPublicKey(pub PublicKey) (types.PeerID, error) {
	data, err := MarshalPublicKey(pub)
	if err != nil {
		return types.EmptyPeerID, err
	}
	id, err := types.PeerIDFromDigest(data)
	if err != nil {
		return types.EmptyPeerID, fmt.Errorf("derive peer id: %w", err)
	}
	return id, nil
}

// PeerIDFromPrivateKey 从私钥派生 PeerID
func PeerIDFromPrivateKey(priv PrivateKey) (types.PeerID, error) {
	if priv == nil {
		return types.EmptyPeerID, ErrNilPrivateKey
	}
	return PeerIDFromPublicKey(priv.PublicKey())
}

// MatchesPeerID 检查公钥是否对应给定 PeerID
func MatchesPeerID(pub PublicKey, id types.PeerID) bool {
	derived, err := PeerIDFromPublicKey(pub)
	if err != nil {
		return false
	}
	return derived == id
}
