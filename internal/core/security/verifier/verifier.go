// Package verifier 校验安全连接对端的身份
//
// 安全握手只证明对端持有某个公钥，本包再确认：
//  1. 对端确实出示了公钥
//  2. 声明的 PeerID 格式合法
//  3. 声明的 PeerID 由该公钥派生
//  4. 调用方期望特定节点时，对端就是该节点
package verifier

import (
	"errors"
	"fmt"

	pkgif "github.com/dep2p/go-p2pnode/pkg/interfaces"
	"github.com/dep2p/go-p2pnode/pkg/lib/crypto"
	"github.com/dep2p/go-p2pnode/pkg/lib/log"
	"github.com/dep2p/go-p2pnode/pkg/types"
)

var logger = log.Logger("core/security/verifier")

var (
	// ErrMissingPublicKey 对端未出示公钥
	ErrMissingPublicKey = errors.New("remote public key missing")

	// ErrMalformedPeerID 声明的 PeerID 格式非法
	ErrMalformedPeerID = errors.New("claimed peer id malformed")

	// ErrIdentityMismatch 声明的 PeerID 与公钥不匹配
	ErrIdentityMismatch = errors.New("identity mismatch: peer ID does not match public key")

	// ErrUnexpectedPeer 对端不是期望的节点
	ErrUnexpectedPeer = errors.New("unexpected remote peer")
)

// Verifier 默认身份校验器，无状态
type Verifier struct{}

var _ pkgif.PeerVerifier = (*Verifier)(nil)

// New 创建校验器
func New() *Verifier {
	return &Verifier{}
}

// Verify 校验 conn 的对端身份
func (v *Verifier) Verify(conn pkgif.SecureConn, expected types.PeerID) (types.PeerID, error) {
	return VerifyBinding(conn.RemotePublicKey(), conn.RemotePeer(), expected)
}

// VerifyBinding 校验公钥与声明 PeerID 的绑定关系
//
// expected 为空时不做期望节点检查。
func VerifyBinding(pub crypto.PublicKey, claimed, expected types.PeerID) (types.PeerID, error) {
	if pub == nil {
		return types.EmptyPeerID, ErrMissingPublicKey
	}
	if err := claimed.Validate(); err != nil {
		return types.EmptyPeerID, fmt.Errorf("%w: %w", ErrMalformedPeerID, err)
	}

	derived, err := crypto.PeerIDFromPublicKey(pub)
	if err != nil {
		return types.EmptyPeerID, fmt.Errorf("%w: %v", ErrIdentityMismatch, err)
	}
	if derived != claimed {
		logger.Warn("身份绑定校验失败", "claimed", claimed.ShortString(), "derived", derived.ShortString())
		return types.EmptyPeerID, fmt.Errorf("%w: claimed %s, derived %s", ErrIdentityMismatch, claimed, derived)
	}

	if !expected.IsEmpty() && expected != derived {
		return types.EmptyPeerID, fmt.Errorf("%w: expected %s, got %s", ErrUnexpectedPeer, expected, derived)
	}
	return derived, nil
}
