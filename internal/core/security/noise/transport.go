package noise

import (
	"context"
	"crypto/rand"
	"fmt"
	"net"

	"github.com/flynn/noise"

	pkgif "github.com/dep2p/go-p2pnode/pkg/interfaces"
	"github.com/dep2p/go-p2pnode/pkg/lib/crypto"
	"github.com/dep2p/go-p2pnode/pkg/lib/log"
	noisepb "github.com/dep2p/go-p2pnode/pkg/lib/proto/noise"
	"github.com/dep2p/go-p2pnode/pkg/protocolids"
	"github.com/dep2p/go-p2pnode/pkg/types"
)

var logger = log.Logger("core/security/noise")

// ID Noise 安全协议标识
const ID = protocolids.Noise

// payloadSigPrefix 静态密钥签名前缀
const payloadSigPrefix = "noise-libp2p-static-key:"

// Transport Noise 安全传输
type Transport struct {
	identity  crypto.PrivateKey
	localPeer types.PeerID

	staticKey noise.DHKey
	// payload 在创建时签好，每次握手复用
	payload []byte
}

var _ pkgif.SecureTransport = (*Transport)(nil)

// New 创建 Noise 传输
//
// muxers 为握手扩展中通告的多路复用器，可为空。
func New(identity crypto.PrivateKey, muxers ...string) (*Transport, error) {
	if identity == nil {
		return nil, ErrNilIdentity
	}

	localPeer, err := crypto.PeerIDFromPrivateKey(identity)
	if err != nil {
		return nil, fmt.Errorf("derive local peer id: %w", err)
	}

	static, err := noise.DH25519.GenerateKeypair(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate static key: %w", err)
	}

	identityKey, err := crypto.MarshalPublicKey(identity.PublicKey())
	if err != nil {
		return nil, fmt.Errorf("marshal identity key: %w", err)
	}
	sig, err := identity.Sign(append([]byte(payloadSigPrefix), static.Public...))
	if err != nil {
		return nil, fmt.Errorf("sign static key: %w", err)
	}

	payload := &noisepb.HandshakePayload{
		IdentityKey: identityKey,
		IdentitySig: sig,
	}
	if len(muxers) > 0 {
		payload.Extensions = &noisepb.Extensions{StreamMuxers: muxers}
	}

	return &Transport{
		identity:  identity,
		localPeer: localPeer,
		staticKey: static,
		payload:   payload.Marshal(),
	}, nil
}

// ID 返回协议标识
func (t *Transport) ID() string {
	return ID
}

// LocalPeer 返回本地节点 ID
func (t *Transport) LocalPeer() types.PeerID {
	return t.localPeer
}

// SecureInbound 以响应方身份握手
func (t *Transport) SecureInbound(ctx context.Context, conn net.Conn) (pkgif.SecureConn, error) {
	return t.secure(ctx, conn, false)
}

// SecureOutbound 以发起方身份握手
func (t *Transport) SecureOutbound(ctx context.Context, conn net.Conn) (pkgif.SecureConn, error) {
	return t.secure(ctx, conn, true)
}

func (t *Transport) secure(ctx context.Context, conn net.Conn, initiator bool) (pkgif.SecureConn, error) {
	if conn == nil {
		return nil, fmt.Errorf("conn is nil")
	}

	// ctx 截止时间映射为连接截止时间，握手结束后清除
	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err == nil {
			defer conn.SetDeadline(noDeadline)
		}
	}

	sc, err := t.handshake(conn, initiator)
	if err != nil {
		logger.Debug("Noise 握手失败", "initiator", initiator, "remote", conn.RemoteAddr(), "error", err)
		return nil, err
	}

	logger.Debug("Noise 握手成功",
		"initiator", initiator,
		"remotePeer", sc.remotePeer.ShortString(),
		"remoteMuxers", sc.remoteMuxers)
	return sc, nil
}
