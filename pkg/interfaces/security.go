package interfaces

import (
	"context"
	"net"

	"github.com/dep2p/go-p2pnode/pkg/lib/crypto"
	"github.com/dep2p/go-p2pnode/pkg/types"
)

// SecureTransport 安全传输接口
//
// 完成认证加密握手。握手只证明对端持有其声明公钥对应的私钥，
// 声明的 PeerID 是否与公钥匹配由 PeerVerifier 判定。
type SecureTransport interface {
	// SecureInbound 以响应方身份保护入站连接
	SecureInbound(ctx context.Context, conn net.Conn) (SecureConn, error)

	// SecureOutbound 以发起方身份保护出站连接
	SecureOutbound(ctx context.Context, conn net.Conn) (SecureConn, error)

	// ID 返回安全协议标识，例如 "/noise"
	ID() string
}

// SecureConn 安全连接接口
type SecureConn interface {
	net.Conn

	// LocalPeer 返回本地节点 ID
	LocalPeer() types.PeerID

	// RemotePeer 返回对端声明的节点 ID
	RemotePeer() types.PeerID

	// RemotePublicKey 返回对端在握手中出示的身份公钥
	RemotePublicKey() crypto.PublicKey
}
