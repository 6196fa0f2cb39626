package interfaces

import (
	"context"
	"net"

	"github.com/dep2p/go-p2pnode/pkg/lib/crypto"
	"github.com/dep2p/go-p2pnode/pkg/types"
)

// Upgrader 连接升级接口
//
// 将原始连接依次升级：
//  1. 安全协议协商（multistream-select）
//  2. 安全握手（Noise）
//  3. 远端身份校验
//  4. 多路复用协商（multistream-select）
//  5. 多路复用设置（yamux）
//
// 方向决定角色：Outbound 为握手发起方与 yamux 客户端，Inbound 反之。
type Upgrader interface {
	// Upgrade 升级连接
	//
	// expected 为空表示接受任意已通过校验的对端。
	// 失败时原始连接已被关闭。
	Upgrade(ctx context.Context, conn net.Conn, dir types.Direction,
		expected types.PeerID) (UpgradedConn, error)
}

// UpgradedConn 升级后的连接
type UpgradedConn interface {
	MuxedConn

	// LocalPeer 返回本地节点 ID
	LocalPeer() types.PeerID

	// RemotePeer 返回已校验的远端节点 ID
	RemotePeer() types.PeerID

	// RemotePublicKey 返回远端身份公钥
	RemotePublicKey() crypto.PublicKey

	// Direction 返回连接方向
	Direction() types.Direction

	// Security 返回协商的安全协议
	Security() string

	// Muxer 返回协商的多路复用器
	Muxer() string
}
