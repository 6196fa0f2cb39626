package upgrader

import (
	pkgif "github.com/dep2p/go-p2pnode/pkg/interfaces"
	"github.com/dep2p/go-p2pnode/pkg/lib/crypto"
	"github.com/dep2p/go-p2pnode/pkg/types"
)

var _ pkgif.UpgradedConn = (*upgradedConn)(nil)

// upgradedConn 升级后的连接
type upgradedConn struct {
	pkgif.MuxedConn

	secConn    pkgif.SecureConn
	remotePeer types.PeerID
	dir        types.Direction

	securityProto string
	muxerID       string
}

// LocalPeer 返回本地节点 ID
func (c *upgradedConn) LocalPeer() types.PeerID {
	return c.secConn.LocalPeer()
}

// RemotePeer 返回已校验的远端节点 ID
func (c *upgradedConn) RemotePeer() types.PeerID {
	return c.remotePeer
}

// RemotePublicKey 返回远端身份公钥
func (c *upgradedConn) RemotePublicKey() crypto.PublicKey {
	return c.secConn.RemotePublicKey()
}

// Direction 返回连接方向
func (c *upgradedConn) Direction() types.Direction {
	return c.dir
}

// Security 返回协商的安全协议
func (c *upgradedConn) Security() string {
	return c.securityProto
}

// Muxer 返回协商的多路复用器
func (c *upgradedConn) Muxer() string {
	return c.muxerID
}
