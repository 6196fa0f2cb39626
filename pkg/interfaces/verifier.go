package interfaces

import "github.com/dep2p/go-p2pnode/pkg/types"

// PeerVerifier 远端身份校验接口
//
// 在多路复用之前执行。expected 非空时额外要求对端就是 expected。
type PeerVerifier interface {
	// Verify 校验安全连接的对端身份，返回校验通过的 PeerID
	Verify(conn SecureConn, expected types.PeerID) (types.PeerID, error)
}
