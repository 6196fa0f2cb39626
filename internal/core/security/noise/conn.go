package noise

import (
	"fmt"
	"net"
	"sync"

	"github.com/flynn/noise"

	pkgif "github.com/dep2p/go-p2pnode/pkg/interfaces"
	"github.com/dep2p/go-p2pnode/pkg/lib/crypto"
	"github.com/dep2p/go-p2pnode/pkg/types"
)

const (
	maxFrameSize     = 65535
	macSize          = 16
	maxPlaintextSize = maxFrameSize - macSize
)

// secureConn Noise 加密连接
type secureConn struct {
	net.Conn

	sendCS *noise.CipherState
	recvCS *noise.CipherState

	localPeer    types.PeerID
	remotePeer   types.PeerID
	remoteKey    crypto.PublicKey
	remoteMuxers []string

	readMu  sync.Mutex
	readBuf []byte

	writeMu sync.Mutex
}

var _ pkgif.SecureConn = (*secureConn)(nil)

// Read 读取并解密；一帧没读完的明文留在 readBuf
func (c *secureConn) Read(p []byte) (int, error) {
	c.readMu.Lock()
	defer c.readMu.Unlock()

	if len(p) == 0 {
		return 0, nil
	}

	// 空帧只携带 MAC，继续读直到拿到明文
	for len(c.readBuf) == 0 {
		frame, err := readFrame(c.Conn)
		if err != nil {
			return 0, err
		}
		plaintext, err := c.recvCS.Decrypt(frame[:0], nil, frame)
		if err != nil {
			return 0, fmt.Errorf("decrypt: %w", err)
		}
		c.readBuf = plaintext
	}

	n := copy(p, c.readBuf)
	c.readBuf = c.readBuf[n:]
	return n, nil
}

// Write 加密并写入，超过单帧上限时拆分
func (c *secureConn) Write(p []byte) (int, error) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	written := 0
	for written < len(p) {
		end := written + maxPlaintextSize
		if end > len(p) {
			end = len(p)
		}
		ciphertext, err := c.sendCS.Encrypt(nil, nil, p[written:end])
		if err != nil {
			return written, fmt.Errorf("encrypt: %w", err)
		}
		if err := writeFrame(c.Conn, ciphertext); err != nil {
			return written, err
		}
		written = end
	}
	return written, nil
}

// LocalPeer 返回本地节点 ID
func (c *secureConn) LocalPeer() types.PeerID {
	return c.localPeer
}

// RemotePeer 返回对端声明的节点 ID
func (c *secureConn) RemotePeer() types.PeerID {
	return c.remotePeer
}

// RemotePublicKey 返回对端身份公钥
func (c *secureConn) RemotePublicKey() crypto.PublicKey {
	return c.remoteKey
}

// RemoteMuxers 返回对端在握手扩展中通告的多路复用器
func (c *secureConn) RemoteMuxers() []string {
	return c.remoteMuxers
}
