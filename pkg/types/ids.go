package types

import (
	"fmt"

	"github.com/mr-tron/base58"
	mh "github.com/multiformats/go-multihash"
)

// ============================================================================
//                              PeerID - 节点标识
// ============================================================================

// PeerID 节点标识
//
// 由公钥确定性派生：Base58(Multihash(SHA2-256, 序列化公钥))。
// 这种编码与 /p2p/<id> 多地址组件兼容。
// 按值比较。
type PeerID string

// EmptyPeerID 空 PeerID
const EmptyPeerID PeerID = ""

// peerIDDigestSize PeerID 摘要长度（SHA2-256）
const peerIDDigestSize = 32

// PeerIDFromDigest 从序列化公钥计算 PeerID
func PeerIDFromDigest(marshaledPubKey []byte) (PeerID, error) {
	hash, err := mh.Sum(marshaledPubKey, mh.SHA2_256, -1)
	if err != nil {
		return EmptyPeerID, fmt.Errorf("multihash: %w", err)
	}
	return PeerID(base58.Encode(hash)), nil
}

// ParsePeerID 解析并校验 PeerID 字符串
func ParsePeerID(s string) (PeerID, error) {
	id := PeerID(s)
	if err := id.Validate(); err != nil {
		return EmptyPeerID, err
	}
	return id, nil
}

// String 返回 Base58 字符串
func (id PeerID) String() string {
	return string(id)
}

// ShortString 返回用于日志的短标识
func (id PeerID) ShortString() string {
	s := string(id)
	if len(s) <= 8 {
		return s
	}
	return s[len(s)-8:]
}

// IsEmpty 是否为空
func (id PeerID) IsEmpty() bool {
	return id == EmptyPeerID
}

// Bytes 返回解码后的 multihash 字节
func (id PeerID) Bytes() ([]byte, error) {
	if id.IsEmpty() {
		return nil, ErrEmptyPeerID
	}
	b, err := base58.Decode(string(id))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPeerID, err)
	}
	return b, nil
}

// Validate 检查 PeerID 格式
//
// 要求 Base58 可解码、为合法 multihash、算法为 SHA2-256 且摘要为 32 字节。
func (id PeerID) Validate() error {
	b, err := id.Bytes()
	if err != nil {
		return err
	}

	decoded, err := mh.Decode(b)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPeerID, err)
	}
	if decoded.Code != mh.SHA2_256 {
		return fmt.Errorf("%w: unexpected hash function 0x%x", ErrInvalidPeerID, decoded.Code)
	}
	if decoded.Length != peerIDDigestSize {
		return fmt.Errorf("%w: unexpected digest length %d", ErrInvalidPeerID, decoded.Length)
	}
	return nil
}

// ============================================================================
//                              ProtocolID - 协议标识
// ============================================================================

// ProtocolID 协议标识，如 "/hello-world/1.0.0"
type ProtocolID = string
