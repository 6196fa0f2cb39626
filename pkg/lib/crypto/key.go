package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"io"
)

// ============================================================================
//                              密钥类型定义
// ============================================================================

// KeyType 密钥类型
//
// 数值保持与常见 p2p 密钥编码一致（Ed25519 = 2，Secp256k1 = 3）。
type KeyType int

const (
	// KeyTypeUnspecified 未指定密钥类型
	KeyTypeUnspecified KeyType = 0
	// KeyTypeEd25519 Ed25519 密钥（默认推荐）
	KeyTypeEd25519 KeyType = 2
	// KeyTypeSecp256k1 Secp256k1 密钥
	KeyTypeSecp256k1 KeyType = 3
)

// String 返回密钥类型名称
func (kt KeyType) String() string {
	switch kt {
	case KeyTypeUnspecified:
		return "Unspecified"
	case KeyTypeEd25519:
		return "Ed25519"
	case KeyTypeSecp256k1:
		return "Secp256k1"
	default:
		return "Unknown"
	}
}

// ParseKeyType 从名称解析密钥类型（大小写不敏感）
func ParseKeyType(s string) (KeyType, error) {
	switch s {
	case "ed25519", "Ed25519", "ED25519", "":
		return KeyTypeEd25519, nil
	case "secp256k1", "Secp256k1", "SECP256K1":
		return KeyTypeSecp256k1, nil
	default:
		return KeyTypeUnspecified, fmt.Errorf("%w: %q", ErrBadKeyType, s)
	}
}

// ============================================================================
//                              密钥接口定义
// ============================================================================

// Key 基础密钥接口
type Key interface {
	// Raw 返回原始密钥字节
	Raw() ([]byte, error)

	// Type 返回密钥类型
	Type() KeyType

	// Equals 比较两个密钥是否相等
	Equals(Key) bool
}

// PublicKey 公钥接口
type PublicKey interface {
	Key

	// Verify 验证签名
	Verify(data, sig []byte) (bool, error)
}

// PrivateKey 私钥接口
type PrivateKey interface {
	Key

	// Sign 对数据签名
	Sign(data []byte) ([]byte, error)

	// PublicKey 返回对应的公钥
	PublicKey() PublicKey
}

// ============================================================================
//                              密钥生成
// ============================================================================

// GenerateKeyPair 生成指定类型的密钥对
func GenerateKeyPair(kt KeyType) (PrivateKey, PublicKey, error) {
	return GenerateKeyPairWithReader(kt, rand.Reader)
}

// GenerateKeyPairWithReader 使用指定随机源生成密钥对
func GenerateKeyPairWithReader(kt KeyType, src io.Reader) (PrivateKey, PublicKey, error) {
	switch kt {
	case KeyTypeEd25519:
		return GenerateEd25519Key(src)
	case KeyTypeSecp256k1:
		return GenerateSecp256k1Key(src)
	default:
		return nil, nil, ErrBadKeyType
	}
}

// UnmarshalPublicKey 从原始字节构造公钥
func UnmarshalPublicKey(kt KeyType, data []byte) (PublicKey, error) {
	switch kt {
	case KeyTypeEd25519:
		return UnmarshalEd25519PublicKey(data)
	case KeyTypeSecp256k1:
		return UnmarshalSecp256k1PublicKey(data)
	default:
		return nil, ErrBadKeyType
	}
}

// UnmarshalPrivateKey 从原始字节构造私钥
func UnmarshalPrivateKey(kt KeyType, data []byte) (PrivateKey, error) {
	switch kt {
	case KeyTypeEd25519:
		return UnmarshalEd25519PrivateKey(data)
	case KeyTypeSecp256k1:
		return UnmarshalSecp256k1PrivateKey(data)
	default:
		return nil, ErrBadKeyType
	}
}

// KeyEqual 通用的密钥比较：类型相同且原始字节常量时间相等
func KeyEqual(a, b Key) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Type() != b.Type() {
		return false
	}
	ra, err := a.Raw()
	if err != nil {
		return false
	}
	rb, err := b.Raw()
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(ra, rb) == 1
}
