package noise

import "errors"

var (
	// ErrInvalidHandshake 握手消息无效
	ErrInvalidHandshake = errors.New("noise: invalid handshake")

	// ErrInvalidSignature 静态密钥签名校验失败
	ErrInvalidSignature = errors.New("noise: static key signature invalid")

	// ErrNilIdentity 未提供身份私钥
	ErrNilIdentity = errors.New("noise: nil identity key")
)
