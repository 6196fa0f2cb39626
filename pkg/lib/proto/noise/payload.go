// Package noise 定义 Noise 握手 payload
package noise

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// ErrInvalidPayload 无效的 payload 数据
var ErrInvalidPayload = errors.New("invalid noise payload data")

// 字段编号
const (
	fieldIdentityKey protowire.Number = 1
	fieldIdentitySig protowire.Number = 2
	fieldExtensions  protowire.Number = 4

	fieldExtCerthashes   protowire.Number = 1
	fieldExtStreamMuxers protowire.Number = 2
)

// Extensions 握手扩展数据
type Extensions struct {
	// WebTransport 证书哈希
	WebtransportCerthashes [][]byte
	// 发送方支持的流多路复用器，按偏好排序
	StreamMuxers []string
}

// HandshakePayload Noise 握手 payload
//
//   - IdentityKey: 序列化的身份公钥
//   - IdentitySig: Sign("noise-libp2p-static-key:" + X25519 静态公钥)
type HandshakePayload struct {
	IdentityKey []byte
	IdentitySig []byte
	Extensions  *Extensions
}

// Marshal 序列化 payload
func (p *HandshakePayload) Marshal() []byte {
	var b []byte
	if len(p.IdentityKey) > 0 {
		b = protowire.AppendTag(b, fieldIdentityKey, protowire.BytesType)
		b = protowire.AppendBytes(b, p.IdentityKey)
	}
	if len(p.IdentitySig) > 0 {
		b = protowire.AppendTag(b, fieldIdentitySig, protowire.BytesType)
		b = protowire.AppendBytes(b, p.IdentitySig)
	}
	if p.Extensions != nil {
		b = protowire.AppendTag(b, fieldExtensions, protowire.BytesType)
		b = protowire.AppendBytes(b, p.Extensions.marshal())
	}
	return b
}

// Unmarshal 反序列化 payload，未知字段被忽略
func (p *HandshakePayload) Unmarshal(data []byte) error {
	*p = HandshakePayload{}
	return walkFields(data, func(num protowire.Number, v []byte) error {
		switch num {
		case fieldIdentityKey:
			p.IdentityKey = append([]byte(nil), v...)
		case fieldIdentitySig:
			p.IdentitySig = append([]byte(nil), v...)
		case fieldExtensions:
			ext := &Extensions{}
			if err := ext.unmarshal(v); err != nil {
				return err
			}
			p.Extensions = ext
		}
		return nil
	})
}

func (e *Extensions) marshal() []byte {
	var b []byte
	for _, h := range e.WebtransportCerthashes {
		b = protowire.AppendTag(b, fieldExtCerthashes, protowire.BytesType)
		b = protowire.AppendBytes(b, h)
	}
	for _, m := range e.StreamMuxers {
		b = protowire.AppendTag(b, fieldExtStreamMuxers, protowire.BytesType)
		b = protowire.AppendString(b, m)
	}
	return b
}

func (e *Extensions) unmarshal(data []byte) error {
	return walkFields(data, func(num protowire.Number, v []byte) error {
		switch num {
		case fieldExtCerthashes:
			e.WebtransportCerthashes = append(e.WebtransportCerthashes, append([]byte(nil), v...))
		case fieldExtStreamMuxers:
			e.StreamMuxers = append(e.StreamMuxers, string(v))
		}
		return nil
	})
}

// walkFields 遍历消息字段；length-delimited 字段回调 fn，其它类型跳过
func walkFields(data []byte, fn func(protowire.Number, []byte) error) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("%w: %v", ErrInvalidPayload, protowire.ParseError(n))
		}
		data = data[n:]

		if typ != protowire.BytesType {
			n = protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return fmt.Errorf("%w: %v", ErrInvalidPayload, protowire.ParseError(n))
			}
			data = data[n:]
			continue
		}

		v, n := protowire.ConsumeBytes(data)
		if n < 0 {
			return fmt.Errorf("%w: %v", ErrInvalidPayload, protowire.ParseError(n))
		}
		data = data[n:]
		if err := fn(num, v); err != nil {
			return err
		}
	}
	return nil
}
