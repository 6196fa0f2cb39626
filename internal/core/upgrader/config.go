package upgrader

import (
	pkgif "github.com/dep2p/go-p2pnode/pkg/interfaces"
)

// Config 升级器配置
type Config struct {
	// SecurityTransports 安全传输列表（按优先级排序）
	SecurityTransports []pkgif.SecureTransport

	// StreamMuxers 流多路复用器列表（按优先级排序）
	StreamMuxers []pkgif.StreamMuxer

	// Verifier 远端身份校验器
	Verifier pkgif.PeerVerifier

	// Negotiator 协议协商器
	Negotiator pkgif.ProtocolNegotiator
}

func (c Config) validate() error {
	switch {
	case len(c.SecurityTransports) == 0:
		return ErrNoSecurityTransport
	case len(c.StreamMuxers) == 0:
		return ErrNoStreamMuxer
	case c.Verifier == nil:
		return ErrNoVerifier
	case c.Negotiator == nil:
		return ErrNoNegotiator
	}
	return nil
}
