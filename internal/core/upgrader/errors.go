package upgrader

import "errors"

// 配置错误
var (
	// ErrNoSecurityTransport 没有安全传输
	ErrNoSecurityTransport = errors.New("upgrader: no security transport configured")

	// ErrNoStreamMuxer 没有流复用器
	ErrNoStreamMuxer = errors.New("upgrader: no stream muxer configured")

	// ErrNoVerifier 没有身份校验器
	ErrNoVerifier = errors.New("upgrader: no peer verifier configured")

	// ErrNoNegotiator 没有协议协商器
	ErrNoNegotiator = errors.New("upgrader: no protocol negotiator configured")

	// ErrInvalidDirection 方向未知
	ErrInvalidDirection = errors.New("upgrader: unknown connection direction")
)

// 升级阶段错误，由调用方用 errors.Is 判别失败阶段
var (
	// ErrSecurityNegotiation 安全协议协商失败
	ErrSecurityNegotiation = errors.New("upgrader: security negotiation failed")

	// ErrHandshakeFailed 安全握手失败
	ErrHandshakeFailed = errors.New("upgrader: handshake failed")

	// ErrVerificationFailed 远端身份校验失败
	ErrVerificationFailed = errors.New("upgrader: peer verification failed")

	// ErrMuxerNegotiation 多路复用器协商失败
	ErrMuxerNegotiation = errors.New("upgrader: muxer negotiation failed")

	// ErrMuxerSetupFailed 多路复用器设置失败
	ErrMuxerSetupFailed = errors.New("upgrader: muxer setup failed")
)
