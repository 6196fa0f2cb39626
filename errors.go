package p2pnode

import (
	"errors"
	"fmt"

	ma "github.com/multiformats/go-multiaddr"

	"github.com/dep2p/go-p2pnode/pkg/types"
)

// 公共错误定义，均可用 errors.Is 匹配
var (
	// ────────────────────────────────────────────────────────────────────────
	// 子流错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrNegotiationTimeout 子流协议协商超时
	ErrNegotiationTimeout = errors.New("protocol negotiation timed out")

	// ErrMultiplexer 多路复用层出错，连接不再可用
	ErrMultiplexer = errors.New("multiplexer error")

	// ErrNegotiationFailed 子流协议协商失败
	ErrNegotiationFailed = errors.New("protocol negotiation failed")

	// ────────────────────────────────────────────────────────────────────────
	// 连接错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrUpgradeTimeout 连接升级超时
	ErrUpgradeTimeout = errors.New("connection upgrade timed out")

	// ErrPeerVerification 远端身份校验失败
	ErrPeerVerification = errors.New("peer verification failed")

	// ErrConnectionClosed 连接已关闭
	ErrConnectionClosed = errors.New("connection closed")

	// ErrListenerClosed 监听器已关闭
	ErrListenerClosed = errors.New("listener closed")
)

// ErrorKind 子流错误类别
type ErrorKind int

const (
	// KindNegotiationTimeout 协商超时，仅影响该子流
	KindNegotiationTimeout ErrorKind = iota + 1
	// KindMultiplexer 多路复用失败，整条连接不可用
	KindMultiplexer
	// KindNegotiationFailed 协商失败，仅影响该子流
	KindNegotiationFailed
)

// String 返回类别名称
func (k ErrorKind) String() string {
	switch k {
	case KindNegotiationTimeout:
		return "negotiation-timeout"
	case KindMultiplexer:
		return "multiplexer"
	case KindNegotiationFailed:
		return "negotiation-failed"
	default:
		return "unknown"
	}
}

// ConnectionFatal 该类错误是否意味着连接已失效
func (k ErrorKind) ConnectionFatal() bool {
	return k == KindMultiplexer
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindNegotiationTimeout:
		return ErrNegotiationTimeout
	case KindMultiplexer:
		return ErrMultiplexer
	case KindNegotiationFailed:
		return ErrNegotiationFailed
	default:
		return nil
	}
}

// SubstreamError 单条子流的失败
//
// errors.Is 可匹配类别对应的哨兵错误，errors.As 可取得底层原因，
// 例如 multistream.ErrNotSupported[string]。
type SubstreamError struct {
	Kind      ErrorKind
	Direction types.Direction

	// Protocol 出站时为提议的协议，入站时为空
	Protocol string

	Err error
}

func (e *SubstreamError) Error() string {
	msg := fmt.Sprintf("%s substream", e.Direction)
	if e.Protocol != "" {
		msg += " " + e.Protocol
	}
	if s := e.Kind.sentinel(); s != nil {
		msg += ": " + s.Error()
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap 同时暴露类别哨兵与底层原因
func (e *SubstreamError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s := e.Kind.sentinel(); s != nil {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// IsConnectionFatal 判断错误是否意味着整条连接已失效
//
// 协商超时和协商失败只影响单条子流，返回 false。
func IsConnectionFatal(err error) bool {
	if err == nil {
		return false
	}
	var se *SubstreamError
	if errors.As(err, &se) {
		return se.Kind.ConnectionFatal()
	}
	return errors.Is(err, ErrMultiplexer) || errors.Is(err, ErrConnectionClosed)
}

// UpgradeError 一次连接升级的失败
type UpgradeError struct {
	Direction types.Direction
	Remote    ma.Multiaddr
	Err       error
}

func (e *UpgradeError) Error() string {
	if e.Remote == nil {
		return fmt.Sprintf("upgrade %s connection: %v", e.Direction, e.Err)
	}
	return fmt.Sprintf("upgrade %s connection %s: %v", e.Direction, e.Remote, e.Err)
}

func (e *UpgradeError) Unwrap() error {
	return e.Err
}
