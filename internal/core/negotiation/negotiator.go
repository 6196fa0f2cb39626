// Package negotiation 基于 multistream-select 实现协议协商
//
// 同一套协商逻辑用于三处：
//   - 原始连接上选择安全协议（/noise）
//   - 安全连接上选择多路复用器（/yamux/1.0.0）
//   - 每条子流上选择应用协议
package negotiation

import (
	"errors"
	"fmt"
	"io"

	mss "github.com/multiformats/go-multistream"

	pkgif "github.com/dep2p/go-p2pnode/pkg/interfaces"
	"github.com/dep2p/go-p2pnode/pkg/lib/log"
)

var logger = log.Logger("core/negotiation")

// 协商错误
var (
	// ErrNoCommonProtocol 双方没有共同支持的协议
	ErrNoCommonProtocol = errors.New("no common protocol")

	// ErrProtocolViolation 对端违反 multistream-select 协议
	ErrProtocolViolation = errors.New("multistream protocol violation")

	// ErrPeerClosed 对端在达成一致前关闭了流
	ErrPeerClosed = errors.New("peer closed stream during negotiation")

	// ErrNoProtocols 未提供任何协议
	ErrNoProtocols = errors.New("no protocols to negotiate")
)

// Negotiator multistream-select 协商器，无状态，可并发使用
type Negotiator struct{}

var _ pkgif.ProtocolNegotiator = (*Negotiator)(nil)

// New 创建协商器
func New() *Negotiator {
	return &Negotiator{}
}

// Negotiate 监听方协商
//
// 对端提议不在 supported 中的协议时回复 "na" 并继续等待下一个提议，
// 直到匹配或对端放弃。
func (n *Negotiator) Negotiate(rwc io.ReadWriteCloser, supported []string) (string, error) {
	if len(supported) == 0 {
		return "", ErrNoProtocols
	}

	mux := mss.NewMultistreamMuxer[string]()
	for _, p := range supported {
		mux.AddHandler(p, nil)
	}

	proto, _, err := mux.Negotiate(rwc)
	if err != nil {
		return "", classify(err)
	}
	logger.Debug("协议协商成功", "role", "listener", "protocol", proto)
	return proto, nil
}

// Select 拨号方协商
//
// 按顺序提议 protocols，返回对端接受的第一个。
func (n *Negotiator) Select(rwc io.ReadWriteCloser, protocols ...string) (string, error) {
	switch len(protocols) {
	case 0:
		return "", ErrNoProtocols
	case 1:
		if err := mss.SelectProtoOrFail(protocols[0], rwc); err != nil {
			return "", classify(err)
		}
		logger.Debug("协议协商成功", "role", "dialer", "protocol", protocols[0])
		return protocols[0], nil
	default:
		proto, err := mss.SelectOneOf(protocols, rwc)
		if err != nil {
			return "", classify(err)
		}
		logger.Debug("协议协商成功", "role", "dialer", "protocol", proto)
		return proto, nil
	}
}

// classify 给 multistream 错误加上本包的分类，原始错误仍可通过 errors.As 取得
func classify(err error) error {
	var notSupported mss.ErrNotSupported[string]
	switch {
	case errors.As(err, &notSupported):
		return fmt.Errorf("%w: %w", ErrNoCommonProtocol, err)
	case errors.Is(err, mss.ErrIncorrectVersion),
		errors.Is(err, mss.ErrTooLarge),
		errors.Is(err, mss.ErrNoProtocols):
		return fmt.Errorf("%w: %w", ErrProtocolViolation, err)
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return fmt.Errorf("%w: %w", ErrPeerClosed, err)
	default:
		return err
	}
}
