package muxer

import (
	"errors"

	"github.com/libp2p/go-yamux/v5"
)

var (
	// ErrStreamReset 流被重置
	ErrStreamReset = errors.New("stream reset")

	// ErrConnClosed 会话已关闭
	ErrConnClosed = errors.New("connection closed")

	// ErrInvalidConfig 配置无效
	ErrInvalidConfig = errors.New("invalid muxer config")
)

// parseError 转换 yamux 错误，保留原始错误链
func parseError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, yamux.ErrStreamReset):
		return errors.Join(ErrStreamReset, err)
	case errors.Is(err, yamux.ErrSessionShutdown):
		return errors.Join(ErrConnClosed, err)
	default:
		return err
	}
}
