package interfaces

import (
	"context"
	"io"
	"net"
	"time"
)

// StreamMuxer 流多路复用器接口
type StreamMuxer interface {
	// NewConn 在安全连接上创建多路复用会话
	NewConn(conn net.Conn, isServer bool) (MuxedConn, error)

	// ID 返回多路复用协议标识，例如 "/yamux/1.0.0"
	ID() string
}

// MuxedConn 多路复用会话
type MuxedConn interface {
	// OpenStream 打开新流
	OpenStream(ctx context.Context) (MuxedStream, error)

	// AcceptStream 接受对端打开的流，会话关闭后返回错误
	AcceptStream() (MuxedStream, error)

	// Close 关闭会话及其上所有流
	Close() error

	// IsClosed 检查会话是否已关闭
	IsClosed() bool

	// CloseChan 会话关闭时被关闭的通道
	CloseChan() <-chan struct{}
}

// MuxedStream 多路复用流
type MuxedStream interface {
	io.ReadWriteCloser

	// CloseWrite 关闭写端（半关闭）
	CloseWrite() error

	// CloseRead 关闭读端
	CloseRead() error

	// Reset 异常终止流
	Reset() error

	// SetDeadline 设置读写截止时间
	SetDeadline(t time.Time) error

	// SetReadDeadline 设置读截止时间
	SetReadDeadline(t time.Time) error

	// SetWriteDeadline 设置写截止时间
	SetWriteDeadline(t time.Time) error
}
