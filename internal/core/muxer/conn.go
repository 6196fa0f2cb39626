package muxer

import (
	"context"

	"github.com/libp2p/go-yamux/v5"

	pkgif "github.com/dep2p/go-p2pnode/pkg/interfaces"
	"github.com/dep2p/go-p2pnode/pkg/lib/log"
)

var logger = log.Logger("core/muxer")

// muxedConn 包装 yamux.Session
type muxedConn struct {
	session *yamux.Session
}

var _ pkgif.MuxedConn = (*muxedConn)(nil)

// OpenStream 打开新流
func (c *muxedConn) OpenStream(ctx context.Context) (pkgif.MuxedStream, error) {
	s, err := c.session.OpenStream(ctx)
	if err != nil {
		logger.Debug("打开流失败", "error", err)
		return nil, parseError(err)
	}
	return newMuxedStream(s), nil
}

// AcceptStream 接受新流
func (c *muxedConn) AcceptStream() (pkgif.MuxedStream, error) {
	s, err := c.session.AcceptStream()
	if err != nil {
		return nil, parseError(err)
	}
	return newMuxedStream(s), nil
}

// Close 关闭会话
func (c *muxedConn) Close() error {
	return c.session.Close()
}

// IsClosed 检查会话是否已关闭
func (c *muxedConn) IsClosed() bool {
	return c.session.IsClosed()
}

// CloseChan 会话关闭通知
func (c *muxedConn) CloseChan() <-chan struct{} {
	return c.session.CloseChan()
}
