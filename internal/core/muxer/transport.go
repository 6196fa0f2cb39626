package muxer

import (
	"net"

	"github.com/libp2p/go-yamux/v5"

	pkgif "github.com/dep2p/go-p2pnode/pkg/interfaces"
)

// Transport yamux 多路复用器
type Transport struct {
	config *yamux.Config
}

var _ pkgif.StreamMuxer = (*Transport)(nil)

// NewTransport 按配置创建 Transport
func NewTransport(cfg Config) (*Transport, error) {
	ycfg, err := cfg.yamuxConfig()
	if err != nil {
		return nil, err
	}
	return &Transport{config: ycfg}, nil
}

// NewConn 在安全连接上创建 yamux 会话
func (t *Transport) NewConn(conn net.Conn, isServer bool) (pkgif.MuxedConn, error) {
	var (
		sess *yamux.Session
		err  error
	)
	if isServer {
		sess, err = yamux.Server(conn, t.config, nil)
	} else {
		sess, err = yamux.Client(conn, t.config, nil)
	}
	if err != nil {
		return nil, err
	}

	logger.Debug("yamux 会话已建立", "server", isServer, "remote", conn.RemoteAddr())
	return &muxedConn{session: sess}, nil
}

// ID 返回多路复用协议标识
func (t *Transport) ID() string {
	return ID
}
