// Package tcp 提供基于 TCP 的基础传输
//
// TCP 不提供加密和多路复用，原始连接交由 upgrader 处理。
package tcp

import (
	"context"
	"fmt"
	"net"
	"time"

	ma "github.com/multiformats/go-multiaddr"
	manet "github.com/multiformats/go-multiaddr/net"

	"github.com/dep2p/go-p2pnode/internal/core/transport"
	pkgif "github.com/dep2p/go-p2pnode/pkg/interfaces"
	"github.com/dep2p/go-p2pnode/pkg/lib/log"
)

var logger = log.Logger("core/transport/tcp")

// defaultKeepAlive TCP keepalive 周期
const defaultKeepAlive = 30 * time.Second

// Transport TCP 传输
type Transport struct {
	dialer manet.Dialer
}

var _ pkgif.Transport = (*Transport)(nil)

// New 创建 TCP 传输
func New() *Transport {
	return &Transport{
		dialer: manet.Dialer{Dialer: net.Dialer{KeepAlive: defaultKeepAlive}},
	}
}

// Dial 拨号到 /ip4|ip6|dns.../tcp/<port>
func (t *Transport) Dial(ctx context.Context, raddr ma.Multiaddr) (net.Conn, error) {
	if !t.CanDial(raddr) {
		return nil, fmt.Errorf("%w: %s", transport.ErrInvalidAddress, raddr)
	}

	conn, err := t.dialer.DialContext(ctx, raddr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", raddr, err)
	}
	if tc, ok := conn.(interface{ SetNoDelay(bool) error }); ok {
		_ = tc.SetNoDelay(true)
	}

	logger.Debug("TCP 拨号成功", "remote", raddr, "local", conn.LocalMultiaddr())
	return conn, nil
}

// CanDial 检查地址是否为 TCP 地址
func (t *Transport) CanDial(addr ma.Multiaddr) bool {
	protos := addr.Protocols()
	if len(protos) != 2 {
		return false
	}
	switch protos[0].Code {
	case ma.P_IP4, ma.P_IP6, ma.P_DNS, ma.P_DNS4, ma.P_DNS6:
	default:
		return false
	}
	return protos[1].Code == ma.P_TCP
}

// Listen 在 TCP 地址上监听
func (t *Transport) Listen(laddr ma.Multiaddr) (pkgif.Listener, error) {
	if !t.CanDial(laddr) {
		return nil, fmt.Errorf("%w: %s", transport.ErrInvalidAddress, laddr)
	}

	ln, err := manet.Listen(laddr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", laddr, err)
	}

	logger.Info("TCP 监听已启动", "addr", ln.Multiaddr())
	accept := func() (net.Conn, ma.Multiaddr, ma.Multiaddr, error) {
		c, err := ln.Accept()
		if err != nil {
			return nil, nil, nil, err
		}
		return c, c.LocalMultiaddr(), c.RemoteMultiaddr(), nil
	}
	return transport.NewEventListener(ln.Multiaddr(), accept, ln.Close), nil
}

// Protocols 返回支持的 multiaddr 协议编号
func (t *Transport) Protocols() []int {
	return []int{ma.P_TCP}
}
