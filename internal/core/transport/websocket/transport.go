// Package websocket 实现 /ip4/.../tcp/.../ws 基础传输
//
// 基于 gorilla/websocket，每次 Write 发送一条二进制消息，
// Read 把收到的二进制消息拼接为连续字节流。
package websocket

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	ws "github.com/gorilla/websocket"
	ma "github.com/multiformats/go-multiaddr"
	manet "github.com/multiformats/go-multiaddr/net"

	"github.com/dep2p/go-p2pnode/internal/core/transport"
	pkgif "github.com/dep2p/go-p2pnode/pkg/interfaces"
	"github.com/dep2p/go-p2pnode/pkg/lib/log"
)

var logger = log.Logger("core/transport/websocket")

const (
	wsSuffix = "/ws"

	handshakeTimeout  = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// Transport WebSocket 传输
type Transport struct {
	dialer   ws.Dialer
	upgrader ws.Upgrader
}

var _ pkgif.Transport = (*Transport)(nil)

// New 创建 WebSocket 传输
func New() *Transport {
	return &Transport{
		dialer: ws.Dialer{HandshakeTimeout: handshakeTimeout},
		upgrader: ws.Upgrader{
			HandshakeTimeout: handshakeTimeout,
			// 节点之间的连接，不做浏览器 Origin 检查
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// splitWS 拆出 /ws 之前的 TCP 地址
func splitWS(addr ma.Multiaddr) (ma.Multiaddr, bool) {
	s := addr.String()
	if !strings.HasSuffix(s, wsSuffix) {
		return nil, false
	}
	tcpAddr, err := ma.NewMultiaddr(strings.TrimSuffix(s, wsSuffix))
	if err != nil {
		return nil, false
	}
	protos := tcpAddr.Protocols()
	if len(protos) != 2 || protos[1].Code != ma.P_TCP {
		return nil, false
	}
	return tcpAddr, true
}

func withWS(addr ma.Multiaddr) ma.Multiaddr {
	out, err := ma.NewMultiaddr(addr.String() + wsSuffix)
	if err != nil {
		return addr
	}
	return out
}

// CanDial 检查是否为 .../tcp/<port>/ws
func (t *Transport) CanDial(addr ma.Multiaddr) bool {
	_, ok := splitWS(addr)
	return ok
}

// Protocols 返回支持的 multiaddr 协议编号
func (t *Transport) Protocols() []int {
	return []int{ma.P_WS}
}

// Dial 建立 WebSocket 连接
func (t *Transport) Dial(ctx context.Context, raddr ma.Multiaddr) (net.Conn, error) {
	tcpAddr, ok := splitWS(raddr)
	if !ok {
		return nil, fmt.Errorf("%w: %s", transport.ErrInvalidAddress, raddr)
	}
	_, host, err := manet.DialArgs(tcpAddr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", transport.ErrInvalidAddress, err)
	}

	c, resp, err := t.dialer.DialContext(ctx, "ws://"+host+"/", nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", raddr, err)
	}

	logger.Debug("WebSocket 拨号成功", "remote", raddr)
	return newConn(c), nil
}

// Listen 在 .../tcp/<port>/ws 上监听
func (t *Transport) Listen(laddr ma.Multiaddr) (pkgif.Listener, error) {
	tcpAddr, ok := splitWS(laddr)
	if !ok {
		return nil, fmt.Errorf("%w: %s", transport.ErrInvalidAddress, laddr)
	}

	ln, err := manet.Listen(tcpAddr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", laddr, err)
	}

	l := &wsListener{
		upgrader: t.upgrader,
		addr:     withWS(ln.Multiaddr()),
		incoming: make(chan *conn),
		done:     make(chan struct{}),
	}
	l.server = &http.Server{
		Handler:           l,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	go func() {
		if err := l.server.Serve(manet.NetListener(ln)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("WebSocket HTTP 服务退出", "addr", l.addr, "error", err)
		}
	}()

	logger.Info("WebSocket 监听已启动", "addr", l.addr)
	return transport.NewEventListener(l.addr, l.accept, l.close), nil
}

// wsListener 通过 HTTP Upgrade 接受连接
type wsListener struct {
	upgrader ws.Upgrader
	server   *http.Server
	addr     ma.Multiaddr

	incoming chan *conn
	done     chan struct{}
}

// ServeHTTP 升级 HTTP 请求并把连接交给 accept
func (l *wsListener) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := l.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Debug("WebSocket 升级失败", "remote", r.RemoteAddr, "error", err)
		return
	}

	wc := newConn(c)
	select {
	case l.incoming <- wc:
	case <-l.done:
		wc.Close()
	}
}

func (l *wsListener) accept() (net.Conn, ma.Multiaddr, ma.Multiaddr, error) {
	select {
	case c := <-l.incoming:
		var remote ma.Multiaddr
		if ra, err := manet.FromNetAddr(c.RemoteAddr()); err == nil {
			remote = withWS(ra)
		}
		return c, l.addr, remote, nil
	case <-l.done:
		return nil, nil, nil, transport.ErrListenerClosed
	}
}

func (l *wsListener) close() error {
	close(l.done)
	return l.server.Close()
}
