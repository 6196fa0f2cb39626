// Package memory 实现进程内传输 /memory/<port>
//
// 同一进程内的监听器登记在全局 hub 中，拨号时用 net.Pipe 连接两端。
// 端口 0 表示由 hub 分配。
package memory

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	ma "github.com/multiformats/go-multiaddr"

	"github.com/dep2p/go-p2pnode/internal/core/transport"
	pkgif "github.com/dep2p/go-p2pnode/pkg/interfaces"
	"github.com/dep2p/go-p2pnode/pkg/lib/log"
)

var logger = log.Logger("core/transport/memory")

var (
	// ErrConnectionRefused 目标端口无监听器
	ErrConnectionRefused = errors.New("memory: connection refused")

	// ErrAddressInUse 端口已被占用
	ErrAddressInUse = errors.New("memory: address in use")
)

// hub 进程内监听器登记表
type hub struct {
	mu        sync.Mutex
	listeners map[uint64]*memListener
	nextPort  uint64
}

var defaultHub = &hub{
	listeners: make(map[uint64]*memListener),
	nextPort:  1 << 16,
}

func (h *hub) allocPortLocked() uint64 {
	for {
		h.nextPort++
		if _, used := h.listeners[h.nextPort]; !used {
			return h.nextPort
		}
	}
}

// Transport 内存传输
type Transport struct {
	hub *hub
}

var _ pkgif.Transport = (*Transport)(nil)

// New 创建使用全局 hub 的内存传输
func New() *Transport {
	return &Transport{hub: defaultHub}
}

// CanDial 检查是否为 /memory/<port>
func (t *Transport) CanDial(addr ma.Multiaddr) bool {
	_, ok := parsePort(addr)
	return ok
}

// Protocols 返回支持的 multiaddr 协议编号
func (t *Transport) Protocols() []int {
	return []int{ma.ProtocolWithName(protocolName).Code}
}

// Dial 连接到进程内监听器
func (t *Transport) Dial(ctx context.Context, raddr ma.Multiaddr) (net.Conn, error) {
	port, ok := parsePort(raddr)
	if !ok || port == 0 {
		return nil, fmt.Errorf("%w: %s", transport.ErrInvalidAddress, raddr)
	}

	t.hub.mu.Lock()
	l := t.hub.listeners[port]
	localPort := t.hub.allocPortLocked()
	t.hub.mu.Unlock()
	if l == nil {
		return nil, fmt.Errorf("%w: %s", ErrConnectionRefused, raddr)
	}

	local, remote := net.Pipe()
	in := inbound{conn: remote, remote: Multiaddr(localPort)}

	select {
	case l.incoming <- in:
		return local, nil
	case <-l.done:
		local.Close()
		remote.Close()
		return nil, fmt.Errorf("%w: %s", ErrConnectionRefused, raddr)
	case <-ctx.Done():
		local.Close()
		remote.Close()
		return nil, ctx.Err()
	}
}

// Listen 在 /memory/<port> 上监听
func (t *Transport) Listen(laddr ma.Multiaddr) (pkgif.Listener, error) {
	port, ok := parsePort(laddr)
	if !ok {
		return nil, fmt.Errorf("%w: %s", transport.ErrInvalidAddress, laddr)
	}

	t.hub.mu.Lock()
	if port == 0 {
		port = t.hub.allocPortLocked()
	} else if _, used := t.hub.listeners[port]; used {
		t.hub.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrAddressInUse, laddr)
	}
	l := &memListener{
		hub:      t.hub,
		port:     port,
		addr:     Multiaddr(port),
		incoming: make(chan inbound),
		done:     make(chan struct{}),
	}
	t.hub.listeners[port] = l
	t.hub.mu.Unlock()

	logger.Debug("内存监听已启动", "addr", l.addr)
	return transport.NewEventListener(l.addr, l.accept, l.close), nil
}

type inbound struct {
	conn   net.Conn
	remote ma.Multiaddr
}

// memListener hub 中登记的监听端
type memListener struct {
	hub      *hub
	port     uint64
	addr     ma.Multiaddr
	incoming chan inbound
	done     chan struct{}
	once     sync.Once
}

func (l *memListener) accept() (net.Conn, ma.Multiaddr, ma.Multiaddr, error) {
	select {
	case in := <-l.incoming:
		return in.conn, l.addr, in.remote, nil
	case <-l.done:
		return nil, nil, nil, transport.ErrListenerClosed
	}
}

func (l *memListener) close() error {
	l.once.Do(func() {
		l.hub.mu.Lock()
		delete(l.hub.listeners, l.port)
		l.hub.mu.Unlock()
		close(l.done)
	})
	return nil
}
