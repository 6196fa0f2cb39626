package p2pnode

import (
	"context"
	"fmt"
	"sync"
	"time"

	ma "github.com/multiformats/go-multiaddr"

	pkgif "github.com/dep2p/go-p2pnode/pkg/interfaces"
	"github.com/dep2p/go-p2pnode/pkg/types"
)

const listenerBufferSize = 16

type listenResult struct {
	conn *Connection
	err  error
}

// Listener 入站连接序列
//
// 每个入站原始连接独立升级，各自受 upgradeTimeout 约束，
// 结果按完成先后交付。地址事件不进入序列，可通过 Addrs 查询。
type Listener struct {
	node  *Node
	inner pkgif.Listener

	ctx    context.Context
	cancel context.CancelFunc

	results chan listenResult

	mu    sync.Mutex
	addrs []ma.Multiaddr
}

func newListener(n *Node, inner pkgif.Listener) *Listener {
	l := &Listener{
		node:    n,
		inner:   inner,
		results: make(chan listenResult, listenerBufferSize),
	}
	l.ctx, l.cancel = context.WithCancel(context.Background())
	go l.loop()
	return l
}

// Next 返回下一条升级完成的入站连接
//
// 升级失败返回 *UpgradeError，监听器错误原样返回，之后仍可继续调用。
// 监听器关闭后返回 ErrListenerClosed。
func (l *Listener) Next(ctx context.Context) (*Connection, error) {
	select {
	case r, ok := <-l.results:
		if !ok {
			return nil, ErrListenerClosed
		}
		return r.conn, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Addrs 返回当前有效的监听地址
func (l *Listener) Addrs() []ma.Multiaddr {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]ma.Multiaddr(nil), l.addrs...)
}

// Multiaddr 返回绑定的监听地址
func (l *Listener) Multiaddr() ma.Multiaddr {
	return l.inner.Multiaddr()
}

// Close 关闭监听器，进行中的升级被放弃，已建立的连接不受影响
func (l *Listener) Close() error {
	l.cancel()
	return l.inner.Close()
}

func (l *Listener) loop() {
	var wg sync.WaitGroup
	defer func() {
		wg.Wait()
		close(l.results)
	}()

	for ev := range l.inner.Events() {
		switch ev.Kind {
		case pkgif.ListenerNewAddress:
			l.addAddr(ev.Addr)
		case pkgif.ListenerAddressExpired:
			l.removeAddr(ev.Addr)
		case pkgif.ListenerUpgrade:
			wg.Add(1)
			go func(ev pkgif.ListenerEvent) {
				defer wg.Done()
				l.upgrade(ev)
			}(ev)
		case pkgif.ListenerError:
			logger.Warn("监听器错误", "addr", l.inner.Multiaddr(), "error", ev.Err)
			l.push(listenResult{err: fmt.Errorf("listener %s: %w", l.inner.Multiaddr(), ev.Err)})
		}
	}
}

func (l *Listener) upgrade(ev pkgif.ListenerEvent) {
	n := l.node
	ctx, cancel := context.WithTimeoutCause(l.ctx, n.upgradeTimeout, ErrUpgradeTimeout)
	defer cancel()

	conn, err := n.upgrade(ctx, ev.Conn, types.DirInbound, "", ev.RemoteAddr, time.Now())
	l.push(listenResult{conn: conn, err: err})
}

// push 交付结果，监听器关闭后丢弃并关闭连接
func (l *Listener) push(r listenResult) {
	select {
	case l.results <- r:
	case <-l.ctx.Done():
		if r.conn != nil {
			r.conn.Control.CloseConnection()
		}
	}
}

func (l *Listener) addAddr(a ma.Multiaddr) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, x := range l.addrs {
		if x.Equal(a) {
			return
		}
	}
	l.addrs = append(l.addrs, a)
}

func (l *Listener) removeAddr(a ma.Multiaddr) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, x := range l.addrs {
		if x.Equal(a) {
			l.addrs = append(l.addrs[:i], l.addrs[i+1:]...)
			return
		}
	}
}
