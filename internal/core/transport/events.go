package transport

import (
	"errors"
	"net"
	"sync"
	"time"

	ma "github.com/multiformats/go-multiaddr"

	pkgif "github.com/dep2p/go-p2pnode/pkg/interfaces"
	"github.com/dep2p/go-p2pnode/pkg/lib/log"
)

var logger = log.Logger("core/transport")

const (
	eventBufferSize = 16

	minAcceptBackoff = 5 * time.Millisecond
	maxAcceptBackoff = time.Second
)

// AcceptFunc 阻塞接受一个原始连接及其两端地址
type AcceptFunc func() (conn net.Conn, local, remote ma.Multiaddr, err error)

// EventListener 把 Accept 循环转换为事件流
//
// 事件顺序：NewAddress，若干 Upgrade / Error，AddressExpired，然后关闭通道。
// 连续的 Accept 错误会以 Error 事件上报并指数退避，
// 底层监听器关闭后循环结束。
type EventListener struct {
	addr    ma.Multiaddr
	accept  AcceptFunc
	closeFn func() error

	events chan pkgif.ListenerEvent
	done   chan struct{}

	closeOnce sync.Once
	closeErr  error
}

var _ pkgif.Listener = (*EventListener)(nil)

// NewEventListener 创建事件监听器并启动 Accept 循环
func NewEventListener(addr ma.Multiaddr, accept AcceptFunc, closeFn func() error) *EventListener {
	l := &EventListener{
		addr:    addr,
		accept:  accept,
		closeFn: closeFn,
		events:  make(chan pkgif.ListenerEvent, eventBufferSize),
		done:    make(chan struct{}),
	}
	go l.loop()
	return l
}

// Events 返回事件通道
func (l *EventListener) Events() <-chan pkgif.ListenerEvent {
	return l.events
}

// Multiaddr 返回监听地址
func (l *EventListener) Multiaddr() ma.Multiaddr {
	return l.addr
}

// Close 关闭监听器，可重复调用
func (l *EventListener) Close() error {
	l.closeOnce.Do(func() {
		close(l.done)
		l.closeErr = l.closeFn()
	})
	return l.closeErr
}

func (l *EventListener) loop() {
	defer close(l.events)

	l.emit(pkgif.ListenerEvent{Kind: pkgif.ListenerNewAddress, Addr: l.addr})

	backoff := minAcceptBackoff
	for {
		conn, local, remote, err := l.accept()
		if err != nil {
			if l.isClosed() || errors.Is(err, net.ErrClosed) || errors.Is(err, ErrListenerClosed) {
				break
			}
			logger.Debug("accept 失败", "addr", l.addr, "error", err)
			if !l.emit(pkgif.ListenerEvent{Kind: pkgif.ListenerError, Err: err}) {
				break
			}
			select {
			case <-time.After(backoff):
			case <-l.done:
			}
			backoff = min(backoff*2, maxAcceptBackoff)
			continue
		}
		backoff = minAcceptBackoff

		ev := pkgif.ListenerEvent{
			Kind:       pkgif.ListenerUpgrade,
			Conn:       conn,
			LocalAddr:  local,
			RemoteAddr: remote,
		}
		if !l.emit(ev) {
			conn.Close()
			break
		}
	}

	// 尽力通知地址失效，消费者已离开时丢弃
	select {
	case l.events <- pkgif.ListenerEvent{Kind: pkgif.ListenerAddressExpired, Addr: l.addr}:
	default:
	}
}

// emit 发送事件，监听器关闭时返回 false
func (l *EventListener) emit(ev pkgif.ListenerEvent) bool {
	// 两个分支同时就绪时 select 随机选择，先检查关闭
	if l.isClosed() {
		return false
	}
	select {
	case l.events <- ev:
		return true
	case <-l.done:
		return false
	}
}

func (l *EventListener) isClosed() bool {
	select {
	case <-l.done:
		return true
	default:
		return false
	}
}
