package transport

import (
	"errors"
	"net"
	"os"
	"testing"
	"time"

	ma "github.com/multiformats/go-multiaddr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgif "github.com/dep2p/go-p2pnode/pkg/interfaces"
)

// fakeAcceptor 按脚本返回连接或错误
type fakeAcceptor struct {
	results chan acceptResult
	closed  chan struct{}
}

type acceptResult struct {
	conn net.Conn
	err  error
}

func newFakeAcceptor() *fakeAcceptor {
	return &fakeAcceptor{
		results: make(chan acceptResult, 4),
		closed:  make(chan struct{}),
	}
}

func (f *fakeAcceptor) accept() (net.Conn, ma.Multiaddr, ma.Multiaddr, error) {
	select {
	case r := <-f.results:
		return r.conn, nil, nil, r.err
	case <-f.closed:
		return nil, nil, nil, net.ErrClosed
	}
}

func (f *fakeAcceptor) close() error {
	close(f.closed)
	return nil
}

func nextEvent(t *testing.T, l *EventListener) (pkgif.ListenerEvent, bool) {
	t.Helper()
	select {
	case ev, ok := <-l.Events():
		return ev, ok
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for listener event")
		return pkgif.ListenerEvent{}, false
	}
}

func TestEventListener_Sequence(t *testing.T) {
	addr := ma.StringCast("/ip4/127.0.0.1/tcp/4001")
	fa := newFakeAcceptor()
	l := NewEventListener(addr, fa.accept, fa.close)

	ev, ok := nextEvent(t, l)
	require.True(t, ok)
	assert.Equal(t, pkgif.ListenerNewAddress, ev.Kind)
	assert.True(t, addr.Equal(ev.Addr))

	c1, c2 := net.Pipe()
	defer c2.Close()
	fa.results <- acceptResult{conn: c1}

	ev, ok = nextEvent(t, l)
	require.True(t, ok)
	assert.Equal(t, pkgif.ListenerUpgrade, ev.Kind)
	assert.Equal(t, c1, ev.Conn)

	boom := errors.New("too many open files")
	fa.results <- acceptResult{err: boom}

	ev, ok = nextEvent(t, l)
	require.True(t, ok)
	assert.Equal(t, pkgif.ListenerError, ev.Kind)
	assert.ErrorIs(t, ev.Err, boom)

	require.NoError(t, l.Close())
	require.NoError(t, l.Close())

	// 关闭后通道最终被关闭
	for {
		ev, ok = nextEvent(t, l)
		if !ok {
			break
		}
		assert.Equal(t, pkgif.ListenerAddressExpired, ev.Kind)
	}
}

func TestEventListener_NoUpgradeAfterClose(t *testing.T) {
	addr := ma.StringCast("/ip4/127.0.0.1/tcp/4001")
	release := make(chan net.Conn)
	accept := func() (net.Conn, ma.Multiaddr, ma.Multiaddr, error) {
		c, ok := <-release
		if !ok {
			return nil, nil, nil, net.ErrClosed
		}
		return c, nil, nil, nil
	}
	l := NewEventListener(addr, accept, func() error { return nil })

	ev, ok := nextEvent(t, l)
	require.True(t, ok)
	require.Equal(t, pkgif.ListenerNewAddress, ev.Kind)

	require.NoError(t, l.Close())

	// 关闭后才完成的 Accept 不再产生 Upgrade，连接被关闭
	c1, c2 := net.Pipe()
	defer c2.Close()
	release <- c1
	close(release)

	for {
		ev, ok = nextEvent(t, l)
		if !ok {
			break
		}
		assert.NotEqual(t, pkgif.ListenerUpgrade, ev.Kind)
	}

	_ = c2.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, err := c2.Read(make([]byte, 1))
	assert.Error(t, err)
	assert.False(t, errors.Is(err, os.ErrDeadlineExceeded))
}
