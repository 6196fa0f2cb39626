package tcp

import (
	"context"
	"io"
	"testing"
	"time"

	ma "github.com/multiformats/go-multiaddr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-p2pnode/internal/core/transport"
	pkgif "github.com/dep2p/go-p2pnode/pkg/interfaces"
)

func TestTransport_CanDial(t *testing.T) {
	tpt := New()

	tests := map[string]bool{
		"/ip4/127.0.0.1/tcp/4001":    true,
		"/ip6/::1/tcp/4001":          true,
		"/dns4/example.com/tcp/443":  true,
		"/ip4/127.0.0.1/udp/4001":    false,
		"/ip4/127.0.0.1/tcp/4001/ws": false,
		"/memory/1":                  false,
	}
	for s, want := range tests {
		addr, err := ma.NewMultiaddr(s)
		if err != nil {
			// memory 协议可能尚未注册
			continue
		}
		assert.Equal(t, want, tpt.CanDial(addr), s)
	}
}

func TestTransport_ListenDial(t *testing.T) {
	tpt := New()

	ln, err := tpt.Listen(ma.StringCast("/ip4/127.0.0.1/tcp/0"))
	require.NoError(t, err)
	defer ln.Close()

	ev := <-ln.Events()
	require.Equal(t, pkgif.ListenerNewAddress, ev.Kind)
	port, err := ev.Addr.ValueForProtocol(ma.P_TCP)
	require.NoError(t, err)
	assert.NotEqual(t, "0", port, "应报告实际端口")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := tpt.Dial(ctx, ln.Multiaddr())
	require.NoError(t, err)
	defer client.Close()

	ev = <-ln.Events()
	require.Equal(t, pkgif.ListenerUpgrade, ev.Kind)
	require.NotNil(t, ev.Conn)
	defer ev.Conn.Close()
	assert.NotNil(t, ev.RemoteAddr)

	_, err = client.Write([]byte("hi"))
	require.NoError(t, err)
	buf := make([]byte, 2)
	_, err = io.ReadFull(ev.Conn, buf)
	require.NoError(t, err)
	assert.Equal(t, "hi", string(buf))

	require.NoError(t, ln.Close())
	for ev := range ln.Events() {
		assert.Equal(t, pkgif.ListenerAddressExpired, ev.Kind)
	}
}

func TestTransport_InvalidAddress(t *testing.T) {
	tpt := New()

	_, err := tpt.Listen(ma.StringCast("/ip4/127.0.0.1/udp/0"))
	assert.ErrorIs(t, err, transport.ErrInvalidAddress)

	_, err = tpt.Dial(context.Background(), ma.StringCast("/ip4/127.0.0.1/udp/1"))
	assert.ErrorIs(t, err, transport.ErrInvalidAddress)
}
