package memory

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

func TestMultiaddr_RoundTrip(t *testing.T) {
	addr, err := ma.NewMultiaddr("/memory/1234")
	require.NoError(t, err)
	assert.Equal(t, "/memory/1234", addr.String())

	port, ok := parsePort(addr)
	require.True(t, ok)
	assert.Equal(t, uint64(1234), port)

	_, err = ma.NewMultiaddr("/memory/abc")
	assert.Error(t, err)
}

func TestTransport_ListenDial(t *testing.T) {
	tpt := New()

	ln, err := tpt.Listen(Multiaddr(0))
	require.NoError(t, err)
	defer ln.Close()

	ev := <-ln.Events()
	require.Equal(t, pkgif.ListenerNewAddress, ev.Kind)
	port, ok := parsePort(ev.Addr)
	require.True(t, ok)
	assert.NotZero(t, port, "端口 0 应被分配为实际端口")
	assert.True(t, tpt.CanDial(ev.Addr))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := tpt.Dial(ctx, ln.Multiaddr())
	require.NoError(t, err)
	defer client.Close()

	ev = <-ln.Events()
	require.Equal(t, pkgif.ListenerUpgrade, ev.Kind)
	defer ev.Conn.Close()

	go func() { _, _ = client.Write([]byte("ping")) }()
	buf := make([]byte, 4)
	_, err = io.ReadFull(ev.Conn, buf)
	require.NoError(t, err)
	assert.Equal(t, "ping", string(buf))
}

func TestTransport_Errors(t *testing.T) {
	tpt := New()

	ln, err := tpt.Listen(Multiaddr(0))
	require.NoError(t, err)
	addr := ln.Multiaddr()

	_, err = tpt.Listen(addr)
	assert.ErrorIs(t, err, ErrAddressInUse)

	require.NoError(t, ln.Close())

	_, err = tpt.Dial(context.Background(), addr)
	assert.ErrorIs(t, err, ErrConnectionRefused)

	_, err = tpt.Listen(ma.StringCast("/ip4/127.0.0.1/tcp/1"))
	assert.ErrorIs(t, err, transport.ErrInvalidAddress)
}
