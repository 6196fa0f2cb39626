package muxer

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgif "github.com/dep2p/go-p2pnode/pkg/interfaces"
)

// testConnPair 创建 TCP 回环连接对
func testConnPair(t *testing.T) (net.Conn, net.Conn) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		c, _ := ln.Accept()
		accepted <- c
	}()

	clientConn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	serverConn := <-accepted
	require.NotNil(t, serverConn)

	t.Cleanup(func() {
		clientConn.Close()
		serverConn.Close()
	})
	return clientConn, serverConn
}

// testSessionPair 创建客户端/服务端 yamux 会话
func testSessionPair(t *testing.T) (pkgif.MuxedConn, pkgif.MuxedConn) {
	t.Helper()

	tpt, err := NewTransport(DefaultConfig())
	require.NoError(t, err)

	c, s := testConnPair(t)
	client, err := tpt.NewConn(c, false)
	require.NoError(t, err)
	server, err := tpt.NewConn(s, true)
	require.NoError(t, err)

	t.Cleanup(func() {
		client.Close()
		server.Close()
	})
	return client, server
}

func TestTransport_ID(t *testing.T) {
	tpt, err := NewTransport(DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, "/yamux/1.0.0", tpt.ID())
}

func TestConfig_Invalid(t *testing.T) {
	_, err := NewTransport(Config{MaxStreamWindowSize: 1})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestConn_StreamRoundTrip(t *testing.T) {
	client, server := testSessionPair(t)

	done := make(chan error, 1)
	go func() {
		s, err := server.AcceptStream()
		if err != nil {
			done <- err
			return
		}
		defer s.Close()
		_, err = io.Copy(s, s)
		done <- err
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s, err := client.OpenStream(ctx)
	require.NoError(t, err)

	_, err = s.Write([]byte("ping"))
	require.NoError(t, err)
	require.NoError(t, s.CloseWrite())

	got, err := io.ReadAll(s)
	require.NoError(t, err)
	assert.Equal(t, "ping", string(got))
	require.NoError(t, <-done)
}

func TestConn_ResetSurfacesStreamReset(t *testing.T) {
	client, server := testSessionPair(t)

	accepted := make(chan pkgif.MuxedStream, 1)
	go func() {
		s, err := server.AcceptStream()
		if err == nil {
			accepted <- s
		}
	}()

	s, err := client.OpenStream(context.Background())
	require.NoError(t, err)
	_, err = s.Write([]byte("x"))
	require.NoError(t, err)

	remote := <-accepted
	require.NoError(t, s.Reset())

	require.NoError(t, remote.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, err = io.ReadAll(remote)
	assert.ErrorIs(t, err, ErrStreamReset)
}

func TestConn_CloseEndsAccept(t *testing.T) {
	client, server := testSessionPair(t)

	errCh := make(chan error, 1)
	go func() {
		_, err := server.AcceptStream()
		errCh <- err
	}()

	require.NoError(t, client.Close())
	assert.True(t, client.IsClosed())

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrConnClosed)
	case <-time.After(5 * time.Second):
		t.Fatal("AcceptStream did not return after remote close")
	}

	select {
	case <-server.CloseChan():
	case <-time.After(5 * time.Second):
		t.Fatal("CloseChan not closed")
	}
}

func TestStream_WriteAfterLocalReset(t *testing.T) {
	client, server := testSessionPair(t)

	go func() {
		if s, err := server.AcceptStream(); err == nil {
			_, _ = io.Copy(io.Discard, s)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s, err := client.OpenStream(ctx)
	require.NoError(t, err)
	_, err = s.Write([]byte("x"))
	require.NoError(t, err)

	require.NoError(t, s.Reset())

	_, err = s.Write([]byte("y"))
	assert.ErrorIs(t, err, ErrStreamReset)
}
