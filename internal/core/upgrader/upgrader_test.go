package upgrader

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-p2pnode/internal/core/muxer"
	"github.com/dep2p/go-p2pnode/internal/core/negotiation"
	"github.com/dep2p/go-p2pnode/internal/core/security/noise"
	"github.com/dep2p/go-p2pnode/internal/core/security/verifier"
	pkgif "github.com/dep2p/go-p2pnode/pkg/interfaces"
	"github.com/dep2p/go-p2pnode/pkg/lib/crypto"
	"github.com/dep2p/go-p2pnode/pkg/types"
)

// testUpgrader 创建带新身份的升级器
func testUpgrader(t *testing.T) (*Upgrader, types.PeerID) {
	t.Helper()

	priv, _, err := crypto.GenerateKeyPair(crypto.KeyTypeEd25519)
	require.NoError(t, err)
	id, err := crypto.PeerIDFromPrivateKey(priv)
	require.NoError(t, err)

	sec, err := noise.New(priv, muxer.ID)
	require.NoError(t, err)
	mux, err := muxer.NewTransport(muxer.DefaultConfig())
	require.NoError(t, err)

	u, err := New(Config{
		SecurityTransports: []pkgif.SecureTransport{sec},
		StreamMuxers:       []pkgif.StreamMuxer{mux},
		Verifier:           verifier.New(),
		Negotiator:         negotiation.New(),
	})
	require.NoError(t, err)
	return u, id
}

type upgradeResult struct {
	conn pkgif.UpgradedConn
	err  error
}

func upgradePair(t *testing.T, dialer, listener *Upgrader, expected types.PeerID) (upgradeResult, upgradeResult) {
	t.Helper()

	clientConn, serverConn := net.Pipe()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	inCh := make(chan upgradeResult, 1)
	go func() {
		c, err := listener.Upgrade(ctx, serverConn, types.DirInbound, "")
		inCh <- upgradeResult{c, err}
	}()

	c, err := dialer.Upgrade(ctx, clientConn, types.DirOutbound, expected)
	out := upgradeResult{c, err}
	in := <-inCh

	t.Cleanup(func() {
		for _, r := range []upgradeResult{out, in} {
			if r.conn != nil {
				r.conn.Close()
			}
		}
	})
	return out, in
}

func TestNew_ValidatesConfig(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, ErrNoSecurityTransport)
}

func TestUpgrade_MutualIdentity(t *testing.T) {
	dialer, dialerID := testUpgrader(t)
	listener, listenerID := testUpgrader(t)

	out, in := upgradePair(t, dialer, listener, listenerID)
	require.NoError(t, out.err)
	require.NoError(t, in.err)

	assert.Equal(t, listenerID, out.conn.RemotePeer())
	assert.Equal(t, dialerID, in.conn.RemotePeer())
	assert.Equal(t, dialerID, out.conn.LocalPeer())
	assert.Equal(t, types.DirOutbound, out.conn.Direction())
	assert.Equal(t, types.DirInbound, in.conn.Direction())
	assert.Equal(t, noise.ID, out.conn.Security())
	assert.Equal(t, muxer.ID, in.conn.Muxer())
	t.Log("✅ 双方互相看到对端 PeerID")

	// 出站侧打开的流能被入站侧接受
	go func() {
		s, err := out.conn.OpenStream(context.Background())
		if err != nil {
			return
		}
		_, _ = s.Write([]byte("hi"))
		s.Close()
	}()

	s, err := in.conn.AcceptStream()
	require.NoError(t, err)
	got, err := io.ReadAll(s)
	require.NoError(t, err)
	assert.Equal(t, "hi", string(got))
}

func TestUpgrade_UnexpectedPeer(t *testing.T) {
	dialer, _ := testUpgrader(t)
	listener, _ := testUpgrader(t)
	_, someoneElse := testUpgrader(t)

	out, _ := upgradePair(t, dialer, listener, someoneElse)
	require.Error(t, out.err)
	assert.ErrorIs(t, out.err, ErrVerificationFailed)
	assert.ErrorIs(t, out.err, verifier.ErrUnexpectedPeer)
}

func TestUpgrade_ContextTimeoutClosesConn(t *testing.T) {
	u, _ := testUpgrader(t)

	clientConn, serverConn := net.Pipe()
	defer serverConn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	// 对端不说话
	_, err := u.Upgrade(ctx, clientConn, types.DirOutbound, "")
	require.Error(t, err)

	// 原始连接已关闭，对端读到 EOF
	_ = serverConn.SetReadDeadline(time.Now().Add(time.Second))
	buf := make([]byte, 1024)
	for {
		_, err = serverConn.Read(buf)
		if err != nil {
			break
		}
	}
	assert.True(t, errors.Is(err, io.EOF), "expected EOF, got %v", err)
}

func TestUpgrade_InvalidDirection(t *testing.T) {
	u, _ := testUpgrader(t)
	a, b := net.Pipe()
	defer b.Close()

	_, err := u.Upgrade(context.Background(), a, types.DirUnknown, "")
	assert.ErrorIs(t, err, ErrInvalidDirection)
}
