package p2pnode

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-p2pnode/config"
	"github.com/dep2p/go-p2pnode/examples/hello"
	"github.com/dep2p/go-p2pnode/internal/core/metrics"
	"github.com/dep2p/go-p2pnode/pkg/lib/crypto"
)

func memoryConfig() *config.Config {
	cfg := config.NewConfig()
	cfg.Transport.Kind = config.TransportMemory
	cfg.Transport.ListenAddrs = []string{"/memory/0"}
	cfg.Protocols = []string{hello.ProtocolID}
	return cfg
}

func TestModule_StartsListeners(t *testing.T) {
	cfg := memoryConfig()
	cfg.Metrics.Enabled = true
	key := testKey(t)

	var (
		node      *Node
		listeners *Listeners
		reporter  *metrics.Reporter
	)
	app := fxtest.New(t,
		fx.Supply(cfg),
		fx.Provide(func() crypto.PrivateKey { return key }),
		fx.Provide(func() prometheus.Registerer { return prometheus.NewRegistry() }),
		Module,
		fx.Populate(&node, &listeners, &reporter),
	)
	app.RequireStart()

	require.NotNil(t, reporter)
	want, err := crypto.PeerIDFromPrivateKey(key)
	require.NoError(t, err)
	assert.Equal(t, want, node.LocalPeer())
	assert.Equal(t, []string{hello.ProtocolID}, node.SupportedProtocols())

	all := listeners.All()
	require.Len(t, all, 1)
	l := all[0]

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	out, in := connectPairOn(t, testNode(t, nil), node, l)
	assert.Equal(t, node.LocalPeer(), out.PeerID)
	assert.NotEmpty(t, in.ID)

	app.RequireStop()

	_, err = l.Next(ctx)
	assert.ErrorIs(t, err, ErrListenerClosed)
	assert.Empty(t, listeners.All())
}

func TestModule_InvalidConfig(t *testing.T) {
	cfg := memoryConfig()
	cfg.Transport.UpgradeTimeout = 0

	app := fx.New(
		fx.Supply(cfg),
		Module,
		fx.Invoke(func(*Node) {}),
		fx.NopLogger,
	)
	assert.Error(t, app.Err())
}

func TestNewApp(t *testing.T) {
	var node *Node
	app := NewApp(memoryConfig(), fx.Populate(&node))
	require.NoError(t, app.Err())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, app.Start(ctx))
	require.NoError(t, app.Stop(ctx))
	assert.False(t, node.LocalPeer().IsEmpty())
}

func TestNewTransport(t *testing.T) {
	for _, kind := range []string{config.TransportTCP, config.TransportWebSocket, config.TransportMemory} {
		tr, err := NewTransport(kind)
		require.NoError(t, err, kind)
		assert.NotNil(t, tr)
	}
	_, err := NewTransport("quic")
	assert.Error(t, err)
}
