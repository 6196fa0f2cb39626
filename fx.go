package p2pnode

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/dep2p/go-p2pnode/config"
	"github.com/dep2p/go-p2pnode/internal/core/metrics"
	"github.com/dep2p/go-p2pnode/internal/core/muxer"
	"github.com/dep2p/go-p2pnode/internal/core/transport/memory"
	"github.com/dep2p/go-p2pnode/internal/core/transport/tcp"
	"github.com/dep2p/go-p2pnode/internal/core/transport/websocket"
	pkgif "github.com/dep2p/go-p2pnode/pkg/interfaces"
	"github.com/dep2p/go-p2pnode/pkg/lib/crypto"
)

// Module 节点 Fx 模块
//
// 依赖 *config.Config。可另行注入 pkgif.Transport 与 crypto.PrivateKey，
// 未注入时按配置创建。启动时在配置的地址上监听，停止时关闭监听器。
var Module = fx.Module("p2pnode",
	metrics.Module,
	fx.Provide(provideNode),
	fx.Provide(provideListeners),
	fx.Invoke(func(*Listeners) {}),
)

// NewApp 构建包含 Module 的 Fx 应用
func NewApp(cfg *config.Config, extra ...fx.Option) *fx.App {
	opts := []fx.Option{
		fx.Supply(cfg),
		Module,
		// 禁用 Fx 日志输出
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
	}
	return fx.New(append(opts, extra...)...)
}

// NewFromConfig 按配置创建节点
func NewFromConfig(cfg *config.Config, transport pkgif.Transport, identity crypto.PrivateKey, opts ...Option) (*Node, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	if transport == nil {
		t, err := NewTransport(cfg.Transport.Kind)
		if err != nil {
			return nil, err
		}
		transport = t
	}
	if identity == nil {
		key, err := cfg.Identity.LoadKey()
		if err != nil {
			return nil, fmt.Errorf("load identity: %w", err)
		}
		identity = key
	}

	base := []Option{
		WithMaxInboundNegotiations(cfg.Transport.MaxInboundNegotiations),
		WithMuxerConfig(muxer.Config{
			MaxStreamWindowSize: cfg.Muxer.MaxStreamWindowSize,
			KeepAliveInterval:   cfg.Muxer.KeepAliveInterval.Duration(),
			WriteTimeout:        cfg.Muxer.WriteTimeout.Duration(),
			MaxIncomingStreams:  cfg.Muxer.MaxIncomingStreams,
		}),
	}
	return New(transport, identity, cfg.Protocols,
		cfg.Transport.UpgradeTimeout.Duration(),
		cfg.Transport.NegotiationTimeout.Duration(),
		append(base, opts...)...), nil
}

// NewTransport 按名称创建基础传输
func NewTransport(kind string) (pkgif.Transport, error) {
	switch kind {
	case config.TransportTCP:
		return tcp.New(), nil
	case config.TransportWebSocket:
		return websocket.New(), nil
	case config.TransportMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown transport %q", kind)
	}
}

type nodeParams struct {
	fx.In

	Config    *config.Config
	Transport pkgif.Transport   `optional:"true"`
	Identity  crypto.PrivateKey `optional:"true"`
	Reporter  *metrics.Reporter `optional:"true"`
}

func provideNode(p nodeParams) (*Node, error) {
	return NewFromConfig(p.Config, p.Transport, p.Identity, WithMetrics(p.Reporter))
}

// Listeners 按配置启动的监听器
type Listeners struct {
	mu   sync.Mutex
	list []*Listener
}

// All 返回全部监听器
func (ls *Listeners) All() []*Listener {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return append([]*Listener(nil), ls.list...)
}

func (ls *Listeners) closeAll() error {
	ls.mu.Lock()
	list := ls.list
	ls.list = nil
	ls.mu.Unlock()

	var err error
	for _, l := range list {
		err = multierr.Append(err, l.Close())
	}
	return err
}

func provideListeners(lc fx.Lifecycle, cfg *config.Config, n *Node) *Listeners {
	ls := &Listeners{}
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			addrs, err := cfg.Transport.Multiaddrs()
			if err != nil {
				return err
			}
			for _, a := range addrs {
				l, err := n.ListenOn(a)
				if err != nil {
					return multierr.Append(err, ls.closeAll())
				}
				ls.mu.Lock()
				ls.list = append(ls.list, l)
				ls.mu.Unlock()
				logger.Info("开始监听", "addr", l.Multiaddr(), "peerID", n.LocalPeer())
			}
			return nil
		},
		OnStop: func(context.Context) error {
			return ls.closeAll()
		},
	})
	return ls
}
