package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/fx"

	p2pnode "github.com/dep2p/go-p2pnode"
	"github.com/dep2p/go-p2pnode/config"
	"github.com/dep2p/go-p2pnode/examples/hello"
)

// listenCmd 监听并响应 hello 协议
var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "监听入站连接并应答 /hello/1.0.0",
	Long: `按配置监听，对每个入站子流运行 hello 协议，按 Ctrl+C 退出。

示例：
  p2pnode listen --key-file node.key
  P2PNODE_LISTEN_ADDRS=/ip4/0.0.0.0/tcp/4001/ws p2pnode listen --transport websocket`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("配置错误: %w", err)
		}

		app := p2pnode.NewApp(cfg,
			fx.Invoke(registerHelloServer),
			fx.Invoke(registerMetricsServer),
		)
		if err := app.Err(); err != nil {
			return err
		}

		startCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := app.Start(startCtx); err != nil {
			return fmt.Errorf("启动失败: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), "节点已启动，按 Ctrl+C 退出")
		waitForSignal()

		stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return app.Stop(stopCtx)
	},
}

// registerHelloServer 在每个监听器上接受连接并应答 hello
func registerHelloServer(lc fx.Lifecycle, node *p2pnode.Node, ls *p2pnode.Listeners) {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			for _, l := range ls.All() {
				fmt.Printf("  %s/p2p/%s\n", l.Multiaddr(), node.LocalPeer())
				go acceptConnections(ctx, l)
			}
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}

func acceptConnections(ctx context.Context, l *p2pnode.Listener) {
	for {
		conn, err := l.Next(ctx)
		switch {
		case err == nil:
			logger.Info("新连接", "conn", conn.ID, "peer", conn.PeerID.ShortString())
			go serveConnection(ctx, conn)
		case errors.Is(err, p2pnode.ErrListenerClosed), ctx.Err() != nil:
			return
		default:
			logger.Warn("入站连接失败", "error", err)
		}
	}
}

func serveConnection(ctx context.Context, conn *p2pnode.Connection) {
	defer conn.Control.CloseConnection()
	for {
		sub, err := conn.Inbound.Next(ctx)
		if err != nil {
			if p2pnode.IsConnectionFatal(err) || ctx.Err() != nil {
				logger.Debug("连接结束", "conn", conn.ID, "error", err)
				return
			}
			logger.Warn("入站子流失败", "conn", conn.ID, "error", err)
			continue
		}
		go func() {
			defer sub.Substream.Close()
			name, err := hello.Serve(sub.Substream)
			if err != nil && !errors.Is(err, io.EOF) {
				logger.Warn("hello 失败", "conn", conn.ID, "error", err)
				return
			}
			logger.Info("已问候", "conn", conn.ID, "name", name)
		}()
	}
}

// registerMetricsServer 配置了 metrics.listen_addr 时提供 /metrics
func registerMetricsServer(lc fx.Lifecycle, cfg *config.Config) {
	if !cfg.Metrics.Enabled || cfg.Metrics.ListenAddr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: cfg.Metrics.ListenAddr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("指标服务退出", "error", err)
				}
			}()
			logger.Info("指标服务已启动", "addr", ln.Addr())
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

func waitForSignal() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
}
