package main

import (
	"context"
	"fmt"
	"time"

	ma "github.com/multiformats/go-multiaddr"
	"github.com/spf13/cobra"

	p2pnode "github.com/dep2p/go-p2pnode"
	"github.com/dep2p/go-p2pnode/examples/hello"
)

var (
	dialName    string
	dialTimeout time.Duration
)

// dialCmd 连接远端并发送 hello
var dialCmd = &cobra.Command{
	Use:   "dial <multiaddr>",
	Short: "连接远端节点并运行 /hello/1.0.0",
	Long: `拨号到 multiaddr，末尾的 /p2p/<id> 会用于校验远端身份。

示例：
  p2pnode dial /ip4/127.0.0.1/tcp/4001/p2p/<PeerID> --name Bob`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := ma.NewMultiaddr(args[0])
		if err != nil {
			return fmt.Errorf("地址无效: %w", err)
		}
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("配置错误: %w", err)
		}
		node, err := p2pnode.NewFromConfig(cfg, nil, nil)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), dialTimeout)
		defer cancel()

		conn, err := node.Connect(ctx, addr)
		if err != nil {
			return fmt.Errorf("连接失败: %w", err)
		}
		defer conn.Control.CloseConnection()
		logger.Info("已连接", "conn", conn.ID, "peer", conn.PeerID.ShortString())

		s, err := conn.Control.OpenSubstream(ctx, hello.ProtocolID)
		if err != nil {
			return fmt.Errorf("打开子流失败: %w", err)
		}
		defer s.Close()

		greeting, err := hello.Greet(s, dialName)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), greeting)
		return nil
	},
}

func init() {
	dialCmd.Flags().StringVar(&dialName, "name", "Bob", "发送的名字")
	dialCmd.Flags().DurationVar(&dialTimeout, "timeout", 30*time.Second, "整体超时")
}
