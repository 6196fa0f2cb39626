// Package main 提供 p2pnode 命令行入口
//
//	p2pnode keygen --key-file node.key
//	p2pnode listen --config node.yaml
//	p2pnode dial /ip4/127.0.0.1/tcp/4001/p2p/<id> --name Bob
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dep2p/go-p2pnode/pkg/lib/log"
)

var logger = log.Logger("cmd/p2pnode")

// GlobalFlags 全局标志
type GlobalFlags struct {
	ConfigFile string // 配置文件（.json / .yaml）
	KeyFile    string // 身份密钥文件
	KeyType    string // 生成密钥时使用的类型
	Transport  string // 基础传输
	LogLevel   string // 日志级别
}

var globalFlags GlobalFlags

// rootCmd 根命令
var rootCmd = &cobra.Command{
	Use:   "p2pnode",
	Short: "认证加密多路复用连接的命令行工具",
	Long: `p2pnode 在 TCP / WebSocket 之上建立 Noise 加密、yamux 多路复用的连接，
并在子流上运行 /hello/1.0.0 示例协议。

配置优先级（从高到低）：
  1. 命令行参数
  2. 环境变量（P2PNODE_ 前缀）
  3. 配置文件
  4. 默认值`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if globalFlags.LogLevel != "" {
			level, err := log.ParseLevel(globalFlags.LogLevel)
			if err != nil {
				return err
			}
			log.SetLevel(level)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&globalFlags.ConfigFile, "config", "c", "", "配置文件路径 (.json/.yaml)")
	rootCmd.PersistentFlags().StringVar(&globalFlags.KeyFile, "key-file", "", "身份密钥文件 (为空时使用临时密钥)")
	rootCmd.PersistentFlags().StringVar(&globalFlags.KeyType, "key-type", "", "密钥类型: ed25519|secp256k1")
	rootCmd.PersistentFlags().StringVar(&globalFlags.Transport, "transport", "", "基础传输: tcp|websocket")
	rootCmd.PersistentFlags().StringVar(&globalFlags.LogLevel, "log-level", "", "日志级别: debug|info|warn|error")

	rootCmd.AddCommand(keygenCmd)
	rootCmd.AddCommand(listenCmd)
	rootCmd.AddCommand(dialCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}
