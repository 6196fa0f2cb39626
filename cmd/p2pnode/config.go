package main

import (
	"os"
	"strings"

	"github.com/dep2p/go-p2pnode/config"
	"github.com/dep2p/go-p2pnode/examples/hello"
)

// 环境变量
const (
	envPrefix      = "P2PNODE_"
	envKeyFile     = envPrefix + "KEY_FILE"
	envKeyType     = envPrefix + "KEY_TYPE"
	envTransport   = envPrefix + "TRANSPORT"
	envListenAddrs = envPrefix + "LISTEN_ADDRS"
	envMetricsAddr = envPrefix + "METRICS_ADDR"
)

// loadConfig 按 默认值 → 配置文件 → 环境变量 → 命令行参数 的顺序合成配置
func loadConfig() (*config.Config, error) {
	cfg := config.NewConfig()
	if globalFlags.ConfigFile != "" {
		loaded, err := config.LoadFile(globalFlags.ConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	applyEnvOverrides(cfg)
	applyFlagOverrides(cfg)

	if len(cfg.Protocols) == 0 {
		cfg.Protocols = []string{hello.ProtocolID}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides 应用 P2PNODE_ 前缀的环境变量
func applyEnvOverrides(cfg *config.Config) {
	if v := os.Getenv(envKeyFile); v != "" {
		cfg.Identity.KeyFile = v
	}
	if v := os.Getenv(envKeyType); v != "" {
		cfg.Identity.KeyType = v
	}
	if v := os.Getenv(envTransport); v != "" {
		cfg.Transport.Kind = v
	}
	if v := os.Getenv(envListenAddrs); v != "" {
		cfg.Transport.ListenAddrs = splitList(v)
	}
	if v := os.Getenv(envMetricsAddr); v != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.ListenAddr = v
	}
}

func applyFlagOverrides(cfg *config.Config) {
	if globalFlags.KeyFile != "" {
		cfg.Identity.KeyFile = globalFlags.KeyFile
	}
	if globalFlags.KeyType != "" {
		cfg.Identity.KeyType = globalFlags.KeyType
	}
	if globalFlags.Transport != "" {
		cfg.Transport.Kind = globalFlags.Transport
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
