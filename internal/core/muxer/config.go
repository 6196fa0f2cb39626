package muxer

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/libp2p/go-yamux/v5"

	"github.com/dep2p/go-p2pnode/pkg/protocolids"
)

// ID yamux 多路复用协议标识
const ID = protocolids.Yamux

// Config 多路复用器配置
type Config struct {
	MaxStreamWindowSize uint32        // 最大流窗口大小
	KeepAliveInterval   time.Duration // 心跳间隔，0 表示关闭心跳
	WriteTimeout        time.Duration // 会话写超时
	MaxIncomingStreams  uint32        // 单连接最大入站流数，0 表示不限制
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		MaxStreamWindowSize: 16 * 1024 * 1024, // 100ms 延迟下约 160MB/s
		KeepAliveInterval:   30 * time.Second,
		WriteTimeout:        10 * time.Second,
	}
}

// yamuxConfig 转换为 yamux 配置
func (c Config) yamuxConfig() (*yamux.Config, error) {
	cfg := yamux.DefaultConfig()
	if c.MaxStreamWindowSize > 0 {
		cfg.MaxStreamWindowSize = c.MaxStreamWindowSize
	}
	if c.KeepAliveInterval > 0 {
		cfg.EnableKeepAlive = true
		cfg.KeepAliveInterval = c.KeepAliveInterval
	} else {
		cfg.EnableKeepAlive = false
	}
	if c.WriteTimeout > 0 {
		cfg.ConnectionWriteTimeout = c.WriteTimeout
	}
	cfg.MaxIncomingStreams = math.MaxUint32
	if c.MaxIncomingStreams > 0 {
		cfg.MaxIncomingStreams = c.MaxIncomingStreams
	}
	cfg.LogOutput = io.Discard
	// 安全层已有缓冲
	cfg.ReadBufSize = 0

	if err := yamux.VerifyConfig(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return cfg, nil
}
