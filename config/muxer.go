package config

import (
	"errors"
	"time"
)

// MuxerConfig yamux 参数
type MuxerConfig struct {
	// MaxStreamWindowSize 单流最大接收窗口（字节）
	MaxStreamWindowSize uint32 `json:"max_stream_window_size" yaml:"max_stream_window_size"`

	// KeepAliveInterval 心跳间隔，0 表示关闭
	KeepAliveInterval Duration `json:"keep_alive_interval" yaml:"keep_alive_interval"`

	// WriteTimeout 会话写超时
	WriteTimeout Duration `json:"write_timeout" yaml:"write_timeout"`

	// MaxIncomingStreams 单连接最大入站流数，0 表示不限制
	MaxIncomingStreams uint32 `json:"max_incoming_streams" yaml:"max_incoming_streams"`
}

// DefaultMuxerConfig 返回默认 yamux 参数
func DefaultMuxerConfig() MuxerConfig {
	return MuxerConfig{
		MaxStreamWindowSize: 16 * 1024 * 1024,
		KeepAliveInterval:   Duration(30 * time.Second),
		WriteTimeout:        Duration(10 * time.Second),
	}
}

// Validate 验证 yamux 参数
func (c MuxerConfig) Validate() error {
	// yamux 初始窗口为 256KiB，更小的上限会被拒绝
	if c.MaxStreamWindowSize != 0 && c.MaxStreamWindowSize < 256*1024 {
		return errors.New("muxer: max_stream_window_size must be at least 256KiB")
	}
	if c.KeepAliveInterval < 0 || c.WriteTimeout < 0 {
		return errors.New("muxer: durations must not be negative")
	}
	return nil
}
