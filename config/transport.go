package config

import (
	"errors"
	"fmt"
	"time"

	ma "github.com/multiformats/go-multiaddr"
)

// 传输类型
const (
	TransportTCP       = "tcp"
	TransportWebSocket = "websocket"
	TransportMemory    = "memory"
)

// TransportConfig 传输与超时配置
type TransportConfig struct {
	// Kind 基础传输类型：tcp / websocket / memory
	Kind string `json:"kind" yaml:"kind"`

	// ListenAddrs 启动时监听的 multiaddr
	ListenAddrs []string `json:"listen_addrs" yaml:"listen_addrs"`

	// UpgradeTimeout 单次拨号或入站连接完成升级的时限
	UpgradeTimeout Duration `json:"upgrade_timeout" yaml:"upgrade_timeout"`

	// NegotiationTimeout 单条子流完成协议协商的时限
	NegotiationTimeout Duration `json:"negotiation_timeout" yaml:"negotiation_timeout"`

	// MaxInboundNegotiations 单连接并发入站协商上限，0 表示不限制
	MaxInboundNegotiations int `json:"max_inbound_negotiations" yaml:"max_inbound_negotiations"`
}

// DefaultTransportConfig 返回默认传输配置
func DefaultTransportConfig() TransportConfig {
	return TransportConfig{
		Kind:               TransportTCP,
		ListenAddrs:        []string{"/ip4/0.0.0.0/tcp/0"},
		UpgradeTimeout:     Duration(20 * time.Second),
		NegotiationTimeout: Duration(10 * time.Second),
	}
}

// Validate 验证传输配置
func (c TransportConfig) Validate() error {
	switch c.Kind {
	case TransportTCP, TransportWebSocket, TransportMemory:
	default:
		return fmt.Errorf("transport: unknown kind %q", c.Kind)
	}
	if c.UpgradeTimeout <= 0 {
		return errors.New("transport: upgrade_timeout must be positive")
	}
	if c.NegotiationTimeout <= 0 {
		return errors.New("transport: negotiation_timeout must be positive")
	}
	if c.MaxInboundNegotiations < 0 {
		return errors.New("transport: max_inbound_negotiations must not be negative")
	}
	for _, s := range c.ListenAddrs {
		if _, err := ma.NewMultiaddr(s); err != nil {
			return fmt.Errorf("transport: listen addr %q: %w", s, err)
		}
	}
	return nil
}

// Multiaddrs 解析监听地址
func (c TransportConfig) Multiaddrs() ([]ma.Multiaddr, error) {
	addrs := make([]ma.Multiaddr, 0, len(c.ListenAddrs))
	for _, s := range c.ListenAddrs {
		a, err := ma.NewMultiaddr(s)
		if err != nil {
			return nil, err
		}
		addrs = append(addrs, a)
	}
	return addrs, nil
}
