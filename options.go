package p2pnode

import (
	"github.com/dep2p/go-p2pnode/internal/core/metrics"
	"github.com/dep2p/go-p2pnode/internal/core/muxer"
)

// Option 节点可选配置
type Option func(*options)

type options struct {
	reporter               *metrics.Reporter
	maxInboundNegotiations int64
	muxerConfig            muxer.Config
}

func defaultOptions() options {
	return options{
		muxerConfig: muxer.DefaultConfig(),
	}
}

// WithMetrics 上报 Prometheus 指标，nil 表示不上报
func WithMetrics(r *metrics.Reporter) Option {
	return func(o *options) {
		o.reporter = r
	}
}

// WithMaxInboundNegotiations 限制单连接上同时进行的入站协商数
//
// n <= 0 表示不限制。达到上限时暂停接受新的入站流。
func WithMaxInboundNegotiations(n int) Option {
	return func(o *options) {
		o.maxInboundNegotiations = int64(n)
	}
}

// WithMuxerConfig 设置 yamux 参数
func WithMuxerConfig(cfg muxer.Config) Option {
	return func(o *options) {
		o.muxerConfig = cfg
	}
}
