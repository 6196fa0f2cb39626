package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dep2p/go-p2pnode/pkg/types"
)

const namespace = "p2pnode"

// 结果标签取值
const (
	ResultSuccess     = "success"
	ResultTimeout     = "timeout"
	ResultFailed      = "failed"
	ResultMultiplexer = "multiplexer"
)

// 字节方向标签取值
const (
	BytesIn  = "in"
	BytesOut = "out"
)

// Reporter Prometheus 指标上报器
type Reporter struct {
	upgrades       *prometheus.CounterVec
	upgradeSeconds *prometheus.HistogramVec
	negotiations   *prometheus.CounterVec
	streamBytes    *prometheus.CounterVec
	activeConns    prometheus.Gauge
}

// NewReporter 创建上报器并注册到 reg
//
// reg 为 nil 时使用独立的新注册表。
func NewReporter(reg prometheus.Registerer) (*Reporter, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	r := &Reporter{
		upgrades: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upgrades_total",
			Help:      "Connection upgrade attempts by direction and result.",
		}, []string{"direction", "result"}),
		upgradeSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upgrade_duration_seconds",
			Help:      "Time spent upgrading a raw connection.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}, []string{"direction"}),
		negotiations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "substream_negotiations_total",
			Help:      "Substream protocol negotiations by direction and result.",
		}, []string{"direction", "result"}),
		streamBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "substream_bytes_total",
			Help:      "Bytes transferred over negotiated substreams.",
		}, []string{"direction", "protocol"}),
		activeConns: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections_active",
			Help:      "Currently open upgraded connections.",
		}),
	}

	for _, c := range []prometheus.Collector{
		r.upgrades, r.upgradeSeconds, r.negotiations, r.streamBytes, r.activeConns,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// UpgradeDone 记录一次升级结果
func (r *Reporter) UpgradeDone(dir types.Direction, result string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.upgrades.WithLabelValues(dir.String(), result).Inc()
	r.upgradeSeconds.WithLabelValues(dir.String()).Observe(elapsed.Seconds())
}

// NegotiationDone 记录一次子流协商结果
func (r *Reporter) NegotiationDone(dir types.Direction, result string) {
	if r == nil {
		return
	}
	r.negotiations.WithLabelValues(dir.String(), result).Inc()
}

// LogRecvStream 记录子流接收字节
func (r *Reporter) LogRecvStream(n int, proto types.ProtocolID) {
	if r == nil || n <= 0 {
		return
	}
	r.streamBytes.WithLabelValues(BytesIn, proto).Add(float64(n))
}

// LogSentStream 记录子流发送字节
func (r *Reporter) LogSentStream(n int, proto types.ProtocolID) {
	if r == nil || n <= 0 {
		return
	}
	r.streamBytes.WithLabelValues(BytesOut, proto).Add(float64(n))
}

// ConnOpened 活跃连接数加一
func (r *Reporter) ConnOpened() {
	if r == nil {
		return
	}
	r.activeConns.Inc()
}

// ConnClosed 活跃连接数减一
func (r *Reporter) ConnClosed() {
	if r == nil {
		return
	}
	r.activeConns.Dec()
}
