package config

// MetricsConfig 指标配置
type MetricsConfig struct {
	// Enabled 是否上报 Prometheus 指标
	Enabled bool `json:"enabled" yaml:"enabled"`

	// ListenAddr 指标 HTTP 服务地址，为空时不提供 /metrics
	ListenAddr string `json:"listen_addr" yaml:"listen_addr"`
}

// DefaultMetricsConfig 返回默认指标配置
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{}
}
