package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-p2pnode/config"
)

// Params 指标模块依赖
type Params struct {
	fx.In

	Config     *config.Config        `optional:"true"`
	Registerer prometheus.Registerer `optional:"true"`
}

// Result 指标模块输出
type Result struct {
	fx.Out

	// Reporter 未启用指标时为 nil
	Reporter *Reporter
}

// ProvideReporter 按配置创建上报器
//
// 未注入 Registerer 时注册到 prometheus.DefaultRegisterer。
func ProvideReporter(p Params) (Result, error) {
	if p.Config != nil && !p.Config.Metrics.Enabled {
		return Result{}, nil
	}
	reg := p.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	r, err := NewReporter(reg)
	if err != nil {
		return Result{}, err
	}
	return Result{Reporter: r}, nil
}

// Module 指标 Fx 模块
var Module = fx.Module("metrics",
	fx.Provide(ProvideReporter),
)
