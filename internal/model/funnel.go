package model

// FunnelStep 漏斗步骤（下标即顺序，0 为入口步骤）
type FunnelStep struct {
	Name                 string   `json:"name"`
	Value                int64    `json:"value"`                        // 到达该步骤的数量
	PercentOfStart       float64  `json:"percentOfStart"`               // 相对入口步骤的百分比（派生）
	ConversionVsPrevious float64  `json:"conversionVsPrevious"`         // 相对上一步的转化率（可编辑）
	BaselineConversion   *float64 `json:"baselineConversion,omitempty"` // 初始配置的转化率，仅用于对比展示
}

// StepConfig 漏斗步骤配置
type StepConfig struct {
	Name                  string  `toml:"name" yaml:"name" json:"name"`
	BaselineConversionPct float64 `toml:"baseline_conversion_pct" yaml:"baseline_conversion_pct" json:"baselineConversionPct"`
}

// CloneSteps 深拷贝步骤列表
func CloneSteps(steps []FunnelStep) []FunnelStep {
	if steps == nil {
		return nil
	}
	out := make([]FunnelStep, len(steps))
	for i, s := range steps {
		out[i] = s
		if s.BaselineConversion != nil {
			v := *s.BaselineConversion
			out[i].BaselineConversion = &v
		}
	}
	return out
}
