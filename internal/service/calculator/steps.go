package calculator

import (
	"fmt"
	"math"
	"strings"

	"github.com/asaramis/scenario-planning-app/internal/model"
)

// Initialize 按配置初始化步骤列表
// 入口步骤转化率与占比固定为 100，Value 由首次传播填充
func Initialize(cfg []model.StepConfig) ([]model.FunnelStep, error) {
	if len(cfg) == 0 {
		return nil, fmt.Errorf("%w: no steps configured", ErrInvalidConfig)
	}

	seen := make(map[string]struct{}, len(cfg))
	steps := make([]model.FunnelStep, len(cfg))
	for i, c := range cfg {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: step %d has no name", ErrInvalidConfig, i+1)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: duplicate step %q", ErrInvalidConfig, name)
		}
		seen[name] = struct{}{}

		pct := 100.0
		if i > 0 {
			pct = c.BaselineConversionPct
			if !validPercent(pct) {
				return nil, fmt.Errorf("%w: step %q has conversion %v", ErrInvalidConfig, name, pct)
			}
		}
		baseline := pct
		steps[i] = model.FunnelStep{
			Name:                 name,
			ConversionVsPrevious: pct,
			BaselineConversion:   &baseline,
		}
	}
	steps[0].PercentOfStart = 100

	return steps, nil
}

// Find 按名称查找步骤下标
func Find(steps []model.FunnelStep, name string) (int, error) {
	name = strings.TrimSpace(name)
	for i := range steps {
		if steps[i].Name == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrNotFound, name)
}

func validPercent(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
