package calculator

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/asaramis/scenario-planning-app/internal/model"
)

var (
	hundred  = decimal.NewFromInt(100)
	maxValue = decimal.NewFromInt(math.MaxInt64)
)

// Propagate 以 start 为入口数量，按各步骤存储的转化率自前向后重算 Value 与 PercentOfStart。
// 每一步先四舍五入取整，再作为下一步的基数，舍入误差逐级累积。
// 返回新列表，不修改入参；超出 int64 的数量截断为 math.MaxInt64。
func Propagate(start int64, steps []model.FunnelStep) []model.FunnelStep {
	out, _ := propagate(start, steps)
	return out
}

// propagate 同 Propagate，数量溢出时返回 ErrInvalidValue
func propagate(start int64, steps []model.FunnelStep) ([]model.FunnelStep, error) {
	out := model.CloneSteps(steps)
	if len(out) == 0 {
		return out, nil
	}
	if start < 0 {
		start = 0
	}

	out[0].Value = start
	out[0].PercentOfStart = 100
	out[0].ConversionVsPrevious = 100

	var firstErr error
	for i := 1; i < len(out); i++ {
		v, err := chainValue(out[i-1].Value, out[i].ConversionVsPrevious)
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("step %q: %w", out[i].Name, err)
		}
		out[i].Value = v
		out[i].PercentOfStart = percentOf(out[i].Value, start)
	}

	return out, firstErr
}

// chainValue round(prev * pct / 100)，0.5 向上
func chainValue(prev int64, conversionPct float64) (int64, error) {
	if !validPercent(conversionPct) {
		return 0, nil
	}
	v := decimal.NewFromInt(prev).
		Mul(decimal.NewFromFloat(conversionPct)).
		Div(hundred).
		Round(0)
	if v.IsNegative() {
		return 0, nil
	}
	if v.GreaterThan(maxValue) {
		return math.MaxInt64, fmt.Errorf("%w: value %s out of range", ErrInvalidValue, v.String())
	}
	return v.IntPart(), nil
}

// toStart 将回算得到的入口数量转为 int64；为 0 时整条漏斗为空，视为无效
func toStart(d decimal.Decimal) (int64, error) {
	if d.Sign() <= 0 {
		return 0, fmt.Errorf("%w: start value %s rounds to zero", ErrInvalidValue, d.String())
	}
	if d.GreaterThan(maxValue) {
		return 0, fmt.Errorf("%w: start value %s out of range", ErrInvalidValue, d.String())
	}
	return d.IntPart(), nil
}

func percentOf(value, start int64) float64 {
	if start == 0 {
		return 0
	}
	return float64(value) / float64(start) * 100
}

// TotalRevenue 末步数量 × 单价
func TotalRevenue(steps []model.FunnelStep, pricePerUnit float64) float64 {
	if len(steps) == 0 || math.IsNaN(pricePerUnit) || math.IsInf(pricePerUnit, 0) {
		return 0
	}
	last := steps[len(steps)-1]
	return decimal.NewFromInt(last.Value).Mul(decimal.NewFromFloat(pricePerUnit)).InexactFloat64()
}
