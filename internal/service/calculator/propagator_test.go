package calculator

import (
	"errors"
	"math"
	"testing"

	"github.com/asaramis/scenario-planning-app/internal/model"
)

// expectedNext 以整数运算独立计算 round(prev * pct / 100)，pct 为两位小数
func expectedNext(prev int64, pct float64) int64 {
	c := int64(math.Round(pct * 100))
	return (prev*c + 5000) / 10000
}

func assertChainConsistent(t *testing.T, steps []model.FunnelStep) {
	t.Helper()
	if steps[0].PercentOfStart != 100 || steps[0].ConversionVsPrevious != 100 {
		t.Fatalf("entry step = %+v, want 100/100", steps[0])
	}
	start := steps[0].Value
	for i := 1; i < len(steps); i++ {
		want := expectedNext(steps[i-1].Value, steps[i].ConversionVsPrevious)
		if steps[i].Value != want {
			t.Fatalf("step %d value = %d, want %d", i, steps[i].Value, want)
		}
		if start > 0 {
			pct := float64(steps[i].Value) / float64(start) * 100
			if !floatEquals(steps[i].PercentOfStart, pct) {
				t.Fatalf("step %d percentOfStart = %v, want %v", i, steps[i].PercentOfStart, pct)
			}
		}
	}
}

// TestPropagateBaseline 基准数据应复现原始表格
func TestPropagateBaseline(t *testing.T) {
	steps := baselineSteps(t)

	want := []int64{69825, 33390, 29310, 12864, 10100, 3897, 1758, 412}
	if got := values(steps); !equalValues(got, want) {
		t.Fatalf("values = %v, want %v", got, want)
	}
	assertChainConsistent(t, steps)

	if got := math.Round(steps[7].PercentOfStart*100) / 100; got != 0.59 {
		t.Errorf("Orders percentOfStart = %v, want 0.59", got)
	}
	if got := math.Round(steps[3].PercentOfStart*100) / 100; got != 18.42 {
		t.Errorf("Customize band percentOfStart = %v, want 18.42", got)
	}
}

// TestPropagateRoundHalfUp 每一步 0.5 向上取整
func TestPropagateRoundHalfUp(t *testing.T) {
	steps, err := Initialize([]model.StepConfig{
		{Name: "a"},
		{Name: "b", BaselineConversionPct: 50},
		{Name: "c", BaselineConversionPct: 50},
	})
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	tests := []struct {
		start int64
		want  []int64
	}{
		{1, []int64{1, 1, 1}},
		{3, []int64{3, 2, 1}},
		{5, []int64{5, 3, 2}},
		{10, []int64{10, 5, 3}},
	}
	for _, tt := range tests {
		got := values(Propagate(tt.start, steps))
		if !equalValues(got, tt.want) {
			t.Errorf("Propagate(%d) = %v, want %v", tt.start, got, tt.want)
		}
	}
}

// TestPropagateZeroStart 入口为 0 时全部为 0，占比不除零
func TestPropagateZeroStart(t *testing.T) {
	steps := Propagate(0, baselineSteps(t))
	for i, s := range steps {
		if s.Value != 0 {
			t.Fatalf("step %d value = %d, want 0", i, s.Value)
		}
		if math.IsNaN(s.PercentOfStart) || math.IsInf(s.PercentOfStart, 0) {
			t.Fatalf("step %d percentOfStart = %v", i, s.PercentOfStart)
		}
	}
	if steps[0].PercentOfStart != 100 {
		t.Errorf("entry percentOfStart = %v, want 100", steps[0].PercentOfStart)
	}
	if steps[1].PercentOfStart != 0 {
		t.Errorf("step 1 percentOfStart = %v, want 0", steps[1].PercentOfStart)
	}
}

// TestPropagateOverflow 超出 int64 的数量截断为最大值，带校验的传播报错
func TestPropagateOverflow(t *testing.T) {
	steps := []model.FunnelStep{
		{Name: "Visit"},
		{Name: "Signup", ConversionVsPrevious: 300},
		{Name: "Orders", ConversionVsPrevious: 50},
	}

	out := Propagate(math.MaxInt64/2, steps)
	if out[1].Value != math.MaxInt64 {
		t.Fatalf("step 1 value = %d, want MaxInt64", out[1].Value)
	}

	if _, err := propagate(math.MaxInt64/2, steps); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("err = %v, want ErrInvalidValue", err)
	}
	if _, err := propagate(1000, steps); err != nil {
		t.Fatalf("propagate(1000): %v", err)
	}
}

// TestPropagateDoesNotMutateInput 传播返回新列表
func TestPropagateDoesNotMutateInput(t *testing.T) {
	in := baselineSteps(t)
	before := model.CloneSteps(in)

	out := Propagate(1000, in)
	out[3].ConversionVsPrevious = 1
	*out[3].BaselineConversion = 1

	for i := range in {
		if in[i].Value != before[i].Value || in[i].ConversionVsPrevious != before[i].ConversionVsPrevious {
			t.Fatalf("input step %d mutated: %+v", i, in[i])
		}
		if *in[i].BaselineConversion != *before[i].BaselineConversion {
			t.Fatalf("input step %d baseline mutated", i)
		}
	}
}

// TestTotalRevenue 测试收入计算
func TestTotalRevenue(t *testing.T) {
	steps := baselineSteps(t)
	if got := TotalRevenue(steps, 55); got != 22660 {
		t.Errorf("TotalRevenue = %v, want 22660", got)
	}
	if got := TotalRevenue(nil, 55); got != 0 {
		t.Errorf("TotalRevenue(nil) = %v, want 0", got)
	}
}
