package planner

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/asaramis/scenario-planning-app/internal/model"
	"github.com/asaramis/scenario-planning-app/internal/service/calculator"
	"github.com/asaramis/scenario-planning-app/internal/service/store"
)

// 未配置基准入口时先用该值传播，再按收入目标回算
const provisionalStart = 1_000_000

// Options 规划器配置
type Options struct {
	Steps         []model.StepConfig
	BaselineStart int64
	RevenueTarget float64
	PricePerUnit  float64
	NoOpTolerance float64
}

// Planner 处理展示层的输入事件：修改场景状态后调用求解器重算。
// 求解失败时场景保持原样。
type Planner struct {
	store  *store.MemoryStore
	solver *calculator.Solver
	log    logrus.FieldLogger

	baseline      []model.FunnelStep
	revenueTarget float64

	mu sync.Mutex
}

// New 创建规划器并计算基准漏斗
func New(st *store.MemoryStore, opts Options, log logrus.FieldLogger) (*Planner, error) {
	steps, err := calculator.Initialize(opts.Steps)
	if err != nil {
		return nil, err
	}

	solver := calculator.NewSolver(calculator.Options{
		PricePerUnit:  opts.PricePerUnit,
		NoOpTolerance: opts.NoOpTolerance,
	})

	var baseline []model.FunnelStep
	if opts.BaselineStart > 0 {
		baseline = calculator.Propagate(opts.BaselineStart, steps)
	} else {
		baseline, err = solver.SolveFromRevenueTarget(opts.RevenueTarget, calculator.Propagate(provisionalStart, steps))
		if err != nil {
			return nil, fmt.Errorf("solve baseline: %w", err)
		}
	}

	return &Planner{
		store:         st,
		solver:        solver,
		log:           log,
		baseline:      baseline,
		revenueTarget: opts.RevenueTarget,
	}, nil
}

// PricePerUnit 单价
func (p *Planner) PricePerUnit() float64 {
	return p.solver.PricePerUnit()
}

// Baseline 基准漏斗（副本）
func (p *Planner) Baseline() []model.FunnelStep {
	return model.CloneSteps(p.baseline)
}

// Create 以基准漏斗新建场景
func (p *Planner) Create() *model.ScenarioView {
	sc := p.store.Create(&model.Scenario{
		Steps:         model.CloneSteps(p.baseline),
		RevenueTarget: p.revenueTarget,
	})
	p.log.WithField("scenario", sc.ID).Info("scenario created")
	return p.View(sc)
}

// Get 获取场景
func (p *Planner) Get(id string) (*model.ScenarioView, error) {
	sc, err := p.store.Get(id)
	if err != nil {
		return nil, err
	}
	return p.View(sc), nil
}

// List 列出所有场景
func (p *Planner) List() []*model.ScenarioView {
	items := p.store.List()
	out := make([]*model.ScenarioView, 0, len(items))
	for _, sc := range items {
		out = append(out, p.View(sc))
	}
	return out
}

// Count 场景数量
func (p *Planner) Count() int {
	return p.store.Count()
}

// Delete 删除场景
func (p *Planner) Delete(id string) error {
	return p.store.Delete(id)
}

// SetRevenueTarget 设置收入目标（不触发重算）
func (p *Planner) SetRevenueTarget(id string, target float64) (*model.ScenarioView, error) {
	if math.IsNaN(target) || math.IsInf(target, 0) || target > calculator.MaxRevenueTarget {
		return nil, fmt.Errorf("%w: revenue target %v", calculator.ErrInvalidValue, target)
	}
	return p.update(id, func(sc *model.Scenario) error {
		sc.RevenueTarget = target
		return nil
	})
}

// SelectStep 选择待修改的步骤，查找推迟到应用修改时
func (p *Planner) SelectStep(id, name string) (*model.ScenarioView, error) {
	return p.update(id, func(sc *model.Scenario) error {
		sc.SelectedStep = strings.TrimSpace(name)
		return nil
	})
}

// SetNewConversionPct 记录新转化率的原始输入，解析推迟到应用修改时
func (p *Planner) SetNewConversionPct(id, raw string) (*model.ScenarioView, error) {
	return p.update(id, func(sc *model.Scenario) error {
		sc.PendingConversion = strings.TrimSpace(raw)
		return nil
	})
}

// Solve 按当前收入目标回算整条漏斗
func (p *Planner) Solve(id string) (*model.ScenarioView, error) {
	return p.update(id, func(sc *model.Scenario) error {
		steps, err := p.solver.SolveFromRevenueTarget(sc.RevenueTarget, sc.Steps)
		if err != nil {
			return err
		}
		sc.Steps = steps
		p.log.WithFields(logrus.Fields{
			"scenario": sc.ID,
			"target":   sc.RevenueTarget,
			"start":    steps[0].Value,
		}).Info("scenario solved")
		return nil
	})
}

// ApplyStepEdit 应用已选步骤的新转化率，收入目标随后跟随重新对齐后的收入
func (p *Planner) ApplyStepEdit(id string) (*model.ScenarioView, error) {
	return p.update(id, func(sc *model.Scenario) error {
		if sc.SelectedStep == "" {
			return fmt.Errorf("%w: no step selected", calculator.ErrNotFound)
		}
		pct, err := ParsePercent(sc.PendingConversion)
		if err != nil {
			return err
		}
		steps, err := p.solver.ApplyStepEdit(sc.SelectedStep, pct, sc.RevenueTarget, sc.Steps)
		if err != nil {
			return err
		}
		sc.Steps = steps
		sc.RevenueTarget = calculator.TotalRevenue(steps, p.solver.PricePerUnit())
		p.log.WithFields(logrus.Fields{
			"scenario":   sc.ID,
			"step":       sc.SelectedStep,
			"conversion": pct,
			"start":      steps[0].Value,
			"revenue":    sc.RevenueTarget,
		}).Info("step edit applied")
		return nil
	})
}

// Reset 恢复到基准漏斗与默认收入目标
func (p *Planner) Reset(id string) (*model.ScenarioView, error) {
	return p.update(id, func(sc *model.Scenario) error {
		sc.Steps = model.CloneSteps(p.baseline)
		sc.RevenueTarget = p.revenueTarget
		sc.SelectedStep = ""
		sc.PendingConversion = ""
		return nil
	})
}

// View 组装展示数据
func (p *Planner) View(sc *model.Scenario) *model.ScenarioView {
	price := p.solver.PricePerUnit()
	return &model.ScenarioView{
		ID:                sc.ID,
		Steps:             model.CloneSteps(sc.Steps),
		RevenueTarget:     sc.RevenueTarget,
		TotalRevenue:      calculator.TotalRevenue(sc.Steps, price),
		PricePerUnit:      price,
		SelectedStep:      sc.SelectedStep,
		PendingConversion: sc.PendingConversion,
		UpdatedAt:         sc.UpdatedAt,
	}
}

// update 读取场景副本、执行修改、整体写回；fn 返回错误时不写回
func (p *Planner) update(id string, fn func(sc *model.Scenario) error) (*model.ScenarioView, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	sc, err := p.store.Get(id)
	if err != nil {
		return nil, err
	}
	if err := fn(sc); err != nil {
		p.log.WithFields(logrus.Fields{
			"scenario": id,
			"kind":     calculator.KindOf(err),
		}).Debugf("update rejected: %v", err)
		return nil, err
	}

	saved, err := p.store.Put(sc)
	if err != nil {
		return nil, err
	}
	return p.View(saved), nil
}

// ParsePercent 解析百分比输入，允许首尾空格与末尾的 %
func ParsePercent(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	if s == "" {
		return 0, fmt.Errorf("%w: empty percentage", calculator.ErrInvalidValue)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q is not a number", calculator.ErrInvalidValue, raw)
	}
	return v, nil
}
