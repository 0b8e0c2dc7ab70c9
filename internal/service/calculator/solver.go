package calculator

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/asaramis/scenario-planning-app/internal/model"
)

const (
	// DefaultPricePerUnit 每单收入
	DefaultPricePerUnit = 55.0
	// DefaultNoOpTolerance 新旧转化率之差小于该值时视为未修改
	DefaultNoOpTolerance = 0.01
	// MaxRevenueTarget 收入目标上限
	MaxRevenueTarget = 1e15
)

// Options 求解器配置
type Options struct {
	PricePerUnit  float64
	NoOpTolerance float64
}

// Solver 场景求解器，只持有配置，不保留任何步骤状态
type Solver struct {
	pricePerUnit float64
	tolerance    float64
}

// NewSolver 创建求解器
func NewSolver(opts Options) *Solver {
	tolerance := opts.NoOpTolerance
	// 阈值为 0 时无变化判定永远不成立，同样回退默认值
	if math.IsNaN(tolerance) || math.IsInf(tolerance, 0) || tolerance <= 0 {
		tolerance = DefaultNoOpTolerance
	}
	return &Solver{
		pricePerUnit: opts.PricePerUnit,
		tolerance:    tolerance,
	}
}

// PricePerUnit 返回单价
func (s *Solver) PricePerUnit() float64 {
	return s.pricePerUnit
}

// NoOpTolerance 返回无变化判定阈值
func (s *Solver) NoOpTolerance() float64 {
	return s.tolerance
}

// SolveFromRevenueTarget 根据收入目标回算入口数量，再前向传播整条漏斗
func (s *Solver) SolveFromRevenueTarget(revenueTarget float64, steps []model.FunnelStep) ([]model.FunnelStep, error) {
	if len(steps) == 0 {
		return nil, fmt.Errorf("%w: empty funnel", ErrInvalidConfig)
	}
	if err := checkRevenueTarget(revenueTarget); err != nil {
		return nil, err
	}
	price, err := s.price()
	if err != nil {
		return nil, err
	}

	orders := decimal.NewFromFloat(revenueTarget).Div(price).Ceil()

	start := orders
	if len(steps) > 1 {
		first := steps[0]
		last := steps[len(steps)-1]
		if first.Value == 0 || last.Value == 0 {
			return nil, fmt.Errorf("%w: terminal step %q is 0%% of start", ErrDivisionByZero, last.Name)
		}
		// PercentOfStart = last/first*100，orders / (PercentOfStart/100) 即 orders*first/last，整数求值保证向上取整精确
		q, r := orders.Mul(decimal.NewFromInt(first.Value)).QuoRem(decimal.NewFromInt(last.Value), 0)
		if r.Sign() > 0 {
			q = q.Add(decimal.NewFromInt(1))
		}
		start = q
	}

	n, err := toStart(start)
	if err != nil {
		return nil, err
	}
	return propagateChecked(n, steps)
}

// ApplyStepEdit 修改单个步骤的转化率，并按原收入目标等比缩放入口数量
func (s *Solver) ApplyStepEdit(name string, newConversionPct, revenueTarget float64, steps []model.FunnelStep) ([]model.FunnelStep, error) {
	idx, err := Find(steps, name)
	if err != nil {
		return nil, err
	}
	if idx == 0 {
		return nil, fmt.Errorf("%w: %q is the entry step", ErrInvalidEdit, steps[0].Name)
	}
	if !validPercent(newConversionPct) {
		return nil, fmt.Errorf("%w: conversion %v", ErrInvalidValue, newConversionPct)
	}
	if math.Abs(steps[idx].ConversionVsPrevious-newConversionPct) < s.tolerance {
		return nil, fmt.Errorf("%w: %q already at %.2f%%", ErrNoOpChange, steps[idx].Name, steps[idx].ConversionVsPrevious)
	}
	if err := checkRevenueTarget(revenueTarget); err != nil {
		return nil, err
	}
	price, err := s.price()
	if err != nil {
		return nil, err
	}

	edited := model.CloneSteps(steps)
	edited[idx].ConversionVsPrevious = newConversionPct

	start := steps[0].Value
	interim, err := propagateChecked(start, edited)
	if err != nil {
		return nil, err
	}
	interimRevenue := decimal.NewFromInt(interim[len(interim)-1].Value).Mul(price)
	if interimRevenue.IsZero() {
		return nil, fmt.Errorf("%w: edited chain yields no revenue", ErrDivisionByZero)
	}

	// newStart = round(start * revenueTarget / interimRevenue)
	newStart := decimal.NewFromInt(start).
		Mul(decimal.NewFromFloat(revenueTarget)).
		Div(interimRevenue).
		Round(0)

	n, err := toStart(newStart)
	if err != nil {
		return nil, err
	}
	return propagateChecked(n, edited)
}

// propagateChecked 传播失败时不返回部分结果
func propagateChecked(start int64, steps []model.FunnelStep) ([]model.FunnelStep, error) {
	out, err := propagate(start, steps)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Solver) price() (decimal.Decimal, error) {
	p := s.pricePerUnit
	if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
		return decimal.Zero, fmt.Errorf("%w: price per unit %v", ErrInvalidValue, p)
	}
	if p == 0 {
		return decimal.Zero, fmt.Errorf("%w: price per unit is 0", ErrDivisionByZero)
	}
	return decimal.NewFromFloat(p), nil
}

func checkRevenueTarget(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 || v > MaxRevenueTarget {
		return fmt.Errorf("%w: revenue target %v", ErrInvalidValue, v)
	}
	return nil
}
