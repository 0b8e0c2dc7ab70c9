package model

import "time"

// Scenario 调用方持有的场景状态：步骤列表与各输入框的值
type Scenario struct {
	ID                string       `json:"id"`
	Steps             []FunnelStep `json:"steps"`
	RevenueTarget     float64      `json:"revenueTarget"`
	SelectedStep      string       `json:"selectedStep"`
	PendingConversion string       `json:"pendingConversion"` // 待应用的新转化率（原始输入）
	CreatedAt         time.Time    `json:"createdAt"`
	UpdatedAt         time.Time    `json:"updatedAt"`
}

// Clone 深拷贝场景
func (s *Scenario) Clone() *Scenario {
	if s == nil {
		return nil
	}
	out := *s
	out.Steps = CloneSteps(s.Steps)
	return &out
}

// ScenarioView 场景展示数据
type ScenarioView struct {
	ID                string       `json:"id"`
	Steps             []FunnelStep `json:"steps"`
	RevenueTarget     float64      `json:"revenueTarget"`
	TotalRevenue      float64      `json:"totalRevenue"`
	PricePerUnit      float64      `json:"pricePerUnit"`
	SelectedStep      string       `json:"selectedStep"`
	PendingConversion string       `json:"pendingConversion"`
	UpdatedAt         time.Time    `json:"updatedAt"`
}
