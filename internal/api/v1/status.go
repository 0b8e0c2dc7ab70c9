package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/asaramis/scenario-planning-app/internal/service/calculator"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	Scenarios       int      `json:"scenarios"`       // 当前场景数
	Steps           []string `json:"steps"`           // 漏斗步骤名称
	PricePerUnit    float64  `json:"pricePerUnit"`    // 单价
	BaselineRevenue float64  `json:"baselineRevenue"` // 基准漏斗收入
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	baseline := h.planner.Baseline()
	names := make([]string, 0, len(baseline))
	for _, s := range baseline {
		names = append(names, s.Name)
	}

	c.JSON(http.StatusOK, StatusResponse{
		Scenarios:       h.planner.Count(),
		Steps:           names,
		PricePerUnit:    h.planner.PricePerUnit(),
		BaselineRevenue: calculator.TotalRevenue(baseline, h.planner.PricePerUnit()),
	})
}
