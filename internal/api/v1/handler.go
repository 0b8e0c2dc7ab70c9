package v1

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/asaramis/scenario-planning-app/internal/service/planner"
)

// Handler V1 API 处理器
type Handler struct {
	planner *planner.Planner
	log     logrus.FieldLogger
	now     func() time.Time
}

// NewHandler 创建 V1 API 处理器
func NewHandler(p *planner.Planner, log logrus.FieldLogger) *Handler {
	return &Handler{
		planner: p,
		log:     log,
		now:     time.Now,
	}
}

// RegisterRoutes 注册 V1 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)

	// 场景
	router.GET("/scenarios", h.ListScenarios)
	router.POST("/scenarios", h.CreateScenario)
	router.GET("/scenarios/:id", h.GetScenario)
	router.DELETE("/scenarios/:id", h.DeleteScenario)
	router.POST("/scenarios/:id/reset", h.ResetScenario)

	// 输入事件
	router.PUT("/scenarios/:id/revenue-target", h.SetRevenueTarget)
	router.POST("/scenarios/:id/solve", h.Solve)
	router.PUT("/scenarios/:id/selection", h.SelectStep)
	router.PUT("/scenarios/:id/conversion", h.SetConversion)
	router.POST("/scenarios/:id/apply-edit", h.ApplyStepEdit)

	// 导出
	router.GET("/scenarios/:id/export.xlsx", h.ExportWorkbook)
	router.GET("/scenarios/:id/report.pdf", h.ExportReport)
}
