package v1

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/asaramis/scenario-planning-app/internal/model"
	"github.com/asaramis/scenario-planning-app/internal/service/calculator"
	"github.com/asaramis/scenario-planning-app/internal/service/store"
)

// scenarioResponse 修改类接口的响应；Changed=false 表示本次输入被忽略
type scenarioResponse struct {
	Changed  bool                `json:"changed"`
	Kind     string              `json:"kind,omitempty"`
	Scenario *model.ScenarioView `json:"scenario"`
}

// ListScenarios 场景列表
// GET /api/scenarios
func (h *Handler) ListScenarios(c *gin.Context) {
	items := h.planner.List()
	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
}

// CreateScenario 以基准漏斗新建场景
// POST /api/scenarios
func (h *Handler) CreateScenario(c *gin.Context) {
	c.JSON(http.StatusCreated, h.planner.Create())
}

// GetScenario 获取场景
// GET /api/scenarios/:id
func (h *Handler) GetScenario(c *gin.Context) {
	view, err := h.planner.Get(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// DeleteScenario 删除场景
// DELETE /api/scenarios/:id
func (h *Handler) DeleteScenario(c *gin.Context) {
	if err := h.planner.Delete(c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ResetScenario 恢复基准漏斗
// POST /api/scenarios/:id/reset
func (h *Handler) ResetScenario(c *gin.Context) {
	h.respondUpdate(c, func(id string) (*model.ScenarioView, error) {
		return h.planner.Reset(id)
	})
}

type revenueTargetRequest struct {
	RevenueTarget *float64 `json:"revenueTarget"`
}

// SetRevenueTarget 设置收入目标
// PUT /api/scenarios/:id/revenue-target
func (h *Handler) SetRevenueTarget(c *gin.Context) {
	var req revenueTargetRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RevenueTarget == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "revenueTarget is required"})
		return
	}
	h.respondUpdate(c, func(id string) (*model.ScenarioView, error) {
		return h.planner.SetRevenueTarget(id, *req.RevenueTarget)
	})
}

// Solve 按收入目标回算漏斗
// POST /api/scenarios/:id/solve
func (h *Handler) Solve(c *gin.Context) {
	h.respondUpdate(c, h.planner.Solve)
}

type selectionRequest struct {
	Step string `json:"step"`
}

// SelectStep 选择待修改步骤
// PUT /api/scenarios/:id/selection
func (h *Handler) SelectStep(c *gin.Context) {
	var req selectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	h.respondUpdate(c, func(id string) (*model.ScenarioView, error) {
		return h.planner.SelectStep(id, req.Step)
	})
}

// SetConversion 输入新转化率，value 可为数字或字符串
// PUT /api/scenarios/:id/conversion
func (h *Handler) SetConversion(c *gin.Context) {
	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	raw, ok := rawConversion(body["value"])
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "value must be a number or string"})
		return
	}
	h.respondUpdate(c, func(id string) (*model.ScenarioView, error) {
		return h.planner.SetNewConversionPct(id, raw)
	})
}

// ApplyStepEdit 应用转化率修改
// POST /api/scenarios/:id/apply-edit
func (h *Handler) ApplyStepEdit(c *gin.Context) {
	h.respondUpdate(c, h.planner.ApplyStepEdit)
}

func rawConversion(v interface{}) (string, bool) {
	switch vv := v.(type) {
	case float64:
		return strconv.FormatFloat(vv, 'f', -1, 64), true
	case string:
		return strings.TrimSpace(vv), true
	case nil:
		return "", true
	}
	return "", false
}

func (h *Handler) respondUpdate(c *gin.Context, fn func(id string) (*model.ScenarioView, error)) {
	id := c.Param("id")
	view, err := fn(id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, scenarioResponse{Changed: true, Scenario: view})
}

// respondError 引擎错误不会改动场景：无变化返回 200 + 当前场景，其余按类别映射状态码
func (h *Handler) respondError(c *gin.Context, err error) {
	if errors.Is(err, store.ErrScenarioNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "kind": "scenario_not_found"})
		return
	}

	kind := calculator.KindOf(err)
	if errors.Is(err, calculator.ErrNoOpChange) {
		view, gerr := h.planner.Get(c.Param("id"))
		if gerr == nil {
			c.JSON(http.StatusOK, scenarioResponse{Changed: false, Kind: kind, Scenario: view})
			return
		}
	}

	status := http.StatusInternalServerError
	switch kind {
	case "not_found":
		status = http.StatusNotFound
	case "invalid_edit", "invalid_value":
		status = http.StatusUnprocessableEntity
	case "division_by_zero":
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		h.log.WithError(err).Error("request failed")
	}
	c.JSON(status, gin.H{"error": err.Error(), "kind": kind})
}
