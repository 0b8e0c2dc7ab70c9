package v1

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/asaramis/scenario-planning-app/internal/exporter"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportWorkbook 导出场景 Excel
// GET /api/scenarios/:id/export.xlsx
func (h *Handler) ExportWorkbook(c *gin.Context) {
	view, err := h.planner.Get(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	data, err := exporter.WorkbookBytes(view)
	if err != nil {
		h.log.WithError(err).Error("export workbook failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", buildContentDisposition(view.ID, "xlsx"))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// ExportReport 导出场景 PDF 报告
// GET /api/scenarios/:id/report.pdf
func (h *Handler) ExportReport(c *gin.Context) {
	view, err := h.planner.Get(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	data, err := exporter.RenderReport(view, h.now())
	if err != nil {
		h.log.WithError(err).Error("render report failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", buildContentDisposition(view.ID, "pdf"))
	c.Data(http.StatusOK, "application/pdf", data)
}

func buildContentDisposition(id, ext string) string {
	short := id
	if len(short) > 8 {
		short = short[:8]
	}
	name := fmt.Sprintf("scenario-%s.%s", short, ext)
	return fmt.Sprintf("attachment; filename=%q; filename*=UTF-8''%s", name, url.PathEscape(name))
}
