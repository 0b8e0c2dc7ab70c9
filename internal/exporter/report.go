package exporter

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/asaramis/scenario-planning-app/internal/model"
	"github.com/asaramis/scenario-planning-app/internal/util"
)

const (
	marginLeft   = 15.0
	marginTop    = 15.0
	marginRight  = 15.0
	rowHeight    = 7.0
	contentWidth = 210.0 - marginLeft - marginRight
)

var reportColumns = []struct {
	title string
	width float64
	align string
}{
	{"Step", 60, "L"},
	{"Value", 25, "R"},
	{"% of Start", 25, "R"},
	{"vs. Previous", 25, "R"},
	{"Baseline", 25, "R"},
	{"vs. Baseline", 20, "R"},
}

// RenderReport 生成单页 PDF 漏斗报告
func RenderReport(view *model.ScenarioView, generatedAt time.Time) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginLeft, marginTop, marginRight)
	pdf.SetAutoPageBreak(true, marginTop)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 18)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(contentWidth, 10, "Scenario Planning", "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "I", 10)
	pdf.SetTextColor(80, 80, 80)
	pdf.CellFormat(contentWidth, 6, fmt.Sprintf("Generated: %s", generatedAt.Format("2 January 2006 15:04")), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	// 表头
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(226, 232, 240)
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetTextColor(30, 30, 30)
	for _, col := range reportColumns {
		pdf.CellFormat(col.width, rowHeight, col.title, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for i, s := range view.Steps {
		baseline, delta := "", ""
		if s.BaselineConversion != nil {
			baseline = util.FormatPercent(*s.BaselineConversion)
			delta = util.FormatDelta(s.ConversionVsPrevious - *s.BaselineConversion)
		}
		cells := []string{
			tr(s.Name),
			util.FormatCount(s.Value),
			util.FormatPercent(s.PercentOfStart),
			util.FormatPercent(s.ConversionVsPrevious),
			baseline,
			delta,
		}
		fill := i%2 == 1
		pdf.SetFillColor(245, 247, 250)
		for j, col := range reportColumns {
			pdf.CellFormat(col.width, rowHeight, cells[j], "1", 0, col.align, fill, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "B", 12)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(contentWidth, 8, "Revenue: "+util.FormatCurrency(view.TotalRevenue), "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(80, 80, 80)
	pdf.CellFormat(contentWidth, 6, fmt.Sprintf("Target: %s   Price per unit: %s",
		util.FormatCurrency(view.RevenueTarget), util.FormatCurrency(view.PricePerUnit)), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
