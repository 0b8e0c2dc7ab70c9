package exporter

import (
	"bytes"
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"

	"github.com/asaramis/scenario-planning-app/internal/model"
)

// SheetName 漏斗工作表名
const SheetName = "Funnel"

var workbookHeaders = []string{"Step", "Value", "% of Start", "vs. Previous", "Baseline", "vs. Baseline (pp)"}

// ExportWorkbook 导出场景漏斗表与收入汇总
func ExportWorkbook(view *model.ScenarioView) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, err
	}

	for i, h := range workbookHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(SheetName, cell, h)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	countStyle, err := f.NewStyle(&excelize.Style{NumFmt: 3}) // #,##0
	if err != nil {
		return nil, fmt.Errorf("count style: %w", err)
	}
	pctStyle, err := f.NewStyle(&excelize.Style{NumFmt: 10}) // 0.00%
	if err != nil {
		return nil, fmt.Errorf("percent style: %w", err)
	}
	deltaFmt := `+0.00;-0.00;0.00`
	deltaStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &deltaFmt})
	if err != nil {
		return nil, fmt.Errorf("delta style: %w", err)
	}
	currencyFmt := `"$"#,##0`
	currencyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &currencyFmt})
	if err != nil {
		return nil, fmt.Errorf("currency style: %w", err)
	}
	f.SetRowStyle(SheetName, 1, 1, headerStyle)

	for i, s := range view.Steps {
		row := i + 2
		f.SetCellValue(SheetName, fmt.Sprintf("A%d", row), s.Name)
		f.SetCellValue(SheetName, fmt.Sprintf("B%d", row), s.Value)
		f.SetCellValue(SheetName, fmt.Sprintf("C%d", row), s.PercentOfStart/100)
		f.SetCellValue(SheetName, fmt.Sprintf("D%d", row), s.ConversionVsPrevious/100)
		if s.BaselineConversion != nil {
			f.SetCellValue(SheetName, fmt.Sprintf("E%d", row), *s.BaselineConversion/100)
			f.SetCellValue(SheetName, fmt.Sprintf("F%d", row), math.Round((s.ConversionVsPrevious-*s.BaselineConversion)*100)/100)
		}
	}

	last := len(view.Steps) + 1
	if len(view.Steps) > 0 {
		f.SetCellStyle(SheetName, "B2", fmt.Sprintf("B%d", last), countStyle)
		f.SetCellStyle(SheetName, "C2", fmt.Sprintf("E%d", last), pctStyle)
		f.SetCellStyle(SheetName, "F2", fmt.Sprintf("F%d", last), deltaStyle)
	}

	// 汇总
	summary := [][]interface{}{
		{"Price per unit", view.PricePerUnit},
		{"Revenue target", view.RevenueTarget},
		{"Revenue", view.TotalRevenue},
	}
	start := last + 2
	for i, row := range summary {
		r := start + i
		f.SetCellValue(SheetName, fmt.Sprintf("A%d", r), row[0])
		f.SetCellValue(SheetName, fmt.Sprintf("B%d", r), row[1])
	}
	f.SetCellStyle(SheetName, fmt.Sprintf("B%d", start), fmt.Sprintf("B%d", start+len(summary)-1), currencyStyle)

	f.SetColWidth(SheetName, "A", "A", 28)
	f.SetColWidth(SheetName, "B", "F", 16)

	return f, nil
}

// WorkbookBytes 导出为 xlsx 字节
func WorkbookBytes(view *model.ScenarioView) ([]byte, error) {
	f, err := ExportWorkbook(view)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
