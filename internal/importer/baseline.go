package importer

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/asaramis/scenario-planning-app/internal/model"
)

// Baseline 外部漏斗定义
type Baseline struct {
	Steps []model.StepConfig `yaml:"steps"`
	Start int64              `yaml:"baseline_start"` // 0 表示文件未给出
}

var (
	stepHeaders  = []string{"step", "name", "步骤"}
	valueHeaders = []string{"value", "count", "数量"}
)

// LoadFile 按扩展名加载漏斗定义（.yaml/.yml/.xlsx）
func LoadFile(path string) (*Baseline, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return LoadYAML(f)
	case ".xlsx":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return LoadWorkbook(f)
	default:
		return nil, fmt.Errorf("unsupported funnel file: %s", path)
	}
}

// LoadYAML 读取 YAML 漏斗定义
func LoadYAML(r io.Reader) (*Baseline, error) {
	var b Baseline
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&b); err != nil {
		return nil, fmt.Errorf("failed to parse funnel yaml: %w", err)
	}
	if len(b.Steps) == 0 {
		return nil, errors.New("funnel yaml has no steps")
	}
	if b.Start < 0 {
		return nil, fmt.Errorf("baseline_start must not be negative, got %d", b.Start)
	}
	return &b, nil
}

// LoadWorkbook 读取首个工作表的 Step/Value 两列。
// 各步骤基准转化率 = 本步数量 / 上一步数量 × 100，保留两位小数；入口数量作为基准入口。
func LoadWorkbook(r io.Reader) (*Baseline, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New("empty sheet")
	}

	stepCol := findColumn(rows[0], stepHeaders)
	valueCol := findColumn(rows[0], valueHeaders)
	if stepCol < 0 || valueCol < 0 {
		return nil, fmt.Errorf("sheet %q needs Step and Value columns", sheets[0])
	}

	b := &Baseline{}
	var prev int64
	for i, row := range rows[1:] {
		rowNo := i + 2
		name := cell(row, stepCol)
		if name == "" {
			continue
		}
		value, err := parseCount(cell(row, valueCol))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNo, err)
		}

		step := model.StepConfig{Name: name, BaselineConversionPct: 100}
		if len(b.Steps) == 0 {
			b.Start = value
		} else {
			if prev == 0 {
				return nil, fmt.Errorf("row %d: previous step %q has value 0", rowNo, b.Steps[len(b.Steps)-1].Name)
			}
			step.BaselineConversionPct = decimal.NewFromInt(value).
				Mul(decimal.NewFromInt(100)).
				Div(decimal.NewFromInt(prev)).
				Round(2).
				InexactFloat64()
		}
		b.Steps = append(b.Steps, step)
		prev = value
	}

	if len(b.Steps) < 2 {
		return nil, fmt.Errorf("sheet %q needs at least 2 steps, got %d", sheets[0], len(b.Steps))
	}
	return b, nil
}

func findColumn(header []string, names []string) int {
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		for _, n := range names {
			if h == n {
				return i
			}
		}
	}
	return -1
}

func cell(row []string, col int) string {
	if col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// parseCount 解析数量，允许千分位逗号
func parseCount(s string) (int64, error) {
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, errors.New("missing value")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q", s)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, fmt.Errorf("invalid value %q", s)
	}
	return decimal.NewFromFloat(f).Round(0).IntPart(), nil
}
