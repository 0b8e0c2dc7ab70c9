package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/asaramis/scenario-planning-app/internal/model"
	"github.com/asaramis/scenario-planning-app/internal/service/calculator"
)

// 配置文件名（位于可执行文件同目录）
const FileName = "config.toml"

// AppConfig 应用配置
type AppConfig struct {
	Server ServerConfig `toml:"server"`
	Log    LogConfig    `toml:"log"`
	Funnel FunnelConfig `toml:"funnel"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `toml:"level"`  // debug / info / warn / error
	Format string `toml:"format"` // text / json
}

// FunnelConfig 漏斗配置
type FunnelConfig struct {
	PricePerUnit  float64 `toml:"price_per_unit"`
	RevenueTarget float64 `toml:"revenue_target"`
	BaselineStart int64   `toml:"baseline_start"` // 初始入口数量，用于首次传播
	NoOpTolerance float64 `toml:"no_op_tolerance"`

	// StepsFile 外部漏斗定义（.yaml/.yml/.xlsx），设置后覆盖 Steps
	StepsFile string             `toml:"steps_file"`
	Steps     []model.StepConfig `toml:"steps"`
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	Path          string
	PortSpecified bool
}

// DefaultSteps 默认漏斗步骤
func DefaultSteps() []model.StepConfig {
	return []model.StepConfig{
		{Name: "Start creating", BaselineConversionPct: 100},
		{Name: "Generate print", BaselineConversionPct: 47.82},
		{Name: "Generate print success", BaselineConversionPct: 87.78},
		{Name: "Customize band", BaselineConversionPct: 43.89},
		{Name: "Choose sizes", BaselineConversionPct: 78.51},
		{Name: "Order your set", BaselineConversionPct: 38.58},
		{Name: "Secure your set", BaselineConversionPct: 45.10},
		{Name: "Orders", BaselineConversionPct: 23.45},
	}
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:    20270,
			DevMode: false,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Funnel: FunnelConfig{
			PricePerUnit:  calculator.DefaultPricePerUnit,
			RevenueTarget: 22660,
			BaselineStart: 69825,
			NoOpTolerance: calculator.DefaultNoOpTolerance,
			Steps:         DefaultSteps(),
		},
	}
}

// Validate 校验配置
func (c *AppConfig) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port: %d", c.Server.Port)
	}
	f := c.Funnel
	if f.PricePerUnit <= 0 {
		return fmt.Errorf("funnel.price_per_unit must be positive, got %v", f.PricePerUnit)
	}
	if f.RevenueTarget <= 0 || f.RevenueTarget > calculator.MaxRevenueTarget {
		return fmt.Errorf("funnel.revenue_target must be in (0, %g], got %v", calculator.MaxRevenueTarget, f.RevenueTarget)
	}
	if f.BaselineStart < 0 {
		return fmt.Errorf("funnel.baseline_start must not be negative, got %d", f.BaselineStart)
	}
	if f.NoOpTolerance < 0 {
		return fmt.Errorf("funnel.no_op_tolerance must not be negative, got %v", f.NoOpTolerance)
	}
	if f.StepsFile == "" && len(f.Steps) == 0 {
		return errors.New("funnel.steps is empty and funnel.steps_file is not set")
	}
	return nil
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverAny, ok := raw["server"]
	if !ok {
		return false
	}

	serverMap, ok := serverAny.(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
	return ok
}

func isStepsSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}
	funnelMap, ok := raw["funnel"].(map[string]any)
	if !ok {
		return false
	}
	_, ok = funnelMap["steps"]
	return ok
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// DefaultPath 默认配置文件路径
func DefaultPath() string {
	exeDir, err := GetExeDir()
	if err != nil {
		// 无法获取可执行文件目录，使用当前目录
		exeDir = "."
	}
	return filepath.Join(exeDir, FileName)
}

// LoadConfigWithInfo 从可执行文件同目录的 config.toml 加载配置
func LoadConfigWithInfo() (*AppConfig, LoadConfigInfo, error) {
	return LoadFile(DefaultPath())
}

// LoadFile 从指定路径加载配置，文件不存在时返回默认配置
func LoadFile(path string) (*AppConfig, LoadConfigInfo, error) {
	info := LoadConfigInfo{Path: path}
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnv(config)
			return config, info, nil
		}
		return nil, info, err
	}

	info.PortSpecified = isPortSpecifiedInToml(data)

	// 文件里显式给出 steps 时整体替换默认步骤，而不是按下标合并
	if isStepsSpecifiedInToml(data) {
		config.Funnel.Steps = nil
	}
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, info, fmt.Errorf("parse %s: %w", path, err)
	}

	applyEnv(config)

	return config, info, nil
}

// 环境变量覆盖
func applyEnv(config *AppConfig) {
	if v := os.Getenv("SCENARIOPLAN_STEPS_FILE"); v != "" {
		config.Funnel.StepsFile = v
	}
	if v := os.Getenv("SCENARIOPLAN_LOG_LEVEL"); v != "" {
		config.Log.Level = v
	}
}

// SaveConfig 保存配置到指定路径
func SaveConfig(path string, config *AppConfig) error {
	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
