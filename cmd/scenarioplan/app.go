package main

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/asaramis/scenario-planning-app/internal/config"
	"github.com/asaramis/scenario-planning-app/internal/importer"
	"github.com/asaramis/scenario-planning-app/internal/logging"
	"github.com/asaramis/scenario-planning-app/internal/service/planner"
	"github.com/asaramis/scenario-planning-app/internal/service/store"
)

// loadConfig 加载配置，失败时退回默认配置
func loadConfig(path string) (*config.AppConfig, config.LoadConfigInfo) {
	var (
		cfg  *config.AppConfig
		info config.LoadConfigInfo
		err  error
	)
	if path == "" {
		cfg, info, err = config.LoadConfigWithInfo()
	} else {
		cfg, info, err = config.LoadFile(path)
	}
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Printf("加载配置失败，使用默认配置: %v\n", err)
		return config.DefaultConfig(), config.LoadConfigInfo{}
	}
	return cfg, info
}

func newLogger(cfg *config.AppConfig) *logrus.Logger {
	return logging.New(cfg.Log)
}

// buildPlanner 解析漏斗定义并创建规划器；steps_file 优先于 config.toml 中的 steps
func buildPlanner(cfg *config.AppConfig, log logrus.FieldLogger) (*planner.Planner, error) {
	f := cfg.Funnel
	steps := f.Steps
	start := f.BaselineStart

	if f.StepsFile != "" {
		b, err := importer.LoadFile(f.StepsFile)
		if err != nil {
			return nil, fmt.Errorf("load steps file: %w", err)
		}
		steps = b.Steps
		if b.Start > 0 {
			start = b.Start
		}
		log.WithFields(logrus.Fields{
			"file":  f.StepsFile,
			"steps": len(steps),
			"start": start,
		}).Info("funnel definition loaded")
	}

	p, err := planner.New(store.NewMemoryStore(), planner.Options{
		Steps:         steps,
		BaselineStart: start,
		RevenueTarget: f.RevenueTarget,
		PricePerUnit:  f.PricePerUnit,
		NoOpTolerance: f.NoOpTolerance,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("init planner: %w", err)
	}
	return p, nil
}
