package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/asaramis/scenario-planning-app/internal/config"
	"github.com/asaramis/scenario-planning-app/internal/server"
	"github.com/asaramis/scenario-planning-app/internal/util"
)

const appVersion = "0.1.0"

func main() {
	// .env 只用于本地开发，缺失时忽略
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "scenarioplan",
		Short:         "Funnel scenario planner (web API or CLI table)",
		Version:       appVersion,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.SetVersionTemplate("scenarioplan v{{.Version}}\n")
	root.PersistentFlags().StringVar(&configPath, "config", "", "config.toml 路径 (默认: 可执行文件同目录)")

	root.AddCommand(
		newServeCmd(&configPath),
		newTableCmd(&configPath),
		newInitCmd(&configPath),
	)
	return root
}

func newServeCmd(configPath *string) *cobra.Command {
	var (
		port    int
		devMode bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("==========================================")
			fmt.Println("  Scenario Planner - 漏斗场景规划")
			fmt.Println("==========================================")

			cfg, info := loadConfig(*configPath)

			// 命令行参数覆盖配置
			if port > 0 && !info.PortSpecified {
				cfg.Server.Port = port
			}
			if devMode {
				cfg.Server.DevMode = true
			}

			log := newLogger(cfg)
			p, err := buildPlanner(cfg, log)
			if err != nil {
				return err
			}

			srv := server.NewServer(cfg, p, log)

			addr := fmt.Sprintf(":%d", cfg.Server.Port)
			url := fmt.Sprintf("http://localhost:%d", cfg.Server.Port)

			errCh := make(chan error, 1)
			go func() {
				fmt.Printf("服务启动中，监听端口 %d ...\n", cfg.Server.Port)
				errCh <- srv.Run(addr)
			}()

			// 打开浏览器
			if !cfg.Server.DevMode {
				fmt.Printf("正在打开浏览器: %s\n", url)
				if err := util.OpenBrowser(url); err != nil {
					fmt.Printf("无法自动打开浏览器，请手动访问: %s\n", url)
				}
			} else {
				fmt.Printf("开发模式: 请访问 %s\n", url)
			}

			fmt.Println("\n按 Ctrl+C 停止服务...")

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			select {
			case err := <-errCh:
				return fmt.Errorf("服务启动失败: %w", err)
			case <-quit:
			}

			fmt.Println("\n正在关闭服务...")
			return nil
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "服务端口 (config.toml 优先；仅当未显式配置 port 时生效)")
	cmd.Flags().BoolVar(&devMode, "dev", false, "开发模式")
	return cmd
}

func newInitCmd(configPath *string) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config.toml",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := *configPath
			if path == "" {
				path = config.DefaultPath()
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
			if err := config.SaveConfig(path, config.DefaultConfig()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "配置已写入: %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "覆盖已有配置")
	return cmd
}
