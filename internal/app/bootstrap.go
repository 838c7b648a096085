package app

import (
	"errors"

	"github.com/ppec-inventory/internal/config"
	"github.com/ppec-inventory/internal/logger"
	"github.com/ppec-inventory/internal/metrics"
	"github.com/ppec-inventory/internal/provider"
)

// App 一次命令执行所需的运行时
type App struct {
	Config    *config.Config
	Container *provider.Container
	opts      Options
}

// Bootstrap 加载配置、初始化日志并构建依赖容器
func Bootstrap(opts Options) (*App, error) {
	opts = normalizeOptions(opts)
	cfg := opts.Config
	if cfg == nil {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if opts.DataDir != "" {
		cfg.Storage.DataDir = opts.DataDir
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	logger.Init(cfg.App.Mode, cfg.Log.ToLoggerOptions())
	opts.Logger = logger.S()

	container, err := provider.NewContainer(cfg)
	if err != nil {
		return nil, err
	}
	opts.Logger.Debugw("app_bootstrapped",
		"data_dir", cfg.Storage.DataDir,
		"record_format", cfg.Storage.RecordFormat,
		"component_index", container.DB != nil,
	)
	return &App{Config: cfg, Container: container, opts: opts}, nil
}

// Close 导出指标、关闭二级索引并刷新日志
func (a *App) Close() error {
	if a == nil {
		return errors.New("app is nil")
	}
	var errs []error
	if err := metrics.WriteTextfile(a.Config.Metrics.TextfilePath); err != nil {
		a.opts.Logger.Warnw("metrics_textfile_write_failed", "path", a.Config.Metrics.TextfilePath, "error", err)
		errs = append(errs, err)
	}
	if err := a.Container.Close(); err != nil {
		a.opts.Logger.Warnw("component_index_close_failed", "error", err)
		errs = append(errs, err)
	}
	logger.Sync()
	return errors.Join(errs...)
}
