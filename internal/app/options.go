package app

import (
	"strings"

	"github.com/ppec-inventory/internal/config"
	"github.com/ppec-inventory/internal/logger"

	"go.uber.org/zap"
)

// Options 应用启动选项
type Options struct {
	ConfigPath string // 为空时按默认路径查找 config.yml
	DataDir    string // 非空时覆盖 storage.data_dir
	Config     *config.Config
	Logger     *zap.SugaredLogger
}

// normalizeOptions 补齐默认参数
func normalizeOptions(opts Options) Options {
	opts.ConfigPath = strings.TrimSpace(opts.ConfigPath)
	opts.DataDir = strings.TrimSpace(opts.DataDir)
	if opts.Logger == nil {
		opts.Logger = logger.S()
	}
	return opts
}
