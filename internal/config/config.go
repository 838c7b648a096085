package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ppec-inventory/internal/constants"
	"github.com/ppec-inventory/internal/logger"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	App            AppConfig            `mapstructure:"app"`
	Log            LogConfig            `mapstructure:"log"`
	Storage        StorageConfig        `mapstructure:"storage" validate:"required"`
	Catalog        []CatalogEntry       `mapstructure:"catalog" validate:"dive"`
	Locations      LocationsConfig      `mapstructure:"locations"`
	ComponentIndex ComponentIndexConfig `mapstructure:"component_index"`
	Metrics        MetricsConfig        `mapstructure:"metrics"`
}

// AppConfig 运行配置
type AppConfig struct {
	Mode string `mapstructure:"mode" validate:"oneof=debug release"` // debug / release
}

// LogConfig 日志配置
type LogConfig struct {
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `mapstructure:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `mapstructure:"max_age_days" validate:"gte=0"`
	Compress   bool   `mapstructure:"compress"`
	Console    bool   `mapstructure:"console"`
}

// ToLoggerOptions 转换为 logger 配置
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
		Console:    c.Console,
	}
}

// StorageConfig 记录目录配置
type StorageConfig struct {
	DataDir       string `mapstructure:"data_dir" validate:"required"`
	RecordFormat  string `mapstructure:"record_format" validate:"oneof=json yaml"` // 记录编码（json/yaml）
	IndexFilename string `mapstructure:"index_filename" validate:"required"`
}

// CatalogEntry 组件目录项
type CatalogEntry struct {
	Type  string   `mapstructure:"type" validate:"required"`
	Sizes []string `mapstructure:"sizes"`
}

// LocationsConfig 库位配置
type LocationsConfig struct {
	Default    string   `mapstructure:"default" validate:"required"`
	Warehouses []string `mapstructure:"warehouses"` // 为空时允许任意库位
}

// ComponentIndexConfig 组件二级索引配置
type ComponentIndexConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn"` // 为空时使用 <data_dir>/.component_index.db
}

// MetricsConfig 指标导出配置
type MetricsConfig struct {
	TextfilePath string `mapstructure:"textfile_path"` // 为空时不导出
}

// IsDebug 是否调试模式
func (c *Config) IsDebug() bool {
	return strings.EqualFold(c.App.Mode, logger.ModeDebug)
}

// DefaultCatalog 默认组件目录
func DefaultCatalog() []CatalogEntry {
	return []CatalogEntry{
		{Type: "Winglet Attachment Strut", Sizes: []string{"A320 Series", "A380 Series"}},
		{Type: "Door Seal Clamp Handle"},
		{Type: "Rudder Pivot Pin", Sizes: []string{
			"10mm diameter x 75mm length",
			"12mm diameter x 100mm length",
			"16mm diameter x 150mm length",
		}},
	}
}

// Load 从 config.yml 加载配置，path 非空时只读取该文件
func Load(path string) (*Config, error) {
	v := viper.New()
	if strings.TrimSpace(path) != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./etc")
		v.AddConfigPath("$HOME/.ppec-inventory")
	}

	setDefaults(v)

	v.SetEnvPrefix("INVENTORY")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if strings.TrimSpace(path) != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config failed: %w", err)
		}
		logger.Debugw("config_file_not_found", "fallback", "env_or_defaults")
	} else {
		logger.Debugw("config_file_loaded", "file", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config failed: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 校验配置
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.mode", "release")
	v.SetDefault("log.dir", "")
	v.SetDefault("log.filename", "inventory.log")
	v.SetDefault("log.max_size_mb", 20)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)
	v.SetDefault("log.console", true)
	v.SetDefault("storage.data_dir", "./data")
	v.SetDefault("storage.record_format", constants.RecordFormatJSON)
	v.SetDefault("storage.index_filename", constants.DefaultIndexFilename)
	v.SetDefault("catalog", catalogDefaults())
	v.SetDefault("locations.default", constants.LocationUnallocated)
	v.SetDefault("locations.warehouses", []string{"Paisley", "Dubai"})
	v.SetDefault("component_index.enabled", false)
	v.SetDefault("component_index.dsn", "")
	v.SetDefault("metrics.textfile_path", "")
}

func catalogDefaults() []map[string]interface{} {
	entries := DefaultCatalog()
	result := make([]map[string]interface{}, 0, len(entries))
	for _, entry := range entries {
		result = append(result, map[string]interface{}{
			"type":  entry.Type,
			"sizes": entry.Sizes,
		})
	}
	return result
}
