package provider

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ppec-inventory/internal/config"
	"github.com/ppec-inventory/internal/logger"
	"github.com/ppec-inventory/internal/models"
	"github.com/ppec-inventory/internal/repository"
	"github.com/ppec-inventory/internal/service"

	"gorm.io/gorm"
)

const componentIndexDBName = ".component_index.db"

// Container 依赖注入容器
type Container struct {
	Config *config.Config
	Store  *repository.FileRecordStore
	DB     *gorm.DB // 组件二级索引，未启用时为 nil

	// Repositories
	BatchRepo     repository.BatchRepository
	ComponentRepo repository.ComponentRepository
	IndexRepo     repository.BatchIndexRepository
	LocatorRepo   repository.ComponentLocatorRepository

	// Services
	InventoryService *service.InventoryService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	c := &Container{Config: cfg}

	// 1. 初始化记录存储与二级索引
	if err := c.initStorage(); err != nil {
		return nil, err
	}

	// 2. 初始化 Repositories
	c.initRepositories()
	c.syncComponentLocator()

	// 3. 初始化 Services
	c.initServices()

	return c, nil
}

func (c *Container) initStorage() error {
	codec, err := repository.NewRecordCodec(c.Config.Storage.RecordFormat)
	if err != nil {
		return err
	}
	store, err := repository.NewFileRecordStore(c.Config.Storage.DataDir, codec)
	if err != nil {
		return err
	}
	c.Store = store

	if !c.Config.ComponentIndex.Enabled {
		return nil
	}
	dsn := ComponentIndexDSN(c.Config)
	db, err := models.OpenDB(dsn, c.Config.IsDebug(), models.DBPoolConfig{MaxOpenConns: 1, MaxIdleConns: 1})
	if err != nil {
		// 二级索引不可用时退回目录扫描
		logger.Warnw("provider_open_component_index_failed", "dsn", dsn, "error", err)
		return nil
	}
	if err := models.AutoMigrate(db); err != nil {
		logger.Warnw("provider_migrate_component_index_failed", "dsn", dsn, "error", err)
		return nil
	}
	c.DB = db
	return nil
}

func (c *Container) initRepositories() {
	if c.DB != nil {
		c.LocatorRepo = repository.NewComponentLocatorRepository(c.DB)
	}
	c.BatchRepo = repository.NewBatchRepository(c.Store)
	c.ComponentRepo = repository.NewComponentRepository(c.Store, c.LocatorRepo)
	c.IndexRepo = repository.NewBatchIndexRepository(c.Store, c.Config.Storage.IndexFilename)
}

// syncComponentLocator 启动时核对二级索引，落后于记录目录时重建；失败时查询退回目录扫描
func (c *Container) syncComponentLocator() {
	if c.LocatorRepo == nil {
		return
	}
	rebuilt, err := c.ComponentRepo.SyncLocator()
	if err != nil {
		logger.Warnw("provider_sync_component_index_failed", "error", err)
		return
	}
	if rebuilt {
		logger.Infow("provider_component_index_rebuilt", "dir", c.Store.Dir())
	}
}

func (c *Container) initServices() {
	c.InventoryService = service.NewInventoryService(c.Config, c.BatchRepo, c.ComponentRepo, c.IndexRepo)
}

// Close 释放二级索引数据库连接
func (c *Container) Close() error {
	if c == nil || c.DB == nil {
		return nil
	}
	sqlDB, err := c.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ComponentIndexDSN 组件二级索引 DSN，未配置时放在记录目录下
func ComponentIndexDSN(cfg *config.Config) string {
	if dsn := strings.TrimSpace(cfg.ComponentIndex.DSN); dsn != "" {
		return dsn
	}
	return filepath.Join(cfg.Storage.DataDir, componentIndexDBName)
}
