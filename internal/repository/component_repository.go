package repository

import (
	"errors"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ppec-inventory/internal/identifier"
	"github.com/ppec-inventory/internal/logger"
	"github.com/ppec-inventory/internal/metrics"
	"github.com/ppec-inventory/internal/models"
)

// ComponentRepository 组件记录数据访问接口
type ComponentRepository interface {
	GetBySerial(serial string) (*models.Component, error)
	Save(component *models.Component) error
	SaveAll(components []models.Component) error
	ListByBatch(batchNumber string) ([]models.Component, error)
	FindByTypeAndSize(componentType, size string) ([]models.Component, error)
	ScanAll() ([]models.Component, error)
	RebuildLocator() (int, error)
	SyncLocator() (bool, error)
}

// 二级索引状态
const (
	locatorUnchecked = iota // 尚未与目录核对
	locatorReady            // 已核对，可直接查询
	locatorStale            // 写入失败，下次使用前必须重建
)

// FileComponentRepository 文件实现。组件没有独立索引，按前缀查找需要扫描目录；
// 配置了 locator 时，核对通过后优先使用二级索引，核对或查询出错时回退到目录扫描。
type FileComponentRepository struct {
	store   *FileRecordStore
	locator ComponentLocatorRepository

	mu           sync.Mutex
	locatorState int
}

// NewComponentRepository 创建组件仓库，locator 可为 nil
func NewComponentRepository(store *FileRecordStore, locator ComponentLocatorRepository) *FileComponentRepository {
	return &FileComponentRepository{store: store, locator: locator}
}

// GetBySerial 获取组件，不存在时返回 nil
func (r *FileComponentRepository) GetBySerial(serial string) (*models.Component, error) {
	if err := identifier.ValidateSerial(serial); err != nil {
		return nil, err
	}
	var component models.Component
	found, err := r.store.Get(serial, &component)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &component, nil
}

// Save 保存组件（覆盖写入）并同步二级索引
func (r *FileComponentRepository) Save(component *models.Component) error {
	if component == nil {
		return errors.New("component is nil")
	}
	if err := identifier.ValidateSerial(component.Serial); err != nil {
		return err
	}
	if err := r.store.Put(component.Serial, component); err != nil {
		return err
	}
	metrics.RecordWrites.WithLabelValues("component").Inc()
	r.syncLocator(component)
	return nil
}

// SaveAll 按顺序保存一组组件，遇到错误立即返回
func (r *FileComponentRepository) SaveAll(components []models.Component) error {
	for i := range components {
		if err := r.Save(&components[i]); err != nil {
			return err
		}
	}
	return nil
}

// ListByBatch 获取批次下全部组件，按序列号顺序返回
func (r *FileComponentRepository) ListByBatch(batchNumber string) ([]models.Component, error) {
	if err := identifier.ValidateBatchNumber(batchNumber); err != nil {
		return nil, err
	}
	if r.useLocator() {
		serials, err := r.locator.ListSerialsByBatch(batchNumber)
		if err == nil {
			return r.loadSerials(serials)
		}
		logger.Warnw("component_locator_query_failed", "batch_number", batchNumber, "error", err)
	}
	prefix := batchNumber + "-"
	return r.scan("batch_components", func(stem string) bool {
		return strings.HasPrefix(stem, prefix)
	}, nil)
}

// FindByTypeAndSize 按类型与规格查找组件
func (r *FileComponentRepository) FindByTypeAndSize(componentType, size string) ([]models.Component, error) {
	if r.useLocator() {
		serials, err := r.locator.ListSerialsByTypeAndSize(componentType, size)
		if err == nil {
			return r.loadSerials(serials)
		}
		logger.Warnw("component_locator_query_failed", "component_type", componentType, "size", size, "error", err)
	}
	return r.scan("search", nil, func(c *models.Component) bool {
		return c.ComponentType == componentType && c.Size == size
	})
}

// ScanAll 扫描目录读取全部组件
func (r *FileComponentRepository) ScanAll() ([]models.Component, error) {
	return r.scan("all_components", nil, nil)
}

// RebuildLocator 依据目录扫描结果重建二级索引
func (r *FileComponentRepository) RebuildLocator() (int, error) {
	if r.locator == nil {
		return 0, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rebuildLocatorLocked()
}

// SyncLocator 核对二级索引与记录目录：行数与组件记录数不一致，
// 或此前有写入失败时重建。返回是否发生了重建。
func (r *FileComponentRepository) SyncLocator() (bool, error) {
	if r.locator == nil {
		return false, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.locatorState {
	case locatorReady:
		return false, nil
	case locatorUnchecked:
		rows, err := r.locator.Count()
		if err != nil {
			return false, err
		}
		onDisk, err := r.countSerialStems()
		if err != nil {
			return false, err
		}
		if rows == int64(onDisk) {
			r.locatorState = locatorReady
			return false, nil
		}
		logger.Infow("component_locator_out_of_sync", "rows", rows, "records", onDisk)
	}
	if _, err := r.rebuildLocatorLocked(); err != nil {
		return false, err
	}
	return true, nil
}

func (r *FileComponentRepository) rebuildLocatorLocked() (int, error) {
	components, err := r.ScanAll()
	if err != nil {
		return 0, err
	}
	if err := r.locator.Rebuild(components, r.store.Ext()); err != nil {
		r.locatorState = locatorStale
		return 0, err
	}
	r.locatorState = locatorReady
	return len(components), nil
}

func (r *FileComponentRepository) useLocator() bool {
	if r.locator == nil {
		return false
	}
	if _, err := r.SyncLocator(); err != nil {
		logger.Warnw("component_locator_sync_failed", "error", err)
		return false
	}
	return true
}

func (r *FileComponentRepository) countSerialStems() (int, error) {
	stems, err := r.store.ListStems()
	if err != nil {
		return 0, err
	}
	total := 0
	for _, stem := range stems {
		if identifier.IsSerialStem(stem) {
			total++
		}
	}
	return total, nil
}

func (r *FileComponentRepository) scan(purpose string, stemFilter func(string) bool, filter func(*models.Component) bool) ([]models.Component, error) {
	stems, err := r.store.ListStems()
	if err != nil {
		return nil, err
	}
	metrics.DirectoryScans.WithLabelValues(purpose).Inc()

	result := make([]models.Component, 0)
	for _, stem := range stems {
		if !identifier.IsSerialStem(stem) {
			continue
		}
		if stemFilter != nil && !stemFilter(stem) {
			continue
		}
		var component models.Component
		found, err := r.store.Get(stem, &component)
		if err != nil {
			if errors.Is(err, ErrRecordCorrupt) {
				logger.Warnw("component_record_corrupt", "serial", stem, "error", err)
				continue
			}
			return nil, err
		}
		if !found {
			continue
		}
		if filter != nil && !filter(&component) {
			continue
		}
		result = append(result, component)
	}
	return result, nil
}

func (r *FileComponentRepository) loadSerials(serials []string) ([]models.Component, error) {
	result := make([]models.Component, 0, len(serials))
	for _, serial := range serials {
		component, err := r.GetBySerial(serial)
		if err != nil {
			return nil, err
		}
		if component == nil {
			logger.Warnw("component_locator_stale", "serial", serial)
			continue
		}
		result = append(result, *component)
	}
	return result, nil
}

func (r *FileComponentRepository) syncLocator(component *models.Component) {
	if r.locator == nil {
		return
	}
	file := filepath.Base(r.store.Path(component.Serial))
	if err := r.locator.Upsert(component, file); err != nil {
		logger.Warnw("component_locator_upsert_failed", "serial", component.Serial, "error", err)
		r.mu.Lock()
		r.locatorState = locatorStale
		r.mu.Unlock()
	}
}
