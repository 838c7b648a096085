package repository

import (
	"errors"
	"time"

	"github.com/ppec-inventory/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ComponentLocatorRepository 组件二级索引数据访问接口
type ComponentLocatorRepository interface {
	Upsert(component *models.Component, file string) error
	GetBySerial(serial string) (*models.ComponentLocator, error)
	ListSerialsByBatch(batchNumber string) ([]string, error)
	ListSerialsByTypeAndSize(componentType, size string) ([]string, error)
	Rebuild(components []models.Component, ext string) error
	Count() (int64, error)
}

// GormComponentLocatorRepository GORM 实现
type GormComponentLocatorRepository struct {
	db *gorm.DB
}

// NewComponentLocatorRepository 创建组件二级索引仓库
func NewComponentLocatorRepository(db *gorm.DB) *GormComponentLocatorRepository {
	return &GormComponentLocatorRepository{db: db}
}

// Upsert 写入或更新组件索引行
func (r *GormComponentLocatorRepository) Upsert(component *models.Component, file string) error {
	if component == nil {
		return errors.New("component is nil")
	}
	row := locatorRow(component, file, time.Now())
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "serial"}},
		DoUpdates: clause.AssignmentColumns([]string{"batch_number", "component_type", "size", "finish", "file_path", "updated_at"}),
	}).Create(&row).Error
}

// GetBySerial 获取索引行，不存在时返回 nil
func (r *GormComponentLocatorRepository) GetBySerial(serial string) (*models.ComponentLocator, error) {
	var row models.ComponentLocator
	if err := r.db.Where("serial = ?", serial).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// ListSerialsByBatch 按批次号查询序列号
func (r *GormComponentLocatorRepository) ListSerialsByBatch(batchNumber string) ([]string, error) {
	var serials []string
	err := r.db.Model(&models.ComponentLocator{}).
		Where("batch_number = ?", batchNumber).
		Order("serial asc").
		Pluck("serial", &serials).Error
	if err != nil {
		return nil, err
	}
	return serials, nil
}

// ListSerialsByTypeAndSize 按类型与规格查询序列号
func (r *GormComponentLocatorRepository) ListSerialsByTypeAndSize(componentType, size string) ([]string, error) {
	var serials []string
	err := r.db.Model(&models.ComponentLocator{}).
		Where("component_type = ? AND size = ?", componentType, size).
		Order("serial asc").
		Pluck("serial", &serials).Error
	if err != nil {
		return nil, err
	}
	return serials, nil
}

// Rebuild 清空并按给定组件重建索引
func (r *GormComponentLocatorRepository) Rebuild(components []models.Component, ext string) error {
	now := time.Now()
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.ComponentLocator{}).Error; err != nil {
			return err
		}
		if len(components) == 0 {
			return nil
		}
		rows := make([]models.ComponentLocator, 0, len(components))
		for i := range components {
			rows = append(rows, locatorRow(&components[i], components[i].Serial+ext, now))
		}
		return tx.CreateInBatches(&rows, 500).Error
	})
}

// Count 索引行数
func (r *GormComponentLocatorRepository) Count() (int64, error) {
	var total int64
	if err := r.db.Model(&models.ComponentLocator{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func locatorRow(component *models.Component, file string, now time.Time) models.ComponentLocator {
	return models.ComponentLocator{
		Serial:        component.Serial,
		BatchNumber:   component.BatchNumber(),
		ComponentType: component.ComponentType,
		Size:          component.Size,
		Finish:        component.Finish,
		FilePath:      file,
		UpdatedAt:     now,
	}
}
