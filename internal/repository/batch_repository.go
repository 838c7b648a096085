package repository

import (
	"errors"

	"github.com/ppec-inventory/internal/identifier"
	"github.com/ppec-inventory/internal/metrics"
	"github.com/ppec-inventory/internal/models"
)

// BatchRepository 批次记录数据访问接口
type BatchRepository interface {
	GetByNumber(batchNumber string) (*models.Batch, error)
	Save(batch *models.Batch) error
	Exists(batchNumber string) (bool, error)
}

// FileBatchRepository 文件实现
type FileBatchRepository struct {
	store *FileRecordStore
}

// NewBatchRepository 创建批次仓库
func NewBatchRepository(store *FileRecordStore) *FileBatchRepository {
	return &FileBatchRepository{store: store}
}

// GetByNumber 获取批次，不存在时返回 nil
func (r *FileBatchRepository) GetByNumber(batchNumber string) (*models.Batch, error) {
	if err := identifier.ValidateBatchNumber(batchNumber); err != nil {
		return nil, err
	}
	var batch models.Batch
	found, err := r.store.Get(batchNumber, &batch)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &batch, nil
}

// Save 保存批次（覆盖写入）
func (r *FileBatchRepository) Save(batch *models.Batch) error {
	if batch == nil {
		return errors.New("batch is nil")
	}
	if err := identifier.ValidateBatchNumber(batch.BatchNumber); err != nil {
		return err
	}
	if err := r.store.Put(batch.BatchNumber, batch); err != nil {
		return err
	}
	metrics.RecordWrites.WithLabelValues("batch").Inc()
	return nil
}

// Exists 批次记录是否存在
func (r *FileBatchRepository) Exists(batchNumber string) (bool, error) {
	if err := identifier.ValidateBatchNumber(batchNumber); err != nil {
		return false, err
	}
	return r.store.Exists(batchNumber)
}
