package service

import (
	"fmt"

	"github.com/ppec-inventory/internal/constants"
	"github.com/ppec-inventory/internal/logger"
	"github.com/ppec-inventory/internal/models"
	"github.com/ppec-inventory/internal/repository"
)

// ConsistencyManager 维护批次记录与组件记录之间的引用一致性。
// 组件记录中的 status/finish 是权威值，批次的 batchStatus 是按位置对应的缓存。
type ConsistencyManager struct {
	batchRepo       repository.BatchRepository
	componentRepo   repository.ComponentRepository
	defaultLocation string
}

// NewConsistencyManager 创建一致性管理器
func NewConsistencyManager(batchRepo repository.BatchRepository, componentRepo repository.ComponentRepository, defaultLocation string) *ConsistencyManager {
	if defaultLocation == "" {
		defaultLocation = constants.LocationUnallocated
	}
	return &ConsistencyManager{
		batchRepo:       batchRepo,
		componentRepo:   componentRepo,
		defaultLocation: defaultLocation,
	}
}

// ApplyFinish 为未处理的组件设置表面处理，并同步批次状态缓存。
// 任何前置条件不满足时不写入任何记录；写入顺序为先组件后批次。
func (m *ConsistencyManager) ApplyFinish(batchNumber, serial, finish string) (*models.Component, *models.Batch, error) {
	component, err := m.componentRepo.GetBySerial(serial)
	if err != nil {
		return nil, nil, err
	}
	if component == nil {
		return nil, nil, fmt.Errorf("%w: component %s", ErrNotFound, serial)
	}
	if component.IsFinished() {
		return nil, nil, ErrAlreadyFinished
	}

	batch, err := m.batchRepo.GetByNumber(batchNumber)
	if err != nil {
		return nil, nil, err
	}
	if batch == nil {
		return nil, nil, fmt.Errorf("%w: batch %s", ErrNotFound, batchNumber)
	}
	if batch.IndexOfSerial(serial) < 0 {
		return nil, nil, fmt.Errorf("%w: %s not in %s", ErrInconsistentBatch, serial, batchNumber)
	}
	if len(batch.BatchStatus) != len(batch.SerialNumbers) {
		return nil, nil, fmt.Errorf("%w: %s status length %d != %d", ErrInconsistentBatch, batchNumber, len(batch.BatchStatus), len(batch.SerialNumbers))
	}

	component.Finish = finish
	if err := m.componentRepo.Save(component); err != nil {
		return nil, nil, err
	}
	batch.SetComponentStatus(serial, component.Status, component.Finish)
	if err := m.batchRepo.Save(batch); err != nil {
		// 组件已写入而批次未更新，可通过 RepairBatchStatus 修复
		logger.Errorw("batch_status_update_failed", "batch_number", batchNumber, "serial", serial, "error", err)
		return nil, nil, err
	}
	return component, batch, nil
}

// Allocate 将处于默认库位的批次分配到具体库位，只允许一次
func (m *ConsistencyManager) Allocate(batchNumber, location string) (*models.Batch, error) {
	batch, err := m.batchRepo.GetByNumber(batchNumber)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, fmt.Errorf("%w: batch %s", ErrNotFound, batchNumber)
	}
	if batch.IsAllocated(m.defaultLocation) {
		return nil, ErrAlreadyAllocated
	}
	batch.Location = location
	if err := m.batchRepo.Save(batch); err != nil {
		return nil, err
	}
	return batch, nil
}

// RepairBatchStatus 按组件记录重建批次状态缓存，仅在发生变化时写回。
// 组件记录缺失时保留原缓存值。
func (m *ConsistencyManager) RepairBatchStatus(batchNumber string) (*models.Batch, bool, error) {
	batch, err := m.batchRepo.GetByNumber(batchNumber)
	if err != nil {
		return nil, false, err
	}
	if batch == nil {
		return nil, false, fmt.Errorf("%w: batch %s", ErrNotFound, batchNumber)
	}

	statuses := make([]string, len(batch.SerialNumbers))
	changed := len(batch.BatchStatus) != len(batch.SerialNumbers)
	for i, serial := range batch.SerialNumbers {
		previous := ""
		if i < len(batch.BatchStatus) {
			previous = batch.BatchStatus[i]
		}
		component, err := m.componentRepo.GetBySerial(serial)
		if err != nil {
			return nil, false, err
		}
		if component == nil {
			logger.Warnw("batch_repair_component_missing", "batch_number", batchNumber, "serial", serial)
			statuses[i] = previous
			continue
		}
		statuses[i] = component.StatusValue()
		if statuses[i] != previous {
			changed = true
		}
	}
	if !changed {
		return batch, false, nil
	}
	batch.BatchStatus = statuses
	if err := m.batchRepo.Save(batch); err != nil {
		return nil, false, err
	}
	logger.Infow("batch_status_repaired", "batch_number", batchNumber)
	return batch, true, nil
}
