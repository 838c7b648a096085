package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ppec-inventory/internal/config"
	"github.com/ppec-inventory/internal/constants"
	"github.com/ppec-inventory/internal/identifier"
	"github.com/ppec-inventory/internal/logger"
	"github.com/ppec-inventory/internal/metrics"
	"github.com/ppec-inventory/internal/models"
	"github.com/ppec-inventory/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// InventoryService 批次与组件库存服务
type InventoryService struct {
	batchRepo     repository.BatchRepository
	componentRepo repository.ComponentRepository
	indexRepo     repository.BatchIndexRepository
	consistency   *ConsistencyManager
	catalog       []config.CatalogEntry
	locations     config.LocationsConfig
	validate      *validator.Validate
}

// NewInventoryService 创建库存服务
func NewInventoryService(cfg *config.Config, batchRepo repository.BatchRepository, componentRepo repository.ComponentRepository, indexRepo repository.BatchIndexRepository) *InventoryService {
	var catalog []config.CatalogEntry
	locations := config.LocationsConfig{Default: constants.LocationUnallocated}
	if cfg != nil {
		catalog = cfg.Catalog
		locations = cfg.Locations
		if strings.TrimSpace(locations.Default) == "" {
			locations.Default = constants.LocationUnallocated
		}
	}
	return &InventoryService{
		batchRepo:     batchRepo,
		componentRepo: componentRepo,
		indexRepo:     indexRepo,
		consistency:   NewConsistencyManager(batchRepo, componentRepo, locations.Default),
		catalog:       catalog,
		locations:     locations,
		validate:      inputValidator,
	}
}

// CreateBatchInput 创建批次输入
type CreateBatchInput struct {
	ComponentType string `validate:"required"`
	Size          string
	Quantity      int       `validate:"gte=1,lte=9999"`
	Today         time.Time // 零值表示当前时间
}

// LocatedComponent 附带所属批次库位的组件
type LocatedComponent struct {
	Component models.Component `json:"component"`
	Location  string           `json:"location"`
}

// SearchResult 按类型与规格查询的结果，按表面处理状态分组
type SearchResult struct {
	Unfinished []LocatedComponent `json:"unfinished"`
	Finished   []LocatedComponent `json:"finished"`
}

// ReindexResult 手动重建索引结果
type ReindexResult struct {
	Batches    []string `json:"batches"`
	Components int      `json:"components"`
}

// CreateBatch 生成批次号与组件序列号，先写组件记录，再写批次记录，最后追加索引
func (s *InventoryService) CreateBatch(input CreateBatchInput) (batch *models.Batch, components []models.Component, err error) {
	log := logger.SW("op_id", uuid.NewString(), "operation", "create_batch")
	defer func() { metrics.ObserveOperation("create_batch", err) }()

	input.ComponentType = strings.TrimSpace(input.ComponentType)
	input.Size = strings.TrimSpace(input.Size)
	if verr := s.validate.Struct(input); verr != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidInput, verr)
	}
	if verr := s.checkCatalog(input.ComponentType, input.Size); verr != nil {
		return nil, nil, verr
	}
	today := input.Today
	if today.IsZero() {
		today = time.Now()
	}

	batchNumber, err := s.nextBatchNumber(identifier.FormatDate(today))
	if err != nil {
		return nil, nil, err
	}
	serials, err := identifier.ComponentSerials(batchNumber, input.Quantity)
	if err != nil {
		return nil, nil, err
	}

	manufactureDate := batchNumber[:constants.DateWidth]
	components = make([]models.Component, 0, len(serials))
	statuses := make([]string, 0, len(serials))
	for _, serial := range serials {
		component := models.Component{
			ManufactureDate: manufactureDate,
			ComponentType:   input.ComponentType,
			Serial:          serial,
			Size:            input.Size,
			Status:          constants.ComponentStatusManufactured,
			Finish:          constants.FinishUnfinished,
		}
		components = append(components, component)
		statuses = append(statuses, component.StatusValue())
	}
	batch = &models.Batch{
		BatchNumber:      batchNumber,
		ManufactureDate:  manufactureDate,
		ComponentType:    input.ComponentType,
		Size:             input.Size,
		AmountComponents: input.Quantity,
		SerialNumbers:    serials,
		BatchStatus:      statuses,
		Location:         s.locations.Default,
	}

	if err = s.componentRepo.SaveAll(components); err != nil {
		log.Errorw("batch_components_save_failed", "batch_number", batchNumber, "error", err)
		return nil, nil, err
	}
	if err = s.batchRepo.Save(batch); err != nil {
		log.Errorw("batch_save_failed", "batch_number", batchNumber, "error", err)
		return nil, nil, err
	}
	if err = s.indexRepo.Append(batchNumber); err != nil {
		log.Errorw("batch_index_append_failed", "batch_number", batchNumber, "error", err)
		return nil, nil, err
	}
	log.Infow("batch_created",
		"batch_number", batchNumber,
		"component_type", input.ComponentType,
		"size", input.Size,
		"quantity", input.Quantity,
	)
	return batch, components, nil
}

// nextBatchNumber 以索引中最后一个批次号为基准生成新批次号。
// 索引结构合法但落后于目录时，跳过已存在记录的批次号，避免覆盖。
func (s *InventoryService) nextBatchNumber(today string) (string, error) {
	ids, err := s.indexRepo.Load()
	if err != nil {
		return "", err
	}
	last := ""
	if len(ids) > 0 {
		last = ids[len(ids)-1]
	}
	for {
		next, err := identifier.NextBatchNumber(today, last)
		if err != nil {
			return "", err
		}
		exists, err := s.batchRepo.Exists(next)
		if err != nil {
			return "", err
		}
		if !exists {
			return next, nil
		}
		logger.Warnw("batch_number_already_used", "batch_number", next)
		last = next
	}
}

func (s *InventoryService) checkCatalog(componentType, size string) error {
	if len(s.catalog) == 0 {
		return nil
	}
	for _, entry := range s.catalog {
		if entry.Type != componentType {
			continue
		}
		if len(entry.Sizes) == 0 {
			if size != "" {
				return fmt.Errorf("%w: %s has no sizes", ErrInvalidInput, componentType)
			}
			return nil
		}
		for _, allowed := range entry.Sizes {
			if allowed == size {
				return nil
			}
		}
		return fmt.Errorf("%w: unknown size %q for %s", ErrInvalidInput, size, componentType)
	}
	return fmt.Errorf("%w: unknown component type %q", ErrInvalidInput, componentType)
}

// ListBatches 按索引顺序返回全部批次，索引中记录缺失或损坏的条目会被跳过
func (s *InventoryService) ListBatches() ([]models.Batch, error) {
	ids, err := s.indexRepo.Load()
	if err != nil {
		return nil, err
	}
	batches := make([]models.Batch, 0, len(ids))
	for _, id := range ids {
		batch, err := s.batchRepo.GetByNumber(id)
		if err != nil {
			if errors.Is(err, repository.ErrRecordCorrupt) {
				logger.Warnw("batch_record_corrupt", "batch_number", id, "error", err)
				continue
			}
			return nil, err
		}
		if batch == nil {
			logger.Warnw("batch_record_missing", "batch_number", id)
			continue
		}
		batches = append(batches, *batch)
	}
	return batches, nil
}

// GetBatch 获取批次，不存在时返回 nil
func (s *InventoryService) GetBatch(batchNumber string) (*models.Batch, error) {
	return s.batchRepo.GetByNumber(strings.TrimSpace(batchNumber))
}

// GetComponent 获取组件，不存在时返回 nil
func (s *InventoryService) GetComponent(serial string) (*models.Component, error) {
	return s.componentRepo.GetBySerial(strings.TrimSpace(serial))
}

// ListBatchComponents 获取批次下全部组件记录
func (s *InventoryService) ListBatchComponents(batchNumber string) ([]models.Component, error) {
	batchNumber = strings.TrimSpace(batchNumber)
	batch, err := s.batchRepo.GetByNumber(batchNumber)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, fmt.Errorf("%w: batch %s", ErrNotFound, batchNumber)
	}
	return s.componentRepo.ListByBatch(batchNumber)
}

// Allocate 分配批次库位
func (s *InventoryService) Allocate(batchNumber, location string) (batch *models.Batch, err error) {
	log := logger.SW("op_id", uuid.NewString(), "operation", "allocate")
	defer func() { metrics.ObserveOperation("allocate", err) }()

	batchNumber = strings.TrimSpace(batchNumber)
	if err = identifier.ValidateBatchNumber(batchNumber); err != nil {
		return nil, err
	}
	location = strings.TrimSpace(location)
	if err = s.checkLocation(location); err != nil {
		return nil, err
	}
	batch, err = s.consistency.Allocate(batchNumber, location)
	if err != nil {
		log.Warnw("batch_allocate_rejected", "batch_number", batchNumber, "location", location, "error", err)
		return nil, err
	}
	log.Infow("batch_allocated", "batch_number", batchNumber, "location", location)
	return batch, nil
}

func (s *InventoryService) checkLocation(location string) error {
	if location == "" || location == s.locations.Default {
		return fmt.Errorf("%w: %q", ErrInvalidLocation, location)
	}
	if len(s.locations.Warehouses) == 0 {
		return nil
	}
	for _, warehouse := range s.locations.Warehouses {
		if warehouse == location {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrInvalidLocation, location)
}

// FinishComponent 为组件设置表面处理并同步批次状态
func (s *InventoryService) FinishComponent(serial, finish string) (component *models.Component, batch *models.Batch, err error) {
	log := logger.SW("op_id", uuid.NewString(), "operation", "finish_component")
	defer func() { metrics.ObserveOperation("finish_component", err) }()

	serial = strings.TrimSpace(serial)
	batchNumber, err := identifier.BatchNumberOf(serial)
	if err != nil {
		return nil, nil, err
	}
	if err = ValidateFinish(finish); err != nil {
		return nil, nil, err
	}
	component, batch, err = s.consistency.ApplyFinish(batchNumber, serial, finish)
	if err != nil {
		log.Warnw("component_finish_rejected", "serial", serial, "finish", finish, "error", err)
		return nil, nil, err
	}
	log.Infow("component_finished", "serial", serial, "finish", finish)
	return component, batch, nil
}

// SearchByTypeAndSize 按类型与规格查找组件，并附带所属批次库位
func (s *InventoryService) SearchByTypeAndSize(componentType, size string) (*SearchResult, error) {
	components, err := s.componentRepo.FindByTypeAndSize(strings.TrimSpace(componentType), strings.TrimSpace(size))
	if err != nil {
		return nil, err
	}
	result := &SearchResult{
		Unfinished: make([]LocatedComponent, 0),
		Finished:   make([]LocatedComponent, 0),
	}
	locations := make(map[string]string)
	for _, component := range components {
		batchNumber := component.BatchNumber()
		location, ok := locations[batchNumber]
		if !ok {
			batch, err := s.batchRepo.GetByNumber(batchNumber)
			if err != nil && !errors.Is(err, repository.ErrRecordCorrupt) {
				return nil, err
			}
			if batch != nil {
				location = batch.Location
			} else {
				logger.Warnw("component_batch_unavailable", "serial", component.Serial, "batch_number", batchNumber)
			}
			locations[batchNumber] = location
		}
		item := LocatedComponent{Component: component, Location: location}
		if component.IsFinished() {
			result.Finished = append(result.Finished, item)
		} else {
			result.Unfinished = append(result.Unfinished, item)
		}
	}
	return result, nil
}

// Reindex 手动从记录目录重建批次索引，withComponents 时同时重建组件二级索引
func (s *InventoryService) Reindex(withComponents bool) (result *ReindexResult, err error) {
	log := logger.SW("op_id", uuid.NewString(), "operation", "reindex")
	defer func() { metrics.ObserveOperation("reindex", err) }()

	ids, err := s.indexRepo.Reconcile(constants.ReconcileReasonManual)
	if err != nil {
		return nil, err
	}
	result = &ReindexResult{Batches: ids}
	if withComponents {
		count, err := s.componentRepo.RebuildLocator()
		if err != nil {
			return nil, err
		}
		result.Components = count
		log.Infow("component_locator_rebuilt", "components", count)
	}
	return result, nil
}

// RepairBatchStatus 依据组件记录修复批次状态缓存
func (s *InventoryService) RepairBatchStatus(batchNumber string) (batch *models.Batch, changed bool, err error) {
	defer func() { metrics.ObserveOperation("repair_batch_status", err) }()

	batchNumber = strings.TrimSpace(batchNumber)
	if err = identifier.ValidateBatchNumber(batchNumber); err != nil {
		return nil, false, err
	}
	return s.consistency.RepairBatchStatus(batchNumber)
}

// Catalog 返回配置的组件目录
func (s *InventoryService) Catalog() []config.CatalogEntry {
	result := make([]config.CatalogEntry, 0, len(s.catalog))
	for _, entry := range s.catalog {
		result = append(result, config.CatalogEntry{
			Type:  entry.Type,
			Sizes: append([]string(nil), entry.Sizes...),
		})
	}
	return result
}
