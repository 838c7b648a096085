package repository

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppec-inventory/internal/constants"
	"github.com/ppec-inventory/internal/identifier"
	"github.com/ppec-inventory/internal/logger"
	"github.com/ppec-inventory/internal/metrics"

	"github.com/goccy/go-json"
)

// BatchIndexRepository 批次索引数据访问接口
type BatchIndexRepository interface {
	Load() ([]string, error)
	Append(batchNumber string) error
	Reconcile(reason string) ([]string, error)
}

// FileBatchIndexRepository 索引文件实现，索引与记录位于同一目录
type FileBatchIndexRepository struct {
	store    RecordStore
	filename string
}

// NewBatchIndexRepository 创建批次索引仓库
func NewBatchIndexRepository(store RecordStore, filename string) *FileBatchIndexRepository {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		filename = constants.DefaultIndexFilename
	}
	return &FileBatchIndexRepository{store: store, filename: filename}
}

// Path 索引文件完整路径
func (r *FileBatchIndexRepository) Path() string {
	return filepath.Join(r.store.Dir(), r.filename)
}

// Load 读取索引。文件缺失、为空列表或结构损坏时自动重建并返回重建结果，
// 只有存储错误会返回给调用方。
func (r *FileBatchIndexRepository) Load() ([]string, error) {
	path := r.Path()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Infow("batch_index_missing", "path", path)
			return r.Reconcile(constants.ReconcileReasonMissing)
		}
		return nil, storageErr("read", path, err)
	}

	ids, err := decodeBatchIndex(data)
	if err != nil {
		logger.Warnw("batch_index_corrupt", "path", path, "error", err)
		return r.Reconcile(constants.ReconcileReasonCorrupt)
	}
	if len(ids) == 0 {
		return r.Reconcile(constants.ReconcileReasonEmpty)
	}
	metrics.IndexSize.Set(float64(len(ids)))
	return ids, nil
}

// Append 在索引末尾追加批次号并原子写回。
// 批次记录先于索引落盘，若本次读取触发的重建已包含该批次号则不重复追加。
func (r *FileBatchIndexRepository) Append(batchNumber string) error {
	if err := identifier.ValidateBatchNumber(batchNumber); err != nil {
		return err
	}
	ids, err := r.Load()
	if err != nil {
		return err
	}
	for _, id := range ids {
		if id == batchNumber {
			logger.Debugw("batch_index_append_skipped", "batch_number", batchNumber)
			return nil
		}
	}
	ids = append(ids, batchNumber)
	if err := r.write(ids); err != nil {
		return err
	}
	metrics.IndexSize.Set(float64(len(ids)))
	return nil
}

func (r *FileBatchIndexRepository) write(ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encode batch index: %w", err)
	}
	return writeFileAtomic(r.Path(), data)
}

// decodeBatchIndex 按容器模式校验索引：外层为 JSON 数组，元素均为 12 位数字字符串
func decodeBatchIndex(data []byte) ([]string, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty payload", errIndexCorrupt)
	}
	if trimmed[0] != '[' || trimmed[len(trimmed)-1] != ']' {
		return nil, fmt.Errorf("%w: payload is not a list", errIndexCorrupt)
	}
	var ids []string
	if err := json.Unmarshal(trimmed, &ids); err != nil {
		return nil, fmt.Errorf("%w: %v", errIndexCorrupt, err)
	}
	for i, id := range ids {
		if err := identifier.ValidateBatchNumber(id); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", errIndexCorrupt, i, err)
		}
	}
	return ids, nil
}
