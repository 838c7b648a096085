package repository

import (
	"time"

	"github.com/ppec-inventory/internal/identifier"
	"github.com/ppec-inventory/internal/logger"
	"github.com/ppec-inventory/internal/metrics"
)

// Reconcile 从记录目录重建索引：主干为 12 位无符号整数的记录文件视为批次记录。
// 结果保持目录列举顺序，无条件覆盖索引文件；没有批次时写入空列表。
func (r *FileBatchIndexRepository) Reconcile(reason string) ([]string, error) {
	started := time.Now()
	stems, err := r.store.ListStems()
	if err != nil {
		return nil, err
	}
	metrics.DirectoryScans.WithLabelValues("reconcile").Inc()

	ids := make([]string, 0, len(stems))
	for _, stem := range stems {
		if identifier.IsBatchStem(stem) {
			ids = append(ids, stem)
		}
	}
	if err := r.write(ids); err != nil {
		return nil, err
	}

	metrics.IndexReconcileCount.WithLabelValues(reason).Inc()
	metrics.IndexReconcileDuration.Observe(time.Since(started).Seconds())
	metrics.IndexSize.Set(float64(len(ids)))
	if len(ids) == 0 {
		logger.Infow("batch_index_reconciled_empty", "reason", reason)
		return ids, nil
	}
	logger.Infow("batch_index_reconciled", "reason", reason, "batches", len(ids))
	return ids, nil
}
