package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry 进程内指标注册表，CLI 退出时可导出为 textfile
var Registry = prometheus.NewRegistry()

var IndexReconcileCount = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "inventory",
	Subsystem: "batch_index",
	Name:      "reconcile_total",
	Help:      "Batch index rebuilds from the record directory, by trigger reason.",
}, []string{"reason"})

var IndexReconcileDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
	Namespace: "inventory",
	Subsystem: "batch_index",
	Name:      "reconcile_duration_seconds",
	Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
})

var IndexSize = prometheus.NewGauge(prometheus.GaugeOpts{
	Namespace: "inventory",
	Subsystem: "batch_index",
	Name:      "entries",
	Help:      "Batch identifiers in the index after the last load or rebuild.",
})

var RecordWrites = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "inventory",
	Subsystem: "records",
	Name:      "writes_total",
}, []string{"kind"})

var DirectoryScans = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "inventory",
	Subsystem: "records",
	Name:      "directory_scans_total",
}, []string{"purpose"})

var Operations = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "inventory",
	Subsystem: "service",
	Name:      "operations_total",
}, []string{"operation", "result"})

func init() {
	Registry.MustRegister(
		IndexReconcileCount,
		IndexReconcileDuration,
		IndexSize,
		RecordWrites,
		DirectoryScans,
		Operations,
	)
}

// ObserveOperation 记录一次服务操作结果
func ObserveOperation(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	Operations.WithLabelValues(operation, result).Inc()
}

// WriteTextfile 以 node_exporter textfile 格式导出全部指标
func WriteTextfile(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, Registry)
}
