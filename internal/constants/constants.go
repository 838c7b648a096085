package constants

// 组件生命周期状态
const (
	ComponentStatusManufactured = "Manufactured"
)

// 表面处理常量
const (
	FinishUnfinished  = "Unfinished"
	FinishPolished    = "Polished"
	FinishPaintPrefix = "Paint:"
)

// 表面处理选项（界面层输入）
const (
	FinishChoicePolished = "polished"
	FinishChoicePainted  = "painted"
)

// 批次状态分隔符：status + "-" + finish
const BatchStatusSeparator = "-"

// 库位常量
const (
	LocationUnallocated = "Factory Floor - Warehouse Not Allocated"
)

// 标识符宽度
const (
	DateWidth          = 8
	SequenceWidth      = 4
	OrdinalWidth       = 4
	BatchNumberWidth   = DateWidth + SequenceWidth
	SerialWidth        = BatchNumberWidth + 1 + OrdinalWidth
	SerialSeparator    = "-"
	MaxSequence        = 9999
	MaxBatchComponents = 9999
)

// 记录格式
const (
	RecordFormatJSON = "json"
	RecordFormatYAML = "yaml"
)

// 记录扩展名
const (
	RecordExtJSON = ".json"
	RecordExtYAML = ".yaml"
)

// 默认索引文件名
const DefaultIndexFilename = "index.json"

// 索引重建原因
const (
	ReconcileReasonMissing = "missing"
	ReconcileReasonEmpty   = "empty"
	ReconcileReasonCorrupt = "corrupt"
	ReconcileReasonManual  = "manual"
)

// 日期格式
const DateLayout = "20060102"
