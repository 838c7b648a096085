package models

import (
	"github.com/ppec-inventory/internal/constants"
)

// Batch 生产批次记录
type Batch struct {
	BatchNumber      string   `json:"batch_number" yaml:"batch_number"`           // 批次号 YYYYMMDD + 4 位序号
	ManufactureDate  string   `json:"manufacture_date" yaml:"manufacture_date"`   // 生产日期 YYYYMMDD
	ComponentType    string   `json:"component_type" yaml:"component_type"`       // 组件类型
	Size             string   `json:"size" yaml:"size"`                           // 规格（可为空）
	AmountComponents int      `json:"amount_components" yaml:"amount_components"` // 组件数量（创建后不可变）
	SerialNumbers    []string `json:"serial_numbers" yaml:"serial_numbers"`       // 组件序列号（按序号排列）
	BatchStatus      []string `json:"batch_status" yaml:"batch_status"`           // 组件状态缓存，与 SerialNumbers 按下标对应
	Location         string   `json:"location" yaml:"location"`                   // 库位
}

// SerialStatus 序列号与状态的有序对
type SerialStatus struct {
	Serial string `json:"serial"`
	Status string `json:"status"`
}

// BatchStatusValue 组合状态字符串 status-finish
func BatchStatusValue(status, finish string) string {
	return status + constants.BatchStatusSeparator + finish
}

// IsAllocated 批次是否已分配库位，defaultLocation 为未分配时的默认库位
func (b *Batch) IsAllocated(defaultLocation string) bool {
	if defaultLocation == "" {
		defaultLocation = constants.LocationUnallocated
	}
	return b.Location != defaultLocation
}

// IndexOfSerial 返回序列号在批次中的位置，不存在时返回 -1
func (b *Batch) IndexOfSerial(serial string) int {
	for i, s := range b.SerialNumbers {
		if s == serial {
			return i
		}
	}
	return -1
}

// SetComponentStatus 按序列号更新状态缓存，序列号不属于本批次时返回 false
func (b *Batch) SetComponentStatus(serial, status, finish string) bool {
	idx := b.IndexOfSerial(serial)
	if idx < 0 || idx >= len(b.BatchStatus) {
		return false
	}
	b.BatchStatus[idx] = BatchStatusValue(status, finish)
	return true
}

// StatusBySerial 返回按创建顺序排列的序列号→状态视图
func (b *Batch) StatusBySerial() []SerialStatus {
	items := make([]SerialStatus, 0, len(b.SerialNumbers))
	for i, serial := range b.SerialNumbers {
		status := ""
		if i < len(b.BatchStatus) {
			status = b.BatchStatus[i]
		}
		items = append(items, SerialStatus{Serial: serial, Status: status})
	}
	return items
}
