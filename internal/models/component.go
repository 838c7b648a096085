package models

import (
	"github.com/ppec-inventory/internal/constants"
)

// Component 单个组件记录
type Component struct {
	ManufactureDate string `json:"manufacture_date" yaml:"manufacture_date"` // 生产日期 YYYYMMDD
	ComponentType   string `json:"component_type" yaml:"component_type"`     // 组件类型
	Serial          string `json:"serial" yaml:"serial"`                     // 序列号 <批次号>-<4 位序号>
	Size            string `json:"size" yaml:"size"`                         // 规格（可为空）
	Status          string `json:"status" yaml:"status"`                     // 生命周期状态
	Finish          string `json:"finish" yaml:"finish"`                     // 表面处理（设置后不可变）
}

// BatchNumber 组件所属批次号（序列号前 12 位）
func (c *Component) BatchNumber() string {
	if len(c.Serial) < constants.BatchNumberWidth {
		return ""
	}
	return c.Serial[:constants.BatchNumberWidth]
}

// IsFinished 组件是否已完成表面处理
func (c *Component) IsFinished() bool {
	return c.Finish != constants.FinishUnfinished
}

// StatusValue 组件的组合状态 status-finish
func (c *Component) StatusValue() string {
	return BatchStatusValue(c.Status, c.Finish)
}
