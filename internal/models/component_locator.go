package models

import (
	"time"
)

// ComponentLocator 组件二级索引表（序列号 → 记录文件）
type ComponentLocator struct {
	Serial        string    `gorm:"primarykey;type:varchar(17)" json:"serial"`           // 序列号
	BatchNumber   string    `gorm:"index;type:varchar(12);not null" json:"batch_number"` // 批次号
	ComponentType string    `gorm:"index:idx_locator_type_size;not null" json:"component_type"`
	Size          string    `gorm:"index:idx_locator_type_size" json:"size"`
	Finish        string    `gorm:"index;not null" json:"finish"`        // 表面处理
	FilePath      string    `gorm:"type:text;not null" json:"file_path"` // 记录文件名
	UpdatedAt     time.Time `gorm:"index" json:"updated_at"`             // 更新时间
}

// TableName 指定表名
func (ComponentLocator) TableName() string {
	return "component_locators"
}
