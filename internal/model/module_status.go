package model

import "time"

const (
	ModuleStatusMandatory = "mandatory" // 正确率低于掌握阈值，需要学习
	ModuleStatusOptional  = "optional"  // 已达到掌握阈值，可跳过
)

// ModuleStatusRecord 每个 (用户, 模块) 一条记录，记录必修/选修分类与正确率
// swagger:model ModuleStatusRecord
type ModuleStatusRecord struct {
	BaseModel
	UserID                uint      `gorm:"uniqueIndex:uniq_user_module;not null;type:bigint unsigned" json:"userId"`
	ModuleID              uint      `gorm:"uniqueIndex:uniq_user_module;not null;type:bigint unsigned" json:"moduleId"`
	Status                string    `gorm:"size:20;not null" json:"status"` // mandatory / optional
	CorrectnessPercentage int       `gorm:"default:0" json:"correctnessPercentage"`
	LastUpdated           time.Time `json:"lastUpdated"`
}

func (ModuleStatusRecord) TableName() string {
	return "module_status_records"
}
