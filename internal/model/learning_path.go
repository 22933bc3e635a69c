package model

import "encoding/json"

// UserLearningPath 每个用户一行，保存最近一次构建的学习路径树
// 首次构建时插入，refresh 时原地覆盖，从不追加
// swagger:model UserLearningPath
type UserLearningPath struct {
	BaseModel
	UserID   uint            `gorm:"uniqueIndex;not null;type:bigint unsigned" json:"userId"`
	Path     json.RawMessage `gorm:"type:json" json:"path"`
	Required bool            `gorm:"default:true" json:"required"`
}

func (UserLearningPath) TableName() string {
	return "user_learning_paths"
}
