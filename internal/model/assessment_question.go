package model

import "encoding/json"

// AssessmentQuestion 模块评估题，评分结果驱动模块必修/选修分类
// swagger:model AssessmentQuestion
type AssessmentQuestion struct {
	BaseModel
	ModuleID uint            `gorm:"index;not null;type:bigint unsigned" json:"moduleId"`
	Content  string          `gorm:"type:text;not null" json:"content"`
	Options  json.RawMessage `gorm:"type:json" json:"options,omitempty"`
	Answer   string          `gorm:"type:text" json:"-"`
	Order    int             `gorm:"default:0" json:"order"`
}

func (AssessmentQuestion) TableName() string {
	return "assessment_questions"
}
