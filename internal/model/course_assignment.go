package model

// CourseAssignment 用户与课程的多对多分配关系
// swagger:model CourseAssignment
type CourseAssignment struct {
	BaseModel
	UserID   uint `gorm:"uniqueIndex:uniq_user_course;not null;type:bigint unsigned" json:"userId"`
	CourseID uint `gorm:"uniqueIndex:uniq_user_course;not null;type:bigint unsigned" json:"courseId"`
}

func (CourseAssignment) TableName() string {
	return "course_assignments"
}
