package model

// Section 类型
const (
	SectionKindLecture  = "lecture"
	SectionKindQuiz     = "quiz"
	SectionKindPractice = "practice"
	SectionKindStatic   = "static" // 欢迎页/FAQ 等静态内容，不参与评估
)

// swagger:model Course
type Course struct {
	BaseModel
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	CreatorID   uint   `gorm:"index;type:bigint unsigned" json:"creatorId"`
}

func (Course) TableName() string {
	return "courses"
}

// swagger:model Subject
type Subject struct {
	BaseModel
	Title      string `gorm:"size:255;not null" json:"title"`
	CourseID   uint   `gorm:"index;not null;type:bigint unsigned" json:"courseId"`
	OrderIndex int    `gorm:"default:0" json:"orderIndex"`
}

func (Subject) TableName() string {
	return "subjects"
}

// swagger:model LearningModule
type LearningModule struct {
	BaseModel
	Title      string `gorm:"size:255;not null" json:"title"`
	SubjectID  uint   `gorm:"index;not null;type:bigint unsigned" json:"subjectId"`
	OrderIndex int    `gorm:"default:0" json:"orderIndex"`
	Assessable bool   `gorm:"default:true" json:"assessable"` // false: 静态模块，不产生状态记录
}

func (LearningModule) TableName() string {
	return "learning_modules"
}

// swagger:model Section
type Section struct {
	UUIDBase
	Title         string  `gorm:"size:255;not null" json:"title"`
	ModuleID      uint    `gorm:"index;not null;type:bigint unsigned" json:"moduleId"`
	Kind          string  `gorm:"size:20;default:'lecture'" json:"kind"` // lecture/quiz/practice/static
	OrderIndex    int     `gorm:"default:0" json:"orderIndex"`
	Content       string  `gorm:"type:longtext" json:"content"`
	VideoURL      string  `gorm:"size:255" json:"videoUrl,omitempty"`
	VideoDuration float64 `gorm:"default:0" json:"videoDuration,omitempty"` // 秒
}

func (Section) TableName() string {
	return "sections"
}
