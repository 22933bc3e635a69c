package repository

import (
	"edupath_backend/internal/model"

	"gorm.io/gorm"
)

// CurriculumRepository 课程 → 学科 → 模块 → 小节 四级目录的读写入口
// 按 id 集合的查询全部带显式 IN 约束，调用方负责空集短路
type CurriculumRepository struct {
	DB *gorm.DB
}

func NewCurriculumRepository(db *gorm.DB) *CurriculumRepository {
	return &CurriculumRepository{DB: db}
}

// ---- Course ----

func (r *CurriculumRepository) CreateCourse(c *model.Course) error {
	return r.DB.Create(c).Error
}

func (r *CurriculumRepository) FindCourseByID(id uint) (*model.Course, error) {
	var c model.Course
	err := r.DB.First(&c, id).Error
	return &c, err
}

func (r *CurriculumRepository) FindCoursesByIDs(ids []uint) ([]model.Course, error) {
	var cs []model.Course
	err := r.DB.Where("id IN ?", ids).Order("created_at asc").Find(&cs).Error
	return cs, err
}

func (r *CurriculumRepository) ListCourses(page, limit int) ([]model.Course, int64, error) {
	var cs []model.Course
	var total int64
	query := r.DB.Model(&model.Course{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&cs).Error
	return cs, total, err
}

func (r *CurriculumRepository) UpdateCourse(c *model.Course) error {
	return r.DB.Save(c).Error
}

func (r *CurriculumRepository) DeleteCourse(id uint) error {
	return r.DB.Delete(&model.Course{}, id).Error
}

// ---- Subject ----

func (r *CurriculumRepository) CreateSubject(s *model.Subject) error {
	return r.DB.Create(s).Error
}

func (r *CurriculumRepository) FindSubjectByID(id uint) (*model.Subject, error) {
	var s model.Subject
	err := r.DB.First(&s, id).Error
	return &s, err
}

func (r *CurriculumRepository) FindSubjectsByCourseIDs(courseIDs []uint) ([]model.Subject, error) {
	var ss []model.Subject
	err := r.DB.Where("course_id IN ?", courseIDs).
		Order("order_index asc, created_at asc").
		Find(&ss).Error
	return ss, err
}

func (r *CurriculumRepository) FindSubjectsByIDs(ids []uint) ([]model.Subject, error) {
	var ss []model.Subject
	err := r.DB.Where("id IN ?", ids).
		Order("order_index asc, created_at asc").
		Find(&ss).Error
	return ss, err
}

func (r *CurriculumRepository) UpdateSubject(s *model.Subject) error {
	return r.DB.Save(s).Error
}

func (r *CurriculumRepository) DeleteSubject(id uint) error {
	return r.DB.Delete(&model.Subject{}, id).Error
}

// ---- Module ----

func (r *CurriculumRepository) CreateModule(m *model.LearningModule) error {
	return r.DB.Create(m).Error
}

func (r *CurriculumRepository) FindModuleByID(id uint) (*model.LearningModule, error) {
	var m model.LearningModule
	err := r.DB.First(&m, id).Error
	return &m, err
}

func (r *CurriculumRepository) FindModulesBySubjectIDs(subjectIDs []uint) ([]model.LearningModule, error) {
	var ms []model.LearningModule
	err := r.DB.Where("subject_id IN ?", subjectIDs).
		Order("order_index asc, created_at asc").
		Find(&ms).Error
	return ms, err
}

func (r *CurriculumRepository) FindModulesByIDs(ids []uint) ([]model.LearningModule, error) {
	var ms []model.LearningModule
	err := r.DB.Where("id IN ?", ids).
		Order("order_index asc, created_at asc").
		Find(&ms).Error
	return ms, err
}

func (r *CurriculumRepository) UpdateModule(m *model.LearningModule) error {
	return r.DB.Save(m).Error
}

func (r *CurriculumRepository) DeleteModule(id uint) error {
	return r.DB.Delete(&model.LearningModule{}, id).Error
}

// ---- Section ----

func (r *CurriculumRepository) CreateSection(s *model.Section) error {
	return r.DB.Create(s).Error
}

func (r *CurriculumRepository) FindSectionByID(id string) (*model.Section, error) {
	var s model.Section
	err := r.DB.Where("id = ?", id).First(&s).Error
	return &s, err
}

func (r *CurriculumRepository) FindSectionsByModuleIDs(moduleIDs []uint) ([]model.Section, error) {
	var ss []model.Section
	err := r.DB.Where("module_id IN ?", moduleIDs).
		Order("order_index asc, created_at asc").
		Find(&ss).Error
	return ss, err
}

func (r *CurriculumRepository) UpdateSection(s *model.Section) error {
	return r.DB.Save(s).Error
}

func (r *CurriculumRepository) DeleteSection(id string) error {
	return r.DB.Where("id = ?", id).Delete(&model.Section{}).Error
}
