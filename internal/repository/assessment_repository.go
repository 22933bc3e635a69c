package repository

import (
	"edupath_backend/internal/model"

	"gorm.io/gorm"
)

type AssessmentRepository struct {
	DB *gorm.DB
}

func NewAssessmentRepository(db *gorm.DB) *AssessmentRepository {
	return &AssessmentRepository{DB: db}
}

func (r *AssessmentRepository) CreateQuestion(q *model.AssessmentQuestion) error {
	return r.DB.Create(q).Error
}

func (r *AssessmentRepository) FindQuestionByID(id uint) (*model.AssessmentQuestion, error) {
	var q model.AssessmentQuestion
	err := r.DB.First(&q, id).Error
	return &q, err
}

func (r *AssessmentRepository) ListQuestionsByModule(moduleID uint) ([]model.AssessmentQuestion, error) {
	var qs []model.AssessmentQuestion
	err := r.DB.Where("module_id = ?", moduleID).
		Order("`order` asc, created_at asc").
		Find(&qs).Error
	return qs, err
}

func (r *AssessmentRepository) FindQuestionsByIDs(ids []uint) ([]model.AssessmentQuestion, error) {
	var qs []model.AssessmentQuestion
	err := r.DB.Where("id IN ?", ids).Find(&qs).Error
	return qs, err
}

func (r *AssessmentRepository) ListQuestionsByModules(moduleIDs []uint) ([]model.AssessmentQuestion, error) {
	var qs []model.AssessmentQuestion
	err := r.DB.Where("module_id IN ?", moduleIDs).
		Order("`order` asc, created_at asc").
		Find(&qs).Error
	return qs, err
}

func (r *AssessmentRepository) UpdateQuestion(q *model.AssessmentQuestion) error {
	return r.DB.Save(q).Error
}

func (r *AssessmentRepository) DeleteQuestion(id uint) error {
	return r.DB.Delete(&model.AssessmentQuestion{}, id).Error
}
