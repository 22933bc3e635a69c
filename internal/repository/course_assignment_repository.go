package repository

import (
	"edupath_backend/internal/model"

	"gorm.io/gorm"
)

type CourseAssignmentRepository struct {
	DB *gorm.DB
}

func NewCourseAssignmentRepository(db *gorm.DB) *CourseAssignmentRepository {
	return &CourseAssignmentRepository{DB: db}
}

func (r *CourseAssignmentRepository) Create(a *model.CourseAssignment) error {
	return r.DB.Create(a).Error
}

func (r *CourseAssignmentRepository) ListByUser(userID uint) ([]model.CourseAssignment, error) {
	var as []model.CourseAssignment
	err := r.DB.Where("user_id = ?", userID).Order("created_at asc").Find(&as).Error
	return as, err
}

func (r *CourseAssignmentRepository) ListByCourse(courseID uint) ([]model.CourseAssignment, error) {
	var as []model.CourseAssignment
	err := r.DB.Where("course_id = ?", courseID).Find(&as).Error
	return as, err
}

func (r *CourseAssignmentRepository) Delete(userID, courseID uint) error {
	return r.DB.Where("user_id = ? AND course_id = ?", userID, courseID).
		Delete(&model.CourseAssignment{}).Error
}
