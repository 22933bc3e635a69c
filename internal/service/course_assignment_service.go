package service

import (
	"edupath_backend/internal/model"
	"edupath_backend/internal/repository"
	"edupath_backend/internal/util"
	"errors"

	"gorm.io/gorm"
)

// CourseAssignmentService 管理员把课程分配给学员
type CourseAssignmentService struct {
	Repo       *repository.CourseAssignmentRepository
	Curriculum *repository.CurriculumRepository
	UserRepo   *repository.UserRepository
}

func NewCourseAssignmentService(
	repo *repository.CourseAssignmentRepository,
	curriculum *repository.CurriculumRepository,
	userRepo *repository.UserRepository,
) *CourseAssignmentService {
	return &CourseAssignmentService{Repo: repo, Curriculum: curriculum, UserRepo: userRepo}
}

func (s *CourseAssignmentService) Assign(userID, courseID uint) (*model.CourseAssignment, error) {
	if _, err := s.UserRepo.FindByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}
	if _, err := s.Curriculum.FindCourseByID(courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	a := &model.CourseAssignment{UserID: userID, CourseID: courseID}
	if err := s.Repo.Create(a); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, util.ErrAlreadyAssigned
		}
		return nil, err
	}
	return a, nil
}

func (s *CourseAssignmentService) ListForUser(userID uint) ([]model.CourseAssignment, error) {
	return s.Repo.ListByUser(userID)
}

func (s *CourseAssignmentService) Remove(userID, courseID uint) error {
	return s.Repo.Delete(userID, courseID)
}
