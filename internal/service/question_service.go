package service

import (
	"edupath_backend/internal/model"
	"edupath_backend/internal/repository"
	"edupath_backend/internal/util"
	"encoding/json"
	"errors"

	"gorm.io/gorm"
)

// QuestionService 教师端评估题编辑
type QuestionService struct {
	Repo       *repository.AssessmentRepository
	Curriculum *repository.CurriculumRepository
}

func NewQuestionService(repo *repository.AssessmentRepository, curriculum *repository.CurriculumRepository) *QuestionService {
	return &QuestionService{Repo: repo, Curriculum: curriculum}
}

type QuestionRequest struct {
	Content string          `json:"content" binding:"required"`
	Options json.RawMessage `json:"options"`
	Answer  string          `json:"answer" binding:"required"`
	Order   int             `json:"order"`
}

func (s *QuestionService) CreateQuestion(moduleID uint, req QuestionRequest) (*model.AssessmentQuestion, error) {
	module, err := s.Curriculum.FindModuleByID(moduleID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrModuleNotFound
	}
	if err != nil {
		return nil, err
	}
	// 静态模块不参与评估，不给挂题
	if !module.Assessable {
		return nil, util.ErrModuleNotGradable
	}

	q := &model.AssessmentQuestion{
		ModuleID: moduleID,
		Content:  req.Content,
		Options:  req.Options,
		Answer:   req.Answer,
		Order:    req.Order,
	}
	if err := s.Repo.CreateQuestion(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *QuestionService) ListQuestions(moduleID uint) ([]model.AssessmentQuestion, error) {
	return s.Repo.ListQuestionsByModule(moduleID)
}

func (s *QuestionService) UpdateQuestion(id uint, req QuestionRequest) (*model.AssessmentQuestion, error) {
	q, err := s.Repo.FindQuestionByID(id)
	if err != nil {
		return nil, err
	}
	q.Content = req.Content
	q.Options = req.Options
	q.Answer = req.Answer
	q.Order = req.Order
	if err := s.Repo.UpdateQuestion(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *QuestionService) DeleteQuestion(id uint) error {
	return s.Repo.DeleteQuestion(id)
}
