package service

import (
	"edupath_backend/internal/config"
	"edupath_backend/internal/model"
	"strings"
)

type QuestionStore interface {
	FindQuestionsByIDs(ids []uint) ([]model.AssessmentQuestion, error)
	ListQuestionsByModules(moduleIDs []uint) ([]model.AssessmentQuestion, error)
}

type ModuleLookup interface {
	FindModulesByIDs(ids []uint) ([]model.LearningModule, error)
}

type StatusWriter interface {
	Upsert(rec *model.ModuleStatusRecord) error
}

type AssessmentService struct {
	Questions QuestionStore
	Modules   ModuleLookup
	Statuses  StatusWriter
	Cfg       *config.Config
}

func NewAssessmentService(questions QuestionStore, modules ModuleLookup, statuses StatusWriter, cfg *config.Config) *AssessmentService {
	return &AssessmentService{
		Questions: questions,
		Modules:   modules,
		Statuses:  statuses,
		Cfg:       cfg,
	}
}

type AnswerInput struct {
	QuestionID uint   `json:"questionId" binding:"required"`
	Answer     string `json:"answer"`
}

type SubmitAssessmentRequest struct {
	Answers []AnswerInput `json:"answers" binding:"required,min=1,dive"`
}

type ModuleGradeResult struct {
	ModuleID              uint   `json:"moduleId"`
	Status                string `json:"status"`
	CorrectnessPercentage int    `json:"correctnessPercentage"`
	TotalQuestions        int    `json:"totalQuestions"`
	CorrectAnswers        int    `json:"correctAnswers"`
}

// GradeSubmission 按模块打分并刷新每个 (用户, 模块) 的状态记录
//
// 分母是模块的全部题目：没答的题按 0 分计，从不剔除。
// 正确率达到掌握阈值的模块标为选修，否则必修。
// 不可评估的静态模块（assessable=false）整体跳过，不产生状态记录。
func (s *AssessmentService) GradeSubmission(userID uint, req SubmitAssessmentRequest) ([]ModuleGradeResult, error) {
	questionIDs := make([]uint, 0, len(req.Answers))
	answerByQuestion := make(map[uint]string, len(req.Answers))
	for _, a := range req.Answers {
		if _, ok := answerByQuestion[a.QuestionID]; !ok {
			questionIDs = append(questionIDs, a.QuestionID)
		}
		answerByQuestion[a.QuestionID] = a.Answer
	}

	answered, err := s.Questions.FindQuestionsByIDs(questionIDs)
	if err != nil {
		return nil, err
	}
	if len(answered) == 0 {
		return []ModuleGradeResult{}, nil
	}

	// 本次作答触达的模块集合
	moduleIDs := make([]uint, 0, len(answered))
	seen := make(map[uint]bool)
	for _, q := range answered {
		if !seen[q.ModuleID] {
			seen[q.ModuleID] = true
			moduleIDs = append(moduleIDs, q.ModuleID)
		}
	}

	modules, err := s.Modules.FindModulesByIDs(moduleIDs)
	if err != nil {
		return nil, err
	}
	assessableIDs := make([]uint, 0, len(modules))
	for _, m := range modules {
		if m.Assessable {
			assessableIDs = append(assessableIDs, m.ID)
		}
	}
	if len(assessableIDs) == 0 {
		return []ModuleGradeResult{}, nil
	}

	// 取每个触达模块的全部题目作为分母
	allQuestions, err := s.Questions.ListQuestionsByModules(assessableIDs)
	if err != nil {
		return nil, err
	}

	type tally struct {
		total   int
		correct int
	}
	tallies := make(map[uint]*tally, len(assessableIDs))
	order := make([]uint, 0, len(assessableIDs))
	for _, q := range allQuestions {
		t, ok := tallies[q.ModuleID]
		if !ok {
			t = &tally{}
			tallies[q.ModuleID] = t
			order = append(order, q.ModuleID)
		}
		t.total++
		if given, answered := answerByQuestion[q.ID]; answered && answersMatch(given, q.Answer) {
			t.correct++
		}
	}

	threshold := s.Cfg.Learning.MasteryThreshold
	results := make([]ModuleGradeResult, 0, len(order))
	for _, moduleID := range order {
		t := tallies[moduleID]
		if t.total == 0 {
			continue
		}
		pct := t.correct * 100 / t.total

		status := model.ModuleStatusMandatory
		if pct >= threshold {
			status = model.ModuleStatusOptional
		}

		rec := &model.ModuleStatusRecord{
			UserID:                userID,
			ModuleID:              moduleID,
			Status:                status,
			CorrectnessPercentage: pct,
		}
		if err := s.Statuses.Upsert(rec); err != nil {
			return nil, err
		}

		results = append(results, ModuleGradeResult{
			ModuleID:              moduleID,
			Status:                status,
			CorrectnessPercentage: pct,
			TotalQuestions:        t.total,
			CorrectAnswers:        t.correct,
		})
	}

	return results, nil
}

func answersMatch(given, expected string) bool {
	return strings.EqualFold(strings.TrimSpace(given), strings.TrimSpace(expected))
}
