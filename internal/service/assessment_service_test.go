package service

import (
	"edupath_backend/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQuestionStore struct {
	questions []model.AssessmentQuestion
}

func (f *fakeQuestionStore) FindQuestionsByIDs(ids []uint) ([]model.AssessmentQuestion, error) {
	return filterByIDs(f.questions, ids, func(q model.AssessmentQuestion) uint { return q.ID }), nil
}

func (f *fakeQuestionStore) ListQuestionsByModules(moduleIDs []uint) ([]model.AssessmentQuestion, error) {
	return filterByIDs(f.questions, moduleIDs, func(q model.AssessmentQuestion) uint { return q.ModuleID }), nil
}

type fakeModuleLookup struct {
	modules []model.LearningModule
}

func (f *fakeModuleLookup) FindModulesByIDs(ids []uint) ([]model.LearningModule, error) {
	return filterByIDs(f.modules, ids, func(m model.LearningModule) uint { return m.ID }), nil
}

type fakeStatusWriter struct {
	upserts []model.ModuleStatusRecord
}

func (f *fakeStatusWriter) Upsert(rec *model.ModuleStatusRecord) error {
	f.upserts = append(f.upserts, *rec)
	return nil
}

func question(id, moduleID uint, answer string) model.AssessmentQuestion {
	return model.AssessmentQuestion{
		BaseModel: model.BaseModel{ID: id},
		ModuleID:  moduleID,
		Content:   "q",
		Answer:    answer,
	}
}

func newAssessmentService(qs *fakeQuestionStore, ml *fakeModuleLookup, sw *fakeStatusWriter) *AssessmentService {
	return NewAssessmentService(qs, ml, sw, testConfig())
}

// 阈值边界：5 题对 4 题刚好 80%，标为选修
func TestGradeSubmission_ThresholdBoundary(t *testing.T) {
	qs := &fakeQuestionStore{questions: []model.AssessmentQuestion{
		question(1, 100, "A"), question(2, 100, "B"), question(3, 100, "C"),
		question(4, 100, "D"), question(5, 100, "E"),
	}}
	ml := &fakeModuleLookup{modules: []model.LearningModule{mod(100, 10, "变量")}}
	sw := &fakeStatusWriter{}

	svc := newAssessmentService(qs, ml, sw)

	results, err := svc.GradeSubmission(7, SubmitAssessmentRequest{Answers: []AnswerInput{
		{QuestionID: 1, Answer: "A"},
		{QuestionID: 2, Answer: "B"},
		{QuestionID: 3, Answer: "C"},
		{QuestionID: 4, Answer: "D"},
		{QuestionID: 5, Answer: "wrong"},
	}})
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, 80, results[0].CorrectnessPercentage)
	assert.Equal(t, model.ModuleStatusOptional, results[0].Status)
	assert.Equal(t, 5, results[0].TotalQuestions)
	assert.Equal(t, 4, results[0].CorrectAnswers)

	require.Len(t, sw.upserts, 1)
	assert.Equal(t, uint(7), sw.upserts[0].UserID)
	assert.Equal(t, uint(100), sw.upserts[0].ModuleID)
	assert.Equal(t, model.ModuleStatusOptional, sw.upserts[0].Status)
}

// 79% 不达标：标为必修
func TestGradeSubmission_BelowThresholdIsMandatory(t *testing.T) {
	questions := make([]model.AssessmentQuestion, 0, 100)
	answers := make([]AnswerInput, 0, 100)
	for i := uint(1); i <= 100; i++ {
		questions = append(questions, question(i, 100, "yes"))
		given := "yes"
		if i > 79 {
			given = "no"
		}
		answers = append(answers, AnswerInput{QuestionID: i, Answer: given})
	}
	qs := &fakeQuestionStore{questions: questions}
	ml := &fakeModuleLookup{modules: []model.LearningModule{mod(100, 10, "变量")}}
	sw := &fakeStatusWriter{}

	svc := newAssessmentService(qs, ml, sw)

	results, err := svc.GradeSubmission(7, SubmitAssessmentRequest{Answers: answers})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 79, results[0].CorrectnessPercentage)
	assert.Equal(t, model.ModuleStatusMandatory, results[0].Status)
}

// 没答的题计入分母按错算
func TestGradeSubmission_UnansweredCountInDenominator(t *testing.T) {
	qs := &fakeQuestionStore{questions: []model.AssessmentQuestion{
		question(1, 100, "A"), question(2, 100, "B"),
		question(3, 100, "C"), question(4, 100, "D"),
	}}
	ml := &fakeModuleLookup{modules: []model.LearningModule{mod(100, 10, "变量")}}
	sw := &fakeStatusWriter{}

	svc := newAssessmentService(qs, ml, sw)

	// 只答了两题，都对：2/4 = 50%
	results, err := svc.GradeSubmission(7, SubmitAssessmentRequest{Answers: []AnswerInput{
		{QuestionID: 1, Answer: "A"},
		{QuestionID: 2, Answer: "B"},
	}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 50, results[0].CorrectnessPercentage)
	assert.Equal(t, 4, results[0].TotalQuestions)
	assert.Equal(t, model.ModuleStatusMandatory, results[0].Status)
}

// 不可评估模块整体跳过，不产生状态记录
func TestGradeSubmission_SkipsNonAssessableModules(t *testing.T) {
	static := mod(200, 10, "欢迎页")
	static.Assessable = false

	qs := &fakeQuestionStore{questions: []model.AssessmentQuestion{
		question(1, 100, "A"),
		question(2, 200, "B"),
	}}
	ml := &fakeModuleLookup{modules: []model.LearningModule{mod(100, 10, "变量"), static}}
	sw := &fakeStatusWriter{}

	svc := newAssessmentService(qs, ml, sw)

	results, err := svc.GradeSubmission(7, SubmitAssessmentRequest{Answers: []AnswerInput{
		{QuestionID: 1, Answer: "A"},
		{QuestionID: 2, Answer: "B"},
	}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, uint(100), results[0].ModuleID)

	require.Len(t, sw.upserts, 1)
	assert.Equal(t, uint(100), sw.upserts[0].ModuleID)
}

// 一次提交可以横跨多个模块，逐模块打分
func TestGradeSubmission_MultipleModules(t *testing.T) {
	qs := &fakeQuestionStore{questions: []model.AssessmentQuestion{
		question(1, 100, "A"), question(2, 100, "B"),
		question(3, 200, "C"),
	}}
	ml := &fakeModuleLookup{modules: []model.LearningModule{mod(100, 10, "变量"), mod(200, 10, "循环")}}
	sw := &fakeStatusWriter{}

	svc := newAssessmentService(qs, ml, sw)

	results, err := svc.GradeSubmission(7, SubmitAssessmentRequest{Answers: []AnswerInput{
		{QuestionID: 1, Answer: "A"},
		{QuestionID: 2, Answer: "wrong"},
		{QuestionID: 3, Answer: "C"},
	}})
	require.NoError(t, err)
	require.Len(t, results, 2)

	byModule := make(map[uint]ModuleGradeResult, len(results))
	for _, r := range results {
		byModule[r.ModuleID] = r
	}
	assert.Equal(t, 50, byModule[100].CorrectnessPercentage)
	assert.Equal(t, model.ModuleStatusMandatory, byModule[100].Status)
	assert.Equal(t, 100, byModule[200].CorrectnessPercentage)
	assert.Equal(t, model.ModuleStatusOptional, byModule[200].Status)
	assert.Len(t, sw.upserts, 2)
}

// 大小写与首尾空白不影响判分
func TestGradeSubmission_AnswerNormalization(t *testing.T) {
	qs := &fakeQuestionStore{questions: []model.AssessmentQuestion{
		question(1, 100, "Paris"),
	}}
	ml := &fakeModuleLookup{modules: []model.LearningModule{mod(100, 10, "地理")}}
	sw := &fakeStatusWriter{}

	svc := newAssessmentService(qs, ml, sw)

	results, err := svc.GradeSubmission(7, SubmitAssessmentRequest{Answers: []AnswerInput{
		{QuestionID: 1, Answer: "  paris "},
	}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 100, results[0].CorrectnessPercentage)
}

// 未知题目 ID 不参与任何模块
func TestGradeSubmission_UnknownQuestionsIgnored(t *testing.T) {
	qs := &fakeQuestionStore{}
	ml := &fakeModuleLookup{}
	sw := &fakeStatusWriter{}

	svc := newAssessmentService(qs, ml, sw)

	results, err := svc.GradeSubmission(7, SubmitAssessmentRequest{Answers: []AnswerInput{
		{QuestionID: 999, Answer: "A"},
	}})
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Empty(t, sw.upserts)
}
