package service

import (
	"context"
	"edupath_backend/internal/config"
	"edupath_backend/internal/model"
	"edupath_backend/internal/util"
	"edupath_backend/pkg/logger"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 构建器只依赖窄接口，测试用假实现替换，不走全局单例

type AssignmentStore interface {
	ListByUser(userID uint) ([]model.CourseAssignment, error)
}

type CurriculumStore interface {
	FindCoursesByIDs(ids []uint) ([]model.Course, error)
	FindSubjectsByCourseIDs(courseIDs []uint) ([]model.Subject, error)
	FindSubjectsByIDs(ids []uint) ([]model.Subject, error)
	FindModulesBySubjectIDs(subjectIDs []uint) ([]model.LearningModule, error)
	FindModulesByIDs(ids []uint) ([]model.LearningModule, error)
	FindSectionsByModuleIDs(moduleIDs []uint) ([]model.Section, error)
}

type ModuleStatusStore interface {
	ListByUser(userID uint) ([]model.ModuleStatusRecord, error)
	FindByUserAndModules(userID uint, moduleIDs []uint) ([]model.ModuleStatusRecord, error)
}

type PathStore interface {
	FindByUserID(userID uint) (*model.UserLearningPath, error)
	Insert(p *model.UserLearningPath) error
	Update(p *model.UserLearningPath) error
}

type LearningPathService struct {
	Assignments AssignmentStore
	Curriculum  CurriculumStore
	Statuses    ModuleStatusStore
	Paths       PathStore
	RDB         *redis.Client
	Cfg         *config.Config
}

func NewLearningPathService(
	assignments AssignmentStore,
	curriculum CurriculumStore,
	statuses ModuleStatusStore,
	paths PathStore,
	rdb *redis.Client,
	cfg *config.Config,
) *LearningPathService {
	return &LearningPathService{
		Assignments: assignments,
		Curriculum:  curriculum,
		Statuses:    statuses,
		Paths:       paths,
		RDB:         rdb,
		Cfg:         cfg,
	}
}

// 路径树节点。模块无状态记录时 status/lastUpdated 为 null，正确率为 0

type SectionNode struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	ModuleID   uint   `json:"moduleId"`
	Kind       string `json:"kind"`
	OrderIndex int    `json:"orderIndex"`
}

type ModuleNode struct {
	ID                    uint          `json:"id"`
	Title                 string        `json:"title"`
	SubjectID             uint          `json:"subjectId"`
	Status                *string       `json:"status"`
	CorrectnessPercentage int           `json:"correctnessPercentage"`
	LastUpdated           *time.Time    `json:"lastUpdated"`
	Sections              []SectionNode `json:"sections"`
}

type SubjectNode struct {
	ID       uint         `json:"id"`
	Title    string       `json:"title"`
	CourseID uint         `json:"courseId"`
	Modules  []ModuleNode `json:"modules"`
}

type CourseNode struct {
	ID          uint          `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Subjects    []SubjectNode `json:"subjects"`
}

type PathPayload struct {
	Courses []CourseNode `json:"courses"`
}

// BuildLearningPath 把用户的课程分配与各模块评估表现组装成四级状态树
//
// 候选课程集：有分配记录时取分配的课程；没有任何分配时退回从该用户的
// 模块状态记录反推（模块 → 学科 → 课程），两种来源从不合并。
// 任一阶段读失败整体中止并返回带阶段标记的错误，从不返回部分树。
func (s *LearningPathService) BuildLearningPath(userID uint) (*PathPayload, error) {
	courseIDs, err := s.candidateCourseIDs(userID)
	if err != nil {
		return nil, err
	}

	// 没有分配也没有评估记录：返回空树而不是错误
	if len(courseIDs) == 0 {
		return &PathPayload{Courses: []CourseNode{}}, nil
	}

	courses, err := s.Curriculum.FindCoursesByIDs(courseIDs)
	if err != nil {
		return nil, util.NewBuildStageError(util.StageCourses, len(courseIDs), err)
	}
	if len(courses) == 0 {
		return &PathPayload{Courses: []CourseNode{}}, nil
	}

	fetchedCourseIDs := make([]uint, len(courses))
	for i, c := range courses {
		fetchedCourseIDs[i] = c.ID
	}

	subjects, err := s.Curriculum.FindSubjectsByCourseIDs(fetchedCourseIDs)
	if err != nil {
		return nil, util.NewBuildStageError(util.StageSubjects, len(fetchedCourseIDs), err)
	}

	var modules []model.LearningModule
	if len(subjects) > 0 {
		subjectIDs := make([]uint, len(subjects))
		for i, sub := range subjects {
			subjectIDs[i] = sub.ID
		}
		modules, err = s.Curriculum.FindModulesBySubjectIDs(subjectIDs)
		if err != nil {
			return nil, util.NewBuildStageError(util.StageModules, len(subjectIDs), err)
		}
	}

	var sections []model.Section
	var statuses []model.ModuleStatusRecord
	if len(modules) > 0 {
		moduleIDs := make([]uint, len(modules))
		for i, m := range modules {
			moduleIDs[i] = m.ID
		}
		sections, err = s.Curriculum.FindSectionsByModuleIDs(moduleIDs)
		if err != nil {
			return nil, util.NewBuildStageError(util.StageSections, len(moduleIDs), err)
		}
		statuses, err = s.Statuses.FindByUserAndModules(userID, moduleIDs)
		if err != nil {
			return nil, util.NewBuildStageError(util.StageStatuses, len(moduleIDs), err)
		}
	}

	return assemblePath(courses, subjects, modules, sections, statuses), nil
}

// candidateCourseIDs 决定候选课程集及其来源
func (s *LearningPathService) candidateCourseIDs(userID uint) ([]uint, error) {
	assignments, err := s.Assignments.ListByUser(userID)
	if err != nil {
		return nil, util.NewBuildStageError(util.StageAssignments, 1, err)
	}

	if len(assignments) > 0 {
		ids := make([]uint, 0, len(assignments))
		seen := make(map[uint]bool)
		for _, a := range assignments {
			if !seen[a.CourseID] {
				seen[a.CourseID] = true
				ids = append(ids, a.CourseID)
			}
		}
		return ids, nil
	}

	// 降级路径：用户做过评估但还没有正式分配课程
	records, err := s.Statuses.ListByUser(userID)
	if err != nil {
		return nil, util.NewBuildStageError(util.StageStatuses, 1, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	moduleIDs := make([]uint, 0, len(records))
	seenModule := make(map[uint]bool)
	for _, r := range records {
		if !seenModule[r.ModuleID] {
			seenModule[r.ModuleID] = true
			moduleIDs = append(moduleIDs, r.ModuleID)
		}
	}

	modules, err := s.Curriculum.FindModulesByIDs(moduleIDs)
	if err != nil {
		return nil, util.NewBuildStageError(util.StageModules, len(moduleIDs), err)
	}
	if len(modules) == 0 {
		return nil, nil
	}

	subjectIDs := make([]uint, 0, len(modules))
	seenSubject := make(map[uint]bool)
	for _, m := range modules {
		if !seenSubject[m.SubjectID] {
			seenSubject[m.SubjectID] = true
			subjectIDs = append(subjectIDs, m.SubjectID)
		}
	}

	subjects, err := s.Curriculum.FindSubjectsByIDs(subjectIDs)
	if err != nil {
		return nil, util.NewBuildStageError(util.StageSubjects, len(subjectIDs), err)
	}

	courseIDs := make([]uint, 0, len(subjects))
	seenCourse := make(map[uint]bool)
	for _, sub := range subjects {
		if !seenCourse[sub.CourseID] {
			seenCourse[sub.CourseID] = true
			courseIDs = append(courseIDs, sub.CourseID)
		}
	}
	return courseIDs, nil
}

// assemblePath 按仓储返回顺序组装，构建器本身不再排序
func assemblePath(
	courses []model.Course,
	subjects []model.Subject,
	modules []model.LearningModule,
	sections []model.Section,
	statuses []model.ModuleStatusRecord,
) *PathPayload {
	statusByModule := make(map[uint]model.ModuleStatusRecord, len(statuses))
	for _, rec := range statuses {
		statusByModule[rec.ModuleID] = rec
	}

	courseNodes := make([]CourseNode, len(courses))
	courseIndex := make(map[uint]int, len(courses))
	for i, c := range courses {
		courseNodes[i] = CourseNode{
			ID:          c.ID,
			Title:       c.Title,
			Description: c.Description,
			Subjects:    []SubjectNode{},
		}
		courseIndex[c.ID] = i
	}

	subjectIndex := make(map[uint]int, len(subjects))
	subjectNodes := make([]SubjectNode, 0, len(subjects))
	for _, sub := range subjects {
		// 所属课程不在本次树里的学科直接丢弃，保证无孤儿节点
		if _, ok := courseIndex[sub.CourseID]; !ok {
			continue
		}
		subjectIndex[sub.ID] = len(subjectNodes)
		subjectNodes = append(subjectNodes, SubjectNode{
			ID:       sub.ID,
			Title:    sub.Title,
			CourseID: sub.CourseID,
			Modules:  []ModuleNode{},
		})
	}

	moduleIndex := make(map[uint]int, len(modules))
	moduleNodes := make([]ModuleNode, 0, len(modules))
	for _, m := range modules {
		if _, ok := subjectIndex[m.SubjectID]; !ok {
			continue
		}
		node := ModuleNode{
			ID:        m.ID,
			Title:     m.Title,
			SubjectID: m.SubjectID,
			Sections:  []SectionNode{},
		}
		if rec, ok := statusByModule[m.ID]; ok {
			status := rec.Status
			lastUpdated := rec.LastUpdated
			node.Status = &status
			node.CorrectnessPercentage = rec.CorrectnessPercentage
			node.LastUpdated = &lastUpdated
		}
		moduleIndex[m.ID] = len(moduleNodes)
		moduleNodes = append(moduleNodes, node)
	}

	for _, sec := range sections {
		idx, ok := moduleIndex[sec.ModuleID]
		if !ok {
			continue
		}
		moduleNodes[idx].Sections = append(moduleNodes[idx].Sections, SectionNode{
			ID:         sec.ID,
			Title:      sec.Title,
			ModuleID:   sec.ModuleID,
			Kind:       sec.Kind,
			OrderIndex: sec.OrderIndex,
		})
	}

	for _, mn := range moduleNodes {
		idx := subjectIndex[mn.SubjectID]
		subjectNodes[idx].Modules = append(subjectNodes[idx].Modules, mn)
	}
	for _, sn := range subjectNodes {
		idx := courseIndex[sn.CourseID]
		courseNodes[idx].Subjects = append(courseNodes[idx].Subjects, sn)
	}

	return &PathPayload{Courses: courseNodes}
}

// GeneratePath 构建一次后复用：没有 refresh 时已有行原样返回；
// refresh 时重建并原地覆盖；首次构建的唯一键竞态以回读告终，不向上抛
func (s *LearningPathService) GeneratePath(userID uint, refresh bool) (*model.UserLearningPath, bool, error) {
	if !refresh {
		existing, err := s.Paths.FindByUserID(userID)
		if err == nil {
			return existing, false, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, fmt.Errorf("read learning path row: %w", err)
		}
	}

	payload, err := s.BuildLearningPath(userID)
	if err != nil {
		return nil, false, err
	}

	pathJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, false, fmt.Errorf("encode learning path: %w", err)
	}

	if refresh {
		existing, err := s.Paths.FindByUserID(userID)
		if err == nil {
			existing.Path = pathJSON
			existing.Required = true
			if err := s.Paths.Update(existing); err != nil {
				return nil, false, fmt.Errorf("update learning path row: %w", err)
			}
			s.cachePath(existing)
			return existing, false, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, fmt.Errorf("read learning path row: %w", err)
		}
		// refresh 请求但行不存在，按首次构建处理
	}

	row := &model.UserLearningPath{
		UserID:   userID,
		Path:     pathJSON,
		Required: true,
	}
	if err := s.Paths.Insert(row); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// 并发首次构建：输者回读赢者的行
			winner, rerr := s.Paths.FindByUserID(userID)
			if rerr != nil {
				return nil, false, fmt.Errorf("re-read learning path row after conflict: %w", rerr)
			}
			return winner, false, nil
		}
		return nil, false, fmt.Errorf("insert learning path row: %w", err)
	}
	s.cachePath(row)
	return row, true, nil
}

// GetPath 只读查询，优先命中 Redis
func (s *LearningPathService) GetPath(userID uint) (*model.UserLearningPath, error) {
	if cached := s.cachedPath(userID); cached != nil {
		return cached, nil
	}

	p, err := s.Paths.FindByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrPathNotFound
		}
		return nil, err
	}
	s.cachePath(p)
	return p, nil
}

func pathCacheKey(userID uint) string {
	return fmt.Sprintf("learning_path:user:%d", userID)
}

func (s *LearningPathService) cachePath(p *model.UserLearningPath) {
	if s.RDB == nil {
		return
	}
	data, err := json.Marshal(p)
	if err != nil {
		return
	}
	ttl := time.Duration(s.Cfg.Learning.PathCacheTTL) * time.Minute
	if err := s.RDB.Set(context.Background(), pathCacheKey(p.UserID), data, ttl).Err(); err != nil {
		logger.Log.Warn("cache learning path failed", zap.Uint("user_id", p.UserID), zap.Error(err))
	}
}

func (s *LearningPathService) cachedPath(userID uint) *model.UserLearningPath {
	if s.RDB == nil {
		return nil
	}
	data, err := s.RDB.Get(context.Background(), pathCacheKey(userID)).Bytes()
	if err != nil {
		return nil
	}
	var p model.UserLearningPath
	if err := json.Unmarshal(data, &p); err != nil {
		return nil
	}
	return &p
}
