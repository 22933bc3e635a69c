package service

import (
	"edupath_backend/internal/config"
	"edupath_backend/internal/model"
	"edupath_backend/internal/util"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ---- 假仓储 ----

type fakeAssignmentStore struct {
	assignments []model.CourseAssignment
	err         error
}

func (f *fakeAssignmentStore) ListByUser(userID uint) ([]model.CourseAssignment, error) {
	return f.assignments, f.err
}

type fakeCurriculumStore struct {
	courses  []model.Course
	subjects []model.Subject
	modules  []model.LearningModule
	sections []model.Section

	coursesErr  error
	subjectsErr error
	modulesErr  error
	sectionsErr error

	coursesCalledWith  []uint
	subjectsCalledWith []uint
	modulesCalledWith  []uint
	sectionsCalledWith []uint
}

func filterByIDs[T any](items []T, ids []uint, id func(T) uint) []T {
	want := make(map[uint]bool, len(ids))
	for _, v := range ids {
		want[v] = true
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		if want[id(it)] {
			out = append(out, it)
		}
	}
	return out
}

func (f *fakeCurriculumStore) FindCoursesByIDs(ids []uint) ([]model.Course, error) {
	f.coursesCalledWith = ids
	if f.coursesErr != nil {
		return nil, f.coursesErr
	}
	return filterByIDs(f.courses, ids, func(c model.Course) uint { return c.ID }), nil
}

func (f *fakeCurriculumStore) FindSubjectsByCourseIDs(courseIDs []uint) ([]model.Subject, error) {
	f.subjectsCalledWith = courseIDs
	if f.subjectsErr != nil {
		return nil, f.subjectsErr
	}
	return filterByIDs(f.subjects, courseIDs, func(s model.Subject) uint { return s.CourseID }), nil
}

func (f *fakeCurriculumStore) FindSubjectsByIDs(ids []uint) ([]model.Subject, error) {
	if f.subjectsErr != nil {
		return nil, f.subjectsErr
	}
	return filterByIDs(f.subjects, ids, func(s model.Subject) uint { return s.ID }), nil
}

func (f *fakeCurriculumStore) FindModulesBySubjectIDs(subjectIDs []uint) ([]model.LearningModule, error) {
	f.modulesCalledWith = subjectIDs
	if f.modulesErr != nil {
		return nil, f.modulesErr
	}
	return filterByIDs(f.modules, subjectIDs, func(m model.LearningModule) uint { return m.SubjectID }), nil
}

func (f *fakeCurriculumStore) FindModulesByIDs(ids []uint) ([]model.LearningModule, error) {
	if f.modulesErr != nil {
		return nil, f.modulesErr
	}
	return filterByIDs(f.modules, ids, func(m model.LearningModule) uint { return m.ID }), nil
}

func (f *fakeCurriculumStore) FindSectionsByModuleIDs(moduleIDs []uint) ([]model.Section, error) {
	f.sectionsCalledWith = moduleIDs
	if f.sectionsErr != nil {
		return nil, f.sectionsErr
	}
	return filterByIDs(f.sections, moduleIDs, func(s model.Section) uint { return s.ModuleID }), nil
}

// 不按条件裁剪的课程仓储：无论请求哪些 ID 都返回底层表全部行，
// 用来制造外键指向树外节点的脏数据
type leakyCurriculumStore struct {
	fakeCurriculumStore
}

func (f *leakyCurriculumStore) FindSubjectsByCourseIDs([]uint) ([]model.Subject, error) {
	return f.subjects, nil
}

func (f *leakyCurriculumStore) FindModulesBySubjectIDs([]uint) ([]model.LearningModule, error) {
	return f.modules, nil
}

func (f *leakyCurriculumStore) FindSectionsByModuleIDs([]uint) ([]model.Section, error) {
	return f.sections, nil
}

type fakeStatusStore struct {
	records []model.ModuleStatusRecord
	err     error
}

func (f *fakeStatusStore) ListByUser(userID uint) ([]model.ModuleStatusRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]model.ModuleStatusRecord, 0)
	for _, r := range f.records {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStatusStore) FindByUserAndModules(userID uint, moduleIDs []uint) ([]model.ModuleStatusRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	want := make(map[uint]bool, len(moduleIDs))
	for _, id := range moduleIDs {
		want[id] = true
	}
	out := make([]model.ModuleStatusRecord, 0)
	for _, r := range f.records {
		if r.UserID == userID && want[r.ModuleID] {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakePathStore struct {
	rows        map[uint]*model.UserLearningPath
	insertErr   error
	findErrOnce error
	inserts     int
	updates     int
	nextID      uint
}

func newFakePathStore() *fakePathStore {
	return &fakePathStore{rows: make(map[uint]*model.UserLearningPath), nextID: 1}
}

func (f *fakePathStore) FindByUserID(userID uint) (*model.UserLearningPath, error) {
	if f.findErrOnce != nil {
		err := f.findErrOnce
		f.findErrOnce = nil
		return nil, err
	}
	row, ok := f.rows[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *row
	return &cp, nil
}

func (f *fakePathStore) Insert(p *model.UserLearningPath) error {
	f.inserts++
	if f.insertErr != nil {
		return f.insertErr
	}
	if _, ok := f.rows[p.UserID]; ok {
		return gorm.ErrDuplicatedKey
	}
	p.ID = f.nextID
	f.nextID++
	cp := *p
	f.rows[p.UserID] = &cp
	return nil
}

func (f *fakePathStore) Update(p *model.UserLearningPath) error {
	f.updates++
	cp := *p
	f.rows[p.UserID] = &cp
	return nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Learning.MasteryThreshold = 80
	cfg.Learning.PathCacheTTL = 30
	return cfg
}

func newPathService(a *fakeAssignmentStore, c CurriculumStore, st *fakeStatusStore, p *fakePathStore) *LearningPathService {
	return NewLearningPathService(a, c, st, p, nil, testConfig())
}

func mod(id, subjectID uint, title string) model.LearningModule {
	return model.LearningModule{
		BaseModel:  model.BaseModel{ID: id},
		Title:      title,
		SubjectID:  subjectID,
		Assessable: true,
	}
}

// 一门课、一个学科、两个模块：一个已评估达标，一个从未评估
func TestBuildLearningPath_StatusAnnotation(t *testing.T) {
	now := time.Now()
	assignments := &fakeAssignmentStore{assignments: []model.CourseAssignment{{UserID: 7, CourseID: 1}}}
	curriculum := &fakeCurriculumStore{
		courses:  []model.Course{{BaseModel: model.BaseModel{ID: 1}, Title: "Go 基础"}},
		subjects: []model.Subject{{BaseModel: model.BaseModel{ID: 10}, Title: "语法", CourseID: 1}},
		modules:  []model.LearningModule{mod(100, 10, "变量"), mod(101, 10, "循环")},
		sections: []model.Section{
			{UUIDBase: model.UUIDBase{ID: "s-1"}, Title: "视频课", ModuleID: 100, Kind: model.SectionKindLecture, OrderIndex: 0},
			{UUIDBase: model.UUIDBase{ID: "s-2"}, Title: "小测", ModuleID: 100, Kind: model.SectionKindQuiz, OrderIndex: 1},
		},
	}
	statuses := &fakeStatusStore{records: []model.ModuleStatusRecord{
		{UserID: 7, ModuleID: 100, Status: model.ModuleStatusOptional, CorrectnessPercentage: 85, LastUpdated: now},
	}}

	svc := newPathService(assignments, curriculum, statuses, newFakePathStore())

	payload, err := svc.BuildLearningPath(7)
	require.NoError(t, err)
	require.Len(t, payload.Courses, 1)
	require.Len(t, payload.Courses[0].Subjects, 1)

	modules := payload.Courses[0].Subjects[0].Modules
	require.Len(t, modules, 2)

	assessed := modules[0]
	require.NotNil(t, assessed.Status)
	assert.Equal(t, model.ModuleStatusOptional, *assessed.Status)
	assert.Equal(t, 85, assessed.CorrectnessPercentage)
	require.NotNil(t, assessed.LastUpdated)
	assert.Len(t, assessed.Sections, 2)
	assert.Equal(t, "s-1", assessed.Sections[0].ID)

	// 没有状态记录的模块：status/lastUpdated 为 null，正确率 0
	unassessed := modules[1]
	assert.Nil(t, unassessed.Status)
	assert.Nil(t, unassessed.LastUpdated)
	assert.Equal(t, 0, unassessed.CorrectnessPercentage)
	assert.Empty(t, unassessed.Sections)
}

func TestBuildLearningPath_NoAssignmentsNoRecords(t *testing.T) {
	svc := newPathService(&fakeAssignmentStore{}, &fakeCurriculumStore{}, &fakeStatusStore{}, newFakePathStore())

	payload, err := svc.BuildLearningPath(7)
	require.NoError(t, err)
	assert.NotNil(t, payload.Courses)
	assert.Empty(t, payload.Courses)
}

// 无课程分配但有评估记录：从模块状态反推课程
func TestBuildLearningPath_FallbackFromStatusRecords(t *testing.T) {
	curriculum := &fakeCurriculumStore{
		courses:  []model.Course{{BaseModel: model.BaseModel{ID: 2}, Title: "网络"}},
		subjects: []model.Subject{{BaseModel: model.BaseModel{ID: 20}, Title: "TCP", CourseID: 2}},
		modules:  []model.LearningModule{mod(200, 20, "握手")},
	}
	statuses := &fakeStatusStore{records: []model.ModuleStatusRecord{
		{UserID: 7, ModuleID: 200, Status: model.ModuleStatusMandatory, CorrectnessPercentage: 40, LastUpdated: time.Now()},
	}}

	svc := newPathService(&fakeAssignmentStore{}, curriculum, statuses, newFakePathStore())

	payload, err := svc.BuildLearningPath(7)
	require.NoError(t, err)
	require.Len(t, payload.Courses, 1)
	assert.Equal(t, uint(2), payload.Courses[0].ID)
	require.Len(t, payload.Courses[0].Subjects, 1)
	require.Len(t, payload.Courses[0].Subjects[0].Modules, 1)
	require.NotNil(t, payload.Courses[0].Subjects[0].Modules[0].Status)
	assert.Equal(t, model.ModuleStatusMandatory, *payload.Courses[0].Subjects[0].Modules[0].Status)
}

// 分配存在时降级来源不参与，即使状态记录指向别的课程
func TestBuildLearningPath_SourcesNeverMerged(t *testing.T) {
	curriculum := &fakeCurriculumStore{
		courses: []model.Course{
			{BaseModel: model.BaseModel{ID: 1}, Title: "分配的课"},
			{BaseModel: model.BaseModel{ID: 2}, Title: "只有评估记录的课"},
		},
		subjects: []model.Subject{
			{BaseModel: model.BaseModel{ID: 10}, CourseID: 1},
			{BaseModel: model.BaseModel{ID: 20}, CourseID: 2},
		},
		modules: []model.LearningModule{mod(100, 10, "a"), mod(200, 20, "b")},
	}
	assignments := &fakeAssignmentStore{assignments: []model.CourseAssignment{{UserID: 7, CourseID: 1}}}
	statuses := &fakeStatusStore{records: []model.ModuleStatusRecord{
		{UserID: 7, ModuleID: 200, Status: model.ModuleStatusOptional, CorrectnessPercentage: 95, LastUpdated: time.Now()},
	}}

	svc := newPathService(assignments, curriculum, statuses, newFakePathStore())

	payload, err := svc.BuildLearningPath(7)
	require.NoError(t, err)
	require.Len(t, payload.Courses, 1)
	assert.Equal(t, uint(1), payload.Courses[0].ID)
	assert.Equal(t, []uint{1}, curriculum.coursesCalledWith)
}

// 中间层为空时不再发起下层查询
func TestBuildLearningPath_EmptyLayerShortCircuits(t *testing.T) {
	curriculum := &fakeCurriculumStore{
		courses: []model.Course{{BaseModel: model.BaseModel{ID: 1}, Title: "空壳课程"}},
	}
	assignments := &fakeAssignmentStore{assignments: []model.CourseAssignment{{UserID: 7, CourseID: 1}}}

	svc := newPathService(assignments, curriculum, &fakeStatusStore{}, newFakePathStore())

	payload, err := svc.BuildLearningPath(7)
	require.NoError(t, err)
	require.Len(t, payload.Courses, 1)
	assert.Empty(t, payload.Courses[0].Subjects)
	assert.Nil(t, curriculum.modulesCalledWith)
	assert.Nil(t, curriculum.sectionsCalledWith)
}

// 仓储返回了不属于本次树的行时，组装阶段逐层丢弃孤儿节点
func TestBuildLearningPath_DropsOrphanNodes(t *testing.T) {
	curriculum := &leakyCurriculumStore{fakeCurriculumStore{
		courses: []model.Course{{BaseModel: model.BaseModel{ID: 1}, Title: "Go 基础"}},
		subjects: []model.Subject{
			{BaseModel: model.BaseModel{ID: 10}, Title: "语法", CourseID: 1},
			{BaseModel: model.BaseModel{ID: 11}, Title: "别的课的学科", CourseID: 99},
		},
		modules: []model.LearningModule{
			mod(100, 10, "变量"),
			mod(200, 11, "挂在被丢弃学科下"),
			mod(201, 77, "挂在不存在的学科下"),
		},
		sections: []model.Section{
			{UUIDBase: model.UUIDBase{ID: "s-1"}, Title: "视频课", ModuleID: 100, Kind: model.SectionKindLecture},
			{UUIDBase: model.UUIDBase{ID: "s-x"}, Title: "挂在不存在的模块下", ModuleID: 300, Kind: model.SectionKindQuiz},
		},
	}}
	assignments := &fakeAssignmentStore{assignments: []model.CourseAssignment{{UserID: 7, CourseID: 1}}}

	svc := newPathService(assignments, curriculum, &fakeStatusStore{}, newFakePathStore())

	payload, err := svc.BuildLearningPath(7)
	require.NoError(t, err)
	require.Len(t, payload.Courses, 1)

	// 只有挂在树内父节点上的行存活
	require.Len(t, payload.Courses[0].Subjects, 1)
	assert.Equal(t, uint(10), payload.Courses[0].Subjects[0].ID)
	require.Len(t, payload.Courses[0].Subjects[0].Modules, 1)
	m := payload.Courses[0].Subjects[0].Modules[0]
	assert.Equal(t, uint(100), m.ID)
	require.Len(t, m.Sections, 1)
	assert.Equal(t, "s-1", m.Sections[0].ID)
}

func TestBuildLearningPath_StageErrorNamesFailingFetch(t *testing.T) {
	boom := errors.New("connection reset")

	assigned := func() *fakeAssignmentStore {
		return &fakeAssignmentStore{assignments: []model.CourseAssignment{{UserID: 7, CourseID: 1}}}
	}
	tree := func() *fakeCurriculumStore {
		return &fakeCurriculumStore{
			courses:  []model.Course{{BaseModel: model.BaseModel{ID: 1}}},
			subjects: []model.Subject{{BaseModel: model.BaseModel{ID: 10}, CourseID: 1}},
			modules:  []model.LearningModule{mod(100, 10, "变量")},
		}
	}

	cases := []struct {
		name  string
		stage string
		setup func() (*fakeAssignmentStore, *fakeCurriculumStore, *fakeStatusStore)
	}{
		{"assignments", util.StageAssignments, func() (*fakeAssignmentStore, *fakeCurriculumStore, *fakeStatusStore) {
			return &fakeAssignmentStore{err: boom}, tree(), &fakeStatusStore{}
		}},
		{"courses", util.StageCourses, func() (*fakeAssignmentStore, *fakeCurriculumStore, *fakeStatusStore) {
			c := tree()
			c.coursesErr = boom
			return assigned(), c, &fakeStatusStore{}
		}},
		{"subjects", util.StageSubjects, func() (*fakeAssignmentStore, *fakeCurriculumStore, *fakeStatusStore) {
			c := tree()
			c.subjectsErr = boom
			return assigned(), c, &fakeStatusStore{}
		}},
		{"modules", util.StageModules, func() (*fakeAssignmentStore, *fakeCurriculumStore, *fakeStatusStore) {
			c := tree()
			c.modulesErr = boom
			return assigned(), c, &fakeStatusStore{}
		}},
		{"sections", util.StageSections, func() (*fakeAssignmentStore, *fakeCurriculumStore, *fakeStatusStore) {
			c := tree()
			c.sectionsErr = boom
			return assigned(), c, &fakeStatusStore{}
		}},
		{"statuses", util.StageStatuses, func() (*fakeAssignmentStore, *fakeCurriculumStore, *fakeStatusStore) {
			return assigned(), tree(), &fakeStatusStore{err: boom}
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a, c, st := tc.setup()
			svc := newPathService(a, c, st, newFakePathStore())

			_, err := svc.BuildLearningPath(7)
			require.Error(t, err)

			var stageErr *util.BuildStageError
			require.ErrorAs(t, err, &stageErr)
			assert.Equal(t, tc.stage, stageErr.Stage)
			assert.Equal(t, 1, stageErr.IDCount)
			assert.ErrorIs(t, err, boom)
		})
	}
}

func TestGeneratePath_BuildOnce(t *testing.T) {
	assignments := &fakeAssignmentStore{assignments: []model.CourseAssignment{{UserID: 7, CourseID: 1}}}
	curriculum := &fakeCurriculumStore{courses: []model.Course{{BaseModel: model.BaseModel{ID: 1}, Title: "Go"}}}
	paths := newFakePathStore()

	svc := newPathService(assignments, curriculum, &fakeStatusStore{}, paths)

	first, created, err := svc.GeneratePath(7, false)
	require.NoError(t, err)
	assert.True(t, created)
	require.NotNil(t, first)

	// 第二次调用返回已存的行，不重建
	second, created, err := svc.GeneratePath(7, false)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.JSONEq(t, string(first.Path), string(second.Path))
	assert.Equal(t, 1, paths.inserts)
}

// 状态翻转后：不带 refresh 的读取返回旧树，refresh 原地覆盖
func TestGeneratePath_RefreshOverwritesInPlace(t *testing.T) {
	assignments := &fakeAssignmentStore{assignments: []model.CourseAssignment{{UserID: 7, CourseID: 1}}}
	curriculum := &fakeCurriculumStore{
		courses:  []model.Course{{BaseModel: model.BaseModel{ID: 1}, Title: "Go"}},
		subjects: []model.Subject{{BaseModel: model.BaseModel{ID: 10}, CourseID: 1}},
		modules:  []model.LearningModule{mod(100, 10, "变量")},
	}
	statuses := &fakeStatusStore{records: []model.ModuleStatusRecord{
		{UserID: 7, ModuleID: 100, Status: model.ModuleStatusMandatory, CorrectnessPercentage: 50, LastUpdated: time.Now()},
	}}
	paths := newFakePathStore()

	svc := newPathService(assignments, curriculum, statuses, paths)

	first, _, err := svc.GeneratePath(7, false)
	require.NoError(t, err)

	// 评估表现提升，状态翻转
	statuses.records[0].Status = model.ModuleStatusOptional
	statuses.records[0].CorrectnessPercentage = 90

	stale, created, err := svc.GeneratePath(7, false)
	require.NoError(t, err)
	assert.False(t, created)
	assert.JSONEq(t, string(first.Path), string(stale.Path))

	refreshed, created, err := svc.GeneratePath(7, true)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, refreshed.ID)
	assert.Equal(t, 1, paths.updates)

	var payload PathPayload
	require.NoError(t, json.Unmarshal(refreshed.Path, &payload))
	m := payload.Courses[0].Subjects[0].Modules[0]
	require.NotNil(t, m.Status)
	assert.Equal(t, model.ModuleStatusOptional, *m.Status)
	assert.Equal(t, 90, m.CorrectnessPercentage)
}

// 首次构建撞唯一键：回读赢者的行而不是报错
func TestGeneratePath_InsertRaceReReadsWinner(t *testing.T) {
	assignments := &fakeAssignmentStore{assignments: []model.CourseAssignment{{UserID: 7, CourseID: 1}}}
	curriculum := &fakeCurriculumStore{courses: []model.Course{{BaseModel: model.BaseModel{ID: 1}, Title: "Go"}}}
	paths := newFakePathStore()

	// 赢者的行已经在库里，但本进程第一次读还看不到
	winner := &model.UserLearningPath{UserID: 7, Path: json.RawMessage(`{"courses":[]}`), Required: true}
	winner.ID = 42
	paths.rows[7] = winner
	paths.insertErr = gorm.ErrDuplicatedKey
	paths.findErrOnce = gorm.ErrRecordNotFound

	svc := newPathService(assignments, curriculum, &fakeStatusStore{}, paths)

	got, created, err := svc.GeneratePath(7, false)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, uint(42), got.ID)
}

func TestGetPath_NotFound(t *testing.T) {
	svc := newPathService(&fakeAssignmentStore{}, &fakeCurriculumStore{}, &fakeStatusStore{}, newFakePathStore())

	_, err := svc.GetPath(7)
	assert.ErrorIs(t, err, util.ErrPathNotFound)
}

func TestGetPath_ReturnsStoredRow(t *testing.T) {
	paths := newFakePathStore()
	row := &model.UserLearningPath{UserID: 7, Path: json.RawMessage(`{"courses":[]}`), Required: true}
	row.ID = 5
	paths.rows[7] = row

	svc := newPathService(&fakeAssignmentStore{}, &fakeCurriculumStore{}, &fakeStatusStore{}, paths)

	got, err := svc.GetPath(7)
	require.NoError(t, err)
	assert.Equal(t, uint(5), got.ID)
}
