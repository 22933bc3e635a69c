package util

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound      = errors.New("用户不存在")
	ErrEmailRegistered   = errors.New("该邮箱已被注册")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrCourseNotFound    = errors.New("course not found")
	ErrSubjectNotFound   = errors.New("subject not found")
	ErrModuleNotFound    = errors.New("module not found")
	ErrSectionNotFound   = errors.New("section not found")
	ErrPathNotFound      = errors.New("learning path not found")
	ErrAlreadyAssigned   = errors.New("course already assigned to user")
	ErrModuleNotGradable = errors.New("module is not assessable")
)

// 路径构建的取数阶段，用于错误定位
const (
	StageAssignments = "assignments"
	StageCourses     = "courses"
	StageSubjects    = "subjects"
	StageModules     = "modules"
	StageSections    = "sections"
	StageStatuses    = "statuses"
)

// BuildStageError 标记路径构建在哪个取数阶段失败以及该阶段的 id 集合大小
// 不泄漏底层查询文本，外层整体中止，从不返回部分树
type BuildStageError struct {
	Stage   string
	IDCount int
	Err     error
}

func (e *BuildStageError) Error() string {
	return fmt.Sprintf("learning path build failed at stage %q (id set size %d): %v", e.Stage, e.IDCount, e.Err)
}

func (e *BuildStageError) Unwrap() error {
	return e.Err
}

func NewBuildStageError(stage string, idCount int, err error) *BuildStageError {
	return &BuildStageError{Stage: stage, IDCount: idCount, Err: err}
}
