package service

import (
	"context"
	"edupath_backend/internal/model"
	"edupath_backend/internal/repository"
	"edupath_backend/internal/util"
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"gorm.io/gorm"
)

// CurriculumService 课程目录的后台编辑入口（管理员/教师）
// 构建器只读同一份数据，编辑侧不参与路径组装
type CurriculumService struct {
	Repo    *repository.CurriculumRepository
	Storage *StorageService
}

func NewCurriculumService(repo *repository.CurriculumRepository, storage *StorageService) *CurriculumService {
	return &CurriculumService{Repo: repo, Storage: storage}
}

type CourseRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

func (s *CurriculumService) CreateCourse(creatorID uint, req CourseRequest) (*model.Course, error) {
	course := &model.Course{
		Title:       req.Title,
		Description: req.Description,
		CreatorID:   creatorID,
	}
	if err := s.Repo.CreateCourse(course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CurriculumService) ListCourses(page, limit int) ([]model.Course, int64, error) {
	return s.Repo.ListCourses(page, limit)
}

func (s *CurriculumService) GetCourse(id uint) (*model.Course, error) {
	course, err := s.Repo.FindCourseByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrCourseNotFound
	}
	return course, err
}

func (s *CurriculumService) UpdateCourse(id uint, req CourseRequest) (*model.Course, error) {
	course, err := s.GetCourse(id)
	if err != nil {
		return nil, err
	}
	course.Title = req.Title
	course.Description = req.Description
	if err := s.Repo.UpdateCourse(course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CurriculumService) DeleteCourse(id uint) error {
	return s.Repo.DeleteCourse(id)
}

type SubjectRequest struct {
	Title      string `json:"title" binding:"required"`
	CourseID   uint   `json:"courseId" binding:"required"`
	OrderIndex int    `json:"orderIndex"`
}

func (s *CurriculumService) CreateSubject(req SubjectRequest) (*model.Subject, error) {
	if _, err := s.GetCourse(req.CourseID); err != nil {
		return nil, err
	}
	subject := &model.Subject{
		Title:      req.Title,
		CourseID:   req.CourseID,
		OrderIndex: req.OrderIndex,
	}
	if err := s.Repo.CreateSubject(subject); err != nil {
		return nil, err
	}
	return subject, nil
}

func (s *CurriculumService) UpdateSubject(id uint, req SubjectRequest) (*model.Subject, error) {
	subject, err := s.Repo.FindSubjectByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrSubjectNotFound
	}
	if err != nil {
		return nil, err
	}
	subject.Title = req.Title
	subject.CourseID = req.CourseID
	subject.OrderIndex = req.OrderIndex
	if err := s.Repo.UpdateSubject(subject); err != nil {
		return nil, err
	}
	return subject, nil
}

func (s *CurriculumService) DeleteSubject(id uint) error {
	return s.Repo.DeleteSubject(id)
}

type ModuleRequest struct {
	Title      string `json:"title" binding:"required"`
	SubjectID  uint   `json:"subjectId" binding:"required"`
	OrderIndex int    `json:"orderIndex"`
	Assessable *bool  `json:"assessable"`
}

func (s *CurriculumService) CreateModule(req ModuleRequest) (*model.LearningModule, error) {
	if _, err := s.Repo.FindSubjectByID(req.SubjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSubjectNotFound
		}
		return nil, err
	}
	module := &model.LearningModule{
		Title:      req.Title,
		SubjectID:  req.SubjectID,
		OrderIndex: req.OrderIndex,
		Assessable: true,
	}
	if req.Assessable != nil {
		module.Assessable = *req.Assessable
	}
	if err := s.Repo.CreateModule(module); err != nil {
		return nil, err
	}
	return module, nil
}

func (s *CurriculumService) UpdateModule(id uint, req ModuleRequest) (*model.LearningModule, error) {
	module, err := s.Repo.FindModuleByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrModuleNotFound
	}
	if err != nil {
		return nil, err
	}
	module.Title = req.Title
	module.SubjectID = req.SubjectID
	module.OrderIndex = req.OrderIndex
	if req.Assessable != nil {
		module.Assessable = *req.Assessable
	}
	if err := s.Repo.UpdateModule(module); err != nil {
		return nil, err
	}
	return module, nil
}

func (s *CurriculumService) DeleteModule(id uint) error {
	return s.Repo.DeleteModule(id)
}

type SectionRequest struct {
	Title      string `json:"title" binding:"required"`
	ModuleID   uint   `json:"moduleId" binding:"required"`
	Kind       string `json:"kind" binding:"omitempty,oneof=lecture quiz practice static"`
	OrderIndex int    `json:"orderIndex"`
	Content    string `json:"content"`
}

func (s *CurriculumService) CreateSection(req SectionRequest) (*model.Section, error) {
	if _, err := s.Repo.FindModuleByID(req.ModuleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrModuleNotFound
		}
		return nil, err
	}
	kind := req.Kind
	if kind == "" {
		kind = model.SectionKindLecture
	}
	section := &model.Section{
		Title:      req.Title,
		ModuleID:   req.ModuleID,
		Kind:       kind,
		OrderIndex: req.OrderIndex,
		Content:    req.Content,
	}
	if err := s.Repo.CreateSection(section); err != nil {
		return nil, err
	}
	return section, nil
}

func (s *CurriculumService) UpdateSection(id string, req SectionRequest) (*model.Section, error) {
	section, err := s.Repo.FindSectionByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrSectionNotFound
	}
	if err != nil {
		return nil, err
	}
	section.Title = req.Title
	section.ModuleID = req.ModuleID
	if req.Kind != "" {
		section.Kind = req.Kind
	}
	section.OrderIndex = req.OrderIndex
	section.Content = req.Content
	if err := s.Repo.UpdateSection(section); err != nil {
		return nil, err
	}
	return section, nil
}

func (s *CurriculumService) DeleteSection(id string) error {
	return s.Repo.DeleteSection(id)
}

// UploadSectionVideo 上传讲义视频：先落临时文件探测时长，再交给存储后端
func (s *CurriculumService) UploadSectionVideo(ctx context.Context, sectionID string, fileHeader *multipart.FileHeader) (*model.Section, error) {
	section, err := s.Repo.FindSectionByID(sectionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrSectionNotFound
	}
	if err != nil {
		return nil, err
	}

	src, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", "section-video-*"+filepath.Ext(fileHeader.Filename))
	if err != nil {
		return nil, err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.ReadFrom(src); err != nil {
		tmp.Close()
		return nil, err
	}
	tmp.Close()

	info, err := util.ProbeVideo(tmpPath)
	if err != nil {
		return nil, err
	}

	filename := fmt.Sprintf("sections/%s/%d%s", section.ID, time.Now().UnixNano(), filepath.Ext(fileHeader.Filename))
	url, err := s.Storage.UploadFile(ctx, filename, tmpPath, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}

	section.VideoURL = url
	section.VideoDuration = info.Duration
	if err := s.Repo.UpdateSection(section); err != nil {
		return nil, err
	}
	return section, nil
}
