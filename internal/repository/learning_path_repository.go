package repository

import (
	"edupath_backend/internal/model"

	"gorm.io/gorm"
)

type LearningPathRepository struct {
	DB *gorm.DB
}

func NewLearningPathRepository(db *gorm.DB) *LearningPathRepository {
	return &LearningPathRepository{DB: db}
}

func (r *LearningPathRepository) FindByUserID(userID uint) (*model.UserLearningPath, error) {
	var p model.UserLearningPath
	err := r.DB.Where("user_id = ?", userID).First(&p).Error
	return &p, err
}

// Insert 纯插入，不做 on-conflict 处理
// 并发首次构建的竞态由服务层通过"插入失败后回读"解决
func (r *LearningPathRepository) Insert(p *model.UserLearningPath) error {
	return r.DB.Create(p).Error
}

// Update 原地覆盖已有行，保留行标识
func (r *LearningPathRepository) Update(p *model.UserLearningPath) error {
	return r.DB.Save(p).Error
}
