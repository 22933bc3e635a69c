package repository

import (
	"edupath_backend/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ModuleStatusRepository struct {
	DB *gorm.DB
}

func NewModuleStatusRepository(db *gorm.DB) *ModuleStatusRepository {
	return &ModuleStatusRepository{DB: db}
}

func (r *ModuleStatusRepository) ListByUser(userID uint) ([]model.ModuleStatusRecord, error) {
	var rs []model.ModuleStatusRecord
	err := r.DB.Where("user_id = ?", userID).Order("created_at asc").Find(&rs).Error
	return rs, err
}

func (r *ModuleStatusRepository) FindByUserAndModules(userID uint, moduleIDs []uint) ([]model.ModuleStatusRecord, error) {
	var rs []model.ModuleStatusRecord
	err := r.DB.Where("user_id = ? AND module_id IN ?", userID, moduleIDs).Find(&rs).Error
	return rs, err
}

func (r *ModuleStatusRepository) FindByUserAndModule(userID, moduleID uint) (*model.ModuleStatusRecord, error) {
	var rec model.ModuleStatusRecord
	err := r.DB.Where("user_id = ? AND module_id = ?", userID, moduleID).First(&rec).Error
	return &rec, err
}

// Upsert 按 (user_id, module_id) 唯一键写入：已有记录则覆盖状态与正确率
func (r *ModuleStatusRepository) Upsert(rec *model.ModuleStatusRecord) error {
	rec.LastUpdated = time.Now()
	return r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "module_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "correctness_percentage", "last_updated", "updated_at",
		}),
	}).Create(rec).Error
}
