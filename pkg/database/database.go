package database

import (
	"edupath_backend/internal/config"
	"edupath_backend/internal/model"
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig, migrate bool) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	// TranslateError: 首次构建学习路径的唯一键竞态依赖 gorm.ErrDuplicatedKey 判定
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Info),
		TranslateError: true,
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if migrate {
		err = db.AutoMigrate(
			&model.User{},
			&model.Course{},
			&model.Subject{},
			&model.LearningModule{},
			&model.Section{},
			&model.CourseAssignment{},
			&model.AssessmentQuestion{},
			&model.ModuleStatusRecord{},
			&model.UserLearningPath{},
		)

		if err != nil {
			return nil, err
		}

		log.Println("Database migration completed")
	}

	return db, nil
}
