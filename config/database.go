package config

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vnkhanh/engchi-backend/models"
)

// InitDB mở kết nối PostgreSQL, cấu hình pool và chạy AutoMigrate.
func InitDB(cfg *Config, log *logrus.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), GormConfig(log))
	if err != nil {
		return nil, fmt.Errorf("không thể kết nối database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("không thể lấy sql.DB từ gorm: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	log.Info("postgreSQL connected & migrated successfully")
	return db, nil
}

// GormConfig dùng chung cho postgres và sqlite (test).
func GormConfig(log *logrus.Logger) *gorm.Config {
	level := logger.Warn
	if log.IsLevelEnabled(logrus.DebugLevel) {
		level = logger.Info
	}
	return &gorm.Config{
		TranslateError: true,
		Logger: logger.New(log, logger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
	}
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Lesson{},
		&models.UserProgress{},
		&models.ProgressItem{},
		&models.MasteredWord{},
		&models.ReviewWord{},
	)
	if err != nil {
		return fmt.Errorf("autoMigrate lỗi: %w", err)
	}
	return nil
}
