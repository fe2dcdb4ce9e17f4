package database

import (
	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/config"
	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/domain"
	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// AutoMigrate runs Gorm auto-migration for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Branch{},
		&models.User{},
		&models.NotificationTemplate{},
		&models.Notification{},
		&models.NotificationRecipient{},
		&models.QueueJob{},
		&models.NotificationPreference{},
		&models.PushDevice{},
	)
}

// SeedAdmin makes a fresh deployment usable: one main branch and one
// superadmin account. No-op when users already exist.
func SeedAdmin(db *gorm.DB) {
	var count int64
	db.Model(&models.User{}).Count(&count)
	if count > 0 {
		return
	}
	branch := models.Branch{Name: "Main Campus"}
	db.Create(&branch)
	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return
	}
	db.Create(&models.User{
		FullName:     "System Administrator",
		Email:        "admin@schoolhub.local",
		PasswordHash: string(hash),
		Role:         domain.RoleSuperadmin,
		BranchID:     branch.ID,
		IsActive:     true,
	})
}
