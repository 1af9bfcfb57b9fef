package database

import (
	"fmt"
	"log"
	"testroom_backend/internal/config"
	"testroom_backend/internal/model"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.Config) (*gorm.DB, error) {
	dbCfg := &cfg.Database
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		dbCfg.User,
		dbCfg.Password,
		dbCfg.Host,
		dbCfg.Port,
		dbCfg.DBName,
		dbCfg.Charset,
		dbCfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	// release 模式默认跳过自动迁移，用 -migrate 显式触发
	if cfg.Server.Mode != "release" || cfg.ForceMigrate {
		err = db.AutoMigrate(
			&model.Organization{},
			&model.User{},
			&model.Test{},
			&model.Question{},
			&model.TestAttempt{},
		)

		if err != nil {
			return nil, err
		}

		log.Println("Database migration completed")
	}

	// 默认超级管理员，仅在空库时创建
	var count int64
	db.Model(&model.User{}).Where("role = ?", model.SuperAdmin).Count(&count)
	if count == 0 {
		hashed, err := bcrypt.GenerateFromPassword([]byte("testroom@123"), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		super := &model.User{
			Name:     "Super Admin",
			Email:    "superadmin@testroom.local",
			Password: string(hashed),
			Role:     model.SuperAdmin,
		}
		db.Create(super)
		log.Println("Default superadmin created: superadmin@testroom.local")
	}

	return db, nil
}
