package repository

import (
	"VidVault/internal/config"
	"VidVault/internal/model"
	"VidVault/pkg/logger"
	"VidVault/pkg/mongodb"
	"context"
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Closer 释放底层连接
type Closer func(ctx context.Context) error

// Open 根据STORE_DRIVER打开元数据存储：mongo / mysql / postgres
func Open(ctx context.Context, cfg config.StoreConfig) (VideoRepository, Closer, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		client, err := mongodb.InitMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, fmt.Errorf("connect mongo: %w", err)
		}
		repo, err := NewMongoVideoRepository(ctx, client.Database(cfg.MongoDatabase))
		if err != nil {
			_ = client.Disconnect(ctx)
			return nil, nil, err
		}
		logger.Log.WithField("database", cfg.MongoDatabase).Info("MongoDB连接成功")
		return repo, client.Disconnect, nil

	case config.DriverMySQL, config.DriverPostgres:
		db, err := OpenGorm(cfg.Driver, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, err
		}
		logger.Log.WithField("driver", cfg.Driver).Info("数据库连接成功")
		return NewVideoRepository(db), func(context.Context) error { return sqlDB.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
	}
}

// OpenGorm 打开SQL数据库并迁移videos表
// db.AutoMigrate()没有这个表就创建，没有属性列则创建列；不会主动删除和修改
func OpenGorm(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case config.DriverMySQL:
		dialector = mysql.Open(dsn)
	case config.DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	db, err := gorm.Open(dialector, gormConfig())
	if err != nil {
		return nil, fmt.Errorf("无法连接到数据库: %w", err)
	}
	if err := db.AutoMigrate(&model.Video{}); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}
	return db, nil
}

// 开启TranslateError后，postgres的唯一约束冲突会变成gorm.ErrDuplicatedKey，isDuplicateKey才能识别
func gormConfig() *gorm.Config {
	return &gorm.Config{TranslateError: true}
}
