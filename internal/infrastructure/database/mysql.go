package database

import (
	"fmt"
	"time"

	"fraudpipeline/internal/config"
	"fraudpipeline/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open 建立 MySQL 连接池
// 连接归调用方所有：批处理每次运行单独 Open，结束时无条件 Close
func Open(cfg *config.MySQLConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("连接 MySQL 失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层 DB 失败: %w", err)
	}

	// 连接池配置
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// Close 释放连接池，成功失败都要调用
func Close(db *gorm.DB) {
	if db == nil {
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}

// EnsureSchema 幂等建表
// 表已存在且结构一致时没有任何效果，每次运行启动都可以安全调用
func EnsureSchema(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.LedgerRow{},
		&model.AlertRow{},
	)
	if err != nil {
		return fmt.Errorf("初始化表结构失败: %w", err)
	}
	return nil
}
