/*
 * @module service/database/migrate
 * @description 数据库迁移模块，负责创建和更新知识库与度量历史表结构
 * @architecture 数据访问层 - 迁移管理
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow 应用启动时执行数据库迁移
 * @rules 确保数据库结构与模型定义保持一致
 * @dependencies dq-engine-service/service/models, gorm.io/gorm
 * @refs service/init.go
 */

package database

import (
	"dq-engine-service/service/models"
	"log"

	"gorm.io/gorm"
)

// AutoMigrate 自动迁移数据库表结构
func AutoMigrate(db *gorm.DB) error {
	log.Println("开始数据库迁移...")

	// 知识库相关表
	err := db.AutoMigrate(
		&models.QualityRule{},
		&models.KnowledgeTreatment{},
		&models.TreatmentOutcome{},
		&models.LearnedPattern{},
		&models.RootCauseRecord{},
	)
	if err != nil {
		return err
	}

	// 度量与周期执行相关表
	err = db.AutoMigrate(
		&models.MetricsSnapshot{},
		&models.DQCycleRecord{},
	)
	if err != nil {
		return err
	}

	// 审计日志表
	err = db.AutoMigrate(
		&models.SystemLog{},
	)
	if err != nil {
		return err
	}

	log.Println("数据库迁移完成")
	return nil
}

// InitializeData 初始化基础数据
// 启发式知识表由代码内置（service/analysis），首次启动无需种子数据，
// 仅确保学习模式编号序列从现有数据延续
func InitializeData(db *gorm.DB) error {
	log.Println("开始初始化基础数据...")

	var patternCount int64
	if err := db.Model(&models.LearnedPattern{}).Count(&patternCount).Error; err != nil {
		return err
	}
	log.Printf("现有学习模式数量: %d", patternCount)

	log.Println("基础数据初始化完成")
	return nil
}
