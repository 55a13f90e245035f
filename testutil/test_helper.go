/*
 * @module testutil/test_helper
 * @description 测试工具和辅助函数
 * @architecture 测试基础设施 - 提供测试通用工具和数据工厂
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow 测试环境初始化 -> 测试数据创建 -> 测试执行 -> 清理资源
 * @rules 提供可重用的测试工具，确保测试环境的一致性
 * @dependencies gorm, sqlite, testify
 * @refs service/models
 */

package testutil

import (
	"fmt"

	"dq-engine-service/service/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB 测试数据库配置
type TestDB struct {
	DB *gorm.DB
}

// NewTestDB 创建测试数据库
func NewTestDB() *TestDB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic(fmt.Sprintf("failed to connect test database: %v", err))
	}

	// 自动迁移所有模型
	err = db.AutoMigrate(
		&models.QualityRule{},
		&models.KnowledgeTreatment{},
		&models.TreatmentOutcome{},
		&models.LearnedPattern{},
		&models.RootCauseRecord{},
		&models.MetricsSnapshot{},
		&models.DQCycleRecord{},
		&models.SystemLog{},
	)
	if err != nil {
		panic(fmt.Sprintf("failed to migrate test database: %v", err))
	}

	return &TestDB{DB: db}
}

// CleanDB 清理数据库
func (tdb *TestDB) CleanDB() {
	tables := []string{
		"quality_rules",
		"knowledge_treatments",
		"treatment_outcomes",
		"learned_patterns",
		"root_cause_records",
		"metrics_snapshots",
		"dq_cycle_records",
		"system_logs",
	}

	for _, table := range tables {
		tdb.DB.Exec(fmt.Sprintf("DELETE FROM %s", table))
	}
}

// Close 关闭数据库连接
func (tdb *TestDB) Close() {
	if sqlDB, err := tdb.DB.DB(); err == nil {
		sqlDB.Close()
	}
}

// CreateTestTreatment 创建测试治理方案记录
func CreateTestTreatment(db *gorm.DB, treatmentID, issueType string, confidence, successRate float64) *models.KnowledgeTreatment {
	treatment := &models.KnowledgeTreatment{
		TreatmentID:      treatmentID,
		IssueType:        issueType,
		Description:      fmt.Sprintf("Test treatment for %s", issueType),
		Confidence:       confidence,
		Cost:             "low",
		ApprovalRequired: "false",
		SuccessRate:      successRate,
		Steps:            models.JSONBStringArray{"step 1", "step 2"},
	}
	if err := db.Create(treatment).Error; err != nil {
		panic(fmt.Sprintf("failed to create test treatment: %v", err))
	}
	return treatment
}

// CreateTestIssue 创建测试质量问题
func CreateTestIssue(issueType, dimension string) *models.Issue {
	return &models.Issue{
		IssueType: issueType,
		Dimension: dimension,
		Severity:  "medium",
		Data:      models.JSONB{"record_id": "r-001"},
	}
}

// FullQualityCounts 构造五个维度均有数据的聚合计数
func FullQualityCounts() models.QualityCounts {
	return models.QualityCounts{
		Completeness: &models.CompletenessCounts{
			TotalRecords: 100,
			FieldNonNull: map[string]int64{"email": 90, "date_of_birth": 80},
		},
		Validity: []models.ValidityCheckCounts{
			{Name: "email_format", Total: 100, Valid: 95},
			{Name: "amount_non_negative", Total: 100, Valid: 85},
		},
		Consistency: &models.ConsistencyCounts{
			TotalRecords:    100,
			UniqueRecords:   98,
			TotalReferences: 50,
			ValidReferences: 45,
		},
		Accuracy: &models.AccuracyCounts{
			Total:          100,
			WithinThreeStd: 97,
		},
		Timeliness: &models.TimelinessCounts{
			TotalRecords:  100,
			RecentRecords: 60,
		},
	}
}
