/*
 * @module service/init
 * @description 服务初始化模块，负责数据库连接、迁移与各引擎服务的组装
 * @architecture 分层架构 - 服务层
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow 应用启动时执行初始化流程
 * @rules 服务通过构造函数显式注入依赖，不使用隐式单例；初始化失败直接终止进程
 * @dependencies gorm.io/gorm, gorm.io/driver/postgres
 * @refs service/database, service/knowledge, service/cycle
 */

package service

import (
	"fmt"
	"log"
	"os"

	"dq-engine-service/service/analysis"
	"dq-engine-service/service/audit"
	"dq-engine-service/service/cycle"
	"dq-engine-service/service/database"
	"dq-engine-service/service/distributed_lock"
	"dq-engine-service/service/knowledge"
	"dq-engine-service/service/metrics"
	"dq-engine-service/service/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	DB                 *gorm.DB
	GlobalAuditService *audit.AuditService
	GlobalStore        *knowledge.Store
	GlobalAnalyzer     *analysis.RootCauseAnalyzer
	GlobalRecommender  *analysis.TreatmentRecommender
	GlobalMetricsSvc   *metrics.MetricsService
	GlobalOrchestrator *cycle.Orchestrator
	GlobalScheduler    *cycle.Scheduler
)

func init() {
	initDatabase()
	runMigrations()
	initServices()
}

// initDatabase 初始化数据库连接
func initDatabase() {
	var dsn string

	// 优先使用DATABASE_URL环境变量
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		dsn = databaseURL
	} else {
		host := getEnvWithDefault("DB_HOST", "localhost")
		port := getEnvWithDefault("DB_PORT", "5432")
		user := getEnvWithDefault("DB_USER", "postgres")
		password := getEnvWithDefault("DB_PASSWORD", "postgres")
		dbname := getEnvWithDefault("DB_NAME", "postgres")
		sslmode := getEnvWithDefault("DB_SSLMODE", "disable")
		schema := getEnvWithDefault("DB_SCHEMA", "public")

		dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s search_path=%s",
			host, port, user, password, dbname, sslmode, schema)
	}

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	log.Println("数据库连接成功")
}

// getEnvWithDefault 获取环境变量，如果不存在则返回默认值
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// runMigrations 运行数据库迁移
func runMigrations() {
	log.Println("开始运行数据库迁移...")

	if err := database.AutoMigrate(DB); err != nil {
		log.Fatalf("数据库迁移失败: %v", err)
	}
	log.Println("数据库表结构迁移完成")

	if err := database.InitializeData(DB); err != nil {
		log.Fatalf("基础数据初始化失败: %v", err)
	}
}

// initServices 初始化引擎服务
func initServices() {
	GlobalAuditService = audit.NewAuditService(DB)

	GlobalStore = knowledge.NewStore(DB)
	GlobalStore.SetAuditor(GlobalAuditService)

	GlobalAnalyzer = analysis.NewRootCauseAnalyzer(GlobalStore)
	GlobalRecommender = analysis.NewTreatmentRecommender(GlobalStore, GlobalAnalyzer)

	// 默认度量服务使用空计数提供方，实际计数由检测层随请求提交
	emptyProvider := metrics.NewStaticCountsProvider(models.QualityCounts{})
	GlobalMetricsSvc = metrics.NewMetricsService(DB, emptyProvider)

	remediateMode := getEnvWithDefault("DQ_REMEDIATE_MODE", cycle.RemediateModeLogOnly)
	GlobalOrchestrator = NewOrchestrator(cycle.NewStaticIdentifier(nil), emptyProvider, remediateMode)

	// 定时治理周期：未配置 DQ_CYCLE_CRON 时不启动
	GlobalScheduler = cycle.NewScheduler(GlobalOrchestrator, os.Getenv("DQ_CYCLE_CRON"))
	if lock, err := distributed_lock.NewRedisLock(); err != nil {
		log.Printf("Redis分布式锁不可用，调度器以单实例模式运行: %v", err)
	} else {
		GlobalScheduler.SetDistributedLock(lock)
	}
	if err := GlobalScheduler.StartScheduler(); err != nil {
		log.Fatalf("治理周期调度器启动失败: %v", err)
	}

	log.Println("引擎服务初始化完成")
}

// NewMetricsService 基于指定计数提供方构建度量服务（供控制器按请求载荷构建）
func NewMetricsService(provider metrics.CountsProvider) *metrics.MetricsService {
	return metrics.NewMetricsService(DB, provider)
}

// NewOrchestrator 基于指定协作方构建周期编排器（供控制器按请求载荷构建）
func NewOrchestrator(identifier cycle.Identifier, provider metrics.CountsProvider, remediateMode string) *cycle.Orchestrator {
	metricsService := metrics.NewMetricsService(DB, provider)
	return cycle.NewOrchestrator(DB, identifier, GlobalRecommender, metricsService, GlobalStore, nil, remediateMode)
}
