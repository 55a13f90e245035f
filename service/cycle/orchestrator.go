/*
 * @module service/cycle/orchestrator
 * @description 质量治理周期编排器：识别 -> 方案 -> 修复 -> 度量 -> 报告 五阶段顺序执行
 * @architecture 分层架构 - 业务编排层
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow identification -> treatment -> remediation -> metrics -> reporting，阶段无条件顺序推进
 * @rules 方案阶段仅处理前20个问题；阶段内失败不重试不回滚，直接向调用方传播；log_only 模式只记录修复意图
 * @dependencies dq-engine-service/service/analysis, dq-engine-service/service/metrics, dq-engine-service/service/knowledge, github.com/prometheus/client_golang
 * @refs scheduler.go
 */

package cycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"dq-engine-service/service/analysis"
	"dq-engine-service/service/knowledge"
	svcmetrics "dq-engine-service/service/metrics"
	"dq-engine-service/service/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

// 周期阶段
const (
	PhaseIdentification = "identification"
	PhaseTreatment      = "treatment"
	PhaseRemediation    = "remediation"
	PhaseMetrics        = "metrics"
	PhaseReporting      = "reporting"
	PhaseIdle           = "idle"
)

// 修复模式
// log_only 仅记录符合条件的修复意图，不调用修复执行器；
// apply 才真正调用修复执行器并记录结果反馈
const (
	RemediateModeLogOnly = "log_only"
	RemediateModeApply   = "apply"
)

// 方案阶段处理的问题数量上限（硬编码，不可配置）
const treatmentIssueCap = 20

// 自动修复的准入条件：置信度 > 0.7 且成本为 low
const autoRemediateConfidence = 0.7

// 每个维度检查的问题抓取上限
const limitPerCheck = 50

var (
	cyclesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dq_cycles_total",
		Help: "已执行的质量治理周期总数",
	})
	issuesDetectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dq_issues_detected_total",
		Help: "周期内检测到的问题总数",
	})
	treatmentsAnalyzedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dq_treatments_analyzed_total",
		Help: "周期内完成方案分析的问题总数",
	})
	fixesAppliedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dq_fixes_applied_total",
		Help: "周期内记录的修复动作总数",
	})
)

// Identifier 问题检测协作方接口（外部检测层）
type Identifier interface {
	RunAllChecks(ctx context.Context, limitPerCheck int) (map[string][]models.Issue, error)
}

// Remediator 修复执行协作方接口（外部修复层）
type Remediator interface {
	Apply(ctx context.Context, treatment *models.Treatment, issue *models.Issue) (*models.RemediationResult, error)
}

// Orchestrator 质量治理周期编排器
type Orchestrator struct {
	db          *gorm.DB
	identifier  Identifier
	recommender *analysis.TreatmentRecommender
	metrics     *svcmetrics.MetricsService
	store       *knowledge.Store
	remediator  Remediator
	mode        string

	mu           sync.RWMutex
	currentPhase string
}

// NewOrchestrator 创建周期编排器实例
// remediateMode 为空时默认 log_only
func NewOrchestrator(db *gorm.DB, identifier Identifier, recommender *analysis.TreatmentRecommender,
	metricsService *svcmetrics.MetricsService, store *knowledge.Store, remediator Remediator,
	remediateMode string) *Orchestrator {
	if remediateMode == "" {
		remediateMode = RemediateModeLogOnly
	}
	return &Orchestrator{
		db:           db,
		identifier:   identifier,
		recommender:  recommender,
		metrics:      metricsService,
		store:        store,
		remediator:   remediator,
		mode:         remediateMode,
		currentPhase: PhaseIdle,
	}
}

// CurrentPhase 获取当前执行阶段（运行中可观测）
func (o *Orchestrator) CurrentPhase() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.currentPhase
}

func (o *Orchestrator) setPhase(phase string) {
	o.mu.Lock()
	o.currentPhase = phase
	o.mu.Unlock()
}

// RunFullDQCycle 执行完整的质量治理周期
// 任一阶段失败即整体失败，不产出部分报告
func (o *Orchestrator) RunFullDQCycle(ctx context.Context, executedBy string) (*models.CycleResult, error) {
	if executedBy == "" {
		executedBy = "system"
	}
	cycleID := "CYCLE_" + time.Now().UTC().Format("20060102_150405")
	slog.Info("开始执行质量治理周期", "cycle_id", cycleID, "executed_by", executedBy, "mode", o.mode)

	defer o.setPhase(PhaseIdle)

	// 阶段1：问题识别
	o.setPhase(PhaseIdentification)
	issuesByDimension, err := o.identifier.RunAllChecks(ctx, limitPerCheck)
	if err != nil {
		return nil, fmt.Errorf("问题识别阶段失败: %w", err)
	}

	allIssues := make([]models.Issue, 0)
	byDimension := make(map[string]int)
	for _, dimension := range models.QualityDimensions {
		issues := issuesByDimension[dimension]
		byDimension[dimension] = len(issues)
		for _, issue := range issues {
			issue.Dimension = dimension
			allIssues = append(allIssues, issue)
		}
	}
	issuesDetectedTotal.Add(float64(len(allIssues)))
	slog.Info("问题识别完成", "cycle_id", cycleID, "total_issues", len(allIssues))

	// 阶段2：方案建议与根因分析（仅处理前20个问题）
	o.setPhase(PhaseTreatment)
	capped := allIssues
	if len(capped) > treatmentIssueCap {
		capped = capped[:treatmentIssueCap]
	}

	treatmentsByIssue := make(map[string]*models.TreatmentAnalysis, len(capped))
	for i := range capped {
		issue := capped[i]
		issueType := issue.IssueType
		if issueType == "" {
			issueType = "unknown"
		}
		issueKey := fmt.Sprintf("%s_%d", issueType, i)

		treatmentAnalysis, err := o.recommender.AnalyzeAndSuggest(&issue)
		if err != nil {
			return nil, fmt.Errorf("方案建议阶段失败: %w", err)
		}
		treatmentsByIssue[issueKey] = treatmentAnalysis
	}
	treatmentsAnalyzedTotal.Add(float64(len(treatmentsByIssue)))
	slog.Info("方案建议完成", "cycle_id", cycleID, "issues_analyzed", len(treatmentsByIssue))

	// 阶段3：修复
	o.setPhase(PhaseRemediation)
	fixesApplied, err := o.remediate(ctx, treatmentsByIssue)
	if err != nil {
		return nil, fmt.Errorf("修复阶段失败: %w", err)
	}
	fixesAppliedTotal.Add(float64(len(fixesApplied)))

	// 阶段4：度量计算
	o.setPhase(PhaseMetrics)
	dqMetrics, err := o.metrics.CalculateOverallDQScore(ctx)
	if err != nil {
		return nil, fmt.Errorf("度量计算阶段失败: %w", err)
	}
	roiMetrics := o.metrics.CalculateROIAndCost(len(allIssues), len(fixesApplied))
	slog.Info("度量计算完成", "cycle_id", cycleID,
		"dq_score", dqMetrics.OverallDQScore, "grade", dqMetrics.Grade,
		"roi_percentage", roiMetrics.ROI.Percentage)

	// 阶段5：报告生成与周期学习
	o.setPhase(PhaseReporting)
	result := &models.CycleResult{
		CycleID:       cycleID,
		ExecutedBy:    executedBy,
		ExecutedAt:    time.Now().UTC(),
		RemediateMode: o.mode,
		TotalIssues:   len(allIssues),
		ByDimension:   byDimension,
		Treatments:    treatmentsByIssue,
		FixesApplied:  fixesApplied,
		QualityReport: dqMetrics,
		ROIReport:     roiMetrics,
	}

	if err := o.persistCycle(result); err != nil {
		return nil, err
	}

	cyclesTotal.Inc()
	slog.Info("质量治理周期执行完成", "cycle_id", cycleID)
	return result, nil
}

// remediate 修复阶段：筛选符合自动修复条件的首选方案
// log_only 模式仅记录修复意图（would_apply），apply 模式调用修复执行器并记录结果反馈
func (o *Orchestrator) remediate(ctx context.Context, treatmentsByIssue map[string]*models.TreatmentAnalysis) ([]models.AppliedFix, error) {
	fixes := make([]models.AppliedFix, 0)

	for _, ta := range treatmentsByIssue {
		recommended := ta.RecommendedTreatment
		if recommended == nil {
			continue
		}
		if recommended.Confidence <= autoRemediateConfidence || recommended.Cost != "low" {
			continue
		}

		if o.mode == RemediateModeApply && o.remediator != nil {
			result, err := o.remediator.Apply(ctx, recommended, ta.Issue)
			if err != nil {
				return nil, fmt.Errorf("调用修复执行器失败: %w", err)
			}
			fixes = append(fixes, models.AppliedFix{
				Issue:     ta.Issue,
				Treatment: recommended,
				Status:    result.Status,
				Timestamp: result.Timestamp,
			})
			continue
		}

		slog.Info("符合自动修复条件（仅记录）",
			"treatment_id", recommended.TreatmentID,
			"description", recommended.Description)
		fixes = append(fixes, models.AppliedFix{
			Issue:     ta.Issue,
			Treatment: recommended,
			Status:    "would_apply",
			Timestamp: time.Now().UTC(),
		})
	}

	return fixes, nil
}

// persistCycle 落盘周期执行记录并回写一条周期学习模式
func (o *Orchestrator) persistCycle(result *models.CycleResult) error {
	record := &models.DQCycleRecord{
		ID:            result.CycleID,
		ExecutedBy:    result.ExecutedBy,
		RemediateMode: result.RemediateMode,
		TotalIssues:   result.TotalIssues,
		FixesApplied:  len(result.FixesApplied),
		DQScore:       result.QualityReport.OverallDQScore,
		Grade:         result.QualityReport.Grade,
		Report: models.JSONB{
			"by_dimension":    result.ByDimension,
			"issues_analyzed": len(result.Treatments),
			"roi_percentage":  result.ROIReport.ROI.Percentage,
			"cost_savings":    result.ROIReport.Costs.Savings,
			"materiality":     result.ROIReport.Materiality,
		},
		ExecutedAt: result.ExecutedAt,
	}
	if err := o.db.Create(record).Error; err != nil {
		return fmt.Errorf("保存周期执行记录失败: %w", err)
	}

	// 周期学习：将本轮结果沉淀为一条学习模式
	_, err := o.store.AddLearnedPattern(&models.LearnedPattern{
		PatternType: "dq_cycle_summary",
		Indicators:  models.JSONBStringArray{result.QualityReport.Grade},
		Frequency:   result.TotalIssues,
		Metadata: models.JSONB{
			"cycle_id":     result.CycleID,
			"dq_score":     result.QualityReport.OverallDQScore,
			"grade":        result.QualityReport.Grade,
			"total_issues": result.TotalIssues,
		},
	})
	if err != nil {
		return fmt.Errorf("回写周期学习模式失败: %w", err)
	}
	return nil
}

// GetCycleRecord 按ID获取周期执行记录，不存在时返回 nil
func (o *Orchestrator) GetCycleRecord(cycleID string) (*models.DQCycleRecord, error) {
	var record models.DQCycleRecord
	err := o.db.Where("id = ?", cycleID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询周期执行记录失败: %w", err)
	}
	return &record, nil
}

// GetCycleRecords 获取周期执行记录列表，按执行时间倒序
func (o *Orchestrator) GetCycleRecords(limit int) ([]models.DQCycleRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	var records []models.DQCycleRecord
	err := o.db.Order("executed_at desc").Limit(limit).Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("查询周期执行记录失败: %w", err)
	}
	return records, nil
}
