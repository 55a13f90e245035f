/*
 * @module service/models/quality_models
 * @description 质量评估相关值类型定义，包括问题、根因、治理方案、维度评分、质量报告、ROI报告
 * @architecture 分层架构 - 数据模型层
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow 检测层产出问题 -> 分析层产出根因与方案 -> 度量层产出评分与报告
 * @rules 值类型按调用即时计算，除快照外不单独持久化
 * @dependencies time
 * @refs service/analysis, service/metrics, service/cycle
 */

package models

import "time"

// 五个质量维度
const (
	DimensionCompleteness = "completeness"
	DimensionValidity     = "validity"
	DimensionConsistency  = "consistency"
	DimensionAccuracy     = "accuracy"
	DimensionTimeliness   = "timeliness"
)

// QualityDimensions 维度固定顺序
var QualityDimensions = []string{
	DimensionCompleteness,
	DimensionValidity,
	DimensionConsistency,
	DimensionAccuracy,
	DimensionTimeliness,
}

// Issue 检测层产出的数据质量问题
// 引擎只读，不修改问题本身
type Issue struct {
	IssueType string `json:"issue_type"`
	Dimension string `json:"dimension"`
	Severity  string `json:"severity,omitempty"`
	Data      JSONB  `json:"data,omitempty"`
}

// RootCause 根因假设
type RootCause struct {
	RootCause  string  `json:"root_cause"`
	Confidence float64 `json:"confidence"`
	Evidence   JSONB   `json:"evidence"`
}

// Treatment 治理方案建议
type Treatment struct {
	TreatmentID      string   `json:"treatment_id"`
	Description      string   `json:"description"`
	Confidence       float64  `json:"confidence"`
	SuccessRate      float64  `json:"success_rate"`
	Cost             string   `json:"cost"`
	ApprovalRequired bool     `json:"approval_required"`
	Steps            []string `json:"steps,omitempty"`
	Source           string   `json:"source,omitempty"` // knowledge_bank / generated
}

// TreatmentAnalysis 完整分析结果：根因 + 治理方案 + 首选方案
type TreatmentAnalysis struct {
	Issue                *Issue      `json:"issue"`
	RootCauses           []RootCause `json:"root_causes"`
	Treatments           []Treatment `json:"treatments"`
	RecommendedTreatment *Treatment  `json:"recommended_treatment"`
}

// CompletenessCounts 完整性维度聚合计数（由检测层提供）
type CompletenessCounts struct {
	TotalRecords int64            `json:"total_records"`
	FieldNonNull map[string]int64 `json:"field_non_null"`
}

// ValidityCheckCounts 有效性单项检查计数
type ValidityCheckCounts struct {
	Name  string `json:"name"`
	Total int64  `json:"total"`
	Valid int64  `json:"valid"`
}

// ConsistencyCounts 一致性维度聚合计数
type ConsistencyCounts struct {
	TotalRecords    int64 `json:"total_records"`
	UniqueRecords   int64 `json:"unique_records"`
	TotalReferences int64 `json:"total_references"`
	ValidReferences int64 `json:"valid_references"`
}

// AccuracyCounts 准确性维度聚合计数（3σ 离群点剔除）
type AccuracyCounts struct {
	Total          int64 `json:"total"`
	WithinThreeStd int64 `json:"within_3_std"`
}

// TimelinessCounts 时效性维度聚合计数（365天新鲜度窗口）
type TimelinessCounts struct {
	TotalRecords  int64 `json:"total_records"`
	RecentRecords int64 `json:"recent_records"`
}

// QualityCounts 检测层一次性提供的全部聚合计数
type QualityCounts struct {
	Completeness *CompletenessCounts   `json:"completeness,omitempty"`
	Validity     []ValidityCheckCounts `json:"validity,omitempty"`
	Consistency  *ConsistencyCounts    `json:"consistency,omitempty"`
	Accuracy     *AccuracyCounts       `json:"accuracy,omitempty"`
	Timeliness   *TimelinessCounts     `json:"timeliness,omitempty"`
}

// DimensionScore 单维度评分结果
type DimensionScore struct {
	Dimension              string             `json:"dimension"`
	Overall                float64            `json:"overall"`
	ByField                map[string]float64 `json:"by_field,omitempty"`
	ByCheck                map[string]float64 `json:"by_check,omitempty"`
	TotalRecords           int64              `json:"total_records,omitempty"`
	DuplicateCount         int64              `json:"duplicate_count,omitempty"`
	OrphanedCount          int64              `json:"orphaned_count,omitempty"`
	OutlierCount           int64              `json:"outlier_count,omitempty"`
	StaleCount             int64              `json:"stale_count,omitempty"`
	FreshnessThresholdDays int                `json:"freshness_threshold_days,omitempty"`
}

// QualityReport 五维加权质量报告
type QualityReport struct {
	OverallDQScore float64                    `json:"overall_dq_score"`
	Grade          string                     `json:"grade"`
	Dimensions     map[string]*DimensionScore `json:"dimensions"`
	Weights        map[string]float64         `json:"weights"`
	CalculatedAt   time.Time                  `json:"calculated_at"`
}

// ROICosts 成本对比
type ROICosts struct {
	ManualApproach    float64 `json:"manual_approach"`
	AutomatedApproach float64 `json:"automated_approach"`
	Savings           float64 `json:"savings"`
	Currency          string  `json:"currency"`
}

// ROITime 耗时对比
type ROITime struct {
	ManualHours    float64 `json:"manual_hours"`
	AutomatedHours float64 `json:"automated_hours"`
	SavedHours     float64 `json:"saved_hours"`
	SavedDays      float64 `json:"saved_days"`
}

// ROICostOfInaction 不作为成本
type ROICostOfInaction struct {
	Total       float64 `json:"total"`
	PerIssue    float64 `json:"per_issue"`
	Description string  `json:"description"`
}

// ROIFigures 投资回报
// PaybackMonths 在月均节省为零时取 "N/A" 哨兵值，否则为保留一位小数的月数
type ROIFigures struct {
	Percentage    float64     `json:"percentage"`
	Investment    float64     `json:"investment"`
	Returns       float64     `json:"returns"`
	PaybackMonths interface{} `json:"payback_months"`
}

// ROIReport ROI 与不作为成本报告
type ROIReport struct {
	IssuesDetected   int               `json:"issues_detected"`
	IssuesRemediated int               `json:"issues_remediated"`
	IssuesRemaining  int               `json:"issues_remaining"`
	Costs            ROICosts          `json:"costs"`
	Time             ROITime           `json:"time"`
	CostOfInaction   ROICostOfInaction `json:"cost_of_inaction"`
	ROI              ROIFigures        `json:"roi"`
	Materiality      string            `json:"materiality"` // LOW/MEDIUM/HIGH/CRITICAL
}

// FullReport 综合质量报告
type FullReport struct {
	ReportType      string         `json:"report_type"`
	GeneratedAt     time.Time      `json:"generated_at"`
	QualityMetrics  *QualityReport `json:"data_quality_metrics"`
	ROIAnalysis     *ROIReport     `json:"roi_analysis"`
	Recommendations []string       `json:"recommendations"`
}

// RemediationResult 修复执行结果（修复执行器为外部协作方）
type RemediationResult struct {
	Status    string    `json:"status"` // applied/would_apply/failed/dryrun
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// AppliedFix 周期内记录的修复动作
type AppliedFix struct {
	Issue     *Issue     `json:"issue"`
	Treatment *Treatment `json:"treatment"`
	Status    string     `json:"status"`
	Timestamp time.Time  `json:"timestamp"`
}

// CycleResult 完整治理周期结果
type CycleResult struct {
	CycleID       string                        `json:"cycle_id"`
	ExecutedBy    string                        `json:"executed_by"`
	ExecutedAt    time.Time                     `json:"executed_at"`
	RemediateMode string                        `json:"remediate_mode"`
	TotalIssues   int                           `json:"total_issues"`
	ByDimension   map[string]int                `json:"by_dimension"`
	Treatments    map[string]*TreatmentAnalysis `json:"treatments_by_issue"`
	FixesApplied  []AppliedFix                  `json:"fixes_applied"`
	QualityReport *QualityReport                `json:"dq_metrics"`
	ROIReport     *ROIReport                    `json:"roi_metrics"`
}
