/*
 * @module service/models/knowledge
 * @description 知识库相关模型定义，包括质量规则、治理方案、根因记录、学习模式等
 * @architecture 分层架构 - 数据模型层
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow 知识积累生命周期管理：新增 -> 审批/反馈 -> 复用
 * @rules 治理方案日志为追加式存储，不做去重和合并
 * @dependencies gorm.io/gorm, github.com/google/uuid
 * @refs service/knowledge
 */

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 规则审批状态
const (
	RuleStatusPending  = "pending"
	RuleStatusApproved = "approved"
	RuleStatusRejected = "rejected"
)

// QualityRule 数据质量规则模型
type QualityRule struct {
	ID             string     `gorm:"type:uuid;primary_key" json:"rule_id"`
	RuleText       string     `gorm:"not null" json:"rule_text"`
	SQLSnippet     string     `json:"sql_snippet"`
	Category       string     `gorm:"not null;index" json:"category"` // completeness/validity/consistency/accuracy/timeliness
	ApprovalStatus string     `gorm:"not null;default:'pending'" json:"approval_status"`
	ApprovedBy     string     `json:"approved_by"`
	ApprovedAt     *time.Time `json:"approved_ts,omitempty"`
	Metadata       JSONB      `gorm:"type:jsonb" json:"metadata"`
	CreatedAt      time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_ts"`
	CreatedBy      string     `gorm:"not null;default:'system';size:100" json:"created_by"`
}

// BeforeCreate 创建前钩子
func (q *QualityRule) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	if q.ApprovalStatus == "" {
		q.ApprovalStatus = RuleStatusPending
	}
	if q.CreatedBy == "" {
		q.CreatedBy = "system"
	}
	return nil
}

// KnowledgeTreatment 治理方案日志模型
// 追加式日志：同一 treatment_id 可能出现多行，主键为自增序号
type KnowledgeTreatment struct {
	Seq              int64            `gorm:"primaryKey;autoIncrement" json:"seq"`
	TreatmentID      string           `gorm:"not null;index" json:"treatment_id"`
	IssueType        string           `gorm:"not null;index" json:"issue_type"`
	Description      string           `gorm:"not null" json:"description"`
	Confidence       float64          `gorm:"not null;default:0.5" json:"confidence"`
	Cost             string           `gorm:"not null;default:'low'" json:"cost"` // low/medium/high
	ApprovalRequired string           `gorm:"not null;default:'true'" json:"approval_required"`
	SuccessRate      float64          `gorm:"not null;default:0" json:"success_rate"`
	Steps            JSONBStringArray `gorm:"type:jsonb" json:"steps"`
	ApprovedBy       string           `json:"approved_by"`
	CreatedAt        time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_ts"`
}

// TreatmentOutcome 治理方案执行结果模型
type TreatmentOutcome struct {
	ID          string    `gorm:"type:uuid;primary_key" json:"id"`
	TreatmentID string    `gorm:"not null;index" json:"treatment_id"`
	IssueID     string    `gorm:"not null" json:"issue_id"`
	Success     bool      `gorm:"not null" json:"success"`
	Details     JSONB     `gorm:"type:jsonb" json:"details"`
	RecordedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"recorded_ts"`
}

// BeforeCreate 创建前钩子
func (t *TreatmentOutcome) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}

// LearnedPattern 学习模式模型
type LearnedPattern struct {
	ID          string           `gorm:"primary_key" json:"pattern_id"` // PAT_0001 格式
	PatternType string           `gorm:"not null" json:"pattern_type"`
	Indicators  JSONBStringArray `gorm:"type:jsonb" json:"indicators"`
	Frequency   int              `gorm:"not null;default:0" json:"frequency"`
	Severity    string           `gorm:"not null;default:'medium'" json:"severity"`
	Metadata    JSONB            `gorm:"type:jsonb" json:"metadata"`
	LearnedAt   time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"learned_ts"`
}

// RootCauseRecord 根因分析记录模型
// 按 issue_type 追加存储，不做去重，保留完整分析历史
type RootCauseRecord struct {
	Seq          int64     `gorm:"primaryKey;autoIncrement" json:"seq"`
	IssueType    string    `gorm:"not null;index" json:"issue_type"`
	RootCause    string    `gorm:"not null" json:"root_cause"`
	Confidence   float64   `gorm:"not null;default:0.5" json:"confidence"`
	Evidence     JSONB     `gorm:"type:jsonb" json:"evidence"`
	IdentifiedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"identified_ts"`
}

// MetricsSnapshot 质量度量快照模型（追加式历史，无保留策略）
type MetricsSnapshot struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Source         string    `gorm:"not null;default:'5d_calculation'" json:"source"`
	OverallDQScore float64   `gorm:"not null" json:"overall_dq_score"`
	Completeness   float64   `gorm:"not null" json:"completeness"`
	Validity       float64   `gorm:"not null" json:"validity"`
	Consistency    float64   `gorm:"not null" json:"consistency"`
	Accuracy       float64   `gorm:"not null" json:"accuracy"`
	Timeliness     float64   `gorm:"not null" json:"timeliness"`
	CreatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_ts"`
}

// DQCycleRecord 质量治理周期执行记录模型
type DQCycleRecord struct {
	ID            string    `gorm:"primary_key" json:"cycle_id"` // CYCLE_20060102_150405 格式
	ExecutedBy    string    `gorm:"not null;default:'system'" json:"executed_by"`
	RemediateMode string    `gorm:"not null" json:"remediate_mode"`
	TotalIssues   int       `gorm:"not null" json:"total_issues"`
	FixesApplied  int       `gorm:"not null" json:"fixes_applied"`
	DQScore       float64   `gorm:"not null" json:"dq_score"`
	Grade         string    `gorm:"not null" json:"grade"`
	Report        JSONB     `gorm:"type:jsonb" json:"report"`
	ExecutedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"executed_ts"`
}

// SystemLog 系统审计日志模型
type SystemLog struct {
	ID         string    `gorm:"type:uuid;primary_key" json:"id"`
	Actor      string    `gorm:"not null;size:100" json:"actor"`
	ActionType string    `gorm:"not null;size:100" json:"action_type"`
	Target     string    `gorm:"not null" json:"target"`
	Details    JSONB     `gorm:"type:jsonb" json:"details"`
	Status     string    `gorm:"not null;default:'success'" json:"status"`
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_ts"`
}

// BeforeCreate 创建前钩子
func (s *SystemLog) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}
