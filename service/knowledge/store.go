/*
 * @module service/knowledge/store
 * @description 知识库存储服务，持久化质量规则、治理方案、根因记录与学习模式，是引擎唯一的持久化边界
 * @architecture 分层架构 - 业务服务层
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow 规则新增 -> 审批；方案追加 -> 结果反馈 -> 成功率更新
 * @rules 全部写操作经单写者互斥锁串行化并包裹在事务中；查找缺失返回空值而非错误
 * @dependencies dq-engine-service/service/models, gorm.io/gorm, github.com/spf13/cast
 * @refs service/analysis, service/cycle
 */

package knowledge

import (
	"errors"
	"fmt"
	"sync"

	"dq-engine-service/service/models"

	"github.com/spf13/cast"
	"gorm.io/gorm"
)

// 成功率指数滑动平均的固定平滑系数
const successRateAlpha = 0.1

// Auditor 审计日志协作方接口，调用为尽力而为，失败不影响主流程
type Auditor interface {
	Record(actor, actionType, target string, details models.JSONB, status string)
}

// Store 知识库存储服务
type Store struct {
	db      *gorm.DB
	mu      sync.Mutex
	auditor Auditor
}

// NewStore 创建知识库存储服务实例
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// SetAuditor 设置审计日志协作方
func (s *Store) SetAuditor(a Auditor) {
	s.auditor = a
}

// audit 写审计日志，auditor 未配置时直接跳过
func (s *Store) audit(actionType, target string, details models.JSONB) {
	if s.auditor == nil {
		return
	}
	s.auditor.Record("dq-engine", actionType, target, details, "success")
}

// === 规则管理 ===

// AddRule 新增质量规则并归入维度分类，审批状态默认 pending
func (s *Store) AddRule(rule *models.QualityRule, category, approvalStatus string) (*models.QualityRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if category != "" {
		rule.Category = category
	}
	if approvalStatus == "" {
		approvalStatus = models.RuleStatusPending
	}
	rule.ApprovalStatus = approvalStatus

	if err := s.db.Create(rule).Error; err != nil {
		return nil, fmt.Errorf("新增质量规则失败: %w", err)
	}

	s.audit("add_rule", rule.ID, models.JSONB{"category": rule.Category})
	return rule, nil
}

// GetRule 按ID获取规则，不存在时返回 nil
func (s *Store) GetRule(ruleID string) (*models.QualityRule, error) {
	var rule models.QualityRule
	err := s.db.Where("id = ?", ruleID).First(&rule).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询质量规则失败: %w", err)
	}
	return &rule, nil
}

// GetRulesByCategory 获取指定维度分类下的全部规则
func (s *Store) GetRulesByCategory(category string) ([]models.QualityRule, error) {
	var rules []models.QualityRule
	err := s.db.Where("category = ?", category).Order("created_at asc").Find(&rules).Error
	if err != nil {
		return nil, fmt.Errorf("查询分类规则失败: %w", err)
	}
	return rules, nil
}

// ApproveRule 审批通过规则，规则不存在时为空操作
func (s *Store) ApproveRule(ruleID, approvedBy string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var rule models.QualityRule
		err := tx.Where("id = ?", ruleID).First(&rule).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		now := tx.NowFunc()
		rule.ApprovalStatus = models.RuleStatusApproved
		rule.ApprovedBy = approvedBy
		rule.ApprovedAt = &now
		return tx.Save(&rule).Error
	})
	if err != nil {
		return fmt.Errorf("审批规则失败: %w", err)
	}

	s.audit("approve_rule", ruleID, models.JSONB{"approved_by": approvedBy})
	return nil
}

// === 治理方案管理 ===

// AddTreatment 追加治理方案记录
// 追加式日志，不做合并或去重，重复调用会累积近似重复的记录
func (s *Store) AddTreatment(t *models.KnowledgeTreatment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.Confidence == 0 {
		t.Confidence = 0.5
	}
	if t.Cost == "" {
		t.Cost = "low"
	}
	if t.ApprovalRequired == "" {
		t.ApprovalRequired = "true"
	}

	if err := s.db.Create(t).Error; err != nil {
		return fmt.Errorf("追加治理方案失败: %w", err)
	}

	s.audit("add_treatment", t.TreatmentID, models.JSONB{"issue_type": t.IssueType})
	return nil
}

// GetTreatmentsForIssue 按问题类型精确匹配获取全部治理方案，按写入顺序返回
func (s *Store) GetTreatmentsForIssue(issueType string) ([]models.KnowledgeTreatment, error) {
	var treatments []models.KnowledgeTreatment
	err := s.db.Where("issue_type = ?", issueType).Order("seq asc").Find(&treatments).Error
	if err != nil {
		return nil, fmt.Errorf("查询治理方案失败: %w", err)
	}
	return treatments, nil
}

// UpdateTreatmentSuccessRate 按执行结果更新方案成功率
// 指数滑动平均：new = 0.9*old + 0.1*outcome；方案ID不存在时为空操作
func (s *Store) UpdateTreatmentSuccessRate(treatmentID string, success bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.updateSuccessRateLocked(treatmentID, success)
}

func (s *Store) updateSuccessRateLocked(treatmentID string, success bool) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var t models.KnowledgeTreatment
		err := tx.Where("treatment_id = ?", treatmentID).Order("seq asc").First(&t).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		t.SuccessRate = NextSuccessRate(t.SuccessRate, success)
		return tx.Save(&t).Error
	})
	if err != nil {
		return fmt.Errorf("更新方案成功率失败: %w", err)
	}
	return nil
}

// NextSuccessRate 计算一次结果反馈后的成功率
func NextSuccessRate(current float64, success bool) float64 {
	outcome := 0.0
	if success {
		outcome = 1.0
	}
	return current*(1-successRateAlpha) + outcome*successRateAlpha
}

// === 模式学习 ===

// AddLearnedPattern 追加学习模式，编号按现有数量递增生成（PAT_0001 格式）
// 编号生成与写入在同一事务内完成，避免并发写导致的编号冲突
func (s *Store) AddLearnedPattern(pattern *models.LearnedPattern) (*models.LearnedPattern, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.LearnedPattern{}).Count(&count).Error; err != nil {
			return err
		}

		pattern.ID = fmt.Sprintf("PAT_%04d", count+1)
		if pattern.Severity == "" {
			pattern.Severity = "medium"
		}
		return tx.Create(pattern).Error
	})
	if err != nil {
		return nil, fmt.Errorf("追加学习模式失败: %w", err)
	}

	s.audit("add_learned_pattern", pattern.ID, models.JSONB{"pattern_type": pattern.PatternType})
	return pattern, nil
}

// GetLearnedPatterns 获取学习模式列表，按学习时间倒序，limit<=0 时不限制
func (s *Store) GetLearnedPatterns(limit int) ([]models.LearnedPattern, error) {
	var patterns []models.LearnedPattern
	query := s.db.Order("learned_at desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&patterns).Error; err != nil {
		return nil, fmt.Errorf("查询学习模式失败: %w", err)
	}
	return patterns, nil
}

// === 根因管理 ===

// AddRootCause 追加根因记录，按问题类型归档，不做去重
func (s *Store) AddRootCause(issueType, rootCause string, evidence models.JSONB) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	confidence := 0.5
	if v, ok := evidence["confidence"]; ok {
		confidence = cast.ToFloat64(v)
	}

	record := &models.RootCauseRecord{
		IssueType:  issueType,
		RootCause:  rootCause,
		Confidence: confidence,
		Evidence:   evidence,
	}
	if err := s.db.Create(record).Error; err != nil {
		return fmt.Errorf("追加根因记录失败: %w", err)
	}

	s.audit("add_root_cause", issueType, models.JSONB{"root_cause": rootCause})
	return nil
}

// GetRootCauses 获取指定问题类型的已知根因，按写入顺序返回
func (s *Store) GetRootCauses(issueType string) ([]models.RootCauseRecord, error) {
	var records []models.RootCauseRecord
	err := s.db.Where("issue_type = ?", issueType).Order("seq asc").Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("查询根因记录失败: %w", err)
	}
	return records, nil
}

// === 结果反馈 ===

// AddTreatmentOutcome 记录治理方案执行结果并联动更新成功率
func (s *Store) AddTreatmentOutcome(treatmentID, issueID string, success bool, details models.JSONB) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	outcome := &models.TreatmentOutcome{
		TreatmentID: treatmentID,
		IssueID:     issueID,
		Success:     success,
		Details:     details,
	}
	if err := s.db.Create(outcome).Error; err != nil {
		return fmt.Errorf("记录执行结果失败: %w", err)
	}

	if err := s.updateSuccessRateLocked(treatmentID, success); err != nil {
		return err
	}

	s.audit("add_treatment_outcome", treatmentID, models.JSONB{
		"issue_id": issueID,
		"success":  success,
	})
	return nil
}

// GetTreatmentOutcomes 获取指定方案的执行结果历史，按记录时间倒序
func (s *Store) GetTreatmentOutcomes(treatmentID string, limit int) ([]models.TreatmentOutcome, error) {
	var outcomes []models.TreatmentOutcome
	query := s.db.Where("treatment_id = ?", treatmentID).Order("recorded_at desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&outcomes).Error; err != nil {
		return nil, fmt.Errorf("查询执行结果失败: %w", err)
	}
	return outcomes, nil
}
