/*
 * @module service/analysis/heuristics
 * @description 内置启发式知识表：按问题类型给出候选根因与治理方案模板
 * @architecture 分层架构 - 业务服务层
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow 问题类型查表 -> 命中返回固定条目 -> 未命中返回通用兜底条目
 * @rules 查表替代条件分支，置信度为固定先验值；未识别类型必须有显式兜底条目
 * @dependencies dq-engine-service/service/models
 * @refs root_cause.go, recommender.go
 */

package analysis

import "dq-engine-service/service/models"

// 内置可识别的问题类型
const (
	IssueTypeMissingDOB     = "missing_dob"
	IssueTypeNegativeAmount = "negative_amount"
	IssueTypeInvalidEmail   = "invalid_email"
	IssueTypeDuplicate      = "duplicate"
	IssueTypeOrphanedRecord = "orphaned_record"
)

// rootCauseHeuristics 按问题类型的候选根因表
// 条目顺序即优先级顺序：只有首条会被回写知识库
var rootCauseHeuristics = map[string][]models.RootCause{
	IssueTypeMissingDOB: {
		{
			RootCause:  "Data entry incomplete during customer onboarding",
			Confidence: 0.7,
			Evidence:   models.JSONB{"common_pattern": "new_customers"},
		},
		{
			RootCause:  "Legacy system migration data loss",
			Confidence: 0.5,
			Evidence:   models.JSONB{"common_pattern": "old_records"},
		},
		{
			RootCause:  "Privacy concerns - customer refused to provide",
			Confidence: 0.3,
			Evidence:   models.JSONB{"common_pattern": "specific_demographics"},
		},
	},
	IssueTypeNegativeAmount: {
		{
			RootCause:  "Incorrect sign in payment processing",
			Confidence: 0.8,
			Evidence:   models.JSONB{"pattern": "systematic_error"},
		},
		{
			RootCause:  "Refund/chargeback recorded incorrectly",
			Confidence: 0.6,
			Evidence:   models.JSONB{"pattern": "transaction_type"},
		},
	},
	IssueTypeInvalidEmail: {
		{
			RootCause:  "No email validation in data entry form",
			Confidence: 0.9,
			Evidence:   models.JSONB{"pattern": "input_validation_missing"},
		},
		{
			RootCause:  "Placeholder/test data in production",
			Confidence: 0.4,
			Evidence:   models.JSONB{"pattern": "test_accounts"},
		},
	},
	IssueTypeDuplicate: {
		{
			RootCause:  "No unique constraint on database",
			Confidence: 0.8,
			Evidence:   models.JSONB{"pattern": "database_design"},
		},
		{
			RootCause:  "Multiple system integrations creating duplicates",
			Confidence: 0.6,
			Evidence:   models.JSONB{"pattern": "integration_issue"},
		},
	},
	IssueTypeOrphanedRecord: {
		{
			RootCause:  "No foreign key constraints",
			Confidence: 0.7,
			Evidence:   models.JSONB{"pattern": "referential_integrity"},
		},
		{
			RootCause:  "Parent record deleted without cascade",
			Confidence: 0.6,
			Evidence:   models.JSONB{"pattern": "deletion_policy"},
		},
	},
}

// defaultRootCause 未识别问题类型的通用兜底根因
var defaultRootCause = models.RootCause{
	RootCause:  "Data quality check not implemented",
	Confidence: 0.5,
	Evidence:   models.JSONB{"pattern": "prevention_gap"},
}

// treatmentTemplate 治理方案模板，生成时再分配随机方案ID
type treatmentTemplate struct {
	Description      string
	Confidence       float64
	Cost             string
	ApprovalRequired bool
	Steps            []string
}

// treatmentHeuristics 按问题类型的治理方案模板表
var treatmentHeuristics = map[string][]treatmentTemplate{
	IssueTypeMissingDOB: {
		{
			Description:      "Impute from records with same email/phone (ML-based similarity)",
			Confidence:       0.75,
			Cost:             "medium",
			ApprovalRequired: true,
			Steps:            []string{"Find similar records", "Calculate average/mode DOB", "Apply with validation"},
		},
		{
			Description:      "Request from customer via email/SMS campaign",
			Confidence:       0.60,
			Cost:             "high",
			ApprovalRequired: false,
			Steps:            []string{"Generate outreach list", "Send automated request", "Update on response"},
		},
		{
			Description:      "Mark as incomplete and flag for manual review",
			Confidence:       0.90,
			Cost:             "low",
			ApprovalRequired: false,
			Steps:            []string{"Add flag to record", "Create manual review ticket"},
		},
	},
	IssueTypeNegativeAmount: {
		{
			Description:      "Convert to absolute value (if systematic sign error)",
			Confidence:       0.70,
			Cost:             "low",
			ApprovalRequired: true,
			Steps:            []string{"Verify pattern", "Apply ABS() function", "Audit results"},
		},
		{
			Description:      "Investigate and reclassify as refund/chargeback",
			Confidence:       0.60,
			Cost:             "medium",
			ApprovalRequired: true,
			Steps:            []string{"Check transaction type", "Reclassify if refund", "Update transaction category"},
		},
		{
			Description:      "Mark for financial audit and manual correction",
			Confidence:       0.85,
			Cost:             "high",
			ApprovalRequired: false,
			Steps:            []string{"Flag for audit", "Create ticket for finance team"},
		},
	},
	IssueTypeInvalidEmail: {
		{
			Description:      "Attempt auto-correction (common typos: @gmai.com -> @gmail.com)",
			Confidence:       0.65,
			Cost:             "low",
			ApprovalRequired: true,
			Steps:            []string{"Apply common typo fixes", "Validate format", "Update if valid"},
		},
		{
			Description:      "Request email update from customer",
			Confidence:       0.75,
			Cost:             "medium",
			ApprovalRequired: false,
			Steps:            []string{"Send verification request", "Provide update link", "Confirm new email"},
		},
		{
			Description:      "Clear invalid email and mark for re-entry",
			Confidence:       0.50,
			Cost:             "low",
			ApprovalRequired: true,
			Steps:            []string{"Set email to NULL", "Flag for customer contact"},
		},
	},
	IssueTypeDuplicate: {
		{
			Description:      "Merge duplicate records keeping most recent data",
			Confidence:       0.70,
			Cost:             "medium",
			ApprovalRequired: true,
			Steps:            []string{"Identify master record", "Merge fields", "Archive duplicates"},
		},
		{
			Description:      "Manual review to determine correct record",
			Confidence:       0.90,
			Cost:             "high",
			ApprovalRequired: false,
			Steps:            []string{"Create review task", "Compare records", "Mark winner", "Delete losers"},
		},
	},
	IssueTypeOrphanedRecord: {
		{
			Description:      "Archive orphaned record to historical table",
			Confidence:       0.80,
			Cost:             "low",
			ApprovalRequired: true,
			Steps:            []string{"Move to archive", "Add orphan_flag", "Log for audit"},
		},
		{
			Description:      "Attempt to match with parent based on other fields",
			Confidence:       0.50,
			Cost:             "medium",
			ApprovalRequired: true,
			Steps:            []string{"Fuzzy match on name/email", "Suggest parent", "Apply if high confidence"},
		},
	},
}

// defaultTreatment 未识别问题类型的通用兜底方案
var defaultTreatment = treatmentTemplate{
	Description:      "Flag for manual review",
	Confidence:       0.70,
	Cost:             "low",
	ApprovalRequired: false,
	Steps:            []string{"Create ticket", "Assign to DQ team"},
}

// heuristicRootCauses 返回问题类型对应的根因候选（副本），未命中返回兜底条目
func heuristicRootCauses(issueType string) []models.RootCause {
	causes, ok := rootCauseHeuristics[issueType]
	if !ok {
		return []models.RootCause{defaultRootCause}
	}
	out := make([]models.RootCause, len(causes))
	copy(out, causes)
	return out
}

// heuristicTreatments 返回问题类型对应的方案模板，未命中返回兜底条目
func heuristicTreatments(issueType string) []treatmentTemplate {
	templates, ok := treatmentHeuristics[issueType]
	if !ok {
		return []treatmentTemplate{defaultTreatment}
	}
	out := make([]treatmentTemplate, len(templates))
	copy(out, templates)
	return out
}
