/*
 * @module service/knowledge/store_test
 * @description 知识库服务测试，覆盖规则审批、方案日志、成功率更新、学习模式和根因记录
 * @architecture 测试层
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow 测试数据输入 -> 知识库操作 -> 结果验证
 * @rules 使用内存sqlite数据库，每个测试独立建库
 * @dependencies testing, testify, dq-engine-service/testutil
 * @refs store.go
 */

package knowledge

import (
	"testing"

	"dq-engine-service/service/models"
	"dq-engine-service/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *testutil.TestDB) {
	tdb := testutil.NewTestDB()
	t.Cleanup(tdb.Close)
	return NewStore(tdb.DB), tdb
}

func TestAddRuleDefaultsToPending(t *testing.T) {
	store, _ := newTestStore(t)

	rule, err := store.AddRule(&models.QualityRule{RuleText: "email must be unique"}, "consistency", "")
	require.NoError(t, err)
	require.NotEmpty(t, rule.ID)
	assert.Equal(t, models.RuleStatusPending, rule.ApprovalStatus)
	assert.Equal(t, "consistency", rule.Category)

	found, err := store.GetRule(rule.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "email must be unique", found.RuleText)
}

func TestGetRuleMissingReturnsNil(t *testing.T) {
	store, _ := newTestStore(t)

	rule, err := store.GetRule("00000000-0000-0000-0000-000000000000")
	require.NoError(t, err)
	assert.Nil(t, rule)
}

func TestApproveRule(t *testing.T) {
	store, _ := newTestStore(t)

	rule, err := store.AddRule(&models.QualityRule{RuleText: "dob must not be null"}, "completeness", "")
	require.NoError(t, err)

	err = store.ApproveRule(rule.ID, "alice")
	require.NoError(t, err)

	found, err := store.GetRule(rule.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, models.RuleStatusApproved, found.ApprovalStatus)
	assert.Equal(t, "alice", found.ApprovedBy)
	assert.NotNil(t, found.ApprovedAt)
}

func TestApproveRuleMissingIsNoop(t *testing.T) {
	store, _ := newTestStore(t)

	err := store.ApproveRule("no-such-rule", "alice")
	assert.NoError(t, err)
}

func TestGetRulesByCategory(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.AddRule(&models.QualityRule{RuleText: "r1"}, "validity", "")
	require.NoError(t, err)
	_, err = store.AddRule(&models.QualityRule{RuleText: "r2"}, "validity", "")
	require.NoError(t, err)
	_, err = store.AddRule(&models.QualityRule{RuleText: "r3"}, "accuracy", "")
	require.NoError(t, err)

	rules, err := store.GetRulesByCategory("validity")
	require.NoError(t, err)
	assert.Len(t, rules, 2)
}

func TestAddTreatmentDefaults(t *testing.T) {
	store, tdb := newTestStore(t)

	err := store.AddTreatment(&models.KnowledgeTreatment{
		TreatmentID: "T_abc123",
		IssueType:   "invalid_email",
		Description: "Standardize email format",
	})
	require.NoError(t, err)

	var saved models.KnowledgeTreatment
	require.NoError(t, tdb.DB.First(&saved, "treatment_id = ?", "T_abc123").Error)
	assert.Equal(t, 0.5, saved.Confidence)
	assert.Equal(t, "low", saved.Cost)
	assert.Equal(t, "true", saved.ApprovalRequired)
}

func TestTreatmentLogIsAppendOnly(t *testing.T) {
	store, _ := newTestStore(t)

	// 同一问题类型重复写入同样的方案描述，不去重
	for i := 0; i < 3; i++ {
		err := store.AddTreatment(&models.KnowledgeTreatment{
			TreatmentID: "T_dup001",
			IssueType:   "duplicate",
			Description: "Merge duplicate records",
		})
		require.NoError(t, err)
	}

	treatments, err := store.GetTreatmentsForIssue("duplicate")
	require.NoError(t, err)
	assert.Len(t, treatments, 3)
}

func TestNextSuccessRateSequence(t *testing.T) {
	rate := 0.0
	rate = NextSuccessRate(rate, true)
	assert.InDelta(t, 0.1, rate, 1e-9)
	rate = NextSuccessRate(rate, true)
	assert.InDelta(t, 0.19, rate, 1e-9)
	rate = NextSuccessRate(rate, false)
	assert.InDelta(t, 0.171, rate, 1e-9)
}

func TestUpdateTreatmentSuccessRate(t *testing.T) {
	store, tdb := newTestStore(t)

	testutil.CreateTestTreatment(tdb.DB, "T_ema001", "missing_dob", 0.75, 0.0)

	require.NoError(t, store.UpdateTreatmentSuccessRate("T_ema001", true))
	require.NoError(t, store.UpdateTreatmentSuccessRate("T_ema001", true))
	require.NoError(t, store.UpdateTreatmentSuccessRate("T_ema001", false))

	var saved models.KnowledgeTreatment
	require.NoError(t, tdb.DB.First(&saved, "treatment_id = ?", "T_ema001").Error)
	assert.InDelta(t, 0.171, saved.SuccessRate, 1e-9)
}

func TestUpdateTreatmentSuccessRateOnlyFirstRow(t *testing.T) {
	store, tdb := newTestStore(t)

	// 同一方案ID的两行日志，只有首行（最小序号）被更新
	testutil.CreateTestTreatment(tdb.DB, "T_multi01", "duplicate", 0.7, 0.0)
	testutil.CreateTestTreatment(tdb.DB, "T_multi01", "duplicate", 0.7, 0.0)

	require.NoError(t, store.UpdateTreatmentSuccessRate("T_multi01", true))

	var rows []models.KnowledgeTreatment
	require.NoError(t, tdb.DB.Order("seq asc").Find(&rows, "treatment_id = ?", "T_multi01").Error)
	require.Len(t, rows, 2)
	assert.InDelta(t, 0.1, rows[0].SuccessRate, 1e-9)
	assert.InDelta(t, 0.0, rows[1].SuccessRate, 1e-9)
}

func TestUpdateTreatmentSuccessRateMissingIsNoop(t *testing.T) {
	store, _ := newTestStore(t)

	err := store.UpdateTreatmentSuccessRate("T_nothere", true)
	assert.NoError(t, err)
}

func TestAddTreatmentOutcomeUpdatesRate(t *testing.T) {
	store, tdb := newTestStore(t)

	testutil.CreateTestTreatment(tdb.DB, "T_out0001", "orphaned_record", 0.8, 0.0)

	err := store.AddTreatmentOutcome("T_out0001", "issue-1", true, models.JSONB{"note": "resolved"})
	require.NoError(t, err)

	outcomes, err := store.GetTreatmentOutcomes("T_out0001", 10)
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.True(t, outcomes[0].Success)

	var saved models.KnowledgeTreatment
	require.NoError(t, tdb.DB.First(&saved, "treatment_id = ?", "T_out0001").Error)
	assert.InDelta(t, 0.1, saved.SuccessRate, 1e-9)
}

func TestAddLearnedPatternIDFormat(t *testing.T) {
	store, _ := newTestStore(t)

	first, err := store.AddLearnedPattern(&models.LearnedPattern{
		PatternType: "recurring_issue",
		Indicators:  models.JSONBStringArray{"missing_dob"},
	})
	require.NoError(t, err)
	assert.Equal(t, "PAT_0001", first.ID)

	second, err := store.AddLearnedPattern(&models.LearnedPattern{
		PatternType: "recurring_issue",
		Indicators:  models.JSONBStringArray{"invalid_email"},
	})
	require.NoError(t, err)
	assert.Equal(t, "PAT_0002", second.ID)

	patterns, err := store.GetLearnedPatterns(0)
	require.NoError(t, err)
	assert.Len(t, patterns, 2)
}

func TestAddRootCauseConfidenceFromEvidence(t *testing.T) {
	store, _ := newTestStore(t)

	err := store.AddRootCause("missing_dob", "Source system does not enforce DOB", models.JSONB{
		"confidence": 0.75,
		"pattern":    "source_gap",
	})
	require.NoError(t, err)

	// 证据缺少置信度时使用默认值
	err = store.AddRootCause("missing_dob", "Legacy migration dropped values", models.JSONB{
		"pattern": "migration",
	})
	require.NoError(t, err)

	causes, err := store.GetRootCauses("missing_dob")
	require.NoError(t, err)
	require.Len(t, causes, 2)
	assert.InDelta(t, 0.75, causes[0].Confidence, 1e-9)
	assert.InDelta(t, 0.5, causes[1].Confidence, 1e-9)
}
