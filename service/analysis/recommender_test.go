/*
 * @module service/analysis/recommender_test
 * @description 治理方案推荐器测试，覆盖历史分支排序截断、启发式分支排序回写与综合分析
 * @architecture 测试层
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow 测试数据输入 -> 推荐执行 -> 排序与回写验证
 * @rules 使用内存sqlite数据库，每个测试独立建库
 * @dependencies testing, testify, dq-engine-service/testutil
 * @refs recommender.go, heuristics.go
 */

package analysis

import (
	"strings"
	"testing"

	"dq-engine-service/service/knowledge"
	"dq-engine-service/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRecommender(t *testing.T) (*TreatmentRecommender, *knowledge.Store, *testutil.TestDB) {
	tdb := testutil.NewTestDB()
	t.Cleanup(tdb.Close)
	store := knowledge.NewStore(tdb.DB)
	analyzer := NewRootCauseAnalyzer(store)
	return NewTreatmentRecommender(store, analyzer), store, tdb
}

func TestRecommendHistoryBranchSortsBySuccessRate(t *testing.T) {
	recommender, _, tdb := newTestRecommender(t)

	testutil.CreateTestTreatment(tdb.DB, "T_low00", "missing_dob", 0.9, 0.2)
	testutil.CreateTestTreatment(tdb.DB, "T_high0", "missing_dob", 0.3, 0.8)
	testutil.CreateTestTreatment(tdb.DB, "T_mid00", "missing_dob", 0.6, 0.5)

	treatments, err := recommender.Recommend(testutil.CreateTestIssue("missing_dob", "completeness"), nil)
	require.NoError(t, err)
	require.Len(t, treatments, 3)

	// 成功率降序，而非置信度
	assert.Equal(t, "T_high0", treatments[0].TreatmentID)
	assert.Equal(t, "T_mid00", treatments[1].TreatmentID)
	assert.Equal(t, "T_low00", treatments[2].TreatmentID)
	for _, tr := range treatments {
		assert.Equal(t, "knowledge_bank", tr.Source)
	}
}

func TestRecommendHistoryBranchTruncatesToFive(t *testing.T) {
	recommender, _, tdb := newTestRecommender(t)

	rates := []float64{0.1, 0.9, 0.3, 0.7, 0.5, 0.2, 0.8}
	for i, rate := range rates {
		testutil.CreateTestTreatment(tdb.DB, "T_trunc"+string(rune('a'+i)), "duplicate", 0.5, rate)
	}

	treatments, err := recommender.Recommend(testutil.CreateTestIssue("duplicate", "consistency"), nil)
	require.NoError(t, err)
	require.Len(t, treatments, 5)

	assert.InDelta(t, 0.9, treatments[0].SuccessRate, 1e-9)
	assert.InDelta(t, 0.3, treatments[4].SuccessRate, 1e-9)
}

func TestRecommendHeuristicBranchSortsByConfidence(t *testing.T) {
	recommender, _, _ := newTestRecommender(t)

	treatments, err := recommender.Recommend(testutil.CreateTestIssue("missing_dob", "completeness"), nil)
	require.NoError(t, err)
	require.Len(t, treatments, 3)

	// 置信度降序：0.90, 0.75, 0.60
	assert.InDelta(t, 0.90, treatments[0].Confidence, 1e-9)
	assert.InDelta(t, 0.75, treatments[1].Confidence, 1e-9)
	assert.InDelta(t, 0.60, treatments[2].Confidence, 1e-9)

	for _, tr := range treatments {
		assert.Equal(t, "generated", tr.Source)
		assert.True(t, strings.HasPrefix(tr.TreatmentID, "T_"))
		assert.Len(t, tr.TreatmentID, 8)
		assert.InDelta(t, 0.0, tr.SuccessRate, 1e-9)
	}
}

func TestRecommendHeuristicBranchWritesAllBack(t *testing.T) {
	recommender, store, _ := newTestRecommender(t)

	_, err := recommender.Recommend(testutil.CreateTestIssue("invalid_email", "validity"), nil)
	require.NoError(t, err)

	records, err := store.GetTreatmentsForIssue("invalid_email")
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestRecommendHeuristicGenerationHappensOnce(t *testing.T) {
	recommender, store, _ := newTestRecommender(t)

	issue := testutil.CreateTestIssue("negative_amount", "validity")

	first, err := recommender.Recommend(issue, nil)
	require.NoError(t, err)
	require.Len(t, first, 3)

	// 回写按问题类型关联，第二次调用命中历史分支，不再重复生成
	second, err := recommender.Recommend(issue, nil)
	require.NoError(t, err)
	assert.Len(t, second, 3)

	records, err := store.GetTreatmentsForIssue("negative_amount")
	require.NoError(t, err)
	assert.Len(t, records, 3)

	// 历史分支方案ID与首次生成一致，但排序键换为成功率
	firstIDs := map[string]bool{}
	for _, tr := range first {
		firstIDs[tr.TreatmentID] = true
	}
	for _, tr := range second {
		assert.True(t, firstIDs[tr.TreatmentID])
		assert.Equal(t, "knowledge_bank", tr.Source)
	}
}

func TestRecommendUnknownIssueTypeUsesFallback(t *testing.T) {
	recommender, _, _ := newTestRecommender(t)

	treatments, err := recommender.Recommend(testutil.CreateTestIssue("totally_new_issue", ""), nil)
	require.NoError(t, err)
	require.Len(t, treatments, 1)
	assert.Equal(t, "Flag for manual review", treatments[0].Description)
	assert.InDelta(t, 0.70, treatments[0].Confidence, 1e-9)
	assert.False(t, treatments[0].ApprovalRequired)
}

func TestAnalyzeAndSuggestSetsRecommendedTreatment(t *testing.T) {
	recommender, _, _ := newTestRecommender(t)

	result, err := recommender.AnalyzeAndSuggest(testutil.CreateTestIssue("duplicate", "consistency"))
	require.NoError(t, err)

	require.NotEmpty(t, result.RootCauses)
	require.NotEmpty(t, result.Treatments)
	require.NotNil(t, result.RecommendedTreatment)
	assert.Equal(t, result.Treatments[0].TreatmentID, result.RecommendedTreatment.TreatmentID)
	// duplicate 的启发式方案中置信度最高为人工复核 0.90
	assert.InDelta(t, 0.90, result.RecommendedTreatment.Confidence, 1e-9)
}
