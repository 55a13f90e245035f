/*
 * @module service/analysis/root_cause_test
 * @description 根因分析器测试，覆盖知识库复用、启发式生成、兜底条目与首条回写
 * @architecture 测试层
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow 测试数据输入 -> 根因分析 -> 结果与回写验证
 * @rules 使用内存sqlite数据库，每个测试独立建库
 * @dependencies testing, testify, dq-engine-service/testutil
 * @refs root_cause.go, heuristics.go
 */

package analysis

import (
	"testing"

	"dq-engine-service/service/knowledge"
	"dq-engine-service/service/models"
	"dq-engine-service/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAnalyzer(t *testing.T) (*RootCauseAnalyzer, *knowledge.Store) {
	tdb := testutil.NewTestDB()
	t.Cleanup(tdb.Close)
	store := knowledge.NewStore(tdb.DB)
	return NewRootCauseAnalyzer(store), store
}

func TestAnalyzeKnownIssueTypeReturnsHeuristics(t *testing.T) {
	analyzer, _ := newTestAnalyzer(t)

	causes, err := analyzer.Analyze(testutil.CreateTestIssue("missing_dob", "completeness"))
	require.NoError(t, err)
	require.Len(t, causes, 3)

	// 声明顺序，不按置信度重排
	assert.Equal(t, "Data entry incomplete during customer onboarding", causes[0].RootCause)
	assert.InDelta(t, 0.7, causes[0].Confidence, 1e-9)
	assert.InDelta(t, 0.5, causes[1].Confidence, 1e-9)
	assert.InDelta(t, 0.3, causes[2].Confidence, 1e-9)
}

func TestAnalyzeUnknownIssueTypeUsesFallback(t *testing.T) {
	analyzer, _ := newTestAnalyzer(t)

	causes, err := analyzer.Analyze(testutil.CreateTestIssue("mystery_issue", ""))
	require.NoError(t, err)
	require.Len(t, causes, 1)

	assert.Equal(t, "Data quality check not implemented", causes[0].RootCause)
	assert.InDelta(t, 0.5, causes[0].Confidence, 1e-9)
	assert.Equal(t, "prevention_gap", causes[0].Evidence["pattern"])
}

func TestAnalyzeEmptyIssueTypeTreatedAsUnknown(t *testing.T) {
	analyzer, _ := newTestAnalyzer(t)

	causes, err := analyzer.Analyze(&models.Issue{})
	require.NoError(t, err)
	require.Len(t, causes, 1)
	assert.Equal(t, "Data quality check not implemented", causes[0].RootCause)
}

func TestAnalyzePersistsOnlyFirstCause(t *testing.T) {
	analyzer, store := newTestAnalyzer(t)

	_, err := analyzer.Analyze(testutil.CreateTestIssue("missing_dob", "completeness"))
	require.NoError(t, err)

	records, err := store.GetRootCauses("missing_dob")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Data entry incomplete during customer onboarding", records[0].RootCause)
}

func TestAnalyzePrefersStoredCauses(t *testing.T) {
	analyzer, store := newTestAnalyzer(t)

	err := store.AddRootCause("invalid_email", "Upstream CRM allows free-text email", models.JSONB{
		"confidence": 0.95,
		"pattern":    "upstream_gap",
	})
	require.NoError(t, err)

	causes, err := analyzer.Analyze(testutil.CreateTestIssue("invalid_email", "validity"))
	require.NoError(t, err)
	require.Len(t, causes, 1)

	// 命中知识库时不再走启发式表
	assert.Equal(t, "Upstream CRM allows free-text email", causes[0].RootCause)
	assert.InDelta(t, 0.95, causes[0].Confidence, 1e-9)
}
