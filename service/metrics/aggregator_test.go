/*
 * @module service/metrics/aggregator_test
 * @description 综合评分测试，覆盖加权恒等式、等级边界、快照落盘与历史查询
 * @architecture 测试层
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow 聚合计数输入 -> 加权汇总 -> 等级与快照验证
 * @rules 使用内存sqlite数据库，每个测试独立建库
 * @dependencies testing, testify, dq-engine-service/testutil
 * @refs aggregator.go
 */

package metrics

import (
	"context"
	"math"
	"testing"

	"dq-engine-service/service/models"
	"dq-engine-service/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDimensionWeightsSumToOne(t *testing.T) {
	sum := 0.0
	for _, w := range DimensionWeights {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestCalculateOverallDQScoreWeightedIdentity(t *testing.T) {
	svc := newTestMetricsService(t, testutil.FullQualityCounts())

	report, err := svc.CalculateOverallDQScore(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Dimensions, 5)

	// 总分与各维度加权和严格一致
	expected := 0.0
	for name, score := range report.Dimensions {
		expected += score.Overall * DimensionWeights[name]
	}
	assert.Less(t, math.Abs(expected-report.OverallDQScore), 1e-9)

	// 0.25*0.85 + 0.25*0.90 + 0.20*0.94 + 0.20*0.97 + 0.10*0.60
	assert.InDelta(t, 0.8795, report.OverallDQScore, 1e-9)
	assert.Equal(t, "B", report.Grade)
}

func TestCalculateOverallDQScoreEmptyDatasetIsF(t *testing.T) {
	svc := newTestMetricsService(t, models.QualityCounts{})

	report, err := svc.CalculateOverallDQScore(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 0.0, report.OverallDQScore, 1e-9)
	assert.Equal(t, "F", report.Grade)
}

func TestCalculateOverallDQScorePersistsSnapshot(t *testing.T) {
	tdb := testutil.NewTestDB()
	t.Cleanup(tdb.Close)
	svc := NewMetricsService(tdb.DB, NewStaticCountsProvider(testutil.FullQualityCounts()))

	_, err := svc.CalculateOverallDQScore(context.Background())
	require.NoError(t, err)
	_, err = svc.CalculateOverallDQScore(context.Background())
	require.NoError(t, err)

	// 每次计算都追加一条快照
	history, err := svc.GetMetricsHistory(10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "5d_calculation", history[0].Source)
	assert.InDelta(t, 0.8795, history[0].OverallDQScore, 1e-9)
	assert.InDelta(t, 0.85, history[0].Completeness, 1e-9)
}

func TestScoreToGradeBoundaries(t *testing.T) {
	cases := []struct {
		score float64
		grade string
	}{
		{1.0, "A+"},
		{0.95, "A+"},
		{0.9499, "A"},
		{0.90, "A"},
		{0.85, "B+"},
		{0.80, "B"},
		{0.75, "C+"},
		{0.70, "C"},
		{0.60, "D"},
		{0.59999, "F"},
		{0.0, "F"},
	}

	for _, c := range cases {
		assert.Equal(t, c.grade, ScoreToGrade(c.score), "score %v", c.score)
	}
}
