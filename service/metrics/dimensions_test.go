/*
 * @module service/metrics/dimensions_test
 * @description 五维评分测试，覆盖各维度计算、除零分支与有效性检查剔除
 * @architecture 测试层
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow 聚合计数输入 -> 维度评分 -> 结果验证
 * @rules 使用内存sqlite数据库，每个测试独立建库
 * @dependencies testing, testify, dq-engine-service/testutil
 * @refs dimensions.go
 */

package metrics

import (
	"context"
	"testing"

	"dq-engine-service/service/models"
	"dq-engine-service/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMetricsService(t *testing.T, counts models.QualityCounts) *MetricsService {
	tdb := testutil.NewTestDB()
	t.Cleanup(tdb.Close)
	return NewMetricsService(tdb.DB, NewStaticCountsProvider(counts))
}

func TestCalculateCompleteness(t *testing.T) {
	svc := newTestMetricsService(t, testutil.FullQualityCounts())

	score, err := svc.CalculateCompleteness(context.Background())
	require.NoError(t, err)

	// email 90/100 与 date_of_birth 80/100 的等权均值
	assert.InDelta(t, 0.85, score.Overall, 1e-9)
	assert.InDelta(t, 0.9, score.ByField["email"], 1e-9)
	assert.InDelta(t, 0.8, score.ByField["date_of_birth"], 1e-9)
	assert.Equal(t, int64(100), score.TotalRecords)
}

func TestCalculateCompletenessEmptyDataset(t *testing.T) {
	svc := newTestMetricsService(t, models.QualityCounts{
		Completeness: &models.CompletenessCounts{
			TotalRecords: 0,
			FieldNonNull: map[string]int64{"email": 0},
		},
	})

	score, err := svc.CalculateCompleteness(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 0.0, score.Overall, 1e-9)
}

func TestCalculateValidityExcludesZeroDenominatorChecks(t *testing.T) {
	svc := newTestMetricsService(t, models.QualityCounts{
		Validity: []models.ValidityCheckCounts{
			{Name: "email_format", Total: 100, Valid: 80},
			{Name: "amount_non_negative", Total: 0, Valid: 0},
			{Name: "phone_format", Total: 100, Valid: 90},
		},
	})

	score, err := svc.CalculateValidity(context.Background())
	require.NoError(t, err)

	// 分母为零的检查被剔除，均值为 (0.8+0.9)/2
	assert.InDelta(t, 0.85, score.Overall, 1e-9)
	assert.Len(t, score.ByCheck, 2)
	assert.NotContains(t, score.ByCheck, "amount_non_negative")
}

func TestCalculateValidityAllChecksEmpty(t *testing.T) {
	svc := newTestMetricsService(t, models.QualityCounts{
		Validity: []models.ValidityCheckCounts{
			{Name: "email_format", Total: 0, Valid: 0},
		},
	})

	score, err := svc.CalculateValidity(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 0.0, score.Overall, 1e-9)
	assert.Empty(t, score.ByCheck)
}

func TestCalculateConsistency(t *testing.T) {
	svc := newTestMetricsService(t, testutil.FullQualityCounts())

	score, err := svc.CalculateConsistency(context.Background())
	require.NoError(t, err)

	// no_duplicates 0.98 与 referential_integrity 0.90 的等权均值
	assert.InDelta(t, 0.94, score.Overall, 1e-9)
	assert.Equal(t, int64(2), score.DuplicateCount)
	assert.Equal(t, int64(5), score.OrphanedCount)
}

func TestCalculateAccuracy(t *testing.T) {
	svc := newTestMetricsService(t, testutil.FullQualityCounts())

	score, err := svc.CalculateAccuracy(context.Background())
	require.NoError(t, err)

	assert.InDelta(t, 0.97, score.Overall, 1e-9)
	assert.Equal(t, int64(3), score.OutlierCount)
}

func TestCalculateAccuracyEmptyDataset(t *testing.T) {
	svc := newTestMetricsService(t, models.QualityCounts{})

	score, err := svc.CalculateAccuracy(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 0.0, score.Overall, 1e-9)
}

func TestCalculateTimeliness(t *testing.T) {
	svc := newTestMetricsService(t, testutil.FullQualityCounts())

	score, err := svc.CalculateTimeliness(context.Background())
	require.NoError(t, err)

	assert.InDelta(t, 0.6, score.Overall, 1e-9)
	assert.Equal(t, int64(40), score.StaleCount)
	assert.Equal(t, 365, score.FreshnessThresholdDays)
}
