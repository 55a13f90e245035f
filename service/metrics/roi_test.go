/*
 * @module service/metrics/roi_test
 * @description ROI与不作为成本测试，覆盖标准场景、零问题场景、重要性分级与综合报告建议
 * @architecture 测试层
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow 问题计数输入 -> ROI计算 -> 数值与分级验证
 * @rules 使用内存sqlite数据库，每个测试独立建库
 * @dependencies testing, testify, dq-engine-service/testutil
 * @refs roi.go
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

func TestCalculateROIAndCostStandardScenario(t *testing.T) {
	svc := newTestMetricsService(t, models.QualityCounts{})

	report := svc.CalculateROIAndCost(1000, 200)

	assert.Equal(t, 1000, report.IssuesDetected)
	assert.Equal(t, 200, report.IssuesRemediated)
	assert.Equal(t, 800, report.IssuesRemaining)

	assert.InDelta(t, 50000.0, report.Costs.ManualApproach, 1e-9)
	assert.InDelta(t, 2000.0, report.Costs.AutomatedApproach, 1e-9)
	assert.InDelta(t, 48000.0, report.Costs.Savings, 1e-9)
	assert.Equal(t, "USD", report.Costs.Currency)

	assert.InDelta(t, 500.0, report.Time.ManualHours, 1e-9)
	assert.InDelta(t, 50.0, report.Time.AutomatedHours, 1e-9)
	assert.InDelta(t, 450.0, report.Time.SavedHours, 1e-9)
	assert.InDelta(t, 56.25, report.Time.SavedDays, 1e-9)

	assert.InDelta(t, 400000.0, report.CostOfInaction.Total, 1e-9)
	assert.InDelta(t, 500.0, report.CostOfInaction.PerIssue, 1e-9)

	// 回报 = 节省48000 + 200*500*0.1 = 58000；投入2000 -> 2900%
	assert.InDelta(t, 2000.0, report.ROI.Investment, 1e-9)
	assert.InDelta(t, 58000.0, report.ROI.Returns, 1e-9)
	assert.InDelta(t, 2900.0, report.ROI.Percentage, 1e-9)
	assert.Equal(t, 0.5, report.ROI.PaybackMonths)

	assert.Equal(t, "CRITICAL", report.Materiality)
}

func TestCalculateROIAndCostZeroIssues(t *testing.T) {
	svc := newTestMetricsService(t, models.QualityCounts{})

	report := svc.CalculateROIAndCost(0, 0)

	assert.InDelta(t, 0.0, report.Costs.Savings, 1e-9)
	assert.InDelta(t, 0.0, report.CostOfInaction.Total, 1e-9)
	assert.InDelta(t, 0.0, report.ROI.Percentage, 1e-9)
	assert.Equal(t, "N/A", report.ROI.PaybackMonths)
	assert.Equal(t, "LOW", report.Materiality)
}

func TestCalculateMaterialityLadder(t *testing.T) {
	cases := []struct {
		issues   int
		inaction float64
		expected string
	}{
		{1001, 0, "CRITICAL"},
		{0, 100001, "CRITICAL"},
		{501, 0, "HIGH"},
		{0, 50001, "HIGH"},
		{101, 0, "MEDIUM"},
		{0, 10001, "MEDIUM"},
		{100, 10000, "LOW"},
		{0, 0, "LOW"},
	}

	for _, c := range cases {
		assert.Equal(t, c.expected, calculateMateriality(c.issues, c.inaction),
			"issues=%d inaction=%v", c.issues, c.inaction)
	}
}

func TestGenerateFullReport(t *testing.T) {
	svc := newTestMetricsService(t, testutil.FullQualityCounts())

	report, err := svc.GenerateFullReport(context.Background(), 1000, 200)
	require.NoError(t, err)

	assert.Equal(t, "comprehensive_dq_report", report.ReportType)
	require.NotNil(t, report.QualityMetrics)
	require.NotNil(t, report.ROIAnalysis)

	// 完整性0.85触发MEDIUM建议；不作为成本40万触发CRITICAL；ROI 2900%触发POSITIVE
	assert.Contains(t, report.Recommendations,
		"[MEDIUM] Improve completeness by adding data entry prompts.")
	assert.Contains(t, report.Recommendations,
		"[CRITICAL] Cost of inaction is $400000. Prioritize remediation immediately.")
	assert.Contains(t, report.Recommendations,
		"[POSITIVE] ROI is 2900%. Expand automation to other datasets.")
}

func TestGenerateFullReportLowQualityRecommendations(t *testing.T) {
	svc := newTestMetricsService(t, models.QualityCounts{
		Completeness: &models.CompletenessCounts{
			TotalRecords: 100,
			FieldNonNull: map[string]int64{"email": 50},
		},
		Validity: []models.ValidityCheckCounts{
			{Name: "email_format", Total: 100, Valid: 60},
		},
		Consistency: &models.ConsistencyCounts{
			TotalRecords:  100,
			UniqueRecords: 80,
		},
	})

	report, err := svc.GenerateFullReport(context.Background(), 10, 0)
	require.NoError(t, err)

	assert.Contains(t, report.Recommendations,
		"[CRITICAL] Completeness is below 80%. Implement mandatory field validation.")
	assert.Contains(t, report.Recommendations,
		"[CRITICAL] Validity issues detected. Add format validation at input.")
	assert.Contains(t, report.Recommendations,
		"[MEDIUM] 20 duplicates found. Implement deduplication process.")
}
