/*
 * @module service/metrics/roi
 * @description ROI 与不作为成本估算：基于固定单位成本/耗时假设与问题计数推导收益与重要性分级
 * @architecture 分层架构 - 业务服务层
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow 问题计数输入 -> 成本/耗时推导 -> ROI 计算 -> 重要性分级
 * @rules 全部为数值域上的全函数；除零分支取零值或 "N/A" 哨兵；分级按优先级顺序首个命中
 * @dependencies dq-engine-service/service/models
 * @refs aggregator.go
 */

package metrics

import (
	"context"
	"fmt"
	"math"
	"time"

	"dq-engine-service/service/models"
)

// 业务成本假设（可按业务场景调整）
const (
	costPerIssueManual         = 50.0  // 人工修复单个问题的成本（美元）
	costPerIssueAutomated      = 2.0   // 自动修复单个问题的成本（美元）
	businessImpactPerIssue     = 500.0 // 单个未解决问题的潜在业务损失（美元）
	timePerIssueManualHours    = 0.5   // 人工修复单个问题的耗时（小时）
	timePerIssueAutomatedHours = 0.05  // 自动修复单个问题的耗时（小时）
)

// round2 保留两位小数
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// round1 保留一位小数
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// CalculateROIAndCost 计算 ROI 与不作为成本
func (m *MetricsService) CalculateROIAndCost(issuesCount, remediatedCount int) *models.ROIReport {
	n := float64(issuesCount)

	manualCost := n * costPerIssueManual
	automatedCost := n * costPerIssueAutomated
	costSavings := manualCost - automatedCost

	manualTime := n * timePerIssueManualHours
	automatedTime := n * timePerIssueAutomatedHours
	timeSaved := manualTime - automatedTime

	unresolvedIssues := issuesCount - remediatedCount
	costOfInaction := float64(unresolvedIssues) * businessImpactPerIssue

	// 投入为自动化成本，回报为节省成本加已修复问题规避损失的10%
	investment := automatedCost
	returns := costSavings + float64(remediatedCount)*businessImpactPerIssue*0.1

	roiPercentage := 0.0
	if investment > 0 {
		roiPercentage = returns / investment * 100
	}

	// 回收期按年化问题率折算为月
	var paybackMonths interface{} = "N/A"
	monthlySavings := costSavings / 12
	if monthlySavings > 0 {
		paybackMonths = round1(investment / monthlySavings)
	}

	return &models.ROIReport{
		IssuesDetected:   issuesCount,
		IssuesRemediated: remediatedCount,
		IssuesRemaining:  unresolvedIssues,
		Costs: models.ROICosts{
			ManualApproach:    manualCost,
			AutomatedApproach: automatedCost,
			Savings:           costSavings,
			Currency:          "USD",
		},
		Time: models.ROITime{
			ManualHours:    round2(manualTime),
			AutomatedHours: round2(automatedTime),
			SavedHours:     round2(timeSaved),
			SavedDays:      round2(timeSaved / 8),
		},
		CostOfInaction: models.ROICostOfInaction{
			Total:       costOfInaction,
			PerIssue:    businessImpactPerIssue,
			Description: "Estimated business impact of unresolved issues",
		},
		ROI: models.ROIFigures{
			Percentage:    round2(roiPercentage),
			Investment:    investment,
			Returns:       returns,
			PaybackMonths: paybackMonths,
		},
		Materiality: calculateMateriality(issuesCount, costOfInaction),
	}
}

// calculateMateriality 重要性分级，按优先级顺序首个命中
func calculateMateriality(issuesCount int, costOfInaction float64) string {
	switch {
	case costOfInaction > 100000 || issuesCount > 1000:
		return "CRITICAL"
	case costOfInaction > 50000 || issuesCount > 500:
		return "HIGH"
	case costOfInaction > 10000 || issuesCount > 100:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

// GenerateFullReport 生成综合质量报告：五维评分 + ROI 分析 + 行动建议
func (m *MetricsService) GenerateFullReport(ctx context.Context, issuesCount, remediatedCount int) (*models.FullReport, error) {
	dqMetrics, err := m.CalculateOverallDQScore(ctx)
	if err != nil {
		return nil, err
	}

	roiMetrics := m.CalculateROIAndCost(issuesCount, remediatedCount)

	return &models.FullReport{
		ReportType:      "comprehensive_dq_report",
		GeneratedAt:     time.Now().UTC(),
		QualityMetrics:  dqMetrics,
		ROIAnalysis:     roiMetrics,
		Recommendations: generateRecommendations(dqMetrics, roiMetrics),
	}, nil
}

// generateRecommendations 按维度短板与 ROI 状况生成行动建议
func generateRecommendations(dq *models.QualityReport, roi *models.ROIReport) []string {
	recommendations := []string{}

	completeness := dq.Dimensions[models.DimensionCompleteness]
	if completeness.Overall < 0.80 {
		recommendations = append(recommendations,
			"[CRITICAL] Completeness is below 80%. Implement mandatory field validation.")
	} else if completeness.Overall < 0.90 {
		recommendations = append(recommendations,
			"[MEDIUM] Improve completeness by adding data entry prompts.")
	}

	if dq.Dimensions[models.DimensionValidity].Overall < 0.85 {
		recommendations = append(recommendations,
			"[CRITICAL] Validity issues detected. Add format validation at input.")
	}

	consistency := dq.Dimensions[models.DimensionConsistency]
	if consistency.DuplicateCount > 10 {
		recommendations = append(recommendations, fmt.Sprintf(
			"[MEDIUM] %d duplicates found. Implement deduplication process.", consistency.DuplicateCount))
	}

	if roi.CostOfInaction.Total > 50000 {
		recommendations = append(recommendations, fmt.Sprintf(
			"[CRITICAL] Cost of inaction is $%.0f. Prioritize remediation immediately.", roi.CostOfInaction.Total))
	}

	if roi.ROI.Percentage > 200 {
		recommendations = append(recommendations, fmt.Sprintf(
			"[POSITIVE] ROI is %.0f%%. Expand automation to other datasets.", roi.ROI.Percentage))
	}

	return recommendations
}
