/*
 * @module service/metrics/aggregator
 * @description 质量综合评分：固定权重聚合五维评分，映射等级并落盘度量快照
 * @architecture 分层架构 - 业务服务层
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow 五维评分 -> 加权汇总 -> 等级映射 -> 快照落盘
 * @rules 权重固定且和为1.0；快照落盘为每次调用的必经副作用；任一维度失败则整体失败
 * @dependencies dq-engine-service/service/models, gorm.io/gorm
 * @refs dimensions.go, roi.go
 */

package metrics

import (
	"context"
	"fmt"
	"time"

	"dq-engine-service/service/models"
)

// DimensionWeights 五维固定权重，和为 1.0
var DimensionWeights = map[string]float64{
	models.DimensionCompleteness: 0.25,
	models.DimensionValidity:     0.25,
	models.DimensionConsistency:  0.20,
	models.DimensionAccuracy:     0.20,
	models.DimensionTimeliness:   0.10,
}

// CalculateOverallDQScore 计算五维加权综合质量评分
// 每次调用都会向度量历史追加一条扁平化快照
func (m *MetricsService) CalculateOverallDQScore(ctx context.Context) (*models.QualityReport, error) {
	completeness, err := m.CalculateCompleteness(ctx)
	if err != nil {
		return nil, err
	}
	validity, err := m.CalculateValidity(ctx)
	if err != nil {
		return nil, err
	}
	consistency, err := m.CalculateConsistency(ctx)
	if err != nil {
		return nil, err
	}
	accuracy, err := m.CalculateAccuracy(ctx)
	if err != nil {
		return nil, err
	}
	timeliness, err := m.CalculateTimeliness(ctx)
	if err != nil {
		return nil, err
	}

	dimensions := map[string]*models.DimensionScore{
		models.DimensionCompleteness: completeness,
		models.DimensionValidity:     validity,
		models.DimensionConsistency:  consistency,
		models.DimensionAccuracy:     accuracy,
		models.DimensionTimeliness:   timeliness,
	}

	overall := 0.0
	for name, score := range dimensions {
		overall += score.Overall * DimensionWeights[name]
	}

	report := &models.QualityReport{
		OverallDQScore: overall,
		Grade:          ScoreToGrade(overall),
		Dimensions:     dimensions,
		Weights:        DimensionWeights,
		CalculatedAt:   time.Now().UTC(),
	}

	// 扁平化快照落盘（追加式历史）
	snapshot := &models.MetricsSnapshot{
		Source:         "5d_calculation",
		OverallDQScore: overall,
		Completeness:   completeness.Overall,
		Validity:       validity.Overall,
		Consistency:    consistency.Overall,
		Accuracy:       accuracy.Overall,
		Timeliness:     timeliness.Overall,
	}
	if err := m.db.Create(snapshot).Error; err != nil {
		return nil, fmt.Errorf("保存度量快照失败: %w", err)
	}

	return report, nil
}

// ScoreToGrade 评分映射为等级
func ScoreToGrade(score float64) string {
	switch {
	case score >= 0.95:
		return "A+"
	case score >= 0.90:
		return "A"
	case score >= 0.85:
		return "B+"
	case score >= 0.80:
		return "B"
	case score >= 0.75:
		return "C+"
	case score >= 0.70:
		return "C"
	case score >= 0.60:
		return "D"
	default:
		return "F"
	}
}

// GetMetricsHistory 读取度量快照历史，按时间倒序，limit<=0 时默认 100 条
func (m *MetricsService) GetMetricsHistory(limit int) ([]models.MetricsSnapshot, error) {
	if limit <= 0 {
		limit = 100
	}
	var snapshots []models.MetricsSnapshot
	err := m.db.Order("created_at desc").Limit(limit).Find(&snapshots).Error
	if err != nil {
		return nil, fmt.Errorf("查询度量历史失败: %w", err)
	}
	return snapshots, nil
}
