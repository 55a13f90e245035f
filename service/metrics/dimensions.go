/*
 * @module service/metrics/dimensions
 * @description 五维质量评分：完整性、有效性、一致性、准确性、时效性，基于检测层提供的聚合计数
 * @architecture 分层架构 - 业务服务层
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow 获取聚合计数 -> 比值计算 -> 维度评分
 * @rules 分母为零时评分取 0.0 而非 1.0；有效性均值剔除零分母检查项
 * @dependencies dq-engine-service/service/models, gorm.io/gorm
 * @refs aggregator.go
 */

package metrics

import (
	"context"
	"fmt"
	"math"

	"dq-engine-service/service/models"

	"gorm.io/gorm"
)

// 时效性新鲜度窗口（天）
const freshnessThresholdDays = 365

// CountsProvider 聚合计数提供方接口（检测层协作方）
// 引擎自身不执行任何查询，所有计数由外部提供
type CountsProvider interface {
	CompletenessCounts(ctx context.Context) (*models.CompletenessCounts, error)
	ValidityCounts(ctx context.Context) ([]models.ValidityCheckCounts, error)
	ConsistencyCounts(ctx context.Context) (*models.ConsistencyCounts, error)
	AccuracyCounts(ctx context.Context) (*models.AccuracyCounts, error)
	TimelinessCounts(ctx context.Context) (*models.TimelinessCounts, error)
}

// MetricsService 质量度量服务
type MetricsService struct {
	db       *gorm.DB
	provider CountsProvider
}

// NewMetricsService 创建质量度量服务实例
func NewMetricsService(db *gorm.DB, provider CountsProvider) *MetricsService {
	return &MetricsService{db: db, provider: provider}
}

// round4 保留四位小数
func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// ratio 非负计数比值，分母为零时返回 0.0
func ratio(numerator, denominator int64) float64 {
	if denominator == 0 {
		return 0.0
	}
	return float64(numerator) / float64(denominator)
}

// CalculateCompleteness 计算完整性评分：各关键字段非空比值的等权均值
func (m *MetricsService) CalculateCompleteness(ctx context.Context) (*models.DimensionScore, error) {
	counts, err := m.provider.CompletenessCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("获取完整性计数失败: %w", err)
	}

	score := &models.DimensionScore{
		Dimension:    models.DimensionCompleteness,
		ByField:      make(map[string]float64),
		TotalRecords: counts.TotalRecords,
	}

	if counts.TotalRecords == 0 || len(counts.FieldNonNull) == 0 {
		return score, nil
	}

	sum := 0.0
	for field, nonNull := range counts.FieldNonNull {
		fieldRatio := ratio(nonNull, counts.TotalRecords)
		score.ByField[field] = fieldRatio
		sum += fieldRatio
	}
	score.Overall = round4(sum / float64(len(counts.FieldNonNull)))

	return score, nil
}

// CalculateValidity 计算有效性评分：各格式/范围检查比值的等权均值
// 分母为零的检查项静默剔除，不计入均值
func (m *MetricsService) CalculateValidity(ctx context.Context) (*models.DimensionScore, error) {
	checks, err := m.provider.ValidityCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("获取有效性计数失败: %w", err)
	}

	score := &models.DimensionScore{
		Dimension: models.DimensionValidity,
		ByCheck:   make(map[string]float64),
	}

	sum := 0.0
	counted := 0
	for _, check := range checks {
		if check.Total == 0 {
			continue
		}
		checkRatio := ratio(check.Valid, check.Total)
		score.ByCheck[check.Name] = round4(checkRatio)
		sum += checkRatio
		counted++
	}

	if counted > 0 {
		score.Overall = round4(sum / float64(counted))
	}
	return score, nil
}

// CalculateConsistency 计算一致性评分：无重复检查与引用完整性检查的等权均值
func (m *MetricsService) CalculateConsistency(ctx context.Context) (*models.DimensionScore, error) {
	counts, err := m.provider.ConsistencyCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("获取一致性计数失败: %w", err)
	}

	score := &models.DimensionScore{
		Dimension:      models.DimensionConsistency,
		ByCheck:        make(map[string]float64),
		DuplicateCount: counts.TotalRecords - counts.UniqueRecords,
		OrphanedCount:  counts.TotalReferences - counts.ValidReferences,
	}

	sum := 0.0
	counted := 0

	if counts.TotalRecords > 0 {
		noDuplicates := ratio(counts.UniqueRecords, counts.TotalRecords)
		score.ByCheck["no_duplicates"] = round4(noDuplicates)
		sum += noDuplicates
		counted++
	}
	if counts.TotalReferences > 0 {
		integrity := ratio(counts.ValidReferences, counts.TotalReferences)
		score.ByCheck["referential_integrity"] = round4(integrity)
		sum += integrity
		counted++
	}

	if counted > 0 {
		score.Overall = round4(sum / float64(counted))
	}
	return score, nil
}

// CalculateAccuracy 计算准确性评分：均值±3σ 范围内的记录占比
func (m *MetricsService) CalculateAccuracy(ctx context.Context) (*models.DimensionScore, error) {
	counts, err := m.provider.AccuracyCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("获取准确性计数失败: %w", err)
	}

	overall := ratio(counts.WithinThreeStd, counts.Total)
	return &models.DimensionScore{
		Dimension: models.DimensionAccuracy,
		Overall:   round4(overall),
		ByCheck: map[string]float64{
			"no_outliers_3std": round4(overall),
		},
		OutlierCount: counts.Total - counts.WithinThreeStd,
	}, nil
}

// CalculateTimeliness 计算时效性评分：365天新鲜度窗口内的记录占比
func (m *MetricsService) CalculateTimeliness(ctx context.Context) (*models.DimensionScore, error) {
	counts, err := m.provider.TimelinessCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("获取时效性计数失败: %w", err)
	}

	overall := ratio(counts.RecentRecords, counts.TotalRecords)
	return &models.DimensionScore{
		Dimension: models.DimensionTimeliness,
		Overall:   round4(overall),
		ByCheck: map[string]float64{
			"within_1_year": round4(overall),
		},
		StaleCount:             counts.TotalRecords - counts.RecentRecords,
		FreshnessThresholdDays: freshnessThresholdDays,
	}, nil
}
