/*
 * @module service/metrics/static_provider
 * @description 静态聚合计数提供方：将检测层一次性提交的计数适配为 CountsProvider 接口
 * @architecture 适配器模式 - 外部协作方适配
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow 请求载荷 -> 静态计数 -> 维度评分
 * @rules 缺失的计数组按零值处理（对应维度评分为 0.0）
 * @dependencies dq-engine-service/service/models
 * @refs dimensions.go, api/controllers/quality_controller.go
 */

package metrics

import (
	"context"

	"dq-engine-service/service/models"
)

// StaticCountsProvider 基于静态计数的 CountsProvider 实现
type StaticCountsProvider struct {
	counts models.QualityCounts
}

// NewStaticCountsProvider 创建静态计数提供方
func NewStaticCountsProvider(counts models.QualityCounts) *StaticCountsProvider {
	return &StaticCountsProvider{counts: counts}
}

func (p *StaticCountsProvider) CompletenessCounts(ctx context.Context) (*models.CompletenessCounts, error) {
	if p.counts.Completeness == nil {
		return &models.CompletenessCounts{}, nil
	}
	return p.counts.Completeness, nil
}

func (p *StaticCountsProvider) ValidityCounts(ctx context.Context) ([]models.ValidityCheckCounts, error) {
	return p.counts.Validity, nil
}

func (p *StaticCountsProvider) ConsistencyCounts(ctx context.Context) (*models.ConsistencyCounts, error) {
	if p.counts.Consistency == nil {
		return &models.ConsistencyCounts{}, nil
	}
	return p.counts.Consistency, nil
}

func (p *StaticCountsProvider) AccuracyCounts(ctx context.Context) (*models.AccuracyCounts, error) {
	if p.counts.Accuracy == nil {
		return &models.AccuracyCounts{}, nil
	}
	return p.counts.Accuracy, nil
}

func (p *StaticCountsProvider) TimelinessCounts(ctx context.Context) (*models.TimelinessCounts, error) {
	if p.counts.Timeliness == nil {
		return &models.TimelinessCounts{}, nil
	}
	return p.counts.Timeliness, nil
}
