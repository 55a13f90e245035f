/*
 * @module service/analysis/root_cause
 * @description 根因分析器：优先复用知识库已知根因，否则按启发式表生成并回写首条
 * @architecture 分层架构 - 业务服务层
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow 知识库查询 -> 命中直接返回 -> 未命中启发式生成 -> 首条回写知识库
 * @rules 始终返回非空列表；回写仅限声明顺序的首条，而非置信度最高者
 * @dependencies dq-engine-service/service/knowledge, dq-engine-service/service/models
 * @refs heuristics.go, recommender.go
 */

package analysis

import (
	"fmt"
	"log/slog"

	"dq-engine-service/service/knowledge"
	"dq-engine-service/service/models"
)

// RootCauseAnalyzer 根因分析器
type RootCauseAnalyzer struct {
	store *knowledge.Store
}

// NewRootCauseAnalyzer 创建根因分析器实例
func NewRootCauseAnalyzer(store *knowledge.Store) *RootCauseAnalyzer {
	return &RootCauseAnalyzer{store: store}
}

// Analyze 分析问题的候选根因，按产出规则的相关性排序，永不为空
func (a *RootCauseAnalyzer) Analyze(issue *models.Issue) ([]models.RootCause, error) {
	issueType := issue.IssueType
	if issueType == "" {
		issueType = "unknown"
	}

	// 优先使用知识库中的已知根因，按存储顺序原样返回
	records, err := a.store.GetRootCauses(issueType)
	if err != nil {
		return nil, fmt.Errorf("查询已知根因失败: %w", err)
	}
	if len(records) > 0 {
		causes := make([]models.RootCause, 0, len(records))
		for _, r := range records {
			causes = append(causes, models.RootCause{
				RootCause:  r.RootCause,
				Confidence: r.Confidence,
				Evidence:   r.Evidence,
			})
		}
		return causes, nil
	}

	// 启发式生成候选根因
	causes := heuristicRootCauses(issueType)

	// 仅回写声明顺序的首条，供后续复用
	first := causes[0]
	if err := a.store.AddRootCause(issueType, first.RootCause, first.Evidence); err != nil {
		// 回写失败不影响分析结果
		slog.Warn("根因回写知识库失败", "issue_type", issueType, "error", err)
	}

	return causes, nil
}
