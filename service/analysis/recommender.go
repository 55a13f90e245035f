/*
 * @module service/analysis/recommender
 * @description 治理方案推荐器：优先按历史成功率推荐知识库方案，否则按启发式表生成并全部回写
 * @architecture 分层架构 - 业务服务层
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow 知识库查询 -> 命中按成功率排序取前5 -> 未命中启发式生成 -> 全部回写 -> 按置信度排序
 * @rules 排序为稳定排序，相同键保持写入顺序；历史分支截断前5，生成分支不截断
 * @dependencies dq-engine-service/service/knowledge, dq-engine-service/service/models, github.com/spf13/cast, github.com/google/uuid
 * @refs heuristics.go, root_cause.go
 */

package analysis

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"dq-engine-service/service/knowledge"
	"dq-engine-service/service/models"

	"github.com/google/uuid"
	"github.com/spf13/cast"
)

// 历史方案分支的返回上限
const maxHistoryTreatments = 5

// TreatmentRecommender 治理方案推荐器
type TreatmentRecommender struct {
	store    *knowledge.Store
	analyzer *RootCauseAnalyzer
}

// NewTreatmentRecommender 创建治理方案推荐器实例
func NewTreatmentRecommender(store *knowledge.Store, analyzer *RootCauseAnalyzer) *TreatmentRecommender {
	return &TreatmentRecommender{
		store:    store,
		analyzer: analyzer,
	}
}

// newTreatmentID 生成短随机方案ID（T_ 前缀 + 6位十六进制）
func newTreatmentID() string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "T_" + hex[:6]
}

// Recommend 推荐治理方案，按有效排序键降序返回
// 知识库命中时按成功率排序并截断前5；未命中时按启发式表生成，
// 全部回写知识库后按置信度排序返回（该分支不截断）
func (r *TreatmentRecommender) Recommend(issue *models.Issue, rootCauses []models.RootCause) ([]models.Treatment, error) {
	issueType := issue.IssueType
	if issueType == "" {
		issueType = "unknown"
	}

	records, err := r.store.GetTreatmentsForIssue(issueType)
	if err != nil {
		return nil, fmt.Errorf("查询历史治理方案失败: %w", err)
	}

	if len(records) > 0 {
		treatments := make([]models.Treatment, 0, len(records))
		for _, rec := range records {
			treatments = append(treatments, normalizeTreatment(&rec))
		}

		// 按成功率降序稳定排序，截断前5
		sort.SliceStable(treatments, func(i, j int) bool {
			return treatments[i].SuccessRate > treatments[j].SuccessRate
		})
		if len(treatments) > maxHistoryTreatments {
			treatments = treatments[:maxHistoryTreatments]
		}
		return treatments, nil
	}

	// 启发式生成，分配随机方案ID
	templates := heuristicTreatments(issueType)
	treatments := make([]models.Treatment, 0, len(templates))
	for _, tpl := range templates {
		treatments = append(treatments, models.Treatment{
			TreatmentID:      newTreatmentID(),
			Description:      tpl.Description,
			Confidence:       tpl.Confidence,
			SuccessRate:      0.0,
			Cost:             tpl.Cost,
			ApprovalRequired: tpl.ApprovalRequired,
			Steps:            tpl.Steps,
			Source:           "generated",
		})
	}

	// 全部回写知识库并关联问题类型，后续推荐命中历史分支
	for i := range treatments {
		t := &treatments[i]
		approval := "false"
		if t.ApprovalRequired {
			approval = "true"
		}
		err := r.store.AddTreatment(&models.KnowledgeTreatment{
			TreatmentID:      t.TreatmentID,
			IssueType:        issueType,
			Description:      t.Description,
			Confidence:       t.Confidence,
			Cost:             t.Cost,
			ApprovalRequired: approval,
			SuccessRate:      t.SuccessRate,
			Steps:            models.JSONBStringArray(t.Steps),
		})
		if err != nil {
			slog.Warn("治理方案回写知识库失败", "issue_type", issueType, "treatment_id", t.TreatmentID, "error", err)
		}
	}

	// 按置信度降序稳定排序，不截断
	sort.SliceStable(treatments, func(i, j int) bool {
		return treatments[i].Confidence > treatments[j].Confidence
	})
	return treatments, nil
}

// normalizeTreatment 将知识库行投影为规范化的治理方案
// 置信度缺省 0.5，成功率缺省 0.0，审批标志从 "true"/"false" 字符串解析
func normalizeTreatment(rec *models.KnowledgeTreatment) models.Treatment {
	confidence := rec.Confidence
	if confidence == 0 {
		confidence = 0.5
	}

	return models.Treatment{
		TreatmentID:      rec.TreatmentID,
		Description:      rec.Description,
		Confidence:       confidence,
		SuccessRate:      rec.SuccessRate,
		Cost:             rec.Cost,
		ApprovalRequired: cast.ToBool(rec.ApprovalRequired),
		Steps:            []string(rec.Steps),
		Source:           "knowledge_bank",
	}
}

// AnalyzeAndSuggest 完整分析：根因分析 + 方案推荐，首选方案取排序后首位
func (r *TreatmentRecommender) AnalyzeAndSuggest(issue *models.Issue) (*models.TreatmentAnalysis, error) {
	rootCauses, err := r.analyzer.Analyze(issue)
	if err != nil {
		return nil, err
	}

	treatments, err := r.Recommend(issue, rootCauses)
	if err != nil {
		return nil, err
	}

	analysis := &models.TreatmentAnalysis{
		Issue:      issue,
		RootCauses: rootCauses,
		Treatments: treatments,
	}
	if len(treatments) > 0 {
		analysis.RecommendedTreatment = &treatments[0]
	}
	return analysis, nil
}
