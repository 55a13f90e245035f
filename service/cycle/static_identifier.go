/*
 * @module service/cycle/static_identifier
 * @description 静态问题提供方：将检测层一次性提交的问题清单适配为 Identifier 接口
 * @architecture 适配器模式 - 外部协作方适配
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow 请求载荷 -> 按维度的问题清单 -> 周期识别阶段
 * @rules 每个维度的问题数量受 limitPerCheck 截断
 * @dependencies dq-engine-service/service/models
 * @refs orchestrator.go, api/controllers/cycle_controller.go
 */

package cycle

import (
	"context"

	"dq-engine-service/service/models"
)

// StaticIdentifier 基于静态问题清单的 Identifier 实现
type StaticIdentifier struct {
	issuesByDimension map[string][]models.Issue
}

// NewStaticIdentifier 创建静态问题提供方
func NewStaticIdentifier(issuesByDimension map[string][]models.Issue) *StaticIdentifier {
	if issuesByDimension == nil {
		issuesByDimension = make(map[string][]models.Issue)
	}
	return &StaticIdentifier{issuesByDimension: issuesByDimension}
}

// RunAllChecks 返回预先提交的问题清单，每个维度截断至 limitPerCheck
func (s *StaticIdentifier) RunAllChecks(ctx context.Context, limitPerCheck int) (map[string][]models.Issue, error) {
	out := make(map[string][]models.Issue, len(s.issuesByDimension))
	for dimension, issues := range s.issuesByDimension {
		if limitPerCheck > 0 && len(issues) > limitPerCheck {
			issues = issues[:limitPerCheck]
		}
		out[dimension] = issues
	}
	return out, nil
}
