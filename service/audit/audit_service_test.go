/*
 * @module service/audit/audit_service_test
 * @description 审计日志服务测试，覆盖异步写入、排空关闭与查询
 * @architecture 测试层
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow 记录入队 -> 关闭排空 -> 查询验证
 * @rules 使用内存sqlite数据库，每个测试独立建库
 * @dependencies testing, testify, dq-engine-service/testutil
 * @refs audit_service.go
 */

package audit

import (
	"testing"

	"dq-engine-service/service/knowledge"
	"dq-engine-service/service/models"
	"dq-engine-service/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAndGetLogs(t *testing.T) {
	tdb := testutil.NewTestDB()
	t.Cleanup(tdb.Close)

	svc := NewAuditService(tdb.DB)
	svc.Record("dq-engine", "add_rule", "rule-1", models.JSONB{"category": "validity"}, "success")
	svc.Record("dq-engine", "approve_rule", "rule-1", models.JSONB{"approved_by": "alice"}, "success")

	// Close 排空队列，之后全部记录可查
	svc.Close()

	logs, err := svc.GetLogs(10)
	require.NoError(t, err)
	require.Len(t, logs, 2)

	actions := []string{logs[0].ActionType, logs[1].ActionType}
	assert.Contains(t, actions, "add_rule")
	assert.Contains(t, actions, "approve_rule")
	assert.Equal(t, "dq-engine", logs[0].Actor)
	assert.NotEmpty(t, logs[0].ID)
}

func TestStoreWritesAuditTrail(t *testing.T) {
	tdb := testutil.NewTestDB()
	t.Cleanup(tdb.Close)

	svc := NewAuditService(tdb.DB)
	store := knowledge.NewStore(tdb.DB)
	store.SetAuditor(svc)

	_, err := store.AddRule(&models.QualityRule{RuleText: "amount must be positive"}, "validity", "")
	require.NoError(t, err)

	svc.Close()

	logs, err := svc.GetLogs(10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "add_rule", logs[0].ActionType)
}
