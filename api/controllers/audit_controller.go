/*
 * @module api/controllers/audit_controller
 * @description 审计日志控制器，提供知识库变更审计记录查询接口
 * @architecture MVC架构 - 控制器层
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow HTTP请求处理流程
 * @rules 审计日志只读，写入由知识库服务异步完成
 * @dependencies dq-engine-service/service, github.com/go-chi/render
 * @refs service/audit/
 */

package controllers

import (
	"net/http"
	"strconv"

	"dq-engine-service/service"

	"github.com/go-chi/render"
)

// AuditController 审计日志控制器
type AuditController struct{}

// NewAuditController 创建审计日志控制器实例
func NewAuditController() *AuditController {
	return &AuditController{}
}

// GetLogs 获取审计日志列表
// @Summary 获取审计日志
// @Description 按时间倒序获取知识库变更审计记录
// @Tags 审计
// @Produce json
// @Param limit query int false "返回条数" default(100)
// @Success 200 {object} APIResponse{data=[]models.SystemLog} "获取成功"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /audit/logs [get]
func (c *AuditController) GetLogs(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	logs, err := service.GlobalAuditService.GetLogs(limit)
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "获取审计日志失败",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "获取审计日志成功",
		Data:   logs,
	})
}
