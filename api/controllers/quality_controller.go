/*
 * @module api/controllers/quality_controller
 * @description 质量度量控制器，提供五维质量评分、ROI分析、综合报告和历史快照查询接口
 * @architecture MVC架构 - 控制器层
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow 聚合计数载荷 -> 维度评分 -> 加权总分/报告 -> 响应返回
 * @rules 聚合计数由检测层随请求提交，引擎自身不执行检测查询
 * @dependencies dq-engine-service/service, github.com/go-chi/render
 * @refs service/metrics/
 */

package controllers

import (
	"net/http"
	"strconv"

	"dq-engine-service/service"
	"dq-engine-service/service/metrics"
	"dq-engine-service/service/models"

	"github.com/go-chi/render"
)

// QualityController 质量度量控制器
type QualityController struct{}

// NewQualityController 创建质量度量控制器实例
func NewQualityController() *QualityController {
	return &QualityController{}
}

// ROIRequest ROI分析请求
type ROIRequest struct {
	IssuesDetected   int `json:"issues_detected"`
	IssuesRemediated int `json:"issues_remediated"`
}

// FullReportRequest 综合报告请求
type FullReportRequest struct {
	Counts           models.QualityCounts `json:"counts"`
	IssuesDetected   int                  `json:"issues_detected"`
	IssuesRemediated int                  `json:"issues_remediated"`
}

// CalculateScore 计算五维质量总分
// @Summary 计算质量总分
// @Description 根据检测层提交的聚合计数计算五个维度评分与加权总分，并持久化快照
// @Tags 质量度量
// @Accept json
// @Produce json
// @Param counts body models.QualityCounts true "各维度聚合计数"
// @Success 200 {object} APIResponse{data=models.QualityReport} "计算成功"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /quality/score [post]
func (c *QualityController) CalculateScore(w http.ResponseWriter, r *http.Request) {
	var counts models.QualityCounts
	if err := render.DecodeJSON(r.Body, &counts); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "请求参数格式错误",
		})
		return
	}

	metricsService := service.NewMetricsService(metrics.NewStaticCountsProvider(counts))
	report, err := metricsService.CalculateOverallDQScore(r.Context())
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "计算质量总分失败",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "计算质量总分成功",
		Data:   report,
	})
}

// CalculateROI 计算ROI与不作为成本
// @Summary 计算ROI
// @Description 根据检出与修复数量计算成本对比、耗时对比、不作为成本与投资回报
// @Tags 质量度量
// @Accept json
// @Produce json
// @Param request body ROIRequest true "检出与修复数量"
// @Success 200 {object} APIResponse{data=models.ROIReport} "计算成功"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Router /quality/roi [post]
func (c *QualityController) CalculateROI(w http.ResponseWriter, r *http.Request) {
	var req ROIRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "请求参数格式错误",
		})
		return
	}

	report := service.GlobalMetricsSvc.CalculateROIAndCost(req.IssuesDetected, req.IssuesRemediated)

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "计算ROI成功",
		Data:   report,
	})
}

// GenerateReport 生成综合质量报告
// @Summary 生成综合报告
// @Description 生成包含五维评分、ROI分析与改进建议的综合质量报告
// @Tags 质量度量
// @Accept json
// @Produce json
// @Param request body FullReportRequest true "聚合计数与检出修复数量"
// @Success 200 {object} APIResponse{data=models.FullReport} "生成成功"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /quality/report [post]
func (c *QualityController) GenerateReport(w http.ResponseWriter, r *http.Request) {
	var req FullReportRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "请求参数格式错误",
		})
		return
	}

	metricsService := service.NewMetricsService(metrics.NewStaticCountsProvider(req.Counts))
	report, err := metricsService.GenerateFullReport(r.Context(), req.IssuesDetected, req.IssuesRemediated)
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "生成综合报告失败",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "生成综合报告成功",
		Data:   report,
	})
}

// GetHistory 获取历史质量快照
// @Summary 获取历史快照
// @Description 按时间倒序获取历史质量评分快照
// @Tags 质量度量
// @Produce json
// @Param limit query int false "返回条数" default(100)
// @Success 200 {object} APIResponse{data=[]models.MetricsSnapshot} "获取成功"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /quality/history [get]
func (c *QualityController) GetHistory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	snapshots, err := service.GlobalMetricsSvc.GetMetricsHistory(limit)
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "获取历史快照失败",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "获取历史快照成功",
		Data:   snapshots,
	})
}
