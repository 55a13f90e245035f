/*
 * @module api/controllers/analysis_controller
 * @description 分析控制器，提供根因分析、治理方案推荐和综合分析接口
 * @architecture MVC架构 - 控制器层
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow 问题载荷 -> 根因分析 -> 方案推荐 -> 响应返回
 * @rules 统一的错误处理和响应格式；分析产生的知识写入由服务层负责
 * @dependencies dq-engine-service/service, github.com/go-chi/render
 * @refs service/analysis/
 */

package controllers

import (
	"net/http"

	"dq-engine-service/service/analysis"
	"dq-engine-service/service/models"

	"github.com/go-chi/render"
)

// AnalysisController 分析控制器
type AnalysisController struct {
	analyzer    *analysis.RootCauseAnalyzer
	recommender *analysis.TreatmentRecommender
}

// NewAnalysisController 创建分析控制器实例
func NewAnalysisController(analyzer *analysis.RootCauseAnalyzer, recommender *analysis.TreatmentRecommender) *AnalysisController {
	return &AnalysisController{
		analyzer:    analyzer,
		recommender: recommender,
	}
}

// AnalyzeRootCauses 根因分析
// @Summary 根因分析
// @Description 对单个质量问题执行根因分析，优先使用知识库记录，否则按启发式规则生成
// @Tags 分析
// @Accept json
// @Produce json
// @Param issue body models.Issue true "质量问题"
// @Success 200 {object} APIResponse{data=[]models.RootCause} "分析成功"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /analysis/root-causes [post]
func (c *AnalysisController) AnalyzeRootCauses(w http.ResponseWriter, r *http.Request) {
	var issue models.Issue
	if err := render.DecodeJSON(r.Body, &issue); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "请求参数格式错误",
		})
		return
	}

	causes, err := c.analyzer.Analyze(&issue)
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "根因分析失败",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "根因分析成功",
		Data:   causes,
	})
}

// RecommendTreatments 治理方案推荐
// @Summary 治理方案推荐
// @Description 对单个质量问题推荐治理方案，历史方案按成功率排序，启发式方案按置信度排序
// @Tags 分析
// @Accept json
// @Produce json
// @Param issue body models.Issue true "质量问题"
// @Success 200 {object} APIResponse{data=[]models.Treatment} "推荐成功"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /analysis/treatments [post]
func (c *AnalysisController) RecommendTreatments(w http.ResponseWriter, r *http.Request) {
	var issue models.Issue
	if err := render.DecodeJSON(r.Body, &issue); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "请求参数格式错误",
		})
		return
	}

	causes, err := c.analyzer.Analyze(&issue)
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "根因分析失败",
		})
		return
	}

	treatments, err := c.recommender.Recommend(&issue, causes)
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "治理方案推荐失败",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "治理方案推荐成功",
		Data:   treatments,
	})
}

// AnalyzeAndSuggest 综合分析
// @Summary 综合分析
// @Description 对单个质量问题执行根因分析与方案推荐，并给出首选方案
// @Tags 分析
// @Accept json
// @Produce json
// @Param issue body models.Issue true "质量问题"
// @Success 200 {object} APIResponse{data=models.TreatmentAnalysis} "分析成功"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /analysis/analyze-and-suggest [post]
func (c *AnalysisController) AnalyzeAndSuggest(w http.ResponseWriter, r *http.Request) {
	var issue models.Issue
	if err := render.DecodeJSON(r.Body, &issue); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "请求参数格式错误",
		})
		return
	}

	result, err := c.recommender.AnalyzeAndSuggest(&issue)
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "综合分析失败",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "综合分析成功",
		Data:   result,
	})
}
