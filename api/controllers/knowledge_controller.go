/*
 * @module api/controllers/knowledge_controller
 * @description 知识库控制器，提供质量规则、治理方案、执行结果、学习模式和根因记录的管理接口
 * @architecture MVC架构 - 控制器层
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow HTTP请求处理流程
 * @rules 统一的错误处理和响应格式；写操作经知识库服务串行化
 * @dependencies dq-engine-service/service, github.com/go-chi/chi/v5, github.com/go-chi/render
 * @refs service/knowledge/store.go
 */

package controllers

import (
	"net/http"
	"strconv"

	"dq-engine-service/service/knowledge"
	"dq-engine-service/service/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// KnowledgeController 知识库控制器
type KnowledgeController struct {
	store *knowledge.Store
}

// NewKnowledgeController 创建知识库控制器实例
func NewKnowledgeController(store *knowledge.Store) *KnowledgeController {
	return &KnowledgeController{store: store}
}

// CreateRuleRequest 创建质量规则请求
type CreateRuleRequest struct {
	RuleText       string       `json:"rule_text"`
	SQLSnippet     string       `json:"sql_snippet,omitempty"`
	Category       string       `json:"category"`
	ApprovalStatus string       `json:"approval_status,omitempty"`
	Metadata       models.JSONB `json:"metadata,omitempty"`
}

// CreateRule 创建质量规则
// @Summary 创建质量规则
// @Description 创建新的质量规则，默认为待审批状态
// @Tags 知识库
// @Accept json
// @Produce json
// @Param rule body CreateRuleRequest true "质量规则信息"
// @Success 201 {object} APIResponse{data=models.QualityRule} "创建成功"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /knowledge/rules [post]
func (c *KnowledgeController) CreateRule(w http.ResponseWriter, r *http.Request) {
	var req CreateRuleRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "请求参数格式错误",
		})
		return
	}

	if req.RuleText == "" {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "规则文本不能为空",
		})
		return
	}

	rule := &models.QualityRule{
		RuleText:   req.RuleText,
		SQLSnippet: req.SQLSnippet,
		Metadata:   req.Metadata,
	}

	created, err := c.store.AddRule(rule, req.Category, req.ApprovalStatus)
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "创建质量规则失败",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusCreated,
		Msg:    "创建质量规则成功",
		Data:   created,
	})
}

// GetRule 获取质量规则详情
// @Summary 获取质量规则详情
// @Description 根据规则ID获取质量规则详情
// @Tags 知识库
// @Produce json
// @Param id path string true "规则ID"
// @Success 200 {object} APIResponse{data=models.QualityRule} "获取成功"
// @Failure 404 {object} APIResponse "规则不存在"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /knowledge/rules/{id} [get]
func (c *KnowledgeController) GetRule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rule, err := c.store.GetRule(id)
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "获取质量规则失败",
		})
		return
	}
	if rule == nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusNotFound,
			Msg:    "质量规则不存在",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "获取质量规则成功",
		Data:   rule,
	})
}

// GetRules 按类别获取质量规则列表
// @Summary 获取质量规则列表
// @Description 按类别获取质量规则列表
// @Tags 知识库
// @Produce json
// @Param category query string false "规则类别"
// @Success 200 {object} APIResponse{data=[]models.QualityRule} "获取成功"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /knowledge/rules [get]
func (c *KnowledgeController) GetRules(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")

	rules, err := c.store.GetRulesByCategory(category)
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "获取质量规则列表失败",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "获取质量规则列表成功",
		Data:   rules,
	})
}

// ApproveRuleRequest 规则审批请求
type ApproveRuleRequest struct {
	ApprovedBy string `json:"approved_by"`
}

// ApproveRule 审批质量规则
// @Summary 审批质量规则
// @Description 将指定规则标记为已审批，规则不存在时静默忽略
// @Tags 知识库
// @Accept json
// @Produce json
// @Param id path string true "规则ID"
// @Param approval body ApproveRuleRequest true "审批信息"
// @Success 200 {object} APIResponse "审批成功"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /knowledge/rules/{id}/approve [post]
func (c *KnowledgeController) ApproveRule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req ApproveRuleRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "请求参数格式错误",
		})
		return
	}

	if err := c.store.ApproveRule(id, req.ApprovedBy); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "审批质量规则失败",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "审批质量规则成功",
	})
}

// GetTreatments 按问题类型获取治理方案
// @Summary 获取治理方案列表
// @Description 按问题类型获取知识库中的治理方案记录
// @Tags 知识库
// @Produce json
// @Param issue_type query string true "问题类型"
// @Success 200 {object} APIResponse{data=[]models.KnowledgeTreatment} "获取成功"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /knowledge/treatments [get]
func (c *KnowledgeController) GetTreatments(w http.ResponseWriter, r *http.Request) {
	issueType := r.URL.Query().Get("issue_type")

	treatments, err := c.store.GetTreatmentsForIssue(issueType)
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "获取治理方案列表失败",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "获取治理方案列表成功",
		Data:   treatments,
	})
}

// RecordOutcomeRequest 治理方案执行结果请求
type RecordOutcomeRequest struct {
	TreatmentID string       `json:"treatment_id"`
	IssueID     string       `json:"issue_id"`
	Success     bool         `json:"success"`
	Details     models.JSONB `json:"details,omitempty"`
}

// RecordOutcome 记录治理方案执行结果
// @Summary 记录执行结果
// @Description 记录治理方案执行结果并更新方案的指数移动平均成功率
// @Tags 知识库
// @Accept json
// @Produce json
// @Param outcome body RecordOutcomeRequest true "执行结果信息"
// @Success 200 {object} APIResponse "记录成功"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /knowledge/outcomes [post]
func (c *KnowledgeController) RecordOutcome(w http.ResponseWriter, r *http.Request) {
	var req RecordOutcomeRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "请求参数格式错误",
		})
		return
	}

	if req.TreatmentID == "" {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "方案ID不能为空",
		})
		return
	}

	if err := c.store.AddTreatmentOutcome(req.TreatmentID, req.IssueID, req.Success, req.Details); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "记录执行结果失败",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "记录执行结果成功",
	})
}

// GetOutcomes 获取治理方案执行结果列表
// @Summary 获取执行结果列表
// @Description 按方案ID获取执行结果记录，时间倒序
// @Tags 知识库
// @Produce json
// @Param treatment_id query string false "方案ID"
// @Param limit query int false "返回条数" default(100)
// @Success 200 {object} APIResponse{data=[]models.TreatmentOutcome} "获取成功"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /knowledge/outcomes [get]
func (c *KnowledgeController) GetOutcomes(w http.ResponseWriter, r *http.Request) {
	treatmentID := r.URL.Query().Get("treatment_id")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	outcomes, err := c.store.GetTreatmentOutcomes(treatmentID, limit)
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "获取执行结果列表失败",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "获取执行结果列表成功",
		Data:   outcomes,
	})
}

// GetRootCauses 按问题类型获取根因记录
// @Summary 获取根因记录列表
// @Description 按问题类型获取知识库中的根因记录
// @Tags 知识库
// @Produce json
// @Param issue_type query string true "问题类型"
// @Success 200 {object} APIResponse{data=[]models.RootCauseRecord} "获取成功"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /knowledge/root-causes [get]
func (c *KnowledgeController) GetRootCauses(w http.ResponseWriter, r *http.Request) {
	issueType := r.URL.Query().Get("issue_type")

	causes, err := c.store.GetRootCauses(issueType)
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "获取根因记录列表失败",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "获取根因记录列表成功",
		Data:   causes,
	})
}

// GetPatterns 获取学习模式列表
// @Summary 获取学习模式列表
// @Description 获取引擎累积的学习模式记录
// @Tags 知识库
// @Produce json
// @Param limit query int false "返回条数" default(100)
// @Success 200 {object} APIResponse{data=[]models.LearnedPattern} "获取成功"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /knowledge/patterns [get]
func (c *KnowledgeController) GetPatterns(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	patterns, err := c.store.GetLearnedPatterns(limit)
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "获取学习模式列表失败",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "获取学习模式列表成功",
		Data:   patterns,
	})
}
