/*
 * @module api/controllers/cycle_controller
 * @description 治理周期控制器，提供完整治理周期执行、阶段状态查询和周期记录查询接口
 * @architecture MVC架构 - 控制器层
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow 问题与计数载荷 -> 五阶段周期执行 -> 周期报告持久化 -> 响应返回
 * @rules 周期执行为同步调用，阶段状态在执行期间可观测
 * @dependencies dq-engine-service/service, github.com/go-chi/chi/v5, github.com/go-chi/render
 * @refs service/cycle/
 */

package controllers

import (
	"net/http"
	"strconv"
	"sync"

	"dq-engine-service/service"
	"dq-engine-service/service/cycle"
	"dq-engine-service/service/metrics"
	"dq-engine-service/service/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// CycleController 治理周期控制器
type CycleController struct {
	mu      sync.Mutex
	running *cycle.Orchestrator // 最近一次通过本控制器启动的编排器
}

// NewCycleController 创建治理周期控制器实例
func NewCycleController() *CycleController {
	return &CycleController{}
}

// RunCycleRequest 治理周期执行请求
type RunCycleRequest struct {
	Issues        map[string][]models.Issue `json:"issues"`
	Counts        models.QualityCounts      `json:"counts"`
	ExecutedBy    string                    `json:"executed_by,omitempty"`
	RemediateMode string                    `json:"remediate_mode,omitempty"`
}

// CycleStatusResponse 周期阶段状态响应
type CycleStatusResponse struct {
	Phase string `json:"phase"`
}

// RunCycle 执行完整治理周期
// @Summary 执行治理周期
// @Description 按检测层提交的问题与计数执行识别、分析、修复、验证、学习五阶段周期
// @Tags 治理周期
// @Accept json
// @Produce json
// @Param request body RunCycleRequest true "问题清单与聚合计数"
// @Success 200 {object} APIResponse{data=models.CycleResult} "执行成功"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /cycles/run [post]
func (c *CycleController) RunCycle(w http.ResponseWriter, r *http.Request) {
	var req RunCycleRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "请求参数格式错误",
		})
		return
	}

	orchestrator := service.NewOrchestrator(
		cycle.NewStaticIdentifier(req.Issues),
		metrics.NewStaticCountsProvider(req.Counts),
		req.RemediateMode,
	)

	c.mu.Lock()
	c.running = orchestrator
	c.mu.Unlock()

	result, err := orchestrator.RunFullDQCycle(r.Context(), req.ExecutedBy)
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "治理周期执行失败",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "治理周期执行成功",
		Data:   result,
	})
}

// GetStatus 查询当前周期阶段
// @Summary 查询周期阶段
// @Description 查询最近一次周期的执行阶段，空闲时返回idle
// @Tags 治理周期
// @Produce json
// @Success 200 {object} APIResponse{data=CycleStatusResponse} "查询成功"
// @Router /cycles/status [get]
func (c *CycleController) GetStatus(w http.ResponseWriter, r *http.Request) {
	c.mu.Lock()
	orchestrator := c.running
	c.mu.Unlock()

	phase := cycle.PhaseIdle
	if orchestrator != nil {
		phase = orchestrator.CurrentPhase()
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "查询周期阶段成功",
		Data:   CycleStatusResponse{Phase: phase},
	})
}

// GetCycle 获取周期记录详情
// @Summary 获取周期记录
// @Description 根据周期ID获取持久化的周期报告
// @Tags 治理周期
// @Produce json
// @Param id path string true "周期ID"
// @Success 200 {object} APIResponse{data=models.DQCycleRecord} "获取成功"
// @Failure 404 {object} APIResponse "周期记录不存在"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /cycles/{id} [get]
func (c *CycleController) GetCycle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	record, err := service.GlobalOrchestrator.GetCycleRecord(id)
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "获取周期记录失败",
		})
		return
	}
	if record == nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusNotFound,
			Msg:    "周期记录不存在",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "获取周期记录成功",
		Data:   record,
	})
}

// GetCycles 获取周期记录列表
// @Summary 获取周期记录列表
// @Description 按执行时间倒序获取周期记录
// @Tags 治理周期
// @Produce json
// @Param limit query int false "返回条数" default(100)
// @Success 200 {object} APIResponse{data=[]models.DQCycleRecord} "获取成功"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /cycles [get]
func (c *CycleController) GetCycles(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	records, err := service.GlobalOrchestrator.GetCycleRecords(limit)
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "获取周期记录列表失败",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "获取周期记录列表成功",
		Data:   records,
	})
}
