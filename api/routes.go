/*
 * @module api/routes
 * @description API路由配置模块，负责初始化和配置所有HTTP路由
 * @architecture RESTful API架构
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow 无状态HTTP请求处理
 * @rules 遵循RESTful API设计规范，统一错误处理和响应格式
 * @dependencies github.com/go-chi/chi/v5, github.com/go-chi/cors, github.com/go-chi/render
 * @refs api/controllers/
 */

package api

import (
	"dq-engine-service/api/controllers"
	"dq-engine-service/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
)

// InitRoute 初始化所有API路由
func InitRoute(r *chi.Mux) {
	// 基础中间件
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	// CORS配置
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// 健康检查
	healthController := controllers.NewHealthController()
	r.Get("/health", healthController.Health)
	r.Get("/ready", healthController.Ready)

	// 知识库管理
	r.Route("/knowledge", func(r chi.Router) {
		knowledgeController := controllers.NewKnowledgeController(service.GlobalStore)

		r.Post("/rules", knowledgeController.CreateRule)
		r.Get("/rules", knowledgeController.GetRules)
		r.Get("/rules/{id}", knowledgeController.GetRule)
		r.Post("/rules/{id}/approve", knowledgeController.ApproveRule)

		r.Get("/treatments", knowledgeController.GetTreatments)
		r.Post("/outcomes", knowledgeController.RecordOutcome)
		r.Get("/outcomes", knowledgeController.GetOutcomes)

		r.Get("/root-causes", knowledgeController.GetRootCauses)
		r.Get("/patterns", knowledgeController.GetPatterns)
	})

	// 根因分析与方案推荐
	r.Route("/analysis", func(r chi.Router) {
		analysisController := controllers.NewAnalysisController(service.GlobalAnalyzer, service.GlobalRecommender)

		r.Post("/root-causes", analysisController.AnalyzeRootCauses)
		r.Post("/treatments", analysisController.RecommendTreatments)
		r.Post("/analyze-and-suggest", analysisController.AnalyzeAndSuggest)
	})

	// 质量度量
	r.Route("/quality", func(r chi.Router) {
		qualityController := controllers.NewQualityController()

		r.Post("/score", qualityController.CalculateScore)
		r.Post("/roi", qualityController.CalculateROI)
		r.Post("/report", qualityController.GenerateReport)
		r.Get("/history", qualityController.GetHistory)
	})

	// 治理周期
	r.Route("/cycles", func(r chi.Router) {
		cycleController := controllers.NewCycleController()

		r.Post("/run", cycleController.RunCycle)
		r.Get("/status", cycleController.GetStatus)
		r.Get("/", cycleController.GetCycles)
		r.Get("/{id}", cycleController.GetCycle)
	})

	// 审计日志
	r.Route("/audit", func(r chi.Router) {
		auditController := controllers.NewAuditController()

		r.Get("/logs", auditController.GetLogs)
	})
}
