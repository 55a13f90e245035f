/*
 * @module service/cycle/scheduler
 * @description 治理周期调度器：按 cron 表达式定时触发完整质量治理周期，支持分布式锁防重
 * @architecture 分层架构 - 服务层
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow 启动调度器 -> 定时触发 -> 加锁执行周期 -> 释放锁
 * @rules 多实例部署时通过分布式锁保证同一时刻仅有一个实例执行周期
 * @dependencies github.com/robfig/cron/v3, dq-engine-service/service/distributed_lock
 * @refs orchestrator.go
 */

package cycle

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"dq-engine-service/service/distributed_lock"

	"github.com/robfig/cron/v3"
)

// 周期执行的锁持有时长
const cycleLockTTL = 30 * time.Minute

// Scheduler 治理周期调度器
type Scheduler struct {
	orchestrator     *Orchestrator
	cron             *cron.Cron
	cronSpec         string
	ctx              context.Context
	cancel           context.CancelFunc
	schedulerStarted bool
	distributedLock  distributed_lock.DistributedLock
}

// NewScheduler 创建治理周期调度器
func NewScheduler(orchestrator *Orchestrator, cronSpec string) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	c := cron.New(cron.WithSeconds())

	return &Scheduler{
		orchestrator: orchestrator,
		cron:         c,
		cronSpec:     cronSpec,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// SetDistributedLock 设置分布式锁
func (s *Scheduler) SetDistributedLock(lock distributed_lock.DistributedLock) {
	s.distributedLock = lock
	if lock != nil {
		slog.Info("治理周期调度器已启用分布式锁")
	}
}

// StartScheduler 启动调度器
func (s *Scheduler) StartScheduler() error {
	if s.schedulerStarted {
		return fmt.Errorf("调度器已经启动")
	}
	if s.cronSpec == "" {
		slog.Info("未配置周期调度表达式，调度器不启动")
		return nil
	}

	slog.Info("启动治理周期调度器", "cron", s.cronSpec)

	_, err := s.cron.AddFunc(s.cronSpec, s.runScheduledCycle)
	if err != nil {
		return fmt.Errorf("注册调度任务失败: %w", err)
	}

	s.cron.Start()
	s.schedulerStarted = true
	slog.Info("治理周期调度器启动完成")
	return nil
}

// StopScheduler 停止调度器
func (s *Scheduler) StopScheduler() {
	if !s.schedulerStarted {
		return
	}

	slog.Info("停止治理周期调度器")
	s.cancel()
	if s.cron != nil {
		s.cron.Stop()
	}
	s.schedulerStarted = false
	slog.Info("治理周期调度器已停止")
}

// runScheduledCycle 定时触发的周期执行入口
func (s *Scheduler) runScheduledCycle() {
	run := func() error {
		_, err := s.orchestrator.RunFullDQCycle(s.ctx, "scheduler")
		return err
	}

	var err error
	if s.distributedLock != nil {
		executor := distributed_lock.NewLockExecutor(s.distributedLock)
		err = executor.ExecuteWithLock(s.ctx, "full_dq_cycle", cycleLockTTL, run)
	} else {
		err = run()
	}

	if err != nil {
		slog.Error("定时治理周期执行失败", "error", err)
	}
}
