/*
 * @module service/audit/audit_service
 * @description 审计日志服务：以尽力而为方式异步落盘知识库变更与周期执行的审计记录
 * @architecture 分层架构 - 业务服务层
 * @documentReference ai_docs/dq_engine_req.md
 * @stateFlow 记录入队 -> 后台写入 -> 失败仅记日志
 * @rules 调用方不依赖审计写入成功；队列满时丢弃并告警，绝不阻塞主流程
 * @dependencies dq-engine-service/service/models, gorm.io/gorm
 * @refs service/knowledge, service/cycle
 */

package audit

import (
	"log/slog"
	"sync"

	"dq-engine-service/service/models"

	"gorm.io/gorm"
)

// 审计队列缓冲大小
const queueSize = 256

// AuditService 审计日志服务
type AuditService struct {
	db      *gorm.DB
	queue   chan *models.SystemLog
	wg      sync.WaitGroup
	closing chan struct{}
}

// NewAuditService 创建审计日志服务实例并启动后台写入
func NewAuditService(db *gorm.DB) *AuditService {
	s := &AuditService{
		db:      db,
		queue:   make(chan *models.SystemLog, queueSize),
		closing: make(chan struct{}),
	}

	s.wg.Add(1)
	go s.writeLoop()
	return s
}

// Record 记录一条审计日志，非阻塞
func (s *AuditService) Record(actor, actionType, target string, details models.JSONB, status string) {
	entry := &models.SystemLog{
		Actor:      actor,
		ActionType: actionType,
		Target:     target,
		Details:    details,
		Status:     status,
	}

	select {
	case s.queue <- entry:
	default:
		slog.Warn("审计队列已满，丢弃审计记录", "action_type", actionType, "target", target)
	}
}

// writeLoop 后台写入循环
func (s *AuditService) writeLoop() {
	defer s.wg.Done()

	for {
		select {
		case entry := <-s.queue:
			if err := s.db.Create(entry).Error; err != nil {
				slog.Error("审计日志写入失败", "action_type", entry.ActionType, "error", err)
			}
		case <-s.closing:
			// 排空剩余队列后退出
			for {
				select {
				case entry := <-s.queue:
					if err := s.db.Create(entry).Error; err != nil {
						slog.Error("审计日志写入失败", "action_type", entry.ActionType, "error", err)
					}
				default:
					return
				}
			}
		}
	}
}

// Close 停止审计服务并排空队列
func (s *AuditService) Close() {
	close(s.closing)
	s.wg.Wait()
}

// GetLogs 查询审计日志，按时间倒序，limit<=0 时默认 100 条
func (s *AuditService) GetLogs(limit int) ([]models.SystemLog, error) {
	if limit <= 0 {
		limit = 100
	}
	var logs []models.SystemLog
	err := s.db.Order("created_at desc").Limit(limit).Find(&logs).Error
	return logs, err
}
