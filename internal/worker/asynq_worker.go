package worker

import (
	"context"
	"strings"

	"github.com/nutrifit/internal/logger"
	"github.com/nutrifit/internal/provider"
	"github.com/nutrifit/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskPlanProgressSync, c.handlePlanProgressSync)
}

func (c *Consumer) handlePlanProgressSync(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_plan_progress_sync_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParsePlanProgressSyncPayload(task.Payload())
	if err != nil {
		// 载荷损坏重试也无意义
		logger.Warnw("worker_plan_progress_sync_invalid_payload", "error", err)
		return asynq.SkipRetry
	}
	if c.Container == nil || c.PlanService == nil {
		logger.Warnw("worker_plan_progress_sync_skip_plan_service_nil", "user_id", payload.UserID)
		return nil
	}
	userID := strings.TrimSpace(payload.UserID)
	if err := c.PlanService.WritePlanSnapshot(ctx, userID, payload.Plan, payload.Version); err != nil {
		logger.Warnw("worker_plan_progress_sync_failed",
			"user_id", userID,
			"plan", payload.Plan.Name,
			"error", err,
		)
		return err
	}
	logger.Debugw("worker_plan_progress_synced", "user_id", userID, "plan", payload.Plan.Name)
	return nil
}
