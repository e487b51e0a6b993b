package queue

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nutrifit/internal/constants"
	"github.com/nutrifit/internal/models"

	"github.com/hibiken/asynq"
)

const (
	// TaskPlanProgressSync 计划进度同步任务
	TaskPlanProgressSync = constants.TaskPlanProgressSync
)

// PlanProgressSyncPayload 计划进度同步任务载荷，携带完整计划快照
type PlanProgressSyncPayload struct {
	UserID  string              `json:"user_id"`
	Plan    *models.FitnessPlan `json:"plan"`
	Version int64               `json:"version"`
}

// NewPlanProgressSyncTask 创建计划进度同步任务
func NewPlanProgressSyncTask(payload PlanProgressSyncPayload) (*asynq.Task, error) {
	if strings.TrimSpace(payload.UserID) == "" || payload.Plan == nil {
		return nil, fmt.Errorf("plan progress sync payload requires user id and plan")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPlanProgressSync, body), nil
}

// PlanProgressSyncTaskID 同一用户同一版本只入队一次
func PlanProgressSyncTaskID(payload PlanProgressSyncPayload) string {
	return fmt.Sprintf("plan-sync:%s:%d", strings.TrimSpace(payload.UserID), payload.Version)
}

// ParsePlanProgressSyncPayload 解析任务载荷
func ParsePlanProgressSyncPayload(body []byte) (PlanProgressSyncPayload, error) {
	var payload PlanProgressSyncPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return payload, err
	}
	if strings.TrimSpace(payload.UserID) == "" || payload.Plan == nil {
		return payload, fmt.Errorf("plan progress sync payload requires user id and plan")
	}
	return payload, nil
}
