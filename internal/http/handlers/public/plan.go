package public

import (
	handlershared "github.com/nutrifit/internal/http/handlers/shared"
	"github.com/nutrifit/internal/http/response"

	"github.com/gin-gonic/gin"
)

// UpdateProgressRequest 进度调整请求
type UpdateProgressRequest struct {
	DayIndex      *int `json:"day_index" binding:"required"`
	ExerciseIndex *int `json:"exercise_index" binding:"required"`
	Delta         int  `json:"delta"`
}

// GetPlan 当前计划，没有时随机分配
func (h *Handler) GetPlan(c *gin.Context) {
	identity, ok := handlershared.GetIdentity(c)
	if !ok {
		return
	}
	view, err := h.PlanService.CurrentPlan(c.Request.Context(), identity.UserID)
	if err != nil {
		respondPlanError(c, err)
		return
	}
	response.Success(c, view)
}

// ReassignPlan 重新随机分配计划
func (h *Handler) ReassignPlan(c *gin.Context) {
	identity, ok := handlershared.GetIdentity(c)
	if !ok {
		return
	}
	view, err := h.PlanService.AssignPlan(c.Request.Context(), identity.UserID)
	if err != nil {
		respondPlanError(c, err)
		return
	}
	response.Success(c, view)
}

// UpdatePlanProgress 调整单个动作进度
func (h *Handler) UpdatePlanProgress(c *gin.Context) {
	identity, ok := handlershared.GetIdentity(c)
	if !ok {
		return
	}
	var req UpdateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "Invalid request.", err)
		return
	}
	view, err := h.PlanService.UpdateProgress(c.Request.Context(), identity.UserID, *req.DayIndex, *req.ExerciseIndex, req.Delta)
	if err != nil {
		respondPlanError(c, err)
		return
	}
	response.Success(c, view)
}
