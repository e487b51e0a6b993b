package public

import (
	"time"

	handlershared "github.com/nutrifit/internal/http/handlers/shared"
	"github.com/nutrifit/internal/http/response"
	"github.com/nutrifit/internal/models"
	"github.com/nutrifit/internal/service"

	"github.com/gin-gonic/gin"
)

// UpdateProfileRequest 资料保存请求
type UpdateProfileRequest struct {
	DOB           string `json:"dob"`
	Email         string `json:"email"`
	Height        string `json:"height"`
	Weight        string `json:"weight"`
	Nickname      string `json:"nickname"`
	ExerciseLevel string `json:"exerciseLevel" binding:"required"`
}

// ProfileResponse 资料响应
type ProfileResponse struct {
	Details models.UserDetails `json:"details"`
	Age     int                `json:"age"`
	Created bool               `json:"created,omitempty"`
}

// GetProfile 读取资料，首次访问写入默认值
func (h *Handler) GetProfile(c *gin.Context) {
	identity, ok := handlershared.GetIdentity(c)
	if !ok {
		return
	}
	defaults := service.DefaultUserDetails(identity.Email, identity.FirstName)
	details, created, err := h.ProfileService.LoadOrInitUserDetails(c.Request.Context(), identity.UserID, defaults)
	if err != nil {
		handlershared.RespondMappedError(c, err, profileErrorRules, response.CodeInternal, "Failed to load profile.")
		return
	}
	response.Success(c, ProfileResponse{
		Details: details,
		Age:     details.Age(time.Now()),
		Created: created,
	})
}

// UpdateProfile 整体覆盖保存资料
func (h *Handler) UpdateProfile(c *gin.Context) {
	identity, ok := handlershared.GetIdentity(c)
	if !ok {
		return
	}
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "Invalid request.", err)
		return
	}
	details, err := h.ProfileService.SaveUserDetails(c.Request.Context(), identity.UserID, models.UserDetails{
		DOB:           req.DOB,
		Email:         req.Email,
		Height:        req.Height,
		Weight:        req.Weight,
		Nickname:      req.Nickname,
		ExerciseLevel: req.ExerciseLevel,
	})
	if err != nil {
		respondProfileError(c, err)
		return
	}
	response.SuccessWithMsg(c, "Profile saved successfully!", ProfileResponse{
		Details: details,
		Age:     details.Age(time.Now()),
	})
}
