package public

import (
	"errors"
	"strings"

	"github.com/nutrifit/internal/assistant"
	"github.com/nutrifit/internal/constants"
	"github.com/nutrifit/internal/http/response"
	"github.com/nutrifit/internal/service"

	"github.com/gin-gonic/gin"
)

// StartAssistantRequest 创建助手会话请求
type StartAssistantRequest struct {
	Mode string `json:"mode"`
}

// AssistantMessageRequest 文字模式消息
type AssistantMessageRequest struct {
	Text string `json:"text"`
}

// StartAssistantSession 创建语音或文字会话
func (h *Handler) StartAssistantSession(c *gin.Context) {
	var req StartAssistantRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, response.CodeBadRequest, "Invalid request.", err)
			return
		}
	}
	mode := assistant.Mode(strings.ToLower(strings.TrimSpace(req.Mode)))
	switch mode {
	case "":
		mode = assistant.ModeVoice
	case assistant.ModeVoice, assistant.ModeText:
	default:
		response.BadRequest(c, "Mode must be voice or text.")
		return
	}
	// 允许匿名会话，身份只用于记录
	state := h.AssistantService.StartSession(c.GetString(constants.ContextKeyUserID), mode)
	response.Success(c, state)
}

// GetAssistantSession 查询会话状态
func (h *Handler) GetAssistantSession(c *gin.Context) {
	state, err := h.AssistantService.Session(c.Param("id"))
	if err != nil {
		respondAssistantError(c, err)
		return
	}
	response.Success(c, state)
}

// PostAssistantEvent 接收语音 SDK 推送的原始消息
func (h *Handler) PostAssistantEvent(c *gin.Context) {
	var raw assistant.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		respondError(c, response.CodeBadRequest, "Invalid request.", err)
		return
	}
	state, err := h.AssistantService.HandleEvent(c.Param("id"), raw)
	if err != nil {
		if errors.Is(err, service.ErrMicrophoneDenied) {
			response.ErrorWithData(c, response.CodeForbidden, state.Error, gin.H{"session": state})
			return
		}
		respondAssistantError(c, err)
		return
	}
	response.Success(c, state)
}

// PostAssistantMessage 文字模式发送消息
func (h *Handler) PostAssistantMessage(c *gin.Context) {
	var req AssistantMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "Invalid request.", err)
		return
	}
	state, err := h.AssistantService.SendText(c.Param("id"), req.Text)
	if err != nil {
		respondAssistantError(c, err)
		return
	}
	response.Success(c, state)
}
