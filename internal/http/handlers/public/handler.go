package public

import (
	handlershared "github.com/nutrifit/internal/http/handlers/shared"
	"github.com/nutrifit/internal/provider"

	"github.com/gin-gonic/gin"
)

// Handler 前台接口处理器入口
// 说明：商店、购物车、个人资料、计划与助手接口共用该处理器。
type Handler struct {
	*provider.Container
}

// New 创建前台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}
