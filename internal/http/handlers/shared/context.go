package shared

import (
	"strings"

	"github.com/nutrifit/internal/constants"
	"github.com/nutrifit/internal/http/response"

	"github.com/gin-gonic/gin"
)

// Identity 上游身份提供方给出的用户信息
type Identity struct {
	UserID    string
	Email     string
	FirstName string
}

// SetIdentity 写入请求上下文
func SetIdentity(c *gin.Context, identity Identity) {
	c.Set(constants.ContextKeyUserID, strings.TrimSpace(identity.UserID))
	c.Set(constants.ContextKeyUserEmail, strings.TrimSpace(identity.Email))
	c.Set(constants.ContextKeyUserFirstName, strings.TrimSpace(identity.FirstName))
}

// GetIdentity 读取身份，缺失用户ID时返回未登录响应。
func GetIdentity(c *gin.Context) (Identity, bool) {
	identity := Identity{
		UserID:    c.GetString(constants.ContextKeyUserID),
		Email:     c.GetString(constants.ContextKeyUserEmail),
		FirstName: c.GetString(constants.ContextKeyUserFirstName),
	}
	if identity.UserID == "" {
		RespondError(c, response.CodeUnauthorized, "Please sign in to continue.", nil)
		return Identity{}, false
	}
	return identity, true
}

// GetSessionID 读取购物车会话ID
func GetSessionID(c *gin.Context) (string, bool) {
	sessionID := c.GetString(constants.ContextKeySessionID)
	if sessionID == "" {
		response.BadRequest(c, "Missing cart session.")
		return "", false
	}
	return sessionID, true
}
