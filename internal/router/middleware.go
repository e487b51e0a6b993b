package router

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nutrifit/internal/config"
	"github.com/nutrifit/internal/constants"
	handlershared "github.com/nutrifit/internal/http/handlers/shared"
	"github.com/nutrifit/internal/http/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-ID"

// 上游身份提供方透传的请求头
const (
	headerUserID        = "X-User-ID"
	headerUserEmail     = "X-User-Email"
	headerUserFirstName = "X-User-First-Name"
)

const sessionCookieMaxAge = 30 * 24 * 3600

// CORSMiddleware 跨域中间件
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	allowedMethods := cfg.AllowedMethods
	if len(allowedMethods) == 0 {
		allowedMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}
	allowedHeaders := cfg.AllowedHeaders
	if len(allowedHeaders) == 0 {
		allowedHeaders = []string{
			"Content-Type",
			"Authorization",
			constants.SessionHeader,
			headerUserID,
			headerUserEmail,
			headerUserFirstName,
		}
	}
	methodsHeader := strings.Join(allowedMethods, ", ")
	headersHeader := strings.Join(allowedHeaders, ", ")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allowedOrigin := resolveAllowedOrigin(origin, allowedOrigins, cfg.AllowCredentials)
		if allowedOrigin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			if allowedOrigin != "*" {
				c.Writer.Header().Add("Vary", "Origin")
			}
		}
		if cfg.AllowCredentials {
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", headersHeader)
		c.Writer.Header().Set("Access-Control-Allow-Methods", methodsHeader)
		c.Writer.Header().Set("Access-Control-Expose-Headers", constants.SessionHeader+", "+requestIDHeader)
		if cfg.MaxAge > 0 {
			c.Writer.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func resolveAllowedOrigin(origin string, allowedOrigins []string, allowCredentials bool) string {
	if len(allowedOrigins) == 0 {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if allowed == "*" {
			if allowCredentials && origin != "" {
				return origin
			}
			return "*"
		}
	}
	if origin == "" {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

// RequestIDMiddleware 请求 ID 中间件
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(response.RequestIDKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

// LoggerMiddleware 结构化请求日志中间件
func LoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.L()
	}
	sugar := logger.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log := sugar.With(
			"request_id", c.GetString(response.RequestIDKey),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
		if len(c.Errors) > 0 {
			log.Errorw("request", "errors", c.Errors.String())
			return
		}
		log.Infow("request")
	}
}

// SessionMiddleware 购物车会话：优先读取 X-Session-ID，其次 cookie，均缺失时签发新会话
func SessionMiddleware(secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := strings.TrimSpace(c.GetHeader(constants.SessionHeader))
		if sessionID == "" {
			if cookie, err := c.Cookie(constants.SessionCookieName); err == nil {
				sessionID = strings.TrimSpace(cookie)
			}
		}
		if sessionID == "" || len(sessionID) > 128 {
			sessionID = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(constants.SessionCookieName, sessionID, sessionCookieMaxAge, "/", "", secureCookie, true)
		}
		c.Set(constants.ContextKeySessionID, sessionID)
		c.Writer.Header().Set(constants.SessionHeader, sessionID)
		c.Next()
	}
}

// IdentityClaims 上游签发的身份令牌
type IdentityClaims struct {
	Email     string `json:"email"`
	GivenName string `json:"given_name"`
	jwt.RegisteredClaims
}

// IdentityMiddleware 解析用户身份
// 配置了 jwt_secret 时校验 Bearer 令牌，否则信任上游网关透传的 X-User-* 请求头。
// required 为 false 时身份缺失不拦截请求。
func IdentityMiddleware(cfg config.AuthConfig, required bool) gin.HandlerFunc {
	secret := strings.TrimSpace(cfg.JWTSecret)
	issuer := strings.TrimSpace(cfg.Issuer)
	return func(c *gin.Context) {
		identity, err := resolveIdentity(c, secret, issuer)
		if err != nil || identity.UserID == "" {
			if !required {
				c.Next()
				return
			}
			msg := "Please sign in to continue."
			if err != nil {
				msg = err.Error()
			}
			response.Unauthorized(c, msg)
			c.Abort()
			return
		}
		handlershared.SetIdentity(c, identity)
		c.Next()
	}
}

type identityError string

func (e identityError) Error() string { return string(e) }

const (
	errAuthHeaderMissing identityError = "Authorization header is missing."
	errAuthHeaderInvalid identityError = "Authorization header is invalid."
	errTokenInvalid      identityError = "Token is invalid or expired."
)

func resolveIdentity(c *gin.Context, secret, issuer string) (handlershared.Identity, error) {
	if secret == "" {
		return handlershared.Identity{
			UserID:    strings.TrimSpace(c.GetHeader(headerUserID)),
			Email:     strings.TrimSpace(c.GetHeader(headerUserEmail)),
			FirstName: strings.TrimSpace(c.GetHeader(headerUserFirstName)),
		}, nil
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return handlershared.Identity{}, errAuthHeaderMissing
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if !(len(parts) == 2 && parts[0] == "Bearer") {
		return handlershared.Identity{}, errAuthHeaderInvalid
	}

	options := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		options = append(options, jwt.WithIssuer(issuer))
	}
	parser := jwt.NewParser(options...)
	claims := &IdentityClaims{}
	token, err := parser.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil || !token.Valid || strings.TrimSpace(claims.Subject) == "" {
		return handlershared.Identity{}, errTokenInvalid
	}
	return handlershared.Identity{
		UserID:    claims.Subject,
		Email:     claims.Email,
		FirstName: claims.GivenName,
	}, nil
}
