package router

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/nutrifit/internal/cache"
	"github.com/nutrifit/internal/config"
	publichandlers "github.com/nutrifit/internal/http/handlers/public"
	"github.com/nutrifit/internal/logger"
	"github.com/nutrifit/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.Z()
	r := gin.New()

	h := publichandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "nf"
	}
	redisClient := cache.Client()
	orderRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:order", redisPrefix),
		WindowSeconds: cfg.Security.OrderRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.OrderRateLimit.MaxRequests,
		Message:       "Too many orders, please retry in %d seconds.",
	}
	secureCookie := strings.EqualFold(strings.TrimSpace(cfg.Server.Mode), "release")

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		apiV1.GET("/products", h.ListProducts)

		// 购物车（按会话隔离）
		cartGroup := apiV1.Group("/cart")
		cartGroup.Use(SessionMiddleware(secureCookie))
		{
			cartGroup.GET("", h.GetCart)
			cartGroup.DELETE("", h.ClearCart)
			cartGroup.POST("/items", h.AddCartItem)
			cartGroup.DELETE("/items/:id", h.RemoveCartItem)
			cartGroup.POST("/checkout", RateLimitMiddleware(redisClient, orderRule, KeyBySessionAndIP), h.Checkout)
		}

		apiV1.POST("/orders/notify", RateLimitMiddleware(redisClient, orderRule, KeyByIP), h.NotifyOrder)

		// 个人资料与计划（需身份）
		profile := apiV1.Group("/profile")
		profile.Use(IdentityMiddleware(cfg.Auth, true))
		{
			profile.GET("", h.GetProfile)
			profile.PUT("", h.UpdateProfile)
			profile.GET("/plan", h.GetPlan)
			profile.POST("/plan", h.ReassignPlan)
			profile.PATCH("/plan/progress", h.UpdatePlanProgress)
		}

		// 生成计划助手，身份可选
		assistantGroup := apiV1.Group("/assistant/sessions")
		assistantGroup.Use(IdentityMiddleware(cfg.Auth, false))
		{
			assistantGroup.POST("", h.StartAssistantSession)
			assistantGroup.GET("/:id", h.GetAssistantSession)
			assistantGroup.POST("/:id/events", h.PostAssistantEvent)
			assistantGroup.POST("/:id/messages", h.PostAssistantMessage)
		}
	}

	// 健康检查
	r.GET("/health", func(ctx *gin.Context) {
		code, body := healthStatus(ctx.Request.Context())
		ctx.JSON(code, body)
	})

	return r
}

const healthPingTimeout = 2 * time.Second

// healthStatus 启用 Redis 时附带连通性检查
func healthStatus(ctx context.Context) (int, gin.H) {
	body := gin.H{"status": "ok", "redis": "disabled"}
	if !cache.Enabled() {
		return http.StatusOK, body
	}
	pingCtx, cancel := context.WithTimeout(ctx, healthPingTimeout)
	defer cancel()
	if err := cache.Ping(pingCtx); err != nil {
		logger.Warnw("health_redis_ping_failed", "error", err)
		body["status"] = "degraded"
		body["redis"] = "down"
		return http.StatusServiceUnavailable, body
	}
	body["redis"] = "ok"
	return http.StatusOK, body
}
