package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/nutrifit/internal/app"
	"github.com/nutrifit/internal/catalog"
	"github.com/nutrifit/internal/config"
	"github.com/nutrifit/internal/logger"
	"github.com/nutrifit/internal/models"
	"github.com/nutrifit/internal/repository"
	"github.com/nutrifit/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	ansiReset = "\033[0m"
	ansiBold  = "\033[1m"
	ansiDim   = "\033[2m"
	ansiGreen = "\033[32m"
	ansiCyan  = "\033[36m"
)

func main() {
	// 解析命令行参数
	var mode string
	flag.StringVar(&mode, "mode", app.ModeAll, "启动模式: all (默认), api, worker")
	flag.Parse()

	printStartupBanner()

	// 加载配置
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	defer logger.Sync()
	stdLog := logger.StdLogger()

	if isWeakSecret(cfg.Auth.JWTSecret) {
		if cfg.Server.Mode == "release" && cfg.Auth.JWTSecret != "" {
			stdLog.Fatalf("JWT secret 过弱，请在生产环境中配置强随机密钥")
		}
		if cfg.Auth.JWTSecret == "" {
			stdLog.Printf("警告: 未配置 JWT secret，身份信息将直接信任 X-User-* 请求头")
		} else {
			stdLog.Printf("警告: JWT secret 过弱，建议在生产环境中更换")
		}
	}

	// 初始化数据库
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
	}); err != nil {
		stdLog.Fatalf("数据库初始化失败: %v", err)
	}

	// 自动迁移数据库表
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("数据库迁移失败: %v", err)
	}

	// 商品表为空时写入内置目录
	if mode != app.ModeWorker {
		products, err := catalog.Products()
		if err != nil {
			stdLog.Fatalf("加载商品目录失败: %v", err)
		}
		seeded, err := service.NewProductService(repository.NewProductRepository(models.DB)).Seed(products, true)
		if err != nil {
			stdLog.Printf("警告: 初始化商品失败: %v", err)
		} else if seeded > 0 {
			logger.Infow("server_products_seeded", "count", seeded)
		}
	}

	// 设置 Gin 模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := app.Run(app.Options{
		Config:  cfg,
		Logger:  logger.S(),
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		Mode:    mode,
	}); err != nil {
		stdLog.Fatalf("服务运行失败: %v", err)
	}
}

func printStartupBanner() {
	fmt.Println(ansiCyan + "███╗   ██╗██╗   ██╗████████╗██████╗ ██╗███████╗██╗████████╗" + ansiReset)
	fmt.Println(ansiCyan + "████╗  ██║██║   ██║╚══██╔══╝██╔══██╗██║██╔════╝██║╚══██╔══╝" + ansiReset)
	fmt.Println(ansiCyan + "██╔██╗ ██║██║   ██║   ██║   ██████╔╝██║█████╗  ██║   ██║   " + ansiReset)
	fmt.Println(ansiCyan + "██║╚██╗██║██║   ██║   ██║   ██╔══██╗██║██╔══╝  ██║   ██║   " + ansiReset)
	fmt.Println(ansiCyan + "██║ ╚████║╚██████╔╝   ██║   ██║  ██║██║██║     ██║   ██║   " + ansiReset)
	fmt.Println(ansiCyan + "╚═╝  ╚═══╝ ╚═════╝    ╚═╝   ╚═╝  ╚═╝╚═╝╚═╝     ╚═╝   ╚═╝   " + ansiReset)
	fmt.Println(ansiGreen + ansiBold + "NutriFit API" + ansiReset)
	fmt.Println(ansiDim + "--------------------------------------------------------------" + ansiReset)
}

func isWeakSecret(secret string) bool {
	if len(secret) < 32 {
		return true
	}
	normalized := strings.ToLower(secret)
	return strings.Contains(normalized, "change-me") ||
		strings.Contains(normalized, "change-in-production") ||
		strings.Contains(normalized, "your-secret-key")
}
