package main

import (
	"context"
	"flag"

	"github.com/nutrifit/internal/catalog"
	"github.com/nutrifit/internal/config"
	"github.com/nutrifit/internal/logger"
	"github.com/nutrifit/internal/models"
	"github.com/nutrifit/internal/repository"
	"github.com/nutrifit/internal/service"
)

func main() {
	var (
		plansFile string
		force     bool
	)
	flag.StringVar(&plansFile, "plans", "", "计划 YAML 文件，留空使用内置目录")
	flag.BoolVar(&force, "force", false, "商品已存在时仍然覆盖")
	flag.Parse()

	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	defer logger.Sync()
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 商品
	products, err := catalog.Products()
	if err != nil {
		stdLog.Fatalf("Failed to load products: %v", err)
	}
	seeded, err := service.NewProductService(repository.NewProductRepository(models.DB)).Seed(products, !force)
	if err != nil {
		stdLog.Fatalf("Failed to seed products: %v", err)
	}
	stdLog.Printf("Seeded %d products", seeded)

	// 训练计划写入 fitnessPlans 集合
	var plans []*models.FitnessPlan
	if plansFile != "" {
		plans, err = catalog.PlansFromFile(plansFile)
	} else {
		plans, err = catalog.Plans()
	}
	if err != nil {
		stdLog.Fatalf("Failed to load plans: %v", err)
	}
	written, err := service.SeedPlanCollection(context.Background(), repository.NewDocumentRepository(models.DB), plans)
	if err != nil {
		stdLog.Fatalf("Failed to seed plans: %v", err)
	}
	stdLog.Printf("Seeded %d fitness plans", written)
}
