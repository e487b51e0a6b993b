package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/nutrifit/internal/cache"
	"github.com/nutrifit/internal/cart"
	"github.com/nutrifit/internal/catalog"
	"github.com/nutrifit/internal/config"
	"github.com/nutrifit/internal/logger"
	"github.com/nutrifit/internal/models"
	"github.com/nutrifit/internal/queue"
	"github.com/nutrifit/internal/repository"
	"github.com/nutrifit/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	DocumentRepo repository.DocumentRepository
	ProductRepo  repository.ProductRepository

	// Cart
	CartRegistry *cart.Registry

	// Services
	EmailService     *service.EmailService
	ProductService   *service.ProductService
	OrderService     *service.OrderService
	CartService      *service.CartService
	PlanService      *service.PlanService
	ProfileService   *service.ProfileService
	AssistantService *service.AssistantService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) (*Container, error) {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	c.initRepositories()
	if err := c.initServices(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Container) initRepositories() {
	db := models.DB
	c.DocumentRepo = repository.NewDocumentRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
}

func (c *Container) initServices() error {
	cfg := c.Config

	var persister cart.Persister
	if cfg.Cart.Persist && cache.Enabled() {
		persister = cache.NewCartSnapshotStore(time.Duration(cfg.Cart.SnapshotTTLMinutes) * time.Minute)
	}
	c.CartRegistry = cart.NewRegistry(cart.RegistryOptions{
		IdleTTL:   time.Duration(cfg.Cart.SessionTTLMinutes) * time.Minute,
		Persister: persister,
	})

	c.EmailService = service.NewEmailService(&cfg.Email)
	c.ProductService = service.NewProductService(c.ProductRepo)
	c.OrderService = service.NewOrderService(service.NewOrderNotifier(cfg.Order, c.EmailService), cfg.Order.CurrencySymbol)
	c.CartService = service.NewCartService(c.CartRegistry, c.ProductRepo, c.OrderService)
	c.ProfileService = service.NewProfileService(c.DocumentRepo)

	plans, err := service.LoadPlanCatalog(context.Background(), cfg.Catalog.Source, cfg.Catalog.PlansFile, c.DocumentRepo)
	if err != nil {
		logger.Errorw("provider_load_plan_catalog_failed", "source", cfg.Catalog.Source, "error", err)
		return fmt.Errorf("load plan catalog: %w", err)
	}
	c.PlanService = service.NewPlanService(plans, cfg.Catalog.Seed, c.DocumentRepo, c.QueueClient)

	diets, replies, err := catalog.Assistant()
	if err != nil {
		logger.Errorw("provider_load_assistant_catalog_failed", "error", err)
		return fmt.Errorf("load assistant catalog: %w", err)
	}
	c.AssistantService = service.NewAssistantService(diets, replies, cfg.Catalog.Seed)

	logger.Infow("provider_ready",
		"plans", c.PlanService.CatalogSize(),
		"cart_persist", persister != nil,
		"queue_enabled", c.QueueClient.Enabled(),
	)
	return nil
}

// Close 释放外部连接
func (c *Container) Close() {
	if c == nil {
		return
	}
	if c.QueueClient != nil {
		if err := c.QueueClient.Close(); err != nil {
			logger.Warnw("provider_close_queue_failed", "error", err)
		}
	}
	if err := cache.Close(); err != nil {
		logger.Warnw("provider_close_redis_failed", "error", err)
	}
}
