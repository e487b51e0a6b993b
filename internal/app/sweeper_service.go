package app

import (
	"context"
	"time"

	"github.com/nutrifit/internal/logger"
)

const defaultSweepInterval = time.Minute

type cartSweeper interface {
	Sweep(now time.Time) int
}

type idleSweeper interface {
	Sweep(now time.Time, idleTTL time.Duration) int
}

// SweeperService 定期清理闲置的购物车会话、助手会话与计划工作副本
type SweeperService struct {
	interval  time.Duration
	idleTTL   time.Duration
	carts     cartSweeper
	assistant idleSweeper
	plans     idleSweeper
	now       func() time.Time
}

// NewSweeperService 创建清理服务，interval 非正数时使用默认值
func NewSweeperService(interval, idleTTL time.Duration, carts cartSweeper, assistant, plans idleSweeper) *SweeperService {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	return &SweeperService{
		interval:  interval,
		idleTTL:   idleTTL,
		carts:     carts,
		assistant: assistant,
		plans:     plans,
		now:       time.Now,
	}
}

// Name 服务名称
func (s *SweeperService) Name() string {
	return "sweeper"
}

// Start 按间隔清理直到 ctx 结束
func (s *SweeperService) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.runOnce()
		}
	}
}

// Stop 由 ctx 取消驱动，无需额外处理
func (s *SweeperService) Stop(_ context.Context) error {
	return nil
}

func (s *SweeperService) runOnce() {
	now := s.now()
	carts, sessions, plans := 0, 0, 0
	if s.carts != nil {
		carts = s.carts.Sweep(now)
	}
	if s.assistant != nil {
		sessions = s.assistant.Sweep(now, s.idleTTL)
	}
	if s.plans != nil {
		plans = s.plans.Sweep(now, s.idleTTL)
	}
	if carts > 0 || sessions > 0 || plans > 0 {
		logger.Debugw("sweeper_removed_idle_sessions", "carts", carts, "assistant_sessions", sessions, "plans", plans)
	}
}
