package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/nutrifit/internal/cart"
	"github.com/nutrifit/internal/logger"
	"github.com/nutrifit/internal/models"
)

const defaultCurrencySymbol = "₹"

// OrderLine 订单摘要中的一行
type OrderLine struct {
	Name     string       `json:"name"`
	Quantity int          `json:"quantity"`
	Price    models.Money `json:"price"`
}

// OrderSummary 下单通知内容
type OrderSummary struct {
	Items          []OrderLine  `json:"items"`
	Total          models.Money `json:"total"`
	Email          string       `json:"email"`
	CurrencySymbol string       `json:"-"`
}

// Lines 逐行摘要：名称 x数量 - 单价
func (s OrderSummary) Lines() []string {
	out := make([]string, 0, len(s.Items))
	for _, item := range s.Items {
		out = append(out, fmt.Sprintf("%s x%d - %s%s", item.Name, item.Quantity, s.symbol(), item.Price.Display()))
	}
	return out
}

// Text 多行摘要文本
func (s OrderSummary) Text() string {
	return strings.Join(s.Lines(), "\n")
}

// TotalText 带币种符号的总额
func (s OrderSummary) TotalText() string {
	return s.symbol() + s.Total.Display()
}

func (s OrderSummary) symbol() string {
	if s.CurrencySymbol == "" {
		return defaultCurrencySymbol
	}
	return s.CurrencySymbol
}

// OrderNotifier 通知协作方：买家与店主两封通知作为一个整体成功或失败
type OrderNotifier interface {
	NotifyOrder(ctx context.Context, summary OrderSummary) error
}

// OrderService 下单确认服务
type OrderService struct {
	notifier       OrderNotifier
	currencySymbol string
}

// NewOrderService 创建下单服务
func NewOrderService(notifier OrderNotifier, currencySymbol string) *OrderService {
	if strings.TrimSpace(currencySymbol) == "" {
		currencySymbol = defaultCurrencySymbol
	}
	return &OrderService{notifier: notifier, currencySymbol: currencySymbol}
}

// LinesFromSnapshot 购物车快照转换为订单行
func LinesFromSnapshot(snapshot cart.Snapshot) []OrderLine {
	lines := make([]OrderLine, 0, len(snapshot.Items))
	for _, item := range snapshot.Items {
		lines = append(lines, OrderLine{Name: item.Name, Quantity: item.Quantity, Price: item.Price})
	}
	return lines
}

// BuildSummary 校验订单行与邮箱并生成摘要，总额由订单行重新计算
func (s *OrderService) BuildSummary(lines []OrderLine, email string) (OrderSummary, error) {
	if len(lines) == 0 {
		return OrderSummary{}, ErrCartEmpty
	}
	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return OrderSummary{}, ErrInvalidEmail
	}
	total := models.ZeroMoney()
	items := make([]OrderLine, 0, len(lines))
	for _, line := range lines {
		name := strings.TrimSpace(line.Name)
		if name == "" || line.Quantity < 1 || line.Price.IsNegative() {
			return OrderSummary{}, ErrOrderItemsInvalid
		}
		items = append(items, OrderLine{Name: name, Quantity: line.Quantity, Price: line.Price})
		total = total.Plus(line.Price.Times(line.Quantity))
	}
	return OrderSummary{
		Items:          items,
		Total:          total,
		Email:          email,
		CurrencySymbol: s.currencySymbol,
	}, nil
}

// ConfirmOrder 校验并发送下单通知；不做内部重试，失败时调用方保留购物车
func (s *OrderService) ConfirmOrder(ctx context.Context, lines []OrderLine, email string) (*OrderSummary, error) {
	summary, err := s.BuildSummary(lines, email)
	if err != nil {
		return nil, err
	}
	if s.notifier == nil {
		return nil, ErrEmailServiceNotConfigured
	}
	if err := s.notifier.NotifyOrder(ctx, summary); err != nil {
		logger.Warnw("order_notify_failed",
			"email", summary.Email,
			"items", len(summary.Items),
			"total", summary.Total.String(),
			"error", err,
		)
		if errors.Is(err, ErrNotification) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrNotification, err)
	}
	logger.Infow("order_notify_sent",
		"email", summary.Email,
		"items", len(summary.Items),
		"total", summary.Total.String(),
	)
	return &summary, nil
}
