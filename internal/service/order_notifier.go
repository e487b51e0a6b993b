package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nutrifit/internal/config"
)

// orderMailer 订单邮件能力
type orderMailer interface {
	SendOrderConfirmation(toEmail string, summary OrderSummary) error
	SendOrderReceived(toEmail string, summary OrderSummary) error
	OwnerAddress() string
}

// MailOrderNotifier 通过 SMTP 发送买家确认与店主提醒
type MailOrderNotifier struct {
	mailer orderMailer
}

// NewMailOrderNotifier 创建邮件通知
func NewMailOrderNotifier(mailer orderMailer) *MailOrderNotifier {
	return &MailOrderNotifier{mailer: mailer}
}

// NotifyOrder 先发买家再发店主，任一失败即整体失败
func (n *MailOrderNotifier) NotifyOrder(_ context.Context, summary OrderSummary) error {
	if n == nil || n.mailer == nil {
		return ErrEmailServiceNotConfigured
	}
	owner := strings.TrimSpace(n.mailer.OwnerAddress())
	if owner == "" {
		return ErrEmailServiceNotConfigured
	}
	if err := n.mailer.SendOrderConfirmation(summary.Email, summary); err != nil {
		return err
	}
	return n.mailer.SendOrderReceived(owner, summary)
}

// HTTPOrderNotifier 调用远端通知接口
type HTTPOrderNotifier struct {
	endpoint string
	client   *http.Client
}

// NewHTTPOrderNotifier 创建 HTTP 通知
func NewHTTPOrderNotifier(endpoint string, timeout time.Duration) *HTTPOrderNotifier {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPOrderNotifier{
		endpoint: strings.TrimSpace(endpoint),
		client:   &http.Client{Timeout: timeout},
	}
}

type notifyItemPayload struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type notifyPayload struct {
	Items []notifyItemPayload `json:"items"`
	Total float64             `json:"total"`
	Email string              `json:"email"`
}

// NotifyOrder 发送 {items,total,email}，非 2xx 视为失败
func (n *HTTPOrderNotifier) NotifyOrder(ctx context.Context, summary OrderSummary) error {
	if n == nil || n.endpoint == "" {
		return ErrEmailServiceNotConfigured
	}
	payload := notifyPayload{
		Items: make([]notifyItemPayload, 0, len(summary.Items)),
		Total: summary.Total.InexactFloat64(),
		Email: summary.Email,
	}
	for _, item := range summary.Items {
		payload.Items = append(payload.Items, notifyItemPayload{
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    item.Price.InexactFloat64(),
		})
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotifyEndpointFailed, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: http status %d", ErrNotifyEndpointFailed, resp.StatusCode)
	}
	return nil
}

// NewOrderNotifier 按配置选择通知方式：配置了 notify_url 时走 HTTP，否则走 SMTP
func NewOrderNotifier(orderCfg config.OrderConfig, mailer *EmailService) OrderNotifier {
	if strings.TrimSpace(orderCfg.NotifyURL) != "" {
		return NewHTTPOrderNotifier(orderCfg.NotifyURL, time.Duration(orderCfg.NotifyTimeoutS)*time.Second)
	}
	return NewMailOrderNotifier(mailer)
}
