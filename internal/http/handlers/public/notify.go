package public

import (
	"errors"
	"net/http"

	handlershared "github.com/nutrifit/internal/http/handlers/shared"
	"github.com/nutrifit/internal/models"
	"github.com/nutrifit/internal/service"

	"github.com/gin-gonic/gin"
)

// NotifyOrderItem 通知接口订单行
type NotifyOrderItem struct {
	Name     string       `json:"name"`
	Quantity int          `json:"quantity"`
	Price    models.Money `json:"price"`
}

// NotifyOrderRequest 通知接口请求体 {items,total,email}
type NotifyOrderRequest struct {
	Items []NotifyOrderItem `json:"items"`
	Total models.Money      `json:"total"`
	Email string            `json:"email"`
}

// NotifyOrder 发送买家确认与店主提醒邮件
// 响应沿用浏览器端约定的结构，不使用统一信封。
func (h *Handler) NotifyOrder(c *gin.Context) {
	var req NotifyOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	lines := make([]service.OrderLine, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, service.OrderLine{Name: item.Name, Quantity: item.Quantity, Price: item.Price})
	}

	summary, err := h.OrderService.ConfirmOrder(c.Request.Context(), lines, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCartEmpty):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
		case errors.Is(err, service.ErrInvalidEmail):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email"})
		case errors.Is(err, service.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order items"})
		default:
			handlershared.RequestLog(c).Errorw("order_notify_endpoint_failed", "email", req.Email, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send email"})
		}
		return
	}
	if !req.Total.IsZero() && !req.Total.Equal(summary.Total.Decimal) {
		handlershared.RequestLog(c).Warnw("order_notify_total_mismatch",
			"claimed", req.Total.String(),
			"computed", summary.Total.String(),
		)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Emails sent successfully"})
}
