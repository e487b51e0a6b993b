package public

import (
	"strings"

	"github.com/nutrifit/internal/cart"
	handlershared "github.com/nutrifit/internal/http/handlers/shared"
	"github.com/nutrifit/internal/http/response"
	"github.com/nutrifit/internal/models"

	"github.com/gin-gonic/gin"
)

// AddCartItemRequest 加入购物车请求
type AddCartItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
}

// CheckoutRequest 下单请求
type CheckoutRequest struct {
	Email string `json:"email"`
}

// CartItemResponse 购物车行
type CartItemResponse struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Price    models.Money `json:"price"`
	Quantity int          `json:"quantity"`
	Subtotal models.Money `json:"subtotal"`
}

// CartResponse 购物车响应
type CartResponse struct {
	Items []CartItemResponse `json:"items"`
	Total models.Money       `json:"total"`
	Count int                `json:"count"`
}

func toCartResponse(snapshot cart.Snapshot) CartResponse {
	resp := CartResponse{
		Items: make([]CartItemResponse, 0, len(snapshot.Items)),
		Total: snapshot.Total,
	}
	for _, item := range snapshot.Items {
		resp.Items = append(resp.Items, CartItemResponse{
			ID:       item.ID,
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
			Subtotal: item.Subtotal(),
		})
		resp.Count += item.Quantity
	}
	return resp
}

// GetCart 获取当前会话购物车
func (h *Handler) GetCart(c *gin.Context) {
	sessionID, ok := handlershared.GetSessionID(c)
	if !ok {
		return
	}
	snapshot, err := h.CartService.Snapshot(c.Request.Context(), sessionID)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, toCartResponse(snapshot))
}

// AddCartItem 加入购物车，已存在则数量加一
func (h *Handler) AddCartItem(c *gin.Context) {
	sessionID, ok := handlershared.GetSessionID(c)
	if !ok {
		return
	}
	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "Invalid request.", err)
		return
	}
	snapshot, err := h.CartService.AddProduct(c.Request.Context(), sessionID, strings.TrimSpace(req.ProductID))
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, toCartResponse(snapshot))
}

// RemoveCartItem 删除购物车行，不存在时无操作
func (h *Handler) RemoveCartItem(c *gin.Context) {
	sessionID, ok := handlershared.GetSessionID(c)
	if !ok {
		return
	}
	snapshot, err := h.CartService.RemoveItem(c.Request.Context(), sessionID, strings.TrimSpace(c.Param("id")))
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, toCartResponse(snapshot))
}

// ClearCart 清空购物车
func (h *Handler) ClearCart(c *gin.Context) {
	sessionID, ok := handlershared.GetSessionID(c)
	if !ok {
		return
	}
	snapshot, err := h.CartService.Clear(c.Request.Context(), sessionID)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, toCartResponse(snapshot))
}

// Checkout 确认下单，通知成功后清空购物车
func (h *Handler) Checkout(c *gin.Context) {
	sessionID, ok := handlershared.GetSessionID(c)
	if !ok {
		return
	}
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "Invalid request.", err)
		return
	}
	summary, err := h.CartService.Checkout(c.Request.Context(), sessionID, req.Email)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	response.SuccessWithMsg(c, "Order confirmed! A confirmation email has been sent.", gin.H{
		"items":   summary.Items,
		"lines":   summary.Lines(),
		"total":   summary.Total,
		"email":   summary.Email,
		"summary": summary.Text(),
	})
}
