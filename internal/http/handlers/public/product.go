package public

import (
	"strings"

	handlershared "github.com/nutrifit/internal/http/handlers/shared"
	"github.com/nutrifit/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ListProducts 上架商品列表
func (h *Handler) ListProducts(c *gin.Context) {
	page, pageSize := handlershared.PageQuery(c)
	search := strings.TrimSpace(c.Query("search"))

	products, total, err := h.ProductService.ListPublic(search, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "Failed to load products.", err)
		return
	}
	response.SuccessWithPage(c, products, response.NewPagination(page, pageSize, total))
}
