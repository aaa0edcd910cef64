package v1

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/lapatisseriex/La-Patisserie-sub001/internal/service"
	"github.com/lapatisseriex/La-Patisserie-sub001/pkg/e"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ProductHandler 商品目录（公开只读）
type ProductHandler struct {
	productService *service.ProductService
}

func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// RegisterPublicRoutes 注册公开目录路由
func (h *ProductHandler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/products", h.ListProducts)
	rg.GET("/products/:id", h.GetProduct)
}

func (h *ProductHandler) ListProducts(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	// 默认只返回在售商品 all=true 时返回全部
	onlyActive := c.DefaultQuery("all", "false") != "true"
	products, err := h.productService.ListProducts(ctx, onlyActive)
	if err != nil {
		Fail(c, http.StatusInternalServerError, e.ERROR, "获取商品列表失败")
		return
	}
	OK(c, gin.H{"products": products})
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	p, err := h.productService.GetProduct(ctx, toInt64(c.Param("id")))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			Fail(c, http.StatusNotFound, e.ERROR_PRODUCT_NOT_EXISTS, "")
			return
		}
		Fail(c, http.StatusInternalServerError, e.ERROR, "获取商品失败")
		return
	}
	OK(c, gin.H{"product": p})
}
