package v1

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/lapatisseriex/La-Patisserie-sub001/internal/service"
	"github.com/lapatisseriex/La-Patisserie-sub001/pkg/e"
	"github.com/gin-gonic/gin"
)

// AnalyticsHandler 仪表盘聚合接口 全部只读
type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
}

func NewAnalyticsHandler(analyticsService *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// RegisterRoutes 注册分析路由（需 JWT + admin角色）
func (h *AnalyticsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/analytics/overview", h.Overview)
	rg.GET("/analytics/orders-trend", h.OrdersTrend)
	rg.GET("/analytics/orders-by-location", h.OrdersByLocation)
	rg.GET("/analytics/top-products", h.TopProducts)
	rg.GET("/analytics/category-performance", h.CategoryPerformance)
	rg.GET("/analytics/payment-methods", h.PaymentMethods)
	rg.GET("/analytics/recent-orders", h.RecentOrders)
	rg.GET("/analytics/hostel-performance", h.HostelPerformance)
}

// days 查询窗口 默认30天
func days(c *gin.Context) int {
	d, err := strconv.Atoi(c.DefaultQuery("days", "30"))
	if err != nil || d <= 0 {
		return 30
	}
	return d
}

func limit(c *gin.Context, def int) int {
	l, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(def)))
	if err != nil || l <= 0 {
		return def
	}
	return l
}

func (h *AnalyticsHandler) Overview(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	overview, err := h.analyticsService.GetOverview(ctx, days(c))
	if err != nil {
		Fail(c, http.StatusInternalServerError, e.ERROR, err.Error())
		return
	}
	OK(c, overview)
}

func (h *AnalyticsHandler) OrdersTrend(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	rows, err := h.analyticsService.GetOrdersTrend(ctx, days(c), c.DefaultQuery("period", "day"))
	if err != nil {
		Fail(c, http.StatusInternalServerError, e.ERROR, err.Error())
		return
	}
	OK(c, gin.H{"trend": rows})
}

func (h *AnalyticsHandler) OrdersByLocation(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	rows, err := h.analyticsService.GetOrdersByLocation(ctx, days(c), limit(c, 20))
	if err != nil {
		Fail(c, http.StatusInternalServerError, e.ERROR, err.Error())
		return
	}
	OK(c, gin.H{"locations": rows})
}

func (h *AnalyticsHandler) TopProducts(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	rows, err := h.analyticsService.GetTopProducts(ctx, days(c), limit(c, 10))
	if err != nil {
		Fail(c, http.StatusInternalServerError, e.ERROR, err.Error())
		return
	}
	OK(c, gin.H{"products": rows})
}

func (h *AnalyticsHandler) CategoryPerformance(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	rows, err := h.analyticsService.GetCategoryPerformance(ctx, days(c))
	if err != nil {
		Fail(c, http.StatusInternalServerError, e.ERROR, err.Error())
		return
	}
	OK(c, gin.H{"categories": rows})
}

func (h *AnalyticsHandler) PaymentMethods(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	stats, err := h.analyticsService.GetPaymentMethods(ctx, days(c))
	if err != nil {
		Fail(c, http.StatusInternalServerError, e.ERROR, err.Error())
		return
	}
	OK(c, gin.H{"methods": stats})
}

func (h *AnalyticsHandler) RecentOrders(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	orders, err := h.analyticsService.GetRecentOrders(ctx, limit(c, 10))
	if err != nil {
		Fail(c, http.StatusInternalServerError, e.ERROR, err.Error())
		return
	}
	OK(c, gin.H{"orders": orders})
}

func (h *AnalyticsHandler) HostelPerformance(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	rows, err := h.analyticsService.GetHostelPerformance(ctx, days(c))
	if err != nil {
		Fail(c, http.StatusInternalServerError, e.ERROR, err.Error())
		return
	}
	OK(c, gin.H{"hostels": rows})
}
