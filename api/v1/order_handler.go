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

// OrderHandler 顾客侧订单 HTTP 处理器
type OrderHandler struct {
	orderService *service.OrderService
}

func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// RegisterRoutes 注册订单相关路由（需 JWT）
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	// 统一规范：不在 handler 内再创建分组或添加限流
	rg.POST("/orders", h.Checkout)
	rg.GET("/orders/my", h.ListMyOrders)
	rg.GET("/orders/:id", h.GetOrder)
	rg.GET("/notifications/my", h.ListMyNotifications)
}

type checkoutRequest struct {
	UserName         string                  `json:"user_name"`
	UserPhone        string                  `json:"user_phone"`
	UserEmail        string                  `json:"user_email"`
	DeliveryLocation string                  `json:"delivery_location" binding:"required"`
	HostelName       string                  `json:"hostel_name"`
	PaymentMethod    string                  `json:"payment_method"`
	DeliveryCharge   float64                 `json:"delivery_charge"`
	Items            []service.CartItemInput `json:"items" binding:"required,dive"`
}

// Checkout 结账下单
// 宿舍/配送地址按用户输入原样落库 不在写入时做规范化
func (h *OrderHandler) Checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, e.INVALID_PARAMS, "")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	order, err := h.orderService.Checkout(ctx, &service.CheckoutInput{
		UserID:           c.GetInt64("user_id"),
		UserName:         req.UserName,
		UserPhone:        req.UserPhone,
		UserEmail:        req.UserEmail,
		DeliveryLocation: req.DeliveryLocation,
		HostelName:       req.HostelName,
		PaymentMethod:    req.PaymentMethod,
		DeliveryCharge:   req.DeliveryCharge,
		Items:            req.Items,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyCart), errors.Is(err, service.ErrMissingLocation):
			Fail(c, http.StatusBadRequest, e.INVALID_PARAMS, err.Error())
		case errors.Is(err, service.ErrProductNotFound):
			Fail(c, http.StatusNotFound, e.ERROR_PRODUCT_NOT_EXISTS, "")
		default:
			Fail(c, http.StatusInternalServerError, e.ERROR, err.Error())
		}
		return
	}
	OK(c, gin.H{"order": order})
}

func (h *OrderHandler) ListMyOrders(c *gin.Context) {
	userID := c.GetInt64("user_id")
	page := toInt32(c.DefaultQuery("page", "1"))
	pageSize := toInt32(c.DefaultQuery("page_size", "20"))

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	orders, total, err := h.orderService.ListUserOrders(ctx, userID, page, pageSize)
	if err != nil {
		Fail(c, http.StatusInternalServerError, e.ERROR, "获取订单失败")
		return
	}
	OK(c, gin.H{
		"orders": orders,
		"total":  total,
	})
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID := c.GetInt64("user_id")
	orderID := toInt64(c.Param("id"))

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	order, err := h.orderService.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			Fail(c, http.StatusNotFound, e.ERROR_ORDER_NOT_EXISTS, "")
			return
		}
		Fail(c, http.StatusInternalServerError, e.ERROR, "获取订单失败")
		return
	}
	// 简单校验归属
	if order.UserID != userID && c.GetString("role") != "admin" {
		Fail(c, http.StatusForbidden, e.ERROR, "无权访问该订单")
		return
	}
	OK(c, gin.H{"order": order})
}

// ListMyNotifications 当前用户的派送通知
func (h *OrderHandler) ListMyNotifications(c *gin.Context) {
	userID := c.GetInt64("user_id")
	limit := int(toInt32(c.DefaultQuery("limit", "50")))

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	ns, err := h.orderService.ListUserNotifications(ctx, userID, limit)
	if err != nil {
		Fail(c, http.StatusInternalServerError, e.ERROR, "获取通知失败")
		return
	}
	OK(c, gin.H{"notifications": ns})
}
