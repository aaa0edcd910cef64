package v1

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/lapatisseriex/La-Patisserie-sub001/internal/dao"
	"github.com/lapatisseriex/La-Patisserie-sub001/internal/service"
	"github.com/lapatisseriex/La-Patisserie-sub001/pkg/e"
	"github.com/gin-gonic/gin"
)

// AdminOrderHandler 管理端派单与对账
type AdminOrderHandler struct {
	dispatchService  *service.DispatchService
	reconcileService *service.ReconcileService
	orderService     *service.OrderService
	reconcileBatch   int
}

func NewAdminOrderHandler(dispatchService *service.DispatchService, reconcileService *service.ReconcileService,
	orderService *service.OrderService, reconcileBatch int) *AdminOrderHandler {
	return &AdminOrderHandler{
		dispatchService:  dispatchService,
		reconcileService: reconcileService,
		orderService:     orderService,
		reconcileBatch:   reconcileBatch,
	}
}

// RegisterRoutes 注册管理端路由（需 JWT + admin角色）
func (h *AdminOrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/admin/orders/grouped", h.GetGroupedPendingOrders)
	rg.POST("/admin/dispatch", h.DispatchOrders)
	rg.POST("/admin/orders/migrate-hostel-ids", h.MigrateHostelIDs)
	rg.PUT("/admin/orders/:id/status", h.UpdateOrderStatus)
}

// GetGroupedPendingOrders 待派送订单的 宿舍->类目->商品 分组视图
func (h *AdminOrderHandler) GetGroupedPendingOrders(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	groups, err := h.dispatchService.GroupPendingOrders(ctx)
	if err != nil {
		Fail(c, http.StatusInternalServerError, e.ERROR, err.Error())
		return
	}
	OK(c, gin.H{"groups": groups})
}

// DispatchOrders 批量派送
// 请求体 {hostel, category, product_name, count} 全部必填 count > 0
func (h *AdminOrderHandler) DispatchOrders(c *gin.Context) {
	var req service.DispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, e.INVALID_PARAMS, "")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	result, err := h.dispatchService.Dispatch(ctx, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoPlacedOrders):
			Fail(c, http.StatusNotFound, e.ERROR_NO_PLACED_ORDERS, "")
		case errors.Is(err, service.ErrNoExactMatch):
			Fail(c, http.StatusNotFound, e.ERROR_NO_EXACT_MATCH, "")
		case errors.Is(err, service.ErrDispatchLocked):
			Fail(c, http.StatusConflict, e.ERROR_DISPATCH_LOCKED, "")
		default:
			Fail(c, http.StatusInternalServerError, e.ERROR, err.Error())
		}
		return
	}
	OK(c, result)
}

type updateStatusRequest struct {
	FromStatus string `json:"from_status" binding:"required"`
	ToStatus   string `json:"to_status" binding:"required"`
}

// UpdateOrderStatus 管理端状态流转（确认/备餐/送达/取消等）
func (h *AdminOrderHandler) UpdateOrderStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, e.INVALID_PARAMS, "")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	err := h.orderService.UpdateStatus(ctx, toInt64(c.Param("id")), req.FromStatus, req.ToStatus)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBadOrderStatus):
			Fail(c, http.StatusBadRequest, e.INVALID_PARAMS, err.Error())
		case errors.Is(err, dao.ErrOrderStatusChanged):
			Fail(c, http.StatusConflict, e.ERROR_ORDER_STATUS, err.Error())
		default:
			Fail(c, http.StatusInternalServerError, e.ERROR, err.Error())
		}
		return
	}
	OK(c, gin.H{"updated": true})
}

// MigrateHostelIDs 同步触发一轮宿舍ID回填
func (h *AdminOrderHandler) MigrateHostelIDs(c *gin.Context) {
	// 全量回填可能较慢 放宽超时
	ctx, cancel := context.WithTimeout(c.Request.Context(), 60*time.Second)
	defer cancel()

	result, err := h.reconcileService.ReconcileAll(ctx, h.reconcileBatch)
	if err != nil {
		Fail(c, http.StatusInternalServerError, e.ERROR, err.Error())
		return
	}
	OK(c, result)
}
