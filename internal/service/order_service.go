package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/lapatisseriex/La-Patisserie-sub001/internal/dao"
	"github.com/lapatisseriex/La-Patisserie-sub001/internal/model"

	"gorm.io/gorm"
)

var (
	ErrProductNotFound = errors.New("商品不存在")
	ErrEmptyCart       = errors.New("购物车为空")
	ErrMissingLocation = errors.New("配送地址不能为空")
	ErrBadOrderStatus  = errors.New("非法的订单状态")
)

// OrderService 结账下单
// 只写自由文本的宿舍/地址 hostel_id 由对账任务事后回填
type OrderService struct {
	orderDao        *dao.OrderDao
	productDao      *dao.ProductDao
	notificationDao *dao.NotificationDao
}

func NewOrderService(orderDao *dao.OrderDao, productDao *dao.ProductDao, notificationDao *dao.NotificationDao) *OrderService {
	return &OrderService{
		orderDao:        orderDao,
		productDao:      productDao,
		notificationDao: notificationDao,
	}
}

// CartItemInput 结账时的购物车条目
type CartItemInput struct {
	ProductID    int64 `json:"product_id" binding:"required"`
	Quantity     int32 `json:"quantity" binding:"required,gt=0"`
	VariantIndex int32 `json:"variant_index"`
}

// CheckoutInput 结账请求
type CheckoutInput struct {
	UserID           int64
	UserName         string
	UserPhone        string
	UserEmail        string
	DeliveryLocation string
	HostelName       string
	PaymentMethod    string
	DeliveryCharge   float64
	Items            []CartItemInput
}

// newOrderNumber 订单号 LP-YYYYMMDD-XXXXXX
func newOrderNumber() string {
	return fmt.Sprintf("LP-%s-%06d", time.Now().Format("20060102"), rand.Intn(1000000))
}

// Checkout 创建订单
func (s *OrderService) Checkout(ctx context.Context, in *CheckoutInput) (*model.Order, error) {
	if len(in.Items) == 0 {
		return nil, ErrEmptyCart
	}
	if strings.TrimSpace(in.DeliveryLocation) == "" {
		return nil, ErrMissingLocation
	}

	ids := make([]int64, 0, len(in.Items))
	for _, item := range in.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.productDao.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	order := &model.Order{
		OrderNumber:      newOrderNumber(),
		UserID:           in.UserID,
		UserName:         in.UserName,
		UserPhone:        in.UserPhone,
		UserEmail:        in.UserEmail,
		DeliveryLocation: strings.TrimSpace(in.DeliveryLocation),
		HostelName:       strings.TrimSpace(in.HostelName),
		OrderStatus:      model.OrderStatusPlaced,
		PaymentStatus:    model.PaymentStatusPending,
		PaymentMethod:    in.PaymentMethod,
		DeliveryCharge:   in.DeliveryCharge,
	}

	total := in.DeliveryCharge
	for _, item := range in.Items {
		p, ok := byID[item.ProductID]
		if !ok || !p.IsActive {
			return nil, ErrProductNotFound
		}
		order.Items = append(order.Items, model.OrderItem{
			ProductID:      p.ID,
			ProductName:    p.Name,
			Quantity:       item.Quantity,
			Price:          p.Price,
			VariantIndex:   item.VariantIndex,
			DispatchStatus: model.DispatchStatusPending,
		})
		total += p.Price * float64(item.Quantity)
	}
	order.TotalAmount = total

	if err := s.orderDao.CreateOrder(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// GetOrder 查询订单
func (s *OrderService) GetOrder(ctx context.Context, orderID int64) (*model.Order, error) {
	o, err := s.orderDao.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}
	return o, nil
}

// ListUserOrders 用户订单列表
func (s *OrderService) ListUserOrders(ctx context.Context, userID int64, page, pageSize int32) ([]*model.Order, int64, error) {
	return s.orderDao.GetUserOrders(ctx, userID, page, pageSize)
}

// ListUserNotifications 用户通知列表（派送通知由消费者落库）
func (s *OrderService) ListUserNotifications(ctx context.Context, userID int64, limit int) ([]*model.Notification, error) {
	return s.notificationDao.ListUserNotifications(ctx, userID, limit)
}

// validOrderStatuses 管理端可以切换到的状态
var validOrderStatuses = map[string]bool{
	model.OrderStatusPlaced:         true,
	model.OrderStatusConfirmed:      true,
	model.OrderStatusPreparing:      true,
	model.OrderStatusReady:          true,
	model.OrderStatusOutForDelivery: true,
	model.OrderStatusDelivered:      true,
	model.OrderStatusCancelled:      true,
}

// UpdateStatus 管理端更新订单状态
// 带 fromStatus 条件做乐观校验 状态已变更时返回 dao.ErrOrderStatusChanged
func (s *OrderService) UpdateStatus(ctx context.Context, orderID int64, fromStatus, toStatus string) error {
	if !validOrderStatuses[fromStatus] || !validOrderStatuses[toStatus] {
		return ErrBadOrderStatus
	}
	return s.orderDao.UpdateOrderStatus(ctx, orderID, fromStatus, toStatus)
}
