package dao

import (
	"context"
	"errors"
	"time"

	"github.com/lapatisseriex/La-Patisserie-sub001/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderDao struct {
	db *gorm.DB
}

func NewOrderDao(db *gorm.DB) *OrderDao {
	return &OrderDao{
		db: db,
	}
}

var ErrOrderStatusChanged = errors.New("订单状态已变更")

// CreateOrder 创建订单（含条目 单事务）
func (d *OrderDao) CreateOrder(ctx context.Context, order *model.Order) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(order).Error
	})
}

// GetOrderByID 根据ID获取订单（含条目）
func (d *OrderDao) GetOrderByID(ctx context.Context, orderID int64) (*model.Order, error) {
	var order model.Order
	err := d.db.WithContext(ctx).Preload("Items").Where("id = ?", orderID).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetUserOrders 获取用户订单列表
func (d *OrderDao) GetUserOrders(ctx context.Context, userID int64, page, pageSize int32) ([]*model.Order, int64, error) {
	var orders []*model.Order
	var total int64
	offset := (page - 1) * pageSize

	// 获取总数
	if err := d.db.WithContext(ctx).Model(&model.Order{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 获取分页数据
	err := d.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(int(pageSize)).
		Offset(int(offset)).
		Find(&orders).Error

	return orders, total, err
}

// UpdateOrderStatus 更新订单状态（带前置状态校验）
func (d *OrderDao) UpdateOrderStatus(ctx context.Context, orderID int64, fromStatus, toStatus string) error {
	result := d.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND order_status = ?", orderID, fromStatus).
		Update("order_status", toStatus)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOrderStatusChanged // 统一错误类型
	}
	return nil
}

// ListPlacedWithItems 取出所有待派送订单 条目和商品类目一并加载
// 派单分组视图的数据源
func (d *OrderDao) ListPlacedWithItems(ctx context.Context) ([]*model.Order, error) {
	var orders []*model.Order
	err := d.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		Preload("Items.Product.Category").
		Where("order_status = ?", model.OrderStatusPlaced).
		Order("created_at ASC").
		Find(&orders).Error
	return orders, err
}

// DispatchBucket 派单时的宿舍桶过滤条件
// 分组视图里已解析订单挂在规范宿舍名下 而orders表里存的仍是下单时的自由文本
// 所以按桶取单时要同时认 hostel_id（已解析）和原始 hostel_name（未解析）
type DispatchBucket struct {
	RawName  string
	HostelID *int64
	// Unknown Hostel 桶：既没有回填ID也没有原始宿舍名的订单
	Unknown bool
}

// CandidatesForDispatch 在事务内锁定候选订单行
// 按创建时间升序（先下单先派送），条目的类目过滤在内存里做
func (d *OrderDao) CandidatesForDispatch(ctx context.Context, tx *gorm.DB, bucket DispatchBucket, productName string, limit int) ([]*model.Order, error) {
	q := tx.WithContext(ctx).Model(&model.Order{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("order_status = ?", model.OrderStatusPlaced)
	switch {
	case bucket.Unknown:
		q = q.Where("hostel_id IS NULL AND (hostel_name IS NULL OR hostel_name = '')")
	case bucket.HostelID != nil:
		q = q.Where("hostel_name = ? OR hostel_id = ?", bucket.RawName, *bucket.HostelID)
	default:
		q = q.Where("hostel_name = ?", bucket.RawName)
	}

	var ids []int64
	err := q.
		Where("EXISTS (SELECT 1 FROM order_items oi WHERE oi.order_id = orders.id AND oi.product_name = ?)", productName).
		Order("created_at ASC").
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	var orders []*model.Order
	err = tx.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		Preload("Items.Product.Category").
		Where("id IN ?", ids).
		Order("created_at ASC").
		Find(&orders).Error
	return orders, err
}

// MarkDispatched 批量把订单置为配送中 并更新对应条目的派送状态
// 必须在调用方的事务里执行
func (d *OrderDao) MarkDispatched(ctx context.Context, tx *gorm.DB, orderIDs []int64, productName string) error {
	if len(orderIDs) == 0 {
		return nil
	}
	now := time.Now()

	res := tx.WithContext(ctx).Model(&model.Order{}).
		Where("id IN ? AND order_status = ?", orderIDs, model.OrderStatusPlaced).
		Update("order_status", model.OrderStatusOutForDelivery)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != int64(len(orderIDs)) {
		return ErrOrderStatusChanged
	}

	return tx.WithContext(ctx).Model(&model.OrderItem{}).
		Where("order_id IN ? AND product_name = ?", orderIDs, productName).
		Updates(map[string]interface{}{
			"dispatch_status": model.DispatchStatusDispatched,
			"dispatched_at":   now,
		}).Error
}

// ListUnresolved 取出还没回填 hostel_id 的订单
func (d *OrderDao) ListUnresolved(ctx context.Context, limit int) ([]*model.Order, error) {
	var orders []*model.Order
	q := d.db.WithContext(ctx).
		Where("hostel_id IS NULL").
		Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&orders).Error
	return orders, err
}

// SetHostelID 回填规范宿舍ID 只更新仍未解析的行 天然幂等
func (d *OrderDao) SetHostelID(ctx context.Context, orderID, hostelID int64) (bool, error) {
	res := d.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND hostel_id IS NULL", orderID).
		Update("hostel_id", hostelID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Transaction 暴露事务入口给service层
func (d *OrderDao) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return d.db.WithContext(ctx).Transaction(fn)
}
