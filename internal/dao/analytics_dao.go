package dao

import (
	"context"
	"time"

	"github.com/lapatisseriex/La-Patisserie-sub001/internal/model"

	"gorm.io/gorm"
)

// AnalyticsDao 仪表盘聚合查询 全部只读
type AnalyticsDao struct {
	db *gorm.DB
}

func NewAnalyticsDao(db *gorm.DB) *AnalyticsDao {
	return &AnalyticsDao{db: db}
}

// NameCount 名称+计数聚合行
type NameCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// NameQuantity 名称+数量聚合行
type NameQuantity struct {
	Name     string `json:"name"`
	Quantity int64  `json:"quantity"`
}

// TrendRow 按时间桶的订单/营收
type TrendRow struct {
	Bucket  string  `json:"bucket"`
	Orders  int64   `json:"orders"`
	Revenue float64 `json:"revenue"`
}

// LocationRow 按原始配送地址的聚合
type LocationRow struct {
	DeliveryLocation string  `json:"delivery_location"`
	Orders           int64   `json:"orders"`
	Revenue          float64 `json:"revenue"`
}

// ProductRow top商品聚合行
type ProductRow struct {
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int64   `json:"quantity"`
	Orders      int64   `json:"orders"`
	Revenue     float64 `json:"revenue"`
}

// CategoryRow 类目表现聚合行
type CategoryRow struct {
	Category string  `json:"category"`
	Orders   int64   `json:"orders"`
	Quantity int64   `json:"quantity"`
	Revenue  float64 `json:"revenue"`
}

// PaymentMethodRow 支付方式聚合行
type PaymentMethodRow struct {
	Method   string `json:"method"`
	Attempts int64  `json:"attempts"`
	Paid     int64  `json:"paid"`
}

// HostelPerfRow 按宿舍（原始 hostel_name 字符串）的表现
// 注意：未对账订单按写入时的原始字符串聚合 拼写不同会把同一宿舍拆成多个桶
type HostelPerfRow struct {
	Hostel    string  `json:"hostel"`
	Orders    int64   `json:"orders"`
	Revenue   float64 `json:"revenue"`
	AvgOrder  float64 `json:"avg_order"`
	Completed int64   `json:"completed"`
	Pending   int64   `json:"pending"`
}

func (d *AnalyticsDao) since(days int) time.Time {
	if days <= 0 {
		days = 30
	}
	return time.Now().AddDate(0, 0, -days)
}

// CountOrders 窗口内订单总数
func (d *AnalyticsDao) CountOrders(ctx context.Context, days int) (int64, error) {
	var n int64
	err := d.db.WithContext(ctx).Model(&model.Order{}).
		Where("created_at >= ?", d.since(days)).
		Count(&n).Error
	return n, err
}

// PaidRevenue 窗口内已支付订单的总营收和订单数
func (d *AnalyticsDao) PaidRevenue(ctx context.Context, days int) (float64, int64, error) {
	var row struct {
		Revenue float64
		Orders  int64
	}
	err := d.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(total_amount), 0) AS revenue, COUNT(*) AS orders
		FROM orders
		WHERE payment_status = ? AND created_at >= ?`,
		model.PaymentStatusPaid, d.since(days)).Scan(&row).Error
	return row.Revenue, row.Orders, err
}

// TopHostelByOrders 窗口内订单量最高的宿舍（按原始字符串）
func (d *AnalyticsDao) TopHostelByOrders(ctx context.Context, days int) (*NameCount, error) {
	var rows []NameCount
	err := d.db.WithContext(ctx).Raw(`
		SELECT hostel_name AS name, COUNT(*) AS count
		FROM orders
		WHERE created_at >= ? AND hostel_name <> ''
		GROUP BY hostel_name
		ORDER BY count DESC
		LIMIT 1`, d.since(days)).Scan(&rows).Error
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}

// TopProductByQuantity 窗口内销量最高的商品
func (d *AnalyticsDao) TopProductByQuantity(ctx context.Context, days int) (*NameQuantity, error) {
	var rows []NameQuantity
	err := d.db.WithContext(ctx).Raw(`
		SELECT oi.product_name AS name, COALESCE(SUM(oi.quantity), 0) AS quantity
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.created_at >= ?
		GROUP BY oi.product_name
		ORDER BY quantity DESC
		LIMIT 1`, d.since(days)).Scan(&rows).Error
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}

// TopCategoryByOrders 窗口内订单数最高的类目（商品->类目联查）
func (d *AnalyticsDao) TopCategoryByOrders(ctx context.Context, days int) (*NameCount, error) {
	var rows []NameCount
	err := d.db.WithContext(ctx).Raw(`
		SELECT c.name AS name, COUNT(DISTINCT o.id) AS count
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
		JOIN products p ON p.id = oi.product_id
		JOIN categories c ON c.id = p.category_id
		WHERE o.created_at >= ?
		GROUP BY c.name
		ORDER BY count DESC
		LIMIT 1`, d.since(days)).Scan(&rows).Error
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}

// PaymentAttempts 窗口内支付尝试数和成功数
// 尝试 = 已支付或已失败（pending 还没发起支付 不计入）
func (d *AnalyticsDao) PaymentAttempts(ctx context.Context, days int) (attempts, paid int64, err error) {
	var row struct {
		Attempts int64
		Paid     int64
	}
	err = d.db.WithContext(ctx).Raw(`
		SELECT
			COUNT(*) AS attempts,
			COALESCE(SUM(CASE WHEN payment_status = ? THEN 1 ELSE 0 END), 0) AS paid
		FROM orders
		WHERE payment_status IN (?, ?) AND created_at >= ?`,
		model.PaymentStatusPaid, model.PaymentStatusPaid, model.PaymentStatusFailed, d.since(days)).
		Scan(&row).Error
	return row.Attempts, row.Paid, err
}

// OrdersTrend 按天/ISO周/月分桶的订单量和已支付营收
func (d *AnalyticsDao) OrdersTrend(ctx context.Context, days int, period string) ([]TrendRow, error) {
	var bucketExpr string
	switch period {
	case "week":
		// ISO周编号
		bucketExpr = "DATE_FORMAT(created_at, '%x-W%v')"
	case "month":
		bucketExpr = "DATE_FORMAT(created_at, '%Y-%m')"
	default:
		bucketExpr = "DATE(created_at)"
	}

	var rows []TrendRow
	err := d.db.WithContext(ctx).Raw(`
		SELECT `+bucketExpr+` AS bucket,
			COUNT(*) AS orders,
			COALESCE(SUM(CASE WHEN payment_status = ? THEN total_amount ELSE 0 END), 0) AS revenue
		FROM orders
		WHERE created_at >= ?
		GROUP BY bucket
		ORDER BY bucket ASC`,
		model.PaymentStatusPaid, d.since(days)).Scan(&rows).Error
	return rows, err
}

// OrdersByLocation 按原始配送地址字符串聚合
func (d *AnalyticsDao) OrdersByLocation(ctx context.Context, days, limit int) ([]LocationRow, error) {
	if limit <= 0 {
		limit = 20
	}
	var rows []LocationRow
	err := d.db.WithContext(ctx).Raw(`
		SELECT delivery_location,
			COUNT(*) AS orders,
			COALESCE(SUM(CASE WHEN payment_status = ? THEN total_amount ELSE 0 END), 0) AS revenue
		FROM orders
		WHERE created_at >= ?
		GROUP BY delivery_location
		ORDER BY orders DESC
		LIMIT ?`,
		model.PaymentStatusPaid, d.since(days), limit).Scan(&rows).Error
	return rows, err
}

// TopProducts top商品列表
func (d *AnalyticsDao) TopProducts(ctx context.Context, days, limit int) ([]ProductRow, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []ProductRow
	err := d.db.WithContext(ctx).Raw(`
		SELECT oi.product_id,
			oi.product_name,
			COALESCE(SUM(oi.quantity), 0) AS quantity,
			COUNT(DISTINCT o.id) AS orders,
			COALESCE(SUM(oi.quantity * oi.price), 0) AS revenue
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.created_at >= ?
		GROUP BY oi.product_id, oi.product_name
		ORDER BY quantity DESC
		LIMIT ?`, d.since(days), limit).Scan(&rows).Error
	return rows, err
}

// CategoryPerformance 类目表现
func (d *AnalyticsDao) CategoryPerformance(ctx context.Context, days int) ([]CategoryRow, error) {
	var rows []CategoryRow
	err := d.db.WithContext(ctx).Raw(`
		SELECT c.name AS category,
			COUNT(DISTINCT o.id) AS orders,
			COALESCE(SUM(oi.quantity), 0) AS quantity,
			COALESCE(SUM(oi.quantity * oi.price), 0) AS revenue
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
		JOIN products p ON p.id = oi.product_id
		JOIN categories c ON c.id = p.category_id
		WHERE o.created_at >= ?
		GROUP BY c.name
		ORDER BY revenue DESC`, d.since(days)).Scan(&rows).Error
	return rows, err
}

// PaymentMethods 按支付方式的尝试/成功聚合
func (d *AnalyticsDao) PaymentMethods(ctx context.Context, days int) ([]PaymentMethodRow, error) {
	var rows []PaymentMethodRow
	err := d.db.WithContext(ctx).Raw(`
		SELECT payment_method AS method,
			COUNT(*) AS attempts,
			COALESCE(SUM(CASE WHEN payment_status = ? THEN 1 ELSE 0 END), 0) AS paid
		FROM orders
		WHERE payment_status IN (?, ?) AND created_at >= ?
		GROUP BY payment_method
		ORDER BY attempts DESC`,
		model.PaymentStatusPaid, model.PaymentStatusPaid, model.PaymentStatusFailed, d.since(days)).
		Scan(&rows).Error
	return rows, err
}

// RecentOrders 最近订单
func (d *AnalyticsDao) RecentOrders(ctx context.Context, limit int) ([]*model.Order, error) {
	if limit <= 0 {
		limit = 10
	}
	var orders []*model.Order
	err := d.db.WithContext(ctx).
		Preload("Items").
		Order("created_at DESC").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}

// HostelPerformance 按宿舍的订单/营收/完成率原始数据
func (d *AnalyticsDao) HostelPerformance(ctx context.Context, days int) ([]HostelPerfRow, error) {
	var rows []HostelPerfRow
	err := d.db.WithContext(ctx).Raw(`
		SELECT hostel_name AS hostel,
			COUNT(*) AS orders,
			COALESCE(SUM(CASE WHEN payment_status = ? THEN total_amount ELSE 0 END), 0) AS revenue,
			COALESCE(SUM(CASE WHEN order_status = ? THEN 1 ELSE 0 END), 0) AS completed,
			COALESCE(SUM(CASE WHEN order_status NOT IN (?, ?) THEN 1 ELSE 0 END), 0) AS pending
		FROM orders
		WHERE created_at >= ? AND hostel_name <> ''
		GROUP BY hostel_name
		ORDER BY orders DESC`,
		model.PaymentStatusPaid, model.OrderStatusDelivered,
		model.OrderStatusDelivered, model.OrderStatusCancelled, d.since(days)).
		Scan(&rows).Error
	return rows, err
}
