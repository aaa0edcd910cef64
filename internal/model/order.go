package model

import "time"

// 订单状态
const (
	OrderStatusPending        = "pending"
	OrderStatusPlaced         = "placed"
	OrderStatusConfirmed      = "confirmed"
	OrderStatusPreparing      = "preparing"
	OrderStatusReady          = "ready"
	OrderStatusOutForDelivery = "out_for_delivery"
	OrderStatusDelivered      = "delivered"
	OrderStatusCancelled      = "cancelled"
)

// 支付状态
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

// 单项派送状态
const (
	DispatchStatusPending    = "pending"
	DispatchStatusDispatched = "dispatched"
	DispatchStatusDelivered  = "delivered"
)

// 分组兜底桶名
const (
	UnknownHostel   = "Unknown Hostel"
	UnknownCategory = "Unknown Category"
)

// Order 订单模型
// 结账时只写入自由文本的 hostel_name/delivery_location
// hostel_id 由对账任务事后回填 和 hostel_name 可以合法地不一致
type Order struct {
	ID               int64       `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OrderNumber      string      `gorm:"column:order_number;size:32;not null;uniqueIndex" json:"order_number"`
	UserID           int64       `gorm:"column:user_id;not null;index" json:"user_id"`
	UserName         string      `gorm:"column:user_name;size:100" json:"user_name"`
	UserPhone        string      `gorm:"column:user_phone;size:20" json:"user_phone"`
	UserEmail        string      `gorm:"column:user_email;size:100" json:"user_email"`
	DeliveryLocation string      `gorm:"column:delivery_location;size:255;not null" json:"delivery_location"`
	HostelName       string      `gorm:"column:hostel_name;size:150;index" json:"hostel_name"`
	HostelID         *int64      `gorm:"column:hostel_id;index" json:"hostel_id"`
	OrderStatus      string      `gorm:"column:order_status;size:20;not null;default:pending;index" json:"order_status"`
	PaymentStatus    string      `gorm:"column:payment_status;size:20;not null;default:pending" json:"payment_status"`
	PaymentMethod    string      `gorm:"column:payment_method;size:30" json:"payment_method"`
	PaymentID        string      `gorm:"column:payment_id;size:100" json:"payment_id"`
	DeliveryCharge   float64     `gorm:"column:delivery_charge;type:decimal(10,2);not null;default:0" json:"delivery_charge"`
	TotalAmount      float64     `gorm:"column:total_amount;type:decimal(10,2);not null" json:"total_amount"`
	Items            []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
	CreatedAt        time.Time   `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
	UpdatedAt        time.Time   `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

// IsResolved 宿舍是否已规范化
func (o *Order) IsResolved() bool {
	return o.HostelID != nil
}

// OrderItem 订单里的购物车条目 冗余商品名便于派单按名称分组
type OrderItem struct {
	ID             int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OrderID        int64      `gorm:"column:order_id;not null;index" json:"order_id"`
	ProductID      int64      `gorm:"column:product_id;not null;index" json:"product_id"`
	Product        *Product   `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	ProductName    string     `gorm:"column:product_name;size:100;not null" json:"product_name"`
	Quantity       int32      `gorm:"column:quantity;not null" json:"quantity"`
	Price          float64    `gorm:"column:price;type:decimal(10,2);not null" json:"price"`
	VariantIndex   int32      `gorm:"column:variant_index;default:0" json:"variant_index"`
	DispatchStatus string     `gorm:"column:dispatch_status;size:20;not null;default:pending" json:"dispatch_status"`
	DispatchedAt   *time.Time `gorm:"column:dispatched_at" json:"dispatched_at"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

// Notification 派送通知落库记录
type Notification struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   int64     `gorm:"not null;index" json:"order_id"`
	UserID    int64     `gorm:"not null;index" json:"user_id"`
	Type      string    `gorm:"size:30;not null" json:"type"`
	Title     string    `gorm:"size:150;not null" json:"title"`
	Body      string    `gorm:"size:500" json:"body"`
	IsRead    bool      `gorm:"default:false;not null" json:"is_read"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
