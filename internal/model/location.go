package model

import (
	"time"
)

// Location 配送区域 支持按半径的地理围栏配送
type Location struct {
	ID               int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	City             string     `gorm:"size:100;not null" json:"city"`
	Area             string     `gorm:"size:100;not null" json:"area"`
	Pincode          string     `gorm:"size:10;not null;index" json:"pincode"`
	DeliveryCharge   float64    `gorm:"type:decimal(10,2);not null;default:0" json:"delivery_charge"`
	Latitude         *float64   `json:"latitude"`
	Longitude        *float64   `json:"longitude"`
	DeliveryRadiusKm float64    `gorm:"default:0" json:"delivery_radius_km"`
	UseGeoDelivery   bool       `gorm:"default:false;not null" json:"use_geo_delivery"`
	IsActive         bool       `gorm:"default:true;not null" json:"is_active"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (*Location) TableName() string {
	return "locations"
}

// HasCoords 是否配置了经纬度
func (l *Location) HasCoords() bool {
	return l.Latitude != nil && l.Longitude != nil
}

// Hostel 宿舍/配送点 归属某个配送区域
// 被订单引用后只做软禁用 不物理删除
type Hostel struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name       string    `gorm:"size:150;not null;index" json:"name"`
	LocationID int64     `gorm:"not null;index" json:"location_id"`
	Location   *Location `gorm:"foreignKey:LocationID" json:"location,omitempty"`
	Address    string    `gorm:"size:255" json:"address"`
	IsActive   bool      `gorm:"default:true;not null" json:"is_active"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (*Hostel) TableName() string {
	return "hostels"
}

// 映射类型
const (
	MappingTypeExact   = "exact"
	MappingTypePartial = "partial"
	MappingTypeManual  = "manual"
)

// DeliveryLocationMapping 用户结账时输入的自由文本 -> 规范宿舍 的映射表
// delivery_location 唯一 一条原始字符串最多对应一个宿舍
type DeliveryLocationMapping struct {
	ID               int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	DeliveryLocation string    `gorm:"size:255;not null;uniqueIndex" json:"delivery_location"`
	HostelID         int64     `gorm:"not null;index" json:"hostel_id"`
	HostelName       string    `gorm:"size:150;not null" json:"hostel_name"`
	MappingType      string    `gorm:"size:20;not null;default:manual" json:"mapping_type"`
	IsActive         bool      `gorm:"default:true;not null" json:"is_active"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (*DeliveryLocationMapping) TableName() string {
	return "delivery_location_mappings"
}
