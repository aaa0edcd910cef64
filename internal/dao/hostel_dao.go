package dao

import (
	"context"
	"strings"

	"github.com/lapatisseriex/La-Patisserie-sub001/internal/model"

	"gorm.io/gorm"
)

// HostelDao 配送区域/宿舍/地址映射的存取
type HostelDao struct {
	db *gorm.DB
}

func NewHostelDao(db *gorm.DB) *HostelDao {
	return &HostelDao{db: db}
}

// ========== Location ==========

// CreateLocation 新建配送区域
func (d *HostelDao) CreateLocation(ctx context.Context, loc *model.Location) error {
	return d.db.WithContext(ctx).Create(loc).Error
}

// UpdateLocation 更新配送区域
func (d *HostelDao) UpdateLocation(ctx context.Context, loc *model.Location) error {
	return d.db.WithContext(ctx).Save(loc).Error
}

// GetLocationByID 根据ID查配送区域
func (d *HostelDao) GetLocationByID(ctx context.Context, id int64) (*model.Location, error) {
	var loc model.Location
	if err := d.db.WithContext(ctx).Where("id = ?", id).First(&loc).Error; err != nil {
		return nil, err
	}
	return &loc, nil
}

// ListLocations 配送区域列表
func (d *HostelDao) ListLocations(ctx context.Context, onlyActive bool) ([]*model.Location, error) {
	var locs []*model.Location
	q := d.db.WithContext(ctx)
	if onlyActive {
		q = q.Where("is_active = ?", true)
	}
	err := q.Order("city ASC, area ASC").Find(&locs).Error
	return locs, err
}

// FindLocationByPincode 按pincode查启用的配送区域
func (d *HostelDao) FindLocationByPincode(ctx context.Context, pincode string) (*model.Location, error) {
	var loc model.Location
	err := d.db.WithContext(ctx).
		Where("pincode = ? AND is_active = ?", pincode, true).
		First(&loc).Error
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

// ListGeoLocations 取出开启地理围栏配送的区域
func (d *HostelDao) ListGeoLocations(ctx context.Context) ([]*model.Location, error) {
	var locs []*model.Location
	err := d.db.WithContext(ctx).
		Where("is_active = ? AND use_geo_delivery = ? AND latitude IS NOT NULL AND longitude IS NOT NULL", true, true).
		Find(&locs).Error
	return locs, err
}

// ========== Hostel ==========

// HostelNameExists 同一区域内宿舍名是否已存在（大小写不敏感）
func (d *HostelDao) HostelNameExists(ctx context.Context, locationID int64, name string, excludeID int64) (bool, error) {
	var count int64
	q := d.db.WithContext(ctx).Model(&model.Hostel{}).
		Where("location_id = ? AND LOWER(name) = ?", locationID, strings.ToLower(strings.TrimSpace(name)))
	if excludeID > 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateHostel 新建宿舍
func (d *HostelDao) CreateHostel(ctx context.Context, h *model.Hostel) error {
	return d.db.WithContext(ctx).Create(h).Error
}

// UpdateHostel 更新宿舍
func (d *HostelDao) UpdateHostel(ctx context.Context, h *model.Hostel) error {
	return d.db.WithContext(ctx).Save(h).Error
}

// DisableHostel 软禁用 被订单引用的宿舍不物理删除
func (d *HostelDao) DisableHostel(ctx context.Context, id int64) error {
	return d.db.WithContext(ctx).Model(&model.Hostel{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}

// GetHostelByID 根据ID查宿舍
func (d *HostelDao) GetHostelByID(ctx context.Context, id int64) (*model.Hostel, error) {
	var h model.Hostel
	if err := d.db.WithContext(ctx).Preload("Location").Where("id = ?", id).First(&h).Error; err != nil {
		return nil, err
	}
	return &h, nil
}

// ListHostels 宿舍列表
func (d *HostelDao) ListHostels(ctx context.Context, onlyActive bool) ([]*model.Hostel, error) {
	var hostels []*model.Hostel
	q := d.db.WithContext(ctx).Preload("Location")
	if onlyActive {
		q = q.Where("is_active = ?", true)
	}
	err := q.Order("name ASC").Find(&hostels).Error
	return hostels, err
}

// ListActiveHostels 启用的宿舍 对账匹配用
func (d *HostelDao) ListActiveHostels(ctx context.Context) ([]*model.Hostel, error) {
	return d.ListHostels(ctx, true)
}

// ========== DeliveryLocationMapping ==========

// MappingExists 原始配送地址字符串是否已有映射
func (d *HostelDao) MappingExists(ctx context.Context, deliveryLocation string) (bool, error) {
	var count int64
	err := d.db.WithContext(ctx).Model(&model.DeliveryLocationMapping{}).
		Where("delivery_location = ?", strings.TrimSpace(deliveryLocation)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateMapping 新建地址映射
func (d *HostelDao) CreateMapping(ctx context.Context, m *model.DeliveryLocationMapping) error {
	m.DeliveryLocation = strings.TrimSpace(m.DeliveryLocation)
	return d.db.WithContext(ctx).Create(m).Error
}

// UpdateMapping 更新地址映射
func (d *HostelDao) UpdateMapping(ctx context.Context, m *model.DeliveryLocationMapping) error {
	return d.db.WithContext(ctx).Save(m).Error
}

// DeleteMapping 删除地址映射
func (d *HostelDao) DeleteMapping(ctx context.Context, id int64) error {
	return d.db.WithContext(ctx).Delete(&model.DeliveryLocationMapping{}, id).Error
}

// ListActiveMappings 启用的地址映射 对账和分组展示用
func (d *HostelDao) ListActiveMappings(ctx context.Context) ([]*model.DeliveryLocationMapping, error) {
	var mappings []*model.DeliveryLocationMapping
	err := d.db.WithContext(ctx).
		Where("is_active = ?", true).
		Find(&mappings).Error
	return mappings, err
}

// ListMappings 地址映射列表
func (d *HostelDao) ListMappings(ctx context.Context) ([]*model.DeliveryLocationMapping, error) {
	var mappings []*model.DeliveryLocationMapping
	err := d.db.WithContext(ctx).Order("created_at DESC").Find(&mappings).Error
	return mappings, err
}
