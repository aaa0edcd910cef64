package service

import (
	"context"
	"errors"
	"strings"

	"github.com/lapatisseriex/La-Patisserie-sub001/internal/dao"
	"github.com/lapatisseriex/La-Patisserie-sub001/internal/model"
	"github.com/lapatisseriex/La-Patisserie-sub001/pkg/utils"

	"gorm.io/gorm"
)

var (
	ErrInvalidCoords    = errors.New("经纬度不合法")
	ErrNegativeCharge   = errors.New("配送费不能为负")
	ErrHostelNameTaken  = errors.New("该区域下宿舍名已存在")
	ErrMappingTaken     = errors.New("该配送地址已有映射")
	ErrOutOfDelivery    = errors.New("超出配送范围")
	ErrLocationNotFound = errors.New("配送区域不存在")
)

// RegistryService 配送区域/宿舍/地址映射的管理与配送范围判断
type RegistryService struct {
	hostelDao *dao.HostelDao
}

func NewRegistryService(hostelDao *dao.HostelDao) *RegistryService {
	return &RegistryService{hostelDao: hostelDao}
}

// ========== Location ==========

func validateLocation(loc *model.Location) error {
	if loc.DeliveryCharge < 0 {
		return ErrNegativeCharge
	}
	if loc.Latitude != nil || loc.Longitude != nil {
		if loc.Latitude == nil || loc.Longitude == nil {
			return ErrInvalidCoords
		}
		if !utils.ValidCoords(*loc.Latitude, *loc.Longitude) {
			return ErrInvalidCoords
		}
	}
	return nil
}

// CreateLocation 新建配送区域（校验配送费和坐标）
func (s *RegistryService) CreateLocation(ctx context.Context, loc *model.Location) error {
	if err := validateLocation(loc); err != nil {
		return err
	}
	return s.hostelDao.CreateLocation(ctx, loc)
}

// UpdateLocation 更新配送区域
func (s *RegistryService) UpdateLocation(ctx context.Context, loc *model.Location) error {
	if err := validateLocation(loc); err != nil {
		return err
	}
	return s.hostelDao.UpdateLocation(ctx, loc)
}

// ListLocations 配送区域列表
func (s *RegistryService) ListLocations(ctx context.Context, onlyActive bool) ([]*model.Location, error) {
	return s.hostelDao.ListLocations(ctx, onlyActive)
}

// CheckDelivery 配送范围判断
// 有坐标时优先地理围栏（haversine半径） 否则退回pincode精确匹配
func (s *RegistryService) CheckDelivery(ctx context.Context, lat, lng *float64, pincode string) (*model.Location, error) {
	if lat != nil && lng != nil {
		if !utils.ValidCoords(*lat, *lng) {
			return nil, ErrInvalidCoords
		}
		locs, err := s.hostelDao.ListGeoLocations(ctx)
		if err != nil {
			return nil, err
		}
		var best *model.Location
		bestDist := 0.0
		for _, loc := range locs {
			dist := utils.HaversineKm(*lat, *lng, *loc.Latitude, *loc.Longitude)
			if dist <= loc.DeliveryRadiusKm && (best == nil || dist < bestDist) {
				best = loc
				bestDist = dist
			}
		}
		if best != nil {
			return best, nil
		}
	}

	if pincode != "" {
		loc, err := s.hostelDao.FindLocationByPincode(ctx, pincode)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrOutOfDelivery
			}
			return nil, err
		}
		return loc, nil
	}

	return nil, ErrOutOfDelivery
}

// ========== Hostel ==========

// CreateHostel 新建宿舍（同区域名称大小写不敏感唯一）
func (s *RegistryService) CreateHostel(ctx context.Context, h *model.Hostel) error {
	if _, err := s.hostelDao.GetLocationByID(ctx, h.LocationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLocationNotFound
		}
		return err
	}
	taken, err := s.hostelDao.HostelNameExists(ctx, h.LocationID, h.Name, 0)
	if err != nil {
		return err
	}
	if taken {
		return ErrHostelNameTaken
	}
	h.Name = strings.TrimSpace(h.Name)
	return s.hostelDao.CreateHostel(ctx, h)
}

// UpdateHostel 更新宿舍
func (s *RegistryService) UpdateHostel(ctx context.Context, h *model.Hostel) error {
	taken, err := s.hostelDao.HostelNameExists(ctx, h.LocationID, h.Name, h.ID)
	if err != nil {
		return err
	}
	if taken {
		return ErrHostelNameTaken
	}
	h.Name = strings.TrimSpace(h.Name)
	return s.hostelDao.UpdateHostel(ctx, h)
}

// DisableHostel 软禁用宿舍
func (s *RegistryService) DisableHostel(ctx context.Context, id int64) error {
	return s.hostelDao.DisableHostel(ctx, id)
}

// ListHostels 宿舍列表
func (s *RegistryService) ListHostels(ctx context.Context, onlyActive bool) ([]*model.Hostel, error) {
	return s.hostelDao.ListHostels(ctx, onlyActive)
}

// ========== DeliveryLocationMapping ==========

// CreateMapping 新建地址映射（原始串唯一 冗余宿舍名）
func (s *RegistryService) CreateMapping(ctx context.Context, m *model.DeliveryLocationMapping) error {
	exists, err := s.hostelDao.MappingExists(ctx, m.DeliveryLocation)
	if err != nil {
		return err
	}
	if exists {
		return ErrMappingTaken
	}
	h, err := s.hostelDao.GetHostelByID(ctx, m.HostelID)
	if err != nil {
		return err
	}
	m.HostelName = h.Name
	if m.MappingType == "" {
		m.MappingType = model.MappingTypeManual
	}
	return s.hostelDao.CreateMapping(ctx, m)
}

// UpdateMapping 更新地址映射
func (s *RegistryService) UpdateMapping(ctx context.Context, m *model.DeliveryLocationMapping) error {
	h, err := s.hostelDao.GetHostelByID(ctx, m.HostelID)
	if err != nil {
		return err
	}
	m.HostelName = h.Name
	return s.hostelDao.UpdateMapping(ctx, m)
}

// DeleteMapping 删除地址映射
func (s *RegistryService) DeleteMapping(ctx context.Context, id int64) error {
	return s.hostelDao.DeleteMapping(ctx, id)
}

// ListMappings 地址映射列表
func (s *RegistryService) ListMappings(ctx context.Context) ([]*model.DeliveryLocationMapping, error) {
	return s.hostelDao.ListMappings(ctx)
}
