package v1

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/lapatisseriex/La-Patisserie-sub001/internal/model"
	"github.com/lapatisseriex/La-Patisserie-sub001/internal/service"
	"github.com/lapatisseriex/La-Patisserie-sub001/pkg/e"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RegistryHandler 配送区域/宿舍/地址映射管理 + 配送范围查询
type RegistryHandler struct {
	registryService *service.RegistryService
}

func NewRegistryHandler(registryService *service.RegistryService) *RegistryHandler {
	return &RegistryHandler{registryService: registryService}
}

// RegisterPublicRoutes 配送范围查询（无需token）
func (h *RegistryHandler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/locations/check", h.CheckDelivery)
}

// RegisterAdminRoutes 注册管理端路由（需 JWT + admin角色）
func (h *RegistryHandler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/admin/locations", h.ListLocations)
	rg.POST("/admin/locations", h.CreateLocation)
	rg.PUT("/admin/locations/:id", h.UpdateLocation)

	rg.GET("/admin/hostels", h.ListHostels)
	rg.POST("/admin/hostels", h.CreateHostel)
	rg.PUT("/admin/hostels/:id", h.UpdateHostel)
	rg.DELETE("/admin/hostels/:id", h.DisableHostel)

	rg.GET("/admin/mappings", h.ListMappings)
	rg.POST("/admin/mappings", h.CreateMapping)
	rg.PUT("/admin/mappings/:id", h.UpdateMapping)
	rg.DELETE("/admin/mappings/:id", h.DeleteMapping)
}

// CheckDelivery 配送范围判断 坐标优先 pincode兜底
func (h *RegistryHandler) CheckDelivery(c *gin.Context) {
	var lat, lng *float64
	if latStr := c.Query("lat"); latStr != "" {
		v, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			Fail(c, http.StatusBadRequest, e.INVALID_PARAMS, "")
			return
		}
		lat = &v
	}
	if lngStr := c.Query("lng"); lngStr != "" {
		v, err := strconv.ParseFloat(lngStr, 64)
		if err != nil {
			Fail(c, http.StatusBadRequest, e.INVALID_PARAMS, "")
			return
		}
		lng = &v
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	loc, err := h.registryService.CheckDelivery(ctx, lat, lng, c.Query("pincode"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCoords):
			Fail(c, http.StatusBadRequest, e.ERROR_INVALID_COORDS, "")
		case errors.Is(err, service.ErrOutOfDelivery):
			Fail(c, http.StatusNotFound, e.ERROR_OUT_OF_DELIVERY, "")
		default:
			Fail(c, http.StatusInternalServerError, e.ERROR, err.Error())
		}
		return
	}
	OK(c, gin.H{"location": loc})
}

// ========== Location ==========

func (h *RegistryHandler) ListLocations(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	locs, err := h.registryService.ListLocations(ctx, c.Query("active") == "true")
	if err != nil {
		Fail(c, http.StatusInternalServerError, e.ERROR, err.Error())
		return
	}
	OK(c, gin.H{"locations": locs})
}

func (h *RegistryHandler) CreateLocation(c *gin.Context) {
	var loc model.Location
	if err := c.ShouldBindJSON(&loc); err != nil {
		Fail(c, http.StatusBadRequest, e.INVALID_PARAMS, "")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.registryService.CreateLocation(ctx, &loc); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCoords):
			Fail(c, http.StatusBadRequest, e.ERROR_INVALID_COORDS, "")
		case errors.Is(err, service.ErrNegativeCharge):
			Fail(c, http.StatusBadRequest, e.INVALID_PARAMS, err.Error())
		default:
			Fail(c, http.StatusInternalServerError, e.ERROR, err.Error())
		}
		return
	}
	OK(c, gin.H{"location": loc})
}

func (h *RegistryHandler) UpdateLocation(c *gin.Context) {
	var loc model.Location
	if err := c.ShouldBindJSON(&loc); err != nil {
		Fail(c, http.StatusBadRequest, e.INVALID_PARAMS, "")
		return
	}
	loc.ID = toInt64(c.Param("id"))

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.registryService.UpdateLocation(ctx, &loc); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCoords):
			Fail(c, http.StatusBadRequest, e.ERROR_INVALID_COORDS, "")
		case errors.Is(err, service.ErrNegativeCharge):
			Fail(c, http.StatusBadRequest, e.INVALID_PARAMS, err.Error())
		default:
			Fail(c, http.StatusInternalServerError, e.ERROR, err.Error())
		}
		return
	}
	OK(c, gin.H{"location": loc})
}

// ========== Hostel ==========

func (h *RegistryHandler) ListHostels(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	hostels, err := h.registryService.ListHostels(ctx, c.Query("active") == "true")
	if err != nil {
		Fail(c, http.StatusInternalServerError, e.ERROR, err.Error())
		return
	}
	OK(c, gin.H{"hostels": hostels})
}

func (h *RegistryHandler) CreateHostel(c *gin.Context) {
	var hostel model.Hostel
	if err := c.ShouldBindJSON(&hostel); err != nil {
		Fail(c, http.StatusBadRequest, e.INVALID_PARAMS, "")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.registryService.CreateHostel(ctx, &hostel); err != nil {
		switch {
		case errors.Is(err, service.ErrLocationNotFound):
			Fail(c, http.StatusNotFound, e.ERROR_LOCATION_NOT_EXISTS, "")
		case errors.Is(err, service.ErrHostelNameTaken):
			Fail(c, http.StatusConflict, e.ERROR_HOSTEL_EXISTS, "")
		default:
			Fail(c, http.StatusInternalServerError, e.ERROR, err.Error())
		}
		return
	}
	OK(c, gin.H{"hostel": hostel})
}

func (h *RegistryHandler) UpdateHostel(c *gin.Context) {
	var hostel model.Hostel
	if err := c.ShouldBindJSON(&hostel); err != nil {
		Fail(c, http.StatusBadRequest, e.INVALID_PARAMS, "")
		return
	}
	hostel.ID = toInt64(c.Param("id"))

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.registryService.UpdateHostel(ctx, &hostel); err != nil {
		if errors.Is(err, service.ErrHostelNameTaken) {
			Fail(c, http.StatusConflict, e.ERROR_HOSTEL_EXISTS, "")
			return
		}
		Fail(c, http.StatusInternalServerError, e.ERROR, err.Error())
		return
	}
	OK(c, gin.H{"hostel": hostel})
}

// DisableHostel 软禁用 订单还引用着的宿舍不能物理删除
func (h *RegistryHandler) DisableHostel(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.registryService.DisableHostel(ctx, toInt64(c.Param("id"))); err != nil {
		Fail(c, http.StatusInternalServerError, e.ERROR, err.Error())
		return
	}
	OK(c, nil)
}

// ========== DeliveryLocationMapping ==========

func (h *RegistryHandler) ListMappings(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	mappings, err := h.registryService.ListMappings(ctx)
	if err != nil {
		Fail(c, http.StatusInternalServerError, e.ERROR, err.Error())
		return
	}
	OK(c, gin.H{"mappings": mappings})
}

func (h *RegistryHandler) CreateMapping(c *gin.Context) {
	var m model.DeliveryLocationMapping
	if err := c.ShouldBindJSON(&m); err != nil || m.DeliveryLocation == "" || m.HostelID == 0 {
		Fail(c, http.StatusBadRequest, e.INVALID_PARAMS, "")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.registryService.CreateMapping(ctx, &m); err != nil {
		switch {
		case errors.Is(err, service.ErrMappingTaken):
			Fail(c, http.StatusConflict, e.ERROR_MAPPING_EXISTS, "")
		case errors.Is(err, gorm.ErrRecordNotFound):
			Fail(c, http.StatusNotFound, e.ERROR_HOSTEL_NOT_EXISTS, "")
		default:
			Fail(c, http.StatusInternalServerError, e.ERROR, err.Error())
		}
		return
	}
	OK(c, gin.H{"mapping": m})
}

func (h *RegistryHandler) UpdateMapping(c *gin.Context) {
	var m model.DeliveryLocationMapping
	if err := c.ShouldBindJSON(&m); err != nil {
		Fail(c, http.StatusBadRequest, e.INVALID_PARAMS, "")
		return
	}
	m.ID = toInt64(c.Param("id"))

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.registryService.UpdateMapping(ctx, &m); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			Fail(c, http.StatusNotFound, e.ERROR_HOSTEL_NOT_EXISTS, "")
			return
		}
		Fail(c, http.StatusInternalServerError, e.ERROR, err.Error())
		return
	}
	OK(c, gin.H{"mapping": m})
}

func (h *RegistryHandler) DeleteMapping(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.registryService.DeleteMapping(ctx, toInt64(c.Param("id"))); err != nil {
		Fail(c, http.StatusInternalServerError, e.ERROR, err.Error())
		return
	}
	OK(c, nil)
}
