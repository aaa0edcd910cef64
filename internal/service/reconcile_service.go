// Package service 派单/对账/分析业务逻辑
package service

import (
	"context"
	"strings"

	"github.com/lapatisseriex/La-Patisserie-sub001/internal/dao"
	"github.com/lapatisseriex/La-Patisserie-sub001/internal/model"
	"github.com/lapatisseriex/La-Patisserie-sub001/pkg/logger"
)

// ReconcileService 宿舍ID回填
// 结账只写自由文本 这里把历史订单和规范宿舍记录对上
type ReconcileService struct {
	orderDao  *dao.OrderDao
	hostelDao *dao.HostelDao
}

func NewReconcileService(orderDao *dao.OrderDao, hostelDao *dao.HostelDao) *ReconcileService {
	return &ReconcileService{
		orderDao:  orderDao,
		hostelDao: hostelDao,
	}
}

// ReconcileResult 一轮回填的统计
type ReconcileResult struct {
	Processed  int `json:"processed"`
	Matched    int `json:"matched"`
	Unresolved int `json:"unresolved"`
	Failed     int `json:"failed"`
}

// norm 匹配前统一做小写+去空白
func norm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// MatchHostel 自由文本 -> 规范宿舍 的匹配
// 严格按优先级 命中即返回 全部大小写不敏感、两端去空白：
//  1. 宿舍名 == 订单宿舍名
//  2. 宿舍地址 == 订单配送地址
//  3. 宿舍名 是 订单配送地址 的子串
//  4. 宿舍地址 是 订单配送地址 的子串
//  5. 订单宿舍名 是 宿舍名 的子串
//  6. 订单配送地址 是 宿舍地址 的子串
//  7. 兜底查映射表（按宿舍名或配送地址等值）
//  8. 都没有 -> nil 调用方记为未解析
func MatchHostel(rawName, rawAddress string, hostels []*model.Hostel, mappings []*model.DeliveryLocationMapping) *model.Hostel {
	name := norm(rawName)
	address := norm(rawAddress)

	// 1. 宿舍名精确匹配
	if name != "" {
		for _, h := range hostels {
			if norm(h.Name) == name {
				return h
			}
		}
	}

	// 2. 宿舍地址精确匹配
	if address != "" {
		for _, h := range hostels {
			if norm(h.Address) == address {
				return h
			}
		}
	}

	// 3. 宿舍名出现在配送地址里
	if address != "" {
		for _, h := range hostels {
			if hn := norm(h.Name); hn != "" && strings.Contains(address, hn) {
				return h
			}
		}
	}

	// 4. 宿舍地址出现在配送地址里
	if address != "" {
		for _, h := range hostels {
			if ha := norm(h.Address); ha != "" && strings.Contains(address, ha) {
				return h
			}
		}
	}

	// 5. 订单宿舍名出现在宿舍名里
	if name != "" {
		for _, h := range hostels {
			if strings.Contains(norm(h.Name), name) {
				return h
			}
		}
	}

	// 6. 配送地址出现在宿舍地址里
	if address != "" {
		for _, h := range hostels {
			if ha := norm(h.Address); ha != "" && strings.Contains(ha, address) {
				return h
			}
		}
	}

	// 7. 映射表兜底
	for _, m := range mappings {
		ml := norm(m.DeliveryLocation)
		if ml == "" {
			continue
		}
		if ml == name || ml == address {
			for _, h := range hostels {
				if h.ID == m.HostelID {
					return h
				}
			}
		}
	}

	// 8. 未解析
	return nil
}

// ReconcileAll 对所有未解析订单做一轮回填
// 尽力而为：单个订单失败只记日志继续 不回滚已完成的更新
func (s *ReconcileService) ReconcileAll(ctx context.Context, batchSize int) (*ReconcileResult, error) {
	hostels, err := s.hostelDao.ListActiveHostels(ctx)
	if err != nil {
		return nil, err
	}
	mappings, err := s.hostelDao.ListActiveMappings(ctx)
	if err != nil {
		return nil, err
	}

	orders, err := s.orderDao.ListUnresolved(ctx, batchSize)
	if err != nil {
		return nil, err
	}

	result := &ReconcileResult{Processed: len(orders)}
	for _, o := range orders {
		h := MatchHostel(o.HostelName, o.DeliveryLocation, hostels, mappings)
		if h == nil {
			result.Unresolved++
			continue
		}
		// 只更新仍为NULL的行 重复执行是no-op
		updated, err := s.orderDao.SetHostelID(ctx, o.ID, h.ID)
		if err != nil {
			logger.Error("回填宿舍ID失败", "order_id", o.ID, "hostel_id", h.ID, "err", err)
			result.Failed++
			continue
		}
		if updated {
			result.Matched++
		}
	}

	logger.Info("hostel reconcile round finished",
		"processed", result.Processed,
		"matched", result.Matched,
		"unresolved", result.Unresolved,
		"failed", result.Failed,
	)
	return result, nil
}
