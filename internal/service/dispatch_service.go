package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/lapatisseriex/La-Patisserie-sub001/internal/dao"
	"github.com/lapatisseriex/La-Patisserie-sub001/internal/model"
	"github.com/lapatisseriex/La-Patisserie-sub001/internal/mq"
	"github.com/lapatisseriex/La-Patisserie-sub001/pkg/logger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// 可复用的错误定义 handler按此映射HTTP状态码
var (
	ErrNoPlacedOrders = errors.New("没有待派送的订单")
	ErrNoExactMatch   = errors.New("没有完全匹配的订单")
	ErrDispatchLocked = errors.New("该宿舍商品正在派单中")
)

// groupCacheKey 分组视图的Redis缓存键
const groupCacheKey = "dispatch:groups:cache"

// DispatchService 订单分组与批量派送
type DispatchService struct {
	orderDao        *dao.OrderDao
	hostelDao       *dao.HostelDao
	notificationDao *dao.NotificationDao
	redisDB         redis.UniversalClient
	mqPool          *mq.Pool
	lockTTL         time.Duration
	groupCacheTTL   time.Duration
	overfetchFactor int
}

func NewDispatchService(orderDao *dao.OrderDao, hostelDao *dao.HostelDao, notificationDao *dao.NotificationDao,
	redisDB redis.UniversalClient, mqPool *mq.Pool, lockTTLSeconds, groupCacheTTLSeconds, overfetchFactor int) *DispatchService {
	if lockTTLSeconds <= 0 {
		lockTTLSeconds = 10
	}
	if overfetchFactor <= 0 {
		overfetchFactor = 2
	}
	return &DispatchService{
		orderDao:        orderDao,
		hostelDao:       hostelDao,
		notificationDao: notificationDao,
		redisDB:         redisDB,
		mqPool:          mqPool,
		lockTTL:         time.Duration(lockTTLSeconds) * time.Second,
		groupCacheTTL:   time.Duration(groupCacheTTLSeconds) * time.Second,
		overfetchFactor: overfetchFactor,
	}
}

// ProductGroup 分组视图叶子：同一宿舍同一类目下的一种商品
type ProductGroup struct {
	ProductName   string  `json:"product_name"`
	ProductID     int64   `json:"product_id"`
	ProductImage  string  `json:"product_image"`
	OrderCount    int     `json:"order_count"`
	TotalQuantity int64   `json:"total_quantity"`
	OrderIDs      []int64 `json:"order_ids"`
}

// CategoryGroup 同一宿舍下按类目的分组
type CategoryGroup struct {
	Category    string         `json:"category"`
	TotalOrders int            `json:"total_orders"`
	Products    []ProductGroup `json:"products"`
}

// HostelGroup 派单视图顶层：一个宿舍桶
// DeliveryLocation 是展示用的代表字符串（映射表优先 否则首个出现的原始串）
// DeliveryLocations 保留该桶下出现过的全部原始串 不丢信息
type HostelGroup struct {
	Hostel            string          `json:"hostel"`
	DeliveryLocation  string          `json:"delivery_location"`
	DeliveryLocations []string        `json:"delivery_locations"`
	TotalOrders       int             `json:"total_orders"`
	Categories        []CategoryGroup `json:"categories"`
}

// DispatchRequest 批量派送请求
type DispatchRequest struct {
	Hostel      string `json:"hostel" binding:"required"`
	Category    string `json:"category" binding:"required"`
	ProductName string `json:"product_name" binding:"required"`
	Count       int    `json:"count" binding:"required,gt=0"`
}

// DispatchResult 批量派送结果
type DispatchResult struct {
	DispatchedCount int     `json:"dispatched_count"`
	OrderIDs        []int64 `json:"order_ids"`
}

// bucketName 订单归入哪个宿舍桶
// 已解析的订单用规范宿舍名 未解析的用原始字符串 两种状态不混淆
func bucketName(o *model.Order, hostelNames map[int64]string) string {
	if o.HostelID != nil {
		if name, ok := hostelNames[*o.HostelID]; ok && name != "" {
			return name
		}
	}
	if o.HostelName != "" {
		return o.HostelName
	}
	return model.UnknownHostel
}

// BuildDispatchGroups 把待派送订单聚合成 宿舍 -> 类目 -> 商品 三层结构
// 纯内存计算 方便单测
func BuildDispatchGroups(orders []*model.Order, hostelNames map[int64]string, mappings []*model.DeliveryLocationMapping) []HostelGroup {
	type productAgg struct {
		group    *ProductGroup
		orderSet map[int64]struct{}
	}
	type categoryAgg struct {
		products map[string]*productAgg
		orderSet map[int64]struct{}
	}
	type hostelAgg struct {
		categories   map[string]*categoryAgg
		rawLocations []string
		seenLocation map[string]struct{}
	}

	hostels := make(map[string]*hostelAgg)
	var hostelOrder []string

	for _, o := range orders {
		bucket := bucketName(o, hostelNames)
		ha, ok := hostels[bucket]
		if !ok {
			ha = &hostelAgg{
				categories:   make(map[string]*categoryAgg),
				seenLocation: make(map[string]struct{}),
			}
			hostels[bucket] = ha
			hostelOrder = append(hostelOrder, bucket)
		}
		if o.DeliveryLocation != "" {
			if _, seen := ha.seenLocation[o.DeliveryLocation]; !seen {
				ha.seenLocation[o.DeliveryLocation] = struct{}{}
				ha.rawLocations = append(ha.rawLocations, o.DeliveryLocation)
			}
		}

		for i := range o.Items {
			item := &o.Items[i]
			category := model.UnknownCategory
			if item.Product != nil {
				category = item.Product.CategoryName()
			}

			ca, ok := ha.categories[category]
			if !ok {
				ca = &categoryAgg{
					products: make(map[string]*productAgg),
					orderSet: make(map[int64]struct{}),
				}
				ha.categories[category] = ca
			}
			ca.orderSet[o.ID] = struct{}{}

			pa, ok := ca.products[item.ProductName]
			if !ok {
				image := ""
				if item.Product != nil {
					image = item.Product.ImageURL
				}
				pa = &productAgg{
					group: &ProductGroup{
						ProductName:  item.ProductName,
						ProductID:    item.ProductID,
						ProductImage: image,
					},
					orderSet: make(map[int64]struct{}),
				}
				ca.products[item.ProductName] = pa
			}
			pa.group.TotalQuantity += int64(item.Quantity)
			if _, seen := pa.orderSet[o.ID]; !seen {
				pa.orderSet[o.ID] = struct{}{}
				pa.group.OrderCount++
				pa.group.OrderIDs = append(pa.group.OrderIDs, o.ID)
			}
		}
	}

	// 映射表按宿舍名提供规范的展示地址
	mappedLocation := make(map[string]string, len(mappings))
	for _, m := range mappings {
		if m.HostelName != "" {
			mappedLocation[norm(m.HostelName)] = m.DeliveryLocation
		}
	}

	result := make([]HostelGroup, 0, len(hostels))
	for _, bucket := range hostelOrder {
		ha := hostels[bucket]

		hg := HostelGroup{
			Hostel:            bucket,
			DeliveryLocations: ha.rawLocations,
		}
		// 代表地址：映射优先 否则首个出现的原始串
		if mapped, ok := mappedLocation[norm(bucket)]; ok {
			hg.DeliveryLocation = mapped
		} else if len(ha.rawLocations) > 0 {
			hg.DeliveryLocation = ha.rawLocations[0]
		}

		catNames := make([]string, 0, len(ha.categories))
		for name := range ha.categories {
			catNames = append(catNames, name)
		}
		sort.Strings(catNames)

		for _, catName := range catNames {
			ca := ha.categories[catName]
			cg := CategoryGroup{
				Category:    catName,
				TotalOrders: len(ca.orderSet),
			}

			prodNames := make([]string, 0, len(ca.products))
			for name := range ca.products {
				prodNames = append(prodNames, name)
			}
			sort.Strings(prodNames)
			for _, pn := range prodNames {
				cg.Products = append(cg.Products, *ca.products[pn].group)
			}

			hg.Categories = append(hg.Categories, cg)
			// 宿舍级 total = 各类目 total 之和
			hg.TotalOrders += cg.TotalOrders
		}

		result = append(result, hg)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Hostel < result[j].Hostel
	})
	return result
}

// GroupPendingOrders 派单视图读路径
// 配置了缓存TTL时先查Redis 派单成功后缓存会被主动失效
func (s *DispatchService) GroupPendingOrders(ctx context.Context) ([]HostelGroup, error) {
	if s.cacheEnabled() {
		if raw, err := s.redisDB.Get(ctx, groupCacheKey).Result(); err == nil {
			var cached []HostelGroup
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return cached, nil
			}
		}
	}

	orders, err := s.orderDao.ListPlacedWithItems(ctx)
	if err != nil {
		return nil, err
	}

	hostels, err := s.hostelDao.ListActiveHostels(ctx)
	if err != nil {
		return nil, err
	}
	hostelNames := make(map[int64]string, len(hostels))
	for _, h := range hostels {
		hostelNames[h.ID] = h.Name
	}

	mappings, err := s.hostelDao.ListActiveMappings(ctx)
	if err != nil {
		// 映射只影响展示地址 查不到就降级
		logger.Warn("load mappings failed, fall back to raw locations", "err", err)
		mappings = nil
	}

	groups := BuildDispatchGroups(orders, hostelNames, mappings)

	if s.cacheEnabled() {
		if body, err := json.Marshal(groups); err == nil {
			if err := s.redisDB.Set(ctx, groupCacheKey, body, s.groupCacheTTL).Err(); err != nil {
				logger.Warn("cache dispatch groups failed", "err", err)
			}
		}
	}
	return groups, nil
}

func (s *DispatchService) cacheEnabled() bool {
	return s.redisDB != nil && s.groupCacheTTL > 0
}

// resolveBucket 把管理端看到的宿舍桶名还原成取单条件
// 分组视图里已解析订单挂在规范名下 取单时必须能按 hostel_id 找回它们
// 否则整个桶在界面上可见却永远派不出去
func resolveBucket(hostel string, hostels []*model.Hostel) dao.DispatchBucket {
	if hostel == model.UnknownHostel {
		return dao.DispatchBucket{Unknown: true}
	}
	b := dao.DispatchBucket{RawName: hostel}
	target := norm(hostel)
	for _, h := range hostels {
		if norm(h.Name) == target {
			id := h.ID
			b.HostelID = &id
			break
		}
	}
	return b
}

// SelectForDispatch 从候选订单中选出最多 count 个待派送订单
// 候选已按创建时间升序 这里只做类目核对和截断
func SelectForDispatch(candidates []*model.Order, category, productName string, count int) []int64 {
	ids := make([]int64, 0, count)
	for _, o := range candidates {
		if len(ids) >= count {
			break
		}
		for i := range o.Items {
			item := &o.Items[i]
			if item.ProductName != productName {
				continue
			}
			itemCategory := model.UnknownCategory
			if item.Product != nil {
				itemCategory = item.Product.CategoryName()
			}
			if itemCategory == category {
				ids = append(ids, o.ID)
				break
			}
		}
	}
	return ids
}

// Dispatch 批量派送写路径
// 取单和更新包在一个事务里并对候选行加锁 外加Redis锁兜住并发的管理端请求
func (s *DispatchService) Dispatch(ctx context.Context, req *DispatchRequest) (*DispatchResult, error) {
	// 1. Redis锁 同一宿舍+商品串行派单
	lockKey := fmt.Sprintf("dispatch:lock:hostel:%s:product:%s", req.Hostel, req.ProductName)
	if s.redisDB != nil {
		locked, err := s.redisDB.SetNX(ctx, lockKey, "1", s.lockTTL).Result()
		if err != nil {
			logger.Warn("dispatch lock error, proceeding on db locks only", "err", err)
		} else if !locked {
			return nil, ErrDispatchLocked
		} else {
			defer s.redisDB.Del(context.Background(), lockKey)
		}
	}

	// 2. 桶名 -> 取单条件 规范名桶要带上hostel_id
	hostels, err := s.hostelDao.ListActiveHostels(ctx)
	if err != nil {
		return nil, err
	}
	bucket := resolveBucket(req.Hostel, hostels)

	var selected []int64
	err = s.orderDao.Transaction(ctx, func(tx *gorm.DB) error {
		// 3. 锁定候选行 类目要联查后过滤 所以多取一些
		candidates, err := s.orderDao.CandidatesForDispatch(ctx, tx, bucket, req.ProductName, s.overfetchFactor*req.Count)
		if err != nil {
			return err
		}
		if len(candidates) == 0 {
			return ErrNoPlacedOrders
		}

		// 4. 内存过滤类目 截断到count
		selected = SelectForDispatch(candidates, req.Category, req.ProductName, req.Count)
		if len(selected) == 0 {
			return ErrNoExactMatch
		}

		// 5. 批量更新状态
		return s.orderDao.MarkDispatched(ctx, tx, selected, req.ProductName)
	})
	if err != nil {
		return nil, err
	}

	// 派单改变了分组视图 主动失效缓存
	if s.cacheEnabled() {
		s.redisDB.Del(ctx, groupCacheKey)
	}

	// 6. 尽力而为的通知 失败只记日志 不回滚派送
	s.notifyDispatched(ctx, selected, req)

	logger.Info("orders dispatched",
		"hostel", req.Hostel,
		"category", req.Category,
		"product", req.ProductName,
		"requested", req.Count,
		"dispatched", len(selected),
	)
	return &DispatchResult{
		DispatchedCount: len(selected),
		OrderIDs:        selected,
	}, nil
}

// DispatchNotifyMessage 每个受影响订单发一条
type DispatchNotifyMessage struct {
	OrderID     int64  `json:"order_id"`
	UserID      int64  `json:"user_id"`
	OrderNumber string `json:"order_number"`
	ProductName string `json:"product_name"`
	Hostel      string `json:"hostel"`
	OccurredAt  int64  `json:"occurred_at"`
}

func (s *DispatchService) notifyDispatched(ctx context.Context, orderIDs []int64, req *DispatchRequest) {
	if s.mqPool == nil {
		return
	}
	for _, id := range orderIDs {
		o, err := s.orderDao.GetOrderByID(ctx, id)
		if err != nil {
			logger.Error("load order for notification failed", "order_id", id, "err", err)
			continue
		}
		msg := DispatchNotifyMessage{
			OrderID:     o.ID,
			UserID:      o.UserID,
			OrderNumber: o.OrderNumber,
			ProductName: req.ProductName,
			Hostel:      req.Hostel,
			OccurredAt:  time.Now().Unix(),
		}
		body, err := json.Marshal(msg)
		if err != nil {
			logger.Error("marshal notification failed", "order_id", id, "err", err)
			continue
		}
		messageID := fmt.Sprintf("dispatch:%d:%d", o.ID, msg.OccurredAt)
		if err := s.mqPool.PublishWithID(mq.Exchange, mq.KeyDispatchNotify, messageID, body); err != nil {
			logger.Error("publish dispatch notification failed", "order_id", id, "err", err)
		}
	}
}
