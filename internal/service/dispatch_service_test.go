package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/lapatisseriex/La-Patisserie-sub001/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func cakeCategory() *model.Category {
	return &model.Category{ID: 1, Name: "Cakes"}
}

func breadCategory() *model.Category {
	return &model.Category{ID: 2, Name: "Breads"}
}

func placedOrder(id int64, hostelName, location string, items ...model.OrderItem) *model.Order {
	return &model.Order{
		ID:               id,
		OrderNumber:      "LP-20260829-000001",
		UserID:           100 + id,
		HostelName:       hostelName,
		DeliveryLocation: location,
		OrderStatus:      model.OrderStatusPlaced,
		CreatedAt:        time.Now().Add(time.Duration(id) * time.Minute),
		Items:            items,
	}
}

func item(productID int64, name string, qty int32, cat *model.Category) model.OrderItem {
	return model.OrderItem{
		ProductID:   productID,
		ProductName: name,
		Quantity:    qty,
		Price:       100,
		Product:     &model.Product{ID: productID, Name: name, Category: cat},
	}
}

func TestBuildDispatchGroups_Basic(t *testing.T) {
	orders := []*model.Order{
		placedOrder(1, "PSG", "psg campus", item(1, "Chocolate Truffle", 2, cakeCategory())),
		placedOrder(2, "PSG", "psg campus", item(1, "Chocolate Truffle", 1, cakeCategory())),
		placedOrder(3, "KPR", "avinashi road", item(2, "Garlic Loaf", 3, breadCategory())),
	}

	groups := BuildDispatchGroups(orders, nil, nil)
	assert.Len(t, groups, 2)

	// 按宿舍名排序 KPR在前
	assert.Equal(t, "KPR", groups[0].Hostel)
	assert.Equal(t, "PSG", groups[1].Hostel)

	psg := groups[1]
	assert.Equal(t, 2, psg.TotalOrders)
	assert.Len(t, psg.Categories, 1)
	assert.Equal(t, "Cakes", psg.Categories[0].Category)
	assert.Len(t, psg.Categories[0].Products, 1)

	p := psg.Categories[0].Products[0]
	assert.Equal(t, "Chocolate Truffle", p.ProductName)
	assert.Equal(t, 2, p.OrderCount)
	assert.Equal(t, int64(3), p.TotalQuantity)
	assert.Equal(t, []int64{1, 2}, p.OrderIDs)
}

func TestBuildDispatchGroups_HostelTotalEqualsCategorySum(t *testing.T) {
	// 一个订单同时含两个类目 订单在两个类目里各计一次
	// 宿舍级 total 按规格恒等于类目 total 之和
	orders := []*model.Order{
		placedOrder(1, "PSG", "psg campus",
			item(1, "Chocolate Truffle", 1, cakeCategory()),
			item(2, "Garlic Loaf", 2, breadCategory()),
		),
		placedOrder(2, "PSG", "psg campus", item(1, "Chocolate Truffle", 1, cakeCategory())),
	}

	groups := BuildDispatchGroups(orders, nil, nil)
	assert.Len(t, groups, 1)

	sum := 0
	for _, cg := range groups[0].Categories {
		sum += cg.TotalOrders
	}
	assert.Equal(t, sum, groups[0].TotalOrders)
}

func TestBuildDispatchGroups_UnknownFallbacks(t *testing.T) {
	noCategory := model.OrderItem{
		ProductID:   9,
		ProductName: "Mystery Box",
		Quantity:    1,
		Product:     &model.Product{ID: 9, Name: "Mystery Box"}, // 没有类目
	}
	orders := []*model.Order{
		placedOrder(1, "", "somewhere", noCategory),
	}

	groups := BuildDispatchGroups(orders, nil, nil)
	assert.Len(t, groups, 1)
	assert.Equal(t, model.UnknownHostel, groups[0].Hostel)
	assert.Equal(t, model.UnknownCategory, groups[0].Categories[0].Category)
}

func TestBuildDispatchGroups_KeepsAllDistinctLocations(t *testing.T) {
	orders := []*model.Order{
		placedOrder(1, "PSG", "psg main gate"),
		placedOrder(2, "PSG", "psg back gate"),
		placedOrder(3, "PSG", "psg main gate"),
	}

	groups := BuildDispatchGroups(orders, nil, nil)
	assert.Len(t, groups, 1)
	// 代表地址是首个出现的 但所有去重后的原始串都保留
	assert.Equal(t, "psg main gate", groups[0].DeliveryLocation)
	assert.Equal(t, []string{"psg main gate", "psg back gate"}, groups[0].DeliveryLocations)
}

func TestBuildDispatchGroups_MappingOverridesDisplayLocation(t *testing.T) {
	orders := []*model.Order{
		placedOrder(1, "PSG", "some raw string the user typed"),
	}
	mappings := []*model.DeliveryLocationMapping{
		{DeliveryLocation: "PSG Campus, Peelamedu", HostelID: 1, HostelName: "PSG"},
	}

	groups := BuildDispatchGroups(orders, nil, mappings)
	assert.Equal(t, "PSG Campus, Peelamedu", groups[0].DeliveryLocation)
	// 原始串仍然保留
	assert.Contains(t, groups[0].DeliveryLocations, "some raw string the user typed")
}

func TestBuildDispatchGroups_ResolvedOrdersUseCanonicalName(t *testing.T) {
	hostelID := int64(7)
	resolved := placedOrder(1, "psg hostel ", "psg campus", item(1, "Croissant", 1, breadCategory()))
	resolved.HostelID = &hostelID
	unresolved := placedOrder(2, "psg hostel ", "psg campus", item(1, "Croissant", 1, breadCategory()))

	hostelNames := map[int64]string{7: "PSG"}
	groups := BuildDispatchGroups([]*model.Order{resolved, unresolved}, hostelNames, nil)

	// 已解析的进规范名桶 未解析的留在原始串桶 两者不混
	assert.Len(t, groups, 2)
	names := []string{groups[0].Hostel, groups[1].Hostel}
	assert.Contains(t, names, "PSG")
	assert.Contains(t, names, "psg hostel ")
}

func TestResolveBucket_CanonicalNameCarriesHostelID(t *testing.T) {
	hostels := []*model.Hostel{{ID: 7, Name: "PSG"}, {ID: 8, Name: "KPR"}}

	b := resolveBucket("PSG", hostels)
	assert.Equal(t, "PSG", b.RawName)
	if assert.NotNil(t, b.HostelID) {
		assert.Equal(t, int64(7), *b.HostelID)
	}
	assert.False(t, b.Unknown)
}

func TestResolveBucket_RawBucketStaysNameOnly(t *testing.T) {
	hostels := []*model.Hostel{{ID: 7, Name: "PSG"}}

	b := resolveBucket("psg hostel ", hostels)
	assert.Equal(t, "psg hostel ", b.RawName)
	assert.Nil(t, b.HostelID)
	assert.False(t, b.Unknown)
}

func TestResolveBucket_UnknownBucket(t *testing.T) {
	b := resolveBucket(model.UnknownHostel, []*model.Hostel{{ID: 7, Name: "PSG"}})
	assert.True(t, b.Unknown)
}

func TestResolveBucket_GroupedBucketIsDispatchable(t *testing.T) {
	// 已解析订单在分组视图里挂在规范名下 原始串和桶名不同
	// 按桶名取单的条件必须带上hostel_id 否则这种订单在界面可见却永远派不出去
	hostelID := int64(7)
	o := placedOrder(1, "psg hostel ", "psg campus", item(1, "Croissant", 1, breadCategory()))
	o.HostelID = &hostelID
	hostels := []*model.Hostel{{ID: 7, Name: "PSG"}}

	groups := BuildDispatchGroups([]*model.Order{o}, map[int64]string{7: "PSG"}, nil)
	assert.Equal(t, "PSG", groups[0].Hostel)

	b := resolveBucket(groups[0].Hostel, hostels)
	if assert.NotNil(t, b.HostelID) {
		assert.Equal(t, *o.HostelID, *b.HostelID)
	}
	// 原始串不等于桶名 名称等值条件命不中 只有hostel_id能找回这单
	assert.NotEqual(t, b.RawName, o.HostelName)
}

type stubRedis struct {
	redis.UniversalClient
	data map[string]string
}

func (s *stubRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if v, ok := s.data[key]; ok {
		return redis.NewStringResult(v, nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

func (s *stubRedis) Set(ctx context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	if b, ok := value.([]byte); ok {
		s.data[key] = string(b)
	}
	return redis.NewStatusResult("OK", nil)
}

func (s *stubRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	for _, k := range keys {
		delete(s.data, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func TestGroupPendingOrders_ServedFromCache(t *testing.T) {
	cached := []HostelGroup{{Hostel: "PSG", DeliveryLocation: "psg campus", TotalOrders: 3}}
	body, err := json.Marshal(cached)
	assert.NoError(t, err)

	rdb := &stubRedis{data: map[string]string{groupCacheKey: string(body)}}
	// dao全为nil 命中缓存时不会查库
	s := NewDispatchService(nil, nil, nil, rdb, nil, 10, 5, 2)

	groups, err := s.GroupPendingOrders(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, cached, groups)
}

func TestSelectForDispatch_CapsAtCount(t *testing.T) {
	var candidates []*model.Order
	for i := int64(1); i <= 5; i++ {
		candidates = append(candidates, placedOrder(i, "PSG", "psg", item(1, "Croissant", 1, breadCategory())))
	}

	ids := SelectForDispatch(candidates, "Breads", "Croissant", 3)
	assert.Len(t, ids, 3)
	// 候选已按创建时间升序 取最早的3个
	assert.Equal(t, []int64{1, 2, 3}, ids)
}

func TestSelectForDispatch_ReturnsAvailableWhenCountExceeds(t *testing.T) {
	candidates := []*model.Order{
		placedOrder(1, "PSG", "psg", item(1, "Croissant", 1, breadCategory())),
		placedOrder(2, "PSG", "psg", item(1, "Croissant", 1, breadCategory())),
	}

	ids := SelectForDispatch(candidates, "Breads", "Croissant", 10)
	assert.Len(t, ids, 2)
}

func TestSelectForDispatch_CategoryMustMatch(t *testing.T) {
	candidates := []*model.Order{
		placedOrder(1, "PSG", "psg", item(1, "Croissant", 1, cakeCategory())),
		placedOrder(2, "PSG", "psg", item(1, "Croissant", 1, breadCategory())),
	}

	ids := SelectForDispatch(candidates, "Breads", "Croissant", 10)
	assert.Equal(t, []int64{2}, ids)
}

func TestSelectForDispatch_NoMatch(t *testing.T) {
	candidates := []*model.Order{
		placedOrder(1, "PSG", "psg", item(1, "Croissant", 1, cakeCategory())),
	}

	ids := SelectForDispatch(candidates, "Breads", "Croissant", 1)
	assert.Empty(t, ids)
}
