package service

import (
	"context"
	"math"

	"github.com/lapatisseriex/La-Patisserie-sub001/internal/dao"
	"github.com/lapatisseriex/La-Patisserie-sub001/internal/model"
)

// AnalyticsService 仪表盘KPI 全部只读 对同一数据快照幂等
type AnalyticsService struct {
	analyticsDao *dao.AnalyticsDao
}

func NewAnalyticsService(analyticsDao *dao.AnalyticsDao) *AnalyticsService {
	return &AnalyticsService{analyticsDao: analyticsDao}
}

// Round2 保留两位小数
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// SuccessRate 支付成功率（百分比 两位小数）
// 零尝试返回0 避免除零
func SuccessRate(paid, attempts int64) float64 {
	if attempts <= 0 {
		return 0
	}
	return Round2(float64(paid) / float64(attempts) * 100)
}

// Overview 总览KPI
type Overview struct {
	TotalOrders        int64             `json:"total_orders"`
	PaidOrders         int64             `json:"paid_orders"`
	TotalRevenue       float64           `json:"total_revenue"`
	AvgOrderValue      float64           `json:"avg_order_value"`
	TopHostel          *dao.NameCount    `json:"top_hostel"`
	TopProduct         *dao.NameQuantity `json:"top_product"`
	TopCategory        *dao.NameCount    `json:"top_category"`
	PaymentSuccessRate float64           `json:"payment_success_rate"`
}

// GetOverview 过去days天的总览
func (s *AnalyticsService) GetOverview(ctx context.Context, days int) (*Overview, error) {
	totalOrders, err := s.analyticsDao.CountOrders(ctx, days)
	if err != nil {
		return nil, err
	}

	revenue, paidOrders, err := s.analyticsDao.PaidRevenue(ctx, days)
	if err != nil {
		return nil, err
	}

	topHostel, err := s.analyticsDao.TopHostelByOrders(ctx, days)
	if err != nil {
		return nil, err
	}
	topProduct, err := s.analyticsDao.TopProductByQuantity(ctx, days)
	if err != nil {
		return nil, err
	}
	topCategory, err := s.analyticsDao.TopCategoryByOrders(ctx, days)
	if err != nil {
		return nil, err
	}

	attempts, paid, err := s.analyticsDao.PaymentAttempts(ctx, days)
	if err != nil {
		return nil, err
	}

	avg := 0.0
	if paidOrders > 0 {
		avg = Round2(revenue / float64(paidOrders))
	}

	return &Overview{
		TotalOrders:        totalOrders,
		PaidOrders:         paidOrders,
		TotalRevenue:       Round2(revenue),
		AvgOrderValue:      avg,
		TopHostel:          topHostel,
		TopProduct:         topProduct,
		TopCategory:        topCategory,
		PaymentSuccessRate: SuccessRate(paid, attempts),
	}, nil
}

// GetOrdersTrend 按天/ISO周/月的订单和营收走势
func (s *AnalyticsService) GetOrdersTrend(ctx context.Context, days int, period string) ([]dao.TrendRow, error) {
	switch period {
	case "day", "week", "month":
	default:
		period = "day"
	}
	return s.analyticsDao.OrdersTrend(ctx, days, period)
}

// GetOrdersByLocation 按原始配送地址的订单分布
func (s *AnalyticsService) GetOrdersByLocation(ctx context.Context, days, limit int) ([]dao.LocationRow, error) {
	return s.analyticsDao.OrdersByLocation(ctx, days, limit)
}

// GetTopProducts top商品
func (s *AnalyticsService) GetTopProducts(ctx context.Context, days, limit int) ([]dao.ProductRow, error) {
	return s.analyticsDao.TopProducts(ctx, days, limit)
}

// GetCategoryPerformance 类目表现
func (s *AnalyticsService) GetCategoryPerformance(ctx context.Context, days int) ([]dao.CategoryRow, error) {
	return s.analyticsDao.CategoryPerformance(ctx, days)
}

// PaymentMethodStat 支付方式统计（带成功率）
type PaymentMethodStat struct {
	Method      string  `json:"method"`
	Attempts    int64   `json:"attempts"`
	Paid        int64   `json:"paid"`
	SuccessRate float64 `json:"success_rate"`
}

// GetPaymentMethods 按支付方式的成功率
func (s *AnalyticsService) GetPaymentMethods(ctx context.Context, days int) ([]PaymentMethodStat, error) {
	rows, err := s.analyticsDao.PaymentMethods(ctx, days)
	if err != nil {
		return nil, err
	}
	stats := make([]PaymentMethodStat, 0, len(rows))
	for _, r := range rows {
		stats = append(stats, PaymentMethodStat{
			Method:      r.Method,
			Attempts:    r.Attempts,
			Paid:        r.Paid,
			SuccessRate: SuccessRate(r.Paid, r.Attempts),
		})
	}
	return stats, nil
}

// GetRecentOrders 最近订单
func (s *AnalyticsService) GetRecentOrders(ctx context.Context, limit int) ([]*model.Order, error) {
	return s.analyticsDao.RecentOrders(ctx, limit)
}

// HostelPerformance 宿舍表现（含完成率）
type HostelPerformance struct {
	Hostel         string  `json:"hostel"`
	Orders         int64   `json:"orders"`
	Revenue        float64 `json:"revenue"`
	AvgOrderValue  float64 `json:"avg_order_value"`
	Completed      int64   `json:"completed"`
	Pending        int64   `json:"pending"`
	CompletionRate float64 `json:"completion_rate"`
}

// GetHostelPerformance 按宿舍（原始字符串）的表现
func (s *AnalyticsService) GetHostelPerformance(ctx context.Context, days int) ([]HostelPerformance, error) {
	rows, err := s.analyticsDao.HostelPerformance(ctx, days)
	if err != nil {
		return nil, err
	}
	result := make([]HostelPerformance, 0, len(rows))
	for _, r := range rows {
		avg := 0.0
		if r.Orders > 0 {
			avg = Round2(r.Revenue / float64(r.Orders))
		}
		result = append(result, HostelPerformance{
			Hostel:         r.Hostel,
			Orders:         r.Orders,
			Revenue:        Round2(r.Revenue),
			AvgOrderValue:  avg,
			Completed:      r.Completed,
			Pending:        r.Pending,
			CompletionRate: SuccessRate(r.Completed, r.Orders),
		})
	}
	return result, nil
}
