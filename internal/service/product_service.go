package service

import (
	"context"

	"github.com/lapatisseriex/La-Patisserie-sub001/internal/dao"
	"github.com/lapatisseriex/La-Patisserie-sub001/internal/model"
)

// ProductService 商品目录读接口
type ProductService struct {
	productDao *dao.ProductDao
}

func NewProductService(productDao *dao.ProductDao) *ProductService {
	return &ProductService{productDao: productDao}
}

// ListProducts 在售商品列表
func (s *ProductService) ListProducts(ctx context.Context, onlyActive bool) ([]*model.Product, error) {
	return s.productDao.ListProducts(ctx, onlyActive)
}

// GetProduct 商品详情
func (s *ProductService) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	return s.productDao.GetProductByID(ctx, id)
}
