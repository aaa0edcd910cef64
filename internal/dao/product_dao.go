package dao

import (
	"context"

	"github.com/lapatisseriex/La-Patisserie-sub001/internal/model"

	"gorm.io/gorm"
)

type ProductDao struct {
	db *gorm.DB
}

func NewProductDao(db *gorm.DB) *ProductDao {
	return &ProductDao{db: db}
}

// GetProductByID 根据ID查商品（含类目）
func (d *ProductDao) GetProductByID(ctx context.Context, id int64) (*model.Product, error) {
	var p model.Product
	err := d.db.WithContext(ctx).Preload("Category").Where("id = ?", id).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProductsByIDs 批量查商品
func (d *ProductDao) GetProductsByIDs(ctx context.Context, ids []int64) ([]*model.Product, error) {
	var ps []*model.Product
	err := d.db.WithContext(ctx).Preload("Category").Where("id IN ?", ids).Find(&ps).Error
	return ps, err
}

// ListProducts 商品列表
func (d *ProductDao) ListProducts(ctx context.Context, onlyActive bool) ([]*model.Product, error) {
	var ps []*model.Product
	q := d.db.WithContext(ctx).Preload("Category")
	if onlyActive {
		q = q.Where("is_active = ?", true)
	}
	err := q.Order("name ASC").Find(&ps).Error
	return ps, err
}
