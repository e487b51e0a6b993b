package service

import (
	"fmt"

	"github.com/nutrifit/internal/logger"
	"github.com/nutrifit/internal/models"
	"github.com/nutrifit/internal/repository"
)

// ProductService 商品服务
type ProductService struct {
	repo repository.ProductRepository
}

// NewProductService 创建商品服务
func NewProductService(repo repository.ProductRepository) *ProductService {
	return &ProductService{repo: repo}
}

// ListPublic 上架商品列表
func (s *ProductService) ListPublic(search string, page, pageSize int) ([]models.Product, int64, error) {
	products, total, err := s.repo.List(repository.ProductListFilter{
		Page:       page,
		PageSize:   pageSize,
		Search:     search,
		OnlyActive: true,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return products, total, nil
}

// Seed 写入内置商品；onlyWhenEmpty 为真时表中已有数据则跳过
func (s *ProductService) Seed(products []models.Product, onlyWhenEmpty bool) (int, error) {
	if onlyWhenEmpty {
		count, err := s.repo.Count()
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		if count > 0 {
			return 0, nil
		}
	}
	written := 0
	for i := range products {
		product := products[i]
		if err := s.repo.Upsert(&product); err != nil {
			return written, fmt.Errorf("%w: seed product %s: %v", ErrPersistence, product.ID, err)
		}
		written++
	}
	logger.Infow("product_catalog_seeded", "count", written)
	return written, nil
}
