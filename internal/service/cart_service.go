package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/nutrifit/internal/cart"
	"github.com/nutrifit/internal/repository"
)

// CartService 会话购物车服务
type CartService struct {
	registry *cart.Registry
	products repository.ProductRepository
	orders   *OrderService
}

// NewCartService 创建购物车服务
func NewCartService(registry *cart.Registry, products repository.ProductRepository, orders *OrderService) *CartService {
	return &CartService{registry: registry, products: products, orders: orders}
}

func (s *CartService) store(ctx context.Context, sessionID string) (*cart.Store, error) {
	store, err := s.registry.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, cart.ErrEmptySession) {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		return nil, err
	}
	return store, nil
}

// Snapshot 当前购物车
func (s *CartService) Snapshot(ctx context.Context, sessionID string) (cart.Snapshot, error) {
	store, err := s.store(ctx, sessionID)
	if err != nil {
		return cart.Snapshot{}, err
	}
	return store.Snapshot(), nil
}

// AddProduct 按商品ID加入购物车，只接受上架商品
func (s *CartService) AddProduct(ctx context.Context, sessionID, productID string) (cart.Snapshot, error) {
	store, err := s.store(ctx, sessionID)
	if err != nil {
		return cart.Snapshot{}, err
	}
	product, err := s.products.GetByID(productID)
	if err != nil {
		return cart.Snapshot{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if product == nil || !product.IsActive {
		return cart.Snapshot{}, ErrProductNotFound
	}
	store.AddItem(cart.Product{ID: product.ID, Name: product.Name, Price: product.Price})
	return store.Snapshot(), nil
}

// RemoveItem 删除购物车行
func (s *CartService) RemoveItem(ctx context.Context, sessionID, itemID string) (cart.Snapshot, error) {
	store, err := s.store(ctx, sessionID)
	if err != nil {
		return cart.Snapshot{}, err
	}
	store.RemoveItem(itemID)
	return store.Snapshot(), nil
}

// Clear 清空购物车
func (s *CartService) Clear(ctx context.Context, sessionID string) (cart.Snapshot, error) {
	store, err := s.store(ctx, sessionID)
	if err != nil {
		return cart.Snapshot{}, err
	}
	store.Clear()
	return store.Snapshot(), nil
}

// Checkout 基于当前快照确认下单，成功后扣除已下单的行，失败时保留
func (s *CartService) Checkout(ctx context.Context, sessionID, email string) (*OrderSummary, error) {
	store, err := s.store(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	snapshot := store.Snapshot()
	summary, err := s.orders.ConfirmOrder(ctx, LinesFromSnapshot(snapshot), email)
	if err != nil {
		return nil, err
	}
	store.Settle(snapshot)
	return summary, nil
}
