package cart

import (
	"strings"
	"sync"

	"github.com/nutrifit/internal/models"
)

// Product 加入购物车时的商品信息
type Product struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	Price models.Money `json:"price"`
}

// Item 购物车行，按 ID 唯一
type Item struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Price    models.Money `json:"price"`
	Quantity int          `json:"quantity"`
}

// Subtotal 单行小计
func (i Item) Subtotal() models.Money {
	return i.Price.Times(i.Quantity)
}

// Snapshot 购物车只读快照
type Snapshot struct {
	Items   []Item       `json:"items"`
	Total   models.Money `json:"total"`
	Version uint64       `json:"version"`
}

// IsEmpty 是否为空
func (s Snapshot) IsEmpty() bool {
	return len(s.Items) == 0
}

// Listener 变更订阅回调，不得在回调内修改同一个 Store
type Listener func(Snapshot)

// Store 单个会话的购物车，所有修改都经由其方法完成
type Store struct {
	mu        sync.RWMutex
	notifyMu  sync.Mutex
	items     []Item
	version   uint64
	listeners map[uint64]Listener
	nextSubID uint64
}

// NewStore 创建空购物车
func NewStore() *Store {
	return &Store{listeners: make(map[uint64]Listener)}
}

// AddItem 已存在的商品数量加一，否则追加一行
func (s *Store) AddItem(product Product) {
	id := strings.TrimSpace(product.ID)
	s.mutate(func() bool {
		for i := range s.items {
			if s.items[i].ID == id {
				s.items[i].Quantity++
				return true
			}
		}
		s.items = append(s.items, Item{
			ID:       id,
			Name:     product.Name,
			Price:    product.Price,
			Quantity: 1,
		})
		return true
	})
}

// RemoveItem 删除指定行，不存在时不做任何事
func (s *Store) RemoveItem(id string) {
	id = strings.TrimSpace(id)
	s.mutate(func() bool {
		for i := range s.items {
			if s.items[i].ID == id {
				s.items = append(s.items[:i], s.items[i+1:]...)
				return true
			}
		}
		return false
	})
}

// Clear 清空购物车
func (s *Store) Clear() {
	s.mutate(func() bool {
		if len(s.items) == 0 {
			return false
		}
		s.items = nil
		return true
	})
}

// Settle 扣除已下单的行；快照之后新增的数量保留
func (s *Store) Settle(ordered Snapshot) {
	s.mutate(func() bool {
		if s.version == ordered.Version {
			if len(s.items) == 0 {
				return false
			}
			s.items = nil
			return true
		}
		paid := make(map[string]int, len(ordered.Items))
		for _, item := range ordered.Items {
			paid[item.ID] += item.Quantity
		}
		changed := false
		kept := s.items[:0]
		for _, item := range s.items {
			if n := paid[item.ID]; n > 0 {
				item.Quantity -= n
				changed = true
			}
			if item.Quantity > 0 {
				kept = append(kept, item)
			}
		}
		s.items = kept
		return changed
	})
}

// Restore 用持久化快照替换当前内容，不通知订阅者
func (s *Store) Restore(items []Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = s.items[:0]
	for _, item := range items {
		if strings.TrimSpace(item.ID) == "" || item.Quantity < 1 || item.Price.IsNegative() {
			continue
		}
		s.items = append(s.items, item)
	}
}

// Items 返回当前行的副本
func (s *Store) Items() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyItemsLocked()
}

// Total 每次读取时重新计算
func (s *Store) Total() models.Money {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return totalOf(s.items)
}

// Snapshot 返回当前快照
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Subscribe 注册变更回调，返回取消函数
func (s *Store) Subscribe(listener Listener) func() {
	if listener == nil {
		return func() {}
	}
	s.mu.Lock()
	s.nextSubID++
	id := s.nextSubID
	s.listeners[id] = listener
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// mutate 在写锁内执行变更，释放写锁后按变更顺序通知订阅者
func (s *Store) mutate(apply func() bool) {
	s.mu.Lock()
	if !apply() {
		s.mu.Unlock()
		return
	}
	s.version++
	snapshot := s.snapshotLocked()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, listener := range s.listeners {
		listeners = append(listeners, listener)
	}
	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	for _, listener := range listeners {
		listener(snapshot)
	}
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Items:   s.copyItemsLocked(),
		Total:   totalOf(s.items),
		Version: s.version,
	}
}

func (s *Store) copyItemsLocked() []Item {
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

func totalOf(items []Item) models.Money {
	total := models.ZeroMoney()
	for _, item := range items {
		total = total.Plus(item.Subtotal())
	}
	return total
}
