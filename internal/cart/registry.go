package cart

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/nutrifit/internal/logger"
)

// ErrEmptySession 会话ID为空
var ErrEmptySession = errors.New("cart session id is required")

// Persister 购物车快照持久化
type Persister interface {
	Load(ctx context.Context, sessionID string) ([]Item, error)
	Save(ctx context.Context, sessionID string, snapshot Snapshot) error
	Delete(ctx context.Context, sessionID string) error
}

// RegistryOptions 会话注册表配置
type RegistryOptions struct {
	IdleTTL   time.Duration
	Persister Persister
}

type session struct {
	store       *Store
	lastSeen    time.Time
	unsubscribe func()
}

// Registry 每个会话唯一的购物车实例
type Registry struct {
	mu        sync.Mutex
	sessions  map[string]*session
	idleTTL   time.Duration
	persister Persister
	now       func() time.Time
}

// NewRegistry 创建会话注册表
func NewRegistry(options RegistryOptions) *Registry {
	return &Registry{
		sessions:  make(map[string]*session),
		idleTTL:   options.IdleTTL,
		persister: options.Persister,
		now:       time.Now,
	}
}

// Get 返回会话购物车，首次访问时从持久化快照恢复
func (r *Registry) Get(ctx context.Context, sessionID string) (*Store, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, ErrEmptySession
	}

	if store, ok := r.touch(sessionID); ok {
		return store, nil
	}

	// 快照加载不持有注册表锁，避免慢存储阻塞其他会话
	store := NewStore()
	if r.persister != nil {
		items, err := r.persister.Load(ctx, sessionID)
		if err != nil {
			logger.Warnw("cart_snapshot_load_failed", "session_id", sessionID, "error", err)
		} else if len(items) > 0 {
			store.Restore(items)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// 并发首访时以先注册者为准
	if existing, ok := r.sessions[sessionID]; ok {
		existing.lastSeen = r.now()
		return existing.store, nil
	}
	entry := &session{store: store, lastSeen: r.now()}
	if r.persister != nil {
		persister := r.persister
		entry.unsubscribe = store.Subscribe(func(snapshot Snapshot) {
			var err error
			if snapshot.IsEmpty() {
				err = persister.Delete(context.Background(), sessionID)
			} else {
				err = persister.Save(context.Background(), sessionID, snapshot)
			}
			if err != nil {
				logger.Warnw("cart_snapshot_save_failed", "session_id", sessionID, "error", err)
			}
		})
	}
	r.sessions[sessionID] = entry
	return store, nil
}

func (r *Registry) touch(sessionID string) (*Store, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.sessions[sessionID]
	if !ok {
		return nil, false
	}
	existing.lastSeen = r.now()
	return existing.store, true
}

// Drop 结束会话并丢弃购物车
func (r *Registry) Drop(ctx context.Context, sessionID string) {
	sessionID = strings.TrimSpace(sessionID)
	r.mu.Lock()
	entry, ok := r.sessions[sessionID]
	delete(r.sessions, sessionID)
	r.mu.Unlock()

	if ok && entry.unsubscribe != nil {
		entry.unsubscribe()
	}
	if r.persister != nil && sessionID != "" {
		if err := r.persister.Delete(ctx, sessionID); err != nil {
			logger.Warnw("cart_snapshot_delete_failed", "session_id", sessionID, "error", err)
		}
	}
}

// Sweep 移除闲置超过 TTL 的内存会话，持久化快照保留以便恢复
func (r *Registry) Sweep(now time.Time) int {
	if r.idleTTL <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, entry := range r.sessions {
		if now.Sub(entry.lastSeen) < r.idleTTL {
			continue
		}
		if entry.unsubscribe != nil {
			entry.unsubscribe()
		}
		delete(r.sessions, id)
		removed++
	}
	return removed
}

// Len 当前内存会话数
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
