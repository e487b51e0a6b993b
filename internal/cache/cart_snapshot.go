package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nutrifit/internal/cart"
	"github.com/nutrifit/internal/constants"
)

const defaultCartSnapshotTTL = 24 * time.Hour

// CartSnapshotStore 基于 Redis 的购物车快照持久化
type CartSnapshotStore struct {
	ttl time.Duration
}

// NewCartSnapshotStore 创建快照存储，Redis 未启用时读写均为空操作
func NewCartSnapshotStore(ttl time.Duration) *CartSnapshotStore {
	if ttl <= 0 {
		ttl = defaultCartSnapshotTTL
	}
	return &CartSnapshotStore{ttl: ttl}
}

type cartSnapshotPayload struct {
	Items     []cart.Item `json:"items"`
	Version   uint64      `json:"version"`
	UpdatedAt int64       `json:"updated_at"`
}

func cartSnapshotKey(sessionID string) string {
	return fmt.Sprintf("%s:%s", constants.CartSnapshotKeyPref, strings.TrimSpace(sessionID))
}

// Load 读取会话快照
func (s *CartSnapshotStore) Load(ctx context.Context, sessionID string) ([]cart.Item, error) {
	var payload cartSnapshotPayload
	found, err := GetJSON(ctx, cartSnapshotKey(sessionID), &payload)
	if err != nil || !found {
		return nil, err
	}
	return payload.Items, nil
}

// Save 写入会话快照并刷新过期时间
func (s *CartSnapshotStore) Save(ctx context.Context, sessionID string, snapshot cart.Snapshot) error {
	return SetJSON(ctx, cartSnapshotKey(sessionID), cartSnapshotPayload{
		Items:     snapshot.Items,
		Version:   snapshot.Version,
		UpdatedAt: time.Now().Unix(),
	}, s.ttl)
}

// Delete 删除会话快照
func (s *CartSnapshotStore) Delete(ctx context.Context, sessionID string) error {
	return Del(ctx, cartSnapshotKey(sessionID))
}
