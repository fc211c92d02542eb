package handlers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/membria/v1/pkg/interfaces/infrastructure/storage"
)

// queryCacheTTL 只读查询结果的缓存时长
//
// 状态在进程内是权威的，缓存只为吸收热点读；写操作不做主动失效，
// 短TTL保证过期数据的可见窗口有上界。
const queryCacheTTL = 2 * time.Second

// queryCache 只读查询结果缓存
//
// BigCache 的淘汰窗口是全局的，条目里自带截止时间以获得精确TTL。
type queryCache struct {
	store storage.MemoryStore
}

type cacheEnvelope struct {
	ExpiresAt int64           `json:"expires_at"` // UnixNano
	Data      json.RawMessage `json:"data"`
}

func newQueryCache(store storage.MemoryStore) *queryCache {
	return &queryCache{store: store}
}

// get 命中且未过期时把缓存的JSON反序列化进 out
func (q *queryCache) get(ctx context.Context, key string, out interface{}) bool {
	if q == nil || q.store == nil {
		return false
	}
	raw, hit, err := q.store.Get(ctx, key)
	if err != nil || !hit {
		return false
	}
	var env cacheEnvelope
	if json.Unmarshal(raw, &env) != nil {
		return false
	}
	if time.Now().UnixNano() >= env.ExpiresAt {
		_ = q.store.Delete(ctx, key)
		return false
	}
	return json.Unmarshal(env.Data, out) == nil
}

// set 序列化并写入缓存，失败时静默放弃
func (q *queryCache) set(ctx context.Context, key string, value interface{}) {
	if q == nil || q.store == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	env, err := json.Marshal(cacheEnvelope{
		ExpiresAt: time.Now().Add(queryCacheTTL).UnixNano(),
		Data:      data,
	})
	if err != nil {
		return
	}
	_ = q.store.SetWithTTL(ctx, key, env, queryCacheTTL)
}
