// Package memory 提供基于BigCache的内存缓存实现
//
// 仅服务读路径：查询结果的短期缓存，不承载权威状态。
package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/allegro/bigcache/v3"
	memoryconfig "github.com/membria/v1/internal/config/storage/memory"
	log "github.com/membria/v1/pkg/interfaces/infrastructure/log"
	interfaces "github.com/membria/v1/pkg/interfaces/infrastructure/storage"
)

// Store 实现 storage.MemoryStore 接口
type Store struct {
	cache  *bigcache.BigCache
	logger log.Logger
}

var _ interfaces.MemoryStore = (*Store)(nil)

// New 创建新的BigCache内存存储实例
func New(config *memoryconfig.Config, logger log.Logger) (*Store, error) {
	lifeWindow, err := time.ParseDuration(config.GetLifeWindow())
	if err != nil {
		logger.Errorf("解析生命周期窗口失败: %v", err)
		lifeWindow = 10 * time.Minute
	}
	cleanWindow, err := time.ParseDuration(config.GetCleanWindow())
	if err != nil {
		logger.Errorf("解析清理窗口失败: %v", err)
		cleanWindow = 5 * time.Minute
	}

	bigCacheConfig := bigcache.DefaultConfig(lifeWindow)
	bigCacheConfig.MaxEntriesInWindow = config.GetMaxEntriesInWindow()
	bigCacheConfig.MaxEntrySize = config.GetMaxEntrySize()
	bigCacheConfig.CleanWindow = cleanWindow

	cache, err := bigcache.New(context.Background(), bigCacheConfig)
	if err != nil {
		return nil, fmt.Errorf("创建BigCache实例失败: %w", err)
	}

	return &Store{cache: cache, logger: logger}, nil
}

// Get 获取缓存值
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := s.cache.Get(key)
	if err != nil {
		if err == bigcache.ErrEntryNotFound {
			return nil, false, nil
		}
		return nil, false, err
	}
	return value, true, nil
}

// Set 写入缓存值
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	return s.cache.Set(key, value)
}

// SetWithTTL 写入带过期时间的缓存值
//
// BigCache 的生命周期由全局 LifeWindow 控制；这里对更短的 ttl
// 不做精确控制，统一受 LifeWindow 约束，满足读缓存"允许任意丢失"的约定。
func (s *Store) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.cache.Set(key, value)
}

// Delete 删除缓存值
func (s *Store) Delete(ctx context.Context, key string) error {
	err := s.cache.Delete(key)
	if err == bigcache.ErrEntryNotFound {
		return nil
	}
	return err
}

// Close 关闭缓存并释放资源
func (s *Store) Close() error {
	s.logger.Info("关闭内存缓存")
	return s.cache.Close()
}
