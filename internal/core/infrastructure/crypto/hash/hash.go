package hash

import (
	"crypto/sha256"
	"sync"

	"golang.org/x/crypto/ripemd160"

	cryptointf "github.com/membria/v1/pkg/interfaces/infrastructure/crypto"
)

// 确保HashService实现了cryptointf.HashManager接口
var _ cryptointf.HashManager = (*HashService)(nil)

// HashCache 简单的哈希缓存结构
type HashCache struct {
	cache map[string][]byte
	mu    sync.RWMutex
}

// NewHashCache 创建新的哈希缓存
func NewHashCache() *HashCache {
	return &HashCache{
		cache: make(map[string][]byte),
	}
}

// Get 从缓存获取哈希值
func (c *HashCache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	value, ok := c.cache[key]
	if ok {
		result := make([]byte, len(value))
		copy(result, value) // 返回副本而非引用
		return result, true
	}
	return nil, false
}

// Set 设置缓存中的哈希值
func (c *HashCache) Set(key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)
	c.cache[key] = valueCopy
}

// HashService 提供哈希计算功能
//
// claim 摘要与地址推导都走这里，内置缓存避免同一 claim 在
// 验签、审计、重放检查中被反复哈希。
type HashService struct {
	sha256Cache  *HashCache
	hash160Cache *HashCache
}

// NewHashService 创建新的哈希服务
func NewHashService() *HashService {
	return &HashService{
		sha256Cache:  NewHashCache(),
		hash160Cache: NewHashCache(),
	}
}

// cacheKey 根据数据生成缓存键
// 使用SHA256哈希作为缓存键，确保唯一性
func cacheKey(data []byte) string {
	hasher := sha256.New()
	hasher.Write(data)
	return string(hasher.Sum(nil))
}

// Sha256 计算SHA-256哈希
func (s *HashService) Sha256(data []byte) []byte {
	key := cacheKey(data)
	if cached, ok := s.sha256Cache.Get(key); ok {
		return cached
	}

	hash := sha256.Sum256(data)
	result := hash[:]

	s.sha256Cache.Set(key, result)
	return result
}

// DoubleSha256 计算双SHA-256哈希
func (s *HashService) DoubleSha256(data []byte) []byte {
	first := sha256.Sum256(data)
	second := sha256.Sum256(first[:])
	return second[:]
}

// Hash160 计算 RIPEMD160(SHA256(data))
//
// 地址推导的一致性关键路径，任何一步替换实现都会改变全网地址。
func (s *HashService) Hash160(data []byte) []byte {
	key := cacheKey(data)
	if cached, ok := s.hash160Cache.Get(key); ok {
		return cached
	}

	sha := sha256.Sum256(data)
	hasher := ripemd160.New()
	hasher.Write(sha[:])
	result := hasher.Sum(nil)

	s.hash160Cache.Set(key, result)
	return result
}
