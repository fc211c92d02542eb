// Package storage 提供键值存储接口定义
//
// 登记处与网关的全部持久状态都通过这里的接口落盘；
// 实现层（BadgerDB / BigCache）对业务代码不可见。
package storage

import (
	"context"
	"time"
)

// KVStore 定义持久化键值存储的应用接口
//
// 约定：
// - Get 对不存在的键返回 (nil, nil)，不视为错误
// - 所有写操作在返回 nil 时已持久化
type KVStore interface {
	// Get 获取指定键的值；键不存在时返回 (nil, nil)
	Get(ctx context.Context, key []byte) ([]byte, error)

	// Set 设置键值对，已存在则覆盖
	Set(ctx context.Context, key, value []byte) error

	// Delete 删除指定键；键不存在不报错
	Delete(ctx context.Context, key []byte) error

	// Exists 检查键是否存在
	Exists(ctx context.Context, key []byte) (bool, error)

	// PrefixScan 按前缀扫描，返回 map[键的字符串表示]值
	PrefixScan(ctx context.Context, prefix []byte) (map[string][]byte, error)

	// RunInTransaction 在单个事务中执行 fn；fn 返回错误则整体回滚
	RunInTransaction(ctx context.Context, fn func(txn Transaction) error) error

	// Close 关闭存储，应用停止时必须调用
	Close() error
}

// Transaction 事务内的写视图
type Transaction interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	Delete(key []byte) error
}

// MemoryStore 定义内存缓存接口
//
// 仅用于读路径加速，允许任意丢失；不承载权威状态。
type MemoryStore interface {
	// Get 获取缓存值，第二个返回值指示是否命中
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set 写入缓存值
	Set(ctx context.Context, key string, value []byte) error

	// SetWithTTL 写入带过期时间的缓存值，ttl 为 0 表示不过期
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete 删除缓存值
	Delete(ctx context.Context, key string) error

	// Close 关闭缓存并释放资源
	Close() error
}
