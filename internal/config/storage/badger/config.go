// Package badger 提供 BadgerDB 存储的配置
package badger

import (
	"path/filepath"

	"github.com/membria/v1/pkg/types"
	"github.com/membria/v1/pkg/utils"
)

// Options BadgerDB 存储配置选项
type Options struct {
	Path       string `json:"path"`        // 数据库存储路径
	SyncWrites bool   `json:"sync_writes"` // 是否同步写入

	MemTableSize int64 `json:"mem_table_size"` // 内存表大小
}

// Config BadgerDB 配置实现
type Config struct {
	options *Options
}

// New 创建 BadgerDB 配置，用户配置覆盖默认值
//
// 路径构建规则：配置了 storage.data_root 时使用 {data_root}/badger/，
// 否则使用默认路径 ./data/badger/。
func New(userConfig *types.UserStorageConfig) *Config {
	options := createDefaultOptions()

	if userConfig != nil && userConfig.DataRoot != nil {
		options.Path = utils.ResolveDataPath(filepath.Join(*userConfig.DataRoot, "badger"))
	}

	return &Config{options: options}
}

// NewFromOptions 从 Options 创建配置实现
func NewFromOptions(options *Options) *Config {
	return &Config{options: options}
}

// GetPath 获取数据目录
func (c *Config) GetPath() string { return c.options.Path }

// IsSyncWritesEnabled 是否同步写入
func (c *Config) IsSyncWritesEnabled() bool { return c.options.SyncWrites }

// GetMemTableSize 内存表大小
func (c *Config) GetMemTableSize() int64 { return c.options.MemTableSize }
