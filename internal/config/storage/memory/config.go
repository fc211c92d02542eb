// Package memory 提供内存缓存存储的配置
package memory

// Options 内存缓存配置选项
type Options struct {
	LifeWindow         string `json:"life_window"`  // 条目生命周期窗口
	CleanWindow        string `json:"clean_window"` // 过期清理窗口
	MaxEntriesInWindow int    `json:"max_entries_in_window"`
	MaxEntrySize       int    `json:"max_entry_size"` // 单条目大小（字节）
}

// Config 内存缓存配置实现
type Config struct {
	options *Options
}

// New 创建内存缓存配置
func New() *Config {
	return &Config{options: createDefaultOptions()}
}

// NewFromOptions 从 Options 创建配置实现
func NewFromOptions(options *Options) *Config {
	return &Config{options: options}
}

// GetLifeWindow 条目生命周期窗口
func (c *Config) GetLifeWindow() string { return c.options.LifeWindow }

// GetCleanWindow 过期清理窗口
func (c *Config) GetCleanWindow() string { return c.options.CleanWindow }

// GetMaxEntriesInWindow 窗口内最大条目数
func (c *Config) GetMaxEntriesInWindow() int { return c.options.MaxEntriesInWindow }

// GetMaxEntrySize 单条目大小上限
func (c *Config) GetMaxEntrySize() int { return c.options.MaxEntrySize }
