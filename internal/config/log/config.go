// Package log 提供日志组件的配置
package log

import "github.com/membria/v1/pkg/types"

// Options 日志配置选项
type Options struct {
	Level      string `json:"level"`       // debug | info | warn | error
	OutputPath string `json:"output_path"` // 日志文件路径，空表示仅控制台
	Console    bool   `json:"console"`     // 是否同时输出到控制台

	// 轮转配置（lumberjack）
	MaxSizeMB  int `json:"max_size_mb"`
	MaxBackups int `json:"max_backups"`
	MaxAgeDays int `json:"max_age_days"`
}

// Config 日志配置实现
type Config struct {
	options *Options
}

// New 创建日志配置，用户配置覆盖默认值
func New(userConfig *types.UserLogConfig) *Config {
	options := createDefaultOptions()

	if userConfig != nil {
		if userConfig.Level != nil {
			options.Level = *userConfig.Level
		}
		if userConfig.OutputPath != nil {
			options.OutputPath = *userConfig.OutputPath
		}
		if userConfig.Console != nil {
			options.Console = *userConfig.Console
		}
	}

	return &Config{options: options}
}

// GetLevel 获取日志级别
func (c *Config) GetLevel() string { return c.options.Level }

// GetOutputPath 获取日志文件路径
func (c *Config) GetOutputPath() string { return c.options.OutputPath }

// IsConsoleEnabled 是否输出到控制台
func (c *Config) IsConsoleEnabled() bool { return c.options.Console }

// GetMaxSizeMB 单个日志文件上限（MB）
func (c *Config) GetMaxSizeMB() int { return c.options.MaxSizeMB }

// GetMaxBackups 保留的轮转文件数
func (c *Config) GetMaxBackups() int { return c.options.MaxBackups }

// GetMaxAgeDays 轮转文件保留天数
func (c *Config) GetMaxAgeDays() int { return c.options.MaxAgeDays }
