// Package api 提供 HTTP API 的配置
package api

import "github.com/membria/v1/pkg/types"

// Options HTTP API 配置选项
type Options struct {
	Host string `json:"host"`
	Port int    `json:"port"`

	ReadTimeoutSec  int `json:"read_timeout_sec"`
	WriteTimeoutSec int `json:"write_timeout_sec"`
}

// Config HTTP API 配置实现
type Config struct {
	options *Options
}

// New 创建 API 配置，用户配置覆盖默认值
func New(userConfig *types.UserAPIConfig) *Config {
	options := createDefaultOptions()

	if userConfig != nil {
		if userConfig.Host != nil {
			options.Host = *userConfig.Host
		}
		if userConfig.Port != nil && *userConfig.Port > 0 {
			options.Port = *userConfig.Port
		}
	}

	return &Config{options: options}
}

// GetHost 监听地址
func (c *Config) GetHost() string { return c.options.Host }

// GetPort 监听端口
func (c *Config) GetPort() int { return c.options.Port }

// GetReadTimeoutSec 读超时（秒）
func (c *Config) GetReadTimeoutSec() int { return c.options.ReadTimeoutSec }

// GetWriteTimeoutSec 写超时（秒）
func (c *Config) GetWriteTimeoutSec() int { return c.options.WriteTimeoutSec }
