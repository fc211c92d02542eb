// Package clock 提供时钟源的配置
package clock

import "github.com/membria/v1/pkg/types"

// Options 时钟配置选项
type Options struct {
	Source     string   `json:"source"` // system | ntp
	NTPServers []string `json:"ntp_servers"`
}

// Config 时钟配置实现
type Config struct {
	options *Options
}

// New 创建时钟配置，用户配置覆盖默认值
func New(userConfig *types.UserClockConfig) *Config {
	options := createDefaultOptions()

	if userConfig != nil {
		if userConfig.Source != nil {
			options.Source = *userConfig.Source
		}
		if len(userConfig.NTPServers) > 0 {
			options.NTPServers = userConfig.NTPServers
		}
	}

	return &Config{options: options}
}

// GetSource 时钟源类型
func (c *Config) GetSource() string { return c.options.Source }

// GetNTPServers NTP 服务器列表
func (c *Config) GetNTPServers() []string { return c.options.NTPServers }
