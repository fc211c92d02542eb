// Package gateway 提供凭证网关的实例化配置
package gateway

import "github.com/membria/v1/pkg/types"

// Options 网关实例化选项
type Options struct {
	Creator  string `json:"creator"`  // 部署者，获得 DefaultAdmin
	Treasury string `json:"treasury"` // 手续费接收账户
	Address  string `json:"address"`  // 网关自身账户，登记处侧应授予它 Minter
}

// Config 网关配置实现
type Config struct {
	options *Options
}

// New 创建网关配置，用户配置覆盖默认值
func New(userConfig *types.UserGatewayConfig) *Config {
	options := createDefaultOptions()

	if userConfig != nil {
		if userConfig.Creator != nil {
			options.Creator = *userConfig.Creator
		}
		if userConfig.Treasury != nil {
			options.Treasury = *userConfig.Treasury
		}
		if userConfig.Address != nil {
			options.Address = *userConfig.Address
		}
	}

	return &Config{options: options}
}

// GetOptions 获取完整的实例化选项
func (c *Config) GetOptions() *Options { return c.options }
