// Package registry 提供会员凭证登记处的实例化配置
//
// 这些值对应合约的 instantiate 消息：首次启动时写入存储并播种角色，
// 之后的启动以存储中的状态为准。
package registry

import "github.com/membria/v1/pkg/types"

// Options 登记处实例化选项
type Options struct {
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
	Address string `json:"address"` // 登记处自身账户，claim 的 verifying_contract 指向它

	Creator     string `json:"creator"`      // 部署者，获得 DefaultAdmin/ClaimIssuer/Minter
	Minter      string `json:"minter"`       // 额外的铸造者（通常是网关地址）
	ClaimIssuer string `json:"claim_issuer"` // 额外的凭证签发者

	IsOpenMint   bool `json:"is_open_mint"`
	IsSingleMint bool `json:"is_single_mint"`
	IsTradable   bool `json:"is_tradable"`

	ChainID string `json:"chain_id"`
}

// Config 登记处配置实现
type Config struct {
	options *Options
}

// New 创建登记处配置，用户配置覆盖默认值
func New(userConfig *types.UserRegistryConfig) *Config {
	options := createDefaultOptions()

	if userConfig != nil {
		if userConfig.Name != nil {
			options.Name = *userConfig.Name
		}
		if userConfig.Symbol != nil {
			options.Symbol = *userConfig.Symbol
		}
		if userConfig.Address != nil {
			options.Address = *userConfig.Address
		}
		if userConfig.Creator != nil {
			options.Creator = *userConfig.Creator
		}
		if userConfig.Minter != nil {
			options.Minter = *userConfig.Minter
		}
		if userConfig.ClaimIssuer != nil {
			options.ClaimIssuer = *userConfig.ClaimIssuer
		}
		if userConfig.IsOpenMint != nil {
			options.IsOpenMint = *userConfig.IsOpenMint
		}
		if userConfig.IsSingleMint != nil {
			options.IsSingleMint = *userConfig.IsSingleMint
		}
		if userConfig.IsTradable != nil {
			options.IsTradable = *userConfig.IsTradable
		}
		if userConfig.ChainID != nil {
			options.ChainID = *userConfig.ChainID
		}
	}

	return &Config{options: options}
}

// GetOptions 获取完整的实例化选项
func (c *Config) GetOptions() *Options { return c.options }
