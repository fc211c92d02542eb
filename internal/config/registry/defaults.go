package registry

// 默认登记处实例化配置
const (
	defaultName    = "Membership Credential"
	defaultSymbol  = "MBR"
	defaultChainID = "membria-local-1"
)

func createDefaultOptions() *Options {
	return &Options{
		Name:    defaultName,
		Symbol:  defaultSymbol,
		ChainID: defaultChainID,

		// 三个策略开关默认全部关闭：仅角色铸造、可重复铸造、soulbound
		IsOpenMint:   false,
		IsSingleMint: false,
		IsTradable:   false,
	}
}
