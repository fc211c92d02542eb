package gateway

func createDefaultOptions() *Options {
	// creator 与 treasury 没有合理默认值，必须由用户配置提供；
	// 留空时网关模块在装配阶段报错而不是带着空账户启动。
	return &Options{}
}
