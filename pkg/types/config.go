package types

// 用户配置结构
//
// 这些结构只承载用户在配置文件里显式写出的字段，nil 表示未配置、
// 使用各 config 包的默认值。

// UserStorageConfig 存储相关的用户配置
type UserStorageConfig struct {
	DataRoot *string `json:"data_root,omitempty"`
}

// UserLogConfig 日志相关的用户配置
type UserLogConfig struct {
	Level      *string `json:"level,omitempty"`
	OutputPath *string `json:"output_path,omitempty"`
	Console    *bool   `json:"console,omitempty"`
}

// UserClockConfig 时钟相关的用户配置
type UserClockConfig struct {
	Source     *string  `json:"source,omitempty"` // system | ntp
	NTPServers []string `json:"ntp_servers,omitempty"`
}

// UserRegistryConfig 会员凭证登记处的实例化配置
type UserRegistryConfig struct {
	Name        *string `json:"name,omitempty"`
	Symbol      *string `json:"symbol,omitempty"`
	Address     *string `json:"address,omitempty"` // 登记处自身账户，claim 的 verifying_contract 指向它
	Creator     *string `json:"creator,omitempty"`
	Minter      *string `json:"minter,omitempty"`
	ClaimIssuer *string `json:"claim_issuer,omitempty"`

	IsOpenMint   *bool `json:"is_open_mint,omitempty"`
	IsSingleMint *bool `json:"is_single_mint,omitempty"`
	IsTradable   *bool `json:"is_tradable,omitempty"`

	ChainID *string `json:"chain_id,omitempty"`
}

// UserGatewayConfig 凭证网关的实例化配置
type UserGatewayConfig struct {
	Creator  *string `json:"creator,omitempty"`
	Treasury *string `json:"treasury,omitempty"`
	Address  *string `json:"address,omitempty"` // 网关自身账户，作为出站铸造的调用方
}

// UserAPIConfig HTTP API 的用户配置
type UserAPIConfig struct {
	Host *string `json:"host,omitempty"`
	Port *int    `json:"port,omitempty"`
}

// UserConfig 顶层用户配置
type UserConfig struct {
	Storage  *UserStorageConfig  `json:"storage,omitempty"`
	Log      *UserLogConfig      `json:"log,omitempty"`
	Clock    *UserClockConfig    `json:"clock,omitempty"`
	Registry *UserRegistryConfig `json:"registry,omitempty"`
	Gateway  *UserGatewayConfig  `json:"gateway,omitempty"`
	API      *UserAPIConfig      `json:"api,omitempty"`
}
