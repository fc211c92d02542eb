package types

// Approval 单个授权条目
//
// 同一 (token, spender) 最多存在一条；新的授权替换旧的（retain-then-push），
// 不允许重复条目。
type Approval struct {
	Spender string     `json:"spender"`
	Expires Expiration `json:"expires"`
}

// IsExpired 判断授权在给定块上下文中是否已过期
func (a Approval) IsExpired(block BlockInfo) bool {
	return a.Expires.IsExpired(block)
}

// TokenInfo 会员凭证记录
//
// Extension 是调用方自定义的不透明负载，核心逻辑从不解析它。
type TokenInfo[T any] struct {
	Owner     string     `json:"owner"`
	Approvals []Approval `json:"approvals"`

	TokenURI string `json:"token_uri,omitempty"`

	Extension T `json:"extension"`
}

// ContractInfo 合约级别的固定信息
type ContractInfo struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}
