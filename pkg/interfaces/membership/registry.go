// Package membership 定义会员凭证登记处的应用接口
//
// 接口层的 extension 统一为不透明的 JSON 负载；核心实现是泛型的，
// 在装配时以 json.RawMessage 实例化。
package membership

import (
	"context"
	"encoding/json"

	"github.com/membria/v1/pkg/types"
)

// OwnerOfResponse 所有权查询结果
type OwnerOfResponse struct {
	Owner     string           `json:"owner"`
	Approvals []types.Approval `json:"approvals"`
}

// NFTInfoResponse 凭证元数据查询结果
type NFTInfoResponse struct {
	TokenURI  string          `json:"token_uri,omitempty"`
	Extension json.RawMessage `json:"extension"`
}

// AllNFTInfoResponse 所有权 + 元数据的组合查询结果
type AllNFTInfoResponse struct {
	Access OwnerOfResponse `json:"access"`
	Info   NFTInfoResponse `json:"info"`
}

// TokenDetail 批量查询中的单条凭证明细
type TokenDetail struct {
	TokenID string                           `json:"token_id"`
	Token   types.TokenInfo[json.RawMessage] `json:"token"`
}

// Registry 会员凭证登记处
//
// 所有执行操作以 caller 为鉴权主体；错误都是终态，调用方自行决定是否重新提交。
type Registry interface {
	// ==================== 执行操作 ====================

	// Mint 铸造一枚凭证，返回新分配的 token id
	Mint(ctx context.Context, caller, owner, tokenURI string, extension json.RawMessage) (string, error)

	// TransferNFT 转移凭证所有权；成功后授权列表被清空
	TransferNFT(ctx context.Context, caller, recipient, tokenID string) error

	// SendNFT 转移凭证到合约地址并附带一条接收消息记录
	SendNFT(ctx context.Context, caller, contract, tokenID string, msg json.RawMessage) error

	// Burn 永久销毁凭证；soulbound 模式下依然允许
	Burn(ctx context.Context, caller, tokenID string) error

	// Approve 为单个 spender 设置授权，替换该 spender 既有授权
	Approve(ctx context.Context, caller, spender, tokenID string, expires types.Expiration) error

	// Revoke 撤销单个 spender 的授权；不存在时不报错
	Revoke(ctx context.Context, caller, spender, tokenID string) error

	// ApproveAll 为 operator 设置全量授权
	ApproveAll(ctx context.Context, caller, operator string, expires types.Expiration) error

	// RevokeAll 删除 operator 的全量授权条目
	RevokeAll(ctx context.Context, caller, operator string) error

	// GrantRole 授予角色（仅 DefaultAdmin）
	GrantRole(ctx context.Context, caller, account string, role types.Role) error

	// RevokeRole 撤销角色（仅 DefaultAdmin）
	RevokeRole(ctx context.Context, caller, account string, role types.Role) error

	// SetOpenMint 设置开放铸造开关（仅 DefaultAdmin）
	SetOpenMint(ctx context.Context, caller string, value bool) error

	// SetSingleMint 设置单次铸造开关（仅 DefaultAdmin）
	SetSingleMint(ctx context.Context, caller string, value bool) error

	// SetTradable 设置可交易开关（仅 DefaultAdmin）
	SetTradable(ctx context.Context, caller string, value bool) error

	// SetHasMinted 直接改写 claim 标记（仅 DefaultAdmin 的逃生通道）
	SetHasMinted(ctx context.Context, caller, account string, value bool) error

	// ==================== 查询操作 ====================

	ContractInfo(ctx context.Context) (types.ContractInfo, error)
	Creator(ctx context.Context) (string, error)
	NumTokens(ctx context.Context) (uint64, error)

	OwnerOf(ctx context.Context, tokenID string, includeExpired bool) (OwnerOfResponse, error)
	NFTInfo(ctx context.Context, tokenID string) (NFTInfoResponse, error)
	AllNFTInfo(ctx context.Context, tokenID string, includeExpired bool) (AllNFTInfoResponse, error)

	Approval(ctx context.Context, tokenID, spender string, includeExpired bool) (types.Approval, error)
	Approvals(ctx context.Context, tokenID string, includeExpired bool) ([]types.Approval, error)
	Operator(ctx context.Context, owner, operator string, includeExpired bool) (types.Approval, error)
	Operators(ctx context.Context, owner string, includeExpired bool, startAfter string, limit uint32) ([]types.Approval, error)

	Tokens(ctx context.Context, owner, startAfter string, limit uint32) ([]string, error)
	AllTokens(ctx context.Context, startAfter string, limit uint32) ([]string, error)
	TokenDetailsBulk(ctx context.Context, startAfter string, limit uint32) ([]TokenDetail, error)
	TokensForOwner(ctx context.Context, owner string) ([]string, error)
	ActiveTokenID(ctx context.Context, owner string) (string, error)

	HasRole(ctx context.Context, account string, role types.Role) (bool, error)
	HasMinted(ctx context.Context, account string) (bool, error)
	IsOpenMint(ctx context.Context) (bool, error)
	IsSingleMint(ctx context.Context) (bool, error)
	IsTradable(ctx context.Context) (bool, error)
}
