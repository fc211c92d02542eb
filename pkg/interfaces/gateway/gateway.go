// Package gateway 定义凭证承兑网关的应用接口
//
// 网关不直接触碰登记处内部状态：签发者角色查询与代铸造都通过
// MembershipClient 以显式的出站消息完成。
package gateway

import (
	"context"
	"encoding/json"

	"github.com/membria/v1/pkg/types"
)

// VerifySignResponse 只读验签查询的结果
//
// Value 是恢复出的压缩公钥字节，Hash 是规范摘要的十六进制表示。
type VerifySignResponse struct {
	Value []byte `json:"value"`
	Hash  string `json:"hash"`
}

// MintReceipt 一次成功承兑后的回执
type MintReceipt struct {
	TokenID  string     `json:"token_id"`
	Owner    string     `json:"owner"`
	Treasury string     `json:"treasury"`
	Fee      types.Coin `json:"fee"`
}

// Gateway 凭证承兑网关
type Gateway interface {
	// MintWithClaim 执行完整承兑流程：验签名、查角色、防重放，
	// 成功后发出代铸造与手续费划转两个出站效果（要么都生效要么都不生效）
	MintWithClaim(ctx context.Context, caller string, msg types.ClaimMessage, signature []byte, recoveryByte byte) (*MintReceipt, error)

	// VerifySign 只读验签：恢复公钥并返回规范摘要，不改任何状态
	VerifySign(ctx context.Context, msg types.ClaimMessage, signature []byte, recoveryByte byte) (VerifySignResponse, error)

	// SetTreasury 修改手续费接收账户（仅 DefaultAdmin）
	SetTreasury(ctx context.Context, caller, address string) error

	// Treasury 查询当前手续费接收账户
	Treasury(ctx context.Context) (string, error)

	// GrantRole 授予网关本地角色（仅 DefaultAdmin）
	GrantRole(ctx context.Context, caller, account string, role types.Role) error

	// RevokeRole 撤销网关本地角色（仅 DefaultAdmin）
	RevokeRole(ctx context.Context, caller, account string, role types.Role) error

	// HasRole 查询网关本地角色
	HasRole(ctx context.Context, account string, role types.Role) (bool, error)
}

// MembershipClient 出站的登记处协作方接口
//
// 任何实现了 HasRole 与 Mint 的登记处合约都可以作为 verifying_contract。
type MembershipClient interface {
	// HasRole 查询远端登记处上某地址是否持有角色
	HasRole(ctx context.Context, contractAddr, account string, role types.Role) (bool, error)

	// Mint 向远端登记处发起代铸造，返回新 token id
	Mint(ctx context.Context, contractAddr, caller, owner, tokenURI string, extension json.RawMessage) (string, error)
}

// BankService 资金划转服务（手续费效果的执行方）
type BankService interface {
	// Send 从 from 向 to 划转金额；余额不足返回错误
	Send(ctx context.Context, from, to string, amount types.Coin) error

	// Deposit 向账户充值（入金入口，测试与运营工具使用）
	Deposit(ctx context.Context, account string, amount types.Coin) error

	// Balance 查询账户某币种余额
	Balance(ctx context.Context, account, denom string) (uint64, error)
}
