package types

import "fmt"

// Role 会员体系中的权限角色
//
// 角色之间没有任何继承关系：持有 DefaultAdmin 不会隐式满足其他角色检查，
// 每个鉴权点都必须显式检查自己需要的角色。
type Role string

const (
	// RoleDefaultAdmin 管理员角色，可以授予/撤销角色、修改策略开关
	RoleDefaultAdmin Role = "DefaultAdmin"
	// RoleClaimIssuer 凭证签发者角色，签名的 claim 才会被网关承兑
	RoleClaimIssuer Role = "ClaimIssuer"
	// RoleMinter 铸造者角色，open_mint 关闭时只有该角色可以铸造
	RoleMinter Role = "Minter"
	// RoleBlacklisted 黑名单角色，禁止铸造与转移
	RoleBlacklisted Role = "Blacklisted"
)

// StorageKey 返回角色在存储中的短键
//
// 与链上合约保持一致的稳定短字符串，不是自由文本。
// 角色集合是封闭的，外部输入先过 ParseRole；未知角色原样返回标签，
// 不会与任何已知短键冲突。
func (r Role) StorageKey() string {
	switch r {
	case RoleDefaultAdmin:
		return "1"
	case RoleClaimIssuer:
		return "2"
	case RoleMinter:
		return "3"
	case RoleBlacklisted:
		return "4"
	default:
		return string(r)
	}
}

// ParseRole 将外部输入解析为角色
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleDefaultAdmin, RoleClaimIssuer, RoleMinter, RoleBlacklisted:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role: %q", s)
	}
}
