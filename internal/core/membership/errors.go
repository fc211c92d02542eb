package membership

import "errors"

// 登记处错误分类：鉴权类、状态类与底层基础设施错误。
// 所有错误都是终态，不做任何自动重试。
var (
	// ErrUnauthorized 调用者缺少所需角色
	ErrUnauthorized = errors.New("unauthorized: 调用者缺少所需角色")

	// ErrNotOwner 调用者既不是所有者也没有有效授权
	ErrNotOwner = errors.New("not owner: 调用者无权操作该凭证")

	// ErrBlacklisted 调用者或所有者在黑名单中
	ErrBlacklisted = errors.New("blacklisted: 账户已被列入黑名单")

	// ErrClaimed 账户已经铸造过，或发生了防御性的 id 冲突
	ErrClaimed = errors.New("claimed: 已铸造")

	// ErrExpired 授权的过期时间在当前区块已过期
	ErrExpired = errors.New("expired: 过期时间早于当前区块")

	// ErrSoulbound 不可交易模式下禁止转移
	ErrSoulbound = errors.New("soulbound: 凭证不可转移")

	// ErrTokenNotFound 凭证不存在
	ErrTokenNotFound = errors.New("token not found: 凭证不存在")

	// ErrApprovalNotFound 授权不存在或已过期
	ErrApprovalNotFound = errors.New("approval not found: 授权不存在")

	// ErrNoTokens 该账户名下没有凭证
	ErrNoTokens = errors.New("no tokens: 该账户名下没有凭证")

	// ErrInvalidAddress 地址校验失败
	ErrInvalidAddress = errors.New("invalid address: 地址格式无效")
)
