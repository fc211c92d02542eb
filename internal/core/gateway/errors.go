package gateway

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized 调用者不是网关管理员
	ErrUnauthorized = errors.New("unauthorized: 调用者缺少所需角色")

	// ErrNotReceiver claim 的收款人与调用者不一致
	ErrNotReceiver = errors.New("not receiver: 只有 claim 指定的接收者可以承兑")

	// ErrTreasuryNotSet 资金库未配置
	ErrTreasuryNotSet = errors.New("treasury not set: 资金库地址未配置")
)

// ValidationError 验签流水线的硬错误
//
// 签名格式损坏、公钥恢复失败等属于此类：它不是"三项检查
// 有一项为假"，而是流程根本无法进行。
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("failure %v", e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// VerificationFailure 三项检查未全部通过
//
// 三个布尔量都会填充，调用方可以区分"签名已被使用"、
// "签名人不符"与"签名人没有签发者角色"。
type VerificationFailure struct {
	IsDuplicate bool `json:"is_duplicate"`
	IsSignValid bool `json:"is_sign_valid"`
	HasRole     bool `json:"has_role"`
}

func (e *VerificationFailure) Error() string {
	return fmt.Sprintf("verification failed, Duplicate : %t , SignValid : %t , Has_Role : %t",
		e.IsDuplicate, e.IsSignValid, e.HasRole)
}
