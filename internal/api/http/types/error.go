// Package types provides HTTP error type definitions.
package types

// ErrorResponse 统一错误响应格式
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail 错误详情
type ErrorDetail struct {
	Code      string      `json:"code"`                // 错误码
	Message   string      `json:"message"`             // 错误消息
	Details   interface{} `json:"details,omitempty"`   // 详细信息
	RequestID string      `json:"requestId,omitempty"` // 请求ID
}

// 登记处/网关错误码常量
const (
	// 通用错误码（400-499）
	ErrInvalidArgument  = "INVALID_ARGUMENT"
	ErrPermissionDenied = "PERMISSION_DENIED"
	ErrNotFound         = "NOT_FOUND"

	// 登记处错误码（1000-1099）
	ErrTokenNotFound    = "TOKEN_NOT_FOUND"
	ErrApprovalNotFound = "APPROVAL_NOT_FOUND"
	ErrNoTokens         = "NO_TOKENS"
	ErrNotOwner         = "NOT_OWNER"
	ErrBlacklisted      = "BLACKLISTED"
	ErrAlreadyClaimed   = "ALREADY_CLAIMED"
	ErrSoulbound        = "SOULBOUND"
	ErrExpired          = "EXPIRED"
	ErrInvalidAddress   = "INVALID_ADDRESS"

	// 承兑错误码（2000-2099）
	ErrClaimRejected     = "CLAIM_REJECTED"
	ErrClaimMalformed    = "CLAIM_MALFORMED"
	ErrNotReceiver       = "NOT_RECEIVER"
	ErrInsufficientFunds = "INSUFFICIENT_FUNDS"
	ErrTreasuryNotSet    = "TREASURY_NOT_SET"

	// 服务器错误码（500-599）
	ErrInternal = "INTERNAL"
)

// NewErrorResponse 创建错误响应
func NewErrorResponse(code, message string, details interface{}) *ErrorResponse {
	return &ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

// WithRequestID 添加请求ID
func (e *ErrorResponse) WithRequestID(requestID string) *ErrorResponse {
	e.Error.RequestID = requestID
	return e
}
