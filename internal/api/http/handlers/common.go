// Package handlers 提供HTTP API处理器
//
// common.go 实现响应封装与领域错误到HTTP状态码的映射
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/membria/v1/internal/api/http/middleware"
	apitypes "github.com/membria/v1/internal/api/http/types"
	"github.com/membria/v1/internal/core/bank"
	"github.com/membria/v1/internal/core/gateway"
	"github.com/membria/v1/internal/core/membership"
)

// respondOK 输出统一成功响应
func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, apitypes.NewSuccessResponse(data).WithRequestID(middleware.GetRequestID(c)))
}

// respondError 输出统一错误响应
func respondError(c *gin.Context, status int, code, message string, details interface{}) {
	c.JSON(status, apitypes.NewErrorResponse(code, message, details).WithRequestID(middleware.GetRequestID(c)))
}

// respondBadRequest 请求体或参数非法
func respondBadRequest(c *gin.Context, err error) {
	respondError(c, http.StatusBadRequest, apitypes.ErrInvalidArgument, err.Error(), nil)
}

// respondDomainError 将领域错误翻译为HTTP错误响应
//
// 校验类失败归入 400，鉴权类失败归入 403，缺失归入 404，
// 状态冲突归入 409；其余视为内部错误。
func respondDomainError(c *gin.Context, err error) {
	var failure *gateway.VerificationFailure
	if errors.As(err, &failure) {
		respondError(c, http.StatusBadRequest, apitypes.ErrClaimRejected, failure.Error(), gin.H{
			"is_duplicate":  failure.IsDuplicate,
			"is_sign_valid": failure.IsSignValid,
			"has_role":      failure.HasRole,
		})
		return
	}

	var validation *gateway.ValidationError
	if errors.As(err, &validation) {
		respondError(c, http.StatusBadRequest, apitypes.ErrClaimMalformed, validation.Error(), nil)
		return
	}

	switch {
	case errors.Is(err, membership.ErrTokenNotFound):
		respondError(c, http.StatusNotFound, apitypes.ErrTokenNotFound, err.Error(), nil)
	case errors.Is(err, membership.ErrApprovalNotFound):
		respondError(c, http.StatusNotFound, apitypes.ErrApprovalNotFound, err.Error(), nil)
	case errors.Is(err, membership.ErrNoTokens):
		respondError(c, http.StatusNotFound, apitypes.ErrNoTokens, err.Error(), nil)
	case errors.Is(err, membership.ErrNotOwner):
		respondError(c, http.StatusForbidden, apitypes.ErrNotOwner, err.Error(), nil)
	case errors.Is(err, membership.ErrBlacklisted):
		respondError(c, http.StatusForbidden, apitypes.ErrBlacklisted, err.Error(), nil)
	case errors.Is(err, membership.ErrUnauthorized), errors.Is(err, gateway.ErrUnauthorized):
		respondError(c, http.StatusForbidden, apitypes.ErrPermissionDenied, err.Error(), nil)
	case errors.Is(err, gateway.ErrNotReceiver):
		respondError(c, http.StatusForbidden, apitypes.ErrNotReceiver, err.Error(), nil)
	case errors.Is(err, membership.ErrClaimed):
		respondError(c, http.StatusConflict, apitypes.ErrAlreadyClaimed, err.Error(), nil)
	case errors.Is(err, membership.ErrSoulbound):
		respondError(c, http.StatusConflict, apitypes.ErrSoulbound, err.Error(), nil)
	case errors.Is(err, gateway.ErrTreasuryNotSet):
		respondError(c, http.StatusConflict, apitypes.ErrTreasuryNotSet, err.Error(), nil)
	case errors.Is(err, membership.ErrExpired):
		respondError(c, http.StatusBadRequest, apitypes.ErrExpired, err.Error(), nil)
	case errors.Is(err, membership.ErrInvalidAddress):
		respondError(c, http.StatusBadRequest, apitypes.ErrInvalidAddress, err.Error(), nil)
	case errors.Is(err, bank.ErrInsufficientFunds):
		respondError(c, http.StatusBadRequest, apitypes.ErrInsufficientFunds, err.Error(), nil)
	default:
		respondError(c, http.StatusInternalServerError, apitypes.ErrInternal, err.Error(), nil)
	}
}
