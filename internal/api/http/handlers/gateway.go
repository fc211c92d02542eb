// Package handlers 提供HTTP API处理器
//
// gateway.go 实现凭证承兑网关的执行与查询端点
package handlers

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/membria/v1/pkg/interfaces/gateway"
	"github.com/membria/v1/pkg/interfaces/infrastructure/log"
	"github.com/membria/v1/pkg/types"
)

// GatewayHandlers 承兑网关API处理器
type GatewayHandlers struct {
	gateway gateway.Gateway
	logger  log.Logger
}

// NewGatewayHandlers 创建承兑网关API处理器
func NewGatewayHandlers(gw gateway.Gateway, logger log.Logger) *GatewayHandlers {
	return &GatewayHandlers{
		gateway: gw,
		logger:  logger,
	}
}

// RegisterRoutes 注册承兑网关路由
func (h *GatewayHandlers) RegisterRoutes(v1 *gin.RouterGroup) {
	gw := v1.Group("/gateway")

	gw.POST("/mint-with-claim", h.MintWithClaim)
	gw.POST("/verify-sign", h.VerifySign)
	gw.POST("/treasury", h.SetTreasury)
	gw.POST("/roles/grant", h.GrantRole)
	gw.POST("/roles/revoke", h.RevokeRole)

	gw.GET("/treasury", h.Treasury)
	gw.GET("/roles/:account/:role", h.HasRole)
}

// ClaimRequest 承兑请求
//
// Signature 为 64 字节紧凑签名的十六进制表示，RecoveryByte 取 0-3。
type ClaimRequest struct {
	Caller       string             `json:"caller" binding:"required"`
	Message      types.ClaimMessage `json:"message" binding:"required"`
	Signature    string             `json:"signature" binding:"required"`
	RecoveryByte byte               `json:"recovery_byte"`
}

// MintWithClaim 执行完整承兑流程
func (h *GatewayHandlers) MintWithClaim(c *gin.Context) {
	var req ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	signature, err := hex.DecodeString(req.Signature)
	if err != nil {
		respondBadRequest(c, fmt.Errorf("签名不是合法的十六进制: %w", err))
		return
	}

	receipt, err := h.gateway.MintWithClaim(c.Request.Context(), req.Caller, req.Message, signature, req.RecoveryByte)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondOK(c, receipt)
}

// VerifySignRequest 只读验签请求
type VerifySignRequest struct {
	Message      types.ClaimMessage `json:"message" binding:"required"`
	Signature    string             `json:"signature" binding:"required"`
	RecoveryByte byte               `json:"recovery_byte"`
}

// VerifySign 只读验签：恢复公钥并返回规范摘要
func (h *GatewayHandlers) VerifySign(c *gin.Context) {
	var req VerifySignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	signature, err := hex.DecodeString(req.Signature)
	if err != nil {
		respondBadRequest(c, fmt.Errorf("签名不是合法的十六进制: %w", err))
		return
	}

	resp, err := h.gateway.VerifySign(c.Request.Context(), req.Message, signature, req.RecoveryByte)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondOK(c, gin.H{
		"value": hex.EncodeToString(resp.Value),
		"hash":  resp.Hash,
	})
}

// TreasuryRequest 资金库变更请求
type TreasuryRequest struct {
	Caller  string `json:"caller" binding:"required"`
	Address string `json:"address" binding:"required"`
}

// SetTreasury 修改手续费接收账户
func (h *GatewayHandlers) SetTreasury(c *gin.Context) {
	var req TreasuryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	if err := h.gateway.SetTreasury(c.Request.Context(), req.Caller, req.Address); err != nil {
		respondDomainError(c, err)
		return
	}
	respondOK(c, gin.H{"treasury": req.Address})
}

// Treasury 查询当前手续费接收账户
func (h *GatewayHandlers) Treasury(c *gin.Context) {
	treasury, err := h.gateway.Treasury(c.Request.Context())
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondOK(c, gin.H{"treasury": treasury})
}

// GrantRole 授予网关本地角色
func (h *GatewayHandlers) GrantRole(c *gin.Context) {
	h.updateRole(c, h.gateway.GrantRole)
}

// RevokeRole 撤销网关本地角色
func (h *GatewayHandlers) RevokeRole(c *gin.Context) {
	h.updateRole(c, h.gateway.RevokeRole)
}

func (h *GatewayHandlers) updateRole(c *gin.Context, apply func(ctx context.Context, caller, account string, role types.Role) error) {
	var req RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	role, err := types.ParseRole(req.Role)
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	if err := apply(c.Request.Context(), req.Caller, req.Account, role); err != nil {
		respondDomainError(c, err)
		return
	}
	respondOK(c, gin.H{"account": req.Account, "role": req.Role})
}

// HasRole 查询网关本地角色
func (h *GatewayHandlers) HasRole(c *gin.Context) {
	role, err := types.ParseRole(c.Param("role"))
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	has, err := h.gateway.HasRole(c.Request.Context(), c.Param("account"), role)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondOK(c, gin.H{"has_role": has})
}
