// Package handlers 提供HTTP API处理器
//
// bank.go 实现余额台账的入金与查询端点
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/membria/v1/pkg/interfaces/gateway"
	"github.com/membria/v1/pkg/interfaces/infrastructure/log"
	"github.com/membria/v1/pkg/types"
)

// BankHandlers 余额台账API处理器
type BankHandlers struct {
	bank   gateway.BankService
	logger log.Logger
}

// NewBankHandlers 创建余额台账API处理器
func NewBankHandlers(bank gateway.BankService, logger log.Logger) *BankHandlers {
	return &BankHandlers{
		bank:   bank,
		logger: logger,
	}
}

// RegisterRoutes 注册余额台账路由
func (h *BankHandlers) RegisterRoutes(v1 *gin.RouterGroup) {
	bank := v1.Group("/bank")

	bank.POST("/deposit", h.Deposit)
	bank.POST("/send", h.Send)
	bank.GET("/balance/:account/:denom", h.Balance)
}

// DepositRequest 入金请求
type DepositRequest struct {
	Account string     `json:"account" binding:"required"`
	Amount  types.Coin `json:"amount" binding:"required"`
}

// Deposit 向账户充值
func (h *BankHandlers) Deposit(c *gin.Context) {
	var req DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	if err := req.Amount.Validate(); err != nil {
		respondBadRequest(c, err)
		return
	}

	if err := h.bank.Deposit(c.Request.Context(), req.Account, req.Amount); err != nil {
		respondDomainError(c, err)
		return
	}
	respondOK(c, gin.H{"account": req.Account, "amount": req.Amount})
}

// BankSendRequest 划转请求
type BankSendRequest struct {
	From   string     `json:"from" binding:"required"`
	To     string     `json:"to" binding:"required"`
	Amount types.Coin `json:"amount" binding:"required"`
}

// Send 在两个账户之间划转
func (h *BankHandlers) Send(c *gin.Context) {
	var req BankSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	if err := req.Amount.Validate(); err != nil {
		respondBadRequest(c, err)
		return
	}

	if err := h.bank.Send(c.Request.Context(), req.From, req.To, req.Amount); err != nil {
		respondDomainError(c, err)
		return
	}
	respondOK(c, gin.H{"from": req.From, "to": req.To, "amount": req.Amount})
}

// Balance 查询账户某币种余额
func (h *BankHandlers) Balance(c *gin.Context) {
	balance, err := h.bank.Balance(c.Request.Context(), c.Param("account"), c.Param("denom"))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondOK(c, gin.H{
		"account": c.Param("account"),
		"denom":   c.Param("denom"),
		"balance": balance,
	})
}
