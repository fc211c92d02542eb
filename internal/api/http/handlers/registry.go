// Package handlers 提供HTTP API处理器
//
// registry.go 实现会员凭证登记处的执行与查询端点
package handlers

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/membria/v1/pkg/interfaces/infrastructure/log"
	"github.com/membria/v1/pkg/interfaces/infrastructure/storage"
	"github.com/membria/v1/pkg/interfaces/membership"
	"github.com/membria/v1/pkg/types"
)

// RegistryHandlers 登记处API处理器
type RegistryHandlers struct {
	registry membership.Registry
	cache    *queryCache
	logger   log.Logger
}

// NewRegistryHandlers 创建登记处API处理器
func NewRegistryHandlers(registry membership.Registry, cacheStore storage.MemoryStore, logger log.Logger) *RegistryHandlers {
	return &RegistryHandlers{
		registry: registry,
		cache:    newQueryCache(cacheStore),
		logger:   logger,
	}
}

// RegisterRoutes 注册登记处路由
func (h *RegistryHandlers) RegisterRoutes(v1 *gin.RouterGroup) {
	registry := v1.Group("/registry")

	// 执行操作
	registry.POST("/mint", h.Mint)
	registry.POST("/transfer", h.Transfer)
	registry.POST("/send", h.Send)
	registry.POST("/burn", h.Burn)
	registry.POST("/approve", h.Approve)
	registry.POST("/revoke", h.Revoke)
	registry.POST("/approve-all", h.ApproveAll)
	registry.POST("/revoke-all", h.RevokeAll)
	registry.POST("/roles/grant", h.GrantRole)
	registry.POST("/roles/revoke", h.RevokeRole)
	registry.POST("/flags/open-mint", h.SetOpenMint)
	registry.POST("/flags/single-mint", h.SetSingleMint)
	registry.POST("/flags/tradable", h.SetTradable)
	registry.POST("/claim-mark", h.SetClaimMark)

	// 查询操作
	registry.GET("/contract-info", h.ContractInfo)
	registry.GET("/creator", h.Creator)
	registry.GET("/num-tokens", h.NumTokens)
	registry.GET("/flags", h.Flags)
	registry.GET("/tokens", h.ListTokens)
	registry.GET("/tokens/details", h.TokenDetails)
	registry.GET("/token/:id", h.TokenInfo)
	registry.GET("/token/:id/owner", h.OwnerOf)
	registry.GET("/token/:id/full", h.FullTokenInfo)
	registry.GET("/token/:id/approvals", h.Approvals)
	registry.GET("/token/:id/approvals/:spender", h.Approval)
	registry.GET("/owner/:owner/tokens", h.TokensForOwner)
	registry.GET("/owner/:owner/active-token", h.ActiveTokenID)
	registry.GET("/operators/:owner", h.Operators)
	registry.GET("/operators/:owner/:operator", h.Operator)
	registry.GET("/roles/:account/:role", h.HasRole)
	registry.GET("/claim-mark/:account", h.ClaimMark)
}

// ==================== 执行操作 ====================

// MintRequest 铸造请求
type MintRequest struct {
	Caller    string          `json:"caller" binding:"required"`
	Owner     string          `json:"owner" binding:"required"`
	TokenURI  string          `json:"token_uri"`
	Extension json.RawMessage `json:"extension"`
}

// Mint 铸造一枚凭证
func (h *RegistryHandlers) Mint(c *gin.Context) {
	var req MintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	tokenID, err := h.registry.Mint(c.Request.Context(), req.Caller, req.Owner, req.TokenURI, req.Extension)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondOK(c, gin.H{"token_id": tokenID})
}

// TransferRequest 转移请求
type TransferRequest struct {
	Caller    string `json:"caller" binding:"required"`
	Recipient string `json:"recipient" binding:"required"`
	TokenID   string `json:"token_id" binding:"required"`
}

// Transfer 转移凭证所有权
func (h *RegistryHandlers) Transfer(c *gin.Context) {
	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	if err := h.registry.TransferNFT(c.Request.Context(), req.Caller, req.Recipient, req.TokenID); err != nil {
		respondDomainError(c, err)
		return
	}
	respondOK(c, gin.H{"token_id": req.TokenID, "recipient": req.Recipient})
}

// SendRequest 定向投送请求
type SendRequest struct {
	Caller   string          `json:"caller" binding:"required"`
	Contract string          `json:"contract" binding:"required"`
	TokenID  string          `json:"token_id" binding:"required"`
	Msg      json.RawMessage `json:"msg"`
}

// Send 转移凭证到合约地址
func (h *RegistryHandlers) Send(c *gin.Context) {
	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	if err := h.registry.SendNFT(c.Request.Context(), req.Caller, req.Contract, req.TokenID, req.Msg); err != nil {
		respondDomainError(c, err)
		return
	}
	respondOK(c, gin.H{"token_id": req.TokenID, "contract": req.Contract})
}

// BurnRequest 销毁请求
type BurnRequest struct {
	Caller  string `json:"caller" binding:"required"`
	TokenID string `json:"token_id" binding:"required"`
}

// Burn 永久销毁凭证
func (h *RegistryHandlers) Burn(c *gin.Context) {
	var req BurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	if err := h.registry.Burn(c.Request.Context(), req.Caller, req.TokenID); err != nil {
		respondDomainError(c, err)
		return
	}
	respondOK(c, gin.H{"token_id": req.TokenID})
}

// ApproveRequest 单凭证授权请求
type ApproveRequest struct {
	Caller  string           `json:"caller" binding:"required"`
	Spender string           `json:"spender" binding:"required"`
	TokenID string           `json:"token_id" binding:"required"`
	Expires types.Expiration `json:"expires"`
}

// Approve 为 spender 设置单凭证授权
func (h *RegistryHandlers) Approve(c *gin.Context) {
	var req ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	if err := h.registry.Approve(c.Request.Context(), req.Caller, req.Spender, req.TokenID, req.Expires); err != nil {
		respondDomainError(c, err)
		return
	}
	respondOK(c, gin.H{"token_id": req.TokenID, "spender": req.Spender})
}

// RevokeRequest 撤销授权请求
type RevokeRequest struct {
	Caller  string `json:"caller" binding:"required"`
	Spender string `json:"spender" binding:"required"`
	TokenID string `json:"token_id" binding:"required"`
}

// Revoke 撤销 spender 的单凭证授权
func (h *RegistryHandlers) Revoke(c *gin.Context) {
	var req RevokeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	if err := h.registry.Revoke(c.Request.Context(), req.Caller, req.Spender, req.TokenID); err != nil {
		respondDomainError(c, err)
		return
	}
	respondOK(c, gin.H{"token_id": req.TokenID, "spender": req.Spender})
}

// ApproveAllRequest 全量授权请求
type ApproveAllRequest struct {
	Caller   string           `json:"caller" binding:"required"`
	Operator string           `json:"operator" binding:"required"`
	Expires  types.Expiration `json:"expires"`
}

// ApproveAll 为 operator 设置全量授权
func (h *RegistryHandlers) ApproveAll(c *gin.Context) {
	var req ApproveAllRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	if err := h.registry.ApproveAll(c.Request.Context(), req.Caller, req.Operator, req.Expires); err != nil {
		respondDomainError(c, err)
		return
	}
	respondOK(c, gin.H{"operator": req.Operator})
}

// RevokeAllRequest 撤销全量授权请求
type RevokeAllRequest struct {
	Caller   string `json:"caller" binding:"required"`
	Operator string `json:"operator" binding:"required"`
}

// RevokeAll 删除 operator 的全量授权
func (h *RegistryHandlers) RevokeAll(c *gin.Context) {
	var req RevokeAllRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	if err := h.registry.RevokeAll(c.Request.Context(), req.Caller, req.Operator); err != nil {
		respondDomainError(c, err)
		return
	}
	respondOK(c, gin.H{"operator": req.Operator})
}

// RoleRequest 角色变更请求
type RoleRequest struct {
	Caller  string `json:"caller" binding:"required"`
	Account string `json:"account" binding:"required"`
	Role    string `json:"role" binding:"required"`
}

// GrantRole 授予角色
func (h *RegistryHandlers) GrantRole(c *gin.Context) {
	h.updateRole(c, h.registry.GrantRole)
}

// RevokeRole 撤销角色
func (h *RegistryHandlers) RevokeRole(c *gin.Context) {
	h.updateRole(c, h.registry.RevokeRole)
}

func (h *RegistryHandlers) updateRole(c *gin.Context, apply func(ctx context.Context, caller, account string, role types.Role) error) {
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

// FlagRequest 合约开关变更请求
type FlagRequest struct {
	Caller string `json:"caller" binding:"required"`
	Value  *bool  `json:"value" binding:"required"`
}

// SetOpenMint 设置开放铸造开关
func (h *RegistryHandlers) SetOpenMint(c *gin.Context) {
	h.updateFlag(c, h.registry.SetOpenMint)
}

// SetSingleMint 设置单次铸造开关
func (h *RegistryHandlers) SetSingleMint(c *gin.Context) {
	h.updateFlag(c, h.registry.SetSingleMint)
}

// SetTradable 设置可交易开关
func (h *RegistryHandlers) SetTradable(c *gin.Context) {
	h.updateFlag(c, h.registry.SetTradable)
}

func (h *RegistryHandlers) updateFlag(c *gin.Context, apply func(ctx context.Context, caller string, value bool) error) {
	var req FlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	if err := apply(c.Request.Context(), req.Caller, *req.Value); err != nil {
		respondDomainError(c, err)
		return
	}
	respondOK(c, gin.H{"value": *req.Value})
}

// ClaimMarkRequest claim 标记改写请求
type ClaimMarkRequest struct {
	Caller  string `json:"caller" binding:"required"`
	Account string `json:"account" binding:"required"`
	Value   *bool  `json:"value" binding:"required"`
}

// SetClaimMark 直接改写账户的 claim 标记（管理员逃生通道）
func (h *RegistryHandlers) SetClaimMark(c *gin.Context) {
	var req ClaimMarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	if err := h.registry.SetHasMinted(c.Request.Context(), req.Caller, req.Account, *req.Value); err != nil {
		respondDomainError(c, err)
		return
	}
	respondOK(c, gin.H{"account": req.Account, "value": *req.Value})
}

// ==================== 查询操作 ====================

// ContractInfo 查询合约元数据
func (h *RegistryHandlers) ContractInfo(c *gin.Context) {
	ctx := c.Request.Context()

	var cached types.ContractInfo
	if h.cache.get(ctx, "api:registry:contract-info", &cached) {
		respondOK(c, cached)
		return
	}

	info, err := h.registry.ContractInfo(ctx)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	h.cache.set(ctx, "api:registry:contract-info", info)
	respondOK(c, info)
}

// Creator 查询合约创建者
func (h *RegistryHandlers) Creator(c *gin.Context) {
	creator, err := h.registry.Creator(c.Request.Context())
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondOK(c, gin.H{"creator": creator})
}

// NumTokens 查询累计铸造数量
func (h *RegistryHandlers) NumTokens(c *gin.Context) {
	count, err := h.registry.NumTokens(c.Request.Context())
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondOK(c, gin.H{"count": count})
}

// Flags 查询三个合约开关
func (h *RegistryHandlers) Flags(c *gin.Context) {
	ctx := c.Request.Context()

	openMint, err := h.registry.IsOpenMint(ctx)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	singleMint, err := h.registry.IsSingleMint(ctx)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	tradable, err := h.registry.IsTradable(ctx)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondOK(c, gin.H{"open_mint": openMint, "single_mint": singleMint, "tradable": tradable})
}

// ListTokens 分页列出凭证ID；带 owner 参数时只列出该所有者的凭证
func (h *RegistryHandlers) ListTokens(c *gin.Context) {
	startAfter := c.Query("start_after")
	limit := parseLimit(c)

	var (
		ids []string
		err error
	)
	if owner := c.Query("owner"); owner != "" {
		ids, err = h.registry.Tokens(c.Request.Context(), owner, startAfter, limit)
	} else {
		ids, err = h.registry.AllTokens(c.Request.Context(), startAfter, limit)
	}
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondOK(c, gin.H{"tokens": ids})
}

// TokenDetails 分页列出凭证完整明细
func (h *RegistryHandlers) TokenDetails(c *gin.Context) {
	details, err := h.registry.TokenDetailsBulk(c.Request.Context(), c.Query("start_after"), parseLimit(c))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondOK(c, gin.H{"tokens": details})
}

// TokenInfo 查询凭证元数据
func (h *RegistryHandlers) TokenInfo(c *gin.Context) {
	ctx := c.Request.Context()
	tokenID := c.Param("id")
	cacheKey := "api:registry:nft-info:" + tokenID

	var cached membership.NFTInfoResponse
	if h.cache.get(ctx, cacheKey, &cached) {
		respondOK(c, cached)
		return
	}

	info, err := h.registry.NFTInfo(ctx, tokenID)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	h.cache.set(ctx, cacheKey, info)
	respondOK(c, info)
}

// OwnerOf 查询凭证所有者与授权
func (h *RegistryHandlers) OwnerOf(c *gin.Context) {
	resp, err := h.registry.OwnerOf(c.Request.Context(), c.Param("id"), includeExpired(c))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondOK(c, resp)
}

// FullTokenInfo 查询所有权与元数据的组合
func (h *RegistryHandlers) FullTokenInfo(c *gin.Context) {
	resp, err := h.registry.AllNFTInfo(c.Request.Context(), c.Param("id"), includeExpired(c))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondOK(c, resp)
}

// Approvals 查询凭证的全部授权
func (h *RegistryHandlers) Approvals(c *gin.Context) {
	approvals, err := h.registry.Approvals(c.Request.Context(), c.Param("id"), includeExpired(c))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondOK(c, gin.H{"approvals": approvals})
}

// Approval 查询凭证对单个 spender 的授权
func (h *RegistryHandlers) Approval(c *gin.Context) {
	approval, err := h.registry.Approval(c.Request.Context(), c.Param("id"), c.Param("spender"), includeExpired(c))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondOK(c, gin.H{"approval": approval})
}

// TokensForOwner 查询所有者持有的全部凭证ID
func (h *RegistryHandlers) TokensForOwner(c *gin.Context) {
	ids, err := h.registry.TokensForOwner(c.Request.Context(), c.Param("owner"))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondOK(c, gin.H{"tokens": ids})
}

// ActiveTokenID 查询所有者当前活跃的凭证ID
func (h *RegistryHandlers) ActiveTokenID(c *gin.Context) {
	tokenID, err := h.registry.ActiveTokenID(c.Request.Context(), c.Param("owner"))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondOK(c, gin.H{"token_id": tokenID})
}

// Operators 分页查询所有者授权过的 operator
func (h *RegistryHandlers) Operators(c *gin.Context) {
	approvals, err := h.registry.Operators(c.Request.Context(), c.Param("owner"), includeExpired(c), c.Query("start_after"), parseLimit(c))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondOK(c, gin.H{"operators": approvals})
}

// Operator 查询所有者对单个 operator 的全量授权
func (h *RegistryHandlers) Operator(c *gin.Context) {
	approval, err := h.registry.Operator(c.Request.Context(), c.Param("owner"), c.Param("operator"), includeExpired(c))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondOK(c, gin.H{"approval": approval})
}

// HasRole 查询账户是否持有角色
func (h *RegistryHandlers) HasRole(c *gin.Context) {
	role, err := types.ParseRole(c.Param("role"))
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	has, err := h.registry.HasRole(c.Request.Context(), c.Param("account"), role)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondOK(c, gin.H{"has_role": has})
}

// ClaimMark 查询账户的 claim 标记
func (h *RegistryHandlers) ClaimMark(c *gin.Context) {
	minted, err := h.registry.HasMinted(c.Request.Context(), c.Param("account"))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondOK(c, gin.H{"has_minted": minted})
}

// parseLimit 解析分页大小参数，非法或缺省时交由服务端取默认值
func parseLimit(c *gin.Context) uint32 {
	raw := c.Query("limit")
	if raw == "" {
		return 0
	}
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0
	}
	return uint32(n)
}

// includeExpired 解析 include_expired 查询参数
func includeExpired(c *gin.Context) bool {
	return c.Query("include_expired") == "true"
}
