// Package gateway 实现凭证承兑网关
//
// 网关校验链下签发的 claim，验证通过后发出两个出站效果：
// 向 verifying_contract 代铸造一枚凭证，并把 claim 的手续费
// 划转到资金库。两个效果要么都生效，要么连同重放标记一起回滚。
package gateway

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	gatewayintf "github.com/membria/v1/pkg/interfaces/gateway"
	cryptointf "github.com/membria/v1/pkg/interfaces/infrastructure/crypto"
	infraEvent "github.com/membria/v1/pkg/interfaces/infrastructure/event"
	"github.com/membria/v1/pkg/interfaces/infrastructure/log"
	"github.com/membria/v1/pkg/interfaces/infrastructure/storage"
	"github.com/membria/v1/pkg/types"
)

// badger 键空间布局
const (
	gwKeyPrefix = "gateway:"

	gwKeyTreasury    = gwKeyPrefix + "treasury"
	gwKeyRolePrefix  = gwKeyPrefix + "role:"   // + address + ":" + role_key → "1"/"0"
	gwKeyClaimPrefix = gwKeyPrefix + "replay:" // + hex(signature) → "1"
)

// Service 承兑网关核心实现
//
// 重放标记以签名字节为键：同一内容换一个签名仍然是新 claim，
// 同一签名永远只能消费一次。
type Service struct {
	mu sync.Mutex

	selfAddr string // 网关自身账户，出站铸造以它为调用方
	treasury string
	roles    map[string]map[string]bool // address → role_key → bool
	replayed map[string]bool            // 重放存储键（gateway:replay:hex(signature)）→ 已消费

	store   storage.KVStore
	hasher  cryptointf.HashManager
	signer  cryptointf.SignatureManager
	addr    cryptointf.AddressManager
	members gatewayintf.MembershipClient
	bank    gatewayintf.BankService
	events  infraEvent.EventBus
	logger  log.Logger
}

var _ gatewayintf.Gateway = (*Service)(nil)

// ServiceOptions 网关实例化参数
type ServiceOptions struct {
	Creator  string // 部署者，获得 DefaultAdmin
	Treasury string // 手续费接收账户
	Address  string // 网关自身账户，登记处侧应授予它 Minter
}

// NewService 创建并恢复网关
func NewService(
	ctx context.Context,
	store storage.KVStore,
	hasher cryptointf.HashManager,
	signer cryptointf.SignatureManager,
	addr cryptointf.AddressManager,
	members gatewayintf.MembershipClient,
	bank gatewayintf.BankService,
	events infraEvent.EventBus,
	logger log.Logger,
	opts ServiceOptions,
) (*Service, error) {
	s := &Service{
		selfAddr: opts.Address,
		roles:    make(map[string]map[string]bool),
		replayed: make(map[string]bool),
		store:    store,
		hasher:   hasher,
		signer:   signer,
		addr:     addr,
		members:  members,
		bank:     bank,
		events:   events,
		logger:   logger,
	}

	existing, err := store.Exists(ctx, []byte(gwKeyTreasury))
	if err != nil {
		return nil, fmt.Errorf("检查网关状态失败: %w", err)
	}
	if existing {
		if err := s.rehydrate(ctx); err != nil {
			return nil, fmt.Errorf("恢复网关状态失败: %w", err)
		}
		if logger != nil {
			logger.Infof("网关状态已恢复: treasury=%s replayed=%d", s.treasury, len(s.replayed))
		}
		return s, nil
	}

	if err := s.instantiate(ctx, opts); err != nil {
		return nil, fmt.Errorf("初始化网关失败: %w", err)
	}
	if logger != nil {
		logger.Infof("网关已初始化: creator=%s treasury=%s", opts.Creator, opts.Treasury)
	}
	return s, nil
}

func (s *Service) instantiate(ctx context.Context, opts ServiceOptions) error {
	if opts.Creator == "" {
		return fmt.Errorf("creator 不能为空")
	}
	if opts.Treasury == "" {
		return ErrTreasuryNotSet
	}
	if err := s.addr.ValidateAddress(opts.Treasury); err != nil {
		return fmt.Errorf("资金库地址无效: %w", err)
	}

	adminKey := roleStorageKey(opts.Creator, types.RoleDefaultAdmin)
	err := s.store.RunInTransaction(ctx, func(txn storage.Transaction) error {
		if err := txn.Set([]byte(gwKeyTreasury), []byte(opts.Treasury)); err != nil {
			return err
		}
		return txn.Set([]byte(adminKey), []byte("1"))
	})
	if err != nil {
		return err
	}

	s.treasury = opts.Treasury
	s.setRoleMem(opts.Creator, types.RoleDefaultAdmin, true)
	return nil
}

func (s *Service) rehydrate(ctx context.Context) error {
	entries, err := s.store.PrefixScan(ctx, []byte(gwKeyPrefix))
	if err != nil {
		return err
	}
	for key, value := range entries {
		switch {
		case key == gwKeyTreasury:
			s.treasury = string(value)
		case len(key) > len(gwKeyRolePrefix) && key[:len(gwKeyRolePrefix)] == gwKeyRolePrefix:
			rest := key[len(gwKeyRolePrefix):]
			idx := lastColon(rest)
			if idx < 0 || string(value) != "1" {
				continue
			}
			account, tag := rest[:idx], rest[idx+1:]
			if s.roles[account] == nil {
				s.roles[account] = make(map[string]bool)
			}
			s.roles[account][tag] = true
		case len(key) > len(gwKeyClaimPrefix) && key[:len(gwKeyClaimPrefix)] == gwKeyClaimPrefix:
			// 内存表与存储使用同一把完整键，重建时不剥前缀
			s.replayed[key] = string(value) == "1"
		}
	}
	return nil
}

func lastColon(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == ':' {
			return i
		}
	}
	return -1
}

func roleStorageKey(account string, role types.Role) string {
	return gwKeyRolePrefix + account + ":" + role.StorageKey()
}

func replayStorageKey(signature []byte) string {
	return gwKeyClaimPrefix + hex.EncodeToString(signature)
}

// ==================== 承兑 ====================

// MintWithClaim 完整承兑流程
//
// 决策顺序：三项检查（无短路）→ 接收者一致性 → 标记重放 →
// 两个出站效果。任一效果失败时撤销重放标记，整次调用等同
// 未发生。
func (s *Service) MintWithClaim(ctx context.Context, caller string, msg types.ClaimMessage, signature []byte, recoveryByte byte) (*gatewayintf.MintReceipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	isDuplicate, isSignValid, hasRole, err := s.validateClaim(ctx, msg, signature, recoveryByte)
	if err != nil {
		return nil, err
	}

	if isDuplicate || !isSignValid || !hasRole {
		return nil, &VerificationFailure{
			IsDuplicate: isDuplicate,
			IsSignValid: isSignValid,
			HasRole:     hasRole,
		}
	}

	if msg.To != caller {
		return nil, ErrNotReceiver
	}

	if s.treasury == "" {
		return nil, ErrTreasuryNotSet
	}
	treasury := s.treasury

	// 先落重放标记：任一效果失败时连同标记一起撤销
	replayKey := replayStorageKey(signature)
	if err := s.store.Set(ctx, []byte(replayKey), []byte("1")); err != nil {
		return nil, err
	}
	s.replayed[replayKey] = true

	rollback := func() {
		delete(s.replayed, replayKey)
		if derr := s.store.Delete(ctx, []byte(replayKey)); derr != nil && s.logger != nil {
			s.logger.Errorf("重放标记回滚失败，需人工修复: key=%s err=%v", replayKey, derr)
		}
	}

	// 手续费先行：铸造是不可逆效果，失败的划转可以原路退回，
	// 失败的铸造退不回去
	if err := s.bank.Send(ctx, caller, treasury, msg.Fee); err != nil {
		rollback()
		return nil, fmt.Errorf("手续费划转失败: %w", err)
	}

	tokenID, err := s.members.Mint(ctx, msg.VerifyingContract, s.selfAddr, msg.To, msg.TokenURI, json.RawMessage(nil))
	if err != nil {
		if rerr := s.bank.Send(ctx, treasury, caller, msg.Fee); rerr != nil && s.logger != nil {
			s.logger.Errorf("手续费退款失败，需人工修复: caller=%s fee=%s%s err=%v", caller, msg.Fee.Amount, msg.Fee.Denom, rerr)
		}
		rollback()
		return nil, fmt.Errorf("代铸造失败: %w", err)
	}

	s.publish("mint_with_claim", map[string]string{
		"caller":             caller,
		"owner":              msg.To,
		"token_id":           tokenID,
		"verifying_contract": msg.VerifyingContract,
		"treasury":           treasury,
		"fee":                msg.Fee.Amount + msg.Fee.Denom,
	})
	if s.logger != nil {
		s.logger.Infof("claim 已承兑: owner=%s token_id=%s fee=%s%s", msg.To, tokenID, msg.Fee.Amount, msg.Fee.Denom)
	}

	return &gatewayintf.MintReceipt{
		TokenID:  tokenID,
		Owner:    msg.To,
		Treasury: treasury,
		Fee:      msg.Fee,
	}, nil
}

// VerifySign 只读验签
//
// 返回恢复出的压缩公钥与规范摘要，不触发任何状态变更。
func (s *Service) VerifySign(ctx context.Context, msg types.ClaimMessage, signature []byte, recoveryByte byte) (gatewayintf.VerifySignResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, pubkey, digest, err := s.recoverSigner(msg, signature, recoveryByte)
	if err != nil {
		return gatewayintf.VerifySignResponse{}, err
	}
	return gatewayintf.VerifySignResponse{
		Value: pubkey,
		Hash:  hex.EncodeToString(digest),
	}, nil
}

// isReplayed 调用方必须已持锁
func (s *Service) isReplayed(signature []byte) bool {
	return s.replayed[replayStorageKey(signature)]
}

// ==================== 管理操作 ====================

// SetTreasury 修改资金库地址，仅 DefaultAdmin
func (s *Service) SetTreasury(ctx context.Context, caller, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hasRoleMem(caller, types.RoleDefaultAdmin) {
		return ErrUnauthorized
	}
	if err := s.addr.ValidateAddress(address); err != nil {
		return fmt.Errorf("资金库地址无效: %w", err)
	}

	if err := s.store.Set(ctx, []byte(gwKeyTreasury), []byte(address)); err != nil {
		return err
	}
	s.treasury = address

	s.publish("set_treasury", map[string]string{
		"sender":   caller,
		"treasury": address,
	})
	return nil
}

// Treasury 查询资金库地址
func (s *Service) Treasury(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.treasury, nil
}

// GrantRole 授予网关本地角色，仅 DefaultAdmin
func (s *Service) GrantRole(ctx context.Context, caller, account string, role types.Role) error {
	return s.updateRole(ctx, caller, account, role, true, "grant_role")
}

// RevokeRole 撤销网关本地角色，仅 DefaultAdmin
func (s *Service) RevokeRole(ctx context.Context, caller, account string, role types.Role) error {
	return s.updateRole(ctx, caller, account, role, false, "revoke_role")
}

func (s *Service) updateRole(ctx context.Context, caller, account string, role types.Role, value bool, action string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hasRoleMem(caller, types.RoleDefaultAdmin) {
		return ErrUnauthorized
	}
	if err := s.addr.ValidateAddress(account); err != nil {
		return fmt.Errorf("%v: 账户地址无效", err)
	}

	stored := []byte("0")
	if value {
		stored = []byte("1")
	}
	if err := s.store.Set(ctx, []byte(roleStorageKey(account, role)), stored); err != nil {
		return err
	}
	s.setRoleMem(account, role, value)

	s.publish(action, map[string]string{
		"sender":  caller,
		"account": account,
		"role":    string(role),
		"value":   strconv.FormatBool(value),
	})
	return nil
}

// HasRole 查询网关本地角色，缺失视为 false
func (s *Service) HasRole(ctx context.Context, account string, role types.Role) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasRoleMem(account, role), nil
}

func (s *Service) hasRoleMem(account string, role types.Role) bool {
	return s.roles[account][role.StorageKey()]
}

func (s *Service) setRoleMem(account string, role types.Role, value bool) {
	if value {
		if s.roles[account] == nil {
			s.roles[account] = make(map[string]bool)
		}
		s.roles[account][role.StorageKey()] = true
		return
	}
	if s.roles[account] != nil {
		delete(s.roles[account], role.StorageKey())
	}
}

func (s *Service) publish(action string, attributes map[string]string) {
	if s.events == nil {
		return
	}
	s.events.Publish(infraEvent.TopicGatewayAction, infraEvent.ActionEvent{
		Action:     action,
		Attributes: attributes,
	})
}
