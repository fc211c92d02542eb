package membership

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/membria/v1/pkg/interfaces/infrastructure/storage"
	"github.com/membria/v1/pkg/types"
)

// ==================== 铸造 ====================

// Mint 铸造一枚凭证
//
// 准入顺序与错误优先级固定：
//  1. 黑名单（owner 或 caller 任一在黑名单 → Blacklisted）
//  2. 铸造权（caller 持 Minter 或开放铸造 → 否则 Unauthorized）
//  3. 单次铸造（single_mint 且 owner 已铸造过 → Claimed）
//
// id 由单调计数器分配，销毁后不回收；计数器冲突属于防御性
// 检查，正常运行不会触发。
func (s *Service[T]) Mint(ctx context.Context, caller, owner, tokenURI string, extension json.RawMessage) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.addrValidate(owner); err != nil {
		return "", err
	}

	if s.hasRole(owner, types.RoleBlacklisted) || s.hasRole(caller, types.RoleBlacklisted) {
		return "", ErrBlacklisted
	}
	if !s.hasRole(caller, types.RoleMinter) && !s.flags.OpenMint {
		return "", ErrUnauthorized
	}
	if s.flags.SingleMint && s.claimMap[owner] {
		return "", ErrClaimed
	}

	next := s.counter + 1
	tokenID := strconv.FormatUint(next, 10)
	if _, exists := s.tokens[tokenID]; exists {
		return "", ErrClaimed
	}

	var ext T
	if len(extension) > 0 {
		if err := json.Unmarshal(extension, &ext); err != nil {
			return "", err
		}
	}
	token := &types.TokenInfo[T]{
		Owner:     owner,
		Approvals: []types.Approval{},
		TokenURI:  tokenURI,
		Extension: ext,
	}

	rec, err := tokenToRecord(token)
	if err != nil {
		return "", err
	}
	recBytes, err := json.Marshal(rec)
	if err != nil {
		return "", err
	}

	err = s.store.RunInTransaction(ctx, func(txn storage.Transaction) error {
		if err := txn.Set([]byte(keyCounter), []byte(tokenID)); err != nil {
			return err
		}
		if err := txn.Set([]byte(tokenKey(tokenID)), recBytes); err != nil {
			return err
		}
		if err := txn.Set([]byte(ownerIdxKey(owner, tokenID)), []byte("1")); err != nil {
			return err
		}
		if err := txn.Set([]byte(claimKey(owner)), []byte("1")); err != nil {
			return err
		}
		return s.bumpHeight(txn)
	})
	if err != nil {
		return "", err
	}

	s.counter = next
	s.height++
	s.tokens[tokenID] = token
	s.insertTokenID(tokenID)
	if s.byOwner[owner] == nil {
		s.byOwner[owner] = make(map[string]struct{})
	}
	s.byOwner[owner][tokenID] = struct{}{}
	s.claimMap[owner] = true

	s.publish("mint", map[string]string{
		"minter":   caller,
		"owner":    owner,
		"token_id": tokenID,
	})
	if s.logger != nil {
		s.logger.Debugf("凭证已铸造: id=%s owner=%s minter=%s", tokenID, owner, caller)
	}
	return tokenID, nil
}

// ==================== 转移与销毁 ====================

// TransferNFT 转移凭证所有权
func (s *Service[T]) TransferNFT(ctx context.Context, caller, recipient, tokenID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.transferLocked(ctx, caller, recipient, tokenID); err != nil {
		return err
	}

	s.publish("transfer_nft", map[string]string{
		"sender":    caller,
		"recipient": recipient,
		"token_id":  tokenID,
	})
	return nil
}

// SendNFT 转移凭证到合约地址并发布接收记录
//
// 接收方消息只随事件带出，本系统不承载合约间投递。
func (s *Service[T]) SendNFT(ctx context.Context, caller, contract, tokenID string, msg json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.transferLocked(ctx, caller, contract, tokenID); err != nil {
		return err
	}

	s.publish("send_nft", map[string]string{
		"sender":    caller,
		"recipient": contract,
		"token_id":  tokenID,
		"msg":       string(msg),
	})
	return nil
}

// transferLocked 所有权转移的公共路径，调用方必须已持锁
func (s *Service[T]) transferLocked(ctx context.Context, caller, recipient, tokenID string) error {
	token, ok := s.tokens[tokenID]
	if !ok {
		return ErrTokenNotFound
	}
	if err := s.addrValidate(recipient); err != nil {
		return err
	}
	if err := s.checkCanSend(caller, token, false); err != nil {
		return err
	}

	prevOwner := token.Owner
	updated := &types.TokenInfo[T]{
		Owner:     recipient,
		Approvals: []types.Approval{},
		TokenURI:  token.TokenURI,
		Extension: token.Extension,
	}

	rec, err := tokenToRecord(updated)
	if err != nil {
		return err
	}
	recBytes, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	err = s.store.RunInTransaction(ctx, func(txn storage.Transaction) error {
		if err := txn.Set([]byte(tokenKey(tokenID)), recBytes); err != nil {
			return err
		}
		if err := txn.Delete([]byte(ownerIdxKey(prevOwner, tokenID))); err != nil {
			return err
		}
		if err := txn.Set([]byte(ownerIdxKey(recipient, tokenID)), []byte("1")); err != nil {
			return err
		}
		return s.bumpHeight(txn)
	})
	if err != nil {
		return err
	}

	s.height++
	s.tokens[tokenID] = updated
	delete(s.byOwner[prevOwner], tokenID)
	if len(s.byOwner[prevOwner]) == 0 {
		delete(s.byOwner, prevOwner)
	}
	if s.byOwner[recipient] == nil {
		s.byOwner[recipient] = make(map[string]struct{})
	}
	s.byOwner[recipient][tokenID] = struct{}{}
	return nil
}

// Burn 永久销毁凭证
//
// 销毁跳过黑名单与可交易检查：soulbound 模式下持有人
// 依然可以退出。claim 标记不清除，single_mint 的判定
// 看"是否铸造过"而非"是否还持有"。
func (s *Service[T]) Burn(ctx context.Context, caller, tokenID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, ok := s.tokens[tokenID]
	if !ok {
		return ErrTokenNotFound
	}
	if err := s.checkCanSend(caller, token, true); err != nil {
		return err
	}

	owner := token.Owner
	err := s.store.RunInTransaction(ctx, func(txn storage.Transaction) error {
		if err := txn.Delete([]byte(tokenKey(tokenID))); err != nil {
			return err
		}
		if err := txn.Delete([]byte(ownerIdxKey(owner, tokenID))); err != nil {
			return err
		}
		return s.bumpHeight(txn)
	})
	if err != nil {
		return err
	}

	s.height++
	delete(s.tokens, tokenID)
	s.removeTokenID(tokenID)
	delete(s.byOwner[owner], tokenID)
	if len(s.byOwner[owner]) == 0 {
		delete(s.byOwner, owner)
	}

	s.publish("burn", map[string]string{
		"sender":   caller,
		"token_id": tokenID,
	})
	return nil
}

// checkCanSend 转移/销毁的授权检查
//
// 优先级：黑名单（销毁豁免）→ 可交易开关（销毁豁免）→
// 所有者 → 有效单凭证授权 → 有效全量授权。
func (s *Service[T]) checkCanSend(caller string, token *types.TokenInfo[T], isBurn bool) error {
	if !isBurn {
		if s.hasRole(caller, types.RoleBlacklisted) || s.hasRole(token.Owner, types.RoleBlacklisted) {
			return ErrBlacklisted
		}
		if !s.flags.Tradable {
			return ErrSoulbound
		}
	}

	if token.Owner == caller {
		return nil
	}

	block := s.block()
	for _, apr := range token.Approvals {
		if apr.Spender == caller && !apr.IsExpired(block) {
			return nil
		}
	}

	if exp, ok := s.operators[token.Owner][caller]; ok && !exp.IsExpired(block) {
		return nil
	}
	return ErrNotOwner
}

// ==================== 授权 ====================

// Approve 为单个 spender 设置授权
//
// 同一 spender 的旧授权被替换而非追加；已过期的过期描述
// 直接拒绝。
func (s *Service[T]) Approve(ctx context.Context, caller, spender, tokenID string, expires types.Expiration) error {
	if err := s.updateApprovals(ctx, caller, spender, tokenID, true, expires); err != nil {
		return err
	}
	s.publish("approve", map[string]string{
		"sender":   caller,
		"spender":  spender,
		"token_id": tokenID,
	})
	return nil
}

// Revoke 撤销单个 spender 的授权；授权不存在时不报错
func (s *Service[T]) Revoke(ctx context.Context, caller, spender, tokenID string) error {
	if err := s.updateApprovals(ctx, caller, spender, tokenID, false, types.Expiration{}); err != nil {
		return err
	}
	s.publish("revoke", map[string]string{
		"sender":   caller,
		"spender":  spender,
		"token_id": tokenID,
	})
	return nil
}

func (s *Service[T]) updateApprovals(ctx context.Context, caller, spender, tokenID string, add bool, expires types.Expiration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, ok := s.tokens[tokenID]
	if !ok {
		return ErrTokenNotFound
	}
	if err := s.addrValidate(spender); err != nil {
		return err
	}
	if err := s.checkCanApprove(caller, token); err != nil {
		return err
	}

	// 先剔除同一 spender 的旧授权，再按需追加
	approvals := make([]types.Approval, 0, len(token.Approvals))
	for _, apr := range token.Approvals {
		if apr.Spender != spender {
			approvals = append(approvals, apr)
		}
	}
	if add {
		if expires.IsExpired(s.block()) {
			return ErrExpired
		}
		approvals = append(approvals, types.Approval{Spender: spender, Expires: expires})
	}

	updated := &types.TokenInfo[T]{
		Owner:     token.Owner,
		Approvals: approvals,
		TokenURI:  token.TokenURI,
		Extension: token.Extension,
	}
	rec, err := tokenToRecord(updated)
	if err != nil {
		return err
	}
	recBytes, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	err = s.store.RunInTransaction(ctx, func(txn storage.Transaction) error {
		if err := txn.Set([]byte(tokenKey(tokenID)), recBytes); err != nil {
			return err
		}
		return s.bumpHeight(txn)
	})
	if err != nil {
		return err
	}

	s.height++
	s.tokens[tokenID] = updated
	return nil
}

// checkCanApprove 授权操作的权限检查：所有者或有效全量授权
func (s *Service[T]) checkCanApprove(caller string, token *types.TokenInfo[T]) error {
	if token.Owner == caller {
		return nil
	}
	if exp, ok := s.operators[token.Owner][caller]; ok && !exp.IsExpired(s.block()) {
		return nil
	}
	return ErrNotOwner
}

// ApproveAll 为 operator 设置全量授权
func (s *Service[T]) ApproveAll(ctx context.Context, caller, operator string, expires types.Expiration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.addrValidate(operator); err != nil {
		return err
	}
	if expires.IsExpired(s.block()) {
		return ErrExpired
	}

	expBytes, err := json.Marshal(expires)
	if err != nil {
		return err
	}
	err = s.store.RunInTransaction(ctx, func(txn storage.Transaction) error {
		if err := txn.Set([]byte(operatorKey(caller, operator)), expBytes); err != nil {
			return err
		}
		return s.bumpHeight(txn)
	})
	if err != nil {
		return err
	}

	s.height++
	if s.operators[caller] == nil {
		s.operators[caller] = make(map[string]types.Expiration)
	}
	s.operators[caller][operator] = expires

	s.publish("approve_all", map[string]string{
		"sender":   caller,
		"operator": operator,
	})
	return nil
}

// RevokeAll 删除 operator 的全量授权条目
//
// 是删除而不是置为过期：删除后的查询视同从未授权。
func (s *Service[T]) RevokeAll(ctx context.Context, caller, operator string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.addrValidate(operator); err != nil {
		return err
	}

	err := s.store.RunInTransaction(ctx, func(txn storage.Transaction) error {
		if err := txn.Delete([]byte(operatorKey(caller, operator))); err != nil {
			return err
		}
		return s.bumpHeight(txn)
	})
	if err != nil {
		return err
	}

	s.height++
	if s.operators[caller] != nil {
		delete(s.operators[caller], operator)
		if len(s.operators[caller]) == 0 {
			delete(s.operators, caller)
		}
	}

	s.publish("revoke_all", map[string]string{
		"sender":   caller,
		"operator": operator,
	})
	return nil
}

// ==================== 角色与策略开关 ====================

// GrantRole 授予角色，仅 DefaultAdmin 可调用
//
// 角色之间没有继承：持有 DefaultAdmin 不意味着通过
// Minter / ClaimIssuer 的检查。
func (s *Service[T]) GrantRole(ctx context.Context, caller, account string, role types.Role) error {
	return s.updateRole(ctx, caller, account, role, true, "grant_role")
}

// RevokeRole 撤销角色，仅 DefaultAdmin 可调用
func (s *Service[T]) RevokeRole(ctx context.Context, caller, account string, role types.Role) error {
	return s.updateRole(ctx, caller, account, role, false, "revoke_role")
}

func (s *Service[T]) updateRole(ctx context.Context, caller, account string, role types.Role, value bool, action string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hasRole(caller, types.RoleDefaultAdmin) {
		return ErrUnauthorized
	}
	if err := s.addrValidate(account); err != nil {
		return err
	}

	stored := []byte("0")
	if value {
		stored = []byte("1")
	}
	err := s.store.RunInTransaction(ctx, func(txn storage.Transaction) error {
		if err := txn.Set([]byte(roleKey(account, role.StorageKey())), stored); err != nil {
			return err
		}
		return s.bumpHeight(txn)
	})
	if err != nil {
		return err
	}

	s.height++
	s.setRoleMem(account, role, value)

	s.publish(action, map[string]string{
		"sender":  caller,
		"account": account,
		"role":    string(role),
	})
	return nil
}

// SetOpenMint 设置开放铸造开关
func (s *Service[T]) SetOpenMint(ctx context.Context, caller string, value bool) error {
	return s.updateFlag(ctx, caller, "set_open_mint", func(f *flagsRecord) { f.OpenMint = value })
}

// SetSingleMint 设置单次铸造开关
func (s *Service[T]) SetSingleMint(ctx context.Context, caller string, value bool) error {
	return s.updateFlag(ctx, caller, "set_single_mint", func(f *flagsRecord) { f.SingleMint = value })
}

// SetTradable 设置可交易开关
func (s *Service[T]) SetTradable(ctx context.Context, caller string, value bool) error {
	return s.updateFlag(ctx, caller, "set_tradable", func(f *flagsRecord) { f.Tradable = value })
}

func (s *Service[T]) updateFlag(ctx context.Context, caller, action string, apply func(*flagsRecord)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hasRole(caller, types.RoleDefaultAdmin) {
		return ErrUnauthorized
	}

	next := s.flags
	apply(&next)
	flagBytes, err := json.Marshal(next)
	if err != nil {
		return err
	}
	err = s.store.RunInTransaction(ctx, func(txn storage.Transaction) error {
		if err := txn.Set([]byte(keyFlags), flagBytes); err != nil {
			return err
		}
		return s.bumpHeight(txn)
	})
	if err != nil {
		return err
	}

	s.height++
	s.flags = next

	s.publish(action, map[string]string{"sender": caller})
	return nil
}

// SetHasMinted 直接改写账户的 claim 标记
//
// 管理员逃生通道：绕过正常的铸造路径直接改写 single_mint
// 的判定依据。每次改写都发事件留痕。
func (s *Service[T]) SetHasMinted(ctx context.Context, caller, account string, value bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hasRole(caller, types.RoleDefaultAdmin) {
		return ErrUnauthorized
	}
	if err := s.addrValidate(account); err != nil {
		return err
	}

	stored := []byte("0")
	if value {
		stored = []byte("1")
	}
	err := s.store.RunInTransaction(ctx, func(txn storage.Transaction) error {
		if err := txn.Set([]byte(claimKey(account)), stored); err != nil {
			return err
		}
		return s.bumpHeight(txn)
	})
	if err != nil {
		return err
	}

	s.height++
	s.claimMap[account] = value

	s.publish("set_has_minted", map[string]string{
		"sender":  caller,
		"account": account,
		"value":   strconv.FormatBool(value),
	})
	return nil
}
