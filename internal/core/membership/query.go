package membership

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/membria/v1/pkg/interfaces/membership"
	"github.com/membria/v1/pkg/types"
)

// 分页参数：与链上查询习惯保持一致
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// clampLimit 把查询页大小限制在 [1, MaxLimit]，0 取默认值
func clampLimit(limit uint32) int {
	if limit == 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return int(limit)
}

// ContractInfo 凭证集合的名称与符号
func (s *Service[T]) ContractInfo(ctx context.Context) (types.ContractInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.contractInfo, nil
}

// Creator 合约创建者
func (s *Service[T]) Creator(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creator, nil
}

// NumTokens 历史铸造总数（计数器值，销毁不回退）
func (s *Service[T]) NumTokens(ctx context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counter, nil
}

// OwnerOf 所有权与授权列表查询
func (s *Service[T]) OwnerOf(ctx context.Context, tokenID string, includeExpired bool) (membership.OwnerOfResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, ok := s.tokens[tokenID]
	if !ok {
		return membership.OwnerOfResponse{}, ErrTokenNotFound
	}
	return membership.OwnerOfResponse{
		Owner:     token.Owner,
		Approvals: s.liveApprovals(token, includeExpired),
	}, nil
}

// NFTInfo 凭证元数据查询
func (s *Service[T]) NFTInfo(ctx context.Context, tokenID string) (membership.NFTInfoResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, ok := s.tokens[tokenID]
	if !ok {
		return membership.NFTInfoResponse{}, ErrTokenNotFound
	}
	ext, err := json.Marshal(token.Extension)
	if err != nil {
		return membership.NFTInfoResponse{}, err
	}
	return membership.NFTInfoResponse{
		TokenURI:  token.TokenURI,
		Extension: ext,
	}, nil
}

// AllNFTInfo 所有权 + 元数据的组合查询
func (s *Service[T]) AllNFTInfo(ctx context.Context, tokenID string, includeExpired bool) (membership.AllNFTInfoResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, ok := s.tokens[tokenID]
	if !ok {
		return membership.AllNFTInfoResponse{}, ErrTokenNotFound
	}
	ext, err := json.Marshal(token.Extension)
	if err != nil {
		return membership.AllNFTInfoResponse{}, err
	}
	return membership.AllNFTInfoResponse{
		Access: membership.OwnerOfResponse{
			Owner:     token.Owner,
			Approvals: s.liveApprovals(token, includeExpired),
		},
		Info: membership.NFTInfoResponse{
			TokenURI:  token.TokenURI,
			Extension: ext,
		},
	}, nil
}

// Approval 查询单个 spender 的授权
//
// spender 等于所有者时返回一条合成的永不过期授权。
func (s *Service[T]) Approval(ctx context.Context, tokenID, spender string, includeExpired bool) (types.Approval, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, ok := s.tokens[tokenID]
	if !ok {
		return types.Approval{}, ErrTokenNotFound
	}

	if token.Owner == spender {
		return types.Approval{Spender: token.Owner, Expires: types.NeverExpire()}, nil
	}

	block := s.block()
	for _, apr := range token.Approvals {
		if apr.Spender != spender {
			continue
		}
		if includeExpired || !apr.IsExpired(block) {
			return apr, nil
		}
	}
	return types.Approval{}, ErrApprovalNotFound
}

// Approvals 查询凭证的全部授权
func (s *Service[T]) Approvals(ctx context.Context, tokenID string, includeExpired bool) ([]types.Approval, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, ok := s.tokens[tokenID]
	if !ok {
		return nil, ErrTokenNotFound
	}
	return s.liveApprovals(token, includeExpired), nil
}

// Operator 查询单个全量授权
func (s *Service[T]) Operator(ctx context.Context, owner, operator string, includeExpired bool) (types.Approval, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp, ok := s.operators[owner][operator]
	if !ok {
		return types.Approval{}, ErrApprovalNotFound
	}
	if !includeExpired && exp.IsExpired(s.block()) {
		return types.Approval{}, ErrApprovalNotFound
	}
	return types.Approval{Spender: operator, Expires: exp}, nil
}

// Operators 分页查询某所有者的全部全量授权，按 operator 字典序升序
func (s *Service[T]) Operators(ctx context.Context, owner string, includeExpired bool, startAfter string, limit uint32) ([]types.Approval, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	grants := s.operators[owner]
	names := make([]string, 0, len(grants))
	for op := range grants {
		names = append(names, op)
	}
	sort.Strings(names)

	block := s.block()
	pageSize := clampLimit(limit)
	result := make([]types.Approval, 0, pageSize)
	for _, op := range names {
		if startAfter != "" && op <= startAfter {
			continue
		}
		exp := grants[op]
		if !includeExpired && exp.IsExpired(block) {
			continue
		}
		result = append(result, types.Approval{Spender: op, Expires: exp})
		if len(result) >= pageSize {
			break
		}
	}
	return result, nil
}

// Tokens 分页查询某所有者名下的凭证id，字典序升序
func (s *Service[T]) Tokens(ctx context.Context, owner, startAfter string, limit uint32) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.byOwner[owner]))
	for id := range s.byOwner[owner] {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return paginate(ids, startAfter, clampLimit(limit)), nil
}

// AllTokens 分页查询全部凭证id，字典序升序
func (s *Service[T]) AllTokens(ctx context.Context, startAfter string, limit uint32) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return paginate(s.tokenIDs, startAfter, clampLimit(limit)), nil
}

// TokenDetailsBulk 分页查询凭证明细
func (s *Service[T]) TokenDetailsBulk(ctx context.Context, startAfter string, limit uint32) ([]membership.TokenDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := paginate(s.tokenIDs, startAfter, clampLimit(limit))
	result := make([]membership.TokenDetail, 0, len(ids))
	for _, id := range ids {
		token := s.tokens[id]
		ext, err := json.Marshal(token.Extension)
		if err != nil {
			return nil, err
		}
		result = append(result, membership.TokenDetail{
			TokenID: id,
			Token: types.TokenInfo[json.RawMessage]{
				Owner:     token.Owner,
				Approvals: token.Approvals,
				TokenURI:  token.TokenURI,
				Extension: ext,
			},
		})
	}
	return result, nil
}

// TokensForOwner 不分页返回某所有者的全部凭证id
func (s *Service[T]) TokensForOwner(ctx context.Context, owner string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.byOwner[owner]))
	for id := range s.byOwner[owner] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// ActiveTokenID 返回某所有者最近持有的凭证id
//
// 按id降序全量扫描取第一条，复杂度 O(全部凭证)。
// 保留线性扫描是有意的行为保真选择，规模化部署前应换成
// 按所有者的有序索引。
func (s *Service[T]) ActiveTokenID(ctx context.Context, owner string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(s.tokenIDs) - 1; i >= 0; i-- {
		id := s.tokenIDs[i]
		if s.tokens[id].Owner == owner {
			return id, nil
		}
	}
	return "", ErrNoTokens
}

// HasRole 角色查询，缺失视为 false
func (s *Service[T]) HasRole(ctx context.Context, account string, role types.Role) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasRole(account, role), nil
}

// HasMinted 账户是否铸造过（看 claim 标记，与当前持有无关）
func (s *Service[T]) HasMinted(ctx context.Context, account string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.claimMap[account], nil
}

// IsOpenMint 开放铸造开关
func (s *Service[T]) IsOpenMint(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flags.OpenMint, nil
}

// IsSingleMint 单次铸造开关
func (s *Service[T]) IsSingleMint(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flags.SingleMint, nil
}

// IsTradable 可交易开关
func (s *Service[T]) IsTradable(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flags.Tradable, nil
}

// liveApprovals 过滤授权列表，includeExpired 为 true 时全量返回
func (s *Service[T]) liveApprovals(token *types.TokenInfo[T], includeExpired bool) []types.Approval {
	block := s.block()
	result := make([]types.Approval, 0, len(token.Approvals))
	for _, apr := range token.Approvals {
		if includeExpired || !apr.IsExpired(block) {
			result = append(result, apr)
		}
	}
	return result
}

// paginate 对有序id切片做游标分页，startAfter 为排他游标
func paginate(sorted []string, startAfter string, limit int) []string {
	start := 0
	if startAfter != "" {
		start = sort.SearchStrings(sorted, startAfter)
		if start < len(sorted) && sorted[start] == startAfter {
			start++
		}
	}
	end := start + limit
	if end > len(sorted) {
		end = len(sorted)
	}
	result := make([]string, end-start)
	copy(result, sorted[start:end])
	return result
}
