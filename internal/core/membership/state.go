package membership

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	infraClock "github.com/membria/v1/pkg/interfaces/infrastructure/clock"
	cryptointf "github.com/membria/v1/pkg/interfaces/infrastructure/crypto"
	infraEvent "github.com/membria/v1/pkg/interfaces/infrastructure/event"
	"github.com/membria/v1/pkg/interfaces/infrastructure/log"
	"github.com/membria/v1/pkg/interfaces/infrastructure/storage"
	"github.com/membria/v1/pkg/types"
)

// ContractName/ContractVersion 版本簿记，随升级手工递增
const (
	ContractName    = "crates.io:membership-registry"
	ContractVersion = "0.19.0"
)

// tokenRecord 落盘用的凭证记录
//
// extension 按原样存储为 JSON，核心从不解读它的内容。
type tokenRecord struct {
	Owner     string           `json:"owner"`
	Approvals []types.Approval `json:"approvals"`
	TokenURI  string           `json:"token_uri,omitempty"`
	Extension json.RawMessage  `json:"extension,omitempty"`
}

// flagsRecord 三个策略开关的落盘结构
type flagsRecord struct {
	OpenMint   bool `json:"open_mint"`
	SingleMint bool `json:"single_mint"`
	Tradable   bool `json:"tradable"`
}

// versionRecord 合约版本簿记
type versionRecord struct {
	Contract string `json:"contract"`
	Version  string `json:"version"`
}

// Options 实例化参数
type Options struct {
	Name        string // 凭证集合名称
	Symbol      string // 凭证集合符号
	ChainID     string // 过期判定使用的链标识
	Creator     string // 创建者，自动获得全部管理角色
	Minter      string // 初始铸造者（可空）
	ClaimIssuer string // 初始claim签发者（可空）
	OpenMint    bool
	SingleMint  bool
	Tradable    bool
}

// Service 会员凭证登记处核心实现
//
// 内存状态是权威拷贝，badger 作写穿持久层；
// 进程重启时从持久层整体重建。所有变更在单一互斥锁下
// 先落盘后改内存，落盘失败不会留下半写状态。
type Service[T any] struct {
	mu sync.Mutex

	// 主表与二级索引，严格同步维护
	tokens   map[string]*types.TokenInfo[T] // token_id → 凭证
	tokenIDs []string                       // 全部id，字典序升序
	byOwner  map[string]map[string]struct{} // owner → token_id 集合

	operators map[string]map[string]types.Expiration // owner → operator → 过期描述
	roles     map[string]map[string]bool             // address → role_key → bool
	claimMap  map[string]bool                        // address → 已铸造标记

	counter uint64 // 单调递增的id计数器，销毁不回收
	height  uint64 // 状态变更序号，充当区块高度

	contractInfo types.ContractInfo
	creator      string
	flags        flagsRecord
	chainID      string

	store  storage.KVStore
	clock  infraClock.Clock
	events infraEvent.EventBus
	addr   cryptointf.AddressManager
	logger log.Logger
}

// NewService 创建并恢复登记处
//
// 持久层已有状态时忽略 opts 里的种子参数，直接重建；
// 首次启动时按 opts 落盘初始状态并给 creator 授满管理角色。
func NewService[T any](
	ctx context.Context,
	store storage.KVStore,
	clock infraClock.Clock,
	events infraEvent.EventBus,
	addr cryptointf.AddressManager,
	logger log.Logger,
	opts Options,
) (*Service[T], error) {
	s := &Service[T]{
		tokens:    make(map[string]*types.TokenInfo[T]),
		byOwner:   make(map[string]map[string]struct{}),
		operators: make(map[string]map[string]types.Expiration),
		roles:     make(map[string]map[string]bool),
		claimMap:  make(map[string]bool),
		chainID:   opts.ChainID,
		store:     store,
		clock:     clock,
		events:    events,
		addr:      addr,
		logger:    logger,
	}

	existing, err := store.Exists(ctx, []byte(keyContractInfo))
	if err != nil {
		return nil, fmt.Errorf("检查登记处状态失败: %w", err)
	}

	if existing {
		if err := s.rehydrate(ctx); err != nil {
			return nil, fmt.Errorf("恢复登记处状态失败: %w", err)
		}
		if logger != nil {
			logger.Infof("登记处状态已恢复: tokens=%d counter=%d height=%d", len(s.tokens), s.counter, s.height)
		}
		return s, nil
	}

	if err := s.instantiate(ctx, opts); err != nil {
		return nil, fmt.Errorf("初始化登记处失败: %w", err)
	}
	if logger != nil {
		logger.Infof("登记处已初始化: name=%s symbol=%s creator=%s", opts.Name, opts.Symbol, opts.Creator)
	}
	return s, nil
}

// instantiate 首次启动时写入初始状态
//
// creator 获得 DefaultAdmin + ClaimIssuer + Minter 三个角色；
// 配置的 minter / claim_issuer 各获得对应角色。
func (s *Service[T]) instantiate(ctx context.Context, opts Options) error {
	if opts.Creator == "" {
		return fmt.Errorf("creator 不能为空")
	}
	if err := s.addrValidate(opts.Creator); err != nil {
		return err
	}

	s.contractInfo = types.ContractInfo{Name: opts.Name, Symbol: opts.Symbol}
	s.creator = opts.Creator
	s.flags = flagsRecord{OpenMint: opts.OpenMint, SingleMint: opts.SingleMint, Tradable: opts.Tradable}

	seedRoles := []struct {
		account string
		role    types.Role
	}{
		{opts.Creator, types.RoleDefaultAdmin},
		{opts.Creator, types.RoleClaimIssuer},
		{opts.Creator, types.RoleMinter},
	}
	if opts.ClaimIssuer != "" {
		seedRoles = append(seedRoles, struct {
			account string
			role    types.Role
		}{opts.ClaimIssuer, types.RoleClaimIssuer})
	}
	if opts.Minter != "" {
		seedRoles = append(seedRoles, struct {
			account string
			role    types.Role
		}{opts.Minter, types.RoleMinter})
	}

	infoBytes, err := json.Marshal(s.contractInfo)
	if err != nil {
		return err
	}
	flagBytes, err := json.Marshal(s.flags)
	if err != nil {
		return err
	}
	verBytes, err := json.Marshal(versionRecord{Contract: ContractName, Version: ContractVersion})
	if err != nil {
		return err
	}

	err = s.store.RunInTransaction(ctx, func(txn storage.Transaction) error {
		if err := txn.Set([]byte(keyContractInfo), infoBytes); err != nil {
			return err
		}
		if err := txn.Set([]byte(keyCreator), []byte(opts.Creator)); err != nil {
			return err
		}
		if err := txn.Set([]byte(keyFlags), flagBytes); err != nil {
			return err
		}
		if err := txn.Set([]byte(keyVersion), verBytes); err != nil {
			return err
		}
		if err := txn.Set([]byte(keyCounter), []byte("0")); err != nil {
			return err
		}
		if err := txn.Set([]byte(keyHeight), []byte("0")); err != nil {
			return err
		}
		for _, seed := range seedRoles {
			if err := txn.Set([]byte(roleKey(seed.account, seed.role.StorageKey())), []byte("1")); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, seed := range seedRoles {
		s.setRoleMem(seed.account, seed.role, true)
	}
	return nil
}

// rehydrate 从持久层整体重建内存状态
func (s *Service[T]) rehydrate(ctx context.Context) error {
	entries, err := s.store.PrefixScan(ctx, []byte(keyPrefix))
	if err != nil {
		return err
	}

	for key, value := range entries {
		switch {
		case key == keyContractInfo:
			if err := json.Unmarshal(value, &s.contractInfo); err != nil {
				return fmt.Errorf("contract_info 损坏: %w", err)
			}
		case key == keyCreator:
			s.creator = string(value)
		case key == keyFlags:
			if err := json.Unmarshal(value, &s.flags); err != nil {
				return fmt.Errorf("flags 损坏: %w", err)
			}
		case key == keyCounter:
			n, err := strconv.ParseUint(string(value), 10, 64)
			if err != nil {
				return fmt.Errorf("counter 损坏: %w", err)
			}
			s.counter = n
		case key == keyHeight:
			n, err := strconv.ParseUint(string(value), 10, 64)
			if err != nil {
				return fmt.Errorf("height 损坏: %w", err)
			}
			s.height = n
		case key == keyVersion:
			// 版本簿记只在升级时读取

		case strings.HasPrefix(key, keyTokenPrefix):
			tokenID := strings.TrimPrefix(key, keyTokenPrefix)
			var rec tokenRecord
			if err := json.Unmarshal(value, &rec); err != nil {
				return fmt.Errorf("token %s 损坏: %w", tokenID, err)
			}
			tok, err := recordToToken[T](rec)
			if err != nil {
				return fmt.Errorf("token %s extension 损坏: %w", tokenID, err)
			}
			s.tokens[tokenID] = tok

		case strings.HasPrefix(key, keyOperatorPrefix):
			rest := strings.TrimPrefix(key, keyOperatorPrefix)
			idx := strings.LastIndex(rest, ":")
			if idx < 0 {
				continue
			}
			owner, operator := rest[:idx], rest[idx+1:]
			var exp types.Expiration
			if err := json.Unmarshal(value, &exp); err != nil {
				return fmt.Errorf("operator %s 损坏: %w", rest, err)
			}
			if s.operators[owner] == nil {
				s.operators[owner] = make(map[string]types.Expiration)
			}
			s.operators[owner][operator] = exp

		case strings.HasPrefix(key, keyRolePrefix):
			rest := strings.TrimPrefix(key, keyRolePrefix)
			idx := strings.LastIndex(rest, ":")
			if idx < 0 {
				continue
			}
			account, tag := rest[:idx], rest[idx+1:]
			if string(value) != "1" {
				continue
			}
			if s.roles[account] == nil {
				s.roles[account] = make(map[string]bool)
			}
			s.roles[account][tag] = true

		case strings.HasPrefix(key, keyClaimPrefix):
			account := strings.TrimPrefix(key, keyClaimPrefix)
			s.claimMap[account] = string(value) == "1"
		}
	}

	// 二级索引与有序id表从主表重建，不依赖落盘的 owner: 键
	s.tokenIDs = make([]string, 0, len(s.tokens))
	for id, tok := range s.tokens {
		s.tokenIDs = append(s.tokenIDs, id)
		if s.byOwner[tok.Owner] == nil {
			s.byOwner[tok.Owner] = make(map[string]struct{})
		}
		s.byOwner[tok.Owner][id] = struct{}{}
	}
	sort.Strings(s.tokenIDs)
	return nil
}

// recordToToken 落盘记录转内存凭证
func recordToToken[T any](rec tokenRecord) (*types.TokenInfo[T], error) {
	var ext T
	if len(rec.Extension) > 0 {
		if err := json.Unmarshal(rec.Extension, &ext); err != nil {
			return nil, err
		}
	}
	return &types.TokenInfo[T]{
		Owner:     rec.Owner,
		Approvals: rec.Approvals,
		TokenURI:  rec.TokenURI,
		Extension: ext,
	}, nil
}

// tokenToRecord 内存凭证转落盘记录
func tokenToRecord[T any](tok *types.TokenInfo[T]) (tokenRecord, error) {
	ext, err := json.Marshal(tok.Extension)
	if err != nil {
		return tokenRecord{}, err
	}
	return tokenRecord{
		Owner:     tok.Owner,
		Approvals: tok.Approvals,
		TokenURI:  tok.TokenURI,
		Extension: ext,
	}, nil
}

// block 当前的过期判定基准
//
// 高度取状态变更序号，时间取注入的时钟，与真实链环境解耦。
func (s *Service[T]) block() types.BlockInfo {
	return types.BlockInfo{
		Height:  s.height,
		Time:    s.clock.Now(),
		ChainID: s.chainID,
	}
}

// setRoleMem 只改内存的角色写入
func (s *Service[T]) setRoleMem(account string, role types.Role, value bool) {
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

// hasRole 内存角色查询，缺失视为 false，从不报错
func (s *Service[T]) hasRole(account string, role types.Role) bool {
	return s.roles[account][role.StorageKey()]
}

// addrValidate 地址校验
func (s *Service[T]) addrValidate(address string) error {
	if s.addr == nil {
		if address == "" {
			return ErrInvalidAddress
		}
		return nil
	}
	if err := s.addr.ValidateAddress(address); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	return nil
}

// bumpHeight 递增状态变更序号并落盘（事务内）
func (s *Service[T]) bumpHeight(txn storage.Transaction) error {
	next := s.height + 1
	return txn.Set([]byte(keyHeight), []byte(strconv.FormatUint(next, 10)))
}

// insertTokenID 向有序id表插入
func (s *Service[T]) insertTokenID(id string) {
	pos := sort.SearchStrings(s.tokenIDs, id)
	s.tokenIDs = append(s.tokenIDs, "")
	copy(s.tokenIDs[pos+1:], s.tokenIDs[pos:])
	s.tokenIDs[pos] = id
}

// removeTokenID 从有序id表删除
func (s *Service[T]) removeTokenID(id string) {
	pos := sort.SearchStrings(s.tokenIDs, id)
	if pos < len(s.tokenIDs) && s.tokenIDs[pos] == id {
		s.tokenIDs = append(s.tokenIDs[:pos], s.tokenIDs[pos+1:]...)
	}
}

// publish 发布动作事件
func (s *Service[T]) publish(action string, attributes map[string]string) {
	if s.events == nil {
		return
	}
	s.events.Publish(infraEvent.TopicRegistryAction, infraEvent.ActionEvent{
		Action:     action,
		Attributes: attributes,
	})
}
