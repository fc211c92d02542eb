// Package bank 提供最小的账户余额台账
//
// 只服务于承兑流程的手续费划转：余额按 (账户, 币种) 记账，
// badger 写穿持久化。不做计息、锁定或多币种原子换汇。
package bank

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	gatewayintf "github.com/membria/v1/pkg/interfaces/gateway"
	"github.com/membria/v1/pkg/interfaces/infrastructure/log"
	"github.com/membria/v1/pkg/interfaces/infrastructure/storage"
	"github.com/membria/v1/pkg/types"
)

const keyBalancePrefix = "bank:balance:" // + account + ":" + denom → 十进制余额

var (
	// ErrInsufficientFunds 余额不足
	ErrInsufficientFunds = errors.New("insufficient funds: 余额不足")
)

// Service 余额台账实现
type Service struct {
	mu       sync.Mutex
	balances map[string]uint64 // 余额存储键（bank:balance:account:denom）→ 余额

	store  storage.KVStore
	logger log.Logger
}

var _ gatewayintf.BankService = (*Service)(nil)

// NewService 创建并恢复台账
func NewService(ctx context.Context, store storage.KVStore, logger log.Logger) (*Service, error) {
	s := &Service{
		balances: make(map[string]uint64),
		store:    store,
		logger:   logger,
	}

	entries, err := store.PrefixScan(ctx, []byte(keyBalancePrefix))
	if err != nil {
		return nil, fmt.Errorf("恢复余额台账失败: %w", err)
	}
	for key, value := range entries {
		// 内存表以完整存储键为键，与 balanceKey 保持一致
		n, err := strconv.ParseUint(string(value), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("余额记录 %s 损坏: %w", key, err)
		}
		s.balances[key] = n
	}
	return s, nil
}

// Send 从 from 向 to 划转金额
func (s *Service) Send(ctx context.Context, from, to string, amount types.Coin) error {
	n, err := amount.AmountUint64()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	fromKey := balanceKey(from, amount.Denom)
	toKey := balanceKey(to, amount.Denom)
	if s.balances[fromKey] < n {
		return fmt.Errorf("%w: %s 持有 %d%s，需要 %d%s", ErrInsufficientFunds, from, s.balances[fromKey], amount.Denom, n, amount.Denom)
	}

	newFrom := s.balances[fromKey] - n
	newTo := s.balances[toKey] + n

	err = s.store.RunInTransaction(ctx, func(txn storage.Transaction) error {
		if err := txn.Set([]byte(fromKey), []byte(strconv.FormatUint(newFrom, 10))); err != nil {
			return err
		}
		return txn.Set([]byte(toKey), []byte(strconv.FormatUint(newTo, 10)))
	})
	if err != nil {
		return err
	}

	s.balances[fromKey] = newFrom
	s.balances[toKey] = newTo
	if s.logger != nil {
		s.logger.Debugf("划转完成: %s → %s %d%s", from, to, n, amount.Denom)
	}
	return nil
}

// Deposit 向账户充值
func (s *Service) Deposit(ctx context.Context, account string, amount types.Coin) error {
	n, err := amount.AmountUint64()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := balanceKey(account, amount.Denom)
	next := s.balances[key] + n
	if err := s.store.Set(ctx, []byte(key), []byte(strconv.FormatUint(next, 10))); err != nil {
		return err
	}
	s.balances[key] = next
	return nil
}

// Balance 查询账户某币种余额
func (s *Service) Balance(ctx context.Context, account, denom string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balances[balanceKey(account, denom)], nil
}

func balanceKey(account, denom string) string {
	return keyBalancePrefix + account + ":" + denom
}
