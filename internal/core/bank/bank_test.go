package bank

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/membria/v1/pkg/interfaces/infrastructure/storage"
	"github.com/membria/v1/pkg/types"
)

// memStore 内存版 KVStore，仅供测试
type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (m *memStore) Get(ctx context.Context, key []byte) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[string(key)]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (m *memStore) Set(ctx context.Context, key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[string(key)] = append([]byte(nil), value...)
	return nil
}

func (m *memStore) Delete(ctx context.Context, key []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, string(key))
	return nil
}

func (m *memStore) Exists(ctx context.Context, key []byte) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[string(key)]
	return ok, nil
}

func (m *memStore) PrefixScan(ctx context.Context, prefix []byte) (map[string][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string][]byte)
	for k, v := range m.data {
		if len(k) >= len(prefix) && k[:len(prefix)] == string(prefix) {
			out[k] = append([]byte(nil), v...)
		}
	}
	return out, nil
}

func (m *memStore) RunInTransaction(ctx context.Context, fn func(txn storage.Transaction) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(&memTxn{store: m})
}

func (m *memStore) Close() error { return nil }

type memTxn struct {
	store *memStore
}

func (t *memTxn) Get(key []byte) ([]byte, error) { return t.store.data[string(key)], nil }

func (t *memTxn) Set(key, value []byte) error {
	t.store.data[string(key)] = append([]byte(nil), value...)
	return nil
}

func (t *memTxn) Delete(key []byte) error {
	delete(t.store.data, string(key))
	return nil
}

func newTestBank(t *testing.T) (*Service, *memStore) {
	t.Helper()
	store := newMemStore()
	svc, err := NewService(context.Background(), store, nil)
	if err != nil {
		t.Fatalf("创建台账失败: %v", err)
	}
	return svc, store
}

func TestDepositAndBalance(t *testing.T) {
	svc, _ := newTestBank(t)
	ctx := context.Background()

	if err := svc.Deposit(ctx, "alice", types.NewCoin("usei", "500")); err != nil {
		t.Fatalf("充值失败: %v", err)
	}
	if err := svc.Deposit(ctx, "alice", types.NewCoin("usei", "250")); err != nil {
		t.Fatalf("二次充值失败: %v", err)
	}

	got, err := svc.Balance(ctx, "alice", "usei")
	if err != nil {
		t.Fatalf("查询余额失败: %v", err)
	}
	if got != 750 {
		t.Errorf("余额应为 750，实际 %d", got)
	}

	// 不同币种互不影响
	other, _ := svc.Balance(ctx, "alice", "uatom")
	if other != 0 {
		t.Errorf("未充值币种余额应为 0，实际 %d", other)
	}
}

func TestSendMovesFunds(t *testing.T) {
	svc, _ := newTestBank(t)
	ctx := context.Background()

	if err := svc.Deposit(ctx, "alice", types.NewCoin("usei", "300")); err != nil {
		t.Fatalf("充值失败: %v", err)
	}
	if err := svc.Send(ctx, "alice", "bob", types.NewCoin("usei", "120")); err != nil {
		t.Fatalf("划转失败: %v", err)
	}

	from, _ := svc.Balance(ctx, "alice", "usei")
	to, _ := svc.Balance(ctx, "bob", "usei")
	if from != 180 || to != 120 {
		t.Errorf("划转后余额应为 180/120，实际 %d/%d", from, to)
	}
}

func TestSendInsufficientFunds(t *testing.T) {
	svc, _ := newTestBank(t)
	ctx := context.Background()

	if err := svc.Deposit(ctx, "alice", types.NewCoin("usei", "50")); err != nil {
		t.Fatalf("充值失败: %v", err)
	}

	err := svc.Send(ctx, "alice", "bob", types.NewCoin("usei", "51"))
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("余额不足应返回 ErrInsufficientFunds，实际 %v", err)
	}

	// 失败的划转不得动账
	from, _ := svc.Balance(ctx, "alice", "usei")
	to, _ := svc.Balance(ctx, "bob", "usei")
	if from != 50 || to != 0 {
		t.Errorf("失败划转后余额应不变 50/0，实际 %d/%d", from, to)
	}
}

func TestSendRejectsMalformedAmount(t *testing.T) {
	svc, _ := newTestBank(t)
	ctx := context.Background()

	cases := []struct {
		名称 string
		金额 string
	}{
		{"非数字", "abc"},
		{"负数", "-5"},
		{"空串", ""},
	}
	for _, tc := range cases {
		t.Run(tc.名称, func(t *testing.T) {
			if err := svc.Send(ctx, "alice", "bob", types.NewCoin("usei", tc.金额)); err == nil {
				t.Errorf("金额 %q 应被拒绝", tc.金额)
			}
		})
	}
}

func TestRehydrateRestoresBalances(t *testing.T) {
	svc, store := newTestBank(t)
	ctx := context.Background()

	if err := svc.Deposit(ctx, "alice", types.NewCoin("usei", "900")); err != nil {
		t.Fatalf("充值失败: %v", err)
	}
	if err := svc.Send(ctx, "alice", "bob", types.NewCoin("usei", "400")); err != nil {
		t.Fatalf("划转失败: %v", err)
	}

	// 在同一份存储上重建，余额必须还原
	again, err := NewService(ctx, store, nil)
	if err != nil {
		t.Fatalf("重建台账失败: %v", err)
	}
	from, _ := again.Balance(ctx, "alice", "usei")
	to, _ := again.Balance(ctx, "bob", "usei")
	if from != 500 || to != 400 {
		t.Errorf("重建后余额应为 500/400，实际 %d/%d", from, to)
	}
}
