package gateway

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/membria/v1/internal/core/bank"
	"github.com/membria/v1/internal/core/infrastructure/clock"
	"github.com/membria/v1/internal/core/infrastructure/crypto/address"
	"github.com/membria/v1/internal/core/infrastructure/crypto/hash"
	"github.com/membria/v1/internal/core/infrastructure/crypto/signature"
	"github.com/membria/v1/internal/core/membership"
	"github.com/membria/v1/pkg/interfaces/infrastructure/storage"
	"github.com/membria/v1/pkg/types"
)

// memStore 测试用的内存KVStore
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
		if strings.HasPrefix(k, string(prefix)) {
			out[k] = append([]byte(nil), v...)
		}
	}
	return out, nil
}

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

func (m *memStore) RunInTransaction(ctx context.Context, fn func(txn storage.Transaction) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(&memTxn{store: m})
}

func (m *memStore) Close() error { return nil }

const (
	registryAddr = "membership-registry"
	bechPrefix   = "sei"
	feeDenom     = "usei"
)

// gwEnv 一套完整的承兑测试环境
type gwEnv struct {
	gw        *Service
	registry  *membership.Service[json.RawMessage]
	bank      *bank.Service
	issuerKey *btcec.PrivateKey
	issuer    string // issuer 的 bech32 地址
	receiver  string
	treasury  string
	admin     string
}

// deriveAddr 从任意33字节负载推导一个合法的bech32地址
func deriveAddr(t *testing.T, addrSvc *address.AddressService, seed byte) string {
	t.Helper()
	payload := make([]byte, 33)
	payload[0] = 0x02
	payload[1] = seed
	a, err := addrSvc.PubkeyToAddress(payload, bechPrefix)
	if err != nil {
		t.Fatalf("推导测试地址失败: %v", err)
	}
	return a
}

func newGatewayEnv(t *testing.T) *gwEnv {
	t.Helper()
	ctx := context.Background()

	hashSvc := hash.NewHashService()
	signSvc := signature.NewSignatureService()
	addrSvc := address.NewAddressService(hashSvc)
	clk := clock.NewDeterministicClock(time.Unix(1_700_000_000, 0), 0)

	issuerKey, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatalf("生成签发者密钥失败: %v", err)
	}
	issuer, err := addrSvc.PubkeyToAddress(issuerKey.PubKey().SerializeCompressed(), bechPrefix)
	if err != nil {
		t.Fatalf("推导签发者地址失败: %v", err)
	}

	admin := deriveAddr(t, addrSvc, 0x01)
	receiver := deriveAddr(t, addrSvc, 0x02)
	treasury := deriveAddr(t, addrSvc, 0x03)
	gatewayAddr := deriveAddr(t, addrSvc, 0x04)

	// 登记处：签发者持 ClaimIssuer，网关地址持 Minter
	registry, err := membership.NewService[json.RawMessage](ctx, newMemStore(), clk, nil, addrSvc, nil, membership.Options{
		Name:        "Membership Credential",
		Symbol:      "MBR",
		ChainID:     "membria-test-1",
		Creator:     admin,
		Minter:      gatewayAddr,
		ClaimIssuer: issuer,
		Tradable:    true,
	})
	if err != nil {
		t.Fatalf("创建登记处失败: %v", err)
	}

	bankStore := newMemStore()
	bankSvc, err := bank.NewService(ctx, bankStore, nil)
	if err != nil {
		t.Fatalf("创建台账失败: %v", err)
	}
	// 接收者预存手续费
	if err := bankSvc.Deposit(ctx, receiver, types.NewCoin(feeDenom, "1000")); err != nil {
		t.Fatalf("充值失败: %v", err)
	}

	members := NewLocalMembershipClient()
	members.Register(registryAddr, registry)

	gw, err := NewService(ctx, newMemStore(), hashSvc, signSvc, addrSvc, members, bankSvc, nil, nil, ServiceOptions{
		Creator:  admin,
		Treasury: treasury,
		Address:  gatewayAddr,
	})
	if err != nil {
		t.Fatalf("创建网关失败: %v", err)
	}

	return &gwEnv{
		gw:        gw,
		registry:  registry,
		bank:      bankSvc,
		issuerKey: issuerKey,
		issuer:    issuer,
		receiver:  receiver,
		treasury:  treasury,
		admin:     admin,
	}
}

// makeClaim 构造一条由签发者签名的有效 claim
func (e *gwEnv) makeClaim(t *testing.T, key *btcec.PrivateKey) (types.ClaimMessage, []byte, byte) {
	t.Helper()
	msg := types.ClaimMessage{
		From:              e.issuer,
		To:                e.receiver,
		TokenURI:          "ipfs://membership/1",
		Fee:               types.NewCoin(feeDenom, "146"),
		VerifyingContract: registryAddr,
		ChainID:           "membria-test-1",
		Bech32Prefix:      bechPrefix,
		Timestamp:         "1700000000000",
	}

	canonical, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("claim 序列化失败: %v", err)
	}
	digest := sha256.Sum256(canonical)

	signSvc := signature.NewSignatureService()
	sig, recID, err := signSvc.SignRecoverable(digest[:], key.Serialize())
	if err != nil {
		t.Fatalf("签名失败: %v", err)
	}
	return msg, sig, recID
}

func TestMintWithClaimHappyPath(t *testing.T) {
	env := newGatewayEnv(t)
	ctx := context.Background()

	msg, sig, recID := env.makeClaim(t, env.issuerKey)

	receipt, err := env.gw.MintWithClaim(ctx, env.receiver, msg, sig, recID)
	if err != nil {
		t.Fatalf("承兑失败: %v", err)
	}
	if receipt.TokenID != "1" || receipt.Owner != env.receiver {
		t.Errorf("回执不符: %+v", receipt)
	}

	// 铸造效果：凭证归接收者
	resp, err := env.registry.OwnerOf(ctx, receipt.TokenID, false)
	if err != nil {
		t.Fatalf("OwnerOf失败: %v", err)
	}
	if resp.Owner != env.receiver {
		t.Errorf("凭证所有者应为接收者: %s", resp.Owner)
	}

	// 划转效果：手续费进入资金库
	balance, _ := env.bank.Balance(ctx, env.treasury, feeDenom)
	if balance != 146 {
		t.Errorf("资金库余额应为 146，实际 %d", balance)
	}
	remaining, _ := env.bank.Balance(ctx, env.receiver, feeDenom)
	if remaining != 854 {
		t.Errorf("接收者余额应为 854，实际 %d", remaining)
	}
}

func TestMintWithClaimReplay(t *testing.T) {
	env := newGatewayEnv(t)
	ctx := context.Background()

	msg, sig, recID := env.makeClaim(t, env.issuerKey)

	if _, err := env.gw.MintWithClaim(ctx, env.receiver, msg, sig, recID); err != nil {
		t.Fatalf("首次承兑失败: %v", err)
	}

	// 同一签名第二次提交必须失败且报告 is_duplicate
	_, err := env.gw.MintWithClaim(ctx, env.receiver, msg, sig, recID)
	var vf *VerificationFailure
	if !errors.As(err, &vf) {
		t.Fatalf("重放应返回 VerificationFailure，实际 %v", err)
	}
	if !vf.IsDuplicate {
		t.Errorf("重放失败应携带 is_duplicate=true: %+v", vf)
	}
	if !vf.IsSignValid || !vf.HasRole {
		t.Errorf("其余两项检查应仍为真: %+v", vf)
	}
}

func TestMintWithClaimWrongSigner(t *testing.T) {
	env := newGatewayEnv(t)
	ctx := context.Background()

	// 用别的密钥签名：恢复出的地址与 from 不一致
	otherKey, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatalf("生成密钥失败: %v", err)
	}
	msg, sig, recID := env.makeClaim(t, otherKey)

	_, err = env.gw.MintWithClaim(ctx, env.receiver, msg, sig, recID)
	var vf *VerificationFailure
	if !errors.As(err, &vf) {
		t.Fatalf("错误签名人应返回 VerificationFailure，实际 %v", err)
	}
	if vf.IsSignValid {
		t.Errorf("is_sign_valid 应为 false: %+v", vf)
	}
}

func TestMintWithClaimNoIssuerRole(t *testing.T) {
	env := newGatewayEnv(t)
	ctx := context.Background()

	// 撤销签发者角色后，签名有效但无权
	if err := env.registry.RevokeRole(ctx, env.admin, env.issuer, types.RoleClaimIssuer); err != nil {
		t.Fatalf("撤销角色失败: %v", err)
	}

	msg, sig, recID := env.makeClaim(t, env.issuerKey)
	_, err := env.gw.MintWithClaim(ctx, env.receiver, msg, sig, recID)
	var vf *VerificationFailure
	if !errors.As(err, &vf) {
		t.Fatalf("无签发角色应返回 VerificationFailure，实际 %v", err)
	}
	if vf.HasRole {
		t.Errorf("has_role 应为 false: %+v", vf)
	}
	if !vf.IsSignValid {
		t.Errorf("is_sign_valid 应保持 true: %+v", vf)
	}
}

func TestMintWithClaimNotReceiver(t *testing.T) {
	env := newGatewayEnv(t)
	ctx := context.Background()

	msg, sig, recID := env.makeClaim(t, env.issuerKey)

	// 非指定接收者承兑被拒，且签名不应被消费
	if _, err := env.gw.MintWithClaim(ctx, env.admin, msg, sig, recID); !errors.Is(err, ErrNotReceiver) {
		t.Fatalf("应返回 NotReceiver，实际 %v", err)
	}
	if _, err := env.gw.MintWithClaim(ctx, env.receiver, msg, sig, recID); err != nil {
		t.Errorf("正确接收者随后承兑应成功: %v", err)
	}
}

func TestMintWithClaimMalformedSignature(t *testing.T) {
	env := newGatewayEnv(t)
	ctx := context.Background()

	msg, _, _ := env.makeClaim(t, env.issuerKey)

	var ve *ValidationError
	if _, err := env.gw.MintWithClaim(ctx, env.receiver, msg, make([]byte, 10), 0); !errors.As(err, &ve) {
		t.Errorf("损坏的签名应返回 ValidationError，实际 %v", err)
	}
	if _, err := env.gw.MintWithClaim(ctx, env.receiver, msg, make([]byte, 64), 9); !errors.As(err, &ve) {
		t.Errorf("越界恢复字节应返回 ValidationError，实际 %v", err)
	}
}

func TestMintWithClaimEffectRollback(t *testing.T) {
	env := newGatewayEnv(t)
	ctx := context.Background()

	// 接收者余额不足：手续费效果失败，重放标记必须回滚
	if err := env.bank.Send(ctx, env.receiver, env.admin, types.NewCoin(feeDenom, "1000")); err != nil {
		t.Fatalf("清空余额失败: %v", err)
	}

	msg, sig, recID := env.makeClaim(t, env.issuerKey)
	if _, err := env.gw.MintWithClaim(ctx, env.receiver, msg, sig, recID); err == nil {
		t.Fatal("余额不足承兑应失败")
	}

	// 同一签名在补足余额后必须还能使用
	if err := env.bank.Deposit(ctx, env.receiver, types.NewCoin(feeDenom, "200")); err != nil {
		t.Fatalf("充值失败: %v", err)
	}
	if _, err := env.gw.MintWithClaim(ctx, env.receiver, msg, sig, recID); err != nil {
		t.Errorf("回滚后同一签名应可再次使用: %v", err)
	}
}

func TestVerifySignIsReadOnly(t *testing.T) {
	env := newGatewayEnv(t)
	ctx := context.Background()

	msg, sig, recID := env.makeClaim(t, env.issuerKey)

	resp, err := env.gw.VerifySign(ctx, msg, sig, recID)
	if err != nil {
		t.Fatalf("验签失败: %v", err)
	}
	if len(resp.Value) != 33 {
		t.Errorf("应返回33字节压缩公钥，实际 %d 字节", len(resp.Value))
	}
	if len(resp.Hash) != 64 {
		t.Errorf("摘要应为64个十六进制字符，实际 %d", len(resp.Hash))
	}

	// 验签不消费签名
	if _, err := env.gw.MintWithClaim(ctx, env.receiver, msg, sig, recID); err != nil {
		t.Errorf("验签后承兑应成功: %v", err)
	}
}

func TestGatewayAdminOperations(t *testing.T) {
	env := newGatewayEnv(t)
	ctx := context.Background()

	// 非管理员被拒
	if err := env.gw.SetTreasury(ctx, env.receiver, env.receiver); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("非管理员改资金库应返回 Unauthorized，实际 %v", err)
	}
	if err := env.gw.GrantRole(ctx, env.receiver, env.receiver, types.RoleDefaultAdmin); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("非管理员授角色应返回 Unauthorized，实际 %v", err)
	}

	// 管理员改资金库
	next := env.receiver
	if err := env.gw.SetTreasury(ctx, env.admin, next); err != nil {
		t.Fatalf("SetTreasury失败: %v", err)
	}
	got, _ := env.gw.Treasury(ctx)
	if got != next {
		t.Errorf("资金库应为 %s，实际 %s", next, got)
	}

	// 授予再撤销
	if err := env.gw.GrantRole(ctx, env.admin, env.receiver, types.RoleDefaultAdmin); err != nil {
		t.Fatalf("GrantRole失败: %v", err)
	}
	has, _ := env.gw.HasRole(ctx, env.receiver, types.RoleDefaultAdmin)
	if !has {
		t.Error("授予后应持有角色")
	}
	if err := env.gw.RevokeRole(ctx, env.admin, env.receiver, types.RoleDefaultAdmin); err != nil {
		t.Fatalf("RevokeRole失败: %v", err)
	}
	has, _ = env.gw.HasRole(ctx, env.receiver, types.RoleDefaultAdmin)
	if has {
		t.Error("撤销后不应持有角色")
	}
}

func TestGatewayRehydrate(t *testing.T) {
	env := newGatewayEnv(t)
	ctx := context.Background()

	store := newMemStore()
	hashSvc := hash.NewHashService()
	signSvc := signature.NewSignatureService()
	addrSvc := address.NewAddressService(hashSvc)

	members := NewLocalMembershipClient()
	members.Register(registryAddr, env.registry)

	gw1, err := NewService(ctx, store, hashSvc, signSvc, addrSvc, members, env.bank, nil, nil, ServiceOptions{
		Creator:  env.admin,
		Treasury: env.treasury,
		Address:  deriveAddr(t, addrSvc, 0x04),
	})
	if err != nil {
		t.Fatalf("创建网关失败: %v", err)
	}

	msg, sig, recID := env.makeClaim(t, env.issuerKey)
	if _, err := gw1.MintWithClaim(ctx, env.receiver, msg, sig, recID); err != nil {
		t.Fatalf("承兑失败: %v", err)
	}

	// 重建后重放标记仍然生效
	gw2, err := NewService(ctx, store, hashSvc, signSvc, addrSvc, members, env.bank, nil, nil, ServiceOptions{})
	if err != nil {
		t.Fatalf("重建网关失败: %v", err)
	}
	_, err = gw2.MintWithClaim(ctx, env.receiver, msg, sig, recID)
	var vf *VerificationFailure
	if !errors.As(err, &vf) || !vf.IsDuplicate {
		t.Errorf("重建后重放应被拒绝: %v", err)
	}

	treasury, _ := gw2.Treasury(ctx)
	if treasury != env.treasury {
		t.Errorf("重建后资金库不符: %s", treasury)
	}
}
