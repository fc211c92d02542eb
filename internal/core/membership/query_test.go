package membership

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/membria/v1/pkg/types"
)

// mintN 按顺序铸造 n 枚凭证给指定所有者序列
func mintN(t *testing.T, env *testEnv, owners []string) []string {
	t.Helper()
	ctx := context.Background()
	ids := make([]string, 0, len(owners))
	for i, owner := range owners {
		id, err := env.svc.Mint(ctx, creator, owner, fmt.Sprintf("uri-%d", i+1), nil)
		if err != nil {
			t.Fatalf("铸造第 %d 枚失败: %v", i+1, err)
		}
		ids = append(ids, id)
	}
	return ids
}

func TestPagination(t *testing.T) {
	env := newTestService(t, nil)
	ctx := context.Background()

	// 12枚凭证，id "1".."12"；分页按字典序："1","10","11","12","2",...
	owners := make([]string, 12)
	for i := range owners {
		owners[i] = alice
	}
	mintN(t, env, owners)

	// 默认页大小 10
	page, err := env.svc.AllTokens(ctx, "", 0)
	if err != nil {
		t.Fatalf("AllTokens失败: %v", err)
	}
	if len(page) != DefaultLimit {
		t.Errorf("默认页大小应为 %d，实际 %d", DefaultLimit, len(page))
	}
	if page[0] != "1" || page[1] != "10" {
		t.Errorf("分页应按字典序: %v", page[:2])
	}

	// 排他游标
	page2, err := env.svc.AllTokens(ctx, page[len(page)-1], 0)
	if err != nil {
		t.Fatalf("第二页失败: %v", err)
	}
	if len(page2) != 2 {
		t.Errorf("第二页应剩 2 条，实际 %d", len(page2))
	}
	for _, id := range page2 {
		if id <= page[len(page)-1] {
			t.Errorf("第二页不应包含游标之前的id: %s", id)
		}
	}

	// 页大小硬上限
	capped, err := env.svc.AllTokens(ctx, "", 1000)
	if err != nil {
		t.Fatalf("AllTokens失败: %v", err)
	}
	if len(capped) != 12 {
		t.Errorf("12枚全量查询应返回 12 条，实际 %d", len(capped))
	}
	if clampLimit(1000) != MaxLimit {
		t.Errorf("页大小应被限制在 %d", MaxLimit)
	}
}

func TestTokensByOwner(t *testing.T) {
	env := newTestService(t, nil)
	ctx := context.Background()

	mintN(t, env, []string{alice, bob, alice, carol, alice})

	ids, err := env.svc.Tokens(ctx, alice, "", 0)
	if err != nil {
		t.Fatalf("Tokens失败: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("alice 应持有 3 枚，实际 %d", len(ids))
	}

	all, err := env.svc.TokensForOwner(ctx, alice)
	if err != nil {
		t.Fatalf("TokensForOwner失败: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("TokensForOwner 应返回 3 枚，实际 %d", len(all))
	}

	// 转移后二级索引同步
	if err := env.svc.TransferNFT(ctx, alice, bob, ids[0]); err != nil {
		t.Fatalf("转移失败: %v", err)
	}
	after, _ := env.svc.Tokens(ctx, alice, "", 0)
	if len(after) != 2 {
		t.Errorf("转移后 alice 应剩 2 枚，实际 %d", len(after))
	}
	bobIDs, _ := env.svc.Tokens(ctx, bob, "", 0)
	if len(bobIDs) != 2 {
		t.Errorf("转移后 bob 应有 2 枚，实际 %d", len(bobIDs))
	}
}

func TestActiveTokenID(t *testing.T) {
	env := newTestService(t, nil)
	ctx := context.Background()

	if _, err := env.svc.ActiveTokenID(ctx, alice); !errors.Is(err, ErrNoTokens) {
		t.Errorf("无凭证时应返回 NoTokens，实际 %v", err)
	}

	mintN(t, env, []string{alice, bob, alice})

	// 降序扫描取第一条：alice 最近的是 "3"
	id, err := env.svc.ActiveTokenID(ctx, alice)
	if err != nil {
		t.Fatalf("ActiveTokenID失败: %v", err)
	}
	if id != "3" {
		t.Errorf("alice 的活跃凭证应为 3，实际 %s", id)
	}

	// 销毁后回退到更早的一枚
	if err := env.svc.Burn(ctx, alice, "3"); err != nil {
		t.Fatalf("销毁失败: %v", err)
	}
	id, _ = env.svc.ActiveTokenID(ctx, alice)
	if id != "1" {
		t.Errorf("销毁后活跃凭证应为 1，实际 %s", id)
	}
}

func TestApprovalQuerySyntheticOwner(t *testing.T) {
	env := newTestService(t, nil)
	ctx := context.Background()

	ids := mintN(t, env, []string{alice})

	// spender 等于所有者时返回合成的永不过期授权
	apr, err := env.svc.Approval(ctx, ids[0], alice, false)
	if err != nil {
		t.Fatalf("Approval失败: %v", err)
	}
	if apr.Spender != alice || !apr.Expires.IsNever() {
		t.Errorf("所有者应获得合成的永不过期授权: %+v", apr)
	}

	if _, err := env.svc.Approval(ctx, ids[0], bob, false); !errors.Is(err, ErrApprovalNotFound) {
		t.Errorf("无授权的 spender 应返回 ApprovalNotFound，实际 %v", err)
	}
}

func TestNumTokensIsMonotonic(t *testing.T) {
	env := newTestService(t, nil)
	ctx := context.Background()

	ids := mintN(t, env, []string{alice, bob})
	if err := env.svc.Burn(ctx, alice, ids[0]); err != nil {
		t.Fatalf("销毁失败: %v", err)
	}

	// 计数器不因销毁回退，id 永不复用
	count, _ := env.svc.NumTokens(ctx)
	if count != 2 {
		t.Errorf("计数器应保持 2，实际 %d", count)
	}
	id, err := env.svc.Mint(ctx, creator, carol, "uri", nil)
	if err != nil {
		t.Fatalf("铸造失败: %v", err)
	}
	if id != "3" {
		t.Errorf("销毁后新id应为 3，实际 %s", id)
	}
}

func TestContractMetadata(t *testing.T) {
	env := newTestService(t, nil)
	ctx := context.Background()

	info, err := env.svc.ContractInfo(ctx)
	if err != nil {
		t.Fatalf("ContractInfo失败: %v", err)
	}
	if info.Name != "Membership Credential" || info.Symbol != "MBR" {
		t.Errorf("合约信息不符: %+v", info)
	}

	who, err := env.svc.Creator(ctx)
	if err != nil {
		t.Fatalf("Creator失败: %v", err)
	}
	if who != creator {
		t.Errorf("创建者应为 %s，实际 %s", creator, who)
	}

	open, _ := env.svc.IsOpenMint(ctx)
	single, _ := env.svc.IsSingleMint(ctx)
	tradable, _ := env.svc.IsTradable(ctx)
	if open || single || !tradable {
		t.Errorf("开关状态不符: open=%t single=%t tradable=%t", open, single, tradable)
	}
}

func TestTokenDetailsBulk(t *testing.T) {
	env := newTestService(t, nil)
	ctx := context.Background()

	mintN(t, env, []string{alice, bob, carol})

	details, err := env.svc.TokenDetailsBulk(ctx, "", 2)
	if err != nil {
		t.Fatalf("TokenDetailsBulk失败: %v", err)
	}
	if len(details) != 2 {
		t.Fatalf("应返回 2 条明细，实际 %d", len(details))
	}
	if details[0].TokenID != "1" || details[0].Token.Owner != alice {
		t.Errorf("第一条明细不符: %+v", details[0])
	}
	if details[1].TokenID != "2" || details[1].Token.Owner != bob {
		t.Errorf("第二条明细不符: %+v", details[1])
	}
}

func TestOperatorsPagination(t *testing.T) {
	env := newTestService(t, nil)
	ctx := context.Background()

	operators := []string{"op_a", "op_b", "op_c"}
	for _, op := range operators {
		if err := env.svc.ApproveAll(ctx, alice, op, types.NeverExpire()); err != nil {
			t.Fatalf("全量授权失败: %v", err)
		}
	}

	page, err := env.svc.Operators(ctx, alice, false, "", 2)
	if err != nil {
		t.Fatalf("Operators失败: %v", err)
	}
	if len(page) != 2 || page[0].Spender != "op_a" || page[1].Spender != "op_b" {
		t.Fatalf("第一页不符: %+v", page)
	}

	rest, err := env.svc.Operators(ctx, alice, false, page[1].Spender, 2)
	if err != nil {
		t.Fatalf("第二页失败: %v", err)
	}
	if len(rest) != 1 || rest[0].Spender != "op_c" {
		t.Errorf("第二页不符: %+v", rest)
	}
}
