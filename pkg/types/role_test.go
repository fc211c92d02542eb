package types

import "testing"

func TestRoleStorageKeyStable(t *testing.T) {
	// 短键与链上合约约定一致，改动会破坏已落盘的角色记录
	cases := []struct {
		role Role
		want string
	}{
		{RoleDefaultAdmin, "1"},
		{RoleClaimIssuer, "2"},
		{RoleMinter, "3"},
		{RoleBlacklisted, "4"},
	}
	for _, tc := range cases {
		if got := tc.role.StorageKey(); got != tc.want {
			t.Errorf("角色 %s 的存储键不符: got=%s want=%s", tc.role, got, tc.want)
		}
	}
}

func TestRoleStorageKeyUnknown(t *testing.T) {
	// 未知角色原样回退标签，不与任何已知短键冲突
	if got := Role("Auditor").StorageKey(); got != "Auditor" {
		t.Errorf("未知角色应回退原始标签: %s", got)
	}
}

func TestParseRole(t *testing.T) {
	for _, valid := range []string{"DefaultAdmin", "ClaimIssuer", "Minter", "Blacklisted"} {
		if _, err := ParseRole(valid); err != nil {
			t.Errorf("合法角色 %s 解析失败: %v", valid, err)
		}
	}
	if _, err := ParseRole("Superuser"); err == nil {
		t.Error("未知角色应解析失败")
	}
}
