package address

import (
	"bytes"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/membria/v1/internal/core/infrastructure/crypto/hash"
)

func newService() *AddressService {
	return NewAddressService(hash.NewHashService())
}

func TestCompressPubkey(t *testing.T) {
	service := newService()

	priv, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatalf("生成密钥对失败: %v", err)
	}

	uncompressed := priv.PubKey().SerializeUncompressed()
	want := priv.PubKey().SerializeCompressed()

	got, err := service.CompressPubkey(uncompressed)
	if err != nil {
		t.Fatalf("压缩公钥失败: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("压缩结果不匹配:\n期望 %x\n实际 %x", want, got)
	}
}

func TestCompressPubkeyInvalid(t *testing.T) {
	service := newService()

	if _, err := service.CompressPubkey(make([]byte, 33)); err == nil {
		t.Error("长度错误应返回错误")
	}

	bad := make([]byte, 65)
	bad[0] = 0x02 // 未压缩公钥前缀必须是0x04
	if _, err := service.CompressPubkey(bad); err == nil {
		t.Error("前缀错误应返回错误")
	}
}

func TestPubkeyToAddress(t *testing.T) {
	service := newService()

	priv, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatalf("生成密钥对失败: %v", err)
	}
	compressed := priv.PubKey().SerializeCompressed()

	testCases := []struct {
		name   string
		prefix string
	}{
		{name: "sei前缀", prefix: "sei"},
		{name: "cosmos前缀", prefix: "cosmos"},
		{name: "自定义前缀", prefix: "membria"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			addr, err := service.PubkeyToAddress(compressed, tc.prefix)
			if err != nil {
				t.Fatalf("地址推导失败: %v", err)
			}
			if !strings.HasPrefix(addr, tc.prefix+"1") {
				t.Errorf("地址应以 %s1 开头: %s", tc.prefix, addr)
			}
			if err := service.ValidateAddress(addr); err != nil {
				t.Errorf("推导出的地址应通过校验: %v", err)
			}

			// 同一公钥同一前缀必须推导出完全相同的地址
			again, err := service.PubkeyToAddress(compressed, tc.prefix)
			if err != nil {
				t.Fatalf("二次推导失败: %v", err)
			}
			if addr != again {
				t.Errorf("地址推导不具确定性: %s != %s", addr, again)
			}
		})
	}
}

func TestPubkeyToAddressUncompressedForm(t *testing.T) {
	service := newService()

	priv, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatalf("生成密钥对失败: %v", err)
	}

	fromCompressed, err := service.PubkeyToAddress(priv.PubKey().SerializeCompressed(), "sei")
	if err != nil {
		t.Fatalf("压缩公钥推导失败: %v", err)
	}
	fromUncompressed, err := service.PubkeyToAddress(priv.PubKey().SerializeUncompressed(), "sei")
	if err != nil {
		t.Fatalf("未压缩公钥推导失败: %v", err)
	}
	if fromCompressed != fromUncompressed {
		t.Errorf("同一密钥两种形式推导出不同地址: %s != %s", fromCompressed, fromUncompressed)
	}
}

func TestPubkeyToAddressInvalid(t *testing.T) {
	service := newService()

	if _, err := service.PubkeyToAddress(make([]byte, 32), "sei"); err == nil {
		t.Error("公钥长度错误应返回错误")
	}
	if _, err := service.PubkeyToAddress(make([]byte, 33), ""); err == nil {
		t.Error("空前缀应返回错误")
	}
}

func TestValidateAddress(t *testing.T) {
	service := newService()

	if err := service.ValidateAddress(""); err == nil {
		t.Error("空地址应返回错误")
	}
	if err := service.ValidateAddress("not-an-address"); err == nil {
		t.Error("非bech32字符串应返回错误")
	}
	if err := service.ValidateAddress("sei1QQqq"); err == nil {
		t.Error("混合大小写应返回错误")
	}
}
