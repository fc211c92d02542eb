package signature

import (
	"bytes"
	"crypto/sha256"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
)

func TestRecoverRoundTrip(t *testing.T) {
	service := NewSignatureService()

	priv, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatalf("生成密钥对失败: %v", err)
	}
	wantPubkey := priv.PubKey().SerializeCompressed()

	testCases := []struct {
		name string
		data []byte
	}{
		{name: "普通消息", data: []byte("这是一条测试消息")},
		{name: "空消息", data: []byte{}},
		{name: "二进制数据", data: []byte{0x00, 0x01, 0x02, 0xFF, 0xFE}},
		{name: "类claim的JSON", data: []byte(`{"from":"wallet1","to":"wallet1","token_uri":"uri","fee":{"denom":"usei","amount":"146"}}`)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			digest := sha256.Sum256(tc.data)

			sig, recID, err := service.SignRecoverable(digest[:], priv.Serialize())
			if err != nil {
				t.Fatalf("签名失败: %v", err)
			}
			if len(sig) != 64 {
				t.Errorf("签名长度应为64字节，但得到 %d 字节", len(sig))
			}
			if recID >= 4 {
				t.Errorf("恢复字节应在 0-3 范围内，但得到 %d", recID)
			}

			// 恢复公钥应逐字节等于签名者的压缩公钥
			recovered, err := service.RecoverPubkey(digest[:], sig, recID)
			if err != nil {
				t.Fatalf("公钥恢复失败: %v", err)
			}
			if !bytes.Equal(recovered, wantPubkey) {
				t.Errorf("恢复的公钥不匹配:\n期望 %x\n实际 %x", wantPubkey, recovered)
			}

			if !service.VerifySignature(wantPubkey, digest[:], sig) {
				t.Error("有效签名验证失败")
			}
		})
	}
}

func TestRecoverWrongDigest(t *testing.T) {
	service := NewSignatureService()

	priv, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatalf("生成密钥对失败: %v", err)
	}

	digest := sha256.Sum256([]byte("原始消息"))
	sig, recID, err := service.SignRecoverable(digest[:], priv.Serialize())
	if err != nil {
		t.Fatalf("签名失败: %v", err)
	}

	// 换一个摘要恢复：要么报错，要么恢复出不同的公钥
	other := sha256.Sum256([]byte("被篡改的消息"))
	recovered, err := service.RecoverPubkey(other[:], sig, recID)
	if err == nil && bytes.Equal(recovered, priv.PubKey().SerializeCompressed()) {
		t.Error("篡改摘要后不应恢复出原公钥")
	}
}

func TestRecoverInvalidInput(t *testing.T) {
	service := NewSignatureService()

	if _, err := service.RecoverPubkey(make([]byte, 32), make([]byte, 63), 0); err == nil {
		t.Error("签名长度错误应返回错误")
	}
	if _, err := service.RecoverPubkey(make([]byte, 31), make([]byte, 64), 0); err == nil {
		t.Error("摘要长度错误应返回错误")
	}
	if _, err := service.RecoverPubkey(make([]byte, 32), make([]byte, 64), 4); err == nil {
		t.Error("越界的恢复字节应返回错误")
	}
}
