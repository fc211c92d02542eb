package hash

import (
	"encoding/hex"
	"testing"
)

func TestSha256(t *testing.T) {
	service := NewHashService()

	// NIST标准测试向量
	got := service.Sha256([]byte("abc"))
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if hex.EncodeToString(got) != want {
		t.Errorf("SHA256不匹配:\n期望 %s\n实际 %s", want, hex.EncodeToString(got))
	}

	// 缓存路径返回的必须是相同结果
	again := service.Sha256([]byte("abc"))
	if hex.EncodeToString(again) != want {
		t.Errorf("缓存命中后结果不一致: %s", hex.EncodeToString(again))
	}
}

func TestHash160(t *testing.T) {
	service := NewHashService()

	// 比特币创世公钥的hash160已知向量
	pubkey, _ := hex.DecodeString("0250863ad64a87ae8a2fe83c1af1a8403cb53f53e486d8511dad8a04887e5b2352")
	got := service.Hash160(pubkey)
	want := "f54a5851e9372b87810a8e60cdd2e7cfd80b6e31"
	if hex.EncodeToString(got) != want {
		t.Errorf("Hash160不匹配:\n期望 %s\n实际 %s", want, hex.EncodeToString(got))
	}

	if len(got) != 20 {
		t.Errorf("Hash160结果应为20字节，实际 %d", len(got))
	}
}

func TestDoubleSha256(t *testing.T) {
	service := NewHashService()

	got := service.DoubleSha256([]byte("hello"))
	want := "9595c9df90075148eb06860365df33584b75bff782a510c6cd4883a419833d50"
	if hex.EncodeToString(got) != want {
		t.Errorf("DoubleSha256不匹配:\n期望 %s\n实际 %s", want, hex.EncodeToString(got))
	}
}

func TestCacheIsolation(t *testing.T) {
	service := NewHashService()

	result := service.Sha256([]byte("data"))
	result[0] ^= 0xFF // 篡改返回值不应污染缓存

	clean := service.Sha256([]byte("data"))
	if clean[0] == result[0] {
		t.Error("缓存返回的切片应是副本，不应被外部修改污染")
	}
}
