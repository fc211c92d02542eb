// Package secp256k1 提供 secp256k1 椭圆曲线封装
//
// 🎯 **设计目的**：
// 封装 btcd/btcec 的 secp256k1 实现，对外提供统一的恢复/验证接口。
// 通过封装层隔离第三方库依赖，便于未来替换底层实现。
package secp256k1

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

// Curve 封装 secp256k1 椭圆曲线
type Curve struct{}

// NewCurve 创建新的 secp256k1 曲线实例
func NewCurve() *Curve {
	return &Curve{}
}

// RecoverPubkey 从签名恢复压缩公钥
//
// 参数：
//   - hash: 消息摘要（32字节）
//   - signature: 64字节签名（r+s）
//   - recoveryID: 恢复字节（0-3）
//
// 返回：
//   - []byte: 压缩公钥（33字节）
//   - error: 恢复失败时的错误
//
// btcd/btcec 的 RecoverCompact 期望"紧凑签名"格式：
//
//	sig[0] = header = 27 + recID (+4 表示压缩公钥)
//	sig[1:33] = r, sig[33:65] = s
//
// 上层接口总是以 (r+s, recID) 分离的形式传入，这里负责拼装。
func (c *Curve) RecoverPubkey(hash, signature []byte, recoveryID byte) ([]byte, error) {
	if len(signature) != 64 {
		return nil, &ErrInvalidSignatureLength{Expected: 64, Got: len(signature)}
	}
	if len(hash) != 32 {
		return nil, &ErrInvalidHashLength{Expected: 32, Got: len(hash)}
	}
	if recoveryID >= 4 {
		return nil, &ErrRecoverPubkeyFailed{Err: fmt.Errorf("invalid recovery id: %d", recoveryID)}
	}

	compactSig := make([]byte, 65)
	compactSig[0] = 27 + recoveryID + 4 // +4 表示返回压缩公钥
	copy(compactSig[1:], signature)

	pubKey, _, err := ecdsa.RecoverCompact(compactSig, hash)
	if err != nil {
		return nil, &ErrRecoverPubkeyFailed{Err: err}
	}

	return pubKey.SerializeCompressed(), nil
}

// Sign 对摘要生成可恢复签名
//
// 返回 64 字节 r+s 与恢复字节。仅供 CLI 与测试使用。
func (c *Curve) Sign(hash, privateKey []byte) ([]byte, byte, error) {
	if len(hash) != 32 {
		return nil, 0, &ErrInvalidHashLength{Expected: 32, Got: len(hash)}
	}
	if len(privateKey) != 32 {
		return nil, 0, fmt.Errorf("无效的私钥长度: 期望 32 字节，实际 %d 字节", len(privateKey))
	}

	priv, _ := btcec.PrivKeyFromBytes(privateKey)
	compact := ecdsa.SignCompact(priv, hash, true)

	// SignCompact 返回 header(1) + r(32) + s(32)，header = 27 + recID + 4
	recID := compact[0] - 27 - 4
	sig := make([]byte, 64)
	copy(sig, compact[1:])
	return sig, recID, nil
}

// VerifySignature 验证 secp256k1 签名
//
// pubKey 接受 33 字节压缩或 65 字节未压缩格式，signature 为 64 字节 r+s。
func (c *Curve) VerifySignature(pubKey, hash, signature []byte) bool {
	if len(hash) != 32 || len(signature) != 64 {
		return false
	}

	pubKeyObj, err := btcec.ParsePubKey(pubKey)
	if err != nil {
		return false
	}

	var r, s btcec.ModNScalar
	if overflow := r.SetByteSlice(signature[:32]); overflow {
		return false
	}
	if overflow := s.SetByteSlice(signature[32:]); overflow {
		return false
	}

	sigObj := ecdsa.NewSignature(&r, &s)
	return sigObj.Verify(hash, pubKeyObj)
}

// 错误类型定义

// ErrInvalidSignatureLength 签名长度无效
type ErrInvalidSignatureLength struct {
	Expected int
	Got      int
}

func (e *ErrInvalidSignatureLength) Error() string {
	return fmt.Sprintf("无效的签名长度: 期望 %d 字节，实际 %d 字节", e.Expected, e.Got)
}

// ErrInvalidHashLength 哈希长度无效
type ErrInvalidHashLength struct {
	Expected int
	Got      int
}

func (e *ErrInvalidHashLength) Error() string {
	return fmt.Sprintf("无效的哈希长度: 期望 %d 字节，实际 %d 字节", e.Expected, e.Got)
}

// ErrRecoverPubkeyFailed 公钥恢复失败
type ErrRecoverPubkeyFailed struct {
	Err error
}

func (e *ErrRecoverPubkeyFailed) Error() string {
	return fmt.Sprintf("公钥恢复失败: %v", e.Err)
}

func (e *ErrRecoverPubkeyFailed) Unwrap() error {
	return e.Err
}
