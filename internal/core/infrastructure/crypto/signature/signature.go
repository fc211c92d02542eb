// Package signature 提供签名恢复与验证服务
package signature

import (
	cryptointf "github.com/membria/v1/pkg/interfaces/infrastructure/crypto"
	"github.com/membria/v1/internal/core/infrastructure/crypto/secp256k1"
)

// 确保SignatureService实现了cryptointf.SignatureManager接口
var _ cryptointf.SignatureManager = (*SignatureService)(nil)

// SignatureService 签名服务
//
// 业务路径只做恢复与验证；SignRecoverable 仅供 CLI 构造 claim 与测试。
type SignatureService struct {
	curve *secp256k1.Curve
}

// NewSignatureService 创建签名服务
func NewSignatureService() *SignatureService {
	return &SignatureService{curve: secp256k1.NewCurve()}
}

// RecoverPubkey 从摘要与签名恢复33字节压缩公钥
func (s *SignatureService) RecoverPubkey(hash, signature []byte, recoveryID byte) ([]byte, error) {
	return s.curve.RecoverPubkey(hash, signature, recoveryID)
}

// SignRecoverable 对摘要生成可恢复签名
func (s *SignatureService) SignRecoverable(hash, privateKey []byte) ([]byte, byte, error) {
	return s.curve.Sign(hash, privateKey)
}

// VerifySignature 验证64字节签名
func (s *SignatureService) VerifySignature(pubKey, hash, signature []byte) bool {
	return s.curve.VerifySignature(pubKey, hash, signature)
}
