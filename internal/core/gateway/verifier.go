package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	cryptointf "github.com/membria/v1/pkg/interfaces/infrastructure/crypto"
	"github.com/membria/v1/pkg/types"
)

// claimDigest 计算 claim 消息的规范摘要
//
// 规范形式是字段序固定的紧凑 JSON，再做 SHA-256。
// 签名端与验证端必须逐字节一致，任何字段顺序或空白差异
// 都会导致恢复出完全不同的签名人。
func claimDigest(hasher cryptointf.HashManager, msg types.ClaimMessage) ([]byte, error) {
	canonical, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("claim 序列化失败: %w", err)
	}
	return hasher.Sha256(canonical), nil
}

// recoverSigner 从签名恢复签名人的网络地址
//
// 管线：恢复压缩公钥 → SHA256 → RIPEMD160 → bech32（前缀取
// claim 声明的 bech32_hrp）。恢复失败是硬错误。
func (s *Service) recoverSigner(msg types.ClaimMessage, signature []byte, recoveryByte byte) (addr string, pubkey []byte, digest []byte, err error) {
	digest, err = claimDigest(s.hasher, msg)
	if err != nil {
		return "", nil, nil, &ValidationError{Err: err}
	}

	pubkey, err = s.signer.RecoverPubkey(digest, signature, recoveryByte)
	if err != nil {
		return "", nil, nil, &ValidationError{Err: err}
	}

	addr, err = s.addr.PubkeyToAddress(pubkey, msg.Bech32Prefix)
	if err != nil {
		return "", nil, nil, &ValidationError{Err: err}
	}
	return addr, pubkey, digest, nil
}

// validateClaim 执行三项检查并全部返回
//
// 三个布尔量无条件算完，不短路：失败响应需要完整报告
// 哪一项没过。
func (s *Service) validateClaim(ctx context.Context, msg types.ClaimMessage, signature []byte, recoveryByte byte) (isDuplicate, isSignValid, hasRole bool, err error) {
	signer, _, _, err := s.recoverSigner(msg, signature, recoveryByte)
	if err != nil {
		return false, false, false, err
	}

	isDuplicate = s.isReplayed(signature)
	isSignValid = signer == msg.From

	hasRole, roleErr := s.members.HasRole(ctx, msg.VerifyingContract, signer, types.RoleClaimIssuer)
	if roleErr != nil {
		return false, false, false, &ValidationError{Err: fmt.Errorf("远端角色查询失败: %w", roleErr)}
	}
	return isDuplicate, isSignValid, hasRole, nil
}
