// Package crypto 提供密码学基础设施接口定义
//
// 签名与密钥材料始终由调用方提供，本系统不生成、不保管任何私钥。
package crypto

// HashManager 哈希计算接口
type HashManager interface {
	// Sha256 计算 SHA-256 摘要
	Sha256(data []byte) []byte

	// DoubleSha256 计算双 SHA-256 摘要
	DoubleSha256(data []byte) []byte

	// Hash160 计算两段式摘要：RIPEMD160(SHA256(data))
	Hash160(data []byte) []byte
}

// SignatureManager 签名恢复与验证接口
type SignatureManager interface {
	// RecoverPubkey 从 (摘要, 64字节签名, 恢复字节) 恢复压缩公钥（33字节）
	//
	// 恢复失败是硬错误，不是"无效"的软结果。
	RecoverPubkey(hash []byte, signature []byte, recoveryID byte) ([]byte, error)

	// SignRecoverable 对摘要生成可恢复签名，返回 64 字节签名与恢复字节
	//
	// 仅用于 CLI 与测试构造 claim，业务路径从不签名。
	SignRecoverable(hash []byte, privateKey []byte) ([]byte, byte, error)

	// VerifySignature 验证 64 字节签名
	VerifySignature(pubKey, hash, signature []byte) bool
}

// AddressManager 地址推导与校验接口
type AddressManager interface {
	// PubkeyToAddress 将公钥按固定管线推导为带前缀的网络地址
	//
	// 管线：压缩公钥(33字节) → SHA256 → RIPEMD160 → bech32(prefix) 。
	// 65 字节未压缩公钥先经 CompressPubkey 归一。该管线是一致性
	// 关键路径，必须逐字节精确。
	PubkeyToAddress(pubkey []byte, prefix string) (string, error)

	// CompressPubkey 将 65 字节未压缩公钥压缩为 33 字节
	//
	// 前缀字节由最后一个坐标字节的奇偶性决定（0x02/0x03）。
	CompressPubkey(uncompressed []byte) ([]byte, error)

	// ValidateAddress 校验地址格式；相等性是校验后的精确字符串比较
	ValidateAddress(address string) error
}
