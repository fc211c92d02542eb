// Package address 提供账户地址的推导与校验
//
// 地址管线固定为：压缩公钥(33字节) → SHA256 → RIPEMD160 → bech32(prefix)。
// claim 验签时用声明的人类可读前缀（bech32_hrp）推导，再与 from 精确比较。
package address

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"

	cryptointf "github.com/membria/v1/pkg/interfaces/infrastructure/crypto"
)

// 确保AddressService实现了cryptointf.AddressManager接口
var _ cryptointf.AddressManager = (*AddressService)(nil)

// AddressService 地址服务
type AddressService struct {
	hasher cryptointf.HashManager
}

// NewAddressService 创建地址服务
func NewAddressService(hasher cryptointf.HashManager) *AddressService {
	return &AddressService{hasher: hasher}
}

// PubkeyToAddress 将公钥推导为带前缀的bech32地址
//
// 接受33字节压缩或65字节未压缩公钥，后者先压缩再进哈希管线，
// 同一密钥的两种形式推导出同一地址。
func (s *AddressService) PubkeyToAddress(pubkey []byte, prefix string) (string, error) {
	if prefix == "" {
		return "", fmt.Errorf("地址前缀不能为空")
	}

	if len(pubkey) == 65 {
		compressed, err := s.CompressPubkey(pubkey)
		if err != nil {
			return "", err
		}
		pubkey = compressed
	}
	if len(pubkey) != 33 {
		return "", &ErrInvalidPubkeyLength{Expected: 33, Got: len(pubkey)}
	}

	payload := s.hasher.Hash160(pubkey)

	// bech32 数据段按 5-bit 分组编码
	converted, err := bech32.ConvertBits(payload, 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("bech32位转换失败: %w", err)
	}

	encoded, err := bech32.Encode(prefix, converted)
	if err != nil {
		return "", fmt.Errorf("bech32编码失败: %w", err)
	}
	return encoded, nil
}

// CompressPubkey 将65字节未压缩公钥压缩为33字节
//
// 前缀字节由 Y 坐标末字节的奇偶性决定：偶数 0x02，奇数 0x03。
func (s *AddressService) CompressPubkey(uncompressed []byte) ([]byte, error) {
	if len(uncompressed) != 65 {
		return nil, &ErrInvalidPubkeyLength{Expected: 65, Got: len(uncompressed)}
	}
	if uncompressed[0] != 0x04 {
		return nil, fmt.Errorf("无效的未压缩公钥前缀: 0x%02x", uncompressed[0])
	}

	compressed := make([]byte, 33)
	if uncompressed[64]%2 == 0 {
		compressed[0] = 0x02
	} else {
		compressed[0] = 0x03
	}
	copy(compressed[1:], uncompressed[1:33]) // X 坐标
	return compressed, nil
}

// ValidateAddress 校验bech32地址格式
func (s *AddressService) ValidateAddress(address string) error {
	if address == "" {
		return fmt.Errorf("地址不能为空")
	}
	if strings.ToLower(address) != address && strings.ToUpper(address) != address {
		return fmt.Errorf("bech32地址不允许混合大小写: %s", address)
	}

	_, _, err := bech32.Decode(address)
	if err != nil {
		return fmt.Errorf("无效的bech32地址 %s: %w", address, err)
	}
	return nil
}

// ErrInvalidPubkeyLength 公钥长度无效
type ErrInvalidPubkeyLength struct {
	Expected int
	Got      int
}

func (e *ErrInvalidPubkeyLength) Error() string {
	return fmt.Sprintf("无效的公钥长度: 期望 %d 字节，实际 %d 字节", e.Expected, e.Got)
}
