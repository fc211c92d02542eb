package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/membria/v1/internal/core/infrastructure/crypto/address"
	"github.com/membria/v1/internal/core/infrastructure/crypto/hash"
	"github.com/membria/v1/internal/core/infrastructure/crypto/signature"
	"github.com/membria/v1/pkg/types"
)

var (
	claimKeyHex   string
	claimTo       string
	claimTokenURI string
	claimFeeDenom string
	claimFeeAmt   string
	claimContract string
	claimChainID  string
	claimHRP      string
	claimTS       string
	claimCaller   string
	claimFile     string
)

// claimCmd claim 相关命令
var claimCmd = &cobra.Command{
	Use:   "claim",
	Short: "链下 claim 的构造、签署与承兑",
}

// signedClaim claim sign 的输出，也是 claim redeem 的输入
type signedClaim struct {
	Message      types.ClaimMessage `json:"message"`
	Signature    string             `json:"signature"`
	RecoveryByte byte               `json:"recovery_byte"`
	Signer       string             `json:"signer"`
}

// claimSignCmd 本地签署一份 claim
var claimSignCmd = &cobra.Command{
	Use:   "sign",
	Short: "用签发者私钥签署一份 claim",
	Long: `在本地构造 claim 消息并用签发者私钥签署。

私钥只在本进程内存中使用，不会发往节点。输出可直接作为
claim redeem 的输入文件。

示例：
  membria claim sign --key <hex私钥> --to sei1... --token-uri ipfs://... \
    --fee-denom usei --fee-amount 146 --contract <登记处地址> \
    --chain-id membria-1 --hrp sei > claim.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		privKey, err := hex.DecodeString(claimKeyHex)
		if err != nil {
			return fmt.Errorf("私钥不是合法的十六进制: %w", err)
		}

		hasher := hash.NewHashService()
		signer := signature.NewSignatureService()
		addresser := address.NewAddressService(hasher)

		if claimTS == "" {
			claimTS = strconv.FormatInt(time.Now().UnixMilli(), 10)
		}

		msg := types.ClaimMessage{
			To:                claimTo,
			TokenURI:          claimTokenURI,
			Fee:               types.NewCoin(claimFeeDenom, claimFeeAmt),
			VerifyingContract: claimContract,
			ChainID:           claimChainID,
			Bech32Prefix:      claimHRP,
			Timestamp:         claimTS,
		}

		// From 由私钥推导，保证签名人与声明的签发者一致
		probe, err := json.Marshal(msg)
		if err != nil {
			return err
		}
		sig, recID, err := signer.SignRecoverable(hasher.Sha256(probe), privKey)
		if err != nil {
			return fmt.Errorf("探测签名失败: %w", err)
		}
		pubkey, err := signer.RecoverPubkey(hasher.Sha256(probe), sig, recID)
		if err != nil {
			return fmt.Errorf("恢复公钥失败: %w", err)
		}
		from, err := addresser.PubkeyToAddress(pubkey, claimHRP)
		if err != nil {
			return fmt.Errorf("推导签发者地址失败: %w", err)
		}

		// 正式签名覆盖填好 From 的完整消息
		msg.From = from
		canonical, err := json.Marshal(msg)
		if err != nil {
			return err
		}
		sig, recID, err = signer.SignRecoverable(hasher.Sha256(canonical), privKey)
		if err != nil {
			return fmt.Errorf("签名失败: %w", err)
		}

		out, err := json.MarshalIndent(signedClaim{
			Message:      msg,
			Signature:    hex.EncodeToString(sig),
			RecoveryByte: recID,
			Signer:       from,
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

// claimRedeemCmd 向网关提交承兑
var claimRedeemCmd = &cobra.Command{
	Use:   "redeem",
	Short: "向承兑网关提交已签署的 claim",
	RunE: func(cmd *cobra.Command, args []string) error {
		signed, err := readSignedClaim(claimFile)
		if err != nil {
			return err
		}

		return apiPost("/api/v1/gateway/mint-with-claim", map[string]interface{}{
			"caller":        claimCaller,
			"message":       signed.Message,
			"signature":     signed.Signature,
			"recovery_byte": signed.RecoveryByte,
		})
	},
}

// claimVerifyCmd 只读验签
var claimVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "对已签署的 claim 做只读验签",
	RunE: func(cmd *cobra.Command, args []string) error {
		signed, err := readSignedClaim(claimFile)
		if err != nil {
			return err
		}

		return apiPost("/api/v1/gateway/verify-sign", map[string]interface{}{
			"message":       signed.Message,
			"signature":     signed.Signature,
			"recovery_byte": signed.RecoveryByte,
		})
	},
}

func readSignedClaim(path string) (*signedClaim, error) {
	if path == "" {
		return nil, fmt.Errorf("必须通过 --claim-file 指定已签署的 claim 文件")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取 claim 文件失败: %w", err)
	}
	var signed signedClaim
	if err := json.Unmarshal(data, &signed); err != nil {
		return nil, fmt.Errorf("解析 claim 文件失败: %w", err)
	}
	return &signed, nil
}

func init() {
	claimSignCmd.Flags().StringVar(&claimKeyHex, "key", "", "签发者私钥（十六进制，必填）")
	claimSignCmd.Flags().StringVar(&claimTo, "to", "", "凭证接收者地址（必填）")
	claimSignCmd.Flags().StringVar(&claimTokenURI, "token-uri", "", "凭证元数据URI")
	claimSignCmd.Flags().StringVar(&claimFeeDenom, "fee-denom", "", "手续费币种（必填）")
	claimSignCmd.Flags().StringVar(&claimFeeAmt, "fee-amount", "", "手续费金额（必填）")
	claimSignCmd.Flags().StringVar(&claimContract, "contract", "", "登记处地址，即 verifying_contract（必填）")
	claimSignCmd.Flags().StringVar(&claimChainID, "chain-id", "", "链标识（必填）")
	claimSignCmd.Flags().StringVar(&claimHRP, "hrp", "", "地址的bech32前缀（必填）")
	claimSignCmd.Flags().StringVar(&claimTS, "timestamp", "", "毫秒时间戳，缺省取当前时间")
	_ = claimSignCmd.MarkFlagRequired("key")
	_ = claimSignCmd.MarkFlagRequired("to")
	_ = claimSignCmd.MarkFlagRequired("fee-denom")
	_ = claimSignCmd.MarkFlagRequired("fee-amount")
	_ = claimSignCmd.MarkFlagRequired("contract")
	_ = claimSignCmd.MarkFlagRequired("chain-id")
	_ = claimSignCmd.MarkFlagRequired("hrp")

	claimRedeemCmd.Flags().StringVar(&claimFile, "claim-file", "", "claim sign 输出的文件")
	claimRedeemCmd.Flags().StringVar(&claimCaller, "caller", "", "承兑调用者地址，必须等于 claim 的 to")
	_ = claimRedeemCmd.MarkFlagRequired("claim-file")
	_ = claimRedeemCmd.MarkFlagRequired("caller")

	claimVerifyCmd.Flags().StringVar(&claimFile, "claim-file", "", "claim sign 输出的文件")
	_ = claimVerifyCmd.MarkFlagRequired("claim-file")

	claimCmd.AddCommand(claimSignCmd)
	claimCmd.AddCommand(claimRedeemCmd)
	claimCmd.AddCommand(claimVerifyCmd)
}
