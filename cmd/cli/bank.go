package main

import (
	"net/url"

	"github.com/spf13/cobra"
)

var (
	bankAccount string
	bankDenom   string
	bankAmount  string
)

// bankCmd 余额台账相关命令
var bankCmd = &cobra.Command{
	Use:   "bank",
	Short: "余额台账操作",
}

// bankBalanceCmd 查询余额
var bankBalanceCmd = &cobra.Command{
	Use:   "balance <account> <denom>",
	Short: "查询账户某币种余额",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return apiGet("/api/v1/bank/balance/" + url.PathEscape(args[0]) + "/" + url.PathEscape(args[1]))
	},
}

// bankDepositCmd 入金
var bankDepositCmd = &cobra.Command{
	Use:   "deposit",
	Short: "向账户充值",
	RunE: func(cmd *cobra.Command, args []string) error {
		return apiPost("/api/v1/bank/deposit", map[string]interface{}{
			"account": bankAccount,
			"amount": map[string]string{
				"denom":  bankDenom,
				"amount": bankAmount,
			},
		})
	},
}

func init() {
	bankDepositCmd.Flags().StringVar(&bankAccount, "account", "", "入金账户（必填）")
	bankDepositCmd.Flags().StringVar(&bankDenom, "denom", "", "币种（必填）")
	bankDepositCmd.Flags().StringVar(&bankAmount, "amount", "", "金额（必填）")
	_ = bankDepositCmd.MarkFlagRequired("account")
	_ = bankDepositCmd.MarkFlagRequired("denom")
	_ = bankDepositCmd.MarkFlagRequired("amount")

	bankCmd.AddCommand(bankBalanceCmd)
	bankCmd.AddCommand(bankDepositCmd)
}
