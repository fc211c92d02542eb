package main

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

var (
	registryOwner      string
	registryStartAfter string
	registryLimit      uint32
	registryExpired    bool
)

// registryCmd 登记处相关命令
var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "登记处查询",
}

// registryInfoCmd 查询合约元数据
var registryInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "查询登记处元数据与开关",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := apiGet("/api/v1/registry/contract-info"); err != nil {
			return err
		}
		return apiGet("/api/v1/registry/flags")
	},
}

// registryTokensCmd 分页列出凭证
var registryTokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "分页列出凭证ID",
	RunE: func(cmd *cobra.Command, args []string) error {
		query := url.Values{}
		if registryOwner != "" {
			query.Set("owner", registryOwner)
		}
		if registryStartAfter != "" {
			query.Set("start_after", registryStartAfter)
		}
		if registryLimit > 0 {
			query.Set("limit", fmt.Sprint(registryLimit))
		}

		path := "/api/v1/registry/tokens"
		if encoded := query.Encode(); encoded != "" {
			path += "?" + encoded
		}
		return apiGet(path)
	},
}

// registryTokenCmd 查询单枚凭证
var registryTokenCmd = &cobra.Command{
	Use:   "token <token-id>",
	Short: "查询单枚凭证的所有权与元数据",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "/api/v1/registry/token/" + url.PathEscape(args[0]) + "/full"
		if registryExpired {
			path += "?include_expired=true"
		}
		return apiGet(path)
	},
}

// registryActiveCmd 查询所有者的活跃凭证
var registryActiveCmd = &cobra.Command{
	Use:   "active <owner>",
	Short: "查询所有者当前活跃的凭证ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return apiGet("/api/v1/registry/owner/" + url.PathEscape(args[0]) + "/active-token")
	},
}

func init() {
	registryTokensCmd.Flags().StringVar(&registryOwner, "owner", "", "只列出该所有者的凭证")
	registryTokensCmd.Flags().StringVar(&registryStartAfter, "start-after", "", "分页游标（不含）")
	registryTokensCmd.Flags().Uint32Var(&registryLimit, "limit", 0, "每页数量，最大100")

	registryTokenCmd.Flags().BoolVar(&registryExpired, "include-expired", false, "包含已过期授权")

	registryCmd.AddCommand(registryInfoCmd)
	registryCmd.AddCommand(registryTokensCmd)
	registryCmd.AddCommand(registryTokenCmd)
	registryCmd.AddCommand(registryActiveCmd)
}
