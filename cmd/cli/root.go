package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// GlobalFlags 全局标志
type GlobalFlags struct {
	NodeURL string // 节点HTTP API地址
	Timeout int    // 请求超时（秒）
}

var globalFlags GlobalFlags

// rootCmd 根命令
var rootCmd = &cobra.Command{
	Use:   "membria",
	Short: "Membria 会员凭证命令行客户端",
	Long: `Membria CLI - 会员凭证登记处与承兑网关的薄客户端

提供以下能力:
- 查询登记处的凭证、授权与角色
- 链下构造并签署 claim
- 向承兑网关提交承兑与只读验签`,
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&globalFlags.NodeURL, "node", "http://127.0.0.1:8545", "节点HTTP API地址")
	rootCmd.PersistentFlags().IntVar(&globalFlags.Timeout, "timeout", 15, "请求超时（秒）")

	rootCmd.AddCommand(registryCmd)
	rootCmd.AddCommand(claimCmd)
	rootCmd.AddCommand(bankCmd)
}

func httpClient() *http.Client {
	return &http.Client{Timeout: time.Duration(globalFlags.Timeout) * time.Second}
}

// apiGet 调用节点查询端点并原样输出响应JSON
func apiGet(path string) error {
	resp, err := httpClient().Get(globalFlags.NodeURL + path)
	if err != nil {
		return fmt.Errorf("请求节点失败: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

// apiPost 调用节点执行端点并原样输出响应JSON
func apiPost(path string, body interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("序列化请求失败: %w", err)
	}

	resp, err := httpClient().Post(globalFlags.NodeURL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("请求节点失败: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

// printResponse 缩进输出响应体；非2xx时以错误返回
func printResponse(resp *http.Response) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("读取响应失败: %w", err)
	}

	var pretty bytes.Buffer
	if json.Indent(&pretty, data, "", "  ") == nil {
		fmt.Println(pretty.String())
	} else {
		fmt.Println(string(data))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("节点返回 %s", resp.Status)
	}
	return nil
}
