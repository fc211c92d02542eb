package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/fx"

	"github.com/membria/v1/internal/app"
)

const version = "0.19.0"

func main() {
	// 任何装配阶段的 panic 都转成带说明的退出
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "❌ [PANIC] 程序发生严重错误: %v\n", r)
			fmt.Fprintf(os.Stderr, "请检查配置和依赖是否正确\n")
			os.Exit(1)
		}
	}()

	var (
		configPath  string
		showVersion bool
	)
	flag.StringVar(&configPath, "config", "config.json", "配置文件路径")
	flag.BoolVar(&showVersion, "version", false, "显示版本信息")
	flag.Parse()

	if showVersion {
		fmt.Printf("membria-node %s\n", version)
		return
	}

	userConfig, err := app.LoadUserConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ 配置装载失败: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("🚀 membria-node 启动中...")

	fxApp := fx.New(app.Module(userConfig))
	fxApp.Run()
}
