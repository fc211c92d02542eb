package log

import (
	"fmt"

	logconfig "github.com/membria/v1/internal/config/log"
	logInterface "github.com/membria/v1/pkg/interfaces/infrastructure/log"
	"github.com/membria/v1/pkg/types"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ModuleParams 定义日志模块的依赖参数
type ModuleParams struct {
	fx.In

	UserConfig *types.UserConfig
}

// ModuleOutput 定义日志模块的输出结构
type ModuleOutput struct {
	fx.Out

	Logger    logInterface.Logger // 日志记录器接口
	ZapLogger *zap.Logger         // zap.Logger 具体类型（供需要 zap 特性的模块使用）
}

// Module 返回日志模块
func Module() fx.Option {
	return fx.Module("log",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 根据用户配置初始化日志记录器
func ProvideServices(params ModuleParams) (ModuleOutput, error) {
	var userLogConfig *types.UserLogConfig
	if params.UserConfig != nil {
		userLogConfig = params.UserConfig.Log
	}

	logger, err := New(logconfig.New(userLogConfig))
	if err != nil {
		return ModuleOutput{}, fmt.Errorf("根据用户配置创建日志记录器失败: %w", err)
	}

	// 替换掉init()时用默认配置创建的全局记录器
	SetLogger(logger)

	return ModuleOutput{
		Logger:    logger,
		ZapLogger: logger.GetZapLogger(),
	}, nil
}
