package http

import (
	"go.uber.org/fx"

	apiconfig "github.com/membria/v1/internal/config/api"
	"github.com/membria/v1/pkg/interfaces/infrastructure/log"
	"github.com/membria/v1/pkg/types"
)

// ConfigParams HTTP配置依赖
type ConfigParams struct {
	fx.In

	UserConfig *types.UserConfig `optional:"true"`
}

// provideConfig 从用户配置构建API配置
func provideConfig(params ConfigParams) *apiconfig.Config {
	var userCfg *types.UserAPIConfig
	if params.UserConfig != nil {
		userCfg = params.UserConfig.API
	}
	return apiconfig.New(userCfg)
}

// Module HTTP服务模块
func Module() fx.Option {
	return fx.Module("api.http",
		fx.Provide(provideConfig),
		fx.Provide(NewServer),

		// 强制实例化，注册生命周期钩子
		fx.Invoke(func(server *Server, logger log.Logger) {
			logger.Info("HTTP API模块加载")
		}),
	)
}
