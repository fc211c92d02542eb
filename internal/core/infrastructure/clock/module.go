package clock

import (
	"time"

	"go.uber.org/fx"

	clockConfig "github.com/membria/v1/internal/config/clock"
	infraClock "github.com/membria/v1/pkg/interfaces/infrastructure/clock"
	"github.com/membria/v1/pkg/types"
)

// ModuleParams 时钟模块依赖
type ModuleParams struct {
	fx.In

	UserConfig *types.UserConfig `optional:"true"`
}

// ModuleOutput 时钟模块输出
type ModuleOutput struct {
	fx.Out

	Clock infraClock.Clock
}

// ProvideServices 根据配置选择时钟实现
func ProvideServices(params ModuleParams) (ModuleOutput, error) {
	var userCfg *types.UserClockConfig
	if params.UserConfig != nil {
		userCfg = params.UserConfig.Clock
	}
	cfg := clockConfig.New(userCfg)

	var c infraClock.Clock
	switch cfg.GetSource() {
	case "ntp":
		c = NewNTPClock(cfg.GetNTPServers(), 5*time.Minute)
	default:
		c = NewSystemClock()
	}

	return ModuleOutput{Clock: c}, nil
}

// Module 时钟fx模块
func Module() fx.Option {
	return fx.Module("clock",
		fx.Provide(ProvideServices),
	)
}
