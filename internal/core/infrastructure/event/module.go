// Package event 提供事件总线功能
package event

import (
	"context"

	"go.uber.org/fx"

	infraClock "github.com/membria/v1/pkg/interfaces/infrastructure/clock"
	infraEvent "github.com/membria/v1/pkg/interfaces/infrastructure/event"
	"github.com/membria/v1/pkg/interfaces/infrastructure/log"
)

// ModuleParams 事件模块输入依赖
type ModuleParams struct {
	fx.In

	Clock     infraClock.Clock
	Logger    log.Logger `optional:"true"`
	Lifecycle fx.Lifecycle
}

// ModuleOutput 事件模块输出服务
type ModuleOutput struct {
	fx.Out

	EventBus infraEvent.EventBus
}

// ProvideServices 创建事件总线并挂接生命周期
func ProvideServices(params ModuleParams) (ModuleOutput, error) {
	bus := New(params.Clock, params.Logger)

	params.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return bus.Close()
		},
	})

	return ModuleOutput{EventBus: bus}, nil
}

// Module 返回事件模块
func Module() fx.Option {
	return fx.Module("event",
		fx.Provide(ProvideServices),
	)
}
