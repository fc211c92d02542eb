package bank

import (
	"context"

	"go.uber.org/fx"

	gatewayintf "github.com/membria/v1/pkg/interfaces/gateway"
	"github.com/membria/v1/pkg/interfaces/infrastructure/log"
	"github.com/membria/v1/pkg/interfaces/infrastructure/storage"
)

// ModuleParams 台账模块依赖
type ModuleParams struct {
	fx.In

	Store  storage.KVStore
	Logger log.Logger `optional:"true"`
}

// ModuleOutput 台账模块输出
type ModuleOutput struct {
	fx.Out

	Bank gatewayintf.BankService
}

// ProvideServices 装配余额台账
func ProvideServices(params ModuleParams) (ModuleOutput, error) {
	svc, err := NewService(context.Background(), params.Store, params.Logger)
	if err != nil {
		return ModuleOutput{}, err
	}
	return ModuleOutput{Bank: svc}, nil
}

// Module 台账fx模块
func Module() fx.Option {
	return fx.Module("bank",
		fx.Provide(ProvideServices),
	)
}
