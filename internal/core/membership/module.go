// Package membership 实现会员凭证登记处
package membership

import (
	"context"
	"encoding/json"

	"go.uber.org/fx"

	registryConfig "github.com/membria/v1/internal/config/registry"
	infraClock "github.com/membria/v1/pkg/interfaces/infrastructure/clock"
	cryptointf "github.com/membria/v1/pkg/interfaces/infrastructure/crypto"
	infraEvent "github.com/membria/v1/pkg/interfaces/infrastructure/event"
	"github.com/membria/v1/pkg/interfaces/infrastructure/log"
	"github.com/membria/v1/pkg/interfaces/infrastructure/storage"
	"github.com/membria/v1/pkg/interfaces/membership"
	"github.com/membria/v1/pkg/types"
)

// ModuleParams 登记处模块依赖
type ModuleParams struct {
	fx.In

	UserConfig *types.UserConfig `optional:"true"`
	Store      storage.KVStore
	Clock      infraClock.Clock
	EventBus   infraEvent.EventBus
	Address    cryptointf.AddressManager
	Logger     log.Logger `optional:"true"`
}

// ModuleOutput 登记处模块输出
type ModuleOutput struct {
	fx.Out

	Registry membership.Registry
}

// ProvideServices 装配登记处
//
// 接口层的 extension 统一实例化为不透明 JSON。
func ProvideServices(params ModuleParams) (ModuleOutput, error) {
	var userCfg *types.UserRegistryConfig
	if params.UserConfig != nil {
		userCfg = params.UserConfig.Registry
	}
	opts := registryConfig.New(userCfg).GetOptions()

	svc, err := NewService[json.RawMessage](
		context.Background(),
		params.Store,
		params.Clock,
		params.EventBus,
		params.Address,
		params.Logger,
		Options{
			Name:        opts.Name,
			Symbol:      opts.Symbol,
			ChainID:     opts.ChainID,
			Creator:     opts.Creator,
			Minter:      opts.Minter,
			ClaimIssuer: opts.ClaimIssuer,
			OpenMint:    opts.IsOpenMint,
			SingleMint:  opts.IsSingleMint,
			Tradable:    opts.IsTradable,
		},
	)
	if err != nil {
		return ModuleOutput{}, err
	}

	if err := RegisterRegistryMetrics(svc.Stats); err != nil && params.Logger != nil {
		params.Logger.Warnf("登记处指标注册失败: %v", err)
	}

	return ModuleOutput{Registry: svc}, nil
}

// Module 登记处fx模块
func Module() fx.Option {
	return fx.Module("membership",
		fx.Provide(ProvideServices),
	)
}
