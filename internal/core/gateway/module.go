package gateway

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	gatewayConfig "github.com/membria/v1/internal/config/gateway"
	registryConfig "github.com/membria/v1/internal/config/registry"
	gatewayintf "github.com/membria/v1/pkg/interfaces/gateway"
	cryptointf "github.com/membria/v1/pkg/interfaces/infrastructure/crypto"
	infraEvent "github.com/membria/v1/pkg/interfaces/infrastructure/event"
	"github.com/membria/v1/pkg/interfaces/infrastructure/log"
	"github.com/membria/v1/pkg/interfaces/infrastructure/storage"
	"github.com/membria/v1/pkg/interfaces/membership"
	"github.com/membria/v1/pkg/types"
)

// ModuleParams 网关模块依赖
type ModuleParams struct {
	fx.In

	UserConfig *types.UserConfig `optional:"true"`
	Store      storage.KVStore
	Hasher     cryptointf.HashManager
	Signer     cryptointf.SignatureManager
	Address    cryptointf.AddressManager
	Registry   membership.Registry
	Bank       gatewayintf.BankService
	EventBus   infraEvent.EventBus
	Logger     log.Logger `optional:"true"`
}

// ModuleOutput 网关模块输出
type ModuleOutput struct {
	fx.Out

	Gateway gatewayintf.Gateway
	Members gatewayintf.MembershipClient
}

// ProvideServices 装配网关
//
// 本进程的登记处以配置的登记处地址注册到协作方客户端，
// claim 的 verifying_contract 必须写这个地址。
func ProvideServices(params ModuleParams) (ModuleOutput, error) {
	var userCfg *types.UserGatewayConfig
	var registryCfg *types.UserRegistryConfig
	if params.UserConfig != nil {
		userCfg = params.UserConfig.Gateway
		registryCfg = params.UserConfig.Registry
	}
	opts := gatewayConfig.New(userCfg).GetOptions()
	if opts.Creator == "" || opts.Treasury == "" || opts.Address == "" {
		return ModuleOutput{}, fmt.Errorf("网关配置不完整: creator/treasury/address 均不能为空")
	}

	registryAddr := registryConfig.New(registryCfg).GetOptions().Address
	if registryAddr == "" {
		return ModuleOutput{}, fmt.Errorf("登记处地址未配置: claim 的 verifying_contract 无处可指")
	}

	members := NewLocalMembershipClient()
	members.Register(registryAddr, params.Registry)

	svc, err := NewService(
		context.Background(),
		params.Store,
		params.Hasher,
		params.Signer,
		params.Address,
		members,
		params.Bank,
		params.EventBus,
		params.Logger,
		ServiceOptions{
			Creator:  opts.Creator,
			Treasury: opts.Treasury,
			Address:  opts.Address,
		},
	)
	if err != nil {
		return ModuleOutput{}, err
	}

	return ModuleOutput{Gateway: svc, Members: members}, nil
}

// Module 网关fx模块
func Module() fx.Option {
	return fx.Module("gateway",
		fx.Provide(ProvideServices),
	)
}
