// Package crypto 提供密码学相关功能
package crypto

import (
	"go.uber.org/fx"

	"github.com/membria/v1/internal/core/infrastructure/crypto/address"
	"github.com/membria/v1/internal/core/infrastructure/crypto/hash"
	"github.com/membria/v1/internal/core/infrastructure/crypto/signature"
	cryptointf "github.com/membria/v1/pkg/interfaces/infrastructure/crypto"
)

// ModuleParams 定义密码学模块的依赖参数
type ModuleParams struct {
	fx.In
}

// ModuleOutput 定义密码学模块的输出结构
type ModuleOutput struct {
	fx.Out

	HashManager      cryptointf.HashManager
	SignatureManager cryptointf.SignatureManager
	AddressManager   cryptointf.AddressManager
}

// ProvideServices 提供密码学服务
func ProvideServices(params ModuleParams) (ModuleOutput, error) {
	hashService := hash.NewHashService()

	return ModuleOutput{
		HashManager:      hashService,
		SignatureManager: signature.NewSignatureService(),
		AddressManager:   address.NewAddressService(hashService),
	}, nil
}

// Module 返回密码学模块
func Module() fx.Option {
	return fx.Module("crypto",
		fx.Provide(ProvideServices),
	)
}
