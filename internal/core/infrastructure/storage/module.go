// Package storage 提供存储模块的装配
package storage

import (
	"context"

	badgerconfig "github.com/membria/v1/internal/config/storage/badger"
	memoryconfig "github.com/membria/v1/internal/config/storage/memory"
	"github.com/membria/v1/internal/core/infrastructure/storage/badger"
	"github.com/membria/v1/internal/core/infrastructure/storage/memory"
	log "github.com/membria/v1/pkg/interfaces/infrastructure/log"
	storageInterface "github.com/membria/v1/pkg/interfaces/infrastructure/storage"
	"github.com/membria/v1/pkg/types"
	"go.uber.org/fx"
)

// ModuleParams 定义存储模块的依赖参数
type ModuleParams struct {
	fx.In

	UserConfig *types.UserConfig
	Logger     log.Logger
}

// ModuleOutput 定义存储模块的输出结构
type ModuleOutput struct {
	fx.Out

	KVStore     storageInterface.KVStore
	MemoryStore storageInterface.MemoryStore
}

// Module 返回存储模块
func Module() fx.Option {
	return fx.Module("storage",
		fx.Provide(ProvideServices),

		// 生命周期钩子：应用停止时关闭存储
		fx.Invoke(func(lc fx.Lifecycle, kv storageInterface.KVStore, mem storageInterface.MemoryStore, logger log.Logger) {
			lc.Append(fx.Hook{
				OnStop: func(ctx context.Context) error {
					logger.Info("正在关闭存储服务...")
					if err := mem.Close(); err != nil {
						logger.Warnf("关闭内存缓存失败: %v", err)
					}
					return kv.Close()
				},
			})
		}),
	)
}

// ProvideServices 提供存储服务
func ProvideServices(params ModuleParams) (ModuleOutput, error) {
	var userStorage *types.UserStorageConfig
	if params.UserConfig != nil {
		userStorage = params.UserConfig.Storage
	}

	kv, err := badger.New(badgerconfig.New(userStorage), params.Logger)
	if err != nil {
		return ModuleOutput{}, err
	}

	mem, err := memory.New(memoryconfig.New(), params.Logger)
	if err != nil {
		_ = kv.Close()
		return ModuleOutput{}, err
	}

	return ModuleOutput{
		KVStore:     kv,
		MemoryStore: mem,
	}, nil
}
