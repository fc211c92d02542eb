// Package app 负责整个节点的模块装配与配置装载
package app

import (
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/fx"

	"github.com/membria/v1/internal/api"
	"github.com/membria/v1/internal/core/bank"
	"github.com/membria/v1/internal/core/gateway"
	"github.com/membria/v1/internal/core/infrastructure/clock"
	"github.com/membria/v1/internal/core/infrastructure/crypto"
	"github.com/membria/v1/internal/core/infrastructure/event"
	"github.com/membria/v1/internal/core/infrastructure/log"
	"github.com/membria/v1/internal/core/infrastructure/storage"
	"github.com/membria/v1/internal/core/membership"
	"github.com/membria/v1/pkg/types"
)

// LoadUserConfig 从JSON配置文件装载用户配置
//
// 文件不存在不是错误：返回空配置，各模块使用默认值。
func LoadUserConfig(path string) (*types.UserConfig, error) {
	if path == "" {
		return &types.UserConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &types.UserConfig{}, nil
		}
		return nil, fmt.Errorf("读取配置文件 %s 失败: %w", path, err)
	}

	var cfg types.UserConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
	}
	return &cfg, nil
}

// Module 组装节点的全部模块
//
// userConfig 在最外层注入，各模块各取所需的片段。
func Module(userConfig *types.UserConfig) fx.Option {
	return fx.Options(
		fx.Supply(userConfig),

		// 基础设施
		log.Module(),
		storage.Module(),
		clock.Module(),
		event.Module(),
		crypto.Module(),

		// 领域服务
		membership.Module(),
		bank.Module(),
		gateway.Module(),

		// 对外服务
		api.Module(),
	)
}
