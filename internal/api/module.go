// Package api 聚合对外服务层的各个传输协议模块
package api

import (
	"go.uber.org/fx"

	"github.com/membria/v1/internal/api/http"
)

// Module 返回API层模块
func Module() fx.Option {
	return fx.Options(
		http.Module(),
	)
}
