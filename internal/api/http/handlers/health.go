// Package handlers 提供HTTP API处理器
//
// health.go 实现健康检查端点
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apitypes "github.com/membria/v1/internal/api/http/types"
	"github.com/membria/v1/pkg/interfaces/membership"
)

// HealthHandlers 健康检查处理器
type HealthHandlers struct {
	registry  membership.Registry
	startTime time.Time
	version   string
}

// NewHealthHandlers 创建健康检查处理器
func NewHealthHandlers(registry membership.Registry, version string) *HealthHandlers {
	return &HealthHandlers{
		registry:  registry,
		startTime: time.Now(),
		version:   version,
	}
}

// RegisterRoutes 注册健康检查路由（挂载在根路径，不带版本前缀）
func (h *HealthHandlers) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.GetHealth)
}

// GetHealth 完整健康报告
//
// 就绪判断以登记处能否响应查询为准。
func (h *HealthHandlers) GetHealth(c *gin.Context) {
	status := "healthy"
	code := http.StatusOK
	if _, err := h.registry.ContractInfo(c.Request.Context()); err != nil {
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, apitypes.HealthResponse{
		Status:    status,
		Version:   h.version,
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
