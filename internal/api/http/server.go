// Package http 提供基于Gin的HTTP API服务器
//
// 暴露登记处、承兑网关与余额台账的全部执行/查询端点，
// 以及 /health 与 /metrics 两个运维端点。
package http

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"github.com/membria/v1/internal/api/http/handlers"
	"github.com/membria/v1/internal/api/http/middleware"
	apiconfig "github.com/membria/v1/internal/config/api"
	membershipcore "github.com/membria/v1/internal/core/membership"
	"github.com/membria/v1/pkg/interfaces/gateway"
	"github.com/membria/v1/pkg/interfaces/infrastructure/log"
	"github.com/membria/v1/pkg/interfaces/infrastructure/storage"
	"github.com/membria/v1/pkg/interfaces/membership"
)

// Server HTTP服务器
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	config     *apiconfig.Config
	logger     log.Logger

	registry   membership.Registry
	gateway    gateway.Gateway
	bank       gateway.BankService
	cacheStore storage.MemoryStore
}

// NewServer 创建HTTP服务器并注册生命周期钩子
func NewServer(
	lifecycle fx.Lifecycle,
	config *apiconfig.Config,
	logger log.Logger,
	registry membership.Registry,
	gw gateway.Gateway,
	bank gateway.BankService,
	cacheStore storage.MemoryStore,
) *Server {
	if os.Getenv("MEMBRIA_CLI_MODE") == "true" {
		gin.SetMode(gin.ReleaseMode)
		gin.DefaultWriter = io.Discard
		gin.DefaultErrorWriter = io.Discard
	}

	router := gin.New()
	router.Use(gin.Recovery())

	server := &Server{
		router:     router,
		config:     config,
		logger:     logger,
		registry:   registry,
		gateway:    gw,
		bank:       bank,
		cacheStore: cacheStore,
	}

	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return server.Start()
		},
		OnStop: func(ctx context.Context) error {
			return server.Stop(ctx)
		},
	})

	server.setupRoutes()

	return server
}

// setupRoutes 注册所有API端点
func (s *Server) setupRoutes() {
	// 请求ID → 访问日志 → 指标，顺序固定
	s.router.Use(middleware.NewRequestID().Middleware())
	s.router.Use(middleware.NewLogger(s.logger).Middleware())
	s.router.Use(middleware.NewMetrics().Middleware())

	v1 := s.router.Group("/api/v1")

	registryHandlers := handlers.NewRegistryHandlers(s.registry, s.cacheStore, s.logger)
	registryHandlers.RegisterRoutes(v1)

	gatewayHandlers := handlers.NewGatewayHandlers(s.gateway, s.logger)
	gatewayHandlers.RegisterRoutes(v1)

	bankHandlers := handlers.NewBankHandlers(s.bank, s.logger)
	bankHandlers.RegisterRoutes(v1)

	healthHandlers := handlers.NewHealthHandlers(s.registry, membershipcore.ContractVersion)
	healthHandlers.RegisterRoutes(s.router)

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.logger.Info("所有API路由已注册完成")
}

// Start 启动HTTP服务器
//
// 监听在后台协程中进行；启动后做一次端口探测，确保服务真的在听。
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.GetHost(), s.config.GetPort())

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.config.GetReadTimeoutSec()) * time.Second,
		WriteTimeout: time.Duration(s.config.GetWriteTimeoutSec()) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Errorf("HTTP服务器运行失败: %v", err)
		}
	}()

	if err := s.waitForServerReady(addr, 3*time.Second); err != nil {
		return fmt.Errorf("HTTP服务器启动验证失败: %w", err)
	}

	s.logger.Infof("HTTP服务器启动成功，监听地址: %s", addr)
	return nil
}

// Stop 优雅关闭HTTP服务器
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("正在关闭HTTP服务器")

	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(stopCtx); err != nil {
		s.logger.Errorf("HTTP服务器关闭出错: %v", err)
		return err
	}

	s.logger.Info("HTTP服务器已关闭")
	return nil
}

// waitForServerReady 轮询探测端口直至可连接或超时
func (s *Server) waitForServerReady(addr string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", addr, 500*time.Millisecond)
		if err == nil {
			conn.Close()
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("超时等待服务器启动: %s", addr)
}
