// Package event 提供事件总线接口定义
//
// 登记处与网关的每个成功操作都会发布一条动作事件（action record），
// 供日志、指标和外部订阅者消费。
package event

import (
	"errors"
	"time"
)

// ErrBusClosed 总线已关闭
var ErrBusClosed = errors.New("事件总线已关闭")

// EventType 事件主题
type EventType string

const (
	// TopicRegistryAction 登记处动作事件（mint/transfer/burn/approve/...）
	TopicRegistryAction EventType = "registry.action"
	// TopicGatewayAction 网关动作事件（mint_with_claim/set_treasury/...）
	TopicGatewayAction EventType = "gateway.action"
)

// ActionEvent 一次成功操作的事件记录
//
// Attributes 与合约式响应中的 attribute 列表同构，键固定为小写蛇形。
type ActionEvent struct {
	ID         string            `json:"id"`     // 事件唯一标识
	Action     string            `json:"action"` // mint / transfer_nft / burn / ...
	Attributes map[string]string `json:"attributes"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// Handler 事件处理函数
type Handler func(evt ActionEvent)

// EventBus 事件总线接口
type EventBus interface {
	// Publish 发布一条动作事件（异步投递，不阻塞调用方）
	Publish(topic EventType, evt ActionEvent)

	// Subscribe 订阅指定主题
	Subscribe(topic EventType, handler Handler) error

	// Unsubscribe 取消订阅
	Unsubscribe(topic EventType, handler Handler) error

	// Close 停止事件投递
	Close() error
}
