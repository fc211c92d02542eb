// 基于asaskevich/EventBus的动作事件总线实现
package event

import (
	"sync"

	evbus "github.com/asaskevich/EventBus"
	"github.com/google/uuid"

	infraClock "github.com/membria/v1/pkg/interfaces/infrastructure/clock"
	infraEvent "github.com/membria/v1/pkg/interfaces/infrastructure/event"
	"github.com/membria/v1/pkg/interfaces/infrastructure/log"
)

// Bus 是基于asaskevich/EventBus的事件总线
//
// 注册表与网关的每次状态变更都会发布一条ActionEvent，
// 供审计、指标与外部观察者订阅。发布为异步，不阻塞业务路径。
type Bus struct {
	bus    evbus.Bus
	clock  infraClock.Clock
	logger log.Logger

	mu       sync.Mutex
	handlers map[infraEvent.EventType][]infraEvent.Handler
	closed   bool
}

// New 创建事件总线实例
func New(clock infraClock.Clock, logger log.Logger) infraEvent.EventBus {
	return &Bus{
		bus:      evbus.New(),
		clock:    clock,
		logger:   logger,
		handlers: make(map[infraEvent.EventType][]infraEvent.Handler),
	}
}

// Publish 发布动作事件
//
// 事件ID与发生时间若未填写由总线补全。
func (b *Bus) Publish(topic infraEvent.EventType, evt infraEvent.ActionEvent) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.mu.Unlock()

	if evt.ID == "" {
		evt.ID = uuid.New().String()
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = b.clock.Now()
	}

	b.bus.Publish(string(topic), evt)

	if b.logger != nil {
		b.logger.Debugf("事件已发布: topic=%s action=%s id=%s", topic, evt.Action, evt.ID)
	}
}

// Subscribe 订阅指定主题
func (b *Bus) Subscribe(topic infraEvent.EventType, handler infraEvent.Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return infraEvent.ErrBusClosed
	}
	if err := b.bus.SubscribeAsync(string(topic), handler, false); err != nil {
		return err
	}
	b.handlers[topic] = append(b.handlers[topic], handler)
	return nil
}

// Unsubscribe 取消订阅
func (b *Bus) Unsubscribe(topic infraEvent.EventType, handler infraEvent.Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bus.Unsubscribe(string(topic), handler)
}

// Close 关闭总线并等待在途事件处理完成
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	b.bus.WaitAsync()
	return nil
}
