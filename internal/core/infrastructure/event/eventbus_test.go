package event

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/membria/v1/internal/core/infrastructure/clock"
	infraEvent "github.com/membria/v1/pkg/interfaces/infrastructure/event"
)

func newTestBus() infraEvent.EventBus {
	return New(clock.NewDeterministicClock(time.Unix(1_700_000_000, 0), 0), nil)
}

func TestPublishDeliversToSubscriber(t *testing.T) {
	bus := newTestBus()

	var mu sync.Mutex
	var received []infraEvent.ActionEvent
	err := bus.Subscribe(infraEvent.TopicRegistryAction, func(evt infraEvent.ActionEvent) {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, evt)
	})
	require.NoError(t, err)

	bus.Publish(infraEvent.TopicRegistryAction, infraEvent.ActionEvent{
		Action:     "mint",
		Attributes: map[string]string{"token_id": "1"},
	})

	// Close 等待异步投递完成
	require.NoError(t, bus.Close())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 1)
	require.Equal(t, "mint", received[0].Action)
	require.Equal(t, "1", received[0].Attributes["token_id"])
	require.NotEmpty(t, received[0].ID, "事件ID应由总线补全")
	require.False(t, received[0].OccurredAt.IsZero(), "发生时间应由总线补全")
}

func TestTopicsAreIsolated(t *testing.T) {
	bus := newTestBus()

	var mu sync.Mutex
	gatewayEvents := 0
	require.NoError(t, bus.Subscribe(infraEvent.TopicGatewayAction, func(evt infraEvent.ActionEvent) {
		mu.Lock()
		defer mu.Unlock()
		gatewayEvents++
	}))

	bus.Publish(infraEvent.TopicRegistryAction, infraEvent.ActionEvent{Action: "burn"})
	require.NoError(t, bus.Close())

	mu.Lock()
	defer mu.Unlock()
	require.Zero(t, gatewayEvents, "登记处事件不应投递给网关订阅者")
}

func TestClosedBusRejectsSubscribeAndDropsPublish(t *testing.T) {
	bus := newTestBus()
	require.NoError(t, bus.Close())

	err := bus.Subscribe(infraEvent.TopicRegistryAction, func(evt infraEvent.ActionEvent) {})
	require.ErrorIs(t, err, infraEvent.ErrBusClosed)

	// 关闭后的发布应被静默丢弃，不 panic
	bus.Publish(infraEvent.TopicRegistryAction, infraEvent.ActionEvent{Action: "mint"})

	// 重复关闭幂等
	require.NoError(t, bus.Close())
}
