package clock

import (
	"sync"
	"time"

	infraClock "github.com/membria/v1/pkg/interfaces/infrastructure/clock"
)

// DeterministicClock 确定性时钟，每次读取固定步进
//
// 用于测试与回放场景：同一基准时间 + 调用序号即可复现结果。
type DeterministicClock struct {
	mu       sync.Mutex
	baseTime time.Time
	sequence int64
	step     time.Duration
}

// NewDeterministicClock 创建确定性时钟，step为每次Now()的推进量
func NewDeterministicClock(baseTime time.Time, step time.Duration) *DeterministicClock {
	return &DeterministicClock{baseTime: baseTime, step: step}
}

func (c *DeterministicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.baseTime.Add(time.Duration(c.sequence) * c.step)
	c.sequence++
	return t
}

func (c *DeterministicClock) Since(t time.Time) time.Duration { return c.Now().Sub(t) }
func (c *DeterministicClock) Unix() int64                     { return c.Now().Unix() }
func (c *DeterministicClock) UnixNano() int64                 { return c.Now().UnixNano() }

// Advance 手动推进基准时间，用于模拟过期边界
func (c *DeterministicClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseTime = c.baseTime.Add(d)
}

var _ infraClock.Clock = (*DeterministicClock)(nil)
