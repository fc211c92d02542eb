package clock

import (
	"sync"
	"time"

	"github.com/beevik/ntp"
	infraClock "github.com/membria/v1/pkg/interfaces/infrastructure/clock"
)

// NTPClock 通过NTP周期性校正偏移的时钟实现
type NTPClock struct {
	mu           sync.Mutex
	servers      []string
	offset       time.Duration
	lastSync     time.Time
	syncInterval time.Duration
	lastError    error
}

// NewNTPClock 创建NTP时钟
//
// servers 按顺序尝试；syncInterval 建议 5~10 分钟。
// 初始同步失败不致命，偏移置零，后续调用时重试。
func NewNTPClock(servers []string, syncInterval time.Duration) infraClock.Clock {
	c := &NTPClock{servers: servers, syncInterval: syncInterval}
	if err := c.sync(); err != nil {
		c.offset = 0
		c.lastError = err
	}
	return c
}

func (c *NTPClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maybeSync()
	return time.Now().Add(c.offset)
}

func (c *NTPClock) Since(t time.Time) time.Duration { return c.Now().Sub(t) }
func (c *NTPClock) Unix() int64                     { return c.Now().Unix() }
func (c *NTPClock) UnixNano() int64                 { return c.Now().UnixNano() }

func (c *NTPClock) maybeSync() {
	if time.Since(c.lastSync) < c.syncInterval {
		return
	}
	if err := c.sync(); err != nil {
		c.lastError = err
	}
}

func (c *NTPClock) sync() error {
	var lastErr error
	for _, server := range c.servers {
		resp, err := ntp.Query(server)
		if err != nil {
			lastErr = err
			continue
		}
		c.offset = resp.ClockOffset
		c.lastSync = time.Now()
		c.lastError = nil
		return nil
	}
	return lastErr
}
