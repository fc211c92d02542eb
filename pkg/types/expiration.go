package types

import "time"

// BlockInfo 每次调用时的链上下文快照
//
// 过期判断只依据该快照的高度与链上时间，绝不直接读取墙钟。
type BlockInfo struct {
	Height  uint64    `json:"height"`
	Time    time.Time `json:"time"`
	ChainID string    `json:"chain_id"`
}

// Expiration 过期描述符
//
// 三种形态：永不过期（零值）、到达指定高度过期、到达指定时间过期。
// AtHeight 和 AtTime 最多只应设置一个；两者都为零值时表示 Never。
type Expiration struct {
	AtHeight uint64     `json:"at_height,omitempty"`
	AtTime   *time.Time `json:"at_time,omitempty"`
}

// NeverExpire 永不过期的描述符
func NeverExpire() Expiration {
	return Expiration{}
}

// ExpireAtHeight 在指定区块高度过期
func ExpireAtHeight(height uint64) Expiration {
	return Expiration{AtHeight: height}
}

// ExpireAtTime 在指定链上时间过期
func ExpireAtTime(t time.Time) Expiration {
	return Expiration{AtTime: &t}
}

// IsExpired 判断在给定块上下文中是否已过期
//
// 语义与 cw 风格一致：block.Height >= AtHeight 或 block.Time >= AtTime 即视为过期。
func (e Expiration) IsExpired(block BlockInfo) bool {
	if e.AtHeight > 0 {
		return block.Height >= e.AtHeight
	}
	if e.AtTime != nil {
		return !block.Time.Before(*e.AtTime)
	}
	return false
}

// IsNever 判断是否为永不过期
func (e Expiration) IsNever() bool {
	return e.AtHeight == 0 && e.AtTime == nil
}
