package types

import (
	"errors"
	"fmt"
	"strconv"
)

// Coin 金额与币种
//
// Amount 使用十进制字符串表达，与链上消息格式保持一致。
type Coin struct {
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
}

var (
	// ErrInvalidCoin 金额或币种非法
	ErrInvalidCoin = errors.New("invalid coin")
)

// NewCoin 创建一个金额，金额为十进制字符串
func NewCoin(denom, amount string) Coin {
	return Coin{Denom: denom, Amount: amount}
}

// AmountUint64 解析十进制金额
func (c Coin) AmountUint64() (uint64, error) {
	v, err := strconv.ParseUint(c.Amount, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: amount %q: %v", ErrInvalidCoin, c.Amount, err)
	}
	return v, nil
}

// Validate 校验金额格式
func (c Coin) Validate() error {
	if c.Denom == "" {
		return fmt.Errorf("%w: empty denom", ErrInvalidCoin)
	}
	if _, err := c.AmountUint64(); err != nil {
		return err
	}
	return nil
}

func (c Coin) String() string {
	return c.Amount + c.Denom
}
