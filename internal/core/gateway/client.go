package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	gatewayintf "github.com/membria/v1/pkg/interfaces/gateway"
	"github.com/membria/v1/pkg/interfaces/membership"
	"github.com/membria/v1/pkg/types"
)

// LocalMembershipClient 进程内的登记处协作方实现
//
// verifying_contract 地址映射到本进程装配的登记处实例。
// 关系仍是消息式的：网关只经过 MembershipClient 的窄接口，
// 从不触碰登记处内部状态。
type LocalMembershipClient struct {
	mu      sync.RWMutex
	ledgers map[string]membership.Registry // 合约地址 → 登记处
}

// NewLocalMembershipClient 创建本地协作方客户端
func NewLocalMembershipClient() *LocalMembershipClient {
	return &LocalMembershipClient{ledgers: make(map[string]membership.Registry)}
}

var _ gatewayintf.MembershipClient = (*LocalMembershipClient)(nil)

// Register 绑定合约地址与登记处实例
func (c *LocalMembershipClient) Register(contractAddr string, registry membership.Registry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ledgers[contractAddr] = registry
}

// HasRole 查询远端登记处上某地址是否持有角色
func (c *LocalMembershipClient) HasRole(ctx context.Context, contractAddr, account string, role types.Role) (bool, error) {
	registry, err := c.lookup(contractAddr)
	if err != nil {
		return false, err
	}
	return registry.HasRole(ctx, account, role)
}

// Mint 向远端登记处发起代铸造
func (c *LocalMembershipClient) Mint(ctx context.Context, contractAddr, caller, owner, tokenURI string, extension json.RawMessage) (string, error) {
	registry, err := c.lookup(contractAddr)
	if err != nil {
		return "", err
	}
	return registry.Mint(ctx, caller, owner, tokenURI, extension)
}

func (c *LocalMembershipClient) lookup(contractAddr string) (membership.Registry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	registry, ok := c.ledgers[contractAddr]
	if !ok {
		return nil, fmt.Errorf("未知的 verifying_contract: %s", contractAddr)
	}
	return registry, nil
}
