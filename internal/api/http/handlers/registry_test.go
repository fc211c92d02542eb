package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/membria/v1/internal/core/membership"
	membershipintf "github.com/membria/v1/pkg/interfaces/membership"
	"github.com/membria/v1/pkg/types"
)

// stubRegistry 按需覆写用到的方法，其余走嵌入的 nil 接口（调用即 panic）
type stubRegistry struct {
	membershipintf.Registry

	mintFn     func(ctx context.Context, caller, owner, tokenURI string, extension json.RawMessage) (string, error)
	nftInfoFn  func(ctx context.Context, tokenID string) (membershipintf.NFTInfoResponse, error)
	infoCalls  int
	contractFn func(ctx context.Context) (types.ContractInfo, error)
}

func (s *stubRegistry) Mint(ctx context.Context, caller, owner, tokenURI string, extension json.RawMessage) (string, error) {
	return s.mintFn(ctx, caller, owner, tokenURI, extension)
}

func (s *stubRegistry) NFTInfo(ctx context.Context, tokenID string) (membershipintf.NFTInfoResponse, error) {
	s.infoCalls++
	return s.nftInfoFn(ctx, tokenID)
}

func (s *stubRegistry) ContractInfo(ctx context.Context) (types.ContractInfo, error) {
	return s.contractFn(ctx)
}

// fakeMemoryStore 内存版 MemoryStore，仅供测试
type fakeMemoryStore struct {
	data map[string][]byte
}

func newFakeMemoryStore() *fakeMemoryStore {
	return &fakeMemoryStore{data: make(map[string][]byte)}
}

func (f *fakeMemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *fakeMemoryStore) Set(ctx context.Context, key string, value []byte) error {
	f.data[key] = append([]byte(nil), value...)
	return nil
}

func (f *fakeMemoryStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return f.Set(ctx, key, value)
}

func (f *fakeMemoryStore) Delete(ctx context.Context, key string) error {
	delete(f.data, key)
	return nil
}

func (f *fakeMemoryStore) Close() error { return nil }

func newTestRouter(registry membershipintf.Registry) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	v1 := router.Group("/api/v1")
	NewRegistryHandlers(registry, newFakeMemoryStore(), nil).RegisterRoutes(v1)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("序列化请求失败: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestMintEndpoint(t *testing.T) {
	registry := &stubRegistry{
		mintFn: func(ctx context.Context, caller, owner, tokenURI string, extension json.RawMessage) (string, error) {
			if caller != "wallet_minter" || owner != "wallet_alice" {
				t.Errorf("参数透传错误: caller=%s owner=%s", caller, owner)
			}
			return "7", nil
		},
	}
	router := newTestRouter(registry)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/registry/mint", gin.H{
		"caller":    "wallet_minter",
		"owner":     "wallet_alice",
		"token_uri": "ipfs://demo",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("铸造端点应返回 200，实际 %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data struct {
			TokenID string `json:"token_id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if resp.Data.TokenID != "7" {
		t.Errorf("token_id 应为 7，实际 %q", resp.Data.TokenID)
	}
}

func TestMintEndpointRejectsMissingFields(t *testing.T) {
	router := newTestRouter(&stubRegistry{})

	// 缺 owner，必须在进入领域层之前被拒绝
	rec := doJSON(t, router, http.MethodPost, "/api/v1/registry/mint", gin.H{
		"caller": "wallet_minter",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("缺字段应返回 400，实际 %d", rec.Code)
	}

	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if resp.Error.Code != "INVALID_ARGUMENT" {
		t.Errorf("错误码应为 INVALID_ARGUMENT，实际 %q", resp.Error.Code)
	}
}

func TestDomainErrorMapping(t *testing.T) {
	registry := &stubRegistry{
		nftInfoFn: func(ctx context.Context, tokenID string) (membershipintf.NFTInfoResponse, error) {
			return membershipintf.NFTInfoResponse{}, membership.ErrTokenNotFound
		},
		mintFn: func(ctx context.Context, caller, owner, tokenURI string, extension json.RawMessage) (string, error) {
			return "", membership.ErrUnauthorized
		},
	}
	router := newTestRouter(registry)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/registry/token/404", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("不存在的凭证应返回 404，实际 %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/v1/registry/mint", gin.H{
		"caller": "wallet_mallory",
		"owner":  "wallet_mallory",
	})
	if rec.Code != http.StatusForbidden {
		t.Errorf("无权铸造应返回 403，实际 %d", rec.Code)
	}

	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if resp.Error.Code != "PERMISSION_DENIED" {
		t.Errorf("错误码应为 PERMISSION_DENIED，实际 %q", resp.Error.Code)
	}
}

func TestTokenInfoUsesCache(t *testing.T) {
	registry := &stubRegistry{
		nftInfoFn: func(ctx context.Context, tokenID string) (membershipintf.NFTInfoResponse, error) {
			return membershipintf.NFTInfoResponse{
				TokenURI:  "ipfs://cached",
				Extension: json.RawMessage(`{"tier":"gold"}`),
			}, nil
		},
	}
	router := newTestRouter(registry)

	for i := 0; i < 3; i++ {
		rec := doJSON(t, router, http.MethodGet, "/api/v1/registry/token/1", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("第 %d 次查询失败: %d", i+1, rec.Code)
		}
	}

	// TTL 窗口内只应回源一次
	if registry.infoCalls != 1 {
		t.Errorf("缓存命中后不应重复回源，实际回源 %d 次", registry.infoCalls)
	}
}
