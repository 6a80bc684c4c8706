package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const localCleanupInterval = time.Minute

// Cache 报告缓存接口。引擎只依赖这个接口，从不触碰进程级全局状态
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Put(ctx context.Context, key string, value []byte, ttl time.Duration)
}

// ReportKey 缓存键，(chain, tokenAddress) 定位一份报告
func ReportKey(kind, network, tokenAddr string) string {
	return fmt.Sprintf("risk:%s:%s:%s", kind, network, tokenAddr)
}

// ReportCache 两级缓存：本地 go-cache 挡住热点，redis 做跨进程共享。
// redis 不可用时静默退化为纯本地缓存
type ReportCache struct {
	tl         *zap.Logger
	localCache *gocache.Cache
	redis      *redis.Client
}

func NewReportCache(tl *zap.Logger, rdb *redis.Client, localTTL time.Duration) *ReportCache {
	return &ReportCache{
		tl:         tl,
		localCache: gocache.New(localTTL, localCleanupInterval),
		redis:      rdb,
	}
}

func (c *ReportCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if v, found := c.localCache.Get(key); found {
		return v.([]byte), true
	}

	if c.redis == nil {
		return nil, false
	}
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.tl.Warn("report cache redis get failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	c.localCache.SetDefault(key, data)
	return data, true
}

func (c *ReportCache) Put(ctx context.Context, key string, value []byte, ttl time.Duration) {
	c.localCache.Set(key, value, ttl)

	if c.redis == nil {
		return
	}
	if err := c.redis.Set(ctx, key, value, ttl).Err(); err != nil {
		c.tl.Warn("report cache redis set failed", zap.String("key", key), zap.Error(err))
	}
}

// GetTyped 反序列化读取
func GetTyped[T any](ctx context.Context, c Cache, key string) (*T, bool) {
	data, found := c.Get(ctx, key)
	if !found {
		return nil, false
	}
	var out T
	if err := sonic.Unmarshal(data, &out); err != nil {
		return nil, false
	}
	return &out, true
}

// PutTyped 序列化写入，编码失败只记日志不阻塞调用方
func PutTyped[T any](ctx context.Context, c Cache, tl *zap.Logger, key string, value *T, ttl time.Duration) {
	data, err := sonic.Marshal(value)
	if err != nil {
		tl.Warn("report cache marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	c.Put(ctx, key, data, ttl)
}
