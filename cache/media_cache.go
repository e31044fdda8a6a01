package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tunestream/logger"
	"tunestream/metrics"
	"tunestream/storage"

	"github.com/go-redis/redis/v8"
)

const mediaStatPrefix = "media:stat:"

// MediaStatCache 在 Redis 中缓存媒体对象的元数据（大小、类型、ETag），
// 让每个 Range 请求不必都访问存储后端做 Stat。
type MediaStatCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewMediaStatCache 创建缓存，ttl <= 0 时不过期
func NewMediaStatCache(client *redis.Client, ttl time.Duration) *MediaStatCache {
	return &MediaStatCache{client: client, ttl: ttl}
}

func mediaStatKey(key string) string {
	return mediaStatPrefix + key
}

// Get 读取缓存，未命中返回 nil, nil
func (c *MediaStatCache) Get(ctx context.Context, key string) (*storage.MediaObject, error) {
	data, err := c.client.Get(ctx, mediaStatKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get media stat cache %s: %w", key, err)
	}
	var obj storage.MediaObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("decode media stat cache %s: %w", key, err)
	}
	return &obj, nil
}

// Set 写入缓存
func (c *MediaStatCache) Set(ctx context.Context, obj *storage.MediaObject) error {
	data, err := json.Marshal(obj)
	if err != nil {
		return err
	}
	ttl := c.ttl
	if ttl < 0 {
		ttl = 0
	}
	return c.client.Set(ctx, mediaStatKey(obj.Key), data, ttl).Err()
}

// Delete 删除一个对象的缓存
func (c *MediaStatCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, mediaStatKey(key)).Err()
}

// flushBatch 每次 DEL 的 key 数量
const flushBatch = 100

// Flush 删除所有媒体元数据缓存，返回删除数量。
// 先完整 SCAN 一遍再删除，遍历过程中不修改 keyspace。
func (c *MediaStatCache) Flush(ctx context.Context) (int, error) {
	var (
		cursor uint64
		keys   []string
	)
	for {
		batch, next, err := c.client.Scan(ctx, cursor, mediaStatPrefix+"*", flushBatch).Result()
		if err != nil {
			return 0, fmt.Errorf("scan media stat cache: %w", err)
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			break
		}
	}

	deleted := 0
	for start := 0; start < len(keys); start += flushBatch {
		end := min(start+flushBatch, len(keys))
		n, err := c.client.Del(ctx, keys[start:end]...).Result()
		if err != nil {
			return deleted, fmt.Errorf("delete media stat cache: %w", err)
		}
		deleted += int(n)
	}
	return deleted, nil
}

// CachedStore 为任意 storage.Store 的 Stat 加一层 Redis 缓存，
// 读取数据仍然直接走底层存储。
type CachedStore struct {
	storage.Store
	cache *MediaStatCache
}

// NewCachedStore 包装底层存储
func NewCachedStore(store storage.Store, cache *MediaStatCache) *CachedStore {
	return &CachedStore{Store: store, cache: cache}
}

// Stat 先查缓存，未命中或 Redis 出错时回源
func (s *CachedStore) Stat(ctx context.Context, key string) (*storage.MediaObject, error) {
	if n, ok := s.Store.(storage.KeyNormalizer); ok {
		if normalized, err := n.NormalizeKey(key); err == nil {
			key = normalized
		}
	}
	obj, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		metrics.StatCacheLookups.WithLabelValues("error").Inc()
		logger.Warn("读取媒体元数据缓存失败，回源存储",
			logger.String("key", key),
			logger.ErrorField(err))
	case obj != nil:
		metrics.StatCacheLookups.WithLabelValues("hit").Inc()
		return obj, nil
	default:
		metrics.StatCacheLookups.WithLabelValues("miss").Inc()
	}

	obj, err = s.Store.Stat(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, obj); err != nil {
		logger.Warn("写入媒体元数据缓存失败",
			logger.String("key", key),
			logger.ErrorField(err))
	}
	return obj, nil
}

// Invalidate 删除一个 key 的缓存，文件变化时由监听器调用
func (s *CachedStore) Invalidate(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, key); err != nil {
		logger.Warn("删除媒体元数据缓存失败",
			logger.String("key", key),
			logger.ErrorField(err))
		return
	}
	logger.Debug("媒体元数据缓存已失效", logger.String("key", key))
}
