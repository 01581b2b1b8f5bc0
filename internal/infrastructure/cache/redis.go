package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache レストラン検索結果のリードスルーキャッシュ
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache 新しいRedisキャッシュを作成し、接続を確認する
func NewRedisCache(addr, password string, db int, ttl time.Duration) (*RedisCache, error) {
	if addr == "" {
		return nil, fmt.Errorf("Redisのアドレスが指定されていません")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redisへの接続に失敗: %w", err)
	}

	return &RedisCache{client: client, ttl: ttl}, nil
}

// Get キーに対応する値を取得する（キャッシュミスは ok=false）
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("キャッシュの取得に失敗: %w", err)
	}
	return data, true, nil
}

// Set キーに値をTTL付きで保存する
func (c *RedisCache) Set(ctx context.Context, key string, value []byte) error {
	if err := c.client.Set(ctx, key, value, c.ttl).Err(); err != nil {
		return fmt.Errorf("キャッシュの保存に失敗: %w", err)
	}
	return nil
}

// Close 接続を閉じる
func (c *RedisCache) Close() error {
	return c.client.Close()
}
