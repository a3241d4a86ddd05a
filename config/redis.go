package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClient backs the agent listing cache. It stays nil when Redis is not
// configured or unreachable.
var RedisClient *redis.Client

func InitRedis(addr string) error {
	opt, err := redisOptions(addr)
	if err != nil {
		return err
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("redis ping %s: %w", opt.Addr, err)
	}
	RedisClient = client
	return nil
}

// redisOptions accepts host:port or a redis:// (rediss://) URL. Cache reads
// sit on the request path, so timeouts are short.
func redisOptions(addr string) (*redis.Options, error) {
	addr = strings.TrimSpace(addr)
	switch {
	case addr == "":
		return nil, errors.New("REDIS_ADDR (or REDIS_URI/REDIS_URL) environment variable is not set")
	case strings.HasPrefix(addr, "redis://"), strings.HasPrefix(addr, "rediss://"):
		return redis.ParseURL(addr)
	}
	return &redis.Options{
		Addr:         addr,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	}, nil
}
