package utils

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	redisClient *redis.Client
	redisOnce   sync.Once
	redisAddr   string
	redisPass   string
	redisDB     int
)

// ConfigureRedis records connection details for the lazy singleton. An empty
// addr leaves Redis disabled; callers fall back to uncached paths.
func ConfigureRedis(addr, password string, db int) {
	redisAddr = addr
	redisPass = password
	redisDB = db
}

// GetRedis returns a singleton Redis client, or nil when Redis is disabled.
func GetRedis() *redis.Client {
	if redisAddr == "" {
		return nil
	}
	redisOnce.Do(func() {
		redisClient = redis.NewClient(&redis.Options{
			Addr:         redisAddr,
			Password:     redisPass,
			DB:           redisDB,
			DialTimeout:  3 * time.Second,
			ReadTimeout:  2 * time.Second,
			WriteTimeout: 2 * time.Second,
		})
		// Ping to validate; ignore error to allow fallback paths
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = redisClient.Ping(ctx).Err()
	})
	return redisClient
}
