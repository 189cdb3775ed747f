package redisx

import (
	"time"

	"github.com/redis/go-redis/v9"
)

// New builds a Redis client for the tracking projection cache.
func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}
