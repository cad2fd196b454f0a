package redisdb

import (
	"errors"
	"strings"

	"github.com/redis/go-redis/v9"
)

// ParseRedisURL parses a Redis DNS entry into client options. Plain
// docker-style addresses (redis:6379) are accepted as-is; anything else
// goes through the driver's URL parser.
func ParseRedisURL(rawURL string) (*redis.Options, error) {
	if rawURL == "" {
		return nil, errors.New("redis address cannot be empty")
	}

	if strings.Count(rawURL, ":") == 1 && !strings.Contains(rawURL, "@") && !strings.Contains(rawURL, "//") {
		return &redis.Options{Addr: rawURL}, nil
	}

	if !strings.Contains(rawURL, "://") {
		rawURL = "redis://" + rawURL
	}
	return redis.ParseURL(rawURL)
}

// NewRedisClient builds a client for the configured Redis instance.
func NewRedisClient(rawURL string) (*redis.Client, error) {
	opts, err := ParseRedisURL(rawURL)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opts), nil
}
