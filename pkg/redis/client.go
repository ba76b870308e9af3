package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotInitialized is returned by the package helpers before Init or SetClient.
var ErrNotInitialized = errors.New("redis client not initialized")

const (
	dialTimeout = 3 * time.Second
	ioTimeout   = 2 * time.Second
	initTimeout = 5 * time.Second
)

var client *redis.Client

var pingClient = func(ctx context.Context, c *redis.Client) error {
	return c.Ping(ctx).Err()
}

// Init parses a redis:// URL, applies the password override and verifies the connection.
func Init(url, password string) error {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return err
	}
	if password != "" {
		opts.Password = password
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = dialTimeout
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = ioTimeout
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = ioTimeout
	}

	client = redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()
	return pingClient(ctx, client)
}

// SetClient swaps the shared client; tests point it at miniredis.
func SetClient(c *redis.Client) {
	client = c
}

func GetClient() *redis.Client {
	return client
}

// Close releases the client connection pool
func Close() error {
	if client == nil {
		return nil
	}
	return client.Close()
}

// Ping reports whether the shared client can reach the server.
func Ping(ctx context.Context) error {
	if client == nil {
		return ErrNotInitialized
	}
	return pingClient(ctx, client)
}

func Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if client == nil {
		return ErrNotInitialized
	}
	return client.Set(ctx, key, value, expiration).Err()
}

// Get returns redis.Nil when the key is absent.
func Get(ctx context.Context, key string) (string, error) {
	if client == nil {
		return "", ErrNotInitialized
	}
	return client.Get(ctx, key).Result()
}

func Del(ctx context.Context, key string) error {
	if client == nil {
		return ErrNotInitialized
	}
	return client.Del(ctx, key).Err()
}

// SetNX sets a key only if it does not exist
func SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	if client == nil {
		return false, ErrNotInitialized
	}
	return client.SetNX(ctx, key, value, expiration).Result()
}
