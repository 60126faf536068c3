package cache

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const connectTimeout = 5 * time.Second

var ErrNotInitialized = errors.New("redis client is not initialized")

// Options describe one Redis endpoint. Addr wins over Host and Port.
type Options struct {
	Addr     string
	Host     string
	Port     string
	Password string
	DB       int
}

func (o Options) address() string {
	if o.Addr != "" {
		return o.Addr
	}
	if o.Host == "" {
		return ""
	}
	return net.JoinHostPort(o.Host, o.Port)
}

var (
	mu     sync.RWMutex
	shared *redis.Client
)

// Connect dials Redis and pings it before returning the client
func Connect(ctx context.Context, opts Options) (*redis.Client, error) {
	addr := opts.address()
	if addr == "" {
		return nil, errors.New("redis address cannot be empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return client, nil
}

// Init connects the process-wide client used by the server and the CLI
func Init(ctx context.Context, opts Options) error {
	client, err := Connect(ctx, opts)
	if err != nil {
		return err
	}

	mu.Lock()
	old := shared
	shared = client
	mu.Unlock()

	if old != nil {
		_ = old.Close()
	}
	return nil
}

// Client returns the shared client, or nil before Init succeeds
func Client() *redis.Client {
	mu.RLock()
	defer mu.RUnlock()
	return shared
}

func IsInitialized() bool {
	return Client() != nil
}

// Close releases the shared client
func Close() error {
	mu.Lock()
	client := shared
	shared = nil
	mu.Unlock()

	if client == nil {
		return ErrNotInitialized
	}
	if err := client.Close(); err != nil {
		return fmt.Errorf("failed to close Redis connection: %w", err)
	}
	return nil
}
