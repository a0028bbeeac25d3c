package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"lumina/internal/domain"

	goredis "github.com/redis/go-redis/v9"
)

// Connect opens a client for addr (host:port or a redis:// URL) and verifies it with PING.
func Connect(ctx context.Context, addr string, logger *slog.Logger) (*goredis.Client, error) {
	logger = logger.With("component", "redis")

	opts, err := goredis.ParseURL(addr)
	if err != nil {
		opts = &goredis.Options{Addr: addr}
	}

	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("failed to connect to redis", "error", err)
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	logger.Info("redis connection established", "addr", opts.Addr)
	return client, nil
}

// wrapError turns unreachable-server failures into a retryable TransportError.
func wrapError(op string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.As(err, &netErr) {
		return &domain.TransportError{Op: op, Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}
