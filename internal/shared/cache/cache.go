package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Options de conexão; zero value = localhost sem senha, DB 0
type Options struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
}

// ConnectRedis abre o client e valida com PING. Chat e Pub/Sub usam o mesmo client.
func ConnectRedis(ctx context.Context, opts Options) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
		PoolSize: opts.PoolSize,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opts.Addr, err)
	}

	return rdb, nil
}
