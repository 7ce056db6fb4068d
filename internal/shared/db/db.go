package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// Pool limita conexões: o banco é só write-behind, poucas conexões bastam
type Pool struct {
	MaxConns       int
	IdleTimeout    time.Duration
	ConnectTimeout time.Duration
}

func DefaultPool() Pool {
	return Pool{MaxConns: 3, IdleTimeout: time.Second, ConnectTimeout: 10 * time.Second}
}

func ConnectPostgres(ctx context.Context, dsn string, pool Pool) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if pool.MaxConns > 0 {
		db.SetMaxOpenConns(pool.MaxConns)
		db.SetMaxIdleConns(pool.MaxConns)
	}
	if pool.IdleTimeout > 0 {
		db.SetConnMaxIdleTime(pool.IdleTimeout)
	}

	pingCtx := ctx
	if pool.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, pool.ConnectTimeout)
		defer cancel()
	}
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return db, nil
}
