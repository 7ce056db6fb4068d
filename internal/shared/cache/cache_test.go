package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectRedis(t *testing.T) {
	mini := miniredis.RunT(t)
	mini.RequireAuth("s3cret")

	rdb, err := ConnectRedis(context.Background(), Options{Addr: mini.Addr(), Password: "s3cret"})
	require.NoError(t, err)
	defer rdb.Close()
	assert.NoError(t, rdb.Set(context.Background(), "k", "v", 0).Err())

	_, err = ConnectRedis(context.Background(), Options{Addr: mini.Addr(), Password: "wrong"})
	assert.Error(t, err)
}
