package persistence

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/spec-kit/market-portal/internal/config"
)

func TestNewRedisPing(t *testing.T) {
	mr := miniredis.RunT(t)
	r := NewRedis(config.RedisConfig{Addr: mr.Addr(), KeyPrefix: "market:session:"}, zap.NewNop())
	defer r.Close()

	assert.NoError(t, r.Ping(context.Background()))
	assert.Equal(t, "market:session:abc", r.Key("abc"))

	var missing *Redis
	assert.Error(t, missing.Ping(context.Background()))
}
