//go:build integration

package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"tramita/internal/document/store"
	id "tramita/pkg/domain"
	"tramita/pkg/testutil/containers"
)

type RedisCodeCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	cache *store.RedisCodeCache
}

func TestRedisCodeCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisCodeCacheSuite))
}

func (s *RedisCodeCacheSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())
	s.cache = store.NewRedisCodeCache(s.redis.Client)
}

func (s *RedisCodeCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisCodeCacheSuite) TestSetAndGet() {
	ctx := context.Background()
	documentID := id.NewDocumentID()

	s.cache.Set(ctx, "ABCD1234", documentID)

	cached, ok := s.cache.Get(ctx, "ABCD1234")
	s.True(ok)
	s.Equal(documentID, cached)
}

func (s *RedisCodeCacheSuite) TestGetUnknownCode() {
	_, ok := s.cache.Get(context.Background(), "UNKNOWN1")
	s.False(ok)
}

func (s *RedisCodeCacheSuite) TestInvalidateRemovesEntry() {
	ctx := context.Background()
	documentID := id.NewDocumentID()

	s.cache.Set(ctx, "ABCD1234", documentID)
	s.cache.Invalidate(ctx, "ABCD1234")

	_, ok := s.cache.Get(ctx, "ABCD1234")
	s.False(ok)
}

func (s *RedisCodeCacheSuite) TestNilCacheIsNoOp() {
	ctx := context.Background()
	var cache *store.RedisCodeCache

	cache.Set(ctx, "ABCD1234", id.NewDocumentID())
	cache.Invalidate(ctx, "ABCD1234")
	_, ok := cache.Get(ctx, "ABCD1234")
	s.False(ok)
}
