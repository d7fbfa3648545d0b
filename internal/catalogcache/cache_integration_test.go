//go:build integration

package catalogcache_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/peoplesbranch/scorecard/internal/catalogcache"
	"github.com/peoplesbranch/scorecard/internal/legislation"
	"github.com/peoplesbranch/scorecard/internal/testutil/containers"
)

type stubCatalog struct {
	calls atomic.Int32
	title string
	fail  bool
}

func (s *stubCatalog) BillTitle(context.Context, int, string, int) (*legislation.BillTitle, error) {
	s.calls.Add(1)
	if s.fail {
		return nil, errors.New("catalog offline")
	}
	if s.title == "" {
		return nil, nil
	}
	return &legislation.BillTitle{Title: s.title}, nil
}

func (s *stubCatalog) NominationDescription(context.Context, int, int) (string, error) {
	s.calls.Add(1)
	return s.title, nil
}

type CacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
}

func TestCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(CacheSuite))
}

func (s *CacheSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
}

func (s *CacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *CacheSuite) TestHitAfterFirstRead() {
	ctx := context.Background()
	inner := &stubCatalog{title: "Clean Water Act"}
	cache := catalogcache.New(s.redis.Client, inner, time.Hour)

	for i := 0; i < 3; i++ {
		bt, err := cache.BillTitle(ctx, 119, "s", 5)
		s.Require().NoError(err)
		s.Require().NotNil(bt)
		s.Equal("Clean Water Act", bt.Title)
	}
	s.Equal(int32(1), inner.calls.Load())
}

func (s *CacheSuite) TestMissIsCached() {
	ctx := context.Background()
	inner := &stubCatalog{}
	cache := catalogcache.New(s.redis.Client, inner, time.Hour)

	for i := 0; i < 2; i++ {
		desc, err := cache.NominationDescription(ctx, 119, 44)
		s.Require().NoError(err)
		s.Empty(desc)
	}
	s.Equal(int32(1), inner.calls.Load())
}

func (s *CacheSuite) TestInvalidateForcesReread() {
	ctx := context.Background()
	inner := &stubCatalog{title: "Old Title"}
	cache := catalogcache.New(s.redis.Client, inner, time.Hour)

	_, err := cache.BillTitle(ctx, 119, "hr", 9)
	s.Require().NoError(err)

	inner.title = "New Title"
	gen, err := cache.Invalidate(ctx)
	s.Require().NoError(err)
	s.Equal(int64(1), gen)

	bt, err := cache.BillTitle(ctx, 119, "hr", 9)
	s.Require().NoError(err)
	s.Equal("New Title", bt.Title)
	s.Equal(int32(2), inner.calls.Load())
}

func (s *CacheSuite) TestErrorsNotCached() {
	ctx := context.Background()
	inner := &stubCatalog{fail: true}
	cache := catalogcache.New(s.redis.Client, inner, time.Hour)

	_, err := cache.BillTitle(ctx, 119, "hr", 3)
	s.Error(err)

	inner.fail = false
	inner.title = "Recovered"
	bt, err := cache.BillTitle(ctx, 119, "hr", 3)
	s.Require().NoError(err)
	s.Equal("Recovered", bt.Title)
}

func (s *CacheSuite) TestEntriesExpire() {
	ctx := context.Background()
	cache := catalogcache.New(s.redis.Client, &stubCatalog{title: "T"}, time.Minute)

	_, err := cache.BillTitle(ctx, 119, "hr", 1)
	s.Require().NoError(err)

	keys, err := s.redis.Client.Keys(ctx, "scorecard:catalog:0:*").Result()
	s.Require().NoError(err)
	s.Require().Len(keys, 1)

	ttl, err := s.redis.Client.TTL(ctx, keys[0]).Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))
	s.LessOrEqual(ttl, time.Minute)
}
