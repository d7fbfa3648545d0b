package catalogcache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peoplesbranch/scorecard/internal/legislation"
)

// countingCatalog serves a fixed bill and nomination
type countingCatalog struct {
	bills atomic.Int32
	noms  atomic.Int32
	err   error
}

func (c *countingCatalog) BillTitle(_ context.Context, _ int, billType string, number int) (*legislation.BillTitle, error) {
	c.bills.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	if billType == "hr" && number == 1 {
		return &legislation.BillTitle{Title: "An Act to provide for reconciliation", ShortTitle: "One Big Bill Act"}, nil
	}
	return nil, nil
}

func (c *countingCatalog) NominationDescription(_ context.Context, _, number int) (string, error) {
	c.noms.Add(1)
	if c.err != nil {
		return "", c.err
	}
	if number == 12 {
		return "Jane Doe, of Ohio, to be a Judge", nil
	}
	return "", nil
}

func unreachableRedis(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestCache_RedisDownFallsThrough(t *testing.T) {
	inner := &countingCatalog{}
	cache := New(unreachableRedis(t), inner, time.Hour)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		bt, err := cache.BillTitle(ctx, 119, "hr", 1)
		require.NoError(t, err)
		require.NotNil(t, bt)
		assert.Equal(t, "One Big Bill Act", bt.ShortTitle)
	}
	assert.Equal(t, int32(2), inner.bills.Load(), "every read reaches the catalog without redis")

	desc, err := cache.NominationDescription(ctx, 119, 12)
	require.NoError(t, err)
	assert.Contains(t, desc, "Jane Doe")
}

func TestCache_InnerErrorPropagates(t *testing.T) {
	inner := &countingCatalog{err: errors.New("catalog offline")}
	cache := New(unreachableRedis(t), inner, time.Hour)

	_, err := cache.BillTitle(context.Background(), 119, "hr", 1)
	assert.Error(t, err)
}

func TestNewClient_EmptyURLDisablesCache(t *testing.T) {
	client, err := NewClient(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestNewClient_BadURL(t *testing.T) {
	_, err := NewClient(context.Background(), "not a url")
	assert.Error(t, err)
}
