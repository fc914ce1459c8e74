package cache

import (
	"context"
	"testing"

	"shardit/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
	return mr
}

func TestItemCacheRoundTrip(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	item := &models.Item{ID: 42, OwnerID: 7, Title: "Cordless drill", Community: "riverside", Available: true}
	SetItem(ctx, item)

	got := GetItem(ctx, 42)
	require.NotNil(t, got)
	assert.Equal(t, item.Title, got.Title)
	assert.Equal(t, item.OwnerID, got.OwnerID)

	InvalidateItem(ctx, 42)
	assert.Nil(t, GetItem(ctx, 42))
}

func TestItemCacheMissAndNilClient(t *testing.T) {
	setupMiniredis(t)
	assert.Nil(t, GetItem(context.Background(), 999))

	SetClient(nil)
	assert.Nil(t, GetItem(context.Background(), 42))
	// Set/Invalidate must be no-ops without a client
	SetItem(context.Background(), &models.Item{ID: 1})
	InvalidateItem(context.Background(), 1)
}

func TestHealthy(t *testing.T) {
	mr := setupMiniredis(t)
	assert.True(t, Healthy(context.Background()))

	mr.Close()
	assert.False(t, Healthy(context.Background()))

	SetClient(nil)
	assert.False(t, Healthy(context.Background()))
}
