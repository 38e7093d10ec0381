package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fixture-trip-planner/internal/domain"
	"fixture-trip-planner/internal/ports"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisTravelCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	mr, client := newRedis(t)
	c := NewRedisTravelCache(client, time.Hour)

	require.NoError(t, c.PutMany(ctx, "51.47000,-0.45430", map[string]ports.TravelEstimate{
		"53.43080,-2.96080": {DistanceKm: 300, Hours: 4},
	}))

	got, err := c.GetMany(ctx, "51.47000,-0.45430", []string{"53.43080,-2.96080", "0.00000,0.00000"})
	require.NoError(t, err)
	assert.Equal(t, map[string]ports.TravelEstimate{"53.43080,-2.96080": {DistanceKm: 300, Hours: 4}}, got)

	key := travelKey("51.47000,-0.45430")
	assert.True(t, mr.Exists(key))
	assert.Equal(t, time.Hour, mr.TTL(key))

	mr.FastForward(2 * time.Hour)
	got, err = c.GetMany(ctx, "51.47000,-0.45430", []string{"53.43080,-2.96080"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRedisGeocodeCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	_, client := newRedis(t)
	c := NewRedisGeocodeCache(client)

	villa := domain.Coordinates{Lon: -1.8848, Lat: 52.5092}
	require.NoError(t, c.PutMany(ctx, map[string]domain.Coordinates{"villa park, birmingham": villa}))

	got, err := c.GetMany(ctx, []string{"villa park, birmingham", "unknown"})
	require.NoError(t, err)
	assert.Equal(t, map[string]domain.Coordinates{"villa park, birmingham": villa}, got)
}

func TestRedisCacheSurfacesConnectionErrors(t *testing.T) {
	mr, client := newRedis(t)
	mr.Close()

	_, err := NewRedisTravelCache(client, 0).GetMany(context.Background(), "o", []string{"d"})
	assert.Error(t, err)
}
