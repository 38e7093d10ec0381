package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"

	"fixture-trip-planner/internal/domain"
	"fixture-trip-planner/internal/platform/obs"
	"fixture-trip-planner/internal/ports"
)

const (
	travelKeyFormat = "travel_v1:%016x"
	geocodeKey      = "geocode_v1"
)

// RedisTravelCache keeps one hash per origin: field = destination key,
// value = JSON estimate. Rows expire together after TTL (0 keeps them).
type RedisTravelCache struct {
	client *redis.Client
	TTL    time.Duration
}

func NewRedisTravelCache(client *redis.Client, ttl time.Duration) *RedisTravelCache {
	return &RedisTravelCache{client: client, TTL: ttl}
}

type redisEstimate struct {
	DistanceKm float64 `json:"km"`
	Hours      float64 `json:"h"`
}

func travelKey(origin string) string {
	return fmt.Sprintf(travelKeyFormat, xxhash.Sum64String(origin))
}

func (r *RedisTravelCache) GetMany(
	ctx context.Context,
	origin string,
	destinations []string,
) (_ map[string]ports.TravelEstimate, err error) {
	defer obs.Time(ctx, "travel.redis.GetMany")(&err)

	if origin == "" {
		return nil, errors.New("get travel cache: origin must not be empty")
	}

	uniq := uniqueKeys(destinations)
	out := make(map[string]ports.TravelEstimate, len(uniq))
	if len(uniq) == 0 {
		return out, nil
	}

	vals, err := r.client.HMGet(ctx, travelKey(origin), uniq...).Result()
	if err != nil {
		return nil, fmt.Errorf("get travel cache: hmget: %w", err)
	}

	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var e redisEstimate
		if err := json.Unmarshal([]byte(s), &e); err != nil {
			return nil, fmt.Errorf("get travel cache: decode %q: %w", uniq[i], err)
		}
		out[uniq[i]] = ports.TravelEstimate{DistanceKm: e.DistanceKm, Hours: e.Hours}
	}
	return out, nil
}

func (r *RedisTravelCache) PutMany(ctx context.Context, origin string, results map[string]ports.TravelEstimate) error {
	if origin == "" {
		return errors.New("insert travel cache: origin must not be empty")
	}
	if len(results) == 0 {
		return nil
	}

	fields := make(map[string]any, len(results))
	for dest, est := range results {
		b, err := json.Marshal(redisEstimate{DistanceKm: est.DistanceKm, Hours: est.Hours})
		if err != nil {
			return fmt.Errorf("insert travel cache: encode %q: %w", dest, err)
		}
		fields[dest] = string(b)
	}

	key := travelKey(origin)
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, key, fields)
		if r.TTL > 0 {
			p.Expire(ctx, key, r.TTL)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("insert travel cache: %w", err)
	}
	return nil
}

// RedisGeocodeCache stores every query in a single hash as "lon,lat".
type RedisGeocodeCache struct {
	client *redis.Client
}

func NewRedisGeocodeCache(client *redis.Client) *RedisGeocodeCache {
	return &RedisGeocodeCache{client: client}
}

func (r *RedisGeocodeCache) GetMany(ctx context.Context, queries []string) (_ map[string]domain.Coordinates, err error) {
	defer obs.Time(ctx, "geocode.redis.GetMany")(&err)

	uniq := uniqueKeys(queries)
	out := make(map[string]domain.Coordinates, len(uniq))
	if len(uniq) == 0 {
		return out, nil
	}

	vals, err := r.client.HMGet(ctx, geocodeKey, uniq...).Result()
	if err != nil {
		return nil, fmt.Errorf("get geocode cache: hmget: %w", err)
	}
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		c, err := parseLonLat(s)
		if err != nil {
			return nil, fmt.Errorf("get geocode cache: %q: %w", uniq[i], err)
		}
		out[uniq[i]] = c
	}
	return out, nil
}

func (r *RedisGeocodeCache) PutMany(ctx context.Context, results map[string]domain.Coordinates) error {
	if len(results) == 0 {
		return nil
	}
	fields := make(map[string]any, len(results))
	for q, c := range results {
		fields[q] = strconv.FormatFloat(c.Lon, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lat, 'f', -1, 64)
	}
	if err := r.client.HSet(ctx, geocodeKey, fields).Err(); err != nil {
		return fmt.Errorf("insert geocode cache: %w", err)
	}
	return nil
}

func parseLonLat(s string) (domain.Coordinates, error) {
	lonStr, latStr, ok := strings.Cut(s, ",")
	if !ok {
		return domain.Coordinates{}, fmt.Errorf("malformed coordinates %q", s)
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return domain.Coordinates{}, err
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return domain.Coordinates{}, err
	}
	return domain.Coordinates{Lon: lon, Lat: lat}, nil
}
