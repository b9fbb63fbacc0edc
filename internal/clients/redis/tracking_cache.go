package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Daniel-Osman/nfd-express/internal/logger"
	"github.com/Daniel-Osman/nfd-express/internal/types"
)

// TrackingCache fronts the public tracking lookup. Entries are short lived
// and include negative results so unknown tracking numbers do not hammer
// the database.
type TrackingCache interface {
	Get(ctx context.Context, trackingNumber string) (*types.PublicTrackingInfo, bool, error)
	Set(ctx context.Context, trackingNumber string, info *types.PublicTrackingInfo) error
	Close() error
}

type cachedTracking struct {
	Found bool                      `json:"found"`
	Info  *types.PublicTrackingInfo `json:"info,omitempty"`
}

type trackingCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

func NewTrackingCache(log *logger.Logger) (TrackingCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &trackingCache{
		log: log.With("service", "TrackingCache"),
		rdb: rdb,
		ttl: 60 * time.Second,
	}, nil
}

func cacheKey(trackingNumber string) string {
	return "tracking:" + strings.ToUpper(strings.TrimSpace(trackingNumber))
}

func (tc *trackingCache) Get(ctx context.Context, trackingNumber string) (*types.PublicTrackingInfo, bool, error) {
	raw, err := tc.rdb.Get(ctx, cacheKey(trackingNumber)).Bytes()
	if err == goredis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	var entry cachedTracking
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, false, fmt.Errorf("decode cached tracking: %w", err)
	}
	if !entry.Found {
		return nil, true, nil
	}
	return entry.Info, true, nil
}

func (tc *trackingCache) Set(ctx context.Context, trackingNumber string, info *types.PublicTrackingInfo) error {
	entry := cachedTracking{Found: info != nil, Info: info}
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cached tracking: %w", err)
	}
	if err := tc.rdb.Set(ctx, cacheKey(trackingNumber), raw, tc.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (tc *trackingCache) Close() error {
	return tc.rdb.Close()
}
