package addressbook

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Service answers directory lookups through a redis cache. Concurrent misses
// for the same key collapse into one provider call via singleflight.
type Service struct {
	provider Provider
	cache    *redis.Client
	ttl      time.Duration
	group    singleflight.Group
	logger   *slog.Logger
}

// NewService builds Service instance. cache may be nil, which disables
// caching but keeps the singleflight dedupe.
func NewService(provider Provider, cache *redis.Client, ttl time.Duration, logger *slog.Logger) *Service {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{provider: provider, cache: cache, ttl: ttl, logger: logger}
}

// Regions lists top-level regions.
func (s *Service) Regions(ctx context.Context) ([]Place, error) {
	return s.lookup(ctx, "addressbook:regions", func() ([]Place, error) {
		return s.provider.Regions(ctx)
	})
}

// Provinces lists provinces under a region.
func (s *Service) Provinces(ctx context.Context, regionCode string) ([]Place, error) {
	return s.lookup(ctx, "addressbook:provinces:"+regionCode, func() ([]Place, error) {
		return s.provider.Provinces(ctx, regionCode)
	})
}

// CitiesMunicipalities lists cities and municipalities under a province.
func (s *Service) CitiesMunicipalities(ctx context.Context, provinceCode string) ([]Place, error) {
	return s.lookup(ctx, "addressbook:cities:"+provinceCode, func() ([]Place, error) {
		return s.provider.CitiesMunicipalities(ctx, provinceCode)
	})
}

// Barangays lists barangays under a city or municipality.
func (s *Service) Barangays(ctx context.Context, cityCode string) ([]Place, error) {
	return s.lookup(ctx, "addressbook:barangays:"+cityCode, func() ([]Place, error) {
		return s.provider.Barangays(ctx, cityCode)
	})
}

func (s *Service) lookup(ctx context.Context, key string, fetch func() ([]Place, error)) ([]Place, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, key).Bytes()
		if err == nil {
			var places []Place
			if err := json.Unmarshal(raw, &places); err == nil {
				return places, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn("addressbook cache read", slog.Any("error", err), slog.String("key", key))
		}
	}

	result, err, _ := s.group.Do(key, func() (any, error) {
		places, err := fetch()
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			if raw, err := json.Marshal(places); err == nil {
				if err := s.cache.Set(ctx, key, raw, s.ttl).Err(); err != nil {
					s.logger.Warn("addressbook cache write", slog.Any("error", err), slog.String("key", key))
				}
			}
		}
		return places, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]Place), nil
}
